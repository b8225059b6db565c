package dashauth

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/dashauth/internal/dispatch"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Controller runs the authentication procedures against a Store.
//
// Controller instances are configured once through Builder and are safe for
// concurrent use.
type Controller struct {
	config      Config
	store       *Store
	auth        Authenticator
	namespaces  NamespaceSource
	logger      *zap.Logger
	metrics     *Metrics
	transitions *dispatch.Dispatcher[Transition]
	observer    AuthenticateObserver
	closed      atomic.Bool
	now         func() time.Time
}

// Store returns the store the Controller dispatches into.
func (c *Controller) Store() *Store {
	if c == nil {
		return nil
	}
	return c.store
}

// State is shorthand for Store().State().
func (c *Controller) State() State {
	if c == nil {
		return State{}
	}
	return c.store.State()
}

// MetricsSnapshot returns a copy of the Controller counters.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return (*Metrics)(nil).Snapshot()
	}
	return c.metrics.Snapshot()
}

// TransitionsDropped reports transitions discarded by a full buffer.
func (c *Controller) TransitionsDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.transitions.Dropped()
}

// Close flushes the transition stream. Later procedure calls return
// ErrControllerClosed.
func (c *Controller) Close() {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.transitions.Close()
}

func (c *Controller) usable() error {
	if c == nil {
		return ErrNilController
	}
	if c.closed.Load() {
		return ErrControllerClosed
	}
	return nil
}

// dispatch stamps the operation id from ctx onto the transition stream.
// Transitions are queued in the order the store reduced them.
func (c *Controller) dispatch(ctx context.Context, a Action) State {
	var emit func(State)
	if c.transitions != nil {
		opID, _ := OperationIDFromContext(ctx)
		emit = func(next State) {
			c.transitions.Emit(ctx, Transition{
				ID:          uuid.NewString(),
				OperationID: opID,
				Timestamp:   c.now(),
				Type:        a.Type(),
				Action:      a,
				State:       next.Auth,
			})
		}
	}
	next := c.store.dispatch(a, emit)
	c.logger.Debug("dispatch",
		zap.String("action", string(a.Type())),
		zap.Bool("authenticated", next.Auth.Authenticated),
		zap.Bool("authenticating", next.Auth.Authenticating),
	)
	return next
}
