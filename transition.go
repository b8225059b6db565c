package dashauth

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/MrEthical07/dashauth/internal/dispatch"
)

// Transition is one dispatch as seen by the transition stream.
type Transition struct {
	ID          string     `json:"id"`
	OperationID string     `json:"operation_id,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
	Type        ActionType `json:"type"`
	Action      Action     `json:"action"`
	State       AuthState  `json:"state"`
}

// TransitionSink receives transitions in the order the store reduced them,
// across concurrent procedures. Emit must not dispatch into the same store.
type TransitionSink interface {
	Emit(ctx context.Context, t Transition)
}

// NoOpSink drops every transition.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Transition) {}

// ChannelSink writes transitions into a buffered channel.
type ChannelSink struct {
	events chan Transition
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Transition, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, t Transition) {
	select {
	case s.events <- t:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Transition {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, t Transition) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

func newTransitionDispatcher(cfg TransitionConfig, sink TransitionSink) *dispatch.Dispatcher[Transition] {
	if sink == nil {
		sink = NoOpSink{}
	}
	return dispatch.New[Transition](dispatch.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
}
