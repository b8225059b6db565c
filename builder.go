package dashauth

import (
	"time"

	"go.uber.org/zap"
)

// Builder assembles a Controller. A Builder is single-use.
type Builder struct {
	config Config

	auth       Authenticator
	namespaces NamespaceSource
	store      *Store
	logger     *zap.Logger
	sink       TransitionSink
	observer   AuthenticateObserver

	built bool
}

// New starts a Builder with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

func (b *Builder) WithAuthenticator(a Authenticator) *Builder {
	b.auth = a
	return b
}

func (b *Builder) WithNamespaces(ns NamespaceSource) *Builder {
	b.namespaces = ns
	return b
}

// WithStore shares an existing store. By default Build creates one from
// InitialState(config.Runtime, config.Clusters...).
func (b *Builder) WithStore(s *Store) *Builder {
	b.store = s
	return b
}

func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithTransitionSink sets the sink and enables the transition stream.
func (b *Builder) WithTransitionSink(sink TransitionSink) *Builder {
	b.sink = sink
	if sink != nil {
		b.config.Transitions.Enabled = true
	}
	return b
}

// WithAuthenticateObserver reports each Authenticate outcome and duration
// to o, independently of the built-in metrics.
func (b *Builder) WithAuthenticateObserver(o AuthenticateObserver) *Builder {
	b.observer = o
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Controller.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if cfg.Transitions.Enabled && cfg.Transitions.BufferSize <= 0 {
		cfg.Transitions.BufferSize = DefaultConfig().Transitions.BufferSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.auth == nil {
		return nil, ErrMissingAuthenticator
	}
	if b.namespaces == nil {
		return nil, ErrMissingNamespaces
	}

	store := b.store
	if store == nil {
		store = NewStore(InitialState(cfg.Runtime, cfg.Clusters...))
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		config:      cfg,
		store:       store,
		auth:        b.auth,
		namespaces:  b.namespaces,
		logger:      logger.Named("dashauth"),
		metrics:     NewMetrics(cfg.Metrics),
		transitions: newTransitionDispatcher(cfg.Transitions, b.sink),
		observer:    b.observer,
		now:         time.Now,
	}

	b.built = true
	return c, nil
}
