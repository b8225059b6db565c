package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrEthical07/dashauth"
	"github.com/MrEthical07/dashauth/dashboard"
	otelexport "github.com/MrEthical07/dashauth/metrics/export/otel"
	"github.com/MrEthical07/dashauth/middleware"
	"github.com/MrEthical07/dashauth/namespace"
	"github.com/MrEthical07/dashauth/tokenstore"
	"github.com/redis/go-redis/v9"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// app is one wired controller: token store, dashboard client, namespace
// lister, the expiry transport and, with serve.otel, an OpenTelemetry
// reader.
type app struct {
	cfg        *Config
	logger     *zap.Logger
	ctrl       *dashauth.Controller
	client     *dashboard.Client
	otelReader *sdkmetric.ManualReader
	closers    []func() error
}

func newApp(cfg *Config, logger *zap.Logger, transitionsOut io.Writer) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	tokens, err := a.tokenStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	verifier, err := cfg.Verifier()
	if err != nil {
		a.Close()
		return nil, err
	}

	jar, err := dashboard.NewCookieJar()
	if err != nil {
		a.Close()
		return nil, err
	}

	client, err := dashboard.New(dashboard.Options{
		BaseURL:    cfg.BaseURL,
		HTTPClient: &http.Client{Jar: jar, Timeout: dashboard.DefaultTimeout},
		Tokens:     tokens,
		TokenTTL:   cfg.Token.TTL,
		Verifier:   verifier,
		Logger:     logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client = client

	// API calls made after login go through the expiry transport; the
	// controller is bound once built.
	var ctrl *dashauth.Controller
	expiry := middleware.NewTransport(nil, middleware.TransportConfig{
		State: stateFunc(func() dashauth.State { return ctrl.State() }),
		OnUnauthorized: func(ctx context.Context) error {
			return ctrl.ExpireSession(ctx)
		},
		Logger: logger,
	})
	lister, err := namespace.NewLister(cfg.BaseURL, &http.Client{
		Jar:       jar,
		Timeout:   dashboard.DefaultTimeout,
		Transport: expiry,
	}, client)
	if err != nil {
		a.Close()
		return nil, err
	}

	b := dashauth.New().
		WithConfig(cfg.Core()).
		WithAuthenticator(client).
		WithNamespaces(lister).
		WithLogger(logger)
	if cfg.Transitions.Log && transitionsOut != nil {
		b = b.WithTransitionSink(dashauth.NewJSONWriterSink(transitionsOut))
	}
	var otelExp *otelexport.Exporter
	if cfg.Serve.OTel {
		if otelExp, err = a.otelExporter(); err != nil {
			a.Close()
			return nil, err
		}
		b = b.WithAuthenticateObserver(otelExp)
	}

	built, err := b.Build()
	if err != nil {
		a.Close()
		return nil, err
	}
	ctrl = built
	a.ctrl = built
	a.closers = append(a.closers, func() error { built.Close(); return nil })

	if otelExp != nil {
		if err := otelExp.Bind(built); err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, otelExp.Close)
	}
	return a, nil
}

func (a *app) otelExporter() (*otelexport.Exporter, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	a.closers = append(a.closers, func() error {
		return provider.Shutdown(context.Background())
	})
	exp, err := otelexport.NewExporter(provider.Meter("github.com/MrEthical07/dashauth"))
	if err != nil {
		return nil, fmt.Errorf("otel exporter: %w", err)
	}
	a.otelReader = reader
	return exp, nil
}

func (a *app) tokenStore() (tokenstore.Store, error) {
	rc := a.cfg.Redis
	if rc.Addr == "" {
		a.logger.Warn("no redis configured, tokens live only as long as this process")
		return tokenstore.NewMemoryStore(), nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{rc.Addr},
		Password: rc.Password,
		DB:       rc.DB,
	})
	a.closers = append(a.closers, client.Close)

	store := tokenstore.NewRedisStore(client, rc.Prefix, rc.ClientID)
	if _, err := store.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("redis %s: %w", rc.Addr, err)
	}
	return store, nil
}

// Close releases the controller and the Redis client, newest first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

type stateFunc func() dashauth.State

func (f stateFunc) State() dashauth.State { return f() }
