package otel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrEthical07/dashauth"
	"github.com/MrEthical07/dashauth/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthenticateDurationName is the histogram of Authenticate calls.
const AuthenticateDurationName = "dashauth.authenticate.duration"

var (
	ErrNilMeter     = errors.New("nil meter")
	ErrNilSource    = errors.New("nil metrics source")
	ErrAlreadyBound = errors.New("exporter already bound to a source")
)

var (
	outcomeSuccess = attribute.String("outcome", "success")
	outcomeFailure = attribute.String("outcome", "failure")
)

type metricsSource interface {
	MetricsSnapshot() dashauth.MetricsSnapshot
	TransitionsDropped() uint64
}

type observedCounter struct {
	id         dashauth.MetricID
	instrument metric.Int64ObservableCounter
}

// Exporter records Authenticate durations on a Float64Histogram as they
// happen and reports the controller counters from a snapshot on each
// collection.
//
// Pass the Exporter to dashauth.Builder.WithAuthenticateObserver before
// Build, then Bind the built controller.
type Exporter struct {
	meter    metric.Meter
	duration metric.Float64Histogram

	mu           sync.Mutex
	registration metric.Registration
}

var _ dashauth.AuthenticateObserver = (*Exporter)(nil)

// NewExporter creates the duration histogram on meter. Counters are
// registered by Bind.
func NewExporter(meter metric.Meter) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	duration, err := meter.Float64Histogram(
		AuthenticateDurationName,
		metric.WithUnit("s"),
		metric.WithDescription("Duration of Authenticate calls by outcome."),
		metric.WithExplicitBucketBoundaries(internaldefs.HistogramUpperBounds...),
	)
	if err != nil {
		return nil, fmt.Errorf("create histogram %s: %w", AuthenticateDurationName, err)
	}
	return &Exporter{meter: meter, duration: duration}, nil
}

// NewExporterFromSource is NewExporter followed by Bind.
func NewExporterFromSource(meter metric.Meter, source metricsSource) (*Exporter, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	e, err := NewExporter(meter)
	if err != nil {
		return nil, err
	}
	if err := e.Bind(source); err != nil {
		return nil, err
	}
	return e, nil
}

// ObserveAuthenticate records one Authenticate call.
func (e *Exporter) ObserveAuthenticate(ctx context.Context, cluster string, oidc bool, elapsed time.Duration, err error) {
	if e == nil {
		return
	}
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	e.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		outcome,
		attribute.String("cluster", cluster),
		attribute.Bool("oidc", oidc),
	))
}

// Bind registers the controller counters and the dropped-transition counter
// against source. An Exporter binds at most once.
func (e *Exporter) Bind(source metricsSource) error {
	if source == nil {
		return ErrNilSource
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.registration != nil {
		return ErrAlreadyBound
	}

	counters := make([]observedCounter, 0, len(internaldefs.CounterDefs))
	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+1)
	for _, def := range internaldefs.CounterDefs {
		ins, err := e.meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		counters = append(counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}
	dropped, err := e.meter.Int64ObservableCounter(
		internaldefs.TransitionsDroppedName,
		metric.WithDescription("Transitions dropped due to dispatcher backpressure."),
	)
	if err != nil {
		return fmt.Errorf("create transitions dropped counter: %w", err)
	}
	observables = append(observables, dropped)

	registration, err := e.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		snapshot := source.MetricsSnapshot()
		for _, c := range counters {
			o.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
		}
		o.ObserveInt64(dropped, int64(source.TransitionsDropped()))
		return nil
	}, observables...)
	if err != nil {
		return fmt.Errorf("register callback: %w", err)
	}
	e.registration = registration
	return nil
}

// Close unregisters the counter callback. Recorded durations stay with the
// meter's provider.
func (e *Exporter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.registration == nil {
		return nil
	}
	err := e.registration.Unregister()
	e.registration = nil
	return err
}
