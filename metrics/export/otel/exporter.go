package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"

	authcore "github.com/pawshelter/authcore"
	"github.com/pawshelter/authcore/metrics/export/internaldefs"
)

var (
	// ErrNilMeter is returned when no OTel meter is supplied.
	ErrNilMeter = errors.New("otel: meter is nil")
	// ErrNilSource is returned when no metrics source is supplied.
	ErrNilSource = errors.New("otel: metrics source is nil")
)

type metricsSource interface {
	MetricsSnapshot() authcore.MetricsSnapshot
	AuditDropped() uint64
}

type observedCounter struct {
	id         authcore.MetricID
	instrument metric.Int64ObservableCounter
}

// OTelExporter bridges engine counters into an OpenTelemetry meter. Counters
// are registered as observable instruments and read on each collection cycle.
type OTelExporter struct {
	source       metricsSource
	counters     []observedCounter
	auditDropped metric.Int64ObservableCounter
	registration metric.Registration
}

// NewOTelExporter registers authcore counters on the given meter, sourcing
// values from the engine.
func NewOTelExporter(meter metric.Meter, engine *authcore.Engine) (*OTelExporter, error) {
	if engine == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, engine)
}

// NewOTelExporterFromSource registers authcore counters on the given meter,
// sourcing values from a custom metrics source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{
		source:   source,
		counters: make([]observedCounter, 0, len(internaldefs.CounterDefs)),
	}

	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+1)
	for _, def := range internaldefs.CounterDefs {
		instrument, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, err
		}
		exporter.counters = append(exporter.counters, observedCounter{id: def.ID, instrument: instrument})
		observables = append(observables, instrument)
	}

	auditDropped, err := meter.Int64ObservableCounter(
		"authcore_audit_dropped_total",
		metric.WithDescription("Dropped audit events due to dispatcher backpressure."),
	)
	if err != nil {
		return nil, err
	}
	exporter.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	registration, err := meter.RegisterCallback(exporter.observe, observables...)
	if err != nil {
		return nil, err
	}
	exporter.registration = registration

	return exporter, nil
}

func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
	}
	observer.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback. The exporter must not be used
// after Close.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
