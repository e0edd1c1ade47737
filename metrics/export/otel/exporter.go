package otel

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	authdemo "github.com/MalcoreHardcore698/authdemo"
	"github.com/MalcoreHardcore698/authdemo/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() authdemo.MetricsSnapshot
	AuditDropped() uint64
}

type OTelExporter struct {
	source       metricsSource
	registration metric.Registration

	actions  metric.Int64ObservableCounter
	fallback metric.Int64ObservableCounter
	dropped  metric.Int64ObservableCounter
	buckets  metric.Int64ObservableGauge
	count    metric.Int64ObservableGauge

	actionAttrs []metric.ObserveOption
	bucketAttrs []metric.ObserveOption
}

func NewOTelExporter(meter metric.Meter, engine *authdemo.Engine) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, engine)
}

// NewOTelExporterFromSource creates the instruments and registers the
// collection callback. Close unregisters it.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	var err error
	if e.actions, err = meter.Int64ObservableCounter(internaldefs.ActionsName, metric.WithDescription(internaldefs.ActionsHelp)); err != nil {
		return nil, fmt.Errorf("create %s: %w", internaldefs.ActionsName, err)
	}
	if e.fallback, err = meter.Int64ObservableCounter(internaldefs.FallbackName, metric.WithDescription(internaldefs.FallbackHelp)); err != nil {
		return nil, fmt.Errorf("create %s: %w", internaldefs.FallbackName, err)
	}
	if e.dropped, err = meter.Int64ObservableCounter(internaldefs.AuditDroppedName, metric.WithDescription(internaldefs.AuditDroppedHelp)); err != nil {
		return nil, fmt.Errorf("create %s: %w", internaldefs.AuditDroppedName, err)
	}
	bucketName := internaldefs.LatencyName + "_bucket"
	if e.buckets, err = meter.Int64ObservableGauge(bucketName, metric.WithDescription("Cumulative latency bucket count.")); err != nil {
		return nil, fmt.Errorf("create %s: %w", bucketName, err)
	}
	countName := internaldefs.LatencyName + "_count"
	if e.count, err = meter.Int64ObservableGauge(countName, metric.WithDescription("Latency sample count.")); err != nil {
		return nil, fmt.Errorf("create %s: %w", countName, err)
	}

	for _, def := range internaldefs.ActionDefs {
		e.actionAttrs = append(e.actionAttrs, metric.WithAttributes(
			attribute.String("op", def.Op),
			attribute.String("outcome", def.Outcome),
		))
	}
	for _, le := range internaldefs.HistogramBounds {
		e.bucketAttrs = append(e.bucketAttrs, metric.WithAttributes(attribute.String("le", strconv.FormatFloat(le, 'g', -1, 64))))
	}
	e.bucketAttrs = append(e.bucketAttrs, metric.WithAttributes(attribute.String("le", "+Inf")))

	e.registration, err = meter.RegisterCallback(e.observe, e.actions, e.fallback, e.dropped, e.buckets, e.count)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()

	for i, def := range internaldefs.ActionDefs {
		if v, ok := snap.Counters[def.ID]; ok {
			o.ObserveInt64(e.actions, int64(v), e.actionAttrs[i])
		}
	}
	if v, ok := snap.Counters[authdemo.MetricFallbackUsed]; ok {
		o.ObserveInt64(e.fallback, int64(v))
	}
	if raw, ok := snap.Histograms[authdemo.MetricActionLatency]; ok {
		cumulative := internaldefs.CumulativeBuckets(raw)
		for i := range cumulative {
			o.ObserveInt64(e.buckets, int64(cumulative[i]), e.bucketAttrs[i])
		}
		o.ObserveInt64(e.count, int64(cumulative[len(cumulative)-1]))
	}
	o.ObserveInt64(e.dropped, int64(e.source.AuditDropped()))
	return nil
}

func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
