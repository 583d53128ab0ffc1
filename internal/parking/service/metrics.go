package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("parking-attendant/service")

var (
	// lookupTotal counts lookups by mode (vrm|plate) and outcome
	// (match|no_match|invalid|error).
	lookupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parking_lookups_total",
		Help: "Vehicle lookups by mode and outcome",
	}, []string{"mode", "outcome"})

	// lookupResults tracks how many sessions a successful lookup returns
	lookupResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "parking_lookup_results",
		Help:    "Sessions returned per lookup",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
	})

	malformedEntries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parking_malformed_entries_total",
		Help: "Stored entries skipped because entered_at could not be parsed",
	})

	entriesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parking_entries_recorded_total",
		Help: "Vehicle entries recorded",
	})

	entriesPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parking_entries_pruned_total",
		Help: "Vehicle entries removed by the retention pruner",
	})
)

const (
	modeVRM   = "vrm"
	modePlate = "plate"
)

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// finishSpan records err on span, if any, and ends it.
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func recordLookup(mode string, results int, err error) {
	switch {
	case err != nil:
		if _, ok := AsValidation(err); ok {
			lookupTotal.WithLabelValues(mode, "invalid").Inc()
		} else {
			lookupTotal.WithLabelValues(mode, "error").Inc()
		}
	case results == 0:
		lookupTotal.WithLabelValues(mode, "no_match").Inc()
		lookupResults.Observe(0)
	default:
		lookupTotal.WithLabelValues(mode, "match").Inc()
		lookupResults.Observe(float64(results))
	}
}
