package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	messageCounter  otelmetric.Int64Counter
	messageDuration otelmetric.Float64Histogram
	alertCounter    otelmetric.Int64Counter
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	messageCounter, _ := meter.Int64Counter(
		"messages.routed",
		otelmetric.WithDescription("Number of inbound messages routed"),
	)

	messageDuration, _ := meter.Float64Histogram(
		"messages.duration",
		otelmetric.WithDescription("End-to-end message handling duration"),
		otelmetric.WithUnit("ms"),
	)

	alertCounter, _ := meter.Int64Counter(
		"alerts.raised",
		otelmetric.WithDescription("Number of ops alerts raised"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		messageCounter:  messageCounter,
		messageDuration: messageDuration,
		alertCounter:    alertCounter,
	}
}

// RecordMessageRouted counts one handled inbound message by intent and outcome.
func (o *Observability) RecordMessageRouted(ctx context.Context, intent, outcome string) {
	if o.messageCounter != nil {
		o.messageCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("intent", intent),
			attribute.String("outcome", outcome),
		))
	}
}

// RecordMessageDuration records the end-to-end handling latency.
func (o *Observability) RecordMessageDuration(ctx context.Context, duration time.Duration, outcome string) {
	if o.messageDuration != nil {
		o.messageDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

// RecordAlert counts one raised ops alert by code.
func (o *Observability) RecordAlert(ctx context.Context, code string) {
	if o.alertCounter != nil {
		o.alertCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("code", code),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
