package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"hrintake/internal/config"
)

// Business metric types accepted by RecordBusinessMetric
const (
	MetricApplicationSubmitted = "application_submitted"
	MetricValidationFailed     = "validation_failed"
	MetricEmailSent            = "email_sent"
	MetricPDFDownloaded        = "pdf_downloaded"
	MetricRateLimitHit         = "rate_limit_hit"
)

// Metrics holds all custom metrics for hrintake.
// The zero value is usable and records nothing.
type Metrics struct {
	custom config.CustomMetricsConfig

	// Remote intake API calls
	APICallDuration metric.Float64Histogram
	APICallCount    metric.Int64Counter
	APICallErrors   metric.Int64Counter
	APIPayloadSize  metric.Int64Histogram

	// Business metrics
	ApplicationsSubmitted metric.Int64Counter
	ValidationFailures    metric.Int64Counter
	EmailsSent            metric.Int64Counter
	PDFsDownloaded        metric.Int64Counter

	// Infrastructure metrics
	RateLimitHits  metric.Int64Counter
	ActiveSessions metric.Int64UpDownCounter
}

func defaultCustomMetrics() config.CustomMetricsConfig {
	return config.CustomMetricsConfig{
		APICalls:        config.APICallMetricsConfig{Enabled: true, TrackDuration: true, TrackPayload: true},
		BusinessMetrics: config.BusinessMetricsConfig{Enabled: true, TrackSuccessRates: true},
		Infrastructure:  config.InfrastructureMetricsConfig{Enabled: true, TrackRateLimits: true, TrackSessions: true},
	}
}

// NewMetrics creates the instruments on meter. Instrument names are prefixed with prefix.
func NewMetrics(meter metric.Meter, prefix string, custom config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{custom: custom}
	name := func(s string) string { return prefix + "_" + s }

	var err error
	if m.APICallDuration, err = meter.Float64Histogram(name("api_call_duration_seconds"),
		metric.WithDescription("Time spent calling the intake API"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create API call duration metric: %w", err)
	}
	if m.APICallCount, err = meter.Int64Counter(name("api_calls_total"),
		metric.WithDescription("Total number of intake API calls")); err != nil {
		return nil, fmt.Errorf("failed to create API call count metric: %w", err)
	}
	if m.APICallErrors, err = meter.Int64Counter(name("api_call_errors_total"),
		metric.WithDescription("Total number of failed intake API calls")); err != nil {
		return nil, fmt.Errorf("failed to create API call error metric: %w", err)
	}
	if m.APIPayloadSize, err = meter.Int64Histogram(name("api_payload_bytes"),
		metric.WithDescription("Size of request bodies sent to the intake API"),
		metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("failed to create API payload size metric: %w", err)
	}

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&m.ApplicationsSubmitted, "applications_submitted_total", "Total number of application submissions"},
		{&m.ValidationFailures, "validation_failures_total", "Total number of submissions blocked by validation"},
		{&m.EmailsSent, "emails_sent_total", "Total number of status emails sent"},
		{&m.PDFsDownloaded, "pdfs_downloaded_total", "Total number of application PDFs downloaded"},
		{&m.RateLimitHits, "rate_limit_hits_total", "Total number of rate limit hits"},
	}
	for _, c := range counters {
		if *c.target, err = meter.Int64Counter(name(c.name), metric.WithDescription(c.description)); err != nil {
			return nil, fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
	}

	if m.ActiveSessions, err = meter.Int64UpDownCounter(name("wizard_sessions_active"),
		metric.WithDescription("Number of open wizard sessions")); err != nil {
		return nil, fmt.Errorf("failed to create active sessions metric: %w", err)
	}

	return m, nil
}

// TrackAPICall instruments one intake API call with a span and call metrics
func (m *Metrics) TrackAPICall(ctx context.Context, operation string, fn func(context.Context) error) error {
	if m == nil || m.APICallCount == nil {
		return fn(ctx)
	}

	ctx, span := otel.Tracer("hrintake.apiclient").Start(ctx, "api."+operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}
	span.SetAttributes(attrs...)

	if m.custom.APICalls.Enabled {
		if m.custom.APICalls.TrackDuration {
			m.APICallDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
		}
		m.APICallCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		if err != nil {
			m.APICallErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// RecordPayloadSize records the size of a request body sent for operation
func (m *Metrics) RecordPayloadSize(ctx context.Context, operation string, size int64) {
	if m == nil || m.APIPayloadSize == nil || !m.custom.APICalls.Enabled || !m.custom.APICalls.TrackPayload {
		return
	}
	m.APIPayloadSize.Record(ctx, size, metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordBusinessMetric records business-specific metrics
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	if m == nil {
		return
	}

	attrs := attributes
	if m.custom.BusinessMetrics.TrackSuccessRates || metricType == MetricRateLimitHit {
		attrs = append([]attribute.KeyValue{attribute.Bool("success", success)}, attributes...)
	}

	var counter metric.Int64Counter
	switch metricType {
	case MetricApplicationSubmitted:
		counter = m.business(m.ApplicationsSubmitted)
	case MetricValidationFailed:
		counter = m.business(m.ValidationFailures)
	case MetricEmailSent:
		counter = m.business(m.EmailsSent)
	case MetricPDFDownloaded:
		counter = m.business(m.PDFsDownloaded)
	case MetricRateLimitHit:
		if m.custom.Infrastructure.Enabled && m.custom.Infrastructure.TrackRateLimits {
			counter = m.RateLimitHits
		}
	}

	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func (m *Metrics) business(counter metric.Int64Counter) metric.Int64Counter {
	if !m.custom.BusinessMetrics.Enabled {
		return nil
	}
	return counter
}

// SessionOpened and SessionClosed keep the active wizard session gauge current
func (m *Metrics) SessionOpened(ctx context.Context) { m.addSessions(ctx, 1) }

func (m *Metrics) SessionClosed(ctx context.Context) { m.addSessions(ctx, -1) }

func (m *Metrics) addSessions(ctx context.Context, delta int64) {
	if m == nil || m.ActiveSessions == nil || !m.custom.Infrastructure.Enabled || !m.custom.Infrastructure.TrackSessions {
		return
	}
	m.ActiveSessions.Add(ctx, delta)
}
