package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ConsoleMetrics tracks catalog console activity.
// A nil *ConsoleMetrics records nothing, so components can run without metrics.
type ConsoleMetrics struct {
	apiRequests   *Counter
	apiDuration   *Histogram
	printJobs     *Counter
	printDuration *Histogram
	staleLoads    *Counter
	notifications *Counter
}

// NewConsoleMetrics registers the console instruments on meter.
func NewConsoleMetrics(meter metric.Meter) (*ConsoleMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &ConsoleMetrics{}
	var err error

	if m.apiRequests, err = NewCounter(meter,
		"catalog_api_requests_total",
		"Number of requests sent to the catalog endpoints",
		"{request}"); err != nil {
		return nil, err
	}
	if m.apiDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "catalog_api_request_duration_seconds",
		Description: "Latency of catalog endpoint requests",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.printJobs, err = NewCounter(meter,
		"label_print_jobs_total",
		"Number of barcode print attempts by path and status",
		"{job}"); err != nil {
		return nil, err
	}
	if m.printDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "label_print_duration_seconds",
		Description: "Time spent dispatching a barcode print",
		Unit:        "s",
		Boundaries:  PrintDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.staleLoads, err = NewCounter(meter,
		"catalog_stale_loads_total",
		"Number of list loads discarded because a newer load was issued",
		"{load}"); err != nil {
		return nil, err
	}
	if m.notifications, err = NewCounter(meter,
		"catalog_notifications_total",
		"Number of notifications shown to the operator",
		"{notification}"); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordAPICall records one catalog endpoint request. Status 0 means the
// request never got a response.
func (m *ConsoleMetrics) RecordAPICall(ctx context.Context, endpoint, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrEndpoint.String(endpoint),
		AttrHTTPMethod.String(method),
		AttrHTTPStatusCode.Int(status),
	}
	m.apiRequests.Inc(ctx, attrs...)
	m.apiDuration.RecordDuration(ctx, d, attrs...)
}

// RecordPrint records the outcome of a print dispatch
func (m *ConsoleMetrics) RecordPrint(ctx context.Context, format, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrBarcodeFormat.String(format),
		AttrPrintPath.String(path),
		AttrPrintStatus.String(status),
	}
	m.printJobs.Inc(ctx, attrs...)
	m.printDuration.RecordDuration(ctx, d, attrs...)
}

// RecordStaleLoad counts a load result that was discarded
func (m *ConsoleMetrics) RecordStaleLoad(ctx context.Context) {
	if m == nil {
		return
	}
	m.staleLoads.Inc(ctx)
}

// RecordNotification counts a notification by operation and level
func (m *ConsoleMetrics) RecordNotification(ctx context.Context, operation, level string) {
	if m == nil {
		return
	}
	m.notifications.Inc(ctx, AttrOperation.String(operation), AttrNoticeLevel.String(level))
}
