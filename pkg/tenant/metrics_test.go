package tenant

import (
	"testing"
	"time"

	"github.com/echterhof/rockstar-web-framework/pkg"
)

// fakeMetricsCollector is a minimal pkg.MetricsCollector that records just
// enough to assert MetricsMiddleware wired tenant tags onto it.
type fakeMetricsCollector struct {
	counters map[string]int
	gauges   map[string]float64
	errors   int
}

func newFakeMetricsCollector() *fakeMetricsCollector {
	return &fakeMetricsCollector{counters: make(map[string]int), gauges: make(map[string]float64)}
}

func (f *fakeMetricsCollector) Start(requestID string) *pkg.RequestMetrics { return nil }
func (f *fakeMetricsCollector) Record(metrics *pkg.RequestMetrics) error   { return nil }
func (f *fakeMetricsCollector) RecordRequest(ctx pkg.Context, duration time.Duration, statusCode int) error {
	return nil
}
func (f *fakeMetricsCollector) RecordError(ctx pkg.Context, err error) error {
	f.errors++
	return nil
}
func (f *fakeMetricsCollector) GetMetrics(tenantID string, from, to time.Time) ([]*pkg.WorkloadMetrics, error) {
	return nil, nil
}
func (f *fakeMetricsCollector) GetAggregatedMetrics(tenantID string, from, to time.Time) (*pkg.AggregatedMetrics, error) {
	return nil, nil
}
func (f *fakeMetricsCollector) PredictLoad(tenantID string, duration time.Duration) (*pkg.LoadPrediction, error) {
	return nil, nil
}
func (f *fakeMetricsCollector) RecordWorkloadMetrics(metrics *pkg.WorkloadMetrics) error { return nil }
func (f *fakeMetricsCollector) GetWorkloadMetrics(tenantID string, from, to time.Time) ([]*pkg.WorkloadMetrics, error) {
	return nil, nil
}
func (f *fakeMetricsCollector) IncrementCounter(name string, tags map[string]string) error {
	f.counters[name]++
	return nil
}
func (f *fakeMetricsCollector) IncrementCounterBy(name string, value int64, tags map[string]string) error {
	f.counters[name] += int(value)
	return nil
}
func (f *fakeMetricsCollector) SetGauge(name string, value float64, tags map[string]string) error {
	f.gauges[name] = value
	return nil
}
func (f *fakeMetricsCollector) IncrementGauge(name string, value float64, tags map[string]string) error {
	f.gauges[name] += value
	return nil
}
func (f *fakeMetricsCollector) DecrementGauge(name string, value float64, tags map[string]string) error {
	f.gauges[name] -= value
	return nil
}
func (f *fakeMetricsCollector) RecordHistogram(name string, value float64, tags map[string]string) error {
	return nil
}
func (f *fakeMetricsCollector) RecordTiming(name string, duration time.Duration, tags map[string]string) error {
	return nil
}
func (f *fakeMetricsCollector) StartTimer(name string, tags map[string]string) pkg.Timer { return nil }
func (f *fakeMetricsCollector) RecordMemoryUsage(usage int64) error                       { return nil }
func (f *fakeMetricsCollector) RecordCPUUsage(usage float64) error                        { return nil }
func (f *fakeMetricsCollector) RecordCustomMetric(name string, value interface{}, tags map[string]string) error {
	return nil
}
func (f *fakeMetricsCollector) Export() (map[string]interface{}, error) { return nil, nil }
func (f *fakeMetricsCollector) ExportPrometheus() ([]byte, error)       { return nil, nil }

func TestMetricsMiddleware_RecordsCountersOnSuccess(t *testing.T) {
	collector := newFakeMetricsCollector()
	pool := NewPoolManager()
	mw := MetricsMiddleware(collector, pool)

	d := validDescriptor()
	rtc := &RequestTenantContext{TenantID: d.TenantID, Config: d}
	ctx := newFakeContext(reqWithHost("acme.platform.example.com", "/"))
	ctx.Set(contextKey, rtc)

	next := func(c pkg.Context) error { return nil }
	if err := mw(ctx, next); err != nil {
		t.Fatalf("MetricsMiddleware: %v", err)
	}
	if collector.counters["tenant.requests"] != 1 {
		t.Fatalf("got tenant.requests counter %d, want 1", collector.counters["tenant.requests"])
	}
	if collector.errors != 0 {
		t.Fatalf("expected no errors recorded, got %d", collector.errors)
	}
	if _, ok := collector.gauges["tenant.pool.live_entries"]; !ok {
		t.Fatal("expected a pool gauge to be set")
	}
}

func TestMetricsMiddleware_RecordsErrorOnFailure(t *testing.T) {
	collector := newFakeMetricsCollector()
	mw := MetricsMiddleware(collector, nil)

	ctx := newFakeContext(reqWithHost("api.example.com", "/"))
	next := func(c pkg.Context) error { return NewTenantNotFoundError("acme") }

	if err := mw(ctx, next); err == nil {
		t.Fatal("expected MetricsMiddleware to pass through the handler's error")
	}
	if collector.counters["tenant.requests.errors"] != 1 {
		t.Fatalf("got tenant.requests.errors counter %d, want 1", collector.counters["tenant.requests.errors"])
	}
	if collector.errors != 1 {
		t.Fatalf("got RecordError calls %d, want 1", collector.errors)
	}
}

func TestStatusCodeOf(t *testing.T) {
	if got := statusCodeOf(nil); got != 200 {
		t.Fatalf("got %d, want 200 for a nil error", got)
	}
	fwErr := NewTenantNotFoundError("acme")
	if got := statusCodeOf(fwErr); got != fwErr.StatusCode {
		t.Fatalf("got %d, want the framework error's own status code %d", got, fwErr.StatusCode)
	}
}
