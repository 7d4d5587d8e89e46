package tenant

import (
	"time"

	"github.com/echterhof/rockstar-web-framework/pkg"
)

// MetricsMiddleware records per-tenant request counters and pool gauges
// through the framework's own pkg.MetricsCollector, tagging the
// tenant.requests, tenant.request.duration and tenant.requests.errors
// metrics with the tenant id the Context Materialiser attached (C7); the
// RecordRequest/RecordError calls and the pool gauge carry no tenant tag. The
// teacher's existing counters/gauges/workload-metrics machinery doubles as
// this system's per-tenant usage signal without a second metrics stack.
func MetricsMiddleware(collector pkg.MetricsCollector, pool *PoolManager) pkg.MiddlewareFunc {
	return func(ctx pkg.Context, next pkg.HandlerFunc) error {
		start := time.Now()
		tenantID := "unknown"
		if rtc, ok := FromContext(ctx); ok {
			tenantID = rtc.TenantID
		}
		tags := map[string]string{"tenantId": tenantID}

		err := next(ctx)

		duration := time.Since(start)
		_ = collector.RecordRequest(ctx, duration, statusCodeOf(err))
		_ = collector.IncrementCounter("tenant.requests", tags)
		_ = collector.RecordTiming("tenant.request.duration", duration, tags)
		if err != nil {
			_ = collector.RecordError(ctx, err)
			_ = collector.IncrementCounter("tenant.requests.errors", tags)
		}
		if pool != nil {
			_ = collector.SetGauge("tenant.pool.live_entries", float64(pool.Stats()), nil)
		}
		return err
	}
}

func statusCodeOf(err error) int {
	if err == nil {
		return 200
	}
	if fwErr, ok := err.(*pkg.FrameworkError); ok && fwErr.StatusCode != 0 {
		return fwErr.StatusCode
	}
	return 500
}
