package tenant

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/echterhof/rockstar-web-framework/pkg"
)

// AuditEvent names one of the structured events the gate logs, per spec.md §4.8.
type AuditEvent string

const (
	AuditTenantAccess     AuditEvent = "TENANT_ACCESS"
	AuditConfigLoaded     AuditEvent = "CONFIG_LOADED"
	AuditDBConnection     AuditEvent = "DB_CONNECTION"
	AuditRateLimit        AuditEvent = "RATE_LIMIT"
	AuditUnauthorized     AuditEvent = "UNAUTHORIZED"
	AuditSecurityViolation AuditEvent = "SECURITY_VIOLATION"
)

// rateLimitEntry is a fixed-window counter, the same shape as
// inMemoryRateLimitStorage.rateLimitEntry in pkg/security_storage_memory.go,
// generalized here to key on either a raw client IP or a tenant id.
type rateLimitEntry struct {
	count     int
	windowEnd time.Time
}

// gateRateLimitPolicy is one fixed-window limit: limit requests per window.
type gateRateLimitPolicy struct {
	limit  int
	window time.Duration
}

// RateLimitDecision carries the X-RateLimit-* header values for the caller
// to attach regardless of outcome.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetSecs int64
}

// sqlDangerPatterns is the closed set of stripped patterns from spec.md §4.8:
// trailing DDL/DML statement injection, UNION SELECT, and comment delimiters.
var sqlDangerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*(drop|delete|truncate|alter|create|insert|update)\b`),
	regexp.MustCompile(`(?i)\bunion\s+select\b`),
	regexp.MustCompile(`--[^\n]*`),
	regexp.MustCompile(`/\*.*?\*/`),
}

// secretFieldPattern matches configuration keys that must never cross a
// trust boundary unredacted, per spec.md §4.8's `/(secret|key|password)/i`.
var secretFieldPattern = regexp.MustCompile(`(?i)(secret|key|password)`)

const redactionMarker = "***REDACTED***"

// SecurityGate is the Security Gate (C9): rate limiting, query sanitisation,
// secret redaction, IP allow-listing, and audit logging, all request-scoped
// and shared across tenants.
type SecurityGate struct {
	mu     sync.Mutex
	limits map[string]*rateLimitEntry

	IPPolicy     gateRateLimitPolicy
	TenantPolicy gateRateLimitPolicy

	allowedCIDRs []*net.IPNet

	Logger pkg.Logger
}

// NewSecurityGate builds a gate with the spec default of 100 requests per 15
// minutes per client IP, and the same default reused per-tenant unless a
// descriptor supplies its own RateLimitPolicy.
func NewSecurityGate(logger pkg.Logger) *SecurityGate {
	return &SecurityGate{
		limits: make(map[string]*rateLimitEntry),
		IPPolicy: gateRateLimitPolicy{
			limit:  100,
			window: 15 * time.Minute,
		},
		TenantPolicy: gateRateLimitPolicy{
			limit:  100,
			window: 15 * time.Minute,
		},
		Logger: logger,
	}
}

// SetAllowedCIDRs installs the optional IP allow-list. An empty list disables
// the check entirely (the default).
func (g *SecurityGate) SetAllowedCIDRs(cidrs []string) error {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			return fmt.Errorf("tenant: invalid CIDR %q: %w", c, err)
		}
		nets = append(nets, n)
	}
	g.mu.Lock()
	g.allowedCIDRs = nets
	g.mu.Unlock()
	return nil
}

// CheckIPAllowed enforces the IP allow-list, when one is configured.
func (g *SecurityGate) CheckIPAllowed(remoteAddr string) bool {
	g.mu.Lock()
	nets := g.allowedCIDRs
	g.mu.Unlock()

	if len(nets) == 0 {
		return true
	}

	ip := net.ParseIP(stripPort(remoteAddr))
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// CheckClientRateLimit enforces the fixed-window limit keyed by client IP.
func (g *SecurityGate) CheckClientRateLimit(clientIP string) RateLimitDecision {
	return g.check("ip:"+clientIP, g.IPPolicy)
}

// CheckTenantRateLimit enforces a tenant-scoped limit, using policy if the
// descriptor supplies one, else the gate's tenant default.
func (g *SecurityGate) CheckTenantRateLimit(tenantID string, policy *RateLimitPolicy) RateLimitDecision {
	p := g.TenantPolicy
	if policy != nil && policy.Requests > 0 && policy.Window > 0 {
		p = gateRateLimitPolicy{limit: policy.Requests, window: policy.Window}
	}
	return g.check("tenant:"+tenantID, p)
}

func (g *SecurityGate) check(key string, policy gateRateLimitPolicy) RateLimitDecision {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	entry, ok := g.limits[key]
	if !ok || !entry.windowEnd.After(now) {
		entry = &rateLimitEntry{count: 0, windowEnd: now.Add(policy.window)}
		g.limits[key] = entry
	}

	if entry.count >= policy.limit {
		return RateLimitDecision{
			Allowed:   false,
			Limit:     policy.limit,
			Remaining: 0,
			ResetSecs: int64(entry.windowEnd.Sub(now).Seconds()),
		}
	}

	entry.count++
	return RateLimitDecision{
		Allowed:   true,
		Limit:     policy.limit,
		Remaining: policy.limit - entry.count,
		ResetSecs: int64(entry.windowEnd.Sub(now).Seconds()),
	}
}

// ApplyRateLimitHeaders sets X-RateLimit-{Limit,Remaining,Reset} on ctx, per
// spec.md §6, regardless of whether the request was allowed.
func ApplyRateLimitHeaders(ctx pkg.Context, d RateLimitDecision) {
	ctx.SetHeader("X-RateLimit-Limit", fmt.Sprintf("%d", d.Limit))
	ctx.SetHeader("X-RateLimit-Remaining", fmt.Sprintf("%d", d.Remaining))
	ctx.SetHeader("X-RateLimit-Reset", fmt.Sprintf("%d", d.ResetSecs))
	if !d.Allowed {
		ctx.SetHeader("Retry-After", fmt.Sprintf("%d", d.ResetSecs))
	}
}

// evictExpired drops every window that has closed. Nothing in this package
// calls it; check replaces a closed window only when its own key is seen
// again.
func (g *SecurityGate) evictExpired() {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	for k, e := range g.limits {
		if !e.windowEnd.After(now) {
			delete(g.limits, k)
		}
	}
}

// SanitizeQuery strips the closed set of dangerous patterns from spec.md
// §4.8 before an ad-hoc query is forwarded, and reports whether anything was
// stripped — presence of a stripped pattern is itself a security event.
func SanitizeQuery(query string) (clean string, hit bool) {
	clean = query
	for _, p := range sqlDangerPatterns {
		if p.MatchString(clean) {
			hit = true
			clean = p.ReplaceAllString(clean, "")
		}
	}
	return clean, hit
}

// RedactSecrets returns a copy of m with every key matching
// /(secret|key|password)/i replaced by the fixed redaction marker, for
// exports, headers, and log lines that cross a trust boundary.
func RedactSecrets(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if secretFieldPattern.MatchString(k) {
			out[k] = redactionMarker
		} else {
			out[k] = v
		}
	}
	return out
}

// RedactDescriptor returns a shallow copy of d with security.*,
// database.password and smtp.password replaced by the fixed marker, for
// exportConfig (§4.7). Maps, slices and pointer fields of the copy are shared
// with d.
func RedactDescriptor(d *Descriptor) *Descriptor {
	cp := *d
	cp.DB.Password = redactionMarker
	cp.Security.JWTSecret = redactionMarker
	cp.Security.EncryptionKey = redactionMarker
	cp.Security.SessionSecret = redactionMarker
	cp.Security.APIKey = redactionMarker
	cp.SMTP.Password = redactionMarker
	return &cp
}

// Audit emits one structured audit record via the framework logger, matching
// the taxonomy named in spec.md §4.8.
func (g *SecurityGate) Audit(event AuditEvent, tenantID string, fields ...interface{}) {
	if g.Logger == nil {
		return
	}
	args := append([]interface{}{"event", string(event), "tenantId", tenantID}, fields...)
	switch event {
	case AuditUnauthorized, AuditSecurityViolation, AuditRateLimit:
		g.Logger.Warn("tenant audit event", args...)
	default:
		g.Logger.Info("tenant audit event", args...)
	}
}

// IsSensitiveField reports whether key would be redacted by RedactSecrets,
// used by callers that build log lines field-by-field instead of from a map.
func IsSensitiveField(key string) bool {
	return secretFieldPattern.MatchString(key)
}

// normalizeClientIP mirrors securityManagerImpl.getClientIdentifier's
// X-Forwarded-For / X-Real-IP / RemoteAddr precedence, returning a bare IP
// with no scheme prefix for use as a rate-limit key.
func normalizeClientIP(req *pkg.Request) string {
	if req == nil {
		return "unknown"
	}
	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := req.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return stripPort(req.RemoteAddr)
}
