package tenant

import (
	"regexp"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/echterhof/rockstar-web-framework/pkg"
)

var tenantIDFormat = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)

// defaultBypassPaths is the fixed bypass list from §4.4; a configurable
// additional skip list is merged in by callers via Identifier.SkipPaths.
var defaultBypassPaths = []string{
	"/api/health", "/api/system", "/api/admin/tenants",
	"/_next", "/favicon.ico", "/robots.txt", "/sitemap.xml",
}

var tenantPathPattern = regexp.MustCompile(`^/tenant/([^/]+)`)

// Identifier runs the six identification strategies in order, stopping at
// the first that resolves. It is stateless and side-effect free per §4.4.
type Identifier struct {
	store     *ConfigStore
	SkipPaths []string
}

// NewIdentifier builds an Identifier backed by store for the custom-domain
// and subdomain strategies and for looking up a claimed tenant's JWT secret.
func NewIdentifier(store *ConfigStore) *Identifier {
	return &Identifier{store: store}
}

// Result is the outcome of running the pipeline against one request.
type Result struct {
	TenantID string
	Method   IdentificationMethod
}

// Bypassed reports whether path is on the bypass list and should skip
// identification entirely.
func (id *Identifier) Bypassed(path string) bool {
	if strings.HasPrefix(path, "/.well-known/") {
		return true
	}
	for _, p := range defaultBypassPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	for _, p := range id.SkipPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Identify resolves req to a tenant id using strategies 1-6, stopping at the
// first non-nil result.
func (id *Identifier) Identify(req *pkg.Request) Result {
	host := stripPort(req.Host)

	if tenantID, ok := id.store.FindByDomain(host); ok {
		return Result{TenantID: tenantID, Method: MethodCustomDomain}
	}

	if tenantID, ok := id.subdomainStrategy(host); ok {
		return Result{TenantID: tenantID, Method: MethodSubdomain}
	}

	if tenantID, ok := id.headerStrategy(req); ok {
		return Result{TenantID: tenantID, Method: MethodHeader}
	}

	if tenantID, ok := id.bearerStrategy(req); ok {
		return Result{TenantID: tenantID, Method: MethodBearer}
	}

	if tenantID, ok := id.pathStrategy(req.URL.Path); ok {
		return Result{TenantID: tenantID, Method: MethodPath}
	}

	if tenantID, ok := id.queryStrategy(req); ok {
		return Result{TenantID: tenantID, Method: MethodQuery}
	}

	return Result{Method: MethodNone}
}

func (id *Identifier) subdomainStrategy(host string) (string, bool) {
	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return "", false
	}
	label := labels[0]
	if identificationReservedLabels[label] {
		return "", false
	}
	return id.store.FindBySubdomain(label)
}

func (id *Identifier) headerStrategy(req *pkg.Request) (string, bool) {
	v := req.Header.Get("X-Tenant-ID")
	if v == "" || !tenantIDFormat.MatchString(v) {
		return "", false
	}
	return v, true
}

func (id *Identifier) bearerStrategy(req *pkg.Request) (string, bool) {
	auth := req.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	raw := strings.TrimPrefix(auth, prefix)

	// Parse claims without verifying to discover the claimed tenant, then
	// verify the signature against that specific tenant's secret: the
	// signing key is unknown until the claim is read.
	unverified, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return "", false
	}
	claims, ok := unverified.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	tenantID, _ := claims["tenantId"].(string)
	if tenantID == "" {
		tenantID, _ = claims["tenant"].(string)
	}
	if tenantID == "" || !tenantIDFormat.MatchString(tenantID) {
		return "", false
	}

	descriptor, err := id.store.Get(tenantID)
	if err != nil || descriptor.Security.JWTSecret == "" {
		return "", false
	}

	_, err = jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, NewInvalidTenantTokenError("unexpected signing method")
		}
		return []byte(descriptor.Security.JWTSecret), nil
	})
	if err != nil {
		return "", false
	}

	return tenantID, true
}

func (id *Identifier) pathStrategy(path string) (string, bool) {
	m := tenantPathPattern.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (id *Identifier) queryStrategy(req *pkg.Request) (string, bool) {
	if v := req.Query["tenant"]; v != "" {
		return v, true
	}
	if v := req.Query["t"]; v != "" {
		return v, true
	}
	if req.URL != nil {
		q := req.URL.Query()
		if v := q.Get("tenant"); v != "" {
			return v, true
		}
		if v := q.Get("t"); v != "" {
			return v, true
		}
	}
	return "", false
}

func stripPort(host string) string {
	if i := strings.LastIndex(host, ":"); i != -1 && !strings.Contains(host[i+1:], "]") {
		return host[:i]
	}
	return host
}
