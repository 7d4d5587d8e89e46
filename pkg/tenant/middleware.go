package tenant

import (
	"os"
	"strings"

	"github.com/echterhof/rockstar-web-framework/pkg"
)

// contextKey is the Context.Set/Get key the materializer attaches the
// resolved tenant context under (§4.6 step 6).
const contextKey = "tenant.context"

// RequestTenantContext is the richer per-request record the kernel attaches
// to every identified request: resolved id, subdomain, identification
// method, descriptor snapshot and the loaded env file (nil when none was
// loaded). It holds no database pool handle. It is separate from the
// framework's single *pkg.Tenant field, which has no room for a descriptor
// snapshot.
type RequestTenantContext struct {
	TenantID  string
	Subdomain string
	Method    IdentificationMethod
	Config    *Descriptor
	Env       *LoadedEnv
}

// FromContext retrieves the materialized tenant context attached by
// Middleware, if any.
func FromContext(ctx pkg.Context) (*RequestTenantContext, bool) {
	v, ok := ctx.Get(contextKey)
	if !ok {
		return nil, false
	}
	rtc, ok := v.(*RequestTenantContext)
	return rtc, ok
}

// Kernel wires the identification pipeline, config store, env file manager,
// domain mapper and pool manager (C2-C6), plus the optional Security Gate
// (C9) and plugin hooks, into the request pipeline the Context Materialiser
// (C7) runs.
type Kernel struct {
	Identifier   *Identifier
	ConfigStore  *ConfigStore
	EnvManager   *EnvFileManager
	DomainMapper *DomainMapper
	Pool         *PoolManager

	// RequireTenant, when true, causes an unresolved identification to
	// fail with TenantRequired rather than proceed untenanted.
	RequireTenant bool

	// FallbackTenant substitutes a fixed tenant id when identification
	// fails and RequireTenant is false, for local/dev single-tenant runs.
	FallbackTenant string

	// LegacyApplyEnv mirrors the env file onto the process environment via
	// os.Setenv on every request instead of a request-scoped view, for
	// compatibility with code that still reads os.Getenv directly. Off by
	// default; see "Open Question decisions" in DESIGN.md.
	LegacyApplyEnv bool

	// AdminTenantID is the fixed tenant id admin routes resolve to instead
	// of running identification (§6).
	AdminTenantID string

	// Gate enforces the C9 IP allow-list and rate limits on every request
	// that reaches the middleware. Nil disables both checks.
	Gate *SecurityGate

	// Plugins runs the framework's pre_request/post_request hooks once a
	// tenant context has been materialized, so a plugin handler can read
	// FromContext(ctx) to act per-tenant. Nil disables hook execution.
	Plugins pkg.HookSystem
}

// NewKernel wires a Kernel from its already-constructed components.
func NewKernel(identifier *Identifier, store *ConfigStore, env *EnvFileManager, domains *DomainMapper, pool *PoolManager) *Kernel {
	return &Kernel{
		Identifier:    identifier,
		ConfigStore:   store,
		EnvManager:    env,
		DomainMapper:  domains,
		Pool:          pool,
		AdminTenantID: "admin",
	}
}

// Middleware returns the pkg.MiddlewareFunc that runs the Context
// Materialiser (C7) ahead of every non-bypassed handler: identification,
// descriptor load and status check, env file load, then attaching the
// RequestTenantContext and the X-Tenant-* headers. It does not open the
// tenant's database pool.
func (k *Kernel) Middleware() pkg.MiddlewareFunc {
	return func(ctx pkg.Context, next pkg.HandlerFunc) error {
		req := ctx.Request()
		path := requestPath(req)

		if k.Gate != nil {
			clientIP := normalizeClientIP(req)
			if !k.Gate.CheckIPAllowed(clientIP) {
				k.Gate.Audit(AuditUnauthorized, "", "reason", "ip_not_allowed", "path", path)
				return writeFrameworkError(ctx, NewTenantRequiredError())
			}
			decision := k.Gate.CheckClientRateLimit(clientIP)
			ApplyRateLimitHeaders(ctx, decision)
			if !decision.Allowed {
				k.Gate.Audit(AuditRateLimit, "", "path", path)
				return writeFrameworkError(ctx, NewRateLimitExceededError(decision.Limit, decision.Remaining, decision.ResetSecs))
			}
		}

		if k.Identifier.Bypassed(path) {
			return next(ctx)
		}

		if isAdminRoute(path) {
			return k.attachAndContinue(ctx, next, k.AdminTenantID, MethodNone)
		}

		result := k.identify(ctx)

		tenantID := result.TenantID
		method := result.Method
		if tenantID == "" {
			if k.RequireTenant {
				return writeFrameworkError(ctx, NewTenantRequiredError())
			}
			if k.FallbackTenant == "" {
				return next(ctx)
			}
			tenantID = k.FallbackTenant
			method = MethodNone
		}

		return k.attachAndContinue(ctx, next, tenantID, method)
	}
}

func (k *Kernel) identify(ctx pkg.Context) Result {
	return k.Identifier.Identify(ctx.Request())
}

func (k *Kernel) attachAndContinue(ctx pkg.Context, next pkg.HandlerFunc, tenantID string, method IdentificationMethod) error {
	descriptor, err := k.ConfigStore.Get(tenantID)
	if err != nil {
		if err == errNotFound {
			return writeFrameworkError(ctx, NewTenantNotFoundError(tenantID))
		}
		return writeFrameworkError(ctx, NewTenantConfigInvalidError(err.Error()))
	}

	if descriptor.Status != StatusActive && tenantID != k.AdminTenantID {
		return writeFrameworkError(ctx, NewTenantUnavailableError(tenantID, descriptor.Status))
	}

	if k.Gate != nil {
		k.Gate.Audit(AuditTenantAccess, tenantID, "method", string(method))
		decision := k.Gate.CheckTenantRateLimit(tenantID, &descriptor.Security.RateLimit)
		ApplyRateLimitHeaders(ctx, decision)
		if !decision.Allowed {
			k.Gate.Audit(AuditRateLimit, tenantID)
			return writeFrameworkError(ctx, NewRateLimitExceededError(decision.Limit, decision.Remaining, decision.ResetSecs))
		}
	}

	var env *LoadedEnv
	if k.EnvManager != nil && descriptor.Domain != "" {
		envFile := envFileName(descriptor.Domain)
		loaded, err := k.EnvManager.Load(envFile, descriptor.Domain, tenantID)
		if err == nil {
			env = loaded
			if k.LegacyApplyEnv {
				applyEnvLegacy(env.Config)
			}
		}
	}

	rtc := &RequestTenantContext{
		TenantID:  tenantID,
		Subdomain: descriptor.Subdomain,
		Method:    method,
		Config:    descriptor,
		Env:       env,
	}
	ctx.Set(contextKey, rtc)

	ctx.SetHeader("X-Tenant-ID", tenantID)
	ctx.SetHeader("X-Tenant-Method", string(method))

	if k.Plugins != nil {
		if err := k.Plugins.ExecuteHooks(pkg.HookTypePreRequest, ctx); err != nil && k.Gate != nil {
			k.Gate.Audit(AuditUnauthorized, tenantID, "reason", "pre_request_hook_error", "error", err.Error())
		}
	}

	err = next(ctx)

	if k.Plugins != nil {
		if hookErr := k.Plugins.ExecuteHooks(pkg.HookTypePostRequest, ctx); hookErr != nil && k.Gate != nil {
			k.Gate.Audit(AuditUnauthorized, tenantID, "reason", "post_request_hook_error", "error", hookErr.Error())
		}
	}

	return err
}

func requestPath(req *pkg.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	return req.URL.Path
}

func isAdminRoute(path string) bool {
	return strings.HasPrefix(path, "/admin/tenant")
}

func writeFrameworkError(ctx pkg.Context, err *pkg.FrameworkError) error {
	return ctx.JSON(err.StatusCode, err)
}

// applyEnvLegacy mirrors a loaded env onto the process environment, for
// the "legacy apply" escape hatch named in §4.6 step 4 / §9. Off by
// default since it mutates global state on the hot path.
func applyEnvLegacy(config map[string]string) {
	for k, v := range config {
		os.Setenv(k, v)
	}
}
