package tenant

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/echterhof/rockstar-web-framework/pkg"
)

// RegisterRoutes wires every route named in spec.md §6 onto router: public
// health/meta, tenant introspection, and the admin surface. Tenant-scoped
// application routes are registered by the host application itself; only
// the routes this system owns directly are wired here, the same way
// setupRoutes in the teacher's cmd/rockstar/main.go wires its own routes
// alongside whatever the embedding app adds.
func RegisterRoutes(router pkg.RouterEngine, kernel *Kernel, admin *AdminService, gate *SecurityGate, version string) {
	router.GET("/health", handleHealth(version))
	router.GET("/api/health", handleHealth(version))

	router.GET("/tenant/info", handleTenantInfo)
	router.GET("/tenant/stats", handleTenantStats(kernel.Pool))

	adminGroup := router.Group("/admin")
	adminGroup.GET("/tenants", handleAdminList(admin))
	adminGroup.GET("/tenants/summary", handleAdminListSummary(admin))
	adminGroup.POST("/tenant/create", handleAdminCreate(admin))
	adminGroup.GET("/tenant/:id", handleAdminGet(admin))
	adminGroup.PUT("/tenant/:id", handleAdminUpdate(admin))
	adminGroup.POST("/tenant/:id/suspend", handleAdminSuspend(admin))
	adminGroup.POST("/tenant/:id/activate", handleAdminActivate(admin))
	adminGroup.POST("/tenant/:id/archive", handleAdminArchive(admin))
	adminGroup.DELETE("/tenant/:id", handleAdminDelete(admin))
	adminGroup.GET("/tenant/:id/export", handleAdminExport(admin))
	adminGroup.GET("/tenant/:id/usage", handleAdminUsage(admin))
	adminGroup.GET("/health", handleAdminHealth(admin))
}

// handleHealth serves the public health/meta routes, which bypass tenant
// identification entirely (§6).
func handleHealth(version string) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		return ctx.JSON(http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   version,
		})
	}
}

// handleTenantInfo returns the public, non-secret view of the resolved
// tenant named in §6.
func handleTenantInfo(ctx pkg.Context) error {
	rtc, ok := FromContext(ctx)
	if !ok {
		return ctx.JSON(http.StatusNotFound, NewTenantRequiredError())
	}
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"tenantId":  rtc.TenantID,
		"subdomain": rtc.Subdomain,
		"database":  rtc.Config.DB.Database,
		"status":    rtc.Config.Status,
		"features":  rtc.Config.Features,
		"method":    rtc.Method,
	})
}

// handleTenantStats returns pool and descriptor-derived stats for the
// resolved tenant (§6).
func handleTenantStats(pool *PoolManager) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		rtc, ok := FromContext(ctx)
		if !ok {
			return ctx.JSON(http.StatusNotFound, NewTenantRequiredError())
		}
		return ctx.JSON(http.StatusOK, map[string]interface{}{
			"tenantId":      rtc.TenantID,
			"status":        rtc.Config.Status,
			"limits":        rtc.Config.Limits,
			"poolLiveTotal": pool.Stats(),
		})
	}
}

func handleAdminList(admin *AdminService) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		list, err := admin.List()
		if err != nil {
			return writeFrameworkError(ctx, NewTenantConfigInvalidError(err.Error()))
		}
		redacted := make([]*Descriptor, 0, len(list))
		for _, d := range list {
			redacted = append(redacted, RedactDescriptor(d))
		}
		return ctx.JSON(http.StatusOK, redacted)
	}
}

func handleAdminListSummary(admin *AdminService) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		list, err := admin.ListSummary()
		if err != nil {
			return writeFrameworkError(ctx, NewTenantConfigInvalidError(err.Error()))
		}
		return ctx.JSON(http.StatusOK, list)
	}
}

func handleAdminCreate(admin *AdminService) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		var req CreateRequest
		if err := decodeJSONBody(ctx, &req); err != nil {
			return writeFrameworkError(ctx, NewTenantConfigInvalidError(err.Error()))
		}
		d, err := admin.Create(req)
		if err != nil {
			return writeAdminError(ctx, err)
		}
		return ctx.JSON(http.StatusCreated, RedactDescriptor(d))
	}
}

func handleAdminGet(admin *AdminService) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		d, err := admin.Get(ctx.Param("id"))
		if err != nil {
			return writeAdminError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, RedactDescriptor(d))
	}
}

func handleAdminUpdate(admin *AdminService) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		var patch Descriptor
		if err := decodeJSONBody(ctx, &patch); err != nil {
			return writeFrameworkError(ctx, NewTenantConfigInvalidError(err.Error()))
		}
		d, err := admin.Update(ctx.Param("id"), func(d *Descriptor) {
			if patch.Name != "" {
				d.Name = patch.Name
			}
			if patch.Domain != "" {
				d.Domain = patch.Domain
			}
			d.Features = patch.Features
			d.Limits = patch.Limits
			d.Branding = patch.Branding
			d.SEO = patch.SEO
		})
		if err != nil {
			return writeAdminError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, RedactDescriptor(d))
	}
}

func handleAdminSuspend(admin *AdminService) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		d, err := admin.Suspend(ctx.Param("id"))
		if err != nil {
			return writeAdminError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, RedactDescriptor(d))
	}
}

func handleAdminActivate(admin *AdminService) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		d, err := admin.Activate(ctx.Param("id"))
		if err != nil {
			return writeAdminError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, RedactDescriptor(d))
	}
}

func handleAdminArchive(admin *AdminService) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		d, err := admin.Archive(ctx.Param("id"))
		if err != nil {
			return writeAdminError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, RedactDescriptor(d))
	}
}

func handleAdminDelete(admin *AdminService) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		if err := admin.Delete(ctx.Param("id")); err != nil {
			return writeAdminError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]interface{}{"deleted": true})
	}
}

func handleAdminExport(admin *AdminService) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		d, err := admin.ExportConfig(ctx.Param("id"))
		if err != nil {
			return writeAdminError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, d)
	}
}

func handleAdminUsage(admin *AdminService) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		var usage UsageCounts
		_ = decodeJSONBody(ctx, &usage)
		result, err := admin.CheckUsageLimits(ctx.Param("id"), usage)
		if err != nil {
			return writeAdminError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, result)
	}
}

func handleAdminHealth(admin *AdminService) pkg.HandlerFunc {
	return func(ctx pkg.Context) error {
		reports := admin.HealthCheck(ctx.Context())
		return ctx.JSON(http.StatusOK, reports)
	}
}

func writeAdminError(ctx pkg.Context, err error) error {
	if err == errNotFound {
		return writeFrameworkError(ctx, NewTenantNotFoundError(ctx.Param("id")))
	}
	if fwErr, ok := err.(*pkg.FrameworkError); ok {
		return writeFrameworkError(ctx, fwErr)
	}
	return writeFrameworkError(ctx, NewTenantConfigInvalidError(err.Error()))
}

func decodeJSONBody(ctx pkg.Context, v interface{}) error {
	body := ctx.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}
