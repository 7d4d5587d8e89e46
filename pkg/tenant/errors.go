package tenant

import (
	"errors"
	"net/http"
	"strings"

	"github.com/echterhof/rockstar-web-framework/pkg"
)

// Error codes for the taxonomy in spec §7 that the framework's own
// pkg/errors.go does not already define (ErrCodeTenantNotFound and
// ErrCodeRateLimitExceeded are reused directly).
const (
	ErrCodeTenantRequired          = "TENANT_REQUIRED"
	ErrCodeTenantConfigInvalid     = "TENANT_CONFIG_INVALID"
	ErrCodeTenantUnavailable       = "TENANT_UNAVAILABLE"
	ErrCodeUnauthorizedTenant      = "UNAUTHORIZED_TENANT_ACCESS"
	ErrCodeDatabaseConnectionFail  = "DATABASE_CONNECTION_FAILED"
	ErrCodeTenantDatabaseError     = "TENANT_DATABASE_ERROR"
	ErrCodeInvalidTenantToken      = "INVALID_TENANT_TOKEN"
	ErrCodeSecurityViolation       = "SECURITY_VIOLATION"
	ErrCodeTenantCreationFailed    = "TENANT_CREATION_FAILED"
)

// NewTenantRequiredError reports that no tenant could be identified and one
// was required for the requested route.
func NewTenantRequiredError() *pkg.FrameworkError {
	return &pkg.FrameworkError{
		Code:       ErrCodeTenantRequired,
		Message:    "request could not be associated with a tenant",
		StatusCode: http.StatusBadRequest,
		I18nKey:    "error.tenant.required",
	}
}

// NewTenantNotFoundError reports that the resolved tenant id has no descriptor.
func NewTenantNotFoundError(tenantID string) *pkg.FrameworkError {
	return &pkg.FrameworkError{
		Code:       pkg.ErrCodeTenantNotFound,
		Message:    "tenant not found: " + tenantID,
		StatusCode: http.StatusNotFound,
		I18nKey:    "error.tenant.not_found",
		Details:    map[string]interface{}{"tenantId": tenantID},
	}
}

// NewTenantConfigInvalidError wraps a descriptor parse/validation failure.
func NewTenantConfigInvalidError(message string) *pkg.FrameworkError {
	return &pkg.FrameworkError{
		Code:       ErrCodeTenantConfigInvalid,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		I18nKey:    "error.tenant.config_invalid",
	}
}

// NewTenantUnavailableError reports a non-active tenant status.
func NewTenantUnavailableError(tenantID string, status Status) *pkg.FrameworkError {
	return &pkg.FrameworkError{
		Code:       ErrCodeTenantUnavailable,
		Message:    "tenant is not active: " + string(status),
		StatusCode: http.StatusForbidden,
		I18nKey:    "error.tenant.unavailable",
		Details:    map[string]interface{}{"tenantId": tenantID, "status": string(status)},
	}
}

// NewUnauthorizedTenantAccessError reports a driver-level access-denied signal.
func NewUnauthorizedTenantAccessError(tenantID string, cause error) *pkg.FrameworkError {
	e := &pkg.FrameworkError{
		Code:       ErrCodeUnauthorizedTenant,
		Message:    "unauthorized access to tenant database",
		StatusCode: http.StatusForbidden,
		I18nKey:    "error.tenant.unauthorized",
		Details:    map[string]interface{}{"tenantId": tenantID},
	}
	if cause != nil {
		e.Cause = cause
	}
	return e
}

// NewDatabaseConnectionFailedError reports a connectivity failure to a
// tenant's database server, or pool exhaustion.
func NewDatabaseConnectionFailedError(tenantID string, cause error) *pkg.FrameworkError {
	e := &pkg.FrameworkError{
		Code:       ErrCodeDatabaseConnectionFail,
		Message:    "failed to connect to tenant database",
		StatusCode: http.StatusServiceUnavailable,
		I18nKey:    "error.tenant.database_connection_failed",
		Details:    map[string]interface{}{"tenantId": tenantID},
	}
	if cause != nil {
		e.Cause = cause
	}
	return e
}

// NewTenantDatabaseError reports a generic tenant-database failure.
func NewTenantDatabaseError(tenantID string, cause error) *pkg.FrameworkError {
	e := &pkg.FrameworkError{
		Code:       ErrCodeTenantDatabaseError,
		Message:    "tenant database error",
		StatusCode: http.StatusInternalServerError,
		I18nKey:    "error.tenant.database_error",
		Details:    map[string]interface{}{"tenantId": tenantID},
	}
	if cause != nil {
		e.Cause = cause
	}
	return e
}

// NewRateLimitExceededError reports that the Security Gate's rate limiter
// rejected the request.
func NewRateLimitExceededError(limit, remaining int, resetSeconds int64) *pkg.FrameworkError {
	return &pkg.FrameworkError{
		Code:       pkg.ErrCodeRateLimitExceeded,
		Message:    "rate limit exceeded",
		StatusCode: http.StatusTooManyRequests,
		I18nKey:    "error.rate_limit.exceeded",
		Details: map[string]interface{}{
			"limit":     limit,
			"remaining": remaining,
			"resetSecs": resetSeconds,
		},
	}
}

// NewInvalidTenantTokenError reports a bearer token that failed verification
// or lacked a tenant claim.
func NewInvalidTenantTokenError(reason string) *pkg.FrameworkError {
	return &pkg.FrameworkError{
		Code:       ErrCodeInvalidTenantToken,
		Message:    "invalid tenant token: " + reason,
		StatusCode: http.StatusUnauthorized,
		I18nKey:    "error.tenant.invalid_token",
	}
}

// NewSecurityViolationError reports a blocked input (sanitisation hit, IP
// denylist hit).
func NewSecurityViolationError(reason string) *pkg.FrameworkError {
	return &pkg.FrameworkError{
		Code:       ErrCodeSecurityViolation,
		Message:    "security violation: " + reason,
		StatusCode: http.StatusBadRequest,
		I18nKey:    "error.tenant.security_violation",
	}
}

// NewTenantCreationFailedError reports an unrecoverable failure during
// Admin Service create, after any compensation for already-completed steps
// has run.
func NewTenantCreationFailedError(message string, cause error) *pkg.FrameworkError {
	e := &pkg.FrameworkError{
		Code:       ErrCodeTenantCreationFailed,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		I18nKey:    "error.tenant.creation_failed",
	}
	if cause != nil {
		e.Cause = cause
	}
	return e
}

// ClassifyDatabaseError maps a driver-reported error into the taxonomy
// entry named in spec §7, using driver-agnostic substring signals since the
// four supported drivers (mysql, postgres, mssql, sqlite) do not share a
// sentinel error type.
func ClassifyDatabaseError(tenantID string, err error) *pkg.FrameworkError {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "too many connections"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "context deadline exceeded"):
		return NewDatabaseConnectionFailedError(tenantID, err)
	case strings.Contains(msg, "access denied"),
		strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "authentication failed"),
		strings.Contains(msg, "password authentication failed"):
		return NewUnauthorizedTenantAccessError(tenantID, err)
	case strings.Contains(msg, "unknown database"),
		strings.Contains(msg, "database does not exist"),
		strings.Contains(msg, "no such database"):
		return NewTenantDatabaseError(tenantID, err)
	default:
		return NewTenantDatabaseError(tenantID, err)
	}
}

// errNotFound is a sentinel used internally by the config store and domain
// mapper to distinguish "missing" from I/O failure without allocating a
// FrameworkError on every lookup miss.
var errNotFound = errors.New("tenant: not found")
