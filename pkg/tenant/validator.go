package tenant

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
	domainPattern    = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
	hexColorPattern  = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	emailPattern     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidationIssue is a single field-level validation failure.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of validating a descriptor or create request.
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationIssue `json:"errors"`
}

func (r *ValidationResult) add(field, message string) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationIssue{Field: field, Message: message})
}

// Valid reports whether the descriptor passed every rule.
func (r ValidationResult) Valid() bool {
	return r.IsValid
}

// Error joins every issue into a single human-readable message, for
// wrapping a failed validation in a FrameworkError.
func (r ValidationResult) Error() string {
	if len(r.Errors) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// Validate runs the full set of C1 rules against a descriptor. It never
// panics and always returns a result, valid or not.
func Validate(d *Descriptor) ValidationResult {
	result := ValidationResult{IsValid: true}
	if d == nil {
		result.add("descriptor", "descriptor is required")
		return result
	}

	validateName(d.Name, &result)
	validateSubdomain(d.Subdomain, &result)
	if d.Domain != "" {
		validateDomain(d.Domain, &result)
	}
	validateStatus(d.Status, &result)
	validateDatabase(d.DB, &result)
	validateLimits(d.Limits, &result)
	validateBranding(d.Branding, &result)
	validateSecurity(d.Security, &result)
	validateStorage(d.Storage, &result)
	validateSMTP(d.SMTP, &result)
	if d.Admin != nil && d.Admin.Email != "" {
		if !emailPattern.MatchString(d.Admin.Email) {
			result.add("admin.email", "admin email is not a valid address")
		}
	}

	return result
}

func validateName(name string, result *ValidationResult) {
	n := len(strings.TrimSpace(name))
	if n < 2 || n > 100 {
		result.add("name", "name must be between 2 and 100 characters")
	}
}

func validateSubdomain(subdomain string, result *ValidationResult) {
	n := len(subdomain)
	if n < 2 || n > 63 {
		result.add("subdomain", "subdomain must be between 2 and 63 characters")
		return
	}
	if !subdomainPattern.MatchString(subdomain) {
		result.add("subdomain", "subdomain must match ^[a-z0-9]([a-z0-9-]*[a-z0-9])?$")
		return
	}
	if IsReservedSubdomain(subdomain) {
		result.add("subdomain", "subdomain is reserved")
	}
}

func validateDomain(domain string, result *ValidationResult) {
	if !domainPattern.MatchString(domain) {
		result.add("domain", "domain is not a valid DNS label sequence")
	}
}

func validateStatus(status Status, result *ValidationResult) {
	switch status {
	case StatusActive, StatusSuspended, StatusPending, StatusArchived, "":
		return
	default:
		result.add("status", "status must be one of active, suspended, pending, archived")
	}
}

func validateDatabase(db Database, result *ValidationResult) {
	switch db.Type {
	case DBMySQL, DBPostgreSQL, DBSQLite:
	default:
		result.add("database.type", "database type must be one of mysql, postgresql, sqlite")
	}
	if db.Type != DBSQLite && (db.Port < 1 || db.Port > 65535) {
		result.add("database.port", "database port must be between 1 and 65535")
	}
	if db.ConnectionLimit < 1 || db.ConnectionLimit > 100 {
		result.add("database.connectionLimit", "connectionLimit must be between 1 and 100")
	}
	if strings.TrimSpace(db.Database) == "" {
		result.add("database.database", "database name is required")
	}
	if strings.TrimSpace(db.Username) == "" {
		result.add("database.username", "database username is required")
	}
	if strings.TrimSpace(db.Host) == "" && db.Type != DBSQLite {
		result.add("database.host", "database host is required")
	}
}

type limitBound struct {
	field    string
	min, max int
	get      func(Limits) int
}

var limitBounds = []limitBound{
	{"maxUsers", 1, 10000, func(l Limits) int { return l.MaxUsers }},
	{"maxPages", 1, 100000, func(l Limits) int { return l.MaxPages }},
	{"maxPosts", 1, 1000000, func(l Limits) int { return l.MaxPosts }},
	{"maxStorageMB", 100, 100000, func(l Limits) int { return l.MaxStorageMB }},
	{"maxApiCalls", 1000, 10000000, func(l Limits) int { return l.MaxAPICalls }},
	{"maxFileSizeMB", 1, 1000, func(l Limits) int { return l.MaxFileSizeMB }},
	{"maxMenus", 1, 100, func(l Limits) int { return l.MaxMenus }},
	{"maxGalleries", 1, 1000, func(l Limits) int { return l.MaxGalleries }},
	{"maxSliders", 1, 100, func(l Limits) int { return l.MaxSliders }},
}

func validateLimits(limits Limits, result *ValidationResult) {
	for _, b := range limitBounds {
		v := b.get(limits)
		if v == 0 {
			// Zero-value fields are treated as "not set" rather than invalid;
			// callers that require a limit supply it explicitly.
			continue
		}
		if v < b.min || v > b.max {
			result.add("limits."+b.field, "must be between "+strconv.Itoa(b.min)+" and "+strconv.Itoa(b.max))
		}
	}
}

func validateBranding(b Branding, result *ValidationResult) {
	if b.PrimaryColor != "" && !hexColorPattern.MatchString(b.PrimaryColor) {
		result.add("branding.primaryColor", "must be a #RRGGBB hex colour")
	}
	if b.SecondaryColor != "" && !hexColorPattern.MatchString(b.SecondaryColor) {
		result.add("branding.secondaryColor", "must be a #RRGGBB hex colour")
	}
	if len(b.Tagline) > 200 {
		result.add("branding.tagline", "must be at most 200 characters")
	}
}

func validateSecurity(s Security, result *ValidationResult) {
	if len(s.JWTSecret) < 32 {
		result.add("security.jwtSecret", "must be at least 32 characters")
	}
	if len(s.EncryptionKey) < 32 {
		result.add("security.encryptionKey", "must be at least 32 characters")
	}
	if len(s.SessionSecret) < 32 {
		result.add("security.sessionSecret", "must be at least 32 characters")
	}
	if s.RateLimit.Requests != 0 && (s.RateLimit.Requests < 1 || s.RateLimit.Requests > 10000) {
		result.add("security.rateLimit.requests", "must be between 1 and 10000")
	}
}

func validateStorage(s Storage, result *ValidationResult) {
	switch s.Type {
	case StorageLocal:
		if strings.TrimSpace(s.BasePath) == "" {
			result.add("storage.basePath", "basePath is required for local storage")
		}
	case StorageS3, StorageGCS:
		if strings.TrimSpace(s.Bucket) == "" {
			result.add("storage.bucket", "bucket is required")
		}
		if strings.TrimSpace(s.AccessKey) == "" {
			result.add("storage.accessKey", "accessKey is required")
		}
		if strings.TrimSpace(s.SecretKey) == "" {
			result.add("storage.secretKey", "secretKey is required")
		}
	case StorageCloudinary, "":
		// no required fields beyond type itself
	default:
		result.add("storage.type", "storage type must be one of local, s3, cloudinary, gcs")
	}
}

func validateSMTP(s SMTP, result *ValidationResult) {
	if !s.Enabled {
		return
	}
	if strings.TrimSpace(s.Host) == "" {
		result.add("smtp.host", "host is required when smtp is enabled")
	}
	if s.Port < 1 || s.Port > 65535 {
		result.add("smtp.port", "port must be between 1 and 65535")
	}
	if strings.TrimSpace(s.Username) == "" {
		result.add("smtp.username", "username is required when smtp is enabled")
	}
	if strings.TrimSpace(s.Password) == "" {
		result.add("smtp.password", "password is required when smtp is enabled")
	}
	if s.FromEmail != "" && !emailPattern.MatchString(s.FromEmail) {
		result.add("smtp.fromEmail", "must be a valid email address")
	}
}
