// Package tenant implements the multi-tenant request router and resource
// manager kernel: tenant descriptors, env files, domain mappings,
// identification, per-tenant connection pools, the request-scoped tenant
// context, and the administrative CRUD surface that keeps them consistent.
package tenant

import "time"

// Status is the closed set of lifecycle states a tenant descriptor can be in.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
	StatusArchived  Status = "archived"
)

// DBType is the closed set of supported tenant database engines.
type DBType string

const (
	DBMySQL      DBType = "mysql"
	DBPostgreSQL DBType = "postgresql"
	DBSQLite     DBType = "sqlite"
)

// StorageType is the closed set of supported tenant asset-storage backends.
type StorageType string

const (
	StorageLocal     StorageType = "local"
	StorageS3        StorageType = "s3"
	StorageCloudinary StorageType = "cloudinary"
	StorageGCS       StorageType = "gcs"
)

// Database describes the connection parameters for one tenant's database.
type Database struct {
	Type            DBType `json:"type"`
	Host            string `json:"host"`
	Port            int    `json:"port"`
	Database        string `json:"database"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	SSL             bool   `json:"ssl"`
	ConnectionLimit int    `json:"connectionLimit"`
}

// Features is the closed set of ten named feature toggles.
type Features struct {
	AdvancedEditor bool `json:"advancedEditor"`
	CustomBranding bool `json:"customBranding"`
	APIAccess      bool `json:"apiAccess"`
	FileUpload     bool `json:"fileUpload"`
	Analytics      bool `json:"analytics"`
	CustomDomain   bool `json:"customDomain"`
	SSLEnabled     bool `json:"sslEnabled"`
	MultiLanguage  bool `json:"multiLanguage"`
	Ecommerce      bool `json:"ecommerce"`
	SocialLogin    bool `json:"socialLogin"`
}

// Limits is the closed set of nine usage-limit fields (see §4.1 for bounds).
type Limits struct {
	MaxUsers      int `json:"maxUsers"`
	MaxPages      int `json:"maxPages"`
	MaxPosts      int `json:"maxPosts"`
	MaxStorageMB  int `json:"maxStorageMB"`
	MaxAPICalls   int `json:"maxApiCalls"`
	MaxFileSizeMB int `json:"maxFileSizeMB"`
	MaxMenus      int `json:"maxMenus"`
	MaxGalleries  int `json:"maxGalleries"`
	MaxSliders    int `json:"maxSliders"`
}

// Branding holds tenant-specific visual identity fields.
type Branding struct {
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	LogoURL        string `json:"logoUrl,omitempty"`
	FaviconURL     string `json:"faviconUrl,omitempty"`
	Tagline        string `json:"tagline,omitempty"`
}

// SEO holds tenant-wide default SEO settings.
type SEO struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
}

// Security is the secrets triple plus API/CORS/rate-limit policy.
type Security struct {
	JWTSecret      string       `json:"jwtSecret"`
	EncryptionKey  string       `json:"encryptionKey"`
	SessionSecret  string       `json:"sessionSecret"`
	APIKey         string       `json:"apiKey,omitempty"`
	CORSAllowList  []string     `json:"corsAllowList,omitempty"`
	RateLimit      RateLimitPolicy `json:"rateLimit"`
}

// RateLimitPolicy is a tenant-scoped rate-limit policy (see C9).
type RateLimitPolicy struct {
	Requests int           `json:"requests"`
	Window   time.Duration `json:"window"`
}

// SMTP describes optional outbound-mail configuration.
type SMTP struct {
	Enabled   bool   `json:"enabled"`
	Host      string `json:"host,omitempty"`
	Port      int    `json:"port,omitempty"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	FromEmail string `json:"fromEmail,omitempty"`
}

// Storage describes the tenant's asset-storage backend.
type Storage struct {
	Type      StorageType `json:"type"`
	BasePath  string      `json:"basePath,omitempty"`
	Bucket    string      `json:"bucket,omitempty"`
	AccessKey string      `json:"accessKey,omitempty"`
	SecretKey string      `json:"secretKey,omitempty"`
	Region    string      `json:"region,omitempty"`
}

// AdminContact is the optional initial admin user supplied at create time.
type AdminContact struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`
}

// Descriptor is the authoritative record for one tenant (§3).
type Descriptor struct {
	TenantID    string            `json:"tenantId"`
	Name        string            `json:"name"`
	Subdomain   string            `json:"subdomain"`
	Domain      string            `json:"domain,omitempty"`
	Status      Status            `json:"status"`
	DB          Database          `json:"database"`
	Features    Features          `json:"features"`
	Limits      Limits            `json:"limits"`
	Branding    Branding          `json:"branding"`
	SEO         SEO               `json:"seo"`
	Security    Security          `json:"security"`
	SMTP        SMTP              `json:"smtp"`
	Storage     Storage           `json:"storage"`
	Env         map[string]string `json:"env,omitempty"`
	Admin       *AdminContact     `json:"admin,omitempty"`
	AuditStatus string            `json:"auditStatus,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// TenantType is the closed set of domain-mapping entry kinds (§3).
type TenantType string

const (
	TenantTypeAdmin   TenantType = "admin"
	TenantTypeWebsite TenantType = "website"
)

// DomainMappingEntry binds a public hostname to an env file and tenant kind.
type DomainMappingEntry struct {
	Domain     string     `json:"domain"`
	EnvFile    string     `json:"envFile"`
	TenantType TenantType `json:"tenantType"`
	IsActive   bool       `json:"isActive"`
}

// LoadedEnv is the in-memory record produced by loading a tenant's env file.
type LoadedEnv struct {
	Config   map[string]string
	Source   string
	LoadedAt time.Time
	Domain   string
	TenantID string
}

// IdentificationMethod names the strategy that resolved a request's tenant.
type IdentificationMethod string

const (
	MethodNone         IdentificationMethod = "none"
	MethodCustomDomain IdentificationMethod = "custom_domain"
	MethodSubdomain    IdentificationMethod = "subdomain"
	MethodHeader       IdentificationMethod = "header"
	MethodBearer       IdentificationMethod = "bearer"
	MethodPath         IdentificationMethod = "path"
	MethodQuery        IdentificationMethod = "query"
)

// EnvGenerateResult is returned by the Env File Manager's generate operation.
type EnvGenerateResult struct {
	EnvFile     string
	EnvPath     string
	DatabaseURL string
	TenantID    string
	Domain      string
	GeneratedAt time.Time
}

// Tier is the closed set of create-time resource presets (§6).
type Tier string

const (
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// reservedSubdomains is the authoritative reserved-label list (§3, §4.1).
var reservedSubdomains = map[string]bool{
	"www": true, "api": true, "admin": true, "app": true, "mail": true,
	"ftp": true, "localhost": true, "test": true, "dev": true,
	"staging": true, "console": true, "dashboard": true, "portal": true,
	"support": true, "help": true, "docs": true, "blog": true, "news": true,
}

// identificationReservedLabels is the shorter reserved-label list used only
// by the subdomain strategy of the identification pipeline (§4.4).
var identificationReservedLabels = map[string]bool{
	"www": true, "api": true, "admin": true, "app": true, "mail": true, "ftp": true,
}

// IsReservedSubdomain reports whether s is a reserved label under §3/§4.1.
func IsReservedSubdomain(s string) bool {
	return reservedSubdomains[s]
}
