package tenant

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/echterhof/rockstar-web-framework/pkg"
)

// ProvisionConfig names the database server a tenant's database is
// provisioned on: the admin credentials used to connect to its system
// database and create the tenant's own database and user (§4.7 step 5).
type ProvisionConfig struct {
	Type          DBType
	Host          string
	Port          int
	SSL           bool
	AdminUsername string
	AdminPassword string
	// SystemDatabase is the database to connect to in order to run
	// CREATE DATABASE/CREATE USER (e.g. "mysql" for MySQL, "postgres" for
	// PostgreSQL). Unused for sqlite, which needs no server-side provisioning.
	SystemDatabase string
}

// CreateRequest is the input to AdminService.Create.
type CreateRequest struct {
	Name      string        `json:"name"`
	Subdomain string        `json:"subdomain"`
	Domain    string        `json:"domain,omitempty"`
	Tier      Tier          `json:"tier,omitempty"`
	Admin     *AdminContact `json:"admin,omitempty"`
	Schema    []string      `json:"-"` // baseline DDL statements, an external collaborator (§9), never accepted over HTTP
}

var tenantIDSuffix = regexp.MustCompile(`[^a-z0-9]+`)

// AdminService is the Admin Service (C8): create/update/delete/list and the
// tenant-lifecycle operations, composing C1-C6 and C9.
type AdminService struct {
	Store     *ConfigStore
	EnvMgr    *EnvFileManager
	Domains   *DomainMapper
	Pool      *PoolManager
	Gate      *SecurityGate
	Hasher    pkg.PasswordHasher
	Provision ProvisionConfig
	Logger    pkg.Logger

	// BaseDomain is the platform domain a tenant without a custom Domain is
	// hosted under, e.g. subdomain "acme" resolves to "acme.BaseDomain"
	// for env-file generation and the default subdomain identification
	// strategy (§4.3, §4.4).
	BaseDomain string
}

// NewAdminService wires an AdminService from its already-constructed
// dependencies.
func NewAdminService(store *ConfigStore, envMgr *EnvFileManager, domains *DomainMapper, pool *PoolManager, gate *SecurityGate, provision ProvisionConfig) *AdminService {
	return &AdminService{
		Store:      store,
		EnvMgr:     envMgr,
		Domains:    domains,
		Pool:       pool,
		Gate:       gate,
		Hasher:     pkg.NewBcryptHasher(0),
		Provision:  provision,
		BaseDomain: "platform.local",
	}
}

// envDomainFor returns the domain a descriptor's env file and domain
// mapping are keyed on: its custom Domain if set, otherwise its subdomain
// under BaseDomain (§4.3, §4.7 step 6).
func (a *AdminService) envDomainFor(d *Descriptor) string {
	if d.Domain != "" {
		return d.Domain
	}
	return d.Subdomain + "." + a.BaseDomain
}

// Create runs the 8-step tenant provisioning flow from spec.md §4.7,
// compensating in reverse order on any failure after step 4.
func (a *AdminService) Create(req CreateRequest) (*Descriptor, error) {
	d := &Descriptor{
		Name:      req.Name,
		Subdomain: req.Subdomain,
		Domain:    req.Domain,
		Status:    StatusActive,
		Admin:     req.Admin,
	}

	// 1. Validate via C1.
	result := Validate(d)
	if !result.Valid() {
		return nil, NewTenantConfigInvalidError(result.Error())
	}

	// 2. Reject if another tenant shares subdomain or domain.
	if _, ok := a.Store.FindBySubdomain(d.Subdomain); ok {
		return nil, NewTenantConfigInvalidError("subdomain already in use: " + d.Subdomain)
	}
	if d.Domain != "" {
		if _, ok := a.Store.FindByDomain(d.Domain); ok {
			return nil, NewTenantConfigInvalidError("domain already in use: " + d.Domain)
		}
	}

	// 3. Generate tenantId from subdomain.
	tenantID, err := a.generateTenantID(d.Subdomain)
	if err != nil {
		return nil, err
	}
	d.TenantID = tenantID

	// 4. Generate DB credentials, secrets, default features/limits.
	dbPassword, err := pkg.GenerateEncryptionKeyHex(16)
	if err != nil {
		return nil, NewTenantCreationFailedError("generating database credentials", err)
	}
	jwtSecret, err := pkg.GenerateJWTSecret(32)
	if err != nil {
		return nil, NewTenantCreationFailedError("generating JWT secret", err)
	}
	encKey, err := pkg.GenerateEncryptionKeyHex(32)
	if err != nil {
		return nil, NewTenantCreationFailedError("generating encryption key", err)
	}
	sessionSecret, err := pkg.GenerateEncryptionKeyHex(32)
	if err != nil {
		return nil, NewTenantCreationFailedError("generating session secret", err)
	}

	tier := req.Tier
	if tier == "" {
		tier = TierStarter
	}

	dbName := "tenant_" + tenantID
	dbUser := "tu_" + tenantID

	d.DB = Database{
		Type:            a.Provision.Type,
		Host:            a.Provision.Host,
		Port:            a.Provision.Port,
		Database:        dbName,
		Username:        dbUser,
		Password:        dbPassword,
		SSL:             a.Provision.SSL,
		ConnectionLimit: 10,
	}
	d.Security = Security{
		JWTSecret:     jwtSecret,
		EncryptionKey: encKey,
		SessionSecret: sessionSecret,
	}
	d.Features = DefaultFeaturesFor(tier)
	d.Limits = DefaultLimitsFor(tier)

	if req.Admin != nil && req.Admin.Password != "" {
		hashed, err := a.Hasher.Hash(req.Admin.Password)
		if err != nil {
			return nil, NewTenantCreationFailedError("hashing initial admin password", err)
		}
		d.Admin = &AdminContact{Email: req.Admin.Email, Name: req.Admin.Name, Password: hashed}
	}

	// 5. Provision database: create tenant DB, user, grants, baseline schema.
	provisioned := false
	if err := a.provisionDatabase(dbName, dbUser, dbPassword, req.Schema); err != nil {
		return nil, NewTenantCreationFailedError("provisioning tenant database", err)
	}
	provisioned = true

	// 6. Generate env file via C3, which also upserts the domain mapping
	// via C4 (§4.3).
	envGenerated := false
	envDomain := a.envDomainFor(d)
	if _, err := a.EnvMgr.Generate(envDomain, EnvTemplate{
		TenantID: tenantID,
		DB:       d.DB,
		Security: d.Security,
	}, TenantTypeWebsite); err != nil {
		a.compensateCreate(d, dbName, dbUser, provisioned, envGenerated)
		return nil, NewTenantCreationFailedError("generating env file", err)
	}
	envGenerated = true

	// 7. Save descriptor via C2.
	if err := a.Store.Save(d); err != nil {
		a.compensateCreate(d, dbName, dbUser, provisioned, envGenerated)
		return nil, NewTenantCreationFailedError("saving tenant descriptor", err)
	}

	a.audit(AuditTenantAccess, tenantID, "op", "create")
	return d, nil
}

// compensateCreate undoes steps 5-6 in reverse order after a failure at or
// after step 4. Compensation failures are logged but never mask the
// original error (§4.7 step 8).
func (a *AdminService) compensateCreate(d *Descriptor, dbName, dbUser string, provisioned, envGenerated bool) {
	if envGenerated {
		if err := a.EnvMgr.Delete(a.envDomainFor(d)); err != nil {
			a.logCompensationFailure("delete env file", d.TenantID, err)
		}
	}
	if provisioned {
		if err := a.deprovisionDatabase(dbName, dbUser); err != nil {
			a.logCompensationFailure("drop tenant database", d.TenantID, err)
		}
	}
}

func (a *AdminService) logCompensationFailure(step, tenantID string, err error) {
	if a.Logger != nil {
		a.Logger.Error("tenant create compensation step failed", "step", step, "tenantId", tenantID, "error", err.Error())
	}
}

// generateTenantID derives a unique id from subdomain, appending a short
// random suffix on collision.
func (a *AdminService) generateTenantID(subdomain string) (string, error) {
	base := strings.ToLower(subdomain)
	base = tenantIDSuffix.ReplaceAllString(base, "-")

	if _, err := a.Store.Get(base); err == errNotFound {
		return base, nil
	}

	for i := 0; i < 5; i++ {
		suffix, err := pkg.GenerateEncryptionKeyHex(3)
		if err != nil {
			return "", NewTenantCreationFailedError("generating tenant id", err)
		}
		candidate := base + "-" + suffix
		if _, err := a.Store.Get(candidate); err == errNotFound {
			return candidate, nil
		}
	}
	return "", NewTenantCreationFailedError("could not generate a unique tenant id", nil)
}

// provisionDatabase connects to the database server's system database and
// creates the tenant database, user and grants, then runs schema against
// the new database. SQLite needs no server-side provisioning; its file is
// created lazily by the pool's first connection.
func (a *AdminService) provisionDatabase(dbName, dbUser, dbPassword string, schema []string) error {
	if a.Provision.Type == DBSQLite {
		return nil
	}

	sysCfg := Database{
		Type:     a.Provision.Type,
		Host:     a.Provision.Host,
		Port:     a.Provision.Port,
		Database: a.Provision.SystemDatabase,
		Username: a.Provision.AdminUsername,
		Password: a.Provision.AdminPassword,
		SSL:      a.Provision.SSL,
	}
	driver, dsn := BuildDSN(sysCfg)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("opening system database connection: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range a.createStatements(dbName, dbUser, dbPassword) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}

	if len(schema) == 0 {
		return nil
	}

	tenantCfg := sysCfg
	tenantCfg.Database = dbName
	tenantCfg.Username = dbUser
	tenantCfg.Password = dbPassword
	tDriver, tDSN := BuildDSN(tenantCfg)
	tdb, err := sql.Open(tDriver, tDSN)
	if err != nil {
		return fmt.Errorf("opening tenant database connection for schema load: %w", err)
	}
	defer tdb.Close()

	for _, stmt := range schema {
		if _, err := tdb.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// createStatements returns the driver-specific CREATE DATABASE/CREATE
// USER/GRANT sequence, per §4.7 step 5.
func (a *AdminService) createStatements(dbName, dbUser, dbPassword string) []string {
	switch a.Provision.Type {
	case DBMySQL:
		return []string{
			fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", dbName),
			fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", dbUser, dbPassword),
			fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO '%s'@'%%'", dbName, dbUser),
			"FLUSH PRIVILEGES",
		}
	case DBPostgreSQL:
		return []string{
			fmt.Sprintf("CREATE USER %q WITH PASSWORD '%s'", dbUser, dbPassword),
			fmt.Sprintf("CREATE DATABASE %q OWNER %q ENCODING 'UTF8'", dbName, dbUser),
			fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %q TO %q", dbName, dbUser),
		}
	default:
		return nil
	}
}

// deprovisionDatabase drops the tenant's database and user during create
// compensation or delete.
func (a *AdminService) deprovisionDatabase(dbName, dbUser string) error {
	if a.Provision.Type == DBSQLite {
		return nil
	}

	sysCfg := Database{
		Type:     a.Provision.Type,
		Host:     a.Provision.Host,
		Port:     a.Provision.Port,
		Database: a.Provision.SystemDatabase,
		Username: a.Provision.AdminUsername,
		Password: a.Provision.AdminPassword,
		SSL:      a.Provision.SSL,
	}
	driver, dsn := BuildDSN(sysCfg)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("opening system database connection: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var stmts []string
	switch a.Provision.Type {
	case DBMySQL:
		stmts = []string{
			fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", dbName),
			fmt.Sprintf("DROP USER IF EXISTS '%s'@'%%'", dbUser),
		}
	case DBPostgreSQL:
		stmts = []string{
			fmt.Sprintf("DROP DATABASE IF EXISTS %q", dbName),
			fmt.Sprintf("DROP USER IF EXISTS %q", dbUser),
		}
	}

	var firstErr error
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Get returns a tenant descriptor.
func (a *AdminService) Get(tenantID string) (*Descriptor, error) {
	return a.Store.Get(tenantID)
}

// List returns every tenant descriptor.
func (a *AdminService) List() ([]*Descriptor, error) {
	ids, err := a.Store.List()
	if err != nil {
		return nil, err
	}
	out := make([]*Descriptor, 0, len(ids))
	for _, id := range ids {
		d, err := a.Store.Get(id)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Summary is the condensed view returned by listSummary (§4.7).
type Summary struct {
	TenantID  string `json:"tenantId"`
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
	Domain    string `json:"domain,omitempty"`
	Status    Status `json:"status"`
}

// ListSummary returns the condensed per-tenant view.
func (a *AdminService) ListSummary() ([]Summary, error) {
	descriptors, err := a.List()
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, Summary{TenantID: d.TenantID, Name: d.Name, Subdomain: d.Subdomain, Domain: d.Domain, Status: d.Status})
	}
	return out, nil
}

// Update applies a mutator to the current descriptor and re-validates and
// re-saves it, invalidating the config cache so the next request observes
// the change (§5's O2 ordering guarantee).
func (a *AdminService) Update(tenantID string, mutate func(d *Descriptor)) (*Descriptor, error) {
	d, err := a.Store.Get(tenantID)
	if err != nil {
		return nil, err
	}
	mutate(d)

	result := Validate(d)
	if !result.Valid() {
		return nil, NewTenantConfigInvalidError(result.Error())
	}

	if err := a.Store.Save(d); err != nil {
		return nil, err
	}
	a.audit(AuditTenantAccess, tenantID, "op", "update")
	return d, nil
}

func (a *AdminService) setStatus(tenantID string, status Status, auditField string) (*Descriptor, error) {
	return a.Update(tenantID, func(d *Descriptor) {
		d.Status = status
		d.AuditStatus = auditField
	})
}

// Suspend, Activate and Archive rewrite only status and an audit field; they
// do not touch databases or env files (§4.7).
func (a *AdminService) Suspend(tenantID string) (*Descriptor, error) {
	return a.setStatus(tenantID, StatusSuspended, "suspended@"+time.Now().UTC().Format(time.RFC3339))
}

func (a *AdminService) Activate(tenantID string) (*Descriptor, error) {
	return a.setStatus(tenantID, StatusActive, "activated@"+time.Now().UTC().Format(time.RFC3339))
}

func (a *AdminService) Archive(tenantID string) (*Descriptor, error) {
	return a.setStatus(tenantID, StatusArchived, "archived@"+time.Now().UTC().Format(time.RFC3339))
}

// Delete closes the tenant's pool, drops its database/user, deletes the env
// file and domain mapping, then deletes the descriptor (§4.7).
func (a *AdminService) Delete(tenantID string) error {
	d, err := a.Store.Get(tenantID)
	if err != nil {
		return err
	}

	if a.Pool != nil {
		if err := a.Pool.Close(tenantID); err != nil {
			a.logCompensationFailure("close pool", tenantID, err)
		}
	}

	dbName := d.DB.Database
	dbUser := d.DB.Username
	if err := a.deprovisionDatabase(dbName, dbUser); err != nil {
		a.logCompensationFailure("drop tenant database", tenantID, err)
	}

	if err := a.EnvMgr.Delete(a.envDomainFor(d)); err != nil {
		a.logCompensationFailure("delete env file", tenantID, err)
	}

	if err := a.Store.Delete(tenantID); err != nil {
		return err
	}

	a.audit(AuditTenantAccess, tenantID, "op", "delete")
	return nil
}

// ExportConfig returns a descriptor with security.*, database.password and
// smtp.password replaced by a fixed redaction marker (§4.7).
func (a *AdminService) ExportConfig(tenantID string) (*Descriptor, error) {
	d, err := a.Store.Get(tenantID)
	if err != nil {
		return nil, err
	}
	return RedactDescriptor(d), nil
}

// TenantHealth is one tenant's outcome from healthCheck.
type TenantHealth struct {
	TenantID string `json:"tenantId"`
	Healthy  bool   `json:"healthy"`
	Error    string `json:"error,omitempty"`
}

// HealthCheck reports pool connectivity for every tenant with a live pool
// entry.
func (a *AdminService) HealthCheck(ctx context.Context) []TenantHealth {
	reports := a.Pool.HealthCheck(ctx)
	out := make([]TenantHealth, 0, len(reports))
	for _, r := range reports {
		out = append(out, TenantHealth{TenantID: r.TenantID, Healthy: r.Healthy, Error: r.Error})
	}
	return out
}

// UsageCounts is the measured-usage side of checkUsageLimits, delegated to
// an external data plane the Admin Service does not itself implement (§4.7).
type UsageCounts struct {
	Users      int
	Pages      int
	Posts      int
	StorageMB  int
	APICalls   int
	Menus      int
	Galleries  int
	Sliders    int
}

// UsageResult is the outcome of checkUsageLimits: whether the tenant is
// within its plan and, if not, which limits are violated.
type UsageResult struct {
	WithinLimits bool     `json:"withinLimits"`
	Violations   []string `json:"violations,omitempty"`
}

// CheckUsageLimits joins measured counts with the descriptor's limits.
func (a *AdminService) CheckUsageLimits(tenantID string, usage UsageCounts) (*UsageResult, error) {
	d, err := a.Store.Get(tenantID)
	if err != nil {
		return nil, err
	}

	var violations []string
	check := func(label string, used, max int) {
		if max > 0 && used > max {
			violations = append(violations, fmt.Sprintf("%s: %d exceeds limit of %d", label, used, max))
		}
	}
	check("users", usage.Users, d.Limits.MaxUsers)
	check("pages", usage.Pages, d.Limits.MaxPages)
	check("posts", usage.Posts, d.Limits.MaxPosts)
	check("storageMB", usage.StorageMB, d.Limits.MaxStorageMB)
	check("apiCalls", usage.APICalls, d.Limits.MaxAPICalls)
	check("menus", usage.Menus, d.Limits.MaxMenus)
	check("galleries", usage.Galleries, d.Limits.MaxGalleries)
	check("sliders", usage.Sliders, d.Limits.MaxSliders)

	return &UsageResult{WithinLimits: len(violations) == 0, Violations: violations}, nil
}

func (a *AdminService) audit(event AuditEvent, tenantID string, fields ...interface{}) {
	if a.Gate != nil {
		a.Gate.Audit(event, tenantID, fields...)
	}
}
