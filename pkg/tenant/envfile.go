package tenant

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/echterhof/rockstar-web-framework/pkg"
)

// EnvFileManager reads and writes per-domain KEY=VALUE env files, in the
// same flat-file style as the framework's INI parser but scoped to one
// domain per file instead of one app-wide config (§3, §4.3). It also owns
// the domain-mapping upsert/removal that generate/generatePair/delete
// perform alongside the file itself, since spec.md §4.3 describes C3's
// write operations as updating C4 in the same step.
type EnvFileManager struct {
	dir     string
	domains *DomainMapper
}

// NewEnvFileManager creates a manager rooted at dir, backed by domains for
// the mapping upserts generate/generatePair/delete perform. domains may be
// nil for a manager that only reads/writes files without touching mappings.
func NewEnvFileManager(dir string, domains *DomainMapper) (*EnvFileManager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("tenant: creating env file dir: %w", err)
	}
	return &EnvFileManager{dir: dir, domains: domains}, nil
}

func (m *EnvFileManager) path(envFile string) string {
	return filepath.Join(m.dir, envFile)
}

// envFileName returns the canonical per-domain file name from spec.md
// §4.3: ".env." followed by domain with every '.' removed, e.g.
// "hirayadmin.whitecodetech.com" -> ".env.hirayadminwhitecodetechcom".
func envFileName(domain string) string {
	return ".env." + strings.ReplaceAll(domain, ".", "")
}

// Load reads and parses the env file at envFile.
func (m *EnvFileManager) Load(envFile, domain, tenantID string) (*LoadedEnv, error) {
	data, err := os.ReadFile(m.path(envFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errNotFound
		}
		return nil, fmt.Errorf("tenant: reading env file %s: %w", envFile, err)
	}

	config, err := parseEnvFile(data)
	if err != nil {
		return nil, NewTenantConfigInvalidError(fmt.Sprintf("env file %s: %v", envFile, err))
	}

	return &LoadedEnv{
		Config:   config,
		Source:   envFile,
		LoadedAt: time.Now(),
		Domain:   domain,
		TenantID: tenantID,
	}, nil
}

// parseEnvFile parses KEY=VALUE lines, skipping blank lines and lines
// starting with # or ;, and stripping a single layer of surrounding quotes
// from the value, mirroring the teacher's parseINI line grammar.
func parseEnvFile(data []byte) (map[string]string, error) {
	result := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}

		if key == "" {
			continue
		}
		result[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning env file: %w", err)
	}

	return result, nil
}

// dbEnvKeys names the seven DB inputs §4.3's update() watches for changes
// before refreshing DATABASE_URL.
var dbEnvKeys = []string{"DB_TYPE", "DB_HOST", "DB_PORT", "DB_DATABASE", "DB_USERNAME", "DB_PASSWORD", "DB_SSL"}

// EnvTemplate seeds a new env file's database/tenant/security sections for
// generate/generatePair. Any of the three secrets left blank is backfilled
// with cryptographic random hex of at least 32 bytes (§4.3).
type EnvTemplate struct {
	TenantID string
	DB       Database
	Security Security
	Extra    map[string]string
}

// backfillSecrets fills any blank secret with a fresh 32-byte random hex
// value via the framework's own crypto helpers (pkg.GenerateJWTSecret /
// pkg.GenerateEncryptionKeyHex), matching §4.3's "fill missing secrets with
// cryptographic random of >=32 bytes hex".
func backfillSecrets(s *Security) error {
	if s.JWTSecret == "" {
		v, err := pkg.GenerateJWTSecret(32)
		if err != nil {
			return fmt.Errorf("tenant: generating jwt secret: %w", err)
		}
		s.JWTSecret = v
	}
	if s.EncryptionKey == "" {
		v, err := pkg.GenerateEncryptionKeyHex(32)
		if err != nil {
			return fmt.Errorf("tenant: generating encryption key: %w", err)
		}
		s.EncryptionKey = v
	}
	if s.SessionSecret == "" {
		v, err := pkg.GenerateEncryptionKeyHex(32)
		if err != nil {
			return fmt.Errorf("tenant: generating session secret: %w", err)
		}
		s.SessionSecret = v
	}
	return nil
}

// Generate renders the env file for domain from tpl as flat KEY=VALUE lines
// sorted by key (no section headers or grouping), writes it to disk,
// upserts a domain-mapping entry of kind tenantType, and returns the
// generation result (§4.3).
func (m *EnvFileManager) Generate(domain string, tpl EnvTemplate, tenantType TenantType) (*EnvGenerateResult, error) {
	if domain == "" {
		return nil, NewTenantConfigInvalidError("domain is required to generate an env file")
	}
	if err := backfillSecrets(&tpl.Security); err != nil {
		return nil, err
	}

	envFile := envFileName(domain)
	databaseURL := buildDatabaseURL(tpl.DB)

	env := map[string]string{
		"TENANT_ID":      tpl.TenantID,
		"TENANT_DOMAIN":  domain,
		"DATABASE_URL":   databaseURL,
		"DB_TYPE":        string(tpl.DB.Type),
		"DB_HOST":        tpl.DB.Host,
		"DB_PORT":        strconv.Itoa(tpl.DB.Port),
		"DB_DATABASE":    tpl.DB.Database,
		"DB_USERNAME":    tpl.DB.Username,
		"DB_PASSWORD":    tpl.DB.Password,
		"DB_SSL":         strconv.FormatBool(tpl.DB.SSL),
		"JWT_SECRET":     tpl.Security.JWTSecret,
		"ENCRYPTION_KEY": tpl.Security.EncryptionKey,
		"SESSION_SECRET": tpl.Security.SessionSecret,
	}
	for k, v := range tpl.Extra {
		env[k] = v
	}

	if err := m.write(envFile, env); err != nil {
		return nil, err
	}

	if m.domains != nil {
		if err := m.domains.Set(DomainMappingEntry{
			Domain:     domain,
			EnvFile:    envFile,
			TenantType: tenantType,
			IsActive:   true,
		}); err != nil {
			return nil, err
		}
	}

	return &EnvGenerateResult{
		EnvFile:     envFile,
		EnvPath:     m.path(envFile),
		DatabaseURL: databaseURL,
		TenantID:    tpl.TenantID,
		Domain:      domain,
		GeneratedAt: time.Now(),
	}, nil
}

// GeneratePair atomically creates the admin/website subdomain pair from
// §4.3: "${tenantId}admin.${baseDomain}" (tenantType=admin) with database
// "${tenantId}_admin_cms", and "${tenantId}.${baseDomain}"
// (tenantType=website) with database "${tenantId}_cms". If the website leg
// fails, the admin leg already written is rolled back so neither survives
// alone.
func (m *EnvFileManager) GeneratePair(baseDomain, tenantID string, tpl EnvTemplate) (admin, website *EnvGenerateResult, err error) {
	adminDomain := tenantID + "admin." + baseDomain
	websiteDomain := tenantID + "." + baseDomain

	adminTpl := tpl
	adminTpl.DB.Database = tenantID + "_admin_cms"
	admin, err = m.Generate(adminDomain, adminTpl, TenantTypeAdmin)
	if err != nil {
		return nil, nil, err
	}

	websiteTpl := tpl
	websiteTpl.DB.Database = tenantID + "_cms"
	website, err = m.Generate(websiteDomain, websiteTpl, TenantTypeWebsite)
	if err != nil {
		_ = m.Delete(adminDomain)
		return nil, nil, err
	}
	return admin, website, nil
}

// Update loads domain's env file, replaces matching keys from partial and
// appends any new ones, refreshes DATABASE_URL if any of the seven DB
// inputs changed, and rewrites the file atomically (§4.3).
func (m *EnvFileManager) Update(domain string, partial map[string]string) (*LoadedEnv, error) {
	envFile := envFileName(domain)
	if m.domains != nil {
		entry, err := m.domains.Lookup(domain)
		if err != nil {
			return nil, err
		}
		envFile = entry.EnvFile
	}

	loaded, err := m.Load(envFile, domain, "")
	if err != nil {
		return nil, err
	}

	dbChanged := false
	for _, k := range dbEnvKeys {
		if v, ok := partial[k]; ok && v != loaded.Config[k] {
			dbChanged = true
			break
		}
	}

	for k, v := range partial {
		loaded.Config[k] = v
	}
	if dbChanged {
		loaded.Config["DATABASE_URL"] = buildDatabaseURLFromEnv(loaded.Config)
	}

	if err := m.write(envFile, loaded.Config); err != nil {
		return nil, err
	}
	loaded.LoadedAt = time.Now()
	return loaded, nil
}

// write serializes env deterministically (keys sorted) and writes it
// atomically so a concurrent Load never observes a half-written file.
func (m *EnvFileManager) write(envFile string, env map[string]string) error {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s=%s\n", k, quoteEnvValue(env[k]))
	}

	return atomicWriteFile(m.path(envFile), buf.Bytes(), 0o600)
}

func quoteEnvValue(v string) string {
	if strings.ContainsAny(v, " #\"") {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}

// Delete removes domain's env file and mapping entry; an already-absent
// file is success (§4.3).
func (m *EnvFileManager) Delete(domain string) error {
	envFile := envFileName(domain)
	if m.domains != nil {
		if entry, err := m.domains.Lookup(domain); err == nil {
			envFile = entry.EnvFile
		}
	}

	if err := os.Remove(m.path(envFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("tenant: deleting env file %s: %w", envFile, err)
	}

	if m.domains != nil {
		if err := m.domains.Remove(domain); err != nil {
			return err
		}
	}
	return nil
}

// EnvFileListing is one row of list(): a mapping entry joined with what the
// filesystem actually holds for it (§4.3).
type EnvFileListing struct {
	DomainMappingEntry
	Exists  bool
	Size    int64
	ModTime time.Time
}

// List joins every domain-mapping entry with filesystem stat information
// for its env file (§4.3).
func (m *EnvFileManager) List() []EnvFileListing {
	if m.domains == nil {
		return nil
	}
	entries := m.domains.List()
	out := make([]EnvFileListing, 0, len(entries))
	for _, e := range entries {
		listing := EnvFileListing{DomainMappingEntry: e}
		if fi, err := os.Stat(m.path(e.EnvFile)); err == nil {
			listing.Exists = true
			listing.Size = fi.Size()
			listing.ModTime = fi.ModTime()
		}
		out = append(out, listing)
	}
	return out
}

// EnvValidation is the outcome of validate(domain): presence, required-key
// coverage, DATABASE_URL scheme, and secret-length warnings (§4.3).
type EnvValidation struct {
	Exists   bool
	Valid    bool
	Missing  []string
	Warnings []string
}

// requiredEnvKeys are the keys validate(domain) requires to be present and
// non-blank.
var requiredEnvKeys = []string{"TENANT_ID", "DATABASE_URL", "JWT_SECRET", "ENCRYPTION_KEY", "SESSION_SECRET"}

// knownDatabaseURLSchemes are the schemes validate(domain) accepts for
// DATABASE_URL.
var knownDatabaseURLSchemes = []string{"mysql://", "postgresql://", "postgres://", "sqlite://"}

// Validate checks presence, required-key coverage, DATABASE_URL scheme, and
// minimum-length warnings on the three secrets for domain's env file
// (§4.3).
func (m *EnvFileManager) Validate(domain string) (*EnvValidation, error) {
	if m.domains == nil {
		return &EnvValidation{Exists: false}, nil
	}
	entry, err := m.domains.Lookup(domain)
	if err != nil {
		return &EnvValidation{Exists: false}, nil
	}

	loaded, err := m.Load(entry.EnvFile, domain, "")
	if err != nil {
		if err == errNotFound {
			return &EnvValidation{Exists: false}, nil
		}
		return nil, err
	}

	v := &EnvValidation{Exists: true}
	for _, key := range requiredEnvKeys {
		if strings.TrimSpace(loaded.Config[key]) == "" {
			v.Missing = append(v.Missing, key)
		}
	}

	dbURL := loaded.Config["DATABASE_URL"]
	validScheme := false
	for _, scheme := range knownDatabaseURLSchemes {
		if strings.HasPrefix(dbURL, scheme) {
			validScheme = true
			break
		}
	}
	if !validScheme {
		v.Missing = append(v.Missing, "DATABASE_URL (unrecognized scheme)")
	}

	for _, key := range []string{"JWT_SECRET", "ENCRYPTION_KEY", "SESSION_SECRET"} {
		if s := loaded.Config[key]; s != "" && len(s) < 32 {
			v.Warnings = append(v.Warnings, key+" is shorter than the recommended 32 characters")
		}
	}

	v.Valid = len(v.Missing) == 0
	return v, nil
}

// buildDatabaseURL renders a single connection URL for the env file,
// independent of the driver-specific DSN the pool itself uses to connect.
func buildDatabaseURL(db Database) string {
	scheme := string(db.Type)
	if db.Type == DBPostgreSQL {
		scheme = "postgresql"
	}
	if db.Type == DBSQLite {
		return "sqlite://" + db.Database
	}

	auth := db.Username
	if db.Password != "" {
		auth += ":" + db.Password
	}
	return fmt.Sprintf("%s://%s@%s:%d/%s", scheme, auth, db.Host, db.Port, db.Database)
}

// buildDatabaseURLFromEnv rebuilds a DATABASE_URL from the seven DB_* keys
// in a loaded env map, for update()'s "refresh DATABASE_URL" step.
func buildDatabaseURLFromEnv(env map[string]string) string {
	port, _ := strconv.Atoi(env["DB_PORT"])
	db := Database{
		Type:     DBType(env["DB_TYPE"]),
		Host:     env["DB_HOST"],
		Port:     port,
		Database: env["DB_DATABASE"],
		Username: env["DB_USERNAME"],
		Password: env["DB_PASSWORD"],
		SSL:      env["DB_SSL"] == "true",
	}
	return buildDatabaseURL(db)
}
