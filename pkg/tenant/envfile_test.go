package tenant

import (
	"path/filepath"
	"testing"
)

func newTestEnvManager(t *testing.T) (*EnvFileManager, *DomainMapper) {
	t.Helper()
	domains, err := NewDomainMapper(filepath.Join(t.TempDir(), "domains.json"))
	if err != nil {
		t.Fatalf("NewDomainMapper: %v", err)
	}
	m, err := NewEnvFileManager(t.TempDir(), domains)
	if err != nil {
		t.Fatalf("NewEnvFileManager: %v", err)
	}
	return m, domains
}

func TestEnvFileManager_Generate_NamesFileFromDomain(t *testing.T) {
	m, domains := newTestEnvManager(t)

	result, err := m.Generate("hirayadmin.whitecodetech.com", EnvTemplate{
		TenantID: "hiraya",
		DB:       Database{Type: DBMySQL, Host: "db.internal", Port: 3306, Database: "hiraya_admin_cms", Username: "hiraya"},
	}, TenantTypeAdmin)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.EnvFile != ".env.hirayadminwhitecodetechcom" {
		t.Fatalf("got envFile %q, want .env.hirayadminwhitecodetechcom", result.EnvFile)
	}
	if result.DatabaseURL == "" {
		t.Fatal("expected a non-empty DatabaseURL")
	}

	entry, err := domains.Lookup("hirayadmin.whitecodetech.com")
	if err != nil {
		t.Fatalf("expected a domain mapping to have been created: %v", err)
	}
	if entry.TenantType != TenantTypeAdmin {
		t.Fatalf("got tenantType %q, want admin", entry.TenantType)
	}
	if !entry.IsActive {
		t.Fatal("expected the generated mapping to be active")
	}

	loaded, err := m.Load(result.EnvFile, "hirayadmin.whitecodetech.com", "hiraya")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Config["TENANT_ID"] != "hiraya" {
		t.Fatalf("got TENANT_ID %q, want hiraya", loaded.Config["TENANT_ID"])
	}
	if loaded.Config["DB_HOST"] != "db.internal" {
		t.Fatalf("got DB_HOST %q, want db.internal", loaded.Config["DB_HOST"])
	}
}

func TestEnvFileManager_Generate_BackfillsSecrets(t *testing.T) {
	m, _ := newTestEnvManager(t)
	result, err := m.Generate("acme.example.com", EnvTemplate{TenantID: "acme"}, TenantTypeWebsite)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	loaded, err := m.Load(result.EnvFile, "acme.example.com", "acme")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, key := range []string{"JWT_SECRET", "ENCRYPTION_KEY", "SESSION_SECRET"} {
		if len(loaded.Config[key]) < 32 {
			t.Fatalf("expected a backfilled %s of at least 32 characters, got %q", key, loaded.Config[key])
		}
	}
}

func TestEnvFileManager_GenerateRequiresDomain(t *testing.T) {
	m, _ := newTestEnvManager(t)
	if _, err := m.Generate("", EnvTemplate{TenantID: "acme"}, TenantTypeWebsite); err == nil {
		t.Fatal("expected an error generating an env file with no domain")
	}
}

func TestEnvFileManager_GeneratePair(t *testing.T) {
	m, domains := newTestEnvManager(t)

	admin, website, err := m.GeneratePair("example.com", "acme", EnvTemplate{
		DB: Database{Type: DBMySQL, Host: "db.internal", Port: 3306, Username: "acme"},
	})
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	if admin.Domain != "acmeadmin.example.com" {
		t.Fatalf("got admin domain %q, want acmeadmin.example.com", admin.Domain)
	}
	if website.Domain != "acme.example.com" {
		t.Fatalf("got website domain %q, want acme.example.com", website.Domain)
	}

	adminEntry, err := domains.Lookup("acmeadmin.example.com")
	if err != nil || adminEntry.TenantType != TenantTypeAdmin {
		t.Fatalf("expected an active admin mapping, got entry=%v err=%v", adminEntry, err)
	}
	websiteEntry, err := domains.Lookup("acme.example.com")
	if err != nil || websiteEntry.TenantType != TenantTypeWebsite {
		t.Fatalf("expected an active website mapping, got entry=%v err=%v", websiteEntry, err)
	}

	adminLoaded, err := m.Load(adminEntry.EnvFile, "acmeadmin.example.com", "acme")
	if err != nil {
		t.Fatalf("Load admin: %v", err)
	}
	if adminLoaded.Config["DB_DATABASE"] != "acme_admin_cms" {
		t.Fatalf("got admin DB_DATABASE %q, want acme_admin_cms", adminLoaded.Config["DB_DATABASE"])
	}
	websiteLoaded, err := m.Load(websiteEntry.EnvFile, "acme.example.com", "acme")
	if err != nil {
		t.Fatalf("Load website: %v", err)
	}
	if websiteLoaded.Config["DB_DATABASE"] != "acme_cms" {
		t.Fatalf("got website DB_DATABASE %q, want acme_cms", websiteLoaded.Config["DB_DATABASE"])
	}
}

func TestEnvFileManager_LoadMissing(t *testing.T) {
	m, _ := newTestEnvManager(t)
	if _, err := m.Load("nope.env", "", "nope"); err != errNotFound {
		t.Fatalf("expected errNotFound, got %v", err)
	}
}

func TestEnvFileManager_Update_RefreshesDatabaseURL(t *testing.T) {
	m, _ := newTestEnvManager(t)
	if _, err := m.Generate("acme.example.com", EnvTemplate{
		TenantID: "acme",
		DB:       Database{Type: DBMySQL, Host: "old-host", Port: 3306, Database: "acme_cms", Username: "acme"},
	}, TenantTypeWebsite); err != nil {
		t.Fatal(err)
	}

	loaded, err := m.Update("acme.example.com", map[string]string{"DB_HOST": "new-host"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if loaded.Config["DB_HOST"] != "new-host" {
		t.Fatalf("got DB_HOST %q, want new-host", loaded.Config["DB_HOST"])
	}
	if want := "mysql://acme@new-host:3306/acme_cms"; loaded.Config["DATABASE_URL"] != want {
		t.Fatalf("got DATABASE_URL %q, want %q", loaded.Config["DATABASE_URL"], want)
	}
}

func TestEnvFileManager_Update_LeavesDatabaseURLWhenDBUnchanged(t *testing.T) {
	m, _ := newTestEnvManager(t)
	if _, err := m.Generate("acme.example.com", EnvTemplate{TenantID: "acme"}, TenantTypeWebsite); err != nil {
		t.Fatal(err)
	}
	before, err := m.Load(envFileName("acme.example.com"), "acme.example.com", "acme")
	if err != nil {
		t.Fatal(err)
	}

	after, err := m.Update("acme.example.com", map[string]string{"TENANT_NAME": "Acme Inc"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if after.Config["DATABASE_URL"] != before.Config["DATABASE_URL"] {
		t.Fatal("expected DATABASE_URL to be unchanged when no DB_* key was updated")
	}
	if after.Config["TENANT_NAME"] != "Acme Inc" {
		t.Fatalf("got TENANT_NAME %q, want Acme Inc", after.Config["TENANT_NAME"])
	}
}

func TestEnvFileManager_Delete(t *testing.T) {
	m, domains := newTestEnvManager(t)
	result, err := m.Generate("acme.example.com", EnvTemplate{TenantID: "acme"}, TenantTypeWebsite)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Delete("acme.example.com"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Load(result.EnvFile, "", ""); err != errNotFound {
		t.Fatalf("expected errNotFound after delete, got %v", err)
	}
	if _, err := domains.Lookup("acme.example.com"); err != errNotFound {
		t.Fatalf("expected the domain mapping to be removed on Delete, got %v", err)
	}
}

func TestEnvFileManager_DeleteMissingIsNotAnError(t *testing.T) {
	m, _ := newTestEnvManager(t)
	if err := m.Delete("never-existed.example.com"); err != nil {
		t.Fatalf("deleting a nonexistent env file should be a no-op, got %v", err)
	}
}

func TestEnvFileManager_List(t *testing.T) {
	m, _ := newTestEnvManager(t)
	if _, err := m.Generate("acme.example.com", EnvTemplate{TenantID: "acme"}, TenantTypeWebsite); err != nil {
		t.Fatal(err)
	}
	listing := m.List()
	if len(listing) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listing))
	}
	if !listing[0].Exists {
		t.Fatal("expected the generated env file to exist on disk")
	}
}

func TestEnvFileManager_Validate(t *testing.T) {
	m, _ := newTestEnvManager(t)
	if _, err := m.Generate("acme.example.com", EnvTemplate{
		TenantID: "acme",
		DB:       Database{Type: DBMySQL, Host: "db.internal", Port: 3306, Database: "acme_cms", Username: "acme"},
	}, TenantTypeWebsite); err != nil {
		t.Fatal(err)
	}

	result, err := m.Validate("acme.example.com")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.Exists || !result.Valid {
		t.Fatalf("expected a valid, existing env file, got %+v", result)
	}
}

func TestEnvFileManager_Validate_MissingDomain(t *testing.T) {
	m, _ := newTestEnvManager(t)
	result, err := m.Validate("never-generated.example.com")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.Exists {
		t.Fatal("expected Exists=false for a domain with no mapping")
	}
}

func TestParseEnvFile_SkipsCommentsAndBlankLines(t *testing.T) {
	data := []byte("# a comment\n\n;also a comment\nFOO=bar\nBAZ=\"quoted value\"\n")
	config, err := parseEnvFile(data)
	if err != nil {
		t.Fatalf("parseEnvFile: %v", err)
	}
	if config["FOO"] != "bar" {
		t.Fatalf("got FOO=%q, want bar", config["FOO"])
	}
	if config["BAZ"] != "quoted value" {
		t.Fatalf("got BAZ=%q, want 'quoted value' with quotes stripped", config["BAZ"])
	}
	if len(config) != 2 {
		t.Fatalf("expected exactly 2 entries, got %v", config)
	}
}

func TestBuildDatabaseURL_SQLite(t *testing.T) {
	url := buildDatabaseURL(Database{Type: DBSQLite, Database: "/data/acme.db"})
	if url != "sqlite:///data/acme.db" {
		t.Fatalf("got %q, want sqlite:///data/acme.db", url)
	}
}

func TestBuildDatabaseURL_Postgres(t *testing.T) {
	url := buildDatabaseURL(Database{Type: DBPostgreSQL, Host: "h", Port: 5432, Username: "u", Password: "p", Database: "d"})
	want := "postgresql://u:p@h:5432/d"
	if url != want {
		t.Fatalf("got %q, want %q", url, want)
	}
}
