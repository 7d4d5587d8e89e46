package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/echterhof/rockstar-web-framework/pkg/tenant"
)

// Exit codes per spec.md §6: 0 success, 1 general error, 2 validation
// error, 3 tenant not found, 4 I/O error.
const (
	exitOK          = 0
	exitGeneral     = 1
	exitValidation  = 2
	exitNotFound    = 3
	exitIO          = 4
)

var appVersion = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return exitGeneral
	}

	// The first argument is the subcommand; a distinct flag.FlagSet per verb
	// keeps each subcommand's flags independent, the same shape as the
	// teacher's single flat flag set but split per verb.
	cmd := args[0]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	root := fs.String("config-root", "./tenants", "root directory for tenant descriptors, env files, and the domain map")

	switch cmd {
	case "create":
		name := fs.String("name", "", "tenant display name")
		subdomain := fs.String("subdomain", "", "tenant subdomain")
		domain := fs.String("domain", "", "custom domain (optional)")
		tier := fs.String("tier", "starter", "tier preset: starter, professional, enterprise")
		dbType := fs.String("db-type", "sqlite", "database type: mysql, postgresql, sqlite")
		dbHost := fs.String("db-host", "localhost", "database host")
		if err := fs.Parse(args[1:]); err != nil {
			return exitGeneral
		}
		return cmdCreate(*root, *name, *subdomain, *domain, *tier, *dbType, *dbHost)
	case "list":
		if err := fs.Parse(args[1:]); err != nil {
			return exitGeneral
		}
		return cmdList(*root)
	case "get":
		id := fs.String("id", "", "tenant id")
		if err := fs.Parse(args[1:]); err != nil {
			return exitGeneral
		}
		return cmdGet(*root, *id)
	case "suspend", "activate", "archive":
		id := fs.String("id", "", "tenant id")
		if err := fs.Parse(args[1:]); err != nil {
			return exitGeneral
		}
		return cmdSetStatus(*root, *id, cmd)
	case "delete":
		id := fs.String("id", "", "tenant id")
		if err := fs.Parse(args[1:]); err != nil {
			return exitGeneral
		}
		return cmdDelete(*root, *id)
	case "export":
		id := fs.String("id", "", "tenant id")
		if err := fs.Parse(args[1:]); err != nil {
			return exitGeneral
		}
		return cmdExport(*root, *id)
	case "version":
		fmt.Printf("tenantctl v%s\n", appVersion)
		return exitOK
	default:
		usage()
		return exitGeneral
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tenantctl <create|list|get|suspend|activate|archive|delete|export> [flags]")
}

func newServices(root string) (*tenant.AdminService, error) {
	store, err := tenant.NewConfigStore(root+"/descriptors", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	domains, err := tenant.NewDomainMapper(root + "/domains.json")
	if err != nil {
		return nil, err
	}
	envMgr, err := tenant.NewEnvFileManager(root+"/env", domains)
	if err != nil {
		return nil, err
	}
	pool := tenant.NewPoolManager()
	gate := tenant.NewSecurityGate(nil)

	admin := tenant.NewAdminService(store, envMgr, domains, pool, gate, tenant.ProvisionConfig{
		Type: tenant.DBSQLite,
	})
	return admin, nil
}

func cmdCreate(root, name, subdomain, domain, tier, dbType, dbHost string) int {
	if name == "" || subdomain == "" {
		fmt.Fprintln(os.Stderr, "create requires -name and -subdomain")
		return exitValidation
	}

	admin, err := newServices(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIO
	}
	admin.Provision.Type = tenant.DBType(dbType)
	admin.Provision.Host = dbHost

	d, err := admin.Create(tenant.CreateRequest{
		Name:      name,
		Subdomain: subdomain,
		Domain:    domain,
		Tier:      tenant.Tier(tier),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitValidation
	}
	printJSON(tenant.RedactDescriptor(d))
	return exitOK
}

func cmdList(root string) int {
	admin, err := newServices(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIO
	}
	list, err := admin.ListSummary()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIO
	}
	printJSON(list)
	return exitOK
}

func cmdGet(root, id string) int {
	if id == "" {
		return exitValidation
	}
	admin, err := newServices(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIO
	}
	d, err := admin.Get(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitNotFound
	}
	printJSON(tenant.RedactDescriptor(d))
	return exitOK
}

func cmdSetStatus(root, id, op string) int {
	if id == "" {
		return exitValidation
	}
	admin, err := newServices(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIO
	}

	var d *tenant.Descriptor
	switch op {
	case "suspend":
		d, err = admin.Suspend(id)
	case "activate":
		d, err = admin.Activate(id)
	case "archive":
		d, err = admin.Archive(id)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitNotFound
	}
	printJSON(tenant.RedactDescriptor(d))
	return exitOK
}

func cmdDelete(root, id string) int {
	if id == "" {
		return exitValidation
	}
	admin, err := newServices(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIO
	}
	if err := admin.Delete(id); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitNotFound
	}
	fmt.Println("deleted")
	return exitOK
}

func cmdExport(root, id string) int {
	if id == "" {
		return exitValidation
	}
	admin, err := newServices(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIO
	}
	d, err := admin.ExportConfig(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitNotFound
	}
	printJSON(d)
	return exitOK
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
