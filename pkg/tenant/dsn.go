package tenant

import (
	"fmt"
	"strings"
	"time"

	"github.com/echterhof/rockstar-web-framework/pkg"
)

// driverName maps a tenant database type onto the driver name the
// framework's DatabaseManager.Connect expects, per §5.1's driver table.
func driverName(t DBType) string {
	switch t {
	case DBMySQL:
		return "mysql"
	case DBPostgreSQL:
		return "postgres"
	case DBSQLite:
		return "sqlite3"
	default:
		return string(t)
	}
}

// defaultPort returns the well-known port for a driver when the descriptor
// leaves Port unset.
func defaultPort(t DBType) int {
	switch t {
	case DBMySQL:
		return 3306
	case DBPostgreSQL:
		return 5432
	default:
		return 0
	}
}

// BuildDatabaseConfig translates a tenant's Database block into the
// framework's DatabaseConfig, the same shape buildDSN dispatches on in
// pkg/database_impl.go, so a pool's connection reuses the teacher's DSN
// builders unmodified.
func BuildDatabaseConfig(db Database, idleTimeout time.Duration) pkg.DatabaseConfig {
	port := db.Port
	if port == 0 {
		port = defaultPort(db.Type)
	}

	sslMode := ""
	if db.Type == DBPostgreSQL {
		if db.SSL {
			sslMode = "require"
		} else {
			sslMode = "disable"
		}
	}

	maxOpen := db.ConnectionLimit
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := maxOpen / 2
	if maxIdle < 1 {
		maxIdle = 1
	}

	options := map[string]string{}
	if db.Type == DBMySQL && db.SSL {
		options["tls"] = "true"
	}

	return pkg.DatabaseConfig{
		Driver:          driverName(db.Type),
		Host:            db.Host,
		Port:            port,
		Database:        db.Database,
		Username:        db.Username,
		Password:        db.Password,
		SSLMode:         sslMode,
		ConnMaxLifetime: idleTimeout,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		Options:         options,
	}
}

// BuildDSN returns the sql.Open driver name and connection string for a
// tenant database, a direct generalization of buildMySQLDSN/
// buildPostgresDSN/buildMSSQLDSN/buildSQLiteDSN in pkg/database_impl.go,
// parameterized on a per-tenant Database instead of the framework's single
// global DatabaseConfig — the Pool Manager opens one *sql.DB per tenant, so
// it cannot route through DatabaseManager.Connect, which only ever holds
// one connection at a time.
func BuildDSN(db Database) (driver, dsn string) {
	driver = driverName(db.Type)
	port := db.Port
	if port == 0 {
		port = defaultPort(db.Type)
	}

	switch db.Type {
	case DBMySQL:
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true",
			db.Username, db.Password, db.Host, port, db.Database)
		if db.SSL {
			dsn += "&tls=true"
		}
	case DBPostgreSQL:
		sslmode := "disable"
		if db.SSL {
			sslmode = "require"
		}
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			db.Host, port, db.Username, db.Password, db.Database, sslmode)
	case DBSQLite:
		params := []string{"_journal_mode=WAL", "_foreign_keys=ON", "_busy_timeout=5000"}
		dsn = db.Database + "?" + strings.Join(params, "&")
	default:
		dsn = ""
	}

	return driver, dsn
}
