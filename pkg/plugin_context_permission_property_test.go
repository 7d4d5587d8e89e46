package pkg

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_PermissionEnforcement tests Property 8:
// Permission Enforcement
// **Feature: compile-time-plugins, Property 8: Permission Enforcement**
// **Validates: Requirements 5.2, 5.3**
// For any plugin attempting to access a framework service, if the plugin lacks
// the required permission, the access should be denied with a permission error.
func TestProperty_PermissionEnforcement(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("unauthorized access is denied and logged", prop.ForAll(
		func(permissions PluginPermissions, service string) bool {
			// Create a mock logger to capture security violations
			logger := &permissionTestLogger{logs: make([]string, 0)}

			// Create permission checker with the given permissions
			checker := NewPermissionChecker(logger)
			pluginName := "test-plugin"

			// Set permissions for the plugin
			if err := checker.(*permissionCheckerImpl).SetPermissions(pluginName, permissions); err != nil {
				t.Logf("Failed to set permissions: %v", err)
				return false
			}

			// Create plugin context with the permission checker
			ctx := &pluginContextImpl{
				pluginName:        pluginName,
				logger:            logger,
				permissionChecker: checker,
				router:            &mockRouterEngine{},
				database:          &mockDatabaseManager{},
				cache:             &mockCacheManager{},
				config:            &mockConfigManager{},
				fileSystem:        &mockFileManager{},
				network:           &mockNetworkClient{},
			}

			// Determine if the service should be accessible
			hasPermission := false
			switch service {
			case "database":
				hasPermission = permissions.AllowDatabase
			case "cache":
				hasPermission = permissions.AllowCache
			case "config":
				hasPermission = permissions.AllowConfig
			case "router":
				hasPermission = permissions.AllowRouter
			case "filesystem":
				hasPermission = permissions.AllowFileSystem
			case "network":
				hasPermission = permissions.AllowNetwork
			}

			// Try to access the service
			var accessedService interface{}
			switch service {
			case "database":
				accessedService = ctx.Database()
			case "cache":
				accessedService = ctx.Cache()
			case "config":
				accessedService = ctx.Config()
			case "router":
				accessedService = ctx.Router()
			case "filesystem":
				accessedService = ctx.FileSystem()
			case "network":
				accessedService = ctx.Network()
			}

			// If permission is granted, should get real service
			// If permission is denied, should get no-op service
			if hasPermission {
				// Should get the real service (not a no-op)
				switch service {
				case "database":
					if _, ok := accessedService.(*permissionDeniedDatabaseManager); ok {
						t.Logf("Expected real database manager but got no-op for service %s with permission", service)
						return false
					}
				case "cache":
					if _, ok := accessedService.(*permissionDeniedCacheManager); ok {
						t.Logf("Expected real cache manager but got no-op for service %s with permission", service)
						return false
					}
				case "config":
					if _, ok := accessedService.(*permissionDeniedConfigManager); ok {
						t.Logf("Expected real config manager but got no-op for service %s with permission", service)
						return false
					}
				case "router":
					if _, ok := accessedService.(*permissionDeniedRouterEngine); ok {
						t.Logf("Expected real router engine but got no-op for service %s with permission", service)
						return false
					}
				case "filesystem":
					if _, ok := accessedService.(*permissionDeniedFileManager); ok {
						t.Logf("Expected real file manager but got no-op for service %s with permission", service)
						return false
					}
				case "network":
					if _, ok := accessedService.(*permissionDeniedNetworkClient); ok {
						t.Logf("Expected real network client but got no-op for service %s with permission", service)
						return false
					}
				}

				// Should not have logged a security violation
				if len(logger.logs) > 0 {
					for _, log := range logger.logs {
						if strings.Contains(log, "Security violation") {
							t.Logf("Unexpected security violation logged for authorized access to %s", service)
							return false
						}
					}
				}
			} else {
				// Should get a no-op service
				isNoOp := false
				switch service {
				case "database":
					_, isNoOp = accessedService.(*permissionDeniedDatabaseManager)
				case "cache":
					_, isNoOp = accessedService.(*permissionDeniedCacheManager)
				case "config":
					_, isNoOp = accessedService.(*permissionDeniedConfigManager)
				case "router":
					_, isNoOp = accessedService.(*permissionDeniedRouterEngine)
				case "filesystem":
					_, isNoOp = accessedService.(*permissionDeniedFileManager)
				case "network":
					_, isNoOp = accessedService.(*permissionDeniedNetworkClient)
				}

				if !isNoOp {
					t.Logf("Expected no-op service but got real service for %s without permission", service)
					return false
				}

				// Should have logged a security violation
				foundViolation := false
				for _, log := range logger.logs {
					if strings.Contains(log, "Security violation") && strings.Contains(log, pluginName) {
						foundViolation = true
						break
					}
				}

				if !foundViolation {
					t.Logf("Expected security violation to be logged for unauthorized access to %s", service)
					return false
				}
			}

			return true
		},
		genPluginPermissions(),
		gen.OneConstOf("database", "cache", "config", "router", "filesystem", "network"),
	))

	properties.Property("no-op services return permission errors", prop.ForAll(
		func(service string) bool {
			// Create a plugin context with no permissions
			logger := &permissionTestLogger{logs: make([]string, 0)}
			checker := NewPermissionChecker(logger)
			pluginName := "test-plugin"

			// Set empty permissions (all false)
			emptyPerms := PluginPermissions{
				AllowDatabase:   false,
				AllowCache:      false,
				AllowConfig:     false,
				AllowRouter:     false,
				AllowFileSystem: false,
				AllowNetwork:    false,
			}
			if err := checker.(*permissionCheckerImpl).SetPermissions(pluginName, emptyPerms); err != nil {
				t.Logf("Failed to set permissions: %v", err)
				return false
			}

			ctx := &pluginContextImpl{
				pluginName:        pluginName,
				logger:            logger,
				permissionChecker: checker,
				router:            &mockRouterEngine{},
				database:          &mockDatabaseManager{},
				cache:             &mockCacheManager{},
				config:            &mockConfigManager{},
				fileSystem:        &mockFileManager{},
				network:           &mockNetworkClient{},
			}

			// Try to use the service and verify it returns an error
			var err error
			switch service {
			case "database":
				db := ctx.Database()
				err = db.Ping()
			case "cache":
				cache := ctx.Cache()
				err = cache.Set("key", "value", 0)
			case "config":
				config := ctx.Config()
				err = config.Load("test.yaml")
			case "router":
				// Router methods don't return errors, but they should be no-ops
				router := ctx.Router()
				if _, ok := router.(*permissionDeniedRouterEngine); !ok {
					t.Logf("Expected no-op router but got real router")
					return false
				}
				return true
			case "filesystem":
				fs := ctx.FileSystem()
				_, err = fs.Read("test.txt")
			case "network":
				net := ctx.Network()
				_, err = net.Get("http://example.com", nil)
			}

			// Should return a permission denied error
			if err == nil {
				t.Logf("Expected permission error for service %s but got nil", service)
				return false
			}

			if !strings.Contains(err.Error(), "permission denied") {
				t.Logf("Expected 'permission denied' error but got: %v", err)
				return false
			}

			return true
		},
		gen.OneConstOf("database", "cache", "config", "router", "filesystem", "network"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// genPluginPermissions generates random plugin permissions
func genPluginPermissions() gopter.Gen {
	return gopter.CombineGens(
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	).Map(func(values []interface{}) PluginPermissions {
		return PluginPermissions{
			AllowDatabase:   values[0].(bool),
			AllowCache:      values[1].(bool),
			AllowConfig:     values[2].(bool),
			AllowRouter:     values[3].(bool),
			AllowFileSystem: values[4].(bool),
			AllowNetwork:    values[5].(bool),
		}
	})
}

// Mock implementations for testing

type permissionTestLogger struct {
	logs []string
}

func (m *permissionTestLogger) Debug(msg string, fields ...interface{}) {
	m.logs = append(m.logs, msg)
}

func (m *permissionTestLogger) Info(msg string, fields ...interface{}) {
	m.logs = append(m.logs, msg)
}

func (m *permissionTestLogger) Warn(msg string, fields ...interface{}) {
	m.logs = append(m.logs, msg)
}

func (m *permissionTestLogger) Error(msg string, fields ...interface{}) {
	m.logs = append(m.logs, msg)
}

func (m *permissionTestLogger) WithRequestID(requestID string) Logger {
	return m
}

type mockRouterEngine struct{}

func (m *mockRouterEngine) GET(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) POST(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) PUT(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) DELETE(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) PATCH(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) OPTIONS(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) HEAD(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) Handle(method, path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) Group(prefix string, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) Host(hostname string) RouterEngine {
	return m
}
func (m *mockRouterEngine) Static(prefix string, filesystem VirtualFS) RouterEngine {
	return m
}
func (m *mockRouterEngine) StaticFile(path, filepath string) RouterEngine {
	return m
}
func (m *mockRouterEngine) WebSocket(path string, handler WebSocketHandler, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) GraphQL(path string, schema GraphQLSchema, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) GRPC(service GRPCService, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) SOAP(path string, service SOAPService, middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) Use(middleware ...MiddlewareFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) Match(method, path, host string) (*Route, map[string]string, bool) {
	return nil, nil, false
}
func (m *mockRouterEngine) Routes() []*Route {
	return nil
}
func (m *mockRouterEngine) NotFound(handler HandlerFunc) RouterEngine {
	return m
}
func (m *mockRouterEngine) MethodNotAllowed(handler HandlerFunc) RouterEngine {
	return m
}

type mockDatabaseManager struct{}

func (m *mockDatabaseManager) Connect(config DatabaseConfig) error { return nil }
func (m *mockDatabaseManager) Close() error                        { return nil }
func (m *mockDatabaseManager) Ping() error                         { return nil }
func (m *mockDatabaseManager) Stats() DatabaseStats                { return DatabaseStats{} }
func (m *mockDatabaseManager) IsConnected() bool                   { return true }
func (m *mockDatabaseManager) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (m *mockDatabaseManager) QueryRow(query string, args ...interface{}) *sql.Row {
	return nil
}
func (m *mockDatabaseManager) Exec(query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (m *mockDatabaseManager) Prepare(query string) (*sql.Stmt, error) { return nil, nil }
func (m *mockDatabaseManager) Begin() (Transaction, error)             { return nil, nil }
func (m *mockDatabaseManager) BeginTx(opts *sql.TxOptions) (Transaction, error) {
	return nil, nil
}
func (m *mockDatabaseManager) SaveSession(session *Session) error { return nil }
func (m *mockDatabaseManager) LoadSession(sessionID string) (*Session, error) {
	return nil, nil
}
func (m *mockDatabaseManager) DeleteSession(sessionID string) error { return nil }
func (m *mockDatabaseManager) CleanupExpiredSessions() error        { return nil }
func (m *mockDatabaseManager) SaveAccessToken(token *AccessToken) error {
	return nil
}
func (m *mockDatabaseManager) LoadAccessToken(tokenValue string) (*AccessToken, error) {
	return nil, nil
}
func (m *mockDatabaseManager) ValidateAccessToken(tokenValue string) (*AccessToken, error) {
	return nil, nil
}
func (m *mockDatabaseManager) DeleteAccessToken(tokenValue string) error { return nil }
func (m *mockDatabaseManager) CleanupExpiredTokens() error               { return nil }
func (m *mockDatabaseManager) SaveTenant(tenant *Tenant) error           { return nil }
func (m *mockDatabaseManager) LoadTenant(tenantID string) (*Tenant, error) {
	return nil, nil
}
func (m *mockDatabaseManager) LoadTenantByHost(hostname string) (*Tenant, error) {
	return nil, nil
}
func (m *mockDatabaseManager) SaveWorkloadMetrics(metrics *WorkloadMetrics) error {
	return nil
}
func (m *mockDatabaseManager) GetWorkloadMetrics(tenantID string, from, to time.Time) ([]*WorkloadMetrics, error) {
	return nil, nil
}
func (m *mockDatabaseManager) CheckRateLimit(key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}
func (m *mockDatabaseManager) IncrementRateLimit(key string, window time.Duration) error {
	return nil
}
func (m *mockDatabaseManager) Migrate() error                       { return nil }
func (m *mockDatabaseManager) CreateTables() error                  { return nil }
func (m *mockDatabaseManager) DropTables() error                    { return nil }
func (m *mockDatabaseManager) InitializePluginTables() error        { return nil }
func (m *mockDatabaseManager) GetQuery(name string) (string, error) { return "", nil }

type mockCacheManager struct{}

func (m *mockCacheManager) Get(key string) (interface{}, error) { return nil, nil }
func (m *mockCacheManager) Set(key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (m *mockCacheManager) Delete(key string) error               { return nil }
func (m *mockCacheManager) Exists(key string) bool                { return false }
func (m *mockCacheManager) TTL(key string) (time.Duration, error) { return 0, nil }
func (m *mockCacheManager) SetMultiple(items map[string]interface{}, ttl time.Duration) error {
	return nil
}
func (m *mockCacheManager) GetMultiple(keys []string) (map[string]interface{}, error) {
	return nil, nil
}
func (m *mockCacheManager) DeleteMultiple(keys []string) error { return nil }
func (m *mockCacheManager) Increment(key string, delta int64) (int64, error) {
	return 0, nil
}
func (m *mockCacheManager) Decrement(key string, delta int64) (int64, error) {
	return 0, nil
}
func (m *mockCacheManager) Expire(key string, ttl time.Duration) error { return nil }
func (m *mockCacheManager) Clear() error                               { return nil }
func (m *mockCacheManager) Invalidate(pattern string) error            { return nil }
func (m *mockCacheManager) GetRequestCache(requestID string) RequestCache {
	return nil
}
func (m *mockCacheManager) ClearRequestCache(requestID string) error { return nil }

type mockConfigManager struct{}

func (m *mockConfigManager) Load(configPath string) error         { return nil }
func (m *mockConfigManager) LoadFromEnv() error                   { return nil }
func (m *mockConfigManager) Reload() error                        { return nil }
func (m *mockConfigManager) GetString(key string) string          { return "" }
func (m *mockConfigManager) GetInt(key string) int                { return 0 }
func (m *mockConfigManager) GetInt64(key string) int64            { return 0 }
func (m *mockConfigManager) GetFloat64(key string) float64        { return 0 }
func (m *mockConfigManager) GetBool(key string) bool              { return false }
func (m *mockConfigManager) GetDuration(key string) time.Duration { return 0 }
func (m *mockConfigManager) GetStringSlice(key string) []string   { return nil }
func (m *mockConfigManager) GetWithDefault(key string, defaultValue interface{}) interface{} {
	return defaultValue
}
func (m *mockConfigManager) GetStringWithDefault(key, defaultValue string) string {
	return defaultValue
}
func (m *mockConfigManager) GetIntWithDefault(key string, defaultValue int) int {
	return defaultValue
}
func (m *mockConfigManager) GetBoolWithDefault(key string, defaultValue bool) bool {
	return defaultValue
}
func (m *mockConfigManager) GetEnv() string               { return "" }
func (m *mockConfigManager) Sub(key string) ConfigManager { return m }
func (m *mockConfigManager) IsSet(key string) bool        { return false }
func (m *mockConfigManager) IsProduction() bool           { return false }
func (m *mockConfigManager) IsDevelopment() bool          { return false }
func (m *mockConfigManager) IsTest() bool                 { return false }
func (m *mockConfigManager) Validate() error              { return nil }
func (m *mockConfigManager) Watch(callback func()) error  { return nil }
func (m *mockConfigManager) StopWatching() error          { return nil }

type mockFileManager struct{}

func (m *mockFileManager) Read(path string) ([]byte, error)     { return nil, nil }
func (m *mockFileManager) Write(path string, data []byte) error { return nil }
func (m *mockFileManager) Delete(path string) error             { return nil }
func (m *mockFileManager) Exists(path string) bool              { return false }
func (m *mockFileManager) CreateDir(path string) error          { return nil }
func (m *mockFileManager) SaveUploadedFile(ctx Context, filename string, destPath string) error {
	return nil
}

type mockNetworkClient struct{}

func (m *mockNetworkClient) Get(url string, headers map[string]string) ([]byte, error) {
	return nil, nil
}
func (m *mockNetworkClient) Post(url string, body []byte, headers map[string]string) ([]byte, error) {
	return nil, nil
}
func (m *mockNetworkClient) Put(url string, body []byte, headers map[string]string) ([]byte, error) {
	return nil, nil
}
func (m *mockNetworkClient) Delete(url string, headers map[string]string) ([]byte, error) {
	return nil, nil
}
func (m *mockNetworkClient) Do(method, url string, body []byte, headers map[string]string) ([]byte, int, error) {
	return nil, 0, nil
}
