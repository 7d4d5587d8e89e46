package pkg

import (
	"database/sql"
	"fmt"
	"time"
)

// Permission-denied no-op implementations for plugin context
// These implementations log security violations and return safe defaults

// permissionDeniedDatabaseManager is a no-op implementation of DatabaseManager for permission-denied access
type permissionDeniedDatabaseManager struct {
	pluginName string
	logger     Logger
}

func newPermissionDeniedDatabaseManager(pluginName string, logger Logger) DatabaseManager {
	return &permissionDeniedDatabaseManager{
		pluginName: pluginName,
		logger:     logger,
	}
}

func (n *permissionDeniedDatabaseManager) logViolation(operation string) {
	if n.logger != nil {
		n.logger.Warn(fmt.Sprintf("Security violation: Plugin %s attempted database operation '%s' without permission", n.pluginName, operation))
	}
}

func (n *permissionDeniedDatabaseManager) Connect(config DatabaseConfig) error {
	n.logViolation("Connect")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) Close() error {
	n.logViolation("Close")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) Ping() error {
	n.logViolation("Ping")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) Stats() DatabaseStats {
	n.logViolation("Stats")
	return DatabaseStats{}
}

func (n *permissionDeniedDatabaseManager) IsConnected() bool {
	n.logViolation("IsConnected")
	return false
}

func (n *permissionDeniedDatabaseManager) Query(query string, args ...interface{}) (*sql.Rows, error) {
	n.logViolation("Query")
	return nil, fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) QueryRow(query string, args ...interface{}) *sql.Row {
	n.logViolation("QueryRow")
	return nil
}

func (n *permissionDeniedDatabaseManager) Exec(query string, args ...interface{}) (sql.Result, error) {
	n.logViolation("Exec")
	return nil, fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) Prepare(query string) (*sql.Stmt, error) {
	n.logViolation("Prepare")
	return nil, fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) Begin() (Transaction, error) {
	n.logViolation("Begin")
	return nil, fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) BeginTx(opts *sql.TxOptions) (Transaction, error) {
	n.logViolation("BeginTx")
	return nil, fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) SaveSession(session *Session) error {
	n.logViolation("SaveSession")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) LoadSession(sessionID string) (*Session, error) {
	n.logViolation("LoadSession")
	return nil, fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) DeleteSession(sessionID string) error {
	n.logViolation("DeleteSession")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) CleanupExpiredSessions() error {
	n.logViolation("CleanupExpiredSessions")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) SaveAccessToken(token *AccessToken) error {
	n.logViolation("SaveAccessToken")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) LoadAccessToken(tokenValue string) (*AccessToken, error) {
	n.logViolation("LoadAccessToken")
	return nil, fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) ValidateAccessToken(tokenValue string) (*AccessToken, error) {
	n.logViolation("ValidateAccessToken")
	return nil, fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) DeleteAccessToken(tokenValue string) error {
	n.logViolation("DeleteAccessToken")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) CleanupExpiredTokens() error {
	n.logViolation("CleanupExpiredTokens")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) SaveTenant(tenant *Tenant) error {
	n.logViolation("SaveTenant")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) LoadTenant(tenantID string) (*Tenant, error) {
	n.logViolation("LoadTenant")
	return nil, fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) LoadTenantByHost(hostname string) (*Tenant, error) {
	n.logViolation("LoadTenantByHost")
	return nil, fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) SaveWorkloadMetrics(metrics *WorkloadMetrics) error {
	n.logViolation("SaveWorkloadMetrics")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) GetWorkloadMetrics(tenantID string, from, to time.Time) ([]*WorkloadMetrics, error) {
	n.logViolation("GetWorkloadMetrics")
	return nil, fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) CheckRateLimit(key string, limit int, window time.Duration) (bool, error) {
	n.logViolation("CheckRateLimit")
	return false, fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) IncrementRateLimit(key string, window time.Duration) error {
	n.logViolation("IncrementRateLimit")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) Migrate() error {
	n.logViolation("Migrate")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) CreateTables() error {
	n.logViolation("CreateTables")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) DropTables() error {
	n.logViolation("DropTables")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) InitializePluginTables() error {
	n.logViolation("InitializePluginTables")
	return fmt.Errorf("permission denied: database access not allowed")
}

func (n *permissionDeniedDatabaseManager) GetQuery(name string) (string, error) {
	n.logViolation("GetQuery")
	return "", fmt.Errorf("permission denied: database access not allowed")
}

// permissionDeniedCacheManager is a no-op implementation of CacheManager for permission-denied access
type permissionDeniedCacheManager struct {
	pluginName string
	logger     Logger
}

func newPermissionDeniedCacheManager(pluginName string, logger Logger) CacheManager {
	return &permissionDeniedCacheManager{
		pluginName: pluginName,
		logger:     logger,
	}
}

func (n *permissionDeniedCacheManager) logViolation(operation string) {
	if n.logger != nil {
		n.logger.Warn(fmt.Sprintf("Security violation: Plugin %s attempted cache operation '%s' without permission", n.pluginName, operation))
	}
}

func (n *permissionDeniedCacheManager) Get(key string) (interface{}, error) {
	n.logViolation("Get")
	return nil, fmt.Errorf("permission denied: cache access not allowed")
}

func (n *permissionDeniedCacheManager) Set(key string, value interface{}, ttl time.Duration) error {
	n.logViolation("Set")
	return fmt.Errorf("permission denied: cache access not allowed")
}

func (n *permissionDeniedCacheManager) Delete(key string) error {
	n.logViolation("Delete")
	return fmt.Errorf("permission denied: cache access not allowed")
}

func (n *permissionDeniedCacheManager) Exists(key string) bool {
	n.logViolation("Exists")
	return false
}

func (n *permissionDeniedCacheManager) TTL(key string) (time.Duration, error) {
	n.logViolation("TTL")
	return 0, fmt.Errorf("permission denied: cache access not allowed")
}

func (n *permissionDeniedCacheManager) SetMultiple(items map[string]interface{}, ttl time.Duration) error {
	n.logViolation("SetMultiple")
	return fmt.Errorf("permission denied: cache access not allowed")
}

func (n *permissionDeniedCacheManager) GetMultiple(keys []string) (map[string]interface{}, error) {
	n.logViolation("GetMultiple")
	return nil, fmt.Errorf("permission denied: cache access not allowed")
}

func (n *permissionDeniedCacheManager) DeleteMultiple(keys []string) error {
	n.logViolation("DeleteMultiple")
	return fmt.Errorf("permission denied: cache access not allowed")
}

func (n *permissionDeniedCacheManager) Increment(key string, delta int64) (int64, error) {
	n.logViolation("Increment")
	return 0, fmt.Errorf("permission denied: cache access not allowed")
}

func (n *permissionDeniedCacheManager) Decrement(key string, delta int64) (int64, error) {
	n.logViolation("Decrement")
	return 0, fmt.Errorf("permission denied: cache access not allowed")
}

func (n *permissionDeniedCacheManager) Expire(key string, ttl time.Duration) error {
	n.logViolation("Expire")
	return fmt.Errorf("permission denied: cache access not allowed")
}

func (n *permissionDeniedCacheManager) Clear() error {
	n.logViolation("Clear")
	return fmt.Errorf("permission denied: cache access not allowed")
}

func (n *permissionDeniedCacheManager) Invalidate(pattern string) error {
	n.logViolation("Invalidate")
	return fmt.Errorf("permission denied: cache access not allowed")
}

func (n *permissionDeniedCacheManager) GetRequestCache(requestID string) RequestCache {
	n.logViolation("GetRequestCache")
	return nil
}

func (n *permissionDeniedCacheManager) ClearRequestCache(requestID string) error {
	n.logViolation("ClearRequestCache")
	return fmt.Errorf("permission denied: cache access not allowed")
}

// permissionDeniedConfigManager is a no-op implementation of ConfigManager for permission-denied access
type permissionDeniedConfigManager struct {
	pluginName string
	logger     Logger
}

func newPermissionDeniedConfigManager(pluginName string, logger Logger) ConfigManager {
	return &permissionDeniedConfigManager{
		pluginName: pluginName,
		logger:     logger,
	}
}

func (n *permissionDeniedConfigManager) logViolation(operation string) {
	if n.logger != nil {
		n.logger.Warn(fmt.Sprintf("Security violation: Plugin %s attempted config operation '%s' without permission", n.pluginName, operation))
	}
}

func (n *permissionDeniedConfigManager) Load(configPath string) error {
	n.logViolation("Load")
	return fmt.Errorf("permission denied: config access not allowed")
}

func (n *permissionDeniedConfigManager) LoadFromEnv() error {
	n.logViolation("LoadFromEnv")
	return fmt.Errorf("permission denied: config access not allowed")
}

func (n *permissionDeniedConfigManager) Reload() error {
	n.logViolation("Reload")
	return fmt.Errorf("permission denied: config access not allowed")
}

func (n *permissionDeniedConfigManager) GetString(key string) string {
	n.logViolation("GetString")
	return ""
}

func (n *permissionDeniedConfigManager) GetInt(key string) int {
	n.logViolation("GetInt")
	return 0
}

func (n *permissionDeniedConfigManager) GetInt64(key string) int64 {
	n.logViolation("GetInt64")
	return 0
}

func (n *permissionDeniedConfigManager) GetFloat64(key string) float64 {
	n.logViolation("GetFloat64")
	return 0
}

func (n *permissionDeniedConfigManager) GetBool(key string) bool {
	n.logViolation("GetBool")
	return false
}

func (n *permissionDeniedConfigManager) GetDuration(key string) time.Duration {
	n.logViolation("GetDuration")
	return 0
}

func (n *permissionDeniedConfigManager) GetStringSlice(key string) []string {
	n.logViolation("GetStringSlice")
	return nil
}

func (n *permissionDeniedConfigManager) GetWithDefault(key string, defaultValue interface{}) interface{} {
	n.logViolation("GetWithDefault")
	return defaultValue
}

func (n *permissionDeniedConfigManager) GetStringWithDefault(key, defaultValue string) string {
	n.logViolation("GetStringWithDefault")
	return defaultValue
}

func (n *permissionDeniedConfigManager) GetIntWithDefault(key string, defaultValue int) int {
	n.logViolation("GetIntWithDefault")
	return defaultValue
}

func (n *permissionDeniedConfigManager) GetBoolWithDefault(key string, defaultValue bool) bool {
	n.logViolation("GetBoolWithDefault")
	return defaultValue
}

func (n *permissionDeniedConfigManager) GetEnv() string {
	n.logViolation("GetEnv")
	return ""
}

func (n *permissionDeniedConfigManager) Sub(key string) ConfigManager {
	n.logViolation("Sub")
	return n
}

func (n *permissionDeniedConfigManager) IsSet(key string) bool {
	n.logViolation("IsSet")
	return false
}

func (n *permissionDeniedConfigManager) IsProduction() bool {
	n.logViolation("IsProduction")
	return false
}

func (n *permissionDeniedConfigManager) IsDevelopment() bool {
	n.logViolation("IsDevelopment")
	return false
}

func (n *permissionDeniedConfigManager) IsTest() bool {
	n.logViolation("IsTest")
	return false
}

func (n *permissionDeniedConfigManager) Validate() error {
	n.logViolation("Validate")
	return fmt.Errorf("permission denied: config access not allowed")
}

func (n *permissionDeniedConfigManager) Watch(callback func()) error {
	n.logViolation("Watch")
	return fmt.Errorf("permission denied: config access not allowed")
}

func (n *permissionDeniedConfigManager) StopWatching() error {
	n.logViolation("StopWatching")
	return fmt.Errorf("permission denied: config access not allowed")
}

// permissionDeniedRouterEngine is a no-op implementation of RouterEngine for permission-denied access
type permissionDeniedRouterEngine struct {
	pluginName string
	logger     Logger
}

func newPermissionDeniedRouterEngine(pluginName string, logger Logger) RouterEngine {
	return &permissionDeniedRouterEngine{
		pluginName: pluginName,
		logger:     logger,
	}
}

func (n *permissionDeniedRouterEngine) logViolation(operation string) {
	if n.logger != nil {
		n.logger.Warn(fmt.Sprintf("Security violation: Plugin %s attempted router operation '%s' without permission", n.pluginName, operation))
	}
}

func (n *permissionDeniedRouterEngine) GET(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("GET")
	return n
}

func (n *permissionDeniedRouterEngine) POST(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("POST")
	return n
}

func (n *permissionDeniedRouterEngine) PUT(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("PUT")
	return n
}

func (n *permissionDeniedRouterEngine) DELETE(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("DELETE")
	return n
}

func (n *permissionDeniedRouterEngine) PATCH(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("PATCH")
	return n
}

func (n *permissionDeniedRouterEngine) OPTIONS(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("OPTIONS")
	return n
}

func (n *permissionDeniedRouterEngine) HEAD(path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("HEAD")
	return n
}

func (n *permissionDeniedRouterEngine) Handle(method, path string, handler HandlerFunc, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("Handle")
	return n
}

func (n *permissionDeniedRouterEngine) Group(prefix string, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("Group")
	return n
}

func (n *permissionDeniedRouterEngine) Host(hostname string) RouterEngine {
	n.logViolation("Host")
	return n
}

func (n *permissionDeniedRouterEngine) Static(prefix string, filesystem VirtualFS) RouterEngine {
	n.logViolation("Static")
	return n
}

func (n *permissionDeniedRouterEngine) StaticFile(path, filepath string) RouterEngine {
	n.logViolation("StaticFile")
	return n
}

func (n *permissionDeniedRouterEngine) WebSocket(path string, handler WebSocketHandler, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("WebSocket")
	return n
}

func (n *permissionDeniedRouterEngine) GraphQL(path string, schema GraphQLSchema, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("GraphQL")
	return n
}

func (n *permissionDeniedRouterEngine) GRPC(service GRPCService, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("GRPC")
	return n
}

func (n *permissionDeniedRouterEngine) SOAP(path string, service SOAPService, middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("SOAP")
	return n
}

func (n *permissionDeniedRouterEngine) Use(middleware ...MiddlewareFunc) RouterEngine {
	n.logViolation("Use")
	return n
}

func (n *permissionDeniedRouterEngine) Match(method, path, host string) (*Route, map[string]string, bool) {
	n.logViolation("Match")
	return nil, nil, false
}

func (n *permissionDeniedRouterEngine) Routes() []*Route {
	n.logViolation("Routes")
	return nil
}

func (n *permissionDeniedRouterEngine) NotFound(handler HandlerFunc) RouterEngine {
	n.logViolation("NotFound")
	return n
}

func (n *permissionDeniedRouterEngine) MethodNotAllowed(handler HandlerFunc) RouterEngine {
	n.logViolation("MethodNotAllowed")
	return n
}

// permissionDeniedFileManager is a no-op implementation of FileManager for permission-denied access
type permissionDeniedFileManager struct {
	pluginName string
	logger     Logger
}

func newPermissionDeniedFileManager(pluginName string, logger Logger) FileManager {
	return &permissionDeniedFileManager{
		pluginName: pluginName,
		logger:     logger,
	}
}

func (n *permissionDeniedFileManager) logViolation(operation string) {
	if n.logger != nil {
		n.logger.Warn(fmt.Sprintf("Security violation: Plugin %s attempted filesystem operation '%s' without permission", n.pluginName, operation))
	}
}

func (n *permissionDeniedFileManager) Read(path string) ([]byte, error) {
	n.logViolation("Read")
	return nil, fmt.Errorf("permission denied: filesystem access not allowed")
}

func (n *permissionDeniedFileManager) Write(path string, data []byte) error {
	n.logViolation("Write")
	return fmt.Errorf("permission denied: filesystem access not allowed")
}

func (n *permissionDeniedFileManager) Delete(path string) error {
	n.logViolation("Delete")
	return fmt.Errorf("permission denied: filesystem access not allowed")
}

func (n *permissionDeniedFileManager) Exists(path string) bool {
	n.logViolation("Exists")
	return false
}

func (n *permissionDeniedFileManager) CreateDir(path string) error {
	n.logViolation("CreateDir")
	return fmt.Errorf("permission denied: filesystem access not allowed")
}

func (n *permissionDeniedFileManager) SaveUploadedFile(ctx Context, filename string, destPath string) error {
	n.logViolation("SaveUploadedFile")
	return fmt.Errorf("permission denied: filesystem access not allowed")
}

// permissionDeniedNetworkClient is a no-op implementation of NetworkClient for permission-denied access
type permissionDeniedNetworkClient struct {
	pluginName string
	logger     Logger
}

func newPermissionDeniedNetworkClient(pluginName string, logger Logger) NetworkClient {
	return &permissionDeniedNetworkClient{
		pluginName: pluginName,
		logger:     logger,
	}
}

func (n *permissionDeniedNetworkClient) logViolation(operation string) {
	if n.logger != nil {
		n.logger.Warn(fmt.Sprintf("Security violation: Plugin %s attempted network operation '%s' without permission", n.pluginName, operation))
	}
}

func (n *permissionDeniedNetworkClient) Get(url string, headers map[string]string) ([]byte, error) {
	n.logViolation("Get")
	return nil, fmt.Errorf("permission denied: network access not allowed")
}

func (n *permissionDeniedNetworkClient) Post(url string, body []byte, headers map[string]string) ([]byte, error) {
	n.logViolation("Post")
	return nil, fmt.Errorf("permission denied: network access not allowed")
}

func (n *permissionDeniedNetworkClient) Put(url string, body []byte, headers map[string]string) ([]byte, error) {
	n.logViolation("Put")
	return nil, fmt.Errorf("permission denied: network access not allowed")
}

func (n *permissionDeniedNetworkClient) Delete(url string, headers map[string]string) ([]byte, error) {
	n.logViolation("Delete")
	return nil, fmt.Errorf("permission denied: network access not allowed")
}

func (n *permissionDeniedNetworkClient) Do(method, url string, body []byte, headers map[string]string) ([]byte, int, error) {
	n.logViolation("Do")
	return nil, 0, fmt.Errorf("permission denied: network access not allowed")
}
