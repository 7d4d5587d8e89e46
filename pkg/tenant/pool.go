package tenant

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

const (
	defaultConnectionLimit  = 10
	defaultMaxEntries       = 50
	defaultMaxPerTenantInFl = 5
	defaultMaxIdle          = 30 * time.Minute
	defaultReapInterval     = 5 * time.Minute
)

// poolEntry is one tenant's live database handle (§4.5, §4.9).
type poolEntry struct {
	tenantID   string
	db         *sql.DB
	cfg        Database
	lastUsedAt atomic.Int64 // unix nanos
	inFlight   atomic.Int64
}

func (e *poolEntry) touch() {
	e.lastUsedAt.Store(time.Now().UnixNano())
}

func (e *poolEntry) idleFor() time.Duration {
	return time.Since(time.Unix(0, e.lastUsedAt.Load()))
}

// sameConfig reports byte-equality on the fields spec §4.5 names: host,
// port, database, user, password, connectionLimit.
func sameConfig(a, b Database) bool {
	return a.Host == b.Host && a.Port == b.Port && a.Database == b.Database &&
		a.Username == b.Username && a.Password == b.Password &&
		a.ConnectionLimit == b.ConnectionLimit
}

// PoolManager owns one *sql.DB per tenant, keyed by tenantId (§4.5).
type PoolManager struct {
	mu      sync.RWMutex
	entries map[string]*poolEntry

	MaxEntries          int
	MaxPerTenantInFlight int
	MaxIdle             time.Duration
	ReapInterval        time.Duration

	stop chan struct{}
}

// NewPoolManager creates a pool manager with spec-default caps and starts
// its background reap loop.
func NewPoolManager() *PoolManager {
	pm := &PoolManager{
		entries:              make(map[string]*poolEntry),
		MaxEntries:           defaultMaxEntries,
		MaxPerTenantInFlight: defaultMaxPerTenantInFl,
		MaxIdle:              defaultMaxIdle,
		ReapInterval:         defaultReapInterval,
		stop:                 make(chan struct{}),
	}
	go pm.reapLoop()
	return pm
}

// Get returns the live pool for tenantID, creating or replacing it as
// needed to match cfg, per the state machine in §4.5/§4.9.
func (pm *PoolManager) Get(tenantID string, cfg Database) (*sql.DB, error) {
	pm.mu.RLock()
	entry, ok := pm.entries[tenantID]
	if ok && sameConfig(entry.cfg, cfg) {
		entry.touch()
		pm.mu.RUnlock()
		return entry.db, nil
	}
	pm.mu.RUnlock()

	pm.mu.Lock()
	defer pm.mu.Unlock()

	// Re-check under write lock: another goroutine may have created or
	// replaced the entry while we waited.
	entry, ok = pm.entries[tenantID]
	if ok && sameConfig(entry.cfg, cfg) {
		entry.touch()
		return entry.db, nil
	}
	if ok {
		entry.db.Close()
		delete(pm.entries, tenantID)
	}

	if len(pm.entries) >= pm.MaxEntries {
		return nil, NewDatabaseConnectionFailedError(tenantID,
			fmt.Errorf("pool manager at capacity (%d live entries)", pm.MaxEntries))
	}

	newEntry, err := pm.open(tenantID, cfg)
	if err != nil {
		return nil, err
	}

	pm.entries[tenantID] = newEntry
	return newEntry.db, nil
}

func (pm *PoolManager) open(tenantID string, cfg Database) (*poolEntry, error) {
	driver, dsn := BuildDSN(cfg)
	if driver == "" {
		return nil, NewTenantConfigInvalidError("unsupported database type: " + string(cfg.Type))
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, NewDatabaseConnectionFailedError(tenantID, err)
	}

	limit := cfg.ConnectionLimit
	if limit <= 0 {
		limit = defaultConnectionLimit
	}
	db.SetMaxOpenConns(limit)
	db.SetMaxIdleConns(limit)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, ClassifyDatabaseError(tenantID, err)
	}

	entry := &poolEntry{tenantID: tenantID, db: db, cfg: cfg}
	entry.touch()
	return entry, nil
}

// ExecuteQuery runs q against tenantID's pool, tracking in-flight count for
// the per-tenant cap.
func (pm *PoolManager) ExecuteQuery(ctx context.Context, tenantID string, cfg Database, q string, args ...interface{}) (*sql.Rows, error) {
	db, entry, err := pm.getWithEntry(tenantID, cfg)
	if err != nil {
		return nil, err
	}

	if entry.inFlight.Load() >= int64(pm.MaxPerTenantInFlight) {
		return nil, NewDatabaseConnectionFailedError(tenantID,
			fmt.Errorf("tenant pool at in-flight capacity (%d)", pm.MaxPerTenantInFlight))
	}

	entry.inFlight.Add(1)
	defer entry.inFlight.Add(-1)
	entry.touch()

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, ClassifyDatabaseError(tenantID, err)
	}
	return rows, nil
}

// ExecuteTransaction acquires a dedicated connection, runs fn inside
// BEGIN/COMMIT, and rolls back if fn errors (§4.5).
func (pm *PoolManager) ExecuteTransaction(ctx context.Context, tenantID string, cfg Database, fn func(*sql.Tx) error) error {
	db, entry, err := pm.getWithEntry(tenantID, cfg)
	if err != nil {
		return err
	}

	entry.inFlight.Add(1)
	defer entry.inFlight.Add(-1)
	entry.touch()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClassifyDatabaseError(tenantID, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return ClassifyDatabaseError(tenantID, fmt.Errorf("rollback failed after %v: %w", err, rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return ClassifyDatabaseError(tenantID, err)
	}
	return nil
}

func (pm *PoolManager) getWithEntry(tenantID string, cfg Database) (*sql.DB, *poolEntry, error) {
	db, err := pm.Get(tenantID, cfg)
	if err != nil {
		return nil, nil, err
	}
	pm.mu.RLock()
	entry := pm.entries[tenantID]
	pm.mu.RUnlock()
	return db, entry, nil
}

// Close shuts down a single tenant's pool, used by the Admin Service's
// delete operation.
func (pm *PoolManager) Close(tenantID string) error {
	pm.mu.Lock()
	entry, ok := pm.entries[tenantID]
	if ok {
		delete(pm.entries, tenantID)
	}
	pm.mu.Unlock()

	if !ok {
		return nil
	}
	return entry.db.Close()
}

// Shutdown stops the reap loop and closes every live pool.
func (pm *PoolManager) Shutdown() error {
	close(pm.stop)

	pm.mu.Lock()
	entries := pm.entries
	pm.entries = make(map[string]*poolEntry)
	pm.mu.Unlock()

	var wg sync.WaitGroup
	errCh := make(chan error, len(entries))
	for _, e := range entries {
		wg.Add(1)
		go func(e *poolEntry) {
			defer wg.Done()
			if err := e.db.Close(); err != nil {
				errCh <- err
			}
		}(e)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

func (pm *PoolManager) reapLoop() {
	ticker := time.NewTicker(pm.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pm.stop:
			return
		case <-ticker.C:
			pm.reap()
		}
	}
}

// reap closes entries idle past MaxIdle with zero in-flight work. A
// concurrent Get either finds the entry gone and recreates it, or observes
// a freshly touched entry and is skipped here, so reaping never races a
// caller mid-request.
func (pm *PoolManager) reap() {
	var stale []*poolEntry

	pm.mu.Lock()
	for id, e := range pm.entries {
		if e.inFlight.Load() == 0 && e.idleFor() > pm.MaxIdle {
			stale = append(stale, e)
			delete(pm.entries, id)
		}
	}
	pm.mu.Unlock()

	var wg sync.WaitGroup
	for _, e := range stale {
		wg.Add(1)
		go func(e *poolEntry) {
			defer wg.Done()
			e.db.Close()
		}(e)
	}
	wg.Wait()
}

// HealthReport is the per-tenant outcome of a healthCheck sweep.
type HealthReport struct {
	TenantID string
	Healthy  bool
	Error    string
}

// HealthCheck probes every live entry, closing and reporting failures.
func (pm *PoolManager) HealthCheck(ctx context.Context) []HealthReport {
	pm.mu.RLock()
	snapshot := make([]*poolEntry, 0, len(pm.entries))
	for _, e := range pm.entries {
		snapshot = append(snapshot, e)
	}
	pm.mu.RUnlock()

	reports := make([]HealthReport, 0, len(snapshot))
	for _, e := range snapshot {
		if err := e.db.PingContext(ctx); err != nil {
			pm.mu.Lock()
			if pm.entries[e.tenantID] == e {
				delete(pm.entries, e.tenantID)
			}
			pm.mu.Unlock()
			e.db.Close()
			reports = append(reports, HealthReport{TenantID: e.tenantID, Healthy: false, Error: err.Error()})
			continue
		}
		reports = append(reports, HealthReport{TenantID: e.tenantID, Healthy: true})
	}
	return reports
}

// Stats returns the number of live pool entries, used by MetricsMiddleware
// and the /tenant/stats route.
func (pm *PoolManager) Stats() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.entries)
}
