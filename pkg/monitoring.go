package pkg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/pprof"
	"runtime"
	"sync"
	"time"
)

// MonitoringConfig holds monitoring configuration
type MonitoringConfig struct {
	// Metrics endpoint configuration
	EnableMetrics bool
	MetricsPath   string
	MetricsPort   int

	// Pprof configuration
	EnablePprof bool
	PprofPath   string
	PprofPort   int

	// SNMP configuration
	EnableSNMP    bool
	SNMPPort      int
	SNMPCommunity string

	// Process optimization
	EnableOptimization   bool
	OptimizationInterval time.Duration

	// Security
	RequireAuth bool
	AuthToken   string
}

// MonitoringManager manages monitoring and profiling features
type MonitoringManager interface {
	// Lifecycle
	Start() error
	Stop() error
	IsRunning() bool

	// Metrics endpoint
	EnableMetricsEndpoint(path string) error
	DisableMetricsEndpoint() error
	GetMetricsHandler() http.HandlerFunc

	// Pprof support
	EnablePprof(path string) error
	DisablePprof() error
	GetPprofHandlers() map[string]http.HandlerFunc

	// SNMP support
	EnableSNMP(port int, community string) error
	DisableSNMP() error
	GetSNMPData() (*SNMPData, error)

	// Process optimization
	EnableOptimization() error
	DisableOptimization() error
	OptimizeNow() error
	GetOptimizationStats() *OptimizationStats

	// Configuration
	SetConfig(config MonitoringConfig) error
	GetConfig() MonitoringConfig
}

// SNMPData represents SNMP monitoring data
type SNMPData struct {
	Timestamp         time.Time          `json:"timestamp"`
	SystemInfo        *SystemInfo        `json:"system_info"`
	WorkloadMetrics   []*WorkloadMetrics `json:"workload_metrics"`
	AggregatedMetrics *AggregatedMetrics `json:"aggregated_metrics"`
	Logs              []string           `json:"logs"`
}

// SystemInfo provides system-level information
type SystemInfo struct {
	NumCPU           int       `json:"num_cpu"`
	NumGoroutine     int       `json:"num_goroutine"`
	MemoryAlloc      uint64    `json:"memory_alloc"`
	MemoryTotalAlloc uint64    `json:"memory_total_alloc"`
	MemorySys        uint64    `json:"memory_sys"`
	NumGC            uint32    `json:"num_gc"`
	GCPauseTotal     uint64    `json:"gc_pause_total_ns"`
	LastGCTime       time.Time `json:"last_gc_time"`
}

// OptimizationStats tracks optimization statistics
type OptimizationStats struct {
	LastOptimization  time.Time `json:"last_optimization"`
	OptimizationCount int64     `json:"optimization_count"`
	GCRunsBefore      uint32    `json:"gc_runs_before"`
	GCRunsAfter       uint32    `json:"gc_runs_after"`
	MemoryBefore      uint64    `json:"memory_before"`
	MemoryAfter       uint64    `json:"memory_after"`
	MemoryFreed       uint64    `json:"memory_freed"`
}

// monitoringManagerImpl implements MonitoringManager
type monitoringManagerImpl struct {
	config           MonitoringConfig
	metricsCollector MetricsCollector
	db               DatabaseManager
	logger           Logger

	// State
	running             bool
	metricsEnabled      bool
	pprofEnabled        bool
	snmpEnabled         bool
	optimizationEnabled bool

	// Servers
	metricsServer *http.Server
	pprofServer   *http.Server
	snmpServer    *snmpServer

	// Optimization
	optimizationTicker *time.Ticker
	optimizationStats  *OptimizationStats

	// Synchronization
	mu       sync.RWMutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewMonitoringManager creates a new monitoring manager
func NewMonitoringManager(config MonitoringConfig, metrics MetricsCollector, db DatabaseManager, logger Logger) MonitoringManager {
	return &monitoringManagerImpl{
		config:            config,
		metricsCollector:  metrics,
		db:                db,
		logger:            logger,
		stopChan:          make(chan struct{}),
		optimizationStats: &OptimizationStats{},
	}
}

// Start starts the monitoring manager
func (m *monitoringManagerImpl) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("monitoring manager already running")
	}

	// Start metrics endpoint if enabled
	if m.config.EnableMetrics {
		if err := m.enableMetricsEndpointLocked(m.config.MetricsPath); err != nil {
			return fmt.Errorf("failed to enable metrics endpoint: %w", err)
		}
	}

	// Start pprof if enabled
	if m.config.EnablePprof {
		if err := m.enablePprofLocked(m.config.PprofPath); err != nil {
			return fmt.Errorf("failed to enable pprof: %w", err)
		}
	}

	// Start SNMP if enabled
	if m.config.EnableSNMP {
		if err := m.enableSNMPLocked(m.config.SNMPPort, m.config.SNMPCommunity); err != nil {
			return fmt.Errorf("failed to enable SNMP: %w", err)
		}
	}

	// Start optimization if enabled
	if m.config.EnableOptimization {
		if err := m.enableOptimizationLocked(); err != nil {
			return fmt.Errorf("failed to enable optimization: %w", err)
		}
	}

	m.running = true
	return nil
}

// Stop stops the monitoring manager
func (m *monitoringManagerImpl) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	// Signal stop
	close(m.stopChan)

	// Stop metrics server
	if m.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		m.metricsServer.Shutdown(ctx)
		m.metricsServer = nil
	}

	// Stop pprof server
	if m.pprofServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		m.pprofServer.Shutdown(ctx)
		m.pprofServer = nil
	}

	// Stop SNMP server
	if m.snmpServer != nil {
		m.snmpServer.Stop()
		m.snmpServer = nil
	}

	// Stop optimization ticker
	if m.optimizationTicker != nil {
		m.optimizationTicker.Stop()
		m.optimizationTicker = nil
	}

	// Wait for goroutines
	m.wg.Wait()

	m.running = false
	m.metricsEnabled = false
	m.pprofEnabled = false
	m.snmpEnabled = false
	m.optimizationEnabled = false

	return nil
}

// IsRunning returns whether the monitoring manager is running
func (m *monitoringManagerImpl) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// EnableMetricsEndpoint enables the metrics HTTP endpoint
func (m *monitoringManagerImpl) EnableMetricsEndpoint(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enableMetricsEndpointLocked(path)
}

func (m *monitoringManagerImpl) enableMetricsEndpointLocked(path string) error {
	if m.metricsEnabled {
		return fmt.Errorf("metrics endpoint already enabled")
	}

	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, m.metricsHandler())

	port := m.config.MetricsPort
	if port == 0 {
		port = 9090
	}

	m.metricsServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if m.logger != nil {
				m.logger.Error("metrics server error", "error", err)
			}
		}
	}()

	m.metricsEnabled = true
	return nil
}

// DisableMetricsEndpoint disables the metrics endpoint
func (m *monitoringManagerImpl) DisableMetricsEndpoint() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.metricsEnabled {
		return nil
	}

	if m.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.metricsServer.Shutdown(ctx); err != nil {
			return err
		}
		m.metricsServer = nil
	}

	m.metricsEnabled = false
	return nil
}

// GetMetricsHandler returns the metrics HTTP handler
func (m *monitoringManagerImpl) GetMetricsHandler() http.HandlerFunc {
	return m.metricsHandler()
}

func (m *monitoringManagerImpl) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check authentication if required
		if m.config.RequireAuth {
			token := r.Header.Get("Authorization")
			if token != "Bearer "+m.config.AuthToken {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		// Get metrics from collector
		metrics, err := m.metricsCollector.Export()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// Add system metrics
		metrics["system"] = m.getSystemInfo()

		// Return as JSON
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(metrics)
	}
}

// EnablePprof enables pprof profiling endpoints
func (m *monitoringManagerImpl) EnablePprof(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enablePprofLocked(path)
}

func (m *monitoringManagerImpl) enablePprofLocked(path string) error {
	if m.pprofEnabled {
		return fmt.Errorf("pprof already enabled")
	}

	if path == "" {
		path = "/debug/pprof"
	}

	mux := http.NewServeMux()

	// Register pprof handlers
	mux.HandleFunc(path+"/", pprof.Index)
	mux.HandleFunc(path+"/cmdline", pprof.Cmdline)
	mux.HandleFunc(path+"/profile", pprof.Profile)
	mux.HandleFunc(path+"/symbol", pprof.Symbol)
	mux.HandleFunc(path+"/trace", pprof.Trace)

	// Register additional handlers
	mux.Handle(path+"/heap", pprof.Handler("heap"))
	mux.Handle(path+"/goroutine", pprof.Handler("goroutine"))
	mux.Handle(path+"/threadcreate", pprof.Handler("threadcreate"))
	mux.Handle(path+"/block", pprof.Handler("block"))
	mux.Handle(path+"/mutex", pprof.Handler("mutex"))
	mux.Handle(path+"/allocs", pprof.Handler("allocs"))

	port := m.config.PprofPort
	if port == 0 {
		port = 6060
	}

	m.pprofServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.pprofServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if m.logger != nil {
				m.logger.Error("pprof server error", "error", err)
			}
		}
	}()

	m.pprofEnabled = true
	return nil
}

// DisablePprof disables pprof profiling
func (m *monitoringManagerImpl) DisablePprof() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.pprofEnabled {
		return nil
	}

	if m.pprofServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.pprofServer.Shutdown(ctx); err != nil {
			return err
		}
		m.pprofServer = nil
	}

	m.pprofEnabled = false
	return nil
}

// GetPprofHandlers returns pprof HTTP handlers
func (m *monitoringManagerImpl) GetPprofHandlers() map[string]http.HandlerFunc {
	handlers := make(map[string]http.HandlerFunc)

	handlers["/"] = pprof.Index
	handlers["/cmdline"] = pprof.Cmdline
	handlers["/profile"] = pprof.Profile
	handlers["/symbol"] = pprof.Symbol
	handlers["/trace"] = pprof.Trace

	return handlers
}

// getSystemInfo collects current system information
func (m *monitoringManagerImpl) getSystemInfo() *SystemInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	info := &SystemInfo{
		NumCPU:           runtime.NumCPU(),
		NumGoroutine:     runtime.NumGoroutine(),
		MemoryAlloc:      memStats.Alloc,
		MemoryTotalAlloc: memStats.TotalAlloc,
		MemorySys:        memStats.Sys,
		NumGC:            memStats.NumGC,
		GCPauseTotal:     memStats.PauseTotalNs,
	}

	if memStats.NumGC > 0 {
		info.LastGCTime = time.Unix(0, int64(memStats.LastGC))
	}

	return info
}

// SetConfig updates the monitoring configuration
func (m *monitoringManagerImpl) SetConfig(config MonitoringConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = config
	return nil
}

// GetConfig returns the current monitoring configuration
func (m *monitoringManagerImpl) GetConfig() MonitoringConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// EnableSNMP enables SNMP monitoring
func (m *monitoringManagerImpl) EnableSNMP(port int, community string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enableSNMPLocked(port, community)
}

func (m *monitoringManagerImpl) enableSNMPLocked(port int, community string) error {
	if m.snmpEnabled {
		return fmt.Errorf("SNMP already enabled")
	}

	if port == 0 {
		port = 161
	}

	if community == "" {
		community = "public"
	}

	m.snmpServer = newSNMPServer(port, community, m)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.snmpServer.Start(); err != nil {
			if m.logger != nil {
				m.logger.Error("SNMP server error", "error", err)
			}
		}
	}()

	m.snmpEnabled = true
	return nil
}

// DisableSNMP disables SNMP monitoring
func (m *monitoringManagerImpl) DisableSNMP() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.snmpEnabled {
		return nil
	}

	if m.snmpServer != nil {
		m.snmpServer.Stop()
		m.snmpServer = nil
	}

	m.snmpEnabled = false
	return nil
}

// GetSNMPData returns SNMP monitoring data
func (m *monitoringManagerImpl) GetSNMPData() (*SNMPData, error) {
	data := &SNMPData{
		Timestamp:  time.Now(),
		SystemInfo: m.getSystemInfo(),
	}

	// Get workload metrics from database if available
	if m.db != nil {
		from := time.Now().Add(-1 * time.Hour)
		to := time.Now()

		// Get metrics for all tenants (empty string means all)
		metrics, err := m.db.GetWorkloadMetrics("", from, to)
		if err == nil {
			data.WorkloadMetrics = metrics
		}
	}

	// Get aggregated metrics if metrics collector is available
	if m.metricsCollector != nil {
		from := time.Now().Add(-1 * time.Hour)
		to := time.Now()

		// Try to get aggregated metrics (this may fail if not implemented)
		if agg, err := m.metricsCollector.GetAggregatedMetrics("", from, to); err == nil {
			data.AggregatedMetrics = agg
		}
	}

	return data, nil
}

// EnableOptimization enables process-guided optimization
func (m *monitoringManagerImpl) EnableOptimization() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enableOptimizationLocked()
}

func (m *monitoringManagerImpl) enableOptimizationLocked() error {
	if m.optimizationEnabled {
		return fmt.Errorf("optimization already enabled")
	}

	interval := m.config.OptimizationInterval
	if interval == 0 {
		interval = 5 * time.Minute
	}

	m.optimizationTicker = time.NewTicker(interval)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-m.optimizationTicker.C:
				if err := m.OptimizeNow(); err != nil {
					if m.logger != nil {
						m.logger.Error("optimization error", "error", err)
					}
				}
			case <-m.stopChan:
				return
			}
		}
	}()

	m.optimizationEnabled = true
	return nil
}

// DisableOptimization disables process-guided optimization
func (m *monitoringManagerImpl) DisableOptimization() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.optimizationEnabled {
		return nil
	}

	if m.optimizationTicker != nil {
		m.optimizationTicker.Stop()
		m.optimizationTicker = nil
	}

	m.optimizationEnabled = false
	return nil
}

// OptimizeNow performs immediate process optimization
func (m *monitoringManagerImpl) OptimizeNow() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Capture before stats
	var beforeStats runtime.MemStats
	runtime.ReadMemStats(&beforeStats)

	// Force garbage collection
	runtime.GC()

	// Capture after stats
	var afterStats runtime.MemStats
	runtime.ReadMemStats(&afterStats)

	// Update optimization stats
	m.optimizationStats.LastOptimization = time.Now()
	m.optimizationStats.OptimizationCount++
	m.optimizationStats.GCRunsBefore = beforeStats.NumGC
	m.optimizationStats.GCRunsAfter = afterStats.NumGC
	m.optimizationStats.MemoryBefore = beforeStats.Alloc
	m.optimizationStats.MemoryAfter = afterStats.Alloc

	if beforeStats.Alloc > afterStats.Alloc {
		m.optimizationStats.MemoryFreed = beforeStats.Alloc - afterStats.Alloc
	} else {
		m.optimizationStats.MemoryFreed = 0
	}

	if m.logger != nil {
		m.logger.Info("process optimization completed",
			"memory_freed", m.optimizationStats.MemoryFreed,
			"gc_runs", afterStats.NumGC-beforeStats.NumGC)
	}

	return nil
}

// GetOptimizationStats returns optimization statistics
func (m *monitoringManagerImpl) GetOptimizationStats() *OptimizationStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to avoid race conditions
	stats := *m.optimizationStats
	return &stats
}

// snmpServer implements a simple SNMP server for monitoring data
type snmpServer struct {
	port      int
	community string
	manager   *monitoringManagerImpl
	running   bool
	stopChan  chan struct{}
	mu        sync.RWMutex
}

func newSNMPServer(port int, community string, manager *monitoringManagerImpl) *snmpServer {
	return &snmpServer{
		port:      port,
		community: community,
		manager:   manager,
		stopChan:  make(chan struct{}),
	}
}

func (s *snmpServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("SNMP server already running")
	}

	// Create HTTP server for SNMP data (simplified SNMP implementation)
	// In production, you would use a proper SNMP library
	mux := http.NewServeMux()
	mux.HandleFunc("/snmp", s.handleSNMPRequest)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error
		}
	}()

	s.running = true
	return nil
}

func (s *snmpServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	close(s.stopChan)
	s.running = false
	return nil
}

func (s *snmpServer) handleSNMPRequest(w http.ResponseWriter, r *http.Request) {
	// Check community string
	community := r.Header.Get("X-SNMP-Community")
	if community != s.community {
		http.Error(w, "Invalid community string", http.StatusUnauthorized)
		return
	}

	// Get SNMP data
	data, err := s.manager.GetSNMPData()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Return as JSON
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
