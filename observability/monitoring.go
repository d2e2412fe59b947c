package observability

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// RelayStats aggregates the metrics displayed by the inspector.
type RelayStats struct {
	// --- RELAY METRICS ---
	Connections       int    `json:"connections"`
	Rooms             int    `json:"rooms"`
	ConnectionsOpened uint64 `json:"connections_opened"`
	CommandsDropped   uint64 `json:"commands_dropped"`

	// --- SYSTEM METRICS ---
	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
	CpuPercent float64 `json:"cpu_percent"`
	RamMb      uint64  `json:"ram_mb"`
	PidStatus  string  `json:"pid_status"`
}

// MonitoringManager keeps real-time telemetry about the relay process.
// Counters are atomic; gauges (connections, rooms) are pulled from a source
// callback so the manager never reaches into relay internals.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats RelayStats
	gaugeSource func() (connections, rooms int)

	ConnectionsOpened uint64
	CommandsDropped   uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

// SetGaugeSource installs the callback used to sample live gauges.
func (mm *MonitoringManager) SetGaugeSource(source func() (connections, rooms int)) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.gaugeSource = source
}

func (mm *MonitoringManager) IncrConnectionsOpened() {
	atomic.AddUint64(&mm.ConnectionsOpened, 1)
}

func (mm *MonitoringManager) IncrCommandsDropped() {
	atomic.AddUint64(&mm.CommandsDropped, 1)
}

// UpdateSelf merges process-level metrics sampled by the heartbeat worker.
func (mm *MonitoringManager) UpdateSelf(rss uint64, cpu float64, status string) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.RamMb = rss / 1024 / 1024
	mm.latestStats.CpuPercent = cpu
	mm.latestStats.PidStatus = status
}

// Listen refreshes the aggregated stats every second until the context ends.
func (mm *MonitoringManager) Listen(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			mm.log.Info("Monitoring manager stopped")
			return
		case <-ticker.C:
			mm.updateStats()
		}
	}
}

func (mm *MonitoringManager) updateStats() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.latestStats.ConnectionsOpened = atomic.LoadUint64(&mm.ConnectionsOpened)
	mm.latestStats.CommandsDropped = atomic.LoadUint64(&mm.CommandsDropped)

	if mm.gaugeSource != nil {
		mm.latestStats.Connections, mm.latestStats.Rooms = mm.gaugeSource()
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	mm.latestStats.AllocMemMb = m.Alloc / 1024 / 1024
	mm.latestStats.NumGC = m.NumGC

	mm.log.Debug("Stats refreshed",
		"connections", mm.latestStats.Connections,
		"rooms", mm.latestStats.Rooms,
		"mem_mb", mm.latestStats.AllocMemMb,
	)
}

func (mm *MonitoringManager) GetLatest() RelayStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latestStats
}
