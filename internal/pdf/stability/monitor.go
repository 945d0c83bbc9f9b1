// Package stability keeps a long scrape run alive: it contains panics
// raised while reading one page and releases memory between documents.
package stability

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// MemoryMonitor requests a garbage collection when the heap grows past a
// threshold
type MemoryMonitor struct {
	threshold uint64 // bytes; zero disables the monitor
	logger    *slog.Logger
	readStats func(*runtime.MemStats)
	collect   func()
	mu        sync.RWMutex
	stats     MemoryStats
}

// MemoryStats tracks memory usage statistics
type MemoryStats struct {
	MaxAlloc     uint64    `json:"max_alloc"`
	CurrentAlloc uint64    `json:"current_alloc"`
	CheckCount   int64     `json:"check_count"`
	GCCount      int64     `json:"gc_count"`
	LastCheck    time.Time `json:"last_check"`
}

// PanicRecorder keeps the most recent contained panics
type PanicRecorder struct {
	logger    *slog.Logger
	maxPanics int
	mu        sync.RWMutex
	panics    []PanicRecord
}

// PanicRecord stores information about a panic
type PanicRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
	StackTrace string    `json:"stack_trace"`
	Context    string    `json:"context"`
}

// Config configures a Manager
type Config struct {
	MemoryThresholdMB int `json:"memory_threshold_mb"`
	MaxPanics         int `json:"max_panics"`
}

// DefaultConfig returns the limits used by the scraper
func DefaultConfig() Config {
	return Config{
		MemoryThresholdMB: 512,
		MaxPanics:         10,
	}
}

// Manager coordinates the memory monitor and the panic recorder
type Manager struct {
	memory *MemoryMonitor
	panics *PanicRecorder
	logger *slog.Logger
}

// NewManager creates a stability manager
func NewManager(config Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "stability")

	maxPanics := config.MaxPanics
	if maxPanics <= 0 {
		maxPanics = DefaultConfig().MaxPanics
	}
	threshold := uint64(0)
	if config.MemoryThresholdMB > 0 {
		threshold = uint64(config.MemoryThresholdMB) * 1024 * 1024
	}

	return &Manager{
		memory: &MemoryMonitor{
			threshold: threshold,
			logger:    logger,
			readStats: runtime.ReadMemStats,
			collect: func() {
				runtime.GC()
				debug.FreeOSMemory()
			},
		},
		panics: &PanicRecorder{logger: logger, maxPanics: maxPanics},
		logger: logger,
	}
}

// Guard runs fn and turns a panic into an error. The panic is recorded with
// its stack.
func (m *Manager) Guard(operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.panics.RecordPanic(fmt.Sprint(r), string(debug.Stack()), operation)
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()
	return fn()
}

// Relieve checks the heap and collects garbage above the threshold. It
// reports whether a collection ran.
func (m *Manager) Relieve() bool {
	return m.memory.Check()
}

// Panics returns the panic recorder
func (m *Manager) Panics() *PanicRecorder {
	return m.panics
}

// HealthStatus returns overall stability health status
func (m *Manager) HealthStatus() map[string]any {
	memStats := m.memory.Stats()
	panicCount := m.panics.Count()

	return map[string]any{
		"memory_stats": memStats,
		"panic_count":  panicCount,
		"healthy":      panicCount < m.panics.maxPanics,
	}
}

// Reset clears all recorded statistics and panics
func (m *Manager) Reset() {
	m.memory.mu.Lock()
	m.memory.stats = MemoryStats{}
	m.memory.mu.Unlock()

	m.panics.mu.Lock()
	m.panics.panics = nil
	m.panics.mu.Unlock()
}

// Check reads the heap size and forces a collection above the threshold
func (mm *MemoryMonitor) Check() bool {
	var memStats runtime.MemStats
	mm.readStats(&memStats)

	mm.mu.Lock()
	mm.stats.CurrentAlloc = memStats.HeapAlloc
	mm.stats.CheckCount++
	mm.stats.LastCheck = time.Now()
	if memStats.HeapAlloc > mm.stats.MaxAlloc {
		mm.stats.MaxAlloc = memStats.HeapAlloc
	}
	mm.mu.Unlock()

	if mm.threshold == 0 || memStats.HeapAlloc <= mm.threshold {
		return false
	}

	mm.logger.Info("memory threshold exceeded, collecting",
		"heap_mb", memStats.HeapAlloc/1024/1024,
		"threshold_mb", mm.threshold/1024/1024)

	mm.collect()

	mm.mu.Lock()
	mm.stats.GCCount++
	mm.mu.Unlock()

	mm.readStats(&memStats)
	mm.logger.Debug("memory after collection", "heap_mb", memStats.HeapAlloc/1024/1024)
	return true
}

// Stats returns current memory statistics
func (mm *MemoryMonitor) Stats() MemoryStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.stats
}

// RecordPanic records a panic occurrence
func (prh *PanicRecorder) RecordPanic(message, stackTrace, context string) {
	prh.mu.Lock()
	defer prh.mu.Unlock()

	prh.panics = append(prh.panics, PanicRecord{
		Timestamp:  time.Now(),
		Message:    message,
		StackTrace: stackTrace,
		Context:    context,
	})

	// Keep only the most recent panics
	if len(prh.panics) > prh.maxPanics {
		prh.panics = prh.panics[len(prh.panics)-prh.maxPanics:]
	}

	prh.logger.Error("panic contained", "context", context, "panic", message)
}

// Records returns recent panic records
func (prh *PanicRecorder) Records() []PanicRecord {
	prh.mu.RLock()
	defer prh.mu.RUnlock()

	result := make([]PanicRecord, len(prh.panics))
	copy(result, prh.panics)
	return result
}

// Count returns the number of recorded panics
func (prh *PanicRecorder) Count() int {
	prh.mu.RLock()
	defer prh.mu.RUnlock()
	return len(prh.panics)
}
