package stability

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Guard(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)

	err := m.Guard("page 1", func() error { return nil })
	assert.NoError(t, err)

	sentinel := errors.New("boom")
	err = m.Guard("page 2", func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 0, m.Panics().Count())

	err = m.Guard("page 3", func() error {
		var grid []int
		_ = grid[4]
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 3 panicked")

	records := m.Panics().Records()
	require.Len(t, records, 1)
	assert.Equal(t, "page 3", records[0].Context)
	assert.Contains(t, records[0].StackTrace, "monitor_test.go")
}

func TestPanicRecorder_KeepsMostRecent(t *testing.T) {
	m := NewManager(Config{MaxPanics: 2}, nil)

	for _, op := range []string{"a", "b", "c"} {
		_ = m.Guard(op, func() error { panic(op) })
	}

	records := m.Panics().Records()
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].Context)
	assert.Equal(t, "c", records[1].Context)
	assert.Equal(t, false, m.HealthStatus()["healthy"])

	m.Reset()
	assert.Equal(t, 0, m.Panics().Count())
	assert.Equal(t, true, m.HealthStatus()["healthy"])
}

func TestMemoryMonitor_Check(t *testing.T) {
	m := NewManager(Config{MemoryThresholdMB: 1}, nil)

	heap := uint64(4 * 1024 * 1024)
	collections := 0
	m.memory.readStats = func(s *runtime.MemStats) { s.HeapAlloc = heap }
	m.memory.collect = func() {
		collections++
		heap = 512 * 1024
	}

	assert.True(t, m.Relieve())
	assert.Equal(t, 1, collections)

	assert.False(t, m.Relieve(), "below the threshold after collecting")
	assert.Equal(t, 1, collections)

	stats := m.memory.Stats()
	assert.Equal(t, int64(2), stats.CheckCount)
	assert.Equal(t, int64(1), stats.GCCount)
	assert.Equal(t, uint64(4*1024*1024), stats.MaxAlloc)
	assert.Equal(t, uint64(512*1024), stats.CurrentAlloc)
}

func TestMemoryMonitor_Disabled(t *testing.T) {
	m := NewManager(Config{}, nil)
	m.memory.readStats = func(s *runtime.MemStats) { s.HeapAlloc = 1 << 40 }
	m.memory.collect = func() { t.Fatal("collection with the monitor disabled") }

	assert.False(t, m.Relieve())
}
