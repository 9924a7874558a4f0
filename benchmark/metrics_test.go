package benchmark

import (
	"runtime"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDelta(t *testing.T) {
	start := &runtime.MemStats{TotalAlloc: 1000, NumGC: 2, Alloc: 10}
	end := &runtime.MemStats{TotalAlloc: 5096, NumGC: 5, Alloc: 300, Sys: 9000, HeapAlloc: 250, HeapSys: 8000}

	got := memoryDelta(start, end)
	assert.Equal(t, MemoryMetrics{
		AllocBytes:      300,
		TotalAllocBytes: 4096,
		SysBytes:        9000,
		NumGC:           3,
		HeapAllocBytes:  250,
		HeapSysBytes:    8000,
	}, got)
}

func TestRunTrialRecordsAllocations(t *testing.T) {
	const size = 1 << 20
	var buf []byte

	trial := NewTrialBuilder("allocate").
		WithOperation(func() { buf = make([]byte, size) }).
		WithVerify(func() error {
			assert.Len(t, buf, size)
			return nil
		}).
		Build()

	result, err := NewSuite(nil, nil).RunTrial(trial)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.MemoryStats.TotalAllocBytes, uint64(size))
	assert.NotZero(t, result.MemoryStats.HeapSysBytes)
}

func TestLogResults(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	LogResults([]Result{
		{Label: "Writing to array", Section: "DYNAMIC SLICE []FLOAT64", MemoryStats: MemoryMetrics{TotalAllocBytes: 64, NumGC: 1}},
		{Label: "Reading from array", Section: "DYNAMIC SLICE []FLOAT64"},
	})

	require.Len(t, hook.AllEntries(), 2)
	first := hook.AllEntries()[0]
	assert.Equal(t, log.InfoLevel, first.Level)
	assert.Equal(t, "trial memory", first.Message)
	assert.Equal(t, "Writing to array", first.Data["trial"])
	assert.Equal(t, uint64(64), first.Data["total_alloc_bytes"])
	assert.Equal(t, uint32(1), first.Data["num_gc"])
}
