package benchmark

import (
	"runtime"

	log "github.com/sirupsen/logrus"
)

// Result is a completed trial.
type Result struct {
	Label       string        `json:"label"`
	Section     string        `json:"section"`
	Measurement Measurement   `json:"measurement"`
	MemoryStats MemoryMetrics `json:"memory_stats"`
}

// MemoryMetrics captures memory usage around a trial.
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
}

// memoryDelta builds MemoryMetrics from snapshots taken before and after a trial.
func memoryDelta(start, end *runtime.MemStats) MemoryMetrics {
	return MemoryMetrics{
		AllocBytes:      end.Alloc,
		TotalAllocBytes: end.TotalAlloc - start.TotalAlloc,
		SysBytes:        end.Sys,
		NumGC:           end.NumGC - start.NumGC,
		HeapAllocBytes:  end.HeapAlloc,
		HeapSysBytes:    end.HeapSys,
	}
}

// LogResults writes the memory usage of every result to the standard logger.
func LogResults(results []Result) {
	for _, r := range results {
		log.WithFields(log.Fields{
			"section":           r.Section,
			"trial":             r.Label,
			"total_alloc_bytes": r.MemoryStats.TotalAllocBytes,
			"heap_alloc_bytes":  r.MemoryStats.HeapAllocBytes,
			"heap_sys_bytes":    r.MemoryStats.HeapSysBytes,
			"num_gc":            r.MemoryStats.NumGC,
		}).Info("trial memory")
	}
}
