// Package diagnostics collects host resource metrics and runs the
// preflight checks used before spawning backend subprocesses.
package diagnostics

import (
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemMetrics holds system-wide resource usage.
type SystemMetrics struct {
	// CPU
	CPUModel   string  `json:"cpu_model"`
	CPUCores   int     `json:"cpu_cores"`
	CPUPercent float64 `json:"cpu_percent"`

	// Memory (in MB)
	MemTotalMB float64 `json:"mem_total_mb"`
	MemUsedMB  float64 `json:"mem_used_mb"`
	MemPercent float64 `json:"mem_percent"`

	// Disk (in GB)
	DiskTotalGB float64 `json:"disk_total_gb"`
	DiskUsedGB  float64 `json:"disk_used_gb"`
	DiskPercent float64 `json:"disk_percent"`

	// Load average (Unix; zero on Windows)
	LoadAvg1  float64 `json:"load_avg_1"`
	LoadAvg5  float64 `json:"load_avg_5"`
	LoadAvg15 float64 `json:"load_avg_15"`
}

// Collector gathers system statistics. Static hardware info is read
// once and cached.
type Collector struct {
	mu sync.Mutex

	infoCollected bool
	cpuModel      string
	cpuCores      int
}

// NewCollector creates a metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect gathers current system statistics. Each probe is best-effort:
// a failing source leaves its fields zeroed rather than failing the call.
func (c *Collector) Collect() SystemMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := SystemMetrics{}

	if !c.infoCollected {
		if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
			c.cpuModel = infos[0].ModelName
		}
		c.cpuCores = runtime.NumCPU()
		c.infoCollected = true
	}
	stats.CPUModel = c.cpuModel
	stats.CPUCores = c.cpuCores

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemTotalMB = float64(vm.Total) / 1024 / 1024
		stats.MemUsedMB = float64(vm.Used) / 1024 / 1024
		stats.MemPercent = vm.UsedPercent
	}

	if du, err := disk.Usage("."); err == nil {
		stats.DiskTotalGB = float64(du.Total) / 1024 / 1024 / 1024
		stats.DiskUsedGB = float64(du.Used) / 1024 / 1024 / 1024
		stats.DiskPercent = du.UsedPercent
	}

	if avg, err := load.Avg(); err == nil {
		stats.LoadAvg1 = avg.Load1
		stats.LoadAvg5 = avg.Load5
		stats.LoadAvg15 = avg.Load15
	}

	return stats
}
