package diagnostics

import "fmt"

// PreflightResult contains the result of pre-execution checks.
type PreflightResult struct {
	OK       bool
	Warnings []string
	Errors   []string
	Metrics  SystemMetrics
}

// Preflight runs resource checks before a backend subprocess is spawned.
type Preflight struct {
	collector       *Collector
	enabled         bool
	minFreeMemoryMB float64
	maxDiskPercent  float64
}

// NewPreflight creates a preflight checker with the given thresholds.
// Zero thresholds disable their check.
func NewPreflight(enabled bool, minFreeMemoryMB, maxDiskPercent float64) *Preflight {
	return &Preflight{
		collector:       NewCollector(),
		enabled:         enabled,
		minFreeMemoryMB: minFreeMemoryMB,
		maxDiskPercent:  maxDiskPercent,
	}
}

// DefaultPreflight uses thresholds that catch a host about to thrash:
// 256 MB free memory, 95% disk usage.
func DefaultPreflight() *Preflight {
	return NewPreflight(true, 256, 95)
}

// Run performs the checks. Errors mark the result as not OK; warnings
// are advisory and callers proceed anyway.
func (p *Preflight) Run() PreflightResult {
	result := PreflightResult{OK: true}
	if !p.enabled {
		return result
	}

	result.Metrics = p.collector.Collect()

	freeMB := result.Metrics.MemTotalMB - result.Metrics.MemUsedMB
	if p.minFreeMemoryMB > 0 && result.Metrics.MemTotalMB > 0 {
		if freeMB < p.minFreeMemoryMB {
			result.OK = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("insufficient free memory: %.0f MB free (minimum: %.0f MB)",
					freeMB, p.minFreeMemoryMB))
		} else if freeMB < p.minFreeMemoryMB*2 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("memory approaching limit: %.0f MB free", freeMB))
		}
	}

	if p.maxDiskPercent > 0 && result.Metrics.DiskPercent > p.maxDiskPercent {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("disk nearly full: %.1f%% used", result.Metrics.DiskPercent))
	}

	return result
}
