// Package hoststat collects host metrics shown in the dashboard settings view
package hoststat

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats is a point in time snapshot of host metrics. Metrics that failed to read are left zero
// and the reason is added to Errors.
type Stats struct {
	CPUs            int
	Load1           float64
	Load5           float64
	Load15          float64
	MemTotal        uint64
	MemUsedPercent  float64
	DiskPath        string
	DiskFreePercent float64
	Errors          []string
}

// Available reports whether at least one metric was read
func (s Stats) Available() bool {
	return s.CPUs > 0 || s.MemTotal > 0 || s.Load1 > 0 || s.DiskFreePercent > 0
}

// Snapshot reads current metrics, path is the mount point for disk usage, "/" if empty
func Snapshot(path string) Stats {
	if path == "" {
		path = "/"
	}
	res := Stats{DiskPath: path}

	if n, err := cpu.Counts(true); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("failed to get CPU count: %v", err))
	} else {
		res.CPUs = n
	}

	if loads, err := load.Avg(); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("failed to get load average: %v", err))
	} else {
		res.Load1, res.Load5, res.Load15 = loads.Load1, loads.Load5, loads.Load15
	}

	if v, err := mem.VirtualMemory(); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("failed to get memory: %v", err))
	} else {
		res.MemTotal, res.MemUsedPercent = v.Total, v.UsedPercent
	}

	if usage, err := disk.Usage(path); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("failed to get disk usage for %s: %v", path, err))
	} else {
		res.DiskFreePercent = 100 - usage.UsedPercent
	}
	return res
}

// HumanBytes formats size in binary units
func HumanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
