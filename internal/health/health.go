package health

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is anything that can prove a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db      Pinger
	redis   func() bool
	started time.Time
}

type HealthStatus struct {
	Status   string           `json:"status"`
	Database DependencyCheck  `json:"database"`
	Redis    *DependencyCheck `json:"redis,omitempty"`
}

type DependencyCheck struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

type SystemStatus struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  uint64  `json:"memory_used_mb"`
	MemoryTotalMB uint64  `json:"memory_total_mb"`
	DiskPercent   float64 `json:"disk_percent"`
	Goroutines    int     `json:"goroutines"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

type DetailedStatus struct {
	HealthStatus
	System SystemStatus `json:"system"`
}

// NewHealthChecker builds a checker. redis may be nil when Redis is not configured.
func NewHealthChecker(db Pinger, redis func() bool) *HealthChecker {
	return &HealthChecker{db: db, redis: redis, started: time.Now()}
}

func (h *HealthChecker) CheckBasic() HealthStatus {
	dbHealth := h.checkDatabase()

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}
	out := HealthStatus{Status: status, Database: dbHealth}

	if h.redis != nil {
		start := time.Now()
		rc := DependencyCheck{Status: "healthy"}
		if !h.redis() {
			// Uploads fall back to the in-process lock, so Redis only degrades.
			rc.Status = "unhealthy"
			if out.Status == "healthy" {
				out.Status = "degraded"
			}
		}
		rc.ResponseTime = time.Since(start).Milliseconds()
		out.Redis = &rc
	}
	return out
}

// CheckDetailed adds host figures for the monitoring dashboard.
func (h *HealthChecker) CheckDetailed() DetailedStatus {
	sys := SystemStatus{
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		sys.CPUPercent = pcts[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		sys.MemoryPercent = vm.UsedPercent
		sys.MemoryUsedMB = vm.Used / (1024 * 1024)
		sys.MemoryTotalMB = vm.Total / (1024 * 1024)
	}
	if du, err := disk.Usage("/"); err == nil {
		sys.DiskPercent = du.UsedPercent
	}
	return DetailedStatus{HealthStatus: h.CheckBasic(), System: sys}
}

func (h *HealthChecker) checkDatabase() DependencyCheck {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DependencyCheck{
			Status:       "unhealthy",
			ResponseTime: responseTime,
		}
	}

	return DependencyCheck{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}
