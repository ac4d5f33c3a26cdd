package health

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/cache"
)

// Pinger is anything with a reachability check, such as the document store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	store    Pinger
	sessions func() int
	started  time.Time
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Database ComponentHealth `json:"database"`
	Redis    ComponentHealth `json:"redis"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

// DetailedStatus adds host and process figures for the monitoring view.
type DetailedStatus struct {
	HealthStatus
	Uptime         string  `json:"uptime"`
	ActiveSessions int     `json:"active_sessions"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryPercent  float64 `json:"memory_percent"`
	MemoryUsed     string  `json:"memory_used"`
	MemoryTotal    string  `json:"memory_total"`
	DiskPercent    float64 `json:"disk_percent"`
	DiskUsed       string  `json:"disk_used"`
	DiskTotal      string  `json:"disk_total"`
}

// NewHealthChecker checks store; sessions, if set, reports signed-in users.
func NewHealthChecker(store Pinger, sessions func() int) *HealthChecker {
	return &HealthChecker{store: store, sessions: sessions, started: time.Now()}
}

// CheckBasic is healthy when the document store answers. Redis is optional
// and reported as "disabled" when not connected.
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := h.checkDatabase(ctx)

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
		Redis:    h.checkRedis(),
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.store.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{Status: "unhealthy", ResponseTime: responseTime}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: responseTime}
}

func (h *HealthChecker) checkRedis() ComponentHealth {
	if cache.GetClient() == nil {
		return ComponentHealth{Status: "disabled"}
	}
	start := time.Now()
	ok := cache.IsHealthy()
	responseTime := time.Since(start).Milliseconds()
	if !ok {
		return ComponentHealth{Status: "unhealthy", ResponseTime: responseTime}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: responseTime}
}

// CheckDetailed samples CPU over sample; pass 0 for an instantaneous read.
func (h *HealthChecker) CheckDetailed(ctx context.Context, sample time.Duration) DetailedStatus {
	out := DetailedStatus{
		HealthStatus: h.CheckBasic(ctx),
		Uptime:       formatUptime(time.Since(h.started)),
	}
	if h.sessions != nil {
		out.ActiveSessions = h.sessions()
	}

	if percents, err := cpu.PercentWithContext(ctx, sample, false); err == nil && len(percents) > 0 {
		out.CPUPercent = percents[0]
	}
	if m, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out.MemoryPercent = m.UsedPercent
		out.MemoryUsed = formatBytes(m.Used)
		out.MemoryTotal = formatBytes(m.Total)
	}
	if d, err := disk.UsageWithContext(ctx, "/"); err == nil {
		out.DiskPercent = d.UsedPercent
		out.DiskUsed = formatBytes(d.Used)
		out.DiskTotal = formatBytes(d.Total)
	}
	return out
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		mb := float64(bytes) / (1024 * 1024)
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Minute)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
