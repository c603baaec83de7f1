package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	MetricTime    = "time"
	MetricBattery = "battery"
	MetricDisk    = "disk"
	MetricMemory  = "memory"
)

type SystemInfo struct {
	now      func() time.Time
	powerDir string
	diskPath string
}

func NewSystemInfo() *SystemInfo {
	return &SystemInfo{
		now:      time.Now,
		powerDir: "/sys/class/power_supply",
		diskPath: "/",
	}
}

// Get reports one metric as a short human-readable string.
func (s *SystemInfo) Get(ctx context.Context, metric string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(metric)) {
	case "", MetricTime:
		return s.now().Format("15:04:05"), nil
	case MetricBattery:
		return s.battery(), nil
	case MetricDisk:
		u, err := disk.UsageWithContext(ctx, s.diskPath)
		if err != nil {
			return "", fmt.Errorf("disk usage: %w", err)
		}
		return fmt.Sprintf("%.1f%% used", u.UsedPercent), nil
	case MetricMemory:
		v, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("memory usage: %w", err)
		}
		return fmt.Sprintf("%.1f%% memory used", v.UsedPercent), nil
	default:
		return "Unknown metric", nil
	}
}

func (s *SystemInfo) battery() string {
	matches, _ := filepath.Glob(filepath.Join(s.powerDir, "BAT*", "capacity"))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			continue
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			return v + "%"
		}
	}
	return "Battery info unavailable"
}
