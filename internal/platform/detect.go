package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector detects the running host.
type RealDetector struct{}

// NewDetector creates a detector for the running host.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect fills OS and architecture from the runtime, then asks gopsutil for
// the hostname and distribution. If gopsutil fails, the partial Info is
// returned without error; only context cancellation is reported.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:   runtime.GOOS,
		Arch: normalizeArch(runtime.GOARCH),
	}

	stat, err := host.InfoWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	info.Hostname = stat.Hostname
	if info.IsLinux() {
		if id := normalize(stat.Platform); id != "" {
			info.Platform = id
			info.Family = mapFamily(stat.PlatformFamily)
			info.Version = normalize(stat.PlatformVersion)
		}
	}
	return info, nil
}
