package mediaengine

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// ResourceManager calculates FFmpeg resource parameters from system
// capability. It reserves headroom for the rest of the process and caps
// threads where encoders stop scaling.
type ResourceManager struct {
	logger hclog.Logger

	mu          sync.Mutex
	cpuCores    int
	availMemMB  uint64
	lastRefresh time.Time
}

const resourceRefreshInterval = 30 * time.Second

// NewResourceManager creates a resource manager with an initial snapshot
func NewResourceManager(logger hclog.Logger) *ResourceManager {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	rm := &ResourceManager{logger: logger}
	rm.refresh()
	return rm
}

func (rm *ResourceManager) refresh() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if time.Since(rm.lastRefresh) < resourceRefreshInterval && rm.cpuCores > 0 {
		return
	}
	rm.lastRefresh = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil || cores < 1 {
		rm.logger.Debug("cpu count unavailable, using runtime value", "error", err)
		cores = runtime.NumCPU()
	}
	rm.cpuCores = cores

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		rm.availMemMB = vm.Available / (1024 * 1024)
	} else {
		rm.logger.Debug("memory stats unavailable", "error", err)
		rm.availMemMB = 1024
	}
}

// ThreadCount returns the -threads value for a single encode: 70% of
// cores, minimum 1, capped at 16.
func (rm *ResourceManager) ThreadCount() string {
	rm.refresh()

	rm.mu.Lock()
	defer rm.mu.Unlock()

	threads := int(float64(rm.cpuCores) * 0.7)
	if threads < 1 {
		threads = 1
	}
	if threads > 16 {
		threads = 16
	}
	return strconv.Itoa(threads)
}

// AvailableMemoryMB returns the last sampled available memory
func (rm *ResourceManager) AvailableMemoryMB() uint64 {
	rm.refresh()

	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.availMemMB
}
