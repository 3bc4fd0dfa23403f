package system

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// EstimateFootprint returns the bytes held while pixelating a width x height
// image: the decoded source (assumed 4 bytes per pixel), its RGB copy and the
// RGB destination.
func EstimateFootprint(width, height int) uint64 {
	pixels := uint64(width) * uint64(height)
	return pixels*4 + pixels*3 + pixels*3
}

// CheckMemory compares the footprint with the memory currently available.
// A nil error with ok=false means the estimate does not fit.
func CheckMemory(ctx context.Context, width, height int) (ok bool, need, avail uint64, err error) {
	need = EstimateFootprint(width, height)

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return true, need, 0, fmt.Errorf("read memory stats: %w", err)
	}
	return need <= vm.Available, need, vm.Available, nil
}

// HumanBytes formats n with a binary unit suffix.
func HumanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
