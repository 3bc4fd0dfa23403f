package system

import (
	"context"
	"testing"
)

func TestEstimateFootprint(t *testing.T) {
	if got := EstimateFootprint(10, 10); got != 1000 {
		t.Errorf("Expected 1000 bytes, got %d", got)
	}
	// Must not overflow int for large images
	if got := EstimateFootprint(100000, 100000); got != 100000*100000*10 {
		t.Errorf("Unexpected footprint %d", got)
	}
}

func TestCheckMemory(t *testing.T) {
	ok, need, avail, err := CheckMemory(context.Background(), 16, 16)
	if err != nil {
		t.Skipf("memory stats unavailable: %v", err)
	}
	if !ok {
		t.Errorf("A 16x16 image should fit: need %d, avail %d", need, avail)
	}
	t.Logf("need %s, available %s", HumanBytes(need), HumanBytes(avail))
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{3 * 1024 * 1024, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := HumanBytes(tt.n); got != tt.want {
			t.Errorf("HumanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestCheckMemoryHugeImage(t *testing.T) {
	ok, need, avail, err := CheckMemory(context.Background(), 1_000_000, 1_000_000)
	if err != nil {
		t.Skipf("memory stats unavailable: %v", err)
	}
	if ok {
		t.Errorf("A 1000000x1000000 image should not fit: need %s, avail %s", HumanBytes(need), HumanBytes(avail))
	}
}
