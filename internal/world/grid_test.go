package world

import "testing"

func TestCoordToRegion(t *testing.T) {
	tests := []struct {
		name string
		x, z float64
		want RegionKey
	}{
		{"origin", 0, 0, RegionKey{0, 0}},
		{"inside first region", 63.9, 10, RegionKey{0, 0}},
		{"second region", 64, 128, RegionKey{1, 2}},
		{"negative", -0.5, -64, RegionKey{-1, -1}},
		{"negative boundary", -65, 0, RegionKey{-2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoordToRegion(tt.x, tt.z); got != tt.want {
				t.Errorf("CoordToRegion(%v, %v) = %+v, want %+v", tt.x, tt.z, got, tt.want)
			}
		})
	}
}

func TestRegionsInRadius(t *testing.T) {
	keys := RegionsInRadius(32, 32, 10)
	if len(keys) != 1 {
		t.Fatalf("RegionsInRadius() len = %d, want 1", len(keys))
	}

	keys = RegionsInRadius(64, 64, 1)
	if len(keys) != 4 {
		t.Fatalf("RegionsInRadius() on corner len = %d, want 4", len(keys))
	}
}
