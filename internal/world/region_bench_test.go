package world

import (
	"testing"

	"github.com/udisondev/beastmind/internal/model"
)

func BenchmarkRegion_ForEach(b *testing.B) {
	region := NewRegion(RegionKey{})
	for range 256 {
		region.Add(newObj(model.KindCreature, model.Vec3{}))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		region.ForEach(func(*model.WorldObject) bool { return true })
	}
}
