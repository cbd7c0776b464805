package world

import "math"

// Grid constants. Regions are square columns in the XZ plane.
const (
	// RegionShift - shift by N bits for 2^N blocks per region (2^6 = 64)
	RegionShift = 6

	// RegionSize in blocks
	RegionSize = 1 << RegionShift
)

// RegionKey identifies one region column.
type RegionKey struct {
	RX, RZ int32
}

// CoordToRegion converts a world coordinate to its region key.
func CoordToRegion(x, z float64) RegionKey {
	return RegionKey{
		RX: int32(math.Floor(x)) >> RegionShift,
		RZ: int32(math.Floor(z)) >> RegionShift,
	}
}

// RegionsInRadius returns every region key touched by the square around (x, z).
func RegionsInRadius(x, z, radius float64) []RegionKey {
	lo := CoordToRegion(x-radius, z-radius)
	hi := CoordToRegion(x+radius, z+radius)

	keys := make([]RegionKey, 0, int((hi.RX-lo.RX+1)*(hi.RZ-lo.RZ+1)))
	for rx := lo.RX; rx <= hi.RX; rx++ {
		for rz := lo.RZ; rz <= hi.RZ; rz++ {
			keys = append(keys, RegionKey{RX: rx, RZ: rz})
		}
	}
	return keys
}
