package mathx

import "math"

// FloorTile maps a world coordinate to its tile index.
func FloorTile(v, tileSize float64) int32 {
	return int32(math.Floor(v / tileSize))
}

func Dist(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func Hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// DeriveSeed returns a fresh seed for a regeneration attempt. Attempt 0 is the seed itself.
func DeriveSeed(seed int64, attempt int) int64 {
	if attempt <= 0 {
		return seed
	}
	return int64(Hash2(seed, attempt, 0x5eed) >> 1)
}
