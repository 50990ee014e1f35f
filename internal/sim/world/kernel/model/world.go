package model

import (
	"math"

	"crashfall.gg/internal/sim/world/logic/mathx"
)

type MapSizeID string

const (
	MapSmall  MapSizeID = "small"
	MapMedium MapSizeID = "medium"
	MapLarge  MapSizeID = "large"
	MapHuge   MapSizeID = "huge"
)

// MapSize is a playable area in world units.
type MapSize struct {
	ID     MapSizeID `json:"id" yaml:"id"`
	Width  float64   `json:"width" yaml:"width"`
	Height float64   `json:"height" yaml:"height"`
}

type BiomeID string

type TerrainID string

// TerrainRoad is the sub-type written by road carving.
const TerrainRoad TerrainID = "road"

// Rotation is a binary orientation flag consumed by renderers.
type Rotation uint8

const (
	RotationHorizontal Rotation = 0
	RotationVertical   Rotation = 1
)

// TileKey identifies a tile by column and row.
type TileKey struct {
	X int32
	Y int32
}

type TerrainTile struct {
	Terrain  TerrainID
	Biome    BiomeID
	Rotation Rotation
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Dist(o Point) float64 {
	return mathx.Dist(p.X, p.Y, o.X, o.Y)
}

type StructurePlacement struct {
	Position    Point
	ArchetypeID string
	Biome       BiomeID
	// Forced marks an anchor committed by the fallback search, which skips the
	// same-archetype distance check.
	Forced bool
}

type SpawnArea struct {
	Position Point
	Radius   float64
	Biome    BiomeID
	Density  float64
}

// Grid is the tile lattice covering a map.
type Grid struct {
	Cols     int32
	Rows     int32
	TileSize float64
}

func NewGrid(size MapSize, tileSize float64) Grid {
	if tileSize <= 0 {
		tileSize = 64
	}
	return Grid{
		Cols:     int32(math.Ceil(size.Width / tileSize)),
		Rows:     int32(math.Ceil(size.Height / tileSize)),
		TileSize: tileSize,
	}
}

func (g Grid) Len() int {
	return int(g.Cols) * int(g.Rows)
}

// Keys lists every tile in row-major order (y outer, x inner).
func (g Grid) Keys() []TileKey {
	out := make([]TileKey, 0, g.Len())
	for y := int32(0); y < g.Rows; y++ {
		for x := int32(0); x < g.Cols; x++ {
			out = append(out, TileKey{X: x, Y: y})
		}
	}
	return out
}

func (g Grid) Contains(k TileKey) bool {
	return k.X >= 0 && k.Y >= 0 && k.X < g.Cols && k.Y < g.Rows
}

func (g Grid) KeyAt(p Point) TileKey {
	return TileKey{X: mathx.FloorTile(p.X, g.TileSize), Y: mathx.FloorTile(p.Y, g.TileSize)}
}

func (g Grid) Origin(k TileKey) Point {
	return Point{X: float64(k.X) * g.TileSize, Y: float64(k.Y) * g.TileSize}
}

func (g Grid) Center(k TileKey) Point {
	o := g.Origin(k)
	return Point{X: o.X + g.TileSize/2, Y: o.Y + g.TileSize/2}
}

// WorldMap is the generated blueprint of a level. It is not modified after
// generation returns; the caller owns every collection in it.
type WorldMap struct {
	MapSize MapSize
	// Seed produced this layout. It differs from RequestedSeed only when the
	// generator had to regenerate after a missing anchor.
	Seed          int64
	RequestedSeed int64
	Grid          Grid

	Biomes  map[TileKey]BiomeID
	Terrain map[TileKey]TerrainTile

	Structures          []StructurePlacement
	PlayerStart         Point
	PlayerStartFallback bool
	ZombieSpawnAreas    []SpawnArea
}

func (w *WorldMap) Center() Point {
	return Point{X: w.MapSize.Width / 2, Y: w.MapSize.Height / 2}
}

// Contains reports whether p lies in [0,width] x [0,height].
func (w *WorldMap) Contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= w.MapSize.Width && p.Y <= w.MapSize.Height
}

func (w *WorldMap) BiomeAt(p Point) (BiomeID, bool) {
	b, ok := w.Biomes[w.Grid.KeyAt(p)]
	return b, ok
}

// StructuresOf returns placements of one archetype in placement order.
func (w *WorldMap) StructuresOf(archetypeID string) []StructurePlacement {
	var out []StructurePlacement
	for _, s := range w.Structures {
		if s.ArchetypeID == archetypeID {
			out = append(out, s)
		}
	}
	return out
}
