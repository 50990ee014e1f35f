package catalogs

import (
	"errors"
	"fmt"

	"crashfall.gg/internal/sim/world/kernel/model"
)

// ErrUnknownMapSize is returned for a size id missing from the table.
var ErrUnknownMapSize = errors.New("unknown map size")

var mapSizes = [...]model.MapSize{
	{ID: model.MapSmall, Width: 1024, Height: 768},
	{ID: model.MapMedium, Width: 2048, Height: 1536},
	{ID: model.MapLarge, Width: 3072, Height: 2304},
	{ID: model.MapHuge, Width: 4096, Height: 3072},
}

// MapSizes returns a copy of the fixed size table, smallest first.
func MapSizes() []model.MapSize {
	out := make([]model.MapSize, len(mapSizes))
	copy(out, mapSizes[:])
	return out
}

// FindMapSize resolves id against sizes. The error wraps ErrUnknownMapSize.
func FindMapSize(sizes []model.MapSize, id model.MapSizeID) (model.MapSize, error) {
	for _, s := range sizes {
		if s.ID == id {
			return s, nil
		}
	}
	return model.MapSize{}, fmt.Errorf("%w: %q", ErrUnknownMapSize, id)
}
