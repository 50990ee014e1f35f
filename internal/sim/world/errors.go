package world

import (
	"errors"
	"fmt"
	"strings"

	"crashfall.gg/internal/sim/catalogs"
)

var (
	// ErrUnknownMapSize is returned before any generation work starts.
	ErrUnknownMapSize = catalogs.ErrUnknownMapSize
	// ErrInvalidTuning is returned by every Generate call of a generator built
	// with tuning that fails validation.
	ErrInvalidTuning = errors.New("invalid tuning")
	// ErrIncompleteGeneration means an anchor structure could not be placed.
	ErrIncompleteGeneration = errors.New("incomplete generation")
)

// IncompleteError reports which anchors were still missing after every
// regeneration attempt for Seed.
type IncompleteError struct {
	Seed     int64
	Attempts int
	Missing  []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("seed %d: anchors [%s] missing after %d attempts", e.Seed, strings.Join(e.Missing, ","), e.Attempts)
}

func (e *IncompleteError) Unwrap() error { return ErrIncompleteGeneration }
