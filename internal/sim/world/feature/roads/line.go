package roads

import "crashfall.gg/internal/sim/world/kernel/model"

// LineIterator walks the tiles between two tile keys with Bresenham steps.
// Consecutive tiles always share an edge or a corner.
type LineIterator struct {
	cur, target    model.TileKey
	deltaX, deltaY int32
	stepX, stepY   int32
	err            int32
	xDominant      bool
	started        bool
}

func NewLineIterator(from, to model.TileKey) *LineIterator {
	it := &LineIterator{
		cur:    from,
		target: to,
		deltaX: abs32(to.X - from.X),
		deltaY: abs32(to.Y - from.Y),
		stepX:  1,
		stepY:  1,
	}
	if to.X < from.X {
		it.stepX = -1
	}
	if to.Y < from.Y {
		it.stepY = -1
	}
	it.xDominant = it.deltaX >= it.deltaY
	if it.xDominant {
		it.err = it.deltaX / 2
	} else {
		it.err = it.deltaY / 2
	}
	return it
}

// Next advances to the next tile. The first call yields the start tile; it
// returns false once the target has been yielded.
func (it *LineIterator) Next() bool {
	if !it.started {
		it.started = true
		return true
	}
	if it.cur == it.target {
		return false
	}
	if it.xDominant {
		it.cur.X += it.stepX
		it.err += it.deltaY
		if it.err >= it.deltaX {
			it.cur.Y += it.stepY
			it.err -= it.deltaX
		}
	} else {
		it.cur.Y += it.stepY
		it.err += it.deltaX
		if it.err >= it.deltaY {
			it.cur.X += it.stepX
			it.err -= it.deltaY
		}
	}
	return true
}

func (it *LineIterator) Key() model.TileKey { return it.cur }

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
