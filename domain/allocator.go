package domain

import "math/rand"

// Freeform placement constants. The attempt ceiling bounds collision
// resolution for items outside any zone; placement is best effort and never
// blocks creation.
const (
	freeformPadding     = 20.0
	freeformSeedSpan    = 4000.0
	maxPlacementRetries = 25
)

type cell struct {
	row, col int
}

// PositionInZone returns the world position of the first unoccupied grid
// cell for candidate inside zone, scanning rows top to bottom and columns
// left to right. Only items whose origin lies inside the zone AND whose type
// the zone manages count as occupants; decoration items sharing the
// rectangle are ignored. Once every cell is taken the position falls back to
// a vertical stack below the tracked occupants, deliberately overflowing the
// zone's nominal bottom edge instead of rejecting the placement.
//
// Pure function: it never fails and never mutates its inputs.
func PositionInZone(zone Zone, candidate BoardItem, existing []BoardItem) (float64, float64) {
	maxCols := zone.MaxCols()
	maxRows := zone.MaxRows()

	filtered := 0
	occupied := make(map[cell]struct{})
	for _, it := range existing {
		if !zone.Contains(it.X, it.Y) || !zone.Manages(it.Type) {
			continue
		}
		filtered++
		if maxCols == 0 || maxRows == 0 {
			continue
		}
		col := int((it.X - zone.X) / zone.ColumnWidth)
		row := int((it.Y - zone.Y - zone.Padding) / zone.RowHeight)
		if col < 0 || col >= maxCols || row < 0 || row >= maxRows {
			// Out-of-grid occupants (e.g. earlier overflow placements)
			// don't block any cell.
			continue
		}
		occupied[cell{row, col}] = struct{}{}
	}

	for row := 0; row < maxRows; row++ {
		for col := 0; col < maxCols; col++ {
			if _, taken := occupied[cell{row, col}]; taken {
				continue
			}
			x := zone.X + float64(col)*zone.ColumnWidth + zone.Padding
			y := zone.Y + float64(row)*zone.RowHeight + zone.Padding
			return x, y
		}
	}

	// Grid exhausted: stack in the first column below everything tracked.
	x := zone.X + zone.Padding
	y := zone.Y + zone.Padding + float64(filtered)*(zone.RowHeight+zone.Padding)
	return x, y
}

// AvoidCollisions places candidate outside any zone, starting from its
// requested position and dropping it below the lowest existing item whenever
// it overlaps something. After the retry ceiling it re-seeds to a random
// world position and tries again; if that also fails the last computed
// position is returned even if it still collides.
func AvoidCollisions(candidate BoardItem, existing []BoardItem, rng *rand.Rand) (float64, float64) {
	x, y := candidate.X, candidate.Y
	for round := 0; round < 2; round++ {
		for attempt := 0; attempt < maxPlacementRetries; attempt++ {
			probe := candidate
			probe.X, probe.Y = x, y
			if !overlapsAny(probe, existing) {
				return x, y
			}
			lowest := lowestItem(existing)
			x = lowest.X
			y = lowest.Y + lowest.Height + freeformPadding
		}
		x = rng.Float64() * freeformSeedSpan
		y = rng.Float64() * freeformSeedSpan
	}
	return x, y
}

// RandomSeed picks a starting position for freeform items created without
// explicit coordinates.
func RandomSeed(rng *rand.Rand) (float64, float64) {
	return rng.Float64() * freeformSeedSpan, rng.Float64() * freeformSeedSpan
}

func overlapsAny(candidate BoardItem, existing []BoardItem) bool {
	for _, it := range existing {
		if candidate.Overlaps(it) {
			return true
		}
	}
	return false
}

// lowestItem returns the existing item whose bottom edge extends furthest
// down. Callers must not pass an empty slice unless a collision was found,
// which implies at least one item exists.
func lowestItem(existing []BoardItem) BoardItem {
	lowest := existing[0]
	for _, it := range existing[1:] {
		if it.Y+it.Height > lowest.Y+lowest.Height {
			lowest = it
		}
	}
	return lowest
}
