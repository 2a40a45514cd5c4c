package chunk

import (
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

// SeamPolicy selects how the low-side neighbour guard is evaluated when a
// tile edit invalidates adjacent chunks.
type SeamPolicy uint8

const (
	// SeamPolicyAxis guards each axis with its own coordinate.
	SeamPolicyAxis SeamPolicy = iota
	// SeamPolicyLegacy guards both axes with the X coordinate, matching
	// the behaviour of earlier terrain builds.
	SeamPolicyLegacy
)

// AffectedChunks returns the chunks that must be rebuilt after an edit to
// tile: the owning chunk first, then at most one neighbour per axis.
// Targets are unique, so the result never holds more than three chunks.
func (g *Grid) AffectedChunks(tile terrain.TileCoord, policy SeamPolicy) ([]Coord, error) {
	home, err := g.CoordForTile(tile.X, tile.Z)
	if err != nil {
		return nil, err
	}

	out := make([]Coord, 0, 3)
	out = append(out, home)
	add := func(x, z int) {
		c, err := g.CoordForTile(x, z)
		if err != nil {
			return
		}
		for _, seen := range out {
			if seen == c {
				return
			}
		}
		out = append(out, c)
	}

	lowGuardZ := tile.Z
	if policy == SeamPolicyLegacy {
		lowGuardZ = tile.X
	}

	if next, prev, ok := g.seamNeighbour(tile.X, g.width, tile.X); ok {
		add(next, tile.Z)
	} else if prev {
		add(tile.X-1, tile.Z)
	}

	if next, prev, ok := g.seamNeighbour(tile.Z, g.depth, lowGuardZ); ok {
		add(tile.X, next)
	} else if prev {
		add(tile.X, tile.Z-1)
	}

	return out, nil
}

// seamNeighbour applies the per-axis rule. ok is set when the tile sits on
// the high edge of its chunk and the field continues past coord+1; prev is
// set when the tile sits at local index 1 and guard is positive.
func (g *Grid) seamNeighbour(coord, extent, guard int) (next int, prev, ok bool) {
	local := coord % g.size
	if local == g.size-1 && coord+1 < extent {
		return coord + 1, false, true
	}
	if local == 1 && guard > 0 {
		return 0, true, false
	}
	return 0, false, false
}
