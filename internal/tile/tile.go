// Package tile plans how a labeled array decomposes into overlapping
// tiles.
//
// Each tile is described by three windows: outer is the region read
// from the source (the tile plus its halo, clipped to the array
// bounds), inner is the disjoint region the tile owns in the output,
// and local is inner expressed in outer's own coordinate frame. The
// inner windows of a full plan partition the array exactly.
package tile

import (
	"fmt"

	"github.com/mosaic-ml/mosaic/internal/array"
)

// Spec maps each spatial axis to its tile extent (the inner extent,
// excluding halo).
type Spec map[array.Axis]int

// Halo maps spatial axes to the extra margin read around each tile.
// Missing axes default to zero.
type Halo map[array.Axis]int

// Tile is one planned tile window triple.
type Tile struct {
	Outer array.Window // region read from the input, halo included
	Inner array.Window // region this tile owns in the output
	Local array.Window // Inner relative to Outer's coordinates
}

// Planner produces tile sequences for one array geometry. It holds
// immutable configuration only; every call to Tiles starts a fresh
// sequence.
type Planner struct {
	spatial array.Axes
	extents []int
	tiles   []int
	halos   []int
}

// NewPlanner validates the tile geometry for an array with the given
// shape and axis labels.
func NewPlanner(shape array.Shape, axes array.Axes, tiles Spec, halo Halo) (*Planner, error) {
	if len(shape) != len(axes) {
		return nil, fmt.Errorf("shape %v has %d dimensions but axes %q has %d", shape, len(shape), axes, len(axes))
	}
	if err := axes.Validate(); err != nil {
		return nil, err
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	for ax := range tiles {
		if !ax.Spatial() || !axes.Contains(ax) {
			return nil, fmt.Errorf("tile extent declared for axis %q not a spatial axis of %q", ax, axes)
		}
	}
	for ax, h := range halo {
		if !ax.Spatial() || !axes.Contains(ax) {
			return nil, fmt.Errorf("halo declared for axis %q not a spatial axis of %q", ax, axes)
		}
		if h < 0 {
			return nil, fmt.Errorf("negative halo %d for axis %q", h, ax)
		}
	}

	spatial := axes.Spatial()
	p := &Planner{
		spatial: spatial,
		extents: make([]int, len(spatial)),
		tiles:   make([]int, len(spatial)),
		halos:   make([]int, len(spatial)),
	}
	for i, ax := range spatial {
		p.extents[i] = shape[axes.Index(ax)]
		t, ok := tiles[ax]
		if !ok {
			return nil, fmt.Errorf("no tile extent for spatial axis %q", ax)
		}
		if t <= 0 {
			return nil, fmt.Errorf("non-positive tile extent %d for axis %q", t, ax)
		}
		p.tiles[i] = t
		p.halos[i] = halo[ax]
	}
	return p, nil
}

// NumTiles returns the total number of tiles in one full sequence.
func (p *Planner) NumTiles() int {
	n := 1
	for i := range p.spatial {
		n *= ceilDiv(p.extents[i], p.tiles[i])
	}
	return n
}

// Tiles starts a fresh tile sequence. Sequences are finite, independent
// and deterministic: tiles are emitted in lexicographic order of their
// per-axis indices, with the last spatial axis varying fastest.
func (p *Planner) Tiles() *Sequence {
	return &Sequence{planner: p, index: make([]int, len(p.spatial))}
}

// Sequence steps through the tiles of one plan. The zero coordinate
// state is the first tile; Next advances until the sequence is spent.
type Sequence struct {
	planner *Planner
	index   []int
	done    bool
}

// Next returns the next tile, or ok=false when the sequence is spent.
func (s *Sequence) Next() (Tile, bool) {
	if s.done {
		return Tile{}, false
	}

	p := s.planner
	t := Tile{Outer: array.Window{}, Inner: array.Window{}, Local: array.Window{}}
	for i, ax := range p.spatial {
		extent, tileLen, halo := p.extents[i], p.tiles[i], p.halos[i]
		pos := s.index[i] * tileLen

		outerStart := max(pos-halo, 0)
		outerStop := min(pos+tileLen+halo, extent)
		innerStop := min(pos+tileLen, extent)

		t.Outer[ax] = array.Range{Start: outerStart, Stop: outerStop}
		t.Inner[ax] = array.Range{Start: pos, Stop: innerStop}

		// Relative to Outer, the valid region ends where the trailing
		// halo begins; when the outer window is flush with the array
		// edge there is no trailing halo to trim.
		localStop := 0
		if outerStop != innerStop {
			localStop = -(outerStop - innerStop)
		}
		t.Local[ax] = array.Range{Start: pos - outerStart, Stop: localStop}
	}

	// Advance the cartesian-product counter, last axis fastest.
	s.done = true
	for i := len(s.index) - 1; i >= 0; i-- {
		s.index[i]++
		if s.index[i] < ceilDiv(p.extents[i], p.tiles[i]) {
			s.done = false
			break
		}
		s.index[i] = 0
	}
	return t, true
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
