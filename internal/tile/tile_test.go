package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaic-ml/mosaic/internal/array"
)

func collect(t *testing.T, p *Planner) []Tile {
	t.Helper()
	var tiles []Tile
	seq := p.Tiles()
	for {
		tile, ok := seq.Next()
		if !ok {
			return tiles
		}
		tiles = append(tiles, tile)
	}
}

// TestPlanner_BoundaryTiles pins down the halo clipping behavior for a
// 1-D array of extent 10, tile 4, halo 2.
func TestPlanner_BoundaryTiles(t *testing.T) {
	p, err := NewPlanner(array.Shape{10}, array.MustAxes("x"), Spec{array.X: 4}, Halo{array.X: 2})
	require.NoError(t, err)
	require.Equal(t, 3, p.NumTiles())

	tiles := collect(t, p)
	require.Len(t, tiles, 3)

	assert.Equal(t, array.Range{Start: 0, Stop: 6}, tiles[0].Outer[array.X], "first outer clipped at the array start")
	assert.Equal(t, array.Range{Start: 0, Stop: 4}, tiles[0].Inner[array.X])
	assert.Equal(t, array.Range{Start: 0, Stop: -2}, tiles[0].Local[array.X])

	assert.Equal(t, array.Range{Start: 2, Stop: 10}, tiles[1].Outer[array.X])
	assert.Equal(t, array.Range{Start: 4, Stop: 8}, tiles[1].Inner[array.X])
	assert.Equal(t, array.Range{Start: 2, Stop: -2}, tiles[1].Local[array.X])

	assert.Equal(t, array.Range{Start: 6, Stop: 10}, tiles[2].Outer[array.X], "last outer clipped, no halo beyond the edge")
	assert.Equal(t, array.Range{Start: 8, Stop: 10}, tiles[2].Inner[array.X])
	assert.Equal(t, array.Range{Start: 2, Stop: 0}, tiles[2].Local[array.X], "trailing edge stays open-ended")
}

// TestPlanner_Partition checks the partition property: every spatial
// position is owned by exactly one inner window.
func TestPlanner_Partition(t *testing.T) {
	cases := []struct {
		name  string
		shape array.Shape
		axes  string
		tiles Spec
		halo  Halo
	}{
		{"even_1d", array.Shape{16}, "x", Spec{array.X: 4}, Halo{array.X: 2}},
		{"ragged_1d", array.Shape{10}, "x", Spec{array.X: 4}, Halo{array.X: 2}},
		{"no_halo", array.Shape{10}, "x", Spec{array.X: 3}, nil},
		{"ragged_2d", array.Shape{9, 9}, "yx", Spec{array.Y: 4, array.X: 4}, Halo{array.Y: 1, array.X: 1}},
		{"with_bc", array.Shape{1, 2, 7, 5}, "bcyx", Spec{array.Y: 3, array.X: 2}, Halo{array.Y: 1, array.X: 1}},
		{"volume", array.Shape{5, 6, 7}, "zyx", Spec{array.Z: 2, array.Y: 4, array.X: 3}, Halo{array.Z: 1, array.Y: 2, array.X: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			axes := array.MustAxes(tc.axes)
			p, err := NewPlanner(tc.shape, axes, tc.tiles, tc.halo)
			require.NoError(t, err)

			// Count how often each position is claimed by an inner window.
			counts := array.Zeros[int32](tc.shape, axes)
			ones := func(shape array.Shape) *array.Array[int32] {
				a := array.Zeros[int32](shape, axes)
				for i := range a.Data() {
					a.Data()[i] = 1
				}
				return a
			}

			total := 0
			for _, tile := range collect(t, p) {
				region, err := counts.Region(tile.Inner)
				require.NoError(t, err)
				total += region.NumElements()
				require.NoError(t, counts.SetRegion(tile.Inner, ones(region.Shape())))

				// Inner must sit inside outer, and local must have
				// inner's extent within outer's frame.
				outer, err := counts.Region(tile.Outer)
				require.NoError(t, err)
				local, err := outer.Region(tile.Local)
				require.NoError(t, err)
				assert.Equal(t, region.Shape(), local.Shape(), "local extent must match inner extent")
			}

			assert.Equal(t, tc.shape.NumElements(), total, "inner areas must sum to the full array")
			for i, c := range counts.Data() {
				require.EqualValues(t, 1, c, "position %d claimed %d times", i, c)
			}
		})
	}
}

// TestPlanner_NineByNine pins the multi-tile stitch example: 9x9 with
// 4x4 tiles gives 9 tiles covering 81 positions with zero overlap.
func TestPlanner_NineByNine(t *testing.T) {
	p, err := NewPlanner(array.Shape{9, 9}, array.MustAxes("yx"),
		Spec{array.Y: 4, array.X: 4}, Halo{array.Y: 1, array.X: 1})
	require.NoError(t, err)

	assert.Equal(t, 9, p.NumTiles())
	tiles := collect(t, p)
	require.Len(t, tiles, 9)

	area := 0
	for _, tile := range tiles {
		area += tile.Inner[array.Y].Len(9) * tile.Inner[array.X].Len(9)
	}
	assert.Equal(t, 81, area)
}

// TestPlanner_Order checks the deterministic iteration order: the last
// spatial axis varies fastest.
func TestPlanner_Order(t *testing.T) {
	p, err := NewPlanner(array.Shape{4, 6}, array.MustAxes("yx"),
		Spec{array.Y: 2, array.X: 2}, nil)
	require.NoError(t, err)

	var starts [][2]int
	for _, tile := range collect(t, p) {
		starts = append(starts, [2]int{tile.Inner[array.Y].Start, tile.Inner[array.X].Start})
	}
	assert.Equal(t, [][2]int{
		{0, 0}, {0, 2}, {0, 4},
		{2, 0}, {2, 2}, {2, 4},
	}, starts)
}

// TestPlanner_Restartable checks that sequences are independent and
// repeatable.
func TestPlanner_Restartable(t *testing.T) {
	p, err := NewPlanner(array.Shape{10, 10}, array.MustAxes("yx"),
		Spec{array.Y: 4, array.X: 4}, Halo{array.Y: 1, array.X: 1})
	require.NoError(t, err)

	first := collect(t, p)
	second := collect(t, p)
	assert.Equal(t, first, second, "a fresh sequence must reproduce the same tiles")
}

// TestPlanner_NonSpatialFullRange checks that batch/channel axes map to
// the full range in all three windows.
func TestPlanner_NonSpatialFullRange(t *testing.T) {
	p, err := NewPlanner(array.Shape{2, 3, 8}, array.MustAxes("bcx"), Spec{array.X: 4}, nil)
	require.NoError(t, err)

	for _, tile := range collect(t, p) {
		assert.Equal(t, array.Range{}, tile.Outer.Get(array.Batch))
		assert.Equal(t, array.Range{}, tile.Inner.Get(array.Channel))
		assert.Equal(t, array.Range{}, tile.Local.Get(array.Batch))
	}
}

// TestPlanner_Validation checks the malformed-geometry failure modes.
func TestPlanner_Validation(t *testing.T) {
	axes := array.MustAxes("yx")

	_, err := NewPlanner(array.Shape{8, 8}, axes, Spec{array.Y: 4}, nil)
	assert.Error(t, err, "missing tile extent for a spatial axis")

	_, err = NewPlanner(array.Shape{8, 8}, axes, Spec{array.Y: 4, array.X: 0}, nil)
	assert.Error(t, err, "non-positive tile extent")

	_, err = NewPlanner(array.Shape{8, 8}, axes, Spec{array.Y: 4, array.X: 4}, Halo{array.X: -1})
	assert.Error(t, err, "negative halo")

	_, err = NewPlanner(array.Shape{8, 8}, axes, Spec{array.Y: 4, array.X: 4, array.Z: 4}, nil)
	assert.Error(t, err, "tile extent for an axis the array does not have")

	_, err = NewPlanner(array.Shape{8}, axes, Spec{array.Y: 4, array.X: 4}, nil)
	assert.Error(t, err, "shape/axes rank mismatch")
}
