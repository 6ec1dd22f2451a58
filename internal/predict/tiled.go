package predict

import (
	"fmt"

	"github.com/mosaic-ml/mosaic/internal/array"
	"github.com/mosaic-ml/mosaic/internal/pad"
	"github.com/mosaic-ml/mosaic/internal/tile"
)

// Tiling configures the tiled prediction path: the inner tile extent
// and the halo margin per spatial axis.
type Tiling struct {
	Tile tile.Spec
	Halo tile.Halo
}

// WithTiling fills output tile by tile: for every planned tile it reads
// the outer window from input, pads it to the fixed per-tile shape
// (tile extent plus twice the halo), invokes the predictor, and writes
// the valid sub-region of the result into the inner window of output.
//
// Exactly one input and one output array are supported. When output is
// nil a buffer with the input's shape is allocated; a caller-supplied
// output must match the input's shape. The output is mutated in place
// and returned; every output element is written by exactly one tile.
func WithTiling[T array.Scalar](fn Func[T], input *array.Array[T], tiling Tiling, output *array.Array[T], opts ...Option) (*array.Array[T], error) {
	o := applyOptions(opts)

	if output == nil {
		output = array.Zeros[T](input.Shape(), input.Axes())
	} else {
		if !output.Axes().Equal(input.Axes()) {
			return nil, fmt.Errorf("%w: output axes %q vs input axes %q", ErrShapeMismatch, output.Axes(), input.Axes())
		}
		if !output.Shape().Equal(input.Shape()) {
			return nil, fmt.Errorf("%w: output shape %v vs input shape %v (tiling with a different output shape is not supported)",
				ErrShapeMismatch, output.Shape(), input.Shape())
		}
	}

	planner, err := tile.NewPlanner(input.Shape(), input.Axes(), tiling.Tile, tiling.Halo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	// Border tiles may fall short of the requested tile shape, so each
	// tile goes through fixed-mode padding up to the full outer extent.
	perTile := pad.Spec{Mode: pad.Fixed, Targets: map[array.Axis]int{}}
	for ax, extent := range tiling.Tile {
		perTile.Targets[ax] = extent + 2*tiling.Halo[ax]
	}

	total := planner.NumTiles()
	done := 0
	seq := planner.Tiles()
	for {
		t, ok := seq.Next()
		if !ok {
			break
		}

		inp, err := input.Region(t.Outer)
		if err != nil {
			return nil, err
		}

		// Tiles touching the array's start pad toward the far edge;
		// everywhere else the pad goes before the data. Interior tiles
		// already have the full outer extent and get zero width either
		// way, so the side only matters at the two ends of each axis.
		padRight := make(map[array.Axis]bool, len(t.Outer))
		for ax, r := range t.Outer {
			if ax.Spatial() {
				padRight[ax] = r.Start == 0
			}
		}

		out, err := WithPadding(fn, []*array.Array[T]{inp}, perTile, padRight)
		if err != nil {
			return nil, err
		}
		if len(out) != 1 {
			return nil, fmt.Errorf("%w: tiled prediction expects exactly one output, got %d", ErrUnsupported, len(out))
		}

		local, err := out[0].Region(t.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: selecting valid region of tile result: %v", ErrShapeMismatch, err)
		}
		if err := output.SetRegion(t.Inner, local); err != nil {
			return nil, fmt.Errorf("%w: stitching tile result: %v", ErrShapeMismatch, err)
		}

		done++
		if o.progress != nil {
			o.progress(done, total)
		}
		if o.logger != nil {
			o.logger.Debug("tile predicted", "tile", done, "total", total, "inner", fmt.Sprint(t.Inner))
		}
	}
	return output, nil
}
