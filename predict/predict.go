// Copyright 2025 The Mosaic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package predict

import (
	"log/slog"

	"github.com/mosaic-ml/mosaic/array"
	ipredict "github.com/mosaic-ml/mosaic/internal/predict"
	"github.com/mosaic-ml/mosaic/internal/tile"
)

// Func is the opaque prediction backend: a pure function from labeled
// input arrays to labeled output arrays.
type Func[T array.Scalar] = ipredict.Func[T]

// Config selects how a prediction run handles oversized inputs.
// Padding and Tiling are mutually exclusive.
type Config[T array.Scalar] = ipredict.Config[T]

// Run executes one prediction according to cfg. Requesting both
// padding and tiling returns ErrConfig before any array is touched.
func Run[T array.Scalar](fn Func[T], inputs []*array.Array[T], cfg Config[T], opts ...Option) ([]*array.Array[T], error) {
	return ipredict.Run(fn, inputs, cfg, opts...)
}

// WithPadding pads the input to the predictor's shape constraints,
// invokes it once, and crops the outputs back to the original extent.
func WithPadding[T array.Scalar](fn Func[T], inputs []*array.Array[T], spec PaddingSpec, padRight map[array.Axis]bool) ([]*array.Array[T], error) {
	return ipredict.WithPadding(fn, inputs, spec, padRight)
}

// WithTiling fills the output tile by tile, padding boundary tiles and
// discarding each tile's halo before stitching. When output is nil a
// buffer with the input's shape is allocated. The output is mutated in
// place and returned.
func WithTiling[T array.Scalar](fn Func[T], input *array.Array[T], tiling Tiling, output *array.Array[T], opts ...Option) (*array.Array[T], error) {
	return ipredict.WithTiling(fn, input, tiling, output, opts...)
}

// ResolveTiling derives tile and halo parameters from a declared input
// shape and the declared output halo.
func ResolveTiling(input array.ShapeSpec, axes array.Axes, outputHalo []int) (Tiling, error) {
	return ipredict.ResolveTiling(input, axes, outputHalo)
}

// ResolvePadding derives a padding spec from a declared input shape.
func ResolvePadding(input array.ShapeSpec, axes array.Axes) (PaddingSpec, error) {
	return ipredict.ResolvePadding(input, axes)
}

// NewPlanner validates tile geometry for an array with the given shape
// and axes; its sequences can be consumed independently and re-created
// cheaply.
func NewPlanner(shape array.Shape, axes array.Axes, tiles TileSpec, halo Halo) (*Planner, error) {
	return tile.NewPlanner(shape, axes, tiles, halo)
}

// WithProgress reports tile completion counts while the tiled path runs.
func WithProgress(fn func(done, total int)) Option {
	return ipredict.WithProgress(fn)
}

// WithLogger enables per-tile debug logging.
func WithLogger(l *slog.Logger) Option {
	return ipredict.WithLogger(l)
}
