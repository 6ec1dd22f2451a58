// Package pad computes symmetric padding and the inverse crop for
// axis-labeled arrays.
//
// Two policies are supported: Dynamic padding grows an axis to the next
// multiple of a divisor, Fixed padding grows it to an exact target and
// fails if the axis is already larger. Fill values mirror the existing
// data (symmetric reflection) so that a trained predictor never sees
// artificial edge content. Non-spatial axes are never padded.
package pad

import (
	"errors"
	"fmt"

	"github.com/mosaic-ml/mosaic/internal/array"
)

// ErrPadding is the base error for invalid or impossible padding
// requests. Use errors.Is to match it.
var ErrPadding = errors.New("padding")

// Mode selects the padding policy.
type Mode int

// Supported padding modes.
const (
	// Dynamic pads each spatial axis up to the next multiple of its target.
	Dynamic Mode = iota
	// Fixed pads each spatial axis to exactly its target extent.
	Fixed
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case Dynamic:
		return "dynamic"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// Spec configures padding: a mode and a per-spatial-axis target, which
// is a divisor in Dynamic mode and an absolute extent in Fixed mode.
type Spec struct {
	Mode    Mode
	Targets map[array.Axis]int
}

// Empty reports whether the spec carries no targets at all.
func (s Spec) Empty() bool {
	return len(s.Targets) == 0
}

func (s Spec) validate(axes array.Axes) error {
	for ax := range s.Targets {
		if !ax.Spatial() {
			return fmt.Errorf("%w: target declared for non-spatial axis %q", ErrPadding, ax)
		}
		if !axes.Contains(ax) {
			return fmt.Errorf("%w: target declared for axis %q not present in %q", ErrPadding, ax, axes)
		}
	}
	for _, ax := range axes.Spatial() {
		target, ok := s.Targets[ax]
		if !ok {
			return fmt.Errorf("%w: no target for spatial axis %q", ErrPadding, ax)
		}
		if target <= 0 {
			return fmt.Errorf("%w: non-positive target %d for axis %q", ErrPadding, target, ax)
		}
	}
	return nil
}

// Pad pads the array according to spec and returns the padded array
// together with the crop window that exactly inverts the padding.
//
// padRight selects, per spatial axis, whether the pad width is appended
// after the data (true) or prepended before it (false). A nil map pads
// every axis on the right. The crop window spans the full range on
// non-spatial axes.
func Pad[T array.Scalar](a *array.Array[T], spec Spec, padRight map[array.Axis]bool) (*array.Array[T], array.Window, error) {
	axes := a.Axes()
	if err := spec.validate(axes); err != nil {
		return nil, nil, err
	}

	right := func(ax array.Axis) bool {
		if padRight == nil {
			return true
		}
		r, ok := padRight[ax]
		if !ok {
			return true
		}
		return r
	}

	shape := a.Shape()
	left := make([]int, len(shape))
	outShape := make(array.Shape, len(shape))
	crop := array.Window{}

	for d, ax := range axes {
		extent := shape[d]
		if !ax.Spatial() {
			outShape[d] = extent
			crop[ax] = array.Range{}
			continue
		}

		target := spec.Targets[ax]
		var width int
		switch spec.Mode {
		case Dynamic:
			if r := extent % target; r != 0 {
				width = target - r
			}
		case Fixed:
			if target < extent {
				return nil, nil, fmt.Errorf("%w: axis %q: target extent %d is smaller than the array extent %d",
					ErrPadding, ax, target, extent)
			}
			width = target - extent
		default:
			return nil, nil, fmt.Errorf("%w: unknown mode %d", ErrPadding, spec.Mode)
		}

		outShape[d] = extent + width
		if right(ax) {
			crop[ax] = array.Range{Start: 0, Stop: extent}
		} else {
			left[d] = width
			crop[ax] = array.Range{Start: width, Stop: 0}
		}
	}

	return reflectFill(a, outShape, left), crop, nil
}

// reflectFill builds the padded array, filling new positions by
// symmetric reflection of the source data. Reflection folds repeatedly,
// so a pad width larger than the source extent is still well defined.
func reflectFill[T array.Scalar](a *array.Array[T], outShape array.Shape, left []int) *array.Array[T] {
	out := array.Zeros[T](outShape, a.Axes())
	shape := a.Shape()
	data := out.Data()

	coords := make([]int, len(outShape))
	src := make([]int, len(outShape))
	for i := range data {
		for d := range coords {
			src[d] = reflectIndex(coords[d]-left[d], shape[d])
		}
		data[i] = a.At(src...)

		for d := len(coords) - 1; d >= 0; d-- {
			coords[d]++
			if coords[d] < outShape[d] {
				break
			}
			coords[d] = 0
		}
	}
	return out
}

// reflectIndex maps a virtual position (possibly negative or beyond the
// extent) onto a source index by symmetric, edge-including reflection.
func reflectIndex(p, extent int) int {
	if extent == 1 {
		return 0
	}
	period := 2 * extent
	p %= period
	if p < 0 {
		p += period
	}
	if p < extent {
		return p
	}
	return period - 1 - p
}
