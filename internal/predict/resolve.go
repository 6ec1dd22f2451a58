package predict

import (
	"fmt"

	"github.com/mosaic-ml/mosaic/internal/array"
	"github.com/mosaic-ml/mosaic/internal/pad"
	"github.com/mosaic-ml/mosaic/internal/tile"
)

// Reference tile edge lengths for automatic tiling. Volumetric models
// get smaller tiles to keep the per-tile memory comparable.
const (
	refLen2D = 256
	refLen3D = 64
)

// ResolveTiling derives concrete tile and halo parameters from a
// declared input shape when the caller asks for automatic tiling.
//
// For a parametrized shape the tile extent per spatial axis is the
// smallest min + k*step that reaches the reference length (64 for
// volumetric axis sets, 256 otherwise); a zero step pins the axis to
// min. The declared output halo is mandatory: without it, tiled results
// would carry seam artifacts.
func ResolveTiling(input array.ShapeSpec, axes array.Axes, outputHalo []int) (Tiling, error) {
	if err := input.Validate(axes); err != nil {
		return Tiling{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if outputHalo == nil {
		return Tiling{}, fmt.Errorf("%w: model does not declare a halo to use for automatic tiling", ErrConfig)
	}
	if len(outputHalo) != len(axes) {
		return Tiling{}, fmt.Errorf("%w: halo has %d entries for %d axes %q", ErrConfig, len(outputHalo), len(axes), axes)
	}

	extents := resolveExtents(input, axes)

	t := Tiling{Tile: tile.Spec{}, Halo: tile.Halo{}}
	for d, ax := range axes {
		if !ax.Spatial() {
			continue
		}
		if extents[d] <= 0 {
			return Tiling{}, fmt.Errorf("%w: non-positive tile extent %d for axis %q", ErrConfig, extents[d], ax)
		}
		if outputHalo[d] <= 0 {
			return Tiling{}, fmt.Errorf("%w: automatic tiling requires a positive halo for axis %q, got %d", ErrConfig, ax, outputHalo[d])
		}
		t.Tile[ax] = extents[d]
		t.Halo[ax] = outputHalo[d]
	}
	return t, nil
}

// ResolvePadding derives a padding spec from a declared input shape
// when the caller asks for automatic padding: fixed shapes pad to the
// declared extents, parametrized shapes pad to the next multiple of the
// declared step.
func ResolvePadding(input array.ShapeSpec, axes array.Axes) (pad.Spec, error) {
	if err := input.Validate(axes); err != nil {
		return pad.Spec{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	spec := pad.Spec{Targets: map[array.Axis]int{}}
	switch input.Kind {
	case array.FixedShape:
		spec.Mode = pad.Fixed
		for d, ax := range axes {
			if ax.Spatial() {
				spec.Targets[ax] = input.Extents[d]
			}
		}
	case array.ParametrizedShape:
		spec.Mode = pad.Dynamic
		for d, ax := range axes {
			if ax.Spatial() {
				spec.Targets[ax] = input.Step[d]
			}
		}
	default:
		return pad.Spec{}, fmt.Errorf("%w: unknown shape kind %d", ErrConfig, input.Kind)
	}
	return spec, nil
}

// resolveExtents picks one concrete extent per axis from the declared
// shape.
func resolveExtents(input array.ShapeSpec, axes array.Axes) []int {
	if input.Kind == array.FixedShape {
		return input.Extents
	}

	refLen := refLen2D
	if axes.Contains(array.Z) {
		refLen = refLen3D
	}

	extents := make([]int, len(axes))
	for d, ax := range axes {
		extent := input.Min[d]
		if ax.Spatial() && input.Step[d] > 0 {
			for extent < refLen {
				extent += input.Step[d]
			}
		}
		extents[d] = extent
	}
	return extents
}
