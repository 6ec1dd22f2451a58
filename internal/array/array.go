package array

import "fmt"

// Scalar is a constraint for supported array element types.
type Scalar interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// Array is an axis-labeled multi-dimensional array with a contiguous
// row-major buffer. Each dimension carries one label from the closed
// axis set, and spatial dimensions (x, y, z) are the ones the tiling
// and padding machinery operates on.
//
// Example:
//
//	a, err := array.New[float32](array.Shape{1, 1, 256, 256}, array.MustAxes("bcyx"))
type Array[T Scalar] struct {
	data   []T
	shape  Shape
	stride []int
	axes   Axes
}

// New creates a zero-filled array with the given shape and axis labels.
func New[T Scalar](shape Shape, axes Axes) (*Array[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if err := axes.Validate(); err != nil {
		return nil, fmt.Errorf("invalid axes: %w", err)
	}
	if len(shape) != len(axes) {
		return nil, fmt.Errorf("shape %v has %d dimensions but axes %q has %d", shape, len(shape), axes, len(axes))
	}
	return &Array[T]{
		data:   make([]T, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		axes:   axes.Clone(),
	}, nil
}

// Zeros creates a zero-filled array, panicking on invalid arguments.
// Intended for construction sites where shape and axes are known good.
func Zeros[T Scalar](shape Shape, axes Axes) *Array[T] {
	a, err := New[T](shape, axes)
	if err != nil {
		panic(err)
	}
	return a
}

// FromSlice creates an array from a Go slice. The slice is copied.
func FromSlice[T Scalar](data []T, shape Shape, axes Axes) (*Array[T], error) {
	a, err := New[T](shape, axes)
	if err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	copy(a.data, data)
	return a, nil
}

// MustAxes parses an axis string, panicking on invalid input.
func MustAxes(s string) Axes {
	axes, err := ParseAxes(s)
	if err != nil {
		panic(err)
	}
	return axes
}

// Shape returns the array's shape.
func (a *Array[T]) Shape() Shape {
	return a.shape
}

// Axes returns the array's axis labels.
func (a *Array[T]) Axes() Axes {
	return a.axes
}

// NumElements returns the total number of elements.
func (a *Array[T]) NumElements() int {
	return a.shape.NumElements()
}

// Extent returns the length of the given axis, or 1 if the axis is not
// part of this array.
func (a *Array[T]) Extent(ax Axis) int {
	d := a.axes.Index(ax)
	if d < 0 {
		return 1
	}
	return a.shape[d]
}

// Data returns the underlying flat buffer in row-major order.
//
// WARNING: Modifications to the returned slice will modify the array.
func (a *Array[T]) Data() []T {
	return a.data
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (a *Array[T]) At(indices ...int) T {
	return a.data[a.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (a *Array[T]) Set(value T, indices ...int) {
	a.data[a.offset(indices)] = value
}

func (a *Array[T]) offset(indices []int) int {
	if len(indices) != len(a.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(a.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= a.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, a.shape[i]))
		}
		offset += idx * a.stride[i]
	}
	return offset
}

// Clone creates a deep copy of the array.
func (a *Array[T]) Clone() *Array[T] {
	clone := Zeros[T](a.shape, a.axes)
	copy(clone.data, a.data)
	return clone
}

// Equal reports whether two arrays have identical axes, shape and data.
func (a *Array[T]) Equal(other *Array[T]) bool {
	if !a.axes.Equal(other.axes) || !a.shape.Equal(other.shape) {
		return false
	}
	for i := range a.data {
		if a.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// Region copies the window's selection out of the array. The result
// keeps the same axis labels with the window's extents.
func (a *Array[T]) Region(w Window) (*Array[T], error) {
	starts, stops, err := w.resolve(a.axes, a.shape)
	if err != nil {
		return nil, err
	}

	outShape := make(Shape, len(a.shape))
	for d := range outShape {
		outShape[d] = stops[d] - starts[d]
	}
	if err := outShape.Validate(); err != nil {
		return nil, fmt.Errorf("empty window %v", w)
	}

	out := Zeros[T](outShape, a.axes)
	coords := make([]int, len(outShape))
	for i := range out.data {
		src := 0
		for d := range coords {
			src += (starts[d] + coords[d]) * a.stride[d]
		}
		out.data[i] = a.data[src]
		increment(coords, outShape)
	}
	return out, nil
}

// SetRegion writes src into the window's selection of the array. The
// window's extents must match src's shape exactly.
func (a *Array[T]) SetRegion(w Window, src *Array[T]) error {
	starts, stops, err := w.resolve(a.axes, a.shape)
	if err != nil {
		return err
	}
	if !a.axes.Equal(src.axes) {
		return fmt.Errorf("axes mismatch: %q vs %q", a.axes, src.axes)
	}
	for d := range a.shape {
		if stops[d]-starts[d] != src.shape[d] {
			return fmt.Errorf("window extent %d does not match source extent %d on axis %q",
				stops[d]-starts[d], src.shape[d], a.axes[d])
		}
	}

	coords := make([]int, len(src.shape))
	for i := range src.data {
		dst := 0
		for d := range coords {
			dst += (starts[d] + coords[d]) * a.stride[d]
		}
		a.data[dst] = src.data[i]
		increment(coords, src.shape)
	}
	return nil
}

// Transpose returns a copy of the array with its dimensions reordered
// to the given axis order. The order must be a permutation of the
// array's axes.
func (a *Array[T]) Transpose(order Axes) (*Array[T], error) {
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transpose order: %w", err)
	}
	if len(order) != len(a.axes) {
		return nil, fmt.Errorf("transpose order %q does not cover axes %q", order, a.axes)
	}
	perm := make([]int, len(order))
	for i, ax := range order {
		d := a.axes.Index(ax)
		if d < 0 {
			return nil, fmt.Errorf("transpose order %q names axis %q not present in %q", order, ax, a.axes)
		}
		perm[i] = d
	}

	outShape := make(Shape, len(order))
	for i, d := range perm {
		outShape[i] = a.shape[d]
	}
	out := Zeros[T](outShape, order)
	coords := make([]int, len(outShape))
	for i := range out.data {
		src := 0
		for d, c := range coords {
			src += c * a.stride[perm[d]]
		}
		out.data[i] = a.data[src]
		increment(coords, outShape)
	}
	return out, nil
}

// String returns a human-readable representation of the array.
func (a *Array[T]) String() string {
	return fmt.Sprintf("Array[%q]%v", a.axes, a.shape)
}

// increment advances row-major coordinates by one position, with the
// last dimension varying fastest.
func increment(coords []int, shape Shape) {
	for d := len(coords) - 1; d >= 0; d-- {
		coords[d]++
		if coords[d] < shape[d] {
			return
		}
		coords[d] = 0
	}
}
