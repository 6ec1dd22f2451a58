// Copyright 2025 The Mosaic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package array

import "github.com/mosaic-ml/mosaic/internal/array"

// Array is an axis-labeled multi-dimensional array with a contiguous
// row-major buffer.
//
// T is the element type (float32, float64, int32, int64, uint8).
//
// Example:
//
//	a, err := array.New[float32](array.Shape{1, 1, 512, 512}, array.MustAxes("bcyx"))
type Array[T Scalar] = array.Array[T]

// Creation functions

// New creates a zero-filled array with the given shape and axis labels.
func New[T Scalar](shape Shape, axes Axes) (*Array[T], error) {
	return array.New[T](shape, axes)
}

// Zeros creates a zero-filled array, panicking on invalid arguments.
func Zeros[T Scalar](shape Shape, axes Axes) *Array[T] {
	return array.Zeros[T](shape, axes)
}

// FromSlice creates an array from a Go slice. The slice is copied.
func FromSlice[T Scalar](data []T, shape Shape, axes Axes) (*Array[T], error) {
	return array.FromSlice(data, shape, axes)
}

// ParseAxes parses an axis string such as "bcyx" into an Axes list.
func ParseAxes(s string) (Axes, error) {
	return array.ParseAxes(s)
}

// MustAxes parses an axis string, panicking on invalid input.
func MustAxes(s string) Axes {
	return array.MustAxes(s)
}

// NewFixedShape declares a fixed shape from explicit extents.
func NewFixedShape(extents Shape) ShapeSpec {
	return array.NewFixedShape(extents)
}

// NewParametrizedShape declares a min+step shape family.
func NewParametrizedShape(min, step Shape) ShapeSpec {
	return array.NewParametrizedShape(min, step)
}
