// Copyright 2025 The Mosaic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package array provides the public API for the axis-labeled arrays
// consumed and produced by the Mosaic prediction engine.
//
// # Overview
//
// An Array couples a contiguous row-major buffer with a shape and one
// axis label per dimension. The label set is closed: batch (b),
// channel (c) and the spatial axes x, y, z. Only spatial axes
// participate in tiling and padding.
//
// # Basic Usage
//
//	import "github.com/mosaic-ml/mosaic/array"
//
//	a, err := array.New[float32](array.Shape{1, 1, 512, 512}, array.MustAxes("bcyx"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a.Set(1.0, 0, 0, 256, 256)
//
// # Windows
//
// A Window selects a rectangular region, one half-open Range per axis.
// Ranges follow the engine's slice convention: a non-positive Stop
// counts from the end of the axis, so the zero Range spans everything.
//
//	region, err := a.Region(array.Window{
//	    array.Y: array.Range{Start: 0, Stop: 256},
//	    array.X: array.Range{Start: 128, Stop: 384},
//	})
package array

import "github.com/mosaic-ml/mosaic/internal/array"

// Scalar is a constraint for supported array element types.
type Scalar = array.Scalar

// Axis labels one dimension of a labeled array.
type Axis = array.Axis

// The closed set of supported axis labels.
const (
	Batch   Axis = array.Batch
	Channel Axis = array.Channel
	X       Axis = array.X
	Y       Axis = array.Y
	Z       Axis = array.Z
)

// Axes is an ordered list of axis labels, one per array dimension.
type Axes = array.Axes

// Shape represents the dimensions of an array.
// Example: Shape{1, 1, 512, 512} for a single-channel 2-D image.
type Shape = array.Shape

// Range is a half-open [Start, Stop) index range along one axis.
type Range = array.Range

// Window selects a rectangular region of a labeled array.
type Window = array.Window

// ShapeSpec is a declarative tensor shape: fixed extents or a min+step
// family.
type ShapeSpec = array.ShapeSpec

// ShapeKind discriminates fixed and parametrized shape declarations.
type ShapeKind = array.ShapeKind

// Shape declaration kinds.
const (
	FixedShape        ShapeKind = array.FixedShape
	ParametrizedShape ShapeKind = array.ParametrizedShape
)
