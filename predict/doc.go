// Copyright 2025 The Mosaic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package predict provides the public API of the Mosaic prediction
// engine: running an arbitrary, size-limited predict operation over
// arrays larger than the operation supports.
//
// # Overview
//
// A predictor is any function from labeled arrays to labeled arrays.
// When an input exceeds the predictor's supported size, the engine
// either pads the whole input up to a valid shape and crops the result
// (WithPadding), or decomposes it into overlapping tiles, predicts
// each tile independently and stitches the results seamlessly
// (WithTiling). The halo margin around each tile supplies the context
// the predictor needs near tile edges and is discarded before
// stitching, so tile boundaries leave no artifacts.
//
// # Basic Usage
//
//	import (
//	    "github.com/mosaic-ml/mosaic/array"
//	    "github.com/mosaic-ml/mosaic/predict"
//	)
//
//	input, _ := array.New[float32](array.Shape{1, 1, 2048, 2048}, array.MustAxes("bcyx"))
//
//	out, err := predict.WithTiling(model.Predict, input, predict.Tiling{
//	    Tile: predict.TileSpec{array.Y: 256, array.X: 256},
//	    Halo: predict.Halo{array.Y: 32, array.X: 32},
//	}, nil)
//
// # Errors
//
// Errors are sentinels matched with errors.Is: ErrConfig for
// contradictory configuration, ErrPadding for impossible padding
// requests, ErrShapeMismatch for disagreeing buffers and
// ErrUnsupported for out-of-scope combinations such as multi-input
// tiling. All surface before or during the run; nothing is retried or
// silently downgraded.
package predict

import (
	"github.com/mosaic-ml/mosaic/internal/pad"
	"github.com/mosaic-ml/mosaic/internal/predict"
	"github.com/mosaic-ml/mosaic/internal/tile"
)

// Error sentinels of the prediction engine.
var (
	ErrConfig        = predict.ErrConfig
	ErrPadding       = predict.ErrPadding
	ErrShapeMismatch = predict.ErrShapeMismatch
	ErrUnsupported   = predict.ErrUnsupported
)

// PaddingMode selects the padding policy.
type PaddingMode = pad.Mode

// Supported padding modes.
const (
	// Dynamic pads each spatial axis up to the next multiple of its target.
	Dynamic PaddingMode = pad.Dynamic
	// Fixed pads each spatial axis to exactly its target extent.
	Fixed PaddingMode = pad.Fixed
)

// PaddingSpec configures padding: a mode and per-spatial-axis targets.
type PaddingSpec = pad.Spec

// TileSpec maps each spatial axis to its tile extent.
type TileSpec = tile.Spec

// Halo maps spatial axes to the margin read around each tile.
type Halo = tile.Halo

// Tile is one planned tile window triple.
type Tile = tile.Tile

// Planner produces deterministic, restartable tile sequences.
type Planner = tile.Planner

// Tiling configures the tiled prediction path.
type Tiling = predict.Tiling

// Option adjusts optional run behavior.
type Option = predict.Option
