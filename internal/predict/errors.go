package predict

import (
	"errors"

	"github.com/mosaic-ml/mosaic/internal/pad"
)

// Error taxonomy for prediction orchestration. All errors surface
// synchronously at the point of detection and are never retried
// internally; match them with errors.Is.
var (
	// ErrConfig marks contradictory or incomplete configuration, such
	// as requesting padding and tiling together, or automatic tiling
	// without a declared halo.
	ErrConfig = errors.New("invalid prediction config")

	// ErrShapeMismatch marks a caller-supplied buffer or input set
	// whose shape disagrees with what the configuration requires.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUnsupported marks requests that are explicitly out of scope,
	// such as tiling with multiple inputs or outputs.
	ErrUnsupported = errors.New("unsupported")

	// ErrPadding marks invalid or impossible padding requests, for
	// example a fixed target smaller than the array extent.
	ErrPadding = pad.ErrPadding
)
