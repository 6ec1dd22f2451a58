// Package predict runs size-limited predict operations over arrays that
// may be larger than the operation supports, by padding whole inputs or
// by decomposing them into overlapping tiles and stitching the results.
//
// The predictor itself is an opaque collaborator: any function mapping
// labeled arrays to labeled arrays. The engine never inspects it beyond
// calling it, and never calls it concurrently within one run.
package predict

import (
	"fmt"
	"log/slog"

	"github.com/mosaic-ml/mosaic/internal/array"
	"github.com/mosaic-ml/mosaic/internal/pad"
)

// Func is the opaque prediction backend: a pure function from labeled
// input arrays to labeled output arrays. It must tolerate any concrete
// shape satisfying its declared spec and has no knowledge of padding
// or tiling.
type Func[T array.Scalar] func(inputs []*array.Array[T]) ([]*array.Array[T], error)

// Config selects how a prediction run handles inputs larger than the
// predictor supports. Padding and Tiling are mutually exclusive; with
// neither set the predictor is invoked directly.
type Config[T array.Scalar] struct {
	// Padding pads every input before the call and crops every output
	// after it.
	Padding *pad.Spec

	// PadRight selects the pad side per spatial axis for the padded
	// path. Nil pads on the right everywhere.
	PadRight map[array.Axis]bool

	// Tiling decomposes the single input into tiles and stitches the
	// per-tile results.
	Tiling *Tiling

	// Output is an optional pre-allocated output buffer for the tiled
	// path. When nil, a buffer matching the input is allocated.
	Output *array.Array[T]
}

// Run executes one prediction according to cfg. Requesting both padding
// and tiling is a configuration error, detected before any array is
// touched.
func Run[T array.Scalar](fn Func[T], inputs []*array.Array[T], cfg Config[T], opts ...Option) ([]*array.Array[T], error) {
	if cfg.Padding != nil && cfg.Tiling != nil {
		return nil, fmt.Errorf("%w: only one of padding or tiling is supported", ErrConfig)
	}

	switch {
	case cfg.Padding != nil:
		return WithPadding(fn, inputs, *cfg.Padding, cfg.PadRight)
	case cfg.Tiling != nil:
		if len(inputs) != 1 {
			return nil, fmt.Errorf("%w: tiling with %d inputs", ErrUnsupported, len(inputs))
		}
		out, err := WithTiling(fn, inputs[0], *cfg.Tiling, cfg.Output, opts...)
		if err != nil {
			return nil, err
		}
		return []*array.Array[T]{out}, nil
	default:
		return fn(inputs)
	}
}

// Option adjusts optional run behavior that is not part of the
// correctness contract.
type Option func(*options)

type options struct {
	progress func(done, total int)
	logger   *slog.Logger
}

// WithProgress reports tile completion counts while the tiled path
// runs.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) { o.progress = fn }
}

// WithLogger enables per-tile debug logging. The engine stays silent
// without it.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
