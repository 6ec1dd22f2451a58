package predict

import (
	"fmt"

	"github.com/mosaic-ml/mosaic/internal/array"
	"github.com/mosaic-ml/mosaic/internal/pad"
)

// WithPadding pads the input to satisfy the predictor's shape
// constraints, invokes it, and crops every output that shares the
// input's axis labels back to the original extent. Input and output are
// assumed to have identical spatial shapes; padding with multiple
// distinct inputs is out of scope.
//
// A non-empty padding spec is mandatory on this path.
func WithPadding[T array.Scalar](fn Func[T], inputs []*array.Array[T], spec pad.Spec, padRight map[array.Axis]bool) ([]*array.Array[T], error) {
	if spec.Empty() {
		return nil, fmt.Errorf("%w: padded prediction requires a padding spec", ErrPadding)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("%w: padding with %d inputs", ErrUnsupported, len(inputs))
	}

	input := inputs[0]
	padded, crop, err := pad.Pad(input, spec, padRight)
	if err != nil {
		return nil, err
	}

	outputs, err := fn([]*array.Array[T]{padded})
	if err != nil {
		return nil, err
	}

	cropped := make([]*array.Array[T], len(outputs))
	for i, out := range outputs {
		if !out.Axes().Equal(input.Axes()) {
			// An output over different axes never saw the padding.
			cropped[i] = out
			continue
		}
		c, err := out.Region(crop)
		if err != nil {
			return nil, fmt.Errorf("%w: cropping output %d: %v", ErrShapeMismatch, i, err)
		}
		cropped[i] = c
	}
	return cropped, nil
}
