package array

import "fmt"

// ShapeKind discriminates the two forms a declared tensor shape can take.
type ShapeKind int

// Supported shape declarations.
const (
	// FixedShape is an explicit list of per-axis extents.
	FixedShape ShapeKind = iota
	// ParametrizedShape is a family of valid extents min + k*step per
	// axis, k >= 0. A step of 0 pins that axis to min.
	ParametrizedShape
)

// String returns a human-readable name for the shape kind.
func (k ShapeKind) String() string {
	switch k {
	case FixedShape:
		return "fixed"
	case ParametrizedShape:
		return "parametrized"
	default:
		return "unknown"
	}
}

// ShapeSpec is a declarative tensor shape: either a fixed extent list or
// a min+step parametrization. It is plain configuration consumed by the
// shape resolver; it carries no behavior beyond lookup and validation.
type ShapeSpec struct {
	Kind    ShapeKind
	Extents Shape // FixedShape only
	Min     Shape // ParametrizedShape only
	Step    Shape // ParametrizedShape only
}

// NewFixedShape declares a fixed shape from explicit extents.
func NewFixedShape(extents Shape) ShapeSpec {
	return ShapeSpec{Kind: FixedShape, Extents: extents}
}

// NewParametrizedShape declares a min+step shape family.
func NewParametrizedShape(min, step Shape) ShapeSpec {
	return ShapeSpec{Kind: ParametrizedShape, Min: min, Step: step}
}

// Rank returns the number of declared dimensions.
func (s ShapeSpec) Rank() int {
	switch s.Kind {
	case FixedShape:
		return len(s.Extents)
	case ParametrizedShape:
		return len(s.Min)
	default:
		return 0
	}
}

// Validate checks the declaration against the axis list it describes.
func (s ShapeSpec) Validate(axes Axes) error {
	switch s.Kind {
	case FixedShape:
		if len(s.Extents) != len(axes) {
			return fmt.Errorf("fixed shape has %d extents for %d axes %q", len(s.Extents), len(axes), axes)
		}
		return s.Extents.Validate()
	case ParametrizedShape:
		if len(s.Min) != len(axes) {
			return fmt.Errorf("parametrized shape has %d min entries for %d axes %q", len(s.Min), len(axes), axes)
		}
		if len(s.Step) != len(axes) {
			return fmt.Errorf("parametrized shape has %d step entries for %d axes %q", len(s.Step), len(axes), axes)
		}
		if err := s.Min.Validate(); err != nil {
			return fmt.Errorf("invalid min shape: %w", err)
		}
		for i, st := range s.Step {
			if st < 0 {
				return fmt.Errorf("negative step %d for axis %q", st, axes[i])
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown shape kind %d", s.Kind)
	}
}
