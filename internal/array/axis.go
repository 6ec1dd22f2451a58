// Package array provides axis-labeled multi-dimensional arrays for the
// Mosaic prediction engine.
package array

import "fmt"

// Axis labels one dimension of a labeled array.
type Axis byte

// The closed set of supported axis labels.
const (
	Batch   Axis = 'b'
	Channel Axis = 'c'
	X       Axis = 'x'
	Y       Axis = 'y'
	Z       Axis = 'z'
)

// Spatial reports whether the axis is a spatial axis (x, y or z).
// Only spatial axes participate in tiling and padding.
func (a Axis) Spatial() bool {
	return a == X || a == Y || a == Z
}

// String returns the single-letter axis label.
func (a Axis) String() string {
	return string(rune(a))
}

func (a Axis) valid() bool {
	switch a {
	case Batch, Channel, X, Y, Z:
		return true
	default:
		return false
	}
}

// Axes is an ordered list of axis labels, one per array dimension.
type Axes []Axis

// ParseAxes parses an axis string such as "bcyx" into an Axes list.
// Unknown letters and duplicates are rejected.
func ParseAxes(s string) (Axes, error) {
	axes := make(Axes, 0, len(s))
	for _, r := range s {
		axes = append(axes, Axis(r))
	}
	if err := axes.Validate(); err != nil {
		return nil, err
	}
	return axes, nil
}

// Validate checks that every label is known and appears at most once.
func (as Axes) Validate() error {
	seen := map[Axis]bool{}
	for i, a := range as {
		if !a.valid() {
			return fmt.Errorf("unknown axis %q at position %d", a, i)
		}
		if seen[a] {
			return fmt.Errorf("duplicate axis %q", a)
		}
		seen[a] = true
	}
	return nil
}

// String returns the axes as a compact label string, e.g. "bcyx".
func (as Axes) String() string {
	b := make([]byte, len(as))
	for i, a := range as {
		b[i] = byte(a)
	}
	return string(b)
}

// Index returns the dimension index of the given axis, or -1 if absent.
func (as Axes) Index(a Axis) int {
	for i, ax := range as {
		if ax == a {
			return i
		}
	}
	return -1
}

// Contains reports whether the axis is present.
func (as Axes) Contains(a Axis) bool {
	return as.Index(a) >= 0
}

// Spatial returns the spatial axes in their order of appearance.
func (as Axes) Spatial() Axes {
	spatial := make(Axes, 0, 3)
	for _, a := range as {
		if a.Spatial() {
			spatial = append(spatial, a)
		}
	}
	return spatial
}

// Equal checks if two axis lists are identical.
func (as Axes) Equal(other Axes) bool {
	if len(as) != len(other) {
		return false
	}
	for i := range as {
		if as[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the axis list.
func (as Axes) Clone() Axes {
	clone := make(Axes, len(as))
	copy(clone, as)
	return clone
}
