package array

import "fmt"

// Range is a half-open [Start, Stop) index range along one axis.
//
// A non-positive Stop is interpreted relative to the axis extent:
// Stop == 0 means "to the end of the axis" and Stop == -n means
// "n elements before the end". The zero value Range{} therefore spans
// the whole axis. This mirrors how tile windows address boundary tiles
// whose trailing edge coincides with the array edge.
type Range struct {
	Start int
	Stop  int
}

// Resolve turns the range into absolute [start, stop) bounds for an
// axis of the given extent.
func (r Range) Resolve(extent int) (start, stop int) {
	start = r.Start
	stop = r.Stop
	if stop <= 0 {
		stop = extent + stop
	}
	return start, stop
}

// Len returns the number of elements selected from an axis of the
// given extent.
func (r Range) Len(extent int) int {
	start, stop := r.Resolve(extent)
	return stop - start
}

// String returns the range in slice notation.
func (r Range) String() string {
	if r.Stop == 0 {
		return fmt.Sprintf("[%d:]", r.Start)
	}
	return fmt.Sprintf("[%d:%d]", r.Start, r.Stop)
}

// Window selects a rectangular region of a labeled array, one Range per
// axis. Axes not present in the window select their full extent.
type Window map[Axis]Range

// Get returns the range for the given axis, defaulting to the full span.
func (w Window) Get(a Axis) Range {
	if w == nil {
		return Range{}
	}
	return w[a]
}

// resolve computes absolute per-dimension bounds for an array with the
// given axes and shape. It fails if any range falls outside the array.
func (w Window) resolve(axes Axes, shape Shape) (starts, stops []int, err error) {
	starts = make([]int, len(axes))
	stops = make([]int, len(axes))
	for d, a := range axes {
		start, stop := w.Get(a).Resolve(shape[d])
		if start < 0 || stop > shape[d] || start > stop {
			return nil, nil, fmt.Errorf("window %v out of bounds for axis %q with extent %d", w.Get(a), a, shape[d])
		}
		starts[d] = start
		stops[d] = stop
	}
	return starts, stops, nil
}
