package tomo

import (
	"sort"

	"github.com/pkg/errors"
)

// Axis selects the plane orientation the median filter slides over.
type Axis int

const (
	// SlicePixel filters each slice-pixel plane, one per projection.
	SlicePixel Axis = iota
	// ProjectionPixel filters each projection-pixel plane, one per slice.
	ProjectionPixel
	// ProjectionSlice filters each projection-slice plane, one per pixel.
	ProjectionSlice
)

// ResolveAxis applies the degenerate-dimension policy: when one of the
// stack extents is 1, the only sensible plane orientation is the one that
// keeps both plane dimensions non-trivial, so the requested axis is
// overridden. Otherwise the request is honored.
func ResolveAxis(requested Axis, projections, slices, pixels int) Axis {
	switch {
	case projections == 1:
		return SlicePixel
	case slices == 1:
		return ProjectionPixel
	case pixels == 1:
		return ProjectionSlice
	}
	return requested
}

// MedianFilter applies a windowed median of the given size to every plane
// of the stack along the resolved axis, in place. The window size is
// (rows, cols) within the plane; borders are handled by clamping the window
// to the plane. The default preprocessing configuration uses a 1x3 window
// on projection-pixel planes, which knocks out zingers without smearing
// features across projections.
func (st *Stack) MedianFilter(axis Axis, sizeRows, sizeCols int) error {
	if sizeRows < 1 || sizeCols < 1 {
		return errors.Wrapf(ErrInvalidParameter,
			"median window must be at least 1x1, got %dx%d", sizeRows, sizeCols)
	}

	axis = ResolveAxis(axis, st.Projections, st.Slices, st.Pixels)

	switch axis {
	case SlicePixel:
		plane := make([]float64, st.Slices*st.Pixels)
		for p := 0; p < st.Projections; p++ {
			st.copyPlane(plane, axis, p, false)
			medianPlane(plane, st.Slices, st.Pixels, sizeRows, sizeCols)
			st.copyPlane(plane, axis, p, true)
		}
	case ProjectionPixel:
		plane := make([]float64, st.Projections*st.Pixels)
		for s := 0; s < st.Slices; s++ {
			st.copyPlane(plane, axis, s, false)
			medianPlane(plane, st.Projections, st.Pixels, sizeRows, sizeCols)
			st.copyPlane(plane, axis, s, true)
		}
	case ProjectionSlice:
		plane := make([]float64, st.Projections*st.Slices)
		for x := 0; x < st.Pixels; x++ {
			st.copyPlane(plane, axis, x, false)
			medianPlane(plane, st.Projections, st.Slices, sizeRows, sizeCols)
			st.copyPlane(plane, axis, x, true)
		}
	default:
		return errors.Wrapf(ErrInvalidParameter, "unknown median filter axis %d", axis)
	}
	return nil
}

// copyPlane moves the plane at index m along the given axis between the
// stack and a scratch buffer. writeBack selects the direction.
func (st *Stack) copyPlane(plane []float64, axis Axis, m int, writeBack bool) {
	i := 0
	switch axis {
	case SlicePixel:
		for s := 0; s < st.Slices; s++ {
			for x := 0; x < st.Pixels; x++ {
				if writeBack {
					st.Set(m, s, x, plane[i])
				} else {
					plane[i] = st.At(m, s, x)
				}
				i++
			}
		}
	case ProjectionPixel:
		for p := 0; p < st.Projections; p++ {
			for x := 0; x < st.Pixels; x++ {
				if writeBack {
					st.Set(p, m, x, plane[i])
				} else {
					plane[i] = st.At(p, m, x)
				}
				i++
			}
		}
	case ProjectionSlice:
		for p := 0; p < st.Projections; p++ {
			for s := 0; s < st.Slices; s++ {
				if writeBack {
					st.Set(p, s, m, plane[i])
				} else {
					plane[i] = st.At(p, s, m)
				}
				i++
			}
		}
	}
}

// medianPlane replaces every value of a rows x cols plane with the median
// of the window centered on it.
func medianPlane(plane []float64, rows, cols, sizeRows, sizeCols int) {
	src := make([]float64, len(plane))
	copy(src, plane)
	window := make([]float64, 0, sizeRows*sizeCols)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			r0, r1 := r-sizeRows/2, r+(sizeRows-1)/2
			c0, c1 := c-sizeCols/2, c+(sizeCols-1)/2
			if r0 < 0 {
				r0 = 0
			}
			if r1 >= rows {
				r1 = rows - 1
			}
			if c0 < 0 {
				c0 = 0
			}
			if c1 >= cols {
				c1 = cols - 1
			}

			window = window[:0]
			for wr := r0; wr <= r1; wr++ {
				for wc := c0; wc <= c1; wc++ {
					window = append(window, src[wr*cols+wc])
				}
			}
			plane[r*cols+c] = median(window)
		}
	}
}

// median returns the median of values. The slice is sorted in place.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	n := len(values)
	if n%2 == 0 {
		return (values[n/2-1] + values[n/2]) / 2
	}
	return values[n/2]
}
