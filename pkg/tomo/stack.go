// Package tomo provides the projection stack data model shared by the
// preprocessing stages, together with the elementwise stages that operate
// directly on it: white-field normalization and median filtering.
//
// A stack is a 3-D float64 array indexed [projection, slice, pixel] and
// stored flat in row-major order. Every preprocessing stage mutates the
// stack in place and agrees on this axis order: axis 1 is the slice
// dimension and axis 2 is the pixel (rotation) dimension.
package tomo

import (
	"math"

	"github.com/pkg/errors"
)

// Stack holds a stack of tomographic projections along with the reference
// frames and acquisition angles captured with them.
type Stack struct {
	// Data is the projection data as a flat array in row-major
	// [projection, slice, pixel] order.
	Data []float64

	// Projections, Slices and Pixels are the extents of the three axes.
	Projections int
	Slices      int
	Pixels      int

	// White holds zero or more white-field reference frames, each
	// Slices*Pixels values, concatenated. Used by Normalize.
	White []float64

	// Dark holds zero or more dark-field reference frames in the same
	// layout as White.
	Dark []float64

	// Angles are the acquisition angles in radians, one per projection.
	// When nil, consumers assume a uniform sweep over [0, pi).
	Angles []float64
}

// NewStack allocates a zero-filled stack with the given extents.
func NewStack(projections, slices, pixels int) (*Stack, error) {
	if projections < 1 || slices < 1 || pixels < 1 {
		return nil, errors.Wrapf(ErrInvalidParameter,
			"stack extents must be positive, got %dx%dx%d", projections, slices, pixels)
	}
	return &Stack{
		Data:        make([]float64, projections*slices*pixels),
		Projections: projections,
		Slices:      slices,
		Pixels:      pixels,
	}, nil
}

// At returns the value at [projection p, slice s, pixel x].
func (st *Stack) At(p, s, x int) float64 {
	return st.Data[(p*st.Slices+s)*st.Pixels+x]
}

// Set stores v at [projection p, slice s, pixel x].
func (st *Stack) Set(p, s, x int, v float64) {
	st.Data[(p*st.Slices+s)*st.Pixels+x] = v
}

// DefaultCenter returns the default rotation center, half the pixel-axis
// extent.
func (st *Stack) DefaultCenter() float64 {
	return float64(st.Pixels) / 2
}

// Angle returns the acquisition angle of projection p, falling back to a
// uniform sweep over [0, pi) when no angles were recorded.
func (st *Stack) Angle(p int) float64 {
	if st.Angles != nil {
		return st.Angles[p]
	}
	return math.Pi * float64(p) / float64(st.Projections)
}

// Sinogram copies slice s into a Projections x Pixels row-major matrix.
func (st *Stack) Sinogram(s int) []float64 {
	out := make([]float64, st.Projections*st.Pixels)
	for p := 0; p < st.Projections; p++ {
		row := st.Data[(p*st.Slices+s)*st.Pixels : (p*st.Slices+s+1)*st.Pixels]
		copy(out[p*st.Pixels:], row)
	}
	return out
}

// SetSinogram writes a Projections x Pixels matrix back into slice s.
func (st *Stack) SetSinogram(s int, sino []float64) {
	for p := 0; p < st.Projections; p++ {
		copy(st.Data[(p*st.Slices+s)*st.Pixels:(p*st.Slices+s+1)*st.Pixels],
			sino[p*st.Pixels:(p+1)*st.Pixels])
	}
}
