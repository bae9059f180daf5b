// Package recon defines the reconstruction operator consumed by the center
// search, together with a deterministic filtered back projection reference
// implementation. The preprocessing stages treat reconstruction as a black
// box: anything satisfying Operator can drive the center search.
package recon

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"

	"tomopre/pkg/tomo"
)

// Image is a reconstructed 2-D slice in row-major order.
type Image struct {
	Width, Height int
	Data          []float64
}

// MinMax returns the smallest and largest pixel values.
func (im *Image) MinMax() (min, max float64) {
	min, max = im.Data[0], im.Data[0]
	for _, v := range im.Data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Operator reconstructs a single slice of a projection stack. Implementations
// must be deterministic and pure with respect to their explicit inputs; the
// candidate rotation center is always passed as an argument, never read from
// shared state.
type Operator interface {
	Reconstruct(stack *tomo.Stack, sliceIdx int, center float64) (*Image, error)
}

// FBP is a ramp-filtered back projection operator. The output is a square
// Pixels x Pixels image. It is a reference implementation meant for center
// optimization and testing rather than production reconstruction quality.
type FBP struct{}

// NewFBP returns a filtered back projection operator.
func NewFBP() *FBP {
	return &FBP{}
}

// Reconstruct filters each projection row of the selected slice with a ramp
// filter and back-projects the rows over the stack's acquisition angles,
// rotating about the given center.
func (f *FBP) Reconstruct(stack *tomo.Stack, sliceIdx int, center float64) (*Image, error) {
	if sliceIdx < 0 || sliceIdx >= stack.Slices {
		return nil, errors.Wrapf(tomo.ErrInvalidParameter,
			"slice index %d out of range [0, %d)", sliceIdx, stack.Slices)
	}
	if math.IsNaN(center) || math.IsInf(center, 0) {
		return nil, errors.Wrapf(tomo.ErrInvalidParameter, "center must be finite, got %g", center)
	}

	n := stack.Pixels
	sino := stack.Sinogram(sliceIdx)
	filterSinogram(sino, stack.Projections, n)

	out := &Image{Width: n, Height: n, Data: make([]float64, n*n)}
	half := float64(n-1) / 2
	scale := math.Pi / float64(stack.Projections)
	for p := 0; p < stack.Projections; p++ {
		sin, cos := math.Sincos(stack.Angle(p))
		row := sino[p*n : (p+1)*n]
		for i := 0; i < n; i++ {
			y := float64(i) - half
			for j := 0; j < n; j++ {
				x := float64(j) - half
				// Detector coordinate of this pixel at angle p,
				// offset by the rotation center.
				t := x*cos + y*sin + center
				ti := int(math.Floor(t))
				if ti < 0 || ti >= n-1 {
					continue
				}
				frac := t - float64(ti)
				out.Data[i*n+j] += scale * ((1-frac)*row[ti] + frac*row[ti+1])
			}
		}
	}
	return out, nil
}

// filterSinogram applies a ramp filter to every projection row in place.
func filterSinogram(sino []float64, projections, pixels int) {
	fft := fourier.NewFFT(pixels)
	coeff := make([]complex128, pixels/2+1)
	for p := 0; p < projections; p++ {
		row := sino[p*pixels : (p+1)*pixels]
		fft.Coefficients(coeff, row)
		for k := range coeff {
			coeff[k] *= complex(float64(k)/float64(pixels), 0)
		}
		fft.Sequence(row, coeff)
		// Sequence is unnormalized; fold the 1/n in here.
		for i := range row {
			row[i] /= float64(pixels)
		}
	}
}
