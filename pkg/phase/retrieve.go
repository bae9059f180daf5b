// Package phase performs single-distance Fresnel phase retrieval on
// flat-field corrected projection stacks. Each projection is filtered in
// frequency space with a deterministic Fresnel kernel; the filter is not
// iterative or adaptive.
package phase

import (
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"tomopre/internal/fftutil"
	"tomopre/pkg/tomo"
)

// Physical constants in the keV/cm unit system used by the kernel.
const (
	planckConstant = 6.58211928e-19 // keV*s
	speedOfLight   = 2.99792458e10  // cm/s
)

// Options configure phase retrieval.
type Options struct {
	// PixelSize is the detector pixel size in cm.
	PixelSize float64

	// Dist is the propagation distance of the x-rays in cm.
	Dist float64

	// Energy is the x-ray energy in keV.
	Energy float64

	// Alpha is the regularization parameter of the Fresnel kernel.
	Alpha float64

	// Logger receives progress output. Nil disables logging.
	Logger *log.Logger
}

// Retrieve replaces each projection of the stack with its retrieved phase,
// in place. The projection is inverted to 1-data, filtered with the Fresnel
// kernel H = 1/(2 pi lambda dist w^2 + alpha) on the centered frequency
// grid, and inverted back.
func Retrieve(stack *tomo.Stack, opts Options) error {
	if opts.PixelSize <= 0 || opts.Dist <= 0 || opts.Energy <= 0 {
		return errors.Wrapf(tomo.ErrInvalidParameter,
			"pixel size, distance and energy must be positive, got %g, %g, %g",
			opts.PixelSize, opts.Dist, opts.Energy)
	}
	if stack.Slices < 2 || stack.Pixels < 2 {
		return errors.Wrapf(tomo.ErrInvalidParameter,
			"phase retrieval needs at least 2x2 projections, got %dx%d", stack.Slices, stack.Pixels)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	wavelength := 2 * math.Pi * planckConstant * speedOfLight / opts.Energy
	kernel := fresnelKernel(stack.Slices, stack.Pixels, opts.PixelSize, opts.Dist, wavelength, opts.Alpha)
	logger.Info("retrieving phase", "projections", stack.Projections,
		"wavelength", wavelength, "dist", opts.Dist, "alpha", opts.Alpha)

	rows, cols := stack.Slices, stack.Pixels
	buf := make([]complex128, rows*cols)
	for p := 0; p < stack.Projections; p++ {
		plane := stack.Data[p*rows*cols : (p+1)*rows*cols]
		for i, v := range plane {
			buf[i] = complex(1-v, 0)
		}

		fftutil.Forward2D(buf, rows, cols)
		fftutil.Shift2D(buf, rows, cols)
		for i := range buf {
			buf[i] *= complex(kernel[i], 0)
		}
		fftutil.Unshift2D(buf, rows, cols)
		fftutil.Inverse2D(buf, rows, cols)

		for i := range plane {
			plane[i] = 1 - real(buf[i])
		}
	}
	return nil
}

// fresnelKernel samples the regularized Fresnel filter over the centered
// reciprocal-space grid of a rows x cols projection.
func fresnelKernel(rows, cols int, pixelSize, dist, wavelength, alpha float64) []float64 {
	indRow := reciprocalAxis(rows, pixelSize)
	indCol := reciprocalAxis(cols, pixelSize)

	kernel := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			w2 := indRow[r]*indRow[r] + indCol[c]*indCol[c]
			kernel[r*cols+c] = 1 / (2*math.Pi*wavelength*dist*w2 + alpha)
		}
	}
	return kernel
}

// reciprocalAxis returns the centered spatial-frequency samples of an axis
// with n detector pixels.
func reciprocalAxis(n int, pixelSize float64) []float64 {
	step := 2 * math.Pi / (float64(n-1) * pixelSize)
	axis := make([]float64, n)
	for i := range axis {
		axis[i] = step * (float64(i) - float64(n-1)/2)
	}
	return axis
}
