// Package rings suppresses ring artifacts in normalized projection stacks.
//
// Rings originate in non-uniform detector response: a miscalibrated pixel
// contributes the same offset to every projection, which shows up in a
// sinogram as a vertical stripe and in the reconstruction as a ring. The
// filter decomposes each slice with a multi-level 2-D wavelet transform,
// damps the near-zero frequencies of every vertical-detail sub-band in
// Fourier space, and reconstructs the slice from the damped pyramid.
//
// Reference: Muench et al., Optics Express 17(10), 8567-8591 (2009).
package rings

import (
	"io"
	"math"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"tomopre/internal/fftutil"
	"tomopre/pkg/tomo"
	"tomopre/pkg/wavelet"
)

// Options configure the ring filter.
type Options struct {
	// Level is the number of wavelet decomposition levels.
	Level int

	// Wavelet names the filter bank, e.g. "db10".
	Wavelet string

	// Sigma is the damping parameter in Fourier space. Stripe energy at
	// frequency k is attenuated by 1 - exp(-k^2/(2 sigma^2)).
	Sigma float64

	// Workers caps the number of slices filtered concurrently.
	// Zero means one worker per CPU.
	Workers int

	// Logger receives progress output. Nil disables logging.
	Logger *log.Logger
}

// DefaultOptions returns the filter configuration used by the standard
// preprocessing pipeline.
func DefaultOptions() Options {
	return Options{Level: 6, Wavelet: "db10", Sigma: 2}
}

// pyramid is the coefficient stack of one slice: detail bands finest-first
// plus the coarsest approximation.
type pyramid struct {
	h, v, d []*wavelet.Band
	approx  *wavelet.Band
}

// Remove filters every slice of the stack in place. The stack shape is
// unchanged. Slices are independent, so they are fanned out across workers;
// each worker owns its slice copy until it is written back.
func Remove(stack *tomo.Stack, opts Options) error {
	if opts.Sigma <= 0 {
		return errors.Wrapf(tomo.ErrInvalidParameter, "damping sigma must be positive, got %g", opts.Sigma)
	}
	w, err := wavelet.New(opts.Wavelet)
	if err != nil {
		return err
	}
	if opts.Level < 1 {
		return errors.Wrapf(tomo.ErrInvalidParameter, "decomposition level must be positive, got %d", opts.Level)
	}
	if max := wavelet.MaxLevel(stack.Projections, stack.Pixels); opts.Level > max {
		return errors.Wrapf(tomo.ErrDecompositionTooDeep,
			"level %d not supported by %dx%d slices (max %d)",
			opts.Level, stack.Projections, stack.Pixels, max)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > stack.Slices {
		workers = stack.Slices
	}

	logger.Info("removing rings", "slices", stack.Slices, "level", opts.Level,
		"wavelet", opts.Wavelet, "sigma", opts.Sigma)

	indices := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range indices {
				im := &wavelet.Band{
					Rows: stack.Projections,
					Cols: stack.Pixels,
					Data: stack.Sinogram(s),
				}
				filtered := filterSlice(w, im, opts.Level, opts.Sigma)
				stack.SetSinogram(s, filtered.Data)
				logger.Debug("slice filtered", "slice", s)
			}
		}()
	}
	for s := 0; s < stack.Slices; s++ {
		indices <- s
	}
	close(indices)
	wg.Wait()
	return nil
}

// filterSlice runs the decompose/damp/reconstruct state machine on a single
// slice and returns a new band of the same shape.
func filterSlice(w *wavelet.Wavelet, im *wavelet.Band, level int, sigma float64) *wavelet.Band {
	// Decompose: each level transforms the previous approximation and
	// collects the detail bands, finest first.
	pyr := pyramid{approx: im}
	for lev := 0; lev < level; lev++ {
		a, h, v, d := w.Decompose2D(pyr.approx)
		pyr.approx = a
		pyr.h = append(pyr.h, h)
		pyr.v = append(pyr.v, v)
		pyr.d = append(pyr.d, d)
	}

	// Damp: stripe energy is concentrated near zero frequency along the
	// projection axis of every vertical-detail band.
	for lev := 0; lev < level; lev++ {
		dampBand(pyr.v[lev], sigma)
	}

	// Reconstruct coarsest-first, cropping the running approximation to
	// the current level's band shape before each inverse transform.
	nim := pyr.approx
	for lev := level - 1; lev >= 0; lev-- {
		nim = nim.Crop(pyr.h[lev].Rows, pyr.h[lev].Cols)
		nim = w.Reconstruct2D(nim, pyr.h[lev], pyr.v[lev], pyr.d[lev])
	}
	return nim.Crop(im.Rows, im.Cols)
}

// dampBand attenuates the low vertical frequencies of one vertical-detail
// band in place: FFT along the projection axis, shift, multiply every
// column by the damping profile, unshift, inverse FFT, keep the real part.
func dampBand(v *wavelet.Band, sigma float64) {
	damp := DampingProfile(v.Rows, sigma)
	col := make([]complex128, v.Rows)
	for c := 0; c < v.Cols; c++ {
		for r := 0; r < v.Rows; r++ {
			col[r] = complex(v.Data[r*v.Cols+c], 0)
		}
		fftutil.Forward(col)
		fftutil.Shift(col)
		for r := range col {
			col[r] *= complex(damp[r], 0)
		}
		fftutil.Unshift(col)
		fftutil.Inverse(col)
		for r := 0; r < v.Rows; r++ {
			v.Data[r*v.Cols+c] = real(col[r])
		}
	}
}

// DampingProfile returns the length-n attenuation curve applied to a
// shifted spectrum: 1 - exp(-k^2/(2 sigma^2)) over the centered frequency
// index k. The zero-frequency bin (index n/2 after shifting) is fully
// suppressed and the attenuation approaches 1 as |k| grows.
func DampingProfile(n int, sigma float64) []float64 {
	damp := make([]float64, n)
	for i := range damp {
		k := float64(i - n/2)
		damp[i] = 1 - math.Exp(-k*k/(2*sigma*sigma))
	}
	return damp
}
