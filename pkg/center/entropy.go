// Package center estimates the optimal rotation center for tomographic
// reconstruction. The cost of a candidate center is the Shannon entropy of
// the smoothed reconstruction's intensity histogram; the optimum center is
// the one producing the minimum image entropy, found with a derivative-free
// Nelder-Mead search.
package center

import (
	"math"

	"github.com/pkg/errors"

	"tomopre/pkg/recon"
	"tomopre/pkg/tomo"
)

// histBins is the number of histogram bins used by the entropy estimate.
const histBins = 64

// histEpsilon keeps empty bins away from the log singularity.
const histEpsilon = 1e-12

// Cost reconstructs the given slice at the candidate center and returns the
// Shannon entropy of its intensity histogram over [histMin, histMax].
// Only that one slice is reconstructed: the search evaluates this many
// times, and a full-stack reconstruction per candidate would dominate the
// runtime. The image is Gaussian-smoothed with filterSigma beforehand so
// high-frequency noise does not bias the estimate. Minimizing the returned
// value minimizes image entropy.
func Cost(op recon.Operator, stack *tomo.Stack, sliceIdx int, candidate, histMin, histMax, filterSigma float64) (float64, error) {
	if histMax <= histMin {
		return 0, errors.Wrapf(tomo.ErrNumericDegenerate,
			"histogram range [%g, %g] collapses all bins", histMin, histMax)
	}

	img, err := op.Reconstruct(stack, sliceIdx, candidate)
	if err != nil {
		return 0, err
	}
	if filterSigma > 0 {
		gaussianSmooth(img, filterSigma)
	}

	// Values outside the range do not count toward any bin, but the
	// probabilities are still normalized by the total pixel count.
	hist := make([]float64, histBins)
	width := (histMax - histMin) / histBins
	for _, v := range img.Data {
		if v < histMin || v > histMax {
			continue
		}
		bin := int((v - histMin) / width)
		if bin >= histBins {
			bin = histBins - 1
		}
		hist[bin]++
	}

	total := float64(len(img.Data))
	entropy := 0.0
	for _, count := range hist {
		p := count/total + histEpsilon
		entropy -= p * math.Log2(p)
	}
	return entropy, nil
}

// gaussianSmooth applies an isotropic Gaussian filter of the given standard
// deviation to img in place. The kernel is truncated at four standard
// deviations and boundaries are mirror-reflected.
func gaussianSmooth(img *recon.Image, sigma float64) {
	radius := int(4*sigma + 0.5)
	if radius < 1 {
		return
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	// Separable passes: rows, then columns.
	tmp := make([]float64, len(img.Data))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			acc := 0.0
			for k, kv := range kernel {
				acc += kv * img.Data[y*img.Width+reflect(x+k-radius, img.Width)]
			}
			tmp[y*img.Width+x] = acc
		}
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			acc := 0.0
			for k, kv := range kernel {
				acc += kv * tmp[reflect(y+k-radius, img.Height)*img.Width+x]
			}
			img.Data[y*img.Width+x] = acc
		}
	}
}

// reflect mirrors an out-of-range index back into [0, n).
func reflect(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - 1 - i
		}
	}
	return i
}
