// Package wavelet implements orthogonal discrete wavelet transforms for the
// Haar and Daubechies families. Transforms use periodized boundary handling,
// which keeps the analysis and synthesis passes exact adjoints of each other:
// a decomposition followed by a reconstruction reproduces the input up to
// floating-point tolerance once cropped to the original extent.
package wavelet

import (
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"tomopre/pkg/tomo"
)

// MaxOrder is the highest supported Daubechies order (db10, 20 taps).
const MaxOrder = 10

// Wavelet is an orthogonal two-channel filter bank. Lo is the scaling
// (lowpass) filter, Hi its quadrature mirror. The same bank serves both
// decomposition and reconstruction.
type Wavelet struct {
	Name string
	Lo   []float64
	Hi   []float64
}

// New returns the named wavelet. Recognized names are "haar" and "db1"
// through "db10".
func New(name string) (*Wavelet, error) {
	order := 0
	switch {
	case name == "haar":
		order = 1
	case strings.HasPrefix(name, "db"):
		n, err := strconv.Atoi(name[2:])
		if err != nil || n < 1 || n > MaxOrder {
			return nil, errors.Wrapf(tomo.ErrInvalidParameter, "unknown wavelet %q", name)
		}
		order = n
	default:
		return nil, errors.Wrapf(tomo.ErrInvalidParameter, "unknown wavelet %q", name)
	}

	lo := daubechies(order)
	hi := make([]float64, len(lo))
	for k := range hi {
		// Quadrature mirror of the scaling filter.
		hi[k] = lo[len(lo)-1-k]
		if k%2 == 1 {
			hi[k] = -hi[k]
		}
	}
	return &Wavelet{Name: name, Lo: lo, Hi: hi}, nil
}

// daubechies computes the 2p-tap scaling filter of the order-p Daubechies
// wavelet by spectral factorization of the Daubechies half-band polynomial:
// the roots of B(y) = sum C(p-1+k, k) y^k are mapped to the z-plane, the
// factor with all roots inside the unit circle is kept, and the result is
// scaled so the taps sum to sqrt(2).
func daubechies(p int) []float64 {
	if p == 1 {
		v := 1 / math.Sqrt2
		return []float64{v, v}
	}

	b := make([]float64, p)
	b[0] = 1
	for k := 1; k < p; k++ {
		b[k] = b[k-1] * float64(p-1+k) / float64(k)
	}

	// Each root y of B maps to a conjugate pair z, 1/z via
	// z + 1/z = 2 - 4y; the root inside the unit circle is kept.
	var inside []complex128
	for _, y := range polyRoots(b) {
		c := 2 - 4*y
		d := cmplx.Sqrt(c*c - 4)
		z := (c + d) / 2
		if cmplx.Abs(z) >= 1 {
			z = (c - d) / 2
		}
		inside = append(inside, z)
	}

	// h(z) = scale * (1+z)^p * prod(z - z_k).
	coeffs := []complex128{1}
	for i := 0; i < p; i++ {
		coeffs = polyMul(coeffs, []complex128{1, 1})
	}
	for _, z := range inside {
		coeffs = polyMul(coeffs, []complex128{-z, 1})
	}

	h := make([]float64, len(coeffs))
	sum := 0.0
	for i, c := range coeffs {
		h[i] = real(c)
		sum += h[i]
	}
	scale := math.Sqrt2 / sum
	for i := range h {
		h[i] *= scale
	}
	return h
}

// polyRoots returns the complex roots of the polynomial with coefficients
// c[0] + c[1] x + ... + c[n] x^n, as the eigenvalues of its companion
// matrix.
func polyRoots(c []float64) []complex128 {
	n := len(c) - 1
	a := mat.NewDense(n, n, nil)
	for i := 1; i < n; i++ {
		a.Set(i, i-1, 1)
	}
	for i := 0; i < n; i++ {
		a.Set(i, n-1, -c[i]/c[n])
	}

	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		// The companion matrices of the Daubechies polynomials up to
		// MaxOrder are small and well behaved; a factorization failure
		// here means memory corruption, not bad input.
		panic("wavelet: companion matrix eigendecomposition failed")
	}
	return eig.Values(nil)
}

// polyMul multiplies two polynomials given by their coefficient slices.
func polyMul(a, b []complex128) []complex128 {
	out := make([]complex128, len(a)+len(b)-1)
	for i, av := range a {
		for j, bv := range b {
			out[i+j] += av * bv
		}
	}
	return out
}
