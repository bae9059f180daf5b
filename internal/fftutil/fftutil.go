// Package fftutil wraps gonum's complex FFT with the zero-frequency
// shift/unshift conventions the preprocessing filters are written in.
// All routines accept arbitrary (not just power-of-two) lengths.
package fftutil

import "gonum.org/v1/gonum/dsp/fourier"

// Forward computes the unnormalized forward DFT of x in place.
func Forward(x []complex128) {
	fft := fourier.NewCmplxFFT(len(x))
	out := fft.Coefficients(nil, x)
	copy(x, out)
}

// Inverse computes the inverse DFT of x in place, normalized by 1/n so that
// Inverse(Forward(x)) == x.
func Inverse(x []complex128) {
	n := len(x)
	fft := fourier.NewCmplxFFT(n)
	out := fft.Sequence(nil, x)
	inv := 1 / float64(n)
	for i := range x {
		x[i] = out[i] * complex(inv, 0)
	}
}

// Shift moves the zero-frequency component to the center of x, matching
// numpy's fftshift: index 0 lands on index n/2.
func Shift(x []complex128) {
	n := len(x)
	out := make([]complex128, n)
	for i := range x {
		out[(i+n/2)%n] = x[i]
	}
	copy(x, out)
}

// Unshift inverts Shift.
func Unshift(x []complex128) {
	n := len(x)
	out := make([]complex128, n)
	for i := range out {
		out[i] = x[(i+n/2)%n]
	}
	copy(x, out)
}

// Forward2D computes the unnormalized forward DFT of a rows x cols
// row-major array in place, rows first then columns.
func Forward2D(x []complex128, rows, cols int) {
	apply2D(x, rows, cols, Forward)
}

// Inverse2D computes the normalized inverse DFT of a rows x cols row-major
// array in place.
func Inverse2D(x []complex128, rows, cols int) {
	apply2D(x, rows, cols, Inverse)
}

// Shift2D applies Shift along both axes.
func Shift2D(x []complex128, rows, cols int) {
	apply2D(x, rows, cols, Shift)
}

// Unshift2D applies Unshift along both axes.
func Unshift2D(x []complex128, rows, cols int) {
	apply2D(x, rows, cols, Unshift)
}

// apply2D runs a 1-D in-place transform over every row and then every
// column of a row-major array.
func apply2D(x []complex128, rows, cols int, f func([]complex128)) {
	for r := 0; r < rows; r++ {
		f(x[r*cols : (r+1)*cols])
	}
	col := make([]complex128, rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			col[r] = x[r*cols+c]
		}
		f(col)
		for r := 0; r < rows; r++ {
			x[r*cols+c] = col[r]
		}
	}
}
