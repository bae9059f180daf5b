package phase

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"tomopre/pkg/tomo"
)

func testOptions() Options {
	return Options{
		PixelSize: 1e-4,
		Dist:      10,
		Energy:    20,
		Alpha:     1e-3,
	}
}

func TestRetrieveValidation(t *testing.T) {
	stack, err := tomo.NewStack(2, 4, 4)
	if err != nil {
		t.Fatalf("NewStack failed: %v", err)
	}

	for _, mutate := range []func(*Options){
		func(o *Options) { o.PixelSize = 0 },
		func(o *Options) { o.Dist = -1 },
		func(o *Options) { o.Energy = 0 },
	} {
		opts := testOptions()
		mutate(&opts)
		if err := Retrieve(stack, opts); !errors.Is(err, tomo.ErrInvalidParameter) {
			t.Errorf("Expected ErrInvalidParameter for %+v, got %v", opts, err)
		}
	}

	thin, err := tomo.NewStack(2, 1, 4)
	if err != nil {
		t.Fatalf("NewStack failed: %v", err)
	}
	if err := Retrieve(thin, testOptions()); !errors.Is(err, tomo.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for single-slice stack, got %v", err)
	}
}

// TestFresnelKernel checks the filter is symmetric about the grid center,
// positive and bounded by 1/alpha. Odd extents put a sample exactly on zero
// frequency, where the regularization alone sets the peak.
func TestFresnelKernel(t *testing.T) {
	const rows, cols = 5, 7
	opts := testOptions()
	wavelength := 2 * math.Pi * planckConstant * speedOfLight / opts.Energy
	kernel := fresnelKernel(rows, cols, opts.PixelSize, opts.Dist, wavelength, opts.Alpha)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := kernel[r*cols+c]
			if v <= 0 || v > 1/opts.Alpha+1e-12 {
				t.Fatalf("Kernel value %v at (%d, %d) outside (0, 1/alpha]", v, r, c)
			}
			mirror := kernel[(rows-1-r)*cols+(cols-1-c)]
			if math.Abs(v-mirror) > 1e-12 {
				t.Fatalf("Kernel not symmetric at (%d, %d): %v vs %v", r, c, v, mirror)
			}
		}
	}

	// The peak sits at the zero-frequency grid point.
	peak := 0.0
	for _, v := range kernel {
		if v > peak {
			peak = v
		}
	}
	if math.Abs(peak-1/opts.Alpha) > 1e-12 {
		t.Errorf("Expected kernel peak 1/alpha = %v, got %v", 1/opts.Alpha, peak)
	}
}

func TestReciprocalAxisCentered(t *testing.T) {
	axis := reciprocalAxis(5, 1e-4)
	if axis[2] != 0 {
		t.Errorf("Odd-length axis not centered: middle sample %v", axis[2])
	}
	for i := 0; i < 5; i++ {
		if math.Abs(axis[i]+axis[4-i]) > 1e-12 {
			t.Errorf("Axis not antisymmetric at %d: %v vs %v", i, axis[i], axis[4-i])
		}
	}
}

// TestRetrieveFiltersStack runs the full filter on a smooth stack and checks
// the output stays finite, keeps its shape, and actually changes the data.
func TestRetrieveFiltersStack(t *testing.T) {
	stack, err := tomo.NewStack(2, 8, 8)
	if err != nil {
		t.Fatalf("NewStack failed: %v", err)
	}
	for p := 0; p < 2; p++ {
		for s := 0; s < 8; s++ {
			for x := 0; x < 8; x++ {
				stack.Set(p, s, x, 0.5+0.4*math.Sin(float64(s))*math.Cos(float64(x)))
			}
		}
	}
	before := append([]float64(nil), stack.Data...)

	if err := Retrieve(stack, testOptions()); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	changed := false
	for i, v := range stack.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("Non-finite value %v at %d", v, i)
		}
		if v != before[i] {
			changed = true
		}
	}
	if !changed {
		t.Error("Retrieve left the stack untouched")
	}
}

// TestRetrieveDeterministic runs the same retrieval twice and expects
// bit-identical output.
func TestRetrieveDeterministic(t *testing.T) {
	build := func() []float64 {
		stack, err := tomo.NewStack(1, 4, 4)
		if err != nil {
			t.Fatalf("NewStack failed: %v", err)
		}
		for i := range stack.Data {
			stack.Data[i] = 0.1 * float64(i%9)
		}
		if err := Retrieve(stack, testOptions()); err != nil {
			t.Fatalf("Retrieve failed: %v", err)
		}
		return stack.Data
	}
	first := build()
	second := build()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Outputs differ at %d: %v vs %v", i, first[i], second[i])
		}
	}
}
