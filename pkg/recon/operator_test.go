package recon

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"tomopre/pkg/tomo"
)

// pointStack builds a stack whose single slice is the sinogram of a point
// source sitting exactly on the rotation axis: every projection row carries
// one impulse at the detector position equal to the center.
func pointStack(t *testing.T, projections, pixels int, center int) *tomo.Stack {
	t.Helper()
	stack, err := tomo.NewStack(projections, 1, pixels)
	if err != nil {
		t.Fatalf("NewStack failed: %v", err)
	}
	for p := 0; p < projections; p++ {
		stack.Set(p, 0, center, 1)
	}
	return stack
}

// TestFBPOnAxisPoint reconstructs a point on the rotation axis and expects
// the intensity peak to land at the image center.
func TestFBPOnAxisPoint(t *testing.T) {
	const pixels = 32
	stack := pointStack(t, 64, pixels, pixels/2)

	img, err := NewFBP().Reconstruct(stack, 0, float64(pixels)/2)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if img.Width != pixels || img.Height != pixels {
		t.Fatalf("Expected %dx%d image, got %dx%d", pixels, pixels, img.Width, img.Height)
	}

	peakX, peakY, peak := 0, 0, math.Inf(-1)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if v := img.Data[y*img.Width+x]; v > peak {
				peak, peakX, peakY = v, x, y
			}
		}
	}
	mid := float64(pixels-1) / 2
	if math.Abs(float64(peakX)-mid) > 2 || math.Abs(float64(peakY)-mid) > 2 {
		t.Errorf("Peak at (%d, %d), expected near (%.1f, %.1f)", peakX, peakY, mid, mid)
	}
	if peak <= 0 {
		t.Errorf("Expected a positive peak, got %v", peak)
	}
}

// TestFBPDeterministic runs the same reconstruction twice and expects
// bit-identical output.
func TestFBPDeterministic(t *testing.T) {
	build := func() *Image {
		stack := pointStack(t, 16, 24, 13)
		img, err := NewFBP().Reconstruct(stack, 0, 12)
		if err != nil {
			t.Fatalf("Reconstruct failed: %v", err)
		}
		return img
	}
	first := build()
	second := build()
	for i := range first.Data {
		if first.Data[i] != second.Data[i] {
			t.Fatalf("Outputs differ at %d: %v vs %v", i, first.Data[i], second.Data[i])
		}
	}
}

// TestFBPCenterSensitivity verifies the candidate center actually changes the
// reconstruction, which the entropy search depends on.
func TestFBPCenterSensitivity(t *testing.T) {
	stack := pointStack(t, 16, 24, 12)
	op := NewFBP()

	at12, err := op.Reconstruct(stack, 0, 12)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	at9, err := op.Reconstruct(stack, 0, 9)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	same := true
	for i := range at12.Data {
		if at12.Data[i] != at9.Data[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Reconstructions at centers 12 and 9 are identical")
	}
}

// TestFBPValidation covers the parameter checks.
func TestFBPValidation(t *testing.T) {
	stack := pointStack(t, 8, 16, 8)
	op := NewFBP()

	if _, err := op.Reconstruct(stack, 1, 8); !errors.Is(err, tomo.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for slice index, got %v", err)
	}
	if _, err := op.Reconstruct(stack, -1, 8); !errors.Is(err, tomo.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for negative slice, got %v", err)
	}
	if _, err := op.Reconstruct(stack, 0, math.NaN()); !errors.Is(err, tomo.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for NaN center, got %v", err)
	}
}

// TestFBPLeavesStackIntact checks that the ramp filtering happens on a copy,
// not on the caller's projection data.
func TestFBPLeavesStackIntact(t *testing.T) {
	stack := pointStack(t, 8, 16, 8)
	before := make([]float64, len(stack.Data))
	copy(before, stack.Data)

	if _, err := NewFBP().Reconstruct(stack, 0, 8); err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	for i := range before {
		if stack.Data[i] != before[i] {
			t.Fatalf("Stack data mutated at %d", i)
		}
	}
}

// TestImageMinMax exercises the extremes helper.
func TestImageMinMax(t *testing.T) {
	img := &Image{Width: 2, Height: 2, Data: []float64{3, -1, 0.5, 2}}
	min, max := img.MinMax()
	if min != -1 || max != 3 {
		t.Errorf("Expected (-1, 3), got (%v, %v)", min, max)
	}
}
