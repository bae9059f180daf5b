package tomo

import (
	"testing"

	"github.com/pkg/errors"
)

func TestResolveAxis(t *testing.T) {
	cases := []struct {
		requested Axis
		p, s, x   int
		want      Axis
	}{
		{ProjectionPixel, 8, 8, 8, ProjectionPixel},
		{SlicePixel, 8, 8, 8, SlicePixel},
		{ProjectionSlice, 8, 8, 8, ProjectionSlice},
		// Degenerate dimensions override the request.
		{ProjectionPixel, 1, 8, 8, SlicePixel},
		{SlicePixel, 8, 1, 8, ProjectionPixel},
		{SlicePixel, 8, 8, 1, ProjectionSlice},
	}
	for _, tc := range cases {
		got := ResolveAxis(tc.requested, tc.p, tc.s, tc.x)
		if got != tc.want {
			t.Errorf("ResolveAxis(%d, %d, %d, %d): expected %d, got %d",
				tc.requested, tc.p, tc.s, tc.x, tc.want, got)
		}
	}
}

// TestMedianFilterRemovesZinger checks the default 1x3 projection-pixel
// window against a single-pixel outlier.
func TestMedianFilterRemovesZinger(t *testing.T) {
	stack, err := NewStack(3, 1, 5)
	if err != nil {
		t.Fatalf("NewStack failed: %v", err)
	}
	for i := range stack.Data {
		stack.Data[i] = 1
	}
	stack.Set(1, 0, 2, 1000) // zinger

	if err := stack.MedianFilter(ProjectionPixel, 1, 3); err != nil {
		t.Fatalf("MedianFilter failed: %v", err)
	}
	for p := 0; p < 3; p++ {
		for x := 0; x < 5; x++ {
			if got := stack.At(p, 0, x); got != 1 {
				t.Errorf("[%d, 0, %d]: expected 1, got %v", p, x, got)
			}
		}
	}
}

// TestMedianFilterUniformInvariant verifies a constant stack passes through
// every axis orientation unchanged.
func TestMedianFilterUniformInvariant(t *testing.T) {
	for _, axis := range []Axis{SlicePixel, ProjectionPixel, ProjectionSlice} {
		stack, err := NewStack(4, 4, 4)
		if err != nil {
			t.Fatalf("NewStack failed: %v", err)
		}
		for i := range stack.Data {
			stack.Data[i] = 2.5
		}
		if err := stack.MedianFilter(axis, 3, 3); err != nil {
			t.Fatalf("MedianFilter axis %d failed: %v", axis, err)
		}
		for i, v := range stack.Data {
			if v != 2.5 {
				t.Fatalf("Axis %d changed constant data at %d: %v", axis, i, v)
			}
		}
	}
}

func TestMedianFilterWindowValidation(t *testing.T) {
	stack, err := NewStack(2, 2, 2)
	if err != nil {
		t.Fatalf("NewStack failed: %v", err)
	}
	if err := stack.MedianFilter(ProjectionPixel, 0, 3); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for zero window, got %v", err)
	}
	if err := stack.MedianFilter(ProjectionPixel, 1, -1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for negative window, got %v", err)
	}
}

func TestMedian(t *testing.T) {
	cases := []struct {
		in   []float64
		want float64
	}{
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
		{[]float64{7}, 7},
		{nil, 0},
	}
	for _, tc := range cases {
		vals := append([]float64(nil), tc.in...)
		if got := median(vals); got != tc.want {
			t.Errorf("median(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}
