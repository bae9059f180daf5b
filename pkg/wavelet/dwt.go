package wavelet

import "math"

// Band is a 2-D coefficient array in row-major order. The same type carries
// images into Decompose2D and approximation/detail sub-bands out of it.
type Band struct {
	Rows, Cols int
	Data       []float64
}

// NewBand allocates a zero-filled rows x cols band.
func NewBand(rows, cols int) *Band {
	return &Band{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// Crop returns a copy of b truncated to rows x cols. Extents are clamped to
// b's own, so cropping never pads.
func (b *Band) Crop(rows, cols int) *Band {
	if rows > b.Rows {
		rows = b.Rows
	}
	if cols > b.Cols {
		cols = b.Cols
	}
	out := NewBand(rows, cols)
	for r := 0; r < rows; r++ {
		copy(out.Data[r*cols:(r+1)*cols], b.Data[r*b.Cols:r*b.Cols+cols])
	}
	return out
}

// MaxLevel returns the deepest decomposition a rows x cols image supports:
// each level halves both extents, and a sub-band must keep at least one
// coefficient per axis.
func MaxLevel(rows, cols int) int {
	n := rows
	if cols < n {
		n = cols
	}
	if n < 2 {
		return 0
	}
	return int(math.Floor(math.Log2(float64(n))))
}

// analyze performs one periodized analysis step on x. Odd-length input is
// extended by replicating the last sample before the circular convolution,
// so both output channels have ceil(len(x)/2) coefficients.
func (w *Wavelet) analyze(x []float64) (lo, hi []float64) {
	n := len(x)
	if n%2 != 0 {
		ext := make([]float64, n+1)
		copy(ext, x)
		ext[n] = x[n-1]
		x = ext
		n++
	}
	half := n / 2
	lo = make([]float64, half)
	hi = make([]float64, half)
	for i := 0; i < half; i++ {
		var a, d float64
		for k := 0; k < len(w.Lo); k++ {
			v := x[(2*i+k)%n]
			a += w.Lo[k] * v
			d += w.Hi[k] * v
		}
		lo[i] = a
		hi[i] = d
	}
	return lo, hi
}

// synthesize inverts analyze, producing 2*len(lo) samples. Because the
// periodized bank is orthogonal the synthesis is the exact adjoint of the
// analysis scatter.
func (w *Wavelet) synthesize(lo, hi []float64) []float64 {
	n := 2 * len(lo)
	x := make([]float64, n)
	for i := range lo {
		for k := 0; k < len(w.Lo); k++ {
			x[(2*i+k)%n] += w.Lo[k]*lo[i] + w.Hi[k]*hi[i]
		}
	}
	return x
}

// Decompose2D applies one 2-D analysis step to img, returning the
// approximation band and the horizontal, vertical and diagonal detail
// bands. The vertical band is highpass along the column (pixel) axis and
// lowpass along the row axis, so per-column stripe energy lands there.
// All four bands are ceil(rows/2) x ceil(cols/2).
func (w *Wavelet) Decompose2D(img *Band) (a, h, v, d *Band) {
	halfCols := (img.Cols + 1) / 2
	halfRows := (img.Rows + 1) / 2

	// Rows first: split every row into lowpass and highpass halves.
	rowLo := NewBand(img.Rows, halfCols)
	rowHi := NewBand(img.Rows, halfCols)
	for r := 0; r < img.Rows; r++ {
		lo, hi := w.analyze(img.Data[r*img.Cols : (r+1)*img.Cols])
		copy(rowLo.Data[r*halfCols:], lo)
		copy(rowHi.Data[r*halfCols:], hi)
	}

	// Then columns of each half.
	a = NewBand(halfRows, halfCols)
	h = NewBand(halfRows, halfCols)
	v = NewBand(halfRows, halfCols)
	d = NewBand(halfRows, halfCols)
	col := make([]float64, img.Rows)
	for c := 0; c < halfCols; c++ {
		for r := 0; r < img.Rows; r++ {
			col[r] = rowLo.Data[r*halfCols+c]
		}
		lo, hi := w.analyze(col)
		for r := 0; r < halfRows; r++ {
			a.Data[r*halfCols+c] = lo[r]
			h.Data[r*halfCols+c] = hi[r]
		}

		for r := 0; r < img.Rows; r++ {
			col[r] = rowHi.Data[r*halfCols+c]
		}
		lo, hi = w.analyze(col)
		for r := 0; r < halfRows; r++ {
			v.Data[r*halfCols+c] = lo[r]
			d.Data[r*halfCols+c] = hi[r]
		}
	}
	return a, h, v, d
}

// Reconstruct2D inverts Decompose2D. All four bands must share one shape;
// the result is twice that shape in both axes and is cropped by the caller.
func (w *Wavelet) Reconstruct2D(a, h, v, d *Band) *Band {
	rows, cols := a.Rows, a.Cols
	outRows := 2 * rows

	rowLo := NewBand(outRows, cols)
	rowHi := NewBand(outRows, cols)
	loCol := make([]float64, rows)
	hiCol := make([]float64, rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			loCol[r] = a.Data[r*cols+c]
			hiCol[r] = h.Data[r*cols+c]
		}
		full := w.synthesize(loCol, hiCol)
		for r := 0; r < outRows; r++ {
			rowLo.Data[r*cols+c] = full[r]
		}

		for r := 0; r < rows; r++ {
			loCol[r] = v.Data[r*cols+c]
			hiCol[r] = d.Data[r*cols+c]
		}
		full = w.synthesize(loCol, hiCol)
		for r := 0; r < outRows; r++ {
			rowHi.Data[r*cols+c] = full[r]
		}
	}

	out := NewBand(outRows, 2*cols)
	for r := 0; r < outRows; r++ {
		full := w.synthesize(rowLo.Data[r*cols:(r+1)*cols], rowHi.Data[r*cols:(r+1)*cols])
		copy(out.Data[r*out.Cols:], full)
	}
	return out
}
