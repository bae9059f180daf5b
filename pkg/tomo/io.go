package tomo

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// WriteRaw writes the projection data as little-endian float64 values in
// row-major [projection, slice, pixel] order. Only the data block is
// written; extents travel out of band.
func (st *Stack) WriteRaw(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, st.Data); err != nil {
		return errors.Wrap(err, "writing raw stack")
	}
	return nil
}

// WriteRawFile writes the projection data to the named file.
func (st *Stack) WriteRawFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating raw stack file")
	}
	defer f.Close()
	return st.WriteRaw(f)
}

// ReadRaw reads a little-endian float64 stack with the given extents.
func ReadRaw(r io.Reader, projections, slices, pixels int) (*Stack, error) {
	st, err := NewStack(projections, slices, pixels)
	if err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, st.Data); err != nil {
		return nil, errors.Wrap(err, "reading raw stack")
	}
	return st, nil
}

// ReadRawFile reads a raw stack from the named file and verifies that the
// file holds exactly the expected number of values.
func ReadRawFile(path string, projections, slices, pixels int) (*Stack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening raw stack file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat raw stack file")
	}
	want := int64(projections) * int64(slices) * int64(pixels) * 8
	if info.Size() != want {
		return nil, errors.Wrapf(ErrInvalidParameter,
			"raw stack file is %d bytes, extents %dx%dx%d need %d",
			info.Size(), projections, slices, pixels, want)
	}
	return ReadRaw(f, projections, slices, pixels)
}

// ReadRawFrames reads count frames of slices*pixels little-endian float64
// values, the layout used for white and dark reference files.
func ReadRawFrames(path string, count, slices, pixels int) ([]float64, error) {
	if count < 1 {
		return nil, errors.Wrapf(ErrInvalidParameter, "frame count must be positive, got %d", count)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening reference frame file")
	}
	defer f.Close()

	frames := make([]float64, count*slices*pixels)
	if err := binary.Read(f, binary.LittleEndian, frames); err != nil {
		return nil, errors.Wrap(err, "reading reference frames")
	}
	return frames, nil
}
