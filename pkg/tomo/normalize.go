package tomo

import (
	"github.com/pkg/errors"
)

// Normalize divides every projection elementwise by the average white-field
// frame, mutating the stack in place. White pixels that read zero are left
// untouched rather than producing infinities. When cutoff is non-nil the
// normalized data is clamped to that value from above.
func (st *Stack) Normalize(cutoff *float64) error {
	frame := st.Slices * st.Pixels
	if len(st.White) == 0 || len(st.White)%frame != 0 {
		return errors.Wrapf(ErrInvalidParameter,
			"normalize needs white frames of %d values each, got %d values", frame, len(st.White))
	}
	numWhite := len(st.White) / frame

	avg := make([]float64, frame)
	for w := 0; w < numWhite; w++ {
		for i := 0; i < frame; i++ {
			avg[i] += st.White[w*frame+i]
		}
	}
	for i := range avg {
		avg[i] /= float64(numWhite)
	}

	for p := 0; p < st.Projections; p++ {
		base := p * frame
		for i := 0; i < frame; i++ {
			if avg[i] != 0 {
				st.Data[base+i] /= avg[i]
			}
		}
	}

	if cutoff != nil {
		for i, v := range st.Data {
			if v > *cutoff {
				st.Data[i] = *cutoff
			}
		}
	}
	return nil
}
