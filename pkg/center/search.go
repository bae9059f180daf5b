package center

import (
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize"

	"tomopre/pkg/recon"
	"tomopre/pkg/tomo"
)

// Options configure the center search.
type Options struct {
	// SliceIndex selects the slice driving the search. Negative means the
	// middle slice.
	SliceIndex int

	// InitialCenter seeds the search. NaN means half the pixel extent.
	InitialCenter float64

	// HistMin and HistMax bound the entropy histogram. When nil they are
	// derived from a probe reconstruction at the initial center.
	HistMin, HistMax *float64

	// Tol is the desired sub-pixel accuracy on the center value.
	Tol float64

	// FilterSigma is the standard deviation of the Gaussian smoothing
	// applied to every reconstruction before histogramming. Raise it for
	// datasets with strong high-frequency content such as phase-contrast
	// images.
	FilterSigma float64

	// MaxIterations bounds the Nelder-Mead iteration budget. Exhausting
	// it is reported as a warning, not an error.
	MaxIterations int

	// Logger receives progress and the convergence advisory. Nil disables
	// logging.
	Logger *log.Logger
}

// DefaultOptions returns the search configuration used by the standard
// preprocessing pipeline.
func DefaultOptions() Options {
	return Options{
		SliceIndex:    -1,
		InitialCenter: math.NaN(),
		Tol:           0.5,
		FilterSigma:   2,
		MaxIterations: 200,
	}
}

// convergeIters is how many near-identical cost evaluations the simplex
// must produce before the search is considered converged. By then the
// simplex has contracted well below the requested center tolerance.
const convergeIters = 15

// Optimize finds the rotation center minimizing the reconstruction's image
// entropy, using a Nelder-Mead search over Cost. The returned center is
// deterministic for identical stack data, initial center and histogram
// bounds. A search that exhausts its iteration budget still returns the
// best-found center; the lack of convergence is surfaced through the logger
// as a quality signal.
func Optimize(op recon.Operator, stack *tomo.Stack, opts Options) (float64, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	sliceIdx := opts.SliceIndex
	if sliceIdx < 0 {
		sliceIdx = stack.Slices / 2
	} else if sliceIdx >= stack.Slices {
		return 0, errors.Wrapf(tomo.ErrInvalidParameter,
			"slice index %d exceeds available slices %d", sliceIdx, stack.Slices)
	}

	initial := opts.InitialCenter
	if math.IsNaN(initial) {
		initial = stack.DefaultCenter()
	} else if math.IsInf(initial, 0) {
		return 0, errors.Wrap(tomo.ErrInvalidParameter, "initial center must be finite")
	}

	tol := opts.Tol
	if tol <= 0 {
		tol = 0.5
	}

	histMin, histMax, err := histogramRange(op, stack, sliceIdx, initial, opts.HistMin, opts.HistMax)
	if err != nil {
		return 0, err
	}
	if histMax <= histMin {
		return 0, errors.Wrapf(tomo.ErrNumericDegenerate,
			"derived histogram range [%g, %g] collapses all bins", histMin, histMax)
	}
	logger.Info("optimizing rotation center",
		"slice", sliceIdx, "initial", initial, "histMin", histMin, "histMax", histMax)

	var evalErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			cost, err := Cost(op, stack, sliceIdx, x[0], histMin, histMax, opts.FilterSigma)
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}
			logger.Debug("evaluated candidate center", "center", x[0], "entropy", cost)
			return cost
		},
	}
	settings := &optimize.Settings{
		// The converger watches the cost, not the argument; by the time
		// the entropy stops moving the simplex width is far below tol.
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-4 * tol,
			Iterations: convergeIters,
		},
		MajorIterations: opts.MaxIterations,
	}

	result, err := optimize.Minimize(problem, []float64{initial}, settings, &optimize.NelderMead{})
	if evalErr != nil {
		return 0, evalErr
	}
	if err != nil {
		return 0, errors.Wrap(err, "center search failed")
	}

	best := result.X[0]
	if serr := result.Status.Err(); serr != nil {
		logger.Warn("center search exhausted its budget before converging; using best found",
			"status", result.Status.String(), "center", best)
	} else {
		logger.Info("calculated rotation center", "center", best, "entropy", result.F,
			"evaluations", result.FuncEvaluations)
	}
	return best, nil
}

// histogramRange fills in missing histogram bounds from a probe
// reconstruction at the initial center. The probe extremes are widened
// outward regardless of sign, so the true optimum may produce more extreme
// values than the initial guess without falling off the histogram.
func histogramRange(op recon.Operator, stack *tomo.Stack, sliceIdx int, initial float64, minOpt, maxOpt *float64) (histMin, histMax float64, err error) {
	if minOpt != nil && maxOpt != nil {
		return *minOpt, *maxOpt, nil
	}

	probe, err := op.Reconstruct(stack, sliceIdx, initial)
	if err != nil {
		return 0, 0, err
	}
	min, max := probe.MinMax()

	if minOpt != nil {
		histMin = *minOpt
	} else if min < 0 {
		histMin = 2 * min
	} else {
		histMin = 0.5 * min
	}

	if maxOpt != nil {
		histMax = *maxOpt
	} else if max < 0 {
		histMax = 0.5 * max
	} else {
		histMax = 2 * max
	}
	return histMin, histMax, nil
}
