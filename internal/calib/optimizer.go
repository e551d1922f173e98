package calib

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Status is the final state of a calibration run.
type Status int

const (
	// Converged means the function-value convergence criterion fired.
	Converged Status = iota
	// MaxIterationsReached means the iteration budget ran out first.
	MaxIterationsReached
	// MaxEvaluationsReached means the evaluation budget ran out first.
	MaxEvaluationsReached
	// Failed covers every other optimizer termination.
	Failed
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max-iterations-reached"
	case MaxEvaluationsReached:
		return "max-evaluations-reached"
	default:
		return "failed"
	}
}

// Config bounds the direct search.
type Config struct {
	// FuncTolerance is the absolute function-value convergence
	// tolerance. With angle jitter enabled the loss is stochastic, so
	// tolerances far below the jitter noise floor only burn budget.
	FuncTolerance float64

	// ConvergeWindow is the number of consecutive iterations the
	// function value must stay within FuncTolerance to declare
	// convergence.
	ConvergeWindow int

	// MaxIterations and MaxEvaluations cap the run. Zero means
	// unlimited.
	MaxIterations  int
	MaxEvaluations int
}

// Result is the packaged outcome of a calibration run.
type Result struct {
	// Coefficients is the best candidate found, in named form.
	Coefficients Coefficients

	// Loss is the objective value at Coefficients.
	Loss float64

	// Status reports why the search stopped. Non-convergence is not an
	// error: the best coefficients found are still returned.
	Status Status

	// Iterations and Evaluations are the optimizer's own counters.
	Iterations  int
	Evaluations int

	// UndefinedEvaluations counts candidates for which no angular
	// section anywhere produced a usable radius. Those candidates are
	// scored +Inf so the simplex retreats from them.
	UndefinedEvaluations int
}

// Calibrate minimizes loss with Nelder-Mead, starting from the fixed
// identity coefficient vector. The loss is probed once up front: a
// starting point with an undefined loss means the inputs cannot support
// a calibration at all, and the search is aborted before it begins.
func Calibrate(loss *Loss, cfg Config) (*Result, error) {
	start := InitialCoefficients()
	if _, err := loss.Evaluate(start); err != nil {
		return nil, fmt.Errorf("loss at initial coefficients: %w", err)
	}

	undefined := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			c, err := CoefficientsFromVector(x)
			if err != nil {
				// The optimizer only proposes vectors of the
				// starting length; reaching this is a bug.
				panic(err)
			}
			v, err := loss.Evaluate(c)
			if err != nil {
				undefined++
				return math.Inf(1)
			}
			return v
		},
	}

	window := cfg.ConvergeWindow
	if window <= 0 {
		window = 20
	}
	settings := &optimize.Settings{
		MajorIterations: cfg.MaxIterations,
		FuncEvaluations: cfg.MaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.FuncTolerance,
			Iterations: window,
		},
	}

	res, err := optimize.Minimize(problem, start.Vector(), settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("nelder-mead: %w", err)
	}

	best, err := CoefficientsFromVector(res.X)
	if err != nil {
		return nil, err
	}

	return &Result{
		Coefficients:         best,
		Loss:                 res.F,
		Status:               statusFrom(res.Status),
		Iterations:           res.Stats.MajorIterations,
		Evaluations:          res.Stats.FuncEvaluations,
		UndefinedEvaluations: undefined,
	}, nil
}

func statusFrom(s optimize.Status) Status {
	switch s {
	case optimize.IterationLimit:
		return MaxIterationsReached
	case optimize.FunctionEvaluationLimit:
		return MaxEvaluationsReached
	case optimize.Success, optimize.FunctionThreshold, optimize.FunctionConvergence,
		optimize.StepConvergence, optimize.MethodConverge:
		return Converged
	default:
		return Failed
	}
}
