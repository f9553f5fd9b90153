package steady

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/mvellank/surfkin/internal/numeric"
	"github.com/mvellank/surfkin/internal/rates"
)

// ErrNotConverged is returned when the iteration cap is reached before the
// residual norm drops below tolerance.
var ErrNotConverged = errors.New("steady: newton iteration did not converge")

// Options control the Newton driver.
type Options struct {
	// MaxIterations caps the outer Newton loop.
	MaxIterations int
	// Tolerance is the residual-norm convergence threshold.
	Tolerance float64
	// WarmupIterations is how many initial steps run unconstrained.
	WarmupIterations int
	// JacobianStep is the relative finite-difference step.
	JacobianStep float64
}

func DefaultOptions() Options {
	return Options{
		MaxIterations:    100,
		Tolerance:        1e-10,
		WarmupIterations: 5,
		JacobianStep:     1e-10,
	}
}

// Observer receives every accepted iterate. Used by the live watch view.
type Observer interface {
	OnIterate(it Iterate)
}

// Stats summarizes a finished solve.
type Stats struct {
	Iterations int
	Residual   float64
	Converged  bool
	Stationary bool
}

// Solver drives the Newton iteration on a rate system's coverage balances.
type Solver struct {
	sys       *rates.System
	balance   *Balance
	opts      Options
	log       *logrus.Entry
	observers []Observer
}

func NewSolver(sys *rates.System, opts Options, log *logrus.Entry) *Solver {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultOptions().Tolerance
	}
	if opts.JacobianStep <= 0 {
		opts.JacobianStep = DefaultOptions().JacobianStep
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Solver{
		sys:     sys,
		balance: NewBalance(sys),
		opts:    opts,
		log:     log,
	}
}

func (s *Solver) Balance() *Balance { return s.balance }
func (s *Solver) Options() Options  { return s.opts }

func (s *Solver) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// NewtonAt builds a fresh iterator starting from x0. Exposed so callers can
// pull iterates one at a time; SteadyState wraps the same iterator in a
// convergence loop.
func (s *Solver) NewtonAt(x0 numeric.Vector) *Newton {
	b := s.sys.Backend()
	f := s.balance.Eval
	jac := func(x numeric.Vector) (numeric.Matrix, error) {
		// Coverage coordinates are all forward-differenced; backward steps
		// are reserved for barrier perturbations elsewhere.
		return FiniteJacobian(b, f, x, s.opts.JacobianStep, nil)
	}
	return NewNewton(b, f, jac, CoverageConstraint(s.sys.Model(), b), x0, s.opts.WarmupIterations)
}

// SteadyState runs the damped Newton iteration from x0 until the residual
// norm falls below tolerance, the iterate goes stationary, or the iteration
// cap is hit. A nil x0 starts from the Boltzmann coverage estimate. The
// best point seen is returned even on ErrNotConverged so callers can
// inspect or restart from it.
func (s *Solver) SteadyState(ctx context.Context, x0 numeric.Vector) (numeric.Vector, Stats, error) {
	if x0 == nil {
		guess, err := s.sys.BoltzmannCoverages()
		if err != nil {
			return nil, Stats{}, err
		}
		x0 = guess
	}

	newton := s.NewtonAt(x0)
	var (
		best     numeric.Vector
		bestNorm float64
		stats    Stats
	)
	for stats.Iterations < s.opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return best, stats, err
		}
		it, ok, err := newton.Next()
		if err != nil {
			return best, stats, err
		}
		if !ok {
			break
		}
		stats.Iterations = it.Iteration
		stats.Residual = it.Norm.Float64()

		for _, o := range s.observers {
			o.OnIterate(it)
		}
		s.log.WithFields(logrus.Fields{
			"iteration": it.Iteration,
			"norm":      stats.Residual,
		}).Debug("newton step")

		if best == nil || stats.Residual < bestNorm {
			best = it.Point
			bestNorm = stats.Residual
		}
		if stats.Residual <= s.opts.Tolerance {
			stats.Converged = true
			break
		}
		if it.Stationary {
			stats.Stationary = true
			stats.Converged = true
			s.log.WithField("iteration", it.Iteration).Debug("stationary point reached")
			break
		}
	}

	if !stats.Converged {
		return best, stats, ErrNotConverged
	}
	s.sys.Sink().Archive("steady_state_coverages", best.Float64s())
	s.log.WithFields(logrus.Fields{
		"iterations": stats.Iterations,
		"residual":   stats.Residual,
	}).Info("steady state converged")
	return best, stats, nil
}
