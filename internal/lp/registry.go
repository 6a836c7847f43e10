package lp

import (
	"errors"
	"fmt"
)

// Solver turns a Model into a Solution.
type Solver interface {
	Name() string
	Solve(m *Model) (*Solution, error)
}

// ErrNoSolver is returned when no requested solver is available.
var ErrNoSolver = errors.New("no solver is available")

// solverOrder is the fallback preference when no solver is requested.
var solverOrder = []string{"simplex"}

var solvers = map[string]func() Solver{
	"simplex": func() Solver { return NewSimplexSolver() },
}

// SolverByName returns the solver registered under the given name.
func SolverByName(name string) (Solver, error) {
	factory, ok := solvers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown solver %q", ErrNoSolver, name)
	}
	return factory(), nil
}

// DefaultSolver returns the first available solver in preference order.
func DefaultSolver() (Solver, error) {
	for _, name := range solverOrder {
		if factory, ok := solvers[name]; ok {
			return factory(), nil
		}
	}
	return nil, ErrNoSolver
}

// Solve dispatches to the named solver, or to the default fallback order
// when name is empty.
func Solve(m *Model, name string) (*Solution, error) {
	var (
		solver Solver
		err    error
	)
	if name == "" {
		solver, err = DefaultSolver()
	} else {
		solver, err = SolverByName(name)
	}
	if err != nil {
		return nil, err
	}
	solution, err := solver.Solve(m)
	if solution != nil {
		solution.Solver = solver.Name()
	}
	return solution, err
}
