package lp

// Status is the outcome of a solve.
type Status int

const (
	StatusNotSolved Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "not solved"
	}
}

// Solution holds the result of solving a Model.
type Solution struct {
	Status Status
	// Objective is the value of the objective function, including the
	// model's offset, in the model's orientation.
	Objective float64
	// ColValues contains the primal values of each column.
	ColValues []float64
	// Solver names the solver that produced this solution.
	Solver string
}

// IsOptimal returns true if an optimal solution was found.
func (s *Solution) IsOptimal() bool { return s.Status == StatusOptimal }

// Value returns the solved value of a column, 0 when out of range.
func (s *Solution) Value(v Var) float64 {
	if int(v) < 0 || int(v) >= len(s.ColValues) {
		return 0
	}
	return s.ColValues[v]
}

// Values returns the solved values of a list of columns.
func (s *Solution) Values(vars []Var) []float64 {
	out := make([]float64, len(vars))
	for i, v := range vars {
		out[i] = s.Value(v)
	}
	return out
}
