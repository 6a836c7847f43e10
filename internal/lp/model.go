// Package lp provides a small linear-programming modeling layer: a Model
// holds columns with bounds and costs plus two-sided constraint rows, and
// solvers turn it into a Solution. The in-process backend runs the gonum
// simplex; the model can also be exported in the CPLEX LP text format for
// external solvers.
package lp

import (
	"fmt"
	"math"
)

// Var is a handle to one column of a Model.
type Var int

// Model represents an optimization problem of the form:
//
//	minimize (or maximize)  ColCosts · x + Offset
//	subject to              RowLower ≤ A·x ≤ RowUpper
//	and                     ColLower ≤ x ≤ ColUpper
type Model struct {
	// Name labels the problem in the LP export.
	Name string
	// Maximize indicates whether to maximize (true) or minimize (false).
	Maximize bool
	// Offset is a constant added to the objective.
	Offset float64

	ColNames []string
	ColCosts []float64
	ColLower []float64
	ColUpper []float64

	RowNames []string
	RowLower []float64
	RowUpper []float64
	// Rows holds the non-zero coefficients of each constraint row.
	Rows []map[Var]float64
}

func NewModel(name string) *Model {
	return &Model{Name: name}
}

// Inf returns positive infinity, for unbounded columns or one-sided rows.
func Inf() float64 { return math.Inf(1) }

// NumVars returns the number of columns.
func (m *Model) NumVars() int { return len(m.ColCosts) }

// NumRows returns the number of constraint rows.
func (m *Model) NumRows() int { return len(m.Rows) }

// AddVar appends a column with the given bounds and objective coefficient.
func (m *Model) AddVar(name string, lower, upper, cost float64) Var {
	v := Var(len(m.ColCosts))
	m.ColNames = append(m.ColNames, name)
	m.ColCosts = append(m.ColCosts, cost)
	m.ColLower = append(m.ColLower, lower)
	m.ColUpper = append(m.ColUpper, upper)
	return v
}

// AddVars appends `count` columns sharing bounds and cost, named name_0..n.
func (m *Model) AddVars(name string, count int, lower, upper, cost float64) []Var {
	vars := make([]Var, count)
	for i := range vars {
		vars[i] = m.AddVar(fmt.Sprintf("%s_%d", name, i), lower, upper, cost)
	}
	return vars
}

// SetCost overrides the objective coefficient of a column.
func (m *Model) SetCost(v Var, cost float64) { m.ColCosts[v] = cost }

// AddCost adds to the objective coefficient of a column.
func (m *Model) AddCost(v Var, cost float64) { m.ColCosts[v] += cost }

// AddRange adds the constraint lower ≤ expr ≤ upper. The expression's
// constant is moved to the bounds. Rows without any term are validated
// immediately and dropped.
func (m *Model) AddRange(name string, lower float64, e Expr, upper float64) error {
	lo := lower - e.Const
	hi := upper - e.Const
	if len(e.Terms) == 0 {
		if 0 < lo-rowTolerance || 0 > hi+rowTolerance {
			return fmt.Errorf("constraint %q is trivially infeasible", name)
		}
		return nil
	}
	terms := make(map[Var]float64, len(e.Terms))
	for v, coef := range e.Terms {
		if coef != 0 {
			terms[v] = coef
		}
	}
	m.RowNames = append(m.RowNames, name)
	m.RowLower = append(m.RowLower, lo)
	m.RowUpper = append(m.RowUpper, hi)
	m.Rows = append(m.Rows, terms)
	return nil
}

const rowTolerance = 1e-9

// AddEquality adds the constraint expr == value.
func (m *Model) AddEquality(name string, e Expr, value float64) error {
	return m.AddRange(name, value, e, value)
}

// AddAtLeast adds the constraint expr >= value.
func (m *Model) AddAtLeast(name string, e Expr, value float64) error {
	return m.AddRange(name, value, e, Inf())
}

// AddAtMost adds the constraint expr <= value.
func (m *Model) AddAtMost(name string, e Expr, value float64) error {
	return m.AddRange(name, math.Inf(-1), e, value)
}
