package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	gonumlp "gonum.org/v1/gonum/optimize/convex/lp"
)

// SimplexSolver solves models with the gonum dense simplex. The bounded
// two-sided model is rewritten into standard form (minimize c·y subject to
// A·y = b, y ≥ 0) first:
//   - columns with a finite lower bound are shifted so the bound becomes 0,
//   - columns bounded only from above are mirrored,
//   - free columns are split into a positive and a negative part,
//   - finite upper bounds and one-sided rows gain slack columns.
type SimplexSolver struct {
	// Tol is the pivot tolerance passed to the simplex; 0 selects a default.
	Tol float64
}

func NewSimplexSolver() SimplexSolver { return SimplexSolver{Tol: 1e-10} }

func (SimplexSolver) Name() string { return "simplex" }

// column kinds in the standard form.
const (
	colShifted = iota // y = x - lower
	colMirrored       // y = upper - x
	colFree           // x = y⁺ - y⁻
)

type stdColumn struct {
	kind int
	base float64 // lower bound for shifted, upper bound for mirrored
	pos  int     // standard column of y (or y⁺)
	neg  int     // standard column of y⁻ for free columns
}

type stdRow struct {
	terms map[int]float64
	rhs   float64
}

// Solve converts the model to standard form and runs the simplex.
func (s SimplexSolver) Solve(m *Model) (*Solution, error) {
	n := m.NumVars()
	cols := make([]stdColumn, n)
	costs := []float64{}
	constCost := m.Offset

	addStdCol := func(cost float64) int {
		costs = append(costs, cost)
		return len(costs) - 1
	}

	rows := []stdRow{}
	addRow := func(terms map[int]float64, rhs float64) {
		rows = append(rows, stdRow{terms: terms, rhs: rhs})
	}

	for i := 0; i < n; i++ {
		lo, hi := m.ColLower[i], m.ColUpper[i]
		cost := m.ColCosts[i]
		switch {
		case lo > hi:
			return nil, fmt.Errorf("column %q has empty domain [%g, %g]", m.ColNames[i], lo, hi)
		case !math.IsInf(lo, -1):
			cols[i] = stdColumn{kind: colShifted, base: lo, pos: addStdCol(cost)}
			constCost += cost * lo
			if !math.IsInf(hi, 1) {
				// y + slack = hi - lo
				slack := addStdCol(0)
				addRow(map[int]float64{cols[i].pos: 1, slack: 1}, hi-lo)
			}
		case !math.IsInf(hi, 1):
			cols[i] = stdColumn{kind: colMirrored, base: hi, pos: addStdCol(-cost)}
			constCost += cost * hi
		default:
			pos := addStdCol(cost)
			neg := addStdCol(-cost)
			cols[i] = stdColumn{kind: colFree, pos: pos, neg: neg}
		}
	}

	// Translate constraint rows, moving the column substitutions into the
	// right-hand side.
	for r, terms := range m.Rows {
		rowConst := 0.0
		std := map[int]float64{}
		for v, coef := range terms {
			col := cols[v]
			switch col.kind {
			case colShifted:
				rowConst += coef * col.base
				std[col.pos] += coef
			case colMirrored:
				rowConst += coef * col.base
				std[col.pos] -= coef
			case colFree:
				std[col.pos] += coef
				std[col.neg] -= coef
			}
		}
		lo := m.RowLower[r] - rowConst
		hi := m.RowUpper[r] - rowConst
		if hi-lo < rowTolerance {
			addRow(std, lo)
			continue
		}
		if !math.IsInf(hi, 1) {
			slack := addStdCol(0)
			withSlack := cloneTerms(std)
			withSlack[slack] = 1
			addRow(withSlack, hi)
		}
		if !math.IsInf(lo, -1) {
			surplus := addStdCol(0)
			withSurplus := cloneTerms(std)
			withSurplus[surplus] = -1
			addRow(withSurplus, lo)
		}
	}

	if len(costs) == 0 {
		// All columns fixed and no rows: nothing to optimize.
		return s.fixedSolution(m, cols, constCost), nil
	}

	c := make([]float64, len(costs))
	copy(c, costs)
	if m.Maximize {
		for i := range c {
			c[i] = -c[i]
		}
	}

	if len(rows) == 0 {
		// Pure bound problem: every standard column sits at zero unless its
		// cost pulls it to infinity.
		for _, cost := range c {
			if cost < 0 {
				return &Solution{Status: StatusUnbounded}, nil
			}
		}
		return s.fixedSolution(m, cols, constCost), nil
	}

	a := mat.NewDense(len(rows), len(costs), nil)
	b := make([]float64, len(rows))
	for i, row := range rows {
		for col, coef := range row.terms {
			a.Set(i, col, coef)
		}
		b[i] = row.rhs
	}

	optF, optX, err := gonumlp.Simplex(c, a, b, s.Tol, nil)
	switch {
	case err == nil:
	case errors.Is(err, gonumlp.ErrInfeasible):
		return &Solution{Status: StatusInfeasible}, nil
	case errors.Is(err, gonumlp.ErrUnbounded):
		return &Solution{Status: StatusUnbounded}, nil
	default:
		return nil, fmt.Errorf("simplex: %w", err)
	}

	varCost := optF
	if m.Maximize {
		varCost = -optF
	}

	values := make([]float64, n)
	for i, col := range cols {
		switch col.kind {
		case colShifted:
			values[i] = col.base + optX[col.pos]
		case colMirrored:
			values[i] = col.base - optX[col.pos]
		case colFree:
			values[i] = optX[col.pos] - optX[col.neg]
		}
	}

	return &Solution{
		Status:    StatusOptimal,
		Objective: constCost + varCost,
		ColValues: values,
	}, nil
}

// fixedSolution handles the degenerate case of a model whose columns are all
// fixed by their bounds.
func (SimplexSolver) fixedSolution(m *Model, cols []stdColumn, constCost float64) *Solution {
	values := make([]float64, m.NumVars())
	for i, col := range cols {
		values[i] = col.base
	}
	return &Solution{Status: StatusOptimal, Objective: constCost, ColValues: values}
}

func cloneTerms(terms map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(terms)+1)
	for k, v := range terms {
		out[k] = v
	}
	return out
}
