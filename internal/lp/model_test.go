package lp

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddVarTracksBoundsAndCosts(t *testing.T) {
	m := NewModel("test")
	x := m.AddVar("x", 0, 10, 2.5)
	y := m.AddVar("y", -1, Inf(), 0)

	assert.Equal(t, 2, m.NumVars())
	assert.Equal(t, 2.5, m.ColCosts[x])
	assert.Equal(t, 0.0, m.ColLower[x])
	assert.Equal(t, 10.0, m.ColUpper[x])
	assert.Equal(t, -1.0, m.ColLower[y])
	assert.True(t, math.IsInf(m.ColUpper[y], 1))
}

func TestAddVarsNamesSequentially(t *testing.T) {
	m := NewModel("test")
	vars := m.AddVars("prod", 3, 0, Inf(), 1)
	require.Len(t, vars, 3)
	assert.Equal(t, "prod_0", m.ColNames[vars[0]])
	assert.Equal(t, "prod_2", m.ColNames[vars[2]])
}

func TestAddCostAccumulates(t *testing.T) {
	m := NewModel("test")
	x := m.AddVar("x", 0, Inf(), 1)
	m.AddCost(x, 2)
	assert.Equal(t, 3.0, m.ColCosts[x])
}

func TestAddRangeMovesConstantIntoBounds(t *testing.T) {
	m := NewModel("test")
	x := m.AddVar("x", 0, Inf(), 1)
	expr := Term(x, 1).Plus(Constant(5))
	err := m.AddRange("r", 10, expr, 20)
	require.NoError(t, err)
	require.Equal(t, 1, m.NumRows())
	assert.Equal(t, 5.0, m.RowLower[0])
	assert.Equal(t, 15.0, m.RowUpper[0])
}

func TestAddRangeDropsTrivialRow(t *testing.T) {
	m := NewModel("test")
	err := m.AddRange("r", 0, Constant(3), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, m.NumRows())
}

func TestAddRangeRejectsInfeasibleConstantRow(t *testing.T) {
	m := NewModel("test")
	err := m.AddRange("r", 10, Constant(3), 20)
	assert.Error(t, err)
}

func TestExprArithmetic(t *testing.T) {
	x, y := Var(0), Var(1)
	e := Term(x, 2).Plus(Term(y, 3)).Plus(Constant(1)).Scale(2)
	assert.Equal(t, 4.0, e.Terms[x])
	assert.Equal(t, 6.0, e.Terms[y])
	assert.Equal(t, 2.0, e.Const)

	d := Term(x, 2).Minus(Term(x, 2))
	assert.Equal(t, 0.0, d.Terms[x])
}

func TestWriteLPRoundsUpFullSections(t *testing.T) {
	m := NewModel("tiny")
	x := m.AddVar("x", 0, 4, 3)
	y := m.AddVar("y", -1, Inf(), -2)
	require.NoError(t, m.AddAtLeast("cover", Term(x, 1).Plus(Term(y, 1)), 1))
	require.NoError(t, m.AddEquality("fix", Term(x, 2), 2))

	var sb strings.Builder
	require.NoError(t, WriteLP(&sb, m))
	out := sb.String()

	assert.Contains(t, out, "Minimize")
	assert.Contains(t, out, "3 x")
	assert.Contains(t, out, "cover: x + y >= 1")
	assert.Contains(t, out, "fix: 2 x = 2")
	assert.Contains(t, out, "0 <= x <= 4")
	assert.Contains(t, out, "y >= -1")
	assert.Contains(t, out, "End")
}

func TestWriteLPSanitisesNames(t *testing.T) {
	assert.Equal(t, "a_b_c", lpName("a-b c"))
	assert.Equal(t, "_1x", lpName("1x"))
	assert.Equal(t, "_", lpName(""))
}
