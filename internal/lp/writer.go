package lp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
)

// WriteLP serialises the model in CPLEX LP text format. The output is
// meant for debugging and for feeding external solvers, so variable and
// constraint names are sanitised but otherwise preserved.
func WriteLP(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)

	if m.Name != "" {
		fmt.Fprintf(bw, "\\ %s\n", m.Name)
	}
	if m.Maximize {
		fmt.Fprintln(bw, "Maximize")
	} else {
		fmt.Fprintln(bw, "Minimize")
	}

	fmt.Fprint(bw, " obj:")
	wrote := false
	for i, cost := range m.ColCosts {
		if cost == 0 {
			continue
		}
		writeTerm(bw, cost, lpName(m.ColNames[i]), wrote)
		wrote = true
	}
	if m.Offset != 0 {
		writeTerm(bw, m.Offset, "", wrote)
		wrote = true
	}
	if !wrote {
		fmt.Fprint(bw, " 0 "+lpName(m.ColNames[0]))
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Subject To")
	for r, row := range m.Rows {
		lo, hi := m.RowLower[r], m.RowUpper[r]
		name := lpName(m.RowNames[r])
		switch {
		case hi-lo < rowTolerance:
			writeRow(bw, name, row, m, "=", lo)
		case math.IsInf(lo, -1):
			writeRow(bw, name, row, m, "<=", hi)
		case math.IsInf(hi, 1):
			writeRow(bw, name, row, m, ">=", lo)
		default:
			// LP format has no two-sided rows, so a range row
			// becomes a pair of constraints.
			writeRow(bw, name+"_lo", row, m, ">=", lo)
			writeRow(bw, name+"_hi", row, m, "<=", hi)
		}
	}

	fmt.Fprintln(bw, "Bounds")
	for i := range m.ColCosts {
		lo, hi := m.ColLower[i], m.ColUpper[i]
		name := lpName(m.ColNames[i])
		switch {
		case math.IsInf(lo, -1) && math.IsInf(hi, 1):
			fmt.Fprintf(bw, " %s free\n", name)
		case math.IsInf(hi, 1):
			if lo != 0 {
				fmt.Fprintf(bw, " %s >= %s\n", name, lpNum(lo))
			}
		case math.IsInf(lo, -1):
			fmt.Fprintf(bw, " -inf <= %s <= %s\n", name, lpNum(hi))
		default:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", lpNum(lo), name, lpNum(hi))
		}
	}

	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

func writeRow(w io.Writer, name string, row map[Var]float64, m *Model, op string, rhs float64) {
	fmt.Fprintf(w, " %s:", name)
	vars := make([]Var, 0, len(row))
	for v := range row {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	wrote := false
	for _, v := range vars {
		coef := row[v]
		if coef == 0 {
			continue
		}
		writeTerm(w, coef, lpName(m.ColNames[int(v)]), wrote)
		wrote = true
	}
	if !wrote {
		fmt.Fprint(w, " 0 "+lpName(m.ColNames[0]))
	}
	fmt.Fprintf(w, " %s %s\n", op, lpNum(rhs))
}

func writeTerm(w io.Writer, coef float64, name string, follow bool) {
	sign := "+"
	if coef < 0 {
		sign = "-"
		coef = -coef
	}
	if follow || sign == "-" {
		fmt.Fprintf(w, " %s", sign)
	}
	if name == "" {
		fmt.Fprintf(w, " %s", lpNum(coef))
	} else if coef == 1 {
		fmt.Fprintf(w, " %s", name)
	} else {
		fmt.Fprintf(w, " %s %s", lpNum(coef), name)
	}
}

func lpNum(v float64) string {
	return fmt.Sprintf("%g", v)
}

// lpName replaces characters the LP format reserves. Names must not
// start with a digit or contain operators.
func lpName(name string) string {
	out := make([]rune, 0, len(name))
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			out = append(out, r)
		case r >= '0' && r <= '9':
			if i == 0 {
				out = append(out, '_')
			}
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "_"
	}
	return string(out)
}
