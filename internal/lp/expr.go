package lp

// Expr is an affine expression over model columns: Const + Σ Terms[v]·v.
// The zero value is a valid empty expression.
type Expr struct {
	Const float64
	Terms map[Var]float64
}

// Term returns the expression coef·v.
func Term(v Var, coef float64) Expr {
	return Expr{Terms: map[Var]float64{v: coef}}
}

// Constant returns a constant expression.
func Constant(c float64) Expr {
	return Expr{Const: c}
}

// Add accumulates coef·v into the expression.
func (e *Expr) Add(v Var, coef float64) {
	if e.Terms == nil {
		e.Terms = map[Var]float64{}
	}
	e.Terms[v] += coef
}

// AddConst accumulates a constant into the expression.
func (e *Expr) AddConst(c float64) { e.Const += c }

// AddExpr accumulates another expression into this one.
func (e *Expr) AddExpr(other Expr) {
	e.Const += other.Const
	for v, coef := range other.Terms {
		e.Add(v, coef)
	}
}

// Plus returns e + other without modifying either.
func (e Expr) Plus(other Expr) Expr {
	out := e.clone()
	out.AddExpr(other)
	return out
}

// Minus returns e - other without modifying either.
func (e Expr) Minus(other Expr) Expr {
	out := e.clone()
	out.Const -= other.Const
	for v, coef := range other.Terms {
		out.Add(v, -coef)
	}
	return out
}

// Scale returns k·e without modifying e.
func (e Expr) Scale(k float64) Expr {
	out := Expr{Const: e.Const * k}
	for v, coef := range e.Terms {
		out.Add(v, coef*k)
	}
	return out
}

func (e Expr) clone() Expr {
	out := Expr{Const: e.Const}
	for v, coef := range e.Terms {
		out.Add(v, coef)
	}
	return out
}
