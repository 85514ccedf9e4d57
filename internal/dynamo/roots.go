package dynamo

import (
	"math"
	"sort"
)

// coefficients whose magnitude falls below degenerateTol relative to the
// largest coefficient are treated as zero when deciding the degree.
const degenerateTol = 1e-12

// SolveQuadratic returns the real roots of a*x^2 + b*x + c in ascending order.
func SolveQuadratic(a, b, c float64) []float64 {
	scale := math.Max(math.Abs(a), math.Max(math.Abs(b), math.Abs(c)))
	if scale == 0 {
		return nil
	}
	if math.Abs(a) <= degenerateTol*scale {
		return solveLinear(b, c, scale)
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		// tangent contact rounded just below zero
		if disc > -degenerateTol*b*b {
			return []float64{-b / (2 * a)}
		}
		return nil
	}

	sq := math.Sqrt(disc)
	q := -0.5 * (b + math.Copysign(sq, b))
	var roots []float64
	if q == 0 {
		roots = []float64{0, 0}
	} else {
		roots = []float64{q / a, c / q}
	}
	sort.Float64s(roots)
	return roots
}

func solveLinear(b, c, scale float64) []float64 {
	if math.Abs(b) <= degenerateTol*scale {
		return nil
	}
	return []float64{-c / b}
}

// SolveCubic returns the real roots of a*x^3 + b*x^2 + c*x + d in ascending order.
func SolveCubic(a, b, c, d float64) []float64 {
	scale := math.Max(math.Max(math.Abs(a), math.Abs(b)), math.Max(math.Abs(c), math.Abs(d)))
	if scale == 0 {
		return nil
	}
	if math.Abs(a) <= degenerateTol*scale {
		return SolveQuadratic(b, c, d)
	}

	A, B, C := b/a, c/a, d/a
	Q := (A*A - 3*B) / 9
	R := (2*A*A*A - 9*A*B + 27*C) / 54
	shift := A / 3

	var roots []float64
	if R*R < Q*Q*Q {
		theta := math.Acos(R / math.Sqrt(Q*Q*Q))
		sq := -2 * math.Sqrt(Q)
		roots = []float64{
			sq*math.Cos(theta/3) - shift,
			sq*math.Cos((theta+2*math.Pi)/3) - shift,
			sq*math.Cos((theta-2*math.Pi)/3) - shift,
		}
	} else {
		u := -math.Copysign(math.Cbrt(math.Abs(R)+math.Sqrt(R*R-Q*Q*Q)), R)
		v := 0.0
		if u != 0 {
			v = Q / u
		}
		roots = []float64{u + v - shift}
	}

	for i := range roots {
		roots[i] = polish(roots[i], []float64{a, b, c, d})
	}
	sort.Float64s(roots)
	return roots
}

// SolveQuartic returns the real roots of a*x^4 + b*x^3 + c*x^2 + d*x + e in
// ascending order, using Ferrari's resolvent cubic. Each root is refined with
// a few Newton steps on the original polynomial.
func SolveQuartic(a, b, c, d, e float64) []float64 {
	scale := math.Max(math.Max(math.Abs(a), math.Abs(b)), math.Max(math.Max(math.Abs(c), math.Abs(d)), math.Abs(e)))
	if scale == 0 {
		return nil
	}
	if math.Abs(a) <= degenerateTol*scale {
		return SolveCubic(b, c, d, e)
	}

	A, B, C, D := b/a, c/a, d/a, e/a
	shift := A / 4

	// depressed quartic y^4 + p*y^2 + q*y + r with x = y - A/4
	A2 := A * A
	p := B - 3*A2/8
	q := C - A*B/2 + A2*A/8
	r := D - A*C/4 + A2*B/16 - 3*A2*A2/256

	var ys []float64
	qScale := math.Max(math.Pow(math.Abs(p), 1.5), math.Pow(math.Abs(r), 0.75))
	if q == 0 || math.Abs(q) <= degenerateTol*qScale {
		for _, z := range SolveQuadratic(1, p, r) {
			switch {
			case z > 0:
				s := math.Sqrt(z)
				ys = append(ys, -s, s)
			case z == 0:
				ys = append(ys, 0)
			}
		}
	} else {
		// 8m^3 + 8p*m^2 + (2p^2 - 8r)*m - q^2 = 0 always has a positive root when q != 0
		m := 0.0
		for _, cand := range SolveCubic(8, 8*p, 2*p*p-8*r, -q*q) {
			if cand > m {
				m = cand
			}
		}
		if m <= 0 {
			return nil
		}
		s := math.Sqrt(2 * m)
		half := p/2 + m
		ys = append(ys, SolveQuadratic(1, -s, half+q/(2*s))...)
		ys = append(ys, SolveQuadratic(1, s, half-q/(2*s))...)
	}

	coeffs := []float64{a, b, c, d, e}
	roots := make([]float64, 0, len(ys))
	for _, y := range ys {
		roots = append(roots, polish(y-shift, coeffs))
	}
	sort.Float64s(roots)
	return roots
}

// EvalPoly evaluates the polynomial with coefficients in descending degree order.
func EvalPoly(coeffs []float64, x float64) float64 {
	v := 0.0
	for _, c := range coeffs {
		v = v*x + c
	}
	return v
}

func evalPolyDeriv(coeffs []float64, x float64) (float64, float64) {
	v, dv := 0.0, 0.0
	for _, c := range coeffs {
		dv = dv*x + v
		v = v*x + c
	}
	return v, dv
}

func polish(x float64, coeffs []float64) float64 {
	for i := 0; i < 3; i++ {
		v, dv := evalPolyDeriv(coeffs, x)
		if dv == 0 || math.IsNaN(v) {
			return x
		}
		next := x - v/dv
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return x
		}
		// only accept steps that improve the residual
		if nv := math.Abs(EvalPoly(coeffs, next)); nv > math.Abs(v) {
			return x
		}
		x = next
	}
	return x
}
