package sgp4

import "math"

const (
	keplerTolerance = 1.0e-12
	keplerMaxIter   = 10
	keplerMaxStep   = 0.95
)

// keplerSolution is the eccentric longitude E+omega solving Kepler's equation
// in the (axnl, aynl) eccentricity vector form. sin and cos are those of the
// estimate the last correction was computed from.
type keplerSolution struct {
	eo1        float64
	sin, cos   float64
	iterations int
	converged  bool
}

// solveKepler runs Newton-Raphson from u with each correction clamped to
// +-0.95 rad. It stops when the correction drops below 1e-12 or after ten
// iterations, whichever comes first.
func solveKepler(u, axnl, aynl float64) keplerSolution {
	s := keplerSolution{eo1: u}
	tem5 := 9999.9
	for math.Abs(tem5) >= keplerTolerance && s.iterations < keplerMaxIter {
		s.sin = math.Sin(s.eo1)
		s.cos = math.Cos(s.eo1)
		tem5 = 1.0 - s.cos*axnl - s.sin*aynl
		tem5 = (u - aynl*s.cos + axnl*s.sin - s.eo1) / tem5
		if math.Abs(tem5) >= keplerMaxStep {
			tem5 = math.Copysign(keplerMaxStep, tem5)
		}
		s.eo1 = s.eo1 + tem5
		s.iterations++
	}
	s.converged = math.Abs(tem5) < keplerTolerance
	return s
}
