package sheet

// Bezier is a cubic-bezier timing curve through (0,0), (X1,Y1), (X2,Y2) and
// (1,1).
type Bezier struct {
	X1, Y1, X2, Y2 float64
}

// FastOutSlowIn accelerates quickly and settles slowly.
var FastOutSlowIn = Bezier{X1: 0.4, Y1: 0, X2: 0.2, Y2: 1}

func bezierAt(p1, p2, s float64) float64 {
	r := 1 - s
	return 3*r*r*s*p1 + 3*r*s*s*p2 + s*s*s
}

// Ease maps linear time t in [0,1] to animated progress.
func (b Bezier) Ease(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}

	// x(s) is monotonic for control points inside the unit square.
	lo, hi := 0.0, 1.0
	s := t
	for range 32 {
		x := bezierAt(b.X1, b.X2, s)
		if x < t {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return bezierAt(b.Y1, b.Y2, s)
}
