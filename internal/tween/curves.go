// Package tween provides the animation engine: float tweens stepped by the
// frame loop, with CSS-style easing curves and an awaitable completion
// signal.
package tween

import "math"

// Curve transforms linear progress in [0,1] into eased progress.
type Curve func(float64) float64

// Linear applies no easing.
func Linear(t float64) float64 { return t }

// Standard curves matching their CSS counterparts.
var (
	Ease      = Bezier(0.25, 0.1, 0.25, 1.0)
	EaseIn    = Bezier(0.42, 0.0, 1.0, 1.0)
	EaseOut   = Bezier(0.0, 0.0, 0.58, 1.0)
	EaseInOut = Bezier(0.42, 0.0, 0.58, 1.0)
	// Expo is the snappy default used for page transitions.
	Expo = Bezier(0.16, 1.0, 0.3, 1.0)
)

// Bezier builds a cubic-bezier easing curve from the two control points
// (x1,y1) and (x2,y2), anchored at (0,0) and (1,1).
func Bezier(x1, y1, x2, y2 float64) Curve {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return bezierAxis(y1, y2, solveBezierT(x1, x2, t))
	}
}

// bezierAxis evaluates one axis of the cubic bezier at parameter u.
func bezierAxis(p1, p2, u float64) float64 {
	inv := 1 - u
	return 3*inv*inv*u*p1 + 3*inv*u*u*p2 + u*u*u
}

func bezierAxisDeriv(p1, p2, u float64) float64 {
	inv := 1 - u
	return 3*inv*inv*p1 + 6*inv*u*(p2-p1) + 3*u*u*(1-p2)
}

const bezierTolerance = 1e-7

// solveBezierT finds the curve parameter whose x-coordinate equals x, using
// Newton iteration with a bisection fallback for flat regions.
func solveBezierT(x1, x2, x float64) float64 {
	u := x
	for i := 0; i < 8; i++ {
		err := bezierAxis(x1, x2, u) - x
		if math.Abs(err) < bezierTolerance {
			return u
		}
		d := bezierAxisDeriv(x1, x2, u)
		if math.Abs(d) < bezierTolerance {
			break
		}
		u -= err / d
	}

	lo, hi := 0.0, 1.0
	if u < lo {
		u = lo
	} else if u > hi {
		u = hi
	}
	for i := 0; i < 16 && hi-lo > bezierTolerance; i++ {
		if bezierAxis(x1, x2, u) < x {
			lo = u
		} else {
			hi = u
		}
		u = (lo + hi) / 2
	}
	return u
}
