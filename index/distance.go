package index

import (
	"cmp"
	"math"
)

// Dist2 is a squared distance held as Frac * 2^Exp with Frac in [0.5, 1).
//
// The exponent is an int, not an 11-bit field, so the square of any finite
// coordinate difference is represented without overflow or underflow. Each
// operation rounds like the matching float64 operation would, which keeps
// comparisons monotone. The zero value is a zero distance.
type Dist2 struct {
	Frac float64
	Exp  int
}

// Inf2 is larger than every finite Dist2.
var Inf2 = Dist2{Frac: math.Inf(1)}

func normDist2(f float64, exp int) Dist2 {
	if f == 0 || math.IsInf(f, 1) {
		return Dist2{Frac: f}
	}
	frac, e := math.Frexp(f)
	return Dist2{Frac: frac, Exp: exp + e}
}

// SquaredDiff returns (a-b)² for finite a and b.
func SquaredDiff(a, b float64) Dist2 {
	d := a - b
	shift := 0
	if math.IsInf(d, 0) {
		// Both operands are huge, so halving them is exact.
		d = a/2 - b/2
		shift = 2
	}
	if d == 0 {
		return Dist2{}
	}
	frac, e := math.Frexp(math.Abs(d))
	return normDist2(frac*frac, 2*e+shift)
}

// Square returns v² for v >= 0. +Inf yields Inf2.
func Square(v float64) Dist2 {
	if math.IsInf(v, 1) {
		return Inf2
	}
	return SquaredDiff(v, 0)
}

// SquaredDistance returns dx² + dy².
func SquaredDistance(a, b Coord) Dist2 {
	return SquaredDiff(a.X, b.X).Add(SquaredDiff(a.Y, b.Y))
}

// Add returns d + o.
func (d Dist2) Add(o Dist2) Dist2 {
	switch {
	case d.Frac == 0 || math.IsInf(o.Frac, 1):
		return o
	case o.Frac == 0 || math.IsInf(d.Frac, 1):
		return d
	}
	if d.Exp < o.Exp {
		d, o = o, d
	}
	// A term more than 1074 binary orders below the other vanishes, as it
	// would when rounding the exact sum.
	return normDist2(d.Frac+math.Ldexp(o.Frac, o.Exp-d.Exp), d.Exp)
}

func (d Dist2) class() int {
	switch {
	case d.Frac == 0:
		return 0
	case math.IsInf(d.Frac, 1):
		return 2
	default:
		return 1
	}
}

// Compare returns -1, 0 or +1 as d is less than, equal to or greater than o.
func (d Dist2) Compare(o Dist2) int {
	if c := cmp.Compare(d.class(), o.class()); c != 0 || d.class() != 1 {
		return c
	}
	if c := cmp.Compare(d.Exp, o.Exp); c != 0 {
		return c
	}
	return cmp.Compare(d.Frac, o.Frac)
}

// Sqrt returns the distance. It is +Inf only when the distance exceeds
// math.MaxFloat64, which takes coordinates of opposite sign beyond 9e307.
func (d Dist2) Sqrt() float64 {
	if d.class() != 1 {
		return d.Frac
	}
	f, e := d.Frac, d.Exp
	if e%2 != 0 {
		f *= 2
		e--
	}
	return math.Ldexp(math.Sqrt(f), e/2)
}

// Float64 returns d as a float64, saturating to 0 or +Inf out of range.
func (d Dist2) Float64() float64 {
	if d.class() != 1 {
		return d.Frac
	}
	return math.Ldexp(d.Frac, d.Exp)
}

// WithinRadius is the radius membership predicate shared by all indexes.
// r2 is Square(r). A zero radius admits exactly coincident points only,
// since every nonzero difference has a nonzero square.
func WithinRadius(q, p Coord, r2 Dist2) (Dist2, bool) {
	d2 := SquaredDistance(q, p)
	return d2, d2.Compare(r2) <= 0
}
