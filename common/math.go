package common

import (
	"math"
	"math/big"
)

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// / Checks that the specified 2D point's components are all finite.
// /  @param[in]		v	A point. [(x, z)]
func Visfinite2D(v Vec2) bool {
	return IsFinite(v[0]) && IsFinite(v[1])
}

// / Derives the signed area (times two) of the triangle ABC on the ground plane.
// / Positive when C lies to the left of the directed line A->B (counter-clockwise).
// /  @param[in]		a		Vertex A. [(x, z)]
// /  @param[in]		b		Vertex B. [(x, z)]
// /  @param[in]		c		Vertex C. [(x, z)]
// / @return The signed doubled area of the triangle.
func Orient2D(a, b, c Vec2) float64 {
	abx := float64(b[0]) - float64(a[0])
	aby := float64(b[1]) - float64(a[1])
	acx := float64(c[0]) - float64(a[0])
	acy := float64(c[1]) - float64(a[1])
	det := abx*acy - aby*acx
	if math.Abs(det) > orientErrBound*(math.Abs(abx*acy)+math.Abs(aby*acx)) {
		return det
	}
	return orient2DExact(a, b, c)
}

// InCircle is positive when d lies strictly inside the circumcircle of the
// counter-clockwise triangle abc, zero when the four points are cocircular.
func InCircle(a, b, c, d Vec2) float64 {
	adx := float64(a[0]) - float64(d[0])
	ady := float64(a[1]) - float64(d[1])
	bdx := float64(b[0]) - float64(d[0])
	bdy := float64(b[1]) - float64(d[1])
	cdx := float64(c[0]) - float64(d[0])
	cdy := float64(c[1]) - float64(d[1])

	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy

	det := adx*(bdy*cd-bd*cdy) -
		ady*(bdx*cd-bd*cdx) +
		ad*(bdx*cdy-bdy*cdx)
	permanent := (math.Abs(bdx*cdy)+math.Abs(cdx*bdy))*ad +
		(math.Abs(cdx*ady)+math.Abs(adx*cdy))*bd +
		(math.Abs(adx*bdy)+math.Abs(bdx*ady))*cd
	if math.Abs(det) > inCircleErrBound*permanent {
		return det
	}
	return inCircleExact(a, b, c, d)
}

// Relative error bounds of the float64 evaluations above. Results closer to
// zero are recomputed exactly so that near-degenerate configurations get a
// consistent sign.
const (
	orientErrBound   = 1e-15
	inCircleErrBound = 1e-14
	exactPrec        = 1024
)

func bigf(v float64) *big.Float {
	return new(big.Float).SetPrec(exactPrec).SetFloat64(v)
}

func bigSub(x, y float32) *big.Float {
	return new(big.Float).SetPrec(exactPrec).Sub(bigf(float64(x)), bigf(float64(y)))
}

func bigMul(x, y *big.Float) *big.Float {
	return new(big.Float).SetPrec(exactPrec).Mul(x, y)
}

func bigAdd(x, y *big.Float) *big.Float {
	return new(big.Float).SetPrec(exactPrec).Add(x, y)
}

func bigSubf(x, y *big.Float) *big.Float {
	return new(big.Float).SetPrec(exactPrec).Sub(x, y)
}

// toFloat64 keeps the sign of tiny non-zero results that would underflow.
func toFloat64(x *big.Float) float64 {
	f, _ := x.Float64()
	if f == 0 && x.Sign() != 0 {
		return float64(x.Sign()) * math.SmallestNonzeroFloat64
	}
	return f
}

func orient2DExact(a, b, c Vec2) float64 {
	abx, aby := bigSub(b[0], a[0]), bigSub(b[1], a[1])
	acx, acy := bigSub(c[0], a[0]), bigSub(c[1], a[1])
	return toFloat64(bigSubf(bigMul(abx, acy), bigMul(aby, acx)))
}

func inCircleExact(a, b, c, d Vec2) float64 {
	adx, ady := bigSub(a[0], d[0]), bigSub(a[1], d[1])
	bdx, bdy := bigSub(b[0], d[0]), bigSub(b[1], d[1])
	cdx, cdy := bigSub(c[0], d[0]), bigSub(c[1], d[1])

	ad := bigAdd(bigMul(adx, adx), bigMul(ady, ady))
	bd := bigAdd(bigMul(bdx, bdx), bigMul(bdy, bdy))
	cd := bigAdd(bigMul(cdx, cdx), bigMul(cdy, cdy))

	t1 := bigMul(adx, bigSubf(bigMul(bdy, cd), bigMul(bd, cdy)))
	t2 := bigMul(ady, bigSubf(bigMul(bdx, cd), bigMul(bd, cdx)))
	t3 := bigMul(ad, bigSubf(bigMul(bdx, cdy), bigMul(bdy, cdx)))
	return toFloat64(bigAdd(bigSubf(t1, t2), t3))
}

// / Returns true if c lies strictly between a and b, assuming the three are collinear.
func BetweenStrict(a, b, c Vec2) bool {
	if a[0] != b[0] {
		return (a[0] < c[0] && c[0] < b[0]) || (b[0] < c[0] && c[0] < a[0])
	}
	return (a[1] < c[1] && c[1] < b[1]) || (b[1] < c[1] && c[1] < a[1])
}
