package common

// Returns true iff c is strictly to the left of the directed
// line through a to b.
func Left(a, b, c Vec2) bool {
	return Orient2D(a, b, c) > 0
}

func Collinear(a, b, c Vec2) bool {
	return Orient2D(a, b, c) == 0
}

// Exclusive or: true iff exactly one argument is true.
func Xorb(x, y bool) bool {
	return x != y
}

// Returns true iff ab properly intersects cd: they share
// a point interior to both segments.  The properness of the
// intersection is ensured by using strict leftness.
func IntersectProp(a, b, c, d Vec2) bool {
	// Eliminate improper cases.
	if Collinear(a, b, c) || Collinear(a, b, d) ||
		Collinear(c, d, a) || Collinear(c, d, b) {
		return false
	}
	return Xorb(Left(a, b, c), Left(a, b, d)) && Xorb(Left(c, d, a), Left(c, d, b))
}

// Returns T iff (a,b,c) are collinear and point c lies
// on the closed segement ab.
func Between(a, b, c Vec2) bool {
	if !Collinear(a, b, c) {
		return false
	}
	// If ab not vertical, check betweenness on x; else on y.
	if a[0] != b[0] {
		return ((a[0] <= c[0]) && (c[0] <= b[0])) || ((a[0] >= c[0]) && (c[0] >= b[0]))
	}
	return ((a[1] <= c[1]) && (c[1] <= b[1])) || ((a[1] >= c[1]) && (c[1] >= b[1]))
}

// Returns true iff segments ab and cd intersect, properly or improperly.
func Intersect(a, b, c, d Vec2) bool {
	if IntersectProp(a, b, c, d) {
		return true
	}
	return Between(a, b, c) || Between(a, b, d) ||
		Between(c, d, a) || Between(c, d, b)
}

// SegmentIntersection returns the crossing point of the lines through ab and cd.
// ok is false when the lines are parallel.
func SegmentIntersection(a, b, c, d Vec2) (p Vec2, ok bool) {
	rx := float64(b[0]) - float64(a[0])
	ry := float64(b[1]) - float64(a[1])
	sx := float64(d[0]) - float64(c[0])
	sy := float64(d[1]) - float64(c[1])
	denom := rx*sy - ry*sx
	if denom == 0 {
		return Vec2{}, false
	}
	qpx := float64(c[0]) - float64(a[0])
	qpy := float64(c[1]) - float64(a[1])
	t := (qpx*sy - qpy*sx) / denom
	return Vec2{float32(float64(a[0]) + t*rx), float32(float64(a[1]) + t*ry)}, true
}

// RingArea2 returns twice the signed area of a closed ring; positive for
// counter-clockwise winding.
func RingArea2(ring []Vec2) float64 {
	var area float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := Next(i, n)
		area += float64(ring[i][0])*float64(ring[j][1]) - float64(ring[j][0])*float64(ring[i][1])
	}
	return area
}

// RingSelfIntersects reports whether two non-adjacent edges of the closed ring touch,
// or two adjacent edges overlap.
func RingSelfIntersects(ring []Vec2) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[Next(i, n)]
		for j := i + 1; j < n; j++ {
			c, d := ring[j], ring[Next(j, n)]
			switch {
			case Next(i, n) == j:
				// Shared vertex b == c; only a fold back onto ab counts.
				if Collinear(a, b, d) && (Between(a, b, d) || Between(c, d, a)) {
					return true
				}
			case Next(j, n) == i:
				if Collinear(c, d, b) && (Between(c, d, b) || Between(a, b, c)) {
					return true
				}
			default:
				if Intersect(a, b, c, d) {
					return true
				}
			}
		}
	}
	return false
}
