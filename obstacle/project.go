package obstacle

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorustyt/polynavmesh/common"
)

// Footprint is a closed ring on the ground plane without a repeated closing point.
type Footprint []common.Vec2

// Project converts shape placed at t into its ground-plane footprint.
func Project(shape Shape, t Transform) (Footprint, error) {
	if shape == nil {
		return nil, ErrNilShape
	}
	return shape.footprint(t)
}

// The four bottom corners at local y=0, each moved to world space, keeping
// world x and z.
func (s Box) footprint(t Transform) (Footprint, error) {
	hx, hz := s.HalfExtents.X(), s.HalfExtents.Z()
	corners := [4]common.Vec3{
		{-hx, 0, -hz},
		{-hx, 0, hz},
		{hx, 0, hz},
		{hx, 0, -hz},
	}
	m := t.Mat4()
	fp := make(Footprint, len(corners))
	for i, c := range corners {
		fp[i] = common.XZ(mgl32.TransformCoordinate(c, m))
	}
	return fp, nil
}

func (s Sphere) footprint(Transform) (Footprint, error)          { return nil, unsupported(s.Kind()) }
func (s Capsule) footprint(Transform) (Footprint, error)         { return nil, unsupported(s.Kind()) }
func (s Segment) footprint(Transform) (Footprint, error)         { return nil, unsupported(s.Kind()) }
func (s Triangle) footprint(Transform) (Footprint, error)        { return nil, unsupported(s.Kind()) }
func (s TriMesh) footprint(Transform) (Footprint, error)         { return nil, unsupported(s.Kind()) }
func (s ConvexHull) footprint(Transform) (Footprint, error)      { return nil, unsupported(s.Kind()) }
func (s Cylinder) footprint(Transform) (Footprint, error)        { return nil, unsupported(s.Kind()) }
func (s Cone) footprint(Transform) (Footprint, error)            { return nil, unsupported(s.Kind()) }
func (s RoundBox) footprint(Transform) (Footprint, error)        { return nil, unsupported(s.Kind()) }
func (s RoundTriangle) footprint(Transform) (Footprint, error)   { return nil, unsupported(s.Kind()) }
func (s RoundCylinder) footprint(Transform) (Footprint, error)   { return nil, unsupported(s.Kind()) }
func (s RoundCone) footprint(Transform) (Footprint, error)       { return nil, unsupported(s.Kind()) }
func (s RoundConvexHull) footprint(Transform) (Footprint, error) { return nil, unsupported(s.Kind()) }
func (s Polyline) footprint(Transform) (Footprint, error)        { return nil, unsupported(s.Kind()) }
func (s HeightField) footprint(Transform) (Footprint, error)     { return nil, unsupported(s.Kind()) }
func (s HalfSpace) footprint(Transform) (Footprint, error)       { return nil, unsupported(s.Kind()) }
func (s Custom) footprint(Transform) (Footprint, error)          { return nil, unsupported(s.Kind()) }

// A compound with a single part is that part placed in the compound's frame.
// Several parts need the boolean union of their outlines; until that exists
// they are reported like the other undefined kinds.
func (s Compound) footprint(t Transform) (Footprint, error) {
	if len(s.Parts) != 1 {
		return nil, unsupported(s.Kind())
	}
	part := s.Parts[0]
	if part.Shape == nil {
		return nil, ErrNilShape
	}
	return part.Shape.footprint(t.Mul(part.Transform))
}
