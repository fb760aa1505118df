// Package obstacle projects 3D collider shapes onto the ground plane as closed
// obstacle footprints.
package obstacle

import (
	"github.com/gorustyt/polynavmesh/common"
)

type ShapeKind int

const (
	KindBox ShapeKind = iota
	KindSphere
	KindCapsule
	KindSegment
	KindTriangle
	KindTriMesh
	KindConvexHull
	KindCylinder
	KindCone
	KindRoundBox
	KindRoundTriangle
	KindRoundCylinder
	KindRoundCone
	KindRoundConvexHull
	KindCompound
	KindPolyline
	KindHeightField
	KindHalfSpace
	KindCustom
	kindCount
)

var kindNames = [kindCount]string{
	KindBox:             "box",
	KindSphere:          "sphere",
	KindCapsule:         "capsule",
	KindSegment:         "segment",
	KindTriangle:        "triangle",
	KindTriMesh:         "trimesh",
	KindConvexHull:      "convex_hull",
	KindCylinder:        "cylinder",
	KindCone:            "cone",
	KindRoundBox:        "round_box",
	KindRoundTriangle:   "round_triangle",
	KindRoundCylinder:   "round_cylinder",
	KindRoundCone:       "round_cone",
	KindRoundConvexHull: "round_convex_hull",
	KindCompound:        "compound",
	KindPolyline:        "polyline",
	KindHeightField:     "heightfield",
	KindHalfSpace:       "halfspace",
	KindCustom:          "custom",
}

func (k ShapeKind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// ParseShapeKind maps a kind name as printed by String back to the kind.
func ParseShapeKind(s string) (ShapeKind, bool) {
	for k, name := range kindNames {
		if name == s {
			return ShapeKind(k), true
		}
	}
	return 0, false
}

// Permanent reports whether shapes of this kind can never act as obstacles,
// as opposed to kinds whose projection is simply not defined yet.
func (k ShapeKind) Permanent() bool {
	switch k {
	case KindPolyline, KindHeightField, KindHalfSpace, KindCustom:
		return true
	}
	return false
}

// Shape is the closed set of collider shapes. The set is sealed by the
// unexported footprint method: every variant carries its own projection.
type Shape interface {
	Kind() ShapeKind
	footprint(t Transform) (Footprint, error)
}

// Box is an axis-aligned cuboid in local space, centered on the origin.
type Box struct {
	HalfExtents common.Vec3
}

type Sphere struct {
	Radius float32
}

// Capsule is aligned with the local y axis.
type Capsule struct {
	HalfHeight float32
	Radius     float32
}

type Segment struct {
	A, B common.Vec3
}

type Triangle struct {
	A, B, C common.Vec3
}

type TriMesh struct {
	Vertices []common.Vec3
	Indices  [][3]uint32
}

type ConvexHull struct {
	Points []common.Vec3
}

type Cylinder struct {
	HalfHeight float32
	Radius     float32
}

type Cone struct {
	HalfHeight float32
	Radius     float32
}

type RoundBox struct {
	Inner        Box
	BorderRadius float32
}

type RoundTriangle struct {
	Inner        Triangle
	BorderRadius float32
}

type RoundCylinder struct {
	Inner        Cylinder
	BorderRadius float32
}

type RoundCone struct {
	Inner        Cone
	BorderRadius float32
}

type RoundConvexHull struct {
	Inner        ConvexHull
	BorderRadius float32
}

// CompoundPart places one child shape relative to the compound's own frame.
type CompoundPart struct {
	Shape     Shape
	Transform Transform
}

type Compound struct {
	Parts []CompoundPart
}

type Polyline struct {
	Vertices []common.Vec3
}

// HeightField is a grid of heights spanning Scale on x and z.
type HeightField struct {
	Rows, Cols int
	Heights    []float32
	Scale      common.Vec3
}

type HalfSpace struct {
	Normal common.Vec3
}

// Custom stands for a user-defined collider the projector knows nothing about.
type Custom struct {
	Name string
}

func (Box) Kind() ShapeKind             { return KindBox }
func (Sphere) Kind() ShapeKind          { return KindSphere }
func (Capsule) Kind() ShapeKind         { return KindCapsule }
func (Segment) Kind() ShapeKind         { return KindSegment }
func (Triangle) Kind() ShapeKind        { return KindTriangle }
func (TriMesh) Kind() ShapeKind         { return KindTriMesh }
func (ConvexHull) Kind() ShapeKind      { return KindConvexHull }
func (Cylinder) Kind() ShapeKind        { return KindCylinder }
func (Cone) Kind() ShapeKind            { return KindCone }
func (RoundBox) Kind() ShapeKind        { return KindRoundBox }
func (RoundTriangle) Kind() ShapeKind   { return KindRoundTriangle }
func (RoundCylinder) Kind() ShapeKind   { return KindRoundCylinder }
func (RoundCone) Kind() ShapeKind       { return KindRoundCone }
func (RoundConvexHull) Kind() ShapeKind { return KindRoundConvexHull }
func (Compound) Kind() ShapeKind        { return KindCompound }
func (Polyline) Kind() ShapeKind        { return KindPolyline }
func (HeightField) Kind() ShapeKind     { return KindHeightField }
func (HalfSpace) Kind() ShapeKind       { return KindHalfSpace }
func (Custom) Kind() ShapeKind          { return KindCustom }
