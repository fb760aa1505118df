// Package config loads hjson scene files describing the terrain and the
// obstacles fed to the navmesh store.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorustyt/polynavmesh/common"
	"github.com/gorustyt/polynavmesh/common/logger"
	"github.com/gorustyt/polynavmesh/navmesh"
	"github.com/gorustyt/polynavmesh/obstacle"
	"github.com/hjson/hjson-go/v4"
)

var ErrUnknownShape = errors.New("config: unknown shape type")

// Scene is the root of a scene file. Updates lists batches of obstacles
// arriving after the initial build.
type Scene struct {
	Logger      logger.Config      `json:"logger"`
	Heightfield HeightfieldConfig  `json:"heightfield"`
	Workers     int                `json:"workers"`
	Debug       DebugConfig        `json:"debug"`
	Obstacles   []ObstacleConfig   `json:"obstacles"`
	Updates     [][]ObstacleConfig `json:"updates"`
}

type HeightfieldConfig struct {
	Scale [3]float32 `json:"scale"`
}

type DebugConfig struct {
	DrawCdt bool   `json:"drawCdt"`
	Out     string `json:"out"` // OBJ file for the debug lines
}

type ObstacleConfig struct {
	ID        string          `json:"id"`
	Shape     ShapeConfig     `json:"shape"`
	Transform TransformConfig `json:"transform"`
}

// ShapeConfig holds the union of all shape parameters; Type picks which apply.
type ShapeConfig struct {
	Type         string       `json:"type"`
	HalfExtents  [3]float32   `json:"halfExtents"`
	Radius       float32      `json:"radius"`
	HalfHeight   float32      `json:"halfHeight"`
	BorderRadius float32      `json:"borderRadius"`
	Points       [][3]float32 `json:"points"`
	Indices      [][3]uint32  `json:"indices"`
	Normal       [3]float32   `json:"normal"`
	Rows         int          `json:"rows"`
	Cols         int          `json:"cols"`
	Heights      []float32    `json:"heights"`
	Scale        [3]float32   `json:"scale"`
	Name         string       `json:"name"`
	Parts        []PartConfig `json:"parts"`
}

type PartConfig struct {
	Shape     ShapeConfig     `json:"shape"`
	Transform TransformConfig `json:"transform"`
}

// TransformConfig: rotation is a quaternion (x, y, z, w). Omitted rotation
// and scale mean identity.
type TransformConfig struct {
	Translation [3]float32  `json:"translation"`
	Rotation    *[4]float32 `json:"rotation"`
	Scale       *[3]float32 `json:"scale"`
}

// Load reads and parses an hjson scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte) (*Scene, error) {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	s := new(Scene)
	if err := hjson.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if err := s.HeightfieldValue().Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func vec3(v [3]float32) common.Vec3 {
	return common.Vec3{v[0], v[1], v[2]}
}

func (s *Scene) HeightfieldValue() navmesh.Heightfield {
	return navmesh.Heightfield{Scale: vec3(s.Heightfield.Scale)}
}

// InitialObstacles converts the obstacles known at build time.
func (s *Scene) InitialObstacles() ([]navmesh.Obstacle, error) {
	return convertAll(s.Obstacles)
}

// UpdateBatches converts every update batch, in order.
func (s *Scene) UpdateBatches() ([][]navmesh.Obstacle, error) {
	res := make([][]navmesh.Obstacle, 0, len(s.Updates))
	for i, batch := range s.Updates {
		obs, err := convertAll(batch)
		if err != nil {
			return nil, fmt.Errorf("update %d: %w", i, err)
		}
		res = append(res, obs)
	}
	return res, nil
}

func convertAll(cfgs []ObstacleConfig) ([]navmesh.Obstacle, error) {
	res := make([]navmesh.Obstacle, 0, len(cfgs))
	for _, c := range cfgs {
		ob, err := c.Obstacle()
		if err != nil {
			return nil, err
		}
		res = append(res, ob)
	}
	return res, nil
}

func (c ObstacleConfig) Obstacle() (navmesh.Obstacle, error) {
	shape, err := c.Shape.Shape()
	if err != nil {
		return navmesh.Obstacle{}, fmt.Errorf("obstacle %q: %w", c.ID, err)
	}
	return navmesh.Obstacle{ID: c.ID, Shape: shape, Transform: c.Transform.Transform()}, nil
}

func (c TransformConfig) Transform() obstacle.Transform {
	t := obstacle.Identity()
	t.Translation = vec3(c.Translation)
	if c.Rotation != nil {
		r := *c.Rotation
		t.Rotation = mgl32.Quat{W: r[3], V: common.Vec3{r[0], r[1], r[2]}}
	}
	if c.Scale != nil {
		t.Scale = vec3(*c.Scale)
	}
	return t
}

func (c ShapeConfig) points() []common.Vec3 {
	res := make([]common.Vec3, len(c.Points))
	for i, p := range c.Points {
		res[i] = vec3(p)
	}
	return res
}

func (c ShapeConfig) point(i int) common.Vec3 {
	if i < len(c.Points) {
		return vec3(c.Points[i])
	}
	return common.Vec3{}
}

func (c ShapeConfig) Shape() (obstacle.Shape, error) {
	kind, ok := obstacle.ParseShapeKind(c.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, c.Type)
	}
	box := obstacle.Box{HalfExtents: vec3(c.HalfExtents)}
	triangle := obstacle.Triangle{A: c.point(0), B: c.point(1), C: c.point(2)}
	cylinder := obstacle.Cylinder{HalfHeight: c.HalfHeight, Radius: c.Radius}
	cone := obstacle.Cone{HalfHeight: c.HalfHeight, Radius: c.Radius}
	hull := obstacle.ConvexHull{Points: c.points()}

	switch kind {
	case obstacle.KindBox:
		return box, nil
	case obstacle.KindSphere:
		return obstacle.Sphere{Radius: c.Radius}, nil
	case obstacle.KindCapsule:
		return obstacle.Capsule{HalfHeight: c.HalfHeight, Radius: c.Radius}, nil
	case obstacle.KindSegment:
		return obstacle.Segment{A: c.point(0), B: c.point(1)}, nil
	case obstacle.KindTriangle:
		return triangle, nil
	case obstacle.KindTriMesh:
		return obstacle.TriMesh{Vertices: c.points(), Indices: c.Indices}, nil
	case obstacle.KindConvexHull:
		return hull, nil
	case obstacle.KindCylinder:
		return cylinder, nil
	case obstacle.KindCone:
		return cone, nil
	case obstacle.KindRoundBox:
		return obstacle.RoundBox{Inner: box, BorderRadius: c.BorderRadius}, nil
	case obstacle.KindRoundTriangle:
		return obstacle.RoundTriangle{Inner: triangle, BorderRadius: c.BorderRadius}, nil
	case obstacle.KindRoundCylinder:
		return obstacle.RoundCylinder{Inner: cylinder, BorderRadius: c.BorderRadius}, nil
	case obstacle.KindRoundCone:
		return obstacle.RoundCone{Inner: cone, BorderRadius: c.BorderRadius}, nil
	case obstacle.KindRoundConvexHull:
		return obstacle.RoundConvexHull{Inner: hull, BorderRadius: c.BorderRadius}, nil
	case obstacle.KindCompound:
		parts := make([]obstacle.CompoundPart, 0, len(c.Parts))
		for i, p := range c.Parts {
			s, err := p.Shape.Shape()
			if err != nil {
				return nil, fmt.Errorf("part %d: %w", i, err)
			}
			parts = append(parts, obstacle.CompoundPart{Shape: s, Transform: p.Transform.Transform()})
		}
		return obstacle.Compound{Parts: parts}, nil
	case obstacle.KindPolyline:
		return obstacle.Polyline{Vertices: c.points()}, nil
	case obstacle.KindHeightField:
		return obstacle.HeightField{Rows: c.Rows, Cols: c.Cols, Heights: c.Heights, Scale: vec3(c.Scale)}, nil
	case obstacle.KindHalfSpace:
		return obstacle.HalfSpace{Normal: vec3(c.Normal)}, nil
	case obstacle.KindCustom:
		return obstacle.Custom{Name: c.Name}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownShape, c.Type)
}
