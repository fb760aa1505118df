package navmesh

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/gorustyt/polynavmesh/cdt"
	"github.com/gorustyt/polynavmesh/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorustyt/polynavmesh/obstacle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func terrain50() Heightfield {
	return Heightfield{Scale: common.Vec3{50, 50, 50}}
}

func box(id string, x, z, hx, hz float32) Obstacle {
	return Obstacle{
		ID:        id,
		Shape:     obstacle.Box{HalfExtents: common.Vec3{hx, 1, hz}},
		Transform: obstacle.FromTranslation(x, 0, z),
	}
}

func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	return NewStore(terrain50(), append([]StoreOption{WithLogger(zaptest.NewLogger(t)), WithWorkers(3)}, opts...)...)
}

func containsVertex(m *NavMesh, p common.Vec2) bool {
	for _, v := range m.Vertices {
		if v == p {
			return true
		}
	}
	return false
}

type segment [2]common.Vec2

func constrainedSegments(tri *cdt.Triangulation) []segment {
	var res []segment
	tri.Edges(func(e cdt.Edge) bool {
		if e.Constrained {
			res = append(res, segment{tri.Position(e.A), tri.Position(e.B)})
		}
		return true
	})
	return res
}

func TestBuildWithoutObstacles(t *testing.T) {
	s := newTestStore(t)
	report, err := s.Build(nil)
	require.NoError(t, err)
	assert.True(t, report.Published)
	assert.EqualValues(t, 1, report.Generation)
	assert.Equal(t, 4, report.Vertices)
	assert.Equal(t, 2, report.Triangles)
	assert.Equal(t, 2, report.NavigableFaces)
	assert.NoError(t, report.Err())

	m := s.Handle().Load()
	require.NotNil(t, m)
	for _, c := range terrain50().Corners() {
		assert.True(t, containsVertex(m, c), "corner %v", c)
	}
}

func TestBuildBoxScenario(t *testing.T) {
	crate := box("crate", 0, 0, 1, 1)
	fp, err := obstacle.Project(crate.Shape, crate.Transform)
	require.NoError(t, err)
	assert.Equal(t, obstacle.Footprint{{-1, -1}, {-1, 1}, {1, 1}, {1, -1}}, fp)

	s := newTestStore(t)
	report, err := s.Build([]Obstacle{crate})
	require.NoError(t, err)
	assert.Equal(t, []string{"crate"}, report.Inserted)
	assert.Empty(t, report.Skipped)

	m := s.Handle().Load()
	for _, p := range []common.Vec2{
		{-25, -25}, {-25, 25}, {25, 25}, {25, -25},
		{-1, -1}, {-1, 1}, {1, 1}, {1, -1},
	} {
		assert.True(t, containsVertex(m, p), "vertex %v missing from export", p)
	}

	require.True(t, s.View(func(tri *cdt.Triangulation, nav NavigableFaceSet) {
		require.NoError(t, tri.Validate())
		assert.Equal(t, 4, tri.NumConstraintEdges())
		// The quad interior is two faces, each bounded by two outline edges.
		assert.Equal(t, tri.NumInnerFaces()-2, nav.Len())
		tri.InnerFaces(func(f cdt.Face) bool {
			if nav.Contains(f.ID) {
				assert.LessOrEqual(t, ConstrainedEdgeCount(f), 1)
			} else {
				assert.GreaterOrEqual(t, ConstrainedEdgeCount(f), 2)
			}
			return true
		})
	}))
	assert.Equal(t, len(m.Triangles), report.NavigableFaces)
}

func TestUpdateSkipsUnsupportedShape(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Build(nil)
	require.NoError(t, err)

	ball := Obstacle{ID: "ball", Shape: obstacle.Sphere{Radius: 2}, Transform: obstacle.FromTranslation(5, 0, 5)}
	report, err := s.Update([]Obstacle{ball, box("crate", -5, -5, 1, 1)})
	require.NoError(t, err)

	assert.Equal(t, []string{"crate"}, report.Inserted)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "ball", report.Skipped[0].ID)
	var uerr *obstacle.UnsupportedShapeError
	require.True(t, errors.As(report.Skipped[0], &uerr))
	assert.Equal(t, obstacle.KindSphere, uerr.Kind)
	assert.Error(t, report.Err())

	assert.True(t, report.Published)
	assert.EqualValues(t, 2, s.Handle().Generation())
	assert.True(t, s.Incorporated("crate"))
	assert.False(t, s.Incorporated("ball"))
	assert.True(t, containsVertex(s.Handle().Load(), common.Vec2{-6, -4}))
}

func TestUpdateOnlyProcessesNewObstacles(t *testing.T) {
	s := newTestStore(t)
	a := box("a", -10, -10, 2, 2)
	_, err := s.Build([]Obstacle{a})
	require.NoError(t, err)
	first := s.Handle().Load()

	report, err := s.Update([]Obstacle{a})
	require.NoError(t, err)
	assert.False(t, report.Published)
	assert.Empty(t, report.Inserted)
	assert.EqualValues(t, 1, report.Generation)
	assert.Same(t, first, s.Handle().Load())

	report, err = s.Update([]Obstacle{a, box("b", 10, 10, 2, 2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, report.Inserted)
	assert.True(t, report.Published)
	assert.EqualValues(t, 2, report.Generation)
}

func TestUpdateWithOnlyFailuresDoesNotPublish(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Build(nil)
	require.NoError(t, err)

	report, err := s.Update([]Obstacle{{ID: "wall", Shape: obstacle.HalfSpace{Normal: common.Vec3{1, 0, 0}}, Transform: obstacle.Identity()}})
	require.NoError(t, err)
	assert.False(t, report.Published)
	require.Len(t, report.Skipped, 1)
	assert.EqualValues(t, 1, s.Handle().Generation())
}

func TestMonotonicAccumulation(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Build([]Obstacle{box("a", -8, 3, 3, 2)})
	require.NoError(t, err)

	var before []segment
	s.View(func(tri *cdt.Triangulation, _ NavigableFaceSet) {
		before = constrainedSegments(tri)
	})
	require.Len(t, before, 4)

	_, err = s.Update([]Obstacle{box("b", 9, -4, 2, 5)})
	require.NoError(t, err)

	s.View(func(tri *cdt.Triangulation, _ NavigableFaceSet) {
		for _, seg := range before {
			a, ok := tri.VertexAt(seg[0])
			require.True(t, ok)
			b, ok := tri.VertexAt(seg[1])
			require.True(t, ok)
			assert.True(t, tri.IsConstraintEdge(a, b), "edge %v lost its constraint", seg)
		}
		assert.Equal(t, 8, tri.NumConstraintEdges())
	})
}

func TestIdempotentRebuild(t *testing.T) {
	var retired []*NavMesh
	s := newTestStore(t, WithRetireHook(func(old *NavMesh) { retired = append(retired, old) }))
	obs := []Obstacle{box("a", 0, 0, 1, 1), box("b", 7, -3, 2, 1), box("c", -12, 9, 3, 3)}

	r1, err := s.Build(obs)
	require.NoError(t, err)
	first := s.Handle().Load()
	r2, err := s.Build(obs)
	require.NoError(t, err)

	assert.Equal(t, r1.Vertices, r2.Vertices)
	assert.Equal(t, r1.Triangles, r2.Triangles)
	assert.Equal(t, r1.NavigableFaces, r2.NavigableFaces)
	assert.Equal(t, first.Vertices, s.Handle().Load().Vertices)
	assert.EqualValues(t, 2, r2.Generation)
	require.Len(t, retired, 1)
	assert.Same(t, first, retired[0])
}

func TestOverlappingBoxesSplitEachOther(t *testing.T) {
	s := newTestStore(t)
	report, err := s.Build([]Obstacle{box("a", 0, 0, 2, 2), box("b", 2, 2, 2, 2)})
	require.NoError(t, err)
	require.Empty(t, report.Skipped)

	s.View(func(tri *cdt.Triangulation, _ NavigableFaceSet) {
		require.NoError(t, tri.Validate())
		for _, p := range []common.Vec2{{2, 0}, {0, 2}} {
			_, ok := tri.VertexAt(p)
			assert.True(t, ok, "crossing point %v", p)
		}
		// Each outline is split into 6 pieces by the two crossings.
		assert.Equal(t, 12, tri.NumConstraintEdges())
	})
}

func TestRotatedObstaclesAccumulate(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	rotated := func(i int) Obstacle {
		ob := box(fmt.Sprintf("r%d", i), rnd.Float32()*10-5, rnd.Float32()*10-5, rnd.Float32()*2.5+0.3, rnd.Float32()*2.5+0.3)
		ob.Transform.Rotation = mgl32.QuatRotate(rnd.Float32()*math.Pi, common.Vec3{0, 1, 0})
		return ob
	}

	s := newTestStore(t)
	var initial []Obstacle
	for i := 0; i < 10; i++ {
		initial = append(initial, rotated(i))
	}
	report, err := s.Build(initial)
	require.NoError(t, err)
	require.Empty(t, report.Skipped)

	for pass := 1; pass <= 4; pass++ {
		var batch []Obstacle
		for i := 0; i < 10; i++ {
			batch = append(batch, rotated(10*pass+i))
		}
		report, err = s.Update(batch)
		require.NoError(t, err)
		require.Empty(t, report.Skipped, "pass %d: %v", pass, report.Err())
		assert.True(t, report.Published)
		assert.EqualValues(t, pass+1, report.Generation)
	}
	s.View(func(tri *cdt.Triangulation, _ NavigableFaceSet) {
		require.NoError(t, tri.Validate())
	})
}

// The classifier looks at faces one at a time, so faces inside an obstacle
// outline that touch a single outline edge are reported walkable.
func TestNestedOutlineInteriorStaysNavigable(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Build([]Obstacle{box("outer", 0, 0, 10, 10), box("inner", 0, 0, 2, 2)})
	require.NoError(t, err)

	inside := 0
	s.View(func(tri *cdt.Triangulation, nav NavigableFaceSet) {
		tri.InnerFaces(func(f cdt.Face) bool {
			if !nav.Contains(f.ID) {
				return true
			}
			var c common.Vec2
			for _, h := range f.Vertices {
				c = c.Add(tri.Position(h))
			}
			c = c.Mul(1.0 / 3)
			if c.X() > -10 && c.X() < 10 && c.Y() > -10 && c.Y() < 10 {
				inside++
			}
			return true
		})
	})
	assert.GreaterOrEqual(t, inside, 4)
}

func TestUpdateBeforeBuild(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Update([]Obstacle{box("a", 0, 0, 1, 1)})
	assert.ErrorIs(t, err, ErrNotBuilt)
	assert.Nil(t, s.Handle().Load())
	assert.False(t, s.View(func(*cdt.Triangulation, NavigableFaceSet) {}))
}

func TestInvalidHeightfield(t *testing.T) {
	for _, scale := range []common.Vec3{{0, 1, 10}, {10, 1, -1}} {
		s := NewStore(Heightfield{Scale: scale})
		_, err := s.Build(nil)
		assert.ErrorIs(t, err, ErrInvalidHeightfield)
	}
}

func TestObstacleWithoutID(t *testing.T) {
	s := newTestStore(t)
	report, err := s.Build([]Obstacle{box("", 0, 0, 1, 1)})
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.ErrorIs(t, report.Skipped[0], ErrMissingID)
	assert.Equal(t, 2, report.Triangles)
}

func TestReadersSeeCompleteMeshes(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Build(nil)
	require.NoError(t, err)

	done := make(chan struct{})
	wg := new(sync.WaitGroup)
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				m := s.Handle().Load()
				for _, tri := range m.Triangles {
					for _, i := range tri {
						if i < 0 || i >= len(m.Vertices) {
							t.Errorf("generation %d: index %d out of range", m.Generation, i)
							return
						}
					}
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		x := float32(i*4 - 20)
		_, err := s.Update([]Obstacle{box(string(rune('a'+i)), x, 10, 1, 1)})
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()
	assert.EqualValues(t, 11, s.Handle().Generation())
}
