package cdt

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/gorustyt/polynavmesh/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v2(x, y float32) common.Vec2 { return common.Vec2{x, y} }

func insertAll(t *testing.T, tri *Triangulation, pts ...common.Vec2) []VertexHandle {
	t.Helper()
	hs := make([]VertexHandle, len(pts))
	for i, p := range pts {
		h, err := tri.InsertPoint(p)
		require.NoError(t, err)
		hs[i] = h
	}
	return hs
}

// assertConstrainedDelaunay checks that no unconstrained edge has the opposite
// vertex of its neighbour strictly inside the face circumcircle.
func assertConstrainedDelaunay(t *testing.T, tri *Triangulation) {
	t.Helper()
	for i := range tri.faces {
		f := &tri.faces[i]
		if !f.live || f.isGhost() {
			continue
		}
		for k := 0; k < 3; k++ {
			if f.c[k] {
				continue
			}
			g := &tri.faces[f.n[k]]
			if g.isGhost() {
				continue
			}
			j := tri.edgeIndex(f.n[k], f.v[cw(k)], f.v[ccw(k)])
			opp := g.v[j]
			in := common.InCircle(tri.pos(f.v[0]), tri.pos(f.v[1]), tri.pos(f.v[2]), tri.pos(opp))
			assert.LessOrEqualf(t, in, 0.0, "edge %v-%v of face %d is not locally Delaunay", f.v[ccw(k)], f.v[cw(k)], i)
		}
	}
}

func TestInsertPointDeduplicates(t *testing.T) {
	tri := New()
	a, err := tri.InsertPoint(v2(1, 2))
	require.NoError(t, err)
	b, err := tri.InsertPoint(v2(1, 2))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, tri.NumVertices())
}

func TestInsertPointRejectsNonFinite(t *testing.T) {
	tri := New()
	for _, p := range []common.Vec2{
		v2(float32(math.NaN()), 0),
		v2(0, float32(math.Inf(1))),
		v2(float32(math.Inf(-1)), 3),
	} {
		_, err := tri.InsertPoint(p)
		var gerr *GeometryInsertionError
		require.True(t, errors.As(err, &gerr), "point %v", p)
		assert.Equal(t, "insert point", gerr.Op)
	}
	assert.Equal(t, 0, tri.NumVertices())
}

func TestInsertConstraintRejectsDegenerate(t *testing.T) {
	tri := New()
	hs := insertAll(t, tri, v2(0, 0), v2(1, 0), v2(0, 1))

	var gerr *GeometryInsertionError
	require.ErrorAs(t, tri.InsertConstraintEdge(hs[0], hs[0]), &gerr)
	assert.Contains(t, gerr.Error(), "zero-length")
	require.ErrorAs(t, tri.InsertConstraintEdge(hs[0], VertexHandle(42)), &gerr)
	assert.Equal(t, 0, tri.NumConstraintEdges())
}

func TestRectangleSplitsInTwo(t *testing.T) {
	tri := New()
	insertAll(t, tri, v2(-25, -25), v2(-25, 25), v2(25, 25), v2(25, -25))
	assert.Equal(t, 4, tri.NumVertices())
	assert.Equal(t, 2, tri.NumInnerFaces())
	require.NoError(t, tri.Validate())

	edges := 0
	tri.Edges(func(e Edge) bool {
		edges++
		assert.False(t, e.Constrained)
		return true
	})
	assert.Equal(t, 5, edges)
}

func TestInsertPolygonKeepsEveryRingEdge(t *testing.T) {
	tri := New()
	insertAll(t, tri, v2(-25, -25), v2(-25, 25), v2(25, 25), v2(25, -25))

	rings := [][]common.Vec2{
		{v2(-1, -1), v2(-1, 1), v2(1, 1), v2(1, -1)},
		{v2(5, 5), v2(12, 6), v2(9, 14)},
		{v2(-20, 3), v2(-10, 3), v2(-10, 4), v2(-19, 4), v2(-19, 15), v2(-20, 15)},
	}
	for _, ring := range rings {
		hs, err := tri.InsertPolygon(ring)
		require.NoError(t, err)
		require.Len(t, hs, len(ring))
		for i := range hs {
			j := common.Next(i, len(hs))
			assert.True(t, tri.IsConstraintEdge(hs[i], hs[j]), "ring edge %v-%v", ring[i], ring[j])
		}
	}
	require.NoError(t, tri.Validate())
	assertConstrainedDelaunay(t, tri)
	assert.Equal(t, 4+3+6, tri.NumConstraintEdges())
}

func TestConstraintThroughVertexIsSplit(t *testing.T) {
	tri := New()
	hs := insertAll(t, tri, v2(0, 0), v2(10, 0), v2(10, 10), v2(0, 10), v2(5, 5), v2(2, 2), v2(8, 8))
	require.NoError(t, tri.InsertConstraintEdge(hs[5], hs[6]))

	assert.True(t, tri.IsConstraintEdge(hs[5], hs[4]))
	assert.True(t, tri.IsConstraintEdge(hs[4], hs[6]))
	assert.False(t, tri.HasEdge(hs[5], hs[6]))
	assert.Equal(t, 2, tri.NumConstraintEdges())
	require.NoError(t, tri.Validate())
}

func TestCrossingConstraintsAreSplit(t *testing.T) {
	tri := New()
	hs := insertAll(t, tri,
		v2(-10, -10), v2(-10, 10), v2(10, 10), v2(10, -10),
		v2(-5, -5), v2(5, 5), v2(-5, 5), v2(5, -5))
	require.NoError(t, tri.InsertConstraintEdge(hs[4], hs[5]))
	require.NoError(t, tri.InsertConstraintEdge(hs[6], hs[7]))

	o, err := tri.InsertPoint(v2(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 9, tri.NumVertices(), "crossing point must already exist")
	for _, end := range []VertexHandle{hs[4], hs[5], hs[6], hs[7]} {
		assert.True(t, tri.IsConstraintEdge(o, end))
	}
	assert.Equal(t, 4, tri.NumConstraintEdges())
	require.NoError(t, tri.Validate())
	assertConstrainedDelaunay(t, tri)
}

func TestPointOnConstraintSplitsIt(t *testing.T) {
	tri := New()
	hs := insertAll(t, tri, v2(-10, -10), v2(-10, 10), v2(10, 10), v2(10, -10), v2(-5, 0), v2(5, 0))
	require.NoError(t, tri.InsertConstraintEdge(hs[4], hs[5]))

	mid, err := tri.InsertPoint(v2(0, 0))
	require.NoError(t, err)
	assert.True(t, tri.IsConstraintEdge(hs[4], mid))
	assert.True(t, tri.IsConstraintEdge(mid, hs[5]))
	assert.False(t, tri.HasEdge(hs[4], hs[5]))
	assert.Equal(t, 2, tri.NumConstraintEdges())
	require.NoError(t, tri.Validate())
}

func TestCollinearStartIsDeferred(t *testing.T) {
	tri := New()
	hs := insertAll(t, tri, v2(0, 0), v2(1, 0), v2(2, 0))
	require.NoError(t, tri.InsertConstraintEdge(hs[0], hs[2]))
	assert.Equal(t, 0, tri.NumInnerFaces())

	insertAll(t, tri, v2(1, 1))
	assert.Equal(t, 2, tri.NumInnerFaces())
	assert.True(t, tri.IsConstraintEdge(hs[0], hs[1]))
	assert.True(t, tri.IsConstraintEdge(hs[1], hs[2]))
	require.NoError(t, tri.Validate())
}

func TestCheckPolygon(t *testing.T) {
	var gerr *GeometryInsertionError
	assert.ErrorAs(t, CheckPolygon([]common.Vec2{v2(0, 0), v2(1, 0)}), &gerr)
	assert.ErrorAs(t, CheckPolygon([]common.Vec2{v2(0, 0), v2(1, 0), v2(2, 0)}), &gerr)
	assert.ErrorAs(t, CheckPolygon([]common.Vec2{v2(0, 0), v2(1, 0), v2(1, 0), v2(0, 1)}), &gerr)
	// Bow tie.
	assert.ErrorAs(t, CheckPolygon([]common.Vec2{v2(0, 0), v2(1, 1), v2(1, 0), v2(0, 1)}), &gerr)
	assert.NoError(t, CheckPolygon([]common.Vec2{v2(0, 0), v2(0, 1), v2(1, 1), v2(1, 0)}))
}

func TestInsertPolygonRejectsBadRingWithoutSideEffects(t *testing.T) {
	tri := New()
	insertAll(t, tri, v2(-5, -5), v2(-5, 5), v2(5, 5), v2(5, -5))
	rev := tri.Revision()
	_, err := tri.InsertPolygon([]common.Vec2{v2(0, 0), v2(1, 1), v2(1, 0), v2(0, 1)})
	require.Error(t, err)
	assert.Equal(t, rev, tri.Revision())
	assert.Equal(t, 4, tri.NumVertices())
}

func TestRandomPointsStayDelaunay(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	tri := New()
	for i := 0; i < 300; i++ {
		_, err := tri.InsertPoint(v2(float32(rnd.Intn(64)), float32(rnd.Intn(64))))
		require.NoError(t, err)
	}
	require.NoError(t, tri.Validate())
	assertConstrainedDelaunay(t, tri)

	// Euler: F = 2n - 2 - h for n points with h on the hull; at least n-2 faces.
	assert.GreaterOrEqual(t, tri.NumInnerFaces(), tri.NumVertices()-2)
}

func TestRandomBoxesAccumulate(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	tri := New()
	insertAll(t, tri, v2(-64, -64), v2(-64, 64), v2(64, 64), v2(64, -64))

	type seg struct{ a, b common.Vec2 }
	var all []seg
	for i := 0; i < 12; i++ {
		cx, cz := float32(rnd.Intn(100)-50), float32(rnd.Intn(100)-50)
		hx, hz := float32(rnd.Intn(4)+1), float32(rnd.Intn(4)+1)
		ring := []common.Vec2{v2(cx-hx, cz-hz), v2(cx-hx, cz+hz), v2(cx+hx, cz+hz), v2(cx+hx, cz-hz)}
		before := tri.NumConstraintEdges()
		_, err := tri.InsertPolygon(ring)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, tri.NumConstraintEdges(), before)
		for k := range ring {
			all = append(all, seg{ring[k], ring[common.Next(k, len(ring))]})
		}
		require.NoError(t, tri.Validate())
	}
	assertConstrainedDelaunay(t, tri)

	// Every constrained edge lies on some inserted box side.
	tri.Edges(func(e Edge) bool {
		if !e.Constrained {
			return true
		}
		pa, pb := tri.Position(e.A), tri.Position(e.B)
		found := false
		for _, s := range all {
			if common.Between(s.a, s.b, pa) && common.Between(s.a, s.b, pb) {
				found = true
				break
			}
		}
		assert.True(t, found, "constrained edge %v-%v is not on a box side", pa, pb)
		return true
	})
}

func TestCrossingRoundingOntoEndpointReroutes(t *testing.T) {
	tri := New()
	insertAll(t, tri, v2(-10, -10), v2(-10, 10), v2(10, 10), v2(10, -10))
	// u-w passes 2e-8 below b, closer than half a float32 step at y=1, so
	// the crossing of a-b with u-w rounds onto b itself.
	hs := insertAll(t, tri, v2(0, math.Nextafter32(1, 0)), v2(3, 1), v2(2, 0), v2(2, 1))
	u, w, a, b := hs[0], hs[1], hs[2], hs[3]
	require.NoError(t, tri.InsertConstraintEdge(u, w))

	x, ok := common.SegmentIntersection(tri.Position(a), tri.Position(b), tri.Position(u), tri.Position(w))
	require.True(t, ok)
	require.Equal(t, tri.Position(b), x)

	require.NoError(t, tri.InsertConstraintEdge(a, b))
	assert.True(t, tri.IsConstraintEdge(a, b))
	assert.True(t, tri.IsConstraintEdge(u, b))
	assert.True(t, tri.IsConstraintEdge(b, w))
	assert.False(t, tri.IsConstraintEdge(u, w))
	assert.Equal(t, 3, tri.NumConstraintEdges())
	require.NoError(t, tri.Validate())
	assertConstrainedDelaunay(t, tri)
}

func TestInsertPolygonRollsBackOnFailure(t *testing.T) {
	tri := New()
	insertAll(t, tri, v2(-25, -25), v2(-25, 25), v2(25, 25), v2(25, -25))
	_, err := tri.InsertPolygon([]common.Vec2{v2(-3, -3), v2(-3, 3), v2(3, 3), v2(3, -3)})
	require.NoError(t, err)

	verts, faces, constraints, rev := tri.NumVertices(), tri.NumInnerFaces(), tri.NumConstraintEdges(), tri.Revision()
	ring := []common.Vec2{v2(-5, -1), v2(-5, 1), v2(5, 1), v2(5, -1)}

	steps := maxConstraintSteps
	maxConstraintSteps = 0
	_, err = tri.InsertPolygon(ring)
	maxConstraintSteps = steps

	var gerr *GeometryInsertionError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, gerr.Error(), "did not converge")
	assert.Equal(t, verts, tri.NumVertices())
	assert.Equal(t, faces, tri.NumInnerFaces())
	assert.Equal(t, constraints, tri.NumConstraintEdges())
	assert.Equal(t, rev, tri.Revision())
	for _, p := range ring {
		_, ok := tri.VertexAt(p)
		assert.False(t, ok, "vertex %v left behind", p)
	}
	require.NoError(t, tri.Validate())

	_, err = tri.InsertPolygon(ring)
	require.NoError(t, err)
	require.NoError(t, tri.Validate())
}

// randomBox returns a box around the origin area, rotated by a random angle
// every other call and axis-aligned on integer coordinates otherwise.
func randomBox(rnd *rand.Rand, i int) []common.Vec2 {
	if i%2 == 1 {
		x0, z0 := float32(rnd.Intn(10)-5), float32(rnd.Intn(10)-5)
		w, h := float32(rnd.Intn(4)+1), float32(rnd.Intn(4)+1)
		return []common.Vec2{v2(x0, z0), v2(x0, z0+h), v2(x0+w, z0+h), v2(x0+w, z0)}
	}
	cx, cz := rnd.Float64()*10-5, rnd.Float64()*10-5
	hx, hz := rnd.Float64()*2.5+0.3, rnd.Float64()*2.5+0.3
	sin, cos := math.Sincos(rnd.Float64() * math.Pi)
	ring := make([]common.Vec2, 0, 4)
	for _, c := range [4][2]float64{{-hx, -hz}, {-hx, hz}, {hx, hz}, {hx, -hz}} {
		ring = append(ring, v2(float32(cx+c[0]*cos-c[1]*sin), float32(cz+c[0]*sin+c[1]*cos)))
	}
	return ring
}

func TestRotatedOverlappingBoxes(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		tri := New()
		insertAll(t, tri, v2(-25, -25), v2(-25, 25), v2(25, 25), v2(25, -25))
		for i := 0; i < 70; i++ {
			ring := randomBox(rnd, i)
			require.NoError(t, CheckPolygon(ring), "seed %d box %d", seed, i)

			done := make(chan error, 1)
			go func() {
				_, err := tri.InsertPolygon(ring)
				done <- err
			}()
			select {
			case err := <-done:
				require.NoError(t, err, "seed %d box %d %v", seed, i, ring)
			case <-time.After(10 * time.Second):
				t.Fatalf("seed %d box %d %v: insertion did not return", seed, i, ring)
			}
		}
		require.NoError(t, tri.Validate(), "seed %d", seed)
		assertConstrainedDelaunay(t, tri)
	}
}
