package cdt

import (
	"github.com/gorustyt/polynavmesh/common"
)

// InsertConstraintEdge forces the segment a-b into the triangulation and flags
// it constrained. Triangles crossed by the segment are replaced by a
// constrained Delaunay re-triangulation of the two pseudo-polygons on either
// side. A segment running through another vertex is split at that vertex; a
// segment crossing an existing constraint is split at the crossing point and
// so is the crossed constraint. When that point rounds onto an endpoint of the
// new segment, the crossed constraint is rerouted through the endpoint.
func (t *Triangulation) InsertConstraintEdge(a, b VertexHandle) error {
	if !t.validVertex(a) || !t.validVertex(b) {
		return insertionError("insert constraint", "unknown vertex handle")
	}
	if a == b {
		return insertionError("insert constraint", "zero-length edge", t.pos(a))
	}
	if !t.is2D {
		t.pendingConstraints = append(t.pendingConstraints, [2]VertexHandle{a, b})
		t.revision++
		return nil
	}
	return t.insertConstraint(a, b)
}

// InsertPolygon inserts every point of the closed ring and constrains every
// consecutive pair, including the closing edge from the last point to the first.
// Insertion is all or nothing: on error the triangulation is left exactly as
// it was before the call.
func (t *Triangulation) InsertPolygon(ring []common.Vec2) ([]VertexHandle, error) {
	if err := CheckPolygon(ring); err != nil {
		return nil, err
	}
	undo := t.save()
	handles, err := t.insertRing(ring)
	if err != nil {
		t.restore(undo)
		return nil, err
	}
	return handles, nil
}

func (t *Triangulation) insertRing(ring []common.Vec2) ([]VertexHandle, error) {
	handles := make([]VertexHandle, 0, len(ring))
	for _, p := range ring {
		h, err := t.InsertPoint(p)
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	for i := range handles {
		j := common.Next(i, len(handles))
		if err := t.InsertConstraintEdge(handles[i], handles[j]); err != nil {
			return nil, err
		}
	}
	return handles, nil
}

// CheckPolygon validates a ring before any of it is inserted: at least three
// finite distinct points, non-zero area, no self-intersection.
func CheckPolygon(ring []common.Vec2) error {
	const op = "insert polygon"
	if len(ring) < 3 {
		return insertionError(op, "polygon needs at least 3 points", ring...)
	}
	seen := make(map[common.Vec2]bool, len(ring))
	for _, p := range ring {
		if !common.Visfinite2D(p) {
			return insertionError(op, "non-finite coordinate", p)
		}
		if seen[p] {
			return insertionError(op, "repeated point", p)
		}
		seen[p] = true
	}
	if common.RingArea2(ring) == 0 {
		return insertionError(op, "zero area", ring...)
	}
	if common.RingSelfIntersects(ring) {
		return insertionError(op, "self-intersecting ring", ring...)
	}
	return nil
}

type traceKind int

const (
	traceClear traceKind = iota
	traceVertex
	traceConstraint
	traceFailed
)

type trace struct {
	kind traceKind

	// traceClear
	removed     []FaceID
	left, right []VertexHandle

	// traceVertex
	through VertexHandle

	// traceConstraint
	face FaceID
	edge int
}

// maxConstraintSteps bounds the sub-segments and flips processed for a single
// constraint.
var maxConstraintSteps = 1 << 16

func (t *Triangulation) insertConstraint(a, b VertexHandle) error {
	const op = "insert constraint"
	pa, pb := t.pos(a), t.pos(b)
	stack := [][2]VertexHandle{{a, b}}
	for steps := 0; len(stack) > 0; steps++ {
		if steps >= maxConstraintSteps {
			return insertionError(op, "constraint insertion did not converge", pa, pb)
		}
		seg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		a, b := seg[0], seg[1]
		if a == b {
			continue
		}
		if id, i, ok := t.findEdge(a, b); ok {
			t.setConstraint(id, i)
			continue
		}
		tr := t.traceSegment(a, b)
		switch tr.kind {
		case traceVertex:
			stack = append(stack, [2]VertexHandle{tr.through, b}, [2]VertexHandle{a, tr.through})
		case traceConstraint:
			f := &t.faces[tr.face]
			u, w := f.v[ccw(tr.edge)], f.v[cw(tr.edge)]
			x, ok := common.SegmentIntersection(t.pos(a), t.pos(b), t.pos(u), t.pos(w))
			if !ok {
				return insertionError(op, "parallel constraint crossing", t.pos(a), t.pos(b))
			}
			h, err := t.splitAt(x)
			if err != nil {
				return err
			}
			if h == a || h == b {
				// The crossing rounds onto an endpoint: the crossed constraint
				// is rerouted through it and a-b is traced again.
				if err := t.clearConstraint(tr.face, tr.edge); err != nil {
					return err
				}
				stack = append(stack, [2]VertexHandle{a, b}, [2]VertexHandle{h, w}, [2]VertexHandle{u, h})
				continue
			}
			stack = append(stack, [2]VertexHandle{h, b}, [2]VertexHandle{a, h})
		case traceClear:
			if err := t.carve(a, b, tr); err != nil {
				return err
			}
		default:
			return insertionError(op, "segment could not be traced", t.pos(a), t.pos(b))
		}
	}
	return nil
}

// traceSegment walks from a towards b and records the faces crossed by the
// open segment along with the vertices left and right of it.
func (t *Triangulation) traceSegment(a, b VertexHandle) trace {
	pa, pb := t.pos(a), t.pos(b)
	dir := pb.Sub(pa)

	start, edge := NoFace, -1
	var u, w VertexHandle
	var through = InvalidVertex
	t.forEachAround(a, func(id FaceID, k int) bool {
		f := &t.faces[id]
		if f.isGhost() {
			return true
		}
		fu, fw := f.v[ccw(k)], f.v[cw(k)]
		ou := common.Orient2D(pa, t.pos(fu), pb)
		ow := common.Orient2D(pa, t.pos(fw), pb)
		if ou == 0 && t.pos(fu).Sub(pa).Dot(dir) > 0 {
			through = fu
			return false
		}
		if ow == 0 && t.pos(fw).Sub(pa).Dot(dir) > 0 {
			through = fw
			return false
		}
		if ou > 0 && ow < 0 {
			start, edge, u, w = id, k, fu, fw
			return false
		}
		return true
	})
	if through != InvalidVertex {
		return trace{kind: traceVertex, through: through}
	}
	if start == NoFace {
		return trace{kind: traceFailed}
	}

	tr := trace{
		kind:    traceClear,
		removed: []FaceID{start},
		left:    []VertexHandle{w},
		right:   []VertexHandle{u},
	}
	cur, crossed := start, edge
	for guard := 0; guard <= len(t.faces); guard++ {
		f := &t.faces[cur]
		if f.c[crossed] {
			return trace{kind: traceConstraint, face: cur, edge: crossed}
		}
		next := f.n[crossed]
		g := &t.faces[next]
		if g.isGhost() {
			return trace{kind: traceFailed}
		}
		tr.removed = append(tr.removed, next)
		z := g.v[3-g.indexOf(u)-g.indexOf(w)]
		if z == b {
			return tr
		}
		oz := common.Orient2D(pa, pb, t.pos(z))
		switch {
		case oz == 0:
			return trace{kind: traceVertex, through: z}
		case oz > 0:
			tr.left = append(tr.left, z)
			w = z
		default:
			tr.right = append(tr.right, z)
			u = z
		}
		cur, crossed = next, t.edgeBetween(next, u, w)
	}
	return trace{kind: traceFailed}
}

// carve replaces the traced faces with the re-triangulated pseudo-polygons
// on both sides of a-b and flags a-b constrained.
func (t *Triangulation) carve(a, b VertexHandle, tr trace) error {
	tris := t.triangulatePseudoPolygon(a, b, tr.left, nil)
	tris = t.triangulatePseudoPolygon(b, a, common.Reverse(tr.right), tris)
	if _, err := t.replaceFaces("insert constraint", tr.removed, tris); err != nil {
		return err
	}
	id, i, ok := t.findEdge(a, b)
	if !ok {
		return insertionError("insert constraint", "constraint edge missing after re-triangulation", t.pos(a), t.pos(b))
	}
	t.setConstraint(id, i)
	return nil
}

// triangulatePseudoPolygon triangulates the region bounded by p->q and the
// chain of vertices to its left, ordered from the p side to the q side. The
// apex of the base triangle is the chain vertex whose circumcircle with p and
// q holds no other chain vertex.
func (t *Triangulation) triangulatePseudoPolygon(p, q VertexHandle, chain []VertexHandle, out [][3]VertexHandle) [][3]VertexHandle {
	if len(chain) == 0 {
		return out
	}
	pp, pq := t.pos(p), t.pos(q)
	ci := 0
	for i := 1; i < len(chain); i++ {
		if common.InCircle(pp, pq, t.pos(chain[ci]), t.pos(chain[i])) > 0 {
			ci = i
		}
	}
	c := chain[ci]
	out = append(out, [3]VertexHandle{p, q, c})
	out = t.triangulatePseudoPolygon(p, c, chain[:ci], out)
	out = t.triangulatePseudoPolygon(c, q, chain[ci+1:], out)
	return out
}
