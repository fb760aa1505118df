// Package cdt maintains an incremental constrained Delaunay triangulation over
// points on the ground plane.
//
// Faces are stored counter-clockwise. Edge i of a face joins v[i+1] and v[i+2]
// and lies opposite v[i]; n[i] is the face across it and c[i] its constraint
// flag. The convex hull is closed with ghost faces that touch the vertex at
// infinity, so every edge has exactly two faces once the triangulation is 2D.
package cdt

import (
	"fmt"
	"maps"
	"slices"

	"github.com/gorustyt/polynavmesh/common"
)

type VertexHandle int

type FaceID int

const (
	InvalidVertex VertexHandle = -2
	// infinite is the apex of every ghost face.
	infinite VertexHandle = -1

	NoFace FaceID = -1
)

type vertex struct {
	pos  common.Vec2
	face FaceID // any live face touching the vertex
}

type face struct {
	v    [3]VertexHandle
	n    [3]FaceID
	c    [3]bool
	live bool
}

func ccw(i int) int { return (i + 1) % 3 }
func cw(i int) int  { return (i + 2) % 3 }

func (f *face) indexOf(v VertexHandle) int {
	for i := 0; i < 3; i++ {
		if f.v[i] == v {
			return i
		}
	}
	return -1
}

func (f *face) isGhost() bool {
	return f.indexOf(infinite) >= 0
}

// Face is a read-only view of one finite triangle.
type Face struct {
	ID       FaceID
	Vertices [3]VertexHandle
	// Constrained[i] flags the edge opposite Vertices[i].
	Constrained [3]bool
}

// ConstrainedCount returns how many of the face's three edges are constrained.
func (f Face) ConstrainedCount() int {
	n := 0
	for _, c := range f.Constrained {
		if c {
			n++
		}
	}
	return n
}

// Edge is an undirected finite edge.
type Edge struct {
	A, B        VertexHandle
	Constrained bool
}

type Triangulation struct {
	verts []vertex
	index map[common.Vec2]VertexHandle
	faces []face
	free  []FaceID
	last  FaceID

	is2D               bool
	pending            []VertexHandle
	pendingConstraints [][2]VertexHandle

	constraintEdges int
	innerFaces      int
	revision        uint64
}

func New() *Triangulation {
	return &Triangulation{
		index: make(map[common.Vec2]VertexHandle),
		last:  NoFace,
	}
}

func (t *Triangulation) NumVertices() int { return len(t.verts) }

func (t *Triangulation) NumInnerFaces() int { return t.innerFaces }

func (t *Triangulation) NumConstraintEdges() int { return t.constraintEdges }

// Revision changes whenever the triangulation is mutated.
func (t *Triangulation) Revision() uint64 { return t.revision }

func (t *Triangulation) validVertex(h VertexHandle) bool {
	return h >= 0 && int(h) < len(t.verts)
}

func (t *Triangulation) Position(h VertexHandle) common.Vec2 {
	return t.verts[h].pos
}

// VertexAt returns the handle of the vertex at exactly p.
func (t *Triangulation) VertexAt(p common.Vec2) (VertexHandle, bool) {
	h, ok := t.index[p]
	return h, ok
}

func (t *Triangulation) pos(h VertexHandle) common.Vec2 {
	return t.verts[h].pos
}

// InnerFaces calls fn for every finite face in storage order until fn returns false.
func (t *Triangulation) InnerFaces(fn func(f Face) bool) {
	for i := range t.faces {
		f := &t.faces[i]
		if !f.live || f.isGhost() {
			continue
		}
		if !fn(Face{ID: FaceID(i), Vertices: f.v, Constrained: f.c}) {
			return
		}
	}
}

func (t *Triangulation) Face(id FaceID) (Face, bool) {
	if id < 0 || int(id) >= len(t.faces) {
		return Face{}, false
	}
	f := &t.faces[id]
	if !f.live || f.isGhost() {
		return Face{}, false
	}
	return Face{ID: id, Vertices: f.v, Constrained: f.c}, true
}

// Edges calls fn once per finite undirected edge until fn returns false.
func (t *Triangulation) Edges(fn func(e Edge) bool) {
	for i := range t.faces {
		f := &t.faces[i]
		if !f.live || f.isGhost() {
			continue
		}
		for k := 0; k < 3; k++ {
			a, b := f.v[ccw(k)], f.v[cw(k)]
			if a > b && !t.faces[f.n[k]].isGhost() {
				continue
			}
			if !fn(Edge{A: a, B: b, Constrained: f.c[k]}) {
				return
			}
		}
	}
}

// forEachAround visits the faces around v (ghosts included); k is v's index in the face.
func (t *Triangulation) forEachAround(v VertexHandle, fn func(id FaceID, k int) bool) {
	start := t.verts[v].face
	if start == NoFace {
		return
	}
	cur := start
	for guard := 0; guard <= len(t.faces); guard++ {
		f := &t.faces[cur]
		k := f.indexOf(v)
		if k < 0 {
			return
		}
		if !fn(cur, k) {
			return
		}
		cur = f.n[cw(k)]
		if cur == start {
			return
		}
	}
}

// findEdge returns the face holding the directed edge a->b and its index.
func (t *Triangulation) findEdge(a, b VertexHandle) (FaceID, int, bool) {
	id, idx, ok := NoFace, -1, false
	t.forEachAround(a, func(fid FaceID, k int) bool {
		if t.faces[fid].v[ccw(k)] == b {
			id, idx, ok = fid, cw(k), true
			return false
		}
		return true
	})
	return id, idx, ok
}

// edgeIndex returns the index of directed edge a->b in face id, or -1.
func (t *Triangulation) edgeIndex(id FaceID, a, b VertexHandle) int {
	f := &t.faces[id]
	for i := 0; i < 3; i++ {
		if f.v[ccw(i)] == a && f.v[cw(i)] == b {
			return i
		}
	}
	return -1
}

// edgeBetween returns the index of the undirected edge {a, b} in face id, or -1.
func (t *Triangulation) edgeBetween(id FaceID, a, b VertexHandle) int {
	if i := t.edgeIndex(id, a, b); i >= 0 {
		return i
	}
	return t.edgeIndex(id, b, a)
}

func (t *Triangulation) HasEdge(a, b VertexHandle) bool {
	if !t.validVertex(a) || !t.validVertex(b) || a == b {
		return false
	}
	_, _, ok := t.findEdge(a, b)
	return ok
}

func (t *Triangulation) IsConstraintEdge(a, b VertexHandle) bool {
	if !t.validVertex(a) || !t.validVertex(b) || a == b {
		return false
	}
	id, i, ok := t.findEdge(a, b)
	return ok && t.faces[id].c[i]
}

// setConstraint flags both sides of edge i of face id.
func (t *Triangulation) setConstraint(id FaceID, i int) {
	f := &t.faces[id]
	if f.c[i] {
		return
	}
	a, b := f.v[ccw(i)], f.v[cw(i)]
	f.c[i] = true
	nb := f.n[i]
	if j := t.edgeIndex(nb, b, a); j >= 0 {
		t.faces[nb].c[j] = true
	}
	t.constraintEdges++
	t.revision++
}

// clearConstraint drops the constraint flag from both sides of edge i of face
// id, then flips the surrounding edges until they are Delaunay again.
func (t *Triangulation) clearConstraint(id FaceID, i int) error {
	f := &t.faces[id]
	if !f.c[i] {
		return nil
	}
	a, b := f.v[ccw(i)], f.v[cw(i)]
	f.c[i] = false
	nb := f.n[i]
	if j := t.edgeIndex(nb, b, a); j >= 0 {
		t.faces[nb].c[j] = false
	}
	t.constraintEdges--
	t.revision++
	return t.legalize([]directed{{a, b}})
}

// legalize flips unconstrained edges whose opposite vertex lies inside the
// circumcircle of the face on the other side, starting from queue.
func (t *Triangulation) legalize(queue []directed) error {
	for steps := 0; len(queue) > 0; steps++ {
		if steps > maxConstraintSteps {
			return insertionError("legalize", "edge flips did not converge")
		}
		e := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		id, i, ok := t.findEdge(e[0], e[1])
		if !ok {
			continue
		}
		f := &t.faces[id]
		nb := f.n[i]
		if f.c[i] || f.isGhost() || t.faces[nb].isGhost() {
			continue
		}
		g := &t.faces[nb]
		p, a, b := f.v[i], e[0], e[1]
		q := g.v[t.edgeIndex(nb, b, a)]
		if common.InCircle(t.pos(f.v[0]), t.pos(f.v[1]), t.pos(f.v[2]), t.pos(q)) <= 0 {
			continue
		}
		// p, a, q, b is a convex quad; a-b becomes p-q.
		tris := [][3]VertexHandle{{p, a, q}, {p, q, b}}
		if _, err := t.replaceFaces("legalize", []FaceID{id, nb}, tris); err != nil {
			continue
		}
		queue = append(queue, directed{a, q}, directed{q, b}, directed{p, a}, directed{b, p})
	}
	return nil
}

// snapshot is a deep copy of the triangulation used to undo a failed polygon.
type snapshot struct {
	verts              []vertex
	index              map[common.Vec2]VertexHandle
	faces              []face
	free               []FaceID
	last               FaceID
	is2D               bool
	pending            []VertexHandle
	pendingConstraints [][2]VertexHandle
	constraintEdges    int
	innerFaces         int
	revision           uint64
}

func (t *Triangulation) save() *snapshot {
	return &snapshot{
		verts:              slices.Clone(t.verts),
		index:              maps.Clone(t.index),
		faces:              slices.Clone(t.faces),
		free:               slices.Clone(t.free),
		last:               t.last,
		is2D:               t.is2D,
		pending:            slices.Clone(t.pending),
		pendingConstraints: slices.Clone(t.pendingConstraints),
		constraintEdges:    t.constraintEdges,
		innerFaces:         t.innerFaces,
		revision:           t.revision,
	}
}

func (t *Triangulation) restore(s *snapshot) {
	t.verts = s.verts
	t.index = s.index
	t.faces = s.faces
	t.free = s.free
	t.last = s.last
	t.is2D = s.is2D
	t.pending = s.pending
	t.pendingConstraints = s.pendingConstraints
	t.constraintEdges = s.constraintEdges
	t.innerFaces = s.innerFaces
	t.revision = s.revision
}

func (t *Triangulation) allocFace(v [3]VertexHandle) FaceID {
	f := face{v: v, n: [3]FaceID{NoFace, NoFace, NoFace}, live: true}
	var id FaceID
	if n := len(t.free); n > 0 {
		id = t.free[n-1]
		t.free = t.free[:n-1]
		t.faces[id] = f
	} else {
		id = FaceID(len(t.faces))
		t.faces = append(t.faces, f)
	}
	if !t.faces[id].isGhost() {
		t.innerFaces++
	}
	return id
}

func (t *Triangulation) freeFace(id FaceID) {
	if !t.faces[id].isGhost() {
		t.innerFaces--
	}
	t.faces[id] = face{}
	t.free = append(t.free, id)
}

type directed [2]VertexHandle

type outerEdge struct {
	face FaceID
	c    bool
}

// replaceFaces swaps the region covered by removed for the triangles tris and
// restitches adjacency with the surrounding faces. The region boundary must be
// covered exactly by the new triangles; nothing is mutated when it is not.
func (t *Triangulation) replaceFaces(op string, removed []FaceID, tris [][3]VertexHandle) ([]FaceID, error) {
	inRegion := make(map[FaceID]bool, len(removed))
	for _, id := range removed {
		inRegion[id] = true
	}
	boundary := make(map[directed]outerEdge)
	regionVerts := make(map[VertexHandle]bool)
	for _, id := range removed {
		f := &t.faces[id]
		for i := 0; i < 3; i++ {
			if f.v[i] != infinite {
				regionVerts[f.v[i]] = true
			}
			if inRegion[f.n[i]] {
				continue
			}
			boundary[directed{f.v[ccw(i)], f.v[cw(i)]}] = outerEdge{face: f.n[i], c: f.c[i]}
		}
	}

	inner := make(map[directed]bool, 3*len(tris))
	for _, tri := range tris {
		for i := 0; i < 3; i++ {
			inner[directed{tri[ccw(i)], tri[cw(i)]}] = true
		}
	}
	used := 0
	for _, tri := range tris {
		if tri[0] != infinite && tri[1] != infinite && tri[2] != infinite {
			if common.Orient2D(t.pos(tri[0]), t.pos(tri[1]), t.pos(tri[2])) <= 0 {
				return nil, insertionError(op, "retriangulation produced a degenerate face",
					t.pos(tri[0]), t.pos(tri[1]), t.pos(tri[2]))
			}
		}
		for i := 0; i < 3; i++ {
			delete(regionVerts, tri[i])
			e := directed{tri[ccw(i)], tri[cw(i)]}
			if inner[directed{e[1], e[0]}] {
				continue
			}
			if _, ok := boundary[e]; !ok {
				return nil, insertionError(op, "retriangulation does not match the cavity boundary")
			}
			used++
		}
	}
	if used != len(boundary) || len(regionVerts) != 0 {
		return nil, insertionError(op, "retriangulation does not cover the cavity")
	}

	for _, id := range removed {
		t.freeFace(id)
	}
	created := make([]FaceID, len(tris))
	edges := make(map[directed]FaceID, 3*len(tris))
	for k, tri := range tris {
		id := t.allocFace(tri)
		created[k] = id
		for i := 0; i < 3; i++ {
			edges[directed{tri[ccw(i)], tri[cw(i)]}] = id
		}
	}
	for _, id := range created {
		f := &t.faces[id]
		for i := 0; i < 3; i++ {
			a, b := f.v[ccw(i)], f.v[cw(i)]
			if twin, ok := edges[directed{b, a}]; ok {
				f.n[i] = twin
				continue
			}
			o := boundary[directed{a, b}]
			f.n[i] = o.face
			f.c[i] = o.c
			t.faces[o.face].n[t.edgeIndex(o.face, b, a)] = id
		}
		for _, v := range f.v {
			if v != infinite {
				t.verts[v].face = id
			}
		}
	}
	if len(created) > 0 {
		t.last = created[0]
	}
	t.revision++
	return created, nil
}

// Validate checks adjacency symmetry, constraint flag symmetry and face
// orientation. It is meant for tests and debugging.
func (t *Triangulation) Validate() error {
	for i := range t.faces {
		f := &t.faces[i]
		if !f.live {
			continue
		}
		id := FaceID(i)
		if !f.isGhost() {
			if common.Orient2D(t.pos(f.v[0]), t.pos(f.v[1]), t.pos(f.v[2])) <= 0 {
				return fmt.Errorf("face %d is not counter-clockwise", id)
			}
		}
		for k := 0; k < 3; k++ {
			nb := f.n[k]
			if nb == NoFace || !t.faces[nb].live {
				return fmt.Errorf("face %d edge %d has no live neighbour", id, k)
			}
			j := t.edgeIndex(nb, f.v[cw(k)], f.v[ccw(k)])
			if j < 0 || t.faces[nb].n[j] != id {
				return fmt.Errorf("face %d edge %d is not mirrored by face %d", id, k, nb)
			}
			if t.faces[nb].c[j] != f.c[k] {
				return fmt.Errorf("face %d edge %d constraint flag differs from face %d", id, k, nb)
			}
		}
	}
	return nil
}
