package cdt

import (
	"github.com/gorustyt/polynavmesh/common"
)

// InsertPoint adds p to the triangulation. An equal point returns the handle
// already assigned to it. A point landing on a constrained edge splits that
// edge and both halves stay constrained.
func (t *Triangulation) InsertPoint(p common.Vec2) (VertexHandle, error) {
	if !common.Visfinite2D(p) {
		return InvalidVertex, insertionError("insert point", "non-finite coordinate", p)
	}
	if h, ok := t.index[p]; ok {
		return h, nil
	}
	h := t.addVertex(p)
	if !t.is2D {
		t.pending = append(t.pending, h)
		if err := t.bootstrap(); err != nil {
			return h, err
		}
		return h, nil
	}
	if err := t.insertVertex(h); err != nil {
		t.dropLastVertex()
		return InvalidVertex, err
	}
	return h, nil
}

func (t *Triangulation) addVertex(p common.Vec2) VertexHandle {
	h := VertexHandle(len(t.verts))
	t.verts = append(t.verts, vertex{pos: p, face: NoFace})
	t.index[p] = h
	t.revision++
	return h
}

func (t *Triangulation) dropLastVertex() {
	last := len(t.verts) - 1
	delete(t.index, t.verts[last].pos)
	t.verts = t.verts[:last]
}

// bootstrap builds the first triangle once three non-collinear points are known,
// then inserts the remaining pending points and constraints.
func (t *Triangulation) bootstrap() error {
	if len(t.pending) < 3 {
		return nil
	}
	a, b := t.pending[0], t.pending[1]
	third := -1
	for i := 2; i < len(t.pending); i++ {
		if common.Orient2D(t.pos(a), t.pos(b), t.pos(t.pending[i])) != 0 {
			third = i
			break
		}
	}
	if third < 0 {
		return nil
	}
	c := t.pending[third]
	if common.Orient2D(t.pos(a), t.pos(b), t.pos(c)) < 0 {
		a, b = b, a
	}
	tris := [][3]VertexHandle{
		{a, b, c},
		{b, a, infinite},
		{c, b, infinite},
		{a, c, infinite},
	}
	if _, err := t.replaceFaces("insert point", nil, tris); err != nil {
		return err
	}
	t.is2D = true

	rest := make([]VertexHandle, 0, len(t.pending)-3)
	for i, h := range t.pending {
		if i != 0 && i != 1 && i != third {
			rest = append(rest, h)
		}
	}
	t.pending = nil
	for _, h := range rest {
		if err := t.insertVertex(h); err != nil {
			return err
		}
	}
	pc := t.pendingConstraints
	t.pendingConstraints = nil
	for _, e := range pc {
		if err := t.insertConstraint(e[0], e[1]); err != nil {
			return err
		}
	}
	return nil
}

// locate returns a face containing p. For a finite face, edge is the index of
// the edge p lies on, or -1 when p is strictly inside. A ghost face is returned
// when p lies strictly outside the hull edge it is attached to.
func (t *Triangulation) locate(p common.Vec2) (FaceID, int) {
	cur := t.last
	if cur == NoFace || !t.faces[cur].live {
		cur = NoFace
		for i := range t.faces {
			if t.faces[i].live {
				cur = FaceID(i)
				break
			}
		}
	}
	if f := &t.faces[cur]; f.isGhost() {
		cur = f.n[f.indexOf(infinite)]
	}

	maxSteps := 2*len(t.faces) + 16
	for step := 0; step < maxSteps; step++ {
		f := &t.faces[cur]
		if f.isGhost() {
			return cur, -1
		}
		moved := false
		for r := 0; r < 3; r++ {
			i := (r + step) % 3
			if common.Orient2D(t.pos(f.v[ccw(i)]), t.pos(f.v[cw(i)]), p) < 0 {
				cur = f.n[i]
				moved = true
				break
			}
		}
		if !moved {
			return cur, t.onEdge(cur, p)
		}
	}
	// The walk can cycle around constrained regions that are not Delaunay.
	return t.locateLinear(p)
}

func (t *Triangulation) onEdge(id FaceID, p common.Vec2) int {
	f := &t.faces[id]
	for i := 0; i < 3; i++ {
		if common.Orient2D(t.pos(f.v[ccw(i)]), t.pos(f.v[cw(i)]), p) == 0 {
			return i
		}
	}
	return -1
}

func (t *Triangulation) locateLinear(p common.Vec2) (FaceID, int) {
	for i := range t.faces {
		f := &t.faces[i]
		if !f.live || f.isGhost() {
			continue
		}
		inside := true
		for k := 0; k < 3; k++ {
			if common.Orient2D(t.pos(f.v[ccw(k)]), t.pos(f.v[cw(k)]), p) < 0 {
				inside = false
				break
			}
		}
		if inside {
			return FaceID(i), t.onEdge(FaceID(i), p)
		}
	}
	for i := range t.faces {
		f := &t.faces[i]
		if !f.live || !f.isGhost() {
			continue
		}
		k := f.indexOf(infinite)
		if common.Orient2D(t.pos(f.v[ccw(k)]), t.pos(f.v[cw(k)]), p) > 0 {
			return FaceID(i), -1
		}
	}
	return NoFace, -1
}

// conflicts reports whether p lies inside the circumcircle of face id. For a
// ghost face the circumcircle degenerates to the open half-plane beyond its
// hull edge plus the open edge itself.
func (t *Triangulation) conflicts(id FaceID, p common.Vec2) bool {
	f := &t.faces[id]
	if k := f.indexOf(infinite); k >= 0 {
		a, b := t.pos(f.v[ccw(k)]), t.pos(f.v[cw(k)])
		o := common.Orient2D(a, b, p)
		return o > 0 || (o == 0 && common.BetweenStrict(a, b, p))
	}
	return common.InCircle(t.pos(f.v[0]), t.pos(f.v[1]), t.pos(f.v[2]), p) > 0
}

// insertVertex connects vertex h with a Bowyer-Watson cavity. The cavity never
// grows across a constrained edge, except the one h lies on, which is split.
func (t *Triangulation) insertVertex(h VertexHandle) error {
	p := t.pos(h)
	start, edge := t.locate(p)
	if start == NoFace {
		return insertionError("insert point", "point location failed", p)
	}

	splitA, splitB := InvalidVertex, InvalidVertex
	inCavity := map[FaceID]bool{start: true}
	cavity := []FaceID{start}
	if edge >= 0 {
		f := &t.faces[start]
		if f.c[edge] {
			splitA, splitB = f.v[ccw(edge)], f.v[cw(edge)]
		}
		nb := f.n[edge]
		inCavity[nb] = true
		cavity = append(cavity, nb)
	}
	for i := 0; i < len(cavity); i++ {
		f := &t.faces[cavity[i]]
		for k := 0; k < 3; k++ {
			nb := f.n[k]
			if inCavity[nb] || f.c[k] {
				continue
			}
			if t.conflicts(nb, p) {
				inCavity[nb] = true
				cavity = append(cavity, nb)
			}
		}
	}

	var tris [][3]VertexHandle
	for _, id := range cavity {
		f := &t.faces[id]
		for k := 0; k < 3; k++ {
			if inCavity[f.n[k]] {
				continue
			}
			tris = append(tris, [3]VertexHandle{f.v[ccw(k)], f.v[cw(k)], h})
		}
	}
	if _, err := t.replaceFaces("insert point", cavity, tris); err != nil {
		return err
	}
	if splitA != InvalidVertex {
		// One constrained edge became two.
		t.constraintEdges--
		for _, end := range [2]VertexHandle{splitA, splitB} {
			if id, i, ok := t.findEdge(h, end); ok {
				t.setConstraint(id, i)
			}
		}
	}
	return nil
}

// splitAt inserts p at a constraint crossing. The rounded point is located
// like any other, so it splits whatever edge it actually lands on. An existing
// vertex at p is returned as is.
func (t *Triangulation) splitAt(p common.Vec2) (VertexHandle, error) {
	if h, ok := t.index[p]; ok {
		return h, nil
	}
	h := t.addVertex(p)
	if err := t.insertVertex(h); err != nil {
		t.dropLastVertex()
		return InvalidVertex, err
	}
	return h, nil
}
