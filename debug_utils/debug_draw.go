package debug_utils

import (
	"github.com/gorustyt/polynavmesh/common"
)

type DuDebugDrawPrimitives int

const (
	DU_DRAW_POINTS DuDebugDrawPrimitives = iota
	DU_DRAW_LINES
	DU_DRAW_TRIS
	DU_DRAW_QUADS
)

type DuDebugDraw interface {
	DepthMask(state bool)

	/// Begin drawing primitives.
	///  @param prim [in] primitive type to draw, one of DuDebugDrawPrimitives.
	///  @param size [in] size of a primitive, applies to point size and line width only. Defaults to 1.
	Begin(prim DuDebugDrawPrimitives, size ...float32)

	/// Submit a vertex
	///  @param pos [in] position of the verts.
	///  @param color [in] color of the verts.
	Vertex(pos common.Vec3, color Colorb)

	/// End drawing primitives.
	End()
}

// DuDisplayList records submitted vertices so they can be replayed into
// another DuDebugDraw. Each Begin starts a new batch.
type DuDisplayList struct {
	batches   []duBatch
	depthMask bool
}

type duBatch struct {
	prim      DuDebugDrawPrimitives
	size      float32
	depthMask bool
	pos       []common.Vec3
	color     []Colorb
}

func NewDuDisplayList() *DuDisplayList {
	return &DuDisplayList{depthMask: true}
}

func (d *DuDisplayList) DepthMask(state bool) {
	d.depthMask = state
}

func (d *DuDisplayList) Begin(prim DuDebugDrawPrimitives, size ...float32) {
	b := duBatch{prim: prim, size: 1, depthMask: d.depthMask}
	if len(size) > 0 {
		b.size = size[0]
	}
	d.batches = append(d.batches, b)
}

func (d *DuDisplayList) Vertex(pos common.Vec3, color Colorb) {
	if len(d.batches) == 0 {
		d.Begin(DU_DRAW_POINTS)
	}
	b := &d.batches[len(d.batches)-1]
	b.pos = append(b.pos, pos)
	b.color = append(b.color, color)
}

func (d *DuDisplayList) End() {}

func (d *DuDisplayList) Clear() {
	d.batches = d.batches[:0]
}

// Size is the number of recorded vertices over all batches.
func (d *DuDisplayList) Size() int {
	n := 0
	for _, b := range d.batches {
		n += len(b.pos)
	}
	return n
}

// Count returns how many recorded vertices of the given primitive carry col.
func (d *DuDisplayList) Count(prim DuDebugDrawPrimitives, col Colorb) int {
	n := 0
	for _, b := range d.batches {
		if b.prim != prim {
			continue
		}
		for _, c := range b.color {
			if c == col {
				n++
			}
		}
	}
	return n
}

// Draw replays every recorded batch into dd.
func (d *DuDisplayList) Draw(dd DuDebugDraw) {
	if dd == nil {
		return
	}
	for _, b := range d.batches {
		if len(b.pos) == 0 {
			continue
		}
		dd.DepthMask(b.depthMask)
		dd.Begin(b.prim, b.size)
		for i, p := range b.pos {
			dd.Vertex(p, b.color[i])
		}
		dd.End()
	}
}

func DuRGBA[T int | int32 | uint8](r, g, b, a T) Colorb {
	return Colorb{uint8(r), uint8(g), uint8(b), uint8(a)}
}

func DuRGBAf(fr, fg, fb, fa float32) Colorb {
	r := int(fr * 255.0)
	g := int(fg * 255.0)
	b := int(fb * 255.0)
	a := int(fa * 255.0)
	return DuRGBA(r, g, b, a)
}

func DuDarkenCol(col Colorb) (res Colorb) {
	i := col.Int()
	res.FromInt(((i >> 1) & 0x007f7f7f) | (i & 0xff000000))
	return res
}

func DuTransCol(c Colorb, a uint8) Colorb {
	return Colorb{c.R(), c.G(), c.B(), a}
}

func DuAppendLine(dd DuDebugDraw, a, b common.Vec3, col Colorb) {
	dd.Vertex(a, col)
	dd.Vertex(b, col)
}
