package debug_utils

import (
	"github.com/gorustyt/polynavmesh/cdt"
	"github.com/gorustyt/polynavmesh/common"
	"github.com/gorustyt/polynavmesh/navmesh"
)

// DrawConfig replaces a global draw toggle: the host owns it and passes it in.
type DrawConfig struct {
	Enabled      bool
	NavigableCol Colorb
	BlockedCol   Colorb
	// Height and BlockedHeight lift the lines above the ground; blocked faces
	// sit slightly higher so they are not hidden by shared edges.
	Height        float32
	BlockedHeight float32
	LineWidth     float32
}

func DefaultDrawConfig() DrawConfig {
	return DrawConfig{
		Enabled:       true,
		NavigableCol:  DuRGBA(0, 255, 0, 255),
		BlockedCol:    DuRGBA(255, 0, 0, 255),
		Height:        2.0,
		BlockedHeight: 2.1,
		LineWidth:     1.0,
	}
}

func lift(p common.Vec2, y float32) common.Vec3 {
	return common.Vec3{p.X(), y, p.Y()}
}

// DuDebugDrawTriangulation outlines every inner face, navigable ones in
// NavigableCol and the rest in BlockedCol.
func DuDebugDrawTriangulation(dd DuDebugDraw, tri *cdt.Triangulation, navigable navmesh.NavigableFaceSet, cfg DrawConfig) {
	if dd == nil || tri == nil || !cfg.Enabled {
		return
	}

	dd.Begin(DU_DRAW_LINES, cfg.LineWidth)
	tri.InnerFaces(func(f cdt.Face) bool {
		col, y := cfg.NavigableCol, cfg.Height
		if !navigable.Contains(f.ID) {
			col, y = cfg.BlockedCol, cfg.BlockedHeight
		}
		a := lift(tri.Position(f.Vertices[0]), y)
		b := lift(tri.Position(f.Vertices[1]), y)
		c := lift(tri.Position(f.Vertices[2]), y)
		DuAppendLine(dd, a, b, col)
		DuAppendLine(dd, b, c, col)
		DuAppendLine(dd, c, a, col)
		return true
	})
	dd.End()
}

// DuDebugDrawNavMesh fills the exported triangles with a translucent col and
// outlines them with a darker shade.
func DuDebugDrawNavMesh(dd DuDebugDraw, mesh *navmesh.NavMesh, col Colorb, y float32) {
	if dd == nil || mesh == nil {
		return
	}

	fill := DuTransCol(col, 64)
	dd.DepthMask(false)
	dd.Begin(DU_DRAW_TRIS)
	for _, t := range mesh.Triangles {
		for _, i := range t {
			dd.Vertex(lift(mesh.Vertices[i], y), fill)
		}
	}
	dd.End()
	dd.DepthMask(true)

	edge := DuDarkenCol(col)
	dd.Begin(DU_DRAW_LINES, 1.5)
	for _, t := range mesh.Triangles {
		for k := 0; k < 3; k++ {
			DuAppendLine(dd, lift(mesh.Vertices[t[k]], y), lift(mesh.Vertices[t[common.Next(k, 3)]], y), edge)
		}
	}
	dd.End()
}
