package navmesh

import (
	"github.com/gorustyt/polynavmesh/cdt"
	"github.com/gorustyt/polynavmesh/common"
)

// NavMesh is the exported walkable mesh. It is never mutated once published.
type NavMesh struct {
	Vertices  []common.Vec2
	Triangles [][3]int
	// Generation counts publications by the store that built the mesh.
	Generation uint64
}

// Export writes one triangle per navigable face, in face iteration order.
// Vertices are numbered on first use, so each triangulation vertex appears
// at most once.
func Export(tri *cdt.Triangulation, navigable NavigableFaceSet) *NavMesh {
	mesh := &NavMesh{
		Triangles: make([][3]int, 0, navigable.Len()),
	}
	remap := make(map[cdt.VertexHandle]int)
	tri.InnerFaces(func(f cdt.Face) bool {
		if !navigable.Contains(f.ID) {
			return true
		}
		var t [3]int
		for i, h := range f.Vertices {
			idx, ok := remap[h]
			if !ok {
				idx = len(mesh.Vertices)
				remap[h] = idx
				mesh.Vertices = append(mesh.Vertices, tri.Position(h))
			}
			t[i] = idx
		}
		mesh.Triangles = append(mesh.Triangles, t)
		return true
	})
	return mesh
}
