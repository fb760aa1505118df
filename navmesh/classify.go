package navmesh

import (
	"github.com/gorustyt/polynavmesh/cdt"
)

// MaxConstrainedEdges is the largest number of constrained edges a face may
// touch and still be walkable.
const MaxConstrainedEdges = 1

// NavigableFaceSet holds the inner faces classified as walkable.
type NavigableFaceSet struct {
	faces map[cdt.FaceID]struct{}
}

func (s NavigableFaceSet) Contains(id cdt.FaceID) bool {
	_, ok := s.faces[id]
	return ok
}

func (s NavigableFaceSet) Len() int {
	return len(s.faces)
}

func ConstrainedEdgeCount(f cdt.Face) int {
	return f.ConstrainedCount()
}

// Classify visits every inner face and keeps those touching at most one
// constrained edge. A face with two or more is taken to lie inside, or be
// wedged against, an obstacle outline. This is a local test: faces inside an
// obstacle that touch only one outline edge are still reported walkable.
func Classify(tri *cdt.Triangulation) NavigableFaceSet {
	set := NavigableFaceSet{faces: make(map[cdt.FaceID]struct{}, tri.NumInnerFaces())}
	tri.InnerFaces(func(f cdt.Face) bool {
		if ConstrainedEdgeCount(f) <= MaxConstrainedEdges {
			set.faces[f.ID] = struct{}{}
		}
		return true
	})
	return set
}
