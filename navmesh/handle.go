package navmesh

import "sync/atomic"

// Handle points at the currently published mesh. Readers may Load at any
// time; they only ever see a fully built mesh.
type Handle struct {
	cur atomic.Pointer[NavMesh]
}

// Load returns the published mesh, or nil before the first Build.
func (h *Handle) Load() *NavMesh {
	return h.cur.Load()
}

func (h *Handle) Generation() uint64 {
	if m := h.cur.Load(); m != nil {
		return m.Generation
	}
	return 0
}

func (h *Handle) swap(m *NavMesh) *NavMesh {
	return h.cur.Swap(m)
}
