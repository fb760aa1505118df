package navmesh

import (
	"errors"
	"runtime"
	"sync"

	"github.com/gorustyt/polynavmesh/cdt"
	"github.com/gorustyt/polynavmesh/obstacle"
	"go.uber.org/zap"
)

var (
	ErrNotBuilt  = errors.New("navmesh: update before build")
	ErrMissingID = errors.New("navmesh: obstacle has no id")
)

// Obstacle is one collider submitted to a pass. ID must be stable across
// passes: an ID already incorporated is never processed again.
type Obstacle struct {
	ID        string
	Shape     obstacle.Shape
	Transform obstacle.Transform
}

type StoreOption func(s *Store)

func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithWorkers bounds the goroutines projecting obstacles in one pass.
func WithWorkers(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRetireHook is called with the previous mesh once a new one has been
// published in its place.
func WithRetireHook(fn func(old *NavMesh)) StoreOption {
	return func(s *Store) {
		s.retire = fn
	}
}

// Store owns the triangulation and publishes the navmesh built from it.
// Build and Update are serialized; readers go through Handle.
type Store struct {
	hf      Heightfield
	log     *zap.Logger
	workers int
	retire  func(old *NavMesh)

	mu           sync.RWMutex
	tri          *cdt.Triangulation
	navigable    NavigableFaceSet
	incorporated map[string]struct{}
	generation   uint64

	handle Handle
}

func NewStore(hf Heightfield, opts ...StoreOption) *Store {
	s := &Store{
		hf:      hf,
		log:     zap.NewNop(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Handle() *Handle { return &s.handle }

// Incorporated reports whether the obstacle with this ID is part of the
// current triangulation.
func (s *Store) Incorporated(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.incorporated[id]
	return ok
}

// View runs fn with the triangulation and its last classification under the
// read lock. It returns false without calling fn before the first Build.
func (s *Store) View(fn func(tri *cdt.Triangulation, navigable NavigableFaceSet)) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tri == nil {
		return false
	}
	fn(s.tri, s.navigable)
	return true
}

// Build starts a new triangulation seeded with the terrain corners, inserts
// every obstacle and publishes the result. Calling Build again discards the
// previous triangulation.
func (s *Store) Build(obstacles []Obstacle) (*PassReport, error) {
	if err := s.hf.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tri := cdt.New()
	for _, c := range s.hf.Corners() {
		if _, err := tri.InsertPoint(c); err != nil {
			return nil, err
		}
	}
	s.tri = tri
	s.incorporated = make(map[string]struct{}, len(obstacles))

	report := &PassReport{}
	s.insert(obstacles, report)
	s.publish(report)
	s.log.Info("navmesh built",
		zap.Int("obstacles", len(report.Inserted)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Uint64("generation", report.Generation))
	return report, nil
}

// Update inserts the obstacles not yet incorporated into the existing
// triangulation. The mesh is reclassified, exported and swapped in only when
// the triangulation changed: a pass whose obstacles were all skipped, or
// whose outlines were already present, publishes nothing and keeps the
// generation, since the mesh would be identical.
func (s *Store) Update(obstacles []Obstacle) (*PassReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tri == nil {
		return nil, ErrNotBuilt
	}

	report := &PassReport{Generation: s.generation}
	fresh := make([]Obstacle, 0, len(obstacles))
	for _, ob := range obstacles {
		if _, ok := s.incorporated[ob.ID]; !ok {
			fresh = append(fresh, ob)
		}
	}
	if len(fresh) == 0 {
		s.fillCounts(report)
		return report, nil
	}

	before := s.tri.Revision()
	s.insert(fresh, report)
	if s.tri.Revision() == before {
		s.log.Debug("navmesh update left triangulation unchanged", zap.Int("obstacles", len(fresh)))
		s.fillCounts(report)
		return report, nil
	}
	s.publish(report)
	s.log.Info("navmesh updated",
		zap.Int("obstacles", len(report.Inserted)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Uint64("generation", report.Generation))
	return report, nil
}

type projection struct {
	footprint obstacle.Footprint
	err       error
}

// project runs the projector over obs on a bounded set of goroutines. Results
// keep the submission order.
func (s *Store) project(obs []Obstacle) []projection {
	res := make([]projection, len(obs))
	workers := min(s.workers, len(obs))
	jobs := make(chan int)
	wg := new(sync.WaitGroup)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				fp, err := obstacle.Project(obs[i].Shape, obs[i].Transform)
				res[i] = projection{footprint: fp, err: err}
			}
		}()
	}
	for i := range obs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return res
}

// insert feeds footprints to the triangulation one at a time in submission
// order. A failing obstacle is recorded and skipped; it is not marked
// incorporated, so the host may submit it again with corrected input.
func (s *Store) insert(obs []Obstacle, report *PassReport) {
	seen := make(map[string]struct{}, len(obs))
	batch := make([]Obstacle, 0, len(obs))
	for _, ob := range obs {
		if ob.ID == "" {
			s.skip(report, ob.ID, ErrMissingID)
			continue
		}
		if _, dup := seen[ob.ID]; dup {
			s.log.Debug("duplicate obstacle id in pass", zap.String("obstacle", ob.ID))
			continue
		}
		seen[ob.ID] = struct{}{}
		batch = append(batch, ob)
	}

	for i, p := range s.project(batch) {
		id := batch[i].ID
		if p.err != nil {
			s.skip(report, id, p.err)
			continue
		}
		if _, err := s.tri.InsertPolygon(p.footprint); err != nil {
			s.skip(report, id, err)
			continue
		}
		s.incorporated[id] = struct{}{}
		report.Inserted = append(report.Inserted, id)
	}
}

func (s *Store) skip(report *PassReport, id string, err error) {
	s.log.Warn("obstacle skipped", zap.String("obstacle", id), zap.Error(err))
	report.Skipped = append(report.Skipped, &ObstacleError{ID: id, Err: err})
}

// publish classifies the whole triangulation, exports a new mesh and swaps it
// in. The old mesh is handed to the retire hook after the swap.
func (s *Store) publish(report *PassReport) {
	s.navigable = Classify(s.tri)
	mesh := Export(s.tri, s.navigable)
	s.generation++
	mesh.Generation = s.generation

	old := s.handle.swap(mesh)
	if old != nil && s.retire != nil {
		s.retire(old)
	}
	report.Published = true
	report.Generation = s.generation
	s.fillCounts(report)
}

func (s *Store) fillCounts(report *PassReport) {
	if m := s.handle.Load(); m != nil {
		report.Vertices = len(m.Vertices)
		report.Triangles = len(m.Triangles)
	}
	report.NavigableFaces = s.navigable.Len()
}
