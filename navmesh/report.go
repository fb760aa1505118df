package navmesh

import (
	"fmt"

	"go.uber.org/multierr"
)

// ObstacleError ties a failed projection or insertion to the obstacle that
// caused it.
type ObstacleError struct {
	ID  string
	Err error
}

func (e *ObstacleError) Error() string {
	return fmt.Sprintf("navmesh: obstacle %q: %v", e.ID, e.Err)
}

func (e *ObstacleError) Unwrap() error {
	return e.Err
}

// PassReport summarizes one Build or Update pass.
type PassReport struct {
	Inserted []string
	Skipped  []*ObstacleError
	// Published is false when the pass left the triangulation untouched.
	Published  bool
	Generation uint64

	Vertices       int
	Triangles      int
	NavigableFaces int
}

// Err combines the errors of every skipped obstacle, or returns nil.
func (r *PassReport) Err() error {
	var err error
	for _, e := range r.Skipped {
		err = multierr.Append(err, e)
	}
	return err
}
