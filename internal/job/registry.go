package job

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownJobType is returned when no hydrator is registered for a
// descriptor's job type.
var ErrUnknownJobType = errors.New("unknown job type")

// HydrateFunc turns a persisted descriptor back into an executable Job
// with its dependencies wired in.
type HydrateFunc func(desc *Descriptor) (Job, error)

// Registry maps job types to hydration functions. The runner uses it
// during crash recovery to rebuild executable jobs from stored
// descriptors.
type Registry struct {
	mu        sync.RWMutex
	hydrators map[string]HydrateFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		hydrators: make(map[string]HydrateFunc),
	}
}

// Register installs the hydrator for a job type, replacing any previous one.
func (r *Registry) Register(jobType string, fn HydrateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hydrators[jobType] = fn
}

// Hydrate rebuilds an executable Job from a descriptor.
// Returns ErrUnknownJobType when the type has no registered hydrator.
func (r *Registry) Hydrate(desc *Descriptor) (Job, error) {
	r.mu.RLock()
	fn, ok := r.hydrators[desc.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, desc.Type)
	}

	return fn(desc)
}
