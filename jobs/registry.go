package jobs

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the only store of job records. All methods are safe for
// concurrent use by request handlers and pipeline workers.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewRegistry() *Registry {
	return &Registry{jobs: map[string]*Job{}}
}

// Create allocates a fresh job in Processing state.
func (r *Registry) Create(fileName string) Job {
	j := &Job{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Status:    StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
	return j.clone()
}

// Get returns a snapshot of the job.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return Job{}, notFound(id)
	}
	return j.clone(), nil
}

// Update applies mutate to a copy of the job and commits it atomically.
// A terminal job is never modified again, and mutations must leave the
// record consistent with its status.
func (r *Registry) Update(id string, mutate func(*Job) error) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.jobs[id]
	if !ok {
		return Job{}, notFound(id)
	}
	if cur.Status.Terminal() {
		return cur.clone(), ErrFinalized
	}

	next := cur.clone()
	if err := mutate(&next); err != nil {
		return cur.clone(), err
	}
	next.ID, next.FileName, next.CreatedAt = cur.ID, cur.FileName, cur.CreatedAt
	if !next.consistent() {
		return cur.clone(), fmt.Errorf("jobs: inconsistent update of %s to status %q", id, next.Status)
	}

	*cur = next
	return next.clone(), nil
}

// Delete removes the job record.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return notFound(id)
	}
	delete(r.jobs, id)
	return nil
}

// List returns snapshots of every job, oldest first.
func (r *Registry) List() []Job {
	r.mu.RLock()
	out := make([]Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j.clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].ID < out[k].ID
		}
		return out[i].CreatedAt.Before(out[k].CreatedAt)
	})
	return out
}
