// Package job tracks long-running PRO analysis runs.
package job

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tradercopilot/swingdash/internal/core"
)

// Status represents job status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Done reports whether the job reached a terminal state.
func (s Status) Done() bool {
	return s == StatusComplete || s == StatusFailed
}

// Job represents an async job.
type Job struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Owner     string    `json:"-"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store manages async jobs in memory. Jobs older than ttl are pruned on
// access and the oldest job is evicted once maxSize is reached.
type Store struct {
	jobs    map[string]*Job
	order   []string
	maxSize int
	ttl     time.Duration
	mu      sync.RWMutex
	now     func() time.Time
}

// NewStore creates a new job store.
func NewStore(maxSize int, ttl time.Duration) *Store {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Store{
		jobs:    make(map[string]*Job),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create creates a new pending job owned by owner and returns a copy.
func (s *Store) Create(jobType, owner string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	now := s.now()
	job := &Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Owner:     owner,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if len(s.jobs) >= s.maxSize && len(s.order) > 0 {
		oldest := s.order[0]
		delete(s.jobs, oldest)
		s.order = s.order[1:]
	}

	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)

	jobCopy := *job
	return &jobCopy
}

// Get retrieves a job by ID. Jobs belonging to another owner are reported
// as missing.
func (s *Store) Get(id, owner string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	job, ok := s.jobs[id]
	if !ok || job.Owner != owner {
		return nil, core.ErrNotFound
	}

	jobCopy := *job
	return &jobCopy, nil
}

// Update modifies a job using an update function.
func (s *Store) Update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return core.ErrNotFound
	}

	fn(job)
	job.UpdatedAt = s.now()
	return nil
}

// Start marks a job as running.
func (s *Store) Start(id string) error {
	return s.Update(id, func(j *Job) {
		j.Status = StatusRunning
		j.Progress = 10
	})
}

// Complete stores the job result.
func (s *Store) Complete(id string, result any) error {
	return s.Update(id, func(j *Job) {
		j.Status = StatusComplete
		j.Progress = 100
		j.Result = result
	})
}

// Fail records the error message a user should see.
func (s *Store) Fail(id, message string) error {
	return s.Update(id, func(j *Job) {
		j.Status = StatusFailed
		j.Error = message
	})
}

// List returns the owner's jobs, newest first.
func (s *Store) List(owner string) []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	result := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if job.Owner == owner {
			result = append(result, *job)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// Len returns the number of stored jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func (s *Store) pruneLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	kept := s.order[:0]
	for _, id := range s.order {
		job, ok := s.jobs[id]
		if !ok {
			continue
		}
		if job.Status.Done() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}
