package jobstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/docmatch/backend/internal/domain"
)

// MemoryStore is a thread-safe in-memory job table. Each record has one
// writer (its pipeline) and many readers (status polls); all access goes
// through the table lock so readers always see a fully-constructed record.
//
// Records are retained for the life of the process. Long-running deployments
// need an external bound on table growth before this becomes a memory
// concern (TTL eviction is the obvious fix).
type MemoryStore struct {
	jobs  map[string]*domain.Job
	mutex sync.RWMutex
}

// NewMemoryStore creates an empty job table
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*domain.Job),
	}
}

// Create inserts a new job record
func (s *MemoryStore) Create(ctx context.Context, job *domain.Job) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}

	stored := *job
	s.jobs[job.ID] = &stored
	return nil
}

// Get returns a point-in-time snapshot of the job record
func (s *MemoryStore) Get(ctx context.Context, id string) (domain.Job, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return domain.Job{}, domain.ErrJobNotFound
	}
	return *job, nil
}

// SetProgress advances the progress indicator. Progress never decreases,
// and terminal jobs are left untouched.
func (s *MemoryStore) SetProgress(ctx context.Context, id string, progress int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return domain.ErrJobNotFound
	}
	if job.Status.Terminal() {
		return nil
	}
	if progress > job.Progress {
		job.Progress = progress
	}
	return nil
}

// Complete transitions the job to its completed terminal state
func (s *MemoryStore) Complete(ctx context.Context, id string, results *domain.ReconciliationResult) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return domain.ErrJobNotFound
	}
	if job.Status.Terminal() {
		return fmt.Errorf("job %s is already %s", id, job.Status)
	}

	job.Status = domain.JobStatusCompleted
	job.Progress = 100
	job.Results = results
	return nil
}

// Fail transitions the job to its failed terminal state
func (s *MemoryStore) Fail(ctx context.Context, id string, message string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return domain.ErrJobNotFound
	}
	if job.Status.Terminal() {
		return fmt.Errorf("job %s is already %s", id, job.Status)
	}

	job.Status = domain.JobStatusFailed
	job.Progress = 100
	job.Error = message
	return nil
}

// Size returns the current number of job records (for debugging/monitoring)
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.jobs)
}
