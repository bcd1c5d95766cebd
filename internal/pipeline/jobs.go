package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusCounting    JobStatus = "counting"
	StatusRasterizing JobStatus = "rasterizing"
	StatusRecognizing JobStatus = "recognizing"
	StatusRendering   JobStatus = "rendering"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// Job tracks the state of a single PDF-to-deck conversion.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	deckData []byte
}

// Progress tracks conversion progress.
type Progress struct {
	TotalPages    int      `json:"total_pages"`
	PagesRendered int      `json:"pages_rendered"`
	Errors        []string `json:"errors"`
}

// NewJob creates a queued job for an uploaded PDF.
func NewJob(filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        NewJobID(),
		Filename:  filename,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error without failing the job.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Errors = append(j.Progress.Errors, err)
	j.UpdatedAt = time.Now()
}

// SetTitle records the inferred (or fallback) deck title.
func (j *Job) SetTitle(title string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = title
	j.UpdatedAt = time.Now()
}

// SetTotalPages records the source PDF's page count.
func (j *Job) SetTotalPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalPages = n
	j.UpdatedAt = time.Now()
}

// SetPagesRendered records how many pages made it into the deck.
func (j *Job) SetPagesRendered(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PagesRendered = n
	j.UpdatedAt = time.Now()
}

// FileData returns the uploaded PDF bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetResult stores the finished deck and releases the source PDF, which is
// no longer needed once rendering succeeded.
func (j *Job) SetResult(deck []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.deckData = deck
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Result returns the deck title and bytes; ok is false until the job has
// completed successfully.
func (j *Job) Result() (title string, deck []byte, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusCompleted || j.deckData == nil {
		return "", nil, false
	}
	return j.Title, j.deckData, true
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Filename: j.Filename,
		Title:    j.Title,
		Status:   j.Status,
		Phase:    j.Phase,
		Progress: Progress{
			TotalPages:    j.Progress.TotalPages,
			PagesRendered: j.Progress.PagesRendered,
			Errors:        errs,
		},
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
// Finished decks live on the job until the TTL passes, so the TTL bounds
// deck memory as well as metadata.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
