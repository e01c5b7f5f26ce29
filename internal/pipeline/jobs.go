package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of a drafting job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusGenerating  JobStatus = "generating"
	StatusReconciling JobStatus = "reconciling"
	StatusSaving      JobStatus = "saving"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// Job tracks the drafting of a single article into a working agreement.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	// Target working agreement.
	GeneratedAgreementID int64 `json:"generated_agreement_id"`

	// Reference article to mirror and the term sheet driving the draft.
	RefAgreementID int64  `json:"ref_agreement_id"`
	RefArticleID   int64  `json:"ref_article_id"`
	TermSheetText  string `json:"-"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	// Populated on completion.
	ArticleID     int64  `json:"article_id,omitempty"`
	ClauseCount   int    `json:"clause_count,omitempty"`
	ReconcileTier string `json:"reconcile_tier,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	warnings []string
	errors   []string
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
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

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// AddWarning records a non-fatal warning, such as a clause-count mismatch.
func (j *Job) AddWarning(w string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.warnings = append(j.warnings, w)
	j.UpdatedAt = time.Now()
}

// SetResult records the saved article and how its clauses were recovered.
func (j *Job) SetResult(articleID int64, clauseCount int, tier string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ArticleID = articleID
	j.ClauseCount = clauseCount
	j.ReconcileTier = tier
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID                   string    `json:"job_id"`
	GeneratedAgreementID int64     `json:"generated_agreement_id"`
	RefAgreementID       int64     `json:"ref_agreement_id"`
	RefArticleID         int64     `json:"ref_article_id"`
	Status               JobStatus `json:"status"`
	Phase                string    `json:"phase"`
	ArticleID            int64     `json:"article_id,omitempty"`
	ClauseCount          int       `json:"clause_count,omitempty"`
	ReconcileTier        string    `json:"reconcile_tier,omitempty"`
	Warnings             []string  `json:"warnings"`
	Errors               []string  `json:"errors"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	warnings := append([]string{}, j.warnings...)
	errs := append([]string{}, j.errors...)
	return JobSnapshot{
		ID:                   j.ID,
		GeneratedAgreementID: j.GeneratedAgreementID,
		RefAgreementID:       j.RefAgreementID,
		RefArticleID:         j.RefArticleID,
		Status:               j.Status,
		Phase:                j.Phase,
		ArticleID:            j.ArticleID,
		ClauseCount:          j.ClauseCount,
		ReconcileTier:        j.ReconcileTier,
		Warnings:             warnings,
		Errors:               errs,
	}
}
