package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jihoonbyun/loandraft/internal/config"
	"github.com/jihoonbyun/loandraft/internal/store"
)

// Generator produces a drafted article text from a system message and a
// drafting prompt. *llm.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, systemMsg, prompt string) (string, error)
}

// Orchestrator manages the article drafting pipeline.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	gen   Generator
	st    *store.Store
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, gen Generator, st *store.Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		gen:   gen,
		st:    st,
		log:   log,
		cfg:   cfg,
	}
}

// NewJob builds a queued job with a fresh ID.
func NewJob(generatedAgreementID, refAgreementID, refArticleID int64, termSheetText string) *Job {
	now := time.Now()
	return &Job{
		ID:                   newJobID(),
		GeneratedAgreementID: generatedAgreementID,
		RefAgreementID:       refAgreementID,
		RefArticleID:         refArticleID,
		TermSheetText:        termSheetText,
		Status:               StatusQueued,
		Phase:                "queued",
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.gen, o.st, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
