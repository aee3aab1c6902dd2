package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sevigo/lint-warden/internal/core"
)

// Dispatcher implements core.JobDispatcher with a pool of worker goroutines.
// Events for a pull request that is already queued or running are coalesced:
// the pull request is reconciled once more after the current run, against its
// latest state, and never by two workers at the same time.
type Dispatcher struct {
	job        core.Job               // Job implementation executed by each worker.
	jobQueue   chan *core.GitHubEvent // Queue of incoming GitHub events.
	maxWorkers int                    // Number of concurrent workers.
	wg         sync.WaitGroup         // Tracks active workers for graceful shutdown.
	logger     *slog.Logger           // Logger instance for the dispatcher.

	mu      sync.Mutex
	pending map[string]*core.GitHubEvent // queued events by pull request
	running map[string]bool              // pull requests being reconciled
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(job core.Job, maxWorkers int, logger *slog.Logger) *Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &Dispatcher{
		job:        job,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.GitHubEvent, 100),
		logger:     logger,
		pending:    make(map[string]*core.GitHubEvent),
		running:    make(map[string]bool),
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process jobs from the queue.
func (d *Dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes events from the queue until it's closed.
func (d *Dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting reconcile worker", "id", workerID)

	for event := range d.jobQueue {
		d.processEvent(workerID, event)
	}

	d.logger.Info("shutting down reconcile worker", "id", workerID)
}

// processEvent runs the job for the latest queued event of a pull request
// and keeps going while newer events for it arrive. A token for a pull
// request another worker is running is dropped; that worker picks it up.
func (d *Dispatcher) processEvent(workerID int, token *core.GitHubEvent) {
	key := prKey(token)

	d.mu.Lock()
	if d.running[key] {
		d.mu.Unlock()
		return
	}
	for {
		event, ok := d.pending[key]
		if !ok {
			delete(d.running, key)
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.running[key] = true
		d.mu.Unlock()

		d.logger.Info("worker processing job",
			"worker_id", workerID,
			"repo", event.RepoFullName,
			"pr", event.PRNumber,
		)
		if err := d.job.Run(context.Background(), event); err != nil {
			d.logger.Error("reconcile job failed",
				"repo", event.RepoFullName,
				"pr", event.PRNumber,
				"error", err,
			)
		}

		d.mu.Lock()
	}
}

// Dispatch queues a GitHub event for processing by a worker. An event for a
// pull request that is still waiting replaces the waiting one; an event for a
// pull request being reconciled is picked up by that worker when it finishes.
func (d *Dispatcher) Dispatch(_ context.Context, event *core.GitHubEvent) error {
	key := prKey(event)

	// The send never blocks, so the lock is held across it. A rejected event
	// must not leave an entry that a concurrent event could coalesce onto.
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, queued := d.pending[key]; queued || d.running[key] {
		d.pending[key] = event
		d.logger.Info("coalescing reconcile job with queued one", "repo", event.RepoFullName, "pr", event.PRNumber)
		return nil
	}

	select {
	case d.jobQueue <- event:
		d.pending[key] = event
		d.logger.Info("queuing reconcile job", "repo", event.RepoFullName, "pr", event.PRNumber)
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new reconcile job")
	}
}

func prKey(event *core.GitHubEvent) string {
	return fmt.Sprintf("%s/%s#%d", event.RepoOwner, event.RepoName, event.PRNumber)
}

// Stop gracefully shuts down the dispatcher, waiting for all workers to finish.
func (d *Dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.jobQueue)
	d.wg.Wait()
	d.logger.Info("all reconcile jobs have finished")
}
