package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sjperalta/bitacora-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Job names used by the bitácora service
const (
	JobRepairLocks       = "repair_locks"
	JobRepairRecentLocks = "repair_recent_locks"
	JobArchiveClosurePDF = "archive_closure_pdf"
	JobNotifyDayClosed   = "notify_day_closed"
)

// Worker manages background jobs and scheduled tasks. Nothing it runs is needed
// for a request to succeed: jobs repair, archive and notify after the fact.
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	poolWG        sync.WaitGroup
	asyncWG       sync.WaitGroup
	schedWG       sync.WaitGroup
	queue         chan namedJob
	asyncSem      chan struct{}
	maxConcurrent int
	stats         WorkerStats
	statsMu       sync.RWMutex

	// closed stops new jobs; guarded by mu so no send races close(queue)
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

type namedJob struct {
	name string
	run  Job
}

// WorkerStats holds statistics about the worker.
// FinishedJobs counts every run; FailedJobs is the subset that returned an error or panicked.
type WorkerStats struct {
	ActiveJobs    int              `json:"active_jobs"`
	FinishedJobs  int64            `json:"finished_jobs"`
	FailedJobs    int64            `json:"failed_jobs"`
	QueueLength   int              `json:"queue_length"`
	MaxConcurrent int              `json:"max_concurrent"`
	LastRun       map[string]int64 `json:"last_run_unix,omitempty"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	// Allow 2x workers for async jobs
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan namedJob, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		stats:         WorkerStats{LastRun: make(map[string]int64)},
	}

	// Start worker goroutines
	for i := 0; i < numWorkers; i++ {
		w.poolWG.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool
func (w *Worker) Enqueue(name string, job Job) {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		logger.Warn("[Worker] Shut down, dropping job", "job", name)
		return
	}
	select {
	case w.queue <- namedJob{name: name, run: job}:
		w.mu.RUnlock()
		return
	default:
	}
	w.mu.RUnlock()

	logger.Warn("[Worker] Queue full, running job synchronously", "job", name)
	w.run(logger.Log.With("job", name), name, job)
}

// EnqueueAsync runs a job in its own goroutine, bounded by a semaphore, so slow
// network calls do not hold a pool worker. Shutdown waits for these too.
func (w *Worker) EnqueueAsync(name string, job Job) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		logger.Warn("[Worker] Shut down, dropping job", "job", name)
		return
	}
	w.asyncWG.Add(1)
	go func() {
		defer w.asyncWG.Done()

		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()

		w.run(logger.Log.With("job", name, "mode", "async"), name, job)
	}()
}

// process handles jobs from the queue until it is closed and drained
func (w *Worker) process(workerID int) {
	defer w.poolWG.Done()
	log := logger.Log.With("worker", workerID)
	for j := range w.queue {
		w.run(log.With("job", j.name), j.name, j.run)
	}
}

// ScheduleEveryImmediate runs a job once at startup, then at fixed intervals, so a
// restarted process repairs soon after boot instead of waiting a full interval.
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	log := logger.Log.With("job", name, "mode", "scheduled")
	w.schedWG.Add(1)
	go func() {
		defer w.schedWG.Done()
		w.run(log, name, job)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run(log, name, job)
			}
		}
	}()
}

// run executes one job, recovering panics and recording stats
func (w *Worker) run(log *slog.Logger, name string, job Job) {
	w.trackJobStart()
	start := time.Now()
	failed := false
	defer func() {
		if r := recover(); r != nil {
			log.Error("[Worker] Job panic", "panic", r)
			failed = true
		}
		w.trackJobEnd(name, failed)
	}()

	ctx := logger.WithContext(w.ctx, log)
	if err := job(ctx); err != nil {
		log.Error("[Worker] Job error", "error", err, "duration", time.Since(start))
		failed = true
		return
	}
	log.Info("[Worker] Job completed", "duration", time.Since(start))
}

// Shutdown stops accepting jobs, runs everything already queued (pool and async),
// then stops the schedulers.
func (w *Worker) Shutdown() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.queue)
		w.mu.Unlock()

		w.poolWG.Wait()
		w.asyncWG.Wait()
		w.cancel()
		w.schedWG.Wait()
	})
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.LastRun = make(map[string]int64, len(w.stats.LastRun))
	for k, v := range w.stats.LastRun {
		stats.LastRun[k] = v
	}
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd(name string, failed bool) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.FinishedJobs++
	if failed {
		w.stats.FailedJobs++
	}
	w.stats.LastRun[name] = time.Now().Unix()
}
