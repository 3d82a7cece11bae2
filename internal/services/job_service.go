package services

import (
	"time"

	"github.com/sjperalta/bitacora-api/internal/jobs"
)

// StatsSource reports background worker activity
type StatsSource interface {
	GetStats() jobs.WorkerStats
}

type JobService struct {
	worker StatsSource
}

func NewJobService(worker StatsSource) *JobService {
	return &JobService{
		worker: worker,
	}
}

// GetStatus summarises the worker for the health endpoint
func (s *JobService) GetStatus() map[string]interface{} {
	if s.worker == nil {
		return map[string]interface{}{"running": false}
	}
	stats := s.worker.GetStats()
	lastRun := make(map[string]string, len(stats.LastRun))
	for name, at := range stats.LastRun {
		lastRun[name] = time.Unix(at, 0).UTC().Format(time.RFC3339)
	}
	return map[string]interface{}{
		"running":        true,
		"active_jobs":    stats.ActiveJobs,
		"finished_jobs":  stats.FinishedJobs,
		"failed_jobs":    stats.FailedJobs,
		"queue_length":   stats.QueueLength,
		"max_concurrent": stats.MaxConcurrent,
		"last_run":       lastRun,
	}
}
