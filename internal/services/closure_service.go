package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sjperalta/bitacora-api/internal/bitacora"
	"github.com/sjperalta/bitacora-api/internal/config"
	"github.com/sjperalta/bitacora-api/internal/jobs"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/internal/repository"
	"github.com/sjperalta/bitacora-api/internal/statemachine"
	"github.com/sjperalta/bitacora-api/pkg/logger"
	"gorm.io/datatypes"
)

// JobQueue is the part of the background worker the services use
type JobQueue interface {
	Enqueue(name string, job jobs.Job)
	EnqueueAsync(name string, job jobs.Job)
}

// CloseDayInput is the confirmed official text and optional PIN
type CloseDayInput struct {
	Date    string
	Content string
	Pin     *string
}

// ClosureResult identifies a sealed day
type ClosureResult struct {
	ClosureID      uint      `json:"closure_id"`
	Folio          string    `json:"folio"`
	ProjectID      uint      `json:"project_id"`
	Date           string    `json:"date"`
	ClosedAt       time.Time `json:"closed_at"`
	ContentHash    string    `json:"content_hash"`
	LockedEntries  int64     `json:"locked_entries"`
	State          string    `json:"state"`
	LockIncomplete bool      `json:"lock_incomplete"`
	Warning        string    `json:"warning,omitempty"`
}

// IntegrityReport compares the sealed text with its stored hash
type IntegrityReport struct {
	Folio           string `json:"folio"`
	Date            string `json:"date"`
	Valid           bool   `json:"valid"`
	StoredHash      string `json:"stored_hash"`
	ComputedHash    string `json:"computed_hash"`
	State           string `json:"state"`
	UnlockedEntries int64  `json:"unlocked_entries"`
}

// RepairResult reports one lock repair
type RepairResult struct {
	ProjectID uint   `json:"project_id"`
	Date      string `json:"date"`
	Locked    int64  `json:"locked"`
	State     string `json:"state"`
}

// ClosureService seals days: it writes the closure record and propagates the
// lock onto the day's entries.
type ClosureService struct {
	access      *AccessService
	bitacora    *BitacoraService
	closures    repository.ClosureRepository
	entries     repository.EntryRepository
	audit       *AuditService
	queue       JobQueue
	calendar    *bitacora.Calendar
	cfg         *config.Config
	lockBackoff time.Duration

	// follow-up jobs run after a successful closure; wired by NewServices
	afterClose []followUp
}

func NewClosureService(access *AccessService, bitacoraSvc *BitacoraService, repos *repository.Repositories, audit *AuditService, queue JobQueue, cfg *config.Config) *ClosureService {
	return &ClosureService{
		access:      access,
		bitacora:    bitacoraSvc,
		closures:    repos.Closure,
		entries:     repos.Entry,
		audit:       audit,
		queue:       queue,
		calendar:    bitacoraSvc.Calendar(),
		cfg:         cfg,
		lockBackoff: 200 * time.Millisecond,
	}
}

// FollowUp builds a background job for a freshly sealed day
type FollowUp func(project *models.Project, closure *models.DayClosure) (string, jobs.Job)

type followUp struct {
	build FollowUp
	async bool
}

// OnClosed registers a background job to enqueue after each closure
func (s *ClosureService) OnClosed(job FollowUp) {
	s.afterClose = append(s.afterClose, followUp{build: job})
}

// OnClosedAsync is OnClosed for jobs that wait on the network and should not hold a pool worker
func (s *ClosureService) OnClosedAsync(job FollowUp) {
	s.afterClose = append(s.afterClose, followUp{build: job, async: true})
}

// CloseDay seals a project day.
//
// The closure row is inserted first; the unique (project_id, closure_date)
// constraint decides concurrent attempts. Only then are the entries of the day
// locked, with retries. When locking keeps failing the closure stands, the
// result carries LockIncomplete and a repair job is queued.
func (s *ClosureService) CloseDay(ctx context.Context, actor *Actor, projectID uint, in CloseDayInput) (*ClosureResult, error) {
	project, err := s.access.AuthorizeWrite(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	w, err := s.bitacora.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	now := s.calendar.Now()
	if w.IsFuture(now) {
		return nil, NewValidationError("date", "no se puede cerrar un día futuro")
	}

	closed, err := s.bitacora.IsDayClosed(ctx, projectID, w)
	if err != nil {
		return nil, err
	}
	if closed {
		return nil, ErrAlreadyClosed
	}

	content, pinHash, err := s.validateClosure(in)
	if err != nil {
		return nil, err
	}

	closure := &models.DayClosure{
		OrganizationID:  project.OrganizationID,
		ProjectID:       project.ID,
		ClosureDate:     datatypes.Date(w.Key()),
		OfficialContent: content,
		ContentHash:     bitacora.ContentHash(content),
		PinHash:         pinHash,
		ClosedBy:        actor.UserID,
		ClosedAt:        now,
	}
	if err := s.closures.Create(ctx, closure); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyClosed
		}
		return nil, storageErr("create_closure", err)
	}

	// the closure is committed: locking and follow-ups run even if the client goes away
	sealed := context.WithoutCancel(ctx)

	log := logger.FromContext(sealed).With("project_id", project.ID, "date", w.Date, "folio", closure.GUID)
	log.Info("Day closed")

	status := &models.DayStatus{ProjectID: project.ID, Date: w.Date}
	day := statemachine.NewDayFSM(status)
	if err := day.Close(sealed); err != nil {
		return nil, err
	}

	result := &ClosureResult{
		ClosureID:   closure.ID,
		Folio:       closure.GUID,
		ProjectID:   project.ID,
		Date:        w.Date,
		ClosedAt:    closure.ClosedAt,
		ContentHash: closure.ContentHash,
	}

	locked, lockErr := s.lockWithRetry(sealed, project.ID, w, actor.UserID, now)
	result.LockedEntries = locked
	if lockErr != nil {
		log.Error("Lock propagation failed, scheduling repair", "error", lockErr)
		if err := day.LockFailed(sealed); err != nil {
			return nil, err
		}
		result.LockIncomplete = true
		result.Warning = ErrLockIncomplete.Error()
		s.enqueueRepair(project.ID, w.Date)
	}
	result.State = status.State

	s.audit.LogBestEffort(sealed, AuditEvent{
		OrganizationID: project.OrganizationID,
		ProjectID:      project.ID,
		UserID:         actorID(actor),
		Action:         models.AuditActionCloseDay,
		Entity:         models.AuditEntityDayClosure,
		EntityID:       closure.ID,
		Details: map[string]interface{}{
			"date":            w.Date,
			"folio":           closure.GUID,
			"content_hash":    closure.ContentHash,
			"locked_entries":  locked,
			"lock_incomplete": result.LockIncomplete,
			"has_pin":         closure.HasPin(),
		},
	})

	closure.Closer = models.User{ID: actor.UserID, FullName: actor.Name}
	for _, follow := range s.afterClose {
		name, job := follow.build(project, closure)
		if follow.async {
			s.queue.EnqueueAsync(name, job)
		} else {
			s.queue.Enqueue(name, job)
		}
	}
	return result, nil
}

func (s *ClosureService) validateClosure(in CloseDayInput) (string, *string, error) {
	verr := &ValidationError{}

	// the text is sealed as submitted; length and hash use its normalised form
	content := in.Content
	if n := bitacora.ContentLength(content); n < s.cfg.ClosureMinContent || n > s.cfg.ClosureMaxContent {
		verr.Add("official_content", fmt.Sprintf("el contenido oficial debe tener entre %d y %d caracteres (tiene %d)",
			s.cfg.ClosureMinContent, s.cfg.ClosureMaxContent, n))
	}

	var pinHash *string
	if in.Pin != nil && *in.Pin != "" {
		hashed, err := bitacora.HashPin(*in.Pin)
		switch {
		case errors.Is(err, bitacora.ErrPinFormat):
			verr.Add("pin", err.Error())
		case err != nil:
			return "", nil, fmt.Errorf("hash pin: %w", err)
		default:
			pinHash = &hashed
		}
	}

	if err := verr.OrNil(); err != nil {
		return "", nil, err
	}
	return content, pinHash, nil
}

// lockWithRetry runs the idempotent lock statement until it succeeds or the
// retries are exhausted.
func (s *ClosureService) lockWithRetry(ctx context.Context, projectID uint, w bitacora.DayWindow, lockedBy uint, lockedAt time.Time) (int64, error) {
	attempts := s.cfg.LockRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		n, err := s.entries.LockWindow(ctx, projectID, w.Start, w.End, lockedBy, lockedAt)
		if err == nil {
			return n, nil
		}
		lastErr = err
		logger.FromContext(ctx).Warn("Lock attempt failed",
			"project_id", projectID, "date", w.Date, "attempt", attempt, "error", err)

		if attempt < attempts {
			select {
			case <-time.After(s.lockBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
	}
	return 0, storageErr("lock_entries", lastErr)
}

func (s *ClosureService) enqueueRepair(projectID uint, date string) {
	s.queue.Enqueue(jobs.JobRepairLocks, func(ctx context.Context) error {
		_, err := s.RepairLocks(ctx, projectID, date)
		return err
	})
}

// IsDayClosed reports whether a closure exists for the date
func (s *ClosureService) IsDayClosed(ctx context.Context, projectID uint, date string) (bool, error) {
	w, err := s.bitacora.ParseDate(date)
	if err != nil {
		return false, err
	}
	return s.bitacora.IsDayClosed(ctx, projectID, w)
}

// GetClosure returns the closure record of a day
func (s *ClosureService) GetClosure(ctx context.Context, actor *Actor, projectID uint, date string) (*models.DayClosure, error) {
	if _, err := s.access.AuthorizeProject(ctx, actor, projectID); err != nil {
		return nil, err
	}
	w, err := s.bitacora.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, projectID, w)
}

func (s *ClosureService) find(ctx context.Context, projectID uint, w bitacora.DayWindow) (*models.DayClosure, error) {
	closure, err := s.closures.FindByDate(ctx, projectID, datatypes.Date(w.Key()))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, storageErr("find_closure", err)
	}
	return closure, nil
}

// VerifyClosurePin checks a PIN against the one set when the day was sealed
func (s *ClosureService) VerifyClosurePin(ctx context.Context, actor *Actor, projectID uint, date, pin string) (bool, error) {
	closure, err := s.GetClosure(ctx, actor, projectID, date)
	if err != nil {
		return false, err
	}
	if !closure.HasPin() {
		return false, NewValidationError("pin", "este cierre no tiene PIN")
	}
	if err := bitacora.ValidatePin(pin); err != nil {
		return false, NewValidationError("pin", err.Error())
	}
	return bitacora.VerifyPin(*closure.PinHash, pin), nil
}

// VerifyIntegrity recomputes the content hash of a sealed day and reports its lock state
func (s *ClosureService) VerifyIntegrity(ctx context.Context, actor *Actor, projectID uint, date string) (*IntegrityReport, error) {
	closure, err := s.GetClosure(ctx, actor, projectID, date)
	if err != nil {
		return nil, err
	}
	return s.integrity(ctx, closure)
}

func (s *ClosureService) integrity(ctx context.Context, closure *models.DayClosure) (*IntegrityReport, error) {
	w, err := s.bitacora.ParseDate(closure.DateString())
	if err != nil {
		return nil, err
	}
	status, err := s.bitacora.DayStatus(ctx, closure.ProjectID, w)
	if err != nil {
		return nil, err
	}
	computed, ok := bitacora.VerifyContent(closure.OfficialContent, closure.ContentHash)
	return &IntegrityReport{
		Folio:           closure.GUID,
		Date:            w.Date,
		Valid:           ok,
		StoredHash:      closure.ContentHash,
		ComputedHash:    computed,
		State:           status.State,
		UnlockedEntries: status.UnlockedCount,
	}, nil
}

// VerifyIntegrityByDate is VerifyIntegrity for operators, without an actor
func (s *ClosureService) VerifyIntegrityByDate(ctx context.Context, projectID uint, date string) (*IntegrityReport, error) {
	w, err := s.bitacora.ParseDate(date)
	if err != nil {
		return nil, err
	}
	closure, err := s.find(ctx, projectID, w)
	if err != nil {
		return nil, err
	}
	return s.integrity(ctx, closure)
}

// ListClosures pages through the sealed days of a project, newest first
func (s *ClosureService) ListClosures(ctx context.Context, actor *Actor, projectID uint, query *repository.ListQuery) ([]models.DayClosure, int64, error) {
	if _, err := s.access.AuthorizeProject(ctx, actor, projectID); err != nil {
		return nil, 0, err
	}
	closures, total, err := s.closures.ListByProject(ctx, projectID, query)
	if err != nil {
		return nil, 0, storageErr("list_closures", err)
	}
	return closures, total, nil
}

// RepairLocks locks any entry of a closed day that is still unlocked. It is
// idempotent and safe to run at any time.
func (s *ClosureService) RepairLocks(ctx context.Context, projectID uint, date string) (*RepairResult, error) {
	w, err := s.bitacora.ParseDate(date)
	if err != nil {
		return nil, err
	}
	closure, err := s.find(ctx, projectID, w)
	if err != nil {
		return nil, err
	}
	return s.repair(ctx, closure, w)
}

func (s *ClosureService) repair(ctx context.Context, closure *models.DayClosure, w bitacora.DayWindow) (*RepairResult, error) {
	status, err := s.bitacora.DayStatus(ctx, closure.ProjectID, w)
	if err != nil {
		return nil, err
	}
	result := &RepairResult{ProjectID: closure.ProjectID, Date: w.Date, State: status.State}
	if status.State != models.DayStateLockIncomplete {
		return result, nil
	}

	n, err := s.entries.LockWindow(ctx, closure.ProjectID, w.Start, w.End, closure.ClosedBy, s.calendar.Now())
	if err != nil {
		return nil, storageErr("repair_locks", err)
	}
	result.Locked = n

	if err := statemachine.NewDayFSM(status).Relock(ctx); err != nil {
		return nil, err
	}
	result.State = status.State

	logger.FromContext(ctx).Info("Locks repaired",
		"project_id", closure.ProjectID, "date", w.Date, "locked", n)
	s.audit.LogBestEffort(ctx, AuditEvent{
		OrganizationID: closure.OrganizationID,
		ProjectID:      closure.ProjectID,
		Action:         models.AuditActionLockRepair,
		Entity:         models.AuditEntityDayClosure,
		EntityID:       closure.ID,
		Details:        map[string]interface{}{"date": w.Date, "locked_entries": n},
	})
	return result, nil
}

// RepairRecentLocks repairs every day closed within lookback. One failing day
// does not stop the others; their errors are joined.
func (s *ClosureService) RepairRecentLocks(ctx context.Context, lookback time.Duration) ([]RepairResult, error) {
	since := s.calendar.WindowOf(s.calendar.Now().Add(-lookback))
	closures, err := s.closures.FindClosedSince(ctx, datatypes.Date(since.Key()))
	if err != nil {
		return nil, storageErr("find_recent_closures", err)
	}

	var (
		repaired []RepairResult
		errs     []error
	)
	for i := range closures {
		closure := &closures[i]
		w, err := s.bitacora.ParseDate(closure.DateString())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		result, err := s.repair(ctx, closure, w)
		if err != nil {
			errs = append(errs, fmt.Errorf("project %d %s: %w", closure.ProjectID, w.Date, err))
			continue
		}
		if result.Locked > 0 {
			repaired = append(repaired, *result)
		}
	}
	return repaired, errors.Join(errs...)
}
