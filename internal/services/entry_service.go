package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sjperalta/bitacora-api/internal/bitacora"
	"github.com/sjperalta/bitacora-api/internal/config"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/internal/repository"
	"github.com/sjperalta/bitacora-api/pkg/logger"
	"gorm.io/datatypes"
)

const (
	maxTitleLength = 200
	maxPhotos      = 20
)

// ManualEntryInput is a note typed by a project member for a given date
type ManualEntryInput struct {
	Date    string
	Title   *string
	Content string
}

// EventInput is an entry produced by another part of the platform
// (incident tracking, the mobile app or the system itself).
type EventInput struct {
	Source     string
	Title      *string
	Content    string
	IncidentID *uint
	Photos     []string
}

// UpdateEntryInput carries the editable fields of a manual entry
type UpdateEntryInput struct {
	Title   *string
	Content string
}

type EntryService struct {
	access   *AccessService
	bitacora *BitacoraService
	entries  repository.EntryRepository
	projects repository.ProjectRepository
	tx       *repository.TxManager
	audit    *AuditService
	calendar *bitacora.Calendar
	cfg      *config.Config
}

func NewEntryService(access *AccessService, bitacoraSvc *BitacoraService, repos *repository.Repositories, audit *AuditService, cfg *config.Config) *EntryService {
	return &EntryService{
		access:   access,
		bitacora: bitacoraSvc,
		entries:  repos.Entry,
		projects: repos.Project,
		tx:       repos.Tx,
		audit:    audit,
		calendar: bitacoraSvc.Calendar(),
		cfg:      cfg,
	}
}

// CreateManualEntry adds a note to an open day. Today's notes are stamped with
// the current instant; notes for an earlier day get that day at the current
// wall-clock time so they land in the right window.
func (s *EntryService) CreateManualEntry(ctx context.Context, actor *Actor, projectID uint, in ManualEntryInput) (*models.LogEntry, error) {
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
		return nil, NewValidationError("date", "no se pueden registrar entradas en fechas futuras")
	}

	closed, err := s.bitacora.IsDayClosed(ctx, projectID, w)
	if err != nil {
		return nil, err
	}
	if closed {
		return nil, ErrDayClosed
	}

	title, content, err := s.validateText(in.Title, in.Content)
	if err != nil {
		return nil, err
	}

	entry := &models.LogEntry{
		OrganizationID: project.OrganizationID,
		ProjectID:      project.ID,
		Source:         models.EntrySourceManual,
		Title:          title,
		Content:        content,
		CreatedBy:      actor.UserID,
		CreatedAt:      s.calendar.At(w, now),
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// re-check inside the transaction; the lock repair job covers a closure
		// committed between here and the insert
		closed, err := s.bitacora.IsDayClosed(ctx, projectID, w)
		if err != nil {
			return err
		}
		if closed {
			return ErrDayClosed
		}
		if err := s.entries.Create(ctx, entry); err != nil {
			return storageErr("create_entry", err)
		}
		return s.audit.Log(ctx, AuditEvent{
			OrganizationID: project.OrganizationID,
			ProjectID:      project.ID,
			UserID:         actorID(actor),
			Action:         models.AuditActionCreateEntry,
			Entity:         models.AuditEntityLogEntry,
			EntityID:       entry.ID,
			Details:        map[string]interface{}{"source": entry.Source, "date": w.Date},
		})
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Manual entry created",
		"project_id", project.ID, "entry_id", entry.ID, "date", w.Date)
	return s.reload(ctx, entry)
}

// RecordEvent stores an INCIDENT, MOBILE or SYSTEM entry stamped now. Events that
// arrive for a day that is already closed are stored locked, so they can never
// be edited, and show up in the day view as late arrivals.
func (s *EntryService) RecordEvent(ctx context.Context, actor *Actor, projectID uint, in EventInput) (*models.LogEntry, error) {
	project, err := s.access.AuthorizeWrite(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	source := strings.ToUpper(strings.TrimSpace(in.Source))
	switch {
	case source == models.EntrySourceManual:
		verr.Add("source", "las notas manuales se registran por su propio endpoint")
	case !models.IsValidEntrySource(source):
		verr.Add("source", "origen desconocido")
	}
	if source == models.EntrySourceIncident && in.IncidentID == nil {
		verr.Add("incident_id", "requerido para entradas de incidencia")
	}
	if len(in.Photos) > maxPhotos {
		verr.Add("photos", fmt.Sprintf("máximo %d fotografías por entrada", maxPhotos))
	}
	title, content, err := s.validateText(in.Title, in.Content)
	var textErr *ValidationError
	if errors.As(err, &textErr) {
		verr.Errors = append(verr.Errors, textErr.Errors...)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if in.IncidentID != nil {
		if _, err := s.projects.FindIncident(ctx, projectID, *in.IncidentID); err != nil {
			if repository.IsNotFound(err) {
				return nil, NewValidationError("incident_id", "la incidencia no pertenece a este proyecto")
			}
			return nil, storageErr("find_incident", err)
		}
	}

	now := s.calendar.Now()
	w := s.calendar.WindowOf(now)
	entry := &models.LogEntry{
		OrganizationID: project.OrganizationID,
		ProjectID:      project.ID,
		Source:         source,
		Title:          title,
		Content:        content,
		IncidentID:     in.IncidentID,
		Photos:         datatypes.JSONSlice[string](in.Photos),
		CreatedBy:      actor.UserID,
		CreatedAt:      now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		closed, err := s.bitacora.IsDayClosed(ctx, projectID, w)
		if err != nil {
			return err
		}
		if closed {
			lockedBy := actor.UserID
			entry.IsLocked = true
			entry.LockedAt = &now
			entry.LockedBy = &lockedBy
		}
		if err := s.entries.Create(ctx, entry); err != nil {
			return storageErr("record_event", err)
		}
		return s.audit.Log(ctx, AuditEvent{
			OrganizationID: project.OrganizationID,
			ProjectID:      project.ID,
			UserID:         actorID(actor),
			Action:         models.AuditActionCreateEntry,
			Entity:         models.AuditEntityLogEntry,
			EntityID:       entry.ID,
			Details:        map[string]interface{}{"source": entry.Source, "date": w.Date, "locked": entry.IsLocked},
		})
	})
	if err != nil {
		return nil, err
	}

	if entry.IsLocked {
		logger.FromContext(ctx).Warn("Event recorded on a closed day",
			"project_id", project.ID, "entry_id", entry.ID, "date", w.Date, "source", source)
	}
	return s.reload(ctx, entry)
}

// UpdateManualEntry edits the title and content of an unlocked manual entry of an open day
func (s *EntryService) UpdateManualEntry(ctx context.Context, actor *Actor, projectID, entryID uint, in UpdateEntryInput) (*models.LogEntry, error) {
	project, err := s.access.AuthorizeWrite(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	entry, err := s.editable(ctx, projectID, entryID)
	if err != nil {
		return nil, err
	}
	title, content, err := s.validateText(in.Title, in.Content)
	if err != nil {
		return nil, err
	}
	entry.Title = title
	entry.Content = content

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.ensureOpen(ctx, projectID, entry); err != nil {
			return err
		}
		n, err := s.entries.UpdateUnlocked(ctx, entry)
		if err != nil {
			return storageErr("update_entry", err)
		}
		if n == 0 {
			return ErrEntryLocked
		}
		return s.audit.Log(ctx, AuditEvent{
			OrganizationID: project.OrganizationID,
			ProjectID:      project.ID,
			UserID:         actorID(actor),
			Action:         models.AuditActionUpdateEntry,
			Entity:         models.AuditEntityLogEntry,
			EntityID:       entry.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, entry)
}

// DeleteManualEntry removes an unlocked manual entry of an open day
func (s *EntryService) DeleteManualEntry(ctx context.Context, actor *Actor, projectID, entryID uint) error {
	project, err := s.access.AuthorizeWrite(ctx, actor, projectID)
	if err != nil {
		return err
	}
	entry, err := s.editable(ctx, projectID, entryID)
	if err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.ensureOpen(ctx, projectID, entry); err != nil {
			return err
		}
		n, err := s.entries.DeleteUnlocked(ctx, projectID, entry.ID)
		if err != nil {
			return storageErr("delete_entry", err)
		}
		if n == 0 {
			return ErrEntryLocked
		}
		return s.audit.Log(ctx, AuditEvent{
			OrganizationID: project.OrganizationID,
			ProjectID:      project.ID,
			UserID:         actorID(actor),
			Action:         models.AuditActionDeleteEntry,
			Entity:         models.AuditEntityLogEntry,
			EntityID:       entry.ID,
			Details:        map[string]interface{}{"content": entry.Content},
		})
	})
}

// editable loads an entry and checks it is a manual, unlocked entry of an open day
func (s *EntryService) editable(ctx context.Context, projectID, entryID uint) (*models.LogEntry, error) {
	entry, err := s.entries.FindByID(ctx, projectID, entryID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, storageErr("find_entry", err)
	}
	if entry.Source != models.EntrySourceManual {
		return nil, NewValidationError("source", "solo las notas manuales pueden editarse")
	}
	if entry.IsLocked {
		return nil, ErrEntryLocked
	}
	if err := s.ensureOpen(ctx, projectID, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ensureOpen fails with ErrDayClosed once the entry's day has a closure. Callers
// repeat it inside the write transaction so a closure committed after the first
// check still wins.
func (s *EntryService) ensureOpen(ctx context.Context, projectID uint, entry *models.LogEntry) error {
	closed, err := s.bitacora.IsDayClosed(ctx, projectID, s.calendar.WindowOf(entry.CreatedAt))
	if err != nil {
		return err
	}
	if closed {
		return ErrDayClosed
	}
	return nil
}

func (s *EntryService) validateText(title *string, content string) (*string, string, error) {
	verr := &ValidationError{}

	content = bitacora.NormalizeContent(content)
	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		verr.Add("content", "el contenido es requerido")
	case n > s.cfg.EntryMaxContent:
		verr.Add("content", fmt.Sprintf("el contenido no puede exceder %d caracteres", s.cfg.EntryMaxContent))
	}

	var cleanTitle *string
	if title != nil {
		t := bitacora.NormalizeContent(*title)
		if utf8.RuneCountInString(t) > maxTitleLength {
			verr.Add("title", fmt.Sprintf("el título no puede exceder %d caracteres", maxTitleLength))
		}
		if t != "" {
			cleanTitle = &t
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, "", err
	}
	return cleanTitle, content, nil
}

func (s *EntryService) reload(ctx context.Context, entry *models.LogEntry) (*models.LogEntry, error) {
	fresh, err := s.entries.FindByID(ctx, entry.ProjectID, entry.ID)
	if err != nil {
		// the write succeeded; fall back to what we inserted
		logger.FromContext(ctx).Warn("Failed to reload entry", "entry_id", entry.ID, "error", err)
		return entry, nil
	}
	return fresh, nil
}
