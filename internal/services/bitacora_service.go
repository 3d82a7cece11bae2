package services

import (
	"context"

	"github.com/sjperalta/bitacora-api/internal/bitacora"
	"github.com/sjperalta/bitacora-api/internal/config"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/internal/repository"
	"github.com/sjperalta/bitacora-api/internal/statemachine"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// DayView is everything the bitácora screen shows for one project day
type DayView struct {
	Project       models.ProjectResponse     `json:"project"`
	Date          string                     `json:"date"`
	IsClosed      bool                       `json:"is_closed"`
	State         string                     `json:"state"`
	UnlockedCount int64                      `json:"unlocked_count"`
	Entries       []models.LogEntryResponse  `json:"entries"`
	Closure       *models.DayClosureResponse `json:"closure,omitempty"`
}

// Draft is the composed official text of a day, before closure
type Draft struct {
	Date       string `json:"date"`
	Content    string `json:"content"`
	EntryCount int    `json:"entry_count"`
	IsClosed   bool   `json:"is_closed"`
	MinLength  int    `json:"min_length"`
	MaxLength  int    `json:"max_length"`
}

// TodaySummary is the current day of a project summary
type TodaySummary struct {
	Date       string `json:"date"`
	EntryCount int64  `json:"entry_count"`
	IsClosed   bool   `json:"is_closed"`
}

// ProjectSummary is the bitácora overview of a project
type ProjectSummary struct {
	Project         models.ProjectResponse `json:"project"`
	TotalEntries    int64                  `json:"total_entries"`
	EntriesBySource map[string]int64       `json:"entries_by_source"`
	ClosedDays      int64                  `json:"closed_days"`
	LastClosedDate  *string                `json:"last_closed_date"`
	Today           TodaySummary           `json:"today"`
}

// BitacoraService aggregates entries into days and composes the official text
type BitacoraService struct {
	access   *AccessService
	entries  repository.EntryRepository
	closures repository.ClosureRepository
	calendar *bitacora.Calendar
	composer *bitacora.Composer
	cfg      *config.Config
}

func NewBitacoraService(access *AccessService, entries repository.EntryRepository, closures repository.ClosureRepository, calendar *bitacora.Calendar, cfg *config.Config) *BitacoraService {
	return &BitacoraService{
		access:   access,
		entries:  entries,
		closures: closures,
		calendar: calendar,
		composer: bitacora.NewComposer(calendar.Location()),
		cfg:      cfg,
	}
}

// Calendar returns the reference calendar shared by every service
func (s *BitacoraService) Calendar() *bitacora.Calendar {
	return s.calendar
}

// ParseDate validates a YYYY-MM-DD date into its window
func (s *BitacoraService) ParseDate(date string) (bitacora.DayWindow, error) {
	w, err := s.calendar.Parse(date)
	if err != nil {
		return w, NewValidationError("date", bitacora.ErrInvalidDate.Error())
	}
	return w, nil
}

// GetDayView returns the entries of a day, newest first, and whether it is closed.
// A day without entries is a normal result.
func (s *BitacoraService) GetDayView(ctx context.Context, actor *Actor, projectID uint, date string) (*DayView, error) {
	project, err := s.access.AuthorizeProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	return s.dayView(ctx, project, date)
}

// InspectDay is GetDayView for operators, without an actor
func (s *BitacoraService) InspectDay(ctx context.Context, projectID uint, date string) (*DayView, error) {
	project, err := s.access.FindProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.dayView(ctx, project, date)
}

func (s *BitacoraService) dayView(ctx context.Context, project *models.Project, date string) (*DayView, error) {
	projectID := project.ID
	w, err := s.ParseDate(date)
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.FindByWindow(ctx, projectID, w.Start, w.End)
	if err != nil {
		return nil, storageErr("find_day_entries", err)
	}
	closure, err := s.findClosure(ctx, projectID, w)
	if err != nil {
		return nil, err
	}
	status, err := s.status(ctx, projectID, w, closure != nil)
	if err != nil {
		return nil, err
	}

	view := &DayView{
		Project:       project.ToResponse(),
		Date:          w.Date,
		IsClosed:      status.IsClosed(),
		State:         status.State,
		UnlockedCount: status.UnlockedCount,
		Entries:       make([]models.LogEntryResponse, 0, len(entries)),
	}
	for i := range entries {
		view.Entries = append(view.Entries, entries[i].ToResponse())
	}
	if closure != nil {
		resp := closure.ToResponse(false)
		view.Closure = &resp
	}
	return view, nil
}

// GetDraft composes the official text of a day for review before closing it
func (s *BitacoraService) GetDraft(ctx context.Context, actor *Actor, projectID uint, date string) (*Draft, error) {
	project, w, entries, err := s.dayEntries(ctx, actor, projectID, date)
	if err != nil {
		return nil, err
	}
	closed, err := s.IsDayClosed(ctx, projectID, w)
	if err != nil {
		return nil, err
	}

	return &Draft{
		Date:       w.Date,
		Content:    s.Compose(project, w, entries),
		EntryCount: len(entries),
		IsClosed:   closed,
		MinLength:  s.cfg.ClosureMinContent,
		MaxLength:  s.cfg.ClosureMaxContent,
	}, nil
}

func (s *BitacoraService) dayEntries(ctx context.Context, actor *Actor, projectID uint, date string) (*models.Project, bitacora.DayWindow, []models.LogEntry, error) {
	project, err := s.access.AuthorizeProject(ctx, actor, projectID)
	if err != nil {
		return nil, bitacora.DayWindow{}, nil, err
	}
	w, err := s.ParseDate(date)
	if err != nil {
		return nil, w, nil, err
	}
	entries, err := s.entries.FindByWindow(ctx, projectID, w.Start, w.End)
	if err != nil {
		return nil, w, nil, storageErr("find_day_entries", err)
	}
	return project, w, entries, nil
}

// Compose renders entries of a window into the official text
func (s *BitacoraService) Compose(project *models.Project, w bitacora.DayWindow, entries []models.LogEntry) string {
	return s.composer.Compose(ToDocument(project, w, entries), s.calendar.Now())
}

// ToDocument converts stored entries to the composer's input
func ToDocument(project *models.Project, w bitacora.DayWindow, entries []models.LogEntry) bitacora.Document {
	doc := bitacora.Document{
		ProjectName: project.Name,
		Location:    project.Location,
		Date:        w.Date,
		Entries:     make([]bitacora.DocumentEntry, 0, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		doc.Entries = append(doc.Entries, bitacora.DocumentEntry{
			ID:         e.ID,
			Source:     e.Source,
			Title:      e.TitleOrEmpty(),
			Author:     e.Author.DisplayName(),
			Content:    e.Content,
			PhotoCount: e.PhotoCount(),
			CreatedAt:  e.CreatedAt,
		})
	}
	return doc
}

// GetProjectSummary counts entries and closures of a project. The queries are
// independent and run concurrently.
func (s *BitacoraService) GetProjectSummary(ctx context.Context, actor *Actor, projectID uint) (*ProjectSummary, error) {
	project, err := s.access.AuthorizeProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	today := s.calendar.Today()

	summary := &ProjectSummary{
		Project: project.ToResponse(),
		Today:   TodaySummary{Date: today.Date},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.entries.CountBySource(gctx, projectID)
		if err != nil {
			return storageErr("count_entries_by_source", err)
		}
		summary.EntriesBySource = counts
		for _, n := range counts {
			summary.TotalEntries += n
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.closures.CountByProject(gctx, projectID)
		if err != nil {
			return storageErr("count_closures", err)
		}
		summary.ClosedDays = n
		return nil
	})
	g.Go(func() error {
		latest, err := s.closures.FindLatest(gctx, projectID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil
			}
			return storageErr("find_latest_closure", err)
		}
		date := latest.DateString()
		summary.LastClosedDate = &date
		return nil
	})
	g.Go(func() error {
		n, err := s.entries.CountInWindow(gctx, projectID, today.Start, today.End)
		if err != nil {
			return storageErr("count_today_entries", err)
		}
		summary.Today.EntryCount = n
		return nil
	})
	g.Go(func() error {
		closed, err := s.IsDayClosed(gctx, projectID, today)
		if err != nil {
			return err
		}
		summary.Today.IsClosed = closed
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

// IsDayClosed derives closed-ness from the closure row; it is never cached
func (s *BitacoraService) IsDayClosed(ctx context.Context, projectID uint, w bitacora.DayWindow) (bool, error) {
	exists, err := s.closures.Exists(ctx, projectID, datatypes.Date(w.Key()))
	if err != nil {
		return false, storageErr("check_day_closed", err)
	}
	return exists, nil
}

// DayStatus returns the lock state of a day
func (s *BitacoraService) DayStatus(ctx context.Context, projectID uint, w bitacora.DayWindow) (*models.DayStatus, error) {
	closed, err := s.IsDayClosed(ctx, projectID, w)
	if err != nil {
		return nil, err
	}
	return s.status(ctx, projectID, w, closed)
}

// status replays the day machine: open, closed once a closure exists, and
// lock_incomplete while entries of a closed day remain unlocked.
func (s *BitacoraService) status(ctx context.Context, projectID uint, w bitacora.DayWindow, closed bool) (*models.DayStatus, error) {
	status := &models.DayStatus{ProjectID: projectID, Date: w.Date}
	day := statemachine.NewDayFSM(status)
	if !closed {
		return status, nil
	}
	if err := day.Close(ctx); err != nil {
		return nil, err
	}

	unlocked, err := s.entries.CountUnlocked(ctx, projectID, w.Start, w.End)
	if err != nil {
		return nil, storageErr("count_unlocked_entries", err)
	}
	status.UnlockedCount = unlocked
	if unlocked > 0 {
		if err := day.LockFailed(ctx); err != nil {
			return nil, err
		}
	}
	return status, nil
}

func (s *BitacoraService) findClosure(ctx context.Context, projectID uint, w bitacora.DayWindow) (*models.DayClosure, error) {
	closure, err := s.closures.FindByDate(ctx, projectID, datatypes.Date(w.Key()))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, storageErr("find_closure", err)
	}
	return closure, nil
}
