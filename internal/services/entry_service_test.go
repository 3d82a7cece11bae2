package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sjperalta/bitacora-api/internal/database/testhelper"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func strPtr(s string) *string { return &s }

func TestCreateManualEntry_Today(t *testing.T) {
	env := newTestEnv(t)
	ctx := WithClient(context.Background(), "10.0.0.7", "bitacora-test")

	entry, err := env.svc.Entry.CreateManualEntry(ctx, env.resident, env.f.Project.ID, ManualEntryInput{
		Date:    today,
		Title:   strPtr("  Colado de losa "),
		Content: "Se coló la losa del eje A al C.\n",
	})
	require.NoError(t, err)

	assert.Equal(t, models.EntrySourceManual, entry.Source)
	assert.Equal(t, "Colado de losa", entry.TitleOrEmpty())
	assert.Equal(t, "Se coló la losa del eje A al C.", entry.Content)
	assert.True(t, fixedNow.Equal(entry.CreatedAt))
	assert.Equal(t, "Ana López", entry.Author.FullName)
	assert.False(t, entry.IsLocked)

	history, err := env.svc.Audit.History(ctx, models.AuditEntityLogEntry, entry.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.AuditActionCreateEntry, history[0].Action)
	assert.Equal(t, "10.0.0.7", history[0].IPAddress)
	assert.Equal(t, "bitacora-test", history[0].UserAgent)
}

func TestCreateManualEntry_BackdatedLandsInItsDay(t *testing.T) {
	env := newTestEnv(t)

	entry, err := env.svc.Entry.CreateManualEntry(context.Background(), env.resident, env.f.Project.ID, ManualEntryInput{
		Date:    "2025-02-20",
		Content: "Nota olvidada",
	})
	require.NoError(t, err)

	w := env.window(t, "2025-02-20")
	assert.True(t, w.Contains(entry.CreatedAt))
	// same wall-clock time as now in the reference timezone
	assert.Equal(t, "14:00", entry.CreatedAt.In(env.calendar.Location()).Format("15:04"))

	view, err := env.svc.Bitacora.GetDayView(context.Background(), env.resident, env.f.Project.ID, "2025-02-20")
	require.NoError(t, err)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, entry.ID, view.Entries[0].ID)
}

func TestCreateManualEntry_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    ManualEntryInput
		field string
	}{
		{"future date", ManualEntryInput{Date: tomorrow, Content: "x"}, "date"},
		{"bad date", ManualEntryInput{Date: "2025-13-01", Content: "x"}, "date"},
		{"empty content", ManualEntryInput{Date: today, Content: "   \n"}, "content"},
		{"content too long", ManualEntryInput{Date: today, Content: strings.Repeat("a", 5001)}, "content"},
		{"title too long", ManualEntryInput{Date: today, Title: strPtr(strings.Repeat("t", 201)), Content: "x"}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Entry.CreateManualEntry(ctx, env.resident, env.f.Project.ID, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Errors[0].Field)
		})
	}
}

func TestCreateManualEntry_ClosedDayCheckedBeforeContent(t *testing.T) {
	env := newTestEnv(t)
	env.closeToday(t)

	// even invalid content reports the closed day, not a validation error
	_, err := env.svc.Entry.CreateManualEntry(context.Background(), env.resident, env.f.Project.ID, ManualEntryInput{Date: today, Content: ""})
	assert.ErrorIs(t, err, ErrDayClosed)
}

func TestCreateManualEntry_Authorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := ManualEntryInput{Date: today, Content: "Nota"}

	_, err := env.svc.Entry.CreateManualEntry(ctx, env.viewer, env.f.Project.ID, in)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.Entry.CreateManualEntry(ctx, env.outsider, env.f.Project.ID, in)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.svc.Entry.CreateManualEntry(ctx, env.resident, env.f.OtherProject.ID, in)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestRecordEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	incident := testhelper.SeedIncident(t, env.db, env.f.Project, "Fuga en cisterna")

	entry, err := env.svc.Entry.RecordEvent(ctx, env.resident, env.f.Project.ID, EventInput{
		Source:     "incident",
		Title:      strPtr("Incidencia reportada"),
		Content:    "Fuga en cisterna detectada por el supervisor",
		IncidentID: &incident.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.EntrySourceIncident, entry.Source)
	require.NotNil(t, entry.IncidentID)
	assert.Equal(t, incident.ID, *entry.IncidentID)
	assert.True(t, fixedNow.Equal(entry.CreatedAt))

	mobile, err := env.svc.Entry.RecordEvent(ctx, env.resident, env.f.Project.ID, EventInput{
		Source:  models.EntrySourceMobile,
		Content: "Avance de muros",
		Photos:  []string{"photos/1.jpg", "photos/2.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, mobile.PhotoCount())
}

func TestRecordEvent_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	foreign := testhelper.SeedIncident(t, env.db, env.f.OtherProject, "Ajena")

	photos := make([]string, maxPhotos+1)
	for i := range photos {
		photos[i] = "p.jpg"
	}

	tests := []struct {
		name  string
		in    EventInput
		field string
	}{
		{"manual is not an event", EventInput{Source: models.EntrySourceManual, Content: "x"}, "source"},
		{"unknown source", EventInput{Source: "EMAIL", Content: "x"}, "source"},
		{"incident without reference", EventInput{Source: models.EntrySourceIncident, Content: "x"}, "incident_id"},
		{"incident of another project", EventInput{Source: models.EntrySourceIncident, Content: "x", IncidentID: &foreign.ID}, "incident_id"},
		{"too many photos", EventInput{Source: models.EntrySourceMobile, Content: "x", Photos: photos}, "photos"},
		{"empty content", EventInput{Source: models.EntrySourceSystem, Content: ""}, "content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Entry.RecordEvent(ctx, env.resident, env.f.Project.ID, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Errors[0].Field)
		})
	}
}

func TestRecordEvent_OnClosedDayIsStoredLocked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.closeToday(t)

	entry, err := env.svc.Entry.RecordEvent(ctx, env.resident, env.f.Project.ID, EventInput{
		Source:  models.EntrySourceSystem,
		Content: "Sincronización tardía",
	})
	require.NoError(t, err)
	assert.True(t, entry.IsLocked)
	require.NotNil(t, entry.LockedAt)

	view, err := env.svc.Bitacora.GetDayView(ctx, env.resident, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.Equal(t, models.DayStateClosed, view.State)
	assert.Zero(t, view.UnlockedCount)
}

func TestUpdateAndDeleteManualEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	entry, err := env.svc.Entry.CreateManualEntry(ctx, env.resident, env.f.Project.ID, ManualEntryInput{Date: today, Content: "Borrador"})
	require.NoError(t, err)

	updated, err := env.svc.Entry.UpdateManualEntry(ctx, env.resident, env.f.Project.ID, entry.ID, UpdateEntryInput{
		Title:   strPtr("Corregida"),
		Content: "Texto corregido",
	})
	require.NoError(t, err)
	assert.Equal(t, "Corregida", updated.TitleOrEmpty())
	assert.Equal(t, "Texto corregido", updated.Content)

	require.NoError(t, env.svc.Entry.DeleteManualEntry(ctx, env.resident, env.f.Project.ID, entry.ID))

	_, err = env.svc.Entry.UpdateManualEntry(ctx, env.resident, env.f.Project.ID, entry.ID, UpdateEntryInput{Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	history, err := env.svc.Audit.History(ctx, models.AuditEntityLogEntry, entry.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.AuditActionDeleteEntry, history[2].Action)
}

func TestEditManualEntry_ClosureCommittedMidway(t *testing.T) {
	checks := &sealAfterCheck{}
	env := newTestEnv(t, func(r *repository.Repositories) {
		checks.ClosureRepository = r.Closure
		r.Closure = checks
	})
	ctx := context.Background()
	sealOn := func(date string) func() {
		return func() {
			require.NoError(t, env.repos.Closure.Create(ctx, &models.DayClosure{
				OrganizationID:  env.f.Project.OrganizationID,
				ProjectID:       env.f.Project.ID,
				ClosureDate:     datatypes.Date(env.window(t, date).Key()),
				OfficialContent: officialText,
				ContentHash:     "x",
				ClosedBy:        env.f.Resident.ID,
				ClosedAt:        fixedNow,
			}))
		}
	}

	edited, err := env.svc.Entry.CreateManualEntry(ctx, env.resident, env.f.Project.ID, ManualEntryInput{Date: today, Content: "Nota original"})
	require.NoError(t, err)
	deleted, err := env.svc.Entry.CreateManualEntry(ctx, env.resident, env.f.Project.ID, ManualEntryInput{Date: yesterday, Content: "Nota de ayer"})
	require.NoError(t, err)

	checks.hook = sealOn(today)
	_, err = env.svc.Entry.UpdateManualEntry(ctx, env.resident, env.f.Project.ID, edited.ID, UpdateEntryInput{Content: "Nota cambiada"})
	assert.ErrorIs(t, err, ErrDayClosed)

	checks.hook = sealOn(yesterday)
	err = env.svc.Entry.DeleteManualEntry(ctx, env.resident, env.f.Project.ID, deleted.ID)
	assert.ErrorIs(t, err, ErrDayClosed)

	stored, err := env.repos.Entry.FindByID(ctx, env.f.Project.ID, edited.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nota original", stored.Content)
	_, err = env.repos.Entry.FindByID(ctx, env.f.Project.ID, deleted.ID)
	assert.NoError(t, err, "entry of the sealed day is kept")
}

func TestUpdateManualEntry_OnlyManualEntries(t *testing.T) {
	env := newTestEnv(t)
	w := env.window(t, today)
	system := testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceSystem, "Evento", w.Start.Add(time.Hour))

	_, err := env.svc.Entry.UpdateManualEntry(context.Background(), env.resident, env.f.Project.ID, system.ID, UpdateEntryInput{Content: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	err = env.svc.Entry.DeleteManualEntry(context.Background(), env.resident, env.f.OtherProject.ID, system.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
