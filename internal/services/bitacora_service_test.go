package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sjperalta/bitacora-api/internal/bitacora"
	"github.com/sjperalta/bitacora-api/internal/database/testhelper"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDayView_EmptyDay(t *testing.T) {
	env := newTestEnv(t)

	view, err := env.svc.Bitacora.GetDayView(context.Background(), env.resident, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.Equal(t, today, view.Date)
	assert.False(t, view.IsClosed)
	assert.Equal(t, models.DayStateOpen, view.State)
	assert.NotNil(t, view.Entries)
	assert.Empty(t, view.Entries)
	assert.Nil(t, view.Closure)
}

func TestGetDayView_WindowAndOrder(t *testing.T) {
	env := newTestEnv(t)
	w := env.window(t, today)

	// the day runs from 06:00 UTC to 06:00 UTC the next day
	require.Equal(t, time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC), w.Start)

	atStart := testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "primera", w.Start)
	middle := testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceIncident, "media", w.Start.Add(8*time.Hour))
	atEnd := testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceMobile, "última", w.End.Add(-time.Microsecond))
	testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "siguiente día", w.End)
	testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "día anterior", w.Start.Add(-time.Microsecond))
	testhelper.SeedEntry(t, env.db, env.f.OtherProject, env.f.Outsider, models.EntrySourceManual, "otro proyecto", w.Start.Add(time.Hour))

	view, err := env.svc.Bitacora.GetDayView(context.Background(), env.resident, env.f.Project.ID, today)
	require.NoError(t, err)
	require.Len(t, view.Entries, 3)
	assert.Equal(t, atEnd.ID, view.Entries[0].ID)
	assert.Equal(t, middle.ID, view.Entries[1].ID)
	assert.Equal(t, atStart.ID, view.Entries[2].ID)
	assert.Equal(t, "Ana López", view.Entries[0].AuthorName)
}

func TestGetDayView_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Bitacora.GetDayView(ctx, env.outsider, env.f.Project.ID, today)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.svc.Bitacora.GetDayView(ctx, env.resident, 4242, today)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = env.svc.Bitacora.GetDayView(ctx, env.resident, env.f.Project.ID, "hoy")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetDayView_ClosedDayShowsClosure(t *testing.T) {
	env := newTestEnv(t)
	res := env.closeToday(t)

	view, err := env.svc.Bitacora.GetDayView(context.Background(), env.viewer, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.True(t, view.IsClosed)
	assert.Equal(t, models.DayStateClosed, view.State)
	require.NotNil(t, view.Closure)
	assert.Equal(t, res.Folio, view.Closure.Folio)
	assert.Empty(t, view.Closure.OfficialContent)
	assert.Equal(t, "Ana López", view.Closure.ClosedByName)
}

func TestGetDraft_ComposesTheDay(t *testing.T) {
	env := newTestEnv(t)
	w := env.window(t, today)
	testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceMobile, "foto", w.Start.Add(2*time.Hour))
	testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "nota", w.Start.Add(3*time.Hour))

	draft, err := env.svc.Bitacora.GetDraft(context.Background(), env.resident, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 2, draft.EntryCount)
	assert.False(t, draft.IsClosed)
	assert.Equal(t, 50, draft.MinLength)
	assert.Equal(t, 5000, draft.MaxLength)

	assert.Contains(t, draft.Content, "Proyecto: Torre Reforma 222")
	notes := strings.Index(draft.Content, "1. NOTAS DE BITÁCORA")
	mobile := strings.Index(draft.Content, "2. REGISTROS DE CAMPO (MÓVIL)")
	require.True(t, notes >= 0 && mobile >= 0)
	assert.Less(t, notes, mobile)
	assert.Contains(t, draft.Content, "[1] 03:00 | "+bitacora.UntitledPlaceholder)
	assert.Contains(t, draft.Content, "Total de entradas registradas: 2 (dos)")

	again, err := env.svc.Bitacora.GetDraft(context.Background(), env.resident, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.Equal(t, bitacora.StripGenerationLine(draft.Content), bitacora.StripGenerationLine(again.Content))
}

func TestGetProjectSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.window(t, today)
	y := env.window(t, yesterday)

	testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "a", y.Start.Add(time.Hour))
	testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceIncident, "b", w.Start.Add(time.Hour))
	testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "c", w.Start.Add(2*time.Hour))

	_, err := env.svc.Closure.CloseDay(ctx, env.resident, env.f.Project.ID, CloseDayInput{Date: yesterday, Content: officialText})
	require.NoError(t, err)

	summary, err := env.svc.Bitacora.GetProjectSummary(ctx, env.viewer, env.f.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalEntries)
	assert.Equal(t, int64(2), summary.EntriesBySource[models.EntrySourceManual])
	assert.Equal(t, int64(1), summary.EntriesBySource[models.EntrySourceIncident])
	assert.Equal(t, int64(0), summary.EntriesBySource[models.EntrySourceSystem])
	assert.Equal(t, int64(1), summary.ClosedDays)
	require.NotNil(t, summary.LastClosedDate)
	assert.Equal(t, yesterday, *summary.LastClosedDate)
	assert.Equal(t, today, summary.Today.Date)
	assert.Equal(t, int64(2), summary.Today.EntryCount)
	assert.False(t, summary.Today.IsClosed)

	_, err = env.svc.Bitacora.GetProjectSummary(ctx, env.outsider, env.f.Project.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestResolveActor(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, env.f.Org.ID, env.resident.OrganizationID)
	assert.True(t, env.resident.CanWrite())
	assert.False(t, env.viewer.CanWrite())

	_, err := env.svc.Access.ResolveActor(context.Background(), 987654)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.svc.Access.ResolveActor(context.Background(), 0)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
