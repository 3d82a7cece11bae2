package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sjperalta/bitacora-api/internal/bitacora"
	"github.com/sjperalta/bitacora-api/internal/database/testhelper"
	"github.com/sjperalta/bitacora-api/internal/jobs"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCloseDay_SealsDayAndLocksItsEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.window(t, today)

	first := testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "Inicio de colado", w.Start)
	testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceMobile, "Foto de avance", w.Start.Add(5*time.Hour))
	last := testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceSystem, "Respaldo", w.End.Add(-time.Microsecond))
	before := testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "Día anterior", w.Start.Add(-time.Microsecond))
	after := testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "Día siguiente", w.End)

	submitted := "  " + officialText + "\n"
	res, err := env.svc.Closure.CloseDay(ctx, env.resident, env.f.Project.ID, CloseDayInput{Date: today, Content: submitted})
	require.NoError(t, err)

	assert.NotZero(t, res.ClosureID)
	assert.NotEmpty(t, res.Folio)
	assert.Equal(t, today, res.Date)
	assert.True(t, fixedNow.Equal(res.ClosedAt))
	assert.Equal(t, int64(3), res.LockedEntries)
	assert.Equal(t, models.DayStateClosed, res.State)
	assert.False(t, res.LockIncomplete)
	assert.Empty(t, res.Warning)
	assert.Equal(t, bitacora.ContentHash(officialText), res.ContentHash)

	for _, id := range []uint{first.ID, last.ID} {
		entry, err := env.repos.Entry.FindByID(ctx, env.f.Project.ID, id)
		require.NoError(t, err)
		assert.True(t, entry.IsLocked, "entry %d", id)
		require.NotNil(t, entry.LockedBy)
		assert.Equal(t, env.f.Resident.ID, *entry.LockedBy)
		require.NotNil(t, entry.LockedAt)
	}
	for _, id := range []uint{before.ID, after.ID} {
		entry, err := env.repos.Entry.FindByID(ctx, env.f.Project.ID, id)
		require.NoError(t, err)
		assert.False(t, entry.IsLocked, "entry %d is outside the day", id)
	}

	closure, err := env.svc.Closure.GetClosure(ctx, env.resident, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.Equal(t, submitted, closure.OfficialContent, "sealed exactly as submitted")
	assert.False(t, closure.HasPin())
	_, intact := bitacora.VerifyContent(closure.OfficialContent, closure.ContentHash)
	assert.True(t, intact)
	assert.Equal(t, "Ana López", closure.Closer.FullName)

	assert.ElementsMatch(t, []string{jobs.JobArchiveClosurePDF, jobs.JobNotifyDayClosed}, env.queue.names())
	assert.Equal(t, []string{jobs.JobNotifyDayClosed}, env.queue.asyncNames(), "e-mail does not hold a pool worker")

	history, err := env.svc.Audit.History(ctx, models.AuditEntityDayClosure, res.ClosureID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.AuditActionCloseDay, history[0].Action)
}

func TestCloseDay_EmptyDayCanBeClosed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.svc.Bitacora.GetDraft(ctx, env.resident, env.f.Project.ID, yesterday)
	require.NoError(t, err)
	assert.Zero(t, draft.EntryCount)
	assert.Contains(t, draft.Content, "Sin entradas registradas para esta fecha.")

	res, err := env.svc.Closure.CloseDay(ctx, env.resident, env.f.Project.ID, CloseDayInput{Date: yesterday, Content: draft.Content})
	require.NoError(t, err)
	assert.Zero(t, res.LockedEntries)
	assert.Equal(t, models.DayStateClosed, res.State)
}

func TestCloseDay_SecondAttemptIsRejected(t *testing.T) {
	env := newTestEnv(t)
	env.closeToday(t)

	_, err := env.svc.Closure.CloseDay(context.Background(), env.resident, env.f.Project.ID, CloseDayInput{Date: today, Content: officialText})
	assert.ErrorIs(t, err, ErrAlreadyClosed)
}

func TestCloseDay_ConcurrentAttemptsProduceOneClosure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.window(t, today)
	testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "Nota", w.Start.Add(time.Hour))

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Closure.CloseDay(ctx, env.resident, env.f.Project.ID, CloseDayInput{Date: today, Content: officialText})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrAlreadyClosed):
				conflicts++
			default:
				others = append(others, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	var count int64
	require.NoError(t, env.db.Model(&models.DayClosure{}).Where("project_id = ?", env.f.Project.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCloseDay_ContentLength(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"too short", strings.Repeat("a", 49), true},
		{"short after trimming", "   " + strings.Repeat("a", 49) + "   \n", true},
		{"minimum", strings.Repeat("a", 50), false},
		{"counts characters not bytes", strings.Repeat("ñ", 50), false},
		{"too long", strings.Repeat("a", 5001), true},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// each case closes a different past day
			date := env.calendar.WindowOf(fixedNow.AddDate(0, 0, -(i + 1))).Date
			_, err := env.svc.Closure.CloseDay(ctx, env.resident, env.f.Project.ID, CloseDayInput{Date: date, Content: tt.content})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, "official_content", verr.Errors[0].Field)

			closed, err := env.svc.Closure.IsDayClosed(ctx, env.f.Project.ID, date)
			require.NoError(t, err)
			assert.False(t, closed)
		})
	}
}

func TestCloseDay_PinIsNeverStoredRaw(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pin := "4821"

	_, err := env.svc.Closure.CloseDay(ctx, env.resident, env.f.Project.ID, CloseDayInput{Date: today, Content: officialText, Pin: &pin})
	require.NoError(t, err)

	closure, err := env.svc.Closure.GetClosure(ctx, env.resident, env.f.Project.ID, today)
	require.NoError(t, err)
	require.True(t, closure.HasPin())
	assert.NotEqual(t, pin, *closure.PinHash)
	assert.NotContains(t, *closure.PinHash, pin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*closure.PinHash), []byte(pin)))

	var raw []string
	require.NoError(t, env.db.Raw("SELECT pin_hash FROM day_closures").Scan(&raw).Error)
	require.Len(t, raw, 1)
	assert.NotEqual(t, pin, raw[0])

	ok, err := env.svc.Closure.VerifyClosurePin(ctx, env.resident, env.f.Project.ID, today, pin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.svc.Closure.VerifyClosurePin(ctx, env.resident, env.f.Project.ID, today, "0000")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = env.svc.Closure.VerifyClosurePin(ctx, env.resident, env.f.Project.ID, today, "12ab")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCloseDay_InvalidPinStopsTheClosure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, pin := range []string{"123", "123456789", "12a4", "１２３４"} {
		p := pin
		_, err := env.svc.Closure.CloseDay(ctx, env.resident, env.f.Project.ID, CloseDayInput{Date: today, Content: officialText, Pin: &p})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "pin %q", pin)
		assert.Equal(t, "pin", verr.Errors[0].Field)
	}

	closed, err := env.svc.Closure.IsDayClosed(ctx, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.False(t, closed)
}

func TestCloseDay_Authorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := CloseDayInput{Date: today, Content: officialText}

	_, err := env.svc.Closure.CloseDay(ctx, env.outsider, env.f.Project.ID, in)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.svc.Closure.CloseDay(ctx, env.viewer, env.f.Project.ID, in)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.Closure.CloseDay(ctx, env.resident, 9999, in)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = env.svc.Closure.CloseDay(ctx, nil, env.f.Project.ID, in)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	closed, err := env.svc.Closure.IsDayClosed(ctx, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.False(t, closed)
}

func TestCloseDay_RejectsFutureAndMalformedDates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, date := range []string{tomorrow, "2025-02-30", "01/03/2025", ""} {
		_, err := env.svc.Closure.CloseDay(ctx, env.resident, env.f.Project.ID, CloseDayInput{Date: date, Content: officialText})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "date %q", date)
		assert.Equal(t, "date", verr.Errors[0].Field)
	}
}

func TestCloseDay_LockFailureLeavesDayLockIncomplete(t *testing.T) {
	locks := &failingLocks{failures: 3}
	env := newTestEnv(t, func(r *repository.Repositories) {
		locks.EntryRepository = r.Entry
		r.Entry = locks
	})
	ctx := context.Background()
	w := env.window(t, today)
	testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "Uno", w.Start.Add(time.Hour))
	testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceIncident, "Dos", w.Start.Add(2*time.Hour))

	res, err := env.svc.Closure.CloseDay(ctx, env.resident, env.f.Project.ID, CloseDayInput{Date: today, Content: officialText})
	require.NoError(t, err, "the closure stands even when the lock fails")
	assert.True(t, res.LockIncomplete)
	assert.Equal(t, models.DayStateLockIncomplete, res.State)
	assert.Equal(t, ErrLockIncomplete.Error(), res.Warning)
	assert.Zero(t, res.LockedEntries)
	assert.Equal(t, 3, locks.calls)
	assert.Contains(t, env.queue.names(), jobs.JobRepairLocks)

	view, err := env.svc.Bitacora.GetDayView(ctx, env.resident, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.True(t, view.IsClosed)
	assert.Equal(t, models.DayStateLockIncomplete, view.State)
	assert.Equal(t, int64(2), view.UnlockedCount)

	// closed-ness is already in force for new manual entries
	_, err = env.svc.Entry.CreateManualEntry(ctx, env.resident, env.f.Project.ID, ManualEntryInput{Date: today, Content: "tarde"})
	assert.ErrorIs(t, err, ErrDayClosed)

	env.queue.run(t, jobs.JobRepairLocks)

	report, err := env.svc.Closure.VerifyIntegrity(ctx, env.resident, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, models.DayStateClosed, report.State)
	assert.Zero(t, report.UnlockedEntries)
}

func TestCloseDay_TransientLockFailureIsRetried(t *testing.T) {
	locks := &failingLocks{failures: 2}
	env := newTestEnv(t, func(r *repository.Repositories) {
		locks.EntryRepository = r.Entry
		r.Entry = locks
	})
	w := env.window(t, today)
	testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "Uno", w.Start.Add(time.Hour))

	res := env.closeToday(t)
	assert.False(t, res.LockIncomplete)
	assert.Equal(t, int64(1), res.LockedEntries)
	assert.Equal(t, 3, locks.calls)
	assert.NotContains(t, env.queue.names(), jobs.JobRepairLocks)
}

func TestCloseDay_FinishesAfterClientGoesAway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newTestEnv(t, func(r *repository.Repositories) {
		r.Closure = &cancelAfterCreate{ClosureRepository: r.Closure, cancel: cancel}
	})
	w := env.window(t, today)
	entry := testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "Uno", w.Start.Add(time.Hour))

	res, err := env.svc.Closure.CloseDay(ctx, env.resident, env.f.Project.ID, CloseDayInput{Date: today, Content: officialText})
	require.NoError(t, err)
	require.Error(t, ctx.Err())
	assert.Equal(t, models.DayStateClosed, res.State)
	assert.Equal(t, int64(1), res.LockedEntries)

	stored, err := env.repos.Entry.FindByID(context.Background(), env.f.Project.ID, entry.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsLocked)
	assert.ElementsMatch(t, []string{jobs.JobArchiveClosurePDF, jobs.JobNotifyDayClosed}, env.queue.names())

	history, err := env.svc.Audit.History(context.Background(), models.AuditEntityDayClosure, res.ClosureID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestClosedDay_IsImmutable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	entry, err := env.svc.Entry.CreateManualEntry(ctx, env.resident, env.f.Project.ID, ManualEntryInput{Date: today, Content: "Nota original"})
	require.NoError(t, err)
	res := env.closeToday(t)

	_, err = env.svc.Entry.UpdateManualEntry(ctx, env.resident, env.f.Project.ID, entry.ID, UpdateEntryInput{Content: "Nota cambiada"})
	assert.ErrorIs(t, err, ErrEntryLocked)

	err = env.svc.Entry.DeleteManualEntry(ctx, env.resident, env.f.Project.ID, entry.ID)
	assert.ErrorIs(t, err, ErrEntryLocked)

	_, err = env.svc.Entry.CreateManualEntry(ctx, env.resident, env.f.Project.ID, ManualEntryInput{Date: today, Content: "Otra nota"})
	assert.ErrorIs(t, err, ErrDayClosed)
	assert.NotErrorIs(t, err, ErrValidation)

	stored, err := env.repos.Entry.FindByID(ctx, env.f.Project.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nota original", stored.Content)

	closure, err := env.svc.Closure.GetClosure(ctx, env.resident, env.f.Project.ID, today)
	require.NoError(t, err)
	err = env.db.Model(closure).Update("official_content", "reescrito").Error
	assert.ErrorIs(t, err, models.ErrClosureImmutable)

	again, err := env.svc.Closure.GetClosure(ctx, env.resident, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.Equal(t, res.Folio, again.GUID)
	assert.Equal(t, officialText, again.OfficialContent)
}

func TestVerifyIntegrity_DetectsTampering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.closeToday(t)

	report, err := env.svc.Closure.VerifyIntegrity(ctx, env.resident, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, report.StoredHash, report.ComputedHash)

	// bypass the model hooks the way a direct database edit would
	require.NoError(t, env.db.Exec("UPDATE day_closures SET official_content = ?", officialText+" (editado)").Error)

	report, err = env.svc.Closure.VerifyIntegrityByDate(ctx, env.f.Project.ID, today)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.NotEqual(t, report.StoredHash, report.ComputedHash)
}

func TestRepairRecentLocks_LocksLateEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.closeToday(t)

	// an insert that slipped in after the lock statement ran
	w := env.window(t, today)
	late := testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "Tardía", w.Start.Add(3*time.Hour))

	repaired, err := env.svc.Closure.RepairRecentLocks(ctx, env.cfg.LockRepairLookback)
	require.NoError(t, err)
	require.Len(t, repaired, 1)
	assert.Equal(t, today, repaired[0].Date)
	assert.Equal(t, int64(1), repaired[0].Locked)
	assert.Equal(t, models.DayStateClosed, repaired[0].State)

	entry, err := env.repos.Entry.FindByID(ctx, env.f.Project.ID, late.ID)
	require.NoError(t, err)
	assert.True(t, entry.IsLocked)

	// a second run has nothing left to do
	repaired, err = env.svc.Closure.RepairRecentLocks(ctx, env.cfg.LockRepairLookback)
	require.NoError(t, err)
	assert.Empty(t, repaired)
}

func TestRepairLocks_UnknownDay(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Closure.RepairLocks(context.Background(), env.f.Project.ID, today)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListClosures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, date := range []string{"2025-02-26", "2025-02-28", today} {
		_, err := env.svc.Closure.CloseDay(ctx, env.resident, env.f.Project.ID, CloseDayInput{Date: date, Content: officialText})
		require.NoError(t, err)
	}

	closures, total, err := env.svc.Closure.ListClosures(ctx, env.viewer, env.f.Project.ID, repository.NewListQuery())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, closures, 3)
	assert.Equal(t, today, closures[0].DateString())
	assert.Equal(t, "2025-02-26", closures[2].DateString())

	_, _, err = env.svc.Closure.ListClosures(ctx, env.outsider, env.f.Project.ID, repository.NewListQuery())
	assert.ErrorIs(t, err, ErrAccessDenied)
}
