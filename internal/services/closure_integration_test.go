//go:build integration

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sjperalta/bitacora-api/internal/database/testhelper"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_ConcurrentCloseDay(t *testing.T) {
	env := newTestEnvWithDB(t, testhelper.SetupPostgres(t))
	ctx := context.Background()
	w := env.window(t, today)
	for i := 0; i < 5; i++ {
		testhelper.SeedEntry(t, env.db, env.f.Project, env.f.Resident, models.EntrySourceManual, "nota", w.Start.Add(time.Duration(i)*time.Hour))
	}

	const attempts = 16
	start := make(chan struct{})
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes []*ClosureResult
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := env.svc.Closure.CloseDay(ctx, env.resident, env.f.Project.ID, CloseDayInput{Date: today, Content: officialText})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes = append(successes, res)
			case errors.Is(err, ErrAlreadyClosed):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Len(t, successes, 1)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, int64(5), successes[0].LockedEntries)

	var count int64
	require.NoError(t, env.db.Model(&models.DayClosure{}).Where("project_id = ?", env.f.Project.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPostgres_ClosureRowRejectsUpdates(t *testing.T) {
	env := newTestEnvWithDB(t, testhelper.SetupPostgres(t))
	env.closeToday(t)

	// the trigger holds even when the model hooks are bypassed
	err := env.db.Exec("UPDATE day_closures SET official_content = 'x' WHERE project_id = ?", env.f.Project.ID).Error
	assert.Error(t, err)

	err = env.db.Exec("DELETE FROM day_closures WHERE project_id = ?", env.f.Project.ID).Error
	assert.Error(t, err)
}
