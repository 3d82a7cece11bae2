package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/bitacora-api/internal/models"
)

// Day events
const (
	EventClose      = "close"
	EventLockFailed = "lock_failed"
	EventRelock     = "relock"
)

// DayFSM wraps a day status with its state machine
type DayFSM struct {
	day *models.DayStatus
	fsm *fsm.FSM
}

// NewDayFSM creates a new day state machine. An empty state starts as open.
func NewDayFSM(day *models.DayStatus) *DayFSM {
	if day.State == "" {
		day.State = models.DayStateOpen
	}
	d := &DayFSM{day: day}

	d.fsm = fsm.NewFSM(
		day.State,
		fsm.Events{
			// open → closed
			{Name: EventClose, Src: []string{models.DayStateOpen}, Dst: models.DayStateClosed},

			// closed → lock_incomplete (closure stored, entries not all locked)
			{Name: EventLockFailed, Src: []string{models.DayStateClosed}, Dst: models.DayStateLockIncomplete},

			// lock_incomplete → closed (repair)
			{Name: EventRelock, Src: []string{models.DayStateLockIncomplete}, Dst: models.DayStateClosed},
		},
		fsm.Callbacks{},
	)

	return d
}

// Close transitions the day to closed
func (d *DayFSM) Close(ctx context.Context) error {
	if err := d.fsm.Event(ctx, EventClose); err != nil {
		return fmt.Errorf("no se puede cerrar el día %s en estado %s: %w", d.day.Date, d.day.State, err)
	}
	d.day.State = d.fsm.Current()
	return nil
}

// LockFailed marks a closed day whose entries could not all be locked
func (d *DayFSM) LockFailed(ctx context.Context) error {
	if err := d.fsm.Event(ctx, EventLockFailed); err != nil {
		return fmt.Errorf("failed to mark lock failure: %w", err)
	}
	d.day.State = d.fsm.Current()
	return nil
}

// Relock transitions a repaired day back to closed
func (d *DayFSM) Relock(ctx context.Context) error {
	if err := d.fsm.Event(ctx, EventRelock); err != nil {
		return fmt.Errorf("failed to relock day: %w", err)
	}
	d.day.State = d.fsm.Current()
	return nil
}

// Current returns the current state
func (d *DayFSM) Current() string {
	return d.fsm.Current()
}

// Can checks if a transition is possible
func (d *DayFSM) Can(event string) bool {
	return d.fsm.Can(event)
}
