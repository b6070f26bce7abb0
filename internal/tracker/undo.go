package tracker

import (
	"time"

	"go.uber.org/zap"

	"github.com/thraizz/initiative-tracker/internal/combatant"
)

// undoRecord captures the state slices an undoable action may touch.
// Settings are never part of it.
type undoRecord struct {
	label     string
	roster    []combatant.Combatant
	graveyard []combatant.Fallen
	activeID  string
	round     int
	expires   time.Time
}

// recordUndoLocked replaces any pending undo with a snapshot of the current
// state.
func (t *Tracker) recordUndoLocked(label string) {
	if t.undoWindow <= 0 {
		t.undo = nil
		return
	}
	t.undo = &undoRecord{
		label:     label,
		roster:    combatant.CloneAll(t.state.Roster),
		graveyard: combatant.CloneFallen(t.state.Graveyard),
		activeID:  t.state.ActiveID,
		round:     t.state.Round,
		expires:   t.now().Add(t.undoWindow),
	}
}

func (t *Tracker) pendingUndoLocked() *undoRecord {
	if t.undo == nil || !t.now().Before(t.undo.expires) {
		return nil
	}
	return t.undo
}

// PendingUndo returns the label of the action Undo would revert and the time
// left to do so.
func (t *Tracker) PendingUndo() (string, time.Duration, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec := t.pendingUndoLocked()
	if rec == nil {
		return "", 0, false
	}
	return rec.label, rec.expires.Sub(t.now()), true
}

// Undo reverts the last undoable action if its window is still open.
func (t *Tracker) Undo() bool {
	t.mu.Lock()
	rec := t.pendingUndoLocked()
	t.undo = nil
	if rec == nil {
		t.mu.Unlock()
		return false
	}
	t.state.Roster = rec.roster
	t.state.Graveyard = rec.graveyard
	t.state.ActiveID = rec.activeID
	t.state.Round = rec.round
	t.mu.Unlock()

	t.logger.Info("undo applied", zap.String("action", rec.label))
	t.publish(Event{Type: EventUndone, Description: "Undid " + rec.label})
	return true
}

// DismissUndo drops the pending undo.
func (t *Tracker) DismissUndo() {
	t.mu.Lock()
	t.undo = nil
	t.mu.Unlock()
}
