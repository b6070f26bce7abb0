package tracker

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/thraizz/initiative-tracker/internal/combatant"
)

// MoveToGraveyard removes id from the roster and puts it at the head of the
// graveyard. If it held the turn, the first visible combatant takes over.
func (t *Tracker) MoveToGraveyard(id string) bool {
	t.mu.Lock()
	idx := t.indexLocked(id)
	if idx < 0 {
		t.mu.Unlock()
		return false
	}
	c := t.state.Roster[idx]
	t.recordUndoLocked(fmt.Sprintf("Moved %s to graveyard", c.Name))
	t.buryLocked([]int{idx})
	t.mu.Unlock()

	t.logger.Info("moved to graveyard", zap.String("id", id), zap.String("name", c.Name))
	t.publish(Event{Type: EventMovedToGraveyard, TargetIDs: []string{id}, Description: "Moved " + c.Name + " to graveyard"})
	return true
}

// autoGraveyardLocked moves every defeated non-player in one batch when the
// setting is on. It runs after every HP write.
func (t *Tracker) autoGraveyardLocked() (Event, bool) {
	if !t.state.Settings.AutoGraveyard {
		return Event{}, false
	}
	var idxs []int
	var ids []string
	for i, c := range t.state.Roster {
		if combatant.Defeated(c) {
			idxs = append(idxs, i)
			ids = append(ids, c.ID)
		}
	}
	if len(idxs) == 0 {
		return Event{}, false
	}

	label := fmt.Sprintf("Moved %d to graveyard", len(idxs))
	if len(idxs) == 1 {
		label = fmt.Sprintf("Moved %s to graveyard", t.state.Roster[idxs[0]].Name)
	}
	t.recordUndoLocked(label)
	t.buryLocked(idxs)

	t.logger.Info("auto-graveyard moved defeated combatants", zap.Strings("ids", ids))
	return Event{Type: EventMovedToGraveyard, TargetIDs: ids, Flag: true, Description: label}, true
}

// buryLocked moves the roster entries at idxs (ascending) to the graveyard
// head as one block, keeping their roster order.
func (t *Tracker) buryLocked(idxs []int) {
	now := t.now()
	remove := make(map[int]bool, len(idxs))
	fallen := make([]combatant.Fallen, 0, len(idxs)+len(t.state.Graveyard))
	activeMoved := false
	for _, i := range idxs {
		remove[i] = true
		c := t.state.Roster[i]
		fallen = append(fallen, c.Bury(now))
		if c.ID == t.state.ActiveID {
			activeMoved = true
		}
	}

	roster := make([]combatant.Combatant, 0, len(t.state.Roster)-len(idxs))
	for i, c := range t.state.Roster {
		if !remove[i] {
			roster = append(roster, c)
		}
	}
	t.state.Roster = roster
	t.state.Graveyard = append(fallen, t.state.Graveyard...)

	if activeMoved {
		t.state.ActiveID = t.firstVisibleLocked()
	}
}

// RestoreFromGraveyard returns a graveyard entry to the roster with its
// fields untouched. If the roster was empty, the first visible entry becomes
// active.
func (t *Tracker) RestoreFromGraveyard(id string) bool {
	t.mu.Lock()
	idx := t.graveIndexLocked(id)
	if idx < 0 {
		t.mu.Unlock()
		return false
	}
	f := t.state.Graveyard[idx]
	wasEmpty := len(t.state.Roster) == 0
	t.state.Graveyard = append(t.state.Graveyard[:idx:idx], t.state.Graveyard[idx+1:]...)
	t.state.Roster = append(t.state.Roster, f.Combatant)
	if wasEmpty {
		t.state.ActiveID = t.firstVisibleLocked()
	}
	t.mu.Unlock()

	t.logger.Info("restored from graveyard", zap.String("id", id), zap.String("name", f.Name))
	t.publish(Event{Type: EventRestored, TargetIDs: []string{id}, Description: "Restored " + f.Name})
	return true
}

// DeleteForever drops a graveyard entry after confirmation.
func (t *Tracker) DeleteForever(id string, confirm Confirmer) bool {
	t.mu.RLock()
	idx := t.graveIndexLocked(id)
	var name string
	if idx >= 0 {
		name = t.state.Graveyard[idx].Name
	}
	t.mu.RUnlock()
	if idx < 0 || !confirmed(confirm, fmt.Sprintf("Delete %s forever?", name)) {
		return false
	}

	t.mu.Lock()
	idx = t.graveIndexLocked(id)
	if idx < 0 {
		t.mu.Unlock()
		return false
	}
	t.recordUndoLocked("Deleted " + name)
	t.state.Graveyard = append(t.state.Graveyard[:idx:idx], t.state.Graveyard[idx+1:]...)
	t.mu.Unlock()

	t.logger.Info("deleted from graveyard", zap.String("id", id), zap.String("name", name))
	t.publish(Event{Type: EventDeletedForever, TargetIDs: []string{id}, Description: "Deleted " + name})
	return true
}

// ClearGraveyard empties the graveyard after confirmation.
func (t *Tracker) ClearGraveyard(confirm Confirmer) bool {
	t.mu.RLock()
	n := len(t.state.Graveyard)
	t.mu.RUnlock()
	if n == 0 || !confirmed(confirm, fmt.Sprintf("Clear %d graveyard entries?", n)) {
		return false
	}

	t.mu.Lock()
	t.recordUndoLocked("Cleared graveyard")
	t.state.Graveyard = []combatant.Fallen{}
	t.mu.Unlock()

	t.logger.Info("graveyard cleared", zap.Int("entries", n))
	t.publish(Event{Type: EventGraveyardCleared, Amount: n, Description: "Cleared graveyard"})
	return true
}

// ClearAll wipes the roster and the graveyard and resets the turn pointer
// and round after confirmation. Settings are kept.
func (t *Tracker) ClearAll(confirm Confirmer) bool {
	t.mu.RLock()
	empty := len(t.state.Roster) == 0 && len(t.state.Graveyard) == 0
	t.mu.RUnlock()
	if empty || !confirmed(confirm, "Clear the whole encounter?") {
		return false
	}

	t.mu.Lock()
	t.recordUndoLocked("Cleared encounter")
	t.state.Roster = []combatant.Combatant{}
	t.state.Graveyard = []combatant.Fallen{}
	t.state.ActiveID = ""
	t.state.Round = 1
	t.mu.Unlock()

	t.logger.Info("encounter cleared")
	t.publish(Event{Type: EventRosterCleared, Description: "Cleared encounter"})
	return true
}
