package tracker

import (
	"go.uber.org/zap"
)

// StartEncounter resets the round counter and hands the turn to the first
// visible combatant.
func (t *Tracker) StartEncounter() {
	t.mu.Lock()
	t.state.Round = 1
	t.state.ActiveID = t.firstVisibleLocked()
	active := t.state.ActiveID
	t.mu.Unlock()

	t.logger.Info("encounter started", zap.String("active_id", active))
	t.publish(Event{Type: EventEncounterStarted, TargetIDs: idList(active), Amount: 1})
}

// NextTurn advances to the next visible combatant, wrapping to the top of the
// order and incrementing the round.
func (t *Tracker) NextTurn() {
	t.step(1)
}

// PrevTurn moves back to the previous visible combatant, wrapping to the
// bottom of the order and decrementing the round (never below 1).
func (t *Tracker) PrevTurn() {
	t.step(-1)
}

func (t *Tracker) step(dir int) {
	t.mu.Lock()
	visible := t.visibleLocked()
	if len(visible) == 0 {
		t.state.ActiveID = ""
		t.mu.Unlock()
		t.publish(Event{Type: EventTurnChanged})
		return
	}

	current := -1
	for i, c := range visible {
		if c.ID == t.state.ActiveID {
			current = i
			break
		}
	}

	next := 0
	if current >= 0 {
		next = current + dir
		switch {
		case next >= len(visible):
			next = 0
			t.state.Round++
		case next < 0:
			next = len(visible) - 1
			t.state.Round = max(1, t.state.Round-1)
		}
	}
	t.state.ActiveID = visible[next].ID
	active, round := t.state.ActiveID, t.state.Round
	t.mu.Unlock()

	t.logger.Debug("turn changed", zap.String("active_id", active), zap.Int("round", round))
	t.publish(Event{Type: EventTurnChanged, TargetIDs: idList(active), Amount: round})
}

func idList(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}
