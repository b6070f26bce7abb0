package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thraizz/initiative-tracker/internal/combatant"
	"github.com/thraizz/initiative-tracker/internal/tracker"
)

var testNow = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) Model {
	t.Helper()
	seq := 0
	tr := tracker.New(zaptest.NewLogger(t),
		tracker.WithClock(func() time.Time { return testNow }),
		tracker.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("c%d", seq)
		}),
	)
	m := NewModel(tr, t.TempDir(), zaptest.NewLogger(t))
	m.now = func() time.Time { return testNow }
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestAddAndDamageThroughKeys(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "Goblin, 12, 7", "enter")
	require.NoError(t, m.Err)
	assert.Equal(t, "Added Goblin", m.Status)

	m = press(t, m, "a", "Aria, 15, , player", "enter")
	require.NoError(t, m.Err)

	// Aria sorts first; move down to the goblin and hit it.
	m = press(t, m, "j", "d", "5", "enter")
	g, ok := m.Tracker.Get("c1")
	require.True(t, ok)
	assert.Equal(t, 2, *g.HP)

	view := m.View()
	assert.Contains(t, view, "Goblin")
	assert.Contains(t, view, "hp 2/7")
}

func TestInvalidInputReportsError(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "Goblin, fast", "enter")
	require.Error(t, m.Err)
	assert.Empty(t, m.Tracker.Sorted())
	assert.Contains(t, m.View(), "Error:")

	m = press(t, m, "a", ", 3", "enter")
	assert.ErrorIs(t, m.Err, combatant.ErrNameRequired)
}

func TestEscCancelsInput(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "Ghost", "esc")
	assert.Equal(t, modeRoster, m.mode)
	assert.Empty(t, m.Tracker.Sorted())
}

func TestTurnKeysFollowActiveRow(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "A, 20", "enter", "a", "B, 10", "enter")

	m = press(t, m, "e")
	assert.Equal(t, "c1", m.Tracker.ActiveID())
	assert.Equal(t, 0, m.cursor)

	m = press(t, m, "n")
	assert.Equal(t, "c2", m.Tracker.ActiveID())
	assert.Equal(t, 1, m.cursor)

	m = press(t, m, "n")
	assert.Equal(t, 2, m.Tracker.Round())
	assert.Contains(t, m.View(), "Round 2")
}

func TestClearAllNeedsConfirmation(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "A, 20, 5", "enter")

	m = press(t, m, "C")
	assert.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "[y/N]")
	m = press(t, m, "n")
	assert.Equal(t, "Cancelled", m.Status)
	assert.Len(t, m.Tracker.Sorted(), 1)

	m = press(t, m, "C", "y")
	assert.Empty(t, m.Tracker.Sorted())
}

func TestGraveyardViewRestoreAndDelete(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "A, 20, 5", "enter", "a", "B, 10, 5", "enter")
	m = press(t, m, "g", "g")
	assert.Empty(t, m.Tracker.Sorted())
	require.Len(t, m.Tracker.Graveyard(), 2)

	m = press(t, m, "G")
	assert.Contains(t, m.View(), "Graveyard")

	// Most recent first: B is at the top.
	m = press(t, m, "r")
	assert.Equal(t, "Restored B", m.Status)
	require.Len(t, m.Tracker.Graveyard(), 1)

	m = press(t, m, "X")
	assert.Contains(t, m.View(), "Delete A forever?")
	m = press(t, m, "y")
	assert.Empty(t, m.Tracker.Graveyard())

	m = press(t, m, "esc")
	assert.Equal(t, modeRoster, m.mode)
}

func TestUndoBannerAndKey(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "A, 20, 5", "enter", "g")
	assert.Contains(t, m.View(), "Moved A to graveyard")
	assert.Contains(t, m.View(), "[u] undo (5s)")

	m = press(t, m, "u")
	assert.Equal(t, "Undone", m.Status)
	assert.Len(t, m.Tracker.Sorted(), 1)
}

func TestExportThenImportRejectsBrokenFile(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "A, 20, 5", "enter", "E")
	require.NoError(t, m.Err)
	assert.True(t, strings.HasPrefix(m.Status, "Exported "))

	m = press(t, m, "I", filepath.Join(t.TempDir(), "missing.json"), "enter")
	require.Error(t, m.Err)
	assert.Len(t, m.Tracker.Sorted(), 1)
}

func TestSettingsToggles(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "A", "H", "T")
	s := m.Tracker.Settings()
	assert.True(t, s.AutoGraveyard)
	assert.True(t, s.ShowHidden)
	assert.Equal(t, "light", s.Theme)
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(key("q"))
	assert.True(t, next.(Model).Quitting)
	assert.NotNil(t, cmd)
	assert.Equal(t, "Goodbye\n", next.(Model).View())
}

func TestSetHPStartsTrackingHitPoints(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "Goblin, 12", "enter")
	g, _ := m.Tracker.Get("c1")
	require.Nil(t, g.HP)

	m = press(t, m, "d", "3", "enter")
	require.Error(t, m.Err)
	assert.Contains(t, m.Err.Error(), "no hit points")

	m = press(t, m, "s", "10", "enter")
	require.NoError(t, m.Err)
	g, _ = m.Tracker.Get("c1")
	require.NotNil(t, g.HP)
	assert.Equal(t, 10, *g.HP)
	assert.Equal(t, 10, *g.MaxHP)

	m = press(t, m, "d", "4", "enter")
	require.NoError(t, m.Err)
	g, _ = m.Tracker.Get("c1")
	assert.Equal(t, 6, *g.HP)
}

func TestHPKeysOnPlayerReportError(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "Aria, 15, , player", "enter", "s", "12", "enter")
	require.Error(t, m.Err)
	assert.Contains(t, m.Err.Error(), "player")

	p, _ := m.Tracker.Get("c1")
	assert.Nil(t, p.HP)
}

func TestEditAppliesPatch(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "Goblin, 12, 7", "enter")
	m = press(t, m, "m", "name=Hobgoblin; init=18; maxhp=20; notes=has the key, maybe", "enter")
	require.NoError(t, m.Err)
	assert.Equal(t, "Updated", m.Status)

	g, _ := m.Tracker.Get("c1")
	assert.Equal(t, "Hobgoblin", g.Name)
	assert.Equal(t, 18, g.Init)
	assert.Equal(t, 7, *g.HP)
	assert.Equal(t, 20, *g.MaxHP)
	assert.Equal(t, "has the key, maybe", g.Notes)

	m = press(t, m, "m", "speed=30", "enter")
	require.Error(t, m.Err)
	m = press(t, m, "m", "name=", "enter")
	assert.ErrorIs(t, m.Err, combatant.ErrNameRequired)
	g, _ = m.Tracker.Get("c1")
	assert.Equal(t, "Hobgoblin", g.Name)
}

func TestAddTakesNotes(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "Orc, 10, 8, enemy, axe, shield", "enter")
	require.NoError(t, m.Err)
	o, _ := m.Tracker.Get("c1")
	assert.Equal(t, "axe, shield", o.Notes)
}

func TestAutoGraveyardMoveShowsOnStatusLine(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "A", "a", "Rat, 3, 2", "enter", "d", "5", "enter")
	require.NoError(t, m.Err)
	assert.Equal(t, "Auto-graveyard: Moved Rat to graveyard", m.Status)
	assert.Empty(t, m.Tracker.Sorted())

	// Manual moves are reported by the key handler, not the notice.
	m = press(t, m, "u", "g")
	assert.Equal(t, "Moved to graveyard", m.Status)
}

func TestEscDismissesUndo(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "A, 20, 5", "enter", "g", "esc")
	assert.Equal(t, "Undo dismissed", m.Status)
	_, _, pending := m.Tracker.PendingUndo()
	assert.False(t, pending)

	m = press(t, m, "u")
	assert.Empty(t, m.Tracker.Sorted())
}

func TestQuitStopsNotices(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "A", "a", "Rat, 3, 2", "enter")
	next, _ := m.Update(key("q"))
	quit := next.(Model)

	quit.Tracker.Damage("c1", 5)
	assert.Empty(t, quit.Tracker.Sorted())
	assert.Empty(t, quit.notices.take())
}
