package tracker

import (
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/thraizz/initiative-tracker/internal/combatant"
	"github.com/thraizz/initiative-tracker/internal/dice"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// trackerHarness wires a tracker with a fake clock, sequential ids and an
// event recorder.
type trackerHarness struct {
	t      *testing.T
	tr     *Tracker
	clock  *fakeClock
	events []Event
}

func newHarness(t *testing.T, opts ...Option) *trackerHarness {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)}
	seq := 0
	base := []Option{
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("c%d", seq)
		}),
		WithRoller(dice.New(2026)),
	}
	h := &trackerHarness{
		t:     t,
		tr:    New(zaptest.NewLogger(t), append(base, opts...)...),
		clock: clock,
	}
	h.tr.Events().Subscribe(func(e Event) {
		h.events = append(h.events, e)
	})
	return h
}

func (h *trackerHarness) addEnemy(name string, init, hp, maxHP int) string {
	h.t.Helper()
	c, err := h.tr.Add(combatant.Draft{
		Name:  name,
		Team:  combatant.TeamEnemy,
		Init:  init,
		HP:    combatant.Int(hp),
		MaxHP: combatant.Int(maxHP),
	})
	if err != nil {
		h.t.Fatalf("add %s: %v", name, err)
	}
	return c.ID
}

func (h *trackerHarness) addPlayer(name string, init int) string {
	h.t.Helper()
	c, err := h.tr.Add(combatant.Draft{Name: name, Team: combatant.TeamPlayer, Init: init})
	if err != nil {
		h.t.Fatalf("add %s: %v", name, err)
	}
	return c.ID
}

func (h *trackerHarness) rosterNames() []string {
	var out []string
	for _, c := range h.tr.Sorted() {
		out = append(out, c.Name)
	}
	return out
}

func (h *trackerHarness) graveNames() []string {
	var out []string
	for _, f := range h.tr.Graveyard() {
		out = append(out, f.Name)
	}
	return out
}

func (h *trackerHarness) lastEvent() Event {
	h.t.Helper()
	if len(h.events) == 0 {
		h.t.Fatalf("no events published")
	}
	return h.events[len(h.events)-1]
}
