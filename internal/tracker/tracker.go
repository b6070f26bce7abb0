// Package tracker owns the encounter state: the active roster, the graveyard,
// the turn pointer and the round counter. Every input action runs to
// completion under the tracker lock and then publishes an Event.
package tracker

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/thraizz/initiative-tracker/internal/combatant"
	"github.com/thraizz/initiative-tracker/internal/dice"
)

// DefaultUndoWindow is how long the last undoable action stays available.
const DefaultUndoWindow = 5 * time.Second

// Settings are the user preferences persisted alongside the encounter.
type Settings struct {
	AutoGraveyard bool   `json:"autoGraveyard"`
	ShowHidden    bool   `json:"showHidden"`
	Theme         string `json:"theme"`
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{Theme: "dark"}
}

// State is the full encounter state. Roster keeps insertion order; the turn
// order is always derived from it.
type State struct {
	Roster    []combatant.Combatant `json:"roster"`
	Graveyard []combatant.Fallen    `json:"graveyard"`
	ActiveID  string                `json:"activeId"`
	Round     int                   `json:"round"`
	Settings  Settings              `json:"settings"`
}

// DefaultState is an empty encounter on round 1.
func DefaultState() State {
	return State{
		Roster:    []combatant.Combatant{},
		Graveyard: []combatant.Fallen{},
		Round:     1,
		Settings:  DefaultSettings(),
	}
}

// Clone deep-copies s.
func (s State) Clone() State {
	out := s
	out.Roster = combatant.CloneAll(s.Roster)
	out.Graveyard = combatant.CloneFallen(s.Graveyard)
	return out
}

// Patch carries the fields of an update; nil fields are left alone.
type Patch struct {
	Name   *string
	Team   *combatant.Team
	Init   *int
	HP     *int
	MaxHP  *int
	Notes  *string
	Hidden *bool
	Down   *bool
}

// Tracker applies input actions to the encounter state.
type Tracker struct {
	mu         sync.RWMutex
	state      State
	ordering   *combatant.Ordering
	roller     combatant.Roller
	now        func() time.Time
	newID      func() string
	undoWindow time.Duration
	undo       *undoRecord
	bus        *EventBus
	logger     *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithOrdering sets the ordering used to derive turn order.
func WithOrdering(o *combatant.Ordering) Option {
	return func(t *Tracker) { t.ordering = o }
}

// WithRoller sets the roller used for roll-offs.
func WithRoller(r combatant.Roller) Option {
	return func(t *Tracker) { t.roller = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDGenerator overrides the combatant id source.
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// WithUndoWindow sets how long an undo stays available.
func WithUndoWindow(d time.Duration) Option {
	return func(t *Tracker) { t.undoWindow = d }
}

// WithEventBus shares an existing bus.
func WithEventBus(bus *EventBus) Option {
	return func(t *Tracker) { t.bus = bus }
}

// WithState seeds the tracker with previously stored state.
func WithState(s State) Option {
	return func(t *Tracker) { t.state = sanitize(s) }
}

// New creates a tracker with an empty encounter.
func New(logger *zap.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		state:      DefaultState(),
		ordering:   combatant.NewOrdering(language.Und),
		now:        time.Now,
		newID:      uuid.NewString,
		undoWindow: DefaultUndoWindow,
		bus:        NewEventBus(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.roller == nil {
		t.roller = dice.New(t.now().UnixNano())
	}
	return t
}

// Events returns the bus the tracker publishes on.
func (t *Tracker) Events() *EventBus {
	return t.bus
}

// Add validates a draft and appends the new combatant to the roster.
func (t *Tracker) Add(d combatant.Draft) (combatant.Combatant, error) {
	t.mu.Lock()
	c, err := combatant.New(d, t.newID(), t.now())
	if err != nil {
		t.mu.Unlock()
		return combatant.Combatant{}, err
	}
	t.state.Roster = append(t.state.Roster, c)
	t.mu.Unlock()

	t.logger.Debug("combatant added",
		zap.String("id", c.ID),
		zap.String("name", c.Name),
		zap.String("team", string(c.Team)),
		zap.Int("init", c.Init),
	)
	t.publish(Event{Type: EventCombatantAdded, TargetIDs: []string{c.ID}, Description: "Added " + c.Name})
	return c.Clone(), nil
}

// Update applies a partial edit. It reports false when id is not in the
// roster. Editing HP or MaxHP counts as an HP write: Down is recomputed and
// the auto-graveyard scan runs.
func (t *Tracker) Update(id string, p Patch) (bool, error) {
	t.mu.Lock()
	idx := t.indexLocked(id)
	if idx < 0 {
		t.mu.Unlock()
		return false, nil
	}
	c := t.state.Roster[idx].Clone()

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			t.mu.Unlock()
			return false, combatant.ErrNameRequired
		}
		c.Name = name
	}
	if p.Team != nil {
		if !p.Team.Valid() {
			t.mu.Unlock()
			return false, fmt.Errorf("%w: %q", combatant.ErrUnknownTeam, string(*p.Team))
		}
		c.Team = *p.Team
		if !c.Team.TracksHP() {
			c.HP, c.MaxHP, c.Down = nil, nil, false
		}
	}
	if p.Init != nil {
		c.Init = *p.Init
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.Hidden != nil {
		c.Hidden = *p.Hidden
	}

	hpWritten := false
	if c.Team.TracksHP() && (p.HP != nil || p.MaxHP != nil) {
		if p.MaxHP != nil {
			c.MaxHP = combatant.Int(*p.MaxHP)
		}
		hp := p.HP
		if hp == nil {
			hp = c.HP
		}
		if hp == nil {
			hp = c.MaxHP
		}
		if c.MaxHP == nil {
			c.MaxHP = combatant.Int(*hp)
		}
		c.HP = combatant.Int(*hp)
		c = combatant.SetHP(c, *c.HP)
		hpWritten = true
	}
	if p.Down != nil && c.Team.TracksHP() {
		c.Down = *p.Down
	}

	t.state.Roster[idx] = c
	events := []Event{{Type: EventCombatantUpdated, TargetIDs: []string{id}, Description: "Updated " + c.Name}}
	if hpWritten {
		if moved, ok := t.autoGraveyardLocked(); ok {
			events = append(events, moved)
		}
	}
	t.mu.Unlock()

	t.publish(events...)
	return true, nil
}

// ToggleHidden flips the hidden flag.
func (t *Tracker) ToggleHidden(id string) bool {
	c, ok := t.Get(id)
	if !ok {
		return false
	}
	hidden := !c.Hidden
	ok, _ = t.Update(id, Patch{Hidden: &hidden})
	return ok
}

// ToggleDown manually overrides the down flag of an HP-tracked combatant.
func (t *Tracker) ToggleDown(id string) bool {
	c, ok := t.Get(id)
	if !ok || !c.Team.TracksHP() {
		return false
	}
	down := !c.Down
	ok, _ = t.Update(id, Patch{Down: &down})
	return ok
}

// Damage lowers the hit points of id by |amount|.
func (t *Tracker) Damage(id string, amount int) bool {
	return t.writeHP(id, EventDamaged, amount, func(c combatant.Combatant) combatant.Combatant {
		return combatant.Damage(c, amount)
	})
}

// Heal raises the hit points of id by |amount|.
func (t *Tracker) Heal(id string, amount int) bool {
	return t.writeHP(id, EventHealed, amount, func(c combatant.Combatant) combatant.Combatant {
		return combatant.Heal(c, amount)
	})
}

// SetExactHP assigns the hit points of id.
func (t *Tracker) SetExactHP(id string, value int) bool {
	return t.writeHP(id, EventHPSet, value, func(c combatant.Combatant) combatant.Combatant {
		return combatant.SetHP(c, value)
	})
}

func (t *Tracker) writeHP(id string, eventType EventType, amount int, apply func(combatant.Combatant) combatant.Combatant) bool {
	t.mu.Lock()
	idx := t.indexLocked(id)
	if idx < 0 || !t.state.Roster[idx].TracksHP() {
		t.mu.Unlock()
		return false
	}
	c := apply(t.state.Roster[idx])
	t.state.Roster[idx] = c
	events := []Event{{Type: eventType, TargetIDs: []string{id}, Amount: amount}}
	if moved, ok := t.autoGraveyardLocked(); ok {
		events = append(events, moved)
	}
	t.mu.Unlock()

	t.logger.Debug("hit points changed",
		zap.String("id", id),
		zap.String("event", string(eventType)),
		zap.Int("amount", amount),
		zap.Int("hp", *c.HP),
		zap.Bool("down", c.Down),
	)
	t.publish(events...)
	return true
}

// SetTie parses raw into a tiebreaker; unparseable input clears it.
func (t *Tracker) SetTie(id string, raw string) bool {
	t.mu.Lock()
	idx := t.indexLocked(id)
	if idx < 0 {
		t.mu.Unlock()
		return false
	}
	t.state.Roster[idx].Tie = combatant.ParseTie(raw)
	t.mu.Unlock()

	t.publish(Event{Type: EventTieSet, TargetIDs: []string{id}})
	return true
}

// RollTies rolls distinct roll-offs inside every shared-initiative group.
func (t *Tracker) RollTies() {
	t.mu.Lock()
	t.state.Roster = combatant.RollTies(t.state.Roster, t.roller)
	t.mu.Unlock()

	t.publish(Event{Type: EventTiesRolled})
}

// ClearTies removes every tiebreaker.
func (t *Tracker) ClearTies() {
	t.mu.Lock()
	t.state.Roster = combatant.ClearTies(t.state.Roster)
	t.mu.Unlock()

	t.publish(Event{Type: EventTiesCleared})
}

// SetAutoGraveyard toggles automatic removal of defeated combatants. The scan
// runs on the next HP write, not when the setting changes.
func (t *Tracker) SetAutoGraveyard(on bool) {
	t.updateSettings(func(s *Settings) { s.AutoGraveyard = on })
}

// SetShowHidden toggles whether hidden combatants are rendered.
func (t *Tracker) SetShowHidden(on bool) {
	t.updateSettings(func(s *Settings) { s.ShowHidden = on })
}

// SetTheme stores the theme name for the rendering layer.
func (t *Tracker) SetTheme(theme string) {
	t.updateSettings(func(s *Settings) { s.Theme = theme })
}

func (t *Tracker) updateSettings(apply func(*Settings)) {
	t.mu.Lock()
	apply(&t.state.Settings)
	t.mu.Unlock()

	t.publish(Event{Type: EventSettingsChanged})
}

// Replace swaps in stored state without recording an undo.
func (t *Tracker) Replace(s State) {
	t.mu.Lock()
	t.state = sanitize(s)
	t.undo = nil
	t.mu.Unlock()

	t.publish(Event{Type: EventStateReplaced})
}

// Import swaps in an imported session. The previous encounter can be
// restored with Undo while the window is open.
func (t *Tracker) Import(s State) {
	t.mu.Lock()
	t.recordUndoLocked("Imported session")
	t.state = sanitize(s)
	t.mu.Unlock()

	t.logger.Info("session imported",
		zap.Int("roster", len(s.Roster)),
		zap.Int("graveyard", len(s.Graveyard)),
	)
	t.publish(Event{Type: EventStateReplaced, Flag: true, Description: "Imported session"})
}

// Get returns a copy of a roster entry.
func (t *Tracker) Get(id string) (combatant.Combatant, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx := t.indexLocked(id)
	if idx < 0 {
		return combatant.Combatant{}, false
	}
	return t.state.Roster[idx].Clone(), true
}

// Sorted returns the roster in turn order, hidden entries included.
func (t *Tracker) Sorted() []combatant.Combatant {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ordering.Sort(t.state.Roster)
}

// Visible returns the turn order without hidden entries.
func (t *Tracker) Visible() []combatant.Combatant {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.visibleLocked()
}

// Display returns the rows to render under the current settings.
func (t *Tracker) Display() []combatant.DisplayEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return combatant.Display(t.ordering.Sort(t.state.Roster), t.state.ActiveID, t.state.Settings.ShowHidden)
}

// ActiveID returns the id whose turn it is, or "" when none.
func (t *Tracker) ActiveID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.ActiveID
}

// Round returns the round counter.
func (t *Tracker) Round() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Round
}

// Graveyard returns the graveyard, most recently removed first.
func (t *Tracker) Graveyard() []combatant.Fallen {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return combatant.CloneFallen(t.state.Graveyard)
}

// Settings returns the current settings.
func (t *Tracker) Settings() Settings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Settings
}

// Snapshot returns a deep copy of the whole state.
func (t *Tracker) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Clone()
}

func (t *Tracker) indexLocked(id string) int {
	for i, c := range t.state.Roster {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) graveIndexLocked(id string) int {
	for i, f := range t.state.Graveyard {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) visibleLocked() []combatant.Combatant {
	return combatant.Visible(t.ordering.Sort(t.state.Roster))
}

func (t *Tracker) firstVisibleLocked() string {
	visible := t.visibleLocked()
	if len(visible) == 0 {
		return ""
	}
	return visible[0].ID
}

func (t *Tracker) publish(events ...Event) {
	now := t.now()
	for _, evt := range events {
		if evt.Timestamp.IsZero() {
			evt.Timestamp = now
		}
		t.bus.Publish(evt)
	}
}

// sanitize restores the state invariants on stored or imported data. An id
// appears at most once across roster and graveyard; the roster copy wins.
func sanitize(s State) State {
	out := DefaultState()
	out.Settings = s.Settings
	if s.Round > 0 {
		out.Round = s.Round
	}
	seen := make(map[string]bool, len(s.Roster)+len(s.Graveyard))
	for _, c := range s.Roster {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out.Roster = append(out.Roster, combatant.Normalize(c))
	}
	for _, f := range s.Graveyard {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		out.Graveyard = append(out.Graveyard, combatant.Fallen{
			Combatant: combatant.Normalize(f.Combatant),
			RemovedAt: f.RemovedAt,
		})
	}
	for _, c := range out.Roster {
		if c.ID == s.ActiveID {
			out.ActiveID = s.ActiveID
			break
		}
	}
	return out
}
