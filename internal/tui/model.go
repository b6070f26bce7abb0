// Package tui is the terminal front end for the tracker.
package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/thraizz/initiative-tracker/internal/session"
	"github.com/thraizz/initiative-tracker/internal/tracker"
)

type mode int

const (
	modeRoster mode = iota
	modeGraveyard
	modeInput
	modeConfirm
)

type inputKind int

const (
	inputAdd inputKind = iota
	inputDamage
	inputHeal
	inputSetHP
	inputTie
	inputEdit
	inputImport
)

var inputPrompts = map[inputKind]string{
	inputAdd:    "name, init, hp, team, notes> ",
	inputDamage: "damage> ",
	inputHeal:   "heal> ",
	inputSetHP:  "hp> ",
	inputTie:    "tie (1-20, blank clears)> ",
	inputEdit:   "edit field=value; ... (name init hp maxhp team notes hidden down)> ",
	inputImport: "import path> ",
}

type tickMsg time.Time

// noticeBoard collects auto-graveyard moves published by the tracker so the
// status line can report them.
type noticeBoard struct {
	mu     sync.Mutex
	text   string
	bus    *tracker.EventBus
	handle int
}

func (n *noticeBoard) post(e tracker.Event) {
	if !e.Flag {
		return
	}
	n.mu.Lock()
	n.text = "Auto-graveyard: " + e.Description
	n.mu.Unlock()
}

func (n *noticeBoard) take() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	text := n.text
	n.text = ""
	return text
}

func (n *noticeBoard) close() {
	n.bus.Unsubscribe(n.handle)
}

// Model is the bubbletea model. It holds a pointer to the tracker, so
// copies share the encounter.
type Model struct {
	Tracker   *tracker.Tracker
	Quitting  bool
	Status    string
	Err       error
	exportDir string
	now       func() time.Time
	logger    *zap.Logger

	mode      mode
	back      mode
	cursor    int
	graveCur  int
	input     textinput.Model
	inputKind inputKind
	targetID  string
	prompt    string
	onConfirm func()
	notices   *noticeBoard
}

// NewModel builds the front end for tr. Exports land in exportDir.
func NewModel(tr *tracker.Tracker, exportDir string, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	ti := textinput.New()
	ti.CharLimit = 128

	notices := &noticeBoard{bus: tr.Events()}
	notices.handle = notices.bus.SubscribeTyped(tracker.EventMovedToGraveyard, notices.post)

	return Model{
		Tracker:   tr,
		exportDir: exportDir,
		now:       time.Now,
		logger:    logger,
		input:     ti,
		notices:   notices,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		var (
			next tea.Model
			cmd  tea.Cmd
		)
		switch m.mode {
		case modeInput:
			next, cmd = m.updateInput(msg)
		case modeConfirm:
			next, cmd = m.updateConfirm(msg)
		case modeGraveyard:
			next, cmd = m.updateGraveyard(msg)
		default:
			next, cmd = m.updateRoster(msg)
		}
		if nm, ok := next.(Model); ok {
			if note := nm.notices.take(); note != "" && nm.Err == nil {
				nm.Status = note
			}
			next = nm
		}
		return next, cmd
	default:
		if m.mode == modeInput {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Quitting = true
	m.notices.close()
	return m, tea.Quit
}

func (m Model) updateRoster(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tr := m.Tracker
	m.Err = nil
	m.Status = ""
	selected := m.selectedID()

	switch msg.String() {
	case "q":
		return m.quit()
	case "j", "down":
		m.cursor++
	case "k", "up":
		m.cursor--
	case "a":
		return m.startInput(inputAdd, "")
	case "d":
		if selected != "" {
			return m.startInput(inputDamage, selected)
		}
	case "h":
		if selected != "" {
			return m.startInput(inputHeal, selected)
		}
	case "s":
		if selected != "" {
			return m.startInput(inputSetHP, selected)
		}
	case "t":
		if selected != "" {
			return m.startInput(inputTie, selected)
		}
	case "m":
		if selected != "" {
			return m.startInput(inputEdit, selected)
		}
	case "esc":
		if _, _, ok := tr.PendingUndo(); ok {
			tr.DismissUndo()
			m.Status = "Undo dismissed"
		}
	case "r":
		tr.RollTies()
		m.Status = "Rolled ties"
	case "R":
		tr.ClearTies()
		m.Status = "Cleared ties"
	case "g":
		if selected != "" && tr.MoveToGraveyard(selected) {
			m.Status = "Moved to graveyard"
		}
	case "x":
		if selected != "" {
			tr.ToggleHidden(selected)
		}
	case "o":
		if selected != "" {
			tr.ToggleDown(selected)
		}
	case "e":
		tr.StartEncounter()
		m.cursor = m.activeRow()
	case "n", " ":
		tr.NextTurn()
		m.cursor = m.activeRow()
	case "p":
		tr.PrevTurn()
		m.cursor = m.activeRow()
	case "u":
		if tr.Undo() {
			m.Status = "Undone"
		}
	case "A":
		tr.SetAutoGraveyard(!tr.Settings().AutoGraveyard)
	case "H":
		tr.SetShowHidden(!tr.Settings().ShowHidden)
	case "T":
		theme := "light"
		if tr.Settings().Theme == "light" {
			theme = "dark"
		}
		tr.SetTheme(theme)
	case "C":
		return m.askConfirm("Clear the roster and graveyard?", func() {
			tr.ClearAll(tracker.Confirmed)
		})
	case "E":
		path := filepath.Join(m.exportDir, session.FileName(m.now()))
		if err := session.ExportFile(tr, path, m.now(), m.logger); err != nil {
			m.Err = err
		} else {
			m.Status = "Exported " + path
		}
	case "I":
		return m.startInput(inputImport, "")
	case "G", "tab":
		m.mode = modeGraveyard
	}

	m.cursor = clampCursor(m.cursor, len(tr.Display()))
	return m, nil
}

func (m Model) updateGraveyard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tr := m.Tracker
	m.Err = nil
	m.Status = ""
	grave := tr.Graveyard()
	var selected string
	if m.graveCur >= 0 && m.graveCur < len(grave) {
		selected = grave[m.graveCur].ID
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "esc", "G", "tab":
		m.mode = modeRoster
	case "j", "down":
		m.graveCur++
	case "k", "up":
		m.graveCur--
	case "r":
		if selected != "" && tr.RestoreFromGraveyard(selected) {
			m.Status = "Restored " + grave[m.graveCur].Name
		}
	case "X":
		if selected != "" {
			name := grave[m.graveCur].Name
			return m.askConfirm(fmt.Sprintf("Delete %s forever?", name), func() {
				tr.DeleteForever(selected, tracker.Confirmed)
			})
		}
	case "C":
		return m.askConfirm("Empty the graveyard?", func() {
			tr.ClearGraveyard(tracker.Confirmed)
		})
	case "u":
		if tr.Undo() {
			m.Status = "Undone"
		}
	}

	m.graveCur = clampCursor(m.graveCur, len(tr.Graveyard()))
	return m, nil
}

func (m Model) startInput(kind inputKind, targetID string) (tea.Model, tea.Cmd) {
	m.back = m.mode
	m.mode = modeInput
	m.inputKind = kind
	m.targetID = targetID
	m.input.Prompt = inputPrompts[kind]
	m.input.SetValue("")
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.mode = m.back
		return m, nil
	case "enter":
		value := m.input.Value()
		m.input.Blur()
		m.mode = m.back
		m.applyInput(value)
		m.cursor = clampCursor(m.cursor, len(m.Tracker.Display()))
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyInput(value string) {
	tr := m.Tracker
	switch m.inputKind {
	case inputAdd:
		draft, err := parseDraft(value)
		if err != nil {
			m.Err = err
			return
		}
		c, err := tr.Add(draft)
		if err != nil {
			m.Err = err
			return
		}
		m.Status = "Added " + c.Name
	case inputDamage, inputHeal, inputSetHP:
		n, err := parseAmount(value)
		if err != nil {
			m.Err = err
			return
		}
		m.Err = m.applyHP(n)
	case inputTie:
		if !tr.SetTie(m.targetID, value) {
			m.Err = errNotInRoster
		}
	case inputEdit:
		patch, err := parsePatch(value)
		if err != nil {
			m.Err = err
			return
		}
		ok, err := tr.Update(m.targetID, patch)
		switch {
		case err != nil:
			m.Err = err
		case !ok:
			m.Err = errNotInRoster
		default:
			m.Status = "Updated"
		}
	case inputImport:
		if err := session.ImportFile(tr, value, m.logger); err != nil {
			m.Err = fmt.Errorf("import failed: %w", err)
			return
		}
		m.Status = "Imported " + value
	}
}

var errNotInRoster = errors.New("combatant is no longer in the roster")

// applyHP runs the pending HP input. Set on an entry that does not track hit
// points yet starts tracking them through Update.
func (m *Model) applyHP(n int) error {
	tr := m.Tracker
	c, ok := tr.Get(m.targetID)
	if !ok {
		return errNotInRoster
	}
	if !c.Team.TracksHP() {
		return fmt.Errorf("%s is a player; players have no hit points", c.Name)
	}

	switch m.inputKind {
	case inputDamage:
		ok = tr.Damage(m.targetID, n)
	case inputHeal:
		ok = tr.Heal(m.targetID, n)
	default:
		if c.TracksHP() {
			ok = tr.SetExactHP(m.targetID, n)
		} else {
			ok, _ = tr.Update(m.targetID, tracker.Patch{HP: &n})
		}
	}
	if !ok {
		return fmt.Errorf("%s has no hit points yet; set them with [s]", c.Name)
	}
	return nil
}

func (m Model) askConfirm(prompt string, action func()) (tea.Model, tea.Cmd) {
	m.back = m.mode
	m.mode = modeConfirm
	m.prompt = prompt
	m.onConfirm = action
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "y" || msg.String() == "Y" {
		m.onConfirm()
		m.Status = "Done"
	} else {
		m.Status = "Cancelled"
	}
	m.mode = m.back
	m.prompt = ""
	m.onConfirm = nil
	m.cursor = clampCursor(m.cursor, len(m.Tracker.Display()))
	m.graveCur = clampCursor(m.graveCur, len(m.Tracker.Graveyard()))
	return m, nil
}

func (m Model) selectedID() string {
	rows := m.Tracker.Display()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return ""
	}
	return rows[m.cursor].ID
}

func (m Model) activeRow() int {
	for i, row := range m.Tracker.Display() {
		if row.Active {
			return i
		}
	}
	return m.cursor
}

func clampCursor(cur, n int) int {
	if n == 0 {
		return 0
	}
	return max(0, min(n-1, cur))
}
