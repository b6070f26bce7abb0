package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/thraizz/initiative-tracker/internal/combatant"
)

func (m Model) View() string {
	if m.Quitting {
		return "Goodbye\n"
	}
	tr := m.Tracker
	settings := tr.Settings()

	var b strings.Builder
	fmt.Fprintf(&b, "-- Initiative Tracker -- Round %d  [auto-graveyard:%s] [show-hidden:%s] [%s]\n\n",
		tr.Round(), onOff(settings.AutoGraveyard), onOff(settings.ShowHidden), settings.Theme)

	screen := m.mode
	if screen == modeInput || screen == modeConfirm {
		screen = m.back
	}
	if screen == modeGraveyard {
		m.viewGraveyard(&b)
	} else {
		m.viewRoster(&b)
	}

	b.WriteString("\n")
	if label, left, ok := tr.PendingUndo(); ok {
		fmt.Fprintf(&b, "%s  [u] undo (%ds)\n", label, int(math.Ceil(left.Seconds())))
	}
	if m.Err != nil {
		fmt.Fprintf(&b, "Error: %v\n", m.Err)
	} else if m.Status != "" {
		b.WriteString(m.Status + "\n")
	}

	switch m.mode {
	case modeInput:
		b.WriteString(m.input.View() + "\n")
	case modeConfirm:
		fmt.Fprintf(&b, "%s [y/N]\n", m.prompt)
	case modeGraveyard:
		b.WriteString("[r] restore  [X] delete forever  [C] clear  [u] undo  [esc] back  [q] quit\n")
	default:
		b.WriteString("[a] add  [d] dmg  [h] heal  [s] set hp  [t] tie  [m] edit  [r/R] roll/clear ties  [g] graveyard  [x] hide  [o] down\n")
		b.WriteString("[e] start  [n] next  [p] prev  [u/esc] undo/dismiss  [A] auto  [H] hidden  [T] theme  [E/I] export/import  [C] clear  [G] graveyard view  [q] quit\n")
	}
	return b.String()
}

func (m Model) viewRoster(b *strings.Builder) {
	rows := m.Tracker.Display()
	if len(rows) == 0 {
		b.WriteString("No combatants. Press [a] to add one.\n")
		return
	}
	for i, row := range rows {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}
		turn := " "
		if row.Active {
			turn = "*"
		}
		fmt.Fprintf(b, "%s%s %-20s %-7s init %3d tie %2s  %s%s\n",
			cursor, turn, row.Name, row.Team, row.Init, optional(row.Tie), hpText(row.Combatant), flags(row.Combatant))
	}
}

func (m Model) viewGraveyard(b *strings.Builder) {
	grave := m.Tracker.Graveyard()
	b.WriteString("Graveyard\n")
	if len(grave) == 0 {
		b.WriteString("Empty.\n")
		return
	}
	for i, f := range grave {
		cursor := " "
		if i == m.graveCur {
			cursor = ">"
		}
		fmt.Fprintf(b, "%s %-20s %-7s init %3d  %s  removed %s\n",
			cursor, f.Name, f.Team, f.Init, hpText(f.Combatant), f.RemovedAt.Local().Format("15:04:05"))
	}
}

func hpText(c combatant.Combatant) string {
	if !c.TracksHP() || c.HP == nil {
		return "hp   -"
	}
	maxHP := "?"
	if c.MaxHP != nil {
		maxHP = fmt.Sprint(*c.MaxHP)
	}
	return fmt.Sprintf("hp %d/%s", *c.HP, maxHP)
}

func flags(c combatant.Combatant) string {
	var out []string
	if c.Hidden {
		out = append(out, "hidden")
	}
	if c.Down {
		out = append(out, "down")
	}
	if c.Notes != "" {
		out = append(out, c.Notes)
	}
	if len(out) == 0 {
		return ""
	}
	return "  [" + strings.Join(out, "] [") + "]"
}

func optional(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
