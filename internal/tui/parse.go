package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thraizz/initiative-tracker/internal/combatant"
	"github.com/thraizz/initiative-tracker/internal/tracker"
)

// parseDraft reads "name, init, hp, team, notes". Only the name is required;
// a missing init is 0. A non-player added without hp has no hit points until
// they are set with [s] or [m]. Notes take the rest of the line, commas
// included.
func parseDraft(raw string) (combatant.Draft, error) {
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	d := combatant.Draft{Name: parts[0]}
	if len(parts) > 1 && parts[1] != "" {
		init, err := strconv.Atoi(parts[1])
		if err != nil {
			return combatant.Draft{}, fmt.Errorf("init must be a number: %q", parts[1])
		}
		d.Init = init
	}
	if len(parts) > 2 && parts[2] != "" {
		hp, err := strconv.Atoi(parts[2])
		if err != nil {
			return combatant.Draft{}, fmt.Errorf("hp must be a number: %q", parts[2])
		}
		d.HP = combatant.Int(hp)
	}
	if len(parts) > 3 {
		team, err := combatant.ParseTeam(parts[3])
		if err != nil {
			return combatant.Draft{}, err
		}
		d.Team = team
	}
	if len(parts) > 4 {
		d.Notes = strings.Join(parts[4:], ", ")
	}
	return d, nil
}

// parsePatch reads "field=value; field=value" into an update. Fields are
// name, init, hp, maxhp, team, notes, hidden and down.
func parsePatch(raw string) (tracker.Patch, error) {
	var p tracker.Patch
	assigned := 0
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, value, ok := strings.Cut(part, "=")
		if !ok {
			return tracker.Patch{}, fmt.Errorf("expected field=value, got %q", part)
		}
		field = strings.ToLower(strings.TrimSpace(field))
		value = strings.TrimSpace(value)

		switch field {
		case "name":
			p.Name = &value
		case "notes":
			p.Notes = &value
		case "team":
			team, err := combatant.ParseTeam(value)
			if err != nil {
				return tracker.Patch{}, err
			}
			p.Team = &team
		case "init", "hp", "maxhp":
			n, err := strconv.Atoi(value)
			if err != nil {
				return tracker.Patch{}, fmt.Errorf("%s must be a number: %q", field, value)
			}
			switch field {
			case "init":
				p.Init = &n
			case "hp":
				p.HP = &n
			default:
				p.MaxHP = &n
			}
		case "hidden", "down":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return tracker.Patch{}, fmt.Errorf("%s must be true or false: %q", field, value)
			}
			if field == "hidden" {
				p.Hidden = &b
			} else {
				p.Down = &b
			}
		default:
			return tracker.Patch{}, fmt.Errorf("unknown field %q", field)
		}
		assigned++
	}
	if assigned == 0 {
		return tracker.Patch{}, fmt.Errorf("nothing to update")
	}
	return p, nil
}

func parseAmount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return n, nil
}
