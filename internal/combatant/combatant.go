// Package combatant holds the encounter data model and the pure rules that
// order combatants and update their hit points and tiebreakers.
package combatant

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Team is the category a combatant fights for.
type Team string

const (
	TeamPlayer  Team = "player"
	TeamEnemy   Team = "enemy"
	TeamAlly    Team = "ally"
	TeamNeutral Team = "neutral"
)

var teamNames = map[Team]string{
	TeamPlayer:  "Player",
	TeamEnemy:   "Enemy",
	TeamAlly:    "Ally",
	TeamNeutral: "Neutral",
}

func (t Team) String() string {
	if name, ok := teamNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TEAM_%s", string(t))
}

// Valid reports whether t is one of the known teams.
func (t Team) Valid() bool {
	_, ok := teamNames[t]
	return ok
}

// TracksHP reports whether combatants of this team carry hit points.
func (t Team) TracksHP() bool {
	return t != TeamPlayer
}

// ParseTeam resolves a case-insensitive team name. An empty string means enemy.
func ParseTeam(raw string) (Team, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return TeamEnemy, nil
	}
	team := Team(name)
	if !team.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTeam, raw)
	}
	return team, nil
}

const (
	// HPFloor is the lowest hit point value a combatant can reach.
	HPFloor = -9999
	TieMin  = 1
	TieMax  = 20
)

var (
	ErrNameRequired = errors.New("combatant name is required")
	ErrUnknownTeam  = errors.New("unknown team")
)

// Combatant is one participant in the encounter.
//
// HP and MaxHP are nil for players. Down is stored rather than derived: every
// programmatic HP write recomputes it, manual toggles may override it until the
// next write.
type Combatant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Team      Team      `json:"team"`
	HP        *int      `json:"hp"`
	MaxHP     *int      `json:"maxHp"`
	Init      int       `json:"init"`
	Tie       *int      `json:"tie"`
	Hidden    bool      `json:"hidden"`
	Down      bool      `json:"down"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Fallen is a graveyard entry: the combatant as it was when removed.
type Fallen struct {
	Combatant
	RemovedAt time.Time `json:"removedAt"`
}

// Draft carries the fields supplied when adding a combatant.
type Draft struct {
	Name   string
	Team   Team
	Init   int
	HP     *int
	MaxHP  *int
	Tie    *int
	Hidden bool
	Notes  string
}

// New validates a draft and builds a combatant from it.
func New(d Draft, id string, now time.Time) (Combatant, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Combatant{}, ErrNameRequired
	}
	team := d.Team
	if team == "" {
		team = TeamEnemy
	}
	if !team.Valid() {
		return Combatant{}, fmt.Errorf("%w: %q", ErrUnknownTeam, string(team))
	}

	c := Combatant{
		ID:        id,
		Name:      name,
		Team:      team,
		Init:      d.Init,
		Hidden:    d.Hidden,
		Notes:     d.Notes,
		CreatedAt: now,
	}
	if d.Tie != nil {
		c.Tie = Int(clamp(*d.Tie, TieMin, TieMax))
	}
	if !team.TracksHP() {
		return c, nil
	}

	hp, maxHP := d.HP, d.MaxHP
	switch {
	case hp == nil && maxHP == nil:
		return c, nil
	case maxHP == nil:
		maxHP = hp
	case hp == nil:
		hp = maxHP
	}
	c.MaxHP = Int(*maxHP)
	c.HP = Int(clamp(*hp, HPFloor, *maxHP))
	c.Down = *c.HP <= 0
	return c, nil
}

// Normalize restores the data model invariants on a combatant read from
// outside, such as persisted or imported state.
func Normalize(c Combatant) Combatant {
	out := c.Clone()
	if out.Tie != nil {
		out.Tie = Int(clamp(*out.Tie, TieMin, TieMax))
	}
	if !out.Team.TracksHP() {
		out.HP, out.MaxHP, out.Down = nil, nil, false
		return out
	}
	if out.HP != nil && out.MaxHP != nil {
		out.HP = Int(clamp(*out.HP, HPFloor, *out.MaxHP))
	}
	return out
}

// TracksHP reports whether HP rules apply to c.
func (c Combatant) TracksHP() bool {
	return c.Team.TracksHP() && c.HP != nil && c.MaxHP != nil
}

// Clone returns a copy that shares no pointers with c.
func (c Combatant) Clone() Combatant {
	out := c
	out.HP = cloneInt(c.HP)
	out.MaxHP = cloneInt(c.MaxHP)
	out.Tie = cloneInt(c.Tie)
	return out
}

// Bury turns c into a graveyard entry.
func (c Combatant) Bury(now time.Time) Fallen {
	return Fallen{Combatant: c.Clone(), RemovedAt: now}
}

// Clone returns a copy that shares no pointers with f.
func (f Fallen) Clone() Fallen {
	return Fallen{Combatant: f.Combatant.Clone(), RemovedAt: f.RemovedAt}
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return Int(*p)
}

// CloneAll deep-copies a roster.
func CloneAll(list []Combatant) []Combatant {
	out := make([]Combatant, len(list))
	for i, c := range list {
		out[i] = c.Clone()
	}
	return out
}

// CloneFallen deep-copies a graveyard.
func CloneFallen(list []Fallen) []Fallen {
	out := make([]Fallen, len(list))
	for i, f := range list {
		out[i] = f.Clone()
	}
	return out
}
