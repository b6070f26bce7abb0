package combatant

import (
	"math"
	"strconv"
	"strings"
)

// Roller produces uniform integers in [1, sides].
type Roller interface {
	Roll(sides int) int
}

// ParseTie converts a raw tiebreaker entry. Finite numbers are rounded to the
// nearest integer and clamped to [TieMin, TieMax]; anything else clears the tie.
func ParseTie(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	f = math.Max(TieMin, math.Min(TieMax, math.Round(f)))
	return Int(int(f))
}

// RollTies assigns a fresh roll-off to every member of each initiative group
// with more than one member. Values are distinct within a group; groups of one
// keep their existing tie. A group larger than TieMax cannot be fully distinct,
// so the pool of unused values is refilled every TieMax members.
func RollTies(list []Combatant, r Roller) []Combatant {
	out := CloneAll(list)

	groups := make(map[int][]int)
	var inits []int
	for i, c := range out {
		if _, seen := groups[c.Init]; !seen {
			inits = append(inits, c.Init)
		}
		groups[c.Init] = append(groups[c.Init], i)
	}

	for _, init := range inits {
		members := groups[init]
		if len(members) < 2 {
			continue
		}
		used := make(map[int]bool, TieMax)
		for _, idx := range members {
			if len(used) == TieMax {
				clear(used)
			}
			v := rollTie(r)
			for used[v] {
				v = rollTie(r)
			}
			used[v] = true
			out[idx].Tie = Int(v)
		}
	}
	return out
}

func rollTie(r Roller) int {
	return clamp(r.Roll(TieMax), TieMin, TieMax)
}

// ClearTies unsets every tiebreaker.
func ClearTies(list []Combatant) []Combatant {
	out := CloneAll(list)
	for i := range out {
		out[i].Tie = nil
	}
	return out
}
