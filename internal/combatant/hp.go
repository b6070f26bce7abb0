package combatant

import "math"

// MaxHPDelta bounds the magnitude of a single damage or heal amount.
const MaxHPDelta = 1 << 30

// Damage lowers hit points by |amount|. The sign of amount is ignored.
func Damage(c Combatant, amount int) Combatant {
	if !c.TracksHP() {
		return c
	}
	return SetHP(c, addSat(*c.HP, -magnitude(amount)))
}

// Heal raises hit points by |amount|, never past MaxHP.
func Heal(c Combatant, amount int) Combatant {
	if !c.TracksHP() {
		return c
	}
	return SetHP(c, addSat(*c.HP, magnitude(amount)))
}

// SetHP assigns hit points directly, clamped to [HPFloor, MaxHP], and
// recomputes Down.
func SetHP(c Combatant, value int) Combatant {
	if !c.TracksHP() {
		return c
	}
	out := c.Clone()
	out.HP = Int(clamp(value, HPFloor, *c.MaxHP))
	out.Down = *out.HP <= 0
	return out
}

// Defeated reports whether c is an HP-tracked non-player at or below zero.
func Defeated(c Combatant) bool {
	return c.TracksHP() && *c.HP <= 0
}

// clamp applies the upper bound first so a max below the floor still yields lo.
func clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}

// magnitude is |n| capped at MaxHPDelta. math.MinInt is handled.
func magnitude(n int) int {
	if n < 0 {
		if n < -MaxHPDelta {
			return MaxHPDelta
		}
		return -n
	}
	return min(n, MaxHPDelta)
}

func addSat(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}
