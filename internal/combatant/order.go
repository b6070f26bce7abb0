package combatant

import (
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Ordering ranks combatants for turn order:
//
//  1. Init, descending.
//  2. Tie, descending. An unset tie ranks below every set tie.
//  3. Name, ascending, using the collation rules of the configured locale.
//
// The sort is stable, so entries equal on all three keys keep their input order.
type Ordering struct {
	mu       sync.Mutex
	collator *collate.Collator
}

// NewOrdering builds an ordering that compares names using tag's collation.
func NewOrdering(tag language.Tag) *Ordering {
	return &Ordering{collator: collate.New(tag)}
}

// ParseLocale resolves a BCP 47 tag, falling back to the root locale.
func ParseLocale(raw string) language.Tag {
	if raw == "" {
		return language.Und
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und
	}
	return tag
}

// Compare returns a negative number when a goes before b.
func (o *Ordering) Compare(a, b Combatant) int {
	if a.Init != b.Init {
		if a.Init > b.Init {
			return -1
		}
		return 1
	}
	if c := compareTie(a.Tie, b.Tie); c != 0 {
		return c
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.collator.CompareString(a.Name, b.Name)
}

func compareTie(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	}
	return 0
}

// Sort returns a sorted copy of list. The input is not modified.
func (o *Ordering) Sort(list []Combatant) []Combatant {
	out := CloneAll(list)
	slices.SortStableFunc(out, o.Compare)
	return out
}

// Visible drops hidden combatants. Only this view drives turn navigation.
func Visible(sorted []Combatant) []Combatant {
	out := make([]Combatant, 0, len(sorted))
	for _, c := range sorted {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// DisplayEntry is a row of the rendered roster.
type DisplayEntry struct {
	Combatant
	Active bool
}

// Display returns the rows to render. Hidden entries are included, still
// flagged through Combatant.Hidden, only when showHidden is set.
func Display(sorted []Combatant, activeID string, showHidden bool) []DisplayEntry {
	out := make([]DisplayEntry, 0, len(sorted))
	for _, c := range sorted {
		if c.Hidden && !showHidden {
			continue
		}
		out = append(out, DisplayEntry{Combatant: c, Active: c.ID == activeID})
	}
	return out
}
