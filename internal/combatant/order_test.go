package combatant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func names(list []Combatant) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Name
	}
	return out
}

func TestSortByInitThenName(t *testing.T) {
	o := NewOrdering(language.Und)
	list := []Combatant{
		{ID: "1", Name: "Bex", Init: 15},
		{ID: "2", Name: "Alu", Init: 10},
		{ID: "3", Name: "Ana", Init: 15},
	}
	assert.Equal(t, []string{"Ana", "Bex", "Alu"}, names(o.Sort(list)))
}

func TestSortByTie(t *testing.T) {
	o := NewOrdering(language.Und)
	list := []Combatant{
		{ID: "1", Name: "Tie A", Init: 12, Tie: Int(5)},
		{ID: "2", Name: "Tie B", Init: 12, Tie: Int(15)},
	}
	assert.Equal(t, []string{"Tie B", "Tie A"}, names(o.Sort(list)))
}

func TestSortUnsetTieRanksLast(t *testing.T) {
	o := NewOrdering(language.Und)
	list := []Combatant{
		{ID: "1", Name: "Aaron", Init: 12},
		{ID: "2", Name: "Zed", Init: 12, Tie: Int(1)},
	}
	assert.Equal(t, []string{"Zed", "Aaron"}, names(o.Sort(list)))
}

func TestSortNameIsFinalKey(t *testing.T) {
	o := NewOrdering(language.Und)
	list := []Combatant{
		{ID: "1", Name: "Beta", Init: 10, Tie: Int(10)},
		{ID: "2", Name: "Alpha", Init: 10, Tie: Int(10)},
	}
	assert.Equal(t, []string{"Alpha", "Beta"}, names(o.Sort(list)))
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	o := NewOrdering(language.Und)
	list := []Combatant{
		{ID: "first", Name: "Goblin", Init: 8},
		{ID: "second", Name: "Goblin", Init: 8},
	}
	sorted := o.Sort(list)
	assert.Equal(t, "first", sorted[0].ID)
	assert.Equal(t, "second", sorted[1].ID)
}

func TestSortUsesCollation(t *testing.T) {
	o := NewOrdering(language.English)
	list := []Combatant{
		{ID: "1", Name: "zara", Init: 5},
		{ID: "2", Name: "Émile", Init: 5},
		{ID: "3", Name: "Bob", Init: 5},
	}
	assert.Equal(t, []string{"Bob", "Émile", "zara"}, names(o.Sort(list)))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	o := NewOrdering(language.Und)
	list := []Combatant{
		{ID: "1", Name: "Low", Init: 1},
		{ID: "2", Name: "High", Init: 20},
	}
	_ = o.Sort(list)
	assert.Equal(t, "Low", list[0].Name)
}

func TestVisibleExcludesHiddenRegardlessOfRank(t *testing.T) {
	o := NewOrdering(language.Und)
	list := []Combatant{
		{ID: "1", Name: "Assassin", Init: 25, Hidden: true},
		{ID: "2", Name: "Ana", Init: 15},
		{ID: "3", Name: "Orc", Init: 9},
	}
	sorted := o.Sort(list)
	assert.Equal(t, "Assassin", sorted[0].Name)
	assert.Equal(t, []string{"Ana", "Orc"}, names(Visible(sorted)))
}

func TestDisplayHonoursShowHidden(t *testing.T) {
	sorted := []Combatant{
		{ID: "1", Name: "Assassin", Init: 25, Hidden: true},
		{ID: "2", Name: "Ana", Init: 15},
	}

	rows := Display(sorted, "2", false)
	assert.Len(t, rows, 1)
	assert.True(t, rows[0].Active)

	rows = Display(sorted, "2", true)
	assert.Len(t, rows, 2)
	assert.True(t, rows[0].Hidden)
	assert.False(t, rows[0].Active)
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, language.Und, ParseLocale(""))
	assert.Equal(t, language.Und, ParseLocale("not a locale!"))
	assert.Equal(t, language.MustParse("de-DE"), ParseLocale("de-DE"))
}
