// Package persist maps the encounter state onto a key-value store: one JSON
// value per key, loaded independently, written fire-and-forget.
package persist

// DefaultPrefix namespaces the keys when no prefix is configured.
const DefaultPrefix = "initiative-tracker"

// Keys are the storage keys for one encounter.
type Keys struct {
	Settings  string
	Roster    string
	Graveyard string
	ActiveID  string
	Round     string
}

// KeysFor builds the key set under prefix.
func KeysFor(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keys{
		Settings:  prefix + ":settings",
		Roster:    prefix + ":roster",
		Graveyard: prefix + ":graveyard",
		ActiveID:  prefix + ":activeId",
		Round:     prefix + ":round",
	}
}
