// Package session exports and imports whole-encounter snapshots.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/thraizz/initiative-tracker/internal/combatant"
	"github.com/thraizz/initiative-tracker/internal/tracker"
)

// Version is the document version written by Export.
const Version = 1

var (
	// ErrInvalidDocument marks a document that must not be applied.
	ErrInvalidDocument = errors.New("invalid session document")
	// ErrUnsupportedVersion marks a document written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported session version")
)

// Document is the exported form of an encounter.
type Document struct {
	Version    int                   `json:"version"`
	ExportedAt time.Time             `json:"exportedAt"`
	Roster     []combatant.Combatant `json:"roster"`
	Graveyard  []combatant.Fallen    `json:"graveyard"`
	Settings   tracker.Settings      `json:"settings"`
	ActiveID   string                `json:"activeId"`
	Round      int                   `json:"round"`
	Checksum   string                `json:"checksum,omitempty"`
}

// Export builds a checksummed document from s.
func Export(s tracker.State, now time.Time) Document {
	s = s.Clone()
	doc := Document{
		Version:    Version,
		ExportedAt: now.UTC(),
		Roster:     s.Roster,
		Graveyard:  s.Graveyard,
		Settings:   s.Settings,
		ActiveID:   s.ActiveID,
		Round:      s.Round,
	}
	if doc.Roster == nil {
		doc.Roster = []combatant.Combatant{}
	}
	if doc.Graveyard == nil {
		doc.Graveyard = []combatant.Fallen{}
	}
	doc.Checksum = doc.ComputeChecksum()
	return doc
}

// State converts the document back into tracker state.
func (d Document) State() tracker.State {
	s := tracker.State{
		Roster:    combatant.CloneAll(d.Roster),
		Graveyard: combatant.CloneFallen(d.Graveyard),
		ActiveID:  d.ActiveID,
		Round:     d.Round,
		Settings:  d.Settings,
	}
	if s.Roster == nil {
		s.Roster = []combatant.Combatant{}
	}
	if s.Graveyard == nil {
		s.Graveyard = []combatant.Fallen{}
	}
	if s.Round < 1 {
		s.Round = 1
	}
	return s
}

// Encode renders the document as indented JSON.
func Encode(d Document) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

// Decode parses and validates a document. Roster and graveyard must be
// present as JSON arrays; a checksum, when present, must match.
func Decode(data []byte) (Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	for _, name := range []string{"roster", "graveyard"} {
		if !isArray(fields[name]) {
			return Document{}, fmt.Errorf("%w: %s must be a list", ErrInvalidDocument, name)
		}
	}

	doc := Document{Settings: tracker.DefaultSettings()}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Version > Version {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	if doc.Checksum != "" && !doc.VerifyChecksum() {
		return Document{}, fmt.Errorf("%w: checksum mismatch", ErrInvalidDocument)
	}
	return doc, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
