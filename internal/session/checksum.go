package session

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/thraizz/initiative-tracker/internal/combatant"
)

// ComputeChecksum hashes a canonical rendering of the encounter. The export
// timestamp and the checksum itself are excluded.
func (d Document) ComputeChecksum() string {
	sum := sha256.Sum256([]byte(d.canonical()))
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum reports whether the stored checksum matches the content.
func (d Document) VerifyChecksum() bool {
	return d.Checksum == d.ComputeChecksum()
}

// canonical writes one line per record. Roster and graveyard keep their
// stored order since insertion order is part of the state.
func (d Document) canonical() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "SESSION:%d|%s|%d\n", d.Version, d.ActiveID, d.Round)
	fmt.Fprintf(&buf, "SETTINGS:%t|%t|%s\n",
		d.Settings.AutoGraveyard,
		d.Settings.ShowHidden,
		d.Settings.Theme,
	)

	fmt.Fprintf(&buf, "ROSTER:%d\n", len(d.Roster))
	for _, c := range d.Roster {
		writeCombatant(&buf, "C", c)
		buf.WriteString("\n")
	}

	fmt.Fprintf(&buf, "GRAVEYARD:%d\n", len(d.Graveyard))
	for _, f := range d.Graveyard {
		writeCombatant(&buf, "G", f.Combatant)
		fmt.Fprintf(&buf, "|%s\n", stamp(f.RemovedAt))
	}

	return buf.String()
}

func writeCombatant(buf *bytes.Buffer, tag string, c combatant.Combatant) {
	fmt.Fprintf(buf, "%s:%s|%q|%s|%s|%s|%d|%s|%t|%t|%q|%s",
		tag,
		c.ID,
		c.Name,
		c.Team,
		optional(c.HP),
		optional(c.MaxHP),
		c.Init,
		optional(c.Tie),
		c.Hidden,
		c.Down,
		c.Notes,
		stamp(c.CreatedAt),
	)
}

func optional(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
