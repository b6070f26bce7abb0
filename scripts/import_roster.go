package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/thraizz/initiative-tracker/internal/combatant"
	"github.com/thraizz/initiative-tracker/internal/session"
	"github.com/thraizz/initiative-tracker/internal/tracker"
)

// Columns: name, team, init, hp, max_hp, tie, hidden, notes. Only name is
// required; blank numeric cells are left unset.
const minColumns = 3

func main() {
	csvPath := "data/roster.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := session.FileName(time.Now())
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	absPath, err := filepath.Abs(csvPath)
	if err != nil {
		log.Fatalf("Failed to get absolute path: %v", err)
	}

	fmt.Println("=== Roster Import ===")
	fmt.Printf("CSV file: %s\n", absPath)

	file, err := os.Open(absPath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) < 2 {
		log.Fatal("CSV file is empty or has no data rows")
	}

	fmt.Printf("Found %d rows in CSV\n", len(records)-1)

	tr := tracker.New(nil)
	imported := 0
	for i, record := range records[1:] {
		if len(record) < minColumns {
			log.Printf("Warning: Skipping row %d - insufficient columns", i+2)
			continue
		}
		draft, err := parseRow(record)
		if err != nil {
			log.Printf("Warning: Skipping row %d - %v", i+2, err)
			continue
		}
		if _, err := tr.Add(draft); err != nil {
			log.Printf("Warning: Skipping row %d - %v", i+2, err)
			continue
		}
		imported++
	}

	fmt.Printf("Parsed %d valid combatants\n", imported)

	doc := session.Export(tr.Snapshot(), time.Now())
	if err := session.WriteFile(outPath, doc); err != nil {
		log.Fatalf("Failed to write session: %v", err)
	}
	fmt.Printf("✓ Session written to %s\n", outPath)
}

func parseRow(record []string) (combatant.Draft, error) {
	cell := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	team, err := combatant.ParseTeam(cell(1))
	if err != nil {
		return combatant.Draft{}, err
	}
	init, err := strconv.Atoi(cell(2))
	if err != nil {
		return combatant.Draft{}, fmt.Errorf("init %q is not a number", cell(2))
	}

	return combatant.Draft{
		Name:   cell(0),
		Team:   team,
		Init:   init,
		HP:     parseOptionalInt(cell(3)),
		MaxHP:  parseOptionalInt(cell(4)),
		Tie:    parseOptionalInt(cell(5)),
		Hidden: parseBool(cell(6)),
		Notes:  cell(7),
	}, nil
}

func parseOptionalInt(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "t"
}
