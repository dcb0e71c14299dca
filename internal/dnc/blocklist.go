package dnc

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

// Entry identifies a disallowed company or country with a
// human-readable reason and category.
type Entry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Reason   string `json:"reason"`
	Category string `json:"category"`
}

// Blocklist is an immutable identifier-to-entry table. Built once at
// startup; concurrent readers need no coordination afterwards.
type Blocklist struct {
	entries map[string]Entry
}

func NewBlocklist(entries []Entry) *Blocklist {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}
	return &Blocklist{entries: m}
}

// Lookup returns the full entry for an identifier, never a partial
// record.
func (b *Blocklist) Lookup(id string) (Entry, bool) {
	e, ok := b.entries[id]
	return e, ok
}

func (b *Blocklist) Len() int { return len(b.entries) }

//go:embed data/blocklists.json
var defaultBlocklists []byte

type referenceData struct {
	Companies []Entry `json:"companies"`
	Countries []Entry `json:"countries"`
}

// LoadBlocklists reads the company and country reference tables from
// path, or from the embedded defaults when path is empty. A load
// failure is terminal for the process; callers should not start
// without reference data.
func LoadBlocklists(path string) (companies, countries *Blocklist, err error) {
	raw := defaultBlocklists
	if path != "" {
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read blocklists: %w", err)
		}
	}
	var data referenceData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, nil, fmt.Errorf("parse blocklists: %w", err)
	}
	return NewBlocklist(data.Companies), NewBlocklist(data.Countries), nil
}
