package ie

import (
	"fmt"

	"github.com/thebagchi/xnap-go/lib/per"
)

// Catalog describes the information elements a container may carry: their
// ids, criticality, presence and how to decode their values.
type Catalog interface {
	// Name identifies the catalog in logs and diagnostics.
	Name() string

	// Len returns the number of known ids.
	Len() int

	// IdxToID returns the id at position idx, 0 <= idx < Len().
	IdxToID(idx int) uint32

	// IsIDValid reports whether id is known.
	IsIDValid(id uint32) bool

	// Criticality returns the criticality of a known id.
	Criticality(id uint32) Criticality

	// Presence returns the presence of a known id.
	Presence(id uint32) Presence

	// NewValue returns an empty value to decode a known id into.
	NewValue(id uint32) per.Value
}

// Entry is one row of a Table.
type Entry struct {
	ID          uint32
	Name        string
	Criticality Criticality
	Presence    Presence
	New         func() per.Value
}

// Table is a Catalog backed by an immutable list of entries.
type Table struct {
	name    string
	entries []Entry
	index   map[uint32]int
}

// NewTable builds a catalog. It panics when an id is listed twice since
// tables are package level definitions.
func NewTable(name string, entries ...Entry) *Table {
	t := &Table{
		name:    name,
		entries: entries,
		index:   make(map[uint32]int, len(entries)),
	}
	for i, entry := range entries {
		if _, ok := t.index[entry.ID]; ok {
			panic(fmt.Sprintf("%s: id %d listed twice", name, entry.ID))
		}
		t.index[entry.ID] = i
	}
	return t
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Len() int {
	return len(t.entries)
}

func (t *Table) IdxToID(idx int) uint32 {
	return t.entries[idx].ID
}

func (t *Table) IsIDValid(id uint32) bool {
	_, ok := t.index[id]
	return ok
}

func (t *Table) Criticality(id uint32) Criticality {
	if entry, ok := t.Entry(id); ok {
		return entry.Criticality
	}
	return Reject
}

func (t *Table) Presence(id uint32) Presence {
	if entry, ok := t.Entry(id); ok {
		return entry.Presence
	}
	return Optional
}

func (t *Table) NewValue(id uint32) per.Value {
	if entry, ok := t.Entry(id); ok && entry.New != nil {
		return entry.New()
	}
	return &per.OpenType{}
}

// Entry returns the entry of id.
func (t *Table) Entry(id uint32) (Entry, bool) {
	idx, ok := t.index[id]
	if !ok {
		return Entry{}, false
	}
	return t.entries[idx], true
}

// IDName returns the name of id, or id-<n> when it is not in the catalog.
func IDName(c Catalog, id uint32) string {
	if t, ok := c.(*Table); ok {
		if entry, ok := t.Entry(id); ok {
			return entry.Name
		}
	}
	return fmt.Sprintf("id-%d", id)
}
