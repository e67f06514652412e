package models

import (
	"time"

	"github.com/google/uuid"
)

// OddsEntry is one horse's decimal odds.
type OddsEntry struct {
	HorseID uuid.UUID `json:"horse_id"`
	Name    string    `json:"name"`
	Odds    float64   `json:"odds"`
}

// ImpliedProbability returns 1/odds
func (e OddsEntry) ImpliedProbability() float64 {
	if e.Odds <= 0 {
		return 0
	}
	return 1.0 / e.Odds
}

// OddsTable maps horses to decimal odds, preserving lane order.
type OddsTable struct {
	ComputedAt time.Time `json:"computed_at"`
	Live       bool      `json:"live"`

	entries []OddsEntry
	index   map[uuid.UUID]int
}

// NewOddsTable creates an empty table.
func NewOddsTable() *OddsTable {
	return &OddsTable{
		ComputedAt: time.Now().UTC(),
		index:      make(map[uuid.UUID]int),
	}
}

// Set adds or replaces a horse's odds. New horses are appended.
func (t *OddsTable) Set(horseID uuid.UUID, name string, odds float64) {
	if i, ok := t.index[horseID]; ok {
		t.entries[i].Odds = odds
		t.entries[i].Name = name
		return
	}
	t.index[horseID] = len(t.entries)
	t.entries = append(t.entries, OddsEntry{HorseID: horseID, Name: name, Odds: odds})
}

// Get returns the odds for a horse.
func (t *OddsTable) Get(horseID uuid.UUID) (float64, bool) {
	if t == nil {
		return 0, false
	}
	i, ok := t.index[horseID]
	if !ok {
		return 0, false
	}
	return t.entries[i].Odds, true
}

// Entries returns a copy of the entries in lane order.
func (t *OddsTable) Entries() []OddsEntry {
	if t == nil {
		return nil
	}
	out := make([]OddsEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of priced horses.
func (t *OddsTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Min returns the shortest odds, or 0 for an empty table.
func (t *OddsTable) Min() float64 {
	if t.Len() == 0 {
		return 0
	}
	m := t.entries[0].Odds
	for _, e := range t.entries[1:] {
		if e.Odds < m {
			m = e.Odds
		}
	}
	return m
}

// Max returns the longest odds, or 0 for an empty table.
func (t *OddsTable) Max() float64 {
	if t.Len() == 0 {
		return 0
	}
	m := t.entries[0].Odds
	for _, e := range t.entries[1:] {
		if e.Odds > m {
			m = e.Odds
		}
	}
	return m
}

// Spread returns Max - Min.
func (t *OddsTable) Spread() float64 {
	return t.Max() - t.Min()
}

// Favourite returns the entry with the shortest odds, lane order breaking ties.
func (t *OddsTable) Favourite() (OddsEntry, bool) {
	if t.Len() == 0 {
		return OddsEntry{}, false
	}
	best := t.entries[0]
	for _, e := range t.entries[1:] {
		if e.Odds < best.Odds {
			best = e
		}
	}
	return best, true
}

// Outsider returns the entry with the longest odds, lane order breaking ties.
func (t *OddsTable) Outsider() (OddsEntry, bool) {
	if t.Len() == 0 {
		return OddsEntry{}, false
	}
	worst := t.entries[0]
	for _, e := range t.entries[1:] {
		if e.Odds > worst.Odds {
			worst = e
		}
	}
	return worst, true
}

// Clone returns an independent copy.
func (t *OddsTable) Clone() *OddsTable {
	if t == nil {
		return nil
	}
	c := &OddsTable{
		ComputedAt: t.ComputedAt,
		Live:       t.Live,
		entries:    make([]OddsEntry, len(t.entries)),
		index:      make(map[uuid.UUID]int, len(t.index)),
	}
	copy(c.entries, t.entries)
	for k, v := range t.index {
		c.index[k] = v
	}
	return c
}
