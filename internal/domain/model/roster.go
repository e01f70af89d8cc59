package model

import (
	"fmt"
	"strings"
)

// Roster is the fixed, ordered list of competitors for one estimation run.
// A competitor's position is its index into every matrix and vector.
type Roster struct {
	ids   []string
	index map[string]int
}

// NewRoster validates ids and builds a roster. Ids must be non-empty and unique.
func NewRoster(ids []string) (Roster, error) {
	if len(ids) == 0 {
		return Roster{}, fmt.Errorf("%w: no competitors", ErrInvalidRoster)
	}
	r := Roster{
		ids:   make([]string, len(ids)),
		index: make(map[string]int, len(ids)),
	}
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return Roster{}, fmt.Errorf("%w: empty id at position %d", ErrInvalidRoster, i)
		}
		if _, dup := r.index[id]; dup {
			return Roster{}, fmt.Errorf("%w: duplicate id %q", ErrInvalidRoster, id)
		}
		r.ids[i] = id
		r.index[id] = i
	}
	return r, nil
}

// Len returns the number of competitors.
func (r Roster) Len() int { return len(r.ids) }

// Index returns the position of id and whether it is on the roster.
func (r Roster) Index(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// ID returns the competitor at position i.
func (r Roster) ID(i int) string { return r.ids[i] }

// IDs returns a copy of the ordered competitor ids.
func (r Roster) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}
