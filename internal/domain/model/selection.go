package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MaxWeek is the highest week number a selection may name.
const MaxWeek = 53

// Selection names the slice of a season handed to a game data provider.
// An empty Weeks list selects every week.
type Selection struct {
	Season int
	Weeks  []int
	Kind   string
}

// Validate checks the selection and fills in the default kind.
func (s *Selection) Validate() error {
	if s.Season <= 0 {
		return fmt.Errorf("%w: season must be positive", ErrInvalidSelection)
	}
	for _, w := range s.Weeks {
		if w <= 0 || w > MaxWeek {
			return fmt.Errorf("%w: week %d outside 1-%d", ErrInvalidSelection, w, MaxWeek)
		}
	}
	s.Kind = strings.ToUpper(strings.TrimSpace(s.Kind))
	if s.Kind == "" {
		s.Kind = KindRegular
	}
	return nil
}

// Includes reports whether g falls inside the selection.
func (s Selection) Includes(g GameOutcome) bool {
	if g.Season != s.Season {
		return false
	}
	if s.Kind != "" && !strings.EqualFold(g.Kind, s.Kind) {
		return false
	}
	return len(s.Weeks) == 0 || slices.Contains(s.Weeks, g.Week)
}

// ParseWeeks parses week lists such as "1-17", "1,3,5" or "1-4,9".
// The result is sorted and free of duplicates. An empty string yields nil.
func ParseWeeks(list string) ([]int, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	var weeks []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || first <= 0 || first > MaxWeek {
			return nil, fmt.Errorf("%w: bad week %q", ErrInvalidSelection, part)
		}
		last := first
		if isRange {
			last, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || last < first || last > MaxWeek {
				return nil, fmt.Errorf("%w: bad week range %q", ErrInvalidSelection, part)
			}
		}
		for w := first; w <= last; w++ {
			weeks = append(weeks, w)
		}
	}
	slices.Sort(weeks)
	return slices.Compact(weeks), nil
}
