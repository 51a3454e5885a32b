package openmat

import "strings"

// Filters narrows the visible listing set. An empty field means no
// constraint on that dimension.
type Filters struct {
	City       string `json:"city,omitempty"`
	Level      string `json:"level,omitempty"`
	Discipline string `json:"discipline,omitempty"`
	Date       string `json:"date,omitempty"` // calendar day, YYYY-MM-DD
}

func (f Filters) IsZero() bool {
	return f.City == "" && f.Level == "" && f.Discipline == "" && f.Date == ""
}

// ApplyFilters returns the listings matching the free-text term and every
// active filter. The result is a new slice preserving input order; the
// input is never mutated. The term matches as a lowercase substring of
// club name, city, coach name or description. The city filter is an exact
// case-insensitive match, level and discipline are exact, and the date
// filter compares calendar days only.
func ApplyFilters(mats []OpenMat, term string, f Filters) []OpenMat {
	term = strings.ToLower(strings.TrimSpace(term))
	filterCity := strings.ToLower(strings.TrimSpace(f.City))
	filterDay := ""
	if f.Date != "" {
		filterDay = DayKey(f.Date)
	}

	out := make([]OpenMat, 0, len(mats))
	for _, m := range mats {
		if term != "" && !matchesTerm(m, term) {
			continue
		}
		if filterCity != "" && strings.ToLower(strings.TrimSpace(m.City)) != filterCity {
			continue
		}
		if f.Level != "" && m.Level != f.Level {
			continue
		}
		if f.Discipline != "" && m.Discipline != f.Discipline {
			continue
		}
		if filterDay != "" && DayKey(m.Date) != filterDay {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesTerm(m OpenMat, term string) bool {
	if strings.Contains(strings.ToLower(m.ClubName), term) {
		return true
	}
	if strings.Contains(strings.ToLower(m.City), term) {
		return true
	}
	if strings.Contains(strings.ToLower(m.CoachName), term) {
		return true
	}
	// A missing description never matches.
	if m.Description != "" && strings.Contains(strings.ToLower(m.Description), term) {
		return true
	}
	return false
}
