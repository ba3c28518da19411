package core

// Filter is the optional category/date-range triple narrowing a
// listing or export. Zero-valued fields are ignored.
type Filter struct {
	Category  string
	StartDate string
	EndDate   string
}

// IsZero reports whether no constraint is set.
func (f Filter) IsZero() bool {
	return f.Category == "" && f.StartDate == "" && f.EndDate == ""
}

// Matches reports whether e satisfies every set constraint. Date
// bounds are inclusive and compared lexically.
func (f Filter) Matches(e Expense) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.StartDate != "" && e.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && e.Date > f.EndDate {
		return false
	}
	return true
}
