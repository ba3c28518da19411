package core

import (
	"strings"
	"time"
)

// CategoryTotal aggregates spending for one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// Summary is the aggregate view of a filtered expense set.
type Summary struct {
	Total             float64         `json:"total"`
	Count             int             `json:"count"`
	ByCategory        []CategoryTotal `json:"byCategory"`
	CurrentMonthTotal float64         `json:"currentMonthTotal"`
}

// Summarize computes totals over expenses in a single pass. Category
// order follows first appearance; the current-month total covers
// dates sharing now's year-month prefix.
func Summarize(expenses []Expense, now time.Time) Summary {
	monthPrefix := now.Format("2006-01")
	s := Summary{ByCategory: []CategoryTotal{}}
	index := make(map[string]int)
	for _, e := range expenses {
		s.Total += e.Amount
		s.Count++
		i, ok := index[e.Category]
		if !ok {
			i = len(s.ByCategory)
			index[e.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryTotal{Category: e.Category})
		}
		s.ByCategory[i].Total += e.Amount
		s.ByCategory[i].Count++
		if strings.HasPrefix(e.Date, monthPrefix) {
			s.CurrentMonthTotal += e.Amount
		}
	}
	return s
}
