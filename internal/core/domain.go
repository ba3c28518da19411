package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for storage and range
// filtering. ISO dates order lexically the same way they order
// chronologically, which the filter logic relies on.
const DateLayout = "2006-01-02"

// Categories is the suggested category set offered to clients. It is
// advisory only; the server accepts any category string.
var Categories = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Healthcare",
	"Travel",
	"Education",
	"Other",
}

type (
	User struct {
		ID        string `json:"id"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password,omitempty"`
		CreatedAt string `json:"createdAt"`
	}

	Expense struct {
		ID        string  `json:"id"`
		UserID    string  `json:"userId"`
		Title     string  `json:"title"`
		Amount    float64 `json:"amount"`
		Category  string  `json:"category"`
		Date      string  `json:"date"`
		CreatedAt string  `json:"createdAt"`
		UpdatedAt string  `json:"updatedAt,omitempty"`
	}
)

var (
	ErrDuplicateUser      = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrNotFound           = errors.New("Expense not found")
	ErrInvalidAmount      = errors.New("Amount must be a valid number")
	ErrInvalidDate        = errors.New("Date must be in YYYY-MM-DD format")
)

// ValidationError reports rejected input with a client-facing message.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// WithoutPassword returns a copy of the user safe for transmission.
// The password is stored verbatim and must never leave the server.
func (u User) WithoutPassword() User {
	u.Password = ""
	return u
}

// ParseAmount converts a decimal string to a float64. Non-numeric,
// NaN, and infinite inputs are rejected rather than stored.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ValidateDate checks that s is a real calendar date in DateLayout.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Timestamp returns the given instant as an ISO-8601 string, the
// representation used for createdAt/updatedAt in both stores.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
