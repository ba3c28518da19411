package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rakshita-04/smart-expense-tracker/internal/amqp"
	"github.com/Rakshita-04/smart-expense-tracker/internal/core"
	"github.com/Rakshita-04/smart-expense-tracker/internal/store"
)

// EventPublisher announces expense changes to downstream consumers.
// *amqp.Client implements it.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error
}

// ExpenseService implements expense CRUD, filtered querying,
// aggregation, and CSV export over the expense record store. Every
// mutation requires the record id and the caller-supplied userId to
// match; userId is not authenticated, so this is isolation by
// convention, not a security boundary.
type ExpenseService struct {
	// mu serializes read-modify-write cycles so concurrent mutations
	// cannot drop each other's records.
	mu       sync.Mutex
	expenses store.Collection[core.Expense]
	events   EventPublisher
}

func NewExpenseService(expenses store.Collection[core.Expense], events EventPublisher) *ExpenseService {
	return &ExpenseService{expenses: expenses, events: events}
}

// List returns the caller's expenses narrowed by the filter, in
// stored (insertion) order.
func (s *ExpenseService) List(ctx context.Context, userID string, f core.Filter) ([]core.Expense, error) {
	if userID == "" {
		return nil, core.ValidationError("User ID is required")
	}

	all, err := s.expenses.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}

	matched := []core.Expense{}
	for _, e := range all {
		if e.UserID == userID && f.Matches(e) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// Create validates the input, appends a new expense, and persists the
// full collection. The amount arrives as a string and is parsed
// strictly; non-numeric input is rejected rather than stored as NaN.
func (s *ExpenseService) Create(ctx context.Context, userID, title, amount, category, date string) (core.Expense, error) {
	if userID == "" || title == "" || amount == "" || category == "" || date == "" {
		return core.Expense{}, core.ValidationError("All fields are required")
	}
	amt, err := core.ParseAmount(amount)
	if err != nil {
		return core.Expense{}, core.ValidationError(err.Error())
	}
	if err := core.ValidateDate(date); err != nil {
		return core.Expense{}, core.ValidationError(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.expenses.Load(ctx)
	if err != nil {
		return core.Expense{}, fmt.Errorf("load expenses: %w", err)
	}

	expense := core.Expense{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Amount:    amt,
		Category:  category,
		Date:      date,
		CreatedAt: core.Timestamp(time.Now()),
	}

	all = append(all, expense)
	if err := s.expenses.Save(ctx, all); err != nil {
		return core.Expense{}, fmt.Errorf("save expenses: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", expense.ID,
		"user_id", userID,
		"amount", expense.Amount,
		"category", expense.Category)

	s.publish(ctx, amqp.ActionCreated, expense)
	return expense, nil
}

// Update overwrites title/amount/category/date of the expense
// matching both id and userId, refreshing updatedAt and preserving
// id, userId, and createdAt.
func (s *ExpenseService) Update(ctx context.Context, id, userID, title, amount, category, date string) (core.Expense, error) {
	if id == "" || userID == "" || title == "" || amount == "" || category == "" || date == "" {
		return core.Expense{}, core.ValidationError("All fields are required")
	}
	amt, err := core.ParseAmount(amount)
	if err != nil {
		return core.Expense{}, core.ValidationError(err.Error())
	}
	if err := core.ValidateDate(date); err != nil {
		return core.Expense{}, core.ValidationError(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.expenses.Load(ctx)
	if err != nil {
		return core.Expense{}, fmt.Errorf("load expenses: %w", err)
	}

	idx := -1
	for i, e := range all {
		if e.ID == id && e.UserID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.Expense{}, core.ErrNotFound
	}

	all[idx].Title = title
	all[idx].Amount = amt
	all[idx].Category = category
	all[idx].Date = date
	all[idx].UpdatedAt = core.Timestamp(time.Now())

	if err := s.expenses.Save(ctx, all); err != nil {
		return core.Expense{}, fmt.Errorf("save expenses: %w", err)
	}

	slog.InfoContext(ctx, "Expense updated", "expense_id", id, "user_id", userID)

	s.publish(ctx, amqp.ActionUpdated, all[idx])
	return all[idx], nil
}

// Delete removes the expense matching both id and userId.
func (s *ExpenseService) Delete(ctx context.Context, id, userID string) error {
	if id == "" || userID == "" {
		return core.ValidationError("ID and User ID are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.expenses.Load(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}

	kept := make([]core.Expense, 0, len(all))
	for _, e := range all {
		if e.ID == id && e.UserID == userID {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == len(all) {
		return core.ErrNotFound
	}

	if err := s.expenses.Save(ctx, kept); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", id, "user_id", userID)

	s.publish(ctx, amqp.ActionDeleted, core.Expense{ID: id, UserID: userID})
	return nil
}

// ExportCSV renders the filtered listing as CSV: a fixed header row,
// then one row per expense in stored order. Field values are quoted
// but embedded quotes and commas are not escaped.
func (s *ExpenseService) ExportCSV(ctx context.Context, userID string, f core.Filter) (string, error) {
	expenses, err := s.List(ctx, userID, f)
	if err != nil {
		return "", err
	}

	rows := make([]string, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, fmt.Sprintf(`"%s",%s,"%s","%s"`, e.Title, formatAmount(e.Amount), e.Category, e.Date))
	}
	return "Title,Amount,Category,Date\n" + strings.Join(rows, "\n"), nil
}

// Summary aggregates the filtered listing: overall and per-category
// totals plus the current calendar month's total.
func (s *ExpenseService) Summary(ctx context.Context, userID string, f core.Filter) (core.Summary, error) {
	expenses, err := s.List(ctx, userID, f)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(expenses, time.Now()), nil
}

func (s *ExpenseService) publish(ctx context.Context, action string, e core.Expense) {
	if s.events == nil {
		return
	}
	msg := amqp.NewExpenseEventMessage(action, e.ID, e.UserID)
	if err := s.events.PublishExpenseEvent(ctx, msg); err != nil {
		// The record is already persisted; never fail the request
		// because the broker is unavailable.
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"action", action, "expense_id", e.ID, "error", err)
	}
}

// formatAmount renders an amount the way it appears in JSON: minimal
// digits, so 3.5 rather than 3.50.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
