// Package worker mirrors the primary file store into a SQLite replica,
// driven by expense change events.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rakshita-04/smart-expense-tracker/internal/amqp"
	"github.com/Rakshita-04/smart-expense-tracker/internal/core"
	"github.com/Rakshita-04/smart-expense-tracker/internal/store"
)

// MirrorWorker copies expense and user records from a source store to
// a replica. Every event triggers a full re-read of the source, so a
// lost, duplicated, or out-of-order message never leaves the replica
// wrong for longer than the next event.
type MirrorWorker struct {
	srcUsers    store.Collection[core.User]
	srcExpenses store.Collection[core.Expense]
	dstUsers    store.Collection[core.User]
	dstExpenses store.Collection[core.Expense]
}

func NewMirrorWorker(
	srcUsers store.Collection[core.User],
	srcExpenses store.Collection[core.Expense],
	dstUsers store.Collection[core.User],
	dstExpenses store.Collection[core.Expense],
) *MirrorWorker {
	return &MirrorWorker{
		srcUsers:    srcUsers,
		srcExpenses: srcExpenses,
		dstUsers:    dstUsers,
		dstExpenses: dstExpenses,
	}
}

// HandleEvent processes a single expense change event by re-mirroring
// the expense collection.
func (w *MirrorWorker) HandleEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	slog.InfoContext(ctx, "Processing expense event",
		"action", msg.Action,
		"id", msg.ID,
		"user_id", msg.UserID)

	if err := w.mirrorExpenses(ctx); err != nil {
		return fmt.Errorf("mirror expenses: %w", err)
	}
	return nil
}

// StartupSync mirrors both collections once at worker startup. This
// recovers the replica after missed events or worker downtime.
func (w *MirrorWorker) StartupSync(ctx context.Context) error {
	if err := w.mirrorUsers(ctx); err != nil {
		return fmt.Errorf("mirror users: %w", err)
	}
	if err := w.mirrorExpenses(ctx); err != nil {
		return fmt.Errorf("mirror expenses: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed")
	return nil
}

func (w *MirrorWorker) mirrorExpenses(ctx context.Context) error {
	records, err := w.srcExpenses.Load(ctx)
	if err != nil {
		return fmt.Errorf("load source expenses: %w", err)
	}
	if err := w.dstExpenses.Save(ctx, records); err != nil {
		return fmt.Errorf("save replica expenses: %w", err)
	}
	slog.DebugContext(ctx, "Expenses mirrored", "count", len(records))
	return nil
}

func (w *MirrorWorker) mirrorUsers(ctx context.Context) error {
	records, err := w.srcUsers.Load(ctx)
	if err != nil {
		return fmt.Errorf("load source users: %w", err)
	}
	if err := w.dstUsers.Save(ctx, records); err != nil {
		return fmt.Errorf("save replica users: %w", err)
	}
	slog.DebugContext(ctx, "Users mirrored", "count", len(records))
	return nil
}
