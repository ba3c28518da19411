package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rakshita-04/smart-expense-tracker/internal/amqp"
	"github.com/Rakshita-04/smart-expense-tracker/internal/core"
	"github.com/Rakshita-04/smart-expense-tracker/internal/store/memory"
)

func TestHandleEventMirrorsExpenses(t *testing.T) {
	src := memory.Seed([]core.Expense{
		{ID: "e1", UserID: "u1", Title: "Lunch", Amount: 10, Category: "Food & Dining", Date: "2025-05-10"},
		{ID: "e2", UserID: "u1", Title: "Bus", Amount: 2, Category: "Transportation", Date: "2025-05-20"},
	})
	dst := memory.New[core.Expense]()

	w := NewMirrorWorker(memory.New[core.User](), src, memory.New[core.User](), dst)

	msg := amqp.NewExpenseEventMessage(amqp.ActionCreated, "e2", "u1")
	require.NoError(t, w.HandleEvent(context.Background(), msg))

	got, err := dst.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, "e2", got[1].ID)
}

func TestHandleEventDeleteShrinksReplica(t *testing.T) {
	src := memory.Seed([]core.Expense{
		{ID: "e1", UserID: "u1", Title: "Lunch", Amount: 10, Category: "Food & Dining", Date: "2025-05-10"},
	})
	dst := memory.Seed([]core.Expense{
		{ID: "e1", UserID: "u1", Title: "Lunch", Amount: 10, Category: "Food & Dining", Date: "2025-05-10"},
		{ID: "gone", UserID: "u1", Title: "Stale", Amount: 1, Category: "Other", Date: "2025-01-01"},
	})

	w := NewMirrorWorker(memory.New[core.User](), src, memory.New[core.User](), dst)

	msg := amqp.NewExpenseEventMessage(amqp.ActionDeleted, "gone", "u1")
	require.NoError(t, w.HandleEvent(context.Background(), msg))

	got, err := dst.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
}

func TestStartupSyncMirrorsBothCollections(t *testing.T) {
	srcUsers := memory.Seed([]core.User{
		{ID: "u1", Username: "mario", Email: "mario@example.com", Password: "secret"},
	})
	srcExpenses := memory.Seed([]core.Expense{
		{ID: "e1", UserID: "u1", Title: "Lunch", Amount: 10, Category: "Food & Dining", Date: "2025-05-10"},
	})
	dstUsers := memory.New[core.User]()
	dstExpenses := memory.New[core.Expense]()

	w := NewMirrorWorker(srcUsers, srcExpenses, dstUsers, dstExpenses)
	require.NoError(t, w.StartupSync(context.Background()))

	users, err := dstUsers.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "mario", users[0].Username)

	expenses, err := dstExpenses.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, expenses, 1)
}
