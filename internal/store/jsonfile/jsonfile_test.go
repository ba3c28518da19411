package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rakshita-04/smart-expense-tracker/internal/core"
)

func TestLoadMissingFile(t *testing.T) {
	c := New[core.User](filepath.Join(t.TempDir(), "users.json"))

	records, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	c := New[core.User](path)
	records, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "expenses.json")
	c := New[core.Expense](path)

	err := c.Save(context.Background(), []core.Expense{{ID: "e1", UserID: "u1", Title: "Coffee", Amount: 3.5}})
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := New[core.Expense](filepath.Join(t.TempDir(), "expenses.json"))
	ctx := context.Background()

	in := []core.Expense{
		{ID: "e1", UserID: "u1", Title: "Coffee", Amount: 3.5, Category: "Food & Dining", Date: "2024-01-05"},
		{ID: "e2", UserID: "u2", Title: "Bus", Amount: 2, Category: "Transportation", Date: "2024-01-06"},
	}
	require.NoError(t, c.Save(ctx, in))

	out, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	c := New[core.User](path)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestSaveOverwritesWholeDocument(t *testing.T) {
	c := New[core.User](filepath.Join(t.TempDir(), "users.json"))
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, []core.User{{ID: "u1"}, {ID: "u2"}}))
	require.NoError(t, c.Save(ctx, []core.User{{ID: "u3"}}))

	out, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "u3", out[0].ID)
}
