package backend

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Rakshita-04/smart-expense-tracker/internal/core"
	"github.com/Rakshita-04/smart-expense-tracker/internal/store/jsonfile"
	"github.com/Rakshita-04/smart-expense-tracker/internal/store/memory"
	"github.com/Rakshita-04/smart-expense-tracker/internal/store/sqlite"
)

const (
	usersFile    = "users.json"
	expensesFile = "expenses.json"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Stores, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileBackend:
		return f.createFileBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFileBackend(config Config) (*Stores, error) {
	f.logger.Info("Initialized file backend", "data_directory", config.DataDir)

	return &Stores{
		Users:    jsonfile.New[core.User](filepath.Join(config.DataDir, usersFile)),
		Expenses: jsonfile.New[core.Expense](filepath.Join(config.DataDir, expensesFile)),
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Stores, error) {
	st, err := sqlite.Open(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Stores{
		Users:    st.Users(),
		Expenses: st.Expenses(),
		Cleanup:  st.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*Stores, error) {
	f.logger.Info("Initialized memory backend")

	return &Stores{
		Users:    memory.New[core.User](),
		Expenses: memory.New[core.Expense](),
	}, nil
}
