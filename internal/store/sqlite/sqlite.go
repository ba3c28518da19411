// Package sqlite implements the record-store port over an embedded
// database. It keeps the whole-collection contract: Load selects the
// full set in insertion order and Save replaces it in one
// transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Rakshita-04/smart-expense-tracker/internal/core"

	_ "modernc.org/sqlite"
)

// Store holds the shared database handle behind the per-entity
// collection views.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Users returns the user collection view.
func (s *Store) Users() *UserCollection { return &UserCollection{db: s.db} }

// Expenses returns the expense collection view.
func (s *Store) Expenses() *ExpenseCollection { return &ExpenseCollection{db: s.db} }

type UserCollection struct {
	db *sql.DB
}

func (c *UserCollection) Load(ctx context.Context) ([]core.User, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, username, email, password, created_at FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := []core.User{}
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (c *UserCollection) Save(ctx context.Context, users []core.User) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	for _, u := range users {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, email, password, created_at) VALUES (?, ?, ?, ?, ?)`,
			u.ID, u.Username, u.Email, u.Password, u.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit users: %w", err)
	}
	slog.DebugContext(ctx, "User collection saved to SQLite", "records", len(users))
	return nil
}

type ExpenseCollection struct {
	db *sql.DB
}

func (c *ExpenseCollection) Load(ctx context.Context) ([]core.Expense, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, user_id, title, amount, category, date, created_at, updated_at FROM expenses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Amount, &e.Category, &e.Date, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func (c *ExpenseCollection) Save(ctx context.Context, expenses []core.Expense) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	for _, e := range expenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, user_id, title, amount, category, date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.UserID, e.Title, e.Amount, e.Category, e.Date, e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert expense %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expenses: %w", err)
	}
	slog.DebugContext(ctx, "Expense collection saved to SQLite", "records", len(expenses))
	return nil
}
