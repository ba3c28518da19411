package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rakshita-04/smart-expense-tracker/internal/core"
	"github.com/Rakshita-04/smart-expense-tracker/internal/store"
)

// UserService implements registration and authentication over the
// user record store.
type UserService struct {
	// mu serializes register's read-modify-write so two concurrent
	// registrations cannot both pass the duplicate check.
	mu    sync.Mutex
	users store.Collection[core.User]
}

func NewUserService(users store.Collection[core.User]) *UserService {
	return &UserService{users: users}
}

// Register creates a new user if the email is not already taken.
// Email comparison is a case-sensitive exact match. The returned user
// has the password stripped.
func (s *UserService) Register(ctx context.Context, username, email, password string) (core.User, error) {
	if username == "" || email == "" || password == "" {
		return core.User{}, core.ValidationError("All fields are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.Load(ctx)
	if err != nil {
		return core.User{}, fmt.Errorf("load users: %w", err)
	}

	for _, u := range users {
		if u.Email == email {
			return core.User{}, core.ErrDuplicateUser
		}
	}

	user := core.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Password:  password,
		CreatedAt: core.Timestamp(time.Now()),
	}

	users = append(users, user)
	if err := s.users.Save(ctx, users); err != nil {
		return core.User{}, fmt.Errorf("save users: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "email", user.Email)
	return user.WithoutPassword(), nil
}

// Login returns the user matching email and password exactly. Any
// mismatch fails the same way, so callers cannot probe whether an
// email is registered.
func (s *UserService) Login(ctx context.Context, email, password string) (core.User, error) {
	if email == "" || password == "" {
		return core.User{}, core.ValidationError("Email and password are required")
	}

	users, err := s.users.Load(ctx)
	if err != nil {
		return core.User{}, fmt.Errorf("load users: %w", err)
	}

	// Passwords are stored and compared verbatim.
	for _, u := range users {
		if u.Email == email && u.Password == password {
			slog.InfoContext(ctx, "User logged in", "user_id", u.ID)
			return u.WithoutPassword(), nil
		}
	}

	return core.User{}, core.ErrInvalidCredentials
}
