// Package http exposes the expense tracker's REST surface: auth,
// expense CRUD with filtering, aggregation, and CSV export.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rakshita-04/smart-expense-tracker/internal/cache"
	"github.com/Rakshita-04/smart-expense-tracker/internal/core"
	"github.com/Rakshita-04/smart-expense-tracker/internal/services"
)

type Server struct {
	http.Server

	users    *services.UserService
	expenses *services.ExpenseService

	rateLimiter *rateLimiter

	// Unfiltered summaries keyed by userId, invalidated on mutation.
	summaryCache *cache.LRUCache[core.Summary]

	stopJanitor  chan struct{}
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a
// ready-to-run server.
func NewServer(addr string, users *services.UserService, expenses *services.ExpenseService) *Server {
	s := &Server{
		users:        users,
		expenses:     expenses,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRU[core.Summary](500, 5*time.Minute),
		stopJanitor:  make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(s.withRequestLogging)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady)
	r.Get("/categories", handleCategories)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", s.handleListExpenses)
		r.Post("/", s.handleCreateExpense)
		r.Put("/", s.handleUpdateExpense)
		r.Delete("/", s.handleDeleteExpense)
		r.Get("/export", s.handleExportExpenses)
		r.Get("/summary", s.handleSummary)
	})

	s.Server = http.Server{Addr: addr, Handler: r}

	go s.runJanitor()

	return s
}

// runJanitor periodically drops expired summary cache entries.
func (s *Server) runJanitor() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.summaryCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "summary_entries_removed", cleaned)
			}
		case <-s.stopJanitor:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopJanitor)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) invalidateSummary(userID string) {
	s.summaryCache.Delete(userID)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
