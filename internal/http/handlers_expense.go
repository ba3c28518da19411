package http

import (
	"encoding/json"
	"net/http"

	"github.com/Rakshita-04/smart-expense-tracker/internal/core"
)

// flexString decodes a JSON value that clients send either as a string
// or as a bare number, preserving the literal text for validation.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(data)
	return nil
}

type expenseRequest struct {
	ID       string     `json:"id"`
	UserID   string     `json:"userId"`
	Title    string     `json:"title"`
	Amount   flexString `json:"amount"`
	Category string     `json:"category"`
	Date     string     `json:"date"`
}

type expenseResponse struct {
	Expense core.Expense `json:"expense"`
}

type expenseListResponse struct {
	Expenses []core.Expense `json:"expenses"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type summaryResponse struct {
	Summary core.Summary `json:"summary"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

// handleCategories serves the suggested category list for clients.
func handleCategories(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, categoriesResponse{Categories: core.Categories})
}

func filterFromQuery(r *http.Request) core.Filter {
	q := r.URL.Query()
	return core.Filter{
		Category:  q.Get("category"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	expenses, err := s.expenses.List(r.Context(), userID, filterFromQuery(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, expenseListResponse{Expenses: expenses})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	expense, err := s.expenses.Create(r.Context(), req.UserID, req.Title, string(req.Amount), req.Category, req.Date)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.invalidateSummary(req.UserID)
	respondWithJSON(w, http.StatusOK, expenseResponse{Expense: expense})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	expense, err := s.expenses.Update(r.Context(), req.ID, req.UserID, req.Title, string(req.Amount), req.Category, req.Date)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.invalidateSummary(req.UserID)
	respondWithJSON(w, http.StatusOK, expenseResponse{Expense: expense})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("id")
	userID := q.Get("userId")

	if err := s.expenses.Delete(r.Context(), id, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.invalidateSummary(userID)
	respondWithJSON(w, http.StatusOK, messageResponse{Message: "Expense deleted successfully"})
}

func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	csv, err := s.expenses.ExportCSV(r.Context(), userID, filterFromQuery(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=expenses.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}

// handleSummary serves aggregated totals. Unfiltered summaries are
// cached per user and invalidated on every mutation.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	f := filterFromQuery(r)

	if f.IsZero() && userID != "" {
		if cached, found := s.summaryCache.Get(userID); found {
			respondWithJSON(w, http.StatusOK, summaryResponse{Summary: cached})
			return
		}
	}

	summary, err := s.expenses.Summary(r.Context(), userID, f)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if f.IsZero() && userID != "" {
		s.summaryCache.Set(userID, summary)
	}
	respondWithJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}
