package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rakshita-04/smart-expense-tracker/internal/core"
	"github.com/Rakshita-04/smart-expense-tracker/internal/services"
	"github.com/Rakshita-04/smart-expense-tracker/internal/store/memory"
)

func newTestServer(t *testing.T, users []core.User, expenses []core.Expense) *Server {
	t.Helper()
	us := services.NewUserService(memory.Seed(users))
	es := services.NewExpenseService(memory.Seed(expenses), nil)
	srv := NewServer(":0", us, es)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := doJSON(t, srv, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, core.Categories, resp.Categories)
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := doJSON(t, srv, http.MethodPost, "/auth/register",
		`{"username":"mario","email":"mario@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var reg struct {
		User core.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reg))
	assert.Equal(t, "mario", reg.User.Username)
	assert.Empty(t, reg.User.Password)
	assert.NotEmpty(t, reg.User.ID)

	rr = doJSON(t, srv, http.MethodPost, "/auth/login",
		`{"email":"mario@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var login struct {
		User core.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.Empty(t, login.User.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	body := `{"username":"mario","email":"mario@example.com","password":"secret"}`
	rr := doJSON(t, srv, http.MethodPost, "/auth/register", body)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, srv, http.MethodPost, "/auth/register", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"User already exists"}`, rr.Body.String())
}

func TestRegisterMissingFields(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := doJSON(t, srv, http.MethodPost, "/auth/register",
		`{"username":"mario","email":"","password":"secret"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"All fields are required"}`, rr.Body.String())
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := newTestServer(t, []core.User{
		{ID: "u1", Username: "mario", Email: "mario@example.com", Password: "secret"},
	}, nil)

	rr := doJSON(t, srv, http.MethodPost, "/auth/login",
		`{"email":"mario@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rr.Body.String())

	rr = doJSON(t, srv, http.MethodPost, "/auth/login",
		`{"email":"nobody@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rr.Body.String())
}

func TestCreateAndListExpenses(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := doJSON(t, srv, http.MethodPost, "/expenses",
		`{"userId":"u1","title":"Groceries","amount":"3.50","category":"Food & Dining","date":"2025-06-01"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var created struct {
		Expense core.Expense `json:"expense"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, 3.5, created.Expense.Amount)
	assert.NotEmpty(t, created.Expense.ID)

	// Amount sent as a bare JSON number is accepted too.
	rr = doJSON(t, srv, http.MethodPost, "/expenses",
		`{"userId":"u1","title":"Taxi","amount":12,"category":"Transportation","date":"2025-06-02"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, srv, http.MethodGet, "/expenses?userId=u1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var list struct {
		Expenses []core.Expense `json:"expenses"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Expenses, 2)
	assert.Equal(t, "Groceries", list.Expenses[0].Title)
	assert.Equal(t, float64(12), list.Expenses[1].Amount)
}

func TestListRequiresUserID(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := doJSON(t, srv, http.MethodGet, "/expenses", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"User ID is required"}`, rr.Body.String())
}

func TestListEmptyIsArray(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := doJSON(t, srv, http.MethodGet, "/expenses?userId=u1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"expenses":[]}`, rr.Body.String())
}

func TestListWithFilters(t *testing.T) {
	srv := newTestServer(t, nil, []core.Expense{
		{ID: "e1", UserID: "u1", Title: "Lunch", Amount: 10, Category: "Food & Dining", Date: "2025-05-10"},
		{ID: "e2", UserID: "u1", Title: "Bus", Amount: 2, Category: "Transportation", Date: "2025-05-20"},
		{ID: "e3", UserID: "u1", Title: "Dinner", Amount: 25, Category: "Food & Dining", Date: "2025-06-05"},
		{ID: "e4", UserID: "u2", Title: "Other user", Amount: 99, Category: "Food & Dining", Date: "2025-05-15"},
	})

	rr := doJSON(t, srv, http.MethodGet,
		"/expenses?userId=u1&category=Food+%26+Dining&startDate=2025-05-01&endDate=2025-05-31", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var list struct {
		Expenses []core.Expense `json:"expenses"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Expenses, 1)
	assert.Equal(t, "e1", list.Expenses[0].ID)
}

func TestCreateRejectsBadAmount(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	for _, amount := range []string{`"abc"`, `"NaN"`, `"Infinity"`} {
		rr := doJSON(t, srv, http.MethodPost, "/expenses",
			`{"userId":"u1","title":"x","amount":`+amount+`,"category":"Other","date":"2025-06-01"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code, amount)
	}
}

func TestUpdateExpense(t *testing.T) {
	srv := newTestServer(t, nil, []core.Expense{
		{ID: "e1", UserID: "u1", Title: "Lunch", Amount: 10, Category: "Food & Dining", Date: "2025-05-10", CreatedAt: "2025-05-10T12:00:00Z"},
	})

	rr := doJSON(t, srv, http.MethodPut, "/expenses",
		`{"id":"e1","userId":"u1","title":"Team lunch","amount":"18","category":"Food & Dining","date":"2025-05-10"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var updated struct {
		Expense core.Expense `json:"expense"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "Team lunch", updated.Expense.Title)
	assert.Equal(t, float64(18), updated.Expense.Amount)
	assert.Equal(t, "2025-05-10T12:00:00Z", updated.Expense.CreatedAt)
	assert.NotEmpty(t, updated.Expense.UpdatedAt)
}

func TestUpdateWrongOwnerIsNotFound(t *testing.T) {
	srv := newTestServer(t, nil, []core.Expense{
		{ID: "e1", UserID: "u1", Title: "Lunch", Amount: 10, Category: "Food & Dining", Date: "2025-05-10"},
	})

	rr := doJSON(t, srv, http.MethodPut, "/expenses",
		`{"id":"e1","userId":"u2","title":"Hijack","amount":"1","category":"Other","date":"2025-05-10"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Expense not found"}`, rr.Body.String())
}

func TestDeleteExpense(t *testing.T) {
	srv := newTestServer(t, nil, []core.Expense{
		{ID: "e1", UserID: "u1", Title: "Lunch", Amount: 10, Category: "Food & Dining", Date: "2025-05-10"},
	})

	rr := doJSON(t, srv, http.MethodDelete, "/expenses?id=e1&userId=u1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Expense deleted successfully"}`, rr.Body.String())

	rr = doJSON(t, srv, http.MethodDelete, "/expenses?id=e1&userId=u1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteRequiresParams(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := doJSON(t, srv, http.MethodDelete, "/expenses?id=e1", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"ID and User ID are required"}`, rr.Body.String())
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t, nil, []core.Expense{
		{ID: "e1", UserID: "u1", Title: "Lunch", Amount: 10.5, Category: "Food & Dining", Date: "2025-05-10"},
		{ID: "e2", UserID: "u1", Title: "Bus", Amount: 2, Category: "Transportation", Date: "2025-05-20"},
	})

	rr := doJSON(t, srv, http.MethodGet, "/expenses/export?userId=u1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=expenses.csv", rr.Header().Get("Content-Disposition"))

	want := "Title,Amount,Category,Date\n" +
		`"Lunch",10.5,"Food & Dining","2025-05-10"` + "\n" +
		`"Bus",2,"Transportation","2025-05-20"`
	assert.Equal(t, want, rr.Body.String())
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, []core.Expense{
		{ID: "e1", UserID: "u1", Title: "Lunch", Amount: 10, Category: "Food & Dining", Date: "2025-05-10"},
		{ID: "e2", UserID: "u1", Title: "Bus", Amount: 2, Category: "Transportation", Date: "2025-05-20"},
	})

	rr := doJSON(t, srv, http.MethodGet, "/expenses/summary?userId=u1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Summary core.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(12), resp.Summary.Total)
	assert.Equal(t, 2, resp.Summary.Count)

	// Second call is served from the cache and stays consistent.
	rr = doJSON(t, srv, http.MethodGet, "/expenses/summary?userId=u1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, srv.summaryCache.Size())
}

func TestSummaryCacheInvalidatedOnCreate(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := doJSON(t, srv, http.MethodGet, "/expenses/summary?userId=u1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, srv.summaryCache.Size())

	rr = doJSON(t, srv, http.MethodPost, "/expenses",
		`{"userId":"u1","title":"Taxi","amount":"12","category":"Transportation","date":"2025-06-02"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, srv, http.MethodGet, "/expenses/summary?userId=u1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Summary core.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(12), resp.Summary.Total)
}

func TestInvalidJSONBody(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := doJSON(t, srv, http.MethodPost, "/expenses", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRateLimitMutatingRequests(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	// All requests share httptest's default peer address, so the
	// 61st mutating request within the window is rejected.
	for i := 0; i < 60; i++ {
		rr := doJSON(t, srv, http.MethodPost, "/auth/login", `{}`)
		require.NotEqual(t, http.StatusTooManyRequests, rr.Code, "request %d", i+1)
	}

	rr := doJSON(t, srv, http.MethodPost, "/auth/login", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	// Reads are not rate limited.
	rr = doJSON(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimitIgnoresSpoofedForwardingHeaders(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	// The peer is not a trusted proxy, so rotating forwarding
	// headers must not give it a fresh rate-limit key per request.
	for i := 0; i < 60; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		require.NotEqual(t, http.StatusTooManyRequests, rr.Code, "request %d", i+1)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.200")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{name: "direct peer no headers", remoteAddr: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "untrusted peer spoofed xff", remoteAddr: "192.0.2.1:1234", xff: "203.0.113.7", want: "192.0.2.1"},
		{name: "untrusted peer spoofed xri", remoteAddr: "192.0.2.1:1234", xri: "203.0.113.7", want: "192.0.2.1"},
		{name: "trusted proxy xff honored", remoteAddr: "127.0.0.1:9999", xff: "203.0.113.7", want: "203.0.113.7"},
		{name: "trusted proxy xff chain uses first hop", remoteAddr: "10.0.0.5:9999", xff: "203.0.113.7, 10.0.0.5", want: "203.0.113.7"},
		{name: "trusted proxy xri honored", remoteAddr: "127.0.0.1:9999", xri: "203.0.113.7", want: "203.0.113.7"},
		{name: "trusted proxy invalid xff falls back", remoteAddr: "127.0.0.1:9999", xff: "not-an-ip", want: "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, extractClientIP(req))
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := doJSON(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}
