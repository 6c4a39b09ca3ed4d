package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/security"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

// Server is the JSON API front end. It owns the route table, the
// middleware chain, and a short-lived cache for dashboard summaries.
type Server struct {
	http.Server

	storage  *storage.Repository
	expenses *services.ExpenseService

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector

	dashboardCache *cache.LRUCache[DashboardSummary]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// Options tunes server behavior beyond its collaborators.
type Options struct {
	Addr      string
	CacheSize int
	CacheTTL  time.Duration
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, repo *storage.Repository, expenses *services.ExpenseService) *Server {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		storage:        repo,
		expenses:       expenses,
		rateLimiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:       security.NewDetector(),
		dashboardCache: cache.NewLRUCache[DashboardSummary](opts.CacheSize, opts.CacheTTL),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	chain := newMiddlewareChain(s.rateLimiter, s.detector)
	api := func(h http.HandlerFunc) http.Handler {
		return chain(withIdentity(h))
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.Handle("POST /api/budgets", api(s.handleCreateBudget))
	mux.Handle("GET /api/budgets", api(s.handleListBudgets))
	mux.Handle("GET /api/budgets/summary", api(s.handleBudgetSummary))
	mux.Handle("GET /api/budgets/{id}", api(s.handleGetBudget))
	mux.Handle("PATCH /api/budgets/{id}", api(s.handleUpdateBudget))
	mux.Handle("DELETE /api/budgets/{id}", api(s.handleDeleteBudget))

	mux.Handle("POST /api/expenses", api(s.handleCreateExpense))
	mux.Handle("GET /api/expenses", api(s.handleListExpenses))
	mux.Handle("GET /api/expenses/summary", api(s.handleExpenseSummary))
	mux.Handle("GET /api/expenses/{id}", api(s.handleGetExpense))
	mux.Handle("PATCH /api/expenses/{id}", api(s.handleUpdateExpense))
	mux.Handle("DELETE /api/expenses/{id}", api(s.handleDeleteExpense))

	mux.Handle("POST /api/subscriptions", api(s.handleCreateSubscription))
	mux.Handle("GET /api/subscriptions", api(s.handleListSubscriptions))
	mux.Handle("GET /api/subscriptions/summary", api(s.handleSubscriptionSummary))
	mux.Handle("GET /api/subscriptions/{id}", api(s.handleGetSubscription))
	mux.Handle("PATCH /api/subscriptions/{id}", api(s.handleUpdateSubscription))
	mux.Handle("DELETE /api/subscriptions/{id}", api(s.handleDeleteSubscription))

	mux.Handle("POST /api/incomes", api(s.handleCreateIncome))
	mux.Handle("GET /api/incomes", api(s.handleListIncomes))
	mux.Handle("GET /api/incomes/{id}", api(s.handleGetIncome))
	mux.Handle("PATCH /api/incomes/{id}", api(s.handleUpdateIncome))
	mux.Handle("DELETE /api/incomes/{id}", api(s.handleDeleteIncome))

	mux.Handle("POST /api/savings/expenses", api(s.handleCreateSavingsExpense))
	mux.Handle("GET /api/savings/expenses", api(s.handleListSavingsExpenses))
	mux.Handle("PATCH /api/savings/expenses/{id}", api(s.handleUpdateSavingsExpense))
	mux.Handle("DELETE /api/savings/expenses/{id}", api(s.handleDeleteSavingsExpense))
	mux.Handle("GET /api/savings/budget", api(s.handleGetSavingsBudget))
	mux.Handle("PUT /api/savings/budget", api(s.handleUpsertSavingsBudget))

	mux.Handle("POST /api/analytics", api(s.handleUpsertAnalytics))
	mux.Handle("GET /api/analytics", api(s.handleListAnalytics))
	mux.Handle("GET /api/analytics/summary", api(s.handleAnalyticsSummary))
	mux.Handle("DELETE /api/analytics/{id}", api(s.handleDeleteAnalytics))

	mux.Handle("GET /api/dashboard", api(s.handleDashboard))
	mux.Handle("GET /api/insights", api(s.handleInsights))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateDashboard drops every cached dashboard view for the user.
// Called after any write that changes what a period summary would show.
func (s *Server) invalidateDashboard(userID string) {
	s.dashboardCache.DeletePrefix(userID + "|")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
