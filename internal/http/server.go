// Package http wires the JSON API: routing, auth middleware, rate
// limiting, analytics caching, and request logging.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"smartexpense/internal/auth"
	"smartexpense/internal/cache"
	"smartexpense/internal/config"
	"smartexpense/internal/core"
	"smartexpense/internal/ledger"
	"smartexpense/internal/log"
)

// Store is the full persistence surface the handlers need. The SQLite
// repository and the in-memory store both implement it.
type Store interface {
	ledger.Store

	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUser(ctx context.Context, id string) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	SetPro(ctx context.Context, userID string, isPro bool, expiresAt time.Time) (core.User, error)

	CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	UpdateAccount(ctx context.Context, userID string, a core.Account) (core.Account, error)
	DeactivateAccount(ctx context.Context, userID, accountID string) error

	RecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error)
	TransactionsByCategory(ctx context.Context, userID string, category core.Category) ([]core.Transaction, error)

	CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
	UserSubscriptions(ctx context.Context, userID string) ([]core.Subscription, error)
	UpdateSubscription(ctx context.Context, userID string, s core.Subscription) (core.Subscription, error)
	DeactivateSubscription(ctx context.Context, userID, subscriptionID string) error

	CreateBudgetGoal(ctx context.Context, b core.BudgetGoal) (core.BudgetGoal, error)
	UserBudgetGoals(ctx context.Context, userID string) ([]core.BudgetGoal, error)
	UpdateBudgetGoal(ctx context.Context, userID string, b core.BudgetGoal) (core.BudgetGoal, error)
	DeactivateBudgetGoal(ctx context.Context, userID, budgetGoalID string) error
}

// Non-Pro users may hold at most this many active accounts.
const freeAccountLimit = 3

type Server struct {
	http.Server

	store  Store
	ledger *ledger.Service
	tokens *auth.Tokens

	rateLimiter *rateLimiter

	// Analytics caches keyed "userID:month"; flushed per user on posting.
	expensesCache *cache.LRU[int64]
	categoryCache *cache.LRU[[]core.CategoryAmount]

	metrics metrics

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// metrics are the plain-text counters served on /metrics.
type metrics struct {
	requestsTotal      atomic.Int64
	transactionsPosted atomic.Int64
	cacheHits          atomic.Int64
	cacheMisses        atomic.Int64
	rateLimited        atomic.Int64
}

func NewServer(cfg *config.Config, store Store, ledgerSvc *ledger.Service, tokens *auth.Tokens) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    ":" + cfg.Port,
			Handler: mux,
		},
		store:            store,
		ledger:           ledgerSvc,
		tokens:           tokens,
		rateLimiter:      newRateLimiter(),
		expensesCache:    cache.NewLRU[int64](cfg.CacheEntries, cfg.CacheTTL),
		categoryCache:    cache.NewLRU[[]core.CategoryAmount](cfg.CacheEntries, cfg.CacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/auth/register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.withMiddleware(s.handleLogin))

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return s.withMiddleware(func(w http.ResponseWriter, r *http.Request) {
			tokens.Middleware(h).ServeHTTP(w, r)
		})
	}

	mux.HandleFunc("GET /api/auth/user", authed(s.handleCurrentUser))
	mux.HandleFunc("POST /api/upgrade-pro", authed(s.handleUpgradePro))

	mux.HandleFunc("GET /api/accounts", authed(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", authed(s.handleCreateAccount))
	mux.HandleFunc("PUT /api/accounts/{id}", authed(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", authed(s.handleDeleteAccount))

	mux.HandleFunc("GET /api/transactions", authed(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", authed(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/category/{category}", authed(s.handleTransactionsByCategory))

	mux.HandleFunc("GET /api/subscriptions", authed(s.handleListSubscriptions))
	mux.HandleFunc("POST /api/subscriptions", authed(s.handleCreateSubscription))
	mux.HandleFunc("PUT /api/subscriptions/{id}", authed(s.handleUpdateSubscription))
	mux.HandleFunc("DELETE /api/subscriptions/{id}", authed(s.handleDeleteSubscription))

	mux.HandleFunc("GET /api/budget-goals", authed(s.handleListBudgetGoals))
	mux.HandleFunc("POST /api/budget-goals", authed(s.handleCreateBudgetGoal))
	mux.HandleFunc("PUT /api/budget-goals/{id}", authed(s.handleUpdateBudgetGoal))
	mux.HandleFunc("DELETE /api/budget-goals/{id}", authed(s.handleDeleteBudgetGoal))

	mux.HandleFunc("GET /api/analytics/balance", authed(s.handleAnalyticsBalance))
	mux.HandleFunc("GET /api/analytics/monthly-expenses", authed(s.handleAnalyticsMonthlyExpenses))
	mux.HandleFunc("GET /api/analytics/category-spending", authed(s.handleAnalyticsCategorySpending))

	return s
}

// withMiddleware adds security headers, rate limiting, and request
// logging to a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metrics.requestsTotal.Add(1)

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP)

		// Rate limit mutations only.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.metrics.rateLimited.Add(1)
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expensesCleaned := s.expensesCache.CleanExpired()
			categoryCleaned := s.categoryCache.CleanExpired()
			if expensesCleaned > 0 || categoryCleaned > 0 {
				slog.Debug("Cache cleanup completed",
					"expenses_entries_removed", expensesCleaned,
					"category_entries_removed", categoryCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// invalidateAnalytics flushes a user's cached aggregations after a write.
func (s *Server) invalidateAnalytics(userID string) {
	s.expensesCache.DeletePrefix(userID + ":")
	s.categoryCache.DeletePrefix(userID + ":")
}

// Shutdown stops the HTTP server and the background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "smartexpense_requests_total %d\n", s.metrics.requestsTotal.Load())
	fmt.Fprintf(w, "smartexpense_transactions_posted_total %d\n", s.metrics.transactionsPosted.Load())
	fmt.Fprintf(w, "smartexpense_analytics_cache_hits_total %d\n", s.metrics.cacheHits.Load())
	fmt.Fprintf(w, "smartexpense_analytics_cache_misses_total %d\n", s.metrics.cacheMisses.Load())
	fmt.Fprintf(w, "smartexpense_rate_limited_total %d\n", s.metrics.rateLimited.Load())
}
