// Package http exposes the transaction service as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/cache"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/config"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/engine"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/middleware/ratelimit"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/middleware/security"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/middleware/trace"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/services"
)

type Server struct {
	http.Server

	svc     *services.TransactionService
	auth    *Authenticator
	limiter *ratelimit.Limiter

	// Summaries are cheap to cache per owner and invalidated on every
	// mutation, so stale reads last at most one TTL.
	summaryCache *cache.LRUCache[engine.Summary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

func NewServer(cfg *config.Config, svc *services.TransactionService) (*Server, error) {
	tokens, err := cfg.ParseAuthTokens()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	s := &Server{
		svc:  svc,
		auth: NewAuthenticator(tokens),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
		summaryCache: cache.NewLRUCache[engine.Summary](256, cfg.SummaryCacheTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/transactions", s.auth.Middleware(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.auth.Middleware(s.limited(s.handleCreateTransaction)))
	mux.HandleFunc("PUT /api/transactions/{id}", s.auth.Middleware(s.limited(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.auth.Middleware(s.limited(s.handleDeleteTransaction)))
	mux.HandleFunc("DELETE /api/transactions", s.auth.Middleware(s.limited(s.handleDeleteAllTransactions)))
	mux.HandleFunc("GET /api/summary", s.auth.Middleware(s.handleSummary))
	mux.HandleFunc("GET /api/transactions/export", s.auth.Middleware(s.handleExport))

	tracer := trace.NewMiddleware(security.ClientIP)
	s.Server.Addr = ":" + cfg.Port
	s.Server.Handler = tracer.Middleware(security.Headers(mux))
	s.Server.ReadHeaderTimeout = 5 * time.Second

	return s, nil
}

// limited applies the per-client rate limit to mutating handlers.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(security.ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, apiResult{Message: "Rate limit exceeded. Please try again later."})
			return
		}
		next(w, r)
	}
}

// Shutdown stops the background cleanup goroutines and then the
// listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
