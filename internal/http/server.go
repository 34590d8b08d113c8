// Package http is the JSON API surface: entity CRUD, aggregated
// metrics, compound ledger operations and the authenticated external
// feed.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"kopilka/internal/amqp"
	"kopilka/internal/ledger"
	applog "kopilka/internal/log"
	"kopilka/internal/store"
)

// TransactionPublisher hands an external-feed transaction to the ingest
// queue. *amqp.Client satisfies it; a nil publisher means the feed is
// stored directly.
type TransactionPublisher interface {
	PublishTransaction(ctx context.Context, msg *amqp.TransactionMessage) error
}

type Server struct {
	http.Server

	store     store.Store
	ledger    *ledger.Service
	apiKey    string
	publisher TransactionPublisher

	// now is swappable in tests so metric and mutation reference times
	// are deterministic.
	now func() time.Time

	shutdownOnce sync.Once
}

func NewServer(addr string, st store.Store, svc *ledger.Service, apiKey string, pub TransactionPublisher, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
		store:     st,
		ledger:    svc,
		apiKey:    apiKey,
		publisher: pub,
		now:       time.Now,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/recurring", s.handleListRecurring)
	mux.HandleFunc("POST /api/recurring", s.handleCreateRecurring)
	mux.HandleFunc("PUT /api/recurring/{id}", s.handleUpdateRecurring)
	mux.HandleFunc("DELETE /api/recurring/{id}", s.handleDeleteRecurring)

	mux.HandleFunc("GET /api/debts", s.handleListDebts)
	mux.HandleFunc("POST /api/debts", s.handleCreateDebt)
	mux.HandleFunc("PUT /api/debts/{id}", s.handleUpdateDebt)
	mux.HandleFunc("DELETE /api/debts/{id}", s.handleDeleteDebt)
	mux.HandleFunc("POST /api/debts/payment", s.handleDebtPayment)

	mux.HandleFunc("GET /api/deposits", s.handleListDeposits)
	mux.HandleFunc("POST /api/deposits", s.handleCreateDeposit)
	mux.HandleFunc("PUT /api/deposits/{id}", s.handleUpdateDeposit)
	mux.HandleFunc("DELETE /api/deposits/{id}", s.handleDeleteDeposit)
	mux.HandleFunc("POST /api/deposits/{id}/interest", s.handleDepositInterest)
	mux.HandleFunc("POST /api/deposits/{id}/close", s.handleDepositClose)

	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("POST /api/external/transaction", s.withAPIKey(s.handleExternalTransaction))
	mux.HandleFunc("POST /api/demo/init", s.handleDemoInit)

	if logger != nil {
		s.Handler = applog.Middleware(logger)(mux)
	} else {
		s.Handler = mux
	}

	return s
}

// withAPIKey guards the external feed with the x-api-key header.
func (s *Server) withAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.Header.Get("x-api-key") != s.apiKey {
			respondError(w, http.StatusUnauthorized, "invalid API key")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Touch the store with a cheap read so a broken backend flips
	// readiness.
	if _, err := s.store.ListTransactions(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"status": "ready"})
}

// Shutdown gracefully stops the HTTP server, at most once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}
