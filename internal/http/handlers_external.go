package http

import (
	"log/slog"
	"net/http"

	"kopilka/internal/amqp"
	"kopilka/internal/core"
)

// handleExternalTransaction accepts the lenient payload external
// producers send: only value is required, category and direction
// default, the date is always today.
func (s *Server) handleExternalTransaction(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Value       amountValue `json:"value"`
		Cat         string      `json:"cat"`
		Description string      `json:"description"`
		IsIncome    bool        `json:"isIncome"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Value == "" {
		respondError(w, http.StatusBadRequest, "value field is required")
		return
	}
	amount, err := payload.Value.Money()
	if err != nil {
		respondError(w, http.StatusBadRequest, "value: "+err.Error())
		return
	}

	category := sanitizeInput(payload.Cat)
	if category == "" {
		category = core.CategoryOther
	}
	description := sanitizeInput(payload.Description)
	if description == "" {
		description = "Внешняя транзакция: " + category
	}
	flowType := core.Expense
	if payload.IsIncome {
		flowType = core.Income
	}

	txn := core.Transaction{
		Date:        core.DateOf(s.now()),
		Amount:      amount,
		Category:    category,
		Description: description,
		Type:        flowType,
	}

	// With a broker configured the feed goes through the ingest queue,
	// so the worker stays the single writer for external records. A
	// publish failure falls back to a direct write instead of failing
	// the request.
	if s.publisher != nil {
		msg := amqp.NewTransactionMessage(
			txn.Date.String(),
			txn.Amount.String(),
			txn.Category,
			txn.Description,
			string(txn.Type),
			"api",
		)
		err := s.publisher.PublishTransaction(r.Context(), msg)
		if err == nil {
			writeJSON(w, http.StatusAccepted, envelope{
				"success": true,
				"queued":  true,
			})
			return
		}
		slog.WarnContext(r.Context(), "Failed to publish external transaction, storing directly",
			"error", err,
			"category", txn.Category)
	}

	created, err := s.store.CreateTransaction(r.Context(), txn)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"transaction": renderTransaction(created)})
}

// handleDemoInit seeds the demo dataset, refusing when any transaction
// already exists.
func (s *Server) handleDemoInit(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.ListTransactions(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if len(existing) > 0 {
		writeJSON(w, http.StatusConflict, envelope{
			"success": false,
			"message": "database already contains data",
		})
		return
	}

	if err := seedDemoData(r.Context(), s.store, s.now()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"message": "demo data initialized"})
}
