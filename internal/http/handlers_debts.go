package http

import (
	"net/http"
)

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.store.ListDebts(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"debts": renderDebts(debts)})
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var payload debtPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	debt, err := payload.toCore()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.store.CreateDebt(r.Context(), debt)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"debt": renderDebt(created)})
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	var payload debtPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	debt, err := payload.toCore()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	debt.ID = r.PathValue("id")
	updated, err := s.store.UpdateDebt(r.Context(), debt)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"debt": renderDebt(updated)})
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDebt(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, nil)
}

// handleDebtPayment runs the compound payment operation: balance
// decrement clamped at zero plus the correlated expense transaction.
func (s *Server) handleDebtPayment(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID     string      `json:"id"`
		Amount amountValue `json:"amount"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := payload.Amount.Money()
	if err != nil {
		respondError(w, http.StatusBadRequest, "amount: "+err.Error())
		return
	}

	debt, txn, err := s.ledger.MakeDebtPayment(r.Context(), payload.ID, amount, s.now())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{
		"debt":        renderDebt(debt),
		"transaction": renderTransaction(txn),
	})
}
