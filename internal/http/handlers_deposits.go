package http

import (
	"net/http"
)

func (s *Server) handleListDeposits(w http.ResponseWriter, r *http.Request) {
	deposits, err := s.store.ListDeposits(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"deposits": renderDeposits(deposits)})
}

func (s *Server) handleCreateDeposit(w http.ResponseWriter, r *http.Request) {
	var payload depositPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	deposit, err := payload.toCore()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.store.CreateDeposit(r.Context(), deposit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"deposit": renderDeposit(created)})
}

func (s *Server) handleUpdateDeposit(w http.ResponseWriter, r *http.Request) {
	var payload depositPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	deposit, err := payload.toCore()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	deposit.ID = r.PathValue("id")
	updated, err := s.store.UpdateDeposit(r.Context(), deposit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"deposit": renderDeposit(updated)})
}

func (s *Server) handleDeleteDeposit(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDeposit(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, nil)
}

// handleDepositInterest posts accrued interest: balance increment plus
// the correlated income transaction.
func (s *Server) handleDepositInterest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
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

	deposit, txn, err := s.ledger.PostDepositInterest(r.Context(), r.PathValue("id"), amount, s.now())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{
		"deposit":     renderDeposit(deposit),
		"transaction": renderTransaction(txn),
	})
}

// handleDepositClose retires a deposit; the caller supplies the final
// payout amount.
func (s *Server) handleDepositClose(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CloseAmount amountValue `json:"closeAmount"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	closeAmount, err := payload.CloseAmount.Money()
	if err != nil {
		respondError(w, http.StatusBadRequest, "closeAmount: "+err.Error())
		return
	}

	deposit, txn, err := s.ledger.CloseDeposit(r.Context(), r.PathValue("id"), closeAmount, s.now())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{
		"deposit":     renderDeposit(deposit),
		"transaction": renderTransaction(txn),
	})
}
