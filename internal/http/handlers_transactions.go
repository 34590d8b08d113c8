package http

import (
	"net/http"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.store.ListTransactions(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"transactions": renderTransactions(txns)})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	txn, err := payload.toCore()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.store.CreateTransaction(r.Context(), txn)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"transaction": renderTransaction(created)})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	txn, err := payload.toCore()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	txn.ID = r.PathValue("id")
	updated, err := s.store.UpdateTransaction(r.Context(), txn)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"transaction": renderTransaction(updated)})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, nil)
}
