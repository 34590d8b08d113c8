package http

import (
	"net/http"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListRecurringItems(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"recurringItems": renderRecurrings(items)})
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var payload recurringPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := payload.toCore()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.store.CreateRecurringItem(r.Context(), item)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"recurringItem": renderRecurring(created)})
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var payload recurringPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := payload.toCore()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item.ID = r.PathValue("id")
	updated, err := s.store.UpdateRecurringItem(r.Context(), item)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, envelope{"recurringItem": renderRecurring(updated)})
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRecurringItem(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, nil)
}
