package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
	"kopilka/internal/store"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// envelope is the response wrapper every endpoint uses. Extra keys are
// merged in next to success/error.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}

func respondOK(w http.ResponseWriter, extra envelope) {
	payload := envelope{"success": true}
	for k, v := range extra {
		payload[k] = v
	}
	writeJSON(w, http.StatusOK, payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{"success": false, "error": msg})
}

// respondDomainError maps domain errors onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrDepositClosed):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrPartialFailure):
		respondError(w, http.StatusInternalServerError, err.Error())
	case isValidationError(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrInvalidType,
		core.ErrInvalidFrequency,
		core.ErrInvalidStatus,
		core.ErrInvalidDueDay,
		core.ErrEmptyName,
		core.ErrEmptyCategory,
		core.ErrEmptyDescription,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	// Validate methods also return ad-hoc errors (length limits, date
	// ordering); those reach here wrapped from toCore or Validate and
	// are client faults as well.
	return false
}

func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer io.Copy(io.Discard, body)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
