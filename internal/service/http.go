// Package service implements the JSON/HTTP API: authentication, group
// management, and the expense endpoints that drive the splitting engine.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mkowalczyk/divvy/internal/auth"
	"github.com/mkowalczyk/divvy/internal/expense"
	"github.com/mkowalczyk/divvy/internal/middleware"
	"github.com/mkowalczyk/divvy/internal/money"
	"github.com/mkowalczyk/divvy/internal/storage"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeDomainError maps domain errors onto HTTP statuses: lookups to 404,
// invariant conflicts to 409, everything the caller got wrong to 400, and
// the rest to 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, expense.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, expense.ErrDuplicateUser),
		errors.Is(err, expense.ErrUnregisteredSplit),
		errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, expense.ErrNegativeAmount),
		errors.Is(err, expense.ErrTextTooLong),
		errors.Is(err, expense.ErrInvalidDate),
		errors.Is(err, expense.ErrShareOutOfRange),
		errors.Is(err, expense.ErrUserRequired),
		errors.Is(err, expense.ErrUnknownSubForm),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, money.ErrNegative),
		errors.Is(err, money.ErrTooPrecise):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err)
	default:
		slog.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

// requireUser extracts the authenticated user ID or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errors.New("authentication required"))
		return "", false
	}
	return userID, true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
