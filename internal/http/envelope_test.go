package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bilancio/internal/core"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantField   string
	}{
		{
			name:       "validation error maps fields to 400",
			err:        core.NewValidationError("amount", "amount must be non-negative"),
			wantStatus: http.StatusBadRequest,
			wantField:  "amount",
		},
		{
			name:        "wrapped validation error still unwraps",
			err:         errorsWrap(core.NewValidationError("name", "name is required")),
			wantStatus:  http.StatusBadRequest,
			wantField:   "name",
		},
		{
			name:        "budget unavailable is a client error",
			err:         core.ErrBudgetUnavailable,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "budget does not exist or is not active",
		},
		{
			name:        "not found",
			err:         core.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "not found",
		},
		{
			name:        "unknown errors never leak internals",
			err:         errors.New("sqlite disk io failure at offset 4096"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
			respondError(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if env.Success {
				t.Error("error envelope must have success=false")
			}
			if tt.wantMessage != "" && env.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMessage)
			}
			if tt.wantField != "" {
				if _, ok := env.Errors[tt.wantField]; !ok {
					t.Errorf("errors = %v, want field %q", env.Errors, tt.wantField)
				}
			}
		})
	}
}

func errorsWrap(err error) error {
	return &wrappedErr{err}
}

type wrappedErr struct{ inner error }

func (w *wrappedErr) Error() string { return "storage: " + w.inner.Error() }
func (w *wrappedErr) Unwrap() error { return w.inner }

func TestRespondData(t *testing.T) {
	rec := httptest.NewRecorder()
	respondData(rec, http.StatusCreated, map[string]int{"id": 7})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("data envelope must have success=true")
	}
}
