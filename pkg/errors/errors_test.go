package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppErrorMessageFormat(t *testing.T) {
	base := errors.New("connection refused")
	err := Internal("Failed to load appointments", base)

	want := "INTERNAL_ERROR: Failed to load appointments (caused by: connection refused)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, base) {
		t.Error("expected wrapped error to unwrap to the cause")
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"not found", NotFound("Appointment"), http.StatusNotFound},
		{"invalid input", InvalidInput("bad date"), http.StatusBadRequest},
		{"validation", Validation("invalid", nil), http.StatusUnprocessableEntity},
		{"conflict", Conflict("slot taken"), http.StatusConflict},
		{"internal", Internal("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.StatusCode(); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWithDetails(t *testing.T) {
	err := Conflict("slot taken").WithDetails(map[string]any{"reason": "CONFLICT"})
	if err.Details["reason"] != "CONFLICT" {
		t.Errorf("details not attached: %+v", err.Details)
	}
}

func TestAsAppError(t *testing.T) {
	app := NotFound("Business")
	if got := AsAppError(app); got != app {
		t.Error("AsAppError must return the same AppError unchanged")
	}

	plain := errors.New("oops")
	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("wrapped plain error code = %s, want %s", got.Code, CodeInternal)
	}
	if !IsAppError(got) {
		t.Error("expected an AppError")
	}
	if IsAppError(plain) {
		t.Error("plain error must not be an AppError")
	}
}
