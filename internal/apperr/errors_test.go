package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("duplicate"), http.StatusBadRequest},
		{InvalidState("already completed"), http.StatusBadRequest},
		{BadRequest("bad payload"), http.StatusBadRequest},
		{Unauthenticated(""), http.StatusUnauthorized},
		{Internal("", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.status {
			t.Errorf("%s: expected %d, got %d", tc.err.Code, tc.status, got)
		}
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Fatal("From(nil) should be nil")
	}

	orig := Conflict("duplicate email")
	wrapped := fmt.Errorf("sign up: %w", orig)
	if got := From(wrapped); got.Code != CodeConflict {
		t.Fatalf("expected conflict through wrapping, got %s", got.Code)
	}

	plain := errors.New("connection refused")
	if got := From(plain); got.Code != CodeInternal {
		t.Fatalf("expected internal for plain error, got %s", got.Code)
	}
	if !errors.Is(From(plain), plain) {
		t.Fatal("internal error should preserve the cause")
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("complete: %w", InvalidState("empty order"))
	if !IsCode(err, CodeInvalidState) {
		t.Fatal("expected invalid_state")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatal("unexpected not_found")
	}
	if IsCode(errors.New("plain"), CodeInternal) {
		t.Fatal("plain error carries no code")
	}
}
