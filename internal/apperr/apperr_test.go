package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := NotFound("employee", "e1")
	wrapped := fmt.Errorf("score gap: %w", base)

	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("KindOf = %q, want %q", got, KindNotFound)
	}
	if !Is(wrapped, KindNotFound) {
		t.Error("expected Is(wrapped, KindNotFound)")
	}
	if Is(nil, KindNotFound) {
		t.Error("nil must not match any kind")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Errorf("KindOf(plain) = %q, want internal", got)
	}
}

func TestUnavailableReason(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("generate: %w", Unavailable(ReasonCallFailed, "content oracle call failed", cause))

	if ReasonOf(err) != ReasonCallFailed {
		t.Errorf("ReasonOf = %q", ReasonOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
	want := "generate: content oracle call failed (call_failed): connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestMalformedIsValidation(t *testing.T) {
	err := Malformed("question payload", errors.New("missing options"))
	if KindOf(err) != KindValidation {
		t.Errorf("kind = %q", KindOf(err))
	}
	if ReasonOf(err) != ReasonMalformedResponse {
		t.Errorf("reason = %q", ReasonOf(err))
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindAuthorization, http.StatusForbidden},
		{KindDependencyUnavailable, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.kind); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
