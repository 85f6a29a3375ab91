package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  *Error
		want bool
	}{
		{Transient("flaky", nil), true},
		{InputInvalid("bad", nil), false},
		{NotFound("missing", nil), false},
		{EmbeddingFailed("down", nil), false},
		{GenerationFailed("down", nil), false},
		{PersistenceFailed("disk", nil), false},
	}
	for _, c := range cases {
		if got := c.err.Retryable(); got != c.want {
			t.Errorf("%s.Retryable() = %v, want %v", c.err.Kind, got, c.want)
		}
	}
}

func TestAsUnwrapsWrappedError(t *testing.T) {
	inner := InputInvalid("bad prompt", map[string]any{"field": "prompt"})
	wrapped := fmt.Errorf("handler: %w", inner)

	found, ok := As(wrapped)
	if !ok {
		t.Fatal("As() should find the wrapped *Error")
	}
	if found.Kind != KindInputInvalid {
		t.Errorf("Kind = %s, want %s", found.Kind, KindInputInvalid)
	}
}

func TestKindOfDefaultsToTransientForUnknownErrors(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindTransient {
		t.Errorf("KindOf(plain error) = %s, want %s", got, KindTransient)
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := EmbeddingFailed("embed call failed", cause)
	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap() should return the cause")
	}
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}
}
