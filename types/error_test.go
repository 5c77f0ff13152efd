package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrAggregationFailed, "worker failed").
		WithCause(root).
		WithHTTPStatus(500).
		WithRetryable(false)

	if GetErrorCode(err) != ErrAggregationFailed {
		t.Fatalf("expected code %s, got %s", ErrAggregationFailed, GetErrorCode(err))
	}
	if IsRetryable(err) {
		t.Fatalf("expected non-retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got != "[AGGREGATION_FAILED] worker failed: root" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestError_WrappedLookup(t *testing.T) {
	t.Parallel()

	inner := NewTimeoutError("job timed out", errors.New("deadline"))
	wrapped := fmt.Errorf("run: %w", inner)

	if !IsErrorCode(wrapped, ErrTimeout) {
		t.Fatalf("expected TIMEOUT in chain")
	}
	if !IsRetryable(wrapped) {
		t.Fatalf("timeouts are retryable")
	}
	e, ok := AsError(wrapped)
	if !ok || e.HTTPStatus != 500 {
		t.Fatalf("expected 500 error, got %+v", e)
	}
	if GetErrorCode(errors.New("plain")) != "" {
		t.Fatalf("plain errors carry no code")
	}
}

func TestError_Constructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    *Error
		code   ErrorCode
		status int
	}{
		{"invalid request", NewInvalidRequestError("bad"), ErrInvalidRequest, 400},
		{"aggregation", NewAggregationError("boom", nil), ErrAggregationFailed, 500},
		{"timeout", NewTimeoutError("slow", nil), ErrTimeout, 500},
		{"canceled", NewCanceledError("gone", nil), ErrCanceled, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code || tt.err.HTTPStatus != tt.status {
				t.Fatalf("got %s/%d, want %s/%d", tt.err.Code, tt.err.HTTPStatus, tt.code, tt.status)
			}
		})
	}
}
