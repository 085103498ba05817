package reliability

import (
	"context"
	"errors"
	"net/http"

	"github.com/fairwaylabs/golfpro/internal/llm"
)

// Outcome maps a model-call error to a stable metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, llm.ErrTimeout):
		return "timeout"
	case errors.Is(err, llm.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, llm.ErrInvalidOutput):
		return "invalid_output"
	case errors.Is(err, llm.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

// HTTPStatus maps a failed coaching turn to the status code the API returns.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, llm.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, llm.ErrTimeout),
		errors.Is(err, llm.ErrUnavailable),
		errors.Is(err, llm.ErrInvalidOutput):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether a failed model call could succeed if reissued.
// Invalid output is not retryable: the upstream answered, just badly.
func IsRetryable(err error) bool {
	return errors.Is(err, llm.ErrRateLimited) ||
		errors.Is(err, llm.ErrTimeout) ||
		errors.Is(err, llm.ErrUnavailable)
}
