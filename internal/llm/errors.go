package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for model calls. Callers branch with errors.Is.
var (
	// ErrUnavailable means the remote model could not be reached or answered
	// with a provider-side failure.
	ErrUnavailable = errors.New("llm: model unavailable")
	// ErrTimeout means the call exceeded its deadline.
	ErrTimeout = errors.New("llm: call timed out")
	// ErrRateLimited means the provider or the local limiter refused the call.
	ErrRateLimited = errors.New("llm: rate limited")
	// ErrInvalidOutput means the model answered but the output failed strict
	// parsing or validation.
	ErrInvalidOutput = errors.New("llm: invalid model output")
)

// ExtractError reports a failed structured-output parse. Extraction fails
// closed: the caller gets the stage and the offending output instead of a
// silently skipped update.
type ExtractError struct {
	Stage string // locate, decode, validate
	Raw   string
	Cause error
}

func (e *ExtractError) Error() string {
	raw := strings.TrimSpace(e.Raw)
	if len(raw) > 160 {
		raw = raw[:160] + "..."
	}
	return fmt.Sprintf("extract %s: %v (output %q)", e.Stage, e.Cause, raw)
}

func (e *ExtractError) Unwrap() error { return ErrInvalidOutput }

// wrapCallError maps transport failures onto the package sentinels. The
// provider surfaces failures as opaque error strings, so rate limiting is
// detected by message.
func wrapCallError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
