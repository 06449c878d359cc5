package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// UpstreamError records an unexpected HTTP status from an upstream service.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Transient reports whether the status indicates a server-side condition
// that may clear on its own.
func (e *UpstreamError) Transient() bool {
	return IsTransientHTTPStatus(e.StatusCode)
}

// IsTransient returns true if err (or any error in its chain) signals an
// upstream outage rather than a definite answer: transient HTTP statuses,
// network timeouts, refused or reset connections and deadline expiry.
// Cancellation by the caller is not transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Transient()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED)
}

// IsTransientHTTPStatus returns true for 408, 429 and the 5xx gateway family.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
