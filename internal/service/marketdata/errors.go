package marketdata

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSymbolNotFound marks a symbol the upstream does not know, typically
// delisted or mistyped. Never retried.
var ErrSymbolNotFound = errors.New("marketdata: symbol not found")

// StatusError carries a non-2xx upstream status so callers can separate
// transient failures from permanent ones.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("marketdata: upstream status %d", e.Status)
	}
	return fmt.Sprintf("marketdata: upstream status %d: %s", e.Status, e.Body)
}

// StatusOf extracts the upstream HTTP status from an error chain, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	if errors.Is(err, ErrSymbolNotFound) {
		return http.StatusNotFound
	}
	return 0
}

// IsPermanent reports whether the error should never be retried.
func IsPermanent(err error) bool {
	if errors.Is(err, ErrSymbolNotFound) {
		return true
	}
	s := StatusOf(err)
	return s == http.StatusNotFound || s == http.StatusBadRequest || s == http.StatusUnauthorized
}

// IsThrottle reports whether the upstream rejected the call for rate.
func IsThrottle(err error) bool {
	return StatusOf(err) == http.StatusTooManyRequests
}
