package receipts

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("receipt not found")
	// ErrInvalidReceipt is returned by Service.Get when the backend record
	// fails validation. The wrapped *core.Rejection carries the reason.
	ErrInvalidReceipt = errors.New("invalid receipt")
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Temporary reports whether the failure is worth retrying later.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
