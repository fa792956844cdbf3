package backend

import (
	"fmt"

	inErrors "github.com/Alturino/storefront/internal/common/errors"
)

// Error is a rejection reported by the backend, either through the HTTP
// status or through the envelope status.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend responded status=%d message=%s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return inErrors.ErrBackendRejected
}

func (e *Error) Temporary() bool {
	return e.StatusCode >= 500
}
