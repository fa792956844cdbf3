package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth       = errors.New("missing authorization")
	ErrEmptySubject    = errors.New("missing subject")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrForbidden       = errors.New("admin role required")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidSession  = errors.New("invalid cart session")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrBackendRejected = errors.New("backend rejected request")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
