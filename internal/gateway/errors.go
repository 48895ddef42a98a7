package gateway

import (
	"errors"
	"fmt"
)

// Kind partitions every failure the data-access stack can produce.
// Read paths collapse all kinds except Validation into an empty result;
// write paths surface them to the user verbatim.
type Kind string

const (
	KindTransport  Kind = "transport"
	KindOversize   Kind = "oversize"
	KindDecode     Kind = "decode"
	KindEnvelope   Kind = "envelope"
	KindValidation Kind = "validation"
)

type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func NewError(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

func WrapError(kind Kind, status int, message string, cause error) *Error {
	return &Error{Kind: kind, Status: status, Message: message, cause: cause}
}

// IsKind reports whether err is a gateway error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind == kind
	}
	return false
}

// UserMessage extracts the backend-supplied message when one exists,
// falling back to a generic line. Write-path callers show this verbatim.
func UserMessage(err error, fallback string) string {
	var ge *Error
	if errors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	return fallback
}
