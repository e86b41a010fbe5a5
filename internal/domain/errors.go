package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource, basket, job or descriptor.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest signals malformed input or an unsupported media/entity type.
	ErrBadRequest = errors.New("bad request")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnavailable signals that the store, object store or engine cannot be reached.
	ErrUnavailable = errors.New("unavailable")
	// ErrNotImplemented signals a reserved surface.
	ErrNotImplemented = errors.New("not implemented")
)

// Error attaches a client-facing description to a taxonomy kind.
// Anything that is not one of the kinds above is treated as internal.
type Error struct {
	Kind        error
	Description string
	Err         error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Description != "":
		return e.Description + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	case e.Description != "":
		return e.Description
	case e.Kind != nil:
		return e.Kind.Error()
	}
	return "internal error"
}

// kinds lists the taxonomy; anything else maps to an internal failure.
var kinds = []error{ErrNotFound, ErrBadRequest, ErrAlreadyExists, ErrUnavailable, ErrNotImplemented}

func hasKind(err error) bool {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
// An internal error hides a cause that carries a kind of its own; the
// cause then only shows up in the message.
func (e *Error) Unwrap() []error {
	if e.Kind == nil && e.Err != nil && hasKind(e.Err) {
		return nil
	}
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NotFound builds an ErrNotFound with a formatted description.
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Description: fmt.Sprintf(format, args...)}
}

// BadRequest builds an ErrBadRequest with a formatted description.
func BadRequest(format string, args ...any) error {
	return &Error{Kind: ErrBadRequest, Description: fmt.Sprintf(format, args...)}
}

// AlreadyExists builds an ErrAlreadyExists with a formatted description.
func AlreadyExists(format string, args ...any) error {
	return &Error{Kind: ErrAlreadyExists, Description: fmt.Sprintf(format, args...)}
}

// NotImplemented builds an ErrNotImplemented naming the reserved operation.
func NotImplemented(op string) error {
	return &Error{Kind: ErrNotImplemented, Description: op + " is not implemented"}
}

// Unavailable wraps a connection-level cause.
func Unavailable(desc string, err error) error {
	return &Error{Kind: ErrUnavailable, Description: desc, Err: err}
}

// Internal wraps a cause as an internal failure, keeping desc as the
// client-facing text. The kind of the cause, if any, does not survive.
func Internal(desc string, err error) error {
	return &Error{Description: desc, Err: err}
}

// Describe returns the client-facing description of err.
// Internal errors keep the underlying message attached.
func Describe(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Description != "" && de.Kind != nil {
		return de.Description
	}
	if de != nil {
		return de.Error()
	}
	return err.Error()
}
