// Package apperr classifies request failures so the HTTP layer can pick a
// status without knowing which collaborator failed.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindValidation
	KindProvider
	KindMirrorWrite
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindProvider:
		return "provider"
	case KindMirrorWrite:
		return "mirror_write"
	default:
		return "internal"
	}
}

// Error carries a Kind, the operation that failed and, for everything except
// validation and authorization, the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil && e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode maps the kind onto the fixed set of HTTP error statuses.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func Unauthorized() error {
	return &Error{Kind: KindUnauthorized, Msg: "Unauthorized"}
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func Provider(op string, err error) error {
	return &Error{Kind: KindProvider, Op: op, Err: err}
}

// MirrorWrite reports a metadata write that failed after the provider call
// already succeeded. The provider-side change is not rolled back.
func MirrorWrite(op string, err error) error {
	return &Error{Kind: KindMirrorWrite, Op: op, Err: errors.Wrap(err, "mirror write failed")}
}

func Internal(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// KindOf returns KindInternal for errors that were never classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode()
	}
	return http.StatusInternalServerError
}
