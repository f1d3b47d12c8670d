package service

import (
	"errors"
	"net/http"
)

// Kind classifies a service failure
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindAuth
	KindNotFound
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Error is the only error type returned by service operations. Message is safe
// to show to clients; Err keeps the internal cause for server-side logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a response status
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func unauthorized(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}
func notFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// dependency hides err behind a generic message
func dependency(err error) *Error {
	return &Error{Kind: KindDependency, Message: "Internal Server Error", Err: err}
}

// KindOf returns the kind of err, or KindDependency for foreign errors
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindDependency
}
