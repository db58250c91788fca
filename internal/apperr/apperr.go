package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures returned by the dispatch and HOS services
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindValidation   Kind = "validation"
	KindExternal     Kind = "external_service"
)

// Sentinels usable with errors.Is
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	ErrExternal     = errors.New("external service failed")
)

// Error is a classified, caller-facing failure
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindExternal {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInvalidState:
		return e.Kind == KindInvalidState
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrExternal:
		return e.Kind == KindExternal
	}
	return false
}

// NotFound reports a missing entity, e.g. NotFound("load", "L-9999")
func NotFound(entity, id string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

func InvalidState(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func External(message string, err error) error {
	return &Error{Kind: KindExternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or "" for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps an error to the status code handlers respond with
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindExternal:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
