package jobs

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced to clients.
type Kind string

const (
	KindIO         Kind = "io_error"
	KindModel      Kind = "model_error"
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation_error"
	KindInternal   Kind = "internal_error"
)

// Error is a kinded error. Op names the stage or operation that failed.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

var (
	// ErrNotFound matches any error of KindNotFound via errors.Is.
	ErrNotFound = &Error{Kind: KindNotFound, Message: "job not found"}
	// ErrFinalized is returned when updating a job that already completed or failed.
	ErrFinalized = errors.New("job already finalized")
)

// E builds a kinded error.
func E(kind Kind, op string, err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: kind, Op: op, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports kind equality so sentinel kinds match wrapped errors.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func notFound(id string) *Error {
	return &Error{Kind: KindNotFound, Op: "registry", Message: fmt.Sprintf("job %s not found", id)}
}
