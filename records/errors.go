package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies a repository failure.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindPermission Kind = "permission"
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
)

// Error is returned by every Repository operation that fails.
type Error struct {
	Kind       Kind
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Collection, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is not a repository error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// IsNotFound reports whether err is a not_found repository error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation reports whether err is a validation repository error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

func newError(op, collection string, err error) *Error {
	return &Error{Kind: classify(err), Op: op, Collection: collection, Err: err}
}

func invalid(op, collection, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Collection: collection, Err: fmt.Errorf(format, args...)}
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrInvalidField),
		errors.Is(err, gorm.ErrInvalidValue),
		errors.Is(err, gorm.ErrCheckConstraintViolated),
		errors.Is(err, gorm.ErrForeignKeyViolated):
		return KindValidation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	}

	// Drivers that are not wired into gorm's error translator only report
	// constraint failures through their message text.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "not null constraint"),
		strings.Contains(msg, "violates check constraint"),
		strings.Contains(msg, "check constraint failed"):
		return KindValidation
	case strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "readonly"),
		strings.Contains(msg, "read-only"),
		strings.Contains(msg, "row-level security"):
		return KindPermission
	}
	return KindNetwork
}
