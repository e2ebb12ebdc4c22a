package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
	KindHasDependents
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation_failed"
	case KindHasDependents:
		return "has_dependents"
	default:
		return "internal"
	}
}

// Error is the typed failure returned by services. Field names the offending
// input, the missing entity, or the blocking dependent depending on Kind.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "unauthenticated"}
	ErrForbidden       = &Error{Kind: KindForbidden, Message: "forbidden"}

	ErrMaxDepthExceeded = &Error{Kind: KindValidation, Field: "parentCategory", Message: "maximum category depth exceeded"}
	ErrHasChildren      = &Error{Kind: KindHasDependents, Field: "children", Message: "category has child categories"}
	ErrHasProducts      = &Error{Kind: KindHasDependents, Field: "products", Message: "category has products"}
	ErrDuplicateName    = &Error{Kind: KindConflict, Field: "name", Message: "category name or slug already exists"}
)

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Field: entity, Message: entity + " not found"}
}

func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func HasDependents(dependent, message string) *Error {
	return &Error{Kind: KindHasDependents, Field: dependent, Message: message}
}

// Internal wraps an unexpected failure, usually from the persistence layer.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict, KindHasDependents:
		return fiber.StatusConflict
	case KindValidation:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show callers. Identity failures never
// say why access was refused.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	switch e.Kind {
	case KindUnauthenticated, KindForbidden:
		return "access denied"
	case KindInternal:
		return "internal server error"
	default:
		return e.Message
	}
}
