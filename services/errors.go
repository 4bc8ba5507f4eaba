package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies a rejected domain operation.
type ErrorKind int

const (
	// KindValidation: malformed or conflicting input (duplicate username,
	// non-positive amount, bad date ordering).
	KindValidation ErrorKind = iota
	// KindInvalidState: entity already in a terminal state.
	KindInvalidState
	// KindInvalidInput: structurally invalid reference (winner not a
	// participant, target belt not higher-ranked).
	KindInvalidInput
	// KindNotFound: entity missing or not visible to the requester.
	KindNotFound
	// KindForbidden: role or ownership check failed.
	KindForbidden
	// KindConflict: stale version presented for an optimistic update.
	KindConflict
)

// Error is the typed failure every domain operation returns. Failures are
// computed before any write: a returned Error means nothing was mutated.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func validationErr(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func invalidState(msg string) *Error  { return &Error{Kind: KindInvalidState, Message: msg} }
func invalidInput(msg string) *Error  { return &Error{Kind: KindInvalidInput, Message: msg} }
func notFound(msg string) *Error      { return &Error{Kind: KindNotFound, Message: msg} }
func forbidden(msg string) *Error     { return &Error{Kind: KindForbidden, Message: msg} }
func conflict(msg string) *Error      { return &Error{Kind: KindConflict, Message: msg} }

// IsKind reports whether err is a domain Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// respondErr maps a domain error onto an HTTP response.
func respondErr(c *fiber.Ctx, err error) error {
	var de *Error
	if !errors.As(err, &de) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	status := fiber.StatusBadRequest
	switch de.Kind {
	case KindNotFound:
		status = fiber.StatusNotFound
	case KindForbidden:
		status = fiber.StatusForbidden
	case KindConflict:
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"error": de.Message})
}
