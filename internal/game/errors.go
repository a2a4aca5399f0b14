package game

import (
	"errors"

	"gorm.io/gorm"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindInvalidPhase
	KindAlreadyDone
	KindValidation
)

// Error is the typed failure surfaced by every engine operation. The engine
// never retries; callers map Kind onto their transport's status codes.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func KindOf(err error) Kind {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}
	return KindUnknown
}

func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func invalidPhase(message string) *Error {
	return &Error{Kind: KindInvalidPhase, Message: message}
}

func alreadyDone(message string) *Error {
	return &Error{Kind: KindAlreadyDone, Message: message}
}

func invalid(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// translate maps persistence failures onto the engine taxonomy. Constraint
// violations from a lost race are idempotency signals, not faults.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return alreadyDone("Already done")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Not found")
	}
	return err
}
