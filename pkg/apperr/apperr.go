package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind классифицирует ошибку для слоя хендлеров и политики ретраев
type Kind string

const (
	NotFound                  Kind = "not_found"
	Conflict                  Kind = "conflict"
	InvalidArgument           Kind = "invalid_argument"
	InvalidState              Kind = "invalid_state"
	InsufficientAuthorization Kind = "insufficient_authorization"
	Unauthenticated           Kind = "unauthenticated"
	RateUnavailable           Kind = "rate_unavailable"
	BroadcastFailure          Kind = "broadcast_failure"
	StorageConflict           Kind = "storage_conflict"
	Internal                  Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap сохраняет причину, сообщение не должно содержать секретов
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: errors.WithStack(err)}
}

// KindOf возвращает Internal для ошибок вне таксономии
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable — только транзиентные конфликты хранилища ретраятся внутри
func Retryable(err error) bool {
	return IsKind(err, StorageConflict)
}
