package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrInvalidMessage    = fmt.Errorf("invalid message")
	ErrInvalidTarget     = fmt.Errorf("invalid target")
	ErrRecipientNotFound = fmt.Errorf("recipient not found")
	ErrForbidden         = fmt.Errorf("forbidden")
	ErrStorage           = fmt.Errorf("storage unavailable")
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrUserAlreadyExists = fmt.Errorf("user already exists")
	ErrTokenGeneration   = fmt.Errorf("token generation failed")
)

// Wire codes returned to clients on a failed operation.
const (
	CodeInvalidMessage    = "InvalidMessage"
	CodeRecipientNotFound = "RecipientNotFound"
	CodeForbidden         = "Forbidden"
	CodeStorageError      = "StorageError"
)

// Code maps a domain error to its wire code. A malformed target is an
// InvalidMessage at the protocol level.
func Code(err error) string {
	switch {
	case stderrors.Is(err, ErrInvalidMessage), stderrors.Is(err, ErrInvalidTarget):
		return CodeInvalidMessage
	case stderrors.Is(err, ErrRecipientNotFound), stderrors.Is(err, ErrUserNotFound):
		return CodeRecipientNotFound
	case stderrors.Is(err, ErrForbidden):
		return CodeForbidden
	default:
		return CodeStorageError
	}
}
