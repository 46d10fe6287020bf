package auth

import (
	"context"
	"errors"
	"strings"
)

// ErrorKind classifies a failed auth operation. Screens render every kind the same way.
type ErrorKind string

const (
	KindInvalidInput       ErrorKind = "invalid_input"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindConflict           ErrorKind = "conflict"
	KindRejected           ErrorKind = "rejected"
	KindUnavailable        ErrorKind = "unavailable"
)

// Error is the failure result of SignIn and SignUp. Message is shown to the user verbatim.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// ErrInvalidCredentials is the generic wrong email or password failure.
var ErrInvalidCredentials = NewError(KindInvalidCredentials, "Invalid login credentials")

// AsError converts err into an *Error. Errors that are not already classified become
// KindUnavailable and keep their own text as the message.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindUnavailable, Message: "The sign-in service did not respond in time. Please try again.", Err: err}
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "Authentication failed."
	}
	return &Error{Kind: KindUnavailable, Message: msg, Err: err}
}

// KindOf reports the ErrorKind of err, or "" when err is nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return AsError(err).Kind
}
