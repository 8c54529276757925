package user

import "errors"

// Kind classifies a failure for the HTTP edge.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindUnauthorized
	KindNotFound
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Client-facing messages. These strings are part of the API.
const (
	MsgUserCreated      = "User created"
	MsgUserLoggedIn     = "User logged in"
	MsgUserUpdated      = "User updated"
	MsgPasswordUpdated  = "Password updated"
	MsgUserDeleted      = "User deleted"
	MsgUserNotFound     = "User not found"
	MsgUsernameTaken    = "Username already exists"
	MsgEmailTaken       = "Email already exists"
	MsgEmailInvalid     = "Email is not valid"
	MsgPasswordInvalid  = "Password is not valid"
	MsgFoneInvalid      = "Fone is not valid"
	MsgPasswordMismatch = "Passwords do not match"
	MsgBadCredentials   = "Username and Password invalid"
	MsgCurrentPassword  = "Current password is invalid"
	MsgUnauthorized     = "Unauthorized"
	MsgDatabaseError    = "Database error"
	MsgHashError        = "Failed to hash password"
	MsgTokenError       = "Failed to generate token"
	MsgInvalidPayload   = "Invalid payload"
)

// Error is the only error type the service returns. Message is safe to show
// to clients; Err carries the underlying cause for logs.
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

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func validationErr(msg string) *Error { return newError(KindValidation, msg, nil) }
func conflictErr(msg string) *Error   { return newError(KindConflict, msg, nil) }
func notFoundErr() *Error             { return newError(KindNotFound, MsgUserNotFound, nil) }
func internalErr(msg string, err error) *Error {
	return newError(KindInternal, msg, err)
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return MsgDatabaseError
}
