package home

import "errors"

// ErrorKind classifies a user-facing validation failure.
type ErrorKind string

const (
	KindMissingField       ErrorKind = "missing_field"
	KindPasswordMismatch   ErrorKind = "password_mismatch"
	KindDuplicateEmail     ErrorKind = "duplicate_email"
	KindNotFound           ErrorKind = "not_found"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindInvalidType        ErrorKind = "invalid_type"
)

// ValidationError is a failure the user can correct. Msg is shown as-is.
type ValidationError struct {
	Kind ErrorKind
	Msg  string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(kind ErrorKind, msg string) error {
	return &ValidationError{Kind: kind, Msg: msg}
}

// KindOf returns the kind of a ValidationError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

var (
	// ErrDeviceNotResponding is the simulated automation failure.
	ErrDeviceNotResponding = errors.New("device not responding")
	// ErrNoSession is returned by operations that need a logged in user.
	ErrNoSession = errors.New("no active session")
)
