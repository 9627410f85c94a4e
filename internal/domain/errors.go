package domain

import "fmt"

// ErrorKind classifies failures the way callers need to react to them:
// validation is the client's fault, conflicts are expected under
// replayed or concurrent requests, transients are safe to retry whole.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindConflict
	KindTransient
	KindConfiguration
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// WithCause returns a copy carrying the underlying error; errors.Is
// still matches the sentinel because Unwrap walks back to it.
func (e *Error) WithCause(cause error) error {
	return fmt.Errorf("%w: %w", e, cause)
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Transient wraps a backing-store or transport failure. The atomic
// redemption transaction guarantees no partial effect, so the whole
// operation can be retried.
func Transient(op string, cause error) error {
	return &Error{Kind: KindTransient, Code: "TRANSIENT", Message: op, cause: cause}
}

var (
	ErrInvalidInput  = newError(KindValidation, "INVALID_INPUT", "invalid input")
	ErrUnderage      = newError(KindValidation, "UNDERAGE", "you must be 18 or older to sign up")
	ErrGuestNotFound = newError(KindNotFound, "GUEST_NOT_FOUND", "guest not found")

	ErrAlreadyRedeemed = newError(KindConflict, "ALREADY_REDEEMED", "this offer has already been redeemed")
	ErrStageMismatch   = newError(KindConflict, "STAGE_MISMATCH", "guest is not at the stage this offer requires")

	// ErrInvalidOTP deliberately covers "no challenge", "wrong code"
	// and "expired" without distinguishing them to the caller.
	ErrInvalidOTP = newError(KindValidation, "INVALID_OTP", "invalid or expired verification code")

	ErrAccessDenied = newError(KindValidation, "ACCESS_DENIED", "invalid access code")
)
