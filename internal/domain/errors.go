package domain

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuthentication
	KindAuthorization
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindDependency:
		return "dependency"
	default:
		return "internal"
	}
}

// Error is the only error type that leaves the auth service. Code is a stable machine
// readable identifier, Message is safe to show to clients, Err is kept for logs.
type Error struct {
	Kind    Kind
	Code    string
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

var (
	ErrInvalidRequest        = &Error{Kind: KindValidation, Code: "invalid_request", Message: "user id is required"}
	ErrInvalidPassword       = &Error{Kind: KindValidation, Code: "invalid_password", Message: "password must be 8 to 72 bytes long"}
	ErrInvalidEmail          = &Error{Kind: KindValidation, Code: "invalid_email", Message: "invalid email"}
	ErrNoPendingSignup       = &Error{Kind: KindValidation, Code: "no_pending_signup", Message: "no pending signup found"}
	ErrInvalidOTP            = &Error{Kind: KindValidation, Code: "invalid_otp", Message: "invalid otp"}
	ErrInvalidOrExpiredToken = &Error{Kind: KindValidation, Code: "invalid_or_expired_token", Message: "invalid or expired reset token"}
	ErrNotFound              = &Error{Kind: KindNotFound, Code: "not_found", Message: "user not found"}
	ErrAlreadyExists         = &Error{Kind: KindConflict, Code: "already_exists", Message: "user already exists"}
	ErrInvalidCredentials    = &Error{Kind: KindAuthentication, Code: "invalid_credentials", Message: "invalid credentials"}
	ErrInvalidRefreshToken   = &Error{Kind: KindAuthentication, Code: "invalid_refresh_token", Message: "invalid refresh token"}
	ErrInvalidAccessToken    = &Error{Kind: KindAuthentication, Code: "invalid_token", Message: "invalid token"}
	ErrUnauthorized          = &Error{Kind: KindAuthorization, Code: "unauthorized", Message: "you can only access your own profile"}
	ErrNotificationFailed    = &Error{Kind: KindDependency, Code: "notification_failed", Message: "failed to send notification"}
)

// Internal hides err behind a generic message.
func Internal(err error) error {
	return &Error{Kind: KindInternal, Code: "internal_error", Message: "internal server error", Err: err}
}

// KindOf reports the kind of err, defaulting to KindInternal for foreign errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
