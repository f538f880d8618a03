package tokenverify

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrSubjectMissing = errors.New("subject missing")
)

// Parser is satisfied by usecase.JWTSigner.
type Parser interface {
	ParseAccess(token string) (*jwt.Token, jwt.MapClaims, error)
}

// Result describes a valid access token. Claims holds everything except sub.
type Result struct {
	UserID    string         `json:"user_id"`
	ExpiresAt time.Time      `json:"expires_at"`
	Claims    map[string]any `json:"claims,omitempty"`
}

// Verify checks an access token against parser and the clock.
func Verify(parser Parser, token string, now func() time.Time) (*Result, error) {
	token = strings.TrimSpace(token)
	if parser == nil || token == "" {
		return nil, ErrInvalidToken
	}
	if now == nil {
		now = time.Now
	}
	tok, claims, err := parser.ParseAccess(token)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil, tok == nil, !tok.Valid:
		return nil, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}
	if !now().Before(exp.Time) {
		return nil, ErrTokenExpired
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrSubjectMissing
	}

	rest := make(map[string]any, len(claims))
	for k, v := range claims {
		if k != "sub" {
			rest[k] = v
		}
	}
	return &Result{UserID: sub, ExpiresAt: exp.Time, Claims: rest}, nil
}

// Code is the short reason reported to remote callers for a Verify error.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrSubjectMissing):
		return "subject_missing"
	default:
		return "invalid_token"
	}
}

// FromBearer extracts the token from an Authorization header value.
func FromBearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
