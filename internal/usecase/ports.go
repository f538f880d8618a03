package usecase

import (
	"context"
	"time"

	"github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/email"
	"github.com/abhigupta0507/NadiRakshak-Backend/internal/domain"
)

// UserRepository is the credential store. Lookups that match nothing return domain.ErrNotFound,
// a second user with the same email returns domain.ErrAlreadyExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDAndRefreshToken(ctx context.Context, id, refreshToken string) (*domain.User, error)
	SetRefreshToken(ctx context.Context, id, refreshToken string) error
	ClearRefreshToken(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	// ConsumeResetToken swaps the password of the user holding tokenHash, provided the token
	// expires after now, and clears both reset fields in the same write.
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*domain.User, error)
}

// OTPRepository keeps at most one code per email.
type OTPRepository interface {
	Upsert(ctx context.Context, email, code string, createdAt, expiresAt time.Time) error
	Find(ctx context.Context, email, code string, now time.Time) (*domain.OTP, error)
	Delete(ctx context.Context, email string) error
}

// PendingSignupStore returns domain.ErrNoPendingSignup when nothing is stored for the session.
type PendingSignupStore interface {
	Save(ctx context.Context, sessionID string, pending domain.PendingSignup, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*domain.PendingSignup, error)
	Delete(ctx context.Context, sessionID string) error
}

// UserEvents is told about freshly registered users. Failures are logged, never surfaced.
type UserEvents interface {
	UserCreated(ctx context.Context, userID, email, role string) error
}

type Notifier = email.Notifier
