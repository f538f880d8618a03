package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/email"
	"github.com/abhigupta0507/NadiRakshak-Backend/internal/domain"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*domain.User{}} }

func (r *memUsers) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrAlreadyExists
		}
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	r.users[user.ID.Hex()] = &cp
	return nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) FindByIDAndRefreshToken(ctx context.Context, id, refreshToken string) (*domain.User, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.RefreshToken == nil || *u.RefreshToken != refreshToken {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *memUsers) SetRefreshToken(_ context.Context, id, refreshToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.RefreshToken = &refreshToken
	return nil
}

func (r *memUsers) ClearRefreshToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.RefreshToken = nil
	}
	return nil
}

func (r *memUsers) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.ResetPasswordToken = &tokenHash
	u.ResetPasswordExpires = &expiresAt
	return nil
}

func (r *memUsers) ConsumeResetToken(_ context.Context, tokenHash string, now time.Time, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetPasswordToken == nil || *u.ResetPasswordToken != tokenHash {
			continue
		}
		if u.ResetPasswordExpires == nil || !u.ResetPasswordExpires.After(now) {
			return nil, domain.ErrNotFound
		}
		u.PasswordHash = passwordHash
		u.ResetPasswordToken = nil
		u.ResetPasswordExpires = nil
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

type memOTPs struct {
	mu   sync.Mutex
	otps map[string]domain.OTP
}

func newMemOTPs() *memOTPs { return &memOTPs{otps: map[string]domain.OTP{}} }

func (r *memOTPs) Upsert(_ context.Context, email, code string, createdAt, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.otps[email] = domain.OTP{Email: email, Code: code, CreatedAt: createdAt, ExpiresAt: expiresAt}
	return nil
}

func (r *memOTPs) Find(_ context.Context, email, code string, now time.Time) (*domain.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp, ok := r.otps[email]
	if !ok || otp.Code != code || !otp.ExpiresAt.After(now) {
		return nil, domain.ErrNotFound
	}
	return &otp, nil
}

func (r *memOTPs) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.otps, email)
	return nil
}

func (r *memOTPs) code(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.otps[email].Code
}

type memPending struct {
	mu      sync.Mutex
	pending map[string]domain.PendingSignup
	saveErr error
}

func newMemPending() *memPending { return &memPending{pending: map[string]domain.PendingSignup{}} }

func (s *memPending) Save(_ context.Context, sessionID string, pending domain.PendingSignup, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.pending[sessionID] = pending
	return nil
}

func (s *memPending) Get(_ context.Context, sessionID string) (*domain.PendingSignup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[sessionID]
	if !ok {
		return nil, domain.ErrNoPendingSignup
	}
	return &p, nil
}

func (s *memPending) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, sessionID)
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, msg email.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) last() email.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return email.Message{}
	}
	return n.sent[len(n.sent)-1]
}

type recordingEvents struct {
	created []string
	err     error
}

func (e *recordingEvents) UserCreated(_ context.Context, userID, _, _ string) error {
	e.created = append(e.created, userID)
	return e.err
}

var errBoom = errors.New("boom")
