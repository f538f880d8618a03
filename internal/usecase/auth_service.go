package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/abhigupta0507/NadiRakshak-Backend/config"
	"github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/email"
	"github.com/abhigupta0507/NadiRakshak-Backend/internal/domain"
	"github.com/abhigupta0507/NadiRakshak-Backend/internal/tokenverify"
	pkglog "github.com/abhigupta0507/NadiRakshak-Backend/pkg/log"
)

const (
	minPasswordLength = 8
	// bcrypt only accepts inputs up to this many bytes.
	maxPasswordBytes = 72
)

type SignupInput struct {
	Name         string
	Email        string
	Password     string
	Age          int
	City         string
	State        string
	MobileNumber string
	Role         string
}

type VerificationResult = tokenverify.Result

type Service interface {
	InitiateSignup(ctx context.Context, traceID, sessionID string, in SignupInput) (string, error)
	VerifySignup(ctx context.Context, traceID, sessionID, email, code string) (*domain.User, *Tokens, error)
	Login(ctx context.Context, traceID, email, password string) (*domain.User, *Tokens, error)
	Refresh(ctx context.Context, traceID, refreshToken string) (string, error)
	Logout(ctx context.Context, traceID, userID string) error
	GetProfile(ctx context.Context, traceID, requesterID, targetID string) (*domain.Profile, error)
	ForgotPassword(ctx context.Context, traceID, email string) error
	ResetPassword(ctx context.Context, traceID, token, newPassword string) error
	VerifyToken(ctx context.Context, traceID, token string) (*VerificationResult, error)
}

type authService struct {
	cfg      *config.Config
	logger   pkglog.Logger
	users    UserRepository
	otps     OTPRepository
	pending  PendingSignupStore
	notifier Notifier
	events   UserEvents
	signer   JWTSigner
	now      func() time.Time
}

func NewAuthService(cfg *config.Config, logger pkglog.Logger, users UserRepository, otps OTPRepository, pending PendingSignupStore, notifier Notifier, events UserEvents, signer JWTSigner) Service {
	return &authService{cfg: cfg, logger: logger, users: users, otps: otps, pending: pending, notifier: notifier, events: events, signer: signer, now: time.Now}
}

func (s *authService) InitiateSignup(ctx context.Context, traceID, sessionID string, in SignupInput) (string, error) {
	norm := normalizeEmail(in.Email)
	if err := validateEmail(norm); err != nil {
		return "", err
	}
	if err := validatePassword(in.Password); err != nil {
		return "", err
	}
	if _, err := s.users.FindByEmail(ctx, norm); err == nil {
		return "", domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", s.internal(traceID, "lookup user", err)
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return "", s.internal(traceID, "hash password", err)
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = s.cfg.DefaultRole
	}
	pending := domain.PendingSignup{
		Name:         strings.TrimSpace(in.Name),
		Email:        norm,
		PasswordHash: hash,
		Age:          in.Age,
		City:         in.City,
		State:        in.State,
		MobileNumber: in.MobileNumber,
		Role:         role,
	}
	if err := s.pending.Save(ctx, sessionID, pending, s.cfg.SessionTTL); err != nil {
		return "", s.internal(traceID, "store pending signup", err)
	}

	// Dispatch is the last step that can fail.
	code, err := generateOTP()
	if err != nil {
		s.discardPending(ctx, traceID, sessionID)
		return "", s.internal(traceID, "generate otp", err)
	}
	now := s.now()
	if err := s.otps.Upsert(ctx, norm, code, now, now.Add(s.cfg.OTPTTL)); err != nil {
		s.discardPending(ctx, traceID, sessionID)
		return "", s.internal(traceID, "store otp", err)
	}
	if err := s.notifier.Send(ctx, email.OTPMessage(s.cfg.SenderName, norm, code, s.cfg.OTPTTL)); err != nil {
		s.logger.Warn().Err(err).Str("trace_id", traceID).Str("email", norm).Msg("otp dispatch failed")
		s.discardPending(ctx, traceID, sessionID)
		return "", domain.ErrNotificationFailed
	}

	s.logger.Info().Str("trace_id", traceID).Str("email", norm).Msg("signup initiated")
	return norm, nil
}

func (s *authService) VerifySignup(ctx context.Context, traceID, sessionID, emailAddr, code string) (*domain.User, *Tokens, error) {
	pending, err := s.pending.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNoPendingSignup) {
		return nil, nil, domain.ErrNoPendingSignup
	} else if err != nil {
		return nil, nil, s.internal(traceID, "load pending signup", err)
	}

	norm := normalizeEmail(emailAddr)
	if norm != pending.Email {
		return nil, nil, domain.ErrInvalidOTP
	}
	if _, err := s.otps.Find(ctx, norm, strings.TrimSpace(code), s.now()); errors.Is(err, domain.ErrNotFound) {
		return nil, nil, domain.ErrInvalidOTP
	} else if err != nil {
		return nil, nil, s.internal(traceID, "lookup otp", err)
	}

	user := pending.User(s.now())
	if err := s.users.Create(ctx, user); errors.Is(err, domain.ErrAlreadyExists) {
		return nil, nil, domain.ErrAlreadyExists
	} else if err != nil {
		return nil, nil, s.internal(traceID, "create user", err)
	}
	if err := s.otps.Delete(ctx, norm); err != nil {
		s.logger.Warn().Err(err).Str("trace_id", traceID).Str("email", norm).Msg("otp cleanup failed")
	}
	if err := s.pending.Delete(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("trace_id", traceID).Msg("pending signup cleanup failed")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, s.internal(traceID, "issue tokens", err)
	}
	if s.events != nil {
		if err := s.events.UserCreated(ctx, user.ID.Hex(), user.Email, user.Role); err != nil {
			s.logger.Warn().Err(err).Str("trace_id", traceID).Str("user_id", user.ID.Hex()).Msg("user created event failed")
		}
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID.Hex()).Msg("signup verified")
	return user, tokens, nil
}

func (s *authService) discardPending(ctx context.Context, traceID, sessionID string) {
	if err := s.pending.Delete(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("trace_id", traceID).Msg("pending signup cleanup failed")
	}
}

func (s *authService) Login(ctx context.Context, traceID, emailAddr, password string) (*domain.User, *Tokens, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error().Err(err).Str("trace_id", traceID).Msg("login lookup failed")
		}
		return nil, nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}
	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, s.internal(traceID, "issue tokens", err)
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID.Hex()).Msg("login")
	return user, tokens, nil
}

func (s *authService) Refresh(ctx context.Context, traceID, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", domain.ErrInvalidRefreshToken
	}
	tok, claims, err := s.signer.ParseRefresh(refreshToken)
	if err != nil || tok == nil || !tok.Valid {
		return "", domain.ErrInvalidRefreshToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrInvalidRefreshToken
	}
	user, err := s.users.FindByIDAndRefreshToken(ctx, sub, refreshToken)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrInvalidRefreshToken
	} else if err != nil {
		return "", s.internal(traceID, "lookup refresh token", err)
	}
	access, err := s.signer.SignAccessToken(user.ID.Hex())
	if err != nil {
		return "", s.internal(traceID, "sign access token", err)
	}
	return access, nil
}

func (s *authService) Logout(ctx context.Context, traceID, userID string) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return s.internal(traceID, "clear refresh token", err)
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", userID).Msg("logout")
	return nil
}

func (s *authService) GetProfile(ctx context.Context, traceID, requesterID, targetID string) (*domain.Profile, error) {
	// ObjectID hex is case-insensitive.
	targetID = strings.ToLower(strings.TrimSpace(targetID))
	if targetID == "" {
		return nil, domain.ErrInvalidRequest
	}
	if targetID != strings.ToLower(requesterID) {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, targetID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		return nil, s.internal(traceID, "lookup profile", err)
	}
	return user.Profile(), nil
}

func (s *authService) ForgotPassword(ctx context.Context, traceID, emailAddr string) error {
	norm := normalizeEmail(emailAddr)
	user, err := s.users.FindByEmail(ctx, norm)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	} else if err != nil {
		return s.internal(traceID, "lookup user", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return s.internal(traceID, "generate reset token", err)
	}
	if err := s.users.SetResetToken(ctx, user.ID.Hex(), hashResetToken(token), s.now().Add(s.cfg.ResetTokenTTL)); err != nil {
		return s.internal(traceID, "store reset token", err)
	}
	link := strings.TrimRight(s.cfg.ResetURLBase, "/") + "/" + token
	if err := s.notifier.Send(ctx, email.ResetLinkMessage(s.cfg.SenderName, norm, link, s.cfg.ResetTokenTTL)); err != nil {
		s.logger.Warn().Err(err).Str("trace_id", traceID).Str("user_id", user.ID.Hex()).Msg("reset link dispatch failed")
		return domain.ErrNotificationFailed
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID.Hex()).Msg("password reset requested")
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, traceID, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrInvalidOrExpiredToken
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return s.internal(traceID, "hash password", err)
	}
	user, err := s.users.ConsumeResetToken(ctx, hashResetToken(token), s.now(), hash)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrInvalidOrExpiredToken
	} else if err != nil {
		return s.internal(traceID, "consume reset token", err)
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID.Hex()).Msg("password reset finished")
	return nil
}

func (s *authService) VerifyToken(ctx context.Context, traceID, token string) (*VerificationResult, error) {
	result, err := tokenverify.Verify(s.signer, token, s.now)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindAuthentication, Code: domain.ErrInvalidAccessToken.Code, Message: err.Error()}
	}
	s.logger.Debug().Str("trace_id", traceID).Str("user_id", result.UserID).Msg("token verified")
	return result, nil
}

func (s *authService) issueTokens(ctx context.Context, user *domain.User) (*Tokens, error) {
	id := user.ID.Hex()
	access, err := s.signer.SignAccessToken(id)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signer.SignRefreshToken(id)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, id, refresh); err != nil {
		return nil, err
	}
	user.RefreshToken = &refresh
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) hashPassword(password string) (string, error) {
	cost := s.cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) internal(traceID, op string, err error) error {
	s.logger.Error().Err(err).Str("trace_id", traceID).Str("op", op).Msg("auth operation failed")
	return domain.Internal(fmt.Errorf("%s: %w", op, err))
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func validateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 || len(email) > 255 {
		return domain.ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordBytes {
		return domain.ErrInvalidPassword
	}
	return nil
}

// generateOTP returns a uniformly distributed code in [100000, 999999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
