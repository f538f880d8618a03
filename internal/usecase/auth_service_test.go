package usecase

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhigupta0507/NadiRakshak-Backend/config"
	"github.com/abhigupta0507/NadiRakshak-Backend/internal/domain"
)

const (
	testSession  = "5f0c6a5e-2b51-4d0a-9a59-0b3f0c2f8a11"
	testEmail    = "asha@example.com"
	testPassword = "password123"
)

type harness struct {
	svc      *authService
	users    *memUsers
	otps     *memOTPs
	pending  *memPending
	notifier *recordingNotifier
	events   *recordingEvents
	clock    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		AppName:          "nadirakshak-auth",
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
		JWTIssuer:        "test",
		AccessTTL:        15 * time.Minute,
		RefreshTTL:       time.Hour,
		SessionTTL:       time.Hour,
		OTPTTL:           5 * time.Minute,
		ResetTokenTTL:    10 * time.Minute,
		ResetURLBase:     "http://localhost:3000/reset-password/",
		BcryptCost:       bcrypt.MinCost,
		SenderName:       "NadiRakshak",
		DefaultRole:      "user",
	}
	signer, err := NewJWTSigner(cfg)
	require.NoError(t, err)

	h := &harness{
		users:    newMemUsers(),
		otps:     newMemOTPs(),
		pending:  newMemPending(),
		notifier: &recordingNotifier{},
		events:   &recordingEvents{},
		clock:    time.Now(),
	}
	h.svc = NewAuthService(cfg, zerolog.Nop(), h.users, h.otps, h.pending, h.notifier, h.events, signer).(*authService)
	h.svc.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) signup(t *testing.T) (*domain.User, *Tokens) {
	t.Helper()
	ctx := context.Background()
	_, err := h.svc.InitiateSignup(ctx, "trace", testSession, SignupInput{Name: "Asha", Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	user, tokens, err := h.svc.VerifySignup(ctx, "trace", testSession, testEmail, h.otps.code(testEmail))
	require.NoError(t, err)
	return user, tokens
}

func TestInitiateSignup(t *testing.T) {
	h := newHarness(t)

	got, err := h.svc.InitiateSignup(context.Background(), "trace", testSession, SignupInput{
		Name:     " Asha ",
		Email:    "  Asha@Example.COM ",
		Password: testPassword,
		City:     "Pune",
	})
	require.NoError(t, err)
	assert.Equal(t, testEmail, got)

	code := h.otps.code(testEmail)
	require.Len(t, code, 6)
	n, err := strconv.Atoi(code)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 100000)

	msg := h.notifier.last()
	assert.Equal(t, testEmail, msg.To)
	assert.Contains(t, msg.Text, code)

	pending, err := h.pending.Get(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, "Asha", pending.Name)
	assert.Equal(t, "user", pending.Role)
	assert.NotEqual(t, testPassword, pending.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(pending.PasswordHash), []byte(testPassword)))
}

func TestInitiateSignupRejects(t *testing.T) {
	cases := []struct {
		name string
		in   SignupInput
		want error
	}{
		{"short password", SignupInput{Name: "Asha", Email: testEmail, Password: "short"}, domain.ErrInvalidPassword},
		{"bad email", SignupInput{Name: "Asha", Email: "asha.example.com", Password: testPassword}, domain.ErrInvalidEmail},
		{"empty email", SignupInput{Name: "Asha", Email: "  ", Password: testPassword}, domain.ErrInvalidEmail},
		{"password over bcrypt limit", SignupInput{Name: "Asha", Email: testEmail, Password: strings.Repeat("a", 80)}, domain.ErrInvalidPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.svc.InitiateSignup(context.Background(), "trace", testSession, tc.in)
			require.ErrorIs(t, err, tc.want)
			assert.Empty(t, h.notifier.sent)
			assert.Empty(t, h.otps.otps)
		})
	}
}

func TestInitiateSignupAcceptsLongestPassword(t *testing.T) {
	h := newHarness(t)
	password := strings.Repeat("a", 72)

	_, err := h.svc.InitiateSignup(context.Background(), "trace", testSession, SignupInput{Name: "Asha", Email: testEmail, Password: password})
	require.NoError(t, err)

	pending, err := h.pending.Get(context.Background(), testSession)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(pending.PasswordHash), []byte(password)))
}

func TestInitiateSignupStoreFailureSendsNothing(t *testing.T) {
	h := newHarness(t)
	h.pending.saveErr = errBoom

	_, err := h.svc.InitiateSignup(context.Background(), "trace", testSession, SignupInput{Name: "Asha", Email: testEmail, Password: testPassword})
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Empty(t, h.notifier.sent)
	assert.Empty(t, h.otps.otps)
}

func TestInitiateSignupExistingEmail(t *testing.T) {
	h := newHarness(t)
	h.signup(t)
	sent := len(h.notifier.sent)

	_, err := h.svc.InitiateSignup(context.Background(), "trace", "other-session", SignupInput{Name: "A", Email: "ASHA@example.com", Password: testPassword})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Len(t, h.notifier.sent, sent)
}

func TestInitiateSignupNotificationFailure(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errBoom

	_, err := h.svc.InitiateSignup(context.Background(), "trace", testSession, SignupInput{Name: "Asha", Email: testEmail, Password: testPassword})
	require.ErrorIs(t, err, domain.ErrNotificationFailed)

	_, err = h.pending.Get(context.Background(), testSession)
	assert.ErrorIs(t, err, domain.ErrNoPendingSignup)
}

func TestInitiateSignupReplacesCode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := SignupInput{Name: "Asha", Email: testEmail, Password: testPassword}

	_, err := h.svc.InitiateSignup(ctx, "trace", testSession, in)
	require.NoError(t, err)
	require.NoError(t, h.otps.Upsert(ctx, testEmail, "099999", h.clock, h.clock.Add(time.Minute)))

	_, err = h.svc.InitiateSignup(ctx, "trace", testSession, in)
	require.NoError(t, err)
	assert.Len(t, h.otps.otps, 1)
	assert.NotEqual(t, "099999", h.otps.code(testEmail))

	_, _, err = h.svc.VerifySignup(ctx, "trace", testSession, testEmail, "099999")
	assert.ErrorIs(t, err, domain.ErrInvalidOTP)
}

func TestVerifySignup(t *testing.T) {
	h := newHarness(t)

	user, tokens := h.signup(t)
	assert.False(t, user.ID.IsZero())
	assert.Equal(t, testEmail, user.Email)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	stored, err := h.users.FindByID(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, tokens.RefreshToken, *stored.RefreshToken)
	assert.NotEqual(t, testPassword, stored.PasswordHash)

	assert.Empty(t, h.otps.otps)
	_, err = h.pending.Get(context.Background(), testSession)
	assert.ErrorIs(t, err, domain.ErrNoPendingSignup)
	assert.Equal(t, []string{user.ID.Hex()}, h.events.created)
}

func TestVerifySignupFailures(t *testing.T) {
	ctx := context.Background()
	in := SignupInput{Name: "Asha", Email: testEmail, Password: testPassword}

	t.Run("wrong code", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.InitiateSignup(ctx, "trace", testSession, in)
		require.NoError(t, err)

		_, _, err = h.svc.VerifySignup(ctx, "trace", testSession, testEmail, "000000")
		require.ErrorIs(t, err, domain.ErrInvalidOTP)
		assert.Empty(t, h.users.users)
	})

	t.Run("no pending signup", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.InitiateSignup(ctx, "trace", testSession, in)
		require.NoError(t, err)

		_, _, err = h.svc.VerifySignup(ctx, "trace", "another-session", testEmail, h.otps.code(testEmail))
		require.ErrorIs(t, err, domain.ErrNoPendingSignup)
	})

	t.Run("email mismatch", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.InitiateSignup(ctx, "trace", testSession, in)
		require.NoError(t, err)
		code := h.otps.code(testEmail)
		require.NoError(t, h.otps.Upsert(ctx, "other@example.com", code, h.clock, h.clock.Add(time.Minute)))

		_, _, err = h.svc.VerifySignup(ctx, "trace", testSession, "other@example.com", code)
		require.ErrorIs(t, err, domain.ErrInvalidOTP)
	})

	t.Run("expired code", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.InitiateSignup(ctx, "trace", testSession, in)
		require.NoError(t, err)
		h.clock = h.clock.Add(6 * time.Minute)

		_, _, err = h.svc.VerifySignup(ctx, "trace", testSession, testEmail, h.otps.code(testEmail))
		require.ErrorIs(t, err, domain.ErrInvalidOTP)
	})
}

func TestVerifySignupEventFailureIgnored(t *testing.T) {
	h := newHarness(t)
	h.events.err = errBoom

	user, _ := h.signup(t)
	assert.Equal(t, []string{user.ID.Hex()}, h.events.created)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	user, _ := h.signup(t)

	got, tokens, err := h.svc.Login(context.Background(), "trace", " ASHA@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestLoginDoesNotRevealAccounts(t *testing.T) {
	h := newHarness(t)
	h.signup(t)
	ctx := context.Background()

	_, _, unknownErr := h.svc.Login(ctx, "trace", "ghost@example.com", testPassword)
	_, _, wrongErr := h.svc.Login(ctx, "trace", testEmail, "wrong-password")

	require.ErrorIs(t, unknownErr, domain.ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, domain.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestRefreshRotation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, first := h.signup(t)

	access, err := h.svc.Refresh(ctx, "trace", first.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, second, err := h.svc.Login(ctx, "trace", testEmail, testPassword)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = h.svc.Refresh(ctx, "trace", first.RefreshToken)
	require.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

	_, err = h.svc.Refresh(ctx, "trace", second.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	h := newHarness(t)
	_, tokens := h.signup(t)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"access token": tokens.AccessToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.svc.Refresh(context.Background(), "trace", token)
			require.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
		})
	}
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user, tokens := h.signup(t)

	require.NoError(t, h.svc.Logout(ctx, "trace", user.ID.Hex()))
	_, err := h.svc.Refresh(ctx, "trace", tokens.RefreshToken)
	require.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

	require.NoError(t, h.svc.Logout(ctx, "trace", user.ID.Hex()))
}

func TestGetProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user, _ := h.signup(t)
	id := user.ID.Hex()

	profile, err := h.svc.GetProfile(ctx, "trace", id, id)
	require.NoError(t, err)
	assert.Equal(t, id, profile.ID)
	assert.Equal(t, testEmail, profile.Email)

	profile, err = h.svc.GetProfile(ctx, "trace", id, strings.ToUpper(id))
	require.NoError(t, err)
	assert.Equal(t, id, profile.ID)

	_, err = h.svc.GetProfile(ctx, "trace", id, "65f000000000000000000000")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = h.svc.GetProfile(ctx, "trace", id, "")
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	delete(h.users.users, id)
	_, err = h.svc.GetProfile(ctx, "trace", id, id)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

var resetTokenPattern = regexp.MustCompile(`reset-password/([0-9a-f]{64})`)

func (h *harness) requestReset(t *testing.T) string {
	t.Helper()
	require.NoError(t, h.svc.ForgotPassword(context.Background(), "trace", testEmail))
	m := resetTokenPattern.FindStringSubmatch(h.notifier.last().Text)
	require.Len(t, m, 2, "reset link missing from %q", h.notifier.last().Text)
	return m[1]
}

func TestPasswordReset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user, _ := h.signup(t)

	token := h.requestReset(t)
	stored, err := h.users.FindByID(ctx, user.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, stored.ResetPasswordToken)
	assert.NotEqual(t, token, *stored.ResetPasswordToken)
	assert.True(t, stored.ResetPasswordExpires.After(h.clock))

	require.NoError(t, h.svc.ResetPassword(ctx, "trace", token, "brand-new-pass"))

	_, _, err = h.svc.Login(ctx, "trace", testEmail, testPassword)
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, err = h.svc.Login(ctx, "trace", testEmail, "brand-new-pass")
	require.NoError(t, err)

	err = h.svc.ResetPassword(ctx, "trace", token, "another-pass")
	require.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
}

func TestPasswordResetExpired(t *testing.T) {
	h := newHarness(t)
	h.signup(t)

	token := h.requestReset(t)
	h.clock = h.clock.Add(11 * time.Minute)

	err := h.svc.ResetPassword(context.Background(), "trace", token, "brand-new-pass")
	require.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
}

func TestPasswordResetRejects(t *testing.T) {
	h := newHarness(t)
	h.signup(t)
	token := h.requestReset(t)
	ctx := context.Background()

	require.ErrorIs(t, h.svc.ResetPassword(ctx, "trace", "", "brand-new-pass"), domain.ErrInvalidOrExpiredToken)
	require.ErrorIs(t, h.svc.ResetPassword(ctx, "trace", "deadbeef", "brand-new-pass"), domain.ErrInvalidOrExpiredToken)
	require.ErrorIs(t, h.svc.ResetPassword(ctx, "trace", token, "short"), domain.ErrInvalidPassword)
	require.ErrorIs(t, h.svc.ResetPassword(ctx, "trace", token, strings.Repeat("a", 73)), domain.ErrInvalidPassword)
	require.NoError(t, h.svc.ResetPassword(ctx, "trace", token, "brand-new-pass"))
}

func TestForgotPassword(t *testing.T) {
	h := newHarness(t)
	h.signup(t)
	ctx := context.Background()

	err := h.svc.ForgotPassword(ctx, "trace", "ghost@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)

	first := h.requestReset(t)
	second := h.requestReset(t)
	require.NotEqual(t, first, second)
	require.ErrorIs(t, h.svc.ResetPassword(ctx, "trace", first, "brand-new-pass"), domain.ErrInvalidOrExpiredToken)
	require.NoError(t, h.svc.ResetPassword(ctx, "trace", second, "brand-new-pass"))

	h.notifier.err = errBoom
	require.ErrorIs(t, h.svc.ForgotPassword(ctx, "trace", testEmail), domain.ErrNotificationFailed)
}

func TestVerifyToken(t *testing.T) {
	h := newHarness(t)
	user, tokens := h.signup(t)

	res, err := h.svc.VerifyToken(context.Background(), "trace", tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), res.UserID)
	assert.NotContains(t, res.Claims, "sub")

	_, err = h.svc.VerifyToken(context.Background(), "trace", tokens.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, domain.KindAuthentication, domain.KindOf(err))
}

func TestGenerateOTPRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.True(t, n >= 100000 && n <= 999999, code)
	}
}
