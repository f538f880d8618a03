package usecase

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/abhigupta0507/NadiRakshak-Backend/config"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var errWrongTokenType = errors.New("unexpected token type")

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type JWTSigner interface {
	SignAccessToken(subject string) (string, error)
	SignRefreshToken(subject string) (string, error)
	ParseAccess(token string) (*jwt.Token, jwt.MapClaims, error)
	ParseRefresh(token string) (*jwt.Token, jwt.MapClaims, error)
}

type jwtSigner struct {
	issuer     string
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTSigner(cfg *config.Config) (JWTSigner, error) {
	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, errors.New("jwt access and refresh secrets required")
	}
	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		return nil, errors.New("jwt access and refresh secrets must differ")
	}
	return &jwtSigner{
		issuer:     cfg.JWTIssuer,
		accessKey:  []byte(cfg.JWTAccessSecret),
		refreshKey: []byte(cfg.JWTRefreshSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

func (s *jwtSigner) SignAccessToken(subject string) (string, error) {
	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"typ": tokenTypeAccess,
		"iss": s.issuer,
		"iat": now.Unix(),
		"exp": now.Add(s.accessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessKey)
}

// SignRefreshToken embeds a random jti so two refresh tokens issued to the same user
// within one second still differ.
func (s *jwtSigner) SignRefreshToken(subject string) (string, error) {
	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"jti": uuid.NewString(),
		"typ": tokenTypeRefresh,
		"iss": s.issuer,
		"iat": now.Unix(),
		"exp": now.Add(s.refreshTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshKey)
}

func (s *jwtSigner) ParseAccess(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	return s.parse(tokenStr, s.accessKey, tokenTypeAccess)
}

func (s *jwtSigner) ParseRefresh(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	return s.parse(tokenStr, s.refreshKey, tokenTypeRefresh)
}

func (s *jwtSigner) parse(tokenStr string, key []byte, typ string) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return token, claims, err
	}
	if got, _ := claims["typ"].(string); got != typ {
		return token, claims, errWrongTokenType
	}
	return token, claims, nil
}
