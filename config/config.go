package config

import (
	"errors"
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName      string   `env:"AUTH_APP_NAME" envDefault:"nadirakshak-auth"`
	AppEnv       string   `env:"AUTH_APP_ENV" envDefault:"local"`
	LogLevel     string   `env:"AUTH_LOG_LEVEL" envDefault:"info"`
	HTTPHost     string   `env:"AUTH_HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort     string   `env:"AUTH_HTTP_PORT" envDefault:"8081"`
	HTTPBasePath string   `env:"AUTH_HTTP_BASE_PATH" envDefault:"/api/v1"`
	CORSOrigins  []string `env:"AUTH_CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	MongoURI      string `env:"AUTH_MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"AUTH_MONGODB_DATABASE" envDefault:"nadirakshak"`

	RedisAddr     string `env:"AUTH_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"AUTH_REDIS_PASSWORD"`
	RedisDB       int    `env:"AUTH_REDIS_DB" envDefault:"0"`

	JWTAccessSecret  string        `env:"AUTH_JWT_ACCESS_SECRET"`
	JWTRefreshSecret string        `env:"AUTH_JWT_REFRESH_SECRET"`
	JWTIssuer        string        `env:"AUTH_JWT_ISSUER" envDefault:"nadirakshak-auth"`
	AccessTTL        time.Duration `env:"AUTH_JWT_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL       time.Duration `env:"AUTH_JWT_REFRESH_TTL" envDefault:"168h"`

	SessionCookie string        `env:"AUTH_SESSION_COOKIE" envDefault:"nr_session"`
	SessionTTL    time.Duration `env:"AUTH_SESSION_TTL" envDefault:"24h"`
	SessionSecure bool          `env:"AUTH_SESSION_SECURE" envDefault:"false"`

	OTPTTL        time.Duration `env:"AUTH_OTP_TTL" envDefault:"5m"`
	ResetTokenTTL time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"10m"`
	ResetURLBase  string        `env:"AUTH_RESET_URL_BASE" envDefault:"http://localhost:3000/reset-password"`
	BcryptCost    int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`

	EmailProvider  string `env:"AUTH_EMAIL_PROVIDER" envDefault:"log"`
	SMTPHost       string `env:"AUTH_SMTP_HOST"`
	SMTPPort       int    `env:"AUTH_SMTP_PORT" envDefault:"587"`
	SMTPUser       string `env:"AUTH_SMTP_USER"`
	SMTPPassword   string `env:"AUTH_SMTP_PASSWORD"`
	SendGridAPIKey string `env:"AUTH_SENDGRID_API_KEY"`
	SenderEmail    string `env:"AUTH_SENDER_EMAIL" envDefault:"no-reply@nadirakshak.local"`
	SenderName     string `env:"AUTH_SENDER_NAME" envDefault:"NadiRakshak"`

	NATSURL               string `env:"NATS_URL"`
	NATSVerifySubject     string `env:"AUTH_NATS_SUBJECT_VERIFY_JWT" envDefault:"auth.verifyJWT"`
	NATSUserCreateSubject string `env:"AUTH_NATS_SUBJECT_USER_CREATE" envDefault:"user.create-user"`

	DefaultRole string `env:"AUTH_DEFAULT_ROLE" envDefault:"user"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if c.JWTAccessSecret == "" || c.JWTRefreshSecret == "" {
		return errors.New("AUTH_JWT_ACCESS_SECRET and AUTH_JWT_REFRESH_SECRET are required")
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return errors.New("access and refresh secrets must differ")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 || c.OTPTTL <= 0 || c.SessionTTL <= 0 || c.ResetTokenTTL <= 0 {
		return errors.New("token, otp and session ttls must be positive")
	}
	switch c.EmailProvider {
	case "log":
	case "smtp":
		if c.SMTPHost == "" || c.SMTPUser == "" {
			return errors.New("AUTH_SMTP_HOST and AUTH_SMTP_USER are required for the smtp provider")
		}
	case "sendgrid":
		if c.SendGridAPIKey == "" || c.SenderEmail == "" {
			return errors.New("AUTH_SENDGRID_API_KEY and AUTH_SENDER_EMAIL are required for the sendgrid provider")
		}
	default:
		return errors.New("unknown AUTH_EMAIL_PROVIDER: " + c.EmailProvider)
	}
	return nil
}
