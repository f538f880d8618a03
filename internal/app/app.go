package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	nats "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/abhigupta0507/NadiRakshak-Backend/config"
	"github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/email"
	httpadapter "github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/http"
	apiv1 "github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/http/api/v1"
	handlers "github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/http/api/v1/handlers"
	authmw "github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/http/middleware"
	repo "github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/mongo"
	natsadapter "github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/nats"
	redisstore "github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/redis"
	"github.com/abhigupta0507/NadiRakshak-Backend/internal/usecase"
	pkglog "github.com/abhigupta0507/NadiRakshak-Backend/pkg/log"
)

type App struct {
	cfg      *config.Config
	logger   pkglog.Logger
	mongo    *mongo.Client
	redis    *redis.Client
	natsConn *nats.Conn
	echo     *echo.Echo
}

func New(ctx context.Context) (*App, error) {
	cfg := config.MustLoad()
	logger := pkglog.With(pkglog.New(cfg.AppEnv, cfg.LogLevel), pkglog.Fields{"service": cfg.AppName})
	return build(ctx, cfg, logger)
}

// build creates the connection-free parts first. Later failures close whatever was opened.
func build(ctx context.Context, cfg *config.Config, logger pkglog.Logger) (*App, error) {
	notifier, err := email.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("email: %w", err)
	}
	signer, err := usecase.NewJWTSigner(cfg)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}

	mongoClient, db, err := repo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("mongo: %w", err)
	}
	if err := repo.EnsureIndexes(ctx, db); err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}

	rdb, err := redisstore.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("redis: %w", err)
	}

	var nc *nats.Conn
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Warn().Err(err).Msg("nats connect failed")
			nc = nil
		}
	}

	var events usecase.UserEvents
	if nc != nil {
		events = natsadapter.NewUserEvents(nc, cfg.NATSUserCreateSubject)
	}

	service := usecase.NewAuthService(
		cfg,
		logger,
		repo.NewUserRepository(db),
		repo.NewOTPRepository(db),
		redisstore.NewPendingSignupStore(rdb, ""),
		notifier,
		events,
		signer,
	)
	handler := handlers.NewAuthHandler(service)
	authMW := authmw.NewAuthMiddleware(signer)
	sessionMW := authmw.Session(authmw.SessionConfig{
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.SessionSecure,
	})
	router := httpadapter.NewRouter(cfg, logger, apiv1.NewRouter(handler, authMW.Handler, sessionMW),
		httpadapter.HealthCheck{Name: "mongo", Fn: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
		httpadapter.HealthCheck{Name: "redis", Fn: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)

	if nc != nil {
		verifyHandler := natsadapter.NewVerifyHandler(signer, logger)
		if _, err := verifyHandler.Subscribe(nc, cfg.NATSVerifySubject, cfg.AppName); err != nil {
			logger.Warn().Err(err).Str("subject", cfg.NATSVerifySubject).Msg("nats subscribe failed")
		}
	}

	e := echo.New()
	router.Setup(e)

	return &App{cfg: cfg, logger: logger, mongo: mongoClient, redis: rdb, natsConn: nc, echo: e}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.echo.Shutdown(shutdownCtx)
	}()
	go func() {
		addr := fmt.Sprintf("%s:%s", a.cfg.HTTPHost, a.cfg.HTTPPort)
		a.logger.Info().Str("addr", addr).Msg("http server starting")
		errCh <- a.echo.Start(addr)
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) Close() {
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.mongo.Disconnect(ctx)
	}
}
