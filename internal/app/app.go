// Package app assembles the service with fx.
package app

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	logrus "github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"driver_rating/internal/apperr"
	"driver_rating/internal/auth"
	"driver_rating/internal/config"
	"driver_rating/internal/controllers"
	"driver_rating/internal/logger"
	"driver_rating/internal/middleware"
	"driver_rating/internal/ratelimit"
	"driver_rating/internal/routes"
	"driver_rating/internal/store"
)

const startupTimeout = 45 * time.Second

// AccessLog is where the HTTP access log goes.
type AccessLog struct{ io.Writer }

var Module = fx.Options(
	fx.Provide(
		provideLogger,
		provideStore,
		provideIssuers,
		provideStatusMapper,
		provideLimiter,
		controllers.NewHandler,
		provideRouter,
	),
	fx.Invoke(StartHTTPServer),
)

func provideLogger(cfg config.Config) (AccessLog, error) {
	w, err := logger.Setup(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return AccessLog{}, err
	}
	if cfg.Env == config.EnvDev {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return AccessLog{w}, nil
}

// provideStore depends on AccessLog so logging is configured before the
// database logger is built.
func provideStore(lc fx.Lifecycle, cfg config.Config, _ AccessLog) (store.Store, error) {
	if cfg.DB.Driver == config.DriverMemory {
		logrus.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	db, err := config.OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := store.Migrate(db); err != nil {
			return nil, err
		}
		logrus.Info("database schema migrated")
	}

	s := store.NewGorm(db)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logrus.Info("closing database")
			return s.Close()
		},
	})
	return s, nil
}

func provideIssuers(cfg config.Config) (auth.Issuers, error) {
	return auth.NewIssuers(cfg.CompanySecret, cfg.StaffSecret, cfg.TokenTTL)
}

func provideStatusMapper(cfg config.Config) apperr.StatusMapper {
	return apperr.NewStatusMapper(cfg.ConflictStatus)
}

func provideLimiter(lc fx.Lifecycle, cfg config.Config) (ratelimit.Limiter, error) {
	if cfg.RedisURL == "" {
		return ratelimit.NewMemory(ratelimit.MemoryConfig{}), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logrus.WithError(err).Warn("redis not reachable, login throttling will fail open")
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return ratelimit.NewRedis(client)
}

func provideRouter(cfg config.Config, h *controllers.Handler, st store.Store, issuers auth.Issuers, limiter ratelimit.Limiter, access AccessLog) *gin.Engine {
	return routes.SetupRouter(routes.Deps{
		Handler:         h,
		Store:           st,
		Issuers:         issuers,
		Limiter:         limiter,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
		AccessLog:       access.Writer,
	})
}

// StartHTTPServer binds the listener on start and drains connections on stop.
func StartHTTPServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg config.Config, engine *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           middleware.EnableCORS(cfg.CORSOrigins, engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logrus.WithField("addr", srv.Addr).Info("HTTP server listening")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logrus.WithError(err).Error("HTTP server stopped")
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logrus.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}
