// @title           Movie List API
// @version         1.0
// @description     Personal movie lists behind email/password accounts and bearer tokens.

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/movielist-api/internal/api"
	"github.com/99minutos/movielist-api/internal/api/handler"
	"github.com/99minutos/movielist-api/internal/core/ports"
	"github.com/99minutos/movielist-api/internal/core/service"
	"github.com/99minutos/movielist-api/internal/infrastructure/config"
	mongostore "github.com/99minutos/movielist-api/internal/infrastructure/db/mongo"
	pgstore "github.com/99minutos/movielist-api/internal/infrastructure/db/postgres"
	redisstore "github.com/99minutos/movielist-api/internal/infrastructure/db/redis"
	"github.com/99minutos/movielist-api/internal/infrastructure/security"
	"github.com/99minutos/movielist-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "movielist-api: %v\n", err)
		os.Exit(1)
	}
}

// stores groups the repositories of the selected backend with its
// readiness check and cleanup.
type stores struct {
	users  ports.UserRepository
	movies ports.MovieRepository
	checks map[string]handler.CheckFunc
	close  func(context.Context) error
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty && !cfg.IsProduction(),
		Service: "movielist-api",
	})

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}()

	var limiter ports.LoginLimiter
	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		limiter = redisstore.NewLoginThrottle(rdb, cfg.LoginThrottle.MaxAttempts, cfg.LoginThrottle.Window)
		st.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttling enabled")
	}

	hasher, err := security.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := security.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(st.users, hasher, tokens, limiter, log)
	movieService := service.NewMovieService(st.movies, log)

	e := api.NewRouter(api.Deps{
		Log:          log,
		AuthService:  authService,
		MovieService: movieService,
		Tokens:       tokens,
		Checks:       st.checks,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := pgstore.Open(ctx, pgstore.Config{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		if err := pgstore.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("postgres connected and migrated")

		return &stores{
			users:  pgstore.NewUserRepository(db),
			movies: pgstore.NewMovieRepository(db),
			checks: map[string]handler.CheckFunc{"postgres": db.PingContext},
			close:  func(context.Context) error { return db.Close() },
		}, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		users := mongostore.NewUserRepository(db)
		movies := mongostore.NewMovieRepository(db)
		if err := mongostore.Migrate(ctx, users, movies); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected and indexed")

		return &stores{
			users:  users,
			movies: movies,
			checks: map[string]handler.CheckFunc{
				"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			},
			close: client.Disconnect,
		}, nil
	}
}
