package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-identity-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-identity-go/internal/password"
	"github.com/ovaphlow/pitchfork/service-identity-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-identity-go/internal/token"
	"github.com/ovaphlow/pitchfork/service-identity-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-identity-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-identity-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-identity-go/pkg/utilities"
)

const shutdownGrace = 5 * time.Second

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lg, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			defer lg.Sync()
			return serve(cmd.Context(), cfg, lg.Sugar())
		},
	}
}

// app is everything the HTTP server needs, plus what must be closed after it.
type app struct {
	handler http.Handler
	db      *sqlx.DB
}

func (a *app) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// buildApp wires the store, hasher, token manager and router from cfg.
func buildApp(ctx context.Context, cfg config.Config, sugar *zap.SugaredLogger) (*app, error) {
	if cfg.Auth.SecretDefaulted {
		sugar.Warn("JWT_SECRET not set, using the development default")
	}

	tokens, err := token.NewManager(token.Config{
		SigningKey:             []byte(cfg.Auth.JWTSecret),
		SessionDurationMinutes: cfg.Auth.SessionDurationMinutes,
	})
	if err != nil {
		return nil, err
	}

	ids, err := utilities.NewIDGenerator(cfg.SnowflakeNode)
	if err != nil {
		return nil, err
	}

	a := &app{}
	var (
		store user.CredentialStore
		ping  router.Pinger
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		sugar.Warn("using the in-memory store; data is lost on exit")
		store = userrepo.NewMemoryRepo()
		ping = func(context.Context) (time.Time, error) { return time.Now(), nil }
	default:
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		a.db = db
		if cfg.MigrateOnStart {
			if err := database.Migrate(ctx, db.DB); err != nil {
				db.Close()
				return nil, err
			}
		}
		store = userrepo.NewUserRepo(db)
		ping = func(ctx context.Context) (time.Time, error) { return database.Now(ctx, db) }
	}

	pool := password.NewPool(password.NewArgon2Hasher(password.DefaultParams), cfg.Auth.HashWorkers)
	svc := user.NewService(store, pool, tokens, ids.Next, sugar)

	a.handler = router.RegisterRoutes(router.Deps{
		Users:  user.NewHandler(svc, sugar),
		Tokens: tokens,
		Ping:   ping,
		Logger: sugar,
	})
	return a, nil
}

// serve runs the HTTP server until ctx is cancelled, then shuts down within
// shutdownGrace.
func serve(ctx context.Context, cfg config.Config, sugar *zap.SugaredLogger) error {
	sugar.Infow("starting service-identity-go", "store", cfg.StoreDriver)

	a, err := buildApp(ctx, cfg, sugar)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if a.db != nil {
		if err := a.db.PingContext(doneCtx); err != nil {
			sugar.Warnf("db ping on shutdown failed: %v", err)
		}
	}
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
	return nil
}
