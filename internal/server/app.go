// Package server wires configuration, storage, the session layer and its
// transports into a runnable application.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/sweeper"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	grpc    *gs.GRPCServer
	http    *httpapi.Server
	sweeper *sweeper.Sweeper
}

// NewApp builds the server with a JSON logger on stdout.
func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	return newApp(context.Background(), c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, rm, err := openStore(ctx, c)
	if err != nil {
		return nil, err
	}

	kind, err := identity.ParseKind(c.VerifierKind)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	verifier, err := identity.New(kind, identity.Options{
		APIKey:   c.ProviderAPIKey,
		Endpoint: c.ProviderEndpoint,
		Timeout:  c.ProviderTimeout,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("verifier init error: %w", err)
	}

	key := []byte(c.SecretKey)
	directory := services.NewDirectory(db, rm, logger.With("module", "directory"))
	tokens := services.NewTokenStore(db, rm, auth.NewCodec(key), logger.With("module", "tokens"))
	manager := services.NewSessionManager(verifier, directory, tokens, services.SessionOptions{
		SecretKey:          key,
		TTL:                c.SessionTTL,
		DisabledLoginFails: c.DisabledLoginFails,
	}, logger.With("module", "session"))

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		grpc:    gs.NewGRPCServer(c.EndpointAddrGRPC, logger, manager, c.CredentialKey),
		http:    httpapi.NewServer(c.EndpointAddrHTTP, logger, manager, c.CredentialKey, db),
		sweeper: sweeper.NewSweeper(tokens, c.SweepInterval, logger),
	}, nil
}

// openStore opens the database named by the DSN and brings its schema up to date.
func openStore(ctx context.Context, c *config.Config) (*sql.DB, repomanager.RepositoryManager, error) {
	db, dialect, err := dbx.Open(c.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.New(dialect)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}

	return db, rm, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run starts the gRPC server, the HTTP server and the sweeper, and blocks
// until a signal arrives, ctx is cancelled or one of them fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(gctx) })
	g.Go(func() error { return app.http.Run(gctx) })
	g.Go(func() error { return app.sweeper.Run(gctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err)
	} else {
		app.logger.Info(ctx, "App stopped")
	}
	return err
}

// Close releases the database pool.
func (app *App) Close() error {
	return app.db.Close()
}
