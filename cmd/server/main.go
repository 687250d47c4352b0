package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/notegrove/notegrove/internal/api"
	"github.com/notegrove/notegrove/internal/config"
	"github.com/notegrove/notegrove/internal/repository"
	groupsuc "github.com/notegrove/notegrove/internal/usecase/groups"
	notesuc "github.com/notegrove/notegrove/internal/usecase/notes"
	"github.com/notegrove/notegrove/internal/ws"
	"github.com/notegrove/notegrove/migrations"
	"github.com/notegrove/notegrove/pkg/database"
	"github.com/notegrove/notegrove/pkg/httpx"
	"github.com/notegrove/notegrove/pkg/logger/slogx"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Parse()
	if err != nil {
		return fmt.Errorf("parse cfg: %v", err)
	}

	if err := slogx.InitGlobal(os.Stderr, cfg.App.LogLevel, cfg.App.Pretty); err != nil {
		return fmt.Errorf("init logger: %v", err)
	}

	pool, err := database.NewPGX(ctx, database.NewOptions(
		net.JoinHostPort(cfg.Database.Host, cfg.Database.Port),
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		database.WithLogger(slogx.Default()),
	))
	if err != nil {
		return fmt.Errorf("init pgx pool: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, migrations.Migrations); err != nil {
		return fmt.Errorf("migrate: %v", err)
	}

	db := database.NewDatabase(pool)
	repo := repository.New(db)

	registry := ws.NewRegistry()
	notifier := ws.NewService(registry, repo)

	notesUsecase, err := notesuc.New(notesuc.NewOptions(repo, repo, repo, repo, notifier, db))
	if err != nil {
		return fmt.Errorf("init notes usecase: %v", err)
	}

	groupsUsecase, err := groupsuc.New(groupsuc.NewOptions(repo, repo, repo, repo, notifier, db))
	if err != nil {
		return fmt.Errorf("init groups usecase: %v", err)
	}

	secret := []byte(cfg.Auth.Secret)
	wsHandler := ws.NewHandler(registry, secret)
	apiHandler := api.NewHandler(notesUsecase, groupsUsecase, wsHandler, secret)

	srv, err := httpx.New(httpx.NewOptions(
		cfg.HTTP.Addr,
		apiHandler.Router(),
		httpx.WithMiddlewares([]func(http.Handler) http.Handler{slogx.LoggingMiddleware}),
		httpx.WithLogger(slogx.Default()),
	))
	if err != nil {
		return fmt.Errorf("init http server: %v", err)
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return srv.Run(ctx) })

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("wait app stop: %v", err)
	}

	return nil
}
