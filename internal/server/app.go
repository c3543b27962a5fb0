// Package server initializes and runs the registration server: it wires the
// database, the reconciliation engine, and the HTTP API together and handles
// graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/regisync/regisync/internal/logging"
	"github.com/regisync/regisync/internal/server/admins"
	"github.com/regisync/regisync/internal/server/badges"
	"github.com/regisync/regisync/internal/server/config"
	"github.com/regisync/regisync/internal/server/errorlog"
	"github.com/regisync/regisync/internal/server/feed"
	"github.com/regisync/regisync/internal/server/httpapi"
	"github.com/regisync/regisync/internal/server/notify"
	"github.com/regisync/regisync/internal/server/participants"
	"github.com/regisync/regisync/internal/server/qrcode"
	"github.com/regisync/regisync/internal/server/shared/db"
	syncer "github.com/regisync/regisync/internal/server/sync"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	rm, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	recorder := errorlog.NewRecorder(rm.ErrorLog(), logger)

	adminService := admins.NewService(rm.Admins(), cfg)
	participantService := participants.NewService(rm.Conn())

	renderer := qrcode.NewPNGRenderer()
	badgeStore := badges.NewS3Store(cfg)
	notifier := notify.NewSMTPNotifier(cfg)

	var source feed.Source
	if cfg.FeedFile != "" {
		source = feed.NewFileSource(cfg.FeedFile)
	} else {
		source = feed.NewHTTPSource(cfg.FeedURL)
	}

	engine := syncer.NewEngine(source, participantService, renderer, badgeStore,
		notifier, recorder, logger, cfg.PublicBaseURL)

	srv := httpapi.NewServer(cfg, logger, adminService, participantService,
		engine, recorder, rm.ErrorLog(), renderer, badgeStore, notifier)

	return &App{config: cfg, logger: logger, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
