// Package httpapi exposes the administrative REST API: sync trigger,
// participant management, check-in, exports, and error-log review.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"github.com/regisync/regisync/internal/logging"
	"github.com/regisync/regisync/internal/server/admins"
	"github.com/regisync/regisync/internal/server/badges"
	"github.com/regisync/regisync/internal/server/config"
	"github.com/regisync/regisync/internal/server/errorlog"
	"github.com/regisync/regisync/internal/server/participants"
	"github.com/regisync/regisync/internal/server/qrcode"
	syncer "github.com/regisync/regisync/internal/server/sync"
)

type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

type Server struct {
	address      string
	logger       logging.Logger
	config       *config.Config
	admins       *admins.Service
	participants *participants.Service
	engine       *syncer.Engine
	recorder     *errorlog.Recorder
	errorLogRepo errorlog.Repository
	renderer     qrcode.Renderer
	badges       badges.Store
	notifier     Notifier

	// Guards the reconciliation engine: per-row identity resolution is
	// read-then-write, so batches must not overlap.
	syncMu sync.Mutex
}

func NewServer(
	cfg *config.Config,
	logger logging.Logger,
	adminService *admins.Service,
	participantService *participants.Service,
	engine *syncer.Engine,
	recorder *errorlog.Recorder,
	errorLogRepo errorlog.Repository,
	renderer qrcode.Renderer,
	badgeStore badges.Store,
	notifier Notifier,
) *Server {
	return &Server{
		address:      cfg.EndpointAddrHTTP,
		logger:       logger.With("module", "httpapi"),
		config:       cfg,
		admins:       adminService,
		participants: participantService,
		engine:       engine,
		recorder:     recorder,
		errorLogRepo: errorLogRepo,
		renderer:     renderer,
		badges:       badgeStore,
		notifier:     notifier,
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// public
	mux.HandleFunc("POST /api/admin/login", s.handleAdminLogin)
	mux.HandleFunc("POST /api/participants/authenticate", s.handleAuthenticateParticipant)
	mux.HandleFunc("GET /api/participants/{id}/qr", s.handleParticipantQR)

	// admin-only
	mux.Handle("POST /api/admin/register", s.requireAdmin(s.handleAdminRegister))
	mux.Handle("POST /api/sync", s.requireAdmin(s.handleSync))
	mux.Handle("GET /api/admin/participants", s.requireAdmin(s.handleListParticipants))
	mux.Handle("GET /api/admin/participants/{id}", s.requireAdmin(s.handleGetParticipant))
	mux.Handle("PUT /api/admin/participants/{id}", s.requireAdmin(s.handleEditParticipant))
	mux.Handle("DELETE /api/admin/participants/{id}", s.requireAdmin(s.handleDeleteParticipant))
	mux.Handle("POST /api/admin/participants/{id}/approve", s.requireAdmin(s.handleApproveParticipant))
	mux.Handle("POST /api/participants/check-in", s.requireAdmin(s.handleCheckIn))
	mux.Handle("GET /api/admin/export", s.requireAdmin(s.handleExport))
	mux.Handle("GET /api/admin/error-logs", s.requireAdmin(s.handleErrorLogs))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	return corsHandler.Handler(mux)
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {

	server := &http.Server{
		Addr:         s.address,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "starting HTTP server", "address", s.address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
