package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/liftlog/liftlog/internal/app"
	"github.com/liftlog/liftlog/internal/auth"
	"github.com/liftlog/liftlog/internal/forklifts"
	"github.com/liftlog/liftlog/internal/platform/db"
	"github.com/liftlog/liftlog/internal/pmjobs"
	"github.com/liftlog/liftlog/internal/session"
	"github.com/liftlog/liftlog/internal/shared"
	"github.com/liftlog/liftlog/internal/users"
	"github.com/liftlog/liftlog/internal/view"
	"github.com/liftlog/liftlog/internal/workshopjobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	// The session table lives and dies with the process; everyone
	// re-logs-in after a restart.
	sessions := session.NewStore(cfg.SessionTTL)
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	gate := &app.Gate{Logger: logger, Sessions: sessions}

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, templates, sessions, cfg.IsProduction())

	forkliftRepo := forklifts.NewRepository(dbpool)
	forkliftService := forklifts.NewService(forkliftRepo)
	forkliftHandler := forklifts.NewHandler(logger, forkliftService, templates, csrfManager)

	pmService := pmjobs.NewService(pmjobs.NewRepository(dbpool))
	pmHandler := pmjobs.NewHandler(logger, pmService, forkliftRepo, templates, csrfManager)

	workshopService := workshopjobs.NewService(workshopjobs.NewRepository(dbpool))
	workshopHandler := workshopjobs.NewHandler(logger, workshopService, forkliftRepo, templates, csrfManager)

	usersHandler := users.NewHandler(logger, users.NewService(users.NewRepository(dbpool)), templates, csrfManager)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Templates:       templates,
		Gate:            gate,
		CSRFManager:     csrfManager,
		AuthHandler:     authHandler,
		ForkliftHandler: forkliftHandler,
		PMJobHandler:    pmHandler,
		WorkshopHandler: workshopHandler,
		UsersHandler:    usersHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
