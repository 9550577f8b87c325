package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-care-reminders/internal/adapters/auth/remote"
	"pet-care-reminders/internal/adapters/notify/httpnotify"
	"pet-care-reminders/internal/adapters/notify/lognotify"
	mem "pet-care-reminders/internal/adapters/storage/memory"
	pg "pet-care-reminders/internal/adapters/storage/postgres"
	"pet-care-reminders/internal/adapters/storage/sqlite"
	"pet-care-reminders/internal/config"
	"pet-care-reminders/internal/domain/reminders"
	"pet-care-reminders/internal/platform/logger"
	"pet-care-reminders/internal/ports/auth"
	"pet-care-reminders/internal/router"
)

// @title        Pet Care Reminders API
// @version      1.0
// @description  Recordatorios de cuidado de mascotas con notificación por mail.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, App: cfg.AppName})
	for _, w := range cfg.Warnings {
		log.Warn("config", map[string]any{"warning": w})
	}

	store, db, err := openStore(cfg)
	if err != nil {
		log.Error("store init failed", map[string]any{"driver": string(cfg.DBDriver), "error": err.Error()})
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	dispatcher, err := newDispatcher(cfg, log)
	if err != nil {
		log.Error("notifier init failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		log.Error("auth verifier init failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	if verifier == nil {
		log.Warn("AUTH_VERIFY_URL not set, running in dev mode (X-Debug-User-* headers)", nil)
	}

	rt := router.NewRouter(router.Options{
		AuthVerifier:  verifier,
		Store:         store,
		Dispatcher:    dispatcher,
		Logger:        log,
		Location:      cfg.LocalTimezone,
		UpcomingLimit: cfg.UpcomingLimit,
		Resync:        cfg.ResyncAfterWrite,
	})

	// Sin WriteTimeout: /reminders/ws mantiene la conexión abierta.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           rt,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr(), "driver": string(cfg.DBDriver)})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	waitForShutdown(srv, rt, log)
}

func openStore(cfg *config.Config) (reminders.Store, *sql.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		return pg.NewRemindersStore(db), db, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewRemindersStore(db), db, nil
	default:
		return mem.NewRemindersStore(), nil, nil
	}
}

func newDispatcher(cfg *config.Config, log logger.Logger) (reminders.Dispatcher, error) {
	if cfg.NotifyBaseURL == "" {
		return lognotify.New(log), nil
	}
	return httpnotify.New(httpnotify.Config{
		BaseURL:  cfg.NotifyBaseURL,
		APIKey:   cfg.NotifyAPIKey,
		Subject:  cfg.NotifySubject,
		Timeout:  cfg.NotifyTimeout,
		Location: cfg.LocalTimezone,
	})
}

// newVerifier devuelve nil (modo dev) si no hay AUTH_VERIFY_URL.
func newVerifier(cfg *config.Config) (auth.AuthVerifier, error) {
	if cfg.AuthVerifyURL == "" {
		return nil, nil
	}
	return remote.New(remote.Config{BaseURL: cfg.AuthVerifyURL, APIKey: cfg.AuthAPIKey})
}

func waitForShutdown(srv *http.Server, rt *router.Router, log logger.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down", map[string]any{"open_sessions": rt.Sessions.Len()})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", map[string]any{"error": err.Error()})
	}
}
