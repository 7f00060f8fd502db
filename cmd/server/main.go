// Command server runs the panel API: login sessions and the invoicing,
// point-of-sale and receiving screens, backed by the ERP API.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ale3590/fares/internal/config"
	"github.com/ale3590/fares/internal/erpclient"
	"github.com/ale3590/fares/internal/server"
	"github.com/ale3590/fares/internal/session"
	"github.com/ale3590/fares/internal/telemetry"
)

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg := config.Load()

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Telemetry.ServiceName, cfg.Telemetry.Exporter, cfg.Telemetry.Endpoint, os.Stdout)
	if err != nil {
		log.Fatalf("Tracing setup failed: %v", err)
	}

	profiles, err := config.LoadProfiles(cfg.App.ProfilesFile)
	if err != nil {
		log.Fatalf("Screen profiles: %v", err)
	}

	store, closeStore, err := openStore(cfg.Session)
	if err != nil {
		log.Fatalf("Session store: %v", err)
	}
	defer closeStore()

	erp := erpclient.New(cfg.ERP.BaseURL, erpclient.WithTimeout(cfg.ERP.Timeout))
	app := NewApp(erp, store, profiles, cfg.Session, cfg.App.Location())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      telemetry.Handler(server.WithLogging(app), "panel"),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go app.screens.Sweep(sweepCtx, time.Minute, cfg.Session.TTL)

	go func() {
		log.Printf("Panel starting on port %s (erp=%s, sessions=%s)", cfg.Server.Port, cfg.ERP.BaseURL, cfg.Session.Store)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("Error flushing traces: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// openStore returns the configured session store and its closer.
func openStore(sc config.SessionConfig) (session.Store, func(), error) {
	if sc.Store != "redis" {
		return session.NewMemoryStore(), func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rs, err := session.NewRedisStore(ctx, sc.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return rs, func() {
		if err := rs.Close(); err != nil {
			log.Printf("Closing redis: %v", err)
		}
	}, nil
}
