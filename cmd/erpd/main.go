// Command erpd serves the ERP API the panel submits to: products, clients,
// suppliers, sales and purchases.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ale3590/fares/internal/config"
	"github.com/ale3590/fares/internal/db"
	"github.com/ale3590/fares/internal/server"
	"github.com/ale3590/fares/internal/telemetry"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
	portFlag        = flag.String("port", "", "Listen port (overrides ERP_PORT)")
)

func main() {
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	port := os.Getenv("ERP_PORT")
	if port == "" {
		port = "8081"
	}
	if *portFlag != "" {
		port = *portFlag
	}

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Telemetry.ServiceName+"-erp", cfg.Telemetry.Exporter, cfg.Telemetry.Endpoint, os.Stdout)
	if err != nil {
		log.Fatalf("Tracing setup failed: %v", err)
	}

	if *migrateOnlyFlag || *seedOnlyFlag {
		dbConn, err := db.Open(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if *migrateOnlyFlag {
			if cfg.App.Migrations && cfg.Database.Driver != "sqlite" {
				err = db.RunSQLMigrations("file://migrations", cfg.Database.URL())
			} else {
				err = db.Migrate(dbConn)
			}
			if err != nil {
				log.Fatalf("Migration failed: %v", err)
			}
			log.Println("Migrations completed successfully")
		}
		if *seedOnlyFlag {
			if err := db.Seed(dbConn); err != nil {
				log.Fatalf("Seeding failed: %v", err)
			}
			log.Println("Seeding completed successfully")
		}
		return
	}

	dbConn, err := db.Connect(cfg.Database, cfg.App)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      server.New(dbConn, server.Options{TokenTTL: cfg.App.TokenTTL}),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Printf("ERP API starting on port %s (driver=%s)", port, cfg.Database.Driver)
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
