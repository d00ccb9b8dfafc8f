package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"goeffect/adapters/api"
	"goeffect/adapters/ols"
	"goeffect/adapters/postgres"
	"goeffect/app"
	"goeffect/internal"
	"goeffect/internal/config"
	"goeffect/ports"
)

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := internal.NewDefaultLogger()

	var repo ports.ReportRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()

		pgRepo := postgres.NewReportRepository(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pgRepo.Migrate(ctx); err != nil {
			cancel()
			log.Fatalf("migrate: %v", err)
		}
		cancel()
		repo = pgRepo
		logger.Info("report persistence enabled")
	} else {
		logger.Warn("DATABASE_URL not set; reports will not be persisted")
	}

	service := app.NewStandardizeService(ols.NewFitter(), repo, logger)
	server := api.NewServer(service, logger)

	addr := ":" + cfg.Server.Port
	logger.Info("listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
