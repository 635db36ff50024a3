package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/millbooks/millbooks-api/internal/application/ledger"
	"github.com/millbooks/millbooks-api/internal/application/records"
	"github.com/millbooks/millbooks-api/internal/application/reports"
	"github.com/millbooks/millbooks-api/internal/application/sequence"
	"github.com/millbooks/millbooks-api/internal/infrastructure/postgres"
	httpRouter "github.com/millbooks/millbooks-api/internal/interfaces/http"
	"github.com/millbooks/millbooks-api/pkg/config"
	"github.com/millbooks/millbooks-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to PostgreSQL")
	}
	defer pool.Close()

	eventRepo := postgres.NewStockEventRepository(pool)
	seqRepo := postgres.NewSequenceRepository(pool)

	ledgerStore := ledger.NewStore(eventRepo, log)
	numbers := sequence.NewGenerator(seqRepo)
	validator := records.NewValidator()

	// One generically-configured record service per transaction kind.
	var recordServices []httpRouter.RecordService
	for _, kind := range records.Kinds() {
		recRepo := postgres.NewRecordRepository(pool, kind.Table)
		recordServices = append(recordServices,
			records.NewService(kind, recRepo, ledgerStore, numbers, validator, log))
	}

	reportSvc := reports.NewService(ledgerStore)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Mill Books API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		RecordServices: recordServices,
		Ledger:         ledgerStore,
		Reports:        reportSvc,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
