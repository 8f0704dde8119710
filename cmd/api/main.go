package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/ats-evaluator/internal/config"
	"alfredoptarigan/ats-evaluator/internal/handlers"
	"alfredoptarigan/ats-evaluator/internal/logger"
	"alfredoptarigan/ats-evaluator/internal/services"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Server.LogJSON, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}
	zl.Info("config loaded",
		zap.String("backend", cfg.Model.Backend),
		zap.String("primary_model", cfg.Model.Primary),
		zap.String("fallback_model", cfg.Model.Fallback),
	)

	prompts, err := services.LoadPrompts(cfg.Prompts.Dir)
	if err != nil {
		zl.Fatal("failed to load prompt templates", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gateway, err := services.NewModelGateway(ctx, cfg.Model, zl)
	if err != nil {
		zl.Fatal("failed to initialize model gateway", zap.Error(err))
	}

	preview := cfg.Model.LogPreviewLength
	evaluatorService := services.NewEvaluatorService(
		services.NewExtractionOrchestrator(gateway, prompts, cfg.Model.FinalizeFacts, zl, preview),
		services.NewEvaluatorRunner(gateway, prompts, zl, preview),
		services.NewReviewerRunner(gateway, prompts, zl, preview),
		cfg.Server.RequestTimeout,
		zl,
	)

	worker := services.NewWorker(evaluatorService, cfg.Worker.Concurrency, cfg.Worker.QueueSize, zl)
	worker.Start(ctx)

	evaluateHandler := handlers.NewEvaluationHandler(
		worker,
		services.NewPDFParserService(),
		cfg.Storage.MaxFileSize,
		zl,
	)

	app := fiber.New(fiber.Config{
		AppName:      "ATS Evaluator API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 30*time.Second,
		// two uploads plus multipart overhead
		BodyLimit:    int(2*cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler(zl),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${respHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: handlers.HeaderRequestID,
	}))

	app.Get("/healthz", handlers.HandleHealth)
	app.Post("/api/evaluate", evaluateHandler.HandleEvaluate)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ATS Evaluator API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/evaluate",
				"GET /healthz",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zl.Info("shutting down server")
		if err := app.ShutdownWithTimeout(cfg.Server.RequestTimeout); err != nil {
			zl.Error("server forced to shutdown", zap.Error(err))
		}
		worker.Stop()
		cancel()
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zl.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}
