package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/ewanvin/seaicemod/internal/api/http"
	"github.com/ewanvin/seaicemod/internal/baseline"
	"github.com/ewanvin/seaicemod/internal/cache"
	"github.com/ewanvin/seaicemod/internal/config"
	"github.com/ewanvin/seaicemod/internal/scheduler"
	"github.com/ewanvin/seaicemod/internal/seaice"
	"github.com/ewanvin/seaicemod/internal/seaice/thredds"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound dataset downloads.
	httpClient := &http.Client{
		Timeout: cfg.FetchTimeout,
	}

	// Dataset fetcher against the THREDDS server.
	fetcher := thredds.New(httpClient, thredds.Config{
		URLPrefix:  cfg.DataURLPrefix,
		YearRange:  cfg.YearRange,
		MaxRetries: cfg.FetchMaxRetries,
	})

	// Bounded fetch cache in front of the fetcher.
	fetchCache, err := cache.New(fetcher, cfg.CacheCapacity)
	if err != nil {
		log.Fatalf("failed to create fetch cache: %v", err)
	}

	// The baseline dataset is loaded eagerly; without it there is no
	// comparison view, so failure here is fatal.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.FetchTimeout)
	base, err := baseline.Load(loadCtx, fetcher, cfg.BaselineURL)
	cancelLoad()
	if err != nil {
		log.Fatalf("failed to load baseline dataset: %v", err)
	}

	// Core service running update cycles.
	service := seaice.NewService(fetchCache, base, cfg.TemporalResolution)

	// Optional cache warmup for the default selection.
	warmup := scheduler.New(service, cfg.WarmupSelection, cfg.WarmupInterval, cfg.WarmupTimeout)
	if err := warmup.Start(); err != nil {
		log.Fatalf("failed to start warmup scheduler: %v", err)
	}
	defer warmup.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "seaicesvc",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "seaicesvc",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Options{
		Service:      service,
		Baseline:     base,
		Cache:        fetchCache,
		ClearOnError: cfg.ClearOnError,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
