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
	"github.com/joho/godotenv"

	"github.com/agrodecision/agrodecision/internal/analysis"
	httpapi "github.com/agrodecision/agrodecision/internal/api/http"
	"github.com/agrodecision/agrodecision/internal/config"
	"github.com/agrodecision/agrodecision/internal/enviro"
	"github.com/agrodecision/agrodecision/internal/enviro/providers"
	"github.com/agrodecision/agrodecision/internal/rules"
	"github.com/agrodecision/agrodecision/internal/scheduler"
	"github.com/agrodecision/agrodecision/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.ProviderTimeout,
	}

	// In-memory reading cache with configured retention.
	readingCache := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Environmental providers with resilience (backoff + circuit breaker).
	aggregator := enviro.NewAggregator(
		providers.NewOpenMeteoWeather(httpClient),
		providers.NewOpenMeteoArchive(httpClient),
		providers.NewOpenMeteoElevation(httpClient),
		providers.NewSunriseSunset(httpClient),
	)

	// Geocoders, tried in order; Google is a fallback and needs an API key.
	geocoders := []enviro.Geocoder{
		providers.NewOpenMeteoGeocoder(httpClient),
	}
	if cfg.GoogleGeocoderAPIKey != "" {
		geocoders = append(geocoders, providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey))
	}

	// Threshold rule tables, one CSV per category.
	catalog := rules.NewCatalog(cfg.RulesDir)
	if _, err := catalog.Categories(); err != nil {
		log.Fatalf("failed to read rules directory: %v", err)
	}

	// Core service orchestrating acquisition, scoring and advisory layers.
	service := analysis.NewService(aggregator, geocoders, catalog, readingCache, cfg.ReadingMaxAge)

	// Scheduler keeping tracked sites warm.
	sites, err := cfg.Sites()
	if err != nil {
		log.Fatalf("failed to parse tracked sites: %v", err)
	}
	sched := scheduler.New(sites, cfg.FetchInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "agrodecision",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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
			"service": "agrodecision",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

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
