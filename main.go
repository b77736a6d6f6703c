package main

import (
	"log"

	"github.com/decktutor/combo-backend/config"
	"github.com/decktutor/combo-backend/handlers"
	"github.com/decktutor/combo-backend/services"
	"github.com/decktutor/combo-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Select the combo data provider via explicit configuration
	var provider services.ComboProvider
	var providerMetrics *shared.ServiceMetrics

	switch cfg.ComboProvider {
	case "none":
		provider = services.NewNullComboService()
		log.Println("Combo provider disabled, all lookups will return empty data")
	default:
		providerConfig := shared.NewEDHRECServiceConfig()
		if cfg.EDHRECBaseURL != "" {
			providerConfig.BaseURL = cfg.EDHRECBaseURL
		}
		edhrecService := services.NewEDHRECComboService(providerConfig)
		provider = edhrecService
		providerMetrics = edhrecService.Metrics()
	}

	// Initialize the combo lookup cache and the deck matcher
	comboCache := services.NewMemoryComboCache(cfg.GetCacheTTL(), cfg.GetCacheMaxSize())
	cachedProvider := services.NewCachedComboProvider(provider, comboCache)
	matcherService := services.NewComboMatcherService(cachedProvider)

	log.Println("Combo backend services initialized:")
	log.Printf("  - Combo provider: %s", provider.Name())
	log.Printf("  - Combo lookup cache (TTL: %v, max size: %d)", cfg.GetCacheTTL(), cfg.GetCacheMaxSize())
	log.Println("  - Deck combo matcher")

	// Initialize handlers
	comboHandler := handlers.NewComboHandler(matcherService)
	healthHandler := handlers.NewHealthHandler(provider)
	metricsHandler := handlers.NewMetricsHandler(matcherService, providerMetrics, comboCache)

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST",
	}))

	// Probes
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	// Deck analysis
	app.Post("/combos", comboHandler.CheckCombos)

	// Versioned API routes
	api := app.Group("/api/v1")
	api.Post("/combos", comboHandler.CheckCombos)
	api.Get("/metrics", metricsHandler.GetMetrics)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
