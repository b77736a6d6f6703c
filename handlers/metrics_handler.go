package handlers

import (
	"github.com/decktutor/combo-backend/services"
	"github.com/decktutor/combo-backend/shared"
	"github.com/gofiber/fiber/v2"
)

type MetricsHandler struct {
	Matcher         *services.ComboMatcherService
	ProviderMetrics *shared.ServiceMetrics
	Cache           *services.MemoryComboCache
}

func NewMetricsHandler(matcher *services.ComboMatcherService, providerMetrics *shared.ServiceMetrics, cache *services.MemoryComboCache) *MetricsHandler {
	return &MetricsHandler{
		Matcher:         matcher,
		ProviderMetrics: providerMetrics,
		Cache:           cache,
	}
}

// GetMetrics returns service metrics snapshots and cache statistics
func (h *MetricsHandler) GetMetrics(c *fiber.Ctx) error {
	data := fiber.Map{
		"matcher": h.Matcher.Metrics().Snapshot(),
		"cache": fiber.Map{
			"size": h.Cache.Size(),
			"type": "in-memory",
		},
	}
	if h.ProviderMetrics != nil {
		data["provider"] = h.ProviderMetrics.Snapshot()
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}
