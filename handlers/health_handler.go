package handlers

import (
	"context"
	"time"

	"github.com/decktutor/combo-backend/services"
	"github.com/gofiber/fiber/v2"
)

const (
	serviceName    = "combo-api"
	serviceVersion = "1.0.0"
)

type HealthHandler struct {
	Provider services.ComboProvider
}

func NewHealthHandler(provider services.ComboProvider) *HealthHandler {
	return &HealthHandler{Provider: provider}
}

// Health is the liveness probe with static status
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"service":   serviceName,
		"version":   serviceVersion,
		"timestamp": time.Now().Unix(),
	})
}

// Ready is the readiness probe. The service stays ready even when the combo
// data provider is down; provider availability is reported as a check so a
// globally-down provider is observable here, since API callers cannot tell
// empty combo data apart from a provider outage.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	providerAvailable := h.Provider.Ping(ctx) == nil

	return c.JSON(fiber.Map{
		"ready": true,
		"checks": fiber.Map{
			h.Provider.Name(): providerAvailable,
		},
	})
}
