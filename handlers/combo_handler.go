package handlers

import (
	"time"

	"github.com/decktutor/combo-backend/models"
	"github.com/decktutor/combo-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Request validation bounds and the potential-combo response cap. Complete
// combos are never truncated.
const (
	maxDeckCards       = 200
	maxPotentialCombos = 20
)

type ComboHandler struct {
	Matcher *services.ComboMatcherService
}

func NewComboHandler(matcher *services.ComboMatcherService) *ComboHandler {
	return &ComboHandler{Matcher: matcher}
}

// CheckCombos analyzes a deck card list for known combos
func (h *ComboHandler) CheckCombos(c *fiber.Ctx) error {
	var req models.ComboRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if len(req.Cards) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No cards provided"})
	}
	if len(req.Cards) > maxDeckCards {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Too many cards (max 200)"})
	}

	if req.Commander != "" {
		logrus.WithFields(logrus.Fields{
			"component": "ComboHandler",
			"commander": req.Commander,
		}).Debug("Analyzing commander deck")
	}

	startTime := time.Now()

	completeCombos, potentialCombos := h.Matcher.FindCombos(c.Context(), req.Cards)

	if len(potentialCombos) > maxPotentialCombos {
		potentialCombos = potentialCombos[:maxPotentialCombos]
	}

	return c.JSON(models.ComboResponse{
		Combos:          completeCombos,
		PotentialCombos: potentialCombos,
		AnalyzedCards:   len(req.Cards),
		ProcessingTime:  time.Since(startTime).Milliseconds(),
	})
}
