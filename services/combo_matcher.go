package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/decktutor/combo-backend/models"
	"github.com/decktutor/combo-backend/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Matching is exact, case-insensitive string equality on card names. A combo
// needs at least this many of its cards in the deck to be worth reporting;
// a combo touching a single deck card is never classified.
const minPresentCards = 2

// ComboMatcherService classifies known combos against a deck card list
type ComboMatcherService struct {
	combos         *CachedComboProvider
	serviceMetrics *shared.ServiceMetrics
}

// NewComboMatcherService creates a new deck combo matcher
func NewComboMatcherService(combos *CachedComboProvider) *ComboMatcherService {
	return &ComboMatcherService{
		combos:         combos,
		serviceMetrics: shared.NewServiceMetrics("Combo_Matcher_Service"),
	}
}

// Metrics exposes the matcher's service metrics tracker
func (s *ComboMatcherService) Metrics() *shared.ServiceMetrics {
	return s.serviceMetrics
}

// FindCombos finds complete and potential combos in a deck.
//
// Every distinct combo touching at least two deck cards is classified exactly
// once: complete when all of its cards are present, potential otherwise. The
// first classification for a combo identity is final for the request; a combo
// found complete via one card never reappears as potential via another.
//
// Result order is insertion order of first discovery, which depends on the
// input card order and each card's provider response order. Equivalent decks
// submitted in a different card order may produce differently ordered results.
func (s *ComboMatcherService) FindCombos(ctx context.Context, cardNames []string) ([]models.DeckCombo, []models.PotentialCombo) {
	startTime := time.Now()
	analysisID := uuid.New().String()

	deckSet := make(map[string]struct{}, len(cardNames))
	for _, name := range cardNames {
		deckSet[strings.ToLower(name)] = struct{}{}
	}

	completeCombos := make([]models.DeckCombo, 0)
	potentialCombos := make([]models.PotentialCombo, 0)
	seenComplete := make(map[string]struct{})
	seenPotential := make(map[string]struct{})

	// Duplicate card names are looked up redundantly; the cache absorbs the
	// repeat cost.
	for _, cardName := range cardNames {
		for _, record := range s.combos.GetCardCombos(ctx, cardName) {
			if len(record.Cards) == 0 {
				continue
			}

			comboID := comboIdentity(record)

			present := make([]string, 0, len(record.Cards))
			missing := make([]string, 0)
			for _, comboCard := range record.Cards {
				lowered := strings.ToLower(comboCard)
				if _, inDeck := deckSet[lowered]; inDeck {
					present = append(present, lowered)
				} else {
					missing = append(missing, lowered)
				}
			}

			if len(present) < minPresentCards {
				continue
			}

			if len(missing) == 0 {
				if _, seen := seenComplete[comboID]; seen {
					continue
				}
				seenComplete[comboID] = struct{}{}
				completeCombos = append(completeCombos, models.DeckCombo{
					Combo:        models.NewComboFromRecord(comboID, record),
					IsComplete:   true,
					PresentCards: present,
					MissingCards: []string{},
				})
				continue
			}

			if _, seen := seenPotential[comboID]; seen {
				continue
			}
			if _, seen := seenComplete[comboID]; seen {
				continue
			}
			seenPotential[comboID] = struct{}{}
			potentialCombos = append(potentialCombos, models.PotentialCombo{
				Cards:         present,
				MissingPieces: missing,
				Description:   potentialDescription(record),
			})
		}
	}

	processingTime := time.Since(startTime)
	s.serviceMetrics.RecordRequest(true, processingTime)

	logrus.WithFields(logrus.Fields{
		"component":        "ComboMatcherService",
		"analysis_id":      analysisID,
		"analyzed_cards":   len(cardNames),
		"complete_combos":  len(completeCombos),
		"potential_combos": len(potentialCombos),
		"processing_time":  processingTime,
	}).Info("Deck combo analysis completed")

	return completeCombos, potentialCombos
}

// comboIdentity returns the record's identity. When the provider omits the id
// it is synthesized as a SHA-256 over the sorted lowercased card names plus
// the description, so repeated runs of the same input classify consistently.
func comboIdentity(record models.ComboRecord) string {
	if record.ID != "" {
		return record.ID
	}

	cards := make([]string, len(record.Cards))
	for i, card := range record.Cards {
		cards[i] = strings.ToLower(card)
	}
	sort.Strings(cards)

	digest := sha256.Sum256([]byte(strings.Join(cards, "\n") + "\n" + record.Description))
	return fmt.Sprintf("%x", digest[:8])
}

// potentialDescription falls through result text and description text to a
// literal placeholder.
func potentialDescription(record models.ComboRecord) string {
	if record.Result != "" {
		return record.Result
	}
	if record.Description != "" {
		return record.Description
	}
	return "Unknown combo"
}
