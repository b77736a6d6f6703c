package services

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/decktutor/combo-backend/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// stubComboProvider serves canned combo records keyed by lowercased card name
type stubComboProvider struct {
	combos map[string][]models.ComboRecord
	err    error
	calls  int
}

func (p *stubComboProvider) GetCardCombos(ctx context.Context, cardName string) ([]models.ComboRecord, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.combos[strings.ToLower(cardName)], nil
}

func (p *stubComboProvider) Ping(ctx context.Context) error {
	return p.err
}

func (p *stubComboProvider) Name() string {
	return "stub"
}

func newTestMatcher(provider ComboProvider) *ComboMatcherService {
	cache := NewMemoryComboCache(0, 1000)
	return NewComboMatcherService(NewCachedComboProvider(provider, cache))
}

func TestFindCombos_CompleteCombo(t *testing.T) {
	provider := &stubComboProvider{combos: map[string][]models.ComboRecord{
		"card a": {{ID: "c1", Cards: []string{"Card A", "Card B"}, Result: "Win the game"}},
	}}
	matcher := newTestMatcher(provider)

	complete, potential := matcher.FindCombos(context.Background(), []string{"Card A", "Card B", "Card C"})

	if len(complete) != 1 {
		t.Fatalf("expected 1 complete combo, got %d", len(complete))
	}
	if len(potential) != 0 {
		t.Fatalf("expected 0 potential combos, got %d", len(potential))
	}

	combo := complete[0]
	if combo.Combo.ID != "c1" {
		t.Errorf("combo id = %q, want %q", combo.Combo.ID, "c1")
	}
	if !combo.IsComplete {
		t.Error("complete combo not marked is_complete")
	}
	if !reflect.DeepEqual(combo.PresentCards, []string{"card a", "card b"}) {
		t.Errorf("present_cards = %v, want [card a card b]", combo.PresentCards)
	}
	if len(combo.MissingCards) != 0 {
		t.Errorf("missing_cards = %v, want empty", combo.MissingCards)
	}
}

func TestFindCombos_PotentialCombo(t *testing.T) {
	provider := &stubComboProvider{combos: map[string][]models.ComboRecord{
		"card a": {{ID: "c2", Cards: []string{"Card A", "Card B", "Card D"}, Result: "Infinite mana"}},
	}}
	matcher := newTestMatcher(provider)

	complete, potential := matcher.FindCombos(context.Background(), []string{"Card A", "Card B", "Card C"})

	if len(complete) != 0 {
		t.Fatalf("expected 0 complete combos, got %d", len(complete))
	}
	if len(potential) != 1 {
		t.Fatalf("expected 1 potential combo, got %d", len(potential))
	}

	combo := potential[0]
	if !reflect.DeepEqual(combo.Cards, []string{"card a", "card b"}) {
		t.Errorf("cards = %v, want [card a card b]", combo.Cards)
	}
	if !reflect.DeepEqual(combo.MissingPieces, []string{"card d"}) {
		t.Errorf("missing_pieces = %v, want [card d]", combo.MissingPieces)
	}
	if combo.Description != "Infinite mana" {
		t.Errorf("description = %q, want %q", combo.Description, "Infinite mana")
	}
}

func TestFindCombos_SinglePresentCardIgnored(t *testing.T) {
	provider := &stubComboProvider{combos: map[string][]models.ComboRecord{
		"card a": {{ID: "c3", Cards: []string{"Card A", "Card X", "Card Y"}}},
	}}
	matcher := newTestMatcher(provider)

	complete, potential := matcher.FindCombos(context.Background(), []string{"Card A", "Card B", "Card C"})

	if len(complete) != 0 || len(potential) != 0 {
		t.Errorf("combo with one present card classified: complete=%d potential=%d", len(complete), len(potential))
	}
}

func TestFindCombos_EmptyCardListDiscarded(t *testing.T) {
	provider := &stubComboProvider{combos: map[string][]models.ComboRecord{
		"card a": {{ID: "c4", Cards: []string{}, Result: "Nothing"}},
	}}
	matcher := newTestMatcher(provider)

	complete, potential := matcher.FindCombos(context.Background(), []string{"Card A", "Card B"})

	if len(complete) != 0 || len(potential) != 0 {
		t.Errorf("record with empty card list classified: complete=%d potential=%d", len(complete), len(potential))
	}
}

func TestFindCombos_ProviderFailureYieldsEmptyResults(t *testing.T) {
	provider := &stubComboProvider{err: fmt.Errorf("connection refused")}
	matcher := newTestMatcher(provider)

	complete, potential := matcher.FindCombos(context.Background(), []string{"Card A", "Card B", "Card C"})

	if len(complete) != 0 || len(potential) != 0 {
		t.Errorf("expected empty results on provider failure, got complete=%d potential=%d", len(complete), len(potential))
	}
}

func TestFindCombos_DuplicateIdentityFirstOccurrenceWins(t *testing.T) {
	record := models.ComboRecord{ID: "c5", Cards: []string{"Card A", "Card B"}}
	provider := &stubComboProvider{combos: map[string][]models.ComboRecord{
		"card a": {record},
		"card b": {record},
	}}
	matcher := newTestMatcher(provider)

	complete, _ := matcher.FindCombos(context.Background(), []string{"Card A", "Card B"})

	if len(complete) != 1 {
		t.Errorf("expected 1 complete combo for duplicate identity, got %d", len(complete))
	}
}

func TestFindCombos_CompleteIdentityNeverPotential(t *testing.T) {
	provider := &stubComboProvider{combos: map[string][]models.ComboRecord{
		"card a": {{ID: "c6", Cards: []string{"Card A", "Card B"}}},
		"card b": {{ID: "c6", Cards: []string{"Card A", "Card B", "Card Z"}}},
	}}
	matcher := newTestMatcher(provider)

	complete, potential := matcher.FindCombos(context.Background(), []string{"Card A", "Card B"})

	if len(complete) != 1 {
		t.Fatalf("expected 1 complete combo, got %d", len(complete))
	}
	if len(potential) != 0 {
		t.Errorf("identity already complete reappeared as potential: %v", potential)
	}
}

func TestFindCombos_WarmCacheIdempotent(t *testing.T) {
	provider := &stubComboProvider{combos: map[string][]models.ComboRecord{
		"card a": {
			{ID: "c1", Cards: []string{"Card A", "Card B"}},
			{ID: "c2", Cards: []string{"Card A", "Card B", "Card D"}, Result: "Infinite squirrels"},
		},
	}}
	matcher := newTestMatcher(provider)
	deck := []string{"Card A", "Card B", "Card C"}

	complete1, potential1 := matcher.FindCombos(context.Background(), deck)
	callsAfterFirst := provider.calls
	complete2, potential2 := matcher.FindCombos(context.Background(), deck)

	if provider.calls != callsAfterFirst {
		t.Errorf("provider called %d more times with a warm cache", provider.calls-callsAfterFirst)
	}
	if !reflect.DeepEqual(complete1, complete2) {
		t.Errorf("complete combos differ across identical runs: %v vs %v", complete1, complete2)
	}
	if !reflect.DeepEqual(potential1, potential2) {
		t.Errorf("potential combos differ across identical runs: %v vs %v", potential1, potential2)
	}
}

func TestPotentialDescription_FallbackChain(t *testing.T) {
	tests := []struct {
		name     string
		record   models.ComboRecord
		expected string
	}{
		{
			name:     "result text preferred",
			record:   models.ComboRecord{Result: "Infinite mana", Description: "Two-card combo"},
			expected: "Infinite mana",
		},
		{
			name:     "description fallback",
			record:   models.ComboRecord{Description: "Two-card combo"},
			expected: "Two-card combo",
		},
		{
			name:     "literal placeholder",
			record:   models.ComboRecord{},
			expected: "Unknown combo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := potentialDescription(tt.record); got != tt.expected {
				t.Errorf("potentialDescription() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestComboIdentity_StableSynthesis(t *testing.T) {
	first := models.ComboRecord{Cards: []string{"Card B", "Card A"}, Description: "combo"}
	second := models.ComboRecord{Cards: []string{"card a", "CARD B"}, Description: "combo"}

	if comboIdentity(first) != comboIdentity(second) {
		t.Error("synthesized identity differs for equivalent records")
	}

	other := models.ComboRecord{Cards: []string{"Card B", "Card A"}, Description: "different"}
	if comboIdentity(first) == comboIdentity(other) {
		t.Error("synthesized identity collides for different descriptions")
	}

	explicit := models.ComboRecord{ID: "c9", Cards: []string{"Card A"}}
	if comboIdentity(explicit) != "c9" {
		t.Errorf("explicit id not preserved: %q", comboIdentity(explicit))
	}
}

// TestFindComboProperties checks the classification invariants over randomized
// decks and combo knowledge bases.
func TestFindComboProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	cardPool := make([]string, 10)
	for i := range cardPool {
		cardPool[i] = fmt.Sprintf("Card %d", i)
	}

	buildProvider := func(comboCards [][]int8) *stubComboProvider {
		combos := make(map[string][]models.ComboRecord)
		for i, indices := range comboCards {
			seen := make(map[int8]struct{})
			var cards []string
			for _, idx := range indices {
				if _, dup := seen[idx]; dup {
					continue
				}
				seen[idx] = struct{}{}
				cards = append(cards, cardPool[idx])
			}
			if len(cards) == 0 {
				continue
			}
			record := models.ComboRecord{
				ID:     fmt.Sprintf("combo-%d", i),
				Cards:  cards,
				Result: fmt.Sprintf("Result %d", i),
			}
			for _, card := range cards {
				key := strings.ToLower(card)
				combos[key] = append(combos[key], record)
			}
		}
		return &stubComboProvider{combos: combos}
	}

	buildDeck := func(deckIdx []int8) []string {
		deck := make([]string, len(deckIdx))
		for i, idx := range deckIdx {
			deck[i] = cardPool[idx]
		}
		return deck
	}

	properties.Property("complete combos have all cards in the deck and no missing cards", prop.ForAll(
		func(deckIdx []int8, comboCards [][]int8) bool {
			deck := buildDeck(deckIdx)
			matcher := newTestMatcher(buildProvider(comboCards))
			complete, _ := matcher.FindCombos(context.Background(), deck)

			deckSet := make(map[string]struct{})
			for _, card := range deck {
				deckSet[strings.ToLower(card)] = struct{}{}
			}

			for _, combo := range complete {
				if len(combo.MissingCards) != 0 {
					return false
				}
				if len(combo.PresentCards) < 2 {
					return false
				}
				for _, card := range combo.PresentCards {
					if _, inDeck := deckSet[card]; !inDeck {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.Int8Range(0, 9)),
		gen.SliceOf(gen.SliceOf(gen.Int8Range(0, 9))),
	))

	properties.Property("potential combos have at least two present and at least one missing card", prop.ForAll(
		func(deckIdx []int8, comboCards [][]int8) bool {
			deck := buildDeck(deckIdx)
			matcher := newTestMatcher(buildProvider(comboCards))
			_, potential := matcher.FindCombos(context.Background(), deck)

			deckSet := make(map[string]struct{})
			for _, card := range deck {
				deckSet[strings.ToLower(card)] = struct{}{}
			}

			for _, combo := range potential {
				if len(combo.Cards) < 2 || len(combo.MissingPieces) == 0 {
					return false
				}
				for _, card := range combo.Cards {
					if _, inDeck := deckSet[card]; !inDeck {
						return false
					}
				}
				for _, card := range combo.MissingPieces {
					if _, inDeck := deckSet[card]; inDeck {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.Int8Range(0, 9)),
		gen.SliceOf(gen.SliceOf(gen.Int8Range(0, 9))),
	))

	properties.Property("no combo identity appears twice across result lists", prop.ForAll(
		func(deckIdx []int8, comboCards [][]int8) bool {
			deck := buildDeck(deckIdx)
			matcher := newTestMatcher(buildProvider(comboCards))
			complete, potential := matcher.FindCombos(context.Background(), deck)

			completeIDs := make(map[string]struct{})
			for _, combo := range complete {
				if _, dup := completeIDs[combo.Combo.ID]; dup {
					return false
				}
				completeIDs[combo.Combo.ID] = struct{}{}
			}

			// Potential entries carry no identity on the wire, so re-derive it
			// from the present/missing card sets.
			seenPotential := make(map[string]struct{})
			for _, combo := range potential {
				key := strings.Join(combo.Cards, "|") + "||" + strings.Join(combo.MissingPieces, "|") + "||" + combo.Description
				if _, dup := seenPotential[key]; dup {
					return false
				}
				seenPotential[key] = struct{}{}
			}
			return true
		},
		gen.SliceOf(gen.Int8Range(0, 9)),
		gen.SliceOf(gen.SliceOf(gen.Int8Range(0, 9))),
	))

	properties.TestingRun(t)
}
