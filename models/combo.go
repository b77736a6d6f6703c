package models

// ComboRecord is the raw combo data as returned by the provider. Fields are
// optional on the wire; records with an empty card list are discarded before
// classification. Instances are never mutated after they enter the cache.
type ComboRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Cards         []string `json:"cards"`
	Description   string   `json:"description"`
	Prerequisite  string   `json:"prerequisite"`
	Steps         []string `json:"steps"`
	Result        string   `json:"result"`
	ColorIdentity []string `json:"colorIdentity"`
	SourceURL     string   `json:"sourceUrl"`
}

// Combo is the normalized, output-facing projection of a ComboRecord.
// All optional fields are defaulted so serialization never emits null lists.
type Combo struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Cards         []string `json:"cards"`
	Description   string   `json:"description"`
	Prerequisite  string   `json:"prerequisite"`
	Steps         []string `json:"steps"`
	Result        string   `json:"result"`
	ColorIdentity []string `json:"color_identity"`
	SourceURL     string   `json:"source_url"`
}

// NewComboFromRecord builds a Combo from a raw record under the given identity,
// defaulting every optional field to an empty string or empty list.
func NewComboFromRecord(id string, record ComboRecord) Combo {
	return Combo{
		ID:            id,
		Name:          record.Name,
		Cards:         nonNilStrings(record.Cards),
		Description:   record.Description,
		Prerequisite:  record.Prerequisite,
		Steps:         nonNilStrings(record.Steps),
		Result:        record.Result,
		ColorIdentity: nonNilStrings(record.ColorIdentity),
		SourceURL:     record.SourceURL,
	}
}

// DeckCombo is a combo whose every card is present in the analyzed deck.
// MissingCards is always empty by construction.
type DeckCombo struct {
	Combo        Combo    `json:"combo"`
	IsComplete   bool     `json:"is_complete"`
	PresentCards []string `json:"present_cards"`
	MissingCards []string `json:"missing_cards"`
}

// PotentialCombo is a combo with at least two but not all cards present.
type PotentialCombo struct {
	Cards         []string `json:"cards"`
	MissingPieces []string `json:"missing_pieces"`
	Description   string   `json:"description"`
}

// ComboRequest is the deck analysis request body.
type ComboRequest struct {
	Cards     []string `json:"cards"`
	Commander string   `json:"commander,omitempty"`
}

// ComboResponse is the deck analysis response. ProcessingTime is milliseconds.
type ComboResponse struct {
	Combos          []DeckCombo      `json:"combos"`
	PotentialCombos []PotentialCombo `json:"potential_combos"`
	AnalyzedCards   int              `json:"analyzed_cards"`
	ProcessingTime  int64            `json:"processing_time"`
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
