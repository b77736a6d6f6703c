package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/decktutor/combo-backend/models"
	"github.com/decktutor/combo-backend/shared"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ComboProvider is the external combo-data source. Implementations are
// selected via explicit configuration, never discovered dynamically.
type ComboProvider interface {
	// GetCardCombos returns the raw combo records involving the named card.
	GetCardCombos(ctx context.Context, cardName string) ([]models.ComboRecord, error)
	// Ping reports whether the provider is reachable.
	Ping(ctx context.Context) error
	// Name identifies the provider in readiness checks and logs.
	Name() string
}

// EDHRECComboService fetches combo data from EDHREC's JSON pages API.
type EDHRECComboService struct {
	baseURL           string
	httpClient        *http.Client
	rateLimiter       *rate.Limiter
	configuration     shared.ServiceConfig
	serviceMetrics    *shared.ServiceMetrics
	httpClientFactory *shared.HTTPClientFactory
}

// NewEDHRECComboService creates an EDHREC-backed combo provider
func NewEDHRECComboService(config shared.ServiceConfig) *EDHRECComboService {
	httpClientFactory := shared.NewHTTPClientFactory(config.HTTPRequestTimeout)
	httpClient := httpClientFactory.CreateOptimizedHTTPClient(config.HTTPRequestTimeout)

	var serviceMetrics *shared.ServiceMetrics
	if config.EnableMetrics {
		serviceMetrics = shared.NewServiceMetrics("EDHREC_Combo_Service")
	}

	service := &EDHRECComboService{
		baseURL:           config.BaseURL,
		httpClient:        httpClient,
		rateLimiter:       rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		configuration:     config,
		serviceMetrics:    serviceMetrics,
		httpClientFactory: httpClientFactory,
	}

	logrus.WithFields(logrus.Fields{
		"component":    "EDHRECComboService",
		"base_url":     service.baseURL,
		"http_timeout": config.HTTPRequestTimeout,
		"rate_limit":   config.RequestsPerSecond,
	}).Info("EDHREC combo service initialized")

	return service
}

// edhrecComboPage mirrors the JSON pages API response for a card's combos.
type edhrecComboPage struct {
	Container *edhrecContainer `json:"container"`
}

type edhrecContainer struct {
	JSONDict *edhrecJSONDict `json:"json_dict"`
	Title    string          `json:"title"`
}

type edhrecJSONDict struct {
	CardLists []*edhrecCardList `json:"cardlists"`
	Card      *edhrecCardInfo   `json:"card"`
}

// edhrecCardList is one combo on the page: the tag carries the combo id,
// the header the result text, and the cardviews the combo's card set.
type edhrecCardList struct {
	Tag       string            `json:"tag"`
	Header    string            `json:"header"`
	HRef      string            `json:"href"`
	CardViews []*edhrecCardView `json:"cardviews"`
}

type edhrecCardView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Sanitized string `json:"sanitized"`
	URL       string `json:"url"`
}

type edhrecCardInfo struct {
	Name          string   `json:"name"`
	ColorIdentity []string `json:"color_identity"`
}

// SanitizeCardName converts a card name to EDHREC's URL format
func SanitizeCardName(name string) string {
	sanitized := strings.ToLower(name)
	sanitized = strings.ReplaceAll(sanitized, " ", "-")
	sanitized = strings.ReplaceAll(sanitized, "'", "")
	sanitized = strings.ReplaceAll(sanitized, ",", "")
	sanitized = strings.ReplaceAll(sanitized, ":", "")
	return sanitized
}

// Name implements ComboProvider
func (s *EDHRECComboService) Name() string {
	return "edhrec"
}

// GetCardCombos fetches the combos page for a card and converts each combo
// list into a raw record. A missing page (404/403) means the card has no
// known combos and is returned as empty data with no error.
func (s *EDHRECComboService) GetCardCombos(ctx context.Context, cardName string) ([]models.ComboRecord, error) {
	startTime := time.Now()

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryTimeout, shared.CodeProviderCallFailure,
			"EDHREC_Combo_Service", "GetCardCombos", true)
	}

	url := fmt.Sprintf("%s/combos/%s.json", s.baseURL, SanitizeCardName(cardName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, shared.CodeProviderCallFailure,
			"EDHREC_Combo_Service", "GetCardCombos", false)
	}
	shared.SetJSONAPIHeaders(req)

	resp, err := shared.ExecuteHTTPRequestWithRetry(s.httpClient, req, s.configuration.MaxRetryAttempts)
	if err != nil {
		s.recordRequest(false, time.Since(startTime))
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, shared.CodeProviderCallFailure,
			"EDHREC_Combo_Service", "GetCardCombos", true)
	}
	defer func() { _ = resp.Body.Close() }()

	// Cards without a combos page are valid no-data results
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
		s.recordRequest(true, time.Since(startTime))
		logrus.WithFields(logrus.Fields{
			"component": "EDHRECComboService",
			"card_name": cardName,
		}).Debug("No combo page for card")
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		s.recordRequest(false, time.Since(startTime))
		return nil, shared.NewServiceError(shared.ErrorCategoryNetwork, shared.CodeProviderCallFailure,
			fmt.Sprintf("unexpected status code %d for card %s", resp.StatusCode, cardName),
			"EDHREC_Combo_Service", "GetCardCombos", true, nil)
	}

	var page edhrecComboPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		s.recordRequest(false, time.Since(startTime))
		return nil, shared.WrapError(err, shared.ErrorCategoryProcessing, shared.CodeProviderCallFailure,
			"EDHREC_Combo_Service", "GetCardCombos", false)
	}

	records := s.extractComboRecords(&page)
	s.recordRequest(true, time.Since(startTime))

	logrus.WithFields(logrus.Fields{
		"component": "EDHRECComboService",
		"card_name": cardName,
		"combos":    len(records),
	}).Debug("Fetched combo records")

	return records, nil
}

// extractComboRecords converts the page's combo card lists into raw records
func (s *EDHRECComboService) extractComboRecords(page *edhrecComboPage) []models.ComboRecord {
	if page.Container == nil || page.Container.JSONDict == nil {
		return nil
	}

	var colorIdentity []string
	if page.Container.JSONDict.Card != nil {
		colorIdentity = page.Container.JSONDict.Card.ColorIdentity
	}

	var records []models.ComboRecord
	for _, cardList := range page.Container.JSONDict.CardLists {
		if cardList == nil || len(cardList.CardViews) == 0 {
			continue
		}

		cards := make([]string, 0, len(cardList.CardViews))
		for _, view := range cardList.CardViews {
			if view != nil && view.Name != "" {
				cards = append(cards, view.Name)
			}
		}
		if len(cards) == 0 {
			continue
		}

		sourceURL := cardList.HRef
		if sourceURL != "" && strings.HasPrefix(sourceURL, "/") {
			sourceURL = "https://edhrec.com" + sourceURL
		}

		records = append(records, models.ComboRecord{
			ID:            cardList.Tag,
			Name:          cardList.Header,
			Cards:         cards,
			Result:        cardList.Header,
			ColorIdentity: colorIdentity,
			SourceURL:     sourceURL,
		})
	}

	return records
}

// Ping verifies the EDHREC API is reachable by fetching a card page that is
// known to exist.
func (s *EDHRECComboService) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/cards/sol-ring.json", s.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	shared.SetJSONAPIHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return shared.WrapError(err, shared.ErrorCategoryNetwork, shared.CodeProviderUnavailable,
			"EDHREC_Combo_Service", "Ping", true)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return shared.NewServiceError(shared.ErrorCategoryNetwork, shared.CodeProviderUnavailable,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			"EDHREC_Combo_Service", "Ping", true, nil)
	}

	return nil
}

// Metrics exposes the service metrics tracker, nil when metrics are disabled
func (s *EDHRECComboService) Metrics() *shared.ServiceMetrics {
	return s.serviceMetrics
}

func (s *EDHRECComboService) recordRequest(success bool, elapsed time.Duration) {
	if s.serviceMetrics != nil {
		s.serviceMetrics.RecordRequest(success, elapsed)
	}
}

// NullComboService is the provider used in environments without combo data
// access. Every lookup yields empty data; readiness reports unavailable.
type NullComboService struct{}

// NewNullComboService creates a provider that always returns no data
func NewNullComboService() *NullComboService {
	return &NullComboService{}
}

// Name implements ComboProvider
func (s *NullComboService) Name() string {
	return "none"
}

// GetCardCombos implements ComboProvider with empty data
func (s *NullComboService) GetCardCombos(ctx context.Context, cardName string) ([]models.ComboRecord, error) {
	return nil, nil
}

// Ping implements ComboProvider; the null provider is never available
func (s *NullComboService) Ping(ctx context.Context) error {
	return shared.NewServiceError(shared.ErrorCategoryConfiguration, shared.CodeProviderUnavailable,
		"combo data provider is not configured", "Null_Combo_Service", "Ping", false, nil)
}
