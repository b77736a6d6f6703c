package shared

import "time"

// ServiceConfig holds HTTP provider service configuration
type ServiceConfig struct {
	BaseURL            string        `json:"base_url"`
	HTTPRequestTimeout time.Duration `json:"http_timeout"`
	RequestsPerSecond  float64       `json:"requests_per_second"`
	MaxRetryAttempts   int           `json:"max_retries"`
	EnableMetrics      bool          `json:"enable_metrics"`
}

// NewEDHRECServiceConfig returns production-ready defaults for the EDHREC
// JSON pages API. The rate limit keeps the service polite toward EDHREC.
func NewEDHRECServiceConfig() ServiceConfig {
	return ServiceConfig{
		BaseURL:            "https://json.edhrec.com/pages",
		HTTPRequestTimeout: 30 * time.Second,
		RequestsPerSecond:  2.0,
		MaxRetryAttempts:   2,
		EnableMetrics:      true,
	}
}
