package config

import (
	"fmt"
	"os"
	"strconv"
)

// Analysis backend identifiers
const (
	BackendBedrock = "bedrock"
	BackendChat    = "chat"
)

// Market data provider identifiers
const (
	ProviderAlpaca       = "alpaca"
	ProviderAlphaVantage = "alphavantage"
)

// Config holds all application configuration
type Config struct {
	// Analysis backend configuration
	Analysis AnalysisConfig

	// External data provider configurations
	Alpaca       AlpacaConfig
	AlphaVantage AlphaVantageConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// AnalysisConfig selects and configures the remote analysis backend
type AnalysisConfig struct {
	Backend string // bedrock or chat

	// Chat-completion backend
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64

	// Bedrock backend
	AWSRegion        string
	BedrockModelID   string
	BedrockMaxTokens int

	// Round-trip bound on the remote call, in seconds
	TimeoutSeconds int
}

// AlpacaConfig holds Alpaca market data credentials
type AlpacaConfig struct {
	APIKey    string
	APISecret string
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr               string
	CORSAllowedOrigins string
	MarketDataProvider string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Analysis: AnalysisConfig{
			Backend:          getEnvString("ANALYSIS_BACKEND", BackendChat),
			APIKey:           os.Getenv("ANALYSIS_API_KEY"),
			BaseURL:          getEnvString("CHAT_BASE_URL", "https://api.openai.com/v1/chat/completions"),
			Model:            getEnvString("CHAT_MODEL", "gpt-4o"),
			MaxTokens:        getEnvInt("CHAT_MAX_TOKENS", 1000),
			Temperature:      getEnvFloat("CHAT_TEMPERATURE", 0.2),
			AWSRegion:        os.Getenv("AWS_REGION"),
			BedrockModelID:   os.Getenv("BEDROCK_MODEL_ID"),
			BedrockMaxTokens: getEnvInt("BEDROCK_MAX_TOKENS", 1000),
			TimeoutSeconds:   getEnvInt("ANALYSIS_TIMEOUT_SECONDS", 60),
		},
		Alpaca: AlpacaConfig{
			APIKey:    os.Getenv("ALPACA_API_KEY"),
			APISecret: os.Getenv("ALPACA_API_SECRET"),
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		},
		HTTP: HTTPConfig{
			Addr:               getEnvString("HTTP_ADDR", ":8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			MarketDataProvider: getEnvString("MARKET_DATA_PROVIDER", ProviderAlphaVantage),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration. A missing analysis credential is a
// fatal configuration error: startup stops before any remote call could be
// attempted without it.
func (c *Config) Validate() error {
	switch c.Analysis.Backend {
	case BackendChat:
		if c.Analysis.APIKey == "" {
			return fmt.Errorf("ANALYSIS_API_KEY is required for the chat analysis backend")
		}
	case BackendBedrock:
		if c.Analysis.AWSRegion == "" || c.Analysis.BedrockModelID == "" {
			return fmt.Errorf("AWS_REGION and BEDROCK_MODEL_ID are required for the bedrock analysis backend")
		}
	default:
		return fmt.Errorf("ANALYSIS_BACKEND must be %q or %q, got %q", BackendBedrock, BackendChat, c.Analysis.Backend)
	}

	switch c.HTTP.MarketDataProvider {
	case ProviderAlpaca:
		if c.Alpaca.APIKey == "" || c.Alpaca.APISecret == "" {
			return fmt.Errorf("ALPACA_API_KEY and ALPACA_API_SECRET are required for the alpaca provider")
		}
	case ProviderAlphaVantage:
		if c.AlphaVantage.APIKey == "" {
			return fmt.Errorf("ALPHA_VANTAGE_API_KEY is required for the alphavantage provider")
		}
	default:
		return fmt.Errorf("MARKET_DATA_PROVIDER must be %q or %q, got %q", ProviderAlpaca, ProviderAlphaVantage, c.HTTP.MarketDataProvider)
	}

	if c.Analysis.TimeoutSeconds <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT_SECONDS must be positive, got %d", c.Analysis.TimeoutSeconds)
	}
	if c.Analysis.MaxTokens <= 0 {
		return fmt.Errorf("CHAT_MAX_TOKENS must be positive, got %d", c.Analysis.MaxTokens)
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Backend:          BackendChat,
			APIKey:           "test-api-key",
			BaseURL:          "https://api.openai.com/v1/chat/completions",
			Model:            "gpt-4o",
			MaxTokens:        1000,
			Temperature:      0.2,
			BedrockMaxTokens: 1000,
			TimeoutSeconds:   60,
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey: "test-api-key",
		},
		HTTP: HTTPConfig{
			Addr:               ":8080",
			CORSAllowedOrigins: "*",
			MarketDataProvider: ProviderAlphaVantage,
		},
	}
}
