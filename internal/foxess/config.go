package foxess

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.foxesscloud.com"

// Config defines runtime configuration for the FoxESS client.
type Config struct {
	// APIKey is the cloud API key; it doubles as the bearer token.
	APIKey string
	// BaseURL overrides the vendor endpoint, mainly for tests.
	BaseURL string
	// Timezone is sent in the timezone header. Empty means the
	// machine's local zone, falling back to UTC when that zone has
	// no stable name.
	Timezone string
}

// FromEnv builds a Config from FOXESS_* environment variables. The
// key comes from FOXESS_API_KEY or, preferably for deployments, a
// file named by FOXESS_API_KEY_FILE.
func FromEnv() (Config, error) {
	cfg := Config{
		APIKey:   strings.TrimSpace(os.Getenv("FOXESS_API_KEY")),
		BaseURL:  strings.TrimSpace(os.Getenv("FOXESS_BASE_URL")),
		Timezone: strings.TrimSpace(os.Getenv("FOXESS_TIMEZONE")),
	}

	if path := strings.TrimSpace(os.Getenv("FOXESS_API_KEY_FILE")); path != "" {
		keyBytes, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read api key file: %w", err)
		}
		cfg.APIKey = strings.TrimSpace(string(keyBytes))
	}

	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("FOXESS_API_KEY or FOXESS_API_KEY_FILE must be set")
	}

	return cfg, nil
}

func (c Config) baseURL() string {
	if c.BaseURL == "" {
		return defaultBaseURL
	}
	return strings.TrimSuffix(c.BaseURL, "/")
}

func (c Config) timezone() string {
	if c.Timezone != "" {
		return c.Timezone
	}
	name := time.Now().Location().String()
	if name == "" || name == "Local" {
		return "UTC"
	}
	return name
}
