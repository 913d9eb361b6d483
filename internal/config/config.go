package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// MinModels values. Anything above zero forces default team models and
// disables agent application.
const (
	MinModelsOff    = 0
	MinModelsAgents = 1
	MinModelsStrict = 2
)

// Config holds the plugin configuration. A config that fails validation is
// fatal at load time; nothing starts with a half-valid config.
type Config struct {
	// Backend service
	BackendProtocol string `validate:"required,oneof=http https"`
	BackendHostname string `validate:"required,hostname_rfc1123"`
	APIKey          string
	CatalogURL      string `validate:"omitempty,url"`

	// Behavior toggles
	RefreshCooldownSeconds int `validate:"gte=0"`
	FallbackTeamLookup     bool
	WearCacheFix           bool
	IgnoreBotKills         bool
	MinModels              int `validate:"oneof=0 1 2"`

	// Operator-pinned loadouts, loaded once at startup when the file exists
	PinnedLoadoutsPath string

	// Ops surface
	OpsPort int `validate:"gt=0,lte=65535"`

	// Logging
	LogLevel    string
	LogFormat   string
	ServiceName string
	Version     string
	Environment string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		BackendProtocol:    getEnv("BACKEND_PROTOCOL", "https"),
		BackendHostname:    getEnv("BACKEND_HOSTNAME", ""),
		APIKey:             getEnv("API_KEY", ""),
		CatalogURL:         getEnv("CATALOG_URL", ""),
		PinnedLoadoutsPath: getEnv("PINNED_LOADOUTS_PATH", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		ServiceName:        getEnv("SERVICE_NAME", "paintkit"),
		Version:            getEnv("VERSION", "dev"),
		Environment:        getEnv("ENVIRONMENT", "dev"),
	}

	var err error
	if cfg.RefreshCooldownSeconds, err = getEnvInt("REFRESH_COOLDOWN_SECONDS", 60); err != nil {
		return nil, err
	}
	if cfg.OpsPort, err = getEnvInt("OPS_PORT", 9090); err != nil {
		return nil, err
	}
	if cfg.MinModels, err = getEnvInt("MINIMUM_MODELS", MinModelsOff); err != nil {
		return nil, err
	}
	cfg.FallbackTeamLookup = getEnvBool("FALLBACK_TEAM_LOOKUP", false)
	cfg.WearCacheFix = getEnvBool("WEAR_CACHE_FIX", true)
	cfg.IgnoreBotKills = getEnvBool("IGNORE_BOT_KILLS", false)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config against its constraints.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// BackendBaseURL returns the root URL of the inventory backend.
func (c *Config) BackendBaseURL() string {
	return fmt.Sprintf("%s://%s", c.BackendProtocol, c.BackendHostname)
}

// AgentsEnabled reports whether agent models may be applied.
func (c *Config) AgentsEnabled() bool {
	return c.MinModels == MinModelsOff
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
