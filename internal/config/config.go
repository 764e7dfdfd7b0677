package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// EnvTelegramToken overrides the telegramToken config key.
	EnvTelegramToken = "SHIFTBOT_TELEGRAM_TOKEN"
	// EnvServiceAccount overrides the serviceAccount config key.
	EnvServiceAccount = "SHIFTBOT_SERVICE_ACCOUNT"

	defaultRequestsSheet = "Requests"
	defaultManagersSheet = "Managers"
	defaultHorizonDays   = 60
	defaultStoreTimeout  = 10
)

// Config represents the application configuration
type Config struct {
	TelegramToken string `yaml:"telegramToken" validate:"required"`
	SpreadsheetID string `yaml:"spreadsheetID" validate:"required"`
	RequestsSheet string `yaml:"requestsSheet,omitempty"`
	ManagersSheet string `yaml:"managersSheet,omitempty"`

	// ServiceAccount is either a path to a Google service account key file
	// or the key JSON itself (detected by a leading "{").
	ServiceAccount string `yaml:"serviceAccount" validate:"required"`

	HorizonDays         int `yaml:"horizonDays,omitempty" validate:"omitempty,min=1"`
	StoreTimeoutSeconds int `yaml:"storeTimeoutSeconds,omitempty" validate:"omitempty,min=1"`

	// ConditionalWrites enables the compare-and-swap reservation path. Leave
	// false unless the spreadsheet is fronted by a store that can apply
	// conditional updates.
	ConditionalWrites bool `yaml:"conditionalWrites,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from shiftbot.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// applyEnvOverrides lets environment variables win over file values, so
// deployments can keep credentials out of the config file
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv(EnvTelegramToken); token != "" {
		cfg.TelegramToken = token
	}
	if sa := os.Getenv(EnvServiceAccount); sa != "" {
		cfg.ServiceAccount = sa
	}
}

// applyDefaults fills in defaults for optional keys
func applyDefaults(cfg *Config) {
	if cfg.RequestsSheet == "" {
		cfg.RequestsSheet = defaultRequestsSheet
	}
	if cfg.ManagersSheet == "" {
		cfg.ManagersSheet = defaultManagersSheet
	}
	if cfg.HorizonDays == 0 {
		cfg.HorizonDays = defaultHorizonDays
	}
	if cfg.StoreTimeoutSeconds == 0 {
		cfg.StoreTimeoutSeconds = defaultStoreTimeout
	}
}

// findConfigFile searches for shiftbot.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "shiftbot.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
