package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		TelegramToken:  "123456:ABC-token",
		SpreadsheetID:  "sheet123",
		ServiceAccount: "service_account.json",
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_MissingRequiredField(t *testing.T) {
	cfg := &Config{
		TelegramToken: "123456:ABC-token",
		// Missing SpreadsheetID
		ServiceAccount: "service_account.json",
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_NegativeHorizon(t *testing.T) {
	cfg := &Config{
		TelegramToken:  "123456:ABC-token",
		SpreadsheetID:  "sheet123",
		ServiceAccount: "service_account.json",
		HorizonDays:    -1,
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_AppliesDefaults(t *testing.T) {
	configPath := writeConfigFile(t, `
telegramToken: "123456:ABC-token"
spreadsheetID: "sheet123"
serviceAccount: "service_account.json"
`)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "Requests", cfg.RequestsSheet)
	assert.Equal(t, "Managers", cfg.ManagersSheet)
	assert.Equal(t, 60, cfg.HorizonDays)
	assert.Equal(t, 10, cfg.StoreTimeoutSeconds)
	assert.False(t, cfg.ConditionalWrites)
}

func TestLoadFromPath_ExplicitValuesWin(t *testing.T) {
	configPath := writeConfigFile(t, `
telegramToken: "123456:ABC-token"
spreadsheetID: "sheet123"
serviceAccount: "service_account.json"
requestsSheet: "Shifts"
horizonDays: 14
conditionalWrites: true
`)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "Shifts", cfg.RequestsSheet)
	assert.Equal(t, 14, cfg.HorizonDays)
	assert.True(t, cfg.ConditionalWrites)
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	configPath := writeConfigFile(t, `
telegramToken: "file-token"
spreadsheetID: "sheet123"
serviceAccount: "service_account.json"
`)

	t.Setenv(EnvTelegramToken, "env-token")
	t.Setenv(EnvServiceAccount, `{"type": "service_account"}`)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.TelegramToken)
	assert.Equal(t, `{"type": "service_account"}`, cfg.ServiceAccount)
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	configPath := writeConfigFile(t, "telegramToken: [unclosed")

	_, err := LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "shiftbot.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}
