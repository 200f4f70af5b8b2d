package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// APIKeyEnv supplies the API key when the settings file carries none.
	APIKeyEnv = "TEXTQL_API_KEY"
	// ConfigPathEnv overrides the settings file location.
	ConfigPathEnv = "TEXTQL_CONFIG"
	// DefaultBaseURL is the production origin of the playbook service.
	DefaultBaseURL = "https://app.textql.com"

	settingsDirName  = ".textql"
	settingsFileName = "config.json"
	historyFileName  = "history.db"
)

// Settings is the flat record persisted between invocations.
//
// A zero DefaultConnectorID means no default connector is set.
type Settings struct {
	APIKey             string `json:"apiKey,omitempty"`
	BaseURL            string `json:"baseUrl,omitempty"`
	DefaultConnectorID int    `json:"defaultConnectorId,omitempty"`
	DefaultCronString  string `json:"defaultCronString,omitempty"`
}

// KeySource names where an API key was found.
type KeySource string

const (
	KeySourceSettings KeySource = "settings"
	KeySourceEnv      KeySource = "env"
)

// APIKeyPrecedence is the order in which API key sources are consulted: the settings file wins over the environment.
var APIKeyPrecedence = []KeySource{KeySourceSettings, KeySourceEnv}

// DefaultSettingsDir returns ~/.textql.
func DefaultSettingsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, settingsDirName), nil
}

// DefaultSettingsPath returns the fixed per-user settings location, ~/.textql/config.json.
func DefaultSettingsPath() (string, error) {
	dir, err := DefaultSettingsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

// HistoryPath returns the history database path that sits next to the settings file at settingsPath.
func HistoryPath(settingsPath string) string {
	return filepath.Join(filepath.Dir(settingsPath), historyFileName)
}

// LoadSettings reads the settings file at path.
//
// A missing file yields an empty record rather than an error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if len(strings.TrimSpace(string(data))) == 0 {
		return &settings, nil
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, path, err)
	}
	return &settings, nil
}

// SaveSettings overwrites the settings file at path with s, creating parent directories as needed.
func SaveSettings(path string, s *Settings) error {
	if s == nil {
		return fmt.Errorf("%w: settings cannot be nil", ErrInvalidConfig)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// UpdateSettings performs a read-modify-write of the whole settings record. No file locking is done.
func UpdateSettings(path string, fn func(*Settings) error) (*Settings, error) {
	settings, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	if err := fn(settings); err != nil {
		return nil, err
	}
	if err := SaveSettings(path, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// ResolveAPIKey walks [APIKeyPrecedence] and returns the first non-empty key with its source.
//
// getenv defaults to [os.Getenv]. Returns [ErrMissingAPIKey] when no source has a key.
func ResolveAPIKey(s *Settings, getenv func(string) string) (string, KeySource, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	for _, source := range APIKeyPrecedence {
		var key string
		switch source {
		case KeySourceSettings:
			if s != nil {
				key = s.APIKey
			}
		case KeySourceEnv:
			key = getenv(APIKeyEnv)
		}
		if key = strings.TrimSpace(key); key != "" {
			return key, source, nil
		}
	}

	return "", "", fmt.Errorf("%w: run 'tqlx config set-api-key --key=<key>' or set %s", ErrMissingAPIKey, APIKeyEnv)
}

// ResolvedBaseURL returns the base URL override, or [DefaultBaseURL] when none is set.
func (s *Settings) ResolvedBaseURL() string {
	if s == nil || strings.TrimSpace(s.BaseURL) == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
}
