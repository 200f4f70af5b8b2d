package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed playbook.example.toml
var exampleManifest []byte

// Manifest is a playbook definition stored as TOML.
type Manifest struct {
	ID            string   `toml:"id"`
	Name          string   `toml:"name"`
	Prompt        string   `toml:"prompt"`
	Emails        []string `toml:"emails"`
	ConnectorID   int      `toml:"connector_id"`
	ConnectorName string   `toml:"connector_name"`
	Cron          string   `toml:"cron"`
	Status        string   `toml:"status"`
}

// LoadManifest reads and parses a TOML playbook manifest from the specified path.
//
// Unknown keys are rejected so that typos do not silently fall back to defaults.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes manifest TOML from data.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	meta, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse manifest: %v", ErrInvalidConfig, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown manifest keys: %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}

	return &m, nil
}

// ExampleManifest returns the embedded example manifest.
func ExampleManifest() []byte {
	return exampleManifest
}

// CreateManifestFile writes the embedded example manifest to path, refusing to overwrite an existing file.
func CreateManifestFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("manifest already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleManifest, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
