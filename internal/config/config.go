package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (LIFERX_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: LIFERX_INTERNAL_SECRET -> internal_secret,
	// LIFERX_LLM.API_KEY -> llm.api_key, etc.
	if err := k.Load(env.Provider("LIFERX_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "LIFERX_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validEnvs is the set of recognized runtime environments.
var validEnvs = map[RuntimeEnv]bool{
	EnvDevelopment: true,
	EnvProduction:  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if !validEnvs[c.Env] {
		return fmt.Errorf("invalid env %q: must be one of development, production", c.Env)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Env == EnvProduction && c.InternalSecret == "" {
		return fmt.Errorf("internal_secret is required outside development")
	}

	if c.Pipelines.MaxQuoteCards < 0 {
		return fmt.Errorf("pipelines.max_quote_cards must be non-negative")
	}

	if c.Pipelines.DiscoveryLimit < 0 {
		return fmt.Errorf("pipelines.discovery_limit must be non-negative")
	}

	return nil
}
