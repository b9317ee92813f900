package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonemit/internal/errors"
)

// Supported key cases
const (
	KeyCaseKeep           = ""
	KeyCaseSnake          = "snake"
	KeyCaseScreamingSnake = "screaming_snake"
	KeyCaseKebab          = "kebab"
	KeyCaseCamel          = "camel"
	KeyCaseLowerCamel     = "lower_camel"
)

// Config represents the complete configuration for jsonemit
type Config struct {
	Output OutputConfig `yaml:"output"`
	Keys   KeysConfig   `yaml:"keys"`
	Dev    DevConfig    `yaml:"dev"`
}

// OutputConfig controls how documents are rendered
type OutputConfig struct {
	Compact         bool `yaml:"compact"`
	TrailingNewline bool `yaml:"trailing_newline"`
}

// KeysConfig controls how object keys are rewritten while the tree is built
type KeysConfig struct {
	Case     string            `yaml:"case"`
	Mappings map[string]string `yaml:"mappings"`
	Skip     []string          `yaml:"skip"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// Overrides holds values given on the command line. Nil pointers mean "not set".
type Overrides struct {
	Compact *bool
	KeyCase *string
	Debug   *bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Compact:         false,
			TrailingNewline: true,
		},
		Keys: KeysConfig{
			Case:     KeyCaseKeep,
			Mappings: make(map[string]string),
			Skip:     []string{},
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file '%s'", path), err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to parse config file '%s'", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonemit.yml", ".jsonemit.yaml", "jsonemit.yml", "jsonemit.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks values that YAML decoding cannot
func (c *Config) Validate() error {
	if !ValidKeyCase(c.Keys.Case) {
		return errors.NewConfigError(fmt.Sprintf("unknown key case '%s'", c.Keys.Case), errors.ErrInvalidKeyCase)
	}
	return nil
}

// ValidKeyCase reports whether name is one of the supported key cases
func ValidKeyCase(name string) bool {
	switch name {
	case KeyCaseKeep, KeyCaseSnake, KeyCaseScreamingSnake, KeyCaseKebab, KeyCaseCamel, KeyCaseLowerCamel:
		return true
	}
	return false
}

// KeyName returns the output key for an input key. Explicit mappings win over the
// configured case.
func (c *Config) KeyName(key string) string {
	if mapped, exists := c.Keys.Mappings[key]; exists {
		return mapped
	}

	switch c.Keys.Case {
	case KeyCaseSnake:
		return strcase.ToSnake(key)
	case KeyCaseScreamingSnake:
		return strcase.ToScreamingSnake(key)
	case KeyCaseKebab:
		return strcase.ToKebab(key)
	case KeyCaseCamel:
		return strcase.ToCamel(key)
	case KeyCaseLowerCamel:
		return strcase.ToLowerCamel(key)
	default:
		return key
	}
}

// ShouldSkipKey checks if a key is dropped from objects
func (c *Config) ShouldSkipKey(key string) bool {
	for _, skip := range c.Keys.Skip {
		if skip == key {
			return true
		}
	}
	return false
}

// LoadConfigWithCLI loads config with CLI argument precedence. An empty configPath
// means defaults only.
func LoadConfigWithCLI(configPath string, overrides Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if overrides.Compact != nil {
		cfg.Output.Compact = *overrides.Compact
	}
	if overrides.KeyCase != nil {
		cfg.Keys.Case = *overrides.KeyCase
	}
	if overrides.Debug != nil {
		cfg.Dev.Debug = *overrides.Debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
