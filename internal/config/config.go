// Package config loads .calmlint.yaml files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

// FileName is the project-level config file looked up by Load.
const FileName = ".calmlint.yaml"

// Config is the complete calmlint configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Output   OutputConfig   `yaml:"output"`
	Rules    RulesConfig    `yaml:"rules"`
	Watch    WatchConfig    `yaml:"watch"`
	Validate ValidateConfig `yaml:"validate"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// OutputConfig configures how diagnostics are written to stdout.
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=text json"`
	// Color is auto, always or never. Auto colors only terminals.
	Color string `yaml:"color" validate:"oneof=auto always never"`
}

// RulesConfig adjusts the built-in rule set.
type RulesConfig struct {
	Disabled []string          `yaml:"disabled" validate:"dive,required"`
	Severity map[string]string `yaml:"severity" validate:"dive,keys,required,endkeys,oneof=error warning err warn"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
}

// ValidateConfig configures the validate command.
type ValidateConfig struct {
	// Concurrency bounds how many documents are validated at once.
	Concurrency int `yaml:"concurrency" validate:"gte=1,lte=256"`
}

var validate = validator.New()

// Default returns a Config with defaults for every field.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "warn", Format: "console"},
		Output:   OutputConfig{Format: "text", Color: "auto"},
		Watch:    WatchConfig{Debounce: 200 * time.Millisecond},
		Validate: ValidateConfig{Concurrency: 4},
	}
}

// Check verifies every field constraint and reports all violations at once.
func (c *Config) Check() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %v fails %q", fieldPath(fe), fe.Value(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// fieldPath renders a validator namespace such as Config.Rules.Severity[x]
// with the yaml key names users write.
func fieldPath(fe validator.FieldError) string {
	ns := strings.TrimPrefix(fe.Namespace(), "Config.")
	return strings.ToLower(ns)
}

// LoadFromFile reads one config layer. Keys absent from the file stay at
// their zero value so that Merge leaves lower layers alone.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return c, nil
}

// Merge overlays the non-zero values of other onto c. Severity maps are
// merged key by key. A disabled list that is set, even to [], replaces the
// lower layer's list.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.Color != "" {
		c.Output.Color = other.Output.Color
	}
	if other.Rules.Disabled != nil {
		c.Rules.Disabled = append([]string{}, other.Rules.Disabled...)
	}
	if len(other.Rules.Severity) > 0 {
		if c.Rules.Severity == nil {
			c.Rules.Severity = make(map[string]string, len(other.Rules.Severity))
		}
		for k, v := range other.Rules.Severity {
			c.Rules.Severity[k] = v
		}
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Validate.Concurrency != 0 {
		c.Validate.Concurrency = other.Validate.Concurrency
	}
}

func marshal(c *Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// Severities converts the severity overrides to engine values.
func (c *Config) Severities() (map[string]calm.Severity, error) {
	out := make(map[string]calm.Severity, len(c.Rules.Severity))
	for name, s := range c.Rules.Severity {
		sev, err := calm.ParseSeverity(s)
		if err != nil {
			return nil, fmt.Errorf("rules.severity.%s: %w", name, err)
		}
		out[name] = sev
	}
	return out, nil
}
