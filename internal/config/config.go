// Package config loads and validates the analyzer configuration from YAML.
//
// The configuration is a read-only input to every component: the synthesis
// core consumes only the tuning parameters (process count targets, step
// bound, cycle-detection flag, identifier length), while the provider
// section belongs to the reasoning-service collaborator.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts both "120s" strings and
// bare nanosecond integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration %v", value.Value)
	}
	*d = Duration(n)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Provider names accepted in the provider section.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config is the root configuration document.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Ident    IdentConfig    `yaml:"identifier"`
	Output   OutputConfig   `yaml:"output"`
	Debug    bool           `yaml:"debug"`
}

// ProviderConfig selects and configures the reasoning service.
type ProviderConfig struct {
	Name   string       `yaml:"name"`
	Ollama OllamaConfig `yaml:"ollama"`
	OpenAI OpenAIConfig `yaml:"openai"`
}

// OllamaConfig configures a local Ollama endpoint.
type OllamaConfig struct {
	URL         string        `yaml:"url"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     Duration      `yaml:"timeout"`
}

// OpenAIConfig configures the OpenAI chat-completions API.
type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     Duration      `yaml:"timeout"`
}

// AnalysisConfig tunes the synthesis pipeline.
//
// MinProcesses and MaxProcesses are informational: they shape the detection
// prompt and the confidence heuristic, never hard validation. MaxSteps is a
// hard bound; records exceeding it are dropped.
type AnalysisConfig struct {
	MinProcesses   int  `yaml:"min_processes"`
	MaxProcesses   int  `yaml:"max_processes"`
	MaxSteps       int  `yaml:"max_steps_per_process"`
	CycleDetection bool `yaml:"cycle_detection"`
}

// IdentConfig tunes identifier sanitization.
type IdentConfig struct {
	MaxLength int `yaml:"max_length"`
}

// OutputConfig controls document export.
type OutputConfig struct {
	Format          string `yaml:"format"` // "json" | "yaml"
	Pretty          bool   `yaml:"pretty"`
	IncludeMetadata bool   `yaml:"include_metadata"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Provider: ProviderConfig{
			Name: ProviderOllama,
			Ollama: OllamaConfig{
				URL:         "http://localhost:11434",
				Model:       "nous-hermes2",
				MaxTokens:   4000,
				Temperature: 0.05,
				Timeout:     Duration(120 * time.Second),
			},
			OpenAI: OpenAIConfig{
				Model:       "gpt-4",
				MaxTokens:   4000,
				Temperature: 0.05,
				Timeout:     Duration(120 * time.Second),
			},
		},
		Analysis: AnalysisConfig{
			MinProcesses:   3,
			MaxProcesses:   6,
			MaxSteps:       10,
			CycleDetection: true,
		},
		Ident: IdentConfig{MaxLength: 50},
		Output: OutputConfig{
			Format:          "json",
			Pretty:          true,
			IncludeMetadata: true,
		},
	}
}

// Load reads a YAML configuration file over the defaults: fields absent
// from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate returns every configuration problem found, empty when valid.
func (c Config) Validate() []string {
	var problems []string

	switch c.Provider.Name {
	case ProviderOllama, ProviderOpenAI:
	default:
		problems = append(problems, fmt.Sprintf("provider.name: unknown provider %q", c.Provider.Name))
	}
	if c.Provider.Name == ProviderOpenAI && strings.TrimSpace(c.Provider.OpenAI.APIKey) == "" {
		problems = append(problems, "provider.openai.api_key: required when provider is openai")
	}

	if c.Analysis.MinProcesses < 1 {
		problems = append(problems, "analysis.min_processes: must be at least 1")
	}
	if c.Analysis.MaxProcesses < c.Analysis.MinProcesses {
		problems = append(problems, "analysis.max_processes: must be >= analysis.min_processes")
	}
	if c.Analysis.MaxSteps < 1 {
		problems = append(problems, "analysis.max_steps_per_process: must be at least 1")
	}

	if c.Ident.MaxLength < 1 {
		problems = append(problems, "identifier.max_length: must be at least 1")
	}

	switch c.Output.Format {
	case "json", "yaml":
	default:
		problems = append(problems, fmt.Sprintf("output.format: must be json or yaml, got %q", c.Output.Format))
	}

	return problems
}
