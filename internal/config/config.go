package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the top-level maestro configuration.
type Config struct {
	// Model configures the chat model collaborator.
	Model ModelConfig `json:"model" mapstructure:"model"`

	// Run configures orchestration behavior.
	Run RunConfig `json:"run" mapstructure:"run"`

	// Workspace is the filesystem root passed to tool invocations.
	Workspace string `json:"workspace" mapstructure:"workspace"`

	// Logging configures the zerolog sink.
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ModelConfig holds chat model settings.
type ModelConfig struct {
	Provider    string  `json:"provider" mapstructure:"provider"` // anthropic, openai
	Name        string  `json:"name" mapstructure:"name"`
	APIKey      string  `json:"api_key" mapstructure:"api_key"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries  int     `json:"max_retries" mapstructure:"max_retries"`
}

// RunConfig holds orchestration settings.
type RunConfig struct {
	MaxSteps          int           `json:"max_steps" mapstructure:"max_steps"`
	MaxContextTokens  int           `json:"max_context_tokens" mapstructure:"max_context_tokens"`
	Planning          bool          `json:"planning" mapstructure:"planning"`
	Replan            bool          `json:"replan" mapstructure:"replan"`
	MaxPlanIterations int           `json:"max_plan_iterations" mapstructure:"max_plan_iterations"`
	ToolTimeout       time.Duration `json:"tool_timeout" mapstructure:"tool_timeout"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "anthropic",
			Name:        "claude-sonnet-4-5",
			Temperature: 0.7,
			MaxTokens:   4096,
			MaxRetries:  3,
		},
		Run: RunConfig{
			MaxSteps:         50,
			MaxContextTokens: 100000,
			Planning:         true,
			Replan:           true,
			ToolTimeout:      30 * time.Second,
		},
		Workspace: ".",
		Logging: LoggingConfig{
			Level:     "info",
			Console:   true,
			Redaction: true,
		},
	}
}

// Validate checks the configuration and returns a descriptive error for
// the first problem found.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "anthropic", "openai":
	case "":
		return fmt.Errorf("model provider cannot be empty")
	default:
		return fmt.Errorf("unsupported model provider: %s", c.Model.Provider)
	}

	if c.Model.Name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if err := validateAPIKey(c.Model.APIKey, c.Model.Provider); err != nil {
		return err
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1")
	}
	if c.Model.MaxTokens < 0 {
		return fmt.Errorf("max tokens cannot be negative")
	}
	if c.Model.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	if c.Run.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive")
	}
	if c.Run.MaxContextTokens < 0 {
		return fmt.Errorf("max context tokens cannot be negative")
	}
	if c.Run.MaxPlanIterations < 0 {
		return fmt.Errorf("max plan iterations cannot be negative")
	}
	if c.Run.ToolTimeout < 0 {
		return fmt.Errorf("tool timeout cannot be negative")
	}

	return nil
}

func validateAPIKey(key, provider string) error {
	if key == "" {
		return fmt.Errorf("%s API key cannot be empty", provider)
	}
	switch provider {
	case "anthropic":
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
		}
	case "openai":
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format (should start with sk-)")
		}
	}
	return nil
}
