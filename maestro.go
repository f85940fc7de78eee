// Package maestro assembles the orchestration harness from its
// configuration: logging, the chat model, the core tool set, and the run
// graph. It is the entry point for embedding a configured agent run.
package maestro

import (
	"context"
	"fmt"

	"github.com/harun/maestro/internal/config"
	"github.com/harun/maestro/internal/logger"
	"github.com/harun/maestro/pkg/coretools"
	"github.com/harun/maestro/pkg/graph"
	"github.com/harun/maestro/pkg/prompt"
	"github.com/harun/maestro/pkg/provider"
	"github.com/harun/maestro/pkg/tool"
)

// Harness is a fully assembled agent runner. Build one with New, drive it
// with Run, and Close it when done to release the log file handle.
type Harness struct {
	cfg    *config.Config
	graph  *graph.Graph
	model  provider.ChatModel
	logger *logger.Logger
}

type options struct {
	configPath string
	model      provider.ChatModel
	registry   *tool.Registry
	store      graph.RunStore
	templates  prompt.Templates
}

// Option customizes harness assembly.
type Option func(*options)

// WithConfigPath reads configuration from the given file instead of the
// default location under the user's home directory.
func WithConfigPath(path string) Option {
	return func(o *options) { o.configPath = path }
}

// WithModel substitutes the chat model, bypassing provider construction
// and the configured retry policy. The config's model name, temperature,
// and token limit still shape each request.
func WithModel(m provider.ChatModel) Option {
	return func(o *options) { o.model = m }
}

// WithRegistry substitutes a pre-populated tool registry. The caller is
// responsible for registering a completion tool; the core tools are only
// added to the default registry.
func WithRegistry(reg *tool.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithStore attaches a run archive that receives every finished outcome.
func WithStore(s graph.RunStore) Option {
	return func(o *options) { o.store = s }
}

// WithTemplates overrides the builtin node prompts.
func WithTemplates(t prompt.Templates) Option {
	return func(o *options) { o.templates = t }
}

// New loads configuration and assembles the harness: logger, chat model
// with retry, core tool registry, and the orchestration graph. Model
// settings are only validated when the model is built from config; an
// injected model carries its own credentials.
func New(opts ...Option) (*Harness, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.NewLoader(o.configPath).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   cfg.Logging.Console,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	model := o.model
	if model == nil {
		if err := cfg.Validate(); err != nil {
			lg.Close()
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		base, err := provider.New(cfg.Model.Provider, cfg.Model.APIKey)
		if err != nil {
			lg.Close()
			return nil, err
		}
		model = base
		if cfg.Model.MaxRetries > 0 {
			model = provider.WithRetry(base, cfg.Model.MaxRetries)
		}
	}

	registry := o.registry
	if registry == nil {
		registry = tool.NewRegistry()
		if err := coretools.Register(registry, coretools.Options{WorkspaceRoot: cfg.Workspace}); err != nil {
			lg.Close()
			return nil, fmt.Errorf("failed to register core tools: %w", err)
		}
	}

	zl := lg.Zerolog()
	g, err := graph.New(graph.Config{
		Model:             model,
		Registry:          registry,
		Workdir:           cfg.Workspace,
		Family:            provider.Family(cfg.Model.Provider),
		ModelName:         cfg.Model.Name,
		Temperature:       cfg.Model.Temperature,
		MaxTokens:         cfg.Model.MaxTokens,
		Templates:         o.templates,
		MaxSteps:          cfg.Run.MaxSteps,
		Planning:          cfg.Run.Planning,
		Replan:            cfg.Run.Replan,
		MaxPlanIterations: cfg.Run.MaxPlanIterations,
		MaxContextTokens:  cfg.Run.MaxContextTokens,
		ToolTimeout:       cfg.Run.ToolTimeout,
		Store:             o.store,
		Logger:            &zl,
	})
	if err != nil {
		lg.Close()
		return nil, err
	}

	return &Harness{cfg: cfg, graph: g, model: model, logger: lg}, nil
}

// Run executes one task through the orchestration graph.
func (h *Harness) Run(ctx context.Context, task string) (*graph.Outcome, error) {
	return h.graph.Run(ctx, task)
}

// Workspace returns the filesystem root tool invocations operate under.
func (h *Harness) Workspace() string {
	return h.cfg.Workspace
}

// ModelName returns the adapter name of the assembled chat model.
func (h *Harness) ModelName() string {
	return h.model.Name()
}

// Close releases resources held by the harness.
func (h *Harness) Close() error {
	return h.logger.Close()
}
