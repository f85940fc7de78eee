package tool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 30 * time.Second

// Executor resolves invocations against a registry and runs them. Handler
// faults, panics, timeouts, and validation failures all surface as failed
// Results; Execute never returns an error and never aborts a run.
type Executor struct {
	registry *Registry
	family   ModelFamily
	workdir  string
	timeout  time.Duration
	logger   zerolog.Logger
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	Registry *Registry
	Family   ModelFamily
	Workdir  string
	Timeout  time.Duration
	Logger   *zerolog.Logger
}

// NewExecutor creates an executor bound to a registry and working directory.
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Family == "" {
		cfg.Family = FamilyGeneric
	}
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Executor{
		registry: cfg.Registry,
		family:   cfg.Family,
		workdir:  cfg.Workdir,
		timeout:  cfg.Timeout,
		logger:   logger,
	}, nil
}

// Execute runs a single invocation.
func (e *Executor) Execute(ctx context.Context, inv Invocation) Result {
	start := time.Now()

	handler, err := e.registry.Handler(inv.ToolID, e.family, e.workdir)
	if err != nil {
		e.logger.Warn().Str("tool", inv.ToolID).Msg("Unknown tool invoked")
		return Errf("unknown tool: %s", inv.ToolID)
	}

	if err := e.registry.ValidateArgs(inv.ToolID, e.family, inv.Args); err != nil {
		e.logger.Warn().Str("tool", inv.ToolID).Err(err).Msg("Argument validation failed")
		return Errf("%v", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resultCh := make(chan Result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				resultCh <- Errf("tool %s panicked: %v", inv.ToolID, rec)
			}
		}()
		resultCh <- handler.Execute(execCtx, inv.Args)
	}()

	var result Result
	select {
	case result = <-resultCh:
	case <-execCtx.Done():
		if execCtx.Err() == context.DeadlineExceeded {
			result = Errf("tool %s timed out after %s", inv.ToolID, e.timeout)
		} else {
			result = Errf("tool %s cancelled: %v", inv.ToolID, execCtx.Err())
		}
	}

	// The completion signal always carries its marker, so routing can
	// detect it without matching message content elsewhere.
	if inv.ToolID == CompletionToolID && result.Success && !result.IsCompletion() {
		result = CompletionResult(result.Output)
	}

	e.logger.Debug().
		Str("tool", inv.ToolID).
		Str("invocation_id", inv.ID).
		Bool("success", result.Success).
		Dur("duration", time.Since(start)).
		Msg("Tool execution finished")

	return result
}

// ExecuteBatch runs every invocation in the batch and returns results in
// invocation order. Underlying operations may run concurrently, but the
// merged order is deterministic because downstream routing and verification
// read it.
func (e *Executor) ExecuteBatch(ctx context.Context, invs []Invocation) []Result {
	results := make([]Result, len(invs))
	if len(invs) == 0 {
		return results
	}
	if len(invs) == 1 {
		results[0] = e.Execute(ctx, invs[0])
		return results
	}

	var wg sync.WaitGroup
	for i, inv := range invs {
		wg.Add(1)
		go func(i int, inv Invocation) {
			defer wg.Done()
			results[i] = e.Execute(ctx, inv)
		}(i, inv)
	}
	wg.Wait()
	return results
}
