package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/logging"
)

// BackendCall pairs a descriptor with the fully built invocation options.
type BackendCall struct {
	Descriptor core.BackendDescriptor
	Options    core.GenerateOptions
}

// Dispatcher fans a prepared set of backend calls out concurrently and
// collects exactly one RawResult per call, in call order. A failing
// backend is absorbed into its own result; it never cancels its
// siblings and never aborts the run.
type Dispatcher struct {
	registry core.BackendRegistry
	retry    RetryPolicy
	logger   *logging.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(registry core.BackendRegistry, retry RetryPolicy, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		retry:    retry,
		logger:   logger,
	}
}

// Dispatch invokes every call concurrently and waits for all of them to
// settle. The returned slice is positionally aligned with calls.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []BackendCall) []core.RawResult {
	results := make([]core.RawResult, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			results[i] = d.invoke(gctx, call)
			return nil
		})
	}
	// Goroutines only ever return nil; Wait is a barrier here.
	_ = g.Wait()

	return results
}

// invoke runs one backend call under its own timeout and converts every
// failure mode into an error-outcome RawResult.
func (d *Dispatcher) invoke(ctx context.Context, call BackendCall) core.RawResult {
	desc := call.Descriptor
	log := d.logger.WithBackend(desc.Name)
	start := time.Now()

	result := core.RawResult{
		Backend: desc.Name,
		Role:    desc.Role,
	}

	backend, err := d.registry.Get(desc.Name)
	if err != nil {
		result.Outcome = core.OutcomeError
		result.Err = err.Error()
		result.Duration = time.Since(start)
		log.Warn("backend not registered", "error", err)
		return result
	}

	callCtx := ctx
	if desc.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, desc.Timeout)
		defer cancel()
	}

	var gen *core.GenerateResult
	err = d.retry.Execute(callCtx, func(ctx context.Context) error {
		var genErr error
		gen, genErr = backend.Generate(ctx, call.Options)
		return genErr
	})
	result.Duration = time.Since(start)

	if err != nil {
		result.Outcome = core.OutcomeError
		result.Err = describeInvokeError(callCtx, err)
		log.Warn("backend invocation failed",
			"role", desc.Role,
			"duration", result.Duration,
			"error", err)
		return result
	}

	result.Outcome = core.OutcomeSuccess
	result.Output = gen.Output
	log.Debug("backend invocation completed",
		"role", desc.Role,
		"duration", result.Duration,
		"output_bytes", len(gen.Output))
	return result
}

// describeInvokeError prefers the context's own explanation when the
// deadline fired, since backends often wrap cancellation in noise.
func describeInvokeError(ctx context.Context, err error) string {
	if ctx.Err() == context.DeadlineExceeded {
		return "backend timed out: " + err.Error()
	}
	return err.Error()
}
