package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/penplan/pension-planner/internal/config"
	"github.com/penplan/pension-planner/internal/domain"
	"github.com/penplan/pension-planner/internal/engine"
)

// Dispatcher routes projection requests to the remote compute endpoint and
// falls back to the local kernel when the remote path fails. For a valid
// PlanInput, Compute never fails: the local kernel is total, so remote
// problems degrade latency, not correctness.
type Dispatcher struct {
	remote  RemoteClient
	engine  *engine.Engine
	timeout time.Duration

	mu         sync.Mutex
	logger     engine.Logger
	cachedKey  string
	cachedOutc *domain.ExecutionOutcome
}

// NewDispatcher creates a dispatcher. remote may be nil for a local-only
// deployment (static hosting, no backend); every request then runs the local
// kernel directly.
func NewDispatcher(remote RemoteClient, eng *engine.Engine, timeout time.Duration) *Dispatcher {
	initMetrics()
	return &Dispatcher{
		remote:  remote,
		engine:  eng,
		timeout: timeout,
		logger:  engine.NopLogger{},
	}
}

// SetLogger sets the dispatcher logger. A nil logger restores the no-op
// default. Safe to call while Compute runs on other goroutines.
func (d *Dispatcher) SetLogger(l engine.Logger) {
	if l == nil {
		l = engine.NopLogger{}
	}
	d.mu.Lock()
	d.logger = l
	d.mu.Unlock()
}

func (d *Dispatcher) log() engine.Logger {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.logger
}

// Compute validates the input, attempts the remote path once within the
// configured timeout, and falls back to the local kernel on timeout,
// transport failure, or a malformed remote response. The returned outcome is
// tagged with its execution source. The only error it returns is a
// *config.ValidationError for malformed input, raised before either path is
// attempted.
func (d *Dispatcher) Compute(ctx context.Context, input *domain.PlanInput) (*domain.ExecutionOutcome, error) {
	if err := config.ValidatePlan(input); err != nil {
		return nil, err
	}

	key := cacheKey(input)
	if outcome := d.cached(key); outcome != nil {
		observeCacheHit()
		return outcome, nil
	}

	start := time.Now()

	if d.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, d.timeout)
		result, err := d.remote.Project(rctx, input)
		cancel()

		if err == nil && !engine.ValidResultShape(input, result) {
			err = ErrMalformedResponse
		}
		if err == nil {
			outcome := &domain.ExecutionOutcome{
				Result:  *result,
				Source:  domain.SourceRemote,
				Latency: time.Since(start),
			}
			observeCompute(string(domain.SourceRemote), outcome.Latency)
			d.store(key, outcome)
			return outcome, nil
		}

		d.log().Warnf("remote compute failed, falling back to local: %v", err)
		observeFallback(fallbackReason(err))
	}

	// One-shot fallback: the remote path is not retried, bounding worst
	// case latency to one timeout window plus local compute time.
	result := d.engine.Project(input)
	outcome := &domain.ExecutionOutcome{
		Result:  *result,
		Source:  domain.SourceLocal,
		Latency: time.Since(start),
	}
	observeCompute(string(domain.SourceLocal), outcome.Latency)
	d.store(key, outcome)
	return outcome, nil
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fallbackReasonTimeout
	case errors.Is(err, ErrMalformedResponse):
		return fallbackReasonMalformed
	default:
		return fallbackReasonTransport
	}
}

// cacheKey canonicalizes a plan input for the single-entry result cache.
// PlanInput is immutable by contract, so equal serializations mean equal
// projections under the deterministic kernel.
func cacheKey(input *domain.PlanInput) string {
	data, err := json.Marshal(input)
	if err != nil {
		return ""
	}
	return string(data)
}

func (d *Dispatcher) cached(key string) *domain.ExecutionOutcome {
	if key == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cachedKey != key || d.cachedOutc == nil {
		return nil
	}
	outcome := *d.cachedOutc
	outcome.Cached = true
	return &outcome
}

func (d *Dispatcher) store(key string, outcome *domain.ExecutionOutcome) {
	if key == "" {
		return
	}
	d.mu.Lock()
	d.cachedKey = key
	d.cachedOutc = outcome
	d.mu.Unlock()
}
