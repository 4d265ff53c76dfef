package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penplan/pension-planner/internal/config"
	"github.com/penplan/pension-planner/internal/domain"
	"github.com/penplan/pension-planner/internal/engine"
)

func accumulationPlan() *domain.PlanInput {
	return &domain.PlanInput{
		StartingBalance:      decimal.NewFromInt(10000),
		PeriodsPerYear:       12,
		Horizon:              120,
		ContributionAmount:   decimal.NewFromInt(200),
		ContributionsPerYear: 12,
		AnnualGrowthRate:     decimal.NewFromFloat(0.05),
		AnnualFeeRate:        decimal.NewFromFloat(0.01),
		WithdrawalPolicy:     domain.WithdrawalNone,
	}
}

// newComputeServer serves projections from an independent engine instance,
// standing in for the backend compute service.
func newComputeServer(t *testing.T) *httptest.Server {
	t.Helper()
	eng := engine.NewEngine()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var input domain.PlanInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(eng.Project(&input))
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// TestRemoteLocalParity runs the same plans through the remote path and the
// local kernel and requires bit-identical results from both.
func TestRemoteLocalParity(t *testing.T) {
	srv := newComputeServer(t)
	eng := engine.NewEngine()
	d := NewDispatcher(NewHTTPComputeClient(srv.URL), eng, time.Second)

	plans := []*domain.PlanInput{
		accumulationPlan(),
		{
			StartingBalance:       decimal.NewFromInt(250000),
			PeriodsPerYear:        12,
			Horizon:               240,
			AnnualGrowthRate:      decimal.NewFromFloat(0.04),
			AnnualFeeRate:         decimal.NewFromFloat(0.0075),
			AnnualInflationRate:   decimal.NewFromFloat(0.025),
			WithdrawalPolicy:      domain.WithdrawalFixed,
			WithdrawalStartPeriod: 60,
			WithdrawalAmount:      decimal.NewFromInt(1500),
			IndexWithdrawals:      true,
		},
		{
			StartingBalance:      decimal.NewFromInt(5000),
			PeriodsPerYear:       4,
			Horizon:              80,
			ContributionAmount:   decimal.NewFromInt(750),
			ContributionsPerYear: 4,
			AnnualGrowthRate:     decimal.NewFromFloat(0.07),
			GrowthSchedule: []domain.GrowthPhase{
				{FromPeriod: 40, AnnualRate: decimal.NewFromFloat(0.03)},
			},
			WithdrawalPolicy: domain.WithdrawalNone,
		},
	}

	for i, plan := range plans {
		outcome, err := d.Compute(context.Background(), plan)
		require.NoError(t, err, "plan %d", i)
		assert.Equal(t, domain.SourceRemote, outcome.Source, "plan %d", i)

		local := eng.Project(plan)
		assert.True(t, engine.EqualResults(&outcome.Result, local),
			"plan %d: remote and local projections diverge", i)
	}
}

// TestFallbackLatencyBound configures a remote that hangs indefinitely and
// checks Compute still returns, within one timeout window plus local compute
// time, tagged as a local execution.
func TestFallbackLatencyBound(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	// Unblock the handler before srv.Close: the handler never reads the
	// request body, so the server cannot observe the client disconnect and
	// r.Context() stays live until the connection is drained.
	defer close(block)

	timeout := 100 * time.Millisecond
	d := NewDispatcher(NewHTTPComputeClient(srv.URL), engine.NewEngine(), timeout)

	start := time.Now()
	outcome, err := d.Compute(context.Background(), accumulationPlan())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, outcome.Source)
	assert.False(t, outcome.Cached)
	assert.Less(t, elapsed, timeout+2*time.Second, "fallback must be bounded by timeout plus local compute")
	assert.GreaterOrEqual(t, elapsed, timeout, "remote attempt should run out the full timeout")
}

func TestFallbackOnTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDispatcher(NewHTTPComputeClient(srv.URL), engine.NewEngine(), time.Second)
	outcome, err := d.Compute(context.Background(), accumulationPlan())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, outcome.Source)
	assert.Len(t, outcome.Result.Periods, 120)
}

func TestFallbackOnMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"wrong policy", `{"policy_id":"other/v9","periods":[]}`},
		{"truncated periods", `{"policy_id":"pension-projection/v1","periods":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			d := NewDispatcher(NewHTTPComputeClient(srv.URL), engine.NewEngine(), time.Second)
			outcome, err := d.Compute(context.Background(), accumulationPlan())
			require.NoError(t, err)
			assert.Equal(t, domain.SourceLocal, outcome.Source)
		})
	}
}

type countingClient struct {
	calls int
}

func (c *countingClient) Project(ctx context.Context, input *domain.PlanInput) (*domain.ProjectionResult, error) {
	c.calls++
	return nil, ErrTransportFailure
}

// TestValidationShortCircuits requires malformed input to be rejected before
// either execution path is attempted.
func TestValidationShortCircuits(t *testing.T) {
	remote := &countingClient{}
	d := NewDispatcher(remote, engine.NewEngine(), time.Second)

	plan := accumulationPlan()
	plan.PeriodsPerYear = 0

	outcome, err := d.Compute(context.Background(), plan)
	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.Zero(t, remote.calls, "remote must not be attempted for invalid input")

	var verr *config.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "periods_per_year", verr.Field)
}

func TestLocalOnlyDeployment(t *testing.T) {
	d := NewDispatcher(nil, engine.NewEngine(), time.Second)
	outcome, err := d.Compute(context.Background(), accumulationPlan())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, outcome.Source)
}

func TestResultCache(t *testing.T) {
	d := NewDispatcher(nil, engine.NewEngine(), time.Second)
	plan := accumulationPlan()

	first, err := d.Compute(context.Background(), plan)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := d.Compute(context.Background(), plan)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.True(t, engine.EqualResults(&first.Result, &second.Result))

	// Any parameter change invalidates the single-entry cache.
	changed := accumulationPlan()
	changed.ContributionAmount = decimal.NewFromInt(250)
	third, err := d.Compute(context.Background(), changed)
	require.NoError(t, err)
	assert.False(t, third.Cached)
}

// randomValidPlan generates a plan that passes validation, covering every
// compounding convention, withdrawal policy, growth schedules, one-time
// adjustments, floors and negative carry.
func randomValidPlan(r *rand.Rand) *domain.PlanInput {
	ppyChoices := []int{1, 2, 4, 12}
	ppy := ppyChoices[r.Intn(len(ppyChoices))]
	horizon := r.Intn(181)

	plan := &domain.PlanInput{
		StartingBalance:     decimal.NewFromInt(int64(1000 + r.Intn(500000))),
		PeriodsPerYear:      ppy,
		Horizon:             horizon,
		AnnualGrowthRate:    decimal.New(int64(r.Intn(1501)-200), -4),
		AnnualFeeRate:       decimal.New(int64(r.Intn(201)), -4),
		AnnualInflationRate: decimal.New(int64(r.Intn(501)), -4),
		WithdrawalPolicy:    domain.WithdrawalNone,
	}

	divisors := []int{0}
	for d := 1; d <= ppy; d++ {
		if ppy%d == 0 {
			divisors = append(divisors, d)
		}
	}
	plan.ContributionsPerYear = divisors[r.Intn(len(divisors))]
	if plan.ContributionsPerYear > 0 {
		plan.ContributionAmount = decimal.NewFromInt(int64(r.Intn(2001)))
	}

	switch r.Intn(3) {
	case 1:
		plan.WithdrawalPolicy = domain.WithdrawalFixed
		plan.WithdrawalAmount = decimal.NewFromInt(int64(r.Intn(3001)))
		plan.WithdrawalStartPeriod = r.Intn(horizon + 1)
		plan.IndexWithdrawals = r.Intn(2) == 0
	case 2:
		plan.WithdrawalPolicy = domain.WithdrawalRate
		plan.WithdrawalAnnualRate = decimal.New(int64(r.Intn(1501)), -4)
		plan.WithdrawalStartPeriod = r.Intn(horizon + 1)
	}

	if r.Intn(3) == 0 {
		from := 0
		for n := r.Intn(3) + 1; n > 0; n-- {
			from += r.Intn(24) + 1
			plan.GrowthSchedule = append(plan.GrowthSchedule, domain.GrowthPhase{
				FromPeriod: from,
				AnnualRate: decimal.New(int64(r.Intn(1201)-200), -4),
			})
		}
	}

	if horizon > 0 && r.Intn(3) == 0 {
		plan.Adjustments = make(map[int]decimal.Decimal)
		for n := r.Intn(3) + 1; n > 0; n-- {
			plan.Adjustments[r.Intn(horizon)] = decimal.NewFromInt(int64(r.Intn(20001) - 10000))
		}
	}

	if r.Intn(5) == 0 {
		plan.AllowNegativeBalance = true
	} else if r.Intn(4) == 0 {
		// Floor stays below the minimum starting balance above.
		plan.BalanceFloor = decimal.NewFromInt(int64(r.Intn(1000)))
	}

	return plan
}

// TestRandomizedParity drives several hundred generated plans through the
// remote path and the local kernel. Every outcome must be bit-identical
// between the two paths, continuous across periods, and once a plan depletes
// it must stay depleted.
func TestRandomizedParity(t *testing.T) {
	srv := newComputeServer(t)
	eng := engine.NewEngine()
	d := NewDispatcher(NewHTTPComputeClient(srv.URL), eng, 5*time.Second)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 300; i++ {
		plan := randomValidPlan(r)
		require.NoError(t, config.ValidatePlan(plan), "case %d: generator produced an invalid plan", i)

		outcome, err := d.Compute(context.Background(), plan)
		require.NoError(t, err, "case %d", i)
		require.Equal(t, domain.SourceRemote, outcome.Source, "case %d", i)

		local := eng.Project(plan)
		require.True(t, engine.EqualResults(&outcome.Result, local),
			"case %d: remote and local projections diverge", i)
		require.True(t, engine.ValidResultShape(plan, &outcome.Result),
			"case %d: result shape invalid", i)

		depleted := false
		for _, p := range outcome.Result.Periods {
			if depleted && !plan.AllowNegativeBalance {
				require.True(t, p.Depleted, "case %d period %d: depletion must not recover", i, p.Period)
			}
			depleted = depleted || p.Depleted
		}
	}
}

// TestSetLoggerConcurrentWithCompute swaps the logger while computations that
// log (failing remote, fallback path) are in flight. The race detector guards
// the handoff.
func TestSetLoggerConcurrentWithCompute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDispatcher(NewHTTPComputeClient(srv.URL), engine.NewEngine(), time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.SetLogger(engine.NopLogger{})
		}()
		go func(n int) {
			defer wg.Done()
			plan := accumulationPlan()
			plan.ContributionAmount = decimal.NewFromInt(int64(100 + n))
			_, err := d.Compute(context.Background(), plan)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func TestFallbackReasonClassification(t *testing.T) {
	assert.Equal(t, fallbackReasonTimeout, fallbackReason(context.DeadlineExceeded))
	assert.Equal(t, fallbackReasonMalformed, fallbackReason(ErrMalformedResponse))
	assert.Equal(t, fallbackReasonTransport, fallbackReason(ErrTransportFailure))
	assert.Equal(t, fallbackReasonTransport, fallbackReason(errors.New("connection refused")))
}
