// Package montecarlo estimates the distribution of a portfolio's final
// balance by sampling stochastic monthly returns around the same
// per-period compounding step the deterministic projections use.
package montecarlo

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/duartefn/wealthpilot-backend/internal/domain"
)

// Input represents the parameters of one simulation run
type Input struct {
	CurrentAmount           float64
	MonthlyContribution     float64
	ExpectedAnnualReturnPct float64
	AnnualVolatilityPct     float64
	Years                   int
	Trials                  int
}

// Result summarizes the distribution of final balances across all trials
type Result struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P10    float64 `json:"percentile_10"`
	P25    float64 `json:"percentile_25"`
	P75    float64 `json:"percentile_75"`
	P90    float64 `json:"percentile_90"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// Engine runs Monte Carlo simulations. Trials are fanned out across
// worker goroutines; every trial owns a PCG stream derived from the
// engine seed and the trial index, so results do not depend on scheduling
// and a fixed seed reproduces the full distribution.
type Engine struct {
	seed    uint64
	workers int
}

// Option configures an Engine
type Option func(*Engine)

// WithSeed fixes the base random seed for reproducible runs
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithWorkers caps the number of concurrent trial workers
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine creates a new Monte Carlo Engine instance
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		seed:    uint64(time.Now().UnixNano()),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Simulate draws an independent normally distributed return for each
// month of each trial and steps balance = balance*(1+r) + contribution,
// then aggregates the final balances.
//
// The annual inputs convert to μ = expected/1200 and σ = vol/(100*√12)
// per month. With zero volatility every draw collapses to μ and each
// trial reproduces the deterministic future value.
func (e *Engine) Simulate(ctx context.Context, in Input) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	mu := in.ExpectedAnnualReturnPct / 1200
	sigma := in.AnnualVolatilityPct / (100 * math.Sqrt(12))
	months := in.Years * 12

	finals := make([]float64, in.Trials)

	workers := e.workers
	if workers > in.Trials {
		workers = in.Trials
	}

	trialCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for trial := range trialCh {
				finals[trial] = e.runTrial(trial, in.CurrentAmount, in.MonthlyContribution, mu, sigma, months)
			}
		}()
	}

	var err error
feed:
	for trial := 0; trial < in.Trials; trial++ {
		select {
		case trialCh <- trial:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(trialCh)
	wg.Wait()

	if err != nil {
		return nil, err
	}

	return aggregate(finals), nil
}

// runTrial simulates one balance path. Each trial gets its own stream so
// no trial ever observes another's draws.
func (e *Engine) runTrial(trial int, balance, contribution, mu, sigma float64, months int) float64 {
	rng := rand.New(rand.NewPCG(e.seed, uint64(trial)))

	for month := 0; month < months; month++ {
		r := mu + sigma*rng.NormFloat64()
		balance = balance*(1+r) + contribution
	}
	return balance
}

// aggregate reduces the unordered set of final balances to summary
// statistics. Percentiles use the inclusive linear-interpolated order
// statistic, so the median equals the 50th percentile by construction.
func aggregate(finals []float64) *Result {
	sorted := make([]float64, len(finals))
	copy(sorted, finals)
	sort.Float64s(sorted)

	return &Result{
		Mean:   round2(stat.Mean(sorted, nil)),
		Median: round2(percentile(sorted, 50)),
		P10:    round2(percentile(sorted, 10)),
		P25:    round2(percentile(sorted, 25)),
		P75:    round2(percentile(sorted, 75)),
		P90:    round2(percentile(sorted, 90)),
		Min:    round2(floats.Min(sorted)),
		Max:    round2(floats.Max(sorted)),
		StdDev: round2(stat.PopStdDev(sorted, nil)),
	}
}

// percentile computes the inclusive linear-interpolated order statistic
// over an ascending-sorted sample: rank h = p/100*(n-1), interpolating
// between the neighbouring observations.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	h := p / 100 * float64(n-1)
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func validate(in Input) error {
	if in.Years <= 0 {
		return fmt.Errorf("%w: years must be positive", domain.ErrInvalidParameters)
	}
	if in.Trials <= 0 {
		return fmt.Errorf("%w: trials must be positive", domain.ErrInvalidParameters)
	}
	if in.CurrentAmount < 0 {
		return fmt.Errorf("%w: current amount cannot be negative", domain.ErrInvalidParameters)
	}
	if in.MonthlyContribution < 0 {
		return fmt.Errorf("%w: monthly contribution cannot be negative", domain.ErrInvalidParameters)
	}
	if in.AnnualVolatilityPct < 0 {
		return fmt.Errorf("%w: volatility cannot be negative", domain.ErrInvalidParameters)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
