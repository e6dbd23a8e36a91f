package valuation

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// cancelCheckInterval is how many iterations a worker runs between context checks.
const cancelCheckInterval = 256

type Config struct {
	Simulations int
	// Workers partitions each project's iterations. Results are reproducible
	// for a fixed seed and worker count.
	Workers int
	// Seed of zero means seed from the clock.
	Seed       uint64
	Thresholds DecisionThresholds
}

func DefaultConfig() Config {
	return Config{
		Simulations: DefaultSimulations,
		Workers:     1,
		Thresholds:  DefaultThresholds(),
	}
}

func (c Config) Validate() error {
	if c.Simulations < MinSimulations || c.Simulations > MaxSimulations {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrSimulationCount, c.Simulations, MinSimulations, MaxSimulations)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return c.Thresholds.Validate()
}

// Engine runs Monte Carlo valuations. It holds no per-run state and may be
// shared across goroutines.
type Engine struct {
	cfg    Config
	logger zerolog.Logger
	tracer trace.Tracer
}

type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		logger: zerolog.Nop(),
		tracer: otel.Tracer("github.com/joelkehle/bidvalue/internal/valuation"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Run values one project. Invalid input fails before any iteration runs, and
// a cancelled context yields ctx.Err() with no result.
func (e *Engine) Run(ctx context.Context, in Tier0Input) (Result, error) {
	ctx, span := e.tracer.Start(ctx, "valuation.run", trace.WithAttributes(
		attribute.String("project.id", in.ProjectID),
		attribute.String("project.infra_type", string(in.InfraType)),
		attribute.Float64("project.contract_amount", in.ContractAmount),
		attribute.Int("simulations", e.cfg.Simulations),
	))
	defer span.End()

	res, err := e.run(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(
		attribute.Float64("tpv", res.TPV),
		attribute.String("decision", string(res.TPVDecision)),
	)
	return res, nil
}

func (e *Engine) run(ctx context.Context, in Tier0Input) (Result, error) {
	params, err := DeriveTier1(in)
	if err != nil {
		return Result{}, err
	}
	if err := checkTier1(params); err != nil {
		return Result{}, err
	}

	seed := e.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	parts := partition(e.cfg.Simulations, e.cfg.Workers)
	partials := make([]*accumulator, len(parts))
	base := seed ^ projectHash(in.ProjectID)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w, count := range parts {
		g.Go(func() error {
			acc, err := simulate(gctx, NewSeededSampler(base, uint64(w)), in.ContractAmount, params, count)
			if err != nil {
				return err
			}
			partials[w] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	// errgroup cancels gctx on the first error only; the parent may have been
	// cancelled after the last worker finished its last check.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	total := partials[0]
	for _, p := range partials[1:] {
		total = total.merge(p)
	}

	res := buildResult(in, params, total, e.cfg.Thresholds)
	res.Workers = len(parts)
	res.Seed = seed

	e.logger.Debug().
		Str("project_id", in.ProjectID).
		Int("simulations", res.Iterations).
		Int("workers", res.Workers).
		Float64("tpv", res.TPV).
		Str("decision", string(res.TPVDecision)).
		Dur("elapsed", time.Since(start)).
		Msg("project valued")
	return res, nil
}

func simulate(ctx context.Context, s *Sampler, contract float64, p Tier1Parameters, n int) (*accumulator, error) {
	acc := newAccumulator(n)
	for i := 0; i < n; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		sample, err := s.Sample(p)
		if err != nil {
			return nil, err
		}
		acc.add(NPV(contract, sample), ValueOptions(contract, p, sample))
	}
	return acc, nil
}

// partition splits n iterations over at most workers partitions, sizes
// differing by at most one.
func partition(n, workers int) []int {
	workers = max(min(workers, n), 1)
	parts := make([]int, workers)
	for i := range parts {
		parts[i] = n / workers
		if i < n%workers {
			parts[i]++
		}
	}
	return parts
}

// projectHash decorrelates streams of projects valued with the same seed.
func projectHash(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}
