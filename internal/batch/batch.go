// Package batch values many projects concurrently. Each project is evaluated
// independently: a row that fails validation is reported on its own outcome
// and never stops the rest of the batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/joelkehle/bidvalue/internal/valuation"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Valuer values a single project.
type Valuer interface {
	Run(ctx context.Context, in valuation.Tier0Input) (valuation.Result, error)
}

// Item is one input row. Err carries a decode failure from the loader; such
// items are reported without being valued.
type Item struct {
	Line  int
	Input valuation.Tier0Input
	Err   error
}

type Outcome struct {
	Line      int
	ProjectID string
	Result    valuation.Result
	Err       error
	Elapsed   time.Duration
}

func (o Outcome) OK() bool { return o.Err == nil }

type Summary struct {
	RunID     string
	StartedAt time.Time
	Elapsed   time.Duration
	Outcomes  []Outcome
	Succeeded int
	Failed    int
}

// Results returns the successful valuations in input order.
func (s Summary) Results() []valuation.Result {
	out := make([]valuation.Result, 0, s.Succeeded)
	for _, o := range s.Outcomes {
		if o.OK() {
			out = append(out, o.Result)
		}
	}
	return out
}

func (s Summary) Failures() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

type Runner struct {
	valuer      Valuer
	concurrency int
	logger      zerolog.Logger
	tracer      trace.Tracer
}

type Option func(*Runner)

// WithConcurrency bounds how many projects are valued at once. Values below
// one mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(r *Runner) { r.concurrency = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

func NewRunner(v Valuer, opts ...Option) *Runner {
	r := &Runner{
		valuer: v,
		logger: zerolog.Nop(),
		tracer: otel.Tracer("github.com/joelkehle/bidvalue/internal/batch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.concurrency < 1 {
		r.concurrency = runtime.GOMAXPROCS(0)
	}
	return r
}

// Run values every item. The returned error is non-nil only when ctx is done;
// per-project failures are recorded on their outcomes.
func (r *Runner) Run(ctx context.Context, items []Item) (Summary, error) {
	runID := uuid.NewString()
	ctx, span := r.tracer.Start(ctx, "batch.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("projects", len(items)),
	))
	defer span.End()

	log := r.logger.With().Str("run_id", runID).Logger()
	sum := Summary{RunID: runID, StartedAt: time.Now(), Outcomes: make([]Outcome, len(items))}
	log.Info().Int("projects", len(items)).Int("concurrency", r.concurrency).Msg("batch started")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out := r.valueOne(gctx, item)
			sum.Outcomes[i] = out
			if errors.Is(out.Err, context.Canceled) || errors.Is(out.Err, context.DeadlineExceeded) {
				return out.Err
			}
			return nil
		})
	}
	werr := g.Wait()
	sum.Elapsed = time.Since(sum.StartedAt)
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return sum, fmt.Errorf("batch %s interrupted: %w", runID, err)
	}
	if werr != nil {
		return sum, fmt.Errorf("batch %s: %w", runID, werr)
	}

	for _, o := range sum.Outcomes {
		if o.OK() {
			sum.Succeeded++
			continue
		}
		sum.Failed++
		log.Warn().Int("line", o.Line).Str("project_id", o.ProjectID).Err(o.Err).Msg("project rejected")
	}
	span.SetAttributes(attribute.Int("succeeded", sum.Succeeded), attribute.Int("failed", sum.Failed))
	log.Info().
		Int("succeeded", sum.Succeeded).
		Int("failed", sum.Failed).
		Dur("elapsed", sum.Elapsed).
		Msg("batch finished")
	return sum, nil
}

func (r *Runner) valueOne(ctx context.Context, item Item) Outcome {
	out := Outcome{Line: item.Line, ProjectID: item.Input.ProjectID}
	if item.Err != nil {
		out.Err = item.Err
		return out
	}
	start := time.Now()
	res, err := r.valuer.Run(ctx, item.Input)
	out.Elapsed = time.Since(start)
	if err != nil {
		out.Err = fmt.Errorf("project %s: %w", item.Input.ProjectID, err)
		return out
	}
	out.Result = res
	return out
}
