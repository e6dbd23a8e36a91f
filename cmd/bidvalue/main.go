// Command bidvalue values a CSV of candidate projects with the real-options
// Monte Carlo engine and writes per-project decisions.
//
// Usage:
//
//	bidvalue -in projects.csv -out results.csv [-jsonl results.jsonl] [-report report.md] [-html report.html] [-pdf report.pdf]
//
// Settings come from BIDVALUE_CONFIG (YAML), then environment variables, then
// flags. A .env file in the working directory is loaded first when present.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/joelkehle/bidvalue/internal/batch"
	"github.com/joelkehle/bidvalue/internal/config"
	"github.com/joelkehle/bidvalue/internal/report"
	"github.com/joelkehle/bidvalue/internal/tabular"
	"github.com/joelkehle/bidvalue/internal/telemetry"
	"github.com/joelkehle/bidvalue/internal/valuation"
)

// version is set at build time via -ldflags.
var version = "dev"

var errAllFailed = errors.New("no project could be valued")

type cliOptions struct {
	in         string
	out        string
	jsonl      string
	reportPath string
	htmlPath   string
	pdfPath    string
	chromePath string
	title      string
	pretty     bool

	// Overrides; zero means keep the configured value.
	simulations int
	workers     int
	seed        uint64
}

func main() {
	os.Exit(run0())
}

func run0() int {
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load()
	if err == nil {
		err = opts.apply(&cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "bidvalue: %v\n", err)
		return 1
	}

	logger := newLogger(os.Stderr, cfg.Level(), opts.pretty)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error().Err(err).Msg("bidvalue failed")
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var o cliOptions
	fs := flag.NewFlagSet("bidvalue", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.in, "in", "", "input CSV of projects (required)")
	fs.StringVar(&o.out, "out", "", "output CSV of results (default stdout)")
	fs.StringVar(&o.jsonl, "jsonl", "", "also write results as JSON lines")
	fs.StringVar(&o.reportPath, "report", "", "write a Markdown decision report")
	fs.StringVar(&o.htmlPath, "html", "", "write the report as HTML")
	fs.StringVar(&o.pdfPath, "pdf", "", "write the report as PDF (needs Chromium)")
	fs.StringVar(&o.chromePath, "chrome", os.Getenv("CHROME_PATH"), "Chromium binary for -pdf")
	fs.StringVar(&o.title, "title", "", "report title")
	fs.IntVar(&o.simulations, "n", 0, fmt.Sprintf("simulations per project (%d-%d)", valuation.MinSimulations, valuation.MaxSimulations))
	fs.IntVar(&o.workers, "workers", 0, "partitions per project")
	fs.Uint64Var(&o.seed, "seed", 0, "base seed; 0 keeps the configured seed")
	fs.BoolVar(&o.pretty, "pretty", false, "human-readable logs")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	if o.in == "" {
		fmt.Fprintln(stderr, "bidvalue: -in is required")
		fs.Usage()
		return cliOptions{}, errors.New("missing -in")
	}
	return o, nil
}

// apply folds flag overrides into cfg and revalidates it.
func (o cliOptions) apply(cfg *config.Config) error {
	if o.simulations != 0 {
		cfg.Simulations = o.simulations
	}
	if o.workers != 0 {
		cfg.Workers = o.workers
	}
	if o.seed != 0 {
		cfg.Seed = o.seed
	}
	return cfg.Validate()
}

func newLogger(w io.Writer, level zerolog.Level, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func run(ctx context.Context, cfg config.Config, opts cliOptions, logger zerolog.Logger) error {
	shutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	items, err := readInput(opts.in)
	if err != nil {
		return err
	}

	engine, err := valuation.NewEngine(cfg.Engine(),
		valuation.WithLogger(logger),
		valuation.WithTracer(telemetry.Tracer("github.com/joelkehle/bidvalue/internal/valuation")),
	)
	if err != nil {
		return err
	}
	runner := batch.NewRunner(engine,
		batch.WithConcurrency(cfg.ProjectWorkers),
		batch.WithLogger(logger),
		batch.WithTracer(telemetry.Tracer("github.com/joelkehle/bidvalue/internal/batch")),
	)

	sum, err := runner.Run(ctx, items)
	if err != nil {
		return err
	}

	if err := writeOutputs(ctx, sum, cfg, opts); err != nil {
		return err
	}
	logger.Info().
		Str("run_id", sum.RunID).
		Str("out", opts.out).
		Int("valued", sum.Succeeded).
		Msg("results written")

	if len(items) > 0 && sum.Succeeded == 0 {
		return errAllFailed
	}
	return nil
}

func readInput(path string) ([]batch.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	items, err := tabular.ReadProjects(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return items, nil
}

func writeOutputs(ctx context.Context, sum batch.Summary, cfg config.Config, opts cliOptions) error {
	results := sum.Results()
	if opts.out == "" {
		if err := tabular.WriteResults(os.Stdout, results); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	} else if err := writeFile(opts.out, func(w io.Writer) error { return tabular.WriteResults(w, results) }); err != nil {
		return err
	}
	if opts.jsonl != "" {
		if err := writeFile(opts.jsonl, func(w io.Writer) error { return tabular.WriteJSONL(w, results) }); err != nil {
			return err
		}
	}
	if opts.reportPath == "" && opts.htmlPath == "" && opts.pdfPath == "" {
		return nil
	}

	md := report.BuildMarkdown(sum, report.Meta{
		Title:       opts.title,
		Source:      filepath.Base(opts.in),
		Simulations: cfg.Simulations,
		Workers:     cfg.Workers,
		Seed:        cfg.Seed,
		Thresholds:  cfg.Thresholds,
	})
	if opts.reportPath != "" {
		if err := os.WriteFile(opts.reportPath, []byte(md), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if opts.htmlPath == "" && opts.pdfPath == "" {
		return nil
	}
	title := opts.title
	if title == "" {
		title = "Bid Participation Report"
	}
	doc, err := report.RenderHTML(title, md)
	if err != nil {
		return err
	}
	if opts.htmlPath != "" {
		if err := os.WriteFile(opts.htmlPath, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("write html: %w", err)
		}
	}
	if opts.pdfPath != "" {
		pdf, err := report.NewPDFRenderer(opts.chromePath).Render(ctx, doc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.pdfPath, pdf, 0o644); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
