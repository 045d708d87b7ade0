// Command valuate prints a one-shot valuation report for a single symbol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"ValueSentinel/internal/chart"
	"ValueSentinel/internal/collector"
	"ValueSentinel/internal/config"
	"ValueSentinel/internal/logging"
	"ValueSentinel/internal/model"
	"ValueSentinel/internal/notifier"
	"ValueSentinel/internal/strategy"
)

type options struct {
	configPath string
	symbol     string
	growth     float64
	discount   float64
	pe         float64
	policy     string
	chartPath  string
	set        map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("valuate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{set: map[string]bool{}}
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	fs.StringVar(&o.configPath, "config", defaultConfig, "path to the YAML config file")
	fs.StringVar(&o.symbol, "symbol", "", "ticker symbol, e.g. RELIANCE.NS (required)")
	fs.Float64Var(&o.growth, "growth", 0, "expected EPS growth rate in percent (default from config)")
	fs.Float64Var(&o.discount, "discount", 0, "discount rate in percent (default from config)")
	fs.Float64Var(&o.pe, "pe", 0, "assumed industry PE (default from config)")
	fs.StringVar(&o.policy, "policy", "", "verdict policy: averaged or conjunctive (default from config)")
	fs.StringVar(&o.chartPath, "chart", "", "write the financial history chart to this PNG file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	if o.symbol == "" && fs.NArg() > 0 {
		o.symbol = fs.Arg(0)
	}
	if o.symbol == "" {
		return nil, errors.New("-symbol is required")
	}
	return o, nil
}

// assumptions applies the flags that were given on top of the config defaults.
func (o *options) assumptions(defaults model.Assumptions) model.Assumptions {
	a := defaults
	if o.set["growth"] {
		a.GrowthRatePercent = o.growth
	}
	if o.set["discount"] {
		a.DiscountRatePercent = o.discount
	}
	if o.set["pe"] {
		a.IndustryPE = o.pe
	}
	return a
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	_ = godotenv.Load()

	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "valuate:", err)
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, "valuate:", err)
		return 1
	}
	if opts.policy != "" {
		cfg.Valuation.VerdictPolicy = opts.policy
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "valuate:", err)
		return 1
	}
	policy, err := strategy.ParsePolicy(cfg.Valuation.VerdictPolicy)
	if err != nil {
		fmt.Fprintln(stderr, "valuate:", err)
		return 1
	}

	logger := logging.NewWithOutput(cfg.Logging.Level, stderr).WithField("run_id", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := collector.NewFMPFetcher(cfg.DataSource.APIKey,
		collector.WithBaseURL(cfg.DataSource.BaseURL),
		collector.WithRateLimit(cfg.DataSource.RateLimit),
		collector.WithTimeout(cfg.RequestTimeout()),
		collector.WithMaxRetries(cfg.DataSource.MaxRetries),
		collector.WithProxy(cfg.Proxy),
		collector.WithLogger(logger),
	)
	col := collector.NewCollector(fetcher, nil, 0, cfg.DataSource.HistoryYears, logger)

	return valuate(ctx, col, opts, opts.assumptions(cfg.Assumptions()), policy, stdout, stderr)
}

func valuate(ctx context.Context, col *collector.Collector, opts *options, a model.Assumptions,
	policy strategy.Policy, stdout, stderr io.Writer) int {
	f, err := col.Collect(ctx, opts.symbol)
	if err != nil {
		fmt.Fprintln(stderr, notifier.FormatUnavailable(opts.symbol, err, notifier.StylePlain))
		return 1
	}

	result, err := strategy.EvaluateFundamentals(f, a, policy)
	if err != nil {
		fmt.Fprintln(stderr, "valuate:", err)
		return 1
	}
	fmt.Fprintln(stdout, notifier.FormatValuationReport(f, a, result, notifier.StylePlain))

	if opts.chartPath != "" {
		png, err := chart.RenderFinancialHistory(f.Symbol, f.History)
		if err != nil {
			fmt.Fprintln(stderr, "valuate: chart:", err)
			return 1
		}
		if err := os.WriteFile(opts.chartPath, png, 0o644); err != nil {
			fmt.Fprintln(stderr, "valuate: write chart:", err)
			return 1
		}
		fmt.Fprintf(stdout, "\nChart written to %s\n", opts.chartPath)
	}
	return 0
}
