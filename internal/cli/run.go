package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aryankumar/batchrun/internal/config"
	"github.com/aryankumar/batchrun/internal/executor"
	"github.com/aryankumar/batchrun/internal/metrics"
	"github.com/aryankumar/batchrun/internal/output"
	"github.com/aryankumar/batchrun/internal/util"
)

// runOptions holds the flags of the run command
type runOptions struct {
	filename      string
	substrate     string
	workers       int
	batchSize     int
	rateLimit     float64
	rateBurst     int
	progressLabel string
	progressSink  string
	noProgress    bool
	profile       string
	metricsAddr   string
	sorted        bool
	wide          bool
	noHeaders     bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a job file",
		Long: `Run the function named in a job file once per kwargs entry.

Settings are resolved in order: command-line flags, the job file, the
selected profile, then the defaults file.`,
		Example: `  # Run a job with the default thread substrate
  batchrun run -f job.yaml

  # Use worker processes and print JSON results
  batchrun run -f job.yaml --substrate process -o json

  # Limit to 8 workers and 50 task starts per second
  batchrun run -f job.yaml -p 8 --rate-limit 50

  # Expose Prometheus metrics while the job runs
  batchrun run -f job.yaml --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.filename, "file", "f", "", "path to the job file (required)")
	cmd.Flags().StringVar(&opts.substrate, "substrate", "", fmt.Sprintf("worker substrate (%s)", strings.Join(executor.Substrates(), ", ")))
	cmd.Flags().IntVarP(&opts.workers, "workers", "p", 0, "number of workers (0 means the substrate default)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "tasks submitted per batch (0 means the default)")
	cmd.Flags().Float64Var(&opts.rateLimit, "rate-limit", 0, "maximum task starts per second (0 means unlimited)")
	cmd.Flags().IntVar(&opts.rateBurst, "rate-burst", 1, "task starts allowed in a burst above the rate limit")
	cmd.Flags().StringVar(&opts.progressLabel, "progress-label", "", "label shown next to the progress display")
	cmd.Flags().StringVar(&opts.progressSink, "progress-sink", "", fmt.Sprintf("progress display (%s)", strings.Join(executor.SinkNames(), ", ")))
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable progress reporting")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "execution profile from the defaults file")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address during the run")
	cmd.Flags().BoolVar(&opts.sorted, "sorted", false, "order results by task index")
	cmd.Flags().BoolVar(&opts.wide, "wide", false, "show durations and untruncated values")
	cmd.Flags().BoolVar(&opts.noHeaders, "no-headers", false, "omit table headers")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runJob(ctx context.Context, cmd *cobra.Command, opts *runOptions) error {
	logger := slog.Default()

	job, err := config.LoadJob(opts.filename)
	if err != nil {
		return err
	}

	mgr := config.NewManager(cfgFile)
	cfg, err := mgr.Load()
	if err != nil {
		return err
	}

	if err := resolveJob(cmd, opts, job, mgr); err != nil {
		return err
	}

	fn, ok := executor.Lookup(job.Function)
	if !ok {
		return util.NewValidationError("function", job.Function,
			fmt.Sprintf("not registered (available: %s)", strings.Join(executor.Names(), ", ")))
	}

	substrate, err := executor.ParseSubstrate(job.Substrate)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(outputFormat(cfg))
	if err != nil {
		return err
	}

	tasks := job.Tasks()
	kwargs := make([]executor.Kwargs, len(tasks))
	for i, kw := range tasks {
		kwargs[i] = executor.Kwargs(kw)
	}

	engine, err := executor.New(substrate, fn, kwargs, engineOptions(job, opts, logger, cmd.ErrOrStderr())...)
	if err != nil {
		return err
	}

	logger.Debug("resolved job",
		"function", job.Function,
		"substrate", substrate,
		"workers", engine.Workers(),
		"tasks", len(kwargs))

	if opts.metricsAddr != "" {
		srv := metrics.NewServer(opts.metricsAddr, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			if err := srv.Shutdown(context.Background()); err != nil {
				logger.Warn("metrics server shutdown failed", "error", err)
			}
		}()
	}

	if err := engine.Execute(ctx); err != nil {
		return err
	}

	formatter := output.NewFormatter(format,
		output.WithNoColor(viper.GetBool("no-color") || cfg.Defaults.NoColor),
		output.WithWide(opts.wide),
		output.WithSorted(opts.sorted),
		output.WithNoHeaders(opts.noHeaders),
	)
	return formatter.FormatRecords(cmd.OutOrStdout(), engine.Results())
}

// resolveJob layers flags over the job file, then fills what is still
// unset from the profile and the defaults file
func resolveJob(cmd *cobra.Command, opts *runOptions, job *config.JobSpec, mgr *config.Manager) error {
	flags := cmd.Flags()

	if flags.Changed("substrate") {
		job.Substrate = opts.substrate
	}
	if flags.Changed("workers") {
		job.Workers = opts.workers
	}
	if flags.Changed("batch-size") {
		job.BatchSize = opts.batchSize
	}
	if flags.Changed("rate-limit") {
		job.RateLimit = opts.rateLimit
	}
	if flags.Changed("progress-label") {
		job.Progress.Label = opts.progressLabel
	}
	if flags.Changed("progress-sink") {
		job.Progress.Sink = opts.progressSink
	}
	if opts.noProgress {
		disabled := false
		job.Progress.Enabled = &disabled
	}

	if opts.profile != "" {
		profile, ok := mgr.GetProfile(opts.profile)
		if !ok {
			return util.NewValidationError("profile", opts.profile,
				fmt.Sprintf("unknown profile (available: %s)", strings.Join(mgr.ProfileNames(), ", ")))
		}
		job.ApplyProfile(*profile)
	}
	job.ApplyDefaults(mgr.GetConfig().Defaults)

	return job.Validate()
}

func engineOptions(job *config.JobSpec, opts *runOptions, logger *slog.Logger, progressOut io.Writer) []executor.Option {
	engineOpts := []executor.Option{
		executor.WithWorkers(job.Workers),
		executor.WithBatchSize(job.BatchSize),
		executor.WithRateLimit(job.RateLimit, opts.rateBurst),
		executor.WithProgressSink(job.Progress.Sink),
		executor.WithLogger(logger),
		executor.WithOutput(progressOut),
	}
	if job.Progress.Label != "" {
		engineOpts = append(engineOpts, executor.WithProgressLabel(job.Progress.Label))
	}
	if job.Progress.Enabled != nil {
		engineOpts = append(engineOpts, executor.WithProgress(*job.Progress.Enabled))
	}
	return engineOpts
}

// outputFormat picks -o over the defaults file
func outputFormat(cfg *config.BatchrunConfig) string {
	if format := viper.GetString("output"); format != "" {
		return format
	}
	return cfg.Defaults.OutputFormat
}
