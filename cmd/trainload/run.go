package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"trainload/internal/collector"
	"trainload/internal/config"
	"trainload/internal/coordinator"
	"trainload/internal/core"
	transport "trainload/internal/http"
	"trainload/internal/progress"
	"trainload/internal/ratelimit"
	"trainload/internal/recorder"
	"trainload/internal/workload"
)

// profileGrace is added to the profile duration before the run is cut off.
const profileGrace = 5 * time.Second

type runOptions struct {
	configPath    string
	actors        int
	duration      time.Duration
	output        string
	quiet         bool
	verbose       bool
	logLevel      string
	maxIterations int
	warmup        int
	seed          int64
	stdout        io.Writer
	stderr        io.Writer
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a load test with the given config",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.stdout, opts.stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
			return runLoad(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file (required)")
	f.IntVarP(&opts.actors, "actors", "a", 5, "number of actors to spawn")
	f.DurationVarP(&opts.duration, "duration", "d", 10*time.Second, "test duration")
	f.StringVarP(&opts.output, "output", "o", "text", "output format: text, json")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress output during test")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug output (request/response logging)")
	f.StringVar(&opts.logLevel, "log-level", "info", "diagnostic log level: debug, info, warn, error")
	f.IntVar(&opts.maxIterations, "max-iterations", 0, "max iterations per actor (0 = unlimited)")
	f.IntVar(&opts.warmup, "warmup", 0, "warmup iterations before collecting metrics (per-actor)")
	f.Int64Var(&opts.seed, "seed", 0, "random seed (0 = use config, then random)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runLoad(parent context.Context, opts *runOptions) error {
	if opts.output != "text" && opts.output != "json" {
		return &exitError{code: ExitError, err: fmt.Errorf("--output must be 'text' or 'json', got %q", opts.output)}
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return &exitError{code: ExitError, err: err}
	}
	profiled := cfg.LoadProfile != nil && len(cfg.LoadProfile.Phases) > 0
	if !profiled && opts.actors < 1 {
		return &exitError{code: ExitError, err: errors.New("--actors must be >= 1")}
	}
	if opts.seed != 0 {
		cfg.Execution.Seed = opts.seed
	}

	logger, err := newLogger(opts.stderr, opts.logLevel, opts.verbose)
	if err != nil {
		return &exitError{code: ExitError, err: err}
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("run_id", uuid.NewString()), zap.String("scenario", cfg.Scenario))

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coll := collector.NewCollector()
	reporter := core.MultiReporter{coll}

	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		exporter, err := collector.NewPromExporter(reg)
		if err != nil {
			return &exitError{code: ExitError, err: err}
		}
		reporter = append(reporter, exporter)
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: metricsMux(reg)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", zap.String("addr", cfg.Metrics.Listen))
	}

	env := &workload.Env{
		Sender: &transport.Sender{
			Client: transport.NewClient(transport.ClientConfig{
				Timeout:            cfg.Target.Timeout,
				InsecureSkipVerify: cfg.Target.InsecureSkipVerify,
			}),
		},
		Logger: logger,
		Dump:   opts.stdout,
	}
	if opts.verbose {
		env.Sender.Debug = transport.NewDebugLogger(opts.stderr)
	}

	if cfg.Scenario == config.ScenarioTrainingList && cfg.TrainingList.Record {
		log, err := recorder.Open(cfg.TrainingList.LogFile, recorder.TrainingListHeader)
		if err != nil {
			return &exitError{code: ExitError, err: err}
		}
		defer func() {
			if err := log.Close(); err != nil {
				logger.Error("closing response log", zap.Error(err))
			}
		}()
		env.Log = log
	}

	var rateLimiter *ratelimit.RateLimiter
	if profiled && ratelimit.HasRPS(cfg.LoadProfile.Phases) {
		rateLimiter = ratelimit.NewRateLimiter(ratelimit.InitialRPS(cfg.LoadProfile.Phases))
		env.Limiter = rateLimiter
	}

	scenario, err := workload.New(cfg, env)
	if err != nil {
		return &exitError{code: ExitError, err: err}
	}

	runnerConfig := core.RunnerConfig{
		MaxIterations: cfg.Execution.MaxIterations,
		WarmupIters:   cfg.Execution.WarmupIterations,
	}
	if opts.maxIterations > 0 {
		runnerConfig.MaxIterations = opts.maxIterations
	}
	if opts.warmup > 0 {
		runnerConfig.WarmupIters = opts.warmup
	}

	if runnerConfig.Limited() {
		logger.Info("iteration limits",
			zap.Int("max_iterations", runnerConfig.MaxIterations),
			zap.Int("warmup_iterations", runnerConfig.WarmupIters))
	}

	coord := coordinator.NewCoordinator(scenario, reporter, runnerConfig, logger)
	prog := progress.NewProgress(coll, opts.quiet)
	prog.SetOutput(opts.stderr)
	prog.SetActors(coord.ActiveActors)

	if profiled {
		prog.Printf("trainload starting with load profile, scenario %q, target %s", scenario.Name(), cfg.Target.Host)
		runCtx, cancel := context.WithTimeout(ctx, cfg.LoadProfile.TotalDuration()+profileGrace)
		prog.Start()
		coord.RunProfile(runCtx, cfg.LoadProfile, rateLimiter, prog)
		coord.Wait()
		cancel()
	} else {
		prog.Printf("trainload starting: %d actors, duration %v, scenario %q, target %s",
			opts.actors, opts.duration, scenario.Name(), cfg.Target.Host)
		runCtx, cancel := context.WithTimeout(ctx, opts.duration)
		prog.Start()
		coord.Spawn(runCtx, opts.actors)
		coord.Wait()
		cancel()
	}
	interrupted := ctx.Err() != nil
	if interrupted && !opts.quiet {
		fmt.Fprintln(opts.stderr, "\nReceived interrupt signal, shutting down...")
	}

	prog.Stop()
	coll.Close()
	metrics := coll.Compute()
	if metrics.Dropped > 0 {
		logger.Warn("collector dropped events", zap.Int64("dropped", metrics.Dropped))
	}

	var results *collector.ThresholdResults
	if cfg.Thresholds != nil {
		results = cfg.Thresholds.Check(metrics)
	}
	if opts.output == "json" {
		collector.FormatJSON(opts.stdout, metrics, results)
	} else {
		collector.FormatText(opts.stdout, metrics, results)
	}
	if env.Log != nil {
		logger.Info("response log written", zap.String("path", env.Log.Path()), zap.Int("rows", env.Log.Rows()))
	}

	if interrupted {
		return nil
	}
	if results != nil && !results.Passed {
		for _, v := range results.Violations() {
			logger.Warn("threshold violated",
				zap.String("threshold", v.Name),
				zap.String("limit", v.Threshold),
				zap.String("actual", v.Actual))
		}
		if opts.output == "text" {
			fmt.Fprintln(opts.stderr, "\nThreshold check failed!")
		}
		return &exitError{code: ExitThresholdFailed}
	}
	return nil
}

func metricsMux(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.MetricsHandler(g))
	return mux
}

// newLogger builds the console logger used for diagnostics. --verbose
// forces debug level.
func newLogger(w io.Writer, level string, verbose bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	zc := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), lvl)
	return zap.New(zc), nil
}
