package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"training-coach/internal/coach"
	"training-coach/internal/config"
	"training-coach/internal/service"
	"training-coach/internal/store"
)

const (
	appName          = "training-coach"
	metricsNamespace = "training_coach"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds everything a subcommand needs once the root command has set up
type app struct {
	out io.Writer
	log zerolog.Logger
	cfg *config.Config

	configPath  string
	metricsAddr string
	athlete     string

	store    *store.Store
	load     *service.LoadService
	wellness *service.WellnessService
	coaching *service.CoachingService
	importer *service.ImportService
	query    *service.QueryService

	metricsServer *http.Server
	closers       []func() error
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Training load, readiness and guardrail analytics for endurance athletes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (.json, .yaml or .toml); default ~/.training-coach/config.json")
	root.PersistentFlags().StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	root.PersistentFlags().StringVar(&a.athlete, "athlete", "", "athlete id (overrides the config)")

	root.AddCommand(
		a.wellnessCmd(),
		a.loadCmd(),
		a.readinessCmd(),
		a.complianceCmd(),
		a.guardrailCmd(),
		a.reportCmd(),
		a.importFitCmd(),
		a.dashboardCmd(),
		a.thresholdsCmd(),
		a.planCmd(),
		a.activityCmd(),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if a.athlete != "" {
		cfg.Athlete.ID = a.athlete
	}
	a.cfg = cfg
	a.log = newLogger(cfg.Logging)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(metricsNamespace, "cli", reg)
	if a.metricsAddr != "" {
		a.serveMetrics(reg)
	}

	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, st.Close)

	gen, err := a.newGenerator(ctx)
	if err != nil {
		return err
	}

	a.load = service.NewLoadService(st, a.log, metrics)
	a.wellness = service.NewWellnessService(st, a.log, metrics)
	a.coaching = service.NewCoachingService(st, a.load, gen, a.log, metrics)
	a.importer = service.NewImportService(st, a.load, cfg.Athlete, a.log, metrics)
	a.query = service.NewQueryService(st, a.load)
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.LoadFile(a.configPath)
	}
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		dir, _ := config.GetConfigDir()
		fmt.Fprintf(os.Stderr, "No config file found; wrote an example to %s/config.json and using defaults.\n", dir)
		def := config.DefaultConfig()
		return &def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newGenerator returns nil when no coach endpoint is configured; reports then use the fallback text
func (a *app) newGenerator(ctx context.Context) (service.TextGenerator, error) {
	cc := a.cfg.Coach
	if !cc.Enabled() {
		return nil, nil
	}
	client := coach.NewClient(coach.Config{
		Endpoint:          cc.Endpoint,
		ClientID:          cc.ClientID,
		ClientSecret:      cc.ClientSecret,
		TokenURL:          cc.TokenURL,
		RequestsPerMinute: cc.RequestsPerMinute,
		Timeout:           time.Duration(cc.TimeoutSeconds) * time.Second,
		CacheTTL:          time.Duration(a.cfg.Cache.TTLMinutes) * time.Minute,
	}, a.log)

	if addr := a.cfg.Cache.RedisAddr; addr != "" {
		cache, err := coach.DialRedisCache(ctx, addr)
		if err != nil {
			// A missing cache only costs extra coach calls
			a.log.Warn().Err(err).Str("addr", addr).Msg("reply cache unavailable")
		} else {
			client.WithCache(cache)
			a.closers = append(a.closers, cache.Close)
		}
	}
	return client, nil
}

func (a *app) serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              a.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.metricsServer = srv
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Str("addr", a.metricsAddr).Msg("metrics server stopped")
		}
	}()
	a.log.Info().Str("addr", a.metricsAddr).Msg("serving metrics")
}

func (a *app) teardown() error {
	var err error
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err = multierr.Append(err, a.metricsServer.Shutdown(ctx))
		a.metricsServer = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	if cfg.JSON {
		w = os.Stderr
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", appName).Logger()
}
