// Package cli wires configuration, telemetry and the simulation services
// behind the simulator's subcommands.
package cli

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/app/predictor"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/app/teams"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/app/tournament"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/config"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/logging"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/match"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/metrics"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/providers"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/store"
)

var metricsSetup = metrics.Setup

// App holds the wired services for one process.
type App struct {
	cfg         config.Config
	logger      *slog.Logger
	metrics     *metrics.Recorder
	gatherer    prometheus.Gatherer
	metricsStop func(context.Context) error
	store       *store.MemoryStore
	tournaments *tournament.Service
	predictor   *predictor.Service
	roster      *teams.Service
}

// New loads the tournament through the configured provider and wires services.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	return newAppWithProvider(ctx, cfg, logger, nil)
}

func newAppWithProvider(ctx context.Context, cfg config.Config, logger *slog.Logger, provider providers.TournamentProvider) (*App, error) {
	recorder, gatherer, metricsStop := buildMetrics(ctx, cfg, logger)

	if provider == nil {
		provider = newProviderFactory(logger, recorder).build(cfg)
	} else {
		provider = providers.NewInstrumentedProvider(provider, logger, recorder, cfg.Provider)
	}
	tour, err := provider.FetchTournament(ctx)
	if err != nil {
		_ = metricsStop(ctx)
		return nil, err
	}

	memoryStore := store.NewMemoryStore()
	params := match.Params{
		BaseGoals:        cfg.Model.BaseGoals,
		Exponent:         cfg.Model.Exponent,
		SplitShootouts:   cfg.Model.SplitShootouts,
		PlayoffOverrides: cfg.Model.PlayoffOverrides,
	}
	tournaments, err := tournament.NewService(tour, params, memoryStore, logger, recorder)
	if err != nil {
		_ = metricsStop(ctx)
		return nil, err
	}
	pred := predictor.NewService(tournaments, tour.TeamNames(), memoryStore, predictor.Options{
		Workers:  cfg.Workers,
		Language: cfg.Collation(),
	}, logger, recorder)

	return &App{
		cfg:         cfg,
		logger:      logger,
		metrics:     recorder,
		gatherer:    gatherer,
		metricsStop: metricsStop,
		store:       memoryStore,
		tournaments: tournaments,
		predictor:   pred,
		roster:      teams.NewService(tournaments),
	}, nil
}

// Close writes the metrics textfile when configured and stops telemetry.
func (a *App) Close(ctx context.Context) error {
	if err := metrics.WriteTextfile(a.cfg.Metrics.File, a.gatherer); err != nil {
		logging.Warn(a.logger, "metrics textfile write failed", "err", err)
	}
	if a.metricsStop == nil {
		return nil
	}
	return a.metricsStop(ctx)
}

func buildMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger) (*metrics.Recorder, prometheus.Gatherer, func(context.Context) error) {
	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, gatherer, shutdown, err := metricsSetup(ctx, recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), nil, func(context.Context) error { return nil }
	}
	return rec, gatherer, shutdown
}
