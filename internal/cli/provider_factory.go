package cli

import (
	"log/slog"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/config"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/metrics"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/providers"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/providers/file"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/providers/fixture"
)

// providerFactory assembles the configured provider with shared instrumentation.
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, recorder *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: recorder}
}

func (f providerFactory) build(cfg config.Config) providers.TournamentProvider {
	base, name := selectProvider(cfg)
	return providers.NewInstrumentedProvider(base, f.logger, f.metrics, name)
}

// selectProvider maps the configured provider to an implementation. config.Load
// has already rejected unknown names, so anything else falls back to the fixture.
func selectProvider(cfg config.Config) (providers.TournamentProvider, string) {
	if cfg.Provider == config.ProviderFile {
		return file.New(cfg.TournamentFile), file.Name
	}
	return fixture.New(), fixture.Name
}
