package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/logging"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/metrics"
)

// instrumentedProvider wraps a TournamentProvider with logging and metrics.
type instrumentedProvider struct {
	inner   TournamentProvider
	logger  *slog.Logger
	metrics *metrics.Recorder
	name    string
	now     func() time.Time
}

// NewInstrumentedProvider records every load attempt under the given provider name.
func NewInstrumentedProvider(inner TournamentProvider, logger *slog.Logger, recorder *metrics.Recorder, name string) TournamentProvider {
	return &instrumentedProvider{
		inner:   inner,
		logger:  logger,
		metrics: recorder,
		name:    name,
		now:     time.Now,
	}
}

func (p *instrumentedProvider) FetchTournament(ctx context.Context) (domain.Tournament, error) {
	start := p.now()
	t, err := p.inner.FetchTournament(ctx)
	elapsed := p.now().Sub(start)
	p.metrics.RecordProviderAttempt(p.name, elapsed, err)

	logger := logging.FromContext(ctx, p.logger)
	if err != nil {
		logWithProvider(ctx, logger, slog.LevelError, p.name, "tournament load failed",
			"err", err,
			logging.FieldDurationMS, elapsed.Milliseconds(),
		)
		return domain.Tournament{}, err
	}
	logWithProvider(ctx, logger, slog.LevelInfo, p.name, "tournament loaded",
		"teams", len(t.Teams),
		"fixtures", len(t.Schedule),
		"overrides", len(t.Overrides),
		logging.FieldDurationMS, elapsed.Milliseconds(),
	)
	return t, nil
}
