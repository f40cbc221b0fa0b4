// Package tournament plays one full tournament per seed: the group stage,
// the seeding step and the playoff.
package tournament

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/bracket"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/logging"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/match"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/metrics"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/standings"
)

// Store defines the contract for memoizing runs by seed.
type Store interface {
	GetRun(seed int64) (domain.TournamentRun, bool)
	SetRun(run domain.TournamentRun)
}

// Service coordinates the resolver, standings, seeder and playoff engine.
// A run is a pure function of the seed, so results are cached for the life of
// the process.
type Service struct {
	tournament domain.Tournament
	resolver   *match.Resolver
	engine     *bracket.Engine
	store      Store
	logger     *slog.Logger
	metrics    *metrics.Recorder
	flights    singleflight.Group
	dateIndex  map[string]int
	now        func() time.Time
}

// NewService validates the tournament once and wires the simulation pipeline.
func NewService(t domain.Tournament, params match.Params, store Store, logger *slog.Logger, recorder *metrics.Recorder) (*Service, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	resolver, err := match.NewResolver(t.Powers(), t.Overrides, params)
	if err != nil {
		return nil, err
	}
	engine, err := bracket.NewEngine(bracket.DefaultPairings(), t.RoundDates)
	if err != nil {
		return nil, err
	}
	if len(t.Teams) != engine.Size() {
		return nil, &domain.ConfigError{
			Field:  "teams",
			Reason: fmt.Sprintf("playoff bracket needs %d teams, got %d", engine.Size(), len(t.Teams)),
		}
	}

	idx := make(map[string]int, len(t.Dates))
	for i, d := range t.Dates {
		idx[d] = i
	}
	return &Service{
		tournament: t,
		resolver:   resolver,
		engine:     engine,
		store:      store,
		logger:     logger,
		metrics:    recorder,
		dateIndex:  idx,
		now:        time.Now,
	}, nil
}

// Tournament returns the definition the service simulates.
func (s *Service) Tournament() domain.Tournament {
	return s.tournament
}

// Run returns the tournament for a seed: 18 group games in schedule order
// followed by the playoff games in round order.
func (s *Service) Run(ctx context.Context, seed int64) (domain.TournamentRun, error) {
	if err := ctx.Err(); err != nil {
		return domain.TournamentRun{}, err
	}
	start := s.now()
	if run, ok := s.store.GetRun(seed); ok {
		s.metrics.RecordTournament(s.now().Sub(start), true)
		logging.Debug(logging.FromContext(ctx, s.logger), "tournament served",
			logging.FieldSeed, seed,
			logging.FieldCache, "hit",
		)
		return run, nil
	}

	v, err, _ := s.flights.Do(strconv.FormatInt(seed, 10), func() (any, error) {
		if run, ok := s.store.GetRun(seed); ok {
			s.metrics.RecordTournament(s.now().Sub(start), true)
			return run, nil
		}
		run, err := s.simulate(seed)
		if err != nil {
			return nil, err
		}
		s.store.SetRun(run)

		elapsed := s.now().Sub(start)
		s.metrics.RecordTournament(elapsed, false)
		logging.Debug(logging.FromContext(ctx, s.logger), "tournament simulated",
			logging.FieldSeed, seed,
			logging.FieldCache, "miss",
			logging.FieldCount, len(run.Matches),
			logging.FieldDurationMS, elapsed.Milliseconds(),
		)
		return run, nil
	})
	if err != nil {
		logging.Error(logging.FromContext(ctx, s.logger), "tournament simulation failed", err, logging.FieldSeed, seed)
		return domain.TournamentRun{}, err
	}

	// Shared flights hand out the same value; callers always get their own copy.
	return v.(domain.TournamentRun).Clone(), nil
}

// GroupStandingsAsOf ranks every group using only the group games played on or
// before the date at cutoff.
func (s *Service) GroupStandingsAsOf(ctx context.Context, seed int64, cutoff int) ([]bracket.GroupTable, error) {
	if err := s.checkDate(cutoff); err != nil {
		return nil, err
	}
	run, err := s.Run(ctx, seed)
	if err != nil {
		return nil, err
	}
	played := make([]games.Match, 0, len(run.Matches))
	for _, m := range run.GroupMatches() {
		if s.dateIndex[m.Date] <= cutoff {
			played = append(played, m)
		}
	}
	return s.tables(played)
}

// MatchesOn returns every game of the run played on the date at index, group
// and playoff alike, in run order.
func (s *Service) MatchesOn(ctx context.Context, seed int64, index int) ([]games.Match, error) {
	if err := s.checkDate(index); err != nil {
		return nil, err
	}
	run, err := s.Run(ctx, seed)
	if err != nil {
		return nil, err
	}
	day := s.tournament.Dates[index]
	out := make([]games.Match, 0, 8)
	for _, m := range run.Matches {
		if m.Date == day {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Service) checkDate(index int) error {
	if index < 0 || index >= len(s.tournament.Dates) {
		return fmt.Errorf("%w: %d outside [0, %d)", domain.ErrInvalidDateIndex, index, len(s.tournament.Dates))
	}
	return nil
}

func (s *Service) simulate(seed int64) (domain.TournamentRun, error) {
	matches := make([]games.Match, 0, len(s.tournament.Schedule)+16)
	for i, f := range s.tournament.Schedule {
		r, err := s.resolver.Resolve(f.Team1, f.Team2, match.Stream{Seed: seed, Offset: i}, false)
		if err != nil {
			return domain.TournamentRun{}, fmt.Errorf("fixture %d %s vs %s: %w", i, f.Team1, f.Team2, err)
		}
		m := games.NewMatch(f.Date, games.StageGroup, f.Team1, f.Team2, r)
		if g, ok := s.tournament.GroupOf(f.Team1); ok {
			m.Group = g.Name
		}
		matches = append(matches, m)
	}

	tables, err := s.tables(matches)
	if err != nil {
		return domain.TournamentRun{}, err
	}
	order, err := bracket.Seed(tables)
	if err != nil {
		return domain.TournamentRun{}, err
	}
	playoff, err := s.engine.Run(order, func(team1, team2 string, offset int) (games.Result, error) {
		return s.resolver.Resolve(team1, team2, match.Stream{Seed: seed, Offset: offset}, true)
	})
	if err != nil {
		return domain.TournamentRun{}, err
	}

	return domain.TournamentRun{
		Seed:      seed,
		Matches:   append(matches, playoff...),
		SeedOrder: order,
	}, nil
}

// tables ranks each group over its own group games.
func (s *Service) tables(matches []games.Match) ([]bracket.GroupTable, error) {
	out := make([]bracket.GroupTable, 0, len(s.tournament.Groups))
	for _, g := range s.tournament.Groups {
		own := make([]games.Match, 0, len(matches))
		for _, m := range matches {
			if m.Group == g.Name {
				own = append(own, m)
			}
		}
		entries, err := standings.Rank(g.Teams, own)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.Name, err)
		}
		out = append(out, bracket.GroupTable{Group: g.Name, Entries: entries})
	}
	return out, nil
}
