// Package predictor estimates medal odds by simulating many seeded tournaments.
package predictor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/medals"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/logging"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/metrics"
)

// Runner plays the tournament for one seed.
type Runner interface {
	Run(ctx context.Context, seed int64) (domain.TournamentRun, error)
}

// Store defines the contract for memoizing reports by sample size.
type Store interface {
	GetReport(simulations int) (medals.Report, bool)
	SetReport(report medals.Report)
}

// Options tunes aggregation.
type Options struct {
	// Workers bounds parallelism; values below 1 mean one worker.
	Workers int
	// Language selects the collation used to order team names.
	Language language.Tag
}

// Service runs seeds 1..N through a Runner and tallies the podiums.
type Service struct {
	runner  Runner
	teams   []string
	store   Store
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewService constructs a Service. teams lists every team that can appear in
// a report, in configured order.
func NewService(runner Runner, teams []string, store Store, opts Options, logger *slog.Logger, recorder *metrics.Recorder) *Service {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Service{
		runner:  runner,
		teams:   append([]string(nil), teams...),
		store:   store,
		opts:    opts,
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
	}
}

// tally is the partial result of one contiguous chunk of seeds.
type tally struct {
	counts map[string]*[3]int
	gold   map[string][]int64
	medal  map[string][]int64
}

func newTally() *tally {
	return &tally{
		counts: make(map[string]*[3]int),
		gold:   make(map[string][]int64),
		medal:  make(map[string][]int64),
	}
}

func (t *tally) add(seed int64, podium games.Medalists) {
	for place, team := range []string{podium.Gold, podium.Silver, podium.Bronze} {
		c, ok := t.counts[team]
		if !ok {
			c = &[3]int{}
			t.counts[team] = c
		}
		c[place]++
		t.medal[team] = append(t.medal[team], seed)
	}
	t.gold[podium.Gold] = append(t.gold[podium.Gold], seed)
}

// Aggregate simulates seeds 1..n and returns the medal table. The result for a
// given n is identical regardless of worker count and is cached.
func (s *Service) Aggregate(ctx context.Context, n int) (medals.Report, error) {
	if n <= 0 {
		return medals.Report{}, fmt.Errorf("%w: %d", domain.ErrInvalidSampleSize, n)
	}
	logger := logging.FromContext(ctx, s.logger)
	if report, ok := s.store.GetReport(n); ok {
		logging.Debug(logger, "aggregation served",
			logging.FieldSimulations, n,
			logging.FieldCache, "hit",
		)
		return report, nil
	}

	start := s.now()
	report, err := s.aggregate(ctx, n)
	elapsed := s.now().Sub(start)
	s.metrics.RecordAggregation(n, elapsed, err)
	if err != nil {
		logging.Error(logger, "aggregation failed", err, logging.FieldSimulations, n)
		return medals.Report{}, err
	}
	s.store.SetReport(report)

	logging.Info(logger, "aggregation complete",
		logging.FieldSimulations, n,
		logging.FieldWorkers, s.workers(n),
		logging.FieldDurationMS, elapsed.Milliseconds(),
	)
	return report, nil
}

func (s *Service) workers(n int) int {
	return min(s.opts.Workers, n)
}

func (s *Service) aggregate(ctx context.Context, n int) (medals.Report, error) {
	workers := s.workers(n)
	chunk := (n + workers - 1) / workers
	parts := make([]*tally, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := int64(w*chunk + 1)
		hi := int64(min((w+1)*chunk, n))
		part := newTally()
		parts[w] = part
		g.Go(func() error {
			for seed := lo; seed <= hi; seed++ {
				run, err := s.runner.Run(gctx, seed)
				if err != nil {
					return fmt.Errorf("seed %d: %w", seed, err)
				}
				podium, err := games.Medals(run.Matches)
				if err != nil {
					return fmt.Errorf("seed %d: %w", seed, err)
				}
				part.add(seed, podium)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return medals.Report{}, err
	}
	return s.merge(n, parts), nil
}

// merge folds the chunk tallies in seed order so seed lists stay ascending.
func (s *Service) merge(n int, parts []*tally) medals.Report {
	report := medals.Report{
		Simulations: n,
		Odds:        make([]medals.TeamOdds, 0, len(s.teams)),
		Index:       make(medals.SeedIndex, len(s.teams)),
	}
	for _, team := range s.teams {
		row := medals.TeamOdds{Team: team}
		var seeds medals.TeamSeeds
		for _, part := range parts {
			if c, ok := part.counts[team]; ok {
				row.Gold += c[0]
				row.Silver += c[1]
				row.Bronze += c[2]
			}
			seeds.Gold = append(seeds.Gold, part.gold[team]...)
			seeds.Medal = append(seeds.Medal, part.medal[team]...)
		}
		row.GoldPct = percent(row.Gold, n)
		row.SilverPct = percent(row.Silver, n)
		row.BronzePct = percent(row.Bronze, n)
		row.MedalPct = percent(row.Medals(), n)
		report.Odds = append(report.Odds, row)
		report.Index[team] = seeds
	}

	col := collate.New(s.opts.Language)
	sort.SliceStable(report.Odds, func(i, j int) bool {
		a, b := report.Odds[i], report.Odds[j]
		if a.Gold != b.Gold {
			return a.Gold > b.Gold
		}
		if a.Silver != b.Silver {
			return a.Silver > b.Silver
		}
		if a.Bronze != b.Bronze {
			return a.Bronze > b.Bronze
		}
		return col.CompareString(a.Team, b.Team) < 0
	})
	return report
}

func percent(count, n int) float64 {
	return float64(count) * 100 / float64(n)
}

// FindSeed returns the first seed among 1..n in which team won gold (onlyGold)
// or any medal. The bool is false when no such seed exists.
func (s *Service) FindSeed(ctx context.Context, n int, team string, onlyGold bool) (int64, bool, error) {
	if !s.knows(team) {
		return 0, false, &domain.UnknownTeamError{Team: team}
	}
	report, err := s.Aggregate(ctx, n)
	if err != nil {
		return 0, false, err
	}
	seed, ok := report.Index.Find(team, onlyGold)
	logging.Debug(logging.FromContext(ctx, s.logger), "seed search",
		logging.FieldTeam, team,
		logging.FieldSimulations, n,
		logging.FieldSeed, seed,
		"found", ok,
	)
	return seed, ok, nil
}

func (s *Service) knows(team string) bool {
	for _, t := range s.teams {
		if t == team {
			return true
		}
	}
	return false
}
