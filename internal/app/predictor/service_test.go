package predictor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/app/tournament"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/match"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/metrics"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/providers/fixture"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/store"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/testutil"
)

// podiumRunner hands out scripted podiums keyed by seed.
type podiumRunner struct {
	mu      sync.Mutex
	podiums func(seed int64) games.Medalists
	calls   int
	failAt  int64
}

func (r *podiumRunner) Run(ctx context.Context, seed int64) (domain.TournamentRun, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.TournamentRun{}, err
	}
	if r.failAt != 0 && seed == r.failAt {
		return domain.TournamentRun{}, errors.New("boom")
	}
	p := r.podiums(seed)
	final := games.NewMatch("D2", games.StagePlayoff, p.Gold, p.Silver, games.Result{Score1: 2, Score2: 1, Type: games.ResultRegulation})
	final.Round = games.RoundFinal
	bronze := games.NewMatch("D1", games.StagePlayoff, "nobody", p.Bronze, games.Result{Score1: 0, Score2: 3, Type: games.ResultRegulation})
	bronze.Round = games.RoundBronze
	return domain.TournamentRun{Seed: seed, Matches: []games.Match{bronze, final}}, nil
}

// rotating gives gold to X on odd seeds and Y on even ones.
func rotating(seed int64) games.Medalists {
	if seed%2 == 1 {
		return games.Medalists{Gold: "X", Silver: "Y", Bronze: "Z"}
	}
	return games.Medalists{Gold: "Y", Silver: "Z", Bronze: "X"}
}

func TestAggregateTalliesScriptedPodiums(t *testing.T) {
	runner := &podiumRunner{podiums: rotating}
	svc := NewService(runner, []string{"W", "X", "Y", "Z"}, store.NewMemoryStore(), Options{Workers: 3}, nil, nil)

	report, err := svc.Aggregate(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Simulations != 10 || len(report.Odds) != 4 {
		t.Fatalf("unexpected report shape %+v", report)
	}

	order := make([]string, 0, len(report.Odds))
	for _, row := range report.Odds {
		order = append(order, row.Team)
	}
	// X and Y tie on gold; Y has the silvers.
	if want := []string{"Y", "X", "Z", "W"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}

	x, _ := report.OddsFor("X")
	if x.Gold != 5 || x.Silver != 0 || x.Bronze != 5 || x.GoldPct != 50 || x.MedalPct != 100 {
		t.Fatalf("unexpected X row %+v", x)
	}
	w, _ := report.OddsFor("W")
	if w.Medals() != 0 || w.MedalPct != 0 {
		t.Fatalf("expected W without medals, got %+v", w)
	}

	if got := report.Index["Y"].Gold; !reflect.DeepEqual(got, []int64{2, 4, 6, 8, 10}) {
		t.Fatalf("expected ascending gold seeds for Y, got %v", got)
	}
	if got := report.Index["X"].Medal; !reflect.DeepEqual(got, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}) {
		t.Fatalf("expected every seed in X medal list, got %v", got)
	}
}

func TestAggregateIsCachedBySampleSize(t *testing.T) {
	runner := &podiumRunner{podiums: rotating}
	rec := metrics.NewRecorder()
	svc := NewService(runner, []string{"X", "Y", "Z"}, store.NewMemoryStore(), Options{Workers: 2}, nil, rec)
	svc.now = testutil.StepClock(time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC), time.Second)

	first, err := svc.Aggregate(context.Background(), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Odds[0].Gold = 999

	second, err := svc.Aggregate(context.Background(), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.calls != 6 {
		t.Fatalf("expected six runs for one aggregation, got %d", runner.calls)
	}
	if second.Odds[0].Gold == 999 {
		t.Fatalf("expected cached report isolated from caller mutation")
	}
	if snap := rec.Simulations(); snap.Aggregations != 1 || snap.Simulated != 6 || snap.LastAggregation != time.Second {
		t.Fatalf("unexpected aggregation metrics %+v", snap)
	}
}

func TestAggregateRejectsInvalidSampleSize(t *testing.T) {
	svc := NewService(&podiumRunner{podiums: rotating}, []string{"X"}, store.NewMemoryStore(), Options{}, nil, nil)

	for _, n := range []int{0, -5} {
		if _, err := svc.Aggregate(context.Background(), n); !errors.Is(err, domain.ErrInvalidSampleSize) {
			t.Fatalf("n=%d: expected ErrInvalidSampleSize, got %v", n, err)
		}
	}
}

func TestAggregatePropagatesRunErrors(t *testing.T) {
	rec := metrics.NewRecorder()
	svc := NewService(&podiumRunner{podiums: rotating, failAt: 7}, []string{"X", "Y", "Z"}, store.NewMemoryStore(), Options{Workers: 4}, nil, rec)

	_, err := svc.Aggregate(context.Background(), 20)
	if err == nil {
		t.Fatal("expected error from failing seed")
	}
	if snap := rec.Simulations(); snap.AggregationErrors != 1 {
		t.Fatalf("expected aggregation error recorded, got %+v", snap)
	}
}

func TestAggregateSortsTiesByCollation(t *testing.T) {
	// Nobody medals, so the whole table is ordered by name.
	runner := &podiumRunner{podiums: func(int64) games.Medalists {
		return games.Medalists{Gold: "A", Silver: "B", Bronze: "D"}
	}}
	teams := []string{"Švédsko", "Česko", "Dánsko", "Slovensko", "Chorvatsko", "Cyprus", "A", "B", "D"}
	svc := NewService(runner, teams, store.NewMemoryStore(), Options{Workers: 1, Language: language.Czech}, nil, nil)

	report, err := svc.Aggregate(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := make([]string, 0, len(report.Odds))
	for _, row := range report.Odds[3:] {
		got = append(got, row.Team)
	}
	// Czech sorts Č after C and Ch after H.
	want := []string{"Cyprus", "Česko", "Dánsko", "Chorvatsko", "Slovensko", "Švédsko"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func newFixtureService(t *testing.T, workers int) *Service {
	t.Helper()
	tour := fixture.Tournament()
	runner, err := tournament.NewService(tour, match.DefaultParams(), store.NewMemoryStore(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewService(runner, tour.TeamNames(), store.NewMemoryStore(), Options{Workers: workers}, nil, nil)
}

func TestAggregateClosureOverFixtureTournament(t *testing.T) {
	const n = 100
	report, err := newFixtureService(t, 4).Aggregate(context.Background(), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gold, silver, bronze int
	var goldPct float64
	for _, row := range report.Odds {
		gold += row.Gold
		silver += row.Silver
		bronze += row.Bronze
		goldPct += row.GoldPct
		if row.Gold+row.Silver+row.Bronze > n {
			t.Fatalf("team %s medals more than once per tournament", row.Team)
		}
	}
	if gold != n || silver != n || bronze != n {
		t.Fatalf("expected each medal awarded %d times, got %d/%d/%d", n, gold, silver, bronze)
	}
	if goldPct < 99.999 || goldPct > 100.001 {
		t.Fatalf("expected gold percentages to sum to 100, got %f", goldPct)
	}
	for i := 1; i < len(report.Odds); i++ {
		if report.Odds[i].Gold > report.Odds[i-1].Gold {
			t.Fatalf("rows not ordered by gold count: %+v", report.Odds)
		}
	}
}

func TestAggregateIndependentOfWorkerCount(t *testing.T) {
	const n = 60
	var reports []string
	for _, workers := range []int{1, 3, 7, 200} {
		report, err := newFixtureService(t, workers).Aggregate(context.Background(), n)
		if err != nil {
			t.Fatalf("workers=%d: unexpected error: %v", workers, err)
		}
		reports = append(reports, fmt.Sprintf("%+v", report))
	}
	for i := 1; i < len(reports); i++ {
		if reports[i] != reports[0] {
			t.Fatalf("expected identical reports across worker counts")
		}
	}
}

func TestFindSeed(t *testing.T) {
	runner := &podiumRunner{podiums: rotating}
	logger, buf := testutil.NewDebugBufferLogger()
	svc := NewService(runner, []string{"W", "X", "Y", "Z"}, store.NewMemoryStore(), Options{Workers: 2}, logger, nil)

	cases := []struct {
		team     string
		onlyGold bool
		seed     int64
		found    bool
	}{
		{"X", true, 1, true},
		{"Y", true, 2, true},
		{"Z", false, 1, true},
		{"Z", true, 0, false},
		{"W", false, 0, false},
	}
	for _, tc := range cases {
		seed, ok, err := svc.FindSeed(context.Background(), 10, tc.team, tc.onlyGold)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.team, err)
		}
		if seed != tc.seed || ok != tc.found {
			t.Fatalf("%s gold=%t: got (%d,%t), want (%d,%t)", tc.team, tc.onlyGold, seed, ok, tc.seed, tc.found)
		}
	}

	logs := buf.String()
	for _, want := range []string{"seed search", "team=Y", "found=false", "cache=hit"} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %q in logs:\n%s", want, logs)
		}
	}

	if _, _, err := svc.FindSeed(context.Background(), 10, "Atlantis", false); !errors.Is(err, domain.ErrUnknownTeam) {
		t.Fatalf("expected ErrUnknownTeam, got %v", err)
	}
	if _, _, err := svc.FindSeed(context.Background(), 0, "X", false); !errors.Is(err, domain.ErrInvalidSampleSize) {
		t.Fatalf("expected ErrInvalidSampleSize, got %v", err)
	}
}
