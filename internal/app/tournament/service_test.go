package tournament

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/bracket"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/teams"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/match"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/metrics"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/providers/fixture"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/store"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/testutil"
)

type countingStore struct {
	mu    sync.Mutex
	inner *store.MemoryStore
	hits  int
	sets  int
}

func newCountingStore() *countingStore {
	return &countingStore{inner: store.NewMemoryStore()}
}

func (s *countingStore) GetRun(seed int64) (domain.TournamentRun, bool) {
	run, ok := s.inner.GetRun(seed)
	if ok {
		s.mu.Lock()
		s.hits++
		s.mu.Unlock()
	}
	return run, ok
}

func (s *countingStore) SetRun(run domain.TournamentRun) {
	s.mu.Lock()
	s.sets++
	s.mu.Unlock()
	s.inner.SetRun(run)
}

func newService(t *testing.T, tour domain.Tournament) (*Service, *countingStore, *metrics.Recorder) {
	t.Helper()
	st := newCountingStore()
	rec := metrics.NewRecorder()
	logger, _ := testutil.NewBufferLogger()
	svc, err := NewService(tour, match.DefaultParams(), st, logger, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc, st, rec
}

func TestRunIsDeterministic(t *testing.T) {
	a, _, _ := newService(t, fixture.Tournament())
	b, _, _ := newService(t, fixture.Tournament())

	for _, seed := range []int64{1, 42, -7, 1 << 40} {
		ra, err := a.Run(context.Background(), seed)
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		rb, err := b.Run(context.Background(), seed)
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		if !reflect.DeepEqual(ra, rb) {
			t.Fatalf("seed %d: expected identical runs from separate services", seed)
		}
	}
}

func TestRunShape(t *testing.T) {
	svc, _, _ := newService(t, fixture.Tournament())
	tour := svc.Tournament()

	for seed := int64(1); seed <= 50; seed++ {
		run, err := svc.Run(context.Background(), seed)
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		if run.Seed != seed {
			t.Fatalf("expected seed %d, got %d", seed, run.Seed)
		}
		if len(run.Matches) != 30 || len(run.GroupMatches()) != 18 || len(run.PlayoffMatches()) != 12 {
			t.Fatalf("seed %d: expected 18+12 matches, got %d", seed, len(run.Matches))
		}
		for i, m := range run.Matches {
			if m.Result.Score1 == m.Result.Score2 {
				t.Fatalf("seed %d: match %d tied: %s", seed, i, m)
			}
			if i < 18 {
				f := tour.Schedule[i]
				if m.Stage != games.StageGroup || m.Team1 != f.Team1 || m.Team2 != f.Team2 || m.Date != f.Date {
					t.Fatalf("seed %d: group match %d out of schedule order: %+v", seed, i, m)
				}
				if g, _ := tour.GroupOf(m.Team1); g.Name != m.Group {
					t.Fatalf("seed %d: match %d has group %q, want %q", seed, i, m.Group, g.Name)
				}
			} else if m.Stage != games.StagePlayoff || m.Label == "" {
				t.Fatalf("seed %d: playoff match %d malformed: %+v", seed, i, m)
			}
		}
		if run.Matches[29].Round != games.RoundFinal || run.Matches[29].Date != tour.RoundDates[games.RoundFinal] {
			t.Fatalf("seed %d: expected final last, got %+v", seed, run.Matches[29])
		}
		if len(run.SeedOrder) != 12 {
			t.Fatalf("seed %d: expected 12 seeds, got %v", seed, run.SeedOrder)
		}
	}
}

func TestRunGroupPointsAreConserved(t *testing.T) {
	svc, _, _ := newService(t, fixture.Tournament())

	for seed := int64(1); seed <= 100; seed++ {
		tables, err := svc.GroupStandingsAsOf(context.Background(), seed, 4)
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		for _, tbl := range tables {
			total, played := 0, 0
			for i, e := range tbl.Entries {
				total += e.Points
				played += e.Played
				if i > 0 && e.Points > tbl.Entries[i-1].Points {
					t.Fatalf("seed %d: group %s not ordered by points", seed, tbl.Group)
				}
			}
			// Six games, three points each, whatever the decision type.
			if total != 18 || played != 12 {
				t.Fatalf("seed %d: group %s has %d points over %d appearances", seed, tbl.Group, total, played)
			}
		}
	}
}

func TestRunHonoursFixedResults(t *testing.T) {
	svc, _, _ := newService(t, fixture.Tournament())

	for seed := int64(1); seed <= 50; seed++ {
		run, err := svc.Run(context.Background(), seed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first := run.Matches[0]
		if first.Team1 != "Slovensko" || first.Result != testutil.Result(4, 1, games.ResultRegulation) {
			t.Fatalf("seed %d: expected fixed 4:1, got %s", seed, first)
		}
		if run.Matches[1].Result != testutil.Result(5, 2, games.ResultRegulation) {
			t.Fatalf("seed %d: expected fixed 5:2, got %s", seed, run.Matches[1])
		}
	}
}

func TestRunIsCachedAndCopied(t *testing.T) {
	svc, st, rec := newService(t, fixture.Tournament())

	first, err := svc.Run(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Matches[0].Team1 = "mutated"
	first.SeedOrder[0] = "mutated"

	second, err := svc.Run(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Matches[0].Team1 == "mutated" || second.SeedOrder[0] == "mutated" {
		t.Fatalf("expected cached run to be isolated from caller mutation")
	}
	if st.sets != 1 || st.hits != 1 {
		t.Fatalf("expected one store write and one hit, got sets=%d hits=%d", st.sets, st.hits)
	}
	snap := rec.Simulations()
	if snap.Tournaments != 1 || snap.CacheHits != 1 {
		t.Fatalf("unexpected simulation metrics %+v", snap)
	}
}

func TestRunLogsCacheOutcome(t *testing.T) {
	logger, buf := testutil.NewDebugBufferLogger()
	svc, err := NewService(testutil.SampleTournament(), match.DefaultParams(), store.NewMemoryStore(), logger, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.Run(context.Background(), 5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	out := buf.String()
	for _, want := range []string{"tournament simulated", "cache=miss", "count=30", "tournament served", "cache=hit", "seed=5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in logs:\n%s", want, out)
		}
	}
}

func TestRunConcurrentCallersShareOneSimulation(t *testing.T) {
	svc, st, _ := newService(t, fixture.Tournament())

	var wg sync.WaitGroup
	runs := make([]domain.TournamentRun, 16)
	for i := range runs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			run, err := svc.Run(context.Background(), 77)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			runs[i] = run
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(runs); i++ {
		if !reflect.DeepEqual(runs[0], runs[i]) {
			t.Fatalf("expected identical runs for concurrent callers")
		}
	}
	if st.sets != 1 {
		t.Fatalf("expected a single simulation, got %d store writes", st.sets)
	}
}

func TestRunRespectsCancelledContext(t *testing.T) {
	svc, _, _ := newService(t, fixture.Tournament())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Run(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// scenarioTournament fixes every group game so standings and seeding can be
// checked by hand.
func scenarioTournament() domain.Tournament {
	tour := testutil.SampleTournament()
	reg, ot, so := games.ResultRegulation, games.ResultOvertime, games.ResultShootout
	fixed := map[domain.Pair]games.Result{
		// A: A3 7, A1 6, A2 4, A4 1.
		{Team1: "A1", Team2: "A2"}: testutil.Result(3, 1, reg),
		{Team1: "A3", Team2: "A4"}: testutil.Result(2, 1, ot),
		{Team1: "A1", Team2: "A3"}: testutil.Result(1, 2, reg),
		{Team1: "A2", Team2: "A4"}: testutil.Result(4, 0, reg),
		{Team1: "A1", Team2: "A4"}: testutil.Result(5, 0, reg),
		{Team1: "A2", Team2: "A3"}: testutil.Result(2, 3, so),
		// B: B1, B2, B3 level on 6 points and beat each other in a cycle.
		{Team1: "B1", Team2: "B2"}: testutil.Result(2, 1, reg),
		{Team1: "B3", Team2: "B4"}: testutil.Result(3, 0, reg),
		{Team1: "B1", Team2: "B3"}: testutil.Result(0, 2, reg),
		{Team1: "B2", Team2: "B4"}: testutil.Result(4, 1, reg),
		{Team1: "B1", Team2: "B4"}: testutil.Result(6, 0, reg),
		{Team1: "B2", Team2: "B3"}: testutil.Result(3, 0, reg),
		// C: C1 8, C2 6, C4 3, C3 1.
		{Team1: "C1", Team2: "C2"}: testutil.Result(1, 0, reg),
		{Team1: "C3", Team2: "C4"}: testutil.Result(2, 3, ot),
		{Team1: "C1", Team2: "C3"}: testutil.Result(4, 2, reg),
		{Team1: "C2", Team2: "C4"}: testutil.Result(2, 1, reg),
		{Team1: "C1", Team2: "C4"}: testutil.Result(2, 1, so),
		{Team1: "C2", Team2: "C3"}: testutil.Result(5, 1, reg),
	}
	for pair, r := range fixed {
		tour.Overrides[pair] = r
	}
	return tour
}

func TestRunExampleScenario(t *testing.T) {
	svc, _, _ := newService(t, scenarioTournament())

	tables, err := svc.GroupStandingsAsOf(context.Background(), 5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string][]string{
		"A": {"A3", "A1", "A2", "A4"},
		// Mini-table: B2 +2, then B1 and B3 level at -1 split by overall goal difference.
		"B": {"B2", "B1", "B3", "B4"},
		"C": {"C1", "C2", "C4", "C3"},
	}
	points := map[string][]int{
		"A": {7, 6, 4, 1},
		"B": {6, 6, 6, 0},
		"C": {8, 6, 3, 1},
	}
	for _, tbl := range tables {
		for i, e := range tbl.Entries {
			if e.Team != want[tbl.Group][i] || e.Points != points[tbl.Group][i] || e.Position != i+1 {
				t.Fatalf("group %s row %d: got %s/%d pts, want %s/%d pts", tbl.Group, i, e.Team, e.Points, want[tbl.Group][i], points[tbl.Group][i])
			}
		}
	}

	run, err := svc.Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantSeeds := []string{"C1", "A3", "B2", "A1", "B1", "C2", "B3", "A2", "C4", "C3", "A4", "B4"}
	if !reflect.DeepEqual(run.SeedOrder, wantSeeds) {
		t.Fatalf("seed order = %v, want %v", run.SeedOrder, wantSeeds)
	}
	// Every seed reproduces the same group stage; only the playoff varies.
	other, err := svc.Run(context.Background(), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(other.SeedOrder, wantSeeds) {
		t.Fatalf("expected fixed group stage to seed identically, got %v", other.SeedOrder)
	}
	r16 := run.PlayoffMatches()[0]
	if r16.Label != "R16-1" || r16.Team1 != "B1" || r16.Team2 != "B4" {
		t.Fatalf("expected R16-1 to pair seeds 5 and 12, got %+v", r16)
	}
}

func TestGroupStandingsAsOfPartialSchedule(t *testing.T) {
	svc, _, _ := newService(t, scenarioTournament())

	tables, err := svc.GroupStandingsAsOf(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tbl := range tables {
		for _, e := range tbl.Entries {
			if e.Played != 1 {
				t.Fatalf("expected one game played by %s after day one, got %d", e.Team, e.Played)
			}
		}
	}
	a := tables[0]
	if a.Group != "A" || a.Entries[0].Team != "A1" || a.Entries[0].Points != 3 {
		t.Fatalf("expected A1 to lead group A after day one, got %+v", a.Entries[0])
	}

	// Playoff days add nothing to the group tables.
	final, err := svc.GroupStandingsAsOf(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last, err := svc.GroupStandingsAsOf(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(final, last) {
		t.Fatalf("expected standings to freeze after the group stage")
	}
}

func TestMatchesOn(t *testing.T) {
	svc, _, _ := newService(t, scenarioTournament())

	cases := []struct {
		index int
		count int
		round games.Round
	}{
		{0, 6, ""},
		{3, 4, games.RoundOf16},
		{4, 4, games.RoundQuarter},
		{5, 2, games.RoundSemi},
		{6, 1, games.RoundBronze},
		{7, 1, games.RoundFinal},
	}
	for _, tc := range cases {
		day, err := svc.MatchesOn(context.Background(), 3, tc.index)
		if err != nil {
			t.Fatalf("day %d: unexpected error: %v", tc.index, err)
		}
		if len(day) != tc.count {
			t.Fatalf("day %d: expected %d matches, got %d", tc.index, tc.count, len(day))
		}
		for _, m := range day {
			if m.Round != tc.round || m.Date != testutil.SampleDates[tc.index] {
				t.Fatalf("day %d: unexpected match %+v", tc.index, m)
			}
		}
	}
}

func TestInvalidDateIndex(t *testing.T) {
	svc, _, _ := newService(t, scenarioTournament())

	for _, idx := range []int{-1, len(testutil.SampleDates)} {
		if _, err := svc.GroupStandingsAsOf(context.Background(), 1, idx); !errors.Is(err, domain.ErrInvalidDateIndex) {
			t.Fatalf("index %d: expected ErrInvalidDateIndex, got %v", idx, err)
		}
		if _, err := svc.MatchesOn(context.Background(), 1, idx); !errors.Is(err, domain.ErrInvalidDateIndex) {
			t.Fatalf("index %d: expected ErrInvalidDateIndex, got %v", idx, err)
		}
	}
}

func TestNewServiceRejectsInvalidDefinitions(t *testing.T) {
	small := domain.Tournament{
		Teams: []teams.Team{{Name: "X", Power: 50}, {Name: "Y", Power: 60}},
		Groups: []teams.Group{
			{Name: "A", Teams: []string{"X", "Y"}},
		},
		Schedule: []games.Fixture{{Date: "D1", Team1: "X", Team2: "Y"}},
		Dates:    []string{"D1"},
	}
	unknown := testutil.SampleTournament()
	unknown.Schedule[0].Team2 = "Atlantis"
	sharedName := testutil.SampleTournament()
	sharedName.Groups[1].Name = "A"

	badModel := match.DefaultParams()
	badModel.BaseGoals = 0

	cases := []struct {
		name   string
		tour   domain.Tournament
		params match.Params
		want   error
	}{
		{"bracket size", small, match.DefaultParams(), domain.ErrInvalidConfiguration},
		{"unknown team", unknown, match.DefaultParams(), domain.ErrUnknownTeam},
		{"duplicate group name", sharedName, match.DefaultParams(), domain.ErrInvalidConfiguration},
		{"bad model", testutil.SampleTournament(), badModel, domain.ErrInvalidConfiguration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewService(tc.tour, tc.params, store.NewMemoryStore(), nil, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGroupTablesFeedSeeder(t *testing.T) {
	svc, _, _ := newService(t, fixture.Tournament())

	tables, err := svc.GroupStandingsAsOf(context.Background(), 11, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order, err := bracket.Seed(tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	run, err := svc.Run(context.Background(), 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(order, run.SeedOrder) {
		t.Fatalf("expected standings as of the last group day to reproduce the seed order")
	}
}
