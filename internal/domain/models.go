package domain

import (
	"golang.org/x/text/unicode/norm"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/teams"
)

// Pair is an ordered pairing of two team names.
type Pair struct {
	Team1 string
	Team2 string
}

// Overrides maps an ordered pairing to a real-world result that bypasses
// random resolution.
type Overrides map[Pair]games.Result

// Lookup returns the fixed result for a pairing in either orientation. A hit on
// the reversed pair is returned from the caller's point of view.
func (o Overrides) Lookup(team1, team2 string) (games.Result, bool) {
	if r, ok := o[Pair{Team1: team1, Team2: team2}]; ok {
		return r, true
	}
	if r, ok := o[Pair{Team1: team2, Team2: team1}]; ok {
		return r.Swap(), true
	}
	return games.Result{}, false
}

// Tournament is the static definition a simulation runs against.
type Tournament struct {
	Teams      []teams.Team
	Groups     []teams.Group
	Schedule   []games.Fixture
	Overrides  Overrides
	Dates      []string
	RoundDates map[games.Round]string
}

// Powers returns the power rating table keyed by team name.
func (t Tournament) Powers() map[string]int {
	out := make(map[string]int, len(t.Teams))
	for _, team := range t.Teams {
		out[team.Name] = team.Power
	}
	return out
}

// TeamNames returns the team names in configured order.
func (t Tournament) TeamNames() []string {
	out := make([]string, 0, len(t.Teams))
	for _, team := range t.Teams {
		out = append(out, team.Name)
	}
	return out
}

// GroupOf returns the group the team belongs to.
func (t Tournament) GroupOf(team string) (teams.Group, bool) {
	for _, g := range t.Groups {
		if g.Contains(team) {
			return g, true
		}
	}
	return teams.Group{}, false
}

// DateIndex returns the position of a date label or -1.
func (t Tournament) DateIndex(label string) int {
	for i, d := range t.Dates {
		if d == label {
			return i
		}
	}
	return -1
}

// Validate checks the definition once, before any simulation runs.
func (t Tournament) Validate() error {
	if len(t.Teams) == 0 {
		return configError("teams", "no teams configured")
	}
	powers := make(map[string]int, len(t.Teams))
	for _, team := range t.Teams {
		if team.Name == "" {
			return configError("teams", "team with empty name")
		}
		if _, dup := powers[team.Name]; dup {
			return configError("teams", "duplicate team %q", team.Name)
		}
		if team.Power <= 0 {
			return configError("teams", "team %q has non-positive power %d", team.Name, team.Power)
		}
		powers[team.Name] = team.Power
	}

	if err := t.validateGroups(powers); err != nil {
		return err
	}
	if len(t.Dates) == 0 {
		return configError("dates", "no date labels configured")
	}
	seenDates := make(map[string]struct{}, len(t.Dates))
	for _, d := range t.Dates {
		if _, dup := seenDates[d]; dup {
			return configError("dates", "duplicate date %q", d)
		}
		seenDates[d] = struct{}{}
	}
	if err := t.validateSchedule(powers, seenDates); err != nil {
		return err
	}
	for round, d := range t.RoundDates {
		if _, ok := seenDates[d]; !ok {
			return configError("round_dates", "round %s uses unknown date %q", round, d)
		}
	}
	return t.validateOverrides(powers)
}

func (t Tournament) validateGroups(powers map[string]int) error {
	if len(t.Groups) == 0 {
		return configError("groups", "no groups configured")
	}
	owner := make(map[string]string, len(powers))
	names := make(map[string]struct{}, len(t.Groups))
	size := len(t.Groups[0].Teams)
	for _, g := range t.Groups {
		if g.Name == "" {
			return configError("groups", "group with empty name")
		}
		if _, dup := names[g.Name]; dup {
			return configError("groups", "duplicate group %q", g.Name)
		}
		names[g.Name] = struct{}{}
		if len(g.Teams) == 0 {
			return configError("groups", "group %s is empty", g.Name)
		}
		if len(g.Teams) != size {
			return configError("groups", "group %s has %d teams, expected %d", g.Name, len(g.Teams), size)
		}
		for _, name := range g.Teams {
			if _, ok := powers[name]; !ok {
				return unknownTeam(name)
			}
			if prev, taken := owner[name]; taken {
				return configError("groups", "team %q is in groups %s and %s", name, prev, g.Name)
			}
			owner[name] = g.Name
		}
	}
	for name := range powers {
		if _, ok := owner[name]; !ok {
			return configError("groups", "team %q is not in any group", name)
		}
	}
	return nil
}

func (t Tournament) validateSchedule(powers map[string]int, dates map[string]struct{}) error {
	if len(t.Schedule) == 0 {
		return configError("schedule", "no fixtures configured")
	}
	seen := make(map[Pair]struct{}, len(t.Schedule))
	for i, f := range t.Schedule {
		for _, name := range []string{f.Team1, f.Team2} {
			if _, ok := powers[name]; !ok {
				return unknownTeam(name)
			}
		}
		if f.Team1 == f.Team2 {
			return configError("schedule", "fixture %d pairs %q with itself", i, f.Team1)
		}
		if _, ok := dates[f.Date]; !ok {
			return configError("schedule", "fixture %d uses unknown date %q", i, f.Date)
		}
		g, _ := t.GroupOf(f.Team1)
		if !g.Contains(f.Team2) {
			return configError("schedule", "fixture %d pairs teams from different groups", i)
		}
		if _, dup := seen[Pair{Team1: f.Team2, Team2: f.Team1}]; dup {
			return configError("schedule", "fixture %d repeats %s vs %s", i, f.Team1, f.Team2)
		}
		if _, dup := seen[Pair{Team1: f.Team1, Team2: f.Team2}]; dup {
			return configError("schedule", "fixture %d repeats %s vs %s", i, f.Team1, f.Team2)
		}
		seen[Pair{Team1: f.Team1, Team2: f.Team2}] = struct{}{}
	}
	return nil
}

func (t Tournament) validateOverrides(powers map[string]int) error {
	for pair, r := range t.Overrides {
		for _, name := range []string{pair.Team1, pair.Team2} {
			if _, ok := powers[name]; !ok {
				return unknownTeam(name)
			}
		}
		if pair.Team1 == pair.Team2 {
			return configError("overrides", "%q paired with itself", pair.Team1)
		}
		if r.Score1 == r.Score2 {
			return configError("overrides", "%s vs %s is tied", pair.Team1, pair.Team2)
		}
		if r.Score1 < 0 || r.Score2 < 0 {
			return configError("overrides", "%s vs %s has a negative score", pair.Team1, pair.Team2)
		}
		if !r.Type.Valid() {
			return configError("overrides", "%s vs %s has unknown result type %q", pair.Team1, pair.Team2, r.Type)
		}
		if _, both := t.Overrides[Pair{Team1: pair.Team2, Team2: pair.Team1}]; both {
			return configError("overrides", "%s vs %s is listed in both orientations", pair.Team1, pair.Team2)
		}
	}
	return nil
}

// Normalize returns a copy with every team name in Unicode NFC so that names
// typed with combining marks match their precomposed forms.
func (t Tournament) Normalize() Tournament {
	out := Tournament{
		Teams:      make([]teams.Team, 0, len(t.Teams)),
		Groups:     make([]teams.Group, 0, len(t.Groups)),
		Schedule:   make([]games.Fixture, 0, len(t.Schedule)),
		Overrides:  make(Overrides, len(t.Overrides)),
		Dates:      make([]string, 0, len(t.Dates)),
		RoundDates: make(map[games.Round]string, len(t.RoundDates)),
	}
	for _, team := range t.Teams {
		out.Teams = append(out.Teams, teams.Team{Name: nfc(team.Name), Power: team.Power})
	}
	for _, g := range t.Groups {
		names := make([]string, 0, len(g.Teams))
		for _, name := range g.Teams {
			names = append(names, nfc(name))
		}
		out.Groups = append(out.Groups, teams.Group{Name: g.Name, Teams: names})
	}
	for _, f := range t.Schedule {
		out.Schedule = append(out.Schedule, games.Fixture{Date: nfc(f.Date), Team1: nfc(f.Team1), Team2: nfc(f.Team2)})
	}
	for pair, r := range t.Overrides {
		out.Overrides[Pair{Team1: nfc(pair.Team1), Team2: nfc(pair.Team2)}] = r
	}
	for _, d := range t.Dates {
		out.Dates = append(out.Dates, nfc(d))
	}
	for round, d := range t.RoundDates {
		out.RoundDates[round] = nfc(d)
	}
	return out
}

func nfc(s string) string {
	return norm.NFC.String(s)
}

// TournamentRun is the full match list produced for one seed. Group matches
// come first in schedule order, followed by the playoff in round order.
type TournamentRun struct {
	Seed      int64         `json:"seed"`
	Matches   []games.Match `json:"matches"`
	SeedOrder []string      `json:"seedOrder"`
}

// Clone returns a deep copy so cached runs are never shared mutably.
func (r TournamentRun) Clone() TournamentRun {
	out := TournamentRun{Seed: r.Seed}
	if r.Matches != nil {
		out.Matches = append([]games.Match(nil), r.Matches...)
	}
	if r.SeedOrder != nil {
		out.SeedOrder = append([]string(nil), r.SeedOrder...)
	}
	return out
}

// GroupMatches returns the group-stage part of the run.
func (r TournamentRun) GroupMatches() []games.Match {
	return r.filter(games.StageGroup)
}

// PlayoffMatches returns the playoff part of the run.
func (r TournamentRun) PlayoffMatches() []games.Match {
	return r.filter(games.StagePlayoff)
}

func (r TournamentRun) filter(stage games.Stage) []games.Match {
	out := make([]games.Match, 0, len(r.Matches))
	for _, m := range r.Matches {
		if m.Stage == stage {
			out = append(out, m)
		}
	}
	return out
}
