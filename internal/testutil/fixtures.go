package testutil

import (
	"fmt"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/teams"
)

// Date labels used by SampleTournament: three group days, then one day per
// playoff round.
var SampleDates = []string{"D1", "D2", "D3", "D4", "D5", "D6", "D7", "D8"}

// roundRobin lists the group fixtures per day as positions within a group.
var roundRobin = [][][2]int{
	{{0, 1}, {2, 3}},
	{{0, 2}, {1, 3}},
	{{0, 3}, {1, 2}},
}

// SampleTournament returns a valid 12-team definition: groups A, B and C with
// teams named A1..C4, a full round robin over three days and no fixed results.
// Powers fall from 100 (A1) in steps of 5 by group position, then group.
func SampleTournament() domain.Tournament {
	t := domain.Tournament{
		Overrides: domain.Overrides{},
		Dates:     append([]string(nil), SampleDates...),
		RoundDates: map[games.Round]string{
			games.RoundOf16:    "D4",
			games.RoundQuarter: "D5",
			games.RoundSemi:    "D6",
			games.RoundBronze:  "D7",
			games.RoundFinal:   "D8",
		},
	}
	groupNames := []string{"A", "B", "C"}
	for gi, g := range groupNames {
		group := teams.Group{Name: g}
		for pos := 1; pos <= 4; pos++ {
			name := fmt.Sprintf("%s%d", g, pos)
			group.Teams = append(group.Teams, name)
			t.Teams = append(t.Teams, teams.Team{Name: name, Power: 100 - 5*((pos-1)*len(groupNames)+gi)})
		}
		t.Groups = append(t.Groups, group)
	}
	for day, pairs := range roundRobin {
		for _, g := range t.Groups {
			for _, p := range pairs {
				t.Schedule = append(t.Schedule, games.Fixture{
					Date:  SampleDates[day],
					Team1: g.Teams[p[0]],
					Team2: g.Teams[p[1]],
				})
			}
		}
	}
	return t
}

// Result is shorthand for a fixed result.
func Result(score1, score2 int, kind games.ResultType) games.Result {
	return games.Result{Score1: score1, Score2: score2, Type: kind}
}
