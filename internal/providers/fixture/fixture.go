package fixture

import (
	"context"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/teams"
)

// Name is the provider label used in logs and metrics.
const Name = "fixture"

const (
	dayWed11 = "Středa 11. 2."
	dayThu12 = "Čtvrtek 12. 2."
	dayFri13 = "Pátek 13. 2."
	daySat14 = "Sobota 14. 2."
	daySun15 = "Neděle 15. 2."
	dayTue17 = "Úterý 17. 2."
	dayWed18 = "Středa 18. 2."
	dayFri20 = "Pátek 20. 2."
	daySat21 = "Sobota 21. 2."
	daySun22 = "Neděle 22. 2."
)

// Provider serves the men's ice hockey tournament of the 2026 Winter Olympics
// with power ratings calibrated against pre-tournament betting odds.
type Provider struct{}

// New creates a fixture provider.
func New() *Provider {
	return &Provider{}
}

// FetchTournament returns a fresh copy of the built-in tournament.
func (p *Provider) FetchTournament(ctx context.Context) (domain.Tournament, error) {
	if err := ctx.Err(); err != nil {
		return domain.Tournament{}, err
	}
	return Tournament(), nil
}

// Tournament builds the built-in definition. Each call allocates new slices and maps.
func Tournament() domain.Tournament {
	return domain.Tournament{
		Teams: []teams.Team{
			{Name: "Kanada", Power: 98},
			{Name: "USA", Power: 97},
			{Name: "Švédsko", Power: 92},
			{Name: "Česko", Power: 89},
			{Name: "Finsko", Power: 85},
			{Name: "Slovensko", Power: 84},
			{Name: "Švýcarsko", Power: 84},
			{Name: "Německo", Power: 76},
			{Name: "Dánsko", Power: 60},
			{Name: "Lotyšsko", Power: 58},
			{Name: "Itálie", Power: 40},
			{Name: "Francie", Power: 33},
		},
		Groups: []teams.Group{
			{Name: "A", Teams: []string{"Česko", "Francie", "Švýcarsko", "Kanada"}},
			{Name: "B", Teams: []string{"Finsko", "Itálie", "Slovensko", "Švédsko"}},
			{Name: "C", Teams: []string{"Dánsko", "Německo", "Lotyšsko", "USA"}},
		},
		Schedule: []games.Fixture{
			{Date: dayWed11, Team1: "Slovensko", Team2: "Finsko"},
			{Date: dayWed11, Team1: "Švédsko", Team2: "Itálie"},
			{Date: dayThu12, Team1: "Švýcarsko", Team2: "Francie"},
			{Date: dayThu12, Team1: "Česko", Team2: "Kanada"},
			{Date: dayThu12, Team1: "Lotyšsko", Team2: "USA"},
			{Date: dayThu12, Team1: "Německo", Team2: "Dánsko"},
			{Date: dayFri13, Team1: "Finsko", Team2: "Švédsko"},
			{Date: dayFri13, Team1: "Itálie", Team2: "Slovensko"},
			{Date: dayFri13, Team1: "Francie", Team2: "Česko"},
			{Date: dayFri13, Team1: "Kanada", Team2: "Švýcarsko"},
			{Date: daySat14, Team1: "Švédsko", Team2: "Slovensko"},
			{Date: daySat14, Team1: "Německo", Team2: "Lotyšsko"},
			{Date: daySat14, Team1: "Finsko", Team2: "Itálie"},
			{Date: daySat14, Team1: "USA", Team2: "Dánsko"},
			{Date: daySun15, Team1: "Švýcarsko", Team2: "Česko"},
			{Date: daySun15, Team1: "Kanada", Team2: "Francie"},
			{Date: daySun15, Team1: "Dánsko", Team2: "Lotyšsko"},
			{Date: daySun15, Team1: "USA", Team2: "Německo"},
		},
		Overrides: domain.Overrides{
			{Team1: "Slovensko", Team2: "Finsko"}:  {Score1: 4, Score2: 1, Type: games.ResultRegulation},
			{Team1: "Švédsko", Team2: "Itálie"}:    {Score1: 5, Score2: 2, Type: games.ResultRegulation},
			{Team1: "Švýcarsko", Team2: "Francie"}: {Score1: 4, Score2: 0, Type: games.ResultRegulation},
		},
		Dates: []string{
			dayWed11, dayThu12, dayFri13, daySat14, daySun15,
			dayTue17, dayWed18, dayFri20, daySat21, daySun22,
		},
		RoundDates: map[games.Round]string{
			games.RoundOf16:    dayTue17,
			games.RoundQuarter: dayWed18,
			games.RoundSemi:    dayFri20,
			games.RoundBronze:  daySat21,
			games.RoundFinal:   daySun22,
		},
	}
}
