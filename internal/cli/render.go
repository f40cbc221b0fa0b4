package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/app/teams"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/bracket"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/medals"
	domainteams "github.com/preston-bernstein/hockey-tournament-sim/internal/domain/teams"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func score(r games.Result) string {
	s := fmt.Sprintf("%d:%d", r.Score1, r.Score2)
	if !r.Type.Regulation() {
		s += " " + string(r.Type)
	}
	return s
}

func renderMatches(out io.Writer, matches []games.Match) error {
	w := newTable(out)
	fmt.Fprintln(w, "DATE\tSTAGE\tHOME\tSCORE\tAWAY")
	for _, m := range matches {
		stage := m.Label
		if m.Stage == games.StageGroup {
			stage = "Group " + m.Group
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.Date, stage, m.Team1, score(m.Result), m.Team2)
	}
	return w.Flush()
}

// renderRun prints the group stage, the playoff and the podium. A non-empty
// team limits both game lists to that team's games.
func renderRun(out io.Writer, run domain.TournamentRun, team string) error {
	fmt.Fprintf(out, "Tournament seed %d\n", run.Seed)
	sections := []struct {
		title   string
		matches []games.Match
	}{
		{"Group stage", run.GroupMatches()},
		{"Playoff", run.PlayoffMatches()},
	}
	for _, sec := range sections {
		matches := sec.matches
		if team != "" {
			matches = involving(matches, team)
		}
		if len(matches) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s\n", sec.title)
		if err := renderMatches(out, matches); err != nil {
			return err
		}
	}
	podium, err := games.Medals(run.Matches)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nGold: %s\nSilver: %s\nBronze: %s\n", podium.Gold, podium.Silver, podium.Bronze)
	return nil
}

func involving(matches []games.Match, team string) []games.Match {
	out := make([]games.Match, 0, 8)
	for _, m := range matches {
		if m.Involves(team) {
			out = append(out, m)
		}
	}
	return out
}

func renderTables(out io.Writer, tables []bracket.GroupTable) error {
	w := newTable(out)
	for i, tbl := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Group %s\n", tbl.Group)
		fmt.Fprintln(w, "POS\tTEAM\tGP\tW\tOTW\tOTL\tL\tGOALS\tGD\tPTS")
		for _, e := range tbl.Entries {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d:%d\t%+d\t%d\n",
				e.Position, e.Team, e.Played, e.Wins, e.OTWins, e.OTLosses, e.Losses,
				e.GoalsFor, e.GoalsAgainst, e.GoalDiff(), e.Points)
		}
	}
	return w.Flush()
}

func renderReport(out io.Writer, report medals.Report) error {
	fmt.Fprintf(out, "Medal odds over %d tournaments\n\n", report.Simulations)
	w := newTable(out)
	fmt.Fprintln(w, "TEAM\tGOLD\tSILVER\tBRONZE\tMEDAL")
	for _, o := range report.Odds {
		fmt.Fprintf(w, "%s\t%.1f%%\t%.1f%%\t%.1f%%\t%.1f%%\n", o.Team, o.GoldPct, o.SilverPct, o.BronzePct, o.MedalPct)
	}
	return w.Flush()
}

func renderTeams(out io.Writer, entries []teams.Entry) error {
	w := newTable(out)
	fmt.Fprintln(w, "TEAM\tGROUP\tPOWER")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\n", e.Name, e.Group, e.Power)
	}
	return w.Flush()
}

func renderGroups(out io.Writer, groups []domainteams.Group) error {
	w := newTable(out)
	for _, g := range groups {
		fmt.Fprintf(w, "Group %s\t%s\n", g.Name, strings.Join(g.Teams, ", "))
	}
	return w.Flush()
}
