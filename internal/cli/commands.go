package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"golang.org/x/text/unicode/norm"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/logging"
)

// ErrUsage is returned for unknown subcommands and bad flags.
var ErrUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *App, args []string, out io.Writer) error
}

func commands() []command {
	return []command{
		{"run", "play one tournament: run -seed N [-team NAME]", runCommand},
		{"standings", "group tables after a date: standings -seed N -date I", standingsCommand},
		{"day", "games played on a date: day -seed N -date I", dayCommand},
		{"odds", "medal odds over seeds 1..N: odds -n N", oddsCommand},
		{"find", "first seed with a medal: find -team NAME [-gold] -n N", findCommand},
		{"teams", "teams by power rating: teams [-groups]", teamsCommand},
	}
}

// Run dispatches args[0] to a subcommand. Report output goes to out.
func Run(ctx context.Context, a *App, args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	for _, c := range commands() {
		if c.name == args[0] {
			if a.logger != nil {
				ctx = logging.WithLogger(ctx, a.logger.With("command", c.name))
			}
			return c.run(ctx, a, args[1:], out)
		}
	}
	usage(out)
	return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "Usage: simulator <command> [flags]")
	fmt.Fprintln(out)
	for _, c := range commands() {
		fmt.Fprintf(out, "  %-10s %s\n", c.name, c.summary)
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: %s: unexpected arguments %v", ErrUsage, fs.Name(), fs.Args())
	}
	return nil
}

func runCommand(ctx context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlagSet("run", out)
	seed := fs.Int64("seed", 1, "tournament seed")
	team := fs.String("team", "", "only show games of this team")
	if err := parse(fs, args); err != nil {
		return err
	}
	name := norm.NFC.String(*team)
	if name != "" {
		if _, ok := a.roster.TeamByName(name); !ok {
			return &domain.UnknownTeamError{Team: name}
		}
	}
	run, err := a.tournaments.Run(ctx, *seed)
	if err != nil {
		return err
	}
	return renderRun(out, run, name)
}

// dateFlag registers -date; -1 selects the last date of the tournament.
func dateFlag(fs *flag.FlagSet) *int {
	return fs.Int("date", -1, "date index, 0-based (-1 = last day)")
}

func (a *App) resolveDate(index int) int {
	if index == -1 {
		return len(a.tournaments.Tournament().Dates) - 1
	}
	return index
}

func standingsCommand(ctx context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlagSet("standings", out)
	seed := fs.Int64("seed", 1, "tournament seed")
	date := dateFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	index := a.resolveDate(*date)
	tables, err := a.tournaments.GroupStandingsAsOf(ctx, *seed, index)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Standings after %s (seed %d)\n", a.tournaments.Tournament().Dates[index], *seed)
	return renderTables(out, tables)
}

func dayCommand(ctx context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlagSet("day", out)
	seed := fs.Int64("seed", 1, "tournament seed")
	date := dateFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	index := a.resolveDate(*date)
	matches, err := a.tournaments.MatchesOn(ctx, *seed, index)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (seed %d)\n", a.tournaments.Tournament().Dates[index], *seed)
	return renderMatches(out, matches)
}

func oddsCommand(ctx context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlagSet("odds", out)
	n := fs.Int("n", a.cfg.Simulations, "number of simulated tournaments")
	if err := parse(fs, args); err != nil {
		return err
	}
	report, err := a.predictor.Aggregate(ctx, *n)
	if err != nil {
		return err
	}
	return renderReport(out, report)
}

func findCommand(ctx context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlagSet("find", out)
	team := fs.String("team", "", "team name")
	gold := fs.Bool("gold", false, "require gold instead of any medal")
	n := fs.Int("n", a.cfg.Simulations, "number of simulated tournaments to search")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *team == "" {
		return fmt.Errorf("%w: find: -team is required", ErrUsage)
	}
	name := norm.NFC.String(*team)
	if _, ok := a.roster.TeamByName(name); !ok {
		return &domain.UnknownTeamError{Team: name}
	}

	seed, ok, err := a.predictor.FindSeed(ctx, *n, name, *gold)
	if err != nil {
		return err
	}
	report, err := a.predictor.Aggregate(ctx, *n)
	if err != nil {
		return err
	}
	if row, found := report.OddsFor(name); found {
		fmt.Fprintf(out, "%s over %d tournaments: gold %.1f%%, any medal %.1f%%\n",
			name, report.Simulations, row.GoldPct, row.MedalPct)
	}
	outcome := "a medal"
	if *gold {
		outcome = "gold"
	}
	if !ok {
		fmt.Fprintf(out, "%s won %s in none of seeds 1..%d\n", name, outcome, *n)
		return nil
	}
	fmt.Fprintf(out, "%s wins %s with seed %d\n\n", name, outcome, seed)
	run, err := a.tournaments.Run(ctx, seed)
	if err != nil {
		return err
	}
	return renderRun(out, run, "")
}

func teamsCommand(_ context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlagSet("teams", out)
	groups := fs.Bool("groups", false, "list teams by group instead of by power")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *groups {
		return renderGroups(out, a.roster.Groups())
	}
	return renderTeams(out, a.roster.Teams())
}
