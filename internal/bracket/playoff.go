package bracket

import (
	"fmt"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
)

// Offsets keep playoff streams apart from each other and from the group stage,
// which uses the fixture index.
const (
	OffsetRoundOf16 = 100
	OffsetQuarter   = 200
	OffsetSemi      = 300
	OffsetBronze    = 400
	OffsetFinal     = 500
)

// QuarterSlot pairs a directly qualified seed with the winner of a
// round-of-16 game.
type QuarterSlot struct {
	Seed      int
	RoundOf16 int
}

// Pairings holds the bracket tables. Seed positions are 0-indexed into the
// seed order; game references are 0-indexed into the previous round.
type Pairings struct {
	RoundOf16     [][2]int
	Quarterfinals []QuarterSlot
	Semifinals    [][2]int
}

// DefaultPairings returns the 12-team Olympic bracket: seeds 5-12 play the
// round of 16 (5v12, 6v11, 7v10, 8v9), seed 1 meets the 8v9 winner down to
// seed 4 against the 5v12 winner, and the semifinals are QF1 v QF4 and QF2 v QF3.
func DefaultPairings() Pairings {
	return Pairings{
		RoundOf16: [][2]int{{4, 11}, {5, 10}, {6, 9}, {7, 8}},
		Quarterfinals: []QuarterSlot{
			{Seed: 0, RoundOf16: 3},
			{Seed: 1, RoundOf16: 2},
			{Seed: 2, RoundOf16: 1},
			{Seed: 3, RoundOf16: 0},
		},
		Semifinals: [][2]int{{0, 3}, {1, 2}},
	}
}

// Size is the number of seeds the bracket consumes.
func (p Pairings) Size() int {
	return 2*len(p.RoundOf16) + len(p.Quarterfinals)
}

// Validate checks that every seed position is used exactly once and that every
// game feeds exactly one slot of the next round.
func (p Pairings) Validate() error {
	if len(p.Semifinals) != 2 {
		return pairingError("expected 2 semifinals, got %d", len(p.Semifinals))
	}
	if len(p.Quarterfinals) != 2*len(p.Semifinals) {
		return pairingError("expected %d quarterfinals, got %d", 2*len(p.Semifinals), len(p.Quarterfinals))
	}
	if len(p.RoundOf16) != len(p.Quarterfinals) {
		return pairingError("expected %d round-of-16 games, got %d", len(p.Quarterfinals), len(p.RoundOf16))
	}

	size := p.Size()
	seeds := make([]int, size)
	use := func(pos int) error {
		if pos < 0 || pos >= size {
			return pairingError("seed position %d out of range", pos)
		}
		seeds[pos]++
		return nil
	}
	for _, pair := range p.RoundOf16 {
		if err := use(pair[0]); err != nil {
			return err
		}
		if err := use(pair[1]); err != nil {
			return err
		}
	}
	feeds := make([]int, len(p.RoundOf16))
	for _, slot := range p.Quarterfinals {
		if err := use(slot.Seed); err != nil {
			return err
		}
		if slot.RoundOf16 < 0 || slot.RoundOf16 >= len(feeds) {
			return pairingError("quarterfinal references round-of-16 game %d", slot.RoundOf16)
		}
		feeds[slot.RoundOf16]++
	}
	for pos, n := range seeds {
		if n != 1 {
			return pairingError("seed position %d used %d times", pos, n)
		}
	}
	for i, n := range feeds {
		if n != 1 {
			return pairingError("round-of-16 game %d feeds %d quarterfinals", i, n)
		}
	}

	qf := make([]int, len(p.Quarterfinals))
	for _, pair := range p.Semifinals {
		for _, idx := range pair {
			if idx < 0 || idx >= len(qf) {
				return pairingError("semifinal references quarterfinal %d", idx)
			}
			qf[idx]++
		}
	}
	for i, n := range qf {
		if n != 1 {
			return pairingError("quarterfinal %d feeds %d semifinals", i, n)
		}
	}
	return nil
}

func pairingError(format string, args ...any) error {
	return &domain.ConfigError{Field: "pairings", Reason: fmt.Sprintf(format, args...)}
}

// ResolveFunc resolves a playoff game given its stream offset.
type ResolveFunc func(team1, team2 string, offset int) (games.Result, error)

// Engine plays the playoff rounds in order; each round is complete before the
// next one starts.
type Engine struct {
	pairings Pairings
	dates    map[games.Round]string
}

// NewEngine validates the pairing tables. dates supplies display labels per
// round and may be nil.
func NewEngine(p Pairings, dates map[games.Round]string) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{pairings: p, dates: dates}, nil
}

// Size is the number of seeds the engine expects.
func (e *Engine) Size() int {
	return e.pairings.Size()
}

// Run plays the bracket for a seed order and returns the games in round
// order: round of 16, quarterfinals, semifinals, bronze, final.
func (e *Engine) Run(seedOrder []string, resolve ResolveFunc) ([]games.Match, error) {
	if len(seedOrder) != e.pairings.Size() {
		return nil, pairingError("bracket needs %d seeds, got %d", e.pairings.Size(), len(seedOrder))
	}
	p := e.pairings
	out := make([]games.Match, 0, len(p.RoundOf16)+len(p.Quarterfinals)+len(p.Semifinals)+2)

	r16Winners := make([]string, len(p.RoundOf16))
	for i, pair := range p.RoundOf16 {
		m, err := e.play(games.RoundOf16, fmt.Sprintf("R16-%d", i+1), seedOrder[pair[0]], seedOrder[pair[1]], OffsetRoundOf16+i, resolve)
		if err != nil {
			return nil, err
		}
		r16Winners[i] = m.Winner
		out = append(out, m)
	}

	qfWinners := make([]string, len(p.Quarterfinals))
	for i, slot := range p.Quarterfinals {
		m, err := e.play(games.RoundQuarter, fmt.Sprintf("QF%d", i+1), seedOrder[slot.Seed], r16Winners[slot.RoundOf16], OffsetQuarter+i, resolve)
		if err != nil {
			return nil, err
		}
		qfWinners[i] = m.Winner
		out = append(out, m)
	}

	finalists := make([]string, 0, 2)
	thirdPlace := make([]string, 0, 2)
	for i, pair := range p.Semifinals {
		m, err := e.play(games.RoundSemi, fmt.Sprintf("SF%d", i+1), qfWinners[pair[0]], qfWinners[pair[1]], OffsetSemi+i, resolve)
		if err != nil {
			return nil, err
		}
		finalists = append(finalists, m.Winner)
		thirdPlace = append(thirdPlace, m.Loser())
		out = append(out, m)
	}

	bronze, err := e.play(games.RoundBronze, "BRONZE", thirdPlace[0], thirdPlace[1], OffsetBronze, resolve)
	if err != nil {
		return nil, err
	}
	out = append(out, bronze)

	final, err := e.play(games.RoundFinal, "FINAL", finalists[0], finalists[1], OffsetFinal, resolve)
	if err != nil {
		return nil, err
	}
	return append(out, final), nil
}

func (e *Engine) play(round games.Round, label, team1, team2 string, offset int, resolve ResolveFunc) (games.Match, error) {
	r, err := resolve(team1, team2, offset)
	if err != nil {
		return games.Match{}, fmt.Errorf("%s %s vs %s: %w", label, team1, team2, err)
	}
	if r.Score1 == r.Score2 {
		return games.Match{}, fmt.Errorf("%s %s vs %s: tied result %d:%d", label, team1, team2, r.Score1, r.Score2)
	}
	m := games.NewMatch(e.dates[round], games.StagePlayoff, team1, team2, r)
	m.Round = round
	m.Label = label
	return m, nil
}
