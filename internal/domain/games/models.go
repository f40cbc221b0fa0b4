package games

import "fmt"

// ResultType records how a match was decided.
type ResultType string

const (
	ResultRegulation ResultType = "REG"
	ResultOvertime   ResultType = "OT"
	ResultShootout   ResultType = "SO"
)

// Regulation reports whether the match was decided in regular time.
func (t ResultType) Regulation() bool {
	return t == ResultRegulation
}

// Valid reports whether t is one of the known result types.
func (t ResultType) Valid() bool {
	switch t {
	case ResultRegulation, ResultOvertime, ResultShootout:
		return true
	}
	return false
}

// Stage separates group games from playoff games.
type Stage string

const (
	StageGroup   Stage = "GROUP"
	StagePlayoff Stage = "PLAYOFF"
)

// Round identifies a playoff round. Group games carry an empty Round.
type Round string

const (
	RoundOf16    Round = "R16"
	RoundQuarter Round = "QF"
	RoundSemi    Round = "SF"
	RoundBronze  Round = "BRONZE"
	RoundFinal   Round = "FINAL"
)

// PlayoffRounds lists the playoff rounds in the order they are played.
var PlayoffRounds = []Round{RoundOf16, RoundQuarter, RoundSemi, RoundBronze, RoundFinal}

// Result is a resolved score. Score1 belongs to the first team of the pairing.
type Result struct {
	Score1 int        `json:"score1" yaml:"score1"`
	Score2 int        `json:"score2" yaml:"score2"`
	Type   ResultType `json:"type" yaml:"type"`
}

// Swap returns the result seen from the other team's side.
func (r Result) Swap() Result {
	return Result{Score1: r.Score2, Score2: r.Score1, Type: r.Type}
}

// Points returns the standings points for each side: 3-0 for a regulation
// decision and 2-1 for any other decision.
func (r Result) Points() (int, int) {
	win, loss := 3, 0
	if !r.Type.Regulation() {
		win, loss = 2, 1
	}
	if r.Score1 > r.Score2 {
		return win, loss
	}
	return loss, win
}

// Fixture is a scheduled group game.
type Fixture struct {
	Date  string `json:"date" yaml:"date"`
	Team1 string `json:"team1" yaml:"team1"`
	Team2 string `json:"team2" yaml:"team2"`
}

// Match is a played game, group or playoff.
type Match struct {
	Date   string `json:"date"`
	Stage  Stage  `json:"stage"`
	Group  string `json:"group,omitempty"`
	Round  Round  `json:"round,omitempty"`
	Label  string `json:"label,omitempty"`
	Team1  string `json:"team1"`
	Team2  string `json:"team2"`
	Result Result `json:"result"`
	Winner string `json:"winner"`
}

// NewMatch builds a match from a resolved result and records its winner.
// Resolved results are never tied.
func NewMatch(date string, stage Stage, team1, team2 string, result Result) Match {
	winner := team2
	if result.Score1 > result.Score2 {
		winner = team1
	}
	return Match{
		Date:   date,
		Stage:  stage,
		Team1:  team1,
		Team2:  team2,
		Result: result,
		Winner: winner,
	}
}

// Loser returns the team with fewer goals.
func (m Match) Loser() string {
	if m.Result.Score1 > m.Result.Score2 {
		return m.Team2
	}
	return m.Team1
}

// Involves reports whether the team played in the match.
func (m Match) Involves(team string) bool {
	return m.Team1 == team || m.Team2 == team
}

func (m Match) String() string {
	suffix := ""
	if !m.Result.Type.Regulation() {
		suffix = " " + string(m.Result.Type)
	}
	return fmt.Sprintf("%s %d:%d %s%s", m.Team1, m.Result.Score1, m.Result.Score2, m.Team2, suffix)
}

// Medalists holds the podium of one tournament.
type Medalists struct {
	Gold   string
	Silver string
	Bronze string
}

// Medals extracts the podium from a full match list. It looks the bronze and
// final games up by round so the order of the slice does not matter.
func Medals(matches []Match) (Medalists, error) {
	var (
		out                Medalists
		hasFinal, hasThird bool
	)
	for _, m := range matches {
		switch m.Round {
		case RoundFinal:
			out.Gold, out.Silver = m.Winner, m.Loser()
			hasFinal = true
		case RoundBronze:
			out.Bronze = m.Winner
			hasThird = true
		}
	}
	if !hasFinal || !hasThird {
		return Medalists{}, fmt.Errorf("medal games missing (final=%t bronze=%t)", hasFinal, hasThird)
	}
	return out, nil
}
