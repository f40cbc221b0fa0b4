// Package standings ranks round-robin groups with IIHF-style tie-breaks.
//
// Teams are ordered by points. Every block of teams level on points is then
// re-ranked on a mini-table built only from the games played among members of
// that block: mini points, mini goal difference, mini goals for. Remaining ties
// fall back to overall goal difference, overall goals for and finally the
// configured group order, so the result is always a total order.
package standings

import (
	"sort"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
)

// Entry is one team's line in a group table.
type Entry struct {
	Team         string `json:"team"`
	Position     int    `json:"position"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	OTWins       int    `json:"otWins"`
	OTLosses     int    `json:"otLosses"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goalsFor"`
	GoalsAgainst int    `json:"goalsAgainst"`
	Points       int    `json:"points"`
}

// GoalDiff returns goals for minus goals against.
func (e Entry) GoalDiff() int {
	return e.GoalsFor - e.GoalsAgainst
}

func (e *Entry) add(goalsFor, goalsAgainst, points int, regulation bool) {
	e.Played++
	e.GoalsFor += goalsFor
	e.GoalsAgainst += goalsAgainst
	e.Points += points
	switch {
	case goalsFor > goalsAgainst && regulation:
		e.Wins++
	case goalsFor > goalsAgainst:
		e.OTWins++
	case regulation:
		e.Losses++
	default:
		e.OTLosses++
	}
}

// Rank orders the group. Matches may cover a partial schedule; a match with a
// team outside the group fails with domain.ErrUnknownTeam.
func Rank(groupTeams []string, matches []games.Match) ([]Entry, error) {
	order := make(map[string]int, len(groupTeams))
	for i, t := range groupTeams {
		order[t] = i
	}
	for _, m := range matches {
		for _, t := range []string{m.Team1, m.Team2} {
			if _, ok := order[t]; !ok {
				return nil, &domain.UnknownTeamError{Team: t}
			}
		}
	}

	overall := tally(groupTeams, matches)
	ranked := append([]string(nil), groupTeams...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return overall[ranked[i]].Points > overall[ranked[j]].Points
	})

	for start := 0; start < len(ranked); {
		end := start + 1
		for end < len(ranked) && overall[ranked[end]].Points == overall[ranked[start]].Points {
			end++
		}
		if end-start > 1 {
			breakTie(ranked[start:end], matches, overall, order)
		}
		start = end
	}

	out := make([]Entry, 0, len(ranked))
	for i, t := range ranked {
		e := *overall[t]
		e.Position = i + 1
		out = append(out, e)
	}
	return out, nil
}

// ByTeam indexes entries by team name.
func ByTeam(entries []Entry) map[string]Entry {
	out := make(map[string]Entry, len(entries))
	for _, e := range entries {
		out[e.Team] = e
	}
	return out
}

// breakTie re-orders a block of teams level on points in place.
func breakTie(block []string, matches []games.Match, overall map[string]*Entry, order map[string]int) {
	members := make(map[string]struct{}, len(block))
	for _, t := range block {
		members[t] = struct{}{}
	}
	among := make([]games.Match, 0, len(matches))
	for _, m := range matches {
		_, in1 := members[m.Team1]
		_, in2 := members[m.Team2]
		if in1 && in2 {
			among = append(among, m)
		}
	}
	mini := tally(block, among)

	sort.SliceStable(block, func(i, j int) bool {
		a, b := block[i], block[j]
		ma, mb := mini[a], mini[b]
		if ma.Points != mb.Points {
			return ma.Points > mb.Points
		}
		if ma.GoalDiff() != mb.GoalDiff() {
			return ma.GoalDiff() > mb.GoalDiff()
		}
		if ma.GoalsFor != mb.GoalsFor {
			return ma.GoalsFor > mb.GoalsFor
		}
		oa, ob := overall[a], overall[b]
		if oa.GoalDiff() != ob.GoalDiff() {
			return oa.GoalDiff() > ob.GoalDiff()
		}
		if oa.GoalsFor != ob.GoalsFor {
			return oa.GoalsFor > ob.GoalsFor
		}
		return order[a] < order[b]
	})
}

func tally(teams []string, matches []games.Match) map[string]*Entry {
	out := make(map[string]*Entry, len(teams))
	for _, t := range teams {
		out[t] = &Entry{Team: t}
	}
	for _, m := range matches {
		p1, p2 := m.Result.Points()
		reg := m.Result.Type.Regulation()
		if e, ok := out[m.Team1]; ok {
			e.add(m.Result.Score1, m.Result.Score2, p1, reg)
		}
		if e, ok := out[m.Team2]; ok {
			e.add(m.Result.Score2, m.Result.Score1, p2, reg)
		}
	}
	return out
}
