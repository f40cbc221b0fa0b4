// Package bracket turns final group tables into a global seed order and plays
// the single-elimination playoff over it.
package bracket

import (
	"sort"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/standings"
)

// GroupTable is the ranked table of one group.
type GroupTable struct {
	Group   string            `json:"group"`
	Entries []standings.Entry `json:"entries"`
}

// Seed produces the global seed order, best first. Teams are classed by their
// finishing position in their group; within a class they are ranked by points,
// goal difference and goals for, with the group order breaking full ties. All
// group winners come first, then all runners-up, and so on.
func Seed(tables []GroupTable) ([]string, error) {
	if len(tables) == 0 {
		return nil, &domain.ConfigError{Field: "groups", Reason: "no group tables to seed"}
	}
	size := len(tables[0].Entries)
	for _, tbl := range tables {
		if len(tbl.Entries) == 0 {
			return nil, &domain.ConfigError{Field: "groups", Reason: "group " + tbl.Group + " has no entries"}
		}
		if len(tbl.Entries) != size {
			return nil, &domain.ConfigError{Field: "groups", Reason: "groups have different sizes"}
		}
	}

	out := make([]string, 0, size*len(tables))
	seen := make(map[string]struct{}, size*len(tables))
	for pos := 0; pos < size; pos++ {
		class := make([]standings.Entry, 0, len(tables))
		for _, tbl := range tables {
			class = append(class, tbl.Entries[pos])
		}
		sort.SliceStable(class, func(i, j int) bool {
			a, b := class[i], class[j]
			if a.Points != b.Points {
				return a.Points > b.Points
			}
			if a.GoalDiff() != b.GoalDiff() {
				return a.GoalDiff() > b.GoalDiff()
			}
			return a.GoalsFor > b.GoalsFor
		})
		for _, e := range class {
			if _, dup := seen[e.Team]; dup {
				return nil, &domain.ConfigError{Field: "groups", Reason: "team " + e.Team + " appears in more than one table"}
			}
			seen[e.Team] = struct{}{}
			out = append(out, e.Team)
		}
	}
	return out, nil
}
