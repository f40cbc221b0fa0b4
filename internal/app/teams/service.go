package teams

import (
	"sort"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/teams"
)

// Source exposes the tournament definition teams are read from.
type Source interface {
	Tournament() domain.Tournament
}

// Entry is a team together with the group it plays in.
type Entry struct {
	teams.Team
	Group string `json:"group"`
}

// Service answers roster questions over a tournament definition.
type Service struct {
	source Source
}

// NewService constructs a Service with the provided Source.
func NewService(source Source) *Service {
	return &Service{source: source}
}

// Teams returns every team, strongest first. Equal ratings keep configured order.
func (s *Service) Teams() []Entry {
	t := s.source.Tournament()
	out := make([]Entry, 0, len(t.Teams))
	for _, team := range t.Teams {
		g, _ := t.GroupOf(team.Name)
		out = append(out, Entry{Team: team, Group: g.Name})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Power > out[j].Power
	})
	return out
}

// TeamByName returns a single team if present.
func (s *Service) TeamByName(name string) (Entry, bool) {
	t := s.source.Tournament()
	for _, team := range t.Teams {
		if team.Name == name {
			g, _ := t.GroupOf(name)
			return Entry{Team: team, Group: g.Name}, true
		}
	}
	return Entry{}, false
}

// Groups returns the groups in configured order.
func (s *Service) Groups() []teams.Group {
	groups := s.source.Tournament().Groups
	out := make([]teams.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, teams.Group{Name: g.Name, Teams: append([]string(nil), g.Teams...)})
	}
	return out
}
