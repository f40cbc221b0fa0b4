package teams

// Team is a tournament participant. Name is the unique key across the tournament;
// Power is a relative strength rating with no enforced bounds (typically 30-100).
type Team struct {
	Name  string `json:"name" yaml:"name"`
	Power int    `json:"power" yaml:"power"`
}

// Group is a named round-robin group. Team order is the configured order and is
// used as the last tie-break when everything else is equal.
type Group struct {
	Name  string   `json:"name" yaml:"name"`
	Teams []string `json:"teams" yaml:"teams"`
}

// Contains reports whether the team is a member of the group.
func (g Group) Contains(name string) bool {
	return g.IndexOf(name) >= 0
}

// IndexOf returns the configured position of the team or -1.
func (g Group) IndexOf(name string) int {
	for i, t := range g.Teams {
		if t == name {
			return i
		}
	}
	return -1
}
