package medals

// TeamOdds is one row of the medal table.
type TeamOdds struct {
	Team      string  `json:"team"`
	Gold      int     `json:"gold"`
	Silver    int     `json:"silver"`
	Bronze    int     `json:"bronze"`
	GoldPct   float64 `json:"goldPct"`
	SilverPct float64 `json:"silverPct"`
	BronzePct float64 `json:"bronzePct"`
	MedalPct  float64 `json:"medalPct"`
}

// Medals returns the total number of podium finishes.
func (o TeamOdds) Medals() int {
	return o.Gold + o.Silver + o.Bronze
}

// TeamSeeds lists the tournament seeds that produced an outcome for one team,
// in ascending order.
type TeamSeeds struct {
	Gold  []int64 `json:"gold"`
	Medal []int64 `json:"medal"`
}

// SeedIndex maps team name to the seeds where it won gold or any medal.
type SeedIndex map[string]TeamSeeds

// Find returns the first seed in which the team won gold (onlyGold) or any
// medal. The bool is false when no simulated seed produced that outcome.
func (idx SeedIndex) Find(team string, onlyGold bool) (int64, bool) {
	seeds, ok := idx[team]
	if !ok {
		return 0, false
	}
	list := seeds.Medal
	if onlyGold {
		list = seeds.Gold
	}
	if len(list) == 0 {
		return 0, false
	}
	return list[0], true
}

// Report is the aggregate over Simulations tournaments.
type Report struct {
	Simulations int        `json:"simulations"`
	Odds        []TeamOdds `json:"odds"`
	Index       SeedIndex  `json:"index"`
}

// Clone returns a deep copy so cached reports are never shared mutably.
func (r Report) Clone() Report {
	out := Report{Simulations: r.Simulations}
	if r.Odds != nil {
		out.Odds = append([]TeamOdds(nil), r.Odds...)
	}
	if r.Index != nil {
		out.Index = make(SeedIndex, len(r.Index))
		for team, seeds := range r.Index {
			out.Index[team] = TeamSeeds{
				Gold:  append([]int64(nil), seeds.Gold...),
				Medal: append([]int64(nil), seeds.Medal...),
			}
		}
	}
	return out
}

// OddsFor returns the row for a team.
func (r Report) OddsFor(team string) (TeamOdds, bool) {
	for _, o := range r.Odds {
		if o.Team == team {
			return o, true
		}
	}
	return TeamOdds{}, false
}
