package providers

import (
	"context"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
)

// TournamentProvider loads the static tournament definition a simulation runs
// against: teams, groups, schedule, known results and date labels.
type TournamentProvider interface {
	FetchTournament(ctx context.Context) (domain.Tournament, error)
}
