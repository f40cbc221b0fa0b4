package testutil

import (
	"context"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
)

// GoodProvider returns the provided tournament with no error.
type GoodProvider struct {
	Tournament domain.Tournament
}

func (p GoodProvider) FetchTournament(ctx context.Context) (domain.Tournament, error) {
	_ = ctx
	return p.Tournament, nil
}

// ErrProvider always returns the provided error.
type ErrProvider struct {
	Err error
}

func (p ErrProvider) FetchTournament(ctx context.Context) (domain.Tournament, error) {
	_ = ctx
	return domain.Tournament{}, p.Err
}
