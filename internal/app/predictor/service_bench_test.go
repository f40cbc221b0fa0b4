package predictor

import (
	"context"
	"testing"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/app/tournament"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/match"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/providers/fixture"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/store"
)

func BenchmarkAggregateUncached(b *testing.B) {
	tour := fixture.Tournament()
	for i := 0; i < b.N; i++ {
		runner, err := tournament.NewService(tour, match.DefaultParams(), store.NewMemoryStore(), nil, nil)
		if err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
		svc := NewService(runner, tour.TeamNames(), store.NewMemoryStore(), Options{Workers: 4}, nil, nil)
		if _, err := svc.Aggregate(context.Background(), 500); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
