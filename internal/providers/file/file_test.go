package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/providers"
)

func TestFetchTournamentDecodesFormats(t *testing.T) {
	for _, path := range []string{"testdata/mini.yaml", "testdata/mini.json"} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			tour, err := New(path).FetchTournament(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if err := tour.Validate(); err != nil {
				t.Fatalf("expected valid tournament, got %v", err)
			}
			if len(tour.Teams) != 4 || len(tour.Groups) != 2 || len(tour.Schedule) != 2 {
				t.Fatalf("unexpected tournament shape %+v", tour)
			}
			if tour.RoundDates[games.RoundFinal] != "Day 3" {
				t.Fatalf("expected final date, got %+v", tour.RoundDates)
			}
			r, ok := tour.Overrides.Lookup("Kanada", "Česko")
			if !ok || r.Score1 != 2 || r.Score2 != 3 || r.Type != games.ResultShootout {
				t.Fatalf("expected swapped SO result, got %+v (found=%t)", r, ok)
			}
		})
	}
}

func TestFetchTournamentDefaultsResultTypeToRegulation(t *testing.T) {
	tour, err := New("testdata/mini.yaml").FetchTournament(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	r, ok := tour.Overrides.Lookup("Lotyšsko", "USA")
	if !ok || r.Type != games.ResultRegulation {
		t.Fatalf("expected REG default, got %+v", r)
	}
}

func TestFetchTournamentNormalizesNames(t *testing.T) {
	// "Česko" spelled with a combining caron.
	decomposed := "C\u030cesko"
	doc := "teams:\n  - {name: " + decomposed + ", power: 89}\n"
	path := filepath.Join(t.TempDir(), "nfd.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tour, err := New(path).FetchTournament(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tour.Teams[0].Name != "Česko" {
		t.Fatalf("expected NFC name, got %q", tour.Teams[0].Name)
	}
}

func TestFetchTournamentErrors(t *testing.T) {
	dupPath := filepath.Join(t.TempDir(), "dup.yaml")
	dup := "results:\n  - {team1: A, team2: B, score1: 1, score2: 0}\n  - {team1: A, team2: B, score1: 2, score2: 0}\n"
	if err := os.WriteFile(dupPath, []byte(dup), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cases := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.yaml")},
		{"unknown field", "testdata/unknown_field.yaml"},
		{"duplicate result", dupPath},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.path).FetchTournament(context.Background())
			le, ok := providers.AsLoadError(err)
			if !ok {
				t.Fatalf("expected load error, got %v", err)
			}
			if le.Provider != Name || le.Source != tc.path {
				t.Fatalf("unexpected load error fields %+v", le)
			}
		})
	}

	_, err := New(filepath.Join(t.TempDir(), "nope.json")).FetchTournament(context.Background())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
}

func TestFetchTournamentRespectsCancelledContext(t *testing.T) {
	p := New("testdata/mini.yaml")
	p.readFile = func(string) ([]byte, error) {
		t.Fatal("file should not be read after cancellation")
		return nil, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.FetchTournament(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
