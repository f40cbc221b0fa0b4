package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/teams"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/providers"
)

// Name is the provider label used in logs and metrics.
const Name = "file"

// Provider reads a tournament definition from a YAML or JSON file. The format
// is picked by extension; anything other than .json is parsed as YAML.
type Provider struct {
	path     string
	readFile func(string) ([]byte, error)
}

// New creates a file provider for path.
func New(path string) *Provider {
	return &Provider{path: path, readFile: os.ReadFile}
}

type document struct {
	Teams      []teams.Team           `json:"teams" yaml:"teams"`
	Groups     []teams.Group          `json:"groups" yaml:"groups"`
	Dates      []string               `json:"dates" yaml:"dates"`
	Schedule   []games.Fixture        `json:"schedule" yaml:"schedule"`
	Results    []knownResult          `json:"results" yaml:"results"`
	RoundDates map[games.Round]string `json:"round_dates" yaml:"round_dates"`
}

type knownResult struct {
	Team1  string           `json:"team1" yaml:"team1"`
	Team2  string           `json:"team2" yaml:"team2"`
	Score1 int              `json:"score1" yaml:"score1"`
	Score2 int              `json:"score2" yaml:"score2"`
	Type   games.ResultType `json:"type" yaml:"type"`
}

// FetchTournament reads and decodes the file. Team names are normalized to NFC.
// Validation is left to the caller so every provider is checked the same way.
func (p *Provider) FetchTournament(ctx context.Context) (domain.Tournament, error) {
	if err := ctx.Err(); err != nil {
		return domain.Tournament{}, err
	}
	raw, err := p.readFile(p.path)
	if err != nil {
		return domain.Tournament{}, p.loadError(err)
	}
	doc, err := decode(p.path, raw)
	if err != nil {
		return domain.Tournament{}, p.loadError(err)
	}
	t, err := doc.tournament()
	if err != nil {
		return domain.Tournament{}, p.loadError(err)
	}
	return t.Normalize(), nil
}

func (p *Provider) loadError(err error) error {
	return &providers.LoadError{Provider: Name, Source: p.path, Err: err}
}

func decode(path string, raw []byte) (document, error) {
	var doc document
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return document{}, fmt.Errorf("decode json: %w", err)
		}
		return doc, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return document{}, fmt.Errorf("decode yaml: %w", err)
	}
	return doc, nil
}

func (d document) tournament() (domain.Tournament, error) {
	overrides := make(domain.Overrides, len(d.Results))
	for i, r := range d.Results {
		pair := domain.Pair{Team1: r.Team1, Team2: r.Team2}
		if _, dup := overrides[pair]; dup {
			return domain.Tournament{}, fmt.Errorf("result %d repeats %s vs %s", i, r.Team1, r.Team2)
		}
		kind := r.Type
		if kind == "" {
			kind = games.ResultRegulation
		}
		overrides[pair] = games.Result{Score1: r.Score1, Score2: r.Score2, Type: kind}
	}
	return domain.Tournament{
		Teams:      d.Teams,
		Groups:     d.Groups,
		Schedule:   d.Schedule,
		Overrides:  overrides,
		Dates:      d.Dates,
		RoundDates: d.RoundDates,
	}, nil
}
