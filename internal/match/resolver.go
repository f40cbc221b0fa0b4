// Package match resolves single games from power ratings, a tournament seed and
// a fixed table of real-world results.
package match

import (
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/games"
)

const (
	defaultBaseGoals = 2.6
	defaultExponent  = 0.5

	// poissonChunk bounds the mean handed to the multiplicative sampler so
	// exp(-lambda) never underflows.
	poissonChunk = 30.0
)

// Params tunes the scoring model.
type Params struct {
	// BaseGoals is the expected goal count for two equally rated teams.
	BaseGoals float64
	// Exponent sharpens (higher) or flattens (lower) the favourite bias.
	Exponent float64
	// SplitShootouts divides tie-breaks evenly between OT and SO.
	SplitShootouts bool
	// PlayoffOverrides applies fixed results to playoff games as well.
	PlayoffOverrides bool
}

// DefaultParams returns the calibrated defaults.
func DefaultParams() Params {
	return Params{
		BaseGoals: defaultBaseGoals,
		Exponent:  defaultExponent,
	}
}

// Stream identifies the random stream of one match: the tournament seed plus a
// fixture offset that is unique within the tournament.
type Stream struct {
	Seed   int64
	Offset int
}

// Resolver turns a pairing into a score. It holds no mutable state and is safe
// for concurrent use.
type Resolver struct {
	powers    map[string]int
	overrides domain.Overrides
	params    Params
}

// NewResolver builds a Resolver over a power table and fixed results.
func NewResolver(powers map[string]int, overrides domain.Overrides, params Params) (*Resolver, error) {
	if params.BaseGoals <= 0 || math.IsNaN(params.BaseGoals) || math.IsInf(params.BaseGoals, 0) {
		return nil, &domain.ConfigError{Field: "model.base_goals", Reason: "must be a positive number"}
	}
	if params.Exponent < 0 || math.IsNaN(params.Exponent) || math.IsInf(params.Exponent, 0) {
		return nil, &domain.ConfigError{Field: "model.exponent", Reason: "must be a non-negative number"}
	}
	table := make(map[string]int, len(powers))
	for name, p := range powers {
		if p <= 0 {
			return nil, &domain.ConfigError{Field: "teams", Reason: "power ratings must be positive"}
		}
		table[name] = p
	}
	return &Resolver{powers: table, overrides: overrides, params: params}, nil
}

// Params returns the model parameters in use.
func (r *Resolver) Params() Params {
	return r.params
}

// Resolve returns the score of team1 vs team2. The same stream always yields
// the same result; the two scores are never equal.
func (r *Resolver) Resolve(team1, team2 string, s Stream, playoff bool) (games.Result, error) {
	p1, ok := r.powers[team1]
	if !ok {
		return games.Result{}, &domain.UnknownTeamError{Team: team1}
	}
	p2, ok := r.powers[team2]
	if !ok {
		return games.Result{}, &domain.UnknownTeamError{Team: team2}
	}

	if !playoff || r.params.PlayoffOverrides {
		if fixed, ok := r.overrides.Lookup(team1, team2); ok {
			return fixed, nil
		}
	}

	rng := newRand(s, team1, team2)
	ratio := float64(p1) / float64(p2)
	s1 := poisson(rng, r.params.BaseGoals*math.Pow(ratio, r.params.Exponent))
	s2 := poisson(rng, r.params.BaseGoals*math.Pow(1/ratio, r.params.Exponent))
	if s1 != s2 {
		return games.Result{Score1: s1, Score2: s2, Type: games.ResultRegulation}, nil
	}

	if rng.Float64() < float64(p1)/float64(p1+p2) {
		s1++
	} else {
		s2++
	}
	kind := games.ResultOvertime
	if r.params.SplitShootouts && rng.Float64() < 0.5 {
		kind = games.ResultShootout
	}
	return games.Result{Score1: s1, Score2: s2, Type: kind}, nil
}

// newRand derives an isolated generator for one match. The team names are
// hashed in so that swapping sides yields a different stream.
func newRand(s Stream, team1, team2 string) *rand.Rand {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(s.Offset)))

	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(team1)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(team2)

	return rand.New(rand.NewPCG(uint64(s.Seed), d.Sum64()))
}

// poisson draws from a Poisson distribution with the given mean using Knuth's
// multiplicative method, splitting large means into chunks.
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	total := 0
	for lambda > poissonChunk {
		total += knuth(rng, poissonChunk)
		lambda -= poissonChunk
	}
	return total + knuth(rng, lambda)
}

func knuth(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k
}
