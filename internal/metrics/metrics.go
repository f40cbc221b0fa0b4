package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	lastCallLatency time.Duration
}

type simulationStats struct {
	tournaments       int
	cacheHits         int
	aggregations      int
	aggregationErrors int
	simulated         int
	lastAggregation   time.Duration
}

// Recorder captures lightweight, in-memory metrics about tournament loads and
// simulations, and forwards them to OpenTelemetry when configured.
type Recorder struct {
	mu    sync.Mutex
	stats map[string]*providerStats
	sim   simulationStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*providerStats),
		otel:  otel,
	}
}

// RecordProviderAttempt increments counters for a tournament load and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordTournament tracks one tournament lookup; cached reports whether it was
// served from the memo store.
func (r *Recorder) RecordTournament(duration time.Duration, cached bool) {
	if r == nil {
		return
	}

	r.mu.Lock()
	if cached {
		r.sim.cacheHits++
	} else {
		r.sim.tournaments++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordTournament(duration, cached)
	}
}

// RecordAggregation tracks a Monte Carlo aggregation over simulations runs.
func (r *Recorder) RecordAggregation(simulations int, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.sim.aggregations++
	r.sim.lastAggregation = duration
	if err != nil {
		r.sim.aggregationErrors++
	} else {
		r.sim.simulated += simulations
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordAggregation(simulations, duration, err)
	}
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

// Snapshot returns a copy of the current stats for the provider.
type Snapshot struct {
	Calls           int
	Errors          int
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		LastCallLatency: stats.lastCallLatency,
	}
}

// SimulationSnapshot is a copy of the simulation counters.
type SimulationSnapshot struct {
	Tournaments       int
	CacheHits         int
	Aggregations      int
	AggregationErrors int
	Simulated         int
	LastAggregation   time.Duration
}

// Simulations returns the current simulation counters.
func (r *Recorder) Simulations() SimulationSnapshot {
	if r == nil {
		return SimulationSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	return SimulationSnapshot{
		Tournaments:       r.sim.tournaments,
		CacheHits:         r.sim.cacheHits,
		Aggregations:      r.sim.aggregations,
		AggregationErrors: r.sim.aggregationErrors,
		Simulated:         r.sim.simulated,
		LastAggregation:   r.sim.lastAggregation,
	}
}
