package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTeam is returned when a team name is not in the power table.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrInvalidConfiguration is returned for degenerate tournament definitions.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidSampleSize is returned when a simulation count is not positive.
	ErrInvalidSampleSize = errors.New("invalid sample size")
	// ErrInvalidDateIndex is returned when a date index is outside the schedule.
	ErrInvalidDateIndex = errors.New("invalid date index")
)

// UnknownTeamError names the team that failed lookup.
type UnknownTeamError struct {
	Team string
}

func (e *UnknownTeamError) Error() string {
	return fmt.Sprintf("unknown team %q", e.Team)
}

func (e *UnknownTeamError) Unwrap() error {
	return ErrUnknownTeam
}

// ConfigError describes which part of a tournament definition is invalid.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// AsUnknownTeamError attempts to unwrap an error into an UnknownTeamError.
func AsUnknownTeamError(err error) (*UnknownTeamError, bool) {
	var utErr *UnknownTeamError
	if errors.As(err, &utErr) {
		return utErr, true
	}
	return nil, false
}

func unknownTeam(name string) error {
	return &UnknownTeamError{Team: name}
}

func configError(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
