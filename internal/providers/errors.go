package providers

import (
	"errors"
	"fmt"
)

// LoadError captures a failure to read or decode a tournament definition.
type LoadError struct {
	Provider string
	Source   string
	Err      error
}

func (e *LoadError) Error() string {
	msg := "load tournament"
	if e.Provider != "" {
		msg = fmt.Sprintf("%s (provider=%s)", msg, e.Provider)
	}
	if e.Source != "" {
		msg = fmt.Sprintf("%s from %s", msg, e.Source)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// AsLoadError attempts to unwrap an error into a LoadError.
func AsLoadError(err error) (*LoadError, bool) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr, true
	}
	return nil, false
}
