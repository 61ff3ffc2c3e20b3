package history

import (
	"errors"
	"fmt"
)

// Sentinel kinds for history loading errors. These allow errors.Is from callers.
var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrSourceUnavailable = errors.New("history source unavailable")
	ErrMalformedSource   = errors.New("malformed history data")
	ErrInvalidPlayerID   = errors.New("invalid player id")
	ErrUnknownSource     = errors.New("unknown history source")
)

// LoadError describes a failed history load.
type LoadError struct {
	Source   string // loader name, e.g. "file" or "http"
	PlayerID string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: load history for %q: %v", e.Source, e.PlayerID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func loadError(source, playerID string, err error) error {
	return &LoadError{Source: source, PlayerID: playerID, Err: err}
}
