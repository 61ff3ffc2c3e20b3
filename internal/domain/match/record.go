// Package match contains the match record model consumed by the prediction pipeline.
package match

import "context"

// Record is one completed match. Records are built once by a loader and
// never modified afterwards.
type Record struct {
	Won             bool    // true for a win
	DurationMinutes int     // 0 means the duration is unknown
	Efficiency      float64 // (kills + assists) / DurationMinutes, 0 when duration is unknown
}

// New builds a Record from raw match stats. Deaths are accepted to mirror the
// K/D/A triple but do not contribute to efficiency.
func New(won bool, durationMinutes, kills, deaths, assists int) Record {
	_ = deaths
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	r := Record{Won: won, DurationMinutes: durationMinutes}
	if durationMinutes > 0 {
		r.Efficiency = float64(kills+assists) / float64(durationMinutes)
	}
	return r
}

// HasDuration reports whether the record carries a usable duration.
func (r Record) HasDuration() bool {
	return r.DurationMinutes > 0
}

// Loader resolves a player identifier to that player's match history.
type Loader interface {
	// Load returns the history ordered most recent first. An empty history
	// is a valid result.
	Load(ctx context.Context, playerID string) (History, error)
}
