package service

import (
	"context"
	"errors"

	"github.com/okian/winrate/internal/adapters/history"
	"github.com/okian/winrate/internal/domain/prediction"
)

// Error kinds reported to metrics and API clients.
const (
	KindInvalidPlayerID   = "invalid_player_id"
	KindNotFound          = "not_found"
	KindSourceUnavailable = "source_unavailable"
	KindMalformedSource   = "malformed_source"
	KindEmptyHistory      = "empty_history"
	KindCanceled          = "canceled"
	KindNotStarted        = "not_started"
	KindInternal          = "internal"
)

// ErrNotStarted is returned when Predict is called before Start.
var ErrNotStarted = errors.New("service not started")

// ErrorKind classifies an error returned by Predict.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, prediction.ErrCanceled):
		return KindCanceled
	case errors.Is(err, history.ErrInvalidPlayerID):
		return KindInvalidPlayerID
	case errors.Is(err, history.ErrPlayerNotFound):
		return KindNotFound
	case errors.Is(err, history.ErrMalformedSource):
		return KindMalformedSource
	case errors.Is(err, history.ErrSourceUnavailable):
		return KindSourceUnavailable
	case errors.Is(err, prediction.ErrEmptyHistory):
		return KindEmptyHistory
	case errors.Is(err, ErrNotStarted):
		return KindNotStarted
	default:
		return KindInternal
	}
}
