package prediction

import (
	"errors"

	"github.com/okian/winrate/internal/domain/features"
)

// Sentinel error kinds for this package.
var (
	// ErrEmptyHistory is returned when there are no matches to predict from.
	ErrEmptyHistory = features.ErrEmptyHistory
	ErrCanceled     = errors.New("prediction canceled")
)
