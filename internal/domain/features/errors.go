package features

import "errors"

// Sentinel kinds for feature extraction errors.
var (
	ErrEmptyHistory = errors.New("empty match history")
)
