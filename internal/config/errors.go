package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid winrate config")
	// ErrLoadConfig wraps file and env read failures.
	ErrLoadConfig = errors.New("load winrate config failed")
	// ErrUnknownHistorySource is returned for a history_source other than file or http.
	ErrUnknownHistorySource = errors.New("unknown history_source")
)
