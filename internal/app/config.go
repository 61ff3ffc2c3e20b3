package service

import (
	"time"

	"github.com/okian/winrate/internal/adapters/history"
	"github.com/okian/winrate/internal/config"
)

// OptionsFromConfig translates process configuration into service options.
func OptionsFromConfig(cfg *config.Config) []Option {
	if cfg == nil {
		return nil
	}
	settings := history.Settings{
		Source: cfg.HistorySource,
		Dir:    cfg.HistoryDir,
		URL:    cfg.HistoryURL,
	}
	return []Option{
		WithRecentWindow(cfg.RecentWindow),
		WithHistorySettings(settings,
			history.WithTimeout(time.Duration(cfg.HTTPTimeoutMS)*time.Millisecond),
			history.WithRetries(cfg.HTTPMaxRetries, 0, 0),
			history.WithRateLimit(cfg.HTTPRateLimit),
		),
	}
}
