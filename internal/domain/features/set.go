package features

import (
	"github.com/okian/winrate/internal/domain/match"
	"golang.org/x/sync/errgroup"
)

// Set holds the raw features the predictor combines.
type Set struct {
	Window                  int
	Matches                 int
	AverageEfficiency       float64
	AverageEfficiencyRecent float64
	AverageDuration         float64
	AverageDurationRecent   float64
	StreakNormalized        float64
	RecentStreak            int
}

// Extract computes every feature of the set over h using window k.
// The extractors are read-only and run concurrently; Extract returns once
// all of them have finished.
func Extract(h match.History, k int) (Set, error) {
	if len(h) == 0 {
		return Set{}, ErrEmptyHistory
	}
	if k <= 0 {
		k = DefaultRecentWindow
	}

	s := Set{Window: k, Matches: len(h)}
	var g errgroup.Group
	g.Go(func() error {
		s.AverageEfficiency = AverageEfficiency(h)
		return nil
	})
	g.Go(func() error {
		s.AverageEfficiencyRecent = AverageEfficiencyRecent(h, k)
		return nil
	})
	g.Go(func() error {
		s.AverageDuration = AverageDuration(h)
		return nil
	})
	g.Go(func() error {
		s.AverageDurationRecent = AverageDurationRecent(h, k)
		return nil
	})
	g.Go(func() error {
		s.StreakNormalized = StreakNormalized(h)
		return nil
	})
	g.Go(func() error {
		streak, err := StreakLengthSignedRecent(h, k)
		s.RecentStreak = streak
		return err
	})
	if err := g.Wait(); err != nil {
		return Set{}, err
	}
	return s, nil
}
