// Package features computes scalar statistics over a match history.
//
// Every function reads a most-recent-first history and never modifies it.
// Averages over zero usable matches return 0 so sparse data degrades instead
// of failing.
package features

import (
	"github.com/okian/winrate/internal/domain/match"
)

// DefaultRecentWindow is the number of most recent matches used by the
// windowed extractors unless configured otherwise.
const DefaultRecentWindow = 10

// AverageEfficiency returns the mean efficiency of matches with a known duration.
func AverageEfficiency(h match.History) float64 {
	total := 0.0
	valid := 0
	for _, r := range h {
		if !r.HasDuration() {
			continue
		}
		total += r.Efficiency
		valid++
	}
	if valid == 0 {
		return 0
	}
	return total / float64(valid)
}

// AverageEfficiencyRecent is AverageEfficiency over the k most recent matches.
func AverageEfficiencyRecent(h match.History, k int) float64 {
	return AverageEfficiency(h.Recent(k))
}

// AverageDuration returns the mean duration in minutes of matches with a known duration.
func AverageDuration(h match.History) float64 {
	total := 0
	valid := 0
	for _, r := range h {
		if !r.HasDuration() {
			continue
		}
		total += r.DurationMinutes
		valid++
	}
	if valid == 0 {
		return 0
	}
	return float64(total) / float64(valid)
}

// AverageDurationRecent is AverageDuration over the k most recent matches.
func AverageDurationRecent(h match.History, k int) float64 {
	return AverageDuration(h.Recent(k))
}

// StreakLengthSigned counts consecutive matches, starting from the most
// recent one, that share its result. Win streaks are positive, loss streaks
// negative.
func StreakLengthSigned(h match.History) (int, error) {
	if len(h) == 0 {
		return 0, ErrEmptyHistory
	}
	last := h[0].Won
	streak := 0
	for _, r := range h {
		if r.Won != last {
			break
		}
		streak++
	}
	if !last {
		streak = -streak
	}
	return streak, nil
}

// StreakLengthSignedRecent is StreakLengthSigned over the k most recent matches.
func StreakLengthSignedRecent(h match.History, k int) (int, error) {
	return StreakLengthSigned(h.Recent(k))
}

// StreakNormalized walks the whole history oldest to newest and returns the
// longest run of equal results divided by the number of matches. The value
// measures how streaky the history is regardless of the current direction.
func StreakNormalized(h match.History) float64 {
	n := len(h)
	if n == 0 {
		return 0
	}
	var winRun, lossRun, maxWin, maxLoss int
	for i := n - 1; i >= 0; i-- {
		if h[i].Won {
			winRun++
			lossRun = 0
		} else {
			lossRun++
			winRun = 0
		}
		maxWin = max(maxWin, winRun)
		maxLoss = max(maxLoss, lossRun)
	}
	return float64(max(maxWin, maxLoss)) / float64(n)
}
