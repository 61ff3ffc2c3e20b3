// Package prediction turns a match history into a win probability for the
// player's next match.
package prediction

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/winrate/internal/domain/features"
	"github.com/okian/winrate/internal/domain/match"
	"github.com/okian/winrate/internal/domain/normalize"
)

// Model constants. These are fixed heuristics, not fitted parameters.
const (
	longRunEfficiencyWeight = 0.6
	recentEfficiencyWeight  = 0.4

	efficiencyWeight   = 0.35
	streakinessWeight  = 0.35
	durationWeight     = 0.15
	recentStreakWeight = 0.15

	recentStreakScale = 10.0

	logisticSlope    = 4.0
	logisticMidpoint = 0.5
)

// Option applies a configuration option to the FormulaPredictor.
type Option func(*FormulaPredictor)

// WithRecentWindow sets how many of the most recent matches the windowed
// features look at.
func WithRecentWindow(k int) Option {
	return func(p *FormulaPredictor) {
		if k > 0 {
			p.window = k
		}
	}
}

// Breakdown exposes the intermediate values of a prediction.
type Breakdown struct {
	Features             features.Set `json:"-"`
	WeightedEfficiency   float64      `json:"weighted_efficiency"`
	NormalizedEfficiency float64      `json:"normalized_efficiency"`
	NormalizedStreak     float64      `json:"normalized_streak"`
	RecentStreak         int          `json:"recent_streak"`
	NormalizedDuration   float64      `json:"normalized_duration"`
	RawScore             float64      `json:"raw_score"`
}

// Result contains the predicted probability and how it was reached.
type Result struct {
	Probability float64
	Breakdown   Breakdown
}

// Predictor computes the next-match win probability from a history.
type Predictor interface {
	// Predict fails with ErrEmptyHistory when h has no matches.
	Predict(ctx context.Context, h match.History) (Result, error)
}

// FormulaPredictor implements Predictor with a fixed-weight linear score
// squashed through a logistic curve.
type FormulaPredictor struct {
	window int
}

// NewFormulaPredictor creates a predictor with configuration options.
func NewFormulaPredictor(opts ...Option) *FormulaPredictor {
	p := &FormulaPredictor{
		window: features.DefaultRecentWindow,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Window returns the configured recent window.
func (p *FormulaPredictor) Window() int { return p.window }

// Predict computes the win probability for the next match.
func (p *FormulaPredictor) Predict(ctx context.Context, h match.History) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	set, err := features.Extract(h, p.window)
	if err != nil {
		return Result{}, err
	}
	return Combine(set), nil
}

// Combine applies the scoring formula to an extracted feature set.
func Combine(set features.Set) Result {
	weightedEff := longRunEfficiencyWeight*set.AverageEfficiency + recentEfficiencyWeight*set.AverageEfficiencyRecent
	normEff := normalize.LogNormalize(weightedEff, math.Max(weightedEff, set.AverageEfficiencyRecent))

	// The long-run average is normalized against the larger of the two
	// averages, not the recent one.
	normDur := normalize.LogNormalize(set.AverageDuration, math.Max(set.AverageDuration, set.AverageDurationRecent))

	raw := efficiencyWeight*normEff +
		streakinessWeight*set.StreakNormalized +
		durationWeight*normDur +
		recentStreakWeight*(float64(set.RecentStreak)/recentStreakScale)

	return Result{
		Probability: logistic(raw),
		Breakdown: Breakdown{
			Features:             set,
			WeightedEfficiency:   weightedEff,
			NormalizedEfficiency: normEff,
			NormalizedStreak:     set.StreakNormalized,
			RecentStreak:         set.RecentStreak,
			NormalizedDuration:   normDur,
			RawScore:             raw,
		},
	}
}

func logistic(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-logisticSlope*(x-logisticMidpoint)))
}

// WinProbability predicts with the default window.
func WinProbability(h match.History) (float64, error) {
	res, err := NewFormulaPredictor().Predict(context.Background(), h)
	if err != nil {
		return 0, err
	}
	return res.Probability, nil
}
