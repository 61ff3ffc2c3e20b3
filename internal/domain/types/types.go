// Package types contains common types used across the application
package types

import "github.com/okian/winrate/internal/domain/prediction"

// Prediction is the read shape of a single player's win probability.
type Prediction struct {
	PlayerID    string                `json:"player_id"`
	Probability float64               `json:"probability"`
	Percent     float64               `json:"percent"`
	Matches     int                   `json:"matches"`
	Window      int                   `json:"window"`
	Breakdown   *prediction.Breakdown `json:"breakdown,omitempty"`
}

// NewPrediction builds the read shape from a predictor result.
func NewPrediction(playerID string, matches int, window int, res prediction.Result) Prediction {
	b := res.Breakdown
	return Prediction{
		PlayerID:    playerID,
		Probability: res.Probability,
		Percent:     res.Probability * 100,
		Matches:     matches,
		Window:      window,
		Breakdown:   &b,
	}
}

// WithoutBreakdown drops the intermediate values.
func (p Prediction) WithoutBreakdown() Prediction {
	p.Breakdown = nil
	return p
}
