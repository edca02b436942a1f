package predictions

import (
	"math"
	"time"

	"github.com/SammyBolger/NBA-Analytics/internal/gamestate"
	"github.com/SammyBolger/NBA-Analytics/internal/models"
)

const (
	highConfidence   = 0.65
	mediumConfidence = 0.55
)

// ProbabilityToAmerican converts a win probability to American odds.
// Favorites get negative odds. Probabilities outside (0, 1) return 0.
func ProbabilityToAmerican(p float64) int {
	if p <= 0 || p >= 1 || math.IsNaN(p) {
		return 0
	}
	if p >= 0.5 {
		return int(-100 * p / (1 - p))
	}
	return int(100 * (1 - p) / p)
}

// ConfidenceFor buckets the favored side's probability.
func ConfidenceFor(pickProb float64) models.Confidence {
	switch {
	case pickProb >= highConfidence:
		return models.ConfidenceHigh
	case pickProb >= mediumConfidence:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// ResolveModelPick returns the favored team and its probability. The feed's
// model_pick is used when present; otherwise the side with the higher win
// probability is taken, home on a tie.
func ResolveModelPick(r models.ModelOdds) (*models.Team, float64) {
	if r.ModelPick != nil {
		prob := r.ModelPickProb
		if prob == 0 {
			prob = math.Max(r.HomeWinProb, r.AwayWinProb)
		}
		return r.ModelPick, prob
	}
	if r.AwayWinProb > r.HomeWinProb {
		team := r.AwayTeam
		return &team, r.AwayWinProb
	}
	team := r.HomeTeam
	return &team, r.HomeWinProb
}

// Enrich fills the derived fields a feed record may omit: moneylines,
// model pick and confidence.
func Enrich(r models.ModelOdds) models.ModelOdds {
	if r.HomeMoneyline == 0 && r.AwayMoneyline == 0 {
		r.HomeMoneyline = ProbabilityToAmerican(r.HomeWinProb)
		r.AwayMoneyline = ProbabilityToAmerican(r.AwayWinProb)
	}
	r.ModelPick, r.ModelPickProb = ResolveModelPick(r)
	if r.Confidence == "" {
		r.Confidence = ConfidenceFor(r.ModelPickProb)
	}
	return r
}

func tipOffLabel(r models.ModelOdds, loc *time.Location) string {
	return gamestate.Classify(r.Status, loc).Label
}
