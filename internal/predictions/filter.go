// Package predictions selects which model predictions are actionable and
// renders the odds board the pick form is driven from.
package predictions

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/SammyBolger/NBA-Analytics/internal/gamestate"
	"github.com/SammyBolger/NBA-Analytics/internal/models"
)

// Tier is a confidence filter. Each tier includes every record of the tiers
// above it.
type Tier string

const (
	TierAll    Tier = "all"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// ParseTier accepts "", "all", "medium" and "high" in any case.
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case "", TierAll:
		return TierAll, nil
	case TierMedium:
		return TierMedium, nil
	case TierHigh:
		return TierHigh, nil
	default:
		return "", fmt.Errorf("unknown confidence tier %q", s)
	}
}

func (t Tier) admits(c models.Confidence) bool {
	switch t {
	case TierHigh:
		return c == models.ConfidenceHigh
	case TierMedium:
		return c == models.ConfidenceHigh || c == models.ConfidenceMedium
	default:
		return true
	}
}

// PreGame keeps predictions whose game has not started, ordered by tip-off.
// Records with the same tip-off keep feed order.
func PreGame(records []models.ModelOdds, loc *time.Location) []models.ModelOdds {
	out := make([]models.ModelOdds, 0, len(records))
	for _, r := range records {
		if gamestate.Classify(r.Status, loc).IsScheduled() {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return gamestate.TipOffInstant(out[i].Status, loc) < gamestate.TipOffInstant(out[j].Status, loc)
	})
	return out
}

// FilterTier returns the records the tier admits, in input order.
func FilterTier(records []models.ModelOdds, tier Tier) []models.ModelOdds {
	out := make([]models.ModelOdds, 0, len(records))
	for _, r := range records {
		if tier.admits(r.Confidence) {
			out = append(out, r)
		}
	}
	return out
}

// Summary is the header row of the odds board.
type Summary struct {
	Available      int     `json:"available"`
	HighConfidence int     `json:"high_confidence"`
	AvgPickProb    float64 `json:"avg_pick_prob"`
}

// Summarize counts pre-game predictions and averages ModelPickProb as a
// percentage rounded to one decimal. Records should already be enriched.
func Summarize(preGame []models.ModelOdds) Summary {
	s := Summary{Available: len(preGame)}
	if len(preGame) == 0 {
		return s
	}

	total := 0.0
	for _, r := range preGame {
		if r.Confidence == models.ConfidenceHigh {
			s.HighConfidence++
		}
		total += r.ModelPickProb
	}
	s.AvgPickProb = math.Round(total/float64(len(preGame))*1000) / 10
	return s
}
