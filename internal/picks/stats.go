package picks

import (
	"fmt"
	"math"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
)

// Stats is the aggregate record shown on the pick tracker.
type Stats struct {
	TotalPicks  int     `json:"total_picks"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Pending     int     `json:"pending"`
	WinRate     float64 `json:"win_rate"`
	TotalStaked float64 `json:"total_staked"`
	TotalPayout float64 `json:"total_payout"`
	ROI         float64 `json:"roi"`
	Profit      float64 `json:"profit"`
}

// ComputeStats aggregates picks. Win rate counts decided picks only; ROI and
// profit count settled stakes only, so pending money does not read as a loss.
func ComputeStats(picks []models.Pick) Stats {
	s := Stats{TotalPicks: len(picks)}
	settledStake := 0.0

	for _, p := range picks {
		switch p.Result {
		case models.ResultWin:
			s.Wins++
		case models.ResultLoss:
			s.Losses++
		case models.ResultPending, "":
			s.Pending++
		}
		s.TotalStaked += p.Stake
		if p.IsGraded() {
			settledStake += p.Stake
			s.TotalPayout += p.Payout
		}
	}

	if decided := s.Wins + s.Losses; decided > 0 {
		s.WinRate = round(float64(s.Wins)/float64(decided), 3)
	}
	s.Profit = round(s.TotalPayout-settledStake, 2)
	if settledStake > 0 {
		s.ROI = round(s.Profit/settledStake*100, 2)
	}
	s.TotalStaked = round(s.TotalStaked, 2)
	s.TotalPayout = round(s.TotalPayout, 2)
	return s
}

// Record renders "W-L", or "--" before any pick is decided.
func (s Stats) Record() string {
	if s.Wins+s.Losses == 0 {
		return "--"
	}
	return fmt.Sprintf("%d-%d", s.Wins, s.Losses)
}

// Payout is what a winning stake returns at American odds, stake included.
func Payout(stake float64, odds int) float64 {
	switch {
	case odds > 0:
		return round(stake*(1+float64(odds)/100), 2)
	case odds < 0:
		return round(stake*(1+100/math.Abs(float64(odds))), 2)
	default:
		return round(stake, 2)
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
