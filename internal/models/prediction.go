package models

import "math"

// Confidence is the coarse certainty bucket the model attaches to a prediction.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// ProbabilityTolerance bounds how far home+away may drift from 1.0.
const ProbabilityTolerance = 1e-3

// TeamStats is the rolling form summary shown next to a prediction.
type TeamStats struct {
	WinPct     float64 `json:"win_pct"`
	AvgScored  float64 `json:"avg_scored"`
	AvgAllowed float64 `json:"avg_allowed"`
	NetRating  float64 `json:"net_rating"`
}

// ModelOdds is a game merged with its win-probability prediction, the record
// shape of GET /api/model-odds.
type ModelOdds struct {
	GameID        int        `json:"game_id"`
	Date          string     `json:"date"`
	Status        *string    `json:"status"`
	HomeTeam      Team       `json:"home_team"`
	AwayTeam      Team       `json:"away_team"`
	HomeScore     int        `json:"home_team_score"`
	AwayScore     int        `json:"visitor_team_score"`
	HomeWinProb   float64    `json:"home_win_prob"`
	AwayWinProb   float64    `json:"away_win_prob"`
	HomeMoneyline int        `json:"home_moneyline"`
	AwayMoneyline int        `json:"away_moneyline"`
	ModelPick     *Team      `json:"model_pick"`
	ModelPickProb float64    `json:"model_pick_prob"`
	Confidence    Confidence `json:"confidence"`
	HomeStats     *TeamStats `json:"home_stats"`
	AwayStats     *TeamStats `json:"away_stats"`
}

// RawStatus returns the status signal or "" when absent.
func (m ModelOdds) RawStatus() string {
	if m.Status == nil {
		return ""
	}
	return *m.Status
}

// Valid reports whether the two win probabilities sum to one.
func (m ModelOdds) Valid() bool {
	return math.Abs(m.HomeWinProb+m.AwayWinProb-1.0) <= ProbabilityTolerance
}

// ModelMetric is one health metric of a trained model.
type ModelMetric struct {
	Value      float64 `json:"value"`
	SampleSize int     `json:"sample_size"`
	TrainedAt  string  `json:"trained_at"`
}

// ModelHealth is the payload of GET /api/model/health.
type ModelHealth struct {
	Models map[string]map[string]ModelMetric `json:"models"`
}
