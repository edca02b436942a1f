package predictions

import (
	"time"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
)

// LockMap indexes a user's moneyline picks by game id. The result only
// depends on the input, so deriving it twice yields the same map.
func LockMap(picks []models.Pick) map[int]string {
	locks := make(map[int]string, len(picks))
	for _, p := range picks {
		if p.PickType != models.PickTypeMoneyline {
			continue
		}
		locks[p.GameID] = p.Selection
	}
	return locks
}

// LockState is how the pick buttons of one game render.
type LockState struct {
	Locked     bool   `json:"locked"`
	HomePicked bool   `json:"home_picked"`
	AwayPicked bool   `json:"away_picked"`
	Selection  string `json:"selection,omitempty"`
}

// LockStateFor resolves which side, if any, the user already holds.
func LockStateFor(record models.ModelOdds, locks map[int]string) LockState {
	selection, ok := locks[record.GameID]
	if !ok {
		return LockState{}
	}
	state := LockState{Locked: true, Selection: selection}
	switch selection {
	case record.HomeTeam.MoneylineSelection():
		state.HomePicked = true
	case record.AwayTeam.MoneylineSelection():
		state.AwayPicked = true
	}
	return state
}

// BoardGame is one row of the odds board.
type BoardGame struct {
	models.ModelOdds
	TipOffLabel string    `json:"tip_off_label"`
	Lock        LockState `json:"lock"`
}

// Board is the pre-game odds board for one user.
type Board struct {
	Tier    Tier        `json:"tier"`
	Games   []BoardGame `json:"games"`
	Summary Summary     `json:"summary"`
}

// BuildBoard filters records to pre-game games in the tier and marks the
// sides the user has already picked. picks may be nil for anonymous viewers.
// The summary covers every pre-game record, not only the tier.
func BuildBoard(records []models.ModelOdds, picks []models.Pick, tier Tier, loc *time.Location) Board {
	preGame := PreGame(records, loc)
	for i := range preGame {
		preGame[i] = Enrich(preGame[i])
	}
	locks := LockMap(picks)

	filtered := FilterTier(preGame, tier)
	games := make([]BoardGame, 0, len(filtered))
	for _, r := range filtered {
		games = append(games, BoardGame{
			ModelOdds:   r,
			TipOffLabel: tipOffLabel(r, loc),
			Lock:        LockStateFor(r, locks),
		})
	}

	return Board{
		Tier:    tier,
		Games:   games,
		Summary: Summarize(preGame),
	}
}
