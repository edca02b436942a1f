package gamestate

import (
	"sort"
	"time"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
)

// ClassifiedGame is a feed game paired with its classified state.
type ClassifiedGame struct {
	models.Game
	State State `json:"state"`
}

// Board is today's games partitioned for display.
type Board struct {
	Live      []ClassifiedGame `json:"live"`
	Scheduled []ClassifiedGame `json:"scheduled"`
	Final     []ClassifiedGame `json:"final"`
}

// All returns live, then scheduled, then final games.
func (b Board) All() []ClassifiedGame {
	all := make([]ClassifiedGame, 0, len(b.Live)+len(b.Scheduled)+len(b.Final))
	all = append(all, b.Live...)
	all = append(all, b.Scheduled...)
	return append(all, b.Final...)
}

// Len is the total number of games on the board.
func (b Board) Len() int {
	return len(b.Live) + len(b.Scheduled) + len(b.Final)
}

// Order partitions games by state. Live and final games keep feed order;
// scheduled games are sorted by tip-off, with unparseable times first.
func Order(games []models.Game, loc *time.Location) Board {
	board := Board{
		Live:      []ClassifiedGame{},
		Scheduled: []ClassifiedGame{},
		Final:     []ClassifiedGame{},
	}

	for _, g := range games {
		cg := ClassifiedGame{Game: g, State: Classify(g.Status, loc)}
		switch cg.State.Type {
		case Live:
			board.Live = append(board.Live, cg)
		case Final:
			board.Final = append(board.Final, cg)
		default:
			board.Scheduled = append(board.Scheduled, cg)
		}
	}

	sort.SliceStable(board.Scheduled, func(i, j int) bool {
		return TipOffInstant(board.Scheduled[i].Status, loc) < TipOffInstant(board.Scheduled[j].Status, loc)
	})

	return board
}
