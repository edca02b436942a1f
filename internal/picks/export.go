package picks

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
)

var csvHeader = []string{"id", "game_id", "type", "selection", "odds", "stake", "result", "payout", "notes", "created_at"}

// WriteCSV writes picks as a spreadsheet export, one row per pick.
func WriteCSV(w io.Writer, picks []models.Pick) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, p := range picks {
		row := []string{
			strconv.FormatUint(uint64(p.ID), 10),
			strconv.Itoa(p.GameID),
			string(p.PickType),
			p.Selection,
			strconv.Itoa(p.Odds),
			strconv.FormatFloat(p.Stake, 'f', 2, 64),
			string(p.Result),
			strconv.FormatFloat(p.Payout, 'f', 2, 64),
			p.Notes,
			p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
