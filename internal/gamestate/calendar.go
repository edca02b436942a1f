package gamestate

import (
	"sort"
	"time"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
)

// Cell is one square of the month grid. Padding cells before day 1 have
// Empty set and nothing else.
type Cell struct {
	Empty       bool          `json:"empty"`
	Day         int           `json:"day,omitempty"`
	DateKey     string        `json:"date_key,omitempty"`
	Games       []models.Game `json:"games,omitempty"`
	IsToday     bool          `json:"is_today"`
	HasLiveGame bool          `json:"has_live_game"`
	AllFinal    bool          `json:"all_final"`
}

// Month is a Sunday-first calendar grid.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Title string     `json:"title"`
	Cells []Cell     `json:"cells"`
}

// BuildMonth lays out the grid for year/month. dates is keyed by feed date
// strings, which are canonicalized before use; today is supplied by the
// caller and compared by date key in loc.
func BuildMonth(dates map[string][]models.Game, year int, month time.Month, today time.Time, loc *time.Location) Month {
	loc = location(loc)
	buckets := bucketByKey(dates)

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	leading := int(first.Weekday())
	todayKey := DateKey(today, loc)

	cells := make([]Cell, 0, leading+daysInMonth)
	for i := 0; i < leading; i++ {
		cells = append(cells, Cell{Empty: true})
	}

	for day := 1; day <= daysInMonth; day++ {
		key := time.Date(year, month, day, 0, 0, 0, 0, loc).Format(DateKeyLayout)
		games := buckets[key]
		hasLive, allFinal := summarizeBucket(games, loc)
		cells = append(cells, Cell{
			Day:         day,
			DateKey:     key,
			Games:       games,
			IsToday:     key == todayKey,
			HasLiveGame: hasLive,
			AllFinal:    allFinal,
		})
	}

	return Month{
		Year:  year,
		Month: month,
		Title: first.Format("January 2006"),
		Cells: cells,
	}
}

// Lookup returns the games of a selected day. The key is canonicalized the
// same way the grid was built, so a full timestamp finds its day.
func (m Month) Lookup(dateKey string) []models.Game {
	key, ok := NormalizeDateKey(dateKey)
	if !ok {
		return nil
	}
	for _, c := range m.Cells {
		if !c.Empty && c.DateKey == key {
			return c.Games
		}
	}
	return nil
}

func bucketByKey(dates map[string][]models.Game) map[string][]models.Game {
	raws := make([]string, 0, len(dates))
	for raw := range dates {
		raws = append(raws, raw)
	}
	sort.Strings(raws)

	buckets := make(map[string][]models.Game, len(dates))
	for _, raw := range raws {
		key, ok := NormalizeDateKey(raw)
		if !ok {
			continue
		}
		buckets[key] = append(buckets[key], dates[raw]...)
	}
	return buckets
}

func summarizeBucket(games []models.Game, loc *time.Location) (hasLive, allFinal bool) {
	if len(games) == 0 {
		return false, false
	}
	allFinal = true
	for _, g := range games {
		switch Classify(g.Status, loc).Type {
		case Live:
			hasLive = true
			allFinal = false
		case Final:
		default:
			allFinal = false
		}
	}
	return hasLive, allFinal
}
