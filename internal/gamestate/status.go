// Package gamestate turns the feed's untyped status strings into a closed set
// of game states and derives board orderings and calendar buckets from them.
package gamestate

import (
	"regexp"
	"strings"
	"time"
)

// StateType is the classified lifecycle of a game.
type StateType string

const (
	Scheduled StateType = "scheduled"
	Live      StateType = "live"
	Final     StateType = "final"
)

// Sort keys place live games first, then scheduled, then final.
const (
	SortLive      = 0
	SortScheduled = 1
	SortFinal     = 2
)

const (
	scheduledLabel = "SCHEDULED"
	finalLabel     = "FINAL"
	tipOffLayout   = "3:04 PM"
)

var (
	isoPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`)

	liveTokens = []string{"qtr", "quarter", "half", "ot", "overtime", "progress"}

	// Layouts tried in order for a tip-off timestamp without a zone.
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
)

// State is the classification of one raw status signal.
type State struct {
	Type    StateType `json:"type"`
	Label   string    `json:"label"`
	SortKey int       `json:"sort_key"`
	TipOff  time.Time `json:"tip_off,omitempty"`
}

func (s State) IsLive() bool      { return s.Type == Live }
func (s State) IsFinal() bool     { return s.Type == Final }
func (s State) IsScheduled() bool { return s.Type == Scheduled }

// Classify maps a raw status to a State. It is total: any input, including
// nil and garbage, yields a state. Timestamps are rendered in loc.
func Classify(raw *string, loc *time.Location) State {
	if raw == nil {
		return State{Type: Scheduled, Label: scheduledLabel, SortKey: SortScheduled}
	}
	signal := strings.TrimSpace(*raw)
	if signal == "" {
		return State{Type: Scheduled, Label: scheduledLabel, SortKey: SortScheduled}
	}

	lower := strings.ToLower(signal)

	// Live tokens win over "final", so "Final/OT" reads as live.
	for _, token := range liveTokens {
		if strings.Contains(lower, token) {
			return State{Type: Live, Label: *raw, SortKey: SortLive}
		}
	}

	if strings.Contains(lower, "final") {
		return State{Type: Final, Label: finalLabel, SortKey: SortFinal}
	}

	if isoPrefix.MatchString(signal) {
		tip, ok := parseTipOff(signal, loc)
		if !ok {
			return State{Type: Scheduled, Label: scheduledLabel, SortKey: SortScheduled}
		}
		return State{
			Type:    Scheduled,
			Label:   tip.In(location(loc)).Format(tipOffLayout),
			SortKey: SortScheduled,
			TipOff:  tip,
		}
	}

	return State{Type: Scheduled, Label: signal, SortKey: SortScheduled}
}

// Concluded reports whether the signal declares the game over. Unlike
// Classify it ignores period tokens, so "Final/OT" counts.
func Concluded(raw *string) bool {
	if raw == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*raw), "final")
}

// ClassifyString is Classify for callers holding a plain string, where "" is
// treated as absent.
func ClassifyString(raw string, loc *time.Location) State {
	return Classify(&raw, loc)
}

// TipOffInstant returns the tip-off time in Unix milliseconds, or 0 when the
// signal is not a parseable timestamp.
func TipOffInstant(raw *string, loc *time.Location) int64 {
	if raw == nil {
		return 0
	}
	signal := strings.TrimSpace(*raw)
	if !isoPrefix.MatchString(signal) {
		return 0
	}
	tip, ok := parseTipOff(signal, loc)
	if !ok {
		return 0
	}
	return tip.UnixMilli()
}

func parseTipOff(signal string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, signal); err == nil {
		return t, true
	}
	// Offsets without a colon, e.g. "+0000".
	if t, err := time.Parse("2006-01-02T15:04:05-0700", signal); err == nil {
		return t, true
	}
	trimmed := strings.TrimSuffix(signal, "Z")
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, location(loc)); err == nil {
			if trimmed != signal {
				// A bare "Z" that RFC3339 rejected still means UTC.
				t, _ = time.ParseInLocation(layout, trimmed, time.UTC)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
