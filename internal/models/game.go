package models

// Team is a display descriptor passed through from the feed untouched.
type Team struct {
	ID             int    `json:"id"`
	Abbreviation   string `json:"abbreviation"`
	City           string `json:"city,omitempty"`
	Conference     string `json:"conference,omitempty"`
	Division       string `json:"division,omitempty"`
	FullName       string `json:"full_name"`
	Name           string `json:"name,omitempty"`
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
}

// MoneylineSelection is the selection label a moneyline pick on this team carries.
func (t Team) MoneylineSelection() string {
	return t.FullName + " ML"
}

// MomentumPoint is one score sample recorded during a game.
type MomentumPoint struct {
	Home    int    `json:"home"`
	Visitor int    `json:"visitor"`
	Period  int    `json:"period"`
	Time    string `json:"time,omitempty"`
}

// Game is one scheduled contest as the feed reports it. Status is the raw,
// untyped signal: nil, an ISO-8601 tip-off time, a period token, or "Final".
type Game struct {
	ID        int             `json:"id"`
	Date      string          `json:"date"`
	Status    *string         `json:"status"`
	Period    int             `json:"period,omitempty"`
	Time      string          `json:"time,omitempty"`
	HomeTeam  Team            `json:"home_team"`
	AwayTeam  Team            `json:"visitor_team"`
	HomeScore int             `json:"home_team_score"`
	AwayScore int             `json:"visitor_team_score"`
	Momentum  []MomentumPoint `json:"momentum,omitempty"`
}

// RawStatus returns the status signal or "" when absent.
func (g Game) RawStatus() string {
	if g.Status == nil {
		return ""
	}
	return *g.Status
}

// Winner returns the team with more points, or nil on a tie.
func (g Game) Winner() *Team {
	switch {
	case g.HomeScore > g.AwayScore:
		return &g.HomeTeam
	case g.AwayScore > g.HomeScore:
		return &g.AwayTeam
	default:
		return nil
	}
}

// CalendarResponse is the month window payload of GET /api/games/calendar.
type CalendarResponse struct {
	Dates map[string][]Game `json:"dates"`
}

// StatusPtr is a helper for building games in fixtures and seeds.
func StatusPtr(s string) *string {
	return &s
}
