package models

import "time"

// GameRecord is a single played game as read from the games table.
// Records are validated and deduplicated upstream; the engine treats them
// as immutable facts.
type GameRecord struct {
	BallparkID string    `json:"ballpark_id" db:"stadium_id"`
	HomeTeam   string    `json:"home_team" db:"home_team_id"`
	AwayTeam   string    `json:"away_team" db:"away_team_id"`
	RunsHome   int       `json:"runs_home" db:"home_score"`
	RunsAway   int       `json:"runs_away" db:"away_score"`
	Date       time.Time `json:"date" db:"game_date"`
}

// TotalRuns returns the combined runs scored by both teams.
func (g GameRecord) TotalRuns() int {
	return g.RunsHome + g.RunsAway
}

// Ballpark is an entry in the known-park roster. Discovery and metadata
// population happen elsewhere; the engine only needs the identifier so that
// zero-sample parks are reported explicitly instead of silently dropped.
type Ballpark struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
