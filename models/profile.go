package models

// TeamOffensiveProfile is a team's park-independent scoring baseline:
// average runs scored per game across every game the team played, home or
// away. Profiles are always rebuilt in full from a game set, never patched.
type TeamOffensiveProfile struct {
	TeamID         string  `json:"team_id"`
	AvgRunsPerGame float64 `json:"avg_runs_per_game"`
	GamesCounted   int     `json:"games_counted"`
}

// ProfileSet maps team ids to offensive profiles and carries the league-wide
// average runs per team per game as the fallback for teams with no
// qualifying games.
type ProfileSet struct {
	Profiles  map[string]TeamOffensiveProfile
	LeagueAvg float64
}

// AvgRuns returns the team's average runs per game, or the league average
// when the team has no qualifying profile. This is what keeps a team with
// zero qualifying games from ever producing a division-by-zero downstream.
func (ps ProfileSet) AvgRuns(teamID string) float64 {
	if p, ok := ps.Profiles[teamID]; ok {
		return p.AvgRunsPerGame
	}
	return ps.LeagueAvg
}

// ParkAggregate is the per-ballpark intermediate: observed scoring, the
// bias-corrected expectation, and the sample size behind both.
type ParkAggregate struct {
	BallparkID          string  `json:"ballpark_id"`
	ActualRunsPerGame   float64 `json:"actual_runs_per_game"`
	ExpectedRunsPerGame float64 `json:"expected_runs_per_game"`
	GamesSampleSize     int     `json:"games_sample_size"`
}
