package factor

import (
	"pf-engine/models"
)

// LeagueAverage returns the league-wide average runs scored per team per
// game, i.e. the mean of (home runs + away runs) / 2 over the game set.
// Returns 0 for an empty set.
func LeagueAverage(games []models.GameRecord) float64 {
	if len(games) == 0 {
		return 0
	}

	var total float64
	for _, g := range games {
		total += float64(g.TotalRuns()) / 2.0
	}

	return total / float64(len(games))
}

// BuildProfiles aggregates per-team offensive baselines from a game set.
// Each team's average counts every game it played, home or away. Games at
// excludePark are skipped when it is non-empty; this is how a park's own
// games are kept out of the baselines used to evaluate that park. Teams with
// fewer than minGames qualifying games are omitted so that callers fall back
// to the league average instead of trusting a tiny sample.
func BuildProfiles(games []models.GameRecord, excludePark string, minGames int) map[string]models.TeamOffensiveProfile {
	if minGames < 1 {
		minGames = 1
	}

	type tally struct {
		runs  int
		games int
	}

	tallies := make(map[string]*tally)
	add := func(team string, runs int) {
		t, ok := tallies[team]
		if !ok {
			t = &tally{}
			tallies[team] = t
		}
		t.runs += runs
		t.games++
	}

	for _, g := range games {
		if excludePark != "" && g.BallparkID == excludePark {
			continue
		}
		add(g.HomeTeam, g.RunsHome)
		add(g.AwayTeam, g.RunsAway)
	}

	profiles := make(map[string]models.TeamOffensiveProfile, len(tallies))
	for team, t := range tallies {
		if t.games < minGames {
			continue
		}
		profiles[team] = models.TeamOffensiveProfile{
			TeamID:         team,
			AvgRunsPerGame: float64(t.runs) / float64(t.games),
			GamesCounted:   t.games,
		}
	}

	return profiles
}
