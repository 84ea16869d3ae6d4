package factor

import (
	"pf-engine/models"
)

// ExpectedRunsPerGame estimates the runs a neutral version of the park would
// see per game: the mean, over the park's games, of the two participants'
// offensive baselines. The profiles must have been built with the park's own
// games excluded, otherwise a park's scoring environment leaks into its
// teams' baselines and the bias correction collapses. Teams missing from the
// profile set resolve to the league average via ProfileSet.AvgRuns.
func ExpectedRunsPerGame(parkGames []models.GameRecord, profiles models.ProfileSet) float64 {
	if len(parkGames) == 0 {
		return 0
	}

	var sum float64
	for _, g := range parkGames {
		sum += profiles.AvgRuns(g.HomeTeam) + profiles.AvgRuns(g.AwayTeam)
	}

	return sum / float64(len(parkGames))
}

// ActualRunsPerGame returns the mean total runs (both teams combined) per
// game at the park.
func ActualRunsPerGame(parkGames []models.GameRecord) float64 {
	if len(parkGames) == 0 {
		return 0
	}

	var sum float64
	for _, g := range parkGames {
		sum += float64(g.TotalRuns())
	}

	return sum / float64(len(parkGames))
}
