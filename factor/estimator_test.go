package factor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"pf-engine/models"
)

// TestExpectedRunsPerGame tests the bias-corrected expectation for a park
func TestExpectedRunsPerGame(t *testing.T) {
	parkGames := []models.GameRecord{
		game("p", "A", "B", 6, 5),
		game("p", "B", "A", 4, 4),
	}

	ps := models.ProfileSet{
		Profiles: map[string]models.TeamOffensiveProfile{
			"A": {TeamID: "A", AvgRunsPerGame: 5.0, GamesCounted: 30},
			"B": {TeamID: "B", AvgRunsPerGame: 3.0, GamesCounted: 30},
		},
		LeagueAvg: 4.5,
	}

	// Every game is A vs B, so each game expects 5.0 + 3.0 runs.
	assert.InDelta(t, 8.0, ExpectedRunsPerGame(parkGames, ps), 0.0001)
}

// TestExpectedRunsBiasRemoval tests the core correctness requirement: when a
// park's visitors average 5.0 and 3.0 runs per game, the corrected
// expectation is their combined 8.0, not the unconditional league average
func TestExpectedRunsBiasRemoval(t *testing.T) {
	// A and B play each other at two parks. Away from the evaluated park
	// their true scoring rates are 5.0 and 3.0.
	games := []models.GameRecord{
		game("p", "A", "B", 7, 5),
		game("p", "B", "A", 6, 8),
		game("q", "A", "B", 5, 3),
		game("q", "B", "A", 3, 5),
		game("q", "A", "B", 5, 3),
		game("q", "B", "A", 3, 5),
	}

	leagueAvg := LeagueAverage(games)
	profiles := models.ProfileSet{
		Profiles:  BuildProfiles(games, "p", 1),
		LeagueAvg: leagueAvg,
	}

	parkGames := games[:2]
	expected := ExpectedRunsPerGame(parkGames, profiles)

	assert.InDelta(t, 8.0, expected, 0.0001)
	assert.Greater(t, math.Abs(expected-2*leagueAvg), 0.5,
		"corrected expectation must reflect the visiting teams, not the league")
}

// TestExpectedRunsFallback tests the league-average substitution when a
// participant has no qualifying profile
func TestExpectedRunsFallback(t *testing.T) {
	parkGames := []models.GameRecord{
		game("p", "A", "newcomer", 5, 2),
	}

	ps := models.ProfileSet{
		Profiles: map[string]models.TeamOffensiveProfile{
			"A": {TeamID: "A", AvgRunsPerGame: 5.0, GamesCounted: 30},
		},
		LeagueAvg: 4.0,
	}

	assert.InDelta(t, 9.0, ExpectedRunsPerGame(parkGames, ps), 0.0001)
}

// TestExpectedRunsEmpty tests the zero-game edge case
func TestExpectedRunsEmpty(t *testing.T) {
	ps := models.ProfileSet{LeagueAvg: 4.0}
	assert.Equal(t, 0.0, ExpectedRunsPerGame(nil, ps))
}

// TestActualRunsPerGame tests the observed scoring mean
func TestActualRunsPerGame(t *testing.T) {
	parkGames := []models.GameRecord{
		game("p", "A", "B", 6, 5),
		game("p", "B", "A", 2, 1),
	}

	assert.InDelta(t, 7.0, ActualRunsPerGame(parkGames), 0.0001)
	assert.Equal(t, 0.0, ActualRunsPerGame(nil))
}
