package factor

import (
	"pf-engine/models"
)

// Params are the statistical knobs for a refresh. RegressionConstant (K) and
// SaturationGames (C) are deliberately independent: K tunes how fast the
// engine trusts a raw factor, C tunes how fast it reports the number as
// trustworthy.
type Params struct {
	// RegressionConstant is the sample size at which trust in the raw
	// estimate equals trust in the neutral prior. Larger means more
	// shrinkage for a given sample.
	RegressionConstant float64

	// SaturationGames is the sample size at which the reported confidence
	// reaches 1.0.
	SaturationGames float64

	// MinGamesToReport is the sample size below which a park is emitted as
	// a neutral record with zero confidence rather than omitted.
	MinGamesToReport int

	// MinTeamGames is the minimum qualifying games for a team's offensive
	// profile; below it the league average is substituted.
	MinTeamGames int
}

// DefaultParams returns the calibration used by a standard refresh.
func DefaultParams() Params {
	return Params{
		RegressionConstant: 20,
		SaturationGames:    50,
		MinGamesToReport:   3,
		MinTeamGames:       10,
	}
}

// Aggregate derives the per-park intermediate from the park's games and the
// full game set. The full set is needed because the team baselines are
// recomputed with the park's own games excluded. Returns ErrDataInsufficient
// when the park has no games, the league average is degenerate, or the
// bias-corrected expectation computes to zero.
func Aggregate(ballparkID string, parkGames, allGames []models.GameRecord, leagueAvg float64, minTeamGames int) (models.ParkAggregate, error) {
	if len(parkGames) == 0 || leagueAvg <= 0 {
		return models.ParkAggregate{}, ErrDataInsufficient
	}

	profiles := models.ProfileSet{
		Profiles:  BuildProfiles(allGames, ballparkID, minTeamGames),
		LeagueAvg: leagueAvg,
	}

	expected := ExpectedRunsPerGame(parkGames, profiles)
	if expected <= 0 {
		return models.ParkAggregate{}, ErrDataInsufficient
	}

	return models.ParkAggregate{
		BallparkID:          ballparkID,
		ActualRunsPerGame:   ActualRunsPerGame(parkGames),
		ExpectedRunsPerGame: expected,
		GamesSampleSize:     len(parkGames),
	}, nil
}

// ComputeParkFactor produces the output record for one ballpark. Parks below
// the reporting floor, and any DataInsufficient condition, resolve to the
// neutral record instead of failing: sparse data is a normal steady state
// for newly added parks. The result is a pure function of its inputs, so
// recomputation over an unchanged game set is idempotent.
func ComputeParkFactor(ballparkID string, parkGames, allGames []models.GameRecord, leagueAvg float64, p Params) models.ParkFactorRecord {
	n := len(parkGames)
	if n < p.MinGamesToReport {
		return models.NeutralFactor(ballparkID, n)
	}

	agg, err := Aggregate(ballparkID, parkGames, allGames, leagueAvg, p.MinTeamGames)
	if err != nil {
		return models.NeutralFactor(ballparkID, n)
	}

	// Naive factor against the park-neutral league expectation (two teams
	// per game, so the per-game expectation is twice the per-team average).
	raw := agg.ActualRunsPerGame / (2 * leagueAvg)

	// Team-adjusted factor against the bias-corrected expectation, then
	// regressed toward 1.0 by sample size.
	adjusted := agg.ActualRunsPerGame / agg.ExpectedRunsPerGame

	return models.ParkFactorRecord{
		BallparkID:          ballparkID,
		PFRaw:               raw,
		PFRunsTeamAdj:       Shrink(adjusted, n, p.RegressionConstant),
		PFConfidence:        Confidence(n, p.SaturationGames),
		GamesSampleSize:     n,
		ExpectedRunsPerGame: agg.ExpectedRunsPerGame,
		ActualRunsPerGame:   agg.ActualRunsPerGame,
	}
}

// GroupByPark buckets games by ballpark id, preserving input order within
// each bucket.
func GroupByPark(games []models.GameRecord) map[string][]models.GameRecord {
	grouped := make(map[string][]models.GameRecord)
	for _, g := range games {
		grouped[g.BallparkID] = append(grouped[g.BallparkID], g)
	}
	return grouped
}
