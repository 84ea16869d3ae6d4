package factor

import (
	"context"
	"fmt"
	"log"

	"pf-engine/models"
)

// loadGames bulk-reads the completed regular-season game set. Scores are
// validated upstream, so rows with missing scores are simply excluded here.
func (e *Engine) loadGames(ctx context.Context) ([]models.GameRecord, error) {
	query := `
		SELECT g.stadium_id, g.home_team_id, g.away_team_id,
		       g.home_score, g.away_score, g.game_date
		FROM games g
		WHERE g.status = 'completed'
		AND g.game_type = 'R'
		AND g.home_score IS NOT NULL
		AND g.away_score IS NOT NULL
		ORDER BY g.game_date
	`

	rows, err := e.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []models.GameRecord
	for rows.Next() {
		var g models.GameRecord
		if err := rows.Scan(&g.BallparkID, &g.HomeTeam, &g.AwayTeam,
			&g.RunsHome, &g.RunsAway, &g.Date); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read games: %w", err)
	}

	return games, nil
}

// loadBallparks reads the current roster of known parks. The roster is owned
// by the discovery component; the engine never creates or renames parks.
func (e *Engine) loadBallparks(ctx context.Context) ([]models.Ballpark, error) {
	query := `
		SELECT s.id, s.name
		FROM stadiums s
		ORDER BY s.name
	`

	rows, err := e.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stadiums: %w", err)
	}
	defer rows.Close()

	var parks []models.Ballpark
	for rows.Next() {
		var p models.Ballpark
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan stadium: %w", err)
		}
		parks = append(parks, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stadiums: %w", err)
	}

	return parks, nil
}

// storeFactors replaces the park_factors table with the new record set in a
// single transaction. Either every park from this refresh lands or none do,
// so the stored table always reflects exactly one game-record snapshot.
func (e *Engine) storeFactors(ctx context.Context, runID string, records []models.ParkFactorRecord) error {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM park_factors`); err != nil {
		return fmt.Errorf("failed to clear park factors: %w", err)
	}

	insertQuery := `
		INSERT INTO park_factors (
			stadium_id, pf_raw, pf_runs_team_adj, pf_confidence,
			games_sample_size, expected_runs_per_game, actual_runs_per_game,
			refresh_run_id, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`

	for _, rec := range records {
		_, err := tx.Exec(ctx, insertQuery,
			rec.BallparkID,
			rec.PFRaw,
			rec.PFRunsTeamAdj,
			rec.PFConfidence,
			rec.GamesSampleSize,
			rec.ExpectedRunsPerGame,
			rec.ActualRunsPerGame,
			runID,
		)
		if err != nil {
			return fmt.Errorf("failed to store factor for park %s: %w", rec.BallparkID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit park factors: %w", err)
	}

	return nil
}

// insertRefreshRun records the audit row for a refresh. The audit trail is
// informational, so failures are logged rather than aborting the run.
func (e *Engine) insertRefreshRun(ctx context.Context, runID string) {
	query := `
		INSERT INTO factor_refresh_runs (id, status, started_at)
		VALUES ($1, 'running', NOW())
	`

	if _, err := e.db.Exec(ctx, query, runID); err != nil {
		log.Printf("Failed to insert refresh run %s: %v", runID, err)
	}
}

// finishRefreshRun closes out the audit row with the final status, the stage
// a failure occurred in (empty on success), and the error text if any.
func (e *Engine) finishRefreshRun(ctx context.Context, runID, status, stage string, parksUpdated int, errMsg string) {
	query := `
		UPDATE factor_refresh_runs
		SET status = $2, stage = $3, parks_updated = $4, error = $5, completed_at = NOW()
		WHERE id = $1
	`

	if _, err := e.db.Exec(ctx, query, runID, status, stage, parksUpdated, errMsg); err != nil {
		log.Printf("Failed to update refresh run %s: %v", runID, err)
	}
}
