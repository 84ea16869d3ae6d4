package factor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"pf-engine/models"
)

func gameRows() *pgxmock.Rows {
	date := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"stadium_id", "home_team_id", "away_team_id",
		"home_score", "away_score", "game_date",
	})
	for i := 0; i < 10; i++ {
		rows.AddRow("q", "A", "B", 5, 3, date)
	}
	for i := 0; i < 10; i++ {
		rows.AddRow("p", "A", "B", 5, 4, date)
	}
	return rows
}

func parkRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "name"}).
		AddRow("p", "Hitter Park").
		AddRow("q", "Neutral Field").
		AddRow("r", "Fresh Grounds")
}

// TestRefresh tests the full pipeline against a mocked pool: read, compute,
// and a single transactional replacement of the factor table
func TestRefresh(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO factor_refresh_runs").
		WithArgs("run-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT g.stadium_id").WillReturnRows(gameRows())
	mock.ExpectQuery("SELECT s.id, s.name").WillReturnRows(parkRows())
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM park_factors").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO park_factors").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE factor_refresh_runs").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	e := NewEngine(mock, 2, testParams(), "")
	err = e.Refresh(context.Background(), "run-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRefreshSourceReadFailure tests that a failed bulk read aborts the run
// before anything is written, reporting the source-read stage
func TestRefreshSourceReadFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO factor_refresh_runs").
		WithArgs("run-2").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT g.stadium_id").
		WillReturnError(errors.New("connection refused"))
	mock.ExpectExec("UPDATE factor_refresh_runs").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	e := NewEngine(mock, 2, testParams(), "")
	err = e.Refresh(context.Background(), "run-2")

	var rerr *RefreshError
	assert.ErrorAs(t, err, &rerr)
	assert.Equal(t, StageSourceRead, rerr.Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestStoreFactorsRollback tests that a persist failure rolls the
// transaction back, leaving the previous factor set in place
func TestStoreFactorsRollback(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM park_factors").
		WillReturnError(errors.New("table locked"))
	mock.ExpectRollback()

	e := NewEngine(mock, 2, testParams(), "")
	err = e.storeFactors(context.Background(), "run-3", []models.ParkFactorRecord{
		models.NeutralFactor("p", 0),
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestComputeAllRosterCoverage tests that every known park gets a record,
// including parks with no games yet
func TestComputeAllRosterCoverage(t *testing.T) {
	e := NewEngine(nil, 4, testParams(), "")

	games := referenceGames()
	parks := []models.Ballpark{
		{ID: "p", Name: "Hitter Park"},
		{ID: "q", Name: "Neutral Field"},
		{ID: "r", Name: "Fresh Grounds"},
	}

	records, err := e.computeAll(context.Background(), "run-4", games, parks)
	assert.NoError(t, err)
	assert.Len(t, records, 3)

	// Sorted by ballpark id for deterministic persistence.
	assert.Equal(t, "p", records[0].BallparkID)
	assert.Equal(t, "q", records[1].BallparkID)
	assert.Equal(t, "r", records[2].BallparkID)

	// The zero-sample park is reported explicitly, fully neutral.
	assert.Equal(t, 0, records[2].GamesSampleSize)
	assert.Equal(t, 1.0, records[2].PFRunsTeamAdj)
	assert.Equal(t, 0.0, records[2].PFConfidence)
}

// TestComputeAllUnknownPark tests that games at a park missing from the
// roster still produce a record
func TestComputeAllUnknownPark(t *testing.T) {
	e := NewEngine(nil, 2, testParams(), "")

	games := referenceGames()
	parks := []models.Ballpark{{ID: "p", Name: "Hitter Park"}}

	records, err := e.computeAll(context.Background(), "run-5", games, parks)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "q", records[1].BallparkID)
}

// TestComputeAllIdempotent tests that two passes over the same game set
// yield identical record sets
func TestComputeAllIdempotent(t *testing.T) {
	e := NewEngine(nil, 3, testParams(), "")

	games := referenceGames()
	parks := []models.Ballpark{
		{ID: "p", Name: "Hitter Park"},
		{ID: "q", Name: "Neutral Field"},
	}

	first, err := e.computeAll(context.Background(), "run-6", games, parks)
	assert.NoError(t, err)
	second, err := e.computeAll(context.Background(), "run-6", games, parks)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestStartRefreshExclusive tests that concurrent refreshes are rejected
func TestStartRefreshExclusive(t *testing.T) {
	e := NewEngine(nil, 1, testParams(), "")

	runID, err := e.StartRefresh()
	assert.NoError(t, err)
	assert.NotEmpty(t, runID)

	_, err = e.StartRefresh()
	assert.ErrorIs(t, err, ErrRefreshInProgress)

	// A finished run no longer blocks new ones.
	e.setRunStatus(runID, "completed", "")
	next, err := e.StartRefresh()
	assert.NoError(t, err)
	assert.NotEqual(t, runID, next)
}

// TestGetRunStatus tests run tracking
func TestGetRunStatus(t *testing.T) {
	e := NewEngine(nil, 1, testParams(), "")

	_, exists := e.GetRunStatus("missing")
	assert.False(t, exists)

	runID, err := e.StartRefresh()
	assert.NoError(t, err)

	status, exists := e.GetRunStatus(runID)
	assert.True(t, exists)
	assert.Equal(t, "pending", status.Status)
}

// TestGetRunStatusSnapshot tests that a returned status is detached from
// later progress updates
func TestGetRunStatusSnapshot(t *testing.T) {
	e := NewEngine(nil, 1, testParams(), "")

	runID, err := e.StartRefresh()
	assert.NoError(t, err)

	before, exists := e.GetRunStatus(runID)
	assert.True(t, exists)
	assert.Equal(t, 0, before.ParksComputed)

	e.incrementProgress(runID)

	assert.Equal(t, 0, before.ParksComputed)

	after, exists := e.GetRunStatus(runID)
	assert.True(t, exists)
	assert.Equal(t, 1, after.ParksComputed)
}

// TestCleanupOldRuns tests that stale completed runs are evicted while
// recent and in-flight runs survive
func TestCleanupOldRuns(t *testing.T) {
	e := NewEngine(nil, 1, testParams(), "")

	staleTime := time.Now().Add(-48 * time.Hour)
	recentTime := time.Now().Add(-1 * time.Hour)

	e.mu.Lock()
	e.activeRuns["stale"] = &RunStatus{
		RunID:         "stale",
		Status:        "completed",
		CompletedTime: &staleTime,
	}
	e.activeRuns["recent"] = &RunStatus{
		RunID:         "recent",
		Status:        "completed",
		CompletedTime: &recentTime,
	}
	e.activeRuns["inflight"] = &RunStatus{
		RunID:  "inflight",
		Status: "running",
	}
	e.mu.Unlock()

	e.CleanupOldRuns()

	_, exists := e.GetRunStatus("stale")
	assert.False(t, exists)
	_, exists = e.GetRunStatus("recent")
	assert.True(t, exists)
	_, exists = e.GetRunStatus("inflight")
	assert.True(t, exists)
	assert.Equal(t, 2, e.activeRunCount())
}
