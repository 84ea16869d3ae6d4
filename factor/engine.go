package factor

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pf-engine/models"
)

// DB is the subset of pgxpool.Pool the engine uses. Declared as an interface
// so the storage layer can be exercised against a mock pool in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Engine computes and persists park factors
type Engine struct {
	db         DB
	workers    int
	params     Params
	reportPath string
	mu         sync.RWMutex
	activeRuns map[string]*RunStatus
}

// RunStatus tracks the progress of a refresh run
type RunStatus struct {
	RunID         string
	Status        string
	Stage         string
	ParksTotal    int
	ParksComputed int
	StartTime     time.Time
	CompletedTime *time.Time
	Error         string
}

// NewEngine creates a new park factor engine
func NewEngine(db DB, workers int, params Params, reportPath string) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		db:         db,
		workers:    workers,
		params:     params,
		reportPath: reportPath,
		activeRuns: make(map[string]*RunStatus),
	}
}

// StartRefresh registers a new refresh run and returns its id. Refreshes are
// exclusive: a second request while one is running is rejected so two runs
// never race on the factor table.
func (e *Engine) StartRefresh() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, status := range e.activeRuns {
		if status.Status == "pending" || status.Status == "running" {
			return "", ErrRefreshInProgress
		}
	}

	runID := uuid.New().String()
	e.activeRuns[runID] = &RunStatus{
		RunID:     runID,
		Status:    "pending",
		StartTime: time.Now(),
	}

	return runID, nil
}

// RunRefresh executes a refresh run to completion, updating its tracked
// status. Intended to be called in a goroutine after StartRefresh.
func (e *Engine) RunRefresh(runID string) {
	ctx := context.Background()

	e.setRunStatus(runID, "running", "")

	start := time.Now()
	err := e.Refresh(ctx, runID)
	refreshDuration.Observe(time.Since(start).Seconds())

	e.mu.Lock()
	status, exists := e.activeRuns[runID]
	if exists {
		completed := time.Now()
		status.CompletedTime = &completed
		if err != nil {
			status.Status = "error"
			status.Error = err.Error()
		} else {
			status.Status = "completed"
		}
	}
	e.mu.Unlock()

	if err != nil {
		refreshesTotal.WithLabelValues("error").Inc()
		log.Printf("Refresh %s failed: %v", runID, err)
		return
	}

	refreshesTotal.WithLabelValues("success").Inc()
	log.Printf("Refresh %s completed in %v", runID, time.Since(start))
}

// Refresh runs the full pipeline once: read the game set and park roster,
// compute a factor record for every known park, and persist the replacement
// set atomically. A failure at any stage aborts the whole run and leaves the
// previously stored factors in place.
func (e *Engine) Refresh(ctx context.Context, runID string) error {
	e.insertRefreshRun(ctx, runID)

	e.setRunStage(runID, StageSourceRead)

	games, err := e.loadGames(ctx)
	if err != nil {
		rerr := &RefreshError{Stage: StageSourceRead, Err: err}
		e.finishRefreshRun(ctx, runID, "error", StageSourceRead, 0, rerr.Error())
		refreshFailures.WithLabelValues(StageSourceRead).Inc()
		return rerr
	}

	parks, err := e.loadBallparks(ctx)
	if err != nil {
		rerr := &RefreshError{Stage: StageSourceRead, Err: err}
		e.finishRefreshRun(ctx, runID, "error", StageSourceRead, 0, rerr.Error())
		refreshFailures.WithLabelValues(StageSourceRead).Inc()
		return rerr
	}

	e.setRunStage(runID, StageCompute)

	records, err := e.computeAll(ctx, runID, games, parks)
	if err != nil {
		rerr := &RefreshError{Stage: StageCompute, Err: err}
		e.finishRefreshRun(ctx, runID, "error", StageCompute, 0, rerr.Error())
		refreshFailures.WithLabelValues(StageCompute).Inc()
		return rerr
	}

	e.setRunStage(runID, StagePersist)

	if err := e.storeFactors(ctx, runID, records); err != nil {
		rerr := &RefreshError{Stage: StagePersist, Err: err}
		e.finishRefreshRun(ctx, runID, "error", StagePersist, 0, rerr.Error())
		refreshFailures.WithLabelValues(StagePersist).Inc()
		return rerr
	}

	e.finishRefreshRun(ctx, runID, "completed", "", len(records), "")
	observeRecords(records)

	// Operator report is best effort; a write failure never fails a refresh
	// whose factors are already committed.
	if e.reportPath != "" {
		parkNames := make(map[string]string, len(parks))
		for _, p := range parks {
			parkNames[p.ID] = p.Name
		}
		if err := WriteReport(e.reportPath, records, parkNames, time.Now()); err != nil {
			log.Printf("Failed to write park factors report: %v", err)
		}
	}

	return nil
}

// computeAll maps over the park roster with a bounded worker pool. Every
// park derives its own exclusion-filtered baselines, so no park's
// computation touches another's state and the whole map is parallel.
func (e *Engine) computeAll(ctx context.Context, runID string, games []models.GameRecord, parks []models.Ballpark) ([]models.ParkFactorRecord, error) {
	leagueAvg := LeagueAverage(games)
	byPark := GroupByPark(games)

	// The roster is authoritative for which parks get reported. Games at a
	// park missing from the roster indicate a discovery lag upstream; they
	// still get a record so the factor table stays consistent with the
	// game snapshot.
	parkIDs := make([]string, 0, len(parks)+len(byPark))
	seen := make(map[string]bool, len(parks))
	for _, p := range parks {
		parkIDs = append(parkIDs, p.ID)
		seen[p.ID] = true
	}
	for id := range byPark {
		if !seen[id] {
			log.Printf("Games reference ballpark %s not present in roster", id)
			parkIDs = append(parkIDs, id)
		}
	}

	e.mu.Lock()
	if status, exists := e.activeRuns[runID]; exists {
		status.ParksTotal = len(parkIDs)
	}
	e.mu.Unlock()

	jobs := make(chan string, len(parkIDs))
	results := make(chan models.ParkFactorRecord, len(parkIDs))
	var wg sync.WaitGroup

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for parkID := range jobs {
				results <- ComputeParkFactor(parkID, byPark[parkID], games, leagueAvg, e.params)
				e.incrementProgress(runID)
			}
		}()
	}

	for _, id := range parkIDs {
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	records := make([]models.ParkFactorRecord, 0, len(parkIDs))
	for rec := range results {
		records = append(records, rec)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Deterministic persist order
	sort.Slice(records, func(i, j int) bool {
		return records[i].BallparkID < records[j].BallparkID
	})

	return records, nil
}

// GetRunStatus returns a snapshot of a refresh run's tracked status. The
// copy is taken under the lock so callers never observe a run mid-update.
func (e *Engine) GetRunStatus(runID string) (RunStatus, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	status, exists := e.activeRuns[runID]
	if !exists {
		return RunStatus{}, false
	}
	snapshot := *status
	if status.CompletedTime != nil {
		completed := *status.CompletedTime
		snapshot.CompletedTime = &completed
	}
	return snapshot, true
}

// activeRunCount reports how many runs are tracked in memory
func (e *Engine) activeRunCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.activeRuns)
}

// CleanupOldRuns removes completed refresh runs from memory
func (e *Engine) CleanupOldRuns() {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := time.Now().Add(-24 * time.Hour)

	for runID, status := range e.activeRuns {
		if status.CompletedTime != nil && status.CompletedTime.Before(cutoff) {
			delete(e.activeRuns, runID)
		}
	}
}

// runCleanupLoop periodically cleans up old runs to prevent memory leaks
func (e *Engine) runCleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		e.CleanupOldRuns()
		log.Printf("Park factor engine cleanup: %d active runs", e.activeRunCount())
	}
}

// StartRunCleanup starts the background run cleanup process
func (e *Engine) StartRunCleanup() {
	go e.runCleanupLoop()
}

func (e *Engine) setRunStatus(runID, status, stage string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rs, exists := e.activeRuns[runID]; exists {
		rs.Status = status
		rs.Stage = stage
	}
}

func (e *Engine) setRunStage(runID, stage string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rs, exists := e.activeRuns[runID]; exists {
		rs.Stage = stage
	}
}

func (e *Engine) incrementProgress(runID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rs, exists := e.activeRuns[runID]; exists {
		rs.ParksComputed++
	}
}
