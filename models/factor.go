package models

import "time"

// Consumption guidance for downstream users of park factor records. Callers
// should only trust a factor once confidence clears MinTrustedConfidence and
// prefer parks with at least PreferredSampleSize games behind them.
const (
	MinTrustedConfidence = 0.4
	PreferredSampleSize  = 20
)

// ParkFactorRecord is the per-ballpark output of a refresh. PFRunsTeamAdj is
// the shrinkage-adjusted, team-adjusted factor intended for downstream use;
// PFRaw is the uncorrected league-average ratio kept for comparison.
type ParkFactorRecord struct {
	BallparkID          string    `json:"ballpark_id" db:"stadium_id"`
	PFRaw               float64   `json:"pf_raw" db:"pf_raw"`
	PFRunsTeamAdj       float64   `json:"pf_runs_team_adj" db:"pf_runs_team_adj"`
	PFConfidence        float64   `json:"pf_confidence" db:"pf_confidence"`
	GamesSampleSize     int       `json:"games_sample_size" db:"games_sample_size"`
	ExpectedRunsPerGame float64   `json:"expected_runs_per_game" db:"expected_runs_per_game"`
	ActualRunsPerGame   float64   `json:"actual_runs_per_game" db:"actual_runs_per_game"`
	ComputedAt          time.Time `json:"computed_at" db:"computed_at"`
}

// NeutralFactor returns the record emitted for parks without enough data:
// fully regressed to 1.0 with zero confidence.
func NeutralFactor(ballparkID string, sampleSize int) ParkFactorRecord {
	return ParkFactorRecord{
		BallparkID:      ballparkID,
		PFRaw:           1.0,
		PFRunsTeamAdj:   1.0,
		PFConfidence:    0,
		GamesSampleSize: sampleSize,
	}
}

// IsTrusted reports whether the record clears the recommended consumption
// thresholds.
func (r ParkFactorRecord) IsTrusted() bool {
	return r.PFConfidence >= MinTrustedConfidence && r.GamesSampleSize >= PreferredSampleSize
}

// IsHitterFriendly returns true if the park meaningfully inflates scoring.
func (r ParkFactorRecord) IsHitterFriendly() bool {
	return r.PFRunsTeamAdj >= 1.05
}

// IsPitcherFriendly returns true if the park meaningfully suppresses scoring.
func (r ParkFactorRecord) IsPitcherFriendly() bool {
	return r.PFRunsTeamAdj <= 0.95
}

// ConfidenceTier buckets a record by sample size the way operator reports
// group parks: "high" at 50+ games, "medium" at 20-49, "low" below 20.
func (r ParkFactorRecord) ConfidenceTier() string {
	switch {
	case r.GamesSampleSize >= 50:
		return "high"
	case r.GamesSampleSize >= 20:
		return "medium"
	default:
		return "low"
	}
}
