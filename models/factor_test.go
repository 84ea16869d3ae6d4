package models

import (
	"testing"
)

// TestNeutralFactor tests the neutral record emitted for sparse parks
func TestNeutralFactor(t *testing.T) {
	rec := NeutralFactor("park-1", 2)

	if rec.PFRunsTeamAdj != 1.0 {
		t.Errorf("Neutral factor should be 1.0, got %f", rec.PFRunsTeamAdj)
	}

	if rec.PFRaw != 1.0 {
		t.Errorf("Neutral raw factor should be 1.0, got %f", rec.PFRaw)
	}

	if rec.PFConfidence != 0 {
		t.Errorf("Neutral confidence should be 0, got %f", rec.PFConfidence)
	}

	if rec.GamesSampleSize != 2 {
		t.Errorf("Sample size should be preserved, got %d", rec.GamesSampleSize)
	}
}

// TestIsTrusted tests the recommended consumption thresholds
func TestIsTrusted(t *testing.T) {
	tests := []struct {
		name     string
		rec      ParkFactorRecord
		expected bool
	}{
		{
			name:     "trusted",
			rec:      ParkFactorRecord{PFConfidence: 0.8, GamesSampleSize: 40},
			expected: true,
		},
		{
			name:     "at thresholds",
			rec:      ParkFactorRecord{PFConfidence: 0.4, GamesSampleSize: 20},
			expected: true,
		},
		{
			name:     "low confidence",
			rec:      ParkFactorRecord{PFConfidence: 0.3, GamesSampleSize: 40},
			expected: false,
		},
		{
			name:     "thin sample",
			rec:      ParkFactorRecord{PFConfidence: 0.5, GamesSampleSize: 15},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.IsTrusted(); got != tt.expected {
				t.Errorf("IsTrusted() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestFriendlinessClassification tests hitter/pitcher park detection
func TestFriendlinessClassification(t *testing.T) {
	tests := []struct {
		name     string
		pf       float64
		hitter   bool
		pitcher  bool
	}{
		{"strong hitter park", 1.12, true, false},
		{"neutral park", 1.0, false, false},
		{"strong pitcher park", 0.90, false, true},
		{"slightly up", 1.03, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ParkFactorRecord{PFRunsTeamAdj: tt.pf}

			if got := rec.IsHitterFriendly(); got != tt.hitter {
				t.Errorf("IsHitterFriendly() = %v, want %v", got, tt.hitter)
			}

			if got := rec.IsPitcherFriendly(); got != tt.pitcher {
				t.Errorf("IsPitcherFriendly() = %v, want %v", got, tt.pitcher)
			}
		})
	}
}

// TestConfidenceTier tests sample-size bucketing
func TestConfidenceTier(t *testing.T) {
	tests := []struct {
		games    int
		expected string
	}{
		{0, "low"},
		{19, "low"},
		{20, "medium"},
		{49, "medium"},
		{50, "high"},
		{150, "high"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			rec := ParkFactorRecord{GamesSampleSize: tt.games}
			if got := rec.ConfidenceTier(); got != tt.expected {
				t.Errorf("ConfidenceTier() with %d games = %s, want %s",
					tt.games, got, tt.expected)
			}
		})
	}
}

// TestGameRecordTotalRuns tests combined scoring
func TestGameRecordTotalRuns(t *testing.T) {
	g := GameRecord{RunsHome: 7, RunsAway: 4}

	if g.TotalRuns() != 11 {
		t.Errorf("TotalRuns() = %d, want 11", g.TotalRuns())
	}
}
