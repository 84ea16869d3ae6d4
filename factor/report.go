package factor

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"pf-engine/models"
)

const reportRankLimit = 10

// BuildReport renders the operator-facing markdown summary of a refresh:
// league totals, confidence tiers, and the most hitter- and pitcher-friendly
// parks among those with a preferred sample. parkNames maps ballpark ids to
// display names; parks missing from the map fall back to their id.
func BuildReport(records []models.ParkFactorRecord, parkNames map[string]string, now time.Time) string {
	var b strings.Builder

	totalGames := 0
	tiers := map[string]int{}
	var pfSum, pfMin, pfMax float64
	reported := 0

	for _, rec := range records {
		totalGames += rec.GamesSampleSize
		tiers[rec.ConfidenceTier()]++

		if rec.GamesSampleSize == 0 {
			continue
		}
		if reported == 0 || rec.PFRunsTeamAdj < pfMin {
			pfMin = rec.PFRunsTeamAdj
		}
		if reported == 0 || rec.PFRunsTeamAdj > pfMax {
			pfMax = rec.PFRunsTeamAdj
		}
		pfSum += rec.PFRunsTeamAdj
		reported++
	}

	fmt.Fprintf(&b, "# Park Factors Report - %s\n\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "## Summary\n")
	fmt.Fprintf(&b, "- Total parks: %d\n", len(records))
	fmt.Fprintf(&b, "- Total games analyzed: %d\n", totalGames)
	if reported > 0 {
		fmt.Fprintf(&b, "- Average park factor: %.3f\n", pfSum/float64(reported))
		fmt.Fprintf(&b, "- Park factor range: %.3f - %.3f\n", pfMin, pfMax)
	}
	fmt.Fprintf(&b, "\n### Confidence tiers\n")
	fmt.Fprintf(&b, "- High (50+ games): %d parks\n", tiers["high"])
	fmt.Fprintf(&b, "- Medium (20-49 games): %d parks\n", tiers["medium"])
	fmt.Fprintf(&b, "- Low (<20 games): %d parks\n", tiers["low"])

	ranked := make([]models.ParkFactorRecord, 0, len(records))
	for _, rec := range records {
		if rec.GamesSampleSize >= models.PreferredSampleSize {
			ranked = append(ranked, rec)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].PFRunsTeamAdj > ranked[j].PFRunsTeamAdj
	})

	parkName := func(id string) string {
		if name, ok := parkNames[id]; ok && name != "" {
			return name
		}
		return id
	}

	writeTable := func(title string, rows []models.ParkFactorRecord) {
		fmt.Fprintf(&b, "\n## %s (%d+ games)\n", title, models.PreferredSampleSize)
		fmt.Fprintf(&b, "| Rank | Park | Team-Adj PF | Confidence | Games |\n")
		fmt.Fprintf(&b, "|------|------|-------------|------------|-------|\n")
		for i, rec := range rows {
			fmt.Fprintf(&b, "| %d | %s | %.3f | %.2f | %d |\n",
				i+1, parkName(rec.BallparkID), rec.PFRunsTeamAdj, rec.PFConfidence, rec.GamesSampleSize)
		}
	}

	top := ranked
	if len(top) > reportRankLimit {
		top = top[:reportRankLimit]
	}
	writeTable("Most hitter-friendly parks", top)

	bottom := make([]models.ParkFactorRecord, 0, reportRankLimit)
	for i := len(ranked) - 1; i >= 0 && len(bottom) < reportRankLimit; i-- {
		bottom = append(bottom, ranked[i])
	}
	writeTable("Most pitcher-friendly parks", bottom)

	fmt.Fprintf(&b, "\n## Notes\n")
	fmt.Fprintf(&b, "- Factors use the team-adjusted method with park-exclusion baselines\n")
	fmt.Fprintf(&b, "- Small samples are regressed toward 1.0\n")
	fmt.Fprintf(&b, "- Consumers should require pf_confidence >= %.1f\n", models.MinTrustedConfidence)

	return b.String()
}

// WriteReport renders the report and writes it to path.
func WriteReport(path string, records []models.ParkFactorRecord, parkNames map[string]string, now time.Time) error {
	report := BuildReport(records, parkNames, now)
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
