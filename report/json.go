package report

import (
	"encoding/json"
	"io"

	"github.com/depfence/depfence/internal/core"
)

// jsonDocument mirrors the CLI's historical JSON output shape.
type jsonDocument struct {
	Results       []jsonResult `json:"results"`
	HighestScore  int          `json:"highest_score"`
	GateTriggered bool         `json:"gate_triggered"`
	Truncated     bool         `json:"truncated"`
}

type jsonResult struct {
	Ecosystem       core.Ecosystem `json:"ecosystem"`
	Name            string         `json:"name"`
	PURL            string         `json:"purl"`
	Score           int            `json:"score"`
	Verdict         core.Verdict   `json:"verdict"`
	Outcome         core.Outcome   `json:"outcome"`
	LastReleaseDays int            `json:"last_release_days"` // -1 when unknown
	MaintainerCount int            `json:"maintainer_count"`
	ReleaseCount    int            `json:"release_count"`
}

// WriteJSON renders the report as indented JSON, truncating at limit entries
// (0 means FreeLimit).
func WriteJSON(w io.Writer, report *core.Report, limit int) error {
	if limit <= 0 {
		limit = FreeLimit
	}

	doc := jsonDocument{
		Results:       make([]jsonResult, 0, len(report.Assessments)),
		HighestScore:  report.HighestScore,
		GateTriggered: report.GateTriggered,
		Truncated:     len(report.Assessments) > limit,
	}

	for i, a := range report.Assessments {
		if i == limit {
			break
		}
		days := a.Signals.StalenessDays
		if days >= stalenessUnknownFloor {
			days = -1
		}
		doc.Results = append(doc.Results, jsonResult{
			Ecosystem:       a.Identifier.Ecosystem,
			Name:            a.Identifier.Name,
			PURL:            a.Identifier.PURL(),
			Score:           a.Score,
			Verdict:         a.Verdict,
			Outcome:         a.Outcome,
			LastReleaseDays: days,
			MaintainerCount: a.Signals.BusFactor,
			ReleaseCount:    a.Signals.ReleaseCount,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
