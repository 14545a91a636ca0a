package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/depfence/depfence/internal/core"
)

// SARIF 2.1.0 document, reduced to the subset CI annotators consume.
type sarifDocument struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string `json:"name"`
	InformationURI string `json:"informationUri"`
	Version        string `json:"version"`
}

type sarifResult struct {
	RuleID  string       `json:"ruleId"`
	Level   string       `json:"level"`
	Message sarifMessage `json:"message"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

// WriteSARIF renders HIGH, CRITICAL, and UNKNOWN assessments as SARIF results.
func WriteSARIF(w io.Writer, report *core.Report) error {
	results := make([]sarifResult, 0, len(report.Assessments))
	for _, a := range report.Assessments {
		level := sarifLevel(a.Verdict)
		if level == "" {
			continue
		}
		results = append(results, sarifResult{
			RuleID: "maintainer-abandonment-risk",
			Level:  level,
			Message: sarifMessage{
				Text: fmt.Sprintf("%s scored %d/100 (%s): %d days since last release, %d maintainer(s), %d release(s)",
					a.Identifier.PURL(), a.Score, a.Verdict,
					a.Signals.StalenessDays, a.Signals.BusFactor, a.Signals.ReleaseCount),
			},
		})
	}

	doc := sarifDocument{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           "depfence",
				InformationURI: "https://depfence.dev",
				Version:        "1.0.0",
			}},
			Results: results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func sarifLevel(v core.Verdict) string {
	switch v {
	case core.VerdictCritical:
		return "error"
	case core.VerdictHigh:
		return "warning"
	case core.VerdictUnknown:
		return "note"
	default:
		return ""
	}
}
