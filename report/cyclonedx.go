package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/depfence/depfence/internal/core"
)

// CycloneDX 1.5 SBOM, components only, with risk carried as properties.
type cdxDocument struct {
	BOMFormat   string         `json:"bomFormat"`
	SpecVersion string         `json:"specVersion"`
	Version     int            `json:"version"`
	Metadata    cdxMetadata    `json:"metadata"`
	Components  []cdxComponent `json:"components"`
}

type cdxMetadata struct {
	Timestamp string   `json:"timestamp"`
	Tools     []cdxRef `json:"tools"`
}

type cdxRef struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type cdxComponent struct {
	Type       string        `json:"type"`
	Name       string        `json:"name"`
	PURL       string        `json:"purl"`
	Properties []cdxProperty `json:"properties"`
}

type cdxProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// WriteCycloneDX renders the report as a CycloneDX 1.5 component list.
func WriteCycloneDX(w io.Writer, report *core.Report) error {
	components := make([]cdxComponent, 0, len(report.Assessments))
	for _, a := range report.Assessments {
		components = append(components, cdxComponent{
			Type: "library",
			Name: a.Identifier.Name,
			PURL: a.Identifier.PURL(),
			Properties: []cdxProperty{
				{Name: "depfence:risk-score", Value: fmt.Sprintf("%d", a.Score)},
				{Name: "depfence:verdict", Value: string(a.Verdict)},
				{Name: "depfence:fetch-outcome", Value: string(a.Outcome)},
			},
		})
	}

	doc := cdxDocument{
		BOMFormat:   "CycloneDX",
		SpecVersion: "1.5",
		Version:     1,
		Metadata: cdxMetadata{
			Timestamp: report.GeneratedAt.UTC().Format(time.RFC3339),
			Tools:     []cdxRef{{Name: "depfence", Version: "1.0.0"}},
		},
		Components: components,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
