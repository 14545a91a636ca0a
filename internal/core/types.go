// Package core provides shared types and the ecosystem registry system.
package core

import "time"

// Ecosystem identifies a package ecosystem. Values follow PURL type spellings.
type Ecosystem string

const (
	EcosystemPyPI   Ecosystem = "pypi"
	EcosystemNPM    Ecosystem = "npm"
	EcosystemCargo  Ecosystem = "cargo"
	EcosystemGo     Ecosystem = "golang"
	EcosystemGitHub Ecosystem = "github"
)

// Identifier names one package to be assessed.
// Name must pass Validate before the identifier is handed to a registry.
type Identifier struct {
	Ecosystem  Ecosystem `json:"ecosystem"`
	Name       string    `json:"name"`
	Constraint string    `json:"constraint,omitempty"` // declared version constraint, informational
}

// Key returns a stable cache key for the identifier.
func (id Identifier) Key() string {
	return string(id.Ecosystem) + "\x00" + id.Name + "\x00" + id.Constraint
}

// Outcome classifies the result of a metadata fetch.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeRateLimited    Outcome = "rate_limited"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeUnsupported    Outcome = "unsupported"

	// OutcomeInvalid marks an identifier rejected by validation. It only
	// appears on assessments; no fetch is attempted for such identifiers.
	OutcomeInvalid Outcome = "invalid"
)

// Metadata is the normalized registry view of one package.
// On any non-OK outcome every other field is zero; adapters never return
// partially populated data alongside a failure.
type Metadata struct {
	LatestReleaseAt time.Time `json:"latest_release_at,omitzero"` // zero when unknown
	ReleaseCount    int       `json:"release_count"`
	Maintainers     []string  `json:"maintainers,omitempty"` // distinct handles
	Outcome         Outcome   `json:"outcome"`
}

// Signals are the three scoring inputs derived from Metadata.
type Signals struct {
	StalenessDays int `json:"staleness_days"`
	ReleaseCount  int `json:"release_count"`
	BusFactor     int `json:"bus_factor"`
}

// Verdict is the qualitative risk tier for a score.
type Verdict string

const (
	VerdictLow      Verdict = "LOW"
	VerdictMedium   Verdict = "MEDIUM"
	VerdictHigh     Verdict = "HIGH"
	VerdictCritical Verdict = "CRITICAL"
	VerdictUnknown  Verdict = "UNKNOWN"
)

// Assessment is the scored result for one identifier. It is immutable once
// produced; a re-scan yields a new Assessment.
type Assessment struct {
	Identifier Identifier `json:"identifier"`
	Signals    Signals    `json:"signals"`
	Score      int        `json:"score"` // 0..100
	Verdict    Verdict    `json:"verdict"`
	Outcome    Outcome    `json:"outcome"`
}

// Report is the result of one scan run. Assessments preserve manifest order.
type Report struct {
	Assessments   []Assessment `json:"assessments"`
	HighestScore  int          `json:"highest_score"`
	GateTriggered bool         `json:"gate_triggered"`
	GeneratedAt   time.Time    `json:"generated_at"`
}
