package risk

import (
	"time"

	"github.com/depfence/depfence/internal/core"
)

// Bands holds the tunable scoring constants. The zero value is not usable;
// start from DefaultBands.
type Bands struct {
	// StalenessGraceDays is the release age below which staleness scores 0.
	StalenessGraceDays int
	// StalenessRampDays is the span over which staleness climbs linearly
	// from 0 to StalenessMax after the grace period.
	StalenessRampDays int
	// StalenessMax caps the staleness component.
	StalenessMax int

	// SparsityMax is the score for a package with zero releases; each
	// release subtracts SparsityPerRelease down to a floor of 0.
	SparsityMax        int
	SparsityPerRelease int

	// BusFactorMax is the score for 0 or 1 maintainers; each additional
	// maintainer subtracts BusFactorPerMaintainer down to a floor of 0.
	BusFactorMax           int
	BusFactorPerMaintainer int
}

// DefaultBands are the documented defaults: staleness free for 60 days then
// linear over 700 days to 40; sparsity 30-2*releases; bus factor 30 for a
// single maintainer, zero from three distinct maintainers.
var DefaultBands = Bands{
	StalenessGraceDays:     60,
	StalenessRampDays:      700,
	StalenessMax:           40,
	SparsityMax:            30,
	SparsityPerRelease:     2,
	BusFactorMax:           30,
	BusFactorPerMaintainer: 15,
}

// Score combines the three signals into a clamped 0-100 score and its
// verdict tier. It is pure: no I/O, no clock reads.
func Score(sig core.Signals, bands Bands) (int, core.Verdict) {
	total := bands.staleness(sig.StalenessDays) +
		bands.sparsity(sig.ReleaseCount) +
		bands.busFactor(sig.BusFactor)

	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total, verdictFor(total)
}

func (b Bands) staleness(days int) int {
	component := (days - b.StalenessGraceDays) * b.StalenessMax / b.StalenessRampDays
	if component < 0 {
		return 0
	}
	if component > b.StalenessMax {
		return b.StalenessMax
	}
	return component
}

func (b Bands) sparsity(releases int) int {
	component := b.SparsityMax - releases*b.SparsityPerRelease
	if component < 0 {
		return 0
	}
	return component
}

func (b Bands) busFactor(maintainers int) int {
	if maintainers <= 1 {
		return b.BusFactorMax
	}
	component := b.BusFactorMax - (maintainers-1)*b.BusFactorPerMaintainer
	if component < 0 {
		return 0
	}
	return component
}

// verdictFor maps a score to its tier. Bands are half-open except the top,
// which closes at 100.
func verdictFor(score int) core.Verdict {
	switch {
	case score < 25:
		return core.VerdictLow
	case score < 50:
		return core.VerdictMedium
	case score < 75:
		return core.VerdictHigh
	default:
		return core.VerdictCritical
	}
}

// Assess produces the immutable assessment for one identifier. The UNKNOWN
// override for non-OK outcomes is applied as an explicit final step after
// scoring, not implicitly via degraded signals, so the fail-safe guarantee
// stays auditable on its own.
func Assess(id core.Identifier, md core.Metadata, now time.Time, bands Bands) core.Assessment {
	signals := Extract(md, now)
	score, verdict := Score(signals, bands)

	if md.Outcome != core.OutcomeOK {
		score = 100
		verdict = core.VerdictUnknown
	}

	return core.Assessment{
		Identifier: id,
		Signals:    signals,
		Score:      score,
		Verdict:    verdict,
		Outcome:    md.Outcome,
	}
}
