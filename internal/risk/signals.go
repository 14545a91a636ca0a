// Package risk derives scoring signals from registry metadata and turns them
// into a 0-100 abandonment risk score with a verdict tier.
package risk

import (
	"time"

	"github.com/depfence/depfence/internal/core"
)

// StalenessSentinelDays is assigned when the latest release time is unknown.
// It sits far above every staleness band so missing data scores worst-case.
const StalenessSentinelDays = 9999

// Extract converts metadata into scoring signals. Any non-OK outcome degrades
// every signal to its riskiest value; absent data never silently becomes a
// healthy-looking zero.
func Extract(md core.Metadata, now time.Time) core.Signals {
	if md.Outcome != core.OutcomeOK {
		return core.Signals{
			StalenessDays: StalenessSentinelDays,
			ReleaseCount:  0,
			BusFactor:     0,
		}
	}

	staleness := StalenessSentinelDays
	if !md.LatestReleaseAt.IsZero() {
		days := int(now.Sub(md.LatestReleaseAt).Hours() / 24)
		if days < 0 {
			days = 0
		}
		staleness = days
	}

	return core.Signals{
		StalenessDays: staleness,
		ReleaseCount:  md.ReleaseCount,
		BusFactor:     len(md.Maintainers),
	}
}
