// Package report serializes scan reports for human and machine consumers.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/depfence/depfence/internal/core"
)

// FreeLimit is the maximum number of entries rendered on the free tier.
const FreeLimit = 20

const ansiReset = "\033[0m"

var verdictColors = map[core.Verdict]string{
	core.VerdictLow:      "\033[32m",
	core.VerdictMedium:   "\033[33m",
	core.VerdictHigh:     "\033[31m",
	core.VerdictCritical: "\033[91m",
	core.VerdictUnknown:  "\033[90m",
}

// TextOptions controls the table renderer.
type TextOptions struct {
	Color bool
	// SortByRisk orders rows by descending score for display. The report
	// itself always stays in manifest order.
	SortByRisk bool
	// Limit truncates the table after this many rows; 0 means FreeLimit.
	Limit int
}

// WriteText renders the report as a risk table.
func WriteText(w io.Writer, report *core.Report, opts TextOptions) error {
	limit := opts.Limit
	if limit <= 0 {
		limit = FreeLimit
	}

	rows := make([]core.Assessment, len(report.Assessments))
	copy(rows, report.Assessments)
	if opts.SortByRisk {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Score > rows[j].Score
		})
	}

	truncated := len(rows) > limit
	if truncated {
		rows = rows[:limit]
	}

	fmt.Fprintf(w, "\n%-30s %5s %6s %5s %5s Verdict\n", "Package", "Risk", "Days", "Maint", "Rels")
	fmt.Fprintln(w, divider(70))

	highRisk := 0
	for _, row := range rows {
		c, e := "", ""
		if opts.Color {
			c = verdictColors[row.Verdict]
			e = ansiReset
		}
		days := "?"
		if row.Signals.StalenessDays < stalenessUnknownFloor {
			days = fmt.Sprintf("%d", row.Signals.StalenessDays)
		}
		fmt.Fprintf(w, "%-30s %s%5d%s %6s %5d %5d %s%s%s\n",
			row.Identifier.Name, c, row.Score, e, days,
			row.Signals.BusFactor, row.Signals.ReleaseCount, c, row.Verdict, e)

		if row.Verdict == core.VerdictHigh || row.Verdict == core.VerdictCritical {
			highRisk++
		}
	}

	if truncated {
		fmt.Fprintf(w, "\nShowing %d/%d deps - upgrade at depfence.dev/pricing\n",
			limit, len(report.Assessments))
	}
	if highRisk > 0 {
		fmt.Fprintf(w, "\n%d package(s) at HIGH+ abandonment risk!\n", highRisk)
	}
	return nil
}

// stalenessUnknownFloor separates real staleness figures from the sentinel.
const stalenessUnknownFloor = 9999

func divider(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = '─'
	}
	return string(b)
}
