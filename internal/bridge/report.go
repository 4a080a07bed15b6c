package bridge

import (
	"fmt"
	"strings"
)

// CoverageReport summarizes canonical sector coverage for one build.
// Gaps are observable, not fatal: the build still emits its best-effort
// table and the driver surfaces this report alongside it.
type CoverageReport struct {
	Expected int
	Covered  int

	// FallbackSectors lists canonical codes recovered from the regional
	// table after matching nothing in the national table.
	FallbackSectors []string

	// MissingSectors lists canonical codes with no wage data from either
	// source. They produce no weighted rows and downstream consumers
	// must treat them as gaps.
	MissingSectors []string
}

// Missing returns the number of uncovered canonical sectors.
func (r CoverageReport) Missing() int { return len(r.MissingSectors) }

// FormatCoverage generates a human-readable coverage summary.
func FormatCoverage(r CoverageReport) string {
	var b strings.Builder

	b.WriteString("# Crosswalk Coverage\n")
	fmt.Fprintf(&b, "- Expected sectors: %d\n", r.Expected)
	fmt.Fprintf(&b, "- Covered: %d\n", r.Covered)
	fmt.Fprintf(&b, "- Recovered via fallback: %d\n", len(r.FallbackSectors))
	fmt.Fprintf(&b, "- Missing: %d\n", len(r.MissingSectors))

	if len(r.FallbackSectors) > 0 {
		b.WriteString("\n## Fallback Sectors\n")
		for _, code := range r.FallbackSectors {
			fmt.Fprintf(&b, "- %s\n", code)
		}
	}

	if len(r.MissingSectors) > 0 {
		b.WriteString("\n## Missing Sectors\n")
		for _, code := range r.MissingSectors {
			fmt.Fprintf(&b, "- %s\n", code)
		}
	}

	return b.String()
}
