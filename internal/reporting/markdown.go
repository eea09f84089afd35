package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Period Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Range: %s .. %s\n\n", r.StartDate, r.EndDate))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Collection | Records |\n")
	sb.WriteString("|------------|--------|\n")
	for _, c := range r.DataSummary.Collections {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", c.Name, c.Count))
	}
	sb.WriteString(fmt.Sprintf("| total | %d |\n\n", r.DataSummary.TotalRecords))

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.Checks) > 0 {
		sb.WriteString("| Check | Detail | Status |\n")
		sb.WriteString("|-------|--------|--------|\n")
		for _, check := range r.DataQuality.Checks {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", check.Name, check.Detail, status))
		}
		sb.WriteString("\n")
		if r.DataQuality.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.**\n\n")
		}
	} else {
		sb.WriteString("No data quality checks performed.\n\n")
	}

	// Per-domain sections
	for _, section := range r.Domains {
		sb.WriteString(fmt.Sprintf("## %s\n\n", strings.ToUpper(string(section.Name))))

		if section.Status != "ready" {
			sb.WriteString(fmt.Sprintf("Status: %s", section.Status))
			if section.Error != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", section.Error))
			}
			sb.WriteString("\n\n")
			continue
		}

		if len(section.Metrics) > 0 {
			sb.WriteString("| Metric | Current | Previous | Delta% |\n")
			sb.WriteString("|--------|---------|----------|--------|\n")
			for _, m := range section.Metrics {
				sb.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %.2f |\n",
					m.Name, m.Current, m.Previous, m.DeltaPct))
			}
			sb.WriteString("\n")
		} else {
			sb.WriteString("No metrics available.\n\n")
		}

		if len(section.Top) > 0 {
			sb.WriteString("### Top Addresses\n\n")
			sb.WriteString("| Rank | Address | Primary | Secondary |\n")
			sb.WriteString("|------|---------|---------|----------|\n")
			for _, t := range section.Top {
				sb.WriteString(fmt.Sprintf("| %d | %s | %.4f | %.4f |\n",
					t.Rank, t.Address, t.Primary, t.Secondary))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
