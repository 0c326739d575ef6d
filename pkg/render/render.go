// Package render formats job status and results for terminal display: an
// issue table, severity coloring, and human-readable durations.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/reviewforge/reviewforge/internal/issue"
	"github.com/reviewforge/reviewforge/internal/job"
)

// severityColor returns the color attribute set used to render one severity
// level, most to least alarming.
func severityColor(s issue.Severity) *color.Color {
	switch s {
	case issue.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case issue.SeverityHigh:
		return color.New(color.FgRed)
	case issue.SeverityMedium:
		return color.New(color.FgYellow)
	case issue.SeverityLow:
		return color.New(color.FgCyan)
	default:
		return color.New()
	}
}

// IssueTable writes issues as a table: file, line, severity, category,
// rule, message. Severity is colored by level.
func IssueTable(w io.Writer, issues []issue.Issue) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	tbl.AppendHeader(table.Row{"FILE", "LINE", "SEVERITY", "CATEGORY", "RULE", "MESSAGE"})

	for _, iss := range issues {
		sev := severityColor(iss.Severity).Sprint(iss.Severity)
		tbl.AppendRow(table.Row{iss.File, iss.Line, sev, iss.Category, iss.Rule, iss.Message})
	}

	tbl.AppendFooter(table.Row{"", "", "", "", "TOTAL", len(issues)})
	tbl.Render()
}

// Status writes a one-job status summary line, with elapsed/ETA formatted
// as human-readable durations.
func Status(w io.Writer, snap job.Snapshot) {
	fmt.Fprintf(w, "job %s: %s\n", snap.ID, snap.State)
	fmt.Fprintf(w, "  progress: %d/%d units", snap.Progress.CompletedUnits, snap.Progress.TotalUnits)

	if snap.Progress.EstimatedRemainingKnown {
		eta := time.Duration(snap.Progress.EstimatedRemainingSeconds * float64(time.Second))
		fmt.Fprintf(w, " (eta %s)", humanize.RelTime(time.Now(), time.Now().Add(eta), "", ""))
	}

	fmt.Fprintln(w)

	if snap.Error != "" {
		color.New(color.FgRed).Fprintf(w, "  error: %s\n", snap.Error)
	}
}

// Result writes a terminal job's summary: tally by severity, category
// breakdown, affected file count, and elapsed wall time.
func Result(w io.Writer, res job.Result) {
	fmt.Fprintf(w, "job %s finished as %s in %s\n", res.JobID, res.State, humanizeDuration(res.ElapsedSeconds))
	fmt.Fprintf(w, "  %d issues across %d files\n", res.Summary.Tally.Total, res.Summary.AffectedFiles)
	fmt.Fprintf(w, "  critical=%d high=%d medium=%d low=%d\n",
		res.Summary.Tally.Critical, res.Summary.Tally.High, res.Summary.Tally.Medium, res.Summary.Tally.Low)

	for _, c := range issue.Categories() {
		fmt.Fprintf(w, "  %s: %d\n", c, res.Summary.ByCategory[c])
	}
}

func humanizeDuration(seconds float64) string {
	return humanize.RelTime(time.Now().Add(-time.Duration(seconds*float64(time.Second))), time.Now(), "", "")
}
