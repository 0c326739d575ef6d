// Package banditdriver wraps the Python security scanner: invokes it over
// a batch with a JSON report format and maps its findings to normalized
// issues.
package banditdriver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/reviewforge/reviewforge/internal/analyzer"
	"github.com/reviewforge/reviewforge/internal/issue"
)

// Name is the analyzer name used in job selection, issues, and warnings.
const Name = "bandit"

// result mirrors one entry of bandit -f json's top-level "results" array.
type result struct {
	Filename       string `json:"filename"`
	LineNumber     int    `json:"line_number"`
	ColOffset      int    `json:"col_offset"`
	IssueSeverity  string `json:"issue_severity"`
	IssueText      string `json:"issue_text"`
	TestID         string `json:"test_id"`
}

// report mirrors bandit -f json's top-level document.
type report struct {
	Results []result `json:"results"`
}

// Driver invokes the configured bandit binary over a batch of files.
type Driver struct {
	// BinaryPath defaults to "bandit" (resolved via PATH) when empty.
	BinaryPath string

	Timeout time.Duration
	Grace   time.Duration
}

// New constructs a Driver using the bandit binary found on PATH.
func New() *Driver {
	return &Driver{BinaryPath: "bandit"}
}

// Descriptor returns the static metadata for this driver. All findings map
// to security.
func Descriptor() analyzer.Descriptor {
	return analyzer.Descriptor{
		Name:          Name,
		Accept:        analyzer.ExtensionAccept(".py"),
		Categories:    []issue.Category{issue.CategorySecurity},
		MapSeverity:   MapSeverity,
		MapCategory:   MapCategory,
		NonZeroExitOK: true, // bandit exits 1 when it finds issues
	}
}

// MapSeverity converts bandit's HIGH/MEDIUM/LOW scale to critical/high/medium.
func MapSeverity(native string) issue.Severity {
	switch native {
	case "HIGH":
		return issue.SeverityCritical
	case "MEDIUM":
		return issue.SeverityHigh
	case "LOW":
		return issue.SeverityMedium
	default:
		return issue.SeverityMedium
	}
}

// MapCategory always returns security: every bandit finding is a security
// finding by construction.
func MapCategory(string) issue.Category {
	return issue.CategorySecurity
}

// Analyze runs bandit -f json over batch.
func (d *Driver) Analyze(ctx context.Context, batch []string, projectRoot string) ([]issue.Issue, []analyzer.Warning) {
	bin := d.BinaryPath
	if bin == "" {
		bin = "bandit"
	}

	args := append([]string{"-f", "json"}, batch...)

	stdout, code, err := analyzer.RunSubprocess(ctx, projectRoot, bin, args, d.Timeout, d.Grace)
	if err != nil {
		return nil, []analyzer.Warning{{Analyzer: Name, Message: warningMessage(bin, err)}}
	}

	desc := Descriptor()
	if !desc.TolerateExit(code) {
		return nil, []analyzer.Warning{{Analyzer: Name, Message: fmt.Sprintf("exited %d", code)}}
	}

	return parseReport(stdout, projectRoot)
}

func warningMessage(bin string, err error) string {
	switch {
	case errors.Is(err, analyzer.ErrSubprocessTimeout):
		return fmt.Sprintf("%s timed out", bin)
	case errors.Is(err, analyzer.ErrSubprocessCancelled):
		return fmt.Sprintf("%s cancelled", bin)
	default:
		return fmt.Sprintf("%s binary not found: %v", bin, err)
	}
}

func parseReport(stdout []byte, projectRoot string) ([]issue.Issue, []analyzer.Warning) {
	var rep report

	if err := json.Unmarshal(stdout, &rep); err != nil {
		return nil, []analyzer.Warning{{Analyzer: Name, Message: fmt.Sprintf("unparseable bandit output: %v", err)}}
	}

	var issues []issue.Issue

	for _, r := range rep.Results {
		line := r.LineNumber
		if line < 1 {
			line = 1
		}

		issues = append(issues, issue.Issue{
			File:     analyzer.RelativizePath(projectRoot, r.Filename),
			Line:     line,
			Column:   r.ColOffset,
			Severity: MapSeverity(r.IssueSeverity),
			Category: issue.CategorySecurity,
			Rule:     r.TestID,
			Message:  r.IssueText,
			Analyzer: Name,
		})
	}

	return issues, nil
}
