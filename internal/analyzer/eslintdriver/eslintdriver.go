// Package eslintdriver wraps the JS/TS linter: invokes it over a batch with
// a JSON report format and maps its findings to normalized issues.
package eslintdriver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reviewforge/reviewforge/internal/analyzer"
	"github.com/reviewforge/reviewforge/internal/issue"
)

// Name is the analyzer name used in job selection, issues, and warnings.
const Name = "eslint"

// performanceRules are the rule ids mapped to the performance category; any
// rule id prefixed with securityRulePrefix maps to security; everything
// else defaults to quality.
var performanceRules = map[string]bool{
	"no-await-in-loop":          true,
	"react-hooks/exhaustive-deps": true,
	"no-loop-func":               true,
}

const securityRulePrefix = "security/"

// message mirrors one entry of eslint's --format json per-file "messages"
// array.
type message struct {
	RuleID   string `json:"ruleId"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// fileResult mirrors one entry of eslint's --format json top-level array.
type fileResult struct {
	FilePath string    `json:"filePath"`
	Messages []message `json:"messages"`
}

// Driver invokes the configured eslint binary over a batch of files.
type Driver struct {
	// BinaryPath defaults to "eslint" (resolved via PATH) when empty.
	BinaryPath string

	// Timeout is the per-batch subprocess deadline; zero uses
	// analyzer.DefaultBatchTimeout.
	Timeout time.Duration

	// Grace is the SIGTERM-to-SIGKILL escalation window; zero uses
	// analyzer.DefaultCancelGrace.
	Grace time.Duration
}

// New constructs a Driver using the eslint binary found on PATH.
func New() *Driver {
	return &Driver{BinaryPath: "eslint"}
}

// Descriptor returns the static metadata for this driver.
func Descriptor() analyzer.Descriptor {
	return analyzer.Descriptor{
		Name:          Name,
		Accept:        analyzer.ExtensionAccept(".js", ".jsx", ".ts", ".tsx"),
		Categories:    []issue.Category{issue.CategorySecurity, issue.CategoryPerformance, issue.CategoryQuality},
		MapSeverity:   MapSeverity,
		MapCategory:   MapCategory,
		NonZeroExitOK: true, // eslint exits 1 when it finds lint violations
	}
}

// MapSeverity converts eslint's 1/2 severity scale: 2 is high, 1 is medium.
// Anything else (eslint never emits 0 in a message) falls back to medium.
func MapSeverity(native string) issue.Severity {
	switch native {
	case "2":
		return issue.SeverityHigh
	case "1":
		return issue.SeverityMedium
	default:
		return issue.SeverityMedium
	}
}

// MapCategory buckets an eslint rule id: a security/ prefix is security, a
// fixed performance rule list is performance, everything else is quality.
func MapCategory(ruleID string) issue.Category {
	if strings.HasPrefix(ruleID, securityRulePrefix) {
		return issue.CategorySecurity
	}

	if performanceRules[ruleID] {
		return issue.CategoryPerformance
	}

	return issue.CategoryQuality
}

// Analyze runs eslint --format json over batch.
func (d *Driver) Analyze(ctx context.Context, batch []string, projectRoot string) ([]issue.Issue, []analyzer.Warning) {
	bin := d.BinaryPath
	if bin == "" {
		bin = "eslint"
	}

	args := append([]string{"--format", "json"}, batch...)

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
	var results []fileResult

	if err := json.Unmarshal(stdout, &results); err != nil {
		return nil, []analyzer.Warning{{Analyzer: Name, Message: fmt.Sprintf("unparseable eslint output: %v", err)}}
	}

	var issues []issue.Issue

	for _, fr := range results {
		for _, m := range fr.Messages {
			issues = append(issues, issue.Issue{
				File:     analyzer.RelativizePath(projectRoot, fr.FilePath),
				Line:     maxInt(m.Line, 1),
				Column:   m.Column,
				Severity: MapSeverity(fmt.Sprintf("%d", m.Severity)),
				Category: MapCategory(m.RuleID),
				Rule:     m.RuleID,
				Message:  m.Message,
				Analyzer: Name,
			})
		}
	}

	return issues, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}
