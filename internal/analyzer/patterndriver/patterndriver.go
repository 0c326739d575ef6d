// Package patterndriver implements the custom-pattern driver: a pure Go,
// no-subprocess analyzer that scans every accepted text file line by line
// against a fixed table of regular expressions.
package patterndriver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/reviewforge/reviewforge/internal/analyzer"
	"github.com/reviewforge/reviewforge/internal/issue"
	"github.com/reviewforge/reviewforge/pkg/textutil"
)

// Name is the analyzer name used in job selection, issues, and warnings.
const Name = "pattern"

// Pattern is one line-level rule: Regexp identifies the finding; Severity,
// Category, and Message describe it.
type Pattern struct {
	Rule     string
	Regexp   *regexp.Regexp
	Severity issue.Severity
	Category issue.Category
	Message  string
}

// DefaultPatterns is the minimum table required by the spec: a debug-print
// pattern, an inline-TODO pattern, and a hardcoded-secret pattern.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Rule:     "debug-print",
			Regexp:   regexp.MustCompile(`\b(console\.log|print\s*\(|fmt\.Println|debugger)\b`),
			Severity: issue.SeverityLow,
			Category: issue.CategoryQuality,
			Message:  "debug print statement left in code",
		},
		{
			Rule:     "inline-todo",
			Regexp:   regexp.MustCompile(`(?i)\b(TODO|FIXME|XXX)\b`),
			Severity: issue.SeverityLow,
			Category: issue.CategoryQuality,
			Message:  "unresolved TODO marker",
		},
		{
			Rule:     "hardcoded-secret",
			Regexp:   regexp.MustCompile(`(?i)(api[_-]?key|secret|password|token)\s*[:=]\s*["'][^"']{8,}["']`),
			Severity: issue.SeverityCritical,
			Category: issue.CategorySecurity,
			Message:  "possible hardcoded credential",
		},
	}
}

// Driver evaluates Patterns against every accepted file's lines. A nil
// Patterns field uses DefaultPatterns.
type Driver struct {
	Patterns []Pattern
}

// New constructs a Driver with the default pattern table.
func New() *Driver {
	return &Driver{Patterns: DefaultPatterns()}
}

// Descriptor returns the static metadata for this driver: accepts every
// text file (binary files are skipped at analyze time, since the
// classifier never opens files), carries all three categories, and always
// tolerates non-zero exit (it has none — it never subprocesses).
func Descriptor() analyzer.Descriptor {
	return analyzer.Descriptor{
		Name:          Name,
		Accept:        analyzer.AcceptAllText(),
		Categories:    []issue.Category{issue.CategorySecurity, issue.CategoryPerformance, issue.CategoryQuality},
		NonZeroExitOK: true,
	}
}

// Analyze evaluates every pattern against every line of every file in
// batch. Unreadable or binary files produce a warning and are skipped, not
// a driver failure.
func (d *Driver) Analyze(_ context.Context, batch []string, projectRoot string) ([]issue.Issue, []analyzer.Warning) {
	patterns := d.Patterns
	if patterns == nil {
		patterns = DefaultPatterns()
	}

	var issues []issue.Issue

	var warnings []analyzer.Warning

	for _, rel := range batch {
		fileIssues, warn := analyzeFile(projectRoot, rel, patterns)
		issues = append(issues, fileIssues...)

		if warn != nil {
			warnings = append(warnings, *warn)
		}
	}

	return issues, warnings
}

func analyzeFile(projectRoot, rel string, patterns []Pattern) ([]issue.Issue, *analyzer.Warning) {
	data, err := os.ReadFile(filepath.Join(projectRoot, rel))
	if err != nil {
		return nil, &analyzer.Warning{Analyzer: Name, File: rel, Message: fmt.Sprintf("unreadable file: %v", err)}
	}

	if textutil.IsBinary(data) {
		return nil, &analyzer.Warning{Analyzer: Name, File: rel, Message: "skipped binary file"}
	}

	var issues []issue.Issue

	scanner := bufio.NewScanner(bytes.NewReader(data))

	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		for _, p := range patterns {
			if !p.Regexp.MatchString(line) {
				continue
			}

			issues = append(issues, issue.Issue{
				File:     rel,
				Line:     lineNum,
				Column:   0,
				Severity: p.Severity,
				Category: p.Category,
				Rule:     p.Rule,
				Message:  p.Message,
				Snippet:  line,
				Analyzer: Name,
			})
		}
	}

	return issues, nil
}
