// Package issue defines the normalized finding record that every analyzer
// driver maps its native output into.
package issue

import "fmt"

// Severity is the closed four-level severity scale every driver maps onto.
type Severity string

// Severity levels, most to least severe.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Valid reports whether s is one of the closed severity levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

// Category is the closed three-way classification every rule maps onto.
type Category string

// Categories.
const (
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
	CategoryQuality     Category = "quality"
)

// Valid reports whether c is one of the closed categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySecurity, CategoryPerformance, CategoryQuality:
		return true
	default:
		return false
	}
}

// Categories returns the full closed set, in a stable order, for input
// validation and iteration.
func Categories() []Category {
	return []Category{CategorySecurity, CategoryPerformance, CategoryQuality}
}

// Issue is a single normalized finding. Produced by a driver, appended by
// the executor, never mutated after append.
type Issue struct {
	// ID is unique within the owning job, assigned by the executor at
	// aggregation time in the order issues are produced.
	ID string

	// File is the project-relative path the finding applies to.
	File string

	// Line is 1-based.
	Line int

	// Column is 1-based; 0 is permitted when the analyzer gives none.
	Column int

	Severity Severity
	Category Category

	// Rule is the analyzer-native rule identifier.
	Rule string

	Message string

	// Snippet is an optional short code excerpt: the offending line or a
	// few lines of context.
	Snippet string

	// Analyzer is the name of the driver that produced this issue.
	Analyzer string
}

// Validate checks the closed-enum fields and the minimal structural
// invariants (non-empty file/analyzer, 1-based line). It does not check ID
// uniqueness, which is a job-wide invariant the executor enforces.
func (i Issue) Validate() error {
	if i.File == "" {
		return fmt.Errorf("issue: empty file path")
	}

	if i.Line < 1 {
		return fmt.Errorf("issue: line must be 1-based, got %d", i.Line)
	}

	if i.Column < 0 {
		return fmt.Errorf("issue: column must be >= 0, got %d", i.Column)
	}

	if !i.Severity.Valid() {
		return fmt.Errorf("issue: invalid severity %q", i.Severity)
	}

	if !i.Category.Valid() {
		return fmt.Errorf("issue: invalid category %q", i.Category)
	}

	if i.Analyzer == "" {
		return fmt.Errorf("issue: empty analyzer name")
	}

	return nil
}

// Tally is the live count of issues by severity plus total, folded
// incrementally as issues are produced.
type Tally struct {
	Critical int
	High     int
	Medium   int
	Low      int
	Total    int
}

// Add folds one issue's severity into the tally.
func (t *Tally) Add(sev Severity) {
	switch sev {
	case SeverityCritical:
		t.Critical++
	case SeverityHigh:
		t.High++
	case SeverityMedium:
		t.Medium++
	case SeverityLow:
		t.Low++
	}

	t.Total++
}

// CategoryCounts tallies issues by category, for the final-result summary.
type CategoryCounts map[Category]int

// Summary aggregates a terminal job's issues for the final-result shape.
type Summary struct {
	Tally         Tally
	ByCategory    CategoryCounts
	AffectedFiles int
}

// Summarize computes a Summary over a terminal job's full issue list.
func Summarize(issues []Issue) Summary {
	s := Summary{ByCategory: make(CategoryCounts, len(Categories()))}

	files := make(map[string]struct{})

	for _, iss := range issues {
		s.Tally.Add(iss.Severity)
		s.ByCategory[iss.Category]++
		files[iss.File] = struct{}{}
	}

	s.AffectedFiles = len(files)

	return s
}
