// Package analyzer defines the driver contract every third-party static
// analyzer is wrapped behind, plus the static descriptor metadata the
// classifier and executor use to plan and dispatch work.
package analyzer

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/reviewforge/reviewforge/internal/issue"
)

// Warning is a non-fatal driver-level fault recorded on the job's warnings
// ledger: missing binary, timeout, parse failure, unreadable file. It never
// changes job state on its own.
type Warning struct {
	Analyzer string
	File     string // empty when the warning applies to a whole batch
	Message  string
}

// Driver wraps one external analyzer. Analyze receives a batch of
// project-relative file paths already filtered by the classifier to those
// this driver accepts, plus the project root to resolve them against and
// to use as the subprocess working directory. It returns the issues found
// and any non-fatal warnings; it never returns an error for ordinary driver
// failures — those become Warning entries instead.
type Driver interface {
	Analyze(ctx context.Context, batch []string, projectRoot string) ([]issue.Issue, []Warning)
}

// SeverityMapper maps an analyzer-native severity token to the normalized
// four-level scale.
type SeverityMapper func(native string) issue.Severity

// CategoryMapper maps an analyzer-native rule id to the normalized
// three-way category.
type CategoryMapper func(ruleID string) issue.Category

// AcceptFunc reports whether a driver accepts the given project-relative
// file path.
type AcceptFunc func(path string) bool

// ExtensionAccept returns an AcceptFunc matching any of the given lowercase
// extensions (each including its leading dot, e.g. ".js").
func ExtensionAccept(extensions ...string) AcceptFunc {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}

	return func(path string) bool {
		_, ok := set[strings.ToLower(filepath.Ext(path))]
		return ok
	}
}

// AcceptAllText returns an AcceptFunc that accepts every path; callers
// combine it with a binary-content sniff at analyze time, since the
// classifier itself never opens files.
func AcceptAllText() AcceptFunc {
	return func(string) bool { return true }
}

// Descriptor is the static metadata the classifier and executor need to
// plan a run, without running anything. Name and Accept are required;
// Driver is resolved separately by the executor's driver set.
type Descriptor struct {
	// Name identifies the analyzer in selections, issues, and warnings.
	Name string

	// Accept decides, from the path alone, whether this analyzer is
	// eligible for a file. Never opens the file.
	Accept AcceptFunc

	// Categories are the categories this analyzer can ever produce,
	// independent of any single run's category selection.
	Categories []issue.Category

	// MapSeverity converts a native severity token.
	MapSeverity SeverityMapper

	// MapCategory converts a native rule id to a category.
	MapCategory CategoryMapper

	// NonZeroExitOK is true when a non-zero subprocess exit is the tool's
	// normal way of reporting "issues found", not a driver failure.
	NonZeroExitOK bool

	// ExitCodeTolerable, when set, overrides NonZeroExitOK with a
	// predicate over the exact exit code, for tools whose failure exit
	// codes overlap with non-issue-free-but-successful runs.
	ExitCodeTolerable func(code int) bool
}

// Accepts reports whether this descriptor's driver should run on path.
func (d Descriptor) Accepts(path string) bool {
	if d.Accept == nil {
		return false
	}

	return d.Accept(path)
}

// TolerateExit reports whether the given subprocess exit code should be
// treated as a successful run rather than a driver failure.
func (d Descriptor) TolerateExit(code int) bool {
	if code == 0 {
		return true
	}

	if d.ExitCodeTolerable != nil {
		return d.ExitCodeTolerable(code)
	}

	return d.NonZeroExitOK
}

// HasCategory reports whether this descriptor can ever produce findings in
// the given category.
func (d Descriptor) HasCategory(c issue.Category) bool {
	for _, have := range d.Categories {
		if have == c {
			return true
		}
	}

	return false
}

// RelativizePath converts a path an external tool reported (often absolute,
// since most linters resolve their input arguments before echoing them
// back in a report) into one relative to root, matching the project-
// relative contract every Issue.File must satisfy. Paths already relative,
// or that fall outside root, are returned unchanged.
func RelativizePath(root, path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return path
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}

	return rel
}
