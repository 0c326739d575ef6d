// Package classify implements the pure file-to-analyzer routing function
// used both at plan time (to size the work) and at dispatch time (to route
// files to drivers).
package classify

import "github.com/reviewforge/reviewforge/internal/analyzer"

// Classify returns the subset of enabled that accepts path, preserving the
// order of enabled. It uses only path's extension (via each descriptor's
// Accept predicate) and never opens the file.
func Classify(path string, enabled []analyzer.Descriptor) []analyzer.Descriptor {
	out := make([]analyzer.Descriptor, 0, len(enabled))

	for _, d := range enabled {
		if d.Accepts(path) {
			out = append(out, d)
		}
	}

	return out
}

// CountUnits returns the total (file, analyzer) work-unit count for files
// against enabled, i.e. Σ over files of |eligible_analyzers(file)|.
func CountUnits(files []string, enabled []analyzer.Descriptor) int {
	total := 0

	for _, f := range files {
		total += len(Classify(f, enabled))
	}

	return total
}
