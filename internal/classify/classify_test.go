package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewforge/reviewforge/internal/analyzer"
	"github.com/reviewforge/reviewforge/internal/classify"
)

func descriptors() []analyzer.Descriptor {
	return []analyzer.Descriptor{
		{Name: "eslint", Accept: analyzer.ExtensionAccept(".js", ".ts")},
		{Name: "bandit", Accept: analyzer.ExtensionAccept(".py")},
		{Name: "pattern", Accept: analyzer.AcceptAllText()},
	}
}

func TestClassify_RoutesByExtension(t *testing.T) {
	t.Parallel()

	got := classify.Classify("main.js", descriptors())

	require.Len(t, got, 2)
	assert.Equal(t, "eslint", got[0].Name)
	assert.Equal(t, "pattern", got[1].Name)
}

func TestClassify_NoEligibleAnalyzers(t *testing.T) {
	t.Parallel()

	enabled := []analyzer.Descriptor{
		{Name: "eslint", Accept: analyzer.ExtensionAccept(".js")},
	}

	got := classify.Classify("README.md", enabled)
	assert.Empty(t, got)
}

func TestClassify_PreservesEnabledOrder(t *testing.T) {
	t.Parallel()

	got := classify.Classify("x.py", descriptors())

	require.Len(t, got, 2)
	assert.Equal(t, "bandit", got[0].Name)
	assert.Equal(t, "pattern", got[1].Name)
}

func TestCountUnits(t *testing.T) {
	t.Parallel()

	files := []string{"a.js", "b.py", "c.md"}
	total := classify.CountUnits(files, descriptors())

	// a.js: eslint + pattern = 2, b.py: bandit + pattern = 2, c.md: pattern = 1
	assert.Equal(t, 5, total)
}

func TestCountUnits_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, classify.CountUnits(nil, descriptors()))
	assert.Equal(t, 0, classify.CountUnits([]string{"a.js"}, nil))
}
