package patterndriver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewforge/reviewforge/internal/analyzer/patterndriver"
	"github.com/reviewforge/reviewforge/internal/issue"
)

func writeFile(t *testing.T, root, rel, contents string) {
	t.Helper()

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestDriver_Analyze_DetectsAllDefaultPatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.js", "console.log('hi')\n// TODO: fix this\napi_key = \"supersecretvalue123\"\n")

	d := patterndriver.New()
	issues, warnings := d.Analyze(context.Background(), []string{"a.js"}, root)

	assert.Empty(t, warnings)
	require.Len(t, issues, 3)

	rules := map[string]bool{}
	for _, iss := range issues {
		rules[iss.Rule] = true
		assert.Equal(t, "a.js", iss.File)
		assert.Equal(t, "pattern", iss.Analyzer)
	}

	assert.True(t, rules["debug-print"])
	assert.True(t, rules["inline-todo"])
	assert.True(t, rules["hardcoded-secret"])
}

func TestDriver_Analyze_NoMatches(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "c.md", "nothing suspicious here\n")

	d := patterndriver.New()
	issues, warnings := d.Analyze(context.Background(), []string{"c.md"}, root)

	assert.Empty(t, issues)
	assert.Empty(t, warnings)
}

func TestDriver_Analyze_UnreadableFileWarns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	d := patterndriver.New()
	issues, warnings := d.Analyze(context.Background(), []string{"missing.txt"}, root)

	assert.Empty(t, issues)
	require.Len(t, warnings, 1)
	assert.Equal(t, "missing.txt", warnings[0].File)
}

func TestDriver_Analyze_BinaryFileSkippedWithWarning(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "bin.dat", "\x00\x01\x02binary")

	d := patterndriver.New()
	issues, warnings := d.Analyze(context.Background(), []string{"bin.dat"}, root)

	assert.Empty(t, issues)
	require.Len(t, warnings, 1)
}

func TestDescriptor_AcceptsEverything(t *testing.T) {
	t.Parallel()

	desc := patterndriver.Descriptor()
	assert.True(t, desc.Accepts("anything.xyz"))
	assert.True(t, desc.HasCategory(issue.CategorySecurity))
}
