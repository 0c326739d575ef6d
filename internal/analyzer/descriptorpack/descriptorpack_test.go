package descriptorpack_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewforge/reviewforge/internal/analyzer/descriptorpack"
	"github.com/reviewforge/reviewforge/internal/issue"
)

const validYAML = `
name: rubocop-ish
extensions: [".rb"]
binary: rubocop-ish
args: ["--json"]
results_path: "offenses"
non_zero_exit_ok: true
default_category: "quality"
fields:
  file: "file"
  line: "line"
  column: "col"
  severity: "level"
  message: "msg"
  rule: "cop"
severity_map:
  error: "high"
  warning: "medium"
`

func TestParse_Valid(t *testing.T) {
	t.Parallel()

	doc, err := descriptorpack.Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "rubocop-ish", doc.Name)
	assert.Equal(t, []string{".rb"}, doc.Extensions)
	assert.Equal(t, "high", doc.SeverityMap["error"])
}

func TestParse_MissingRequiredField(t *testing.T) {
	t.Parallel()

	_, err := descriptorpack.Parse([]byte("name: incomplete\n"))
	assert.Error(t, err)
}

func TestParse_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := descriptorpack.Parse([]byte("not: [valid: yaml"))
	assert.Error(t, err)
}

func fakeTool(t *testing.T, report string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "fake-tool.sh")
	script := "#!/bin/sh\ncat <<'EOF'\n" + report + "\nEOF\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path
}

func TestDriver_Analyze_WalksResultsPath(t *testing.T) {
	t.Parallel()

	doc, err := descriptorpack.Parse([]byte(validYAML))
	require.NoError(t, err)

	doc.Binary = fakeTool(t, `{"offenses":[{"file":"a.rb","line":4,"col":2,"level":"error","msg":"bad style","cop":"Style/Foo"}]}`)

	d := descriptorpack.NewDriver(doc)
	issues, warnings := d.Analyze(context.Background(), []string{"a.rb"}, t.TempDir())

	assert.Empty(t, warnings)
	require.Len(t, issues, 1)
	assert.Equal(t, "a.rb", issues[0].File)
	assert.Equal(t, 4, issues[0].Line)
	assert.Equal(t, issue.SeverityHigh, issues[0].Severity)
	assert.Equal(t, issue.CategoryQuality, issues[0].Category)
	assert.Equal(t, "Style/Foo", issues[0].Rule)
}

func TestDriver_Descriptor_AcceptsConfiguredExtensions(t *testing.T) {
	t.Parallel()

	doc, err := descriptorpack.Parse([]byte(validYAML))
	require.NoError(t, err)

	d := descriptorpack.NewDriver(doc)
	desc := d.Descriptor()

	assert.True(t, desc.Accepts("lib/foo.rb"))
	assert.False(t, desc.Accepts("lib/foo.py"))
}
