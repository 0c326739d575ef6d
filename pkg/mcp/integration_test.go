package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/reviewforge/reviewforge/internal/analyzer"
	"github.com/reviewforge/reviewforge/internal/analyzer/patterndriver"
	"github.com/reviewforge/reviewforge/internal/executor"
	"github.com/reviewforge/reviewforge/internal/registry"
	"github.com/reviewforge/reviewforge/pkg/mcp"
)

func newTestServer(t *testing.T) *mcp.Server {
	t.Helper()

	drv := patterndriver.New()
	descs := map[string]analyzer.Descriptor{patterndriver.Name: patterndriver.Descriptor()}
	drivers := map[string]analyzer.Driver{patterndriver.Name: drv}

	exec := executor.New(descs, drivers, executor.Options{Concurrency: 1})
	reg := registry.New(exec)

	return mcp.NewServer(mcp.ServerDeps{Registry: reg})
}

func connectedSession(t *testing.T, srv *mcp.Server) (*mcpsdk.ClientSession, context.Context) {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		<-serverDone
	})

	return session, ctx
}

func TestMCPServer_InMemoryTransport_ToolsList(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	session, ctx := connectedSession(t, srv)

	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, toolsResult)

	toolNames := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		toolNames = append(toolNames, tool.Name)
	}

	assert.Contains(t, toolNames, mcp.ToolNameCreate)
	assert.Contains(t, toolNames, mcp.ToolNameStatus)
	assert.Contains(t, toolNames, mcp.ToolNamePause)
	assert.Contains(t, toolNames, mcp.ToolNameResume)
	assert.Contains(t, toolNames, mcp.ToolNameCancel)
	assert.Contains(t, toolNames, mcp.ToolNameResult)
	assert.Len(t, toolNames, 6)

	for _, tool := range toolsResult.Tools {
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}
}

func TestMCPServer_InMemoryTransport_CreateThenResult(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	session, ctx := connectedSession(t, srv)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main\n// TODO fix\n"), 0o600))

	createResult, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: mcp.ToolNameCreate,
		Arguments: map[string]any{
			"project_root": dir,
			"files":        []string{"a.go"},
			"analyzers":    []string{"pattern"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, createResult)
	assert.False(t, createResult.IsError)
	require.NotEmpty(t, createResult.Content)

	jobID := extractJobID(t, createResult)

	require.Eventually(t, func() bool {
		statusResult, statusErr := session.CallTool(ctx, &mcpsdk.CallToolParams{
			Name:      mcp.ToolNameStatus,
			Arguments: map[string]any{"job_id": jobID},
		})

		return statusErr == nil && statusResult != nil && !statusResult.IsError
	}, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		resultResult, resultErr := session.CallTool(ctx, &mcpsdk.CallToolParams{
			Name:      mcp.ToolNameResult,
			Arguments: map[string]any{"job_id": jobID},
		})

		return resultErr == nil && resultResult != nil && !resultResult.IsError
	}, 2*time.Second, 5*time.Millisecond)
}

func TestMCPServer_InMemoryTransport_CreateError(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	session, ctx := connectedSession(t, srv)

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: mcp.ToolNameCreate,
		Arguments: map[string]any{
			"project_root": "",
			"analyzers":    []string{"pattern"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestMCPServer_InMemoryTransport_StatusUnknownJob(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	session, ctx := connectedSession(t, srv)

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      mcp.ToolNameStatus,
		Arguments: map[string]any{"job_id": "does-not-exist"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

// extractJobID pulls the job_id back out of review_create's JSON text
// content; tests fail loudly (via require) rather than silently skip if
// the shape ever changes.
func extractJobID(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	var payload struct {
		JobID string `json:"job_id"`
	}

	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))

	return payload.JobID
}
