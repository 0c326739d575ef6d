package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/reviewforge/reviewforge/internal/issue"
	"github.com/reviewforge/reviewforge/internal/job"
	"github.com/reviewforge/reviewforge/internal/registry"
)

// Tool name constants.
const (
	ToolNameCreate = "review_create"
	ToolNameStatus = "review_status"
	ToolNamePause  = "review_pause"
	ToolNameResume = "review_resume"
	ToolNameCancel = "review_cancel"
	ToolNameResult = "review_result"
)

// Tool description constants.
const (
	createToolDescription = "Start a code review job over a project directory. " +
		"Selects analyzer drivers and issue categories, then runs asynchronously; " +
		"poll review_status or review_result with the returned job id."

	statusToolDescription = "Get the current state, progress, and partial findings of a review job."

	pauseToolDescription = "Pause a running review job between analyzer batches."

	resumeToolDescription = "Resume a paused review job."

	cancelToolDescription = "Cancel a review job that has not yet reached a terminal state."

	resultToolDescription = "Get the final summary and full issue list of a terminal review job."
)

// CreateInput is the input schema for the review_create tool.
type CreateInput struct {
	ProjectRoot string   `json:"project_root"          jsonschema:"absolute path to the project directory to review"`
	Files       []string `json:"files"                 jsonschema:"project-relative file paths to review"`
	Analyzers   []string `json:"analyzers"             jsonschema:"analyzer names to run, e.g. eslint bandit pattern"`
	Categories  []string `json:"categories,omitempty"  jsonschema:"issue categories to keep: security performance quality (default: all)"`
}

// JobIDInput is the input schema shared by every tool that acts on an
// existing job id.
type JobIDInput struct {
	JobID string `json:"job_id" jsonschema:"the job id returned by review_create"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func parseCategories(names []string) ([]issue.Category, error) {
	if len(names) == 0 {
		cats := issue.Categories()

		return cats, nil
	}

	out := make([]issue.Category, 0, len(names))

	for _, n := range names {
		c := issue.Category(n)
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category %q", n)
		}

		out = append(out, c)
	}

	return out, nil
}

func handleCreate(reg *registry.Registry) func(context.Context, *mcpsdk.CallToolRequest, CreateInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, in CreateInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		categories, err := parseCategories(in.Categories)
		if err != nil {
			return errorResult(err)
		}

		id, err := reg.Create(ctx, job.Input{
			ProjectRoot: in.ProjectRoot,
			Files:       in.Files,
			Analyzers:   in.Analyzers,
			Categories:  categories,
		})
		if err != nil {
			return errorResult(err)
		}

		return jsonResult(map[string]string{"job_id": id})
	}
}

func handleStatus(reg *registry.Registry) func(context.Context, *mcpsdk.CallToolRequest, JobIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, in JobIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		snap, err := reg.Status(ctx, in.JobID)
		if err != nil {
			return errorResult(err)
		}

		return jsonResult(snap)
	}
}

func handlePause(reg *registry.Registry) func(context.Context, *mcpsdk.CallToolRequest, JobIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, in JobIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		if err := reg.Pause(ctx, in.JobID); err != nil {
			return errorResult(err)
		}

		return jsonResult(map[string]string{"job_id": in.JobID, "state": string(job.StatePaused)})
	}
}

func handleResume(reg *registry.Registry) func(context.Context, *mcpsdk.CallToolRequest, JobIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, in JobIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		if err := reg.Resume(ctx, in.JobID); err != nil {
			return errorResult(err)
		}

		return jsonResult(map[string]string{"job_id": in.JobID, "state": string(job.StateRunning)})
	}
}

func handleCancel(reg *registry.Registry) func(context.Context, *mcpsdk.CallToolRequest, JobIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, in JobIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		if err := reg.Cancel(ctx, in.JobID); err != nil {
			return errorResult(err)
		}

		return jsonResult(map[string]string{"job_id": in.JobID, "state": string(job.StateCancelled)})
	}
}

func handleResult(reg *registry.Registry) func(context.Context, *mcpsdk.CallToolRequest, JobIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, in JobIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		res, err := reg.Result(ctx, in.JobID)
		if err != nil {
			return errorResult(err)
		}

		return jsonResult(res)
	}
}
