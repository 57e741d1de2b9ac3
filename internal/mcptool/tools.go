package mcptool

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolNameRunPipeline is the registered MCP tool name.
const ToolNameRunPipeline = "gitsynth_run_pipeline"

// Sentinel errors for tool input validation.
var (
	// ErrEmptyRepoPath indicates the repo_path parameter is empty.
	ErrEmptyRepoPath = errors.New("repo_path parameter is required and must not be empty")
	// ErrRepoPathNotAbsolute indicates the repo_path is not an absolute path.
	ErrRepoPathNotAbsolute = errors.New("repo_path must be an absolute path")
	// ErrEmptyBaseCommit indicates the base_commit parameter is empty.
	ErrEmptyBaseCommit = errors.New("base_commit parameter is required and must not be empty")
)

// RunPipelineInput is the input schema for the gitsynth_run_pipeline tool.
type RunPipelineInput struct {
	RepoPath    string `json:"repo_path"              jsonschema:"absolute path to a Git repository"`
	BaseCommit  string `json:"base_commit"            jsonschema:"revision the rewritten history is built on top of"`
	DirtyCommit string `json:"dirty_commit,omitempty" jsonschema:"revision holding the target content; empty uses the current worktree"`
	TargetPath  string `json:"target_path,omitempty"  jsonschema:"restrict the diff to this pathspec"`
	Branch      string `json:"branch,omitempty"       jsonschema:"branch to update; empty resolves the repository's current branch"`
	AuthorName  string `json:"author_name,omitempty"  jsonschema:"commit author name for synthesized commits"`
	AuthorMail  string `json:"author_mail,omitempty"  jsonschema:"commit author email for synthesized commits"`
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
