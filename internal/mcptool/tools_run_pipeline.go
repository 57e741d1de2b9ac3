package mcptool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codestory-build/gitsynth/pkg/gitplumb"
	"github.com/codestory-build/gitsynth/pkg/gitsynth"
	"github.com/codestory-build/gitsynth/pkg/logigroup"
)

// RunPipelineOutput is the structured result of a gitsynth_run_pipeline call.
type RunPipelineOutput struct {
	Head    string `json:"head"`
	Changed bool   `json:"changed"`
}

// handleRunPipeline processes gitsynth_run_pipeline tool calls.
func handleRunPipeline(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input RunPipelineInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateRunPipelineInput(input)
	if err != nil {
		return errorResult(err)
	}

	driver := gitplumb.New(input.RepoPath)

	head, err := gitsynth.RunPipeline(ctx, driver, input.BaseCommit, input.DirtyCommit, gitsynth.Options{
		Grouper:    logigroup.DefaultGrouper{},
		TargetPath: input.TargetPath,
		Branch:     input.Branch,
		AuthorName: input.AuthorName,
		AuthorMail: input.AuthorMail,
	})
	if err != nil {
		return errorResult(fmt.Errorf("run pipeline: %w", err))
	}

	if head == nil {
		return jsonResult(RunPipelineOutput{Changed: false})
	}

	return jsonResult(RunPipelineOutput{Head: head.String(), Changed: true})
}

func validateRunPipelineInput(input RunPipelineInput) error {
	if input.RepoPath == "" {
		return ErrEmptyRepoPath
	}

	if !filepath.IsAbs(input.RepoPath) {
		return ErrRepoPathNotAbsolute
	}

	if input.BaseCommit == "" {
		return ErrEmptyBaseCommit
	}

	info, err := os.Stat(input.RepoPath)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("repository path does not exist: %s", input.RepoPath)
	}

	gitDir := filepath.Join(input.RepoPath, ".git")

	_, err = os.Stat(gitDir)
	if err != nil {
		return fmt.Errorf("not a git repository: %s", input.RepoPath)
	}

	return nil
}
