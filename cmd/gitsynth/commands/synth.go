// Package commands implements CLI command handlers for gitsynth.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/codestory-build/gitsynth/pkg/config"
	"github.com/codestory-build/gitsynth/pkg/gitplumb"
	"github.com/codestory-build/gitsynth/pkg/gitsynth"
	"github.com/codestory-build/gitsynth/pkg/logigroup"
	"github.com/codestory-build/gitsynth/pkg/observability"
	"github.com/codestory-build/gitsynth/pkg/pipeline"
)

type synthExecutor func(ctx context.Context, driver *gitplumb.Driver, base, dirty string, opts gitsynth.Options) (*gitplumb.Hash, error)

type observabilityInitFunc func(cfg observability.Config) (observability.Providers, error)

// synthOptions describes the tunable flags of the synth command. Every
// entry is also registered as a real cobra flag via registerConfigFlag,
// reusing the same ConfigurationOption shape the rest of the codebase
// uses to describe CLI flags.
func synthOptions(cfg *config.Config) []pipeline.ConfigurationOption {
	return []pipeline.ConfigurationOption{
		{
			Name: "rename-similarity", Flag: "rename-similarity",
			Description: "Percentage similarity threshold for rename detection",
			Type:        pipeline.IntConfigurationOption, Default: cfg.Repository.RenameSimilarity,
		},
		{
			Name: "sync-worktree", Flag: "sync-worktree",
			Description: "Reset the working tree to match the target branch after synthesis",
			Type:        pipeline.BoolConfigurationOption, Default: cfg.Synthesis.SyncWorktree,
		},
	}
}

// SynthCommand holds configuration and dependencies for the synth command.
type SynthCommand struct {
	path       string
	base       string
	dirty      string
	targetPath string
	branch     string
	authorName string
	authorMail string
	guidance   string
	configFile string
	debugTrace bool

	runPipeline       synthExecutor
	observabilityInit observabilityInitFunc
}

// NewSynthCommand creates the synth command.
func NewSynthCommand() *cobra.Command {
	return newSynthCommandWithDeps(gitsynth.RunPipeline, observability.Init)
}

func newSynthCommandWithDeps(runPipeline synthExecutor, otelInit observabilityInitFunc) *cobra.Command {
	sc := &SynthCommand{
		runPipeline:       runPipeline,
		observabilityInit: otelInit,
	}

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Rewrite a working diff into a reviewable commit chain",
		Long:  "Decompose the diff between a base commit and a dirty target into labelled chunks and synthesize a new linear commit chain on top of base.",
		RunE:  sc.run,
	}

	cmd.Flags().StringVarP(&sc.path, "path", "p", ".", "Repository path")
	cmd.Flags().StringVar(&sc.base, "base", "", "Base revision the rewritten history builds on (required)")
	cmd.Flags().StringVar(&sc.dirty, "dirty", "", "Revision holding the target content (empty uses the current worktree)")
	cmd.Flags().StringVar(&sc.targetPath, "target-path", "", "Restrict the diff to this pathspec")
	cmd.Flags().StringVar(&sc.branch, "branch", "", "Branch to update (empty resolves the repository's current branch)")
	cmd.Flags().StringVar(&sc.authorName, "author-name", "", "Commit author name for synthesized commits")
	cmd.Flags().StringVar(&sc.authorMail, "author-mail", "", "Commit author email for synthesized commits")
	cmd.Flags().StringVar(&sc.guidance, "guidance", "", "Free-form guidance passed to the logical grouper")
	cmd.Flags().StringVar(&sc.configFile, "config", "", "Configuration file path (default: gitsynth.yaml in CWD)")
	cmd.Flags().BoolVar(&sc.debugTrace, "debug-trace", false, "Enable 100% trace sampling for debugging")

	defaultCfg, err := config.LoadConfig("")
	if err != nil {
		defaultCfg = &config.Config{}
	}

	for _, opt := range synthOptions(defaultCfg) {
		registerConfigFlag(cmd, opt)
	}

	return cmd
}

func registerConfigFlag(cobraCmd *cobra.Command, opt pipeline.ConfigurationOption) {
	switch opt.Type {
	case pipeline.BoolConfigurationOption:
		if v, ok := opt.Default.(bool); ok {
			cobraCmd.Flags().Bool(opt.Flag, v, opt.Description)
		}
	case pipeline.IntConfigurationOption:
		if v, ok := opt.Default.(int); ok {
			cobraCmd.Flags().Int(opt.Flag, v, opt.Description)
		}
	case pipeline.StringConfigurationOption, pipeline.PathConfigurationOption:
		if v, ok := opt.Default.(string); ok {
			cobraCmd.Flags().String(opt.Flag, v, opt.Description)
		}
	case pipeline.StringsConfigurationOption:
		if v, ok := opt.Default.([]string); ok {
			cobraCmd.Flags().StringSlice(opt.Flag, v, opt.Description)
		}
	case pipeline.FloatConfigurationOption:
		if v, ok := opt.Default.(float64); ok {
			cobraCmd.Flags().Float64(opt.Flag, v, opt.Description)
		}
	}
}

var errMissingBase = errors.New("--base is required")

func (sc *SynthCommand) run(cmd *cobra.Command, _ []string) (runResult error) {
	if sc.base == "" {
		return errMissingBase
	}

	cfg, err := config.LoadConfig(sc.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	renameSimilarity, err := cmd.Flags().GetInt("rename-similarity")
	if err != nil {
		renameSimilarity = cfg.Repository.RenameSimilarity
	}

	syncWorktree, err := cmd.Flags().GetBool("sync-worktree")
	if err != nil {
		syncWorktree = cfg.Synthesis.SyncWorktree
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceName = "gitsynth"
	obsCfg.Mode = observability.ModeCLI
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.DebugTrace = sc.debugTrace

	providers, err := sc.observabilityInit(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		shutdownErr := providers.Shutdown(ctx)
		if shutdownErr != nil && providers.Logger != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	if providers.Tracer != nil {
		var rootSpan trace.Span

		ctx, rootSpan = providers.Tracer.Start(ctx, "gitsynth.run_pipeline")

		start := time.Now()

		defer func() {
			rootSpan.SetAttributes(
				attribute.Bool("error", runResult != nil),
				attribute.String("gitsynth.path", sc.path),
			)
			rootSpan.End()

			providers.Logger.InfoContext(ctx, "synth.complete", "duration", time.Since(start).String())
		}()
	}

	authorName := sc.authorName
	if authorName == "" {
		authorName = cfg.Synthesis.AuthorName
	}

	authorMail := sc.authorMail
	if authorMail == "" {
		authorMail = cfg.Synthesis.AuthorMail
	}

	driver := gitplumb.New(sc.path)

	head, err := sc.runPipeline(ctx, driver, sc.base, sc.dirty, gitsynth.Options{
		TargetPath:       sc.targetPath,
		RenameSimilarity: renameSimilarity,
		Grouper:          logigroup.DefaultGrouper{},
		Guidance:         sc.guidance,
		Branch:           sc.branch,
		AuthorName:       authorName,
		AuthorMail:       authorMail,
		SyncWorktree:     syncWorktree,
		Progress: func(phase string, done, total int) {
			if providers.Logger != nil {
				providers.Logger.InfoContext(ctx, "synth.progress", "phase", phase, "done", done, "total", total)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	if head == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "no changes: diff was empty")

		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), head.String())

	return nil
}
