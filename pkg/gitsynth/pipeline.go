// Package gitsynth wires the full pipeline together: diff extraction,
// atomic chunking, AST-grounded labelling, semantic grouping, logical
// grouping, and synthesis into a linear commit chain. It is the only
// surface meant for outside callers (a CLI, an MCP tool, another Go
// program).
package gitsynth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codestory-build/gitsynth/pkg/chunk"
	"github.com/codestory-build/gitsynth/pkg/gitplumb"
	"github.com/codestory-build/gitsynth/pkg/label"
	"github.com/codestory-build/gitsynth/pkg/langquery"
	"github.com/codestory-build/gitsynth/pkg/logigroup"
	"github.com/codestory-build/gitsynth/pkg/mechchunk"
	"github.com/codestory-build/gitsynth/pkg/scopemap"
	"github.com/codestory-build/gitsynth/pkg/semgroup"
	"github.com/codestory-build/gitsynth/pkg/symbolmap"
	"github.com/codestory-build/gitsynth/pkg/synth"
	"github.com/codestory-build/gitsynth/pkg/textutil"
	"github.com/codestory-build/gitsynth/pkg/unidiff"
)

// ErrNoGrouper is returned when Options.Grouper is nil.
var ErrNoGrouper = errors.New("gitsynth: a LogicalGrouper is required")

// ProgressFunc reports pipeline-wide progress. Phase is one of
// "mechanical", "semantic", "logical", "synthesis".
type ProgressFunc func(phase string, done, total int)

// Options configures a single RunPipeline call. Grouper is the only
// required field; everything else has a sensible default.
type Options struct {
	// TargetPath restricts the diff to a single pathspec, or "" for the
	// whole repository.
	TargetPath string
	// RenameSimilarity is the `-M<N>%` threshold; 0 uses gitplumb's default
	// of 50.
	RenameSimilarity int

	// Grouper decides how semantic chunks become commits. Required.
	Grouper  logigroup.LogicalGrouper
	Guidance string

	// Branch is the ref (without "refs/heads/") synthesis updates. If
	// empty, RunPipeline resolves the repository's current branch via
	// symbolic-ref and uses that.
	Branch string

	AuthorName string
	AuthorMail string
	AuthorDate string

	// SyncWorktree resets the working tree to match Branch after updating
	// it, when Branch is currently checked out. Default false.
	SyncWorktree bool

	// Registry supplies the language grammars/queries used to build each
	// chunk's semantic signature. Defaults to langquery.NewDefaultRegistry().
	Registry *langquery.Registry

	Progress ProgressFunc
}

func (o *Options) registry() *langquery.Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return langquery.NewDefaultRegistry()
}

func (o *Options) report(phase string, done, total int) {
	if o.Progress != nil {
		o.Progress(phase, done, total)
	}
}

// RunPipeline decomposes the diff between base and dirty (or, when dirty is
// "", the current working tree) into chunks, labels and groups them, asks
// opts.Grouper to bundle them into commits, and synthesizes the resulting
// linear history on top of base. It returns the new head commit, or nil
// (with no error) when the diff is empty — the pipeline's idempotence
// contract: re-running with base set to the new head and the same dirty
// target always returns nil.
func RunPipeline(ctx context.Context, driver *gitplumb.Driver, base, dirty string, opts Options) (*gitplumb.Hash, error) {
	if opts.Grouper == nil {
		return nil, ErrNoGrouper
	}

	raw, err := rawDiff(ctx, driver, base, dirty, opts)
	if err != nil {
		return nil, err
	}

	fileDiffs, err := unidiff.Parse(raw)
	if err != nil {
		return nil, err
	}

	if len(fileDiffs) == 0 {
		return nil, nil
	}

	mechanical := mechanicalChunks(fileDiffs)
	opts.report("mechanical", len(mechanical), len(mechanical))

	fcs, err := buildFileContexts(ctx, driver, base, dirty, opts.registry(), mechanical)
	if err != nil {
		return nil, err
	}

	annotated := label.AnnotateChunks(mechanical, fcs)
	opts.report("semantic", len(annotated), len(annotated))

	semantic := semgroup.Group(annotated)

	groups, err := opts.Grouper.GroupChunks(ctx, semantic, opts.Guidance, func(done, total int) {
		opts.report("logical", done, total)
	})
	if err != nil {
		return nil, fmt.Errorf("group chunks: %w", err)
	}

	ordered := logigroup.OrderGroups(groups)

	branch := opts.Branch
	if branch == "" {
		ref, err := driver.SymbolicRefHEAD(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve current branch: %w", err)
		}
		if ref == "" {
			return nil, errors.New("gitsynth: no branch given and HEAD is detached")
		}
		branch = strings.TrimPrefix(ref, "refs/heads/")
	}

	synthesizer := synth.NewSynthesizer(driver)

	results, err := synthesizer.ExecutePlan(ctx, ordered, base, branch, synth.Options{
		AuthorName:   opts.AuthorName,
		AuthorMail:   opts.AuthorMail,
		AuthorDate:   opts.AuthorDate,
		SyncWorktree: opts.SyncWorktree,
	})
	if err != nil {
		return nil, err
	}

	opts.report("synthesis", len(results), len(results))

	if len(results) == 0 {
		return nil, nil
	}

	head := results[len(results)-1].Hash
	return &head, nil
}

func rawDiff(ctx context.Context, driver *gitplumb.Driver, base, dirty string, opts Options) ([]byte, error) {
	var pathspecs []string
	if opts.TargetPath != "" {
		pathspecs = []string{opts.TargetPath}
	}

	if dirty == "" {
		return driver.RawDiffWorktree(ctx, base, opts.RenameSimilarity, pathspecs...)
	}
	return driver.RawDiff(ctx, base, dirty, opts.RenameSimilarity, pathspecs...)
}

func mechanicalChunks(fileDiffs []unidiff.FileDiff) []chunk.Chunk {
	var all []chunk.Chunk
	for i := range fileDiffs {
		all = append(all, chunk.FromFileDiff(&fileDiffs[i])...)
	}
	return mechchunk.MergeBlankNeighbors(all)
}

// buildFileContexts resolves, parses, and indexes every path touched by
// chunks at both the base and dirty revisions. Paths with no registered
// language, a parse failure, or binary content are simply absent from the
// resulting map — label.AnnotateChunk already treats a missing FileContext
// as "no signature on this side".
func buildFileContexts(ctx context.Context, driver *gitplumb.Driver, base, dirty string, reg *langquery.Registry, chunks []chunk.Chunk) (label.FileContexts, error) {
	oldRev, newRev := base, dirty

	oldPaths := make(map[string]bool)
	newPaths := make(map[string]bool)

	for _, top := range chunks {
		for _, c := range chunk.Flatten(top) {
			switch v := c.(type) {
			case *chunk.Standard:
				oldPaths[string(v.OldPath)] = true
				newPaths[string(v.NewPath)] = true
			case *chunk.Delete:
				oldPaths[string(v.Path)] = true
			case *chunk.EmptyAdd:
				newPaths[string(v.Path)] = true
			}
		}
	}

	fcs := label.FileContexts{Old: map[string]*label.FileContext{}, New: map[string]*label.FileContext{}}

	for path := range oldPaths {
		fc, err := resolveFileContext(ctx, driver, reg, oldRev, path)
		if err != nil {
			return fcs, err
		}
		if fc != nil {
			fcs.Old[path] = fc
		}
	}

	for path := range newPaths {
		var fc *label.FileContext
		var err error

		if newRev == "" {
			fc, err = resolveWorktreeFileContext(ctx, driver, reg, path)
		} else {
			fc, err = resolveFileContext(ctx, driver, reg, newRev, path)
		}
		if err != nil {
			return fcs, err
		}
		if fc != nil {
			fcs.New[path] = fc
		}
	}

	return fcs, nil
}

func resolveWorktreeFileContext(ctx context.Context, driver *gitplumb.Driver, reg *langquery.Registry, path string) (*label.FileContext, error) {
	content, err := driver.ReadWorktreeFile(path)
	if err != nil {
		return nil, nil
	}

	return fileContextFromContent(ctx, reg, path, content)
}

func resolveFileContext(ctx context.Context, driver *gitplumb.Driver, reg *langquery.Registry, rev, path string) (*label.FileContext, error) {
	content, err := driver.CatFilePretty(ctx, rev+":"+path)
	if err != nil {
		// Missing blob (e.g. the new side of a pure deletion): no context,
		// not an error.
		return nil, nil
	}

	return fileContextFromContent(ctx, reg, path, content)
}

func fileContextFromContent(ctx context.Context, reg *langquery.Registry, path string, content []byte) (*label.FileContext, error) {
	// Cheap null-byte sniff before paying for enry's heavier content-based
	// detection below.
	if textutil.IsBinary(content) {
		return nil, nil
	}

	if langquery.IsProbablyBinary(content) {
		return nil, nil
	}

	language, ok := reg.DetectLanguage(path, content)
	if !ok {
		return nil, nil
	}

	parsed, err := reg.Parse(ctx, language, path, content)
	if err != nil {
		return nil, nil
	}

	inputs := make([]scopemap.ScopeInput, len(parsed.Scopes))
	for i, sc := range parsed.Scopes {
		inputs[i] = scopemap.ScopeInput{Name: sc.Name, Start: sc.StartLine, End: sc.EndLine}
	}

	return &label.FileContext{
		Path:     path,
		Language: language,
		Forest:   scopemap.Build(inputs),
		Symbols:  symbolmap.Build(parsed),
	}, nil
}
