// Package synth realizes a logical grouping plan as an actual, linear chain
// of git commit objects, built entirely through plumbing commands: no
// working-tree checkout, no index manipulation, beyond the strictly opt-in
// worktree sync at the very end.
package synth

import (
	"context"
	"fmt"

	"github.com/codestory-build/gitsynth/pkg/gitplumb"
	"github.com/codestory-build/gitsynth/pkg/logigroup"
)

// Options configures a single ExecutePlan call.
type Options struct {
	AuthorName string
	AuthorMail string
	// AuthorDate is "<unix-seconds> <+/-HHMM>", or "" for the current time.
	AuthorDate string
	// SyncWorktree resets the working tree and index to match the updated
	// branch when that branch is currently checked out. Off by default:
	// the core contract is "move the ref", not "touch the worktree".
	SyncWorktree bool
}

// CommitResult records the synthetic commit produced for one group.
type CommitResult struct {
	Hash  gitplumb.Hash
	Group logigroup.CommitGroup
}

// Synthesizer turns commit groups into commits against a single repository.
type Synthesizer struct {
	driver *gitplumb.Driver
	cache  *BlobCache
}

// NewSynthesizer returns a Synthesizer driving repository through driver.
func NewSynthesizer(driver *gitplumb.Driver) *Synthesizer {
	return &Synthesizer{driver: driver, cache: NewBlobCache()}
}

// ExecutePlan builds one commit per group, each parented on the previous
// synthetic commit (the first parented on base), and atomically points
// branch at the resulting tip. Every tree is built from the base tree plus
// the cumulative union of every chunk from group 0 through the current
// group: a later chunk is always expressed relative to the working diff's
// base, so re-deriving from scratch each time is what keeps the history
// correct even when groups are reordered by pkg/logigroup.
//
// If any group fails, the branch ref is left untouched: every tree and
// commit object already built is an orphaned but harmless git object, and
// the error returned is a *SynthesisError naming which group failed.
func (s *Synthesizer) ExecutePlan(ctx context.Context, groups []logigroup.CommitGroup, base, branch string, opts Options) ([]CommitResult, error) {
	baseHash, err := s.driver.RevParse(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("resolve base %s: %w", base, err)
	}

	baseTreeHash, err := s.driver.RevParse(ctx, base+"^{tree}")
	if err != nil {
		return nil, fmt.Errorf("resolve base tree for %s: %w", base, err)
	}

	baseEntries, err := s.driver.LsTreeRecursive(ctx, baseTreeHash)
	if err != nil {
		return nil, fmt.Errorf("list base tree %s: %w", baseTreeHash, err)
	}

	baseListing := make(map[string]gitplumb.TreeEntry, len(baseEntries))
	for _, e := range baseEntries {
		baseListing[e.Path] = e
	}

	results := make([]CommitResult, 0, len(groups))
	lastHash := baseHash

	cumulative := newCumulativeChunks()

	for i, group := range groups {
		cumulative.extend(group.Chunks)

		treeHash, err := s.buildTree(ctx, baseListing, cumulative.all())
		if err != nil {
			return nil, &SynthesisError{GroupIndex: i, Message: group.Message, Err: err}
		}

		commitHash, err := s.driver.CommitTree(ctx, gitplumb.CommitSpec{
			Tree:       treeHash,
			Parents:    []gitplumb.Hash{lastHash},
			Message:    group.Message,
			AuthorName: opts.AuthorName,
			AuthorMail: opts.AuthorMail,
			AuthorDate: opts.AuthorDate,
		})
		if err != nil {
			return nil, &SynthesisError{GroupIndex: i, Message: group.Message, Err: err}
		}

		lastHash = commitHash
		results = append(results, CommitResult{Hash: commitHash, Group: group})
	}

	if lastHash == baseHash {
		return results, nil
	}

	ref := "refs/heads/" + branch

	oldRef, err := s.driver.RevParse(ctx, ref)
	if err != nil {
		oldRef = ""
	}

	if err := s.driver.UpdateRef(ctx, ref, lastHash, oldRef); err != nil {
		return nil, fmt.Errorf("update-ref %s: %w", ref, err)
	}

	if opts.SyncWorktree {
		current, err := s.driver.SymbolicRefHEAD(ctx)
		if err == nil && current == ref {
			if err := s.driver.ResetHard(ctx, ref); err != nil {
				return nil, fmt.Errorf("sync worktree to %s: %w", ref, err)
			}
		}
	}

	return results, nil
}
