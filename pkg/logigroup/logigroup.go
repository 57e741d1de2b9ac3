// Package logigroup turns the semantically-grouped chunks from pkg/semgroup
// into the final, ordered sequence of commit groups the synthesizer will
// realize as actual commits. The grouping policy itself is pluggable (an
// LLM-backed grouper is an explicit external collaborator, not shipped
// here); this package provides the interface plus a deterministic default.
package logigroup

import (
	"context"
	"fmt"

	"github.com/codestory-build/gitsynth/pkg/chunk"
	"github.com/codestory-build/gitsynth/pkg/toposort"
)

// CommitGroup is an ordered set of chunks destined to become one commit.
type CommitGroup struct {
	Chunks  []chunk.Chunk
	Message string
}

// ProgressFunc reports grouping progress (done/total chunks processed),
// the same shape the Git plumbing and synthesis stages report progress
// through.
type ProgressFunc func(done, total int)

// LogicalGrouper decides how semantically-grouped chunks are bundled into
// commits and in what order. Implementations may call out to an LLM, a
// rules engine, or (the default here) simply emit one group per input
// chunk.
type LogicalGrouper interface {
	GroupChunks(ctx context.Context, chunks []chunk.Chunk, guidance string, onProgress ProgressFunc) ([]CommitGroup, error)
}

// DefaultGrouper implements the deterministic one-group-per-chunk policy:
// every chunk pkg/semgroup produced becomes its own commit, in the order
// semgroup emitted them. It ignores guidance entirely.
type DefaultGrouper struct{}

// GroupChunks implements LogicalGrouper.
func (DefaultGrouper) GroupChunks(_ context.Context, chunks []chunk.Chunk, _ string, onProgress ProgressFunc) ([]CommitGroup, error) {
	groups := make([]CommitGroup, len(chunks))

	for i, c := range chunks {
		groups[i] = CommitGroup{Chunks: []chunk.Chunk{c}, Message: defaultMessage(c)}
		if onProgress != nil {
			onProgress(i+1, len(chunks))
		}
	}

	return groups, nil
}

func defaultMessage(c chunk.Chunk) string {
	path := string(c.CanonicalPath())
	switch c.Kind() {
	case chunk.KindEmptyAdd:
		return fmt.Sprintf("Add %s", path)
	case chunk.KindDelete:
		return fmt.Sprintf("Remove %s", path)
	case chunk.KindRename:
		r := c.(*chunk.Rename)
		return fmt.Sprintf("Rename %s to %s", r.OldPath, r.NewPath)
	case chunk.KindComposite:
		return fmt.Sprintf("Update %s", path)
	default:
		return fmt.Sprintf("Update %s", path)
	}
}

// OrderGroups topologically orders commit groups so that any group
// modifying a path is scheduled before a later group that renames that same
// path away, preserving the dependency the synthesizer's sequential tree
// application relies on. Groups with no such dependency keep their
// relative input order. If a dependency cycle is detected (which should
// not happen for well-formed chunk sets), OrderGroups returns the input
// unchanged rather than fail the pipeline.
func OrderGroups(groups []CommitGroup) []CommitGroup {
	if len(groups) <= 1 {
		return groups
	}

	g := toposort.NewGraph()

	nodeName := func(i int) string { return fmt.Sprintf("group-%d", i) }

	for i := range groups {
		g.AddNode(nodeName(i))
	}

	firstTouch := make(map[string]int)
	for i, grp := range groups {
		for _, c := range grp.Chunks {
			for _, leaf := range chunk.Flatten(c) {
				path := string(leaf.CanonicalPath())
				if path == "" {
					continue
				}
				if _, ok := firstTouch[path]; !ok {
					firstTouch[path] = i
				}
			}
		}
	}

	for i, grp := range groups {
		for _, c := range grp.Chunks {
			for _, leaf := range chunk.Flatten(c) {
				ren, ok := leaf.(*chunk.Rename)
				if !ok {
					continue
				}
				if j, ok := firstTouch[string(ren.OldPath)]; ok && j != i {
					g.AddEdge(nodeName(j), nodeName(i))
				}
			}
		}
	}

	order, ok := g.Toposort()
	if !ok {
		return groups
	}

	out := make([]CommitGroup, 0, len(groups))
	for _, name := range order {
		var idx int
		if _, err := fmt.Sscanf(name, "group-%d", &idx); err != nil {
			return groups
		}
		out = append(out, groups[idx])
	}

	return out
}
