// Package semgroup merges chunks that touch the same fully-qualified name,
// the same defined symbol, or the same structural scope into a single
// Composite, using a union-find over chunk indices. Chunks with a nil
// signature (renames, binary files, unparsable languages) are never merged
// by this pass — they stay singleton groups, ordered the same as their
// mechanical input.
package semgroup

import (
	"github.com/codestory-build/gitsynth/pkg/chunk"
	"github.com/codestory-build/gitsynth/pkg/label"
)

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}

	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}

	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// Group merges chunks whose signatures share a fully-qualified name, a
// defined symbol, or a structural scope, returning one Chunk per resulting
// group in first-occurrence order. Groups of size 1 are returned as-is
// (never wrapped); groups of size >1 become a *chunk.Composite with
// children in their original relative order.
func Group(annotated []label.AnnotatedChunk) []chunk.Chunk {
	n := len(annotated)
	if n == 0 {
		return nil
	}

	uf := newUnionFind(n)
	firstSeen := make(map[string]int)

	for i, ac := range annotated {
		if ac.Signature == nil {
			continue
		}

		for _, key := range signatureKeys(ac.Signature) {
			if j, ok := firstSeen[key]; ok {
				uf.union(i, j)
			} else {
				firstSeen[key] = i
			}
		}
	}

	groupOrder := make([]int, 0, n)
	members := make(map[int][]int)

	for i := 0; i < n; i++ {
		root := uf.find(i)
		if _, exists := members[root]; !exists {
			groupOrder = append(groupOrder, root)
		}
		members[root] = append(members[root], i)
	}

	out := make([]chunk.Chunk, 0, len(groupOrder))

	for _, root := range groupOrder {
		idxs := members[root]
		if len(idxs) == 1 {
			out = append(out, annotated[idxs[0]].Chunk)
			continue
		}

		children := make([]chunk.Chunk, len(idxs))
		for i, idx := range idxs {
			children[i] = annotated[idx].Chunk
		}
		out = append(out, &chunk.Composite{Children: children})
	}

	return out
}

// signatureKeys returns the set of grouping keys a signature contributes:
// one per fully-qualified name (old and new sides), one per filtered
// defined symbol, and one per structural scope name. Using the *filtered*
// defined/extern sets (comment-only lines excluded) is the Open Question
// decision recorded in DESIGN.md: two chunks that only happen to mention
// the same identifier inside a comment should not be forced together.
func signatureKeys(sig *label.Signature) []string {
	var keys []string

	for _, fqn := range sig.OldFQNs {
		keys = append(keys, "fqn:"+fqn.FQN)
	}
	for _, fqn := range sig.NewFQNs {
		keys = append(keys, "fqn:"+fqn.FQN)
	}
	for _, s := range sig.DefinedFiltered {
		keys = append(keys, "def:"+s)
	}
	for _, s := range sig.OldScopes {
		keys = append(keys, "scope:"+s)
	}
	for _, s := range sig.NewScopes {
		keys = append(keys, "scope:"+s)
	}

	return keys
}
