// Package scopemap builds a per-file forest of lexical scopes from the
// scope matches pkg/langquery produces, and answers lowest-common-ancestor
// queries over line ranges. The forest is arena-indexed ([]ScopeNode
// addressed by ScopeID) rather than pointer-linked so the whole structure
// can be copied, serialized, or handed across goroutines without pointer
// chasing.
package scopemap

import "sort"

// ScopeID indexes into a Forest's Nodes slice. RootID is the implicit
// whole-file scope every real node is (transitively) parented under.
type ScopeID int32

// RootID is the sentinel id for the file-level (no enclosing) scope.
const RootID ScopeID = -1

// ScopeNode is one lexical scope: a named, line-bounded region that may
// nest inside another.
type ScopeNode struct {
	ID       ScopeID
	Name     string // the scope_queries match name, e.g. "function", "class"
	Start    int    // 1-indexed, inclusive
	End      int    // 1-indexed, inclusive
	Parent   ScopeID
	Children []ScopeID
}

// Contains reports whether line range [start,end] falls entirely within n.
func (n ScopeNode) Contains(start, end int) bool {
	return n.Start <= start && end <= n.End
}

// Forest is the arena of scopes for a single parsed file.
type Forest struct {
	Nodes []ScopeNode
}

// ScopeInput is the minimal shape Build needs from a langquery.ScopeMatch,
// decoupling this package from langquery's concrete type.
type ScopeInput struct {
	Name  string
	Start int
	End   int
}

// Build constructs the scope forest for one file from its unordered scope
// matches. Matches are first sorted by (Start asc, End desc) so that outer
// scopes are always processed before the inner scopes they contain — the
// same ordering pc-coder's tree-code-chunker buildScopeTree relies on — and
// then a simple ancestor-stack walk assigns each node its parent.
func Build(inputs []ScopeInput) *Forest {
	sorted := make([]ScopeInput, len(inputs))
	copy(sorted, inputs)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})

	f := &Forest{Nodes: make([]ScopeNode, 0, len(sorted))}

	var stack []ScopeID

	for _, in := range sorted {
		id := ScopeID(len(f.Nodes))
		node := ScopeNode{ID: id, Name: in.Name, Start: in.Start, End: in.End, Parent: RootID}

		for len(stack) > 0 {
			top := f.Nodes[stack[len(stack)-1]]
			if top.Contains(in.Start, in.End) {
				break
			}
			stack = stack[:len(stack)-1]
		}

		if len(stack) > 0 {
			parentID := stack[len(stack)-1]
			node.Parent = parentID
			f.Nodes[parentID].Children = append(f.Nodes[parentID].Children, id)
		}

		f.Nodes = append(f.Nodes, node)
		stack = append(stack, id)
	}

	return f
}

// LCA returns the innermost scope fully containing [start,end], or RootID
// if no registered scope contains the whole range (the range spans
// file-level code, or crosses scope boundaries).
func (f *Forest) LCA(start, end int) ScopeID {
	best := RootID
	bestSpan := -1

	for _, n := range f.Nodes {
		if !n.Contains(start, end) {
			continue
		}

		span := n.End - n.Start
		if best == RootID || span < bestSpan {
			best = n.ID
			bestSpan = span
		}
	}

	return best
}

// AncestorChain returns scope names from the outermost enclosing scope down
// to id itself (id's own name last), the ordered "named scope stack" FQN
// construction walks.
func (f *Forest) AncestorChain(id ScopeID) []string {
	if id == RootID {
		return nil
	}

	var chain []string
	for cur := id; cur != RootID; {
		node := f.Nodes[cur]
		chain = append([]string{node.Name}, chain...)
		cur = node.Parent
	}

	return chain
}

// NamedScopesForLine returns the ancestor chain of the innermost scope
// containing line (treated as a zero-length [line,line] range).
func (f *Forest) NamedScopesForLine(line int) []string {
	return f.AncestorChain(f.LCA(line, line))
}
