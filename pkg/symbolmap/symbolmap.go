// Package symbolmap derives per-line symbol tables from a parsed file:
// which symbols a line defines, which it merely references, and whether a
// line is pure comment text (and so should be excluded from the filtered
// signature accumulators pkg/label builds on top).
package symbolmap

import (
	"sort"

	"github.com/codestory-build/gitsynth/pkg/langquery"
)

// SymbolMap is the per-file symbol/comment index.
type SymbolMap struct {
	// Defined maps a 1-indexed line to the symbol names that line defines.
	Defined map[int][]string
	// Extern maps a 1-indexed line to the symbol names that line
	// references without defining.
	Extern map[int][]string
	// PureComment is the set of 1-indexed lines that contain only comment
	// text (no code token of any kind).
	PureComment map[int]bool
}

// commentScopeName is the conventional scope_queries name a language config
// uses to mark comment regions; Build treats any scope with this name as
// comment, matching the convention DefaultConfigs would use if it added
// comment queries.
const commentScopeName = "comment"

// Build derives a SymbolMap from a parsed file's token matches and scope
// matches.
func Build(pf *langquery.ParsedFile) *SymbolMap {
	sm := &SymbolMap{
		Defined:     make(map[int][]string),
		Extern:      make(map[int][]string),
		PureComment: make(map[int]bool),
	}

	codeLines := make(map[int]bool)

	for _, tok := range pf.Tokens {
		codeLines[tok.Line] = true

		if tok.Defines {
			sm.Defined[tok.Line] = appendUnique(sm.Defined[tok.Line], tok.Text)
		} else {
			sm.Extern[tok.Line] = appendUnique(sm.Extern[tok.Line], tok.Text)
		}
	}

	commentLines := make(map[int]bool)
	for _, sc := range pf.Scopes {
		if sc.Name != commentScopeName {
			continue
		}
		for l := sc.StartLine; l <= sc.EndLine; l++ {
			commentLines[l] = true
		}
	}

	for l := range commentLines {
		if !codeLines[l] {
			sm.PureComment[l] = true
		}
	}

	return sm
}

func appendUnique(slice []string, s string) []string {
	for _, existing := range slice {
		if existing == s {
			return slice
		}
	}
	return append(slice, s)
}

// DefinedInRange returns the deduplicated, sorted union of symbols defined
// across [start,end].
func (sm *SymbolMap) DefinedInRange(start, end int) []string {
	return unionInRange(sm.Defined, start, end)
}

// ExternInRange returns the deduplicated, sorted union of symbols
// referenced (not defined) across [start,end].
func (sm *SymbolMap) ExternInRange(start, end int) []string {
	return unionInRange(sm.Extern, start, end)
}

func unionInRange(m map[int][]string, start, end int) []string {
	set := make(map[string]bool)
	for l := start; l <= end; l++ {
		for _, s := range m[l] {
			set[s] = true
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}

	sort.Strings(out)

	return out
}

// IsPureCommentRange reports whether every line in [start,end] is a pure
// comment line.
func (sm *SymbolMap) IsPureCommentRange(start, end int) bool {
	for l := start; l <= end; l++ {
		if !sm.PureComment[l] {
			return false
		}
	}
	return true
}
