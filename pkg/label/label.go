// Package label computes a semantic "signature" for each chunk: which
// languages, structural scopes, fully-qualified names, and symbols it
// touches on either side of the edit. pkg/semgroup unions chunks whose
// signatures overlap; a chunk with a nil signature (binary file, unparsable
// language, pure rename) is never merged by shared semantics, only by
// mechanical adjacency upstream in pkg/mechchunk.
package label

import (
	"sort"
	"strings"

	"github.com/codestory-build/gitsynth/pkg/chunk"
	"github.com/codestory-build/gitsynth/pkg/scopemap"
	"github.com/codestory-build/gitsynth/pkg/symbolmap"
)

// TypedFQN is one fully-qualified name observed in a chunk's range, tagged
// with the kind of scope it names (function, class, method, ...).
type TypedFQN struct {
	FQN  string
	Kind string
}

// Signature is a chunk's semantic fingerprint. Each slice field is
// deduplicated and sorted so two signatures can be compared for overlap
// with simple set intersection.
type Signature struct {
	Languages []string

	OldScopes []string
	NewScopes []string

	OldFQNs []TypedFQN
	NewFQNs []TypedFQN

	// Defined/Extern are the raw symbol unions across both sides of the
	// edit. DefinedFiltered/ExternFiltered exclude any line that is a pure
	// comment line — pkg/semgroup's default grouping keys on the filtered
	// variant so two chunks that only share a mention inside a comment
	// don't get merged together.
	Defined         []string
	Extern          []string
	DefinedFiltered []string
	ExternFiltered  []string
}

// Merge combines sig and other into a new Signature representing a
// composite of both (the union-of-parts rule a Composite chunk's signature
// follows).
func (sig *Signature) Merge(other *Signature) *Signature {
	if sig == nil {
		return other
	}
	if other == nil {
		return sig
	}

	return &Signature{
		Languages:       unionStrings(sig.Languages, other.Languages),
		OldScopes:       unionStrings(sig.OldScopes, other.OldScopes),
		NewScopes:       unionStrings(sig.NewScopes, other.NewScopes),
		OldFQNs:         unionFQNs(sig.OldFQNs, other.OldFQNs),
		NewFQNs:         unionFQNs(sig.NewFQNs, other.NewFQNs),
		Defined:         unionStrings(sig.Defined, other.Defined),
		Extern:          unionStrings(sig.Extern, other.Extern),
		DefinedFiltered: unionStrings(sig.DefinedFiltered, other.DefinedFiltered),
		ExternFiltered:  unionStrings(sig.ExternFiltered, other.ExternFiltered),
	}
}

// FromSignatures folds a slice of (possibly nil) signatures into one,
// mirroring Signature.from_signatures: nils are skipped, an all-nil input
// yields nil.
func FromSignatures(sigs []*Signature) *Signature {
	var acc *Signature
	for _, s := range sigs {
		if s == nil {
			continue
		}
		acc = acc.Merge(s)
	}
	return acc
}

// AnnotatedChunk pairs a chunk with its computed signature (nil if no
// analysis context was available for either side).
type AnnotatedChunk struct {
	Chunk     chunk.Chunk
	Signature *Signature
}

// FileContext is everything a single file's parse results contribute to
// signature computation.
type FileContext struct {
	Path     string
	Language string
	Forest   *scopemap.Forest
	Symbols  *symbolmap.SymbolMap
}

// HasAnalysisContext reports whether fc carries usable parse results (a
// nil *FileContext, or one for an unsupported/unparsed language, has none).
func HasAnalysisContext(fc *FileContext) bool {
	return fc != nil && fc.Forest != nil && fc.Symbols != nil
}

func unionStrings(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		set[s] = true
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}

	sort.Strings(out)

	return out
}

func unionFQNs(a, b []TypedFQN) []TypedFQN {
	set := make(map[TypedFQN]bool, len(a)+len(b))
	for _, f := range a {
		set[f] = true
	}
	for _, f := range b {
		set[f] = true
	}

	out := make([]TypedFQN, 0, len(set))
	for f := range set {
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].FQN < out[j].FQN })

	return out
}

// fqnsForRange walks [start,end] line by line, tracking the named-scope
// stack (outer to inner) for each line, and emits one TypedFQN each time
// that stack changes from the previous line. The stack holds each scope's
// query name (a kind such as "function"), not the identifier the scope
// declares, so two sibling scopes of the same kind produce the same FQN and
// it is emitted once.
func fqnsForRange(path string, forest *scopemap.Forest, start, end int) []TypedFQN {
	if forest == nil || start > end {
		return nil
	}

	var out []TypedFQN
	seen := make(map[string]bool)
	var prevChain []string

	for line := start; line <= end; line++ {
		chain := forest.NamedScopesForLine(line)

		if !chainsEqual(chain, prevChain) {
			if len(chain) > 0 {
				fqn := path + ":" + strings.Join(chain, ".")
				if !seen[fqn] {
					seen[fqn] = true
					out = append(out, TypedFQN{FQN: fqn, Kind: chain[len(chain)-1]})
				}
			}
			prevChain = chain
		}
	}

	return out
}

func chainsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// scopesForRange returns the deduplicated set of scope names (not full
// chains) touched anywhere in [start,end] — the "structural scope" half of
// a signature, coarser than the FQN half.
func scopesForRange(forest *scopemap.Forest, start, end int) []string {
	if forest == nil {
		return nil
	}

	set := make(map[string]bool)
	for line := start; line <= end; line++ {
		for _, name := range forest.NamedScopesForLine(line) {
			set[name] = true
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}

	sort.Strings(out)

	return out
}

// sideResult is the analysis derived from one side (old or new) of a
// chunk's line range within a single file's context.
type sideResult struct {
	language        string
	scopes          []string
	fqns            []TypedFQN
	defined         []string
	extern          []string
	definedFiltered []string
	externFiltered  []string
}

// sideSignature computes the half-signature for one side (old or new) of a
// Standard chunk's line range within a single file's context. Returns the
// zero value, ok=false when there is no usable analysis context.
func sideSignature(fc *FileContext, start, end int) (sideResult, bool) {
	if !HasAnalysisContext(fc) || start > end {
		return sideResult{}, false
	}

	defined := fc.Symbols.DefinedInRange(start, end)
	extern := fc.Symbols.ExternInRange(start, end)

	return sideResult{
		language:        fc.Language,
		scopes:          scopesForRange(fc.Forest, start, end),
		fqns:            fqnsForRange(fc.Path, fc.Forest, start, end),
		defined:         defined,
		extern:          extern,
		definedFiltered: filterComments(fc.Symbols, start, end, defined),
		externFiltered:  filterComments(fc.Symbols, start, end, extern),
	}, true
}

func filterComments(sm *symbolmap.SymbolMap, start, end int, symbols []string) []string {
	if sm.IsPureCommentRange(start, end) {
		return nil
	}
	return symbols
}
