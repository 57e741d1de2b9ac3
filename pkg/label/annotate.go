package label

import "github.com/codestory-build/gitsynth/pkg/chunk"

// FileContexts resolves a path to its analysis context, for both sides of
// the diff (old revision, new revision). A path absent from the map has no
// analysis context (unsupported language, parse failure, binary file).
type FileContexts struct {
	Old map[string]*FileContext
	New map[string]*FileContext
}

func (fcs FileContexts) oldCtx(path string) *FileContext { return fcs.Old[path] }
func (fcs FileContexts) newCtx(path string) *FileContext { return fcs.New[path] }

// AnnotateChunks computes a Signature for every chunk, recursing into
// Composite children and combining their signatures via FromSignatures.
func AnnotateChunks(chunks []chunk.Chunk, fcs FileContexts) []AnnotatedChunk {
	out := make([]AnnotatedChunk, len(chunks))
	for i, c := range chunks {
		out[i] = AnnotatedChunk{Chunk: c, Signature: AnnotateChunk(c, fcs)}
	}
	return out
}

// AnnotateChunk computes a single chunk's signature.
func AnnotateChunk(c chunk.Chunk, fcs FileContexts) *Signature {
	switch v := c.(type) {
	case *chunk.Standard:
		return signatureForStandard(v, fcs)
	case *chunk.EmptyAdd:
		return signatureForWholeFile(fcs.newCtx(string(v.Path)), 1, 1)
	case *chunk.Delete:
		return signatureForWholeFile(fcs.oldCtx(string(v.Path)), 1, len(v.OldLines))
	case *chunk.Rename:
		// A pure rename carries no line-range content signature; grouping
		// on path alone is handled upstream by pkg/semgroup via
		// CanonicalPath, not via Signature.
		return nil
	case *chunk.Composite:
		sigs := make([]*Signature, len(v.Children))
		for i, child := range v.Children {
			sigs[i] = AnnotateChunk(child, fcs)
		}
		return FromSignatures(sigs)
	default:
		return nil
	}
}

func signatureForStandard(s *chunk.Standard, fcs FileContexts) *Signature {
	oldRes, oldOK := sideSignature(fcs.oldCtx(string(s.OldPath)), s.Old.Start, s.Old.End()-1)
	newRes, newOK := sideSignature(fcs.newCtx(string(s.NewPath)), s.New.Start, s.New.End()-1)

	if !oldOK && !newOK {
		return nil
	}

	sig := &Signature{}

	if oldOK {
		sig.Languages = unionStrings(sig.Languages, []string{oldRes.language})
		sig.OldScopes = oldRes.scopes
		sig.OldFQNs = oldRes.fqns
		sig.Defined = unionStrings(sig.Defined, oldRes.defined)
		sig.Extern = unionStrings(sig.Extern, oldRes.extern)
		sig.DefinedFiltered = unionStrings(sig.DefinedFiltered, oldRes.definedFiltered)
		sig.ExternFiltered = unionStrings(sig.ExternFiltered, oldRes.externFiltered)
	}

	if newOK {
		sig.Languages = unionStrings(sig.Languages, []string{newRes.language})
		sig.NewScopes = newRes.scopes
		sig.NewFQNs = newRes.fqns
		sig.Defined = unionStrings(sig.Defined, newRes.defined)
		sig.Extern = unionStrings(sig.Extern, newRes.extern)
		sig.DefinedFiltered = unionStrings(sig.DefinedFiltered, newRes.definedFiltered)
		sig.ExternFiltered = unionStrings(sig.ExternFiltered, newRes.externFiltered)
	}

	return sig
}

func signatureForWholeFile(fc *FileContext, start, end int) *Signature {
	res, ok := sideSignature(fc, start, end)
	if !ok {
		return nil
	}

	return &Signature{
		Languages:       []string{res.language},
		NewScopes:       res.scopes,
		NewFQNs:         res.fqns,
		Defined:         res.defined,
		Extern:          res.extern,
		DefinedFiltered: res.definedFiltered,
		ExternFiltered:  res.externFiltered,
	}
}
