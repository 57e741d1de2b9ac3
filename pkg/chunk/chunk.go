// Package chunk turns parsed unified-diff hunks into the atomic, typed
// change units the rest of the pipeline reasons about: single-purpose
// pieces small enough that later stages can regroup them without ever
// needing to re-split a hunk.
package chunk

import "fmt"

// Kind tags which concrete Chunk variant a value holds.
type Kind int

const (
	KindStandard Kind = iota
	KindRename
	KindEmptyAdd
	KindDelete
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindRename:
		return "rename"
	case KindEmptyAdd:
		return "empty_add"
	case KindDelete:
		return "delete"
	case KindComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Chunk is the closed set of change-unit variants the pipeline operates on.
// The unexported marker method keeps the set closed to this package.
type Chunk interface {
	Kind() Kind
	// CanonicalPath is the path later stages key grouping decisions on: the
	// new path for everything except a pure deletion.
	CanonicalPath() []byte
	chunkMarker()
}

// LineRange is a half-open [Start, Start+Len) 1-indexed line span.
type LineRange struct {
	Start int
	Len   int
}

// End returns the exclusive end line.
func (r LineRange) End() int { return r.Start + r.Len }

// Overlaps reports whether r and o share at least one line.
func (r LineRange) Overlaps(o LineRange) bool {
	return r.Start < o.End() && o.Start < r.End()
}

// Standard is an ordinary modification: some old lines replaced by some new
// lines within a single file, at a single contiguous location on each side.
type Standard struct {
	OldPath []byte
	NewPath []byte
	Old     LineRange
	New     LineRange
	// OldLines/NewLines hold the literal removed/added text, without the
	// unified-diff +/- sigil.
	OldLines [][]byte
	NewLines [][]byte
	// NewNoNewline reports that the last entry of NewLines is the target
	// file's final line and that file has no trailing newline after it.
	NewNoNewline bool
}

func (s *Standard) Kind() Kind            { return KindStandard }
func (s *Standard) CanonicalPath() []byte { return s.NewPath }
func (s *Standard) chunkMarker()          {}

func (s *Standard) String() string {
	return fmt.Sprintf("Standard(%s old=%v new=%v)", s.NewPath, s.Old, s.New)
}

// Rename is a path change with no content modification (identical blob on
// both sides, or content changes already captured by sibling Standard
// chunks on the same path pair).
type Rename struct {
	OldPath    []byte
	NewPath    []byte
	Similarity int
}

func (r *Rename) Kind() Kind            { return KindRename }
func (r *Rename) CanonicalPath() []byte { return r.NewPath }
func (r *Rename) chunkMarker()          {}

// EmptyAdd is the addition of a new, zero-byte file.
type EmptyAdd struct {
	Path []byte
}

func (e *EmptyAdd) Kind() Kind            { return KindEmptyAdd }
func (e *EmptyAdd) CanonicalPath() []byte { return e.Path }
func (e *EmptyAdd) chunkMarker()          {}

// Delete is the removal of an entire file.
type Delete struct {
	Path     []byte
	OldLines [][]byte
}

func (d *Delete) Kind() Kind            { return KindDelete }
func (d *Delete) CanonicalPath() []byte { return d.Path }
func (d *Delete) chunkMarker()          {}

// Composite groups several chunks that must travel together (produced by
// the context-only-gap merge in pkg/mechchunk, and by the union-find merge
// in pkg/semgroup). Children are kept in their original relative order.
type Composite struct {
	Children []Chunk
}

func (c *Composite) Kind() Kind { return KindComposite }

func (c *Composite) CanonicalPath() []byte {
	if len(c.Children) == 0 {
		return nil
	}
	return c.Children[0].CanonicalPath()
}

func (c *Composite) chunkMarker() {}

// Flatten returns every non-Composite leaf chunk reachable from c, in
// order. If c is not a Composite, it is returned as the sole element.
func Flatten(c Chunk) []Chunk {
	comp, ok := c.(*Composite)
	if !ok {
		return []Chunk{c}
	}

	var out []Chunk
	for _, child := range comp.Children {
		out = append(out, Flatten(child)...)
	}

	return out
}
