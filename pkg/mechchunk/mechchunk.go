// Package mechchunk performs mechanical (non-semantic) chunk shaping: it
// takes the atomic chunks pkg/chunk produces for a file diff and merges any
// blank/whitespace-only chunk into its neighboring real chunk, so a lone
// blank-line edit never shows up as its own commit-worthy unit. This is the
// same "group by predicate, prefer the following neighbor" rule the
// original atomic chunker applies to runs of context-only hunk pieces.
package mechchunk

import (
	"bytes"

	"github.com/codestory-build/gitsynth/pkg/chunk"
)

// IsBlank reports whether a chunk carries no non-whitespace content change:
// every old and new line (if any) is empty once trimmed.
func IsBlank(c chunk.Chunk) bool {
	std, ok := c.(*chunk.Standard)
	if !ok {
		return false
	}

	for _, l := range std.OldLines {
		if len(bytes.TrimSpace(l)) != 0 {
			return false
		}
	}

	for _, l := range std.NewLines {
		if len(bytes.TrimSpace(l)) != 0 {
			return false
		}
	}

	return true
}

// MergeBlankNeighbors walks chunks in file order and folds every maximal
// run of blank chunks into the chunk that follows it (or, if the run sits
// at the end of the sequence with nothing following, into the chunk that
// precedes it). Folded runs become a *chunk.Composite in original relative
// order: the blank chunks come before the chunk that follows them, or after
// the chunk that precedes a trailing run.
func MergeBlankNeighbors(chunks []chunk.Chunk) []chunk.Chunk {
	if len(chunks) == 0 {
		return nil
	}

	out := make([]chunk.Chunk, 0, len(chunks))

	i := 0
	for i < len(chunks) {
		if !IsBlank(chunks[i]) {
			out = append(out, chunks[i])
			i++
			continue
		}

		runStart := i
		for i < len(chunks) && IsBlank(chunks[i]) {
			i++
		}
		run := chunks[runStart:i]

		if i < len(chunks) {
			// Attach the blank run to the following real chunk.
			children := append(append([]chunk.Chunk{}, run...), chunks[i])
			out = append(out, &chunk.Composite{Children: children})
			i++
			continue
		}

		// Blank run at the very end: attach to the preceding real chunk.
		if len(out) > 0 {
			prev := out[len(out)-1]
			out[len(out)-1] = &chunk.Composite{Children: append([]chunk.Chunk{prev}, run...)}
		} else {
			out = append(out, &chunk.Composite{Children: append([]chunk.Chunk{}, run...)})
		}
	}

	return out
}
