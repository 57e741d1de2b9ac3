package chunk

import "github.com/codestory-build/gitsynth/pkg/unidiff"

// FromFileDiff builds the chunks for one parsed file diff: a Rename chunk
// when the path changed, plus one Standard/EmptyAdd/Delete chunk per hunk
// (or per atomic split of a hunk — see SplitAtomic).
func FromFileDiff(fd *unidiff.FileDiff) []Chunk {
	var out []Chunk

	if fd.IsRename && !hasContentHunks(fd) {
		out = append(out, &Rename{OldPath: fd.OldPath, NewPath: fd.NewPath, Similarity: fd.RenameSimilarity})
		return out
	}

	if fd.IsRename {
		out = append(out, &Rename{OldPath: fd.OldPath, NewPath: fd.NewPath, Similarity: fd.RenameSimilarity})
	}

	if fd.IsNewFile && len(fd.Hunks) == 0 {
		out = append(out, &EmptyAdd{Path: fd.NewPath})
		return out
	}

	if fd.IsDeletedFile && allHunksPureRemoval(fd) {
		var oldLines [][]byte
		for _, h := range fd.Hunks {
			for _, l := range h.Lines {
				if l.Op == unidiff.LineRemove {
					oldLines = append(oldLines, l.Text)
				}
			}
		}
		out = append(out, &Delete{Path: fd.OldPath, OldLines: oldLines})
		return out
	}

	for _, h := range fd.Hunks {
		out = append(out, SplitAtomic(fd, h)...)
	}

	return out
}

func hasContentHunks(fd *unidiff.FileDiff) bool {
	return len(fd.Hunks) > 0
}

func allHunksPureRemoval(fd *unidiff.FileDiff) bool {
	for _, h := range fd.Hunks {
		if h.NewLen != 0 {
			return false
		}
	}
	return true
}

// SplitAtomic decomposes a single hunk into the smallest set of Standard
// chunks that still each represent a single coherent old-range/new-range
// replacement, pairing removed and added lines by relative position within
// the hunk — the same two-pointer scheme used to keep a replace-hunk from
// being treated as one indivisible unit when its lines are logically
// independent edits.
func SplitAtomic(fd *unidiff.FileDiff, h unidiff.Hunk) []Chunk {
	removed := make([]unidiff.Line, 0, len(h.Lines))
	added := make([]unidiff.Line, 0, len(h.Lines))

	for _, l := range h.Lines {
		switch l.Op {
		case unidiff.LineRemove:
			removed = append(removed, l)
		case unidiff.LineAdd:
			added = append(added, l)
		}
	}

	if len(removed) == 0 && len(added) == 0 {
		return nil
	}

	// Pure addition or pure removal: one atomic chunk per contiguous run,
	// nothing to pair. A pure-addition header names the old line the new
	// lines follow, so the empty old range starts one line after it.
	if len(removed) == 0 {
		return []Chunk{&Standard{
			OldPath: fd.OldPath, NewPath: fd.NewPath,
			Old:          LineRange{Start: h.OldStart + 1, Len: 0},
			New:          LineRange{Start: h.NewStart, Len: len(added)},
			NewLines:     linesText(added),
			NewNoNewline: added[len(added)-1].NoNewline,
		}}
	}

	if len(added) == 0 {
		return []Chunk{&Standard{
			OldPath: fd.OldPath, NewPath: fd.NewPath,
			Old:      LineRange{Start: h.OldStart, Len: len(removed)},
			New:      LineRange{Start: h.NewStart, Len: 0},
			OldLines: linesText(removed),
		}}
	}

	// Replacement hunk: pair lines by index, one atomic Standard chunk per
	// pair, and one further chunk per surplus line on the longer side.
	n := len(removed)
	if len(added) > n {
		n = len(added)
	}

	chunks := make([]Chunk, 0, n)

	for i := 0; i < n; i++ {
		oldLen, newLen := 0, 0
		var oldText, newText [][]byte
		var newNoNewline bool

		if i < len(removed) {
			oldLen = 1
			oldText = [][]byte{removed[i].Text}
		}

		if i < len(added) {
			newLen = 1
			newText = [][]byte{added[i].Text}
			if i == len(added)-1 {
				newNoNewline = added[i].NoNewline
			}
		}

		chunks = append(chunks, &Standard{
			OldPath: fd.OldPath, NewPath: fd.NewPath,
			Old:          LineRange{Start: h.OldStart + i, Len: oldLen},
			New:          LineRange{Start: h.NewStart + i, Len: newLen},
			OldLines:     oldText,
			NewLines:     newText,
			NewNoNewline: newNoNewline,
		})
	}

	return chunks
}

func linesText(lines []unidiff.Line) [][]byte {
	out := make([][]byte, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
