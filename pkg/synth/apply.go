package synth

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"sort"

	"github.com/codestory-build/gitsynth/pkg/chunk"
)

// memoryThreshold is the original-content size above which content
// replacement streams through a temp file instead of a single in-memory
// buffer, keeping peak memory bounded for very large files.
const memoryThreshold = 1024 * 1024

// applyResult is the output of applyStandards: either inline content (small
// files) or a path to a temp file holding the result (large files), never
// both. Callers must remove Path once they're done hashing it.
type applyResult struct {
	Content []byte
	Path    string
}

// Empty reports whether the resulting file has no content at all, the
// signal that a Standard-only file (no EmptyAdd/Delete chunk involved) has
// had its last content removed and should drop out of the tree.
func (r applyResult) Empty() (bool, error) {
	if r.Path == "" {
		return len(r.Content) == 0, nil
	}

	info, err := os.Stat(r.Path)
	if err != nil {
		return false, err
	}
	return info.Size() == 0, nil
}

func (r applyResult) cleanup() {
	if r.Path != "" {
		os.Remove(r.Path)
	}
}

// applyStandards replaces the line ranges named by standards within
// original. Chunks are applied in ascending old-line order; standards must
// not overlap (pkg/chunk's atomic split guarantees this for chunks drawn
// from a single hunk, and the hunks of one file's diff never overlap).
//
// Content below memoryThreshold is built in a single buffer; larger content
// streams through a temp file so peak memory stays bounded regardless of
// file size.
func applyStandards(original []byte, standards []*chunk.Standard) (applyResult, error) {
	if len(original) == 0 {
		var buf bytes.Buffer
		if err := writeAdditionsOnly(&buf, standards); err != nil {
			return applyResult{}, err
		}
		return applyResult{Content: buf.Bytes()}, nil
	}

	sorted := sortedByOldStart(standards)

	if len(original) < memoryThreshold {
		var buf bytes.Buffer
		if err := applyChanges(&buf, original, sorted); err != nil {
			return applyResult{}, err
		}
		return applyResult{Content: buf.Bytes()}, nil
	}

	return applyViaDisk(original, sorted)
}

// applyViaDisk is the disk-streaming counterpart of applyStandards, used
// above memoryThreshold. It returns the path to a new temp file holding the
// result; the caller must remove it once the content has been hashed.
func applyViaDisk(original []byte, sorted []*chunk.Standard) (applyResult, error) {
	tmp, err := os.CreateTemp("", "gitsynth-apply-*")
	if err != nil {
		return applyResult{}, err
	}
	path := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := applyChanges(w, original, sorted); err != nil {
		tmp.Close()
		os.Remove(path)
		return applyResult{}, err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(path)
		return applyResult{}, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return applyResult{}, err
	}

	return applyResult{Path: path}, nil
}

func sortedByOldStart(standards []*chunk.Standard) []*chunk.Standard {
	sorted := make([]*chunk.Standard, len(standards))
	copy(sorted, standards)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Old.Start < sorted[j].Old.Start })
	return sorted
}

func writeAdditionsOnly(w io.Writer, sorted []*chunk.Standard) error {
	for _, s := range sorted {
		for i, line := range s.NewLines {
			if _, err := w.Write(line); err != nil {
				return err
			}
			if i == len(s.NewLines)-1 && s.NewNoNewline {
				continue
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyChanges walks original line-by-line via a buffered reader, copying
// unmodified lines verbatim and splicing in each chunk's new content at its
// old-line position while skipping the lines it replaces. The same walk
// serves both the in-memory and disk-streaming callers; only the
// destination writer differs.
func applyChanges(w io.Writer, original []byte, sorted []*chunk.Standard) error {
	reader := bufio.NewReader(bytes.NewReader(original))
	cursor := 1

	for _, s := range sorted {
		for cursor < s.Old.Start {
			line, err := reader.ReadString('\n')
			if len(line) > 0 {
				if _, werr := io.WriteString(w, line); werr != nil {
					return werr
				}
			}
			cursor++
			if err != nil {
				break
			}
		}

		for i, nl := range s.NewLines {
			if _, err := w.Write(nl); err != nil {
				return err
			}
			if i == len(s.NewLines)-1 && s.NewNoNewline {
				continue
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}

		for i := 0; i < s.Old.Len; i++ {
			if _, err := reader.ReadString('\n'); err != nil {
				break
			}
			cursor++
		}
	}

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			if _, werr := io.WriteString(w, line); werr != nil {
				return werr
			}
		}
		if err != nil {
			break
		}
	}

	return nil
}
