// Package unidiff parses the output of `git diff --no-color --unified=0
// -M<sim>` into typed per-file diffs and hunks. It is a reader only: the
// pipeline never re-serializes a diff back to unified-diff text, and the
// package has no writer.
package unidiff

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/codestory-build/gitsynth/pkg/gitplumb"
)

// LineOp tags a hunk body line by its unified-diff sigil.
type LineOp byte

const (
	LineContext LineOp = ' '
	LineAdd     LineOp = '+'
	LineRemove  LineOp = '-'
)

// Line is one line of a hunk body.
type Line struct {
	Op   LineOp
	Text []byte
	// NoNewline reports that this line is the last line of its side (old
	// for '-'/' ', new for '+'/' ') and that side's blob has no trailing
	// newline after it, per a following "\ No newline at end of file"
	// marker.
	NoNewline bool
}

// Hunk is one `@@ -old,len +new,len @@` section of a file diff.
type Hunk struct {
	OldStart int
	OldLen   int
	NewStart int
	NewLen   int
	Lines    []Line
}

// FileDiff describes all changes to a single path (or path pair, for
// renames) between the two diffed revisions.
type FileDiff struct {
	OldPath []byte
	NewPath []byte
	OldHash gitplumb.Hash
	NewHash gitplumb.Hash
	OldMode string
	NewMode string

	IsRename         bool
	RenameSimilarity int
	IsNewFile        bool
	IsDeletedFile    bool
	IsBinary         bool

	Hunks []Hunk
}

// CanonicalPath returns the path a chunk derived from this diff should be
// keyed on: the new path for additions/modifications/renames, the old path
// for pure deletions.
func (f *FileDiff) CanonicalPath() []byte {
	if f.IsDeletedFile {
		return f.OldPath
	}
	return f.NewPath
}

var (
	diffGitRE    = regexp.MustCompile(`^diff --git a/(.*) b/(.*)$`)
	indexRE      = regexp.MustCompile(`^index ([0-9a-f]+)\.\.([0-9a-f]+)(?: (\d+))?$`)
	oldModeRE    = regexp.MustCompile(`^old mode (\d+)$`)
	newModeRE    = regexp.MustCompile(`^new mode (\d+)$`)
	newFileRE    = regexp.MustCompile(`^new file mode (\d+)$`)
	delFileRE    = regexp.MustCompile(`^deleted file mode (\d+)$`)
	similarityRE = regexp.MustCompile(`^similarity index (\d+)%$`)
	renameFromRE = regexp.MustCompile(`^rename from (.*)$`)
	renameToRE   = regexp.MustCompile(`^rename to (.*)$`)
	hunkHeaderRE = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
	oldPathRE    = regexp.MustCompile(`^--- (?:a/(.*)|(/dev/null))$`)
	newPathRE    = regexp.MustCompile(`^\+\+\+ (?:b/(.*)|(/dev/null))$`)
	binaryRE     = regexp.MustCompile(`^Binary files (a/.*|/dev/null) and (b/.*|/dev/null) differ$`)
)

// Parse reads the full stdout of a `git diff --no-color --unified=0
// -M<sim>` invocation and returns one FileDiff per changed path.
func Parse(raw []byte) ([]FileDiff, error) {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var diffs []FileDiff
	var cur *FileDiff

	flush := func() {
		if cur != nil {
			diffs = append(diffs, *cur)
			cur = nil
		}
	}

	var curHunk *Hunk

	flushHunk := func() {
		if cur != nil && curHunk != nil {
			cur.Hunks = append(cur.Hunks, *curHunk)
			curHunk = nil
		}
	}

	for scanner.Scan() {
		line := scanner.Text()

		if m := diffGitRE.FindStringSubmatch(line); m != nil {
			flushHunk()
			flush()
			cur = &FileDiff{OldPath: []byte(m[1]), NewPath: []byte(m[2])}
			continue
		}

		if cur == nil {
			continue
		}

		switch {
		case similarityRE.MatchString(line):
			m := similarityRE.FindStringSubmatch(line)
			sim, _ := strconv.Atoi(m[1])
			cur.RenameSimilarity = sim
		case renameFromRE.MatchString(line):
			cur.IsRename = true
			cur.OldPath = []byte(renameFromRE.FindStringSubmatch(line)[1])
		case renameToRE.MatchString(line):
			cur.IsRename = true
			cur.NewPath = []byte(renameToRE.FindStringSubmatch(line)[1])
		case newFileRE.MatchString(line):
			cur.IsNewFile = true
			cur.NewMode = newFileRE.FindStringSubmatch(line)[1]
		case delFileRE.MatchString(line):
			cur.IsDeletedFile = true
			cur.OldMode = delFileRE.FindStringSubmatch(line)[1]
		case oldModeRE.MatchString(line):
			cur.OldMode = oldModeRE.FindStringSubmatch(line)[1]
		case newModeRE.MatchString(line):
			cur.NewMode = newModeRE.FindStringSubmatch(line)[1]
		case indexRE.MatchString(line):
			m := indexRE.FindStringSubmatch(line)
			cur.OldHash = gitplumb.Hash(m[1])
			cur.NewHash = gitplumb.Hash(m[2])
			if m[3] != "" {
				cur.OldMode, cur.NewMode = m[3], m[3]
			}
		case binaryRE.MatchString(line):
			cur.IsBinary = true
		case oldPathRE.MatchString(line):
			m := oldPathRE.FindStringSubmatch(line)
			if m[1] != "" {
				cur.OldPath = []byte(m[1])
			}
		case newPathRE.MatchString(line):
			m := newPathRE.FindStringSubmatch(line)
			if m[1] != "" {
				cur.NewPath = []byte(m[1])
			}
		case hunkHeaderRE.MatchString(line):
			flushHunk()

			m := hunkHeaderRE.FindStringSubmatch(line)

			oldStart, _ := strconv.Atoi(m[1])
			oldLen := 1
			if m[2] != "" {
				oldLen, _ = strconv.Atoi(m[2])
			} else if m[1] == "0" {
				oldLen = 0
			}

			newStart, _ := strconv.Atoi(m[3])
			newLen := 1
			if m[4] != "" {
				newLen, _ = strconv.Atoi(m[4])
			} else if m[3] == "0" {
				newLen = 0
			}

			curHunk = &Hunk{OldStart: oldStart, OldLen: oldLen, NewStart: newStart, NewLen: newLen}
		case curHunk != nil && len(line) > 0 && (line[0] == '+' || line[0] == '-' || line[0] == ' '):
			curHunk.Lines = append(curHunk.Lines, Line{Op: LineOp(line[0]), Text: []byte(line[1:])})
		case strings.HasPrefix(line, "\\ No newline at end of file"):
			// Applies to the line immediately above: the last line of
			// whichever side (old/new) that line belongs to has no
			// trailing newline in the underlying blob.
			if curHunk != nil && len(curHunk.Lines) > 0 {
				curHunk.Lines[len(curHunk.Lines)-1].NoNewline = true
			}
		}
	}

	flushHunk()
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan diff: %w", err)
	}

	return diffs, nil
}
