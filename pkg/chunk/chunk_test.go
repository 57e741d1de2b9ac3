package chunk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestory-build/gitsynth/pkg/unidiff"
)

func TestSplitAtomicReplacement(t *testing.T) {
	fd := &unidiff.FileDiff{OldPath: []byte("a.go"), NewPath: []byte("a.go")}
	h := unidiff.Hunk{
		OldStart: 10, OldLen: 2, NewStart: 10, NewLen: 3,
		Lines: []unidiff.Line{
			{Op: unidiff.LineRemove, Text: []byte("old1")},
			{Op: unidiff.LineRemove, Text: []byte("old2")},
			{Op: unidiff.LineAdd, Text: []byte("new1")},
			{Op: unidiff.LineAdd, Text: []byte("new2")},
			{Op: unidiff.LineAdd, Text: []byte("new3")},
		},
	}

	chunks := SplitAtomic(fd, h)
	require.Len(t, chunks, 3)

	first := chunks[0].(*Standard)
	require.Equal(t, 10, first.Old.Start)
	require.Equal(t, 1, first.Old.Len)
	require.Equal(t, 10, first.New.Start)
	require.Equal(t, 1, first.New.Len)

	last := chunks[2].(*Standard)
	require.Equal(t, 0, last.Old.Len)
	require.Equal(t, 1, last.New.Len)
}

func TestSplitAtomicNoNewlinePureAddition(t *testing.T) {
	fd := &unidiff.FileDiff{OldPath: []byte("a.go"), NewPath: []byte("a.go")}
	h := unidiff.Hunk{
		OldStart: 10, OldLen: 0, NewStart: 10, NewLen: 2,
		Lines: []unidiff.Line{
			{Op: unidiff.LineAdd, Text: []byte("new1")},
			{Op: unidiff.LineAdd, Text: []byte("new2"), NoNewline: true},
		},
	}

	chunks := SplitAtomic(fd, h)
	require.Len(t, chunks, 1)

	s := chunks[0].(*Standard)
	require.True(t, s.NewNoNewline)
}

func TestSplitAtomicNoNewlineReplacement(t *testing.T) {
	fd := &unidiff.FileDiff{OldPath: []byte("a.go"), NewPath: []byte("a.go")}
	h := unidiff.Hunk{
		OldStart: 10, OldLen: 1, NewStart: 10, NewLen: 2,
		Lines: []unidiff.Line{
			{Op: unidiff.LineRemove, Text: []byte("old1")},
			{Op: unidiff.LineAdd, Text: []byte("new1")},
			{Op: unidiff.LineAdd, Text: []byte("new2"), NoNewline: true},
		},
	}

	chunks := SplitAtomic(fd, h)
	require.Len(t, chunks, 2)

	first := chunks[0].(*Standard)
	require.False(t, first.NewNoNewline)

	last := chunks[1].(*Standard)
	require.True(t, last.NewNoNewline)
}

func TestFromFileDiffEmptyAdd(t *testing.T) {
	fd := &unidiff.FileDiff{NewPath: []byte("new.go"), IsNewFile: true}
	chunks := FromFileDiff(fd)
	require.Len(t, chunks, 1)
	require.Equal(t, KindEmptyAdd, chunks[0].Kind())
}

func TestFlattenComposite(t *testing.T) {
	leaf1 := &EmptyAdd{Path: []byte("a")}
	leaf2 := &EmptyAdd{Path: []byte("b")}
	c := &Composite{Children: []Chunk{leaf1, &Composite{Children: []Chunk{leaf2}}}}

	flat := Flatten(c)
	require.Equal(t, []Chunk{leaf1, leaf2}, flat)
}
