package logigroup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestory-build/gitsynth/pkg/chunk"
)

func TestDefaultGrouperOneGroupPerChunk(t *testing.T) {
	chunks := []chunk.Chunk{
		&chunk.EmptyAdd{Path: []byte("a.go")},
		&chunk.Delete{Path: []byte("b.go")},
	}

	var progressed []int
	groups, err := DefaultGrouper{}.GroupChunks(context.Background(), chunks, "", func(done, total int) {
		progressed = append(progressed, done)
		require.Equal(t, 2, total)
	})

	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, "Add a.go", groups[0].Message)
	require.Equal(t, "Remove b.go", groups[1].Message)
	require.Equal(t, []int{1, 2}, progressed)
}

func TestOrderGroupsOrdersModificationBeforeRename(t *testing.T) {
	modifyOld := CommitGroup{Chunks: []chunk.Chunk{&chunk.Standard{
		OldPath: []byte("old.go"), NewPath: []byte("old.go"),
		Old: chunk.LineRange{Start: 1, Len: 1}, New: chunk.LineRange{Start: 1, Len: 1},
	}}}
	rename := CommitGroup{Chunks: []chunk.Chunk{&chunk.Rename{OldPath: []byte("old.go"), NewPath: []byte("new.go")}}}

	// Input order deliberately reversed: rename first, modification second.
	ordered := OrderGroups([]CommitGroup{rename, modifyOld})

	require.Equal(t, modifyOld, ordered[0])
	require.Equal(t, rename, ordered[1])
}

func TestOrderGroupsNoDependencyPreservesInputOrder(t *testing.T) {
	g1 := CommitGroup{Chunks: []chunk.Chunk{&chunk.EmptyAdd{Path: []byte("a.go")}}}
	g2 := CommitGroup{Chunks: []chunk.Chunk{&chunk.EmptyAdd{Path: []byte("b.go")}}}

	ordered := OrderGroups([]CommitGroup{g1, g2})
	require.Equal(t, []CommitGroup{g1, g2}, ordered)
}
