package mechchunk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestory-build/gitsynth/pkg/chunk"
)

func TestMergeBlankNeighborsAttachesToFollowing(t *testing.T) {
	real1 := &chunk.Standard{NewLines: [][]byte{[]byte("a()")}}
	blank := &chunk.Standard{NewLines: [][]byte{[]byte("")}}
	real2 := &chunk.Standard{NewLines: [][]byte{[]byte("b()")}}

	out := MergeBlankNeighbors([]chunk.Chunk{real1, blank, real2})
	require.Len(t, out, 2)
	require.Equal(t, real1, out[0])

	comp, ok := out[1].(*chunk.Composite)
	require.True(t, ok)
	require.Equal(t, []chunk.Chunk{blank, real2}, comp.Children)
}

func TestMergeBlankNeighborsTrailingRunAttachesToPreceding(t *testing.T) {
	real1 := &chunk.Standard{NewLines: [][]byte{[]byte("a()")}}
	blank := &chunk.Standard{NewLines: [][]byte{[]byte("")}}

	out := MergeBlankNeighbors([]chunk.Chunk{real1, blank})
	require.Len(t, out, 1)

	comp, ok := out[0].(*chunk.Composite)
	require.True(t, ok)
	require.Equal(t, []chunk.Chunk{real1, blank}, comp.Children)
}
