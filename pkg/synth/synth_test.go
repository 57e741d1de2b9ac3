package synth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestory-build/gitsynth/pkg/chunk"
	"github.com/codestory-build/gitsynth/pkg/gitplumb"
	"github.com/codestory-build/gitsynth/pkg/logigroup"
)

func TestExecutePlanBuildsLinearHistory(t *testing.T) {
	driver, repoDir := gitplumb.NewTestRepo(t)
	ctx := context.Background()

	gitplumb.WriteFile(t, repoDir, "a.txt", []byte("one\ntwo\nthree\n"))
	base := gitplumb.CommitAll(t, driver, repoDir, "base")

	groups := []logigroup.CommitGroup{
		{
			Message: "replace line two",
			Chunks: []chunk.Chunk{
				&chunk.Standard{
					OldPath: []byte("a.txt"), NewPath: []byte("a.txt"),
					Old: chunk.LineRange{Start: 2, Len: 1}, New: chunk.LineRange{Start: 2, Len: 1},
					OldLines: [][]byte{[]byte("two")},
					NewLines: [][]byte{[]byte("TWO")},
				},
			},
		},
		{
			Message: "add a new file",
			Chunks: []chunk.Chunk{
				&chunk.EmptyAdd{Path: []byte("b.txt")},
			},
		},
	}

	synth := NewSynthesizer(driver)
	results, err := synth.ExecutePlan(ctx, groups, string(base), "main", Options{
		AuthorName: "Synth Bot", AuthorMail: "synth@example.com", AuthorDate: "1700000000 +0000",
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	firstParent, err := driver.RevParse(ctx, string(results[0].Hash)+"^")
	require.NoError(t, err)
	require.Equal(t, base, firstParent)

	secondParent, err := driver.RevParse(ctx, string(results[1].Hash)+"^")
	require.NoError(t, err)
	require.Equal(t, results[0].Hash, secondParent)

	tip, err := driver.RevParse(ctx, "refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, results[1].Hash, tip)

	content, err := driver.CatFilePretty(ctx, string(results[1].Hash)+":a.txt")
	require.NoError(t, err)
	require.Equal(t, "one\nTWO\nthree\n", string(content))
}

func TestExecutePlanFailureLeavesRefUntouched(t *testing.T) {
	driver, repoDir := gitplumb.NewTestRepo(t)
	ctx := context.Background()

	gitplumb.WriteFile(t, repoDir, "a.txt", []byte("hello\n"))
	base := gitplumb.CommitAll(t, driver, repoDir, "base")

	// A Standard chunk whose NewPath has no corresponding base entry nor
	// prior EmptyAdd still builds (applying against empty original
	// content), so force a real failure via a canceled context instead.
	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()

	synth := NewSynthesizer(driver)
	_, err := synth.ExecutePlan(cancelCtx, []logigroup.CommitGroup{
		{Message: "doomed", Chunks: []chunk.Chunk{&chunk.EmptyAdd{Path: []byte("c.txt")}}},
	}, string(base), "main", Options{})
	require.Error(t, err)

	tip, err := driver.RevParse(ctx, "refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, base, tip)
}
