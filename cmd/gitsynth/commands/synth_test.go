package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestory-build/gitsynth/pkg/gitplumb"
	"github.com/codestory-build/gitsynth/pkg/gitsynth"
	"github.com/codestory-build/gitsynth/pkg/observability"
)

func noopSynthObservabilityInit(_ observability.Config) (observability.Providers, error) {
	return observability.Providers{
		Shutdown: func(_ context.Context) error { return nil },
	}, nil
}

func TestSynthCommand_RequiresBase(t *testing.T) {
	t.Parallel()

	command := newSynthCommandWithDeps(
		func(_ context.Context, _ *gitplumb.Driver, _, _ string, _ gitsynth.Options) (*gitplumb.Hash, error) {
			t.Fatal("runPipeline should not be called without --base")

			return nil, nil
		},
		noopSynthObservabilityInit,
	)

	command.SetArgs([]string{})
	err := command.Execute()
	require.ErrorIs(t, err, errMissingBase)
}

func TestSynthCommand_ForwardsFlagsToOptions(t *testing.T) {
	t.Parallel()

	var gotBase, gotDirty string

	var gotOpts gitsynth.Options

	command := newSynthCommandWithDeps(
		func(_ context.Context, _ *gitplumb.Driver, base, dirty string, opts gitsynth.Options) (*gitplumb.Hash, error) {
			gotBase = base
			gotDirty = dirty
			gotOpts = opts

			return nil, nil
		},
		noopSynthObservabilityInit,
	)

	command.SetArgs([]string{
		"--base", "abc123",
		"--dirty", "def456",
		"--branch", "feature/x",
		"--author-name", "Synth Bot",
		"--author-mail", "synth@example.com",
		"--target-path", "pkg/foo",
	})

	err := command.Execute()
	require.NoError(t, err)
	require.Equal(t, "abc123", gotBase)
	require.Equal(t, "def456", gotDirty)
	require.Equal(t, "feature/x", gotOpts.Branch)
	require.Equal(t, "Synth Bot", gotOpts.AuthorName)
	require.Equal(t, "synth@example.com", gotOpts.AuthorMail)
	require.Equal(t, "pkg/foo", gotOpts.TargetPath)
	require.NotNil(t, gotOpts.Grouper)
}

func TestSynthCommand_NoChangesReportsMessage(t *testing.T) {
	t.Parallel()

	command := newSynthCommandWithDeps(
		func(_ context.Context, _ *gitplumb.Driver, _, _ string, _ gitsynth.Options) (*gitplumb.Hash, error) {
			return nil, nil
		},
		noopSynthObservabilityInit,
	)

	var out bytes.Buffer

	command.SetOut(&out)
	command.SetArgs([]string{"--base", "abc123"})

	err := command.Execute()
	require.NoError(t, err)
	require.Contains(t, out.String(), "no changes")
}
