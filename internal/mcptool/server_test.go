package mcptool_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codestory-build/gitsynth/internal/mcptool"
)

func TestNewServer_ReturnsNonNil(t *testing.T) {
	t.Parallel()

	srv := mcptool.NewServer(mcptool.ServerDeps{})
	require.NotNil(t, srv)
}

func TestNewServer_ToolsRegistered(t *testing.T) {
	t.Parallel()

	srv := mcptool.NewServer(mcptool.ServerDeps{})

	tools := srv.ListToolNames()
	assert.Len(t, tools, 1)
	assert.Contains(t, tools, "gitsynth_run_pipeline")
}

func TestServer_Run_CancelledContext(t *testing.T) {
	t.Parallel()

	srv := mcptool.NewServer(mcptool.ServerDeps{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := srv.Run(ctx)
	require.Error(t, err)
}
