package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codestory-build/gitsynth/pkg/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Repository.RenameSimilarity)
	assert.Equal(t, "git", cfg.Repository.GitBinary)
	assert.Equal(t, "gitsynth", cfg.Synthesis.AuthorName)
	assert.Equal(t, 256, cfg.Synthesis.BatchSize)
	assert.False(t, cfg.Server.Enabled)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	configContent := `
repository:
  rename_similarity: 75
  branch: "release"

synthesis:
  author_name: "Release Bot"
  author_mail: "bot@example.com"
  batch_size: 64

server:
  port: 9000
  host: "127.0.0.1"
`

	tmpDir := t.TempDir()

	tmpFile, err := os.CreateTemp(tmpDir, "test-config-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)
	require.NoError(t, tmpFile.Close())

	cfg, loadErr := config.LoadConfig(tmpFile.Name())
	require.NoError(t, loadErr)

	assert.Equal(t, 75, cfg.Repository.RenameSimilarity)
	assert.Equal(t, "release", cfg.Repository.Branch)
	assert.Equal(t, "Release Bot", cfg.Synthesis.AuthorName)
	assert.Equal(t, "bot@example.com", cfg.Synthesis.AuthorMail)
	assert.Equal(t, 64, cfg.Synthesis.BatchSize)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("GITSYNTH_SERVER_PORT", "9090")
	t.Setenv("GITSYNTH_REPOSITORY_RENAME_SIMILARITY", "90")
	t.Setenv("GITSYNTH_SYNTHESIS_AUTHOR_NAME", "Env Bot")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 90, cfg.Repository.RenameSimilarity)
	assert.Equal(t, "Env Bot", cfg.Synthesis.AuthorName)
}

func TestValidateConfigDefaultsPass(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestValidateConfigRejectsBadSimilarity(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	cfg.Repository.RenameSimilarity = 0
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidSimilarity)

	cfg.Repository.RenameSimilarity = 101
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidSimilarity)
}

func TestValidateConfigRejectsMissingAuthor(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	cfg.Synthesis.AuthorMail = ""
	assert.ErrorIs(t, cfg.Validate(), config.ErrMissingAuthor)
}

func TestTimeDurationParsing(t *testing.T) {
	t.Parallel()

	configContent := `
server:
  read_timeout: "15s"
  write_timeout: "30s"

synthesis:
  timeout: "1h"
`

	tmpDir := t.TempDir()

	tmpFile, err := os.CreateTemp(tmpDir, "test-duration-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)
	require.NoError(t, tmpFile.Close())

	cfg, loadErr := config.LoadConfig(tmpFile.Name())
	require.NoError(t, loadErr)

	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, time.Hour, cfg.Synthesis.Timeout)
}
