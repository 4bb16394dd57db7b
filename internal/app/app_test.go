package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writing_coach/internal/config"
	"writing_coach/internal/issue"
	"writing_coach/internal/logging"
)

func TestBuildOffline(t *testing.T) {
	cfg := config.Default()
	cfg.Database = filepath.Join(t.TempDir(), "coach.db")
	a, err := Build(cfg, logging.Discard(), Offline())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Nil(t, a.Grammar)
	require.NotNil(t, a.Store)

	res := a.Pipeline.Run(context.Background(), issue.NewSnapshot("teh cat sat.", 1))
	assert.Empty(t, res.Unavailable)
	assert.NotEmpty(t, res.Issues)

	tip := a.Coach.TipFor(context.Background(), "The cat sat.", res.Score)
	assert.True(t, tip.Fallback)
}

func TestBuildRejectsBadProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Coach.Provider = "openai"
	_, err := Build(cfg, logging.Discard())
	assert.Error(t, err, "openai without an api key")
}

func TestGrammarAdapterIsWired(t *testing.T) {
	cfg := config.Default()
	a, err := Build(cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NotNil(t, a.Grammar)
	assert.Equal(t, issue.SourceLanguageTool, a.Grammar.Source())
}
