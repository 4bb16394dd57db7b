package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"writing_coach/internal/vocabulary"
)

func TestDefaultYAMLMatchesDefault(t *testing.T) {
	var fromFile Config
	require.NoError(t, yaml.Unmarshal(DefaultYAML, &fromFile))
	assert.Equal(t, Default(), fromFile)
	require.NoError(t, Default().Validate())
}

func TestLoadLayersFileEnvFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(cfgPath, []byte("debounce: 250ms\nanalyzers:\n  tier: low\ncoach:\n  provider: ollama\n"), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("COACH_MODEL=tiny-model\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("COACH_MODEL") })
	t.Setenv("COACH_LANGUAGETOOL_ENABLED", "false")
	t.Setenv("COACH_WORKERS", "3")

	cfg, err := Load(cfgPath, envPath)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, "ollama", cfg.Coach.Provider)
	assert.Equal(t, "tiny-model", cfg.Coach.Model)
	assert.False(t, cfg.LanguageTool.Enabled)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 40, cfg.Analyzers.Structure.LongSentenceWords, "unset keys keep defaults")

	settings, err := cfg.PipelineSettings()
	require.NoError(t, err)
	assert.Equal(t, vocabulary.TierLow, settings.Tier)
}

func TestLoadMissingFilesUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "none.yaml"), filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, Default().Debounce, cfg.Debounce)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"provider":  "coach:\n  provider: gpt\n",
		"tier":      "analyzers:\n  tier: extreme\n",
		"diversity": "rubric:\n  min_diversity: 0.8\n  high_diversity: 0.6\n",
		"sentences": "analyzers:\n  structure:\n    long_sentence_words: 4\n",
		"syntax":    "debounce: [\n",
		"chunk":     "languagetool:\n  max_chunk_bytes: 2\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := Load(path, "")
		assert.Error(t, err, name)
	}
}
