package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "http", cfg.Providers.Transcription)
	assert.Equal(t, DefaultVocabularyHint, cfg.Analysis.VocabularyHint)
	assert.Equal(t, []string{"uh", "um", "ah", "like", "you know", "well", "hmm"}, cfg.Analysis.Fillers)
	assert.Equal(t, 4, cfg.Analysis.SegmentWorkers)
	assert.Equal(t, 0, cfg.Analysis.MaxConcurrentJobs)
	assert.Equal(t, "data", cfg.Paths.Outputs)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  log_level: debug
services:
  asr:
    url: http://asr:8080
analysis:
  segment_workers: 2
  fillers: [so, basically]
`)
	t.Setenv("COACH_SERVER_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Pipeline.LogLvl)
	assert.Equal(t, "http://asr:8080", cfg.Services.ASR.URL)
	assert.Equal(t, 2, cfg.Analysis.SegmentWorkers)
	assert.Equal(t, []string{"so", "basically"}, cfg.Analysis.Fillers)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:9002", cfg.Services.Emotion.URL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
providers:
  summarizer: carrier-pigeon
analysis:
  segment_workers: 0
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Summarizer")
	assert.Contains(t, err.Error(), "SegmentWorkers")
}

func TestLoadRequiresProviderCredentials(t *testing.T) {
	_, err := Load(writeConfig(t, "providers:\n  summarizer: openai\n"))
	assert.ErrorContains(t, err, "openai.api_key")

	_, err = Load(writeConfig(t, "providers:\n  summarizer: vertex\n"))
	assert.ErrorContains(t, err, "vertex.project")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestYAMLMasksSecrets(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.OpenAI.APIKey = "sk-secret"

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "sk-secret")
	assert.Equal(t, "sk-secret", cfg.OpenAI.APIKey)

	var back Root
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, cfg.Server.Addr, back.Server.Addr)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn", "json")
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	assert.Equal(t, logrus.InfoLevel, NewLogger("loud", "text").GetLevel())
}
