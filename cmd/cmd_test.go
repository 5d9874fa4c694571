package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/speech-coach/audio"
	"github.com/maastricht-university/speech-coach/clients"
	"github.com/maastricht-university/speech-coach/report"
)

// modelServer fakes the ASR, emotion and summarizer services.
func modelServer(t *testing.T, asrStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/transcribe", func(w http.ResponseWriter, r *http.Request) {
		if asrStatus != http.StatusOK {
			http.Error(w, "asr exploded", asrStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(clients.ASRResp{
			Segments: []clients.TransSeg{
				{ID: 0, Start: 0, End: 4, Text: "um hello there"},
				{ID: 1, Start: 4, End: 10, Text: "this is fine"},
			},
			Text: "um hello there this is fine",
		})
	})
	mux.HandleFunc("/classify", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(clients.EmoResp{Emotions: []clients.EmoScore{{Label: "calm", Score: 0.8}, {Label: "sad", Score: 0.2}}})
	})
	mux.HandleFunc("/summarize", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(clients.SummaryResp{Summary: "Drop the um."})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setup(t *testing.T, asrStatus int) (wav, outputs string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	srv := modelServer(t, asrStatus)
	outputs = filepath.Join(dir, "out")
	t.Setenv("COACH_SERVICES_ASR_URL", srv.URL)
	t.Setenv("COACH_SERVICES_EMOTION_URL", srv.URL)
	t.Setenv("COACH_SERVICES_SUMMARIZER_URL", srv.URL)
	t.Setenv("COACH_PATHS_OUTPUTS", outputs)
	t.Setenv("COACH_PIPELINE_LOG_LEVEL", "error")

	wav = filepath.Join(dir, "talk.wav")
	require.NoError(t, audio.WriteFile(wav, audio.Buffer{Samples: make([]int, 10*8000), Rate: 8000, Channels: 1, BitDepth: 16}))
	return wav, outputs
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyzeJSON(t *testing.T) {
	wav, outputs := setup(t, http.StatusOK)

	out, err := run(t, "analyze", wav)
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Segments, 2)
	assert.Equal(t, 1, rep.Segments[0].Fillers.Total)
	assert.InDelta(t, 100.0/3, rep.Segments[0].Fillers.Percentage, 1e-9)
	assert.Equal(t, 1, rep.TotalFillers)
	assert.Equal(t, map[string]int{"calm": 2}, rep.EmotionHistogram)
	assert.Equal(t, "Drop the um.", rep.Summary)
	assert.InDelta(t, 10.0, rep.Duration, 1e-9)

	matches, err := filepath.Glob(filepath.Join(outputs, "transcriptions", "*", "analysis_results.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestAnalyzeYAML(t *testing.T) {
	wav, _ := setup(t, http.StatusOK)

	out, err := run(t, "analyze", "--format", "yaml", wav)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Drop the um.", doc["summarized_feedback"])
	assert.Equal(t, 1, doc["overall_fillers"])
}

func TestAnalyzeModelFailure(t *testing.T) {
	wav, _ := setup(t, http.StatusBadGateway)

	_, err := run(t, "analyze", wav)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model_error")
}

func TestAnalyzeBadFormat(t *testing.T) {
	wav, _ := setup(t, http.StatusOK)
	_, err := run(t, "analyze", "--format", "xml", wav)
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	setup(t, http.StatusOK)
	t.Setenv("COACH_OPENAI_API_KEY", "sk-secret")

	out, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "speech-coach")
	assert.NotContains(t, out, "sk-secret")
}
