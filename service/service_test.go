package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/speech-coach/audio"
	"github.com/maastricht-university/speech-coach/jobs"
	"github.com/maastricht-university/speech-coach/orchestrator"
	"github.com/maastricht-university/speech-coach/report"
	"github.com/maastricht-university/speech-coach/storage"
)

type stubModels struct {
	transcript report.Transcript
	err        error
}

func (m stubModels) Transcribe(context.Context, audio.Buffer, string) (report.Transcript, error) {
	return m.transcript, m.err
}

func (m stubModels) ClassifyEmotion(context.Context, audio.Buffer) (report.Emotion, error) {
	return report.Emotion{Label: "calm", Confidences: map[string]float64{"calm": 1}}, nil
}

func (m stubModels) Summarize(context.Context, string) (string, error) {
	return "Good pace.", nil
}

func wavBytes(t *testing.T, seconds int) []byte {
	t.Helper()
	b, err := audio.EncodeBytes(audio.Buffer{Samples: make([]int, seconds*8000), Rate: 8000, Channels: 1, BitDepth: 16})
	require.NoError(t, err)
	return b
}

func newService(t *testing.T, m stubModels) *Service {
	t.Helper()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	log := logrus.New()
	log.SetOutput(io.Discard)

	reg := jobs.NewRegistry()
	p := orchestrator.New(orchestrator.Deps{
		Registry:    reg,
		Store:       store,
		Transcriber: m,
		Emotion:     m,
		Summarizer:  m,
		Logger:      log,
	}, orchestrator.Options{SegmentWorkers: 2})
	svc := New(reg, store, p, log)
	t.Cleanup(func() { _ = svc.Drain(context.Background()) })
	return svc
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSubmitAndQuery(t *testing.T) {
	m := stubModels{transcript: report.Transcript{
		Segments: []report.Segment{{ID: 0, Start: 0, End: 2, Text: "hello world"}},
		Text:     "hello world",
	}}
	svc := newService(t, m)

	job, err := svc.Submit("talk.wav", bytes.NewReader(wavBytes(t, 2)))
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusProcessing, job.Status)
	assert.Nil(t, job.Result)

	done, err := svc.Wait(waitCtx(t), job.ID)
	require.NoError(t, err)
	require.Equal(t, jobs.StatusCompleted, done.Status)
	assert.Equal(t, "Good pace.", done.Result.Summary)
	assert.InDelta(t, 2.0, *done.Duration, 1e-9)

	listed := svc.List()
	require.Len(t, listed, 1)
	assert.Equal(t, "talk.wav", listed[0].FileName)
	assert.NotNil(t, listed[0].Duration)
}

func TestSubmitRejectsEmptyName(t *testing.T) {
	svc := newService(t, stubModels{})
	_, err := svc.Submit("", bytes.NewReader(nil))
	assert.Equal(t, jobs.KindValidation, jobs.KindOf(err))
	assert.Empty(t, svc.List())
}

func TestSubmitFailedJobKeepsError(t *testing.T) {
	svc := newService(t, stubModels{err: errors.New("asr down")})
	job, err := svc.Submit("talk.wav", bytes.NewReader(wavBytes(t, 1)))
	require.NoError(t, err)

	done, err := svc.Wait(waitCtx(t), job.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusFailed, done.Status)
	assert.Equal(t, jobs.KindModel, done.Failure.Kind)
}

func TestDeleteTwice(t *testing.T) {
	svc := newService(t, stubModels{})
	job, err := svc.Submit("talk.wav", bytes.NewReader(wavBytes(t, 1)))
	require.NoError(t, err)
	_, err = svc.Wait(waitCtx(t), job.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(job.ID))
	assert.NoDirExists(t, svc.ArtifactDir(job.ID))

	err = svc.Delete(job.ID)
	assert.ErrorIs(t, err, jobs.ErrNotFound)
	_, err = svc.Get(job.ID)
	assert.ErrorIs(t, err, jobs.ErrNotFound)
}

func TestAudio(t *testing.T) {
	svc := newService(t, stubModels{})
	raw := wavBytes(t, 1)
	job, err := svc.Submit("talk.wav", bytes.NewReader(raw))
	require.NoError(t, err)

	f, got, err := svc.Audio(job.ID)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, job.ID, got.ID)
	served, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, raw, served)

	_, _, err = svc.Audio("nope")
	assert.ErrorIs(t, err, jobs.ErrNotFound)
}

func TestAudioMissingFile(t *testing.T) {
	svc := newService(t, stubModels{})
	job, err := svc.SubmitFile("/does/not/exist/talk.wav")
	require.NoError(t, err)

	_, _, err = svc.Audio(job.ID)
	assert.Equal(t, jobs.KindNotFound, jobs.KindOf(err))

	done, err := svc.Wait(waitCtx(t), job.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.KindIO, done.Failure.Kind)
}

func TestDrain(t *testing.T) {
	svc := newService(t, stubModels{})
	for range 3 {
		_, err := svc.Submit("talk.wav", bytes.NewReader(wavBytes(t, 1)))
		require.NoError(t, err)
	}
	require.NoError(t, svc.Drain(waitCtx(t)))
	for _, j := range svc.List() {
		assert.True(t, j.Status.Terminal())
	}
}
