package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/speech-coach/jobs"
	"github.com/maastricht-university/speech-coach/report"
)

func TestFromJobFailed(t *testing.T) {
	r := jobs.NewRegistry()
	j := r.Create("talk.wav")
	j, err := r.Update(j.ID, jobs.Fail(jobs.E(jobs.KindModel, "transcribe", errors.New("engine down"))))
	require.NoError(t, err)

	ev := FromJob(j)
	assert.Equal(t, j.ID, ev.JobID)
	assert.Equal(t, jobs.StatusFailed, ev.Status)
	assert.Equal(t, jobs.KindModel, ev.ErrorKind)
	assert.Contains(t, ev.Error, "engine down")
	assert.Equal(t, *j.CompletedAt, ev.At)

	b, err := ev.Marshal()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "failed", m["status"])
	assert.Equal(t, "model_error", m["error_kind"])
}

func TestFromJobCompleted(t *testing.T) {
	r := jobs.NewRegistry()
	j := r.Create("talk.wav")
	j, err := r.Update(j.ID, jobs.Complete(report.Report{Duration: 12.5}))
	require.NoError(t, err)

	ev := FromJob(j)
	assert.Equal(t, jobs.StatusCompleted, ev.Status)
	assert.Equal(t, 12.5, ev.Duration)
	assert.Empty(t, ev.ErrorKind)
	assert.WithinDuration(t, time.Now(), ev.At, time.Minute)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), JobEvent{}))
	assert.NoError(t, p.Close())
}
