package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/maastricht-university/speech-coach/jobs"
)

// JobEvent announces that a job reached a terminal state.
type JobEvent struct {
	JobID     string      `json:"job_id"`
	FileName  string      `json:"file_name"`
	Status    jobs.Status `json:"status"`
	ErrorKind jobs.Kind   `json:"error_kind,omitempty"`
	Error     string      `json:"error,omitempty"`
	Duration  float64     `json:"duration,omitempty"`
	At        time.Time   `json:"at"`
}

// FromJob builds the event for a terminal job snapshot.
func FromJob(j jobs.Job) JobEvent {
	ev := JobEvent{
		JobID:    j.ID,
		FileName: j.FileName,
		Status:   j.Status,
		At:       time.Now().UTC(),
	}
	if j.CompletedAt != nil {
		ev.At = *j.CompletedAt
	}
	if j.Duration != nil {
		ev.Duration = *j.Duration
	}
	if j.Failure != nil {
		ev.ErrorKind = j.Failure.Kind
		ev.Error = j.Failure.Message
	}
	return ev
}

func (e JobEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers job events somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, ev JobEvent) error
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, JobEvent) error { return nil }
func (Nop) Close() error                             { return nil }
