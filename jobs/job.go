package jobs

import (
	"time"

	"github.com/maastricht-university/speech-coach/report"
)

// Status is the lifecycle state of a job. Completed and Failed are terminal.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether s can no longer change.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Failure is the captured error of a failed job.
type Failure struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Job is one audio-analysis request. Values returned by the Registry are
// snapshots; Result points at an immutable Report.
type Job struct {
	ID          string         `json:"task_id"`
	FileName    string         `json:"file_name"`
	Status      Status         `json:"status"`
	CreatedAt   time.Time      `json:"uploaded_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Duration    *float64       `json:"duration,omitempty"`
	Result      *report.Report `json:"results,omitempty"`
	Failure     *Failure       `json:"error,omitempty"`
}

// Complete moves a job to Completed with its report.
func Complete(r report.Report) func(*Job) error {
	return func(j *Job) error {
		now := time.Now().UTC()
		d := r.Duration
		j.Status = StatusCompleted
		j.Result = &r
		j.Duration = &d
		j.CompletedAt = &now
		return nil
	}
}

// Fail moves a job to Failed with the kind and message of err.
func Fail(err error) func(*Job) error {
	return func(j *Job) error {
		now := time.Now().UTC()
		j.Status = StatusFailed
		j.Failure = &Failure{Kind: KindOf(err), Message: err.Error()}
		j.CompletedAt = &now
		return nil
	}
}

// SetDuration records the audio length once known.
func SetDuration(seconds float64) func(*Job) error {
	return func(j *Job) error {
		j.Duration = &seconds
		return nil
	}
}

func (j Job) clone() Job {
	out := j
	if j.Duration != nil {
		d := *j.Duration
		out.Duration = &d
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	if j.Failure != nil {
		f := *j.Failure
		out.Failure = &f
	}
	return out
}

// consistent checks that result and failure agree with status.
func (j Job) consistent() bool {
	switch j.Status {
	case StatusProcessing:
		return j.Result == nil && j.Failure == nil
	case StatusCompleted:
		return j.Result != nil && j.Failure == nil
	case StatusFailed:
		return j.Result == nil && j.Failure != nil
	default:
		return false
	}
}
