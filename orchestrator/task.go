package orchestrator

import (
	"context"

	"github.com/maastricht-university/speech-coach/jobs"
)

// Task is the handle of one running job. It is resolved exactly once,
// after the pipeline has written the job's terminal state.
type Task struct {
	JobID string

	done chan struct{}
	job  jobs.Job
	err  error
}

func newTask(jobID string) *Task {
	return &Task{JobID: jobID, done: make(chan struct{})}
}

func (t *Task) resolve(j jobs.Job, err error) {
	t.job, t.err = j, err
	close(t.done)
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx ends. It returns the final job
// snapshot; a failed job is not an error here, see Job.Failure. The error is
// non-nil when the terminal state could not be recorded, for instance
// because the job was deleted while running.
func (t *Task) Wait(ctx context.Context) (jobs.Job, error) {
	select {
	case <-t.done:
		return t.job, t.err
	case <-ctx.Done():
		return jobs.Job{}, ctx.Err()
	}
}
