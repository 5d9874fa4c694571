package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/maastricht-university/speech-coach/events"
	"github.com/maastricht-university/speech-coach/jobs"
	"github.com/maastricht-university/speech-coach/metrics"
	"github.com/maastricht-university/speech-coach/report"
	"github.com/maastricht-university/speech-coach/storage"
)

// Deps are the collaborators a Pipeline is built from.
type Deps struct {
	Registry    *jobs.Registry
	Store       *storage.Store
	Transcriber Transcriber
	Emotion     EmotionClassifier
	Summarizer  Summarizer
	Publisher   events.Publisher
	Logger      *logrus.Logger
}

// Pipeline runs the fixed stage sequence for a job and records its
// outcome in the registry. Stages are never retried.
type Pipeline struct {
	registry    *jobs.Registry
	store       *storage.Store
	transcriber Transcriber
	emotion     EmotionClassifier
	summarizer  Summarizer
	publisher   events.Publisher
	fillers     *metrics.FillerDetector
	hint        string
	workers     int
	slots       *semaphore.Weighted
	log         *logrus.Entry
}

func New(d Deps, o Options) *Pipeline {
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	if o.SegmentWorkers < 1 {
		o.SegmentWorkers = 1
	}
	p := &Pipeline{
		registry:    d.Registry,
		store:       d.Store,
		transcriber: d.Transcriber,
		emotion:     d.Emotion,
		summarizer:  d.Summarizer,
		publisher:   d.Publisher,
		fillers:     metrics.NewFillerDetector(o.Fillers),
		hint:        o.VocabularyHint,
		workers:     o.SegmentWorkers,
		log:         d.Logger.WithField("component", "orchestrator"),
	}
	if o.MaxConcurrentJobs > 0 {
		p.slots = semaphore.NewWeighted(int64(o.MaxConcurrentJobs))
	}
	return p
}

// Start launches the job in its own goroutine and returns its handle.
// There is no cancellation: the job runs until it completes or fails.
func (p *Pipeline) Start(jobID, audioPath string) *Task {
	t := newTask(jobID)
	go p.run(t, audioPath)
	return t
}

func (p *Pipeline) run(t *Task, audioPath string) {
	ctx := context.Background()
	if p.slots != nil {
		// cannot fail with a background context
		_ = p.slots.Acquire(ctx, 1)
		defer p.slots.Release(1)
	}

	start := time.Now()
	rep, err := p.analyze(ctx, t.JobID, audioPath)
	j, err := p.finish(t.JobID, rep, err, time.Since(start))
	t.resolve(j, err)
}

// finish performs the single terminal write for a job.
func (p *Pipeline) finish(jobID string, rep report.Report, runErr error, elapsed time.Duration) (jobs.Job, error) {
	log := p.log.WithFields(logrus.Fields{"job_id": jobID, "elapsed_ms": elapsed.Milliseconds()})

	mutate := jobs.Complete(rep)
	if runErr != nil {
		mutate = jobs.Fail(runErr)
	}
	j, err := p.registry.Update(jobID, mutate)
	if errors.Is(err, jobs.ErrNotFound) {
		log.Warn("job deleted while processing, discarding artifacts")
		if rmErr := p.store.RemoveArtifacts(jobID); rmErr != nil {
			log.WithError(rmErr).Warn("failed to remove artifacts")
		}
		return jobs.Job{}, err
	}
	if err != nil {
		log.WithError(err).Error("failed to record job outcome")
		return j, err
	}

	if runErr != nil {
		log.WithFields(logrus.Fields{"kind": j.Failure.Kind, "error": j.Failure.Message}).Error("job failed")
	} else {
		log.WithFields(logrus.Fields{
			"segments":      len(rep.Segments),
			"duration":      rep.Duration,
			"total_fillers": rep.TotalFillers,
		}).Info("job completed")
	}

	if err := p.publisher.Publish(context.Background(), events.FromJob(j)); err != nil {
		log.WithError(err).Warn("failed to publish job event")
	}
	return j, nil
}

// stage runs fn, logging its timing and tagging a failure with kind unless
// fn already returned a kinded error.
func (p *Pipeline) stage(log *logrus.Entry, name string, kind jobs.Kind, fn func() error) error {
	log = log.WithField("stage", name)
	start := time.Now()
	log.Debug("stage started")

	err := guard(fn)
	if err != nil {
		var kerr *jobs.Error
		if errors.As(err, &kerr) {
			out := *kerr
			if out.Op == "" {
				out.Op = name
			}
			return &out
		}
		return jobs.E(kind, name, err)
	}

	log.WithField("elapsed_ms", time.Since(start).Milliseconds()).Debug("stage finished")
	return nil
}

// guard converts a panic in fn into an internal error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = jobs.E(jobs.KindInternal, "", fmt.Errorf("panic: %v", r))
		}
	}()
	return fn()
}
