package service

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speech-coach/jobs"
	"github.com/maastricht-university/speech-coach/orchestrator"
	"github.com/maastricht-university/speech-coach/storage"
)

// Service is the job-facing surface used by the HTTP API and the CLI.
type Service struct {
	registry *jobs.Registry
	store    *storage.Store
	pipeline *orchestrator.Pipeline
	log      *logrus.Entry

	mu    sync.Mutex
	tasks map[string]*orchestrator.Task
}

func New(reg *jobs.Registry, store *storage.Store, p *orchestrator.Pipeline, logger *logrus.Logger) *Service {
	return &Service{
		registry: reg,
		store:    store,
		pipeline: p,
		log:      logger.WithField("component", "service"),
		tasks:    map[string]*orchestrator.Task{},
	}
}

// Submit saves the uploaded audio and starts analysing it. The returned job
// is still processing.
func (s *Service) Submit(fileName string, r io.Reader) (jobs.Job, error) {
	name := storage.SafeName(fileName)
	if name == "" {
		return jobs.Job{}, jobs.E(jobs.KindValidation, "submit", errors.New("file name is required"))
	}

	job := s.registry.Create(name)
	path, err := s.store.SaveUpload(job.ID, name, r)
	if err != nil {
		_ = s.registry.Delete(job.ID)
		return jobs.Job{}, jobs.E(jobs.KindIO, "submit", err)
	}
	s.start(job, path)
	return job, nil
}

// SubmitFile analyses a WAV already on disk without copying it into the
// upload area.
func (s *Service) SubmitFile(path string) (jobs.Job, error) {
	name := storage.SafeName(path)
	if name == "" {
		return jobs.Job{}, jobs.E(jobs.KindValidation, "submit", errors.New("file name is required"))
	}
	job := s.registry.Create(name)
	s.start(job, path)
	return job, nil
}

func (s *Service) start(job jobs.Job, path string) {
	t := s.pipeline.Start(job.ID, path)
	s.mu.Lock()
	s.tasks[job.ID] = t
	s.mu.Unlock()

	go func() {
		<-t.Done()
		s.mu.Lock()
		delete(s.tasks, job.ID)
		s.mu.Unlock()
	}()

	s.log.WithFields(logrus.Fields{"job_id": job.ID, "file_name": job.FileName}).Info("job submitted")
}

func (s *Service) Get(id string) (jobs.Job, error) {
	return s.registry.Get(id)
}

func (s *Service) List() []jobs.Job {
	return s.registry.List()
}

// Delete removes the job record and its files. A job still running is
// forgotten; its pipeline discards whatever it produces.
func (s *Service) Delete(id string) error {
	job, err := s.registry.Get(id)
	if err != nil {
		return err
	}
	if err := s.registry.Delete(id); err != nil {
		return err
	}
	if err := s.store.Remove(id, job.FileName); err != nil {
		s.log.WithError(err).WithField("job_id", id).Warn("failed to remove job files")
	}
	s.log.WithField("job_id", id).Info("job deleted")
	return nil
}

// Audio opens the original upload of a job. The caller closes the file.
func (s *Service) Audio(id string) (*os.File, jobs.Job, error) {
	job, err := s.registry.Get(id)
	if err != nil {
		return nil, jobs.Job{}, err
	}
	f, err := s.store.OpenUpload(id, job.FileName)
	if errors.Is(err, storage.ErrMissing) {
		return nil, job, jobs.E(jobs.KindNotFound, "audio", errors.New("audio file not found"))
	}
	if err != nil {
		return nil, job, jobs.E(jobs.KindIO, "audio", err)
	}
	return f, job, nil
}

// Wait blocks until the job is no longer processing and returns it.
func (s *Service) Wait(ctx context.Context, id string) (jobs.Job, error) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	s.mu.Unlock()
	if ok {
		if _, err := t.Wait(ctx); err != nil {
			return jobs.Job{}, err
		}
	}
	return s.registry.Get(id)
}

// Drain waits for every running job, or until ctx ends.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.Lock()
	running := make([]*orchestrator.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		running = append(running, t)
	}
	s.mu.Unlock()

	for _, t := range running {
		select {
		case <-t.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// ArtifactDir is where the transcript, clips and report of a job live.
func (s *Service) ArtifactDir(id string) string {
	return s.store.JobDir(id)
}
