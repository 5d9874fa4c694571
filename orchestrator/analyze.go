package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/speech-coach/audio"
	"github.com/maastricht-university/speech-coach/jobs"
	"github.com/maastricht-university/speech-coach/metrics"
	"github.com/maastricht-university/speech-coach/report"
	"github.com/maastricht-university/speech-coach/storage"
)

// analyze runs the stages of one job: load, transcribe, segment, per-segment
// analysis, aggregate, summarize. Any failure aborts the remaining stages.
func (p *Pipeline) analyze(ctx context.Context, jobID, audioPath string) (report.Report, error) {
	log := p.log.WithField("job_id", jobID)

	var buf audio.Buffer
	err := p.stage(log, "load", jobs.KindIO, func() error {
		b, err := audio.Load(audioPath)
		if errors.Is(err, audio.ErrInvalid) || errors.Is(err, audio.ErrEmpty) {
			return jobs.E(jobs.KindValidation, "", err)
		}
		if err != nil {
			return err
		}
		buf = b
		_, err = p.registry.Update(jobID, jobs.SetDuration(b.Duration()))
		return err
	})
	if err != nil {
		return report.Report{}, err
	}
	duration := buf.Duration()
	log.WithFields(logrus.Fields{"rate": buf.Rate, "channels": buf.Channels, "duration": duration}).Debug("audio loaded")

	var tr report.Transcript
	err = p.stage(log, "transcribe", jobs.KindModel, func() (err error) {
		tr, err = p.transcriber.Transcribe(ctx, buf, p.hint)
		return err
	})
	if err != nil {
		return report.Report{}, err
	}

	// Segment ids are positions in transcription order, whatever the engine sent.
	tr.Segments = append([]report.Segment(nil), tr.Segments...)
	spans := make([]audio.Span, len(tr.Segments))
	for i := range tr.Segments {
		tr.Segments[i].ID = i
		s := tr.Segments[i]
		spans[i] = audio.Span{ID: i, Start: s.Start, End: s.End}
	}
	if err = p.stage(log, "validate", jobs.KindValidation, func() error {
		return audio.ValidateSpans(spans)
	}); err != nil {
		return report.Report{}, err
	}

	if err = p.stage(log, "save_transcript", jobs.KindIO, func() error {
		_, err := p.store.WriteJSON(jobID, storage.TranscriptFile, tr)
		return err
	}); err != nil {
		return report.Report{}, err
	}

	var clips []audio.Clip
	err = p.stage(log, "segment", jobs.KindIO, func() error {
		clips = audio.Split(buf, spans)
		for _, c := range clips {
			if _, err := p.store.WriteClip(jobID, c.SegmentID, c.Audio); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return report.Report{}, err
	}

	segments := tr.Segments
	if err = p.stage(log, "analyze", jobs.KindModel, func() error {
		return p.analyzeSegments(ctx, segments, clips)
	}); err != nil {
		return report.Report{}, err
	}

	rep := report.Aggregate(segments, tr.Text, duration)
	rep.Language = tr.Language

	err = p.stage(log, "summarize", jobs.KindModel, func() (err error) {
		rep.Summary, err = p.summarizer.Summarize(ctx, tr.Text)
		return err
	})
	if err != nil {
		return report.Report{}, err
	}

	if err = p.stage(log, "save_report", jobs.KindIO, func() error {
		_, err := p.store.WriteJSON(jobID, storage.ResultsFile, rep)
		return err
	}); err != nil {
		return report.Report{}, err
	}
	return rep, nil
}

// analyzeSegments enriches segments[i] from clips[i]. Workers write only
// their own slot, and the call returns after all of them have finished.
func (p *Pipeline) analyzeSegments(ctx context.Context, segments []report.Segment, clips []audio.Clip) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range segments {
		g.Go(func() error {
			return guard(func() error {
				s := &segments[i]
				clip := clips[i].Audio

				s.Emotion = report.Unknown()
				if len(clip.Samples) > 0 {
					emo, err := p.emotion.ClassifyEmotion(gctx, clip)
					if err != nil {
						return fmt.Errorf("segment %d: %w", s.ID, err)
					}
					s.Emotion = emo
				}
				s.Fillers = p.fillers.Analyze(s.Text)
				s.Pacing = metrics.Pacing(s.Text, s.Start, s.End)
				s.Volume = metrics.RMS(clip.Samples)
				return nil
			})
		})
	}
	return g.Wait()
}
