package orchestrator

import (
	"context"

	"github.com/maastricht-university/speech-coach/audio"
	"github.com/maastricht-university/speech-coach/report"
)

// Transcriber turns audio into time-stamped segments. Returned segments
// carry only ID, Start, End and Text.
type Transcriber interface {
	Transcribe(ctx context.Context, buf audio.Buffer, vocabularyHint string) (report.Transcript, error)
}

// EmotionClassifier predicts the emotion of a short clip.
type EmotionClassifier interface {
	ClassifyEmotion(ctx context.Context, clip audio.Buffer) (report.Emotion, error)
}

// Summarizer writes a coaching paragraph for a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, fullText string) (string, error)
}

// Options tune a Pipeline.
type Options struct {
	VocabularyHint string
	Fillers        []string
	// SegmentWorkers bounds per-segment fan-out within a job.
	SegmentWorkers int
	// MaxConcurrentJobs bounds jobs running at once; 0 means unbounded.
	MaxConcurrentJobs int
}
