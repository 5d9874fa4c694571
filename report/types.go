package report

// Labels predicted by the speech emotion model.
var EmotionLabels = []string{"angry", "calm", "disgust", "fearful", "happy", "neutral", "sad", "surprised"}

// UnknownEmotion is assigned to segments that carry no audio.
const UnknownEmotion = "unknown"

type Emotion struct {
	Label       string             `json:"predicted_emotion" yaml:"predicted_emotion"`
	Confidences map[string]float64 `json:"confidence_scores" yaml:"confidence_scores"`
}

// Unknown is the emotion for a degenerate (empty) clip.
func Unknown() Emotion {
	return Emotion{Label: UnknownEmotion, Confidences: map[string]float64{UnknownEmotion: 1}}
}

type FillerStats struct {
	Counts     map[string]int `json:"filler_counts" yaml:"filler_counts"`
	Total      int            `json:"total_fillers" yaml:"total_fillers"`
	Percentage float64        `json:"filler_percentage" yaml:"filler_percentage"`
}

// Segment is one transcribed utterance. The transcription engine fills
// ID, Start, End and Text; later stages enrich the rest in place.
type Segment struct {
	ID      int         `json:"id" yaml:"id"`
	Start   float64     `json:"start" yaml:"start"` // sec
	End     float64     `json:"end" yaml:"end"`     // sec
	Text    string      `json:"text" yaml:"text"`
	Emotion Emotion     `json:"emotion_analysis" yaml:"emotion_analysis"`
	Fillers FillerStats `json:"filler_analysis" yaml:"filler_analysis"`
	Pacing  float64     `json:"pacing" yaml:"pacing"` // words per second
	Volume  float64     `json:"volume" yaml:"volume"` // RMS
}

// Transcript is what the transcription engine returns.
type Transcript struct {
	Segments []Segment `json:"segments" yaml:"segments"`
	Text     string    `json:"text" yaml:"text"`
	Language string    `json:"language,omitempty" yaml:"language,omitempty"`
}

type SegmentFeedback struct {
	SegmentID        int     `json:"segment_id" yaml:"segment_id"`
	Text             string  `json:"text" yaml:"text"`
	Emotion          string  `json:"emotion" yaml:"emotion"`
	Fillers          int     `json:"fillers" yaml:"fillers"`
	FillerPercentage float64 `json:"filler_percentage" yaml:"filler_percentage"`
}

type HighlightKind string

const (
	HighlightSlow    HighlightKind = "slow"
	HighlightFast    HighlightKind = "fast"
	HighlightQuiet   HighlightKind = "quiet"
	HighlightLoud    HighlightKind = "loud"
	HighlightFillers HighlightKind = "fillers"
)

// Highlight marks a time range worth the speaker's attention.
type Highlight struct {
	SegmentID int           `json:"segment_id" yaml:"segment_id"`
	Start     float64       `json:"start" yaml:"start"`
	End       float64       `json:"end" yaml:"end"`
	Kind      HighlightKind `json:"type" yaml:"type"`
}

// Report is the result of a completed job. It is never mutated once
// attached to a job.
type Report struct {
	Segments         []Segment         `json:"segments" yaml:"segments"`
	FullText         string            `json:"text" yaml:"text"`
	Language         string            `json:"language,omitempty" yaml:"language,omitempty"`
	AveragePacing    float64           `json:"average_pacing" yaml:"average_pacing"`
	AverageVolume    float64           `json:"average_volume" yaml:"average_volume"`
	EmotionHistogram map[string]int    `json:"overall_emotions_summary" yaml:"overall_emotions_summary"`
	DominantEmotion  string            `json:"dominant_emotion" yaml:"dominant_emotion"`
	TotalFillers     int               `json:"overall_fillers" yaml:"overall_fillers"`
	SegmentFeedback  []SegmentFeedback `json:"segment_feedback" yaml:"segment_feedback"`
	Highlights       []Highlight       `json:"highlights" yaml:"highlights"`
	Summary          string            `json:"summarized_feedback" yaml:"summarized_feedback"`
	Duration         float64           `json:"duration" yaml:"duration"` // sec
}
