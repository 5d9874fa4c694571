package clients

import (
	"context"
	"strings"

	"github.com/maastricht-university/speech-coach/audio"
	"github.com/maastricht-university/speech-coach/report"
)

// --- ASR (/transcribe) ---
type TransSeg struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
type ASRResp struct {
	Segments []TransSeg `json:"segments"`
	Text     string     `json:"text"`
	Language string     `json:"language"`
}

// ASR posts a WAV file with an optional initial prompt.
func (h *HTTP) ASR(ctx context.Context, url string, wav []byte, prompt string) (*ASRResp, error) {
	fields := map[string]string{}
	if prompt != "" {
		fields["initial_prompt"] = prompt
	}
	var out ASRResp
	if err := h.postWAV(ctx, url+"/transcribe", "asr", wav, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HTTPTranscriber adapts an ASR service to the pipeline.
type HTTPTranscriber struct {
	h   *HTTP
	url string
}

func NewHTTPTranscriber(h *HTTP, url string) *HTTPTranscriber {
	return &HTTPTranscriber{h: h, url: strings.TrimRight(url, "/")}
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, buf audio.Buffer, hint string) (report.Transcript, error) {
	wav, err := audio.EncodeBytes(buf)
	if err != nil {
		return report.Transcript{}, err
	}
	resp, err := t.h.ASR(ctx, t.url, wav, hint)
	if err != nil {
		return report.Transcript{}, err
	}

	segs := make([]report.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segs = append(segs, report.Segment{ID: s.ID, Start: s.Start, End: s.End, Text: s.Text})
	}
	return report.Transcript{Segments: segs, Text: fullText(resp.Text, segs), Language: resp.Language}, nil
}

// fullText prefers the engine's own text and falls back to joining segments.
func fullText(text string, segs []report.Segment) string {
	if text != "" {
		return text
	}
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "")
}
