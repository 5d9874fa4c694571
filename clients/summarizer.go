package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// --- Summarizer (/summarize) ---
type SummaryReq struct {
	Text   string `json:"text"`
	Prompt string `json:"prompt"`
}
type SummaryResp struct {
	Summary string `json:"summary"`
}

func (h *HTTP) Summary(ctx context.Context, url, text string) (*SummaryResp, error) {
	var out SummaryResp
	if err := h.postJSON(ctx, url+"/summarize", "summarizer", SummaryReq{Text: text, Prompt: CoachPrompt(text)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HTTPSummarizer adapts a text generation service to the pipeline.
type HTTPSummarizer struct {
	h   *HTTP
	url string
}

func NewHTTPSummarizer(h *HTTP, url string) *HTTPSummarizer {
	return &HTTPSummarizer{h: h, url: strings.TrimRight(url, "/")}
}

func (s *HTTPSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := s.h.Summary(ctx, s.url, text)
	if err != nil {
		return "", err
	}
	return cleanSummary(resp.Summary)
}

// CoachPrompt is the instruction given to chat models.
func CoachPrompt(transcript string) string {
	return fmt.Sprintf(`You are an extremely concise expert speech coach. Give feedback on the following presentation transcript directly to the speaker. Focus on:

- Filler word (e.g. um, like, uh) usage and improvements.
- Emotional tone and audience engagement.
- Clarity, coherence, and delivery.

Transcript:
%s

Answer in under 3 sentences with actionable feedback to improve delivery.`, transcript)
}

func cleanSummary(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("summarizer: empty response")
	}
	return s, nil
}
