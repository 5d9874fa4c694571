package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// VertexSummarizer asks a Gemini model on Vertex AI for coaching feedback.
// Credentials come from Application Default Credentials.
type VertexSummarizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewVertexSummarizer(ctx context.Context, project, location, model string) (*VertexSummarizer, error) {
	c, err := genai.NewClient(ctx, project, location)
	if err != nil {
		return nil, fmt.Errorf("vertex client: %w", err)
	}
	m := c.GenerativeModel(model)
	m.SetTemperature(0.3)
	m.SetMaxOutputTokens(256)
	return &VertexSummarizer{client: c, model: m}, nil
}

func (v *VertexSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, genai.Text(CoachPrompt(text)))
	if err != nil {
		return "", fmt.Errorf("vertex generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("vertex generate: no candidates")
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return cleanSummary(b.String())
}

func (v *VertexSummarizer) Close() error {
	return v.client.Close()
}
