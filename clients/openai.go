package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/maastricht-university/speech-coach/audio"
	"github.com/maastricht-university/speech-coach/report"
)

// NewOpenAI builds a client; baseURL may be empty for the public API.
func NewOpenAI(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// OpenAITranscriber transcribes with the hosted Whisper API.
type OpenAITranscriber struct {
	c     *openai.Client
	model string
}

func NewOpenAITranscriber(c *openai.Client, model string) *OpenAITranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAITranscriber{c: c, model: model}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, buf audio.Buffer, hint string) (report.Transcript, error) {
	wav, err := audio.EncodeBytes(buf)
	if err != nil {
		return report.Transcript{}, err
	}
	resp, err := t.c.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(wav),
		Prompt:   hint,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return report.Transcript{}, fmt.Errorf("openai transcription: %w", err)
	}

	segs := make([]report.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segs = append(segs, report.Segment{ID: s.ID, Start: s.Start, End: s.End, Text: s.Text})
	}
	return report.Transcript{Segments: segs, Text: fullText(resp.Text, segs), Language: resp.Language}, nil
}

// OpenAISummarizer asks a chat model for coaching feedback.
type OpenAISummarizer struct {
	c     *openai.Client
	model string
}

func NewOpenAISummarizer(c *openai.Client, model string) *OpenAISummarizer {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAISummarizer{c: c, model: model}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := s.c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: CoachPrompt(text)},
		},
		MaxTokens:   200,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat: no choices")
	}
	return cleanSummary(resp.Choices[0].Message.Content)
}
