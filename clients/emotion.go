package clients

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/maastricht-university/speech-coach/audio"
	"github.com/maastricht-university/speech-coach/report"
)

// --- Emotion (/classify) ---
type EmoScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
type EmoResp struct {
	Emotions        []EmoScore `json:"emotions"`
	DominantEmotion string     `json:"dominant_emotion"`
}

func (h *HTTP) Emotion(ctx context.Context, url string, wav []byte) (*EmoResp, error) {
	var out EmoResp
	if err := h.postWAV(ctx, url+"/classify", "emotion", wav, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HTTPEmotion adapts a speech emotion service to the pipeline.
type HTTPEmotion struct {
	h   *HTTP
	url string
}

func NewHTTPEmotion(h *HTTP, url string) *HTTPEmotion {
	return &HTTPEmotion{h: h, url: strings.TrimRight(url, "/")}
}

func (e *HTTPEmotion) ClassifyEmotion(ctx context.Context, clip audio.Buffer) (report.Emotion, error) {
	wav, err := audio.EncodeBytes(clip)
	if err != nil {
		return report.Emotion{}, err
	}
	resp, err := e.h.Emotion(ctx, e.url, wav)
	if err != nil {
		return report.Emotion{}, err
	}
	return toEmotion(resp)
}

// toEmotion normalizes scores into a distribution and picks the top label
// when the service did not name one.
func toEmotion(resp *EmoResp) (report.Emotion, error) {
	if len(resp.Emotions) == 0 {
		return report.Emotion{}, errors.New("emotion: empty score list")
	}
	var sum float64
	conf := make(map[string]float64, len(resp.Emotions))
	for _, s := range resp.Emotions {
		if s.Score < 0 || math.IsNaN(s.Score) {
			return report.Emotion{}, errors.New("emotion: invalid score for " + s.Label)
		}
		conf[s.Label] += s.Score
		sum += s.Score
	}
	if sum == 0 {
		return report.Emotion{}, errors.New("emotion: all scores are zero")
	}
	for k := range conf {
		conf[k] /= sum
	}

	label := resp.DominantEmotion
	if _, ok := conf[label]; !ok {
		labels := make([]string, 0, len(conf))
		for k := range conf {
			labels = append(labels, k)
		}
		sort.Strings(labels)
		label = labels[0]
		for _, k := range labels[1:] {
			if conf[k] > conf[label] {
				label = k
			}
		}
	}
	return report.Emotion{Label: label, Confidences: conf}, nil
}
