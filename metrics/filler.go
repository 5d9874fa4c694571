package metrics

import (
	"regexp"
	"strings"

	"github.com/maastricht-university/speech-coach/report"
)

// DefaultFillers is the filler lexicon used when none is configured.
var DefaultFillers = []string{"uh", "um", "ah", "like", "you know", "well", "hmm"}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// FillerDetector counts filler phrases in segment text.
//
// Phrases are matched as raw substrings of the lower-cased text, so "like"
// also matches inside "dislike". The word total uses word-boundary tokens.
type FillerDetector struct {
	phrases []string
}

func NewFillerDetector(phrases []string) *FillerDetector {
	clean := make([]string, 0, len(phrases))
	seen := map[string]bool{}
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		clean = append(clean, p)
	}
	if len(clean) == 0 {
		clean = append(clean, DefaultFillers...)
	}
	return &FillerDetector{phrases: clean}
}

// Phrases returns the configured lexicon.
func (d *FillerDetector) Phrases() []string {
	return append([]string(nil), d.phrases...)
}

func (d *FillerDetector) Analyze(text string) report.FillerStats {
	lower := strings.ToLower(text)
	words := len(wordRe.FindAllString(lower, -1))

	stats := report.FillerStats{Counts: make(map[string]int, len(d.phrases))}
	for _, p := range d.phrases {
		n := strings.Count(lower, p)
		stats.Counts[p] = n
		stats.Total += n
	}
	if words > 0 {
		// substring hits can outnumber tokens ("uhuh")
		stats.Percentage = min(100*float64(stats.Total)/float64(words), 100)
	}
	return stats
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
