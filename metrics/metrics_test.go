package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillerDetectorDefaultLexicon(t *testing.T) {
	d := NewFillerDetector(nil)
	assert.Equal(t, DefaultFillers, d.Phrases())

	stats := d.Analyze("Um hello there")
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Counts["um"])
	assert.InDelta(t, 100.0/3, stats.Percentage, 1e-9)

	stats = d.Analyze("this is fine")
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Percentage)
}

func TestFillerDetectorMultiWordAndSubstring(t *testing.T) {
	d := NewFillerDetector(nil)

	stats := d.Analyze("You know, I dislike it")
	assert.Equal(t, 1, stats.Counts["you know"])
	// substring matching counts "like" inside "dislike"
	assert.Equal(t, 1, stats.Counts["like"])
	assert.Equal(t, 2, stats.Total)
	assert.InDelta(t, 40.0, stats.Percentage, 1e-9)
}

func TestFillerDetectorNoWords(t *testing.T) {
	d := NewFillerDetector(nil)
	for _, text := range []string{"", "   ", "...!?"} {
		stats := d.Analyze(text)
		assert.Zero(t, stats.Percentage, text)
	}
}

func TestFillerPercentageBounded(t *testing.T) {
	d := NewFillerDetector(nil)
	for _, text := range []string{"uhuh", "umumum", "hmm hmm", "well well well", "a b c d", "ah"} {
		p := d.Analyze(text).Percentage
		assert.GreaterOrEqual(t, p, 0.0, text)
		assert.LessOrEqual(t, p, 100.0, text)
	}
}

func TestFillerDetectorCustomLexicon(t *testing.T) {
	d := NewFillerDetector([]string{" Basically ", "basically", ""})
	assert.Equal(t, []string{"basically"}, d.Phrases())
	assert.Equal(t, 1, d.Analyze("basically yes").Total)
}

func TestPacing(t *testing.T) {
	assert.InDelta(t, 0.75, Pacing("um hello there", 0, 4), 1e-9)
	assert.Zero(t, Pacing("words here", 3, 3))
	assert.Zero(t, Pacing("words here", 4, 3))
	assert.Zero(t, Pacing("", 0, 1))
}

func TestRMS(t *testing.T) {
	assert.Zero(t, RMS(nil))
	assert.InDelta(t, 3.0, RMS([]int{3, -3, 3, -3}), 1e-9)
	assert.InDelta(t, 5.0, RMS([]int{1, -7}), 1e-9)
	assert.InDelta(t, math.Sqrt(56.0/6), RMS([]int{1, 2, 3, 4, 5, -1}), 1e-9)
}
