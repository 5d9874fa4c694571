package metrics

import "math"

// Pacing returns words per second over [start, end], or 0 for an empty interval.
func Pacing(text string, start, end float64) float64 {
	if end <= start {
		return 0
	}
	return float64(WordCount(text)) / (end - start)
}

// RMS returns the root-mean-square amplitude of samples, 0 when empty.
func RMS(samples []int) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}
