package report

import "sort"

// Thresholds relative to the job average that mark a segment as a highlight.
const (
	slowPacing  = 0.7
	fastPacing  = 1.3
	quietVolume = 0.9
	loudVolume  = 1.1
)

// Aggregate merges per-segment results into a job-level Report. Segment
// order is preserved. Summary is left empty for the caller to attach.
func Aggregate(segments []Segment, fullText string, duration float64) Report {
	r := Report{
		Segments:         segments,
		FullText:         fullText,
		Duration:         duration,
		EmotionHistogram: map[string]int{},
		SegmentFeedback:  make([]SegmentFeedback, 0, len(segments)),
		Highlights:       []Highlight{},
	}
	if r.Segments == nil {
		r.Segments = []Segment{}
	}

	var pacing, volume float64
	for _, s := range segments {
		r.EmotionHistogram[s.Emotion.Label]++
		r.TotalFillers += s.Fillers.Total
		pacing += s.Pacing
		volume += s.Volume
		r.SegmentFeedback = append(r.SegmentFeedback, SegmentFeedback{
			SegmentID:        s.ID,
			Text:             s.Text,
			Emotion:          s.Emotion.Label,
			Fillers:          s.Fillers.Total,
			FillerPercentage: s.Fillers.Percentage,
		})
	}
	if n := float64(len(segments)); n > 0 {
		r.AveragePacing = pacing / n
		r.AverageVolume = volume / n
	}

	r.DominantEmotion = dominant(r.EmotionHistogram)
	r.Highlights = highlights(segments, r.AveragePacing, r.AverageVolume)
	return r
}

func dominant(hist map[string]int) string {
	if len(hist) == 0 {
		return UnknownEmotion
	}
	labels := make([]string, 0, len(hist))
	for l := range hist {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	best := labels[0]
	for _, l := range labels[1:] {
		if hist[l] > hist[best] {
			best = l
		}
	}
	return best
}

func highlights(segments []Segment, avgPacing, avgVolume float64) []Highlight {
	out := []Highlight{}
	for _, s := range segments {
		add := func(k HighlightKind) {
			out = append(out, Highlight{SegmentID: s.ID, Start: s.Start, End: s.End, Kind: k})
		}
		if s.Fillers.Total > 0 {
			add(HighlightFillers)
		}
		if avgPacing > 0 {
			switch {
			case s.Pacing < avgPacing*slowPacing:
				add(HighlightSlow)
			case s.Pacing > avgPacing*fastPacing:
				add(HighlightFast)
			}
		}
		if avgVolume > 0 {
			switch {
			case s.Volume < avgVolume*quietVolume:
				add(HighlightQuiet)
			case s.Volume > avgVolume*loudVolume:
				add(HighlightLoud)
			}
		}
	}
	return out
}
