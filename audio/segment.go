package audio

import (
	"fmt"
	"math"
)

// Span is a time interval of one transcript segment, in seconds.
type Span struct {
	ID    int
	Start float64
	End   float64
}

// Clip is the audio of one span.
type Clip struct {
	SegmentID int
	Audio     Buffer
}

// ValidateSpans rejects timestamps that are not finite numbers. Spans that
// fall outside the audio or are reversed are left to Split to clip.
func ValidateSpans(spans []Span) error {
	for _, s := range spans {
		if !finite(s.Start) || !finite(s.End) {
			return fmt.Errorf("segment %d: malformed timestamps [%v, %v]", s.ID, s.Start, s.End)
		}
	}
	return nil
}

// Split slices b into one clip per span, in span order. Sample indexes are
// floor(t*rate) clipped to the buffer; a span that is empty after clipping
// yields an empty clip. Clips share b's backing array.
func Split(b Buffer, spans []Span) []Clip {
	ch := b.channels()
	frames := b.Frames()
	out := make([]Clip, 0, len(spans))
	for _, s := range spans {
		start := frameIndex(s.Start, b.Rate, frames)
		end := frameIndex(s.End, b.Rate, frames)
		if end < start {
			end = start
		}
		lo, hi := start*ch, end*ch
		out = append(out, Clip{
			SegmentID: s.ID,
			Audio: Buffer{
				Samples:  b.Samples[lo:hi:hi],
				Rate:     b.Rate,
				Channels: b.Channels,
				BitDepth: b.BitDepth,
			},
		})
	}
	return out
}

func frameIndex(sec float64, rate, frames int) int {
	if !finite(sec) {
		return 0
	}
	i := math.Floor(sec * float64(rate))
	switch {
	case i <= 0:
		return 0
	case i >= float64(frames):
		return frames
	default:
		return int(i)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
