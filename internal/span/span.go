// Package span implements the frame-based time model shared by every
// timeline placement.
//
// A Span carries two intervals, both quantized to integer frames:
//
//   - the clip-relative interval (which part of the source media is used)
//   - the timeline-relative interval (where the item sits in the project)
//
// Playback rate is always derived from the ratio of the two durations,
// never stored, so the two intervals cannot desync.
//
// All computation and storage stay in integer frames. Conversion to the
// compositor's native microsecond clock happens exactly once, at the point
// a render node's time range is set (Micros). The conversion is
// one-directional per call - frames never round-trip through microseconds.
package span

import (
	"fmt"
	"math"
)

// NoClip is the sentinel clip bound for media kinds without an internal
// timeline (images, text). A Span with NoClip bounds has only a meaningful
// timeline interval.
const NoClip int64 = -1

// MicrosPerSecond is the compositor's native clock resolution.
const MicrosPerSecond int64 = 1_000_000

// rateSnapStep and rateSnapTolerance control playback-rate rounding.
// Repeated frame/micro conversions leave tiny float drift on the derived
// rate; values within 0.001 of a 0.1 step snap to that step.
const (
	rateSnapStep      = 0.1
	rateSnapTolerance = 0.001
)

// Span is a pair of frame intervals: [ClipStart, ClipEnd) within the source
// media and [TimelineStart, TimelineEnd) within the project timeline.
type Span struct {
	ClipStart     int64 `json:"clip_start" yaml:"clip_start"`
	ClipEnd       int64 `json:"clip_end" yaml:"clip_end"`
	TimelineStart int64 `json:"timeline_start" yaml:"timeline_start"`
	TimelineEnd   int64 `json:"timeline_end" yaml:"timeline_end"`
}

// Still returns a Span for a still media kind (image, text): sentinel clip
// bounds, timeline interval only.
func Still(timelineStart, timelineEnd int64) Span {
	return Span{
		ClipStart:     NoClip,
		ClipEnd:       NoClip,
		TimelineStart: timelineStart,
		TimelineEnd:   timelineEnd,
	}
}

// HasClip reports whether the clip-relative interval is meaningful.
func (s Span) HasClip() bool {
	return s.ClipStart != NoClip || s.ClipEnd != NoClip
}

// Duration returns the timeline-relative duration in frames.
func (s Span) Duration() int64 {
	return s.TimelineEnd - s.TimelineStart
}

// ClipDuration returns the clip-relative duration in frames.
// Zero for still spans.
func (s Span) ClipDuration() int64 {
	if !s.HasClip() {
		return 0
	}
	return s.ClipEnd - s.ClipStart
}

// Rate derives the playback rate: clip duration over timeline duration.
// Returns 1 when either duration is not positive (still media plays at
// unit rate by definition).
//
// The raw ratio is snapped to the nearest 0.1 step when it lands within
// 0.001 of one, absorbing float drift from repeated conversions. Ratios
// genuinely between steps (e.g. 5/6) are returned unrounded.
func (s Span) Rate() float64 {
	clipDur := s.ClipDuration()
	timelineDur := s.Duration()
	if clipDur <= 0 || timelineDur <= 0 {
		return 1
	}

	rate := float64(clipDur) / float64(timelineDur)

	snapped := math.Round(rate/rateSnapStep) * rateSnapStep
	if math.Abs(rate-snapped) < rateSnapTolerance {
		return snapped
	}
	return rate
}

// Valid reports whether the span satisfies the placement invariants:
// a positive timeline interval starting at or after frame zero, and, when
// clip bounds are meaningful, a positive clip interval with non-negative
// bounds. Callers must reject or clamp spans that fail Valid before
// committing any mutation.
func (s Span) Valid() bool {
	if s.TimelineStart < 0 || s.TimelineStart >= s.TimelineEnd {
		return false
	}
	if !s.HasClip() {
		// Both bounds must be the sentinel, not just one.
		return s.ClipStart == NoClip && s.ClipEnd == NoClip
	}
	return s.ClipStart >= 0 && s.ClipStart < s.ClipEnd
}

// Split cuts s at the given timeline frame and returns the two child spans.
//
// The clip-relative cut point is NOT the same frame offset: the timeline
// interval may run at a non-unit rate relative to the clip interval, so the
// cut is placed proportionally:
//
//	ratio   = (frame - TimelineStart) / (TimelineEnd - TimelineStart)
//	clipCut = ClipStart + round(ClipDuration * ratio)
//
// Still spans split on the timeline interval only. Returns an error when
// the cut frame is outside the open interior of the timeline interval or
// when either child would be invalid.
func Split(s Span, frame int64) (Span, Span, error) {
	if !s.Valid() {
		return Span{}, Span{}, fmt.Errorf("split: source span %v is invalid", s)
	}
	if frame <= s.TimelineStart || frame >= s.TimelineEnd {
		return Span{}, Span{}, fmt.Errorf("split: frame %d outside (%d, %d)", frame, s.TimelineStart, s.TimelineEnd)
	}

	left := s
	right := s
	left.TimelineEnd = frame
	right.TimelineStart = frame

	if s.HasClip() {
		ratio := float64(frame-s.TimelineStart) / float64(s.Duration())
		clipCut := s.ClipStart + int64(math.Round(float64(s.ClipDuration())*ratio))
		left.ClipEnd = clipCut
		right.ClipStart = clipCut
	}

	if !left.Valid() || !right.Valid() {
		return Span{}, Span{}, fmt.Errorf("split: frame %d produces a degenerate child span", frame)
	}
	return left, right, nil
}

// Micros converts a frame count to the compositor's native microsecond
// clock at the given frame rate. This is the only frames-to-native
// conversion in the system and is never inverted.
func Micros(frames int64, fps int) int64 {
	if fps <= 0 {
		return 0
	}
	return frames * MicrosPerSecond / int64(fps)
}
