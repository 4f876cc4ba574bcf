// Package assemble computes the timeline for a video from per-scene media.
// It decides each segment's duration and enforces the total length cap; the
// actual encoding happens later in the render package, which treats the
// returned segment durations as authoritative.
package assemble

import (
	"fmt"

	"satire-shorts/types"
)

const (
	// PadSeconds is breathing room added after each narration clip.
	PadSeconds = 0.3
	// DefaultSeconds is the display time for a scene without audio.
	DefaultSeconds = 5.0
	// MinSegmentSeconds is the shortest segment worth emitting. When a
	// segment's clamped duration falls below this, assembly stops rather
	// than flash a sliver of a scene.
	MinSegmentSeconds = 1.0
)

// Input is one scene's media, in scene order. Explicit, when positive, is a
// scripted display duration used only when the scene has no audio.
type Input struct {
	SceneID   int
	ImagePath string
	AudioPath string
	Explicit  float64
}

// Prober returns the playable duration of an audio file in seconds.
type Prober func(path string) (float64, error)

// AssemblyError reports that no scene had usable media.
type AssemblyError struct {
	Scenes int
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("no usable segments from %d scenes", e.Scenes)
}

// Assemble builds the segment timeline. Scenes without an image are
// skipped; a scene whose audio cannot be probed falls back to a silent
// segment. Segments are emitted in input order until capSeconds is
// reached, and the last segment is shortened to fit. The returned total is
// the sum of segment durations.
//
// Truncating a segment below its audio length is deliberate: the cap wins,
// and the render step cuts the audio at the segment boundary.
func Assemble(inputs []Input, capSeconds float64, probe Prober) ([]types.MediaSegment, float64, error) {
	var (
		segments []types.MediaSegment
		total    float64
	)

	for _, in := range inputs {
		if in.ImagePath == "" {
			continue
		}

		remaining := capSeconds - total
		if remaining <= 0 {
			break
		}

		duration := DefaultSeconds
		if in.Explicit > 0 {
			duration = in.Explicit
		}
		audio := in.AudioPath
		if audio != "" {
			d, err := probe(audio)
			if err != nil || d <= 0 {
				audio = ""
			} else {
				duration = d + PadSeconds
			}
		}
		if duration > remaining {
			duration = remaining
		}
		if duration < MinSegmentSeconds {
			break
		}

		segments = append(segments, types.MediaSegment{
			SceneID:  in.SceneID,
			ImageRef: in.ImagePath,
			AudioRef: audio,
			Duration: duration,
		})
		total += duration
	}

	if len(segments) == 0 {
		return nil, 0, &AssemblyError{Scenes: len(inputs)}
	}
	return segments, total, nil
}
