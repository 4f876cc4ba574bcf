package assemble

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedProbe(seconds float64) Prober {
	return func(string) (float64, error) { return seconds, nil }
}

func sceneInputs(n int) []Input {
	inputs := make([]Input, n)
	for i := range inputs {
		inputs[i] = Input{
			SceneID:   i + 1,
			ImagePath: fmt.Sprintf("scene_%d.png", i+1),
			AudioPath: fmt.Sprintf("scene_%d.mp3", i+1),
		}
	}
	return inputs
}

func TestCapTruncatesFinalSegment(t *testing.T) {
	// Five 8s narrations against a 30s cap: 8.3 + 8.3 + 8.3 leaves 5.1 for
	// the fourth segment and nothing for the fifth.
	segments, total, err := Assemble(sceneInputs(5), 30, fixedProbe(8))
	require.NoError(t, err)
	require.Len(t, segments, 4)

	assert.InDelta(t, 8.3, segments[0].Duration, 1e-9)
	assert.InDelta(t, 8.3, segments[1].Duration, 1e-9)
	assert.InDelta(t, 8.3, segments[2].Duration, 1e-9)
	assert.InDelta(t, 5.1, segments[3].Duration, 1e-9)
	assert.InDelta(t, 30, total, 1e-9)
}

func TestUncappedRunIsPrefixOfCappedRun(t *testing.T) {
	inputs := sceneInputs(5)

	capped, _, err := Assemble(inputs, 30, fixedProbe(8))
	require.NoError(t, err)
	free, _, err := Assemble(inputs, 1000, fixedProbe(8))
	require.NoError(t, err)

	require.Len(t, free, 5)
	for i := range capped {
		assert.Equal(t, free[i].SceneID, capped[i].SceneID)
		assert.Equal(t, free[i].ImageRef, capped[i].ImageRef)
		assert.LessOrEqual(t, capped[i].Duration, free[i].Duration)
	}
}

func TestSceneWithoutImageIsSkipped(t *testing.T) {
	inputs := []Input{
		{SceneID: 1, ImagePath: "a.png", AudioPath: "a.mp3"},
		{SceneID: 2, ImagePath: "", AudioPath: "b.mp3"},
		{SceneID: 3, ImagePath: "c.png"},
	}
	segments, total, err := Assemble(inputs, 30, fixedProbe(4))
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, 1, segments[0].SceneID)
	assert.Equal(t, 3, segments[1].SceneID)
	// Scene 3 has no audio so it gets the default display time.
	assert.InDelta(t, DefaultSeconds, segments[1].Duration, 1e-9)
	assert.InDelta(t, 4.3+DefaultSeconds, total, 1e-9)
}

func TestUnprobeableAudioFallsBackToSilentSegment(t *testing.T) {
	inputs := []Input{{SceneID: 1, ImagePath: "a.png", AudioPath: "broken.mp3"}}
	segments, _, err := Assemble(inputs, 30, func(string) (float64, error) {
		return 0, errors.New("ffprobe: invalid data")
	})
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Empty(t, segments[0].AudioRef)
	assert.InDelta(t, DefaultSeconds, segments[0].Duration, 1e-9)
}

func TestExplicitDurationUsedWithoutAudio(t *testing.T) {
	inputs := []Input{{SceneID: 1, ImagePath: "a.png", Explicit: 2.5}}
	segments, _, err := Assemble(inputs, 30, fixedProbe(0))
	require.NoError(t, err)
	assert.InDelta(t, 2.5, segments[0].Duration, 1e-9)
}

func TestSliverRemainderStopsAssembly(t *testing.T) {
	// 9.7s of narration fills 10.0 with pad; 0.0 remains, under the 1s
	// minimum, so the second scene is dropped entirely.
	segments, total, err := Assemble(sceneInputs(2), 10, fixedProbe(9.7))
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.InDelta(t, 10, total, 1e-9)
}

func TestShortNarrationHaltsAssembly(t *testing.T) {
	// 0.4s of audio pads out to 0.7s, below the 1s minimum. Assembly halts
	// right there, even with the whole cap unspent, so later scenes never
	// run either.
	_, _, err := Assemble(sceneInputs(3), 30, fixedProbe(0.4))
	var aerr *AssemblyError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 3, aerr.Scenes)
}

func TestShortNarrationMidTimelineDropsRemainder(t *testing.T) {
	inputs := sceneInputs(3)
	segments, total, err := Assemble(inputs, 30, func(path string) (float64, error) {
		if path == "scene_2.mp3" {
			return 0.4, nil
		}
		return 8, nil
	})
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, 1, segments[0].SceneID)
	assert.InDelta(t, 8.3, total, 1e-9)
}

func TestAllScenesUnusableIsAssemblyError(t *testing.T) {
	inputs := []Input{{SceneID: 1}, {SceneID: 2}}
	_, _, err := Assemble(inputs, 30, fixedProbe(5))
	var aerr *AssemblyError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 2, aerr.Scenes)
}
