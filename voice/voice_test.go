package voice

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satire-shorts/config"
)

func testSynth(binary string) *Synth {
	return &Synth{cfg: config.Default(), binary: binary, sleep: func(time.Duration) {}}
}

func TestSpeakRunsSynthesizer(t *testing.T) {
	s := testSynth("true")
	out := filepath.Join(t.TempDir(), "voiceovers", "voice_01.mp3")
	require.NoError(t, s.Speak(context.Background(), "Ek aur din, ek aur breaking news.", out))
}

func TestSpeakRetriesThenFails(t *testing.T) {
	s := testSynth("false")
	out := filepath.Join(t.TempDir(), "voice_01.mp3")
	err := s.Speak(context.Background(), "some narration", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestSpeakRejectsEmptyText(t *testing.T) {
	s := testSynth("true")
	err := s.Speak(context.Background(), "", filepath.Join(t.TempDir(), "out.mp3"))
	require.Error(t, err)
}

func TestToneAdjustmentsCoverKnownTones(t *testing.T) {
	adj, ok := toneAdjustments["whisper"]
	require.True(t, ok)
	assert.Equal(t, "-20%", adj.Rate)

	_, ok = toneAdjustments["smug"]
	assert.False(t, ok, "unknown tones use the configured delivery")
}
