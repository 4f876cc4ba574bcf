// Package voice synthesizes narration audio through the edge-tts CLI
// (free Microsoft TTS, installed with pip install edge-tts).
package voice

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"satire-shorts/config"
)

// Adjustment tweaks delivery for a spoken tone.
type Adjustment struct {
	Rate  string
	Pitch string
}

// toneAdjustments maps a scene's tone cue to delivery tweaks. Unknown
// tones fall back to the configured house delivery.
var toneAdjustments = map[string]Adjustment{
	"excited":  {Rate: "+15%", Pitch: "+10Hz"},
	"angry":    {Rate: "+10%", Pitch: "-5Hz"},
	"sad":      {Rate: "-15%", Pitch: "-10Hz"},
	"confused": {Rate: "-5%", Pitch: "+5Hz"},
	"dramatic": {Rate: "-10%", Pitch: "-5Hz"},
	"scared":   {Rate: "+20%", Pitch: "+15Hz"},
	"laughing": {Rate: "+10%", Pitch: "+10Hz"},
	"whisper":  {Rate: "-20%", Pitch: "-10Hz"},
	"normal":   {Rate: "+0%", Pitch: "+0Hz"},
}

const maxAttempts = 3

// Synth generates voiceover files via edge-tts.
type Synth struct {
	cfg *config.Config

	// binary and sleep are overridden in tests.
	binary string
	sleep  func(time.Duration)
}

// New creates a Synth. It fails when edge-tts is not on PATH so the
// pipeline reports the missing tool before any scene work starts.
func New(cfg *config.Config) (*Synth, error) {
	if _, err := exec.LookPath("edge-tts"); err != nil {
		return nil, fmt.Errorf("edge-tts not found. Install it with: pip install edge-tts")
	}
	return &Synth{cfg: cfg, binary: "edge-tts", sleep: time.Sleep}, nil
}

// Speak synthesizes text with the narrator voice and house delivery.
func (s *Synth) Speak(ctx context.Context, text, outFile string) error {
	return s.speak(ctx, text, s.cfg.Voice.Narrator, Adjustment{Rate: s.cfg.Voice.Rate, Pitch: s.cfg.Voice.Pitch}, outFile)
}

// SpeakTone synthesizes text with a tone cue applied on top of the given
// voice. An unknown tone uses the house delivery.
func (s *Synth) SpeakTone(ctx context.Context, text, voice, tone, outFile string) error {
	adj, ok := toneAdjustments[tone]
	if !ok {
		adj = Adjustment{Rate: s.cfg.Voice.Rate, Pitch: s.cfg.Voice.Pitch}
	}
	if voice == "" {
		voice = s.cfg.Voice.Narrator
	}
	return s.speak(ctx, text, voice, adj, outFile)
}

func (s *Synth) speak(ctx context.Context, text, voice string, adj Adjustment, outFile string) error {
	if text == "" {
		return fmt.Errorf("empty narration text")
	}
	if err := os.MkdirAll(filepath.Dir(outFile), 0o755); err != nil {
		return fmt.Errorf("create voiceover dir: %w", err)
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		cmd := exec.CommandContext(ctx, s.binary,
			"--voice", voice,
			"--rate", adj.Rate,
			"--pitch", adj.Pitch,
			"--text", text,
			"--write-media", outFile,
		)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err = cmd.Run(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Int("attempt", attempt).Err(err).Msg("tts attempt failed, retrying")
		s.sleep(time.Duration(attempt) * 2 * time.Second)
	}
	return fmt.Errorf("edge-tts failed after %d attempts: %w", maxAttempts, err)
}
