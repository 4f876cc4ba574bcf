// Package pipeline orchestrates one full video run: script, scenes,
// per-scene media, timeline assembly, encode, metadata, upload. Media
// failures degrade single scenes; only an unusable script or an empty
// timeline abort the run.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"satire-shorts/assemble"
	"satire-shorts/config"
	"satire-shorts/history"
	"satire-shorts/imagegen"
	"satire-shorts/llm"
	"satire-shorts/metadata"
	"satire-shorts/render"
	"satire-shorts/sceneparse"
	"satire-shorts/script"
	"satire-shorts/textclean"
	"satire-shorts/types"
	"satire-shorts/upload"
	"satire-shorts/voice"
)

// minProvidedScriptLen is the threshold under which a caller-provided
// script is ignored and a fresh one generated.
const minProvidedScriptLen = 50

// Result is what one completed run produced.
type Result struct {
	RunID      string   `json:"run_id"`
	ScriptText string   `json:"script_text"`
	Scenes     int      `json:"scenes"`
	Duration   float64  `json:"duration_sec"`
	VideoFile  string   `json:"video_file"`
	VideoID    string   `json:"video_id,omitempty"`
	VideoURL   string   `json:"video_url,omitempty"`
	StartedAt  string   `json:"started_at"`
	FinishedAt string   `json:"finished_at"`
	Status     []string `json:"status_log"`
}

// Runner wires the stages together for repeated runs. Per-run state lives
// in Run locals and the per-run StatusLog, never on the Runner.
type Runner struct {
	cfg      *config.Config
	log      zerolog.Logger
	hist     *history.Store
	writer   *script.Writer
	parser   *sceneparse.Parser
	images   *imagegen.Engine
	synth    *voice.Synth
	renderer *render.Renderer
	meta     *metadata.Generator
	uploader *upload.Uploader
}

// New builds a Runner from config. The voice synthesizer probes for its
// CLI here so a missing tool surfaces before the first run.
func New(cfg *config.Config, logger zerolog.Logger) (*Runner, error) {
	gen, err := llm.New(cfg.Script.Provider, cfg.Script.Model, cfg.Script.OllamaURL)
	if err != nil {
		return nil, err
	}
	synth, err := voice.New(cfg)
	if err != nil {
		return nil, err
	}
	hist := history.OpenWithCap(cfg.History.File, cfg.History.MaxEntries)

	return &Runner{
		cfg:      cfg,
		log:      logger,
		hist:     hist,
		writer:   script.New(cfg, gen, hist),
		parser:   sceneparse.New(),
		images:   imagegen.New(cfg),
		synth:    synth,
		renderer: render.New(cfg),
		meta:     metadata.New(cfg, gen),
		uploader: upload.New(cfg),
	}, nil
}

func newRunID() string {
	return uuid.NewString()[:8]
}

// Run executes one full pipeline pass. A provided scriptText is used as
// is when long enough; otherwise a script is generated.
func (r *Runner) Run(ctx context.Context, scriptText string) (*Result, error) {
	runID := newRunID()
	runDir := filepath.Join(r.cfg.Paths.Output, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	status := NewStatusLog()
	status.Add("Starting video pipeline, run %s", runID)
	r.log.Info().Str("run_id", runID).Str("dir", runDir).Msg("pipeline starting")

	result := &Result{
		RunID:     runID,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	defer func() {
		result.FinishedAt = time.Now().UTC().Format(time.RFC3339)
		result.Status = status.Lines()
		saveJSON(filepath.Join(runDir, "run.json"), result)
	}()

	// Stage 1: script
	if len(strings.TrimSpace(scriptText)) < minProvidedScriptLen {
		status.Add("Generating script...")
		out, attempts, err := r.writer.Run(ctx)
		if err != nil {
			status.AddError("Script generation failed", err)
			return result, fmt.Errorf("script: %w", err)
		}
		for _, a := range attempts {
			r.log.Debug().Str("provider", a.Provider).Int("attempt", a.Number).
				Stringer("outcome", a.Outcome).Str("detail", a.Detail).Msg("script attempt")
		}
		scriptText = out.Text
		status.Add("Script ready, angle %s", out.Angle)
	} else {
		status.Add("Using provided script (%d chars)", len(scriptText))
	}
	result.ScriptText = scriptText
	saveJSON(filepath.Join(runDir, "script.json"), map[string]string{"text": scriptText})

	// Stage 2: parse
	scenes, err := r.parser.Parse(scriptText)
	if err != nil {
		status.AddError("Script parsing failed", err)
		return result, fmt.Errorf("parse: %w", err)
	}
	result.Scenes = len(scenes)
	status.Add("Parsed %d scenes", len(scenes))

	// Stage 3: per-scene media. Slots are index-addressed so workers never
	// contend and scene order survives.
	images := make([]string, len(scenes))
	audios := make([]string, len(scenes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Video.Workers)
	for i, scene := range scenes {
		i, scene := i, scene
		g.Go(func() error {
			r.sceneMedia(gctx, scene, runDir, status, &images[i], &audios[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	// Stage 4: timeline
	inputs := make([]assemble.Input, len(scenes))
	for i, scene := range scenes {
		inputs[i] = assemble.Input{SceneID: scene.ID, ImagePath: images[i], AudioPath: audios[i]}
	}
	segments, total, err := assemble.Assemble(inputs, r.cfg.Video.MaxDuration, render.ProbeDuration)
	if err != nil {
		status.AddError("Assembly failed", err)
		return result, fmt.Errorf("assemble: %w", err)
	}
	result.Duration = total
	status.Add("Timeline ready: %d segments, %.1fs", len(segments), total)

	// Stage 5: encode
	videoFile, err := r.renderer.Run(ctx, segments, filepath.Join(runDir, "video"))
	if err != nil {
		status.AddError("Render failed", err)
		return result, fmt.Errorf("render: %w", err)
	}
	result.VideoFile = videoFile
	if fi, err := os.Stat(videoFile); err == nil {
		status.Add("Video ready (%.1f MB)", float64(fi.Size())/1024/1024)
	}

	// Stage 6: metadata (never fails, falls back internally)
	md := r.meta.Run(ctx, scriptText)
	saveJSON(filepath.Join(runDir, "metadata.json"), md)

	// Stage 7: upload. Failure keeps the rendered file for manual publish.
	if r.cfg.Upload.Enabled {
		videoID, videoURL, err := r.uploader.Run(ctx, videoFile, md)
		if err != nil {
			status.AddError("Upload failed (video kept on disk)", err)
			r.log.Warn().Err(err).Str("file", videoFile).Msg("upload failed")
		} else {
			result.VideoID = videoID
			result.VideoURL = videoURL
			status.Add("Uploaded: %s", videoURL)
			_ = upload.LogUpload(videoID, videoURL, videoFile, r.cfg.Paths.Logs, md)
		}
	} else {
		status.Add("Upload disabled, video at %s", videoFile)
	}

	r.log.Info().Str("run_id", runID).Float64("duration", total).Msg("pipeline complete")
	return result, nil
}

// sceneMedia produces the image and voiceover for one scene. Failures
// leave the corresponding slot empty; assembly decides what that means.
func (r *Runner) sceneMedia(ctx context.Context, scene types.Scene, runDir string, status *StatusLog, imageOut, audioOut *string) {
	status.Add("Generating scene %d media...", scene.ID)

	imgPath, attempts, err := r.images.Generate(ctx, scene.ID, scene.Visual, filepath.Join(runDir, "images"))
	if err != nil {
		status.AddError(fmt.Sprintf("Scene %d image failed", scene.ID), err)
	} else {
		*imageOut = imgPath
		r.log.Debug().Int("scene", scene.ID).Str("provider", attempts[len(attempts)-1].Provider).Msg("image ready")
	}

	narration := textclean.StripQuotes(textclean.Strip(scene.Narration))
	if narration == "" {
		return
	}
	audioPath := filepath.Join(runDir, "voiceovers", fmt.Sprintf("voice_%02d.mp3", scene.ID))
	if err := r.synth.Speak(ctx, narration, audioPath); err != nil {
		status.AddError(fmt.Sprintf("Scene %d voice failed", scene.ID), err)
		return
	}
	*audioOut = audioPath
}

func saveJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}
