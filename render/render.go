// Package render encodes the final vertical MP4 from the assembled
// segment timeline using ffmpeg. Segment durations are authoritative: a
// narration longer than its segment is cut at the boundary.
package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"satire-shorts/config"
	"satire-shorts/types"
)

// Renderer encodes MediaSegments into the final video.
type Renderer struct {
	cfg *config.Config
}

// New creates a Renderer.
func New(cfg *config.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// ProbeDuration uses ffprobe to get accurate audio duration in seconds.
func ProbeDuration(audioFile string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioFile,
	).Output()
	if err != nil {
		return 0, err
	}
	var dur float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur)
	return dur, err
}

// Run encodes each segment as a clip and concatenates them into
// final_video.mp4 under outputDir.
func (r *Renderer) Run(ctx context.Context, segments []types.MediaSegment, outputDir string) (string, error) {
	log.Info().Int("segments", len(segments)).Msg("encoding timeline")

	if len(segments) == 0 {
		return "", fmt.Errorf("no segments to render")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create render dir: %w", err)
	}

	var clips []string
	for i, seg := range segments {
		clip := filepath.Join(outputDir, fmt.Sprintf("clip_%02d.mp4", i))
		if err := r.encodeSegment(ctx, seg, clip); err != nil {
			return "", fmt.Errorf("encode scene %d: %w", seg.SceneID, err)
		}
		clips = append(clips, clip)
	}

	outFile := filepath.Join(outputDir, "final_video.mp4")
	if err := r.concat(ctx, clips, outputDir, outFile); err != nil {
		return "", fmt.Errorf("concat segments: %w", err)
	}

	log.Info().Str("file", outFile).Msg("final video ready")
	return outFile, nil
}

// encodeSegment turns one still image plus optional narration into a clip
// of exactly seg.Duration seconds. Silent segments get a muted audio track
// so the concat step sees uniform streams.
func (r *Renderer) encodeSegment(ctx context.Context, seg types.MediaSegment, outFile string) error {
	w, h, fps := r.cfg.Video.Width, r.cfg.Video.Height, r.cfg.Video.FPS

	args := []string{"-y", "-loop", "1", "-i", seg.ImageRef}
	if seg.AudioRef != "" {
		args = append(args, "-i", seg.AudioRef)
	} else {
		args = append(args, "-f", "lavfi", "-i", "anullsrc=channel_layout=stereo:sample_rate=44100")
	}

	args = append(args,
		"-t", fmt.Sprintf("%.3f", seg.Duration),
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1", w, h, w, h),
		"-r", fmt.Sprintf("%d", fps),
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		outFile,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg segment: %w", err)
	}
	return nil
}

func (r *Renderer) concat(ctx context.Context, clips []string, outputDir, outFile string) error {
	listFile := filepath.Join(outputDir, "concat_list.txt")
	var lines []string
	for _, c := range clips {
		lines = append(lines, fmt.Sprintf("file '%s'", c))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		"-movflags", "+faststart",
		outFile,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat: %w", err)
	}
	return nil
}
