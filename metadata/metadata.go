// Package metadata generates YouTube title, description and tags for a
// finished video from its script. Generation failure is absorbed with a
// deterministic payload; a video never misses its slot over metadata.
package metadata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"satire-shorts/config"
	"satire-shorts/llm"
	"satire-shorts/types"
)

// Generator creates upload metadata via the LLM with a built-in fallback.
type Generator struct {
	cfg    *config.Config
	client *llm.JSONClient

	now func() time.Time
}

// New creates a metadata Generator.
func New(cfg *config.Config, gen llm.Generator) *Generator {
	return &Generator{
		cfg:    cfg,
		client: llm.NewJSONClient(gen),
		now:    time.Now,
	}
}

// Run generates metadata for the script. The script text is the only
// input; the first 500 characters carry enough of the premise for SEO.
func (g *Generator) Run(ctx context.Context, scriptText string) *types.VideoMetadata {
	log.Info().Msg("generating video metadata")

	prompt := buildPrompt(scriptText)
	val, err := g.client.GenerateJSON(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("metadata generation failed, using fallback payload")
		return g.fallback()
	}

	obj, ok := val.(map[string]any)
	if !ok {
		log.Warn().Str("shape", fmt.Sprintf("%T", val)).Msg("unexpected metadata payload, using fallback")
		return g.fallback()
	}
	title, _ := obj["title"].(string)
	if strings.TrimSpace(title) == "" {
		log.Warn().Msg("metadata payload missing title, using fallback")
		return g.fallback()
	}

	md := &types.VideoMetadata{Title: g.clampTitle(title)}
	md.Description, _ = obj["description"].(string)
	if rawTags, ok := obj["tags"].([]any); ok {
		for _, t := range rawTags {
			if s, ok := t.(string); ok && s != "" {
				md.Tags = append(md.Tags, s)
			}
		}
	}

	log.Info().Str("title", md.Title).Int("tags", len(md.Tags)).Msg("metadata ready")
	return md
}

func (g *Generator) clampTitle(title string) string {
	max := g.cfg.Metadata.TitleMaxChars
	if runes := []rune(title); len(runes) > max {
		return string(runes[:max-3]) + "..."
	}
	return title
}

func buildPrompt(scriptText string) string {
	if runes := []rune(scriptText); len(runes) > 500 {
		scriptText = string(runes[:500])
	}
	var sb strings.Builder
	sb.WriteString("Based on this Indian political satire script, generate YouTube Shorts metadata.\n\n")
	sb.WriteString("Script:\n")
	sb.WriteString(scriptText)
	sb.WriteString("\n\nReturn a punchy, curiosity-driven YouTube title (max 60 chars), a short description (2-3 lines with hashtags), and relevant tags.\n\n")
	sb.WriteString("Return ONLY valid JSON (no markdown):\n")
	sb.WriteString(`{
  "title": "Your catchy title here #shorts",
  "description": "Short engaging description with hashtags",
  "tags": ["tag1", "tag2", "tag3"]
}`)
	return sb.String()
}

// fallback is the deterministic payload shipped when generation fails.
func (g *Generator) fallback() *types.VideoMetadata {
	return &types.VideoMetadata{
		Title: fmt.Sprintf("Political Satire - %s | Comedy Cartoon #shorts", g.now().Format("02 Jan")),
		Description: "Indian political satire comedy cartoon! " +
			"Funny 3D animation of Modi, Rahul, Kejriwal.\n\n" +
			"#shorts #politicalsatire #indianpolitics #comedy #cartoon " +
			"#funnyshorts #3Danimation #trending",
		Tags: []string{
			"shorts", "political satire", "indian politics", "comedy",
			"modi", "rahul gandhi", "kejriwal", "cartoon", "3d animation",
			"funny", "parliament", "trending", "hindi comedy",
		},
	}
}
