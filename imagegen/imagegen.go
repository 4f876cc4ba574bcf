// Package imagegen produces one vertical PNG per scene. Providers are
// tried in cost order: AIMLAPI's free flux tier, then DALL-E 3, and when
// both are out a locally drawn placeholder, so a scene always has a frame.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"satire-shorts/config"
	"satire-shorts/fallback"
)

const maxPromptLen = 2000

// Engine generates scene images through the provider chain.
type Engine struct {
	cfg        *config.Config
	httpClient *http.Client
}

// New creates an Engine.
func New(cfg *config.Config) *Engine {
	return &Engine{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Generate creates the image for one scene and returns the saved file
// path. It never fails outright; with no provider available the local
// placeholder ships.
func (e *Engine) Generate(ctx context.Context, sceneID int, visual, outputDir string) (string, []fallback.Attempt, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create image dir: %w", err)
	}
	outFile := filepath.Join(outputDir, fmt.Sprintf("scene_%02d.png", sceneID))
	prompt := buildPrompt(visual)

	chain := &fallback.Chain[string, string]{
		Providers: []fallback.Provider[string, string]{
			{Name: "aimlapi", Attempt: func(ctx context.Context, prompt string) fallback.Result[string] {
				return e.aimlapi(ctx, prompt, outFile)
			}},
			{Name: "dalle3", Attempt: func(ctx context.Context, prompt string) fallback.Result[string] {
				return e.dalle3(ctx, prompt, outFile)
			}},
		},
		Retries: e.cfg.Images.Retries,
		Final: func(string) (string, error) {
			return e.placeholder(visual, outFile)
		},
	}
	return chain.Run(ctx, prompt)
}

// buildPrompt wraps the scene visual in the house 3D cartoon style.
func buildPrompt(visual string) string {
	p := "3D cartoon animation scene in Pixar DreamWorks style, " +
		"cinematic lighting, dramatic camera angles, vibrant saturated colors, " +
		"ultra-detailed 3D render, professional quality, no text or watermarks. " +
		"Scene: " + visual
	if len(p) > maxPromptLen {
		p = p[:maxPromptLen]
	}
	return p
}

type aimlRequest struct {
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	N         int       `json:"n"`
	ImageSize imageSize `json:"image_size"`
}

type imageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type imageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

func (e *Engine) aimlapi(ctx context.Context, prompt, outFile string) fallback.Result[string] {
	apiKey := os.Getenv("AIMLAPI_KEY")
	if apiKey == "" {
		return fallback.Abort[string](fmt.Errorf("AIMLAPI_KEY not set"))
	}

	reqBody := aimlRequest{
		Model:     "flux/schnell",
		Prompt:    prompt,
		N:         1,
		ImageSize: imageSize{Width: 1024, Height: 1792},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fallback.Abort[string](err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.aimlapi.com/v1/images/generations", bytes.NewReader(bodyBytes))
	if err != nil {
		return fallback.Abort[string](err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fallback.Retry[string](fmt.Errorf("aimlapi request: %w", err))
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fallback.Retry[string](err)
	}
	if resp.StatusCode != http.StatusOK {
		return fallback.Retry[string](fmt.Errorf("aimlapi %d: %s", resp.StatusCode, truncate(string(respBytes), 150)))
	}

	var imgResp imageResponse
	if err := json.Unmarshal(respBytes, &imgResp); err != nil {
		return fallback.Retry[string](fmt.Errorf("parse aimlapi response: %w", err))
	}
	if len(imgResp.Data) == 0 {
		return fallback.Retry[string](fmt.Errorf("aimlapi returned no images"))
	}

	if u := imgResp.Data[0].URL; u != "" {
		if err := e.downloadImage(ctx, u, outFile); err != nil {
			return fallback.Retry[string](err)
		}
		return fallback.Success(outFile)
	}
	if b64 := imgResp.Data[0].B64JSON; b64 != "" {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return fallback.Retry[string](fmt.Errorf("decode aimlapi b64: %w", err))
		}
		if err := os.WriteFile(outFile, raw, 0o644); err != nil {
			return fallback.Retry[string](err)
		}
		return fallback.Success(outFile)
	}
	return fallback.Retry[string](fmt.Errorf("aimlapi returned neither url nor b64"))
}

type dalleRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

func (e *Engine) dalle3(ctx context.Context, prompt, outFile string) fallback.Result[string] {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fallback.Abort[string](fmt.Errorf("OPENAI_API_KEY not set"))
	}

	reqBody := dalleRequest{
		Model:          "dall-e-3",
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1792",
		Quality:        "standard",
		ResponseFormat: "url",
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fallback.Abort[string](err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/images/generations", bytes.NewReader(bodyBytes))
	if err != nil {
		return fallback.Abort[string](err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fallback.Retry[string](fmt.Errorf("dalle request: %w", err))
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fallback.Retry[string](err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("dalle %d: %s", resp.StatusCode, truncate(string(respBytes), 150))
		// A billing failure cannot clear up between attempts.
		if strings.Contains(strings.ToLower(string(respBytes)), "billing") {
			return fallback.Abort[string](err)
		}
		return fallback.Retry[string](err)
	}

	var imgResp imageResponse
	if err := json.Unmarshal(respBytes, &imgResp); err != nil {
		return fallback.Retry[string](fmt.Errorf("parse dalle response: %w", err))
	}
	if len(imgResp.Data) == 0 || imgResp.Data[0].URL == "" {
		return fallback.Retry[string](fmt.Errorf("dalle returned no image url"))
	}
	if err := e.downloadImage(ctx, imgResp.Data[0].URL, outFile); err != nil {
		return fallback.Retry[string](err)
	}
	return fallback.Success(outFile)
}

func (e *Engine) downloadImage(ctx context.Context, imageURL, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d fetching image", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	// Tiny bodies are error pages, not images.
	if len(data) < 1000 {
		return fmt.Errorf("image response too small (%d bytes)", len(data))
	}
	return os.WriteFile(outFile, data, 0o644)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
