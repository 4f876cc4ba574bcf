// Package upload publishes the finished video to YouTube via the Data API
// v3, authenticating with a long-lived OAuth refresh token from the
// environment. Upload failure is reported but never aborts the run; the
// rendered file stays on disk for manual publishing.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"satire-shorts/config"
	"satire-shorts/types"
)

// UploadError wraps an upload failure with the context the status log
// shows the operator.
type UploadError struct {
	Title string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %q: %v", e.Title, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Uploader publishes videos to YouTube.
type Uploader struct {
	cfg *config.Config
}

// New creates an Uploader.
func New(cfg *config.Config) *Uploader {
	return &Uploader{cfg: cfg}
}

// Run uploads the video file and returns its ID and watch URL.
func (u *Uploader) Run(ctx context.Context, videoFile string, md *types.VideoMetadata) (string, string, error) {
	log.Info().Msg("authenticating with YouTube API")

	client, err := u.getOAuthClient(ctx)
	if err != nil {
		return "", "", &UploadError{Title: md.Title, Err: err}
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", "", &UploadError{Title: md.Title, Err: fmt.Errorf("youtube service: %w", err)}
	}

	log.Info().Str("title", md.Title).Msg("uploading")

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                md.Title,
			Description:          md.Description,
			Tags:                 md.Tags,
			CategoryId:           u.cfg.Upload.CategoryID,
			DefaultLanguage:      u.cfg.Upload.DefaultLanguage,
			DefaultAudioLanguage: u.cfg.Upload.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.cfg.Upload.Visibility,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
		},
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return "", "", &UploadError{Title: md.Title, Err: fmt.Errorf("open video file: %w", err)}
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		log.Info().Float64("size_mb", float64(fi.Size())/1024/1024).Msg("video file opened")
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.NotifySubscribers(u.cfg.Upload.NotifySubscribers)
	call.Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return "", "", &UploadError{Title: md.Title, Err: err}
	}

	videoID := uploaded.Id
	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	log.Info().Str("url", videoURL).Msg("uploaded")
	return videoID, videoURL, nil
}

// getOAuthClient builds an HTTP client from env refresh-token credentials.
func (u *Uploader) getOAuthClient(ctx context.Context) (*http.Client, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}

	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}

	return oauth2.NewClient(ctx, conf.TokenSource(ctx, token)), nil
}

// LogUpload saves the upload result next to the run's other logs.
func LogUpload(videoID, videoURL, videoFile, logsDir string, md *types.VideoMetadata) error {
	entry := map[string]any{
		"video_id":    videoID,
		"video_url":   videoURL,
		"title":       md.Title,
		"uploaded_at": time.Now().UTC().Format(time.RFC3339),
		"video_file":  videoFile,
	}

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return err
	}
	logFile := filepath.Join(logsDir, fmt.Sprintf("upload_%s.json", time.Now().Format("20060102_150405")))
	data, _ := json.MarshalIndent(entry, "", "  ")
	if err := os.WriteFile(logFile, data, 0o644); err != nil {
		return err
	}

	log.Info().Str("file", logFile).Msg("upload log saved")
	return nil
}
