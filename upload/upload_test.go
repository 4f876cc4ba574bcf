package upload

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"satire-shorts/config"
	"satire-shorts/types"
)

func TestOAuthClientCarriesRefreshTokenTransport(t *testing.T) {
	t.Setenv("YOUTUBE_CLIENT_ID", "id")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "secret")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "token")

	u := New(config.Default())
	client, err := u.getOAuthClient(context.Background())
	require.NoError(t, err)
	require.NotNil(t, client)

	_, ok := client.Transport.(*oauth2.Transport)
	assert.True(t, ok, "client should refresh its token transparently")
}

func TestRunWithoutCredentialsIsUploadError(t *testing.T) {
	t.Setenv("YOUTUBE_CLIENT_ID", "")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "")

	u := New(config.Default())
	_, _, err := u.Run(context.Background(), "video.mp4", &types.VideoMetadata{Title: "t"})

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "t", uerr.Title)
	assert.Contains(t, uerr.Err.Error(), "not set")
}

func TestLogUploadWritesJSON(t *testing.T) {
	dir := t.TempDir()
	md := &types.VideoMetadata{Title: "Budget Day Special"}

	require.NoError(t, LogUpload("abc123", "https://www.youtube.com/watch?v=abc123", "final.mp4", dir, md))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "abc123", entry["video_id"])
	assert.Equal(t, "Budget Day Special", entry["title"])
}
