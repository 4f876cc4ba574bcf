package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"satire-shorts/config"
	"satire-shorts/types"
)

func TestRunRejectsEmptyTimeline(t *testing.T) {
	r := New(config.Default())
	_, err := r.Run(context.Background(), nil, t.TempDir())
	require.Error(t, err)
}

func TestRunFailsCleanlyOnMissingImage(t *testing.T) {
	r := New(config.Default())
	segments := []types.MediaSegment{
		{SceneID: 1, ImageRef: "/nonexistent/scene_01.png", Duration: 5},
	}
	_, err := r.Run(context.Background(), segments, t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "scene 1")
}
