package imagegen

import (
	"context"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satire-shorts/config"
	"satire-shorts/fallback"
)

func TestGenerateShipsPlaceholderWithoutProviders(t *testing.T) {
	t.Setenv("AIMLAPI_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := config.Default()
	cfg.Images.Width = 108
	cfg.Images.Height = 192

	e := New(cfg)
	path, attempts, err := e.Generate(context.Background(), 3, "Modi and Rahul in a cartoon parliament arena", t.TempDir())
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 108, img.Bounds().Dx())
	assert.Equal(t, 192, img.Bounds().Dy())

	// Both paid providers disqualify themselves immediately.
	require.Len(t, attempts, 3)
	assert.Equal(t, fallback.Fatal, attempts[0].Outcome)
	assert.Equal(t, fallback.Fatal, attempts[1].Outcome)
	assert.Equal(t, "fallback", attempts[2].Provider)
}

func TestPaletteThemesFollowKeywords(t *testing.T) {
	petrolTop, _ := palette("petrol pump meter spinning")
	parliamentTop, _ := palette("inside Parliament during question hour")
	defaultTop, _ := palette("something with no recognizable theme")

	assert.NotEqual(t, petrolTop, parliamentTop)
	assert.Equal(t, uint8(80), defaultTop.R)
}

func TestBuildPromptCapsLength(t *testing.T) {
	long := make([]byte, 3000)
	for i := range long {
		long[i] = 'v'
	}
	p := buildPrompt(string(long))
	assert.LessOrEqual(t, len(p), maxPromptLen)
	assert.Contains(t, p, "Pixar DreamWorks style")
}

func TestPlaceholderSketchesMentionedCharacters(t *testing.T) {
	cfg := config.Default()
	cfg.Images.Width = 200
	cfg.Images.Height = 300
	e := New(cfg)

	dir := t.TempDir()
	path, err := e.placeholder("Modi, Rahul and Kejriwal on stage", dir+"/scene_01.png")
	require.NoError(t, err)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, fi.Size(), int64(0))
}
