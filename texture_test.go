package chime

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/phanxgames/chime/gpu/gputest"
)

func writeImage(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	if filepath.Ext(path) == ".bmp" {
		require.NoError(t, bmp.Encode(f, img))
	} else {
		require.NoError(t, png.Encode(f, img))
	}
}

func TestLoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "red.png")
	writeImage(t, path, color.RGBA{255, 0, 0, 255})
	dev := gputest.New()

	tex, err := LoadTexture(dev, path)
	require.NoError(t, err)

	gt := tex.(*gputest.Texture)
	assert.Equal(t, 2, gt.Desc().Width)
	assert.Equal(t, []byte{255, 0, 0, 255}, gt.Pixels[:4])
}

func TestLoadTexturesDecodesEveryFormat(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.bmp")
	writeImage(t, a, color.RGBA{0, 255, 0, 255})
	writeImage(t, b, color.RGBA{0, 0, 255, 255})
	dev := gputest.New()

	textures, err := LoadTextures(dev, a, b)
	require.NoError(t, err)

	require.Len(t, textures, 2)
	assert.Equal(t, []byte{0, 255, 0, 255}, textures[0].(*gputest.Texture).Pixels[:4])
	assert.Equal(t, []byte{0, 0, 255, 255}, textures[1].(*gputest.Texture).Pixels[12:])
}

func TestLoadTexturesFailure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writeImage(t, good, color.RGBA{1, 2, 3, 255})
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	dev := gputest.New()

	_, err := LoadTextures(dev, good, bad)
	assert.ErrorContains(t, err, "bad.png")
	assert.Zero(t, dev.Count(gputest.OpNewTexture), "nothing uploaded when a decode fails")

	_, err = LoadTexture(dev, filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
