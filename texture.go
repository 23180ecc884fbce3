package chime

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/chime/gpu"
)

// maxDecoders bounds how many files LoadTextures decodes at once.
const maxDecoders = 4

// DecodeImage reads an image file (PNG, JPEG, BMP, TIFF or WebP) and
// converts it to premultiplied RGBA.
func DecodeImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("chime: decode image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("chime: decode image %s: %w", path, err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}

// LoadTexture decodes the image file at path and uploads it.
func LoadTexture(dev gpu.Device, path string) (gpu.Texture, error) {
	img, err := DecodeImage(path)
	if err != nil {
		return nil, err
	}
	return NewTextureFromImage(dev, img)
}

// LoadTextures decodes every file concurrently, then uploads them in order
// on the calling goroutine. On error nothing stays uploaded.
func LoadTextures(dev gpu.Device, paths ...string) ([]gpu.Texture, error) {
	images := make([]*image.RGBA, len(paths))
	var g errgroup.Group
	g.SetLimit(maxDecoders)
	for i, p := range paths {
		g.Go(func() error {
			img, err := DecodeImage(p)
			images[i] = img
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	textures := make([]gpu.Texture, 0, len(images))
	for _, img := range images {
		tex, err := NewTextureFromImage(dev, img)
		if err != nil {
			for _, t := range textures {
				t.Release()
			}
			return nil, err
		}
		textures = append(textures, tex)
	}
	return textures, nil
}
