package chime

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/gpu/ebitengpu"
	"github.com/phanxgames/chime/input"
	"github.com/phanxgames/chime/vr"
)

// RunOptions configures Run.
type RunOptions struct {
	Config  Config
	Runtime vr.Runtime
	// Setup, if set, is called once the screen exists, before the first
	// frame, to populate the scene.
	Setup func(s *Screen) error
	// Update, if set, is called every tick after the scene is simulated.
	Update func(s *Screen, dt float32) error
}

// game adapts a Screen to ebiten.Game. The screen is created lazily on the
// first Update, once the graphics driver is running.
type game struct {
	opts   RunOptions
	dev    *ebitengpu.Device
	screen *Screen
	back   gpu.Texture
}

// Run opens a window and drives a Screen until the window is closed or
// Screen.Exit is called.
func Run(opts RunOptions) error {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	if cfg.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	g := &game{opts: opts}
	defer func() {
		if g.screen != nil {
			g.screen.Release()
		}
	}()
	err := ebiten.RunGame(g)
	if errors.Is(err, ErrExit) {
		return nil
	}
	return err
}

func (g *game) init() error {
	cfg := g.opts.Config
	g.dev = ebitengpu.New()
	back, err := g.dev.NewTexture(gpu.TextureDesc{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Format: gpu.FormatRGBA8,
		Bind:   gpu.BindRenderTarget | gpu.BindShaderResource,
	}, nil)
	if err != nil {
		return fmt.Errorf("chime: create backbuffer: %w", err)
	}
	g.back = back
	km := input.NewKeyboardMouse(FlyKeys, []ebiten.MouseButton{
		ebiten.MouseButtonLeft, ebiten.MouseButtonRight,
	})
	s, err := NewScreen(g.dev, back, ScreenOptions{Config: cfg, Runtime: g.opts.Runtime, Keyboard: km})
	if err != nil {
		back.Release()
		return err
	}
	g.screen = s
	if cfg.Debug {
		s.Scene.AddChild(NewFPSTitle(cfg.Window.Title))
	}
	if g.opts.Setup != nil {
		return g.opts.Setup(s)
	}
	return nil
}

// Update implements ebiten.Game.
func (g *game) Update() error {
	if g.screen == nil {
		if err := g.init(); err != nil {
			return err
		}
	}
	dt := float32(1) / float32(ebiten.TPS())
	if err := g.screen.Update(dt); err != nil {
		return err
	}
	if g.opts.Update != nil {
		if err := g.opts.Update(g.screen, dt); err != nil {
			return err
		}
	}
	return g.dev.Err()
}

// Draw implements ebiten.Game. Ebiten may draw more or less often than it
// ticks; the screen renders once per tick and the last frame is re-blitted
// in between.
func (g *game) Draw(screen *ebiten.Image) {
	if g.screen == nil {
		return
	}
	if err := g.screen.Render(); err != nil {
		Logger().Error("chime: frame dropped", "err", err)
		return
	}
	var op ebiten.DrawImageOptions
	img := ebitengpu.Image(g.back)
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	bw, bh := img.Bounds().Dx(), img.Bounds().Dy()
	op.GeoM.Scale(float64(sw)/float64(bw), float64(sh)/float64(bh))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, &op)
}

// Layout implements ebiten.Game.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
