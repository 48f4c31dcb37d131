// Package window shows a part in a desktop window that can be orbited
// with the arrow keys. Esc or Q closes it.
package window

import (
	"fmt"

	"github.com/fogleman/fauxgl"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog/log"

	"github.com/marcuswu/spring-rail-vise/internal/preview"
)

var _ preview.Previewer = (*Viewer)(nil)

const (
	width  = 960
	height = 720

	// step is how far one key press turns the camera, in degrees.
	step = 15
)

// Viewer implements preview.Previewer with an ebiten window.
type Viewer struct{}

// New returns a Viewer.
func New() *Viewer { return &Viewer{} }

// Show blocks until the window is closed.
func (v *Viewer) Show(name, stlPath string) error {
	mesh, err := preview.Load(stlPath)
	if err != nil {
		return err
	}
	g := &viewer{mesh: mesh, cam: preview.DefaultCamera, dirty: true}

	ebiten.SetWindowTitle(fmt.Sprintf("%s (arrows orbit, esc quits)", name))
	ebiten.SetWindowSize(width, height)
	log.Info().Str("part", name).Msg("showing preview window")
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("preview window: %w", err)
	}
	return nil
}

type viewer struct {
	mesh  *fauxgl.Mesh
	cam   preview.Camera
	frame *ebiten.Image
	dirty bool
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	cam := v.cam.Orbit(step,
		inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft),
		inpututil.IsKeyJustPressed(ebiten.KeyArrowRight),
		inpututil.IsKeyJustPressed(ebiten.KeyArrowUp),
		inpututil.IsKeyJustPressed(ebiten.KeyArrowDown),
	)
	if cam != v.cam {
		v.cam = cam
		v.dirty = true
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if v.dirty {
		if v.frame != nil {
			v.frame.Deallocate()
		}
		v.frame = ebiten.NewImageFromImage(preview.Render(v.mesh, v.cam, width, height))
		v.dirty = false
	}
	screen.DrawImage(v.frame, nil)
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return width, height
}
