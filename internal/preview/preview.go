// Package preview shows a single part to whoever runs the generator.
// Previews read the part back from an STL file, so they work the same
// whichever kernel built it.
package preview

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog/log"
)

// ErrUnknownMode is returned by New for an unrecognised preview mode.
var ErrUnknownMode = errors.New("unknown preview mode")

// Previewer displays the part stored in an STL file.
type Previewer interface {
	Show(name, stlPath string) error
}

// Noop skips previews.
type Noop struct{}

func (Noop) Show(name, _ string) error {
	log.Debug().Str("part", name).Msg("preview suppressed")
	return nil
}

// Suppressed reports whether the CI environment variable is set to a
// non-empty value. Runs on CI have nobody to look at a preview.
func Suppressed() bool {
	return os.Getenv("CI") != ""
}

// Modes lists the accepted preview modes.
var Modes = []string{"window", "png"}

// New returns the previewer for mode, writing any images under dir. The
// window viewer needs a display and lives in the window subpackage, so
// the caller supplies it.
func New(mode, dir string, window Previewer) (Previewer, error) {
	if Suppressed() {
		return Noop{}, nil
	}
	switch mode {
	case "window":
		return window, nil
	case "png":
		return &PNG{Dir: dir}, nil
	}
	return nil, fmt.Errorf("%w %q (want one of %v)", ErrUnknownMode, mode, Modes)
}

// PNG renders the part to <Dir>/<name>.png.
type PNG struct {
	Dir    string
	Width  int
	Height int
}

const (
	defaultWidth  = 1024
	defaultHeight = 768
)

func (p *PNG) size() (int, int) {
	w, h := p.Width, p.Height
	if w <= 0 || h <= 0 {
		return defaultWidth, defaultHeight
	}
	return w, h
}

func (p *PNG) Show(name, stlPath string) error {
	mesh, err := Load(stlPath)
	if err != nil {
		return err
	}
	w, h := p.size()
	img := Render(mesh, DefaultCamera, w, h)

	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("preview dir: %w", err)
	}
	out := filepath.Join(p.Dir, name+".png")
	if err := fauxgl.SavePNG(out, img); err != nil {
		return fmt.Errorf("save preview %s: %w", out, err)
	}
	log.Info().Str("part", name).Str("path", out).Msg("preview rendered")
	return nil
}

// Load reads an STL file and fits it into a bi-unit cube at the origin.
func Load(stlPath string) (*fauxgl.Mesh, error) {
	mesh, err := fauxgl.LoadSTL(stlPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", stlPath, err)
	}
	if len(mesh.Triangles) == 0 {
		return nil, fmt.Errorf("load %s: no triangles", stlPath)
	}
	mesh.BiUnitCube()
	return mesh, nil
}

// Camera orbits the origin. Angles are in degrees; Pitch is measured up
// from the XY plane so Z stays vertical on screen.
type Camera struct {
	Yaw      float64
	Pitch    float64
	Distance float64
}

// DefaultCamera looks at the part from the front left, slightly above.
var DefaultCamera = Camera{Yaw: -60, Pitch: 30, Distance: 4}

// Eye returns the camera position.
func (c Camera) Eye() fauxgl.Vector {
	yaw, pitch := c.Yaw*math.Pi/180, c.Pitch*math.Pi/180
	return fauxgl.V(
		c.Distance*math.Cos(pitch)*math.Cos(yaw),
		c.Distance*math.Cos(pitch)*math.Sin(yaw),
		c.Distance*math.Sin(pitch),
	)
}

// maxPitch keeps the camera short of the poles, where the up vector
// would be parallel to the view direction.
const maxPitch = 85

// Orbit turns the camera by deg for each pressed direction.
func (c Camera) Orbit(deg float64, left, right, up, down bool) Camera {
	if left {
		c.Yaw -= deg
	}
	if right {
		c.Yaw += deg
	}
	if up {
		c.Pitch = min(c.Pitch+deg, maxPitch)
	}
	if down {
		c.Pitch = max(c.Pitch-deg, -maxPitch)
	}
	return c
}

const (
	supersample = 2
	fovy        = 30
	near        = 1
	far         = 20
)

var (
	background  = fauxgl.HexColor("#FFF8E3")
	objectColor = fauxgl.HexColor("#468966")
)

// Render draws mesh at width x height with a Phong shader. It renders at
// twice the size and scales down for antialiasing.
func Render(mesh *fauxgl.Mesh, cam Camera, width, height int) image.Image {
	var (
		eye    = cam.Eye()
		center = fauxgl.V(0, 0, 0)
		up     = fauxgl.V(0, 0, 1)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)

	context := fauxgl.NewContext(width*supersample, height*supersample)
	context.ClearColorBufferWith(background)
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = objectColor
	context.Shader = shader
	context.DrawMesh(mesh)

	return resize.Resize(uint(width), uint(height), context.Image(), resize.Bilinear)
}
