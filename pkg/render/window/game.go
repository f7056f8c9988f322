package window

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/matzehuels/squaremap/pkg/render"
	"github.com/matzehuels/squaremap/pkg/squarify"
)

var (
	background  = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	borderColor = color.RGBA{A: 0x60}
)

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image that
// is scaled and tinted to draw filled rectangles.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.White)
	}
	return whitePixelImage
}

// Game runs a Viewer inside an ebiten window.
type Game struct {
	viewer *Viewer
	status bool
	colors map[string]color.RGBA
}

// NewGame wraps v for [Run].
func NewGame(v *Viewer) *Game {
	return &Game{viewer: v, status: true, colors: map[string]color.RGBA{}}
}

// Run opens a resizable window and blocks until it is closed.
func Run(g *Game, title string) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(DefaultWidth, DefaultHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

// Initial window size in device-independent pixels.
const (
	DefaultWidth  = 600
	DefaultHeight = 400
)

// Update implements ebiten.Game.
func (g *Game) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))
	g.viewer.Advance(dt)

	mx, my := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.viewer.ZoomIn(float64(mx), float64(my))
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight),
		inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		g.viewer.ZoomOut()
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		g.viewer.Home()
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.status = !g.status
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	px := ensureWhitePixel()

	var op ebiten.DrawImageOptions
	cells := g.viewer.Layout().Cells
	for i, r := range g.viewer.Frame() {
		if r.Empty() {
			continue
		}
		fillRect(screen, px, &op, r, borderColor)
		fillRect(screen, px, &op, r.Inset(1), g.rgba(cells[i].Color))
	}

	if g.status {
		mx, my := ebiten.CursorPosition()
		ebitenutil.DebugPrintAt(screen, g.statusLine(float64(mx), float64(my)), 4, 4)
	}
}

// Layout implements ebiten.Game. The treemap is laid out for the outside
// size, so resizing the window reflows it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if err := g.viewer.Resize(outsideWidth, outsideHeight); err != nil {
		g.viewer.logger.Error("layout failed", "width", outsideWidth, "height", outsideHeight, "err", err)
	}
	return outsideWidth, outsideHeight
}

func (g *Game) statusLine(x, y float64) string {
	v := g.viewer
	line := fmt.Sprintf("%s  %s", render.Printable(v.tree.Path(v.focus)), humanize.Bytes(uint64(v.tree.Size(v.focus))))
	if c, ok := v.Hover(x, y); ok {
		line += fmt.Sprintf("\n%s  %s", render.Printable(c.Path), humanize.Bytes(uint64(c.Size)))
	}
	return line
}

// rgba converts a #rrggbb palette color, caching the result.
func (g *Game) rgba(hex string) color.RGBA {
	if c, ok := g.colors[hex]; ok {
		return c
	}
	c := parseHex(hex)
	g.colors[hex] = c
	return c
}

func parseHex(hex string) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func fillRect(dst, px *ebiten.Image, op *ebiten.DrawImageOptions, r squarify.Rect, c color.RGBA) {
	if r.Empty() {
		return
	}
	op.GeoM.Reset()
	op.GeoM.Scale(r.W, r.H)
	op.GeoM.Translate(r.X, r.Y)
	op.ColorScale.Reset()
	op.ColorScale.ScaleWithColor(c)
	dst.DrawImage(px, op)
}
