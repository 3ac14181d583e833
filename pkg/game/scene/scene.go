// Package scene binds the map layers, token sprites, and interaction machine
// into one ebiten.Game.
package scene

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"battlemap/pkg/engine/geom"
	"battlemap/pkg/engine/texture"
	"battlemap/pkg/engine/viewport"
	"battlemap/pkg/game/interact"
	"battlemap/pkg/game/mapdef"
	"battlemap/pkg/game/token"
)

var backdropColor = color.RGBA{18, 18, 24, 255}

// Scene is the host drawable surface. Layer order, back to front:
// background, walls, object walls, portals, lights, tokens, drag ghost,
// decorations, overlay HUD.
type Scene struct {
	View     *viewport.Controller
	Tokens   *token.Manager
	Machine  *interact.Machine
	textures *texture.Cache

	def   *mapdef.Definition
	style Style

	walls   []Strip
	objects []Strip
	portals []PortalOutline
	lights  []LightCircle
	grid    []Strip

	bgSrc image.Image
	bgImg *ebiten.Image
	// mapGen guards async background completions against a newer LoadMap.
	mapGen int

	// Static layer buffers, rasterized at world resolution on first draw and
	// dropped wholesale by LoadMap. Maps too large for one texture fall back
	// to per-frame stroking.
	wallImg   *ebiten.Image
	objectImg *ebiten.Image
	portalImg *ebiten.Image
	lightImg  *ebiten.Image
	gridImg   *ebiten.Image
	buffered  bool

	ShowWalls      bool
	ShowObjects    bool
	ShowPortals    bool
	ShowGrid       bool
	RevealLighting bool

	inputFn   func()
	overlayFn func(screen *ebiten.Image)
	lastTick  time.Time
}

// New assembles a scene around shared engine services. handlers receives the
// interaction intents the machine produces.
func New(view *viewport.Controller, textures *texture.Cache, handlers interact.Handlers) *Scene {
	s := &Scene{
		View:        view,
		textures:    textures,
		style:       DefaultStyle(),
		ShowWalls:   true,
		ShowObjects: true,
		ShowPortals: true,
		ShowGrid:    true,
	}
	s.Tokens = token.NewManager(textures, token.DefaultMaxPoolSize)
	s.Machine = interact.NewMachine(s.Tokens, view, handlers)
	return s
}

// SetStyle replaces the layer drawing configuration. Takes effect on the
// next LoadMap.
func (s *Scene) SetStyle(st Style) { s.style = st }

// SetInputHandler registers a per-frame callback run at the start of Update,
// before animations advance. The viewer polls ebiten input here.
func (s *Scene) SetInputHandler(fn func()) { s.inputFn = fn }

// SetOverlayDraw registers a HUD callback drawn last, in screen space.
func (s *Scene) SetOverlayDraw(fn func(screen *ebiten.Image)) { s.overlayFn = fn }

// Definition returns the currently loaded map, or nil.
func (s *Scene) Definition() *mapdef.Definition { return s.def }

// LoadMap rebuilds every static layer from the definition. The rebuild is
// wholesale: old layers are dropped first, so a failed load leaves an empty
// scene rather than a stale one. Token sprites survive and are re-sized to
// the new grid.
func (s *Scene) LoadMap(d *mapdef.Definition) error {
	s.disposeLayers()
	s.def = nil
	s.walls, s.objects, s.portals, s.lights, s.grid = nil, nil, nil, nil, nil
	s.mapGen++

	if err := d.Validate(); err != nil {
		return fmt.Errorf("scene: %w", err)
	}

	s.def = d
	s.walls = computeStrips(d, d.WallSegments)
	s.objects = computeStrips(d, d.ObjectWallSegments)
	s.portals = computePortals(d)
	s.lights = computeLights(d)
	s.grid = gridLines(d)
	b := d.WorldBounds()
	s.buffered = b.Width() <= maxLayerDim && b.Height() <= maxLayerDim

	// Tokens and drag snapping share the map's grid origin, so grid-bounded
	// sprites line up with the wall/portal/light geometry.
	s.Tokens.Configure(d.Origin(), d.CellSize())
	s.Machine.SetGrid(d.Origin(), d.CellSize())
	s.Machine.SetMapBounds(d.WorldBounds())
	s.View.SetMapBounds(d.WorldBounds(), true)

	if url := d.BackgroundImageURL; url != "" {
		gen := s.mapGen
		s.textures.Get(url, func(img image.Image) {
			if s.mapGen != gen {
				return
			}
			if img == s.textures.Fallback() {
				// Failed background: keep rendering the map without one.
				log.Printf("scene: background %q unavailable", url)
				return
			}
			s.bgSrc = img
			s.bgImg = nil
		})
	}
	return nil
}

// Update advances the scene one tick: apply finished texture loads, run the
// viewer's input, age gestures, and step move animations.
func (s *Scene) Update() error {
	now := time.Now()
	dt := 0.0
	if !s.lastTick.IsZero() {
		dt = now.Sub(s.lastTick).Seconds()
	}
	s.lastTick = now

	s.textures.Flush()
	if s.inputFn != nil {
		s.inputFn()
	}
	s.Machine.Tick(now)
	s.Tokens.Update(dt)
	return nil
}

// Draw composes the layers under the current viewport transform.
func (s *Scene) Draw(screen *ebiten.Image) {
	screen.Fill(backdropColor)
	if s.def == nil {
		if s.overlayFn != nil {
			s.overlayFn(screen)
		}
		return
	}

	st := s.View.State()
	pan := geom.Point{X: st.PanX, Y: st.PanY}
	scale := st.Scale

	s.drawBackground(screen, pan, scale)
	if s.ShowGrid {
		s.drawLayer(screen, &s.gridImg, pan, scale, func(dst *ebiten.Image, p geom.Point, sc float64) {
			drawStrips(dst, s.grid, p, sc, s.style.GridColor, s.style.GridWidth)
		})
	}
	if s.ShowWalls {
		s.drawLayer(screen, &s.wallImg, pan, scale, func(dst *ebiten.Image, p geom.Point, sc float64) {
			drawStrips(dst, s.walls, p, sc, s.style.WallColor, s.style.WallWidth)
		})
	}
	if s.ShowObjects {
		s.drawLayer(screen, &s.objectImg, pan, scale, func(dst *ebiten.Image, p geom.Point, sc float64) {
			drawStrips(dst, s.objects, p, sc, s.style.ObjectColor, s.style.WallWidth)
		})
	}
	if s.ShowPortals {
		s.drawLayer(screen, &s.portalImg, pan, scale, s.drawPortals)
	}
	if s.RevealLighting {
		s.drawLayer(screen, &s.lightImg, pan, scale, s.drawLights)
	}
	s.Tokens.Draw(screen, pan, scale, time.Now())

	if s.overlayFn != nil {
		s.overlayFn(screen)
	}
}

// Layout reports the logical screen size and propagates resizes into the
// viewport so clamping and fit stay correct.
func (s *Scene) Layout(outsideWidth, outsideHeight int) (int, int) {
	s.View.Resize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Teardown releases GPU images and every sprite. Safe to call twice.
func (s *Scene) Teardown() {
	s.Machine.Teardown()
	s.Tokens.Teardown()
	s.disposeLayers()
	s.def = nil
	s.mapGen++
}

// maxLayerDim is the largest world-resolution buffer worth allocating; it
// stays under common GPU texture limits.
const maxLayerDim = 8192

// drawLayer renders one static layer, through its world-resolution buffer
// when the map fits in a single texture, directly otherwise.
func (s *Scene) drawLayer(screen *ebiten.Image, buf **ebiten.Image, pan geom.Point, scale float64, raster func(dst *ebiten.Image, pan geom.Point, scale float64)) {
	if !s.buffered {
		raster(screen, pan, scale)
		return
	}
	if *buf == nil {
		b := s.def.WorldBounds()
		img := ebiten.NewImage(int(math.Ceil(b.Width())), int(math.Ceil(b.Height())))
		raster(img, geom.Point{}, 1)
		*buf = img
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(pan.X, pan.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(*buf, &op)
}

func (s *Scene) disposeLayers() {
	for _, img := range []**ebiten.Image{&s.bgImg, &s.wallImg, &s.objectImg, &s.portalImg, &s.lightImg, &s.gridImg} {
		if *img != nil {
			(*img).Deallocate()
			*img = nil
		}
	}
	s.bgSrc = nil
}

func (s *Scene) drawBackground(screen *ebiten.Image, pan geom.Point, scale float64) {
	if s.bgSrc == nil {
		return
	}
	if s.bgImg == nil {
		s.bgImg = ebiten.NewImageFromImage(s.bgSrc)
	}
	bounds := s.def.WorldBounds()
	ib := s.bgImg.Bounds()
	if ib.Dx() == 0 || ib.Dy() == 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(bounds.Width()/float64(ib.Dx()), bounds.Height()/float64(ib.Dy()))
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(pan.X, pan.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(s.bgImg, &op)
}

func (s *Scene) drawPortals(screen *ebiten.Image, pan geom.Point, scale float64) {
	for _, p := range s.portals {
		pts := p.Points
		for i := 0; i+1 < len(pts); i++ {
			strokeWorldLine(screen, pts[i], pts[i+1], pan, scale, s.style.PortalColor, s.style.WallWidth)
		}
		// Closed portals get a closing edge so they read as shut doors.
		if p.Closed && len(pts) > 2 {
			strokeWorldLine(screen, pts[len(pts)-1], pts[0], pan, scale, s.style.PortalColor, s.style.WallWidth)
		}
	}
}

func (s *Scene) drawLights(screen *ebiten.Image, pan geom.Point, scale float64) {
	for _, l := range s.lights {
		c := geom.WorldToScreen(l.Center, pan, scale)
		vector.DrawFilledCircle(screen, float32(c.X), float32(c.Y), float32(l.OuterRadius*scale), l.OuterColor, true)
		vector.DrawFilledCircle(screen, float32(c.X), float32(c.Y), float32(l.InnerRadius*scale), l.InnerColor, true)
	}
}

func drawStrips(screen *ebiten.Image, strips []Strip, pan geom.Point, scale float64, col color.RGBA, width float32) {
	for _, strip := range strips {
		for i := 0; i+1 < len(strip); i++ {
			strokeWorldLine(screen, strip[i], strip[i+1], pan, scale, col, width)
		}
	}
}

func strokeWorldLine(screen *ebiten.Image, a, b geom.Point, pan geom.Point, scale float64, col color.RGBA, width float32) {
	sa := geom.WorldToScreen(a, pan, scale)
	sb := geom.WorldToScreen(b, pan, scale)
	vector.StrokeLine(screen, float32(sa.X), float32(sa.Y), float32(sb.X), float32(sb.Y), width, col, true)
}
