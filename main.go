package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/leonelquinteros/gotext"
	"golang.org/x/image/font/gofont/goregular"

	"battlemap/pkg/engine/geom"
	"battlemap/pkg/engine/input"
	"battlemap/pkg/engine/texture"
	"battlemap/pkg/engine/viewport"
	"battlemap/pkg/game/interact"
	"battlemap/pkg/game/mapdef"
	"battlemap/pkg/game/scene"
	"battlemap/pkg/game/token"
)

const (
	windowWidth  = 1280
	windowHeight = 800
	zoomStep     = 0.1
	panStep      = 24 // screen px per key-repeat tick
)

func initGettext() {
	gotext.Configure("mo", "en_GB", "default")
}

// rosterEntry is one token in the -tokens JSON file.
type rosterEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Image   string `json:"image"`
	Visible *bool  `json:"visible"`
	Bounds  struct {
		TopLeft     rosterCell `json:"top_left"`
		BottomRight rosterCell `json:"bottom_right"`
		Elevation   float64    `json:"elevation"`
	} `json:"bounds"`
}

type rosterCell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func loadRoster(path string) ([]token.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}
	var entries []rosterEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("roster %q: %w", path, err)
	}
	out := make([]token.Token, 0, len(entries))
	for _, e := range entries {
		visible := true
		if e.Visible != nil {
			visible = *e.Visible
		}
		out = append(out, token.Token{
			ID:       e.ID,
			Name:     e.Name,
			ImageURL: e.Image,
			Visible:  visible,
			Bounds: geom.GridBounds{
				TopLeft:     geom.GridPoint{X: e.Bounds.TopLeft.X, Y: e.Bounds.TopLeft.Y},
				BottomRight: geom.GridPoint{X: e.Bounds.BottomRight.X, Y: e.Bounds.BottomRight.Y},
				Elevation:   e.Bounds.Elevation,
			},
		})
	}
	return out, nil
}

// stateKey derives the viewport persistence key from the map path.
func stateKey(mapPath string) string {
	base := filepath.Base(mapPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// viewer holds the demo's input and HUD state around the scene. The intent
// handlers echo every intent straight back as a confirmed update, standing in
// for the authoritative game-state collaborator.
type viewer struct {
	sc    *scene.Scene
	view  *viewport.Controller
	saver *viewport.Saver
	face  *text.GoTextFace

	mapName string
	status  string
	panning bool
	panLast geom.Point
	pressed []ebiten.Key
	repeat  *input.Repeater[ebiten.Key]
}

func (v *viewer) handlers() interact.Handlers {
	return interact.Handlers{
		OnSelect: func(id string) {
			v.status = fmt.Sprintf(gotext.Get("Selected %s"), v.tokenName(id))
		},
		OnDeselect: func(string) {
			v.status = ""
		},
		OnDoubleClick: func(id string) {
			// Center the view on the token at the current canvas size.
			if c, ok := v.sc.Tokens.Center(id); ok {
				w, h := v.view.ScreenSize()
				st := v.view.State()
				v.view.SetPan(w/2-c.X*st.Scale, h/2-c.Y*st.Scale)
			}
		},
		OnContextMenu: func(id string, _ geom.Point) {
			v.status = fmt.Sprintf(gotext.Get("Menu: %s"), v.tokenName(id))
		},
		OnDragEnd: func(id string, resolved geom.Point) {
			// Confirmed move: ease the sprite to the resolved position.
			v.sc.Tokens.MoveToken(id, resolved, true)
		},
		OnTargetChange: func(id string, targeted bool) {
			if targeted {
				log.Printf("target added: %s", id)
			} else {
				log.Printf("target removed: %s", id)
			}
		},
	}
}

func (v *viewer) tokenName(id string) string {
	if s, ok := v.sc.Tokens.Sprite(id); ok && s.Name != "" {
		return s.Name
	}
	return id
}

func (v *viewer) handleInput() {
	mx, my := ebiten.CursorPosition()
	p := geom.Point{X: float64(mx), Y: float64(my)}

	if _, wy := ebiten.Wheel(); wy != 0 {
		v.view.ZoomAt(p.X, p.Y, wy*zoomStep)
	}

	var mods interact.Mod
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= interact.ModTarget
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		onToken := false
		if world, err := v.view.ScreenToWorld(p); err == nil {
			_, onToken = v.sc.Tokens.TokenAt(world)
		}
		v.sc.Machine.PointerDown(p, interact.ButtonLeft, mods)
		if !onToken {
			v.panning = true
			v.panLast = p
		}
	}
	if v.panning && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		v.view.Pan(p.X-v.panLast.X, p.Y-v.panLast.Y)
		v.panLast = p
	} else {
		v.sc.Machine.PointerMove(p)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if v.panning {
			v.panning = false
		} else {
			v.sc.Machine.PointerUp(p)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		v.sc.Machine.PointerDown(p, interact.ButtonRight, 0)
	}

	v.handleKeys()
}

// keyBindings maps raw keys to viewer actions. Zoom and pan repeat while
// held; toggles fire once per press.
var keyBindings = map[ebiten.Key]input.Action{
	ebiten.KeyEqual:          input.ActionZoomIn,
	ebiten.KeyNumpadAdd:      input.ActionZoomIn,
	ebiten.KeyMinus:          input.ActionZoomOut,
	ebiten.KeyNumpadSubtract: input.ActionZoomOut,
	ebiten.Key0:              input.ActionZoomReset,
	ebiten.KeyNumpad0:        input.ActionZoomReset,
	ebiten.KeyArrowUp:        input.ActionPanNorth,
	ebiten.KeyArrowDown:      input.ActionPanSouth,
	ebiten.KeyArrowLeft:      input.ActionPanWest,
	ebiten.KeyArrowRight:     input.ActionPanEast,
	ebiten.KeyL:              input.ActionRevealLighting,
	ebiten.KeyW:              input.ActionToggleWalls,
	ebiten.KeyO:              input.ActionToggleObjects,
	ebiten.KeyP:              input.ActionTogglePortals,
	ebiten.KeyG:              input.ActionToggleGrid,
	ebiten.KeyEscape:         input.ActionClearTargets,
}

func (v *viewer) handleKeys() {
	v.pressed = inpututil.AppendPressedKeys(v.pressed[:0])
	var held []ebiten.Key
	for _, k := range v.pressed {
		act, bound := keyBindings[k]
		if !bound {
			continue
		}
		if act.Repeatable() {
			held = append(held, k)
		} else if inpututil.IsKeyJustPressed(k) {
			v.apply(act)
		}
	}
	for _, k := range v.repeat.Sync(time.Now(), held...) {
		v.apply(keyBindings[k])
	}
}

func (v *viewer) apply(act input.Action) {
	switch act {
	case input.ActionZoomIn:
		v.view.Zoom(zoomStep)
	case input.ActionZoomOut:
		v.view.Zoom(-zoomStep)
	case input.ActionZoomReset:
		v.view.FitToScreen()
	case input.ActionPanNorth:
		v.view.Pan(0, panStep)
	case input.ActionPanSouth:
		v.view.Pan(0, -panStep)
	case input.ActionPanWest:
		v.view.Pan(panStep, 0)
	case input.ActionPanEast:
		v.view.Pan(-panStep, 0)
	case input.ActionRevealLighting:
		v.sc.RevealLighting = !v.sc.RevealLighting
	case input.ActionToggleWalls:
		v.sc.ShowWalls = !v.sc.ShowWalls
	case input.ActionToggleObjects:
		v.sc.ShowObjects = !v.sc.ShowObjects
	case input.ActionTogglePortals:
		v.sc.ShowPortals = !v.sc.ShowPortals
	case input.ActionToggleGrid:
		v.sc.ShowGrid = !v.sc.ShowGrid
	case input.ActionClearTargets:
		v.sc.Machine.ClearTargets()
	}
}

func (v *viewer) drawHUD(screen *ebiten.Image) {
	st := v.view.State()
	lines := []string{
		fmt.Sprintf("%s  %.0f%%", v.mapName, st.Scale*100),
		fmt.Sprintf(gotext.Get("Targets: %d"), v.sc.Machine.TargetCount()),
	}
	if v.status != "" {
		lines = append(lines, v.status)
	}
	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(12, 12+float64(i)*20)
		text.Draw(screen, line, v.face, op)
	}
}

func main() {
	mapPath := flag.String("map", "", "path to a UVTT map definition (JSON)")
	stateDir := flag.String("state-dir", "state", "directory for persisted viewport state")
	tokensPath := flag.String("tokens", "", "optional token roster (JSON)")
	flag.Parse()

	if *mapPath == "" {
		fmt.Fprintln(os.Stderr, "usage: battlemap -map <file.json> [-tokens <file.json>] [-state-dir <dir>]")
		os.Exit(2)
	}

	initGettext()

	def, err := mapdef.ParseFile(*mapPath)
	if err != nil {
		log.Fatalf("load map: %v", err)
	}

	store, err := viewport.NewFileStore(*stateDir)
	if err != nil {
		log.Fatalf("open state dir: %v", err)
	}

	fontSource, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Fatalf("load font: %v", err)
	}

	view := viewport.New()
	view.Attach(windowWidth, windowHeight)

	v := &viewer{
		view:    view,
		face:    &text.GoTextFace{Source: fontSource, Size: 14},
		mapName: stateKey(*mapPath),
		repeat:  input.NewRepeater[ebiten.Key](0, 0),
	}
	sc := scene.New(view, texture.NewCache(), v.handlers())
	v.sc = sc
	token.SetLabelFace(&text.GoTextFace{Source: fontSource, Size: 11})

	if err := sc.LoadMap(def); err != nil {
		log.Fatalf("build scene: %v", err)
	}

	key := stateKey(*mapPath)
	if st, ok, err := store.Load(key); err != nil {
		log.Printf("viewport state: %v", err)
		view.FitToScreen()
	} else if ok {
		view.Restore(st)
	} else {
		view.FitToScreen()
	}

	v.saver = viewport.NewSaver(store, key, viewport.DefaultSaveDelay, func(err error) {
		log.Printf("viewport save: %v", err)
	})
	view.OnChange(func(st viewport.State) {
		v.saver.Changed(st)
	})

	if *tokensPath != "" {
		roster, err := loadRoster(*tokensPath)
		if err != nil {
			log.Fatalf("load tokens: %v", err)
		}
		for _, tok := range roster {
			if err := sc.Tokens.AddToken(tok); err != nil {
				log.Printf("token %q skipped: %v", tok.ID, err)
			}
		}
	}

	sc.SetInputHandler(v.handleInput)
	sc.SetOverlayDraw(v.drawHUD)

	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("battlemap")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(sc); err != nil {
		log.Fatalf("run: %v", err)
	}
	v.saver.Flush()
	sc.Teardown()
}
