package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/particle-wave/internal/audio"
	"github.com/iburimskiy/particle-wave/internal/camera"
	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/modes"
)

const (
	seekStep        = 5 * time.Second
	volumeStep      = 0.05
	sensitivityStep = 0.1
	minSensitivity  = 0.1
	maxSensitivity  = 3.0

	// browser wheel events report about 100 per notch
	wheelNotch = 100
)

var modeKeys = []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5, ebiten.Key6}

var presetKeys = map[ebiten.Key]camera.Preset{
	ebiten.KeyF1: camera.PresetFront,
	ebiten.KeyF2: camera.PresetTop,
	ebiten.KeyF3: camera.PresetSide,
	ebiten.KeyF4: camera.PresetIsometric,
}

// input tracks pointer and touch state between frames.
type input struct {
	touches []ebiten.TouchID
	// which touch drives the orbit drag
	dragTouch ebiten.TouchID
	touchDrag bool
}

func newInput() *input {
	return &input{}
}

func (g *Game) handleInput() {
	g.handlePointer()
	g.handleTouch()
	g.handleDrop()
	g.handleKeys()
}

func (g *Game) handlePointer() {
	rig := g.viz.Rig()
	mx, my := ebiten.CursorPosition()
	w, h := g.screenSize()

	g.hud.buttonHovered = buttonRect().contains(mx, my)
	bar := progressRect(w, h)
	st := g.status()
	g.hud.barHovered = st.source == audio.SourceFile && st.duration > 0 && bar.contains(mx, my)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case g.hud.buttonHovered:
			g.hud.buttonPressed = true
		case g.hud.barHovered:
			g.hud.barDragging = true
			g.seekTo(float64(mx-bar.x)/float64(bar.w), st.duration)
		default:
			rig.PointerDown(float64(mx), float64(my))
		}
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if g.hud.barDragging {
			p := clamp01(float64(mx-bar.x) / float64(bar.w))
			// skip micro-seeks while dragging
			if cur := float64(st.position) / float64(st.duration); math.Abs(p-cur) > 0.01 {
				g.seekTo(p, st.duration)
			}
		} else if !g.in.touchDrag {
			rig.PointerMove(float64(mx), float64(my))
		}
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.hud.buttonPressed && g.hud.buttonHovered {
			g.openFileDialog()
		}
		g.hud.buttonPressed = false
		g.hud.barDragging = false
		if !g.in.touchDrag {
			rig.PointerUp()
		}
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		rig.Wheel(-wy * wheelNotch)
	}
}

// handleTouch maps one finger to orbit and two fingers to pinch zoom.
func (g *Game) handleTouch() {
	rig := g.viz.Rig()
	g.in.touches = ebiten.AppendTouchIDs(g.in.touches[:0])

	switch len(g.in.touches) {
	case 0:
		if g.in.touchDrag {
			rig.PointerUp()
			g.in.touchDrag = false
		}
	case 1:
		id := g.in.touches[0]
		x, y := ebiten.TouchPosition(id)
		if !g.in.touchDrag || g.in.dragTouch != id {
			rig.PointerUp()
			rig.PointerDown(float64(x), float64(y))
			g.in.dragTouch = id
			g.in.touchDrag = true
			return
		}
		rig.PointerMove(float64(x), float64(y))
	default:
		x0, y0 := ebiten.TouchPosition(g.in.touches[0])
		x1, y1 := ebiten.TouchPosition(g.in.touches[1])
		rig.Pinch(math.Hypot(float64(x1-x0), float64(y1-y0)))
		// a lifted second finger restarts the drag
		g.in.dragTouch = -1
	}
}

// handleDrop plays the first file dropped on the window.
func (g *Game) handleDrop() {
	fsys := ebiten.DroppedFiles()
	if fsys == nil {
		return
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		log.Printf("dropped files: %v", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		f, err := fsys.Open(name)
		if err != nil {
			log.Printf("dropped file %s: %v", name, err)
			return
		}
		g.async("Load dropped file", func(ctx context.Context) (string, error) {
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return "", fmt.Errorf("read %s: %w", name, err)
			}
			return "Playing " + name, g.engine.LoadBytes(name, data)
		})
		return
	}
}

func (g *Game) handleKeys() {
	pressed := inpututil.IsKeyJustPressed
	rig := g.viz.Rig()

	if pressed(ebiten.KeyEscape) || pressed(ebiten.KeyQ) {
		g.quit = true
		return
	}

	for i, k := range modeKeys {
		if pressed(k) {
			kind := modes.Kinds()[i]
			if g.viz.SetModeKind(kind) {
				g.notify(kind.Title())
			}
		}
	}
	for k, p := range presetKeys {
		if pressed(k) {
			rig.SetPreset(p)
		}
	}

	switch {
	case pressed(ebiten.KeySpace):
		if _, err := g.engine.TogglePlayPause(); err != nil {
			g.notifyError(err)
		}
	case pressed(ebiten.KeyO):
		g.openFileDialog()
	case pressed(ebiten.KeyU):
		g.nextTrack()
	case pressed(ebiten.KeyM):
		g.toggleMicrophone()
	case pressed(ebiten.KeyC):
		g.notify("Colours: " + g.viz.CycleColorScheme())
	case pressed(ebiten.KeyT):
		q := g.viz.NextQuality()
		g.applyQuality(q)
		g.notify("Quality: " + q.Name)
	case pressed(ebiten.KeyB):
		g.effects.cfg.Bloom = !g.effects.cfg.Bloom
	case pressed(ebiten.KeyV):
		g.effects.cfg.Vignette = !g.effects.cfg.Vignette
	case pressed(ebiten.KeyN):
		g.effects.cfg.MotionBlur = !g.effects.cfg.MotionBlur
	case pressed(ebiten.KeyK):
		g.viz.ShakeOnBeat = !g.viz.ShakeOnBeat
		g.notify(onOff("Beat shake", g.viz.ShakeOnBeat))
	case pressed(ebiten.KeyR):
		g.notify(onOff("Auto-rotate", rig.ToggleAutoRotate()))
	case pressed(ebiten.KeyHome):
		rig.Reset()
	case pressed(ebiten.KeyF), pressed(ebiten.KeyF11):
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	case pressed(ebiten.KeyH), pressed(ebiten.KeySlash):
		g.hud.showHelp = !g.hud.showHelp
	case pressed(ebiten.KeyI):
		g.hud.showStats = !g.hud.showStats
	case pressed(ebiten.KeyS):
		g.screenshot = true
	case pressed(ebiten.KeyL):
		s := config.EncodeShare(g.viz.Snapshot())
		log.Printf("share: -config %s", s)
		g.notify("Share string written to log")
	case pressed(ebiten.KeyEqual), pressed(ebiten.KeyNumpadAdd):
		g.notify(formatCount(g.viz.StepParticles(g.cfg.Particles.Step)) + " particles")
	case pressed(ebiten.KeyMinus), pressed(ebiten.KeyNumpadSubtract):
		g.notify(formatCount(g.viz.StepParticles(-g.cfg.Particles.Step)) + " particles")
	case pressed(ebiten.KeyZ):
		g.setSensitivity(g.sensitivity - sensitivityStep)
	case pressed(ebiten.KeyX):
		g.setSensitivity(g.sensitivity + sensitivityStep)
	}

	if repeating(ebiten.KeyArrowLeft) {
		g.seekRelative(-seekStep)
	}
	if repeating(ebiten.KeyArrowRight) {
		g.seekRelative(seekStep)
	}
	if repeating(ebiten.KeyArrowUp) {
		g.engine.SetVolume(g.engine.Volume() + volumeStep)
	}
	if repeating(ebiten.KeyArrowDown) {
		g.engine.SetVolume(g.engine.Volume() - volumeStep)
	}
}

// repeating fires on press and then every 10 ticks after a half-second hold.
func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || (d >= 30 && d%10 == 0)
}

func onOff(what string, on bool) string {
	if on {
		return what + " on"
	}
	return what + " off"
}

func (g *Game) screenSize() (int, int) {
	w, h := ebiten.WindowSize()
	if g.effects.scene != nil {
		b := g.effects.scene.Bounds()
		w, h = b.Dx(), b.Dy()
	}
	return w, h
}

func (g *Game) seekTo(p float64, d time.Duration) {
	if err := g.engine.Seek(time.Duration(clamp01(p) * float64(d))); err != nil {
		log.Printf("seek: %v", err)
	}
}

func (g *Game) seekRelative(delta time.Duration) {
	if err := g.engine.SeekRelative(delta); err != nil && !errors.Is(err, audio.ErrNoSource) {
		log.Printf("seek: %v", err)
	}
}

func (g *Game) setSensitivity(s float64) {
	g.sensitivity = math.Round(math.Max(minSensitivity, math.Min(maxSensitivity, s))*10) / 10
	g.engine.SetSensitivity(g.sensitivity, g.sensitivity, g.sensitivity)
	g.notify(fmt.Sprintf("Sensitivity %.1f", g.sensitivity))
}

// openFileDialog shows the native picker off the frame loop.
func (g *Game) openFileDialog() {
	if g.pending > 0 {
		return
	}
	g.async("Open file", func(ctx context.Context) (string, error) {
		filename, err := zenity.SelectFile(
			zenity.Title("Open Audio File"),
			zenity.FileFilters{{
				Name:     "Audio",
				Patterns: []string{"*.wav", "*.mp3", "*.flac", "*.ogg"},
			}},
		)
		if err != nil {
			if errors.Is(err, zenity.ErrCanceled) {
				return "", nil
			}
			return "", err
		}
		log.Printf("selected %s", filename)
		return "Playing " + filepath.Base(filename), g.engine.LoadFile(ctx, filename)
	})
}

func (g *Game) nextTrack() {
	if len(g.cfg.Tracks) == 0 {
		return
	}
	g.trackIndex = (g.trackIndex + 1) % len(g.cfg.Tracks)
	t := g.cfg.Tracks[g.trackIndex]
	g.notify("Loading " + t.Name)
	g.async("Load track", func(ctx context.Context) (string, error) {
		return "Playing " + t.Name, g.engine.LoadURL(ctx, t.URL)
	})
}

func (g *Game) toggleMicrophone() {
	if g.engine.MicActive() {
		g.engine.StopMicrophone()
		g.notify("Microphone off")
		return
	}
	g.StartMicrophone()
}
