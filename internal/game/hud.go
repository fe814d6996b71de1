package game

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/particle-wave/internal/audio"
	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/visualizer"
)

const (
	charWidth  = 6
	lineHeight = 16

	toastWidth  = 260
	toastHeight = 24
	toastOut    = 400 * time.Millisecond

	spectrumSegments = 64
)

var helpLines = []string{
	"Space     play / pause",
	"O         open audio file",
	"U         next demo track",
	"M         microphone on / off",
	"1-6       wave sphere helix galaxy vortex bars",
	"C         next colour scheme",
	"T         next quality preset",
	"B V N     bloom, vignette, motion blur",
	"K         camera shake on beat",
	"R         auto-rotate",
	"F1-F4     camera front, top, side, iso",
	"Home      reset camera",
	"Left/Right seek 5s   Up/Down volume",
	"+ / -     particles +/- 5000",
	"Z / X     sensitivity down / up",
	"S         screenshot",
	"L         log share string",
	"F         fullscreen",
	"H         toggle this help",
	"Esc / Q   quit",
	"",
	"Drag to orbit, wheel or pinch to zoom.",
	"Drop an audio file on the window to play it.",
}

// status is the audio state the HUD shows, read once per frame.
type status struct {
	source   audio.SourceKind
	name     string
	playing  bool
	position time.Duration
	duration time.Duration
	volume   float64
	loading  bool
}

type toast struct {
	note   visualizer.Notification
	x, vx  float64
	spring harmonica.Spring
}

type hud struct {
	showHelp  bool
	showStats bool

	buttonHovered bool
	buttonPressed bool
	barHovered    bool
	barDragging   bool

	hue    float64
	toasts []*toast
}

func newHUD() *hud {
	return &hud{showStats: true}
}

type rect struct{ x, y, w, h int }

func (r rect) contains(x, y int) bool {
	return x >= r.x && x <= r.x+r.w && y >= r.y && y <= r.y+r.h
}

func buttonRect() rect {
	return rect{config.ButtonX, config.ButtonY, config.ButtonWidth, config.ButtonHeight}
}

func progressRect(w, h int) rect {
	return rect{20, h - 60, w - 40, 14}
}

// update advances the accent colour and the toast springs.
func (h *hud) update(notes []visualizer.Notification, ttl time.Duration, now time.Time) {
	h.hue += 0.5
	if h.hue >= 360 {
		h.hue -= 360
	}

	live := make([]*toast, 0, len(notes))
	for _, n := range notes {
		t := h.find(n)
		if t == nil {
			t = &toast{
				note:   n,
				x:      toastWidth + 20,
				spring: harmonica.NewSpring(harmonica.FPS(ebiten.TPS()), 6.0, 0.6),
			}
		}
		target := 0.0
		if ttl-now.Sub(n.At) < toastOut {
			target = toastWidth + 20
		}
		t.x, t.vx = t.spring.Update(t.x, t.vx, target)
		live = append(live, t)
	}
	h.toasts = live
}

func (h *hud) find(n visualizer.Notification) *toast {
	for _, t := range h.toasts {
		if t.note.At.Equal(n.At) && t.note.Text == n.Text {
			return t
		}
	}
	return nil
}

func (h *hud) accent(offset float64) color.RGBA {
	c := colorful.Hsv(h.hue+offset, 0.8, 0.9)
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 180}
}

func (h *hud) draw(screen *ebiten.Image, v *visualizer.Visualizer, st status, effects config.EffectsConfig) {
	w, ht := screen.Bounds().Dx(), screen.Bounds().Dy()

	if h.showStats {
		h.drawStats(screen, v, st, effects)
	}
	h.drawButton(screen, st.loading)
	if st.source == audio.SourceFile {
		h.drawProgressBar(screen, st, w, ht)
	}
	if st.source != audio.SourceNone {
		h.drawSpectrum(screen, v, w, ht)
	}
	if h.showHelp {
		h.drawHelp(screen, w, ht)
	}
	h.drawToasts(screen, w)
}

func (h *hud) drawStats(screen *ebiten.Image, v *visualizer.Visualizer, st status, effects config.EffectsConfig) {
	src := "no audio (O to open, M for microphone)"
	switch st.source {
	case audio.SourceFile:
		state := "paused"
		if st.playing {
			state = "playing"
		}
		src = fmt.Sprintf("%s [%s] vol %d%%", st.name, state, int(st.volume*100+0.5))
	case audio.SourceMicrophone:
		src = "microphone"
	}

	var fx []string
	if effects.Bloom {
		fx = append(fx, "bloom")
	}
	if effects.Vignette {
		fx = append(fx, "vignette")
	}
	if effects.MotionBlur {
		fx = append(fx, "blur")
	}
	if len(fx) == 0 {
		fx = append(fx, "none")
	}

	b := v.Bands()
	lines := []string{
		fmt.Sprintf("%s | %s | %s particles | %s", v.Mode().Title(), v.Scheme(), formatCount(v.Buffer().Count()), v.Quality()),
		fmt.Sprintf("FPS %.0f  TPS %.0f  effects %s", ebiten.ActualFPS(), ebiten.ActualTPS(), strings.Join(fx, ",")),
		fmt.Sprintf("bass %3.0f  mid %3.0f  treble %3.0f  beats %d", b.Bass, b.Mid, b.Treble, v.Beats()),
		src,
	}
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, 12, 8+i*lineHeight+config.ButtonHeight+config.ButtonY)
	}
	ebitenutil.DebugPrintAt(screen, "H: help", 12, 8)
}

func (h *hud) drawButton(screen *ebiten.Image, loading bool) {
	r := buttonRect()
	var bg color.Color
	switch {
	case h.buttonPressed:
		bg = color.RGBA{R: 60, G: 80, B: 120, A: 255}
	case h.buttonHovered:
		bg = color.RGBA{R: 80, G: 100, B: 140, A: 255}
	default:
		bg = color.RGBA{R: 100, G: 120, B: 160, A: 255}
	}
	vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), bg, false)
	vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 2, color.RGBA{R: 150, G: 170, B: 200, A: 255}, false)

	label := "Open File"
	if loading {
		label = "Loading..."
	}
	tx := r.x + (r.w-len(label)*charWidth)/2
	ty := r.y + (r.h-lineHeight)/2
	ebitenutil.DebugPrintAt(screen, label, tx, ty)
}

func (h *hud) drawProgressBar(screen *ebiten.Image, st status, w, ht int) {
	if st.duration <= 0 {
		return
	}
	r := progressRect(w, ht)
	progress := clamp01(float64(st.position) / float64(st.duration))

	vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), color.RGBA{R: 25, G: 30, B: 40, A: 200}, false)
	vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 2, color.RGBA{R: 70, G: 80, B: 100, A: 255}, false)
	if progress > 0 {
		vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(progress*float64(r.w)), float32(r.h), h.accent(progress*180), false)
	}

	ix := float32(float64(r.x) + progress*float64(r.w))
	iy := float32(r.y + r.h/2)
	vector.DrawFilledCircle(screen, ix, iy, 7, color.White, false)
	vector.StrokeCircle(screen, ix, iy, 7, 2, color.RGBA{R: 100, G: 110, B: 130, A: 255}, false)

	cur, total := formatDuration(st.position), formatDuration(st.duration)
	ebitenutil.DebugPrintAt(screen, cur, r.x, r.y+r.h+4)
	ebitenutil.DebugPrintAt(screen, total, r.x+r.w-len(total)*charWidth, r.y+r.h+4)

	if h.barHovered {
		mx, my := ebiten.CursorPosition()
		at := time.Duration(clamp01(float64(mx-r.x)/float64(r.w)) * float64(st.duration))
		tip := formatDuration(at)
		tw := len(tip)*charWidth + 10
		tx := min(max(mx-tw/2, 0), w-tw)
		ty := my - 25
		vector.DrawFilledRect(screen, float32(tx), float32(ty), float32(tw), 20, color.RGBA{A: 200}, false)
		vector.StrokeRect(screen, float32(tx), float32(ty), float32(tw), 20, 1, color.RGBA{R: 100, G: 110, B: 130, A: 255}, false)
		ebitenutil.DebugPrintAt(screen, tip, tx+5, ty+2)
	}
}

// drawSpectrum shows the analyser output as a strip of bars above the
// progress bar.
func (h *hud) drawSpectrum(screen *ebiten.Image, v *visualizer.Visualizer, w, ht int) {
	spec := v.Bands().Spectrum
	if len(spec) == 0 {
		return
	}
	barH := 40
	x0, y0 := 20, ht-60-barH-8
	width := float64(w - 40)
	seg := width / spectrumSegments
	per := max(len(spec)/spectrumSegments, 1)

	for i := 0; i < spectrumSegments; i++ {
		start := i * per
		if start >= len(spec) {
			break
		}
		sum := 0
		end := min(start+per, len(spec))
		for _, s := range spec[start:end] {
			sum += int(s)
		}
		level := float64(sum) / float64(end-start) / 255
		sh := max(level*float64(barH), 1)
		c := h.accent(float64(i) / spectrumSegments * 180)
		c.A = uint8(60 + 140*level)
		x := float64(x0) + float64(i)*seg
		vector.DrawFilledRect(screen, float32(x), float32(float64(y0+barH)-sh), float32(seg-1), float32(sh), c, false)
	}
}

func (h *hud) drawHelp(screen *ebiten.Image, w, ht int) {
	pw := 0
	for _, l := range helpLines {
		pw = max(pw, len(l)*charWidth)
	}
	pw += 24
	ph := len(helpLines)*lineHeight + 24
	x, y := (w-pw)/2, (ht-ph)/2
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(pw), float32(ph), color.RGBA{R: 10, G: 12, B: 20, A: 220}, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(pw), float32(ph), 1, h.accent(0), false)
	for i, l := range helpLines {
		ebitenutil.DebugPrintAt(screen, l, x+12, y+12+i*lineHeight)
	}
}

func (h *hud) drawToasts(screen *ebiten.Image, w int) {
	for i, t := range h.toasts {
		x := float32(float64(w-toastWidth-12) + t.x)
		y := float32(12 + i*(toastHeight+6))
		bg := color.RGBA{R: 30, G: 40, B: 60, A: 220}
		if t.note.Level == visualizer.LevelError {
			bg = color.RGBA{R: 120, G: 30, B: 40, A: 220}
		}
		vector.DrawFilledRect(screen, x, y, toastWidth, toastHeight, bg, false)
		ebitenutil.DebugPrintAt(screen, t.note.Text, int(x)+8, int(y)+4)
	}
}
