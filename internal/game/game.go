// Package game is the Ebitengine shell around the visualizer: it maps input
// to actions, renders the particle field with post effects and a HUD, and
// runs audio loads off the frame loop.
package game

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/particle-wave/internal/audio"
	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/visualizer"
)

// result is the outcome of work done off the frame loop.
type result struct {
	action string
	msg    string
	err    error
}

type Game struct {
	cfg    config.Config
	engine *audio.Engine
	viz    *visualizer.Visualizer

	renderer *particleRenderer
	effects  *postEffects
	hud      *hud
	in       *input

	ctx     context.Context
	cancel  context.CancelFunc
	results chan result
	pending int

	trackIndex  int
	sensitivity float64
	screenshot  bool
	quit        bool
	now         func() time.Time
}

func New(cfg config.Config, engine *audio.Engine) *Game {
	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		cfg:         cfg,
		engine:      engine,
		viz:         visualizer.New(cfg, engine),
		renderer:    newParticleRenderer(cfg),
		effects:     newPostEffects(cfg.Effects),
		hud:         newHUD(),
		in:          newInput(),
		ctx:         ctx,
		cancel:      cancel,
		results:     make(chan result, 8),
		trackIndex:  -1,
		sensitivity: 1,
		now:         time.Now,
	}
	if q, ok := cfg.Quality(g.viz.Quality()); ok {
		g.applyQuality(q)
	}
	engine.SetVolume(cfg.Audio.Volume)
	return g
}

func (g *Game) Visualizer() *visualizer.Visualizer { return g.viz }

// LoadFile, LoadURL and StartMicrophone run in the background; the result
// shows up as a notification.
func (g *Game) LoadFile(path string) {
	g.async("Load file", func(ctx context.Context) (string, error) {
		return "Playing " + filepath.Base(path), g.engine.LoadFile(ctx, path)
	})
}

func (g *Game) LoadURL(url string) {
	g.async("Load URL", func(ctx context.Context) (string, error) {
		return "Playing " + url, g.engine.LoadURL(ctx, url)
	})
}

func (g *Game) StartMicrophone() {
	g.async("Microphone", func(ctx context.Context) (string, error) {
		return "Microphone on", g.engine.StartMicrophone(ctx)
	})
}

// async runs fn on its own goroutine. The message it returns is shown when
// it succeeds; an empty message shows nothing.
func (g *Game) async(action string, fn func(ctx context.Context) (string, error)) {
	g.pending++
	go func() {
		msg, err := fn(g.ctx)
		g.results <- result{action: action, msg: msg, err: err}
	}()
}

// drain applies finished background work without blocking.
func (g *Game) drain() {
	for {
		select {
		case r := <-g.results:
			g.pending--
			g.report(r)
		default:
			return
		}
	}
}

func (g *Game) report(r result) {
	now := g.now()
	if r.err != nil {
		log.Printf("%s: %v", r.action, r.err)
		g.viz.Notes.Push(describeError(r.err), visualizer.LevelError, now)
		return
	}
	if r.msg != "" {
		g.viz.Notes.Push(r.msg, visualizer.LevelInfo, now)
	}
}

// describeError turns a load failure into the message shown to the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, audio.ErrPermissionDenied):
		return "Microphone access denied"
	case errors.Is(err, audio.ErrTimeout):
		return "Audio URL timed out"
	case errors.Is(err, audio.ErrUnavailable):
		return "Audio URL not available"
	case errors.Is(err, audio.ErrUnsupportedFormat):
		return "Unsupported audio format"
	case errors.Is(err, audio.ErrNoSource):
		return "No audio loaded"
	case errors.Is(err, errScreenshot):
		return "Screenshot failed"
	}
	return "Failed to load audio file"
}

func (g *Game) notify(text string) {
	g.viz.Notes.Push(text, visualizer.LevelInfo, g.now())
}

func (g *Game) notifyError(err error) {
	g.viz.Notes.Push(describeError(err), visualizer.LevelError, g.now())
}

func (g *Game) applyQuality(q config.QualityPreset) {
	g.engine.SetFFTSize(q.FFTSize)
	g.effects.cfg.Bloom = q.Bloom
	g.effects.cfg.MotionBlur = q.MotionBlur
}

func (g *Game) Update() error {
	g.drain()

	g.handleInput()
	if g.quit {
		g.cancel()
		return ebiten.Termination
	}

	now := g.now()
	g.viz.Frame(now)
	g.hud.update(g.viz.Notes.Active(now), g.viz.Notes.TTL(), now)
	return nil
}

func (g *Game) status() status {
	kind, name := g.engine.Source()
	return status{
		source:   kind,
		name:     name,
		playing:  g.engine.Playing(),
		position: g.engine.Position(),
		duration: g.engine.Duration(),
		volume:   g.engine.Volume(),
		loading:  g.pending > 0,
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	scene := g.effects.begin(screen)
	g.renderer.draw(scene, g.viz.Buffer(), g.viz.Rig().Eye(), g.viz.ModelYaw(), g.viz.ParticleSize())
	g.effects.finish(screen)

	if g.screenshot {
		g.screenshot = false
		g.captureScreenshot(screen)
	}

	g.hud.draw(screen, g.viz, g.status(), g.effects.cfg)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Close stops background work and releases audio devices.
func (g *Game) Close() error {
	g.cancel()
	return g.engine.Close()
}
