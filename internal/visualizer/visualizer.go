// Package visualizer drives one frame of the particle field: it reads band
// energies, fires camera shake on beats, advances the active mode and eases
// the camera. It knows nothing about windows or drawing.
package visualizer

import (
	"log"
	"time"

	"github.com/iburimskiy/particle-wave/internal/camera"
	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/modes"
	"github.com/iburimskiy/particle-wave/internal/particles"
	"github.com/iburimskiy/particle-wave/internal/spectrum"
)

const (
	notificationTTL   = 3 * time.Second
	notificationLimit = 4
)

// Source supplies the current frame's band energies.
type Source interface {
	BandEnergies() spectrum.BandEnergies
}

type Visualizer struct {
	cfg config.Config
	src Source

	buf     *particles.Buffer
	modes   []modes.Mode
	active  modes.Kind
	scheme  string
	palette config.Palette
	quality string
	size    float64

	rig  *camera.Rig
	beat *spectrum.BeatDetector

	ShakeOnBeat bool

	bands  spectrum.BandEnergies
	beats  int
	frames int

	Notes *Notifier
}

// New builds a visualizer with the configured default mode, scheme and
// quality and initialises the particle field.
func New(cfg config.Config, src Source) *Visualizer {
	v := &Visualizer{
		cfg:         cfg,
		src:         src,
		rig:         camera.NewRig(cfg.Camera),
		beat:        spectrum.NewBeatDetector(cfg.Audio.BeatThreshold, cfg.Audio.BeatMinGap),
		size:        cfg.Particles.Size,
		ShakeOnBeat: true,
		Notes:       NewNotifier(notificationTTL, notificationLimit),
	}
	for _, k := range modes.Kinds() {
		v.modes = append(v.modes, modes.New(k, cfg.Modes))
	}

	v.active, _ = modes.ParseKind(cfg.DefaultMode)
	v.scheme = cfg.DefaultScheme
	if pal, ok := cfg.Palette(v.scheme); ok {
		v.palette = pal
	} else {
		v.scheme = cfg.Schemes[0].Name
		v.palette = cfg.Schemes[0].Colors
	}

	count := cfg.Particles.Default
	if q, ok := cfg.Quality(cfg.DefaultQuality); ok {
		v.quality = q.Name
		v.size = q.ParticleSize
		count = q.ParticleCount
	}
	v.buf = particles.NewBuffer(count)
	v.mode().Init(v.buf, v.palette)
	return v
}

func (v *Visualizer) mode() modes.Mode { return v.modes[v.active] }

// Frame runs one iteration: band energies, beat shake, mode update, camera.
func (v *Visualizer) Frame(now time.Time) {
	v.bands = v.src.BandEnergies()
	if v.beat.Detect(v.bands.Bass, now) {
		v.beats++
		if v.ShakeOnBeat {
			v.rig.Shake(v.cfg.Audio.ShakeIntensity)
		}
	}
	v.mode().Update(v.buf, v.palette, v.bands)
	v.rig.Update()
	v.frames++
}

// SetMode switches to the named mode and re-initialises every particle.
// Unknown names and the already active mode are ignored.
func (v *Visualizer) SetMode(name string) bool {
	k, ok := modes.ParseKind(name)
	if !ok {
		return false
	}
	return v.SetModeKind(k)
}

// SetModeKind switches to k and re-runs its Init, also when k is already
// active, so selecting the current mode restarts it.
func (v *Visualizer) SetModeKind(k modes.Kind) bool {
	if int(k) < 0 || int(k) >= len(v.modes) {
		return false
	}
	v.active = k
	v.mode().Init(v.buf, v.palette)
	log.Printf("visualizer: mode %s", k)
	return true
}

// SetColorScheme swaps the palette and recolours the whole field at once.
func (v *Visualizer) SetColorScheme(name string) bool {
	pal, ok := v.cfg.Palette(name)
	if !ok {
		return false
	}
	v.scheme = name
	v.palette = pal
	v.recolor()
	return true
}

func (v *Visualizer) CycleColorScheme() string {
	v.SetColorScheme(v.cfg.NextScheme(v.scheme))
	return v.scheme
}

func (v *Visualizer) recolor() {
	if v.frames == 0 {
		v.buf.SetColorsFromPalette(v.palette, nil)
		return
	}
	v.buf.SetColorsFromPalette(v.palette, &v.bands)
}

// SetParticleCount reallocates the buffer and re-initialises the active mode
// before the next Frame. Non-positive counts are ignored.
func (v *Visualizer) SetParticleCount(n int) bool {
	if n <= 0 || n == v.buf.Count() {
		return false
	}
	v.buf.Resize(n)
	v.mode().Init(v.buf, v.palette)
	log.Printf("visualizer: %d particles", n)
	return true
}

// StepParticles changes the count by delta within the configured range.
func (v *Visualizer) StepParticles(delta int) int {
	v.SetParticleCount(v.cfg.ClampParticles(v.buf.Count() + delta))
	return v.buf.Count()
}

// SetQuality applies a preset's particle count and size. The caller applies
// the analysis and effect settings it also carries.
func (v *Visualizer) SetQuality(name string) (config.QualityPreset, bool) {
	q, ok := v.cfg.Quality(name)
	if !ok {
		return config.QualityPreset{}, false
	}
	v.quality = q.Name
	v.size = q.ParticleSize
	v.SetParticleCount(q.ParticleCount)
	return q, true
}

// NextQuality cycles through the presets in order.
func (v *Visualizer) NextQuality() config.QualityPreset {
	qs := v.cfg.Qualities
	next := 0
	for i, q := range qs {
		if q.Name == v.quality {
			next = (i + 1) % len(qs)
			break
		}
	}
	q, _ := v.SetQuality(qs[next].Name)
	return q
}

// ApplyConfig applies each valid field of r and ignores the rest. Applying
// the same record twice has the same effect as applying it once.
func (v *Visualizer) ApplyConfig(r config.Record) {
	if k, ok := modes.ParseKind(r.Mode); ok && k != v.active {
		v.SetModeKind(k)
	}
	if r.ColorScheme != "" {
		v.SetColorScheme(r.ColorScheme)
	}
	if r.ParticleCount > 0 {
		v.SetParticleCount(r.ParticleCount)
	}
}

func (v *Visualizer) Snapshot() config.Record {
	return config.Record{
		Mode:          v.active.String(),
		ColorScheme:   v.scheme,
		ParticleCount: v.buf.Count(),
	}
}

// ModelYaw is the rotation about the vertical axis the renderer applies to
// the whole field.
func (v *Visualizer) ModelYaw() float64 {
	if r, ok := v.mode().(modes.Rotator); ok {
		return r.Rotation()
	}
	return 0
}

func (v *Visualizer) Buffer() *particles.Buffer { return v.buf }
func (v *Visualizer) Rig() *camera.Rig { return v.rig }
func (v *Visualizer) Mode() modes.Kind { return v.active }
func (v *Visualizer) Scheme() string { return v.scheme }
func (v *Visualizer) Palette() config.Palette { return v.palette }
func (v *Visualizer) Quality() string { return v.quality }
func (v *Visualizer) ParticleSize() float64 { return v.size }
func (v *Visualizer) Bands() spectrum.BandEnergies { return v.bands }
func (v *Visualizer) Beats() int { return v.beats }
func (v *Visualizer) Config() config.Config { return v.cfg }
