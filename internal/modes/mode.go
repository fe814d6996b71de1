// Package modes implements the particle arrangements. Each mode owns the
// interpretation of the buffer's Param array while it is active.
package modes

import (
	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/particles"
	"github.com/iburimskiy/particle-wave/internal/spectrum"
)

type Kind int

const (
	Wave Kind = iota
	Sphere
	Helix
	Galaxy
	Vortex
	Bars
)

var kindNames = [...]string{"wave", "sphere", "helix", "galaxy", "vortex", "bars"}

var kindTitles = [...]string{"Wave Ocean", "Particle Sphere", "DNA Helix", "Galaxy Spiral", "Vortex Tunnel", "Frequency Bars"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Title is the display name shown in the HUD.
func (k Kind) Title() string {
	if k < 0 || int(k) >= len(kindTitles) {
		return "Unknown"
	}
	return kindTitles[k]
}

// Kinds lists all modes in shortcut order (keys 1-6).
func Kinds() []Kind {
	return []Kind{Wave, Sphere, Helix, Galaxy, Vortex, Bars}
}

func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Mode is one particle arrangement. Init rebuilds Param and Position from the
// particle index alone and resets the mode's clock; Update advances the clock
// one frame and recomputes every particle from its Param, the clock and the
// band energies.
type Mode interface {
	Kind() Kind
	Init(buf *particles.Buffer, pal config.Palette)
	Update(buf *particles.Buffer, pal config.Palette, bands spectrum.BandEnergies)
}

// Rotator is implemented by modes that also spin the whole field about the
// vertical axis. The renderer applies the returned yaw in radians.
type Rotator interface {
	Rotation() float64
}

// New builds the mode of the given kind from its parameters.
func New(k Kind, p config.ModeParams) Mode {
	switch k {
	case Sphere:
		return &sphereMode{cfg: p.Sphere}
	case Helix:
		return &helixMode{cfg: p.Helix}
	case Galaxy:
		return &galaxyMode{cfg: p.Galaxy}
	case Vortex:
		return &vortexMode{cfg: p.Vortex}
	case Bars:
		return &barsMode{cfg: p.Bars}
	default:
		return &waveMode{cfg: p.Wave}
	}
}

// reset clears positions and params so particles a layout leaves unassigned
// sit at the origin instead of keeping the previous mode's values.
func reset(buf *particles.Buffer) {
	clear(buf.Position)
	clear(buf.Param)
}
