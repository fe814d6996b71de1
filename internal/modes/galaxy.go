package modes

import (
	"math"

	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/particles"
	"github.com/iburimskiy/particle-wave/internal/spectrum"
)

// Salts for the per-index scatter streams.
const (
	saltAngle  = 0x61
	saltRadius = 0x72
	saltHeight = 0x68
)

// galaxyMode deals particles round-robin onto spiral arms; inner particles
// orbit faster than outer ones.
//
// Param: unit distance from centre, arm base angle, base height.
type galaxyMode struct {
	cfg config.GalaxyParams
	t   float64
}

func (m *galaxyMode) Kind() Kind { return Galaxy }

func (m *galaxyMode) Init(buf *particles.Buffer, pal config.Palette) {
	m.t = 0
	reset(buf)

	arms := max(m.cfg.Arms, 1)
	n := float64(buf.Count())
	for i := 0; i < buf.Count(); i++ {
		armAngle := float64(i%arms) / float64(arms) * 2 * math.Pi
		dist := math.Sqrt(float64(i) / n)
		r := dist * m.cfg.Radius
		angle := armAngle + dist*math.Pi*4*m.cfg.ArmSpread

		da := (unitRand(i, saltAngle) - 0.5) * 0.5
		dr := (unitRand(i, saltRadius) - 0.5) * 10
		y := (unitRand(i, saltHeight) - 0.5) * 20 * (1 - dist)

		buf.Set(i, math.Cos(angle+da)*(r+dr), y, math.Sin(angle+da)*(r+dr))
		buf.SetParam(i, dist, armAngle, y)
	}

	buf.SetColorsFromPalette(pal, nil)
}

func (m *galaxyMode) Update(buf *particles.Buffer, pal config.Palette, bands spectrum.BandEnergies) {
	m.t += m.cfg.RotationSpeed
	t := m.t
	boost := bands.Bass / 255 * 10
	mid := bands.Mid / 255

	forEachParticle(buf.Count(), func(i int) {
		dist, armAngle, baseY := buf.Params(i)
		r := dist*m.cfg.Radius + boost
		angle := armAngle + dist*math.Pi*4*m.cfg.ArmSpread + t*(1-dist*0.5)
		wave := math.Sin(angle+t*2) * mid * 5
		buf.Set(i, math.Cos(angle)*r, baseY+wave, math.Sin(angle)*r)
	})

	buf.SetColorsFromPalette(pal, &bands)
}
