package modes

import (
	"math"
	"math/rand/v2"

	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/particles"
	"github.com/iburimskiy/particle-wave/internal/spectrum"
)

// sphereMode spreads particles evenly over a sphere with the Fibonacci
// lattice and pulses the radius with time and bass.
//
// Param: unit direction x, y, z.
type sphereMode struct {
	cfg      config.SphereParams
	t        float64
	rotation float64
}

func (m *sphereMode) Kind() Kind { return Sphere }

func (m *sphereMode) Rotation() float64 { return m.rotation }

func (m *sphereMode) Init(buf *particles.Buffer, pal config.Palette) {
	m.t = 0
	m.rotation = 0
	reset(buf)

	n := float64(buf.Count())
	golden := math.Pi * (1 + math.Sqrt(5))
	for i := 0; i < buf.Count(); i++ {
		phi := math.Acos(1 - 2*(float64(i)+0.5)/n)
		theta := golden * float64(i)

		x := math.Cos(theta) * math.Sin(phi)
		y := math.Sin(theta) * math.Sin(phi)
		z := math.Cos(phi)

		buf.SetParam(i, x, y, z)
		buf.Set(i, x*m.cfg.Radius, y*m.cfg.Radius, z*m.cfg.Radius)
	}

	buf.SetColorsFromPalette(pal, nil)
}

func (m *sphereMode) Update(buf *particles.Buffer, pal config.Palette, bands spectrum.BandEnergies) {
	m.t += m.cfg.PulseSpeed
	radius := m.cfg.Radius + math.Sin(m.t)*m.cfg.PulseAmount + bands.Bass/255*30
	noise := bands.Treble / 255 * 5

	forEachParticle(buf.Count(), func(i int) {
		x, y, z := buf.Params(i)
		x *= radius
		y *= radius
		z *= radius
		if noise > 0 {
			x += (rand.Float64() - 0.5) * noise
			y += (rand.Float64() - 0.5) * noise
			z += (rand.Float64() - 0.5) * noise
		}
		buf.Set(i, x, y, z)
	})

	m.rotation += m.cfg.RotationSpeed
	buf.SetColorsFromPalette(pal, &bands)
}
