package modes

import (
	"math"

	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/particles"
	"github.com/iburimskiy/particle-wave/internal/spectrum"
)

// vortexMode stacks rings along Z and scrolls them through a looping tunnel.
//
// Param: angle on ring, ring index, base z.
type vortexMode struct {
	cfg    config.VortexParams
	t      float64
	offset float64
}

func (m *vortexMode) Kind() Kind { return Vortex }

func (m *vortexMode) Init(buf *particles.Buffer, pal config.Palette) {
	m.t = 0
	m.offset = 0
	reset(buf)

	rings := max(m.cfg.Rings, 1)
	perRing := buf.Count() / rings
	length := float64(rings) * m.cfg.Spacing

	index := 0
	for ring := 0; ring < rings && perRing > 0; ring++ {
		z := float64(ring)*m.cfg.Spacing - length/2
		for p := 0; p < perRing; p++ {
			angle := float64(p) / float64(perRing) * 2 * math.Pi
			buf.Set(index, math.Cos(angle)*m.cfg.RingRadius, math.Sin(angle)*m.cfg.RingRadius, z)
			buf.SetParam(index, angle, float64(ring), z)
			index++
		}
	}

	buf.SetColorsFromPalette(pal, nil)
}

func (m *vortexMode) Update(buf *particles.Buffer, pal config.Palette, bands spectrum.BandEnergies) {
	m.t += m.cfg.RotationSpeed
	m.offset += m.cfg.TunnelSpeed * (1 + bands.Bass/255)

	t := m.t
	rings := max(m.cfg.Rings, 1)
	length := float64(rings) * m.cfg.Spacing
	// only fully assigned rings move; leftovers stay at the origin
	assigned := buf.Count() / rings * rings
	half := length / 2
	shift := math.Mod(m.offset, length)
	boost := bands.Bass / 255 * 10
	mid := bands.Mid / 255

	forEachParticle(assigned, func(i int) {
		baseAngle, ring, z0 := buf.Params(i)
		z := wrap(z0+half+shift, length) - half

		angle := baseAngle + t + ring*0.2
		r := m.cfg.RingRadius + math.Sin(t*2+ring*0.5)*5 + boost
		r += math.Sin(angle*3+t*2) * mid * 3

		buf.Set(i, math.Cos(angle)*r, math.Sin(angle)*r, z)
	})

	buf.SetColorsFromPalette(pal, &bands)
}

// wrap returns v modulo length in [0, length).
func wrap(v, length float64) float64 {
	v = math.Mod(v, length)
	if v < 0 {
		v += length
	}
	if v >= length {
		v = 0
	}
	return v
}
