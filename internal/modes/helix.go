package modes

import (
	"math"

	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/particles"
	"github.com/iburimskiy/particle-wave/internal/spectrum"
)

// helixMode winds particles into two strands half a turn apart.
//
// Param: curve angle, height, strand (0 or 1).
type helixMode struct {
	cfg config.HelixParams
	t   float64
}

func (m *helixMode) Kind() Kind { return Helix }

func (m *helixMode) Init(buf *particles.Buffer, pal config.Palette) {
	m.t = 0
	reset(buf)

	n := float64(buf.Count())
	for i := 0; i < buf.Count(); i++ {
		f := float64(i) / n
		s := f * m.cfg.Coils * 2 * math.Pi
		y := f*m.cfg.Height - m.cfg.Height/2
		strand := float64(i % 2)
		offset := strand * math.Pi

		buf.Set(i, math.Cos(s+offset)*m.cfg.Radius, y, math.Sin(s+offset)*m.cfg.Radius)
		buf.SetParam(i, s, y, strand)
	}

	buf.SetColorsFromPalette(pal, nil)
}

func (m *helixMode) Update(buf *particles.Buffer, pal config.Palette, bands spectrum.BandEnergies) {
	m.t += m.cfg.RotationSpeed
	t := m.t
	thickness := m.cfg.Thickness * (1 + bands.Mid/255)
	// bass widens the strands in the horizontal plane
	spread := 1 + bands.Bass/255*5*0.1

	forEachParticle(buf.Count(), func(i int) {
		s, y, strand := buf.Params(i)
		offset := strand * math.Pi
		r := m.cfg.Radius + math.Sin(y*0.1+t)*thickness
		buf.Set(i,
			math.Cos(s+offset+t)*r*spread,
			y,
			math.Sin(s+offset+t)*r*spread,
		)
	})

	buf.SetColorsFromPalette(pal, &bands)
}
