package modes

import (
	"math"

	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/particles"
	"github.com/iburimskiy/particle-wave/internal/spectrum"
)

// barsMode arranges particles in vertical bars on a circle, one bar per
// contiguous slice of the spectrum.
//
// Param: bar index, height fraction, bar angle.
type barsMode struct {
	cfg     config.BarsParams
	t       float64
	heights []float64
}

func (m *barsMode) Kind() Kind { return Bars }

// Heights exposes the smoothed bar heights.
func (m *barsMode) Heights() []float64 { return m.heights }

func (m *barsMode) Init(buf *particles.Buffer, pal config.Palette) {
	m.t = 0
	reset(buf)

	barCount := max(m.cfg.BarCount, 1)
	m.heights = make([]float64, barCount)
	perBar := buf.Count() / barCount

	index := 0
	for bar := 0; bar < barCount && perBar > 0; bar++ {
		angle := float64(bar) / float64(barCount) * 2 * math.Pi
		x := math.Cos(angle) * m.cfg.Radius
		z := math.Sin(angle) * m.cfg.Radius
		for p := 0; p < perBar; p++ {
			buf.Set(index, x, 0, z)
			buf.SetParam(index, float64(bar), float64(p)/float64(perBar), angle)
			index++
		}
	}

	buf.SetColorsFromPalette(pal, nil)
}

func (m *barsMode) Update(buf *particles.Buffer, pal config.Palette, bands spectrum.BandEnergies) {
	if len(m.heights) == 0 {
		m.heights = make([]float64, max(m.cfg.BarCount, 1))
	}
	m.t += 0.01
	t := m.t

	if len(bands.Spectrum) > 0 {
		perBar := len(bands.Spectrum) / len(m.heights)
		for bar := range m.heights {
			start := bar * perBar
			avg := spectrum.AverageSlice(bands.Spectrum, start, start+perBar)
			target := avg / 255 * m.cfg.MaxHeight
			m.heights[bar] += (target - m.heights[bar]) * m.cfg.Smoothing
		}
	}

	assigned := buf.Count() / len(m.heights) * len(m.heights)
	forEachParticle(assigned, func(i int) {
		bar, frac, angle := buf.Params(i)
		y := frac * m.heights[int(bar)]
		r := m.cfg.Radius + math.Sin(y*0.1+t)*2
		a := angle + t*0.1
		buf.Set(i, math.Cos(a)*r, y, math.Sin(a)*r)
	})

	buf.SetColorsFromPalette(pal, &bands)
}
