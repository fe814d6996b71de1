package modes

import (
	"math"

	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/particles"
	"github.com/iburimskiy/particle-wave/internal/spectrum"
)

// waveMode lays particles on a square grid in the XZ plane and animates
// their height with interfering sine waves.
//
// Param: grid x, 0, grid z.
type waveMode struct {
	cfg  config.WaveParams
	t    float64
	grid int
}

func (m *waveMode) Kind() Kind { return Wave }

func (m *waveMode) Init(buf *particles.Buffer, pal config.Palette) {
	m.t = 0
	reset(buf)

	n := buf.Count()
	m.grid = int(math.Floor(math.Sqrt(float64(n))))
	offset := float64(m.grid) * m.cfg.Spacing / 2

	for i := 0; i < m.grid*m.grid; i++ {
		gx, gz := i/m.grid, i%m.grid
		x := float64(gx)*m.cfg.Spacing - offset
		z := float64(gz)*m.cfg.Spacing - offset
		buf.Set(i, x, 0, z)
		buf.SetParam(i, x, 0, z)
	}

	buf.SetColorsFromPalette(pal, nil)
}

func (m *waveMode) Update(buf *particles.Buffer, pal config.Palette, bands spectrum.BandEnergies) {
	m.t += m.cfg.Speed
	t := m.t
	amplitude := m.cfg.Amplitude * (1 + bands.Bass/255)
	lift := bands.Mid / 255 * 10

	forEachParticle(m.grid*m.grid, func(i int) {
		px, _, pz := buf.Params(i)
		dist := math.Hypot(px, pz)
		w1 := math.Sin(dist*0.1+t) * amplitude
		w2 := math.Sin(px*0.05+t*0.5) * amplitude * 0.5
		w3 := math.Sin(pz*0.05-t*0.5) * amplitude * 0.5
		buf.Position[i*3+1] = float32(w1 + w2 + w3 + lift)
	})

	buf.SetColorsFromPalette(pal, &bands)
}
