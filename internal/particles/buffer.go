package particles

import (
	"math"

	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/spectrum"
)

// Buffer holds the flat per-particle arrays shared by every mode and read by
// the renderer. All three slices have length 3*Count() at all times.
//
// Param is scratch storage whose meaning belongs to the active mode, e.g.
// grid coordinates for wave or a unit direction for sphere.
type Buffer struct {
	Position []float32
	Param    []float32
	Color    []float32

	count int
}

func NewBuffer(n int) *Buffer {
	b := &Buffer{}
	b.Resize(n)
	return b
}

func (b *Buffer) Count() int { return b.count }

// Resize reallocates all arrays for n particles. The caller must re-run the
// active mode's Init before the next update. Non-positive n is treated as 1.
func (b *Buffer) Resize(n int) {
	n = max(n, 1)
	b.count = n
	b.Position = make([]float32, 3*n)
	b.Param = make([]float32, 3*n)
	b.Color = make([]float32, 3*n)
}

// Set writes particle i's position.
func (b *Buffer) Set(i int, x, y, z float64) {
	i3 := i * 3
	b.Position[i3] = float32(x)
	b.Position[i3+1] = float32(y)
	b.Position[i3+2] = float32(z)
}

func (b *Buffer) SetParam(i int, p0, p1, p2 float64) {
	i3 := i * 3
	b.Param[i3] = float32(p0)
	b.Param[i3+1] = float32(p1)
	b.Param[i3+2] = float32(p2)
}

func (b *Buffer) Params(i int) (float64, float64, float64) {
	i3 := i * 3
	return float64(b.Param[i3]), float64(b.Param[i3+1]), float64(b.Param[i3+2])
}

// At returns particle i's position.
func (b *Buffer) At(i int) (float64, float64, float64) {
	i3 := i * 3
	return float64(b.Position[i3]), float64(b.Position[i3+1]), float64(b.Position[i3+2])
}

// SetColorsFromPalette colours particle i by its index fraction i/n. When
// bands is non-nil the fraction is rotated by the mean band intensity so the
// palette cycles with loudness.
func (b *Buffer) SetColorsFromPalette(palette config.Palette, bands *spectrum.BandEnergies) {
	shift := 0.0
	if bands != nil {
		shift = bands.Intensity()
	}
	n := float64(b.count)
	for i := 0; i < b.count; i++ {
		pos := float64(i) / n
		if bands != nil {
			pos = math.Mod(pos+shift, 1.0)
		}
		c := ColorFromPalette(palette, pos)
		i3 := i * 3
		b.Color[i3] = float32(c.R)
		b.Color[i3+1] = float32(c.G)
		b.Color[i3+2] = float32(c.B)
	}
}
