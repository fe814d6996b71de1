package particles

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/particle-wave/internal/config"
)

// ColorFromPalette linearly interpolates between the two palette stops that
// bracket position. Position is clamped to [0,1]; 0 yields the first stop and
// 1 the last. An empty palette yields white.
func ColorFromPalette(palette config.Palette, position float64) colorful.Color {
	if len(palette) == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	if math.IsNaN(position) {
		position = 0
	}
	position = clamp01(position)
	scaled := position * float64(len(palette)-1)
	index := int(math.Floor(scaled))
	next := min(index+1, len(palette)-1)
	return palette[index].BlendRgb(palette[next], scaled-float64(index))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
