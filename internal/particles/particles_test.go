package particles

import (
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/spectrum"
)

func TestColorFromPaletteEndpoints(t *testing.T) {
	for _, s := range config.Default().Schemes {
		pal := s.Colors
		if got := ColorFromPalette(pal, 0); got != pal[0] {
			t.Errorf("%s: position 0 = %v, want %v", s.Name, got, pal[0])
		}
		if got := ColorFromPalette(pal, 1); got != pal[len(pal)-1] {
			t.Errorf("%s: position 1 = %v, want %v", s.Name, got, pal[len(pal)-1])
		}
		if got := ColorFromPalette(pal, -3); got != pal[0] {
			t.Errorf("%s: negative position should clamp to first stop", s.Name)
		}
		if got := ColorFromPalette(pal, 7); got != pal[len(pal)-1] {
			t.Errorf("%s: large position should clamp to last stop", s.Name)
		}
	}
}

func TestColorFromPaletteInterpolatesMonotonically(t *testing.T) {
	pal := config.Palette{{R: 0, G: 1, B: 0.5}, {R: 0.5, G: 0.5, B: 0.5}, {R: 1, G: 0, B: 0.5}}
	prev := ColorFromPalette(pal, 0)
	for step := 1; step <= 100; step++ {
		c := ColorFromPalette(pal, float64(step)/100)
		if c.R < prev.R || c.G > prev.G {
			t.Fatalf("non-monotonic at %d: %v after %v", step, c, prev)
		}
		prev = c
	}

	mid := ColorFromPalette(pal, 0.25)
	want := colorful.Color{R: 0.25, G: 0.75, B: 0.5}
	if !almost(mid.R, want.R) || !almost(mid.G, want.G) || !almost(mid.B, want.B) {
		t.Fatalf("position 0.25 = %v, want %v", mid, want)
	}
}

func TestColorFromPaletteNaNUsesFirstStop(t *testing.T) {
	pal := config.Palette{{R: 1}, {B: 1}}
	if got := ColorFromPalette(pal, math.NaN()); got != pal[0] {
		t.Fatalf("expected first stop for NaN, got %v", got)
	}
}

func TestResizeKeepsArraysInLockstep(t *testing.T) {
	b := NewBuffer(10)
	for _, n := range []int{1, 7, 10000, 3} {
		b.Resize(n)
		if b.Count() != n {
			t.Fatalf("expected count %d, got %d", n, b.Count())
		}
		if len(b.Position) != 3*n || len(b.Param) != 3*n || len(b.Color) != 3*n {
			t.Fatalf("arrays out of lockstep for n=%d: %d/%d/%d", n, len(b.Position), len(b.Param), len(b.Color))
		}
	}
}

func TestSetColorsFromPaletteByIndex(t *testing.T) {
	pal, _ := config.Default().Palette("fire")
	b := NewBuffer(4)
	b.SetColorsFromPalette(pal, nil)

	for i := 0; i < 4; i++ {
		want := ColorFromPalette(pal, float64(i)/4)
		i3 := i * 3
		if b.Color[i3] != float32(want.R) || b.Color[i3+1] != float32(want.G) || b.Color[i3+2] != float32(want.B) {
			t.Fatalf("particle %d colour mismatch", i)
		}
	}
}

func TestSetColorsFromPaletteShiftsWithAudio(t *testing.T) {
	pal, _ := config.Default().Palette("rainbow")
	b := NewBuffer(4)
	bands := &spectrum.BandEnergies{Bass: 255, Mid: 0, Treble: 127.5}
	b.SetColorsFromPalette(pal, bands)

	// intensity = 0.5, so particle 3 wraps from 0.75 to 0.25
	want := ColorFromPalette(pal, 0.25)
	if b.Color[9] != float32(want.R) || b.Color[10] != float32(want.G) || b.Color[11] != float32(want.B) {
		t.Fatalf("expected wrapped colour %v, got %v", want, b.Color[9:12])
	}
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
