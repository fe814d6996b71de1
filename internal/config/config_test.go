package config

import "testing"

func TestDefaultSchemesHaveAtLeastTwoStops(t *testing.T) {
	cfg := Default()
	for _, s := range cfg.Schemes {
		if len(s.Colors) < 2 {
			t.Errorf("scheme %q has %d stops", s.Name, len(s.Colors))
		}
	}
	if _, ok := cfg.Palette(cfg.DefaultScheme); !ok {
		t.Fatalf("default scheme %q missing", cfg.DefaultScheme)
	}
}

func TestNextSchemeWraps(t *testing.T) {
	cfg := Default()
	last := cfg.Schemes[len(cfg.Schemes)-1].Name
	if got := cfg.NextScheme(last); got != cfg.Schemes[0].Name {
		t.Fatalf("expected wrap to %q, got %q", cfg.Schemes[0].Name, got)
	}
	if got := cfg.NextScheme("neon"); got != "rainbow" {
		t.Fatalf("expected rainbow after neon, got %q", got)
	}
	if got := cfg.NextScheme("nope"); got != cfg.Schemes[0].Name {
		t.Fatalf("expected unknown scheme to reset to first, got %q", got)
	}
}

func TestQualityLookup(t *testing.T) {
	cfg := Default()
	q, ok := cfg.Quality("ultra")
	if !ok {
		t.Fatal("expected ultra preset")
	}
	if q.ParticleCount != 100000 || q.FFTSize != 4096 || !q.MotionBlur {
		t.Fatalf("unexpected ultra preset: %+v", q)
	}
	if _, ok := cfg.Quality("extreme"); ok {
		t.Fatal("expected unknown preset to be rejected")
	}
}

func TestClampParticles(t *testing.T) {
	cfg := Default()
	tests := []struct {
		in, want int
	}{
		{0, cfg.Particles.Min},
		{-5, cfg.Particles.Min},
		{25000, 25000},
		{1 << 20, cfg.Particles.Max},
	}
	for _, tt := range tests {
		if got := cfg.ClampParticles(tt.in); got != tt.want {
			t.Errorf("ClampParticles(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestShareRoundTrip(t *testing.T) {
	in := Record{Mode: "galaxy", ColorScheme: "fire", ParticleCount: 20000}
	out, err := DecodeShare(EncodeShare(in))
	if err != nil {
		t.Fatalf("DecodeShare returned error: %v", err)
	}
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestDecodeShareRejectsGarbage(t *testing.T) {
	if _, err := DecodeShare("%%%"); err == nil {
		t.Fatal("expected base64 error")
	}
	// valid base64, invalid JSON
	if _, err := DecodeShare("bm90IGpzb24="); err == nil {
		t.Fatal("expected JSON error")
	}
}
