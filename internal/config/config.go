package config

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	WindowWidth  = 1280
	WindowHeight = 720

	VisualRingSize = 8192

	// Open-file button
	ButtonWidth  = 120
	ButtonHeight = 32
	ButtonX      = 12
	ButtonY      = 40

	ScreenshotPrefix = "particle-wave"
)

// Palette is an ordered list of colour stops, looked up by position in [0,1].
type Palette []colorful.Color

// Scheme is a named palette.
type Scheme struct {
	Name   string
	Colors Palette
}

type ParticleConfig struct {
	Default int
	Min     int
	Max     int
	Step    int
	Size    float64
	Opacity float64
}

type AudioConfig struct {
	FFTSize     int
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64
	Volume      float64

	// Fractions of the frequency-bin array, [start, end).
	BassRange   [2]float64
	MidRange    [2]float64
	TrebleRange [2]float64

	BeatThreshold  float64
	BeatMinGap     time.Duration
	ShakeIntensity float64

	URLTimeout    time.Duration
	MicSampleRate int
	MicBufferSize int
}

type CameraConfig struct {
	FOV             float64 // vertical, degrees
	Near            float64
	Far             float64
	DefaultDistance float64
	AutoRotateSpeed float64
	OrbitSpeed      float64
	ZoomSpeed       float64
	MinDistance     float64
	MaxDistance     float64
	ZoomEase        float64
	ShakeDecay      float64
	ShakeEpsilon    float64
}

type WaveParams struct {
	Spacing   float64
	Speed     float64
	Amplitude float64
}

type SphereParams struct {
	Radius        float64
	PulseSpeed    float64
	PulseAmount   float64
	RotationSpeed float64
}

type HelixParams struct {
	Radius        float64
	Height        float64
	Coils         float64
	RotationSpeed float64
	Thickness     float64
}

type GalaxyParams struct {
	Arms          int
	ArmSpread     float64
	Radius        float64
	RotationSpeed float64
}

type VortexParams struct {
	Rings         int
	RingRadius    float64
	Spacing       float64
	RotationSpeed float64
	TunnelSpeed   float64
}

type BarsParams struct {
	BarCount  int
	Radius    float64
	MaxHeight float64
	Smoothing float64
}

type ModeParams struct {
	Wave   WaveParams
	Sphere SphereParams
	Helix  HelixParams
	Galaxy GalaxyParams
	Vortex VortexParams
	Bars   BarsParams
}

type EffectsConfig struct {
	Bloom          bool
	BloomStrength  float64
	Vignette       bool
	VignetteAmount float64
	MotionBlur     bool
	MotionBlurMix  float64
	// Fog distances in world units, measured from the camera.
	FogNear float64
	FogFar  float64
}

// QualityPreset bundles the settings changed together by the quality selector.
type QualityPreset struct {
	Name          string
	ParticleCount int
	ParticleSize  float64
	FFTSize       int
	Bloom         bool
	MotionBlur    bool
}

type Track struct {
	Name string
	URL  string
}

// Config is the full, read-only configuration handed to every component at
// construction. Use Default and copy-modify; nothing mutates it after start.
type Config struct {
	Particles ParticleConfig
	Audio     AudioConfig
	Camera    CameraConfig
	Modes     ModeParams
	Effects   EffectsConfig
	Schemes   []Scheme
	Qualities []QualityPreset
	Tracks    []Track

	DefaultMode    string
	DefaultScheme  string
	DefaultQuality string
}

func Default() Config {
	return Config{
		Particles: ParticleConfig{
			Default: 50000,
			Min:     1000,
			Max:     100000,
			Step:    5000,
			Size:    2.0,
			Opacity: 0.8,
		},
		Audio: AudioConfig{
			FFTSize:        2048,
			Smoothing:      0.8,
			MinDecibels:    -100,
			MaxDecibels:    -30,
			Volume:         0.8,
			BassRange:      [2]float64{0, 0.1},
			MidRange:       [2]float64{0.1, 0.5},
			TrebleRange:    [2]float64{0.5, 1.0},
			BeatThreshold:  200,
			BeatMinGap:     300 * time.Millisecond,
			ShakeIntensity: 5,
			URLTimeout:     10 * time.Second,
			MicSampleRate:  44100,
			MicBufferSize:  1024,
		},
		Camera: CameraConfig{
			FOV:             75,
			Near:            0.1,
			Far:             2000,
			DefaultDistance: 150,
			AutoRotateSpeed: 0.5,
			OrbitSpeed:      1.0,
			ZoomSpeed:       1.0,
			MinDistance:     50,
			MaxDistance:     500,
			ZoomEase:        0.1,
			ShakeDecay:      0.9,
			ShakeEpsilon:    0.01,
		},
		Modes: ModeParams{
			Wave:   WaveParams{Spacing: 2, Speed: 0.05, Amplitude: 20},
			Sphere: SphereParams{Radius: 50, PulseSpeed: 0.1, PulseAmount: 20, RotationSpeed: 0.01},
			Helix:  HelixParams{Radius: 30, Height: 100, Coils: 5, RotationSpeed: 0.02, Thickness: 10},
			Galaxy: GalaxyParams{Arms: 3, ArmSpread: 0.5, Radius: 80, RotationSpeed: 0.01},
			Vortex: VortexParams{Rings: 30, RingRadius: 40, Spacing: 5, RotationSpeed: 0.03, TunnelSpeed: 0.5},
			Bars:   BarsParams{BarCount: 64, Radius: 60, MaxHeight: 80, Smoothing: 0.3},
		},
		Effects: EffectsConfig{
			Bloom:          true,
			BloomStrength:  1.5,
			Vignette:       false,
			VignetteAmount: 1.0,
			MotionBlur:     false,
			MotionBlurMix:  0.5,
			FogNear:        100,
			FogFar:         500,
		},
		Schemes: []Scheme{
			{Name: "neon", Colors: Palette{
				{R: 1.0, G: 0.0, B: 0.43},
				{R: 0.51, G: 0.22, B: 0.93},
				{R: 0.23, G: 0.53, B: 1.0},
				{R: 0.0, G: 0.96, B: 1.0},
			}},
			{Name: "rainbow", Colors: Palette{
				{R: 1.0, G: 0.0, B: 0.0},
				{R: 1.0, G: 0.5, B: 0.0},
				{R: 1.0, G: 1.0, B: 0.0},
				{R: 0.0, G: 1.0, B: 0.0},
				{R: 0.0, G: 0.0, B: 1.0},
				{R: 0.5, G: 0.0, B: 1.0},
			}},
			{Name: "fire", Colors: Palette{
				{R: 1.0, G: 0.0, B: 0.0},
				{R: 1.0, G: 0.27, B: 0.0},
				{R: 1.0, G: 0.55, B: 0.0},
				{R: 1.0, G: 0.84, B: 0.0},
			}},
			{Name: "ocean", Colors: Palette{
				{R: 0.0, G: 0.07, B: 0.1},
				{R: 0.0, G: 0.37, B: 0.45},
				{R: 0.04, G: 0.58, B: 0.59},
				{R: 0.58, G: 0.82, B: 0.74},
			}},
			{Name: "galaxy", Colors: Palette{
				{R: 0.2, G: 0.0, B: 0.4},
				{R: 0.4, G: 0.0, B: 0.6},
				{R: 0.6, G: 0.2, B: 0.8},
				{R: 0.8, G: 0.6, B: 1.0},
			}},
			{Name: "monochrome", Colors: Palette{
				{R: 0.2, G: 0.2, B: 0.2},
				{R: 0.5, G: 0.5, B: 0.5},
				{R: 0.8, G: 0.8, B: 0.8},
				{R: 1.0, G: 1.0, B: 1.0},
			}},
		},
		Qualities: []QualityPreset{
			{Name: "low", ParticleCount: 10000, ParticleSize: 3.0, FFTSize: 1024},
			{Name: "medium", ParticleCount: 30000, ParticleSize: 2.5, FFTSize: 2048, Bloom: true},
			{Name: "high", ParticleCount: 50000, ParticleSize: 2.0, FFTSize: 2048, Bloom: true},
			{Name: "ultra", ParticleCount: 100000, ParticleSize: 1.5, FFTSize: 4096, Bloom: true, MotionBlur: true},
		},
		Tracks: []Track{
			{Name: "Demo Track 1", URL: "https://example.com/audio/demo1.mp3"},
			{Name: "Demo Track 2", URL: "https://example.com/audio/demo2.mp3"},
		},
		DefaultMode:    "wave",
		DefaultScheme:  "neon",
		DefaultQuality: "high",
	}
}

// Palette returns the colours of the named scheme.
func (c Config) Palette(name string) (Palette, bool) {
	for _, s := range c.Schemes {
		if s.Name == name {
			return s.Colors, true
		}
	}
	return nil, false
}

// NextScheme returns the scheme after name, wrapping around. Unknown names
// yield the first scheme.
func (c Config) NextScheme(name string) string {
	for i, s := range c.Schemes {
		if s.Name == name {
			return c.Schemes[(i+1)%len(c.Schemes)].Name
		}
	}
	return c.Schemes[0].Name
}

func (c Config) Quality(name string) (QualityPreset, bool) {
	for _, q := range c.Qualities {
		if q.Name == name {
			return q, true
		}
	}
	return QualityPreset{}, false
}

// ClampParticles bounds n to the configured slider range.
func (c Config) ClampParticles(n int) int {
	if n < c.Particles.Min {
		return c.Particles.Min
	}
	if n > c.Particles.Max {
		return c.Particles.Max
	}
	return n
}
