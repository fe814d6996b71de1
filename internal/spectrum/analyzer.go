package spectrum

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/iburimskiy/particle-wave/internal/config"
)

// BandEnergies is one frame of analysis: averaged bass, mid and treble
// levels on the byte scale [0,255] (times sensitivity) and the full
// byte spectrum they were taken from.
type BandEnergies struct {
	Bass   float64
	Mid    float64
	Treble float64
	// Spectrum is owned by the Analyzer and overwritten on the next frame.
	Spectrum []uint8
}

// Intensity is the mean of the three bands normalised to [0,1].
func (b BandEnergies) Intensity() float64 {
	return (b.Bass + b.Mid + b.Treble) / (255 * 3)
}

// Analyzer turns a window of mono samples into a byte frequency spectrum the
// way a browser AnalyserNode does: Blackman window, FFT, magnitude/N,
// exponential smoothing over time, then decibels mapped onto 0..255.
type Analyzer struct {
	cfg         config.AudioConfig
	sensitivity [3]float64

	fftSize  int
	fft      *fourier.FFT
	win      []float64
	frame    []float64
	coeffs   []complex128
	smoothed []float64
	bytes    []uint8
}

func NewAnalyzer(cfg config.AudioConfig) *Analyzer {
	a := &Analyzer{
		cfg:         cfg,
		sensitivity: [3]float64{1, 1, 1},
	}
	a.SetFFTSize(cfg.FFTSize)
	return a
}

// SetFFTSize reallocates the analysis buffers. Sizes that are not a power of
// two of at least 32 are ignored.
func (a *Analyzer) SetFFTSize(n int) {
	if n < 32 || n&(n-1) != 0 || n == a.fftSize {
		return
	}
	a.fftSize = n
	a.fft = fourier.NewFFT(n)
	a.win = make([]float64, n)
	for i := range a.win {
		a.win[i] = 1
	}
	window.Blackman(a.win)
	a.frame = make([]float64, n)
	a.coeffs = make([]complex128, n/2+1)
	a.smoothed = make([]float64, n/2)
	a.bytes = make([]uint8, n/2)
}

func (a *Analyzer) FFTSize() int { return a.fftSize }

// Bins is the number of frequency bins, half the FFT size.
func (a *Analyzer) Bins() int { return a.fftSize / 2 }

func (a *Analyzer) SetSensitivity(bass, mid, treble float64) {
	a.sensitivity = [3]float64{bass, mid, treble}
}

// Reset drops the smoothing history, used when the audio source changes.
func (a *Analyzer) Reset() {
	clear(a.smoothed)
	clear(a.bytes)
}

// Process analyses the most recent FFTSize samples of mono. Shorter input is
// zero-padded at the front so the newest sample is always last; nil input
// counts as silence and lets the smoothed spectrum decay.
func (a *Analyzer) Process(mono []float64) BandEnergies {
	n := a.fftSize
	if len(mono) > n {
		mono = mono[len(mono)-n:]
	}
	pad := n - len(mono)
	for i := 0; i < pad; i++ {
		a.frame[i] = 0
	}
	for i, s := range mono {
		a.frame[pad+i] = s * a.win[pad+i]
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)

	tau := a.cfg.Smoothing
	dbRange := a.cfg.MaxDecibels - a.cfg.MinDecibels
	for k := range a.smoothed {
		mag := cmplxAbs(a.coeffs[k]) / float64(n)
		a.smoothed[k] = tau*a.smoothed[k] + (1-tau)*mag

		v := 0.0
		if a.smoothed[k] > 0 {
			db := 20 * math.Log10(a.smoothed[k])
			v = 255 / dbRange * (db - a.cfg.MinDecibels)
		}
		switch {
		case v <= 0 || math.IsNaN(v):
			a.bytes[k] = 0
		case v >= 255:
			a.bytes[k] = 255
		default:
			a.bytes[k] = uint8(v)
		}
	}

	return a.bands()
}

func (a *Analyzer) bands() BandEnergies {
	bins := float64(len(a.bytes))
	bassEnd := int(math.Floor(bins * a.cfg.BassRange[1]))
	midEnd := int(math.Floor(bins * a.cfg.MidRange[1]))
	trebleEnd := int(math.Floor(bins * a.cfg.TrebleRange[1]))

	return BandEnergies{
		Bass:     AverageSlice(a.bytes, 0, bassEnd) * a.sensitivity[0],
		Mid:      AverageSlice(a.bytes, bassEnd, midEnd) * a.sensitivity[1],
		Treble:   AverageSlice(a.bytes, midEnd, trebleEnd) * a.sensitivity[2],
		Spectrum: a.bytes,
	}
}

// AverageSlice is the mean of data[start:end], clipped to the slice bounds.
// Empty ranges average to 0.
func AverageSlice(data []uint8, start, end int) float64 {
	start = max(start, 0)
	end = min(end, len(data))
	if end <= start {
		return 0
	}
	sum := 0
	for _, v := range data[start:end] {
		sum += int(v)
	}
	return float64(sum) / float64(end-start)
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
