package audio

import (
	"sync"

	"github.com/faiface/beep"
)

// Tap wraps a beep.Streamer and records the last N samples into a ring
// buffer so the analyzer can read recently played audio. A Tap without a
// source is fed directly through WriteMono.
type Tap struct {
	Source    beep.Streamer
	buffer    [][2]float64
	nextIndex int
	mu        sync.RWMutex
}

func NewTap(src beep.Streamer, ringSize int) *Tap {
	return &Tap{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	if t.Source == nil {
		return 0, false
	}
	n, ok := t.Source.Stream(samples)
	if n > 0 {
		t.mu.Lock()
		for i := 0; i < n; i++ {
			t.push(samples[i])
		}
		t.mu.Unlock()
	}
	return n, ok
}

func (t *Tap) Err() error {
	if t.Source == nil {
		return nil
	}
	return t.Source.Err()
}

// WriteMono records input samples on both channels.
func (t *Tap) WriteMono(in []float32) {
	t.mu.Lock()
	for _, v := range in {
		t.push([2]float64{float64(v), float64(v)})
	}
	t.mu.Unlock()
}

func (t *Tap) push(s [2]float64) {
	t.buffer[t.nextIndex] = s
	t.nextIndex++
	if t.nextIndex >= len(t.buffer) {
		t.nextIndex = 0
	}
}

// Mono fills dst with up to the last n samples, channels averaged, oldest
// first. dst is reused when it has the capacity.
func (t *Tap) Mono(dst []float64, n int) []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > len(t.buffer) {
		n = len(t.buffer)
	}
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]

	// nextIndex is the oldest of the last len(buffer) samples
	idx := t.nextIndex - n
	if idx < 0 {
		idx += len(t.buffer)
	}
	for i := 0; i < n; i++ {
		s := t.buffer[idx]
		dst[i] = (s[0] + s[1]) * 0.5
		idx++
		if idx >= len(t.buffer) {
			idx = 0
		}
	}
	return dst
}
