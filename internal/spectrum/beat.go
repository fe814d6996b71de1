package spectrum

import "time"

// BeatDetector flags a beat when bass crosses Threshold, at most once per
// MinGap.
type BeatDetector struct {
	Threshold float64
	MinGap    time.Duration

	last time.Time
	seen bool
}

func NewBeatDetector(threshold float64, minGap time.Duration) *BeatDetector {
	return &BeatDetector{Threshold: threshold, MinGap: minGap}
}

func (d *BeatDetector) Detect(bass float64, now time.Time) bool {
	if bass <= d.Threshold {
		return false
	}
	if d.seen && now.Sub(d.last) < d.MinGap {
		return false
	}
	d.last = now
	d.seen = true
	return true
}

func (d *BeatDetector) Reset() {
	d.seen = false
	d.last = time.Time{}
}
