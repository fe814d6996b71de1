package audio

import (
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// output is the playback device. The speaker package is global, so the
// engine reaches it through this seam.
type output interface {
	// init (re)opens the device at rate. It stops anything playing.
	init(rate beep.SampleRate) error
	play(s beep.Streamer)
	clear()
	lock()
	unlock()
}

// speakerOutput is opened under the engine's device mutex; ready is read
// from other goroutines.
type speakerOutput struct {
	ready atomic.Bool
	rate  beep.SampleRate
}

func (o *speakerOutput) init(rate beep.SampleRate) error {
	if o.ready.Load() && o.rate == rate {
		o.clear()
		return nil
	}
	bufferSize := rate.N(time.Second / 20)
	if o.ready.Load() {
		// re-init when sample rate changes
		speaker.Lock()
		speaker.Clear()
		speaker.Unlock()
	}
	if err := speaker.Init(rate, bufferSize); err != nil {
		return err
	}
	o.rate = rate
	o.ready.Store(true)
	return nil
}

func (o *speakerOutput) play(s beep.Streamer) { speaker.Play(s) }

func (o *speakerOutput) clear() {
	if !o.ready.Load() {
		return
	}
	speaker.Lock()
	speaker.Clear()
	speaker.Unlock()
}

func (o *speakerOutput) lock() {
	if o.ready.Load() {
		speaker.Lock()
	}
}

func (o *speakerOutput) unlock() {
	if o.ready.Load() {
		speaker.Unlock()
	}
}
