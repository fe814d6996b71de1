package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"

	"github.com/iburimskiy/particle-wave/internal/config"
)

type fakeOutput struct {
	mu      sync.Mutex
	rates   []beep.SampleRate
	played  []beep.Streamer
	cleared int
	// gate, when set, runs inside init to stand in for a slow device
	gate func()
}

func (f *fakeOutput) init(rate beep.SampleRate) error {
	if f.gate != nil {
		f.gate()
	}
	f.rates = append(f.rates, rate)
	return nil
}

func (f *fakeOutput) play(s beep.Streamer) { f.played = append(f.played, s) }
func (f *fakeOutput) clear()               { f.cleared++ }
func (f *fakeOutput) lock()                { f.mu.Lock() }
func (f *fakeOutput) unlock()              { f.mu.Unlock() }

// pull streams n samples from the last played streamer the way the speaker
// would, reporting whether it is still producing.
func (f *fakeOutput) pull(n int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.played[len(f.played)-1]
	buf := make([][2]float64, 512)
	for n > 0 {
		k := min(n, len(buf))
		got, ok := s.Stream(buf[:k])
		if !ok {
			return false
		}
		n -= got
	}
	return true
}

type fakeMic struct{ closed bool }

func (m *fakeMic) Close() error {
	m.closed = true
	return nil
}

// toneWAV builds a 16-bit mono PCM file holding a sine at freq Hz.
func toneWAV(t *testing.T, rate, samples int, freq float64) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	dataLen := uint32(samples * 2)
	buf.WriteString("RIFF")
	w(36 + dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	w(uint32(16))
	w(uint16(1)) // PCM
	w(uint16(1)) // mono
	w(uint32(rate))
	w(uint32(rate * 2))
	w(uint16(2))
	w(uint16(16))
	buf.WriteString("data")
	w(dataLen)
	for i := 0; i < samples; i++ {
		v := 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
		w(int16(v * math.MaxInt16))
	}
	return buf.Bytes()
}

func testEngine(t *testing.T) (*Engine, *fakeOutput) {
	t.Helper()
	out := &fakeOutput{}
	e := newEngine(config.Default().Audio, out)
	e.openMic = func(config.AudioConfig, *Tap) (micStream, error) {
		return nil, ErrPermissionDenied
	}
	t.Cleanup(func() { _ = e.Close() })
	return e, out
}

func loadTone(t *testing.T, e *Engine) {
	t.Helper()
	data := toneWAV(t, 8000, 8000, 100)
	if err := e.LoadBytes("tone.wav", data); err != nil {
		t.Fatalf("load tone: %v", err)
	}
}

type countingStreamer struct{ next float64 }

func (c *countingStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{c.next, c.next}
		c.next++
	}
	return len(samples), true
}

func (c *countingStreamer) Err() error { return nil }

func TestTapMonoIsChronological(t *testing.T) {
	tap := NewTap(&countingStreamer{}, 8)
	buf := make([][2]float64, 5)
	tap.Stream(buf)
	tap.Stream(buf) // 10 samples through a ring of 8

	got := tap.Mono(nil, 4)
	want := []float64{6, 7, 8, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	if all := tap.Mono(nil, 100); len(all) != 8 || all[0] != 2 || all[7] != 9 {
		t.Fatalf("expected whole ring 2..9, got %v", all)
	}
}

func TestTapWriteMono(t *testing.T) {
	tap := NewTap(nil, 4)
	tap.WriteMono([]float32{0.5, -0.25})
	got := tap.Mono(nil, 2)
	if got[0] != 0.5 || got[1] != -0.25 {
		t.Fatalf("unexpected samples %v", got)
	}
	if n, ok := tap.Stream(make([][2]float64, 4)); n != 0 || ok {
		t.Fatal("expected sourceless tap to produce nothing")
	}
}

func TestLoadRejectsUnsupportedFormat(t *testing.T) {
	e, out := testEngine(t)
	for _, name := range []string{"song.aac", "notes.txt", "noext"} {
		err := e.LoadFile(context.Background(), name)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("%s: expected ErrUnsupportedFormat, got %v", name, err)
		}
	}
	if err := e.LoadBytes("clip.aiff", []byte("FORM")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for bytes, got %v", err)
	}
	if len(out.rates) != 0 {
		t.Fatal("expected output untouched")
	}
}

func TestLoadReportsDecodeFailure(t *testing.T) {
	e, _ := testEngine(t)
	err := e.LoadReader("broken.wav", io.NopCloser(bytes.NewReader([]byte("definitely not riff"))))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if kind, _ := e.Source(); kind != SourceNone {
		t.Fatalf("expected no source after failed load, got %v", kind)
	}
}

func TestPlaybackFeedsAnalyzer(t *testing.T) {
	e, out := testEngine(t)
	loadTone(t, e)

	if len(out.rates) != 1 || out.rates[0] != 8000 {
		t.Fatalf("expected output opened at 8000 Hz, got %v", out.rates)
	}
	if kind, name := e.Source(); kind != SourceFile || name != "tone.wav" {
		t.Fatalf("unexpected source %v %q", kind, name)
	}

	out.pull(4096)
	bands := e.BandEnergies()
	if bands.Bass <= 0 {
		t.Fatal("expected bass energy from a 100 Hz tone")
	}
	if bands.Bass <= bands.Treble {
		t.Fatalf("expected bass %v above treble %v", bands.Bass, bands.Treble)
	}
	if len(bands.Spectrum) != 1024 {
		t.Fatalf("expected 1024 bins, got %d", len(bands.Spectrum))
	}
}

func TestTransportControls(t *testing.T) {
	e, out := testEngine(t)

	if err := e.Play(); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
	if _, err := e.TogglePlayPause(); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource from toggle, got %v", err)
	}

	loadTone(t, e)
	if !e.Playing() {
		t.Fatal("expected playback to start on load")
	}
	playing, err := e.TogglePlayPause()
	if err != nil || playing || e.Playing() {
		t.Fatalf("expected paused, got playing=%v err=%v", playing, err)
	}
	playing, err = e.TogglePlayPause()
	if err != nil || !playing {
		t.Fatalf("expected resumed, got playing=%v err=%v", playing, err)
	}

	if d := e.Duration(); d != time.Second {
		t.Fatalf("expected 1s duration, got %v", d)
	}
	if err := e.Seek(500 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if p := e.Position(); p != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %v", p)
	}
	if err := e.SeekRelative(-5 * time.Second); err != nil {
		t.Fatal(err)
	}
	if p := e.Position(); p != 0 {
		t.Fatalf("expected seek clamped to start, got %v", p)
	}
	if err := e.SeekRelative(5 * time.Second); err != nil {
		t.Fatal(err)
	}
	if p := e.Position(); p >= time.Second {
		t.Fatalf("expected seek clamped inside track, got %v", p)
	}

	// play to the end, then restart
	if err := e.Seek(0); err != nil {
		t.Fatal(err)
	}
	for out.pull(1000) {
	}
	if e.Playing() {
		t.Fatal("expected finished track to stop")
	}
	if err := e.Play(); err != nil {
		t.Fatal(err)
	}
	if len(out.played) != 2 || e.Position() != 0 || !e.Playing() {
		t.Fatalf("expected replay from start, played=%d pos=%v", len(out.played), e.Position())
	}
}

func TestPlayAfterEndKeepsSeek(t *testing.T) {
	e, out := testEngine(t)
	loadTone(t, e)
	for out.pull(1000) {
	}
	if e.Playing() {
		t.Fatal("expected finished track to stop")
	}

	if err := e.Seek(500 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if err := e.Play(); err != nil {
		t.Fatal(err)
	}
	if p := e.Position(); p != 500*time.Millisecond {
		t.Fatalf("expected playback to resume at 500ms, got %v", p)
	}
	if len(out.played) != 2 || !e.Playing() {
		t.Fatalf("expected track restarted, played=%d", len(out.played))
	}
}

// assertResponsive fails unless the calls the frame loop makes return while
// a device is still opening.
func assertResponsive(t *testing.T, e *Engine) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		e.BandEnergies()
		e.Source()
		e.Volume()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("frame loop calls blocked while a device was opening")
	}
}

func TestMicrophoneOpenDoesNotBlockAnalysis(t *testing.T) {
	e, _ := testEngine(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	unblock := sync.OnceFunc(func() { close(release) })
	t.Cleanup(unblock)

	mic := &fakeMic{}
	e.openMic = func(config.AudioConfig, *Tap) (micStream, error) {
		close(entered)
		<-release
		return mic, nil
	}

	errc := make(chan error, 1)
	go func() { errc <- e.StartMicrophone(context.Background()) }()
	<-entered
	assertResponsive(t, e)

	unblock()
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if !e.MicActive() {
		t.Fatal("expected microphone active once opened")
	}
}

func TestOutputInitDoesNotBlockAnalysis(t *testing.T) {
	e, out := testEngine(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	unblock := sync.OnceFunc(func() { close(release) })
	t.Cleanup(unblock)
	out.gate = func() {
		close(entered)
		<-release
	}

	data := toneWAV(t, 8000, 800, 100)
	errc := make(chan error, 1)
	go func() { errc <- e.LoadBytes("tone.wav", data) }()
	<-entered
	assertResponsive(t, e)

	unblock()
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if kind, _ := e.Source(); kind != SourceFile {
		t.Fatalf("expected file source, got %v", kind)
	}
}

func TestVolume(t *testing.T) {
	e, _ := testEngine(t)
	if e.Volume() != 0.8 {
		t.Fatalf("expected default volume 0.8, got %v", e.Volume())
	}
	e.SetVolume(2)
	if e.Volume() != 1 {
		t.Fatalf("expected clamp to 1, got %v", e.Volume())
	}

	e.SetVolume(0)
	loadTone(t, e)
	if !e.track.volume.Silent {
		t.Fatal("expected zero volume to carry to the new track")
	}
	e.SetVolume(0.5)
	if e.track.volume.Silent || e.track.volume.Volume != -1 {
		t.Fatalf("expected log2 gain -1, got %v", e.track.volume.Volume)
	}
}

func TestMicrophoneReplacesFile(t *testing.T) {
	e, out := testEngine(t)
	loadTone(t, e)

	if err := e.StartMicrophone(context.Background()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if kind, _ := e.Source(); kind != SourceFile {
		t.Fatal("expected failed microphone start to keep the file")
	}

	mic := &fakeMic{}
	var micTap *Tap
	e.openMic = func(_ config.AudioConfig, tap *Tap) (micStream, error) {
		micTap = tap
		return mic, nil
	}
	if err := e.StartMicrophone(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !e.MicActive() || e.Playing() || out.cleared == 0 {
		t.Fatal("expected microphone to replace file playback")
	}

	in := make([]float32, 2048)
	for i := range in {
		in[i] = float32(0.8 * math.Sin(2*math.Pi*100*float64(i)/44100))
	}
	micTap.WriteMono(in)
	if bands := e.BandEnergies(); bands.Bass <= 0 {
		t.Fatal("expected microphone samples to reach the analyzer")
	}

	e.StopMicrophone()
	if e.MicActive() || !mic.closed {
		t.Fatal("expected microphone closed")
	}
	if err := e.Pause(); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource after stopping, got %v", err)
	}
}

func TestLoadURL(t *testing.T) {
	wavData := toneWAV(t, 8000, 800, 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stream":
			w.Header().Set("Content-Type", "audio/wav")
			_, _ = w.Write(wavData)
		case "/slow.mp3":
			<-r.Context().Done()
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	e, _ := testEngine(t)
	e.cfg.URLTimeout = 100 * time.Millisecond
	ctx := context.Background()

	if err := e.LoadURL(ctx, srv.URL+"/stream"); err != nil {
		t.Fatalf("expected content-type sniffing to load wav, got %v", err)
	}
	if _, name := e.Source(); name != "stream" {
		t.Fatalf("unexpected source name %q", name)
	}

	tests := []struct {
		url  string
		want error
	}{
		{srv.URL + "/missing.mp3", ErrUnavailable},
		{srv.URL + "/page", ErrUnsupportedFormat},
		{srv.URL + "/slow.mp3", ErrTimeout},
		{"ftp://example.com/a.mp3", ErrUnavailable},
	}
	for _, tt := range tests {
		if err := e.LoadURL(ctx, tt.url); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.url, tt.want, err)
		}
	}
}
