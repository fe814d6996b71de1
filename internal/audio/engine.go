package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"mime"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/spectrum"
)

const maxDownloadBytes = 256 << 20

// SourceKind says where the analysed audio comes from.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceFile
	SourceMicrophone
)

type track struct {
	name     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	done     atomic.Bool
}

// Engine owns the current audio source, plays it and analyses what was
// played. It is safe for concurrent use: loads normally run off the frame
// loop while BandEnergies is called from it.
type Engine struct {
	cfg config.AudioConfig
	out output

	// devMu serialises device opens. The frame loop only takes mu, so a slow
	// device never stalls it.
	devMu sync.Mutex

	mu       sync.Mutex
	analyzer *spectrum.Analyzer
	tap      *Tap
	mono     []float64
	track    *track
	mic      micStream
	volume   float64

	client  *http.Client
	openMic func(cfg config.AudioConfig, tap *Tap) (micStream, error)
}

func NewEngine(cfg config.AudioConfig) *Engine {
	return newEngine(cfg, &speakerOutput{})
}

func newEngine(cfg config.AudioConfig, out output) *Engine {
	return &Engine{
		cfg:      cfg,
		out:      out,
		analyzer: spectrum.NewAnalyzer(cfg),
		volume:   cfg.Volume,
		client:   http.DefaultClient,
		openMic:  openPortAudio,
	}
}

// BandEnergies analyses the most recent samples of the active source. With
// nothing playing the spectrum decays toward silence.
func (e *Engine) BandEnergies() spectrum.BandEnergies {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tap == nil || !e.activeLocked() {
		return e.analyzer.Process(nil)
	}
	e.mono = e.tap.Mono(e.mono, e.analyzer.FFTSize())
	return e.analyzer.Process(e.mono)
}

func (e *Engine) activeLocked() bool {
	if e.mic != nil {
		return true
	}
	if e.track == nil || e.track.done.Load() {
		return false
	}
	e.out.lock()
	paused := e.track.ctrl.Paused
	e.out.unlock()
	return !paused
}

func (e *Engine) SetSensitivity(bass, mid, treble float64) {
	e.mu.Lock()
	e.analyzer.SetSensitivity(bass, mid, treble)
	e.mu.Unlock()
}

func (e *Engine) SetFFTSize(n int) {
	e.mu.Lock()
	e.analyzer.SetFFTSize(n)
	e.mu.Unlock()
}

func (e *Engine) FFTSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.analyzer.FFTSize()
}

// LoadFile decodes path by extension and starts playing it, replacing any
// current source.
func (e *Engine) LoadFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := decoderFor(filepath.Ext(path)); !ok {
		return fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return e.LoadReader(filepath.Base(path), f)
}

// LoadURL downloads an audio file and plays it. The fetch is bounded by the
// configured timeout.
func (e *Engine) LoadURL(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%q: %w", rawURL, ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.URLTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%q: %w", rawURL, ErrUnavailable)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fetchError(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: status %d: %w", rawURL, resp.StatusCode, ErrUnavailable)
	}

	ext := path.Ext(u.Path)
	if _, ok := decoderFor(ext); !ok {
		ext = extFromContentType(resp.Header.Get("Content-Type"))
	}
	if _, ok := decoderFor(ext); !ok {
		return fmt.Errorf("%s: %w", rawURL, ErrUnsupportedFormat)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return fetchError(rawURL, err)
	}

	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = u.Host
	}
	return e.load(name, ext, memFile{bytes.NewReader(data)})
}

func fetchError(rawURL string, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%s: %w", rawURL, ErrTimeout)
	}
	return fmt.Errorf("%s: %w: %w", rawURL, ErrUnavailable, err)
}

func extFromContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	switch mt {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return ".wav"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	case "audio/ogg", "audio/vorbis", "application/ogg":
		return ".ogg"
	}
	return ""
}

// LoadReader decodes rc, choosing the decoder from name's extension, and
// plays it. rc is closed when the source is replaced or on error.
func (e *Engine) LoadReader(name string, rc io.ReadCloser) error {
	return e.load(name, filepath.Ext(name), rc)
}

// LoadBytes plays an in-memory file, for example one dropped on the window.
func (e *Engine) LoadBytes(name string, data []byte) error {
	return e.load(name, filepath.Ext(name), memFile{bytes.NewReader(data)})
}

type decodeFunc func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

func decoderFor(ext string) (decodeFunc, bool) {
	switch strings.ToLower(ext) {
	case ".wav":
		return func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(rc) }, true
	case ".mp3":
		return mp3.Decode, true
	case ".flac":
		return func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(rc) }, true
	case ".ogg", ".oga":
		return vorbis.Decode, true
	}
	return nil, false
}

func (e *Engine) load(name, ext string, rc io.ReadCloser) error {
	decode, ok := decoderFor(ext)
	if !ok {
		_ = rc.Close()
		return fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	streamer, format, err := decode(rc)
	if err != nil {
		_ = rc.Close()
		return fmt.Errorf("%s: %w: %w", name, ErrDecode, err)
	}

	e.devMu.Lock()
	defer e.devMu.Unlock()

	if err := e.out.init(format.SampleRate); err != nil {
		_ = streamer.Close()
		_ = rc.Close()
		return fmt.Errorf("open output: %w", err)
	}

	// streamer -> tap -> ctrl -> volume
	tap := NewTap(streamer, max(config.VisualRingSize, e.FFTSize()))
	t := &track{
		name:     name,
		streamer: &readCloserStreamer{StreamSeekCloser: streamer, rc: rc},
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: tap},
	}
	t.volume = &effects.Volume{Streamer: t.ctrl, Base: 2}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
	applyVolume(t.volume, e.volume)
	e.track = t
	e.tap = tap
	e.analyzer.Reset()
	e.playLocked(t)

	log.Printf("audio: playing %s (%d Hz, %s)", name, format.SampleRate, formatLen(format, streamer.Len()))
	return nil
}

func (e *Engine) playLocked(t *track) {
	t.done.Store(false)
	e.out.play(beep.Seq(t.volume, beep.Callback(func() {
		// runs on the output goroutine with the output lock held
		t.done.Store(true)
	})))
}

// memFile keeps a downloaded body seekable for the decoders.
type memFile struct{ *bytes.Reader }

func (memFile) Close() error { return nil }

// readCloserStreamer closes the underlying reader too; not every decoder
// does.
type readCloserStreamer struct {
	beep.StreamSeekCloser
	rc io.Closer
}

func (s *readCloserStreamer) Close() error {
	err := s.StreamSeekCloser.Close()
	_ = s.rc.Close()
	return err
}

// stopLocked drops the current file or microphone source.
func (e *Engine) stopLocked() {
	if e.track != nil {
		e.out.clear()
		_ = e.track.streamer.Close()
		e.track = nil
	}
	if e.mic != nil {
		if err := e.mic.Close(); err != nil {
			log.Printf("audio: closing microphone: %v", err)
		}
		e.mic = nil
	}
	e.tap = nil
}

// StartMicrophone switches analysis to the default input device. Playback
// of any file stops.
func (e *Engine) StartMicrophone(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.devMu.Lock()
	defer e.devMu.Unlock()

	tap := NewTap(nil, max(config.VisualRingSize, e.FFTSize()))
	mic, err := e.openMic(e.cfg, tap)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.mic = mic
	e.tap = tap
	e.analyzer.Reset()
	log.Printf("audio: microphone input at %d Hz", e.cfg.MicSampleRate)
	return nil
}

func (e *Engine) StopMicrophone() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mic != nil {
		e.stopLocked()
	}
}

func (e *Engine) MicActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mic != nil
}

func (e *Engine) Source() (SourceKind, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.mic != nil:
		return SourceMicrophone, "Microphone"
	case e.track != nil:
		return SourceFile, e.track.name
	}
	return SourceNone, ""
}

// Play resumes playback. A track that reached its end starts over unless
// it was seeked since.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.track
	if t == nil {
		return ErrNoSource
	}
	if t.done.Load() {
		// keep a position set by Seek after the end
		var err error
		e.out.lock()
		if t.streamer.Position() >= t.streamer.Len() {
			err = t.streamer.Seek(0)
		}
		t.ctrl.Paused = false
		e.out.unlock()
		if err != nil {
			return fmt.Errorf("rewind %s: %w", t.name, err)
		}
		e.playLocked(t)
		return nil
	}
	e.out.lock()
	t.ctrl.Paused = false
	e.out.unlock()
	return nil
}

func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return ErrNoSource
	}
	e.out.lock()
	e.track.ctrl.Paused = true
	e.out.unlock()
	return nil
}

func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mic == nil && e.activeLocked()
}

// TogglePlayPause reports whether the track is playing afterwards.
func (e *Engine) TogglePlayPause() (bool, error) {
	if e.Playing() {
		return false, e.Pause()
	}
	if err := e.Play(); err != nil {
		return false, err
	}
	return true, nil
}

// Seek moves to d from the start, clamped to the track.
func (e *Engine) Seek(d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.track
	if t == nil {
		return ErrNoSource
	}

	pos := t.format.SampleRate.N(d)
	maxPos := t.streamer.Len()
	if pos >= maxPos {
		pos = maxPos - 1
	}
	if pos < 0 {
		pos = 0
	}

	e.out.lock()
	err := t.streamer.Seek(pos)
	e.out.unlock()
	if err != nil {
		return fmt.Errorf("seek %s: %w", t.name, err)
	}
	return nil
}

func (e *Engine) SeekRelative(delta time.Duration) error {
	return e.Seek(e.Position() + delta)
}

func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.track
	if t == nil {
		return 0
	}
	e.out.lock()
	pos := t.streamer.Position()
	e.out.unlock()
	return t.format.SampleRate.D(pos)
}

func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return 0
	}
	return e.track.format.SampleRate.D(e.track.streamer.Len())
}

// SetVolume sets the linear gain in [0,1]; it persists across tracks.
func (e *Engine) SetVolume(v float64) {
	v = math.Max(0, math.Min(1, v))
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = v
	if e.track != nil {
		e.out.lock()
		applyVolume(e.track.volume, v)
		e.out.unlock()
	}
}

func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func applyVolume(vol *effects.Volume, v float64) {
	vol.Silent = v <= 0
	if v > 0 {
		vol.Volume = math.Log2(v)
	}
}

func (e *Engine) Close() error {
	e.devMu.Lock()
	defer e.devMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	return nil
}

func formatLen(f beep.Format, n int) string {
	return f.SampleRate.D(n).Round(time.Second).String()
}
