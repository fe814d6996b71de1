package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/iburimskiy/particle-wave/internal/config"
)

type micStream interface {
	Close() error
}

type portAudioMic struct {
	stream *portaudio.Stream
}

// openPortAudio opens the default input device as a mono stream feeding tap.
// Any failure to reach the device is reported as ErrPermissionDenied.
func openPortAudio(cfg config.AudioConfig, tap *Tap) (micStream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(cfg.MicSampleRate), cfg.MicBufferSize, func(in []float32) {
		tap.WriteMono(in)
	})
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	return &portAudioMic{stream: stream}, nil
}

func (m *portAudioMic) Close() error {
	err := m.stream.Stop()
	if cerr := m.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
