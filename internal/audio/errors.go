package audio

import "errors"

var (
	// ErrUnsupportedFormat is returned for files whose extension or content
	// type has no decoder.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrDecode            = errors.New("audio decode failed")
	// ErrPermissionDenied is returned when the input device cannot be opened.
	ErrPermissionDenied = errors.New("microphone access denied")
	ErrTimeout          = errors.New("audio load timed out")
	ErrUnavailable      = errors.New("audio url not available")
	// ErrNoSource is returned by transport controls when nothing is loaded.
	ErrNoSource = errors.New("no audio source")
)
