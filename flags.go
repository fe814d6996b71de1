package main

import "flag"

// Command-line flags. Names and values match the share record and the
// in-app selectors; invalid values fall back to the defaults.
var (
	// modeFlag picks the starting particle mode.
	modeFlag = flag.String("mode", "", "starting mode: wave, sphere, helix, galaxy, vortex or bars")

	// colorsFlag picks the starting colour scheme.
	colorsFlag = flag.String("colors", "", "colour scheme: neon, rainbow, fire, ocean, galaxy or monochrome")

	particlesFlag = flag.Int("particles", 0, "particle count (overrides the quality preset)")

	// qualityFlag selects a preset for particle count, size, FFT size and effects.
	qualityFlag = flag.String("quality", "", "quality preset: low, medium, high or ultra")

	// configFlag applies a share string logged with the L key.
	configFlag = flag.String("config", "", "share string with mode, colours and particle count")

	fileFlag = flag.String("file", "", "audio file to play on start (wav, mp3, flac, ogg)")
	urlFlag  = flag.String("url", "", "audio URL to play on start")
	micFlag  = flag.Bool("mic", false, "analyse the default microphone on start")

	widthFlag      = flag.Int("width", 0, "window width")
	heightFlag     = flag.Int("height", 0, "window height")
	fullscreenFlag = flag.Bool("fullscreen", false, "start in fullscreen")
)
