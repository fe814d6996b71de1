package main

import (
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/particle-wave/internal/audio"
	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/game"
	"github.com/iburimskiy/particle-wave/internal/modes"
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *modeFlag != "" {
		if _, ok := modes.ParseKind(*modeFlag); ok {
			cfg.DefaultMode = *modeFlag
		} else {
			log.Printf("unknown mode %q, using %s", *modeFlag, cfg.DefaultMode)
		}
	}
	if *colorsFlag != "" {
		if _, ok := cfg.Palette(*colorsFlag); ok {
			cfg.DefaultScheme = *colorsFlag
		} else {
			log.Printf("unknown colour scheme %q, using %s", *colorsFlag, cfg.DefaultScheme)
		}
	}
	if *qualityFlag != "" {
		if _, ok := cfg.Quality(*qualityFlag); ok {
			cfg.DefaultQuality = *qualityFlag
		} else {
			log.Printf("unknown quality %q, using %s", *qualityFlag, cfg.DefaultQuality)
		}
	}

	engine := audio.NewEngine(cfg.Audio)
	g := game.New(cfg, engine)
	defer func() {
		if err := g.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	viz := g.Visualizer()
	if *particlesFlag > 0 {
		viz.SetParticleCount(*particlesFlag)
	}
	if *configFlag != "" {
		rec, err := config.DecodeShare(*configFlag)
		if err != nil {
			log.Printf("ignoring -config: %v", err)
		} else {
			viz.ApplyConfig(rec)
		}
	}

	switch {
	case *micFlag:
		g.StartMicrophone()
	case *fileFlag != "":
		g.LoadFile(*fileFlag)
	case *urlFlag != "":
		g.LoadURL(*urlFlag)
	}

	w, h := config.WindowWidth, config.WindowHeight
	if *widthFlag > 0 {
		w = *widthFlag
	}
	if *heightFlag > 0 {
		h = *heightFlag
	}
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Particle Wave - O: open file, M: microphone, H: help, Esc/Q: quit")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(*fullscreenFlag)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
