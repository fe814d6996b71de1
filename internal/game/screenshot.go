package game

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/particle-wave/internal/config"
)

var errScreenshot = errors.New("screenshot failed")

func screenshotName(t time.Time) string {
	return fmt.Sprintf("%s-%d.png", config.ScreenshotPrefix, t.UnixMilli())
}

// captureScreenshot copies the composed scene, before the HUD is drawn, and
// encodes it in the background.
func (g *Game) captureScreenshot(screen *ebiten.Image) {
	img := image.NewRGBA(screen.Bounds())
	screen.ReadPixels(img.Pix)
	name := screenshotName(g.now())

	g.async("Screenshot", func(context.Context) (string, error) {
		if err := writePNG(name, img); err != nil {
			return "", fmt.Errorf("%w: %w", errScreenshot, err)
		}
		return "Saved " + name, nil
	})
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
