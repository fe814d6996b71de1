package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/particle-wave/internal/config"
)

const bloomDownscale = 4

// postEffects composes the particle scene onto the screen with optional
// motion trails, bloom and vignette.
type postEffects struct {
	cfg config.EffectsConfig

	scene    *ebiten.Image
	half     *ebiten.Image
	quarter  *ebiten.Image
	vignette *ebiten.Image
}

func newPostEffects(cfg config.EffectsConfig) *postEffects {
	return &postEffects{cfg: cfg}
}

// begin returns the offscreen image for this frame's particles. With motion
// blur the previous frame fades instead of being cleared.
func (p *postEffects) begin(screen *ebiten.Image) *ebiten.Image {
	b := screen.Bounds()
	p.scene = resized(p.scene, b.Dx(), b.Dy())
	if !p.cfg.MotionBlur {
		p.scene.Fill(background)
		return p.scene
	}
	fade := uint8(255 * clamp01(1-p.cfg.MotionBlurMix))
	vector.DrawFilledRect(p.scene, 0, 0, float32(b.Dx()), float32(b.Dy()), color.RGBA{A: fade}, false)
	return p.scene
}

func (p *postEffects) finish(screen *ebiten.Image) {
	screen.DrawImage(p.scene, nil)
	if p.cfg.Bloom {
		p.drawBloom(screen)
	}
	if p.cfg.Vignette {
		p.drawVignette(screen)
	}
}

// drawBloom blurs the scene by repeated linear downscaling and adds it back.
func (p *postEffects) drawBloom(screen *ebiten.Image) {
	b := p.scene.Bounds()
	hw, hh := max(b.Dx()/2, 1), max(b.Dy()/2, 1)
	qw, qh := max(b.Dx()/bloomDownscale, 1), max(b.Dy()/bloomDownscale, 1)
	p.half = resized(p.half, hw, hh)
	p.quarter = resized(p.quarter, qw, qh)

	p.half.Clear()
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(float64(hw)/float64(b.Dx()), float64(hh)/float64(b.Dy()))
	p.half.DrawImage(p.scene, op)

	p.quarter.Clear()
	op = &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(float64(qw)/float64(hw), float64(qh)/float64(hh))
	p.quarter.DrawImage(p.half, op)

	k := float32(p.cfg.BloomStrength * 0.5)
	op = &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear, Blend: ebiten.BlendLighter}
	op.GeoM.Scale(float64(b.Dx())/float64(qw), float64(b.Dy())/float64(qh))
	op.ColorScale.Scale(k, k, k, k)
	screen.DrawImage(p.quarter, op)
}

func (p *postEffects) drawVignette(screen *ebiten.Image) {
	b := screen.Bounds()
	if p.vignette == nil || p.vignette.Bounds().Size() != b.Size() {
		if p.vignette != nil {
			p.vignette.Deallocate()
		}
		p.vignette = newVignette(b.Dx(), b.Dy(), p.cfg.VignetteAmount)
	}
	screen.DrawImage(p.vignette, nil)
}

// newVignette darkens toward the corners.
func newVignette(w, h int, amount float64) *ebiten.Image {
	pix := make([]byte, w*h*4)
	cx, cy := float64(w)/2, float64(h)/2
	maxD := math.Hypot(cx, cy)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxD
			a := clamp01((d - 0.4) / 0.6 * amount)
			pix[(y*w+x)*4+3] = byte(a * a * 255)
		}
	}
	img := ebiten.NewImage(w, h)
	img.WritePixels(pix)
	return img
}

func resized(img *ebiten.Image, w, h int) *ebiten.Image {
	if img != nil && img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		return img
	}
	if img != nil {
		img.Deallocate()
	}
	return ebiten.NewImage(w, h)
}
