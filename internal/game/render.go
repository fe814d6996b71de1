package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/particle-wave/internal/camera"
	"github.com/iburimskiy/particle-wave/internal/config"
	"github.com/iburimskiy/particle-wave/internal/particles"
)

const (
	// quads per DrawTriangles call; indices are uint16
	batchQuads = 16000

	dotSize      = 32
	minPointSize = 1.0
	maxPointSize = 48.0
)

// particleRenderer draws the particle buffer as camera-facing soft dots with
// additive blending.
type particleRenderer struct {
	proj    *camera.Projector
	opacity float64
	fogNear float64
	fogFar  float64

	dot      *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
	drawn    int
}

func newParticleRenderer(cfg config.Config) *particleRenderer {
	r := &particleRenderer{
		proj:    camera.NewProjector(cfg.Camera),
		opacity: cfg.Particles.Opacity,
		fogNear: cfg.Effects.FogNear,
		fogFar:  cfg.Effects.FogFar,
		dot:     newDotImage(dotSize),
	}

	r.indices = make([]uint16, 0, batchQuads*6)
	for q := 0; q < batchQuads; q++ {
		v := uint16(q * 4)
		r.indices = append(r.indices, v, v+1, v+2, v+1, v+3, v+2)
	}
	return r
}

// newDotImage renders a round point with a soft edge.
func newDotImage(size int) *ebiten.Image {
	pix := make([]byte, size*size*4)
	c := float64(size-1) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)-c, float64(y)-c) / c
			a := clamp01(1 - d)
			a = a * a * (3 - 2*a)
			v := byte(a * 255)
			i := (y*size + x) * 4
			// premultiplied white
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, v
		}
	}
	img := ebiten.NewImage(size, size)
	img.WritePixels(pix)
	return img
}

// draw projects every particle through eye and yaw and draws it onto dst.
func (r *particleRenderer) draw(dst *ebiten.Image, buf *particles.Buffer, eye camera.Vec3, yaw, size float64) {
	b := dst.Bounds()
	r.proj.Setup(eye, b.Dx(), b.Dy())
	r.proj.SetModelYaw(yaw)

	op := &ebiten.DrawTrianglesOptions{Blend: ebiten.BlendLighter}
	src := float32(dotSize)

	r.vertices = r.vertices[:0]
	r.drawn = 0
	quads := 0
	flush := func() {
		if quads == 0 {
			return
		}
		dst.DrawTriangles(r.vertices, r.indices[:quads*6], r.dot, op)
		r.vertices = r.vertices[:0]
		quads = 0
	}

	for i := 0; i < buf.Count(); i++ {
		x, y, z := buf.At(i)
		sx, sy, depth, ok := r.proj.Project(x, y, z)
		if !ok {
			continue
		}
		px := r.proj.PointSize(size, depth)
		if px < minPointSize {
			px = minPointSize
		} else if px > maxPointSize {
			px = maxPointSize
		}
		half := float32(px / 2)
		fx, fy := float32(sx), float32(sy)
		if fx+half < 0 || fy+half < 0 || fx-half > float32(b.Dx()) || fy-half > float32(b.Dy()) {
			continue
		}

		a := float32(r.opacity * r.fog(depth))
		if a <= 0 {
			continue
		}
		cr, cg, cb := buf.Color[i*3]*a, buf.Color[i*3+1]*a, buf.Color[i*3+2]*a

		r.vertices = append(r.vertices,
			ebiten.Vertex{DstX: fx - half, DstY: fy - half, SrcX: 0, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: a},
			ebiten.Vertex{DstX: fx + half, DstY: fy - half, SrcX: src, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: a},
			ebiten.Vertex{DstX: fx - half, DstY: fy + half, SrcX: 0, SrcY: src, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: a},
			ebiten.Vertex{DstX: fx + half, DstY: fy + half, SrcX: src, SrcY: src, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: a},
		)
		quads++
		r.drawn++
		if quads == batchQuads {
			flush()
		}
	}
	flush()
}

// fog is the linear fog factor: 1 up to fogNear, 0 beyond fogFar.
func (r *particleRenderer) fog(depth float64) float64 {
	if r.fogFar <= r.fogNear {
		return 1
	}
	return clamp01((r.fogFar - depth) / (r.fogFar - r.fogNear))
}

var background = color.RGBA{A: 255}
