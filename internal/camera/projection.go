package camera

import (
	"math"

	"github.com/iburimskiy/particle-wave/internal/config"
)

var worldUp = Vec3{Y: 1}

// Projector maps world points to screen pixels for a perspective camera at
// an eye position looking at the origin.
type Projector struct {
	near, far float64
	focal     float64 // 1 / tan(fov/2)

	width, height float64
	aspect        float64

	eye, right, up, forward Vec3

	yawCos, yawSin float64
}

func NewProjector(cfg config.CameraConfig) *Projector {
	return &Projector{
		near:   cfg.Near,
		far:    cfg.Far,
		focal:  1 / math.Tan(cfg.FOV*math.Pi/180/2),
		yawCos: 1,
	}
}

// Setup prepares the view for one frame.
func (p *Projector) Setup(eye Vec3, width, height int) {
	p.width = float64(width)
	p.height = float64(height)
	p.aspect = p.width / math.Max(p.height, 1)

	p.eye = eye
	p.forward = eye.Scale(-1).Normalize()
	p.right = p.forward.Cross(worldUp).Normalize()
	if p.right == (Vec3{}) {
		// looking straight up or down
		p.right = Vec3{X: 1}
	}
	p.up = p.right.Cross(p.forward)
}

// SetModelYaw rotates every projected point about the vertical axis first.
func (p *Projector) SetModelYaw(yaw float64) {
	p.yawCos, p.yawSin = math.Cos(yaw), math.Sin(yaw)
}

// Project returns the screen position and view depth of a world point. ok is
// false for points outside the near/far range or behind the camera.
func (p *Projector) Project(x, y, z float64) (sx, sy, depth float64, ok bool) {
	if p.yawSin != 0 {
		x, z = x*p.yawCos+z*p.yawSin, -x*p.yawSin+z*p.yawCos
	}
	d := Vec3{x, y, z}.Sub(p.eye)
	depth = d.Dot(p.forward)
	if depth < p.near || depth > p.far {
		return 0, 0, depth, false
	}
	ndcX := d.Dot(p.right) * p.focal / (p.aspect * depth)
	ndcY := d.Dot(p.up) * p.focal / depth
	sx = (ndcX + 1) * p.width / 2
	sy = (1 - ndcY) * p.height / 2
	return sx, sy, depth, true
}

// PointSize is the on-screen diameter in pixels of a point of world size
// size at depth, attenuated with distance.
func (p *Projector) PointSize(size, depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return size * p.height / 2 / depth
}
