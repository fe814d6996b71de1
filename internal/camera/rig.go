package camera

import (
	"math"
	"math/rand/v2"

	"github.com/iburimskiy/particle-wave/internal/config"
)

const (
	orbitSensitivity = 0.005
	wheelScale       = 0.1
	pinchScale       = 0.5
	autoRotateStep   = 0.001

	minPhi = 0.1
	maxPhi = math.Pi - 0.1
)

type Preset int

const (
	PresetFront Preset = iota
	PresetTop
	PresetSide
	PresetIsometric
)

// Rig is an orbit camera around the origin. Pointer drags rotate it, the
// wheel and pinch gestures set a target distance that the actual distance
// eases toward, and Shake adds a decaying random offset.
type Rig struct {
	cfg config.CameraConfig

	Theta        float64
	Phi          float64
	Radius       float64
	TargetRadius float64
	AutoRotate   bool

	shake float64

	dragging     bool
	lastX, lastY float64
	pinchDist    float64

	eye Vec3
	// jitter draws values in [0,1); replaced in tests
	jitter func() float64
}

func NewRig(cfg config.CameraConfig) *Rig {
	r := &Rig{
		cfg:          cfg,
		Theta:        0,
		Phi:          math.Pi / 4,
		Radius:       cfg.DefaultDistance,
		TargetRadius: cfg.DefaultDistance,
		jitter:       rand.Float64,
	}
	r.eye = r.orbitPosition()
	return r
}

func (r *Rig) Dragging() bool { return r.dragging }

func (r *Rig) ShakeIntensity() float64 { return r.shake }

// PointerDown starts a drag at screen position (x, y).
func (r *Rig) PointerDown(x, y float64) {
	r.dragging = true
	r.lastX, r.lastY = x, y
}

// PointerMove orbits by the delta since the last pointer position. It does
// nothing unless a drag is in progress.
func (r *Rig) PointerMove(x, y float64) {
	if !r.dragging {
		return
	}
	r.Orbit(x-r.lastX, y-r.lastY)
	r.lastX, r.lastY = x, y
}

func (r *Rig) PointerUp() {
	r.dragging = false
	r.pinchDist = 0
}

// Orbit rotates by a pointer delta in pixels. Phi stays within
// [0.1, pi-0.1] so the camera never flips over a pole.
func (r *Rig) Orbit(dx, dy float64) {
	r.Theta += dx * orbitSensitivity * r.cfg.OrbitSpeed
	r.Phi = clamp(r.Phi+dy*orbitSensitivity*r.cfg.OrbitSpeed, minPhi, maxPhi)
}

// Wheel zooms by a browser-style wheel delta; positive moves away.
func (r *Rig) Wheel(deltaY float64) {
	r.setTarget(r.TargetRadius + deltaY*wheelScale*r.cfg.ZoomSpeed)
}

// Pinch zooms by the change in distance between two touch points. The first
// call of a gesture only records the distance.
func (r *Rig) Pinch(dist float64) {
	if r.pinchDist > 0 {
		r.setTarget(r.TargetRadius + (r.pinchDist-dist)*pinchScale)
	}
	r.pinchDist = dist
}

func (r *Rig) setTarget(v float64) {
	r.TargetRadius = clamp(v, r.cfg.MinDistance, r.cfg.MaxDistance)
}

// Shake sets the shake intensity, replacing any shake in progress.
func (r *Rig) Shake(intensity float64) {
	r.shake = intensity
}

func (r *Rig) ToggleAutoRotate() bool {
	r.AutoRotate = !r.AutoRotate
	return r.AutoRotate
}

func (r *Rig) SetPreset(p Preset) {
	switch p {
	case PresetFront:
		r.Theta, r.Phi = 0, math.Pi/2
	case PresetTop:
		r.Theta, r.Phi = 0, minPhi
	case PresetSide:
		r.Theta, r.Phi = math.Pi/2, math.Pi/2
	case PresetIsometric:
		r.Theta, r.Phi = math.Pi/4, math.Pi/4
	}
}

func (r *Rig) Reset() {
	r.Theta = 0
	r.Phi = math.Pi / 4
	r.TargetRadius = r.cfg.DefaultDistance
}

// Update advances one frame: ease the distance, auto-rotate, recompute the
// eye position and apply and decay the shake.
func (r *Rig) Update() {
	r.Radius += (r.TargetRadius - r.Radius) * r.cfg.ZoomEase
	if r.AutoRotate {
		r.Theta += autoRotateStep * r.cfg.AutoRotateSpeed
	}

	r.eye = r.orbitPosition()
	if r.shake > r.cfg.ShakeEpsilon {
		r.eye.X += (r.jitter() - 0.5) * r.shake
		r.eye.Y += (r.jitter() - 0.5) * r.shake
		r.eye.Z += (r.jitter() - 0.5) * r.shake
		r.shake *= r.cfg.ShakeDecay
	}
}

// Eye is the camera position computed by the last Update. The camera always
// looks at the origin.
func (r *Rig) Eye() Vec3 { return r.eye }

func (r *Rig) orbitPosition() Vec3 {
	sinPhi := math.Sin(r.Phi)
	return Vec3{
		X: r.Radius * sinPhi * math.Cos(r.Theta),
		Y: r.Radius * math.Cos(r.Phi),
		Z: r.Radius * sinPhi * math.Sin(r.Theta),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
