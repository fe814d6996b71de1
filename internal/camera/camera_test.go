package camera

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/iburimskiy/particle-wave/internal/config"
)

func newTestRig() *Rig {
	r := NewRig(config.Default().Camera)
	r.jitter = func() float64 { return 1 }
	return r
}

func TestPhiStaysClampedUnderDrag(t *testing.T) {
	r := newTestRig()
	rng := rand.New(rand.NewPCG(1, 2))

	r.PointerDown(0, 0)
	x, y := 0.0, 0.0
	for i := 0; i < 5000; i++ {
		x += (rng.Float64() - 0.5) * 2000
		y += (rng.Float64() - 0.5) * 2000
		r.PointerMove(x, y)
		if r.Phi < 0.1 || r.Phi > math.Pi-0.1 {
			t.Fatalf("phi escaped clamp after %d moves: %v", i, r.Phi)
		}
	}
}

func TestPointerMoveIgnoredWhenIdle(t *testing.T) {
	r := newTestRig()
	r.PointerMove(300, 300)
	if r.Theta != 0 || r.Phi != math.Pi/4 {
		t.Fatalf("expected no orbit without drag, got theta=%v phi=%v", r.Theta, r.Phi)
	}

	r.PointerDown(0, 0)
	r.PointerMove(100, 0)
	if want := 100 * 0.005; math.Abs(r.Theta-want) > 1e-12 {
		t.Fatalf("expected theta %v, got %v", want, r.Theta)
	}
	r.PointerUp()
	r.PointerMove(500, 0)
	if r.Dragging() || math.Abs(r.Theta-0.5) > 1e-12 {
		t.Fatalf("expected drag to end on pointer up, theta=%v", r.Theta)
	}
}

func TestRadiusConvergesMonotonically(t *testing.T) {
	r := newTestRig()
	r.Wheel(1000)
	if math.Abs(r.TargetRadius-250) > 1e-9 {
		t.Fatalf("expected target 250 after one wheel step, got %v", r.TargetRadius)
	}
	r.Wheel(10000) // far beyond max
	if r.TargetRadius != 500 {
		t.Fatalf("expected target clamped to 500, got %v", r.TargetRadius)
	}

	prev := math.Abs(r.TargetRadius - r.Radius)
	for i := 0; prev > 1e-6; i++ {
		r.Update()
		d := math.Abs(r.TargetRadius - r.Radius)
		if d >= prev {
			t.Fatalf("frame %d: distance to target did not shrink (%v -> %v)", i, prev, d)
		}
		if r.Radius > r.TargetRadius {
			t.Fatalf("frame %d: radius overshot target", i)
		}
		prev = d
		if i > 1000 {
			t.Fatal("radius did not converge")
		}
	}
}

func TestWheelAndPinchClampTarget(t *testing.T) {
	r := newTestRig()
	r.Wheel(-5000)
	if r.TargetRadius != 50 {
		t.Fatalf("expected min distance 50, got %v", r.TargetRadius)
	}

	r.Pinch(100) // records start distance only
	if r.TargetRadius != 50 {
		t.Fatal("first pinch sample must not zoom")
	}
	r.Pinch(20) // fingers closer: zoom out by (100-20)*0.5
	if r.TargetRadius != 90 {
		t.Fatalf("expected 90 after pinch, got %v", r.TargetRadius)
	}
}

func TestShakeDecaysGeometrically(t *testing.T) {
	r := newTestRig()
	r.Shake(5)

	prev := r.ShakeIntensity()
	frames := 0
	for r.ShakeIntensity() > 0.01 {
		r.Update()
		cur := r.ShakeIntensity()
		if math.Abs(cur-prev*0.9) > 1e-12 {
			t.Fatalf("frame %d: expected %v, got %v", frames, prev*0.9, cur)
		}
		prev = cur
		frames++
		if frames > 200 {
			t.Fatal("shake did not settle")
		}
	}
	// 5 * 0.9^k <= 0.01  =>  k = 59
	if frames != 59 {
		t.Fatalf("expected 59 frames to settle, got %d", frames)
	}

	before := r.ShakeIntensity()
	r.Update()
	if r.ShakeIntensity() != before {
		t.Fatal("expected settled shake to stop decaying")
	}
	want := r.orbitPosition()
	if r.Eye() != want {
		t.Fatalf("expected no jitter below epsilon, eye=%v want=%v", r.Eye(), want)
	}
}

func TestShakeOffsetsEye(t *testing.T) {
	r := newTestRig()
	r.Shake(4)
	r.Update()
	base := r.orbitPosition()
	eye := r.Eye()
	// jitter() returns 1, so each axis moves by +0.5*4
	if math.Abs(eye.X-base.X-2) > 1e-9 || math.Abs(eye.Y-base.Y-2) > 1e-9 || math.Abs(eye.Z-base.Z-2) > 1e-9 {
		t.Fatalf("unexpected shake offset: eye=%v base=%v", eye, base)
	}
}

func TestAutoRotateAdvancesTheta(t *testing.T) {
	r := newTestRig()
	r.ToggleAutoRotate()
	r.PointerDown(0, 0)
	for range 10 {
		r.Update()
	}
	if want := 10 * 0.001 * 0.5; math.Abs(r.Theta-want) > 1e-12 {
		t.Fatalf("expected theta %v, got %v", want, r.Theta)
	}
}

func TestPresetsAndReset(t *testing.T) {
	r := newTestRig()
	r.SetPreset(PresetTop)
	if r.Phi != 0.1 {
		t.Fatalf("top preset phi = %v", r.Phi)
	}
	r.SetPreset(PresetSide)
	if r.Theta != math.Pi/2 || r.Phi != math.Pi/2 {
		t.Fatalf("side preset = %v,%v", r.Theta, r.Phi)
	}
	r.Wheel(100)
	r.Reset()
	if r.Theta != 0 || r.Phi != math.Pi/4 || r.TargetRadius != 150 {
		t.Fatalf("reset left theta=%v phi=%v target=%v", r.Theta, r.Phi, r.TargetRadius)
	}
}

func TestProjectOriginToScreenCentre(t *testing.T) {
	r := newTestRig()
	r.Update()
	p := NewProjector(config.Default().Camera)
	p.Setup(r.Eye(), 800, 600)

	sx, sy, depth, ok := p.Project(0, 0, 0)
	if !ok {
		t.Fatal("expected origin to be visible")
	}
	if math.Abs(sx-400) > 1e-9 || math.Abs(sy-300) > 1e-9 {
		t.Fatalf("origin projected to (%v,%v)", sx, sy)
	}
	if math.Abs(depth-150) > 1e-9 {
		t.Fatalf("expected depth 150, got %v", depth)
	}
	if got := p.PointSize(2, depth); math.Abs(got-4) > 1e-9 {
		t.Fatalf("expected 4px point, got %v", got)
	}
}

func TestProjectCullsBehindCamera(t *testing.T) {
	r := newTestRig()
	r.SetPreset(PresetFront)
	r.Update()
	p := NewProjector(config.Default().Camera)
	p.Setup(r.Eye(), 800, 600)

	eye := r.Eye()
	if _, _, _, ok := p.Project(eye.X*2, eye.Y*2, eye.Z*2); ok {
		t.Fatal("expected point behind the camera to be culled")
	}
	// front view: camera on +X, so +Y appears above centre
	_, sy, _, ok := p.Project(0, 10, 0)
	if !ok || sy >= 300 {
		t.Fatalf("expected +Y above centre, got sy=%v ok=%v", sy, ok)
	}
}
