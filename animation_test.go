package chime

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"
)

func near(a, b, eps float32) bool {
	return math32.Abs(a-b) < eps
}

func TestTweenPositionReachesTarget(t *testing.T) {
	node := NewGroup("pos")
	node.SetPosition(mgl32.Vec3{10, 20, 30})

	g := TweenPosition(node, mgl32.Vec3{100, 200, 300}, 1.0, ease.Linear)

	// Exact halves avoid float32 accumulation drift.
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	want := mgl32.Vec3{100, 200, 300}
	for i := range want {
		if !near(node.Position()[i], want[i], 0.5) {
			t.Errorf("Position[%d] = %f, want ~%f", i, node.Position()[i], want[i])
		}
	}
}

func TestTweenScaleReachesTarget(t *testing.T) {
	node := NewGroup("scale")

	g := TweenScale(node, mgl32.Vec3{2, 3, 4}, 0.5, ease.Linear)

	g.Update(0.25)
	g.Update(0.25)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if s := node.Scale(); !near(s[0], 2, 0.01) || !near(s[1], 3, 0.01) || !near(s[2], 4, 0.01) {
		t.Errorf("Scale = %v, want ~[2 3 4]", s)
	}
}

func TestTweenRotationSlerps(t *testing.T) {
	node := NewGroup("rot")
	to := mgl32.QuatRotate(math32.Pi/2, mgl32.Vec3{0, 1, 0})

	tw := TweenRotation(node, to, 1.0, ease.Linear)

	tw.Update(0.5)
	half := mgl32.QuatRotate(math32.Pi/4, mgl32.Vec3{0, 1, 0})
	assertQuat(t, half, node.Rotation())

	tw.Update(0.5)
	if !tw.Done {
		t.Fatal("expected done after full duration")
	}
	assertQuat(t, to, node.Rotation())
}

func TestTweenLightColorInterpolates(t *testing.T) {
	light := NewPointLight("light", mgl32.Vec3{0, 0, 0})

	tw := TweenLightColor(light, mgl32.Vec3{100, 50, 0}, 1.0, ease.Linear)

	tw.Update(0.5)
	if tw.Done {
		t.Fatal("should not be done at halfway")
	}
	if !near(light.Color[0], 50, 0.5) || !near(light.Color[1], 25, 0.5) {
		t.Errorf("Color = %v, want ~[50 25 0] at halfway", light.Color)
	}

	tw.Update(0.5)
	if !tw.Done {
		t.Fatal("should be done after full duration")
	}
}

func TestTweenGroupDoneFlagTransition(t *testing.T) {
	node := NewGroup("done")
	g := TweenPosition(node, mgl32.Vec3{50, 50, 0}, 0.5, ease.Linear)

	if g.Done {
		t.Fatal("should not be Done at start")
	}

	g.Update(0.25)
	if g.Done {
		t.Fatal("should not be Done partway through")
	}

	g.Update(0.25)
	if !g.Done {
		t.Fatal("should be Done after full duration")
	}

	// Updating a finished group is a no-op.
	g.Update(0.1)
	if !g.Done {
		t.Fatal("should remain Done")
	}
}

func TestTweenGroupNotifiesTransformObserver(t *testing.T) {
	c := &transformCounter{}
	c.Init(c, "observed", "transformCounter")

	g := TweenPosition(c, mgl32.Vec3{100, 100, 0}, 1.0, ease.Linear)
	g.Update(0.1)

	if c.changes != 1 {
		t.Fatalf("changes = %d, want 1", c.changes)
	}
}

func TestTweenGroupDisposedNode(t *testing.T) {
	node := NewGroup("disposed")
	node.SetPosition(mgl32.Vec3{10, 20, 0})

	g := TweenPosition(node, mgl32.Vec3{100, 200, 0}, 1.0, ease.Linear)

	node.Dispose()
	g.Update(0.1)

	if !g.Done {
		t.Fatal("expected Done after disposed node detected")
	}
	if p := node.Position(); p[0] != 10 || p[1] != 20 {
		t.Errorf("Position changed to %v on disposed node", p)
	}
}

func TestTweenGroupDisposedMidAnimation(t *testing.T) {
	node := NewGroup("mid-dispose")

	g := TweenPosition(node, mgl32.Vec3{100, 100, 0}, 1.0, ease.Linear)

	g.Update(0.1)
	g.Update(0.1)
	if g.Done {
		t.Fatal("should not be Done yet")
	}

	node.Dispose()
	saved := node.Position()

	g.Update(0.1)
	if !g.Done {
		t.Fatal("expected Done after mid-animation dispose")
	}
	if node.Position() != saved {
		t.Errorf("Position changed after dispose: %v -> %v", saved, node.Position())
	}
}

func TestCameraMoveTo(t *testing.T) {
	cam := NewPerspectiveCamera("cam", 1, 1, 0.1, 100)

	cam.MoveTo(mgl32.Vec3{0, 0, 10}, 1.0, ease.Linear)
	cam.Simulate(0.5)
	if !near(cam.Position()[2], 5, 0.05) {
		t.Errorf("Z = %f at halfway, want ~5", cam.Position()[2])
	}
	cam.Simulate(0.5)
	cam.Simulate(0.5)
	if !near(cam.Position()[2], 10, 0.05) {
		t.Errorf("Z = %f, want ~10", cam.Position()[2])
	}
}
