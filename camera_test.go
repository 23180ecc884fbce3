package chime

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/chime/vr"
	"github.com/phanxgames/chime/vr/vrtest"
)

func TestPerspectiveCameraProjection(t *testing.T) {
	cam := NewPerspectiveCamera("cam", 1, 1.5, 0.1, 100)
	assertMat4(t, mgl32.Perspective(1, 1.5, 0.1, 100), cam.Projection())

	cam.SetAspectRatio(2)
	assertMat4(t, mgl32.Perspective(1, 2, 0.1, 100), cam.Projection())

	near, far := cam.ClipPlanes()
	assert.Equal(t, float32(0.1), near)
	assert.Equal(t, float32(100), far)
}

func TestPerspectiveCameraFollow(t *testing.T) {
	target := NewGroup("target")
	target.SetPosition(mgl32.Vec3{1, 0, 0})
	cam := NewPerspectiveCamera("cam", 1, 1, 0.1, 100)
	cam.Follow(target, mgl32.Vec3{0, 0, 4}, 0.5)

	cam.Simulate(0.016)
	assertVec3(t, mgl32.Vec3{0.5, 0, 2}, cam.Position())

	cam.Simulate(0.016)
	assertVec3(t, mgl32.Vec3{0.75, 0, 3}, cam.Position())

	cam.Unfollow()
	cam.Simulate(0.016)
	assertVec3(t, mgl32.Vec3{0.75, 0, 3}, cam.Position())
}

func TestPerspectiveCameraFollowSnapsAndLooks(t *testing.T) {
	target := NewGroup("target")
	cam := NewPerspectiveCamera("cam", 1, 1, 0.1, 100)
	cam.Follow(target, mgl32.Vec3{0, 0, 5}, 0)

	cam.Simulate(0.016)

	assertVec3(t, mgl32.Vec3{0, 0, 5}, cam.Position())
	assertVec3(t, mgl32.Vec3{0, 0, -1}, cam.Rotation().Rotate(mgl32.Vec3{0, 0, -1}))
}

func TestPerspectiveCameraFollowInParentSpace(t *testing.T) {
	rig := NewGroup("rig")
	rig.SetPosition(mgl32.Vec3{10, 0, 0})
	cam := NewPerspectiveCamera("cam", 1, 1, 0.1, 100)
	rig.AddChild(cam)
	target := NewGroup("target")
	target.SetPosition(mgl32.Vec3{10, 0, -3})
	cam.Follow(target, mgl32.Vec3{0, 0, 5}, 1)

	cam.Simulate(0.016)

	assertVec3(t, mgl32.Vec3{10, 0, 2}, cam.AbsolutePosition())
}

func TestPerspectiveCameraStopsFollowingDisposedTarget(t *testing.T) {
	target := NewGroup("target")
	cam := NewPerspectiveCamera("cam", 1, 1, 0.1, 100)
	cam.Follow(target, mgl32.Vec3{0, 0, 5}, 1)
	target.Dispose()

	cam.Simulate(0.016)
	assertVec3(t, mgl32.Vec3{}, cam.Position())
}

func TestPerspectiveCameraMoveToStopsFollow(t *testing.T) {
	target := NewGroup("target")
	cam := NewPerspectiveCamera("cam", 1, 1, 0.1, 100)
	cam.Follow(target, mgl32.Vec3{0, 0, 5}, 1)
	cam.MoveTo(mgl32.Vec3{3, 0, 0}, 0.5, ease.Linear)

	cam.Simulate(0.5)

	assertVec3(t, mgl32.Vec3{3, 0, 0}, cam.Position())
}

func TestEyeCameraReadsSource(t *testing.T) {
	rt := vrtest.New()
	left := NewEyeCamera("left", rt, vr.EyeLeft, 0.05, 50)
	right := NewEyeCamera("right", rt, vr.EyeRight, 0.05, 50)

	assertVec3(t, mgl32.Vec3{-0.032, 0, 0}, left.Position())
	assertVec3(t, mgl32.Vec3{0.032, 0, 0}, right.Position())
	assertMat4(t, rt.EyeProjection(vr.EyeLeft, 0.05, 50), left.Projection())

	rt.IPD = 0.07
	left.Simulate(0.016)
	assertVec3(t, mgl32.Vec3{-0.035, 0, 0}, left.Position())
	assertVec3(t, mgl32.Vec3{0.032, 0, 0}, right.Position(), "refreshed only on Simulate")
}
