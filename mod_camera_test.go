package leaffall

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRig() *CameraRig {
	return NewCameraRig(mgl32.Vec3{0, 0, 12}, mgl32.Vec3{}, 75, 0.1, 100, 16.0/9.0)
}

func TestCameraRig_LooksAtTarget(t *testing.T) {
	rig := testRig()
	require.True(t, rig.Camera.Valid())
	assert.Equal(t, mgl32.Vec3{0, 0, 12}, rig.Eye)

	ndc, ok := rig.Camera.Project(mgl32.Vec3{})
	require.True(t, ok)
	assert.InDelta(t, 0, ndc.X(), 1e-5)
	assert.InDelta(t, 0, ndc.Y(), 1e-5)
	assert.True(t, ndc.Z() > -1 && ndc.Z() < 1)
}

func TestCameraRig_Orbit(t *testing.T) {
	rig := testRig()
	rig.Orbit(math.Pi / 2)
	rig.Refresh()
	assert.InDelta(t, math.Pi/2, rig.Angle(), 1e-6)
	assert.InDelta(t, 12, rig.Eye.X(), 1e-4)
	assert.InDelta(t, 0, rig.Eye.Z(), 1e-4)

	rig.Orbit(2 * math.Pi)
	assert.InDelta(t, math.Pi/2, rig.Angle(), 1e-5, "angle wraps")
}

func TestCameraRig_CameraForOffset(t *testing.T) {
	rig := testRig()
	assert.Equal(t, rig.Camera, rig.CameraFor(mgl32.Vec3{}))

	offset := mgl32.Vec3{-4, 0, 0}
	local := mgl32.Vec3{1, 2, 3}
	got, ok := rig.CameraFor(offset).Project(local)
	require.True(t, ok)
	want, ok := rig.Camera.Project(local.Add(offset))
	require.True(t, ok)
	assert.InDelta(t, want.X(), got.X(), 1e-5)
	assert.InDelta(t, want.Y(), got.Y(), 1e-5)
	assert.InDelta(t, want.Z(), got.Z(), 1e-5)
}

func TestCameraModule_OrbitsWithTime(t *testing.T) {
	app := NewApp().UseModules(
		TimeModule{FixedDt: 100 * time.Millisecond},
		CameraModule{Position: mgl32.Vec3{0, 0, 12}, FovY: 75, Near: 0.1, Far: 100, OrbitSpeed: 1},
	)
	rig, ok := Resource[CameraRig](app)
	require.True(t, ok)
	assert.InDelta(t, 16.0/9.0, rig.Aspect, 1e-6, "no window keeps the default aspect")

	app.RunFrames(5)
	assert.InDelta(t, 0.5, rig.Angle(), 1e-5)
	assert.NotEqual(t, mgl32.Vec3{0, 0, 12}, rig.Eye)
}
