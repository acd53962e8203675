package leaffall

import (
	"math"
	"reflect"

	"github.com/gekko3d/leaffall/leaves"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraRig is a perspective camera orbiting its target around the y axis.
// View and Proj follow the GL convention (clip z in [-1, 1]); the renderer
// converts depth for its own API.
type CameraRig struct {
	Target mgl32.Vec3
	Up     mgl32.Vec3
	FovY   float32 // degrees
	Near   float32
	Far    float32
	Aspect float32

	// OrbitSpeed turns the rig automatically, radians per second.
	OrbitSpeed float32

	offset mgl32.Vec3 // eye relative to target at angle 0
	angle  float32

	Eye      mgl32.Vec3
	View     mgl32.Mat4
	Proj     mgl32.Mat4
	ViewProj mgl32.Mat4
	Camera   leaves.Camera
}

// NewCameraRig places the eye at position looking at target.
func NewCameraRig(position, target mgl32.Vec3, fovY, near, far, aspect float32) *CameraRig {
	rig := &CameraRig{
		Target: target,
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   fovY,
		Near:   near,
		Far:    far,
		Aspect: aspect,
		offset: position.Sub(target),
	}
	rig.Refresh()
	return rig
}

// Angle is the current orbit angle in radians.
func (r *CameraRig) Angle() float32 { return r.angle }

// Orbit turns the eye around the target by delta radians.
func (r *CameraRig) Orbit(delta float32) {
	r.angle = float32(math.Mod(float64(r.angle+delta), 2*math.Pi))
}

// Refresh rebuilds the matrices and the leaves camera from the rig state.
func (r *CameraRig) Refresh() {
	rot := mgl32.HomogRotate3DY(r.angle)
	r.Eye = r.Target.Add(rot.Mul4x1(r.offset.Vec4(0)).Vec3())
	r.View = mgl32.LookAtV(r.Eye, r.Target, r.Up)
	r.Proj = mgl32.Perspective(mgl32.DegToRad(r.FovY), r.Aspect, r.Near, r.Far)
	r.ViewProj = r.Proj.Mul4(r.View)
	r.Camera = leaves.NewCamera(r.ViewProj)
}

// CameraFor returns the camera seen from a frame translated by offset. Leaf
// groups simulate in local space and are drawn at their offset.
func (r *CameraRig) CameraFor(offset mgl32.Vec3) leaves.Camera {
	if offset == (mgl32.Vec3{}) {
		return r.Camera
	}
	return leaves.NewCamera(r.ViewProj.Mul4(mgl32.Translate3D(offset.X(), offset.Y(), offset.Z())))
}

type CameraModule struct {
	Position   mgl32.Vec3
	Target     mgl32.Vec3
	FovY       float32
	Near       float32
	Far        float32
	OrbitSpeed float32
}

func (mod CameraModule) Install(app *App, cmd *Commands) {
	aspect := float32(16.0 / 9.0)
	winType := reflect.TypeOf((*WindowState)(nil)).Elem()
	if ws, ok := Resource[WindowState](app); ok {
		aspect = ws.Aspect()
	}

	rig := NewCameraRig(mod.Position, mod.Target, mod.FovY, mod.Near, mod.Far, aspect)
	rig.OrbitSpeed = mod.OrbitSpeed
	if !rig.Camera.Valid() {
		app.Logger().Warnf("Camera starts with a degenerate view-projection (eye %v, target %v)", rig.Eye, rig.Target)
	}
	cmd.AddResources(rig)

	if app.hasResource(winType) {
		cmd.UseSystem(System(cameraAspectSystem).InStage(PreUpdate))
	}
	cmd.UseSystem(System(cameraSystem).InStage(PreUpdate))
}

func cameraAspectSystem(s *WindowState, rig *CameraRig) {
	if s.WindowWidth > 0 && s.WindowHeight > 0 {
		rig.Aspect = s.Aspect()
	}
}

func cameraSystem(t *Time, rig *CameraRig) {
	if rig.OrbitSpeed != 0 {
		rig.Orbit(rig.OrbitSpeed * t.DtSeconds())
	}
	rig.Refresh()
}
