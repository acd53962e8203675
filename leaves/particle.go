package leaves

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Phase is the lifecycle state of a particle, derived from its fields.
type Phase int

const (
	// PhaseAlive is a frustum-relative particle inside its bounds.
	PhaseAlive Phase = iota
	// PhaseFalling is a radial-floor particle above the floor.
	PhaseFalling
	// PhaseResting is the absorbing radial-floor state after landing.
	PhaseResting
)

func (p Phase) String() string {
	switch p {
	case PhaseAlive:
		return "alive"
	case PhaseFalling:
		return "falling"
	case PhaseResting:
		return "resting"
	}
	return "unknown"
}

// Particle is one leaf. Pools store them by value in a contiguous slice.
type Particle struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3 // Euler XYZ, radians
	Velocity mgl32.Vec3 // units per second

	// Seed is re-rolled on every (re)spawn. It picks the drift heading and
	// which face a leaf lands on.
	Seed float32

	Resting bool
}

// Instance is the per-leaf record handed to the renderer. The layout is two
// packed vec3s (24 bytes) and is uploaded as-is into the instance buffer.
type Instance struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
}

func (p Particle) Instance() Instance {
	return Instance{Position: p.Position, Rotation: p.Rotation}
}

func (p Particle) Finite() bool {
	return finiteVec3(p.Position) && finiteVec3(p.Rotation) && finiteVec3(p.Velocity)
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

func finiteVec3(v mgl32.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}

// ModelMatrix composes translation and XYZ Euler rotation for a unit leaf.
func (in Instance) ModelMatrix() mgl32.Mat4 {
	rot := mgl32.AnglesToQuat(in.Rotation.X(), in.Rotation.Y(), in.Rotation.Z(), mgl32.XYZ)
	return mgl32.Translate3D(in.Position.X(), in.Position.Y(), in.Position.Z()).Mul4(rot.Mat4())
}
