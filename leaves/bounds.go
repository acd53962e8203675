package leaves

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type BoundsKind int

const (
	KindRadialFloor BoundsKind = iota
	KindFrustumRelative
)

func (k BoundsKind) String() string {
	switch k {
	case KindRadialFloor:
		return "radial-floor"
	case KindFrustumRelative:
		return "frustum-relative"
	}
	return fmt.Sprintf("BoundsKind(%d)", int(k))
}

// ParseBoundsKind accepts the names produced by BoundsKind.String.
func ParseBoundsKind(s string) (BoundsKind, error) {
	switch s {
	case "radial-floor":
		return KindRadialFloor, nil
	case "frustum-relative":
		return KindFrustumRelative, nil
	}
	return 0, fmt.Errorf("leaves: unknown bounds mode %q", s)
}

// BoundsMode is the bounds test and recycle strategy of a pool. It is chosen
// once when the pool is built. The set of implementations is closed:
// RadialFloor and FrustumRelative.
type BoundsMode interface {
	Kind() BoundsKind
	Validate() error
	// NeedsCamera reports whether spawning and stepping read the camera.
	NeedsCamera() bool
	// SpinRate is the angular rate, in rad/s, applied to rotation x and y.
	SpinRate() float32
	// Phase derives the lifecycle state of p under this mode.
	Phase(p Particle) Phase
	// Spawn rolls a fresh particle. ok is false when the camera cannot place it.
	Spawn(rng RandomSource, cam Camera) (p Particle, ok bool)
	// Recycle replaces a particle that left its bounds.
	Recycle(prev Particle, rng RandomSource, cam Camera) (p Particle, ok bool)

	advance(p Particle, dt float32, cam Camera) UpdateResult
}

func randomEuler(rng RandomSource) mgl32.Vec3 {
	return mgl32.Vec3{
		(rng.Float32() - 0.5) * math.Pi,
		(rng.Float32() - 0.5) * math.Pi,
		(rng.Float32() - 0.5) * math.Pi,
	}
}

func spin(rot mgl32.Vec3, rate, dt float32) mgl32.Vec3 {
	rot[0] += dt * rate
	rot[1] += dt * rate
	return rot
}

// RadialFloor keeps leaves inside a sphere of Radius around the origin and
// lets them settle on a floor at -Radius/2.
type RadialFloor struct {
	Radius     float32
	DriftSpeed float32 // horizontal speed, units/s
	FallSpeed  float32 // maximum initial sink rate, units/s
}

const radialSpinRate = 1.0

func (m RadialFloor) Kind() BoundsKind  { return KindRadialFloor }
func (m RadialFloor) NeedsCamera() bool { return false }
func (m RadialFloor) SpinRate() float32 { return radialSpinRate }
func (m RadialFloor) Floor() float32    { return -m.Radius / 2 }

func (m RadialFloor) Validate() error {
	if !(m.Radius > 0) || !finite(m.Radius) {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, m.Radius)
	}
	if m.DriftSpeed < 0 || m.FallSpeed < 0 {
		return fmt.Errorf("leaves: negative speed (drift %v, fall %v)", m.DriftSpeed, m.FallSpeed)
	}
	return nil
}

func (m RadialFloor) Phase(p Particle) Phase {
	if p.Resting {
		return PhaseResting
	}
	return PhaseFalling
}

// Spawn places a leaf uniformly in the cube of side Radius centered at the
// origin.
func (m RadialFloor) Spawn(rng RandomSource, _ Camera) (Particle, bool) {
	pos := mgl32.Vec3{
		(rng.Float32() - 0.5) * m.Radius,
		(rng.Float32() - 0.5) * m.Radius,
		(rng.Float32() - 0.5) * m.Radius,
	}
	rot := randomEuler(rng)
	seed := rng.Float32()
	heading := float64(seed)
	vel := mgl32.Vec3{
		float32(math.Sin(heading)) * m.DriftSpeed,
		-m.FallSpeed * rng.Float32(),
		float32(math.Cos(heading)) * m.DriftSpeed,
	}
	return Particle{Position: pos, Rotation: rot, Velocity: vel, Seed: seed}, true
}

// Recycle leaves a landed particle where it rests. Anything else left the
// sphere and is spawned again.
func (m RadialFloor) Recycle(prev Particle, rng RandomSource, cam Camera) (Particle, bool) {
	if prev.Resting {
		return prev, true
	}
	return m.Spawn(rng, cam)
}

// RestPose is the flattened orientation of a landed leaf.
func RestPose(seed float32) mgl32.Vec3 {
	flip := float32(0)
	if seed < 0.5 {
		flip = math.Pi
	}
	return mgl32.Vec3{math.Pi / 2, flip, 0}
}

func (m RadialFloor) advance(p Particle, dt float32, _ Camera) UpdateResult {
	if p.Resting {
		return UpdateResult{Particle: p}
	}

	p.Rotation = spin(p.Rotation, radialSpinRate, dt)
	// Vertical velocity is not accelerated while falling.
	p.Position = p.Position.Add(p.Velocity.Mul(dt))

	if floor := m.Floor(); p.Position.Y() <= floor {
		p.Position[1] = floor
		p.Velocity = mgl32.Vec3{}
		p.Rotation = RestPose(p.Seed)
		p.Resting = true
		return UpdateResult{Particle: p, Exited: true, Landed: true}
	}
	if p.Position.Len() > m.Radius {
		return UpdateResult{Particle: p, Exited: true}
	}
	return UpdateResult{Particle: p}
}

// FrustumRelative keeps leaves inside the camera's NDC cube grown by Epsilon
// and feeds them back in along a band above the top edge of the view.
type FrustumRelative struct {
	Epsilon   float32
	WindSpeed float32
	// SpawnY is the NDC height of the respawn band.
	SpawnY float32
	// DepthMin and DepthMax bound the NDC depth of spawned leaves.
	DepthMin float32
	DepthMax float32
}

const (
	frustumSpinRate = 0.5
	// VerticalDamping is subtracted from velocity.y once per frame, not
	// scaled by dt.
	VerticalDamping = 0.01
)

// DefaultFrustumRelative returns the stock frustum settings for a wind speed.
func DefaultFrustumRelative(windSpeed float32) FrustumRelative {
	return FrustumRelative{
		Epsilon:   0.2,
		WindSpeed: windSpeed,
		SpawnY:    1.1,
		DepthMin:  0.96,
		DepthMax:  0.995,
	}
}

func (m FrustumRelative) Kind() BoundsKind  { return KindFrustumRelative }
func (m FrustumRelative) NeedsCamera() bool { return true }
func (m FrustumRelative) SpinRate() float32 { return frustumSpinRate }
func (m FrustumRelative) Phase(Particle) Phase {
	return PhaseAlive
}

func (m FrustumRelative) Validate() error {
	switch {
	case m.Epsilon < 0:
		return fmt.Errorf("leaves: epsilon must be >= 0, got %v", m.Epsilon)
	case m.WindSpeed < 0:
		return fmt.Errorf("leaves: wind speed must be >= 0, got %v", m.WindSpeed)
	case m.SpawnY > 1+m.Epsilon:
		return fmt.Errorf("leaves: spawn band %v lies outside bounds 1+%v", m.SpawnY, m.Epsilon)
	case m.DepthMin < -1 || m.DepthMax > 1 || m.DepthMin > m.DepthMax:
		return fmt.Errorf("leaves: spawn depth [%v, %v] outside [-1, 1]", m.DepthMin, m.DepthMax)
	}
	return nil
}

func (m FrustumRelative) depth(rng RandomSource) float32 {
	return m.DepthMin + rng.Float32()*(m.DepthMax-m.DepthMin)
}

func (m FrustumRelative) place(ndc mgl32.Vec3, rng RandomSource, cam Camera) (Particle, bool) {
	pos, ok := cam.Unproject(ndc)
	if !ok {
		return Particle{}, false
	}
	return Particle{
		Position: pos,
		Rotation: randomEuler(rng),
		Velocity: mgl32.Vec3{
			m.WindSpeed * (rng.Float32() + 0.1),
			rng.Float32() - 0.5,
			rng.Float32() - 0.5,
		},
		Seed: rng.Float32(),
	}, true
}

// Spawn scatters a leaf anywhere across the view, used to fill the pool.
func (m FrustumRelative) Spawn(rng RandomSource, cam Camera) (Particle, bool) {
	ndc := mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, m.depth(rng)}
	return m.place(ndc, rng, cam)
}

// Recycle drops a leaf back in on the band just above the top edge.
func (m FrustumRelative) Recycle(_ Particle, rng RandomSource, cam Camera) (Particle, bool) {
	ndc := mgl32.Vec3{rng.Float32()*2 - 1, m.SpawnY, m.depth(rng)}
	return m.place(ndc, rng, cam)
}

func (m FrustumRelative) advance(p Particle, dt float32, cam Camera) UpdateResult {
	if !cam.Valid() {
		return UpdateResult{Particle: p, Degraded: true}
	}

	p.Rotation = spin(p.Rotation, frustumSpinRate, dt)
	p.Position = p.Position.Add(p.Velocity.Mul(dt))

	ndc, ok := cam.Project(p.Position)
	if !ok || !InBounds(ndc, m.Epsilon) {
		return UpdateResult{Particle: p, Exited: true}
	}
	p.Velocity[1] -= VerticalDamping
	return UpdateResult{Particle: p}
}
