package leaves

import (
	"fmt"
)

// Options configures a Pool.
type Options struct {
	Count int
	Mode  BoundsMode
	// Rand defaults to a time-seeded source.
	Rand RandomSource
	// Camera places the initial leaves of camera-relative modes.
	Camera Camera
}

// TickStats counts what happened to the pool during the last Tick.
type TickStats struct {
	Frame     uint64
	Respawned int // exits replaced by a fresh spawn
	Landed    int // radial-floor particles that reached the floor
	Resting   int // particles in the resting phase after the tick
	Degraded  int // particles kept at their previous state
}

// Pool owns a fixed number of leaves and publishes their transforms once per
// frame. All storage is allocated in NewPool.
type Pool struct {
	mode      BoundsMode
	rng       RandomSource
	particles []Particle
	instances []Instance
	lastCam   Camera
	stats     TickStats
}

func NewPool(opts Options) (*Pool, error) {
	if opts.Count <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, opts.Count)
	}
	if opts.Mode == nil {
		return nil, ErrNilMode
	}
	if err := opts.Mode.Validate(); err != nil {
		return nil, fmt.Errorf("leaves: invalid %s mode: %w", opts.Mode.Kind(), err)
	}
	if opts.Mode.NeedsCamera() && !opts.Camera.Valid() {
		return nil, ErrInvalidCamera
	}
	if opts.Rand == nil {
		opts.Rand = NewRandomSource()
	}

	p := &Pool{
		mode:      opts.Mode,
		rng:       opts.Rand,
		particles: make([]Particle, opts.Count),
		instances: make([]Instance, opts.Count),
		lastCam:   opts.Camera,
	}
	if err := p.Reset(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pool) Len() int         { return len(p.particles) }
func (p *Pool) Mode() BoundsMode { return p.mode }
func (p *Pool) Stats() TickStats { return p.stats }

// Particle returns a copy of slot i.
func (p *Pool) Particle(i int) Particle { return p.particles[i] }

// Instances returns the buffer published by the last Tick or Reset. The
// slice is owned by the pool and rewritten in place every frame.
func (p *Pool) Instances() []Instance { return p.instances }

// Reset re-rolls every particle, moving resting leaves back to falling.
func (p *Pool) Reset() error {
	for i := range p.particles {
		np, ok := p.mode.Spawn(p.rng, p.lastCam)
		if !ok {
			return ErrInvalidCamera
		}
		p.particles[i] = np
		p.instances[i] = np.Instance()
	}
	p.stats = TickStats{Frame: p.stats.Frame}
	return nil
}

// SetRadius changes the radius of a radial-floor pool and reinitializes it.
func (p *Pool) SetRadius(radius float32) error {
	rf, ok := p.mode.(RadialFloor)
	if !ok {
		return fmt.Errorf("leaves: radius applies to radial-floor pools, not %s", p.mode.Kind())
	}
	rf.Radius = radius
	if err := rf.Validate(); err != nil {
		return err
	}
	p.mode = rf
	return p.Reset()
}

// Tick advances every particle exactly once and returns the instance buffer.
// An exit is recycled in the same frame, so the buffer always has Len
// entries. A negative or non-finite dt republishes the previous buffer.
func (p *Pool) Tick(dt float32, cam Camera) []Instance {
	p.stats = TickStats{Frame: p.stats.Frame + 1}
	if !finite(dt) || dt < 0 {
		p.stats.Degraded = len(p.particles)
		p.countResting()
		return p.instances
	}
	if cam.Valid() {
		p.lastCam = cam
	}

	for i := range p.particles {
		res := Step(p.particles[i], dt, p.mode, cam)
		next := res.Particle

		switch {
		case res.Degraded:
			p.stats.Degraded++
		case res.Exited:
			np, ok := p.mode.Recycle(next, p.rng, cam)
			switch {
			case !ok:
				next = p.particles[i]
				p.stats.Degraded++
			case res.Landed:
				next = np
				p.stats.Landed++
			default:
				next = np
				p.stats.Respawned++
			}
		}

		p.particles[i] = next
		p.instances[i] = next.Instance()
	}
	p.countResting()
	return p.instances
}

func (p *Pool) countResting() {
	for i := range p.particles {
		if p.particles[i].Resting {
			p.stats.Resting++
		}
	}
}

// Place overwrites slot i. It is meant for scripted scenes and tests.
func (p *Pool) Place(i int, part Particle) {
	p.particles[i] = part
	p.instances[i] = part.Instance()
}
