package leaves

// UpdateResult is the outcome of advancing one particle by one frame.
type UpdateResult struct {
	Particle Particle
	// Exited is set when the particle left its bounds this frame and must be
	// handed to the mode's Recycle.
	Exited bool
	// Landed is set on the frame a radial-floor particle reaches the floor.
	Landed bool
	// Degraded is set when the step was skipped and Particle is the input
	// unchanged.
	Degraded bool
}

// Step advances p by dt seconds under mode. It only reads its arguments; a
// result that would carry a non-finite value is replaced by the input.
func Step(p Particle, dt float32, mode BoundsMode, cam Camera) UpdateResult {
	if !finite(dt) || dt < 0 {
		return UpdateResult{Particle: p, Degraded: true}
	}
	res := mode.advance(p, dt, cam)
	if !res.Particle.Finite() {
		return UpdateResult{Particle: p, Degraded: true}
	}
	return res
}
