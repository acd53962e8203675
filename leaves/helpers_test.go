package leaves

import (
	"github.com/go-gl/mathgl/mgl32"
)

// seqRand replays a fixed list of values, wrapping around.
type seqRand struct {
	vals []float32
	i    int
}

func (r *seqRand) Float32() float32 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

func constRand(v float32) *seqRand { return &seqRand{vals: []float32{v}} }

func testCamera() Camera {
	return PerspectiveCamera(
		mgl32.Vec3{0, 0, 12},
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{0, 1, 0},
		60, 16.0/9.0, 0.1, 100,
	)
}
