package leaves

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"zero count", Options{Count: 0, Mode: RadialFloor{Radius: 10}}, ErrInvalidCount},
		{"negative count", Options{Count: -4, Mode: RadialFloor{Radius: 10}}, ErrInvalidCount},
		{"nil mode", Options{Count: 3}, ErrNilMode},
		{"bad radius", Options{Count: 3, Mode: RadialFloor{Radius: 0}}, ErrInvalidRadius},
		{"frustum without camera", Options{Count: 3, Mode: DefaultFrustumRelative(1)}, ErrInvalidCamera},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pool, err := NewPool(tc.opts)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, pool)
		})
	}
}

func TestPool_Conservation(t *testing.T) {
	cam := testCamera()
	modes := []BoundsMode{
		RadialFloor{Radius: 6, DriftSpeed: 2, FallSpeed: 3},
		DefaultFrustumRelative(4),
	}
	for _, mode := range modes {
		for _, count := range []int{1, 7, 250} {
			pool, err := NewPool(Options{
				Count:  count,
				Mode:   mode,
				Rand:   rand.New(rand.NewSource(int64(count))),
				Camera: cam,
			})
			require.NoError(t, err)

			for frame := 0; frame < 300; frame++ {
				buf := pool.Tick(1.0/30.0, cam)
				require.Len(t, buf, count)
				st := pool.Stats()
				require.Equal(t, uint64(frame+1), st.Frame)
				require.LessOrEqual(t, st.Respawned+st.Landed+st.Degraded, count)
			}
			for i := 0; i < pool.Len(); i++ {
				assert.True(t, pool.Particle(i).Finite(), "%s slot %d", mode.Kind(), i)
			}
		}
	}
}

func TestPool_FrustumRecycleLandsInSpawnBand(t *testing.T) {
	cam := testCamera()
	mode := DefaultFrustumRelative(1)
	pool, err := NewPool(Options{Count: 2, Mode: mode, Rand: constRand(0.5), Camera: cam})
	require.NoError(t, err)

	pool.Place(1, Particle{Position: mgl32.Vec3{500, 0, 0}})
	buf := pool.Tick(1.0/60.0, cam)
	require.Equal(t, 1, pool.Stats().Respawned)

	ndc, ok := cam.Project(buf[1].Position)
	require.True(t, ok)
	assert.InDelta(t, mode.SpawnY, ndc.Y(), 1e-2)
	assert.InDelta(t, 0, ndc.X(), 1e-2)
	assert.GreaterOrEqual(t, ndc.Z(), mode.DepthMin-1e-3)
	assert.LessOrEqual(t, ndc.Z(), mode.DepthMax+1e-3)
	assert.True(t, InBounds(ndc, mode.Epsilon))

	// velocity = (wind*(0.5+0.1), 0.5-0.5, 0.5-0.5)
	assert.InDelta(t, 0.6, pool.Particle(1).Velocity.X(), 1e-6)
	assert.InDelta(t, 0, pool.Particle(1).Velocity.Y(), 1e-6)
}

func TestPool_FloorTerminalUntilReset(t *testing.T) {
	pool, err := NewPool(Options{Count: 1, Mode: RadialFloor{Radius: 10}, Rand: constRand(0.25)})
	require.NoError(t, err)

	pool.Place(0, Particle{Position: mgl32.Vec3{0, 4, 0}, Velocity: mgl32.Vec3{0, -2, 0}, Seed: 0.7})
	for i := 0; i < 5; i++ {
		pool.Tick(1, Camera{})
	}
	rested := pool.Particle(0)
	require.True(t, rested.Resting)
	assert.Equal(t, float32(-5), rested.Position.Y())
	assert.Equal(t, 1, pool.Stats().Resting)

	for i := 0; i < 50; i++ {
		buf := pool.Tick(0.016, Camera{})
		assert.Equal(t, mgl32.Vec3{}, pool.Particle(0).Velocity)
		assert.Equal(t, rested.Instance(), buf[0])
	}

	require.NoError(t, pool.SetRadius(20))
	p := pool.Particle(0)
	assert.False(t, p.Resting)
	assert.Equal(t, PhaseFalling, pool.Mode().Phase(p))
	assert.Equal(t, float32(20), pool.Mode().(RadialFloor).Radius)
	for _, c := range p.Position {
		assert.LessOrEqual(t, float32(math.Abs(float64(c))), float32(10))
	}
}

func TestPool_SetRadiusErrors(t *testing.T) {
	radial, err := NewPool(Options{Count: 2, Mode: RadialFloor{Radius: 10}})
	require.NoError(t, err)
	assert.ErrorIs(t, radial.SetRadius(0), ErrInvalidRadius)
	assert.Equal(t, float32(10), radial.Mode().(RadialFloor).Radius)

	frustum, err := NewPool(Options{Count: 2, Mode: DefaultFrustumRelative(1), Camera: testCamera()})
	require.NoError(t, err)
	assert.Error(t, frustum.SetRadius(5))
}

func TestPool_BadCameraKeepsBufferFinite(t *testing.T) {
	cam := testCamera()
	pool, err := NewPool(Options{Count: 16, Mode: DefaultFrustumRelative(2), Camera: cam})
	require.NoError(t, err)

	before := append([]Instance(nil), pool.Tick(0.016, cam)...)

	var bad mgl32.Mat4
	for i := range bad {
		bad[i] = float32(math.NaN())
	}
	after := pool.Tick(0.016, NewCamera(bad))
	assert.Equal(t, before, after)
	assert.Equal(t, 16, pool.Stats().Degraded)
	for _, in := range after {
		assert.True(t, finiteVec3(in.Position))
		assert.True(t, finiteVec3(in.Rotation))
	}
}

func TestPool_BadDeltaRepublishes(t *testing.T) {
	pool, err := NewPool(Options{Count: 4, Mode: RadialFloor{Radius: 10, DriftSpeed: 1}})
	require.NoError(t, err)

	before := append([]Instance(nil), pool.Instances()...)
	after := pool.Tick(float32(math.Inf(1)), Camera{})
	assert.Equal(t, before, after)
	assert.Equal(t, 4, pool.Stats().Degraded)
}

func TestPool_TickDoesNotAllocate(t *testing.T) {
	cam := testCamera()
	for _, mode := range []BoundsMode{RadialFloor{Radius: 5, DriftSpeed: 3, FallSpeed: 3}, DefaultFrustumRelative(5)} {
		pool, err := NewPool(Options{Count: 500, Mode: mode, Rand: rand.New(rand.NewSource(7)), Camera: cam})
		require.NoError(t, err)
		allocs := testing.AllocsPerRun(100, func() {
			pool.Tick(1.0/60.0, cam)
		})
		assert.Zero(t, allocs, mode.Kind().String())
	}
}

func TestPool_StableOrder(t *testing.T) {
	pool, err := NewPool(Options{Count: 3, Mode: RadialFloor{Radius: 10}, Rand: constRand(0.5)})
	require.NoError(t, err)

	marks := []float32{-1, 0, 1}
	for i, x := range marks {
		pool.Place(i, Particle{Position: mgl32.Vec3{x, 0, 0}, Velocity: mgl32.Vec3{0, 0, 1}})
	}
	buf := pool.Tick(0.5, Camera{})
	for i, x := range marks {
		assert.Equal(t, x, buf[i].Position.X())
		assert.Equal(t, float32(0.5), buf[i].Position.Z())
	}
	assert.Same(t, &buf[0], &pool.Instances()[0])
}
