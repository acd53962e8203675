package leaffall

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput_Edges(t *testing.T) {
	var in Input
	in.set(KeyR, true)
	assert.True(t, in.Pressed[KeyR])
	assert.True(t, in.JustPressed[KeyR])

	in.set(KeyR, true)
	assert.False(t, in.JustPressed[KeyR], "held keys are not pressed again")

	in.set(KeyR, false)
	assert.True(t, in.JustReleased[KeyR])
	assert.False(t, in.Pressed[KeyR])
}

// controlsScene wires the controls onto a headless scene with a manually
// driven Input.
func controlsScene(t *testing.T) (*App, *Input) {
	t.Helper()
	cfg := testConfig(t)
	input := &Input{}
	app := NewScene(cfg, SceneOptions{Headless: true, FixedDt: time.Second / 60, LogOut: io.Discard}, input)
	app.UseModules(ControlsModule{RadiusStep: 1, OrbitStep: 1})
	t.Cleanup(func() { _ = app.Shutdown() })
	return app, input
}

func TestControls_Radius(t *testing.T) {
	app, input := controlsScene(t)
	field := requireField(t, app)

	input.set(KeyR, true)
	app.Step()
	assert.Equal(t, float32(11), field.Radius())

	input.set(KeyR, true)
	app.Step()
	assert.Equal(t, float32(11), field.Radius(), "holding R changes the radius once")

	input.set(KeyR, false)
	for i := 0; i < 11; i++ {
		input.set(KeyF, true)
		app.Step()
		input.set(KeyF, false)
	}
	assert.Equal(t, float32(1), field.Radius(), "a radius of 0 is rejected")
}

func TestControls_PauseOrbitQuit(t *testing.T) {
	app, input := controlsScene(t)
	field := requireField(t, app)
	rig, ok := Resource[CameraRig](app)
	require.True(t, ok)

	input.set(KeySpace, true)
	app.Step()
	assert.True(t, field.Paused)
	input.set(KeySpace, false)

	input.set(KeyLeft, true)
	app.RunFrames(6)
	assert.InDelta(t, -0.1, rig.Angle(), 1e-5)
	input.set(KeyLeft, false)

	input.set(KeyEscape, true)
	app.Step()
	assert.True(t, app.Quitting())
}
