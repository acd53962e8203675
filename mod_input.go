package leaffall

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyR int = iota
	KeyF
	KeySpace
	KeyEscape
	KeyLeft
	KeyRight
	keyCount
)

type InputModule struct{}

type Input struct {
	Pressed [keyCount]bool

	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	cmd.UseSystem(
		System(inputSystem).
			InStage(Prelude),
	)
}

func inputSystem(s *WindowState, input *Input) {
	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		input.set(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
}

// set records the key state for this frame and derives the edge flags.
func (input *Input) set(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

var keyToGlfw = map[int]glfw.Key{
	KeyR:      glfw.KeyR,
	KeyF:      glfw.KeyF,
	KeySpace:  glfw.KeySpace,
	KeyEscape: glfw.KeyEscape,
	KeyLeft:   glfw.KeyLeft,
	KeyRight:  glfw.KeyRight,
}

// ControlsModule maps keys onto the scene: R and F grow and shrink the leaf
// volume, Space pauses the simulation, Left and Right orbit the camera and
// Escape quits.
type ControlsModule struct {
	RadiusStep float32
	OrbitStep  float32 // radians per second while held
}

type controls struct {
	radiusStep float32
	orbitStep  float32
}

func (mod ControlsModule) Install(app *App, cmd *Commands) {
	c := &controls{radiusStep: mod.RadiusStep, orbitStep: mod.OrbitStep}
	if c.radiusStep <= 0 {
		c.radiusStep = 1
	}
	if c.orbitStep <= 0 {
		c.orbitStep = 1
	}
	cmd.AddResources(c)
	cmd.UseSystem(
		System(controlsSystem).
			InStage(Prelude),
	)
}

func controlsSystem(input *Input, c *controls, field *LeafField, rig *CameraRig, t *Time, cmd *Commands) {
	if input.JustPressed[KeyEscape] {
		cmd.Quit()
		return
	}
	if input.JustPressed[KeySpace] {
		field.Paused = !field.Paused
		cmd.Logger().Infof("Leaves paused: %v", field.Paused)
	}

	delta := float32(0)
	if input.JustPressed[KeyR] {
		delta += c.radiusStep
	}
	if input.JustPressed[KeyF] {
		delta -= c.radiusStep
	}
	if delta != 0 {
		radius := field.Radius() + delta
		if err := field.SetRadius(radius); err != nil {
			cmd.Logger().Warnf("Radius %.1f rejected: %v", radius, err)
		} else {
			cmd.Logger().Infof("Leaf radius set to %.1f", radius)
		}
	}

	if input.Pressed[KeyLeft] {
		rig.Orbit(-c.orbitStep * t.DtSeconds())
	}
	if input.Pressed[KeyRight] {
		rig.Orbit(c.orbitStep * t.DtSeconds())
	}
}
