package leaffall

import (
	"io"
	"time"

	"github.com/gekko3d/leaffall/config"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneOptions select how a scene is assembled from its configuration.
type SceneOptions struct {
	// Headless skips the window, input and renderer.
	Headless bool
	// FixedDt drives the clock at a constant step, e.g. for headless runs.
	FixedDt time.Duration
	Debug   bool
	// LogOut receives the app log, stdout when nil.
	LogOut io.Writer
}

// maxFrameStep keeps a stalled window from teleporting leaves across the volume.
const maxFrameStep = 100 * time.Millisecond

// SceneModules lists the modules of a leaf scene in install order.
func SceneModules(cfg *config.Config, opts SceneOptions) []Module {
	mods := []Module{
		LoggingModule{Prefix: "leaffall", Debug: opts.Debug, Out: opts.LogOut, Err: opts.LogOut},
		TimeModule{FixedDt: opts.FixedDt, MaxDt: maxFrameStep},
	}
	if !opts.Headless {
		mods = append(mods,
			NewPlatformWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title),
			InputModule{},
		)
	}
	mods = append(mods,
		AssetServerModule{},
		CameraModule{
			Position:   mgl32.Vec3(cfg.Camera.Position),
			Target:     mgl32.Vec3(cfg.Camera.Target),
			FovY:       cfg.Camera.FovY,
			Near:       cfg.Camera.Near,
			Far:        cfg.Camera.Far,
			OrbitSpeed: cfg.Camera.OrbitSpeed,
		},
		LeavesModule{Config: cfg.Leaves},
		TelemetryModule{
			Window:   cfg.Telemetry.Window,
			LogEvery: cfg.Telemetry.LogEvery,
			CSVPath:  cfg.Telemetry.CSVPath,
		},
	)
	if !opts.Headless {
		mods = append(mods,
			ControlsModule{RadiusStep: 1, OrbitStep: 1},
			RenderModule{
				Material: cfg.Material,
				Atlas:    cfg.Atlas,
				VSync:    cfg.Window.VSync,
			},
		)
	}
	return mods
}

// NewScene builds an app running the configured leaf scene. Resources are
// added before the first module installs.
func NewScene(cfg *config.Config, opts SceneOptions, resources ...any) *App {
	b := NewAppBuilder()
	if len(resources) > 0 {
		b.UseResources(resources...)
	}
	return b.UseModule(SceneModules(cfg, opts)...).Build()
}
