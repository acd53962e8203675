package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/gekko3d/leaffall"
	"github.com/gekko3d/leaffall/config"
)

func init() {
	// GLFW and the surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML file overlaid on the built-in defaults")
	headless := flag.Bool("headless", false, "simulate without a window")
	frames := flag.Int("frames", 0, "stop after this many frames (0 = until closed; headless defaults to 600)")
	debug := flag.Bool("debug", false, "enable debug logging")
	telemetryPath := flag.String("telemetry", "", "write per-frame CSV telemetry to this path")
	mode := flag.String("mode", "", "override leaves.bounds_mode (radial-floor | frustum-relative)")
	count := flag.Int("count", 0, "override leaves.count")
	seed := flag.Int64("seed", 0, "override leaves.seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Leaves.BoundsMode = *mode
	}
	if *count > 0 {
		cfg.Leaves.Count = *count
	}
	if *seed != 0 {
		cfg.Leaves.Seed = *seed
	}
	if *telemetryPath != "" {
		cfg.Telemetry.CSVPath = *telemetryPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Summaries are structured; the app log stays line-oriented.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	opts := leaffall.SceneOptions{
		Headless: *headless,
		Debug:    *debug,
	}
	if *headless {
		opts.FixedDt = time.Second / 60
		if *frames <= 0 {
			*frames = 600
		}
	}

	app := leaffall.NewScene(cfg, opts)
	if *frames > 0 {
		app.RunFrames(*frames)
	} else {
		app.Run()
	}

	if ft, ok := leaffall.Resource[leaffall.FrameTelemetry](app); ok {
		slog.Info("finished", "frames", app.Frame(), "window", ft.Collector.Summary())
	}
	if err := app.Shutdown(); err != nil {
		app.Logger().Errorf("Shutdown: %v", err)
		os.Exit(1)
	}
}
