package leaffall

import (
	"log/slog"

	"github.com/gekko3d/leaffall/telemetry"
)

// FrameTelemetry collects one record per frame around the leaf update.
type FrameTelemetry struct {
	Collector *telemetry.Collector
	CSV       *telemetry.CSVWriter
	LogEvery  int

	lastSummary telemetry.WindowStats
}

// LastSummary is the most recent periodic summary.
func (ft *FrameTelemetry) LastSummary() telemetry.WindowStats { return ft.lastSummary }

type TelemetryModule struct {
	Window   int
	LogEvery int
	CSVPath  string
}

func (mod TelemetryModule) Install(app *App, cmd *Commands) {
	csv, err := telemetry.CreateCSV(mod.CSVPath, mod.Window)
	if err != nil {
		app.Logger().Errorf("Telemetry: %v", err)
		panic(err)
	}
	ft := &FrameTelemetry{
		Collector: telemetry.NewCollector(mod.Window),
		CSV:       csv,
		LogEvery:  mod.LogEvery,
	}
	cmd.AddResources(ft)
	cmd.AddCleanup(ft.CSV.Close)
	if mod.CSVPath != "" {
		app.Logger().Infof("Telemetry: writing frames to %s", mod.CSVPath)
	}

	cmd.UseSystem(System(telemetryStartSystem).InStage(PreUpdate))
	cmd.UseSystem(System(telemetryRecordSystem).InStage(PostUpdate))
}

func telemetryStartSystem(ft *FrameTelemetry) {
	ft.Collector.StartTick()
}

func telemetryRecordSystem(t *Time, field *LeafField, ft *FrameTelemetry, cmd *Commands) {
	rec := telemetry.FrameRecord{
		Frame:     ft.Collector.Total() + 1,
		DtMs:      float64(t.Dt.Microseconds()) / 1000,
		TickMs:    float64(ft.Collector.TickElapsed().Microseconds()) / 1000,
		Leaves:    field.Count,
		Respawned: field.Stats.Respawned,
		Landed:    field.Stats.Landed,
		Resting:   field.Stats.Resting,
		Degraded:  field.Stats.Degraded,
	}
	ft.Collector.Record(rec)
	if err := ft.CSV.Write(rec); err != nil {
		cmd.Logger().Warnf("Telemetry: %v", err)
	}

	if ft.LogEvery > 0 && rec.Frame%uint64(ft.LogEvery) == 0 {
		ft.lastSummary = ft.Collector.Summary()
		slog.Info("leaves", "window", ft.lastSummary)
	}
}
