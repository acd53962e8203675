package leaffall

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gekko3d/leaffall/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryModule_WritesFrames(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.Window = 4
	cfg.Telemetry.CSVPath = filepath.Join(t.TempDir(), "out", "frames.csv")
	app := headlessScene(t, cfg)

	ft, ok := Resource[FrameTelemetry](app)
	require.True(t, ok)
	app.RunFrames(10)
	assert.Equal(t, uint64(10), ft.Collector.Total())
	assert.Len(t, ft.Collector.Window(), 4)

	require.NoError(t, app.Shutdown())

	f, err := os.Open(cfg.Telemetry.CSVPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := telemetry.ReadCSV(f)
	require.NoError(t, err)
	require.Len(t, records, 10)
	for i, r := range records {
		assert.Equal(t, uint64(i+1), r.Frame)
		assert.Equal(t, 200, r.Leaves)
		assert.InDelta(t, 1000.0/60, r.DtMs, 0.01)
	}
}

func TestTelemetryModule_PeriodicSummary(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.LogEvery = 5
	app := headlessScene(t, cfg)
	ft, _ := Resource[FrameTelemetry](app)

	app.RunFrames(4)
	assert.Zero(t, ft.LastSummary().Frames)
	app.RunFrames(1)
	assert.Equal(t, 5, ft.LastSummary().Frames)
}

func TestWriterLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger("leaffall", false, &out, &errOut)

	l.Debugf("hidden %d", 1)
	l.Infof("radius %d", 3)
	l.Warnf("atlas %s", "fallback")
	assert.NotContains(t, out.String(), "hidden")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "[leaffall] INFO: radius 3"))
	assert.Contains(t, errOut.String(), "[leaffall] WARN: atlas fallback")

	l.SetDebug(true)
	l.Debugf("shown")
	assert.Contains(t, out.String(), "[leaffall] DEBUG: shown")
}
