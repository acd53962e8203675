package telemetry

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RingKeepsNewest(t *testing.T) {
	c := NewCollector(3)
	_, ok := c.Last()
	assert.False(t, ok)

	for i := uint64(1); i <= 5; i++ {
		c.Record(FrameRecord{Frame: i})
	}
	window := c.Window()
	require.Len(t, window, 3)
	assert.Equal(t, []uint64{3, 4, 5}, []uint64{window[0].Frame, window[1].Frame, window[2].Frame})
	assert.Equal(t, uint64(5), c.Total())

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(5), last.Frame)
}

func TestCollector_Summary(t *testing.T) {
	c := NewCollector(4)
	assert.Equal(t, WindowStats{}, c.Summary())

	ticks := []float64{1, 2, 3, 4}
	for i, tick := range ticks {
		c.Record(FrameRecord{
			Frame:     uint64(i + 1),
			DtMs:      20,
			TickMs:    tick,
			Leaves:    800,
			Respawned: 2,
			Landed:    1,
			Resting:   i,
		})
	}
	s := c.Summary()
	assert.Equal(t, 4, s.Frames)
	assert.Equal(t, uint64(1), s.FirstFrame)
	assert.Equal(t, uint64(4), s.LastFrame)
	assert.InDelta(t, 50, s.FPS, 1e-9)
	assert.InDelta(t, 2.5, s.TickMeanMs, 1e-9)
	assert.InDelta(t, 2, s.TickP50Ms, 1e-9)
	assert.InDelta(t, 4, s.TickP90Ms, 1e-9)
	assert.Equal(t, 8, s.Respawned)
	assert.Equal(t, 4, s.Landed)
	assert.Equal(t, 3, s.Resting)
	assert.Equal(t, 800, s.LeavesCount)
}

func TestCollector_SingleFrameHasNoSpread(t *testing.T) {
	c := NewCollector(0)
	c.Record(FrameRecord{Frame: 1, DtMs: 16, TickMs: 0.5})
	s := c.Summary()
	assert.Equal(t, 0.0, s.TickStdMs)
	assert.InDelta(t, 0.5, s.TickMeanMs, 1e-9)
}

func TestCSVWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf, 2)
	recs := []FrameRecord{
		{Frame: 1, DtMs: 16.6, TickMs: 0.2, Leaves: 10, Respawned: 1},
		{Frame: 2, DtMs: 16.7, TickMs: 0.3, Leaves: 10, Landed: 2, Resting: 2},
		{Frame: 3, DtMs: 16.5, TickMs: 0.1, Leaves: 10, Degraded: 10},
	}
	for _, r := range recs {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())

	assert.Equal(t, 1, strings.Count(buf.String(), "frame,"), "header written once")
	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestCreateCSV(t *testing.T) {
	w, err := CreateCSV("", 10)
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.NoError(t, w.Write(FrameRecord{}))
	assert.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "out", "frames.csv")
	w, err = CreateCSV(path, 10)
	require.NoError(t, err)
	require.NoError(t, w.Write(FrameRecord{Frame: 7}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(7), got[0].Frame)
}
