// Package telemetry records per-frame leaf pool statistics and timings.
package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// FrameRecord is one frame of simulation. Field tags name the CSV columns.
type FrameRecord struct {
	Frame     uint64  `csv:"frame"`
	DtMs      float64 `csv:"dt_ms"`
	TickMs    float64 `csv:"tick_ms"`
	Leaves    int     `csv:"leaves"`
	Respawned int     `csv:"respawned"`
	Landed    int     `csv:"landed"`
	Resting   int     `csv:"resting"`
	Degraded  int     `csv:"degraded"`
}

// Collector keeps the last windowSize frame records in a ring.
type Collector struct {
	windowSize int
	records    []FrameRecord
	writeIndex int
	count      int
	total      uint64

	tickStart time.Time

	// scratch for Summary
	tick []float64
	dt   []float64
}

// NewCollector creates a collector. windowSize below 1 falls back to 60.
func NewCollector(windowSize int) *Collector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &Collector{
		windowSize: windowSize,
		records:    make([]FrameRecord, windowSize),
		tick:       make([]float64, 0, windowSize),
		dt:         make([]float64, 0, windowSize),
	}
}

// StartTick marks the start of the simulation work of a frame.
func (c *Collector) StartTick() {
	c.tickStart = time.Now()
}

// TickElapsed is the time since StartTick.
func (c *Collector) TickElapsed() time.Duration {
	if c.tickStart.IsZero() {
		return 0
	}
	return time.Since(c.tickStart)
}

func (c *Collector) Record(r FrameRecord) {
	c.records[c.writeIndex] = r
	c.writeIndex = (c.writeIndex + 1) % c.windowSize
	if c.count < c.windowSize {
		c.count++
	}
	c.total++
}

// Total is the number of records ever added.
func (c *Collector) Total() uint64 { return c.total }

// Last returns the newest record.
func (c *Collector) Last() (FrameRecord, bool) {
	if c.count == 0 {
		return FrameRecord{}, false
	}
	i := (c.writeIndex - 1 + c.windowSize) % c.windowSize
	return c.records[i], true
}

// Window returns the buffered records, oldest first.
func (c *Collector) Window() []FrameRecord {
	out := make([]FrameRecord, 0, c.count)
	start := (c.writeIndex - c.count + c.windowSize) % c.windowSize
	for i := 0; i < c.count; i++ {
		out = append(out, c.records[(start+i)%c.windowSize])
	}
	return out
}

// WindowStats summarizes the buffered frames.
type WindowStats struct {
	Frames      int
	FirstFrame  uint64
	LastFrame   uint64
	FPS         float64
	TickMeanMs  float64
	TickStdMs   float64
	TickP50Ms   float64
	TickP90Ms   float64
	Respawned   int
	Landed      int
	Resting     int
	Degraded    int
	LeavesCount int
}

func (c *Collector) Summary() WindowStats {
	if c.count == 0 {
		return WindowStats{}
	}
	c.tick = c.tick[:0]
	c.dt = c.dt[:0]

	var s WindowStats
	window := c.Window()
	s.Frames = len(window)
	s.FirstFrame = window[0].Frame
	s.LastFrame = window[len(window)-1].Frame
	for _, r := range window {
		c.tick = append(c.tick, r.TickMs)
		c.dt = append(c.dt, r.DtMs)
		s.Respawned += r.Respawned
		s.Landed += r.Landed
		s.Degraded += r.Degraded
	}
	last := window[len(window)-1]
	s.Resting = last.Resting
	s.LeavesCount = last.Leaves

	s.TickMeanMs, s.TickStdMs = stat.MeanStdDev(c.tick, nil)
	if s.Frames < 2 {
		s.TickStdMs = 0
	}
	sort.Float64s(c.tick)
	s.TickP50Ms = stat.Quantile(0.5, stat.Empirical, c.tick, nil)
	s.TickP90Ms = stat.Quantile(0.9, stat.Empirical, c.tick, nil)

	if meanDt := stat.Mean(c.dt, nil); meanDt > 0 {
		s.FPS = 1000 / meanDt
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frames", s.Frames),
		slog.Uint64("first_frame", s.FirstFrame),
		slog.Uint64("last_frame", s.LastFrame),
		slog.Float64("fps", s.FPS),
		slog.Float64("tick_mean_ms", s.TickMeanMs),
		slog.Float64("tick_p90_ms", s.TickP90Ms),
		slog.Int("leaves", s.LeavesCount),
		slog.Int("respawned", s.Respawned),
		slog.Int("landed", s.Landed),
		slog.Int("resting", s.Resting),
		slog.Int("degraded", s.Degraded),
	)
}
