package leaffall

import (
	"time"
)

type Time struct {
	Time    time.Time
	Dt      time.Duration
	Elapsed time.Duration

	// FixedDt replaces the wall clock when positive.
	FixedDt time.Duration
	// MaxDt caps a single frame step, 0 disables the cap.
	MaxDt time.Duration
}

// DtSeconds is the frame step in seconds.
func (t *Time) DtSeconds() float32 {
	return float32(t.Dt.Seconds())
}

type TimeModule struct {
	FixedDt time.Duration
	MaxDt   time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time:    time.Now(),
		Dt:      0,
		FixedDt: mod.FixedDt,
		MaxDt:   mod.MaxDt,
	})
	cmd.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(timeResource *Time) {
	if timeResource.FixedDt > 0 {
		timeResource.Dt = timeResource.FixedDt
		timeResource.Time = timeResource.Time.Add(timeResource.FixedDt)
	} else {
		now := time.Now()
		timeResource.Dt = now.Sub(timeResource.Time)
		timeResource.Time = now
	}
	if timeResource.MaxDt > 0 && timeResource.Dt > timeResource.MaxDt {
		timeResource.Dt = timeResource.MaxDt
	}
	timeResource.Elapsed += timeResource.Dt
}
