package leaffall

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeModule_FixedStep(t *testing.T) {
	app := NewApp().UseModules(TimeModule{FixedDt: 20 * time.Millisecond})
	tm, ok := Resource[Time](app)
	require.True(t, ok)

	app.RunFrames(3)
	assert.Equal(t, 20*time.Millisecond, tm.Dt)
	assert.Equal(t, 60*time.Millisecond, tm.Elapsed)
	assert.InDelta(t, 0.02, tm.DtSeconds(), 1e-7)
}

func TestTimeModule_MaxDt(t *testing.T) {
	app := NewApp().UseModules(TimeModule{FixedDt: 250 * time.Millisecond, MaxDt: 100 * time.Millisecond})
	tm, _ := Resource[Time](app)

	app.Step()
	assert.Equal(t, 100*time.Millisecond, tm.Dt)
	assert.Equal(t, 100*time.Millisecond, tm.Elapsed)
}

func TestTimeModule_WallClock(t *testing.T) {
	app := NewApp().UseModules(TimeModule{})
	tm, _ := Resource[Time](app)

	app.Step()
	assert.GreaterOrEqual(t, tm.Dt, time.Duration(0))
	assert.Equal(t, tm.Dt, tm.Elapsed)
}
