package leaffall

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	app := NewApp()

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	got, ok := Resource[MockResource2](app)
	require.True(t, ok)
	assert.Same(t, resource2, got)

	assert.Panics(t, func() { app.addResources(MockResource1{}) }, "resources are pointers")
}

func TestApp_SystemInjection(t *testing.T) {
	app := NewApp()
	app.addResources(NewMockResource1("a"), NewMockResource2("b"))

	var seen []string
	app.UseSystem(System(func(r1 *MockResource1, cmd *Commands, r2 *MockResource2) {
		seen = append(seen, r1.name+r2.name)
		require.NotNil(t, cmd)
	}))
	app.Step()
	assert.Equal(t, []string{"ab"}, seen)
	assert.Equal(t, uint64(1), app.Frame())
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewApp()
	app.UseSystem(System(func(*MockResource1) {}))
	msg := func() (msg string) {
		defer func() { msg, _ = recover().(string) }()
		app.Step()
		return ""
	}()
	assert.Contains(t, msg, "Unable to resolve System dependency")
	assert.Contains(t, msg, "MockResource1")
}

func TestApp_StagesRunInOrder(t *testing.T) {
	app := NewApp()
	var order []string
	record := func(name string) func() {
		return func() { order = append(order, name) }
	}
	app.UseSystem(System(record("render")).InStage(Render))
	app.UseSystem(System(record("update")).InStage(Update))
	app.UseSystem(System(record("prelude")).InStage(Prelude))
	app.UseSystem(System(record("update2")).InStage(Update))

	custom := Stage{Name: "Simulate"}
	app.UseStage(custom, AfterStage(Update))
	app.UseSystem(System(record("simulate")).InStage(custom))

	app.Step()
	assert.Equal(t, []string{"prelude", "update", "update2", "simulate", "render"}, order)

	assert.Panics(t, func() { app.UseStage(custom, BeforeStage(Render)) }, "duplicate stage")
	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, BeforeStage(Stage{Name: "missing"})) })
	assert.Panics(t, func() { app.UseSystem(System(record("x")).InStage(Stage{Name: "missing"})) })
}

func TestApp_RunStopsOnQuit(t *testing.T) {
	app := NewApp()
	app.UseSystem(System(func(app *App, cmd *Commands) {
		if app.Frame() == 4 {
			cmd.Quit()
		}
	}))
	app.Run()
	assert.Equal(t, uint64(5), app.Frame())
	assert.True(t, app.Quitting())
	assert.Equal(t, 0, app.RunFrames(3), "a quitting app runs no more frames")
}

func TestApp_RunFrames(t *testing.T) {
	app := NewApp()
	assert.Equal(t, 7, app.RunFrames(7))
	assert.Equal(t, uint64(7), app.Frame())
}

func TestApp_ShutdownRunsCleanupsInReverse(t *testing.T) {
	app := NewApp()
	var order []int
	errA := errors.New("a")
	app.AddCleanup(func() error { order = append(order, 1); return errA })
	app.AddCleanup(func() error { order = append(order, 2); return nil })

	err := app.Shutdown()
	assert.ErrorIs(t, err, errA)
	assert.Equal(t, []int{2, 1}, order)

	require.NoError(t, app.Shutdown(), "cleanups run once")
	assert.Equal(t, []int{2, 1}, order)
}
