package leaffall

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// Module installs resources and systems into an App.
type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	modules          []Module
	stages           []Stage
	systemsStateless map[string][]systemFn
	resources        map[reflect.Type]any

	frame    uint64
	quitting bool
	cleanups []func() error
}

func NewApp() *App {
	app := &App{
		resources:        make(map[reflect.Type]any),
		systemsStateless: make(map[string][]systemFn),
	}
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.initStage(stage)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// UseModules installs modules in order.
func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, module := range modules {
		app.modules = append(app.modules, module)
		module.Install(app, cmd)
	}
	return app
}

// Frame is the number of completed frames.
func (app *App) Frame() uint64 { return app.frame }

// Quit stops the loop after the current frame.
func (app *App) Quit() { app.quitting = true }

func (app *App) Quitting() bool { return app.quitting }

// Run executes frames until a system asks to quit.
func (app *App) Run() {
	app.Logger().Infof("Running %d modules in %d stages", len(app.modules), len(app.stages))
	for !app.quitting {
		app.Step()
	}
	app.Logger().Infof("Stopped after %d frames", app.frame)
}

// RunFrames executes at most n frames. It returns the number executed.
func (app *App) RunFrames(n int) int {
	ran := 0
	for ran < n && !app.quitting {
		app.Step()
		ran++
	}
	return ran
}

// AddCleanup registers fn to run on Shutdown. Cleanups run in reverse order.
func (app *App) AddCleanup(fn func() error) {
	app.cleanups = append(app.cleanups, fn)
}

// Shutdown runs the registered cleanups once and joins their errors.
func (app *App) Shutdown() error {
	var errs []error
	for i := len(app.cleanups) - 1; i >= 0; i-- {
		if err := app.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.cleanups = nil
	return errors.Join(errs...)
}

// Step runs every stage once.
func (app *App) Step() {
	for _, stage := range app.stages {
		for _, system := range app.systemsStateless[stage.Name] {
			app.callSystem(system)
		}
	}
	app.frame++
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the resource of type T installed in app.
func Resource[T any](app *App) (*T, bool) {
	res, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	typed, ok := res.(*T)
	return typed, ok
}

func (app *App) hasResource(t reflect.Type) bool {
	_, ok := app.resources[t]
	return ok
}

func (app *App) callSystem(system systemFn) {
	app.callSystemInternal(system)
}

var (
	typeOfCommands = reflect.TypeOf(Commands{})
	typeOfApp      = reflect.TypeOf(App{})
)

func (app *App) callSystemInternal(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.unresolved(systemType, systemValue, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if underlyingType == typeOfApp {
			args[i] = reflect.ValueOf(app)
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.unresolved(systemType, systemValue, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) unresolved(systemType reflect.Type, systemValue reflect.Value, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}
