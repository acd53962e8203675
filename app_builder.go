package leaffall

// AppBuilder queues modules and installs them together. Modules see the
// resources of every module queued before them.
type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: NewApp()}
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)
	return b
}

// UseResources adds resources before any queued module is installed, e.g. a
// scripted Input in place of the window.
func (b *AppBuilder) UseResources(resources ...any) *AppBuilder {
	b.app.addResources(resources...)
	return b
}

// Build installs the queued modules in the order they were added.
func (b *AppBuilder) Build() *App {
	return b.app.UseModules(b.modules...)
}
