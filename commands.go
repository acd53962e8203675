package leaffall

// Commands is the handle modules and systems use to change the app while it
// is being built or stepped.
type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// AddCleanup registers fn to run on Shutdown, after cleanups added later.
func (cmd *Commands) AddCleanup(fn func() error) *Commands {
	cmd.app.AddCleanup(fn)
	return cmd
}

// Frame is the number of completed frames.
func (cmd *Commands) Frame() uint64 {
	return cmd.app.Frame()
}

// Quit asks the app to stop once the current frame completes.
func (cmd *Commands) Quit() {
	cmd.app.Quit()
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
