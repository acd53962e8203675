package leaffall

import "fmt"

// RendererName identifies a concrete renderer module.
type RendererName string

const (
	RendererWGPU RendererName = "wgpu"
)

// RendererTag records which renderer owns the window surface. The leaf pass
// configures the surface once, so a second renderer cannot share it.
type RendererTag struct {
	Name RendererName
}

// claimRenderer registers name as the app's renderer. Claiming the same name
// twice is allowed; a different renderer is refused.
func claimRenderer(app *App, name RendererName) error {
	if tag, ok := Resource[RendererTag](app); ok {
		if tag.Name != name {
			return fmt.Errorf("renderer %s requested, %s already installed", name, tag.Name)
		}
		return nil
	}
	app.addResources(&RendererTag{Name: name})
	return nil
}
