package leaffall

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/leaffall/config"
	"github.com/gekko3d/leaffall/render"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderModule draws every leaf group with one instanced draw per group. It
// needs the window, camera, asset and leaves modules installed first.
type RenderModule struct {
	Material   config.MaterialConfig
	Atlas      config.AtlasConfig
	VSync      bool
	ClearColor wgpu.Color
}

type leafRenderer struct {
	gpu      *GpuState
	pass     *render.LeafPass
	material render.Material
	clear    wgpu.Color
	groups   []int // pass group index per LeafField group
	skipped  int   // frames not presented
}

func (mod RenderModule) Install(app *App, cmd *Commands) {
	if err := claimRenderer(app, RendererWGPU); err != nil {
		app.Logger().Errorf("Render: %v", err)
		panic(err)
	}

	ws, ok := Resource[WindowState](app)
	if !ok {
		panic("render module: PlatformWindowModule must be installed first")
	}
	field, ok := Resource[LeafField](app)
	if !ok {
		panic("render module: LeavesModule must be installed first")
	}
	assets := mustAssets(app)

	gpu, err := createGpuState(ws, mod.VSync)
	if err != nil {
		app.Logger().Errorf("GPU: %v", err)
		panic(err)
	}

	files := render.AtlasFiles{
		Dir:          mod.Atlas.Dir,
		Color:        mod.Atlas.Color,
		Displacement: mod.Atlas.Displacement,
		Normal:       mod.Atlas.Normal,
		Opacity:      mod.Atlas.Opacity,
	}
	atlas, err := render.LoadAtlas(files, mod.Atlas.Resolution)
	if atlas == nil {
		gpu.release()
		panic(fmt.Sprintf("render module: %v", err))
	}
	if err != nil {
		app.Logger().Warnf("Atlas: using generated maps: %v", err)
	}
	for m := render.MapColor; m <= render.MapOpacity; m++ {
		assets.AddTexture("atlas/"+m.String(), atlas.Maps[m], atlas.Fallback[m])
	}

	pass, err := render.NewLeafPass(gpu.device, gpu.queue, gpu.surfaceConfig.Format, atlas)
	if err != nil {
		gpu.release()
		app.Logger().Errorf("Leaf pass: %v", err)
		panic(err)
	}

	r := &leafRenderer{
		gpu:      gpu,
		pass:     pass,
		material: materialFromConfig(mod.Material),
		clear:    mod.ClearColor,
	}
	if r.clear == (wgpu.Color{}) {
		r.clear = wgpu.Color{R: 0.02, G: 0.02, B: 0.03, A: 1}
	}
	if err := r.bindGroups(field, assets); err != nil {
		pass.Release()
		gpu.release()
		panic(fmt.Sprintf("render module: %v", err))
	}
	if err := pass.Resize(gpu.surfaceConfig.Width, gpu.surfaceConfig.Height); err != nil {
		app.Logger().Warnf("Depth buffer: %v", err)
	}

	cmd.AddResources(r)
	cmd.AddCleanup(func() error {
		r.pass.Release()
		r.gpu.release()
		return nil
	})
	app.Logger().Infof("Renderer: %d leaf groups, atlas %dpx, surface %v", pass.GroupCount(), atlas.Size, gpu.surfaceConfig.Format)

	cmd.UseSystem(System(leafUploadSystem).InStage(PreRender))
	cmd.UseSystem(System(leafRenderSystem).InStage(Render))
}

func materialFromConfig(m config.MaterialConfig) render.Material {
	return render.Material{
		Color:             m.Color,
		Metalness:         m.Metalness,
		Roughness:         m.Roughness,
		DisplacementScale: m.DisplacementScale,
		DisplacementBias:  m.DisplacementBias,
		AlphaTest:         m.AlphaTest,
		EnvIntensity:      m.EnvIntensity,
		LightDir:          mgl32.Vec3{-0.3, -1, -0.5},
	}
}

func (r *leafRenderer) bindGroups(field *LeafField, assets *AssetServer) error {
	for _, g := range field.Groups {
		mesh, ok := assets.Mesh(g.Mesh)
		if !ok {
			return fmt.Errorf("group %d: mesh %s not loaded", g.Variant, g.Mesh)
		}
		if err := r.pass.AddMesh(r.gpu.queue, string(g.Mesh), mesh); err != nil {
			return fmt.Errorf("group %d: %w", g.Variant, err)
		}
		idx, err := r.pass.AddGroup(r.gpu.queue, string(g.Mesh), g.Offset, g.Pool.Len())
		if err != nil {
			return fmt.Errorf("group %d: %w", g.Variant, err)
		}
		r.groups = append(r.groups, idx)
	}
	return nil
}

func leafUploadSystem(r *leafRenderer, field *LeafField, rig *CameraRig, cmd *Commands) {
	if err := r.pass.UpdateGlobals(r.gpu.queue, render.NewGlobals(rig.ViewProj, r.material)); err != nil {
		cmd.Logger().Warnf("Globals upload: %v", err)
	}
	for i, g := range field.Groups {
		if err := r.pass.UploadInstances(r.gpu.queue, r.groups[i], g.Instances); err != nil {
			cmd.Logger().Warnf("Instance upload: %v", err)
		}
	}
}

func leafRenderSystem(r *leafRenderer, ws *WindowState, cmd *Commands) {
	if ws.resized {
		ws.resized = false
		if r.gpu.resize(ws.WindowWidth, ws.WindowHeight) {
			if err := r.pass.Resize(uint32(ws.WindowWidth), uint32(ws.WindowHeight)); err != nil {
				cmd.Logger().Warnf("Depth buffer: %v", err)
			}
		}
	}
	if ws.WindowWidth <= 0 || ws.WindowHeight <= 0 {
		r.skipped++
		return
	}

	nextTexture, err := r.gpu.surface.GetCurrentTexture()
	if err != nil {
		r.skipped++
		cmd.Logger().Debugf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		cmd.Logger().Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := r.gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		cmd.Logger().Errorf("CreateCommandEncoder failed: %v", err)
		return
	}
	defer encoder.Release()

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: r.clear,
			},
		},
		DepthStencilAttachment: r.pass.DepthAttachment(),
	})
	r.pass.Draw(renderPass)
	err = renderPass.End()
	renderPass.Release()
	if err != nil {
		cmd.Logger().Errorf("Leaf pass End failed: %v", err)
		return
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		cmd.Logger().Errorf("Encoder Finish failed: %v", err)
		return
	}
	defer cmdBuffer.Release()

	r.gpu.queue.Submit(cmdBuffer)
	r.gpu.surface.Present()
}
