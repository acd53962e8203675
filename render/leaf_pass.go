// Package render draws leaf groups with WebGPU: one instanced, indexed draw
// per group, all sharing a single pipeline and atlas.
package render

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/leaffall/leaves"
	"github.com/gekko3d/leaffall/render/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

const DepthFormat = wgpu.TextureFormatDepth24Plus

// ClipCorrection maps GL clip depth [-w, w] to the WebGPU range [0, w].
var ClipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Globals matches the WGSL Globals uniform.
type Globals struct {
	ViewProj mgl32.Mat4
	Color    [4]float32
	Params   [4]float32 // displacement scale, displacement bias, alpha test, roughness
	Params2  [4]float32 // metalness, environment intensity
	LightDir [4]float32
}

// GroupUniform matches the WGSL Group uniform.
type GroupUniform struct {
	Offset [4]float32
}

// Material is the shading input shared by every leaf.
type Material struct {
	Color             [3]float32
	Metalness         float32
	Roughness         float32
	DisplacementScale float32
	DisplacementBias  float32
	AlphaTest         float32
	EnvIntensity      float32
	LightDir          mgl32.Vec3
}

// NewGlobals packs the camera and material into the uniform layout. viewProj
// uses GL clip depth and is corrected here.
func NewGlobals(viewProj mgl32.Mat4, m Material) Globals {
	light := m.LightDir
	if light.Len() == 0 {
		light = mgl32.Vec3{-0.3, -1, -0.5}
	}
	light = light.Normalize()
	return Globals{
		ViewProj: ClipCorrection.Mul4(viewProj),
		Color:    [4]float32{m.Color[0], m.Color[1], m.Color[2], 1},
		Params:   [4]float32{m.DisplacementScale, m.DisplacementBias, m.AlphaTest, m.Roughness},
		Params2:  [4]float32{m.Metalness, m.EnvIntensity, 0, 0},
		LightDir: [4]float32{light.X(), light.Y(), light.Z(), 0},
	}
}

type meshBuffers struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32
}

type groupBuffers struct {
	mesh           *meshBuffers
	instanceBuffer *wgpu.Buffer
	instanceCap    uint32
	instanceCount  uint32
	uniform        *wgpu.Buffer
	bindGroup      *wgpu.BindGroup
}

// LeafPass owns the leaf pipeline and the GPU copies of meshes and instances.
type LeafPass struct {
	Device   *wgpu.Device
	Pipeline *wgpu.RenderPipeline

	globalsBuffer *wgpu.Buffer
	bindGroup     *wgpu.BindGroup
	atlas         *atlasTextures

	meshes map[string]*meshBuffers
	groups []*groupBuffers

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView
	width        uint32
	height       uint32
}

func NewLeafPass(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat, atlas *AtlasImages) (*LeafPass, error) {
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "LeafShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.LeafWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("leaf shader: %w", err)
	}
	defer shaderModule.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "LeafPipeline",
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(leaves.MeshVertex{})),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{
							Format:         wgpu.VertexFormatFloat32x3,
							Offset:         0,
							ShaderLocation: 0,
						},
						{
							Format:         wgpu.VertexFormatFloat32x2,
							Offset:         12,
							ShaderLocation: 1,
						},
					},
				},
				{
					ArrayStride: uint64(unsafe.Sizeof(leaves.Instance{})),
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{
							Format:         wgpu.VertexFormatFloat32x3,
							Offset:         0,
							ShaderLocation: 2,
						},
						{
							Format:         wgpu.VertexFormatFloat32x3,
							Offset:         12,
							ShaderLocation: 3,
						},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone, // leaves are seen from both sides
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("leaf pipeline: %w", err)
	}

	p := &LeafPass{
		Device:   device,
		Pipeline: pipeline,
		meshes:   make(map[string]*meshBuffers),
	}

	p.globalsBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "LeafGlobals",
		Size:  uint64(unsafe.Sizeof(Globals{})),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		p.Release()
		return nil, err
	}

	p.atlas, err = uploadAtlas(device, queue, atlas)
	if err != nil {
		p.Release()
		return nil, err
	}

	layout := pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	p.bindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "LeafGlobalsBG",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.globalsBuffer, Size: wgpu.WholeSize},
			{Binding: 1, Sampler: p.atlas.sampler},
			{Binding: 2, TextureView: p.atlas.views[MapColor]},
			{Binding: 3, TextureView: p.atlas.views[MapDisplacement]},
			{Binding: 4, TextureView: p.atlas.views[MapNormal]},
			{Binding: 5, TextureView: p.atlas.views[MapOpacity]},
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("leaf bind group: %w", err)
	}
	return p, nil
}

// AddMesh uploads mesh under id. Adding the same id twice is a no-op.
func (p *LeafPass) AddMesh(queue *wgpu.Queue, id string, mesh *leaves.Mesh) error {
	if _, ok := p.meshes[id]; ok {
		return nil
	}
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return fmt.Errorf("mesh %s is empty", id)
	}
	vSize := uint64(len(mesh.Vertices)) * uint64(unsafe.Sizeof(leaves.MeshVertex{}))
	vb, err := p.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "LeafVertexBuffer",
		Size:  vSize,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	iSize := uint64(len(mesh.Indices)) * 4
	ib, err := p.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "LeafIndexBuffer",
		Size:  iSize,
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return err
	}
	if err := queue.WriteBuffer(vb, 0, unsafe.Slice((*byte)(unsafe.Pointer(&mesh.Vertices[0])), vSize)); err != nil {
		vb.Release()
		ib.Release()
		return err
	}
	if err := queue.WriteBuffer(ib, 0, wgpu.ToBytes(mesh.Indices)); err != nil {
		vb.Release()
		ib.Release()
		return err
	}
	p.meshes[id] = &meshBuffers{vertexBuffer: vb, indexBuffer: ib, indexCount: uint32(len(mesh.Indices))}
	return nil
}

// AddGroup registers a leaf group drawn with mesh meshID at offset. It
// returns the group index used by UploadInstances.
func (p *LeafPass) AddGroup(queue *wgpu.Queue, meshID string, offset mgl32.Vec3, capacity int) (int, error) {
	mesh, ok := p.meshes[meshID]
	if !ok {
		return 0, fmt.Errorf("unknown mesh %s", meshID)
	}
	if capacity <= 0 {
		return 0, fmt.Errorf("group capacity must be positive, got %d", capacity)
	}

	g := &groupBuffers{mesh: mesh, instanceCap: uint32(capacity)}
	var err error
	g.instanceBuffer, err = p.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "LeafInstanceBuffer",
		Size:  uint64(capacity) * uint64(unsafe.Sizeof(leaves.Instance{})),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, err
	}
	g.uniform, err = p.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "LeafGroupUniform",
		Size:  uint64(unsafe.Sizeof(GroupUniform{})),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		g.release()
		return 0, err
	}
	gu := GroupUniform{Offset: [4]float32{offset.X(), offset.Y(), offset.Z(), 0}}
	if err := queue.WriteBuffer(g.uniform, 0, unsafe.Slice((*byte)(unsafe.Pointer(&gu)), unsafe.Sizeof(gu))); err != nil {
		g.release()
		return 0, err
	}

	layout := p.Pipeline.GetBindGroupLayout(1)
	defer layout.Release()
	g.bindGroup, err = p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "LeafGroupBG",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: g.uniform, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		g.release()
		return 0, err
	}

	p.groups = append(p.groups, g)
	return len(p.groups) - 1, nil
}

// UpdateGlobals writes the per-frame camera and material uniform.
func (p *LeafPass) UpdateGlobals(queue *wgpu.Queue, globals Globals) error {
	return queue.WriteBuffer(p.globalsBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&globals)), unsafe.Sizeof(globals)))
}

// UploadInstances copies the instance records of group verbatim.
func (p *LeafPass) UploadInstances(queue *wgpu.Queue, group int, instances []leaves.Instance) error {
	if group < 0 || group >= len(p.groups) {
		return fmt.Errorf("unknown group %d", group)
	}
	g := p.groups[group]
	n := uint32(len(instances))
	if n > g.instanceCap {
		return fmt.Errorf("group %d holds %d instances, got %d", group, g.instanceCap, n)
	}
	g.instanceCount = n
	if n == 0 {
		return nil
	}
	size := uint64(n) * uint64(unsafe.Sizeof(leaves.Instance{}))
	return queue.WriteBuffer(g.instanceBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&instances[0])), size))
}

// Resize recreates the depth buffer when the target size changes.
func (p *LeafPass) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return errors.New("zero-sized render target")
	}
	if p.depthView != nil && width == p.width && height == p.height {
		return nil
	}
	p.releaseDepth()

	tex, err := p.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "LeafDepth",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	p.depthTexture, p.depthView = tex, view
	p.width, p.height = width, height
	return nil
}

// DepthAttachment clears depth at the start of the pass.
func (p *LeafPass) DepthAttachment() *wgpu.RenderPassDepthStencilAttachment {
	return &wgpu.RenderPassDepthStencilAttachment{
		View:            p.depthView,
		DepthLoadOp:     wgpu.LoadOpClear,
		DepthStoreOp:    wgpu.StoreOpDiscard,
		DepthClearValue: 1.0,
	}
}

// Draw issues one instanced indexed draw per non-empty group.
func (p *LeafPass) Draw(pass *wgpu.RenderPassEncoder) {
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	for _, g := range p.groups {
		if g.instanceCount == 0 {
			continue
		}
		pass.SetBindGroup(1, g.bindGroup, nil)
		pass.SetVertexBuffer(0, g.mesh.vertexBuffer, 0, wgpu.WholeSize)
		pass.SetVertexBuffer(1, g.instanceBuffer, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(g.mesh.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(g.mesh.indexCount, g.instanceCount, 0, 0, 0)
	}
}

func (p *LeafPass) GroupCount() int { return len(p.groups) }

func (p *LeafPass) releaseDepth() {
	if p.depthView != nil {
		p.depthView.Release()
		p.depthView = nil
	}
	if p.depthTexture != nil {
		p.depthTexture.Release()
		p.depthTexture = nil
	}
}

func (g *groupBuffers) release() {
	if g.bindGroup != nil {
		g.bindGroup.Release()
	}
	if g.uniform != nil {
		g.uniform.Release()
	}
	if g.instanceBuffer != nil {
		g.instanceBuffer.Release()
	}
}

func (p *LeafPass) Release() {
	p.releaseDepth()
	for _, g := range p.groups {
		g.release()
	}
	p.groups = nil
	for _, m := range p.meshes {
		m.vertexBuffer.Release()
		m.indexBuffer.Release()
	}
	p.meshes = nil
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	if p.atlas != nil {
		p.atlas.release()
	}
	if p.globalsBuffer != nil {
		p.globalsBuffer.Release()
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
	}
}
