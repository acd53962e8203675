package render

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

type atlasTextures struct {
	textures [mapCount]*wgpu.Texture
	views    [mapCount]*wgpu.TextureView
	sampler  *wgpu.Sampler
}

func uploadAtlas(device *wgpu.Device, queue *wgpu.Queue, atlas *AtlasImages) (*atlasTextures, error) {
	if atlas == nil {
		return nil, fmt.Errorf("atlas images are required")
	}
	at := &atlasTextures{}
	size := uint32(atlas.Size)
	extent := wgpu.Extent3D{
		Width:              size,
		Height:             size,
		DepthOrArrayLayers: 1,
	}
	for m := AtlasMap(0); m < mapCount; m++ {
		img := atlas.Maps[m]
		if img == nil {
			at.release()
			return nil, fmt.Errorf("%s map missing", m)
		}
		tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "LeafAtlas_" + m.String(),
			Size:          extent,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        wgpu.TextureFormatRGBA8Unorm,
			Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		})
		if err != nil {
			at.release()
			return nil, fmt.Errorf("%s texture: %w", m, err)
		}
		at.textures[m] = tex

		err = queue.WriteTexture(
			tex.AsImageCopy(),
			img.Pix,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(img.Stride),
				RowsPerImage: size,
			},
			&extent,
		)
		if err != nil {
			at.release()
			return nil, fmt.Errorf("%s upload: %w", m, err)
		}

		at.views[m], err = tex.CreateView(nil)
		if err != nil {
			at.release()
			return nil, err
		}
	}

	var err error
	at.sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0.,
		LodMaxClamp:   1.,
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: 1,
	})
	if err != nil {
		at.release()
		return nil, err
	}
	return at, nil
}

func (at *atlasTextures) release() {
	for i := range at.views {
		if at.views[i] != nil {
			at.views[i].Release()
		}
		if at.textures[i] != nil {
			at.textures[i].Release()
		}
	}
	if at.sampler != nil {
		at.sampler.Release()
	}
}
