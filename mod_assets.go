package leaffall

import (
	"fmt"
	"image"

	"github.com/gekko3d/leaffall/leaves"
	"github.com/google/uuid"
)

type AssetId string

type meshKey struct {
	variant  int
	segments int
}

// AssetServer owns the CPU copies of shared geometry and textures. Leaf meshes
// are built once per (variant, segments) pair and shared by every group.
type AssetServer struct {
	meshes         map[AssetId]*leaves.Mesh
	meshByKey      map[meshKey]AssetId
	textures       map[AssetId]TextureAsset
	textureByLabel map[string]AssetId
}

type TextureAsset struct {
	Label  string
	Pixels *image.RGBA
	// Fallback is set when the source file could not be used.
	Fallback bool
}

type AssetServerModule struct{}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		meshes:         make(map[AssetId]*leaves.Mesh),
		meshByKey:      make(map[meshKey]AssetId),
		textures:       make(map[AssetId]TextureAsset),
		textureByLabel: make(map[string]AssetId),
	}
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(NewAssetServer())
}

// LeafMesh returns the shared plane for variant, building it on first use.
func (server *AssetServer) LeafMesh(variant, segments int) (AssetId, error) {
	key := meshKey{variant: variant, segments: segments}
	if id, ok := server.meshByKey[key]; ok {
		return id, nil
	}
	mesh, err := leaves.PlaneMesh(variant, segments)
	if err != nil {
		return "", fmt.Errorf("leaf mesh %d/%d: %w", variant, segments, err)
	}
	id := makeAssetId()
	server.meshes[id] = &mesh
	server.meshByKey[key] = id
	return id, nil
}

func (server *AssetServer) Mesh(id AssetId) (*leaves.Mesh, bool) {
	m, ok := server.meshes[id]
	return m, ok
}

func (server *AssetServer) MeshCount() int { return len(server.meshes) }

// AddTexture stores img under label, replacing an earlier texture of the same label.
func (server *AssetServer) AddTexture(label string, img *image.RGBA, fallback bool) AssetId {
	if id, ok := server.textureByLabel[label]; ok {
		server.textures[id] = TextureAsset{Label: label, Pixels: img, Fallback: fallback}
		return id
	}
	id := makeAssetId()
	server.textures[id] = TextureAsset{Label: label, Pixels: img, Fallback: fallback}
	server.textureByLabel[label] = id
	return id
}

func (server *AssetServer) Texture(id AssetId) (TextureAsset, bool) {
	tx, ok := server.textures[id]
	return tx, ok
}

// TextureByLabel looks a texture up by the label it was added with.
func (server *AssetServer) TextureByLabel(label string) (TextureAsset, bool) {
	id, ok := server.textureByLabel[label]
	if !ok {
		return TextureAsset{}, false
	}
	return server.Texture(id)
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
