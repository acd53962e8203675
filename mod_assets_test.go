package leaffall

import (
	"image"
	"testing"

	"github.com/gekko3d/leaffall/leaves"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetServer_LeafMeshIsShared(t *testing.T) {
	server := NewAssetServer()

	a, err := server.LeafMesh(3, 2)
	require.NoError(t, err)
	b, err := server.LeafMesh(3, 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, server.MeshCount())

	c, err := server.LeafMesh(3, 4)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, server.MeshCount())

	mesh, ok := server.Mesh(c)
	require.True(t, ok)
	assert.Equal(t, 3, mesh.Variant)
	assert.Equal(t, 4, mesh.Segments)
	assert.Len(t, mesh.Vertices, 25)
	assert.Len(t, mesh.Indices, 4*4*6)
}

func TestAssetServer_LeafMeshRejectsBadInput(t *testing.T) {
	server := NewAssetServer()
	_, err := server.LeafMesh(8, 1)
	assert.ErrorIs(t, err, leaves.ErrInvalidVariant)
	_, err = server.LeafMesh(0, 0)
	assert.Error(t, err)
	assert.Zero(t, server.MeshCount())

	_, ok := server.Mesh("missing")
	assert.False(t, ok)
}

func TestAssetServer_TexturesByLabel(t *testing.T) {
	server := NewAssetServer()
	first := image.NewRGBA(image.Rect(0, 0, 2, 2))
	id := server.AddTexture("color", first, true)

	tx, ok := server.TextureByLabel("color")
	require.True(t, ok)
	assert.Same(t, first, tx.Pixels)
	assert.True(t, tx.Fallback)

	second := image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.Equal(t, id, server.AddTexture("color", second, false), "same label keeps its id")
	tx, ok = server.Texture(id)
	require.True(t, ok)
	assert.Same(t, second, tx.Pixels)
	assert.False(t, tx.Fallback)

	_, ok = server.TextureByLabel("normal")
	assert.False(t, ok)
}
