package chime

import (
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/gpu/gputest"
)

func TestNewStaticMeshUploads(t *testing.T) {
	dev := gputest.New()
	cube := CubeData(2)

	m, err := NewStaticMesh(dev, cube.Vertices, cube.Indices)
	require.NoError(t, err)

	assert.Equal(t, 24, m.VertexCount)
	assert.Equal(t, 36, m.IndexCount)
	assert.Equal(t, gpu.StaticVertexSize, m.Stride)
	assert.Equal(t, gpu.TopologyTriangleList, m.Topology)

	vb := m.Vertices.(*gputest.Buffer)
	assert.Equal(t, gpu.UsageImmutable, vb.Desc().Usage)
	assert.Equal(t, gpu.BindVertexBuffer, vb.Desc().Bind)
	assert.Equal(t, cube.Vertices[5], gpu.ReadStaticVertex(vb.Data[5*gpu.StaticVertexSize:]))

	ib := m.Indices.(*gputest.Buffer)
	assert.Equal(t, gpu.BindIndexBuffer, ib.Desc().Bind)
	assert.Equal(t, cube.Indices[7], binary.LittleEndian.Uint32(ib.Data[7*4:]))

	lo, hi := m.Bounds()
	assertVec3(t, mgl32.Vec3{-1, -1, -1}, lo)
	assertVec3(t, mgl32.Vec3{1, 1, 1}, hi)
}

func TestNewMeshRejectsBadGeometry(t *testing.T) {
	dev := gputest.New()

	_, err := NewStaticMesh(dev, nil, []uint32{0})
	assert.ErrorContains(t, err, "empty mesh")

	verts := make([]gpu.StaticVertex, 3)
	_, err = NewStaticMesh(dev, verts, nil)
	assert.ErrorContains(t, err, "empty mesh")

	_, err = NewStaticMesh(dev, verts, []uint32{0, 1, 3})
	assert.ErrorContains(t, err, "index 3 out of range for 3 vertices")
	assert.Zero(t, dev.Count(gputest.OpNewBuffer), "nothing uploaded")
}

func TestNewLineMesh(t *testing.T) {
	dev := gputest.New()
	verts, idx := GridLines(false)

	m, err := NewLineMesh(dev, verts, idx)
	require.NoError(t, err)
	assert.Equal(t, gpu.TopologyLineList, m.Topology)
	assert.Equal(t, gpu.LineVertexSize, m.Stride)
	assert.Equal(t, 6, m.IndexCount)

	m.Release()
	assert.True(t, m.Vertices.(*gputest.Buffer).Released)
	assert.True(t, m.Indices.(*gputest.Buffer).Released)
}

// --- Textures ---

func TestNewTextureFromRGBA(t *testing.T) {
	dev := gputest.New()
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(1, 0, color.RGBA{10, 20, 30, 255})

	tex, err := NewTextureFromImage(dev, img)
	require.NoError(t, err)

	gt := tex.(*gputest.Texture)
	assert.Equal(t, 2, gt.Desc().Width)
	assert.Equal(t, gpu.FormatRGBA8, gt.Desc().Format)
	assert.Equal(t, gpu.BindShaderResource, gt.Desc().Bind)
	assert.Equal(t, []byte{0, 0, 0, 0, 10, 20, 30, 255}, gt.Pixels)
}

func TestNewTextureFromSubImage(t *testing.T) {
	dev := gputest.New()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 2, color.RGBA{1, 2, 3, 4})
	sub := img.SubImage(image.Rect(2, 2, 3, 4)).(*image.RGBA)

	tex, err := NewTextureFromImage(dev, sub)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0}, tex.(*gputest.Texture).Pixels)
}

func TestNewTextureFromNRGBAPremultiplies(t *testing.T) {
	dev := gputest.New()
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{200, 100, 0, 128})

	tex, err := NewTextureFromImage(dev, img)
	require.NoError(t, err)

	px := tex.(*gputest.Texture).Pixels
	assert.Equal(t, byte(128), px[3])
	assert.InDelta(t, 100, int(px[0]), 1)
	assert.InDelta(t, 50, int(px[1]), 1)
}

func TestNewTextureUnsupportedFormat(t *testing.T) {
	img := image.NewRGBA64(image.Rect(0, 0, 1, 1))
	_, err := NewTextureFromImage(gputest.New(), img)
	assert.ErrorIs(t, err, gpu.ErrUnsupportedFormat)
}

// --- Models ---

func TestLoadStaticModel(t *testing.T) {
	dev := gputest.New()
	floor := PlaneData(4, 2)
	floor.Material.Diffuse = &gputest.Texture{}

	m, err := LoadStaticModel(dev, []SectionData{CubeData(1), floor})
	require.NoError(t, err)

	require.Len(t, m.Sections, 2)
	assert.Nil(t, m.Sections[0].Material.Diffuse)
	assert.Same(t, floor.Material.Diffuse, m.Sections[1].Material.Diffuse)
	assertVec3(t, mgl32.Vec3{-2, -0.5, -1}, m.BoundsMin)
	assertVec3(t, mgl32.Vec3{2, 0.5, 1}, m.BoundsMax)
	assertVec3(t, mgl32.Vec3{4, 1, 2}, m.Size())

	first := m.Sections[0].Mesh
	m.Release()
	assert.Empty(t, m.Sections)
	assert.True(t, first.Vertices.(*gputest.Buffer).Released)
	assert.False(t, floor.Material.Diffuse.(*gputest.Texture).Released, "textures belong to the caller")
}

func TestLoadStaticModelUnsupportedTopology(t *testing.T) {
	dev := gputest.New()
	lines := CubeData(1)
	lines.Topology = gpu.TopologyLineList

	_, err := LoadStaticModel(dev, []SectionData{CubeData(1), lines})
	require.ErrorIs(t, err, gpu.ErrUnsupportedTopology)
	assert.Contains(t, err.Error(), "section 1")

	for _, c := range dev.Calls {
		if c.Op == gputest.OpNewBuffer {
			assert.True(t, c.Buffer.Released, "earlier sections released on failure")
		}
	}
}

func TestLoadStaticModelBadSection(t *testing.T) {
	dev := gputest.New()
	_, err := LoadStaticModel(dev, []SectionData{{Topology: gpu.TopologyTriangleList}})
	assert.ErrorContains(t, err, "model section 0: chime: empty mesh")
}
