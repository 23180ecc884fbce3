package chime

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/gpu"
)

// Mesh is an immutable indexed vertex buffer pair.
type Mesh struct {
	Vertices    gpu.Buffer
	VertexCount int
	Stride      int
	Indices     gpu.Buffer
	IndexCount  int
	Topology    gpu.Topology

	boundsMin mgl32.Vec3
	boundsMax mgl32.Vec3
}

// NewStaticMesh uploads triangle-list geometry for DrawStaticModel.
func NewStaticMesh(dev gpu.Device, vertices []gpu.StaticVertex, indices []uint32) (*Mesh, error) {
	data := make([]byte, len(vertices)*gpu.StaticVertexSize)
	for i, v := range vertices {
		gpu.PutStaticVertex(data[i*gpu.StaticVertexSize:], v)
	}
	m, err := newMesh(dev, data, gpu.StaticVertexSize, len(vertices), indices, gpu.TopologyTriangleList)
	if err != nil {
		return nil, err
	}
	if len(vertices) > 0 {
		m.boundsMin, m.boundsMax = vertices[0].Position, vertices[0].Position
		for _, v := range vertices[1:] {
			m.boundsMin, m.boundsMax = minVec3(m.boundsMin, v.Position), maxVec3(m.boundsMax, v.Position)
		}
	}
	return m, nil
}

// NewLineMesh uploads line-list geometry for DrawLineMesh.
func NewLineMesh(dev gpu.Device, vertices []gpu.LineVertex, indices []uint32) (*Mesh, error) {
	data := make([]byte, len(vertices)*gpu.LineVertexSize)
	for i, v := range vertices {
		gpu.PutLineVertex(data[i*gpu.LineVertexSize:], v)
	}
	return newMesh(dev, data, gpu.LineVertexSize, len(vertices), indices, gpu.TopologyLineList)
}

func newMesh(dev gpu.Device, vertexData []byte, stride, vertexCount int, indices []uint32, topology gpu.Topology) (*Mesh, error) {
	if vertexCount == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("chime: empty mesh (%d vertices, %d indices)", vertexCount, len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= vertexCount {
			return nil, fmt.Errorf("chime: index %d out of range for %d vertices", idx, vertexCount)
		}
	}
	vb, err := dev.NewBuffer(gpu.BufferDesc{
		Size:  len(vertexData),
		Usage: gpu.UsageImmutable,
		Bind:  gpu.BindVertexBuffer,
	}, vertexData)
	if err != nil {
		return nil, fmt.Errorf("chime: create vertex buffer: %w", err)
	}
	indexData := gpu.EncodeIndices(indices)
	ib, err := dev.NewBuffer(gpu.BufferDesc{
		Size:  len(indexData),
		Usage: gpu.UsageImmutable,
		Bind:  gpu.BindIndexBuffer,
	}, indexData)
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("chime: create index buffer: %w", err)
	}
	return &Mesh{
		Vertices:    vb,
		VertexCount: vertexCount,
		Stride:      stride,
		Indices:     ib,
		IndexCount:  len(indices),
		Topology:    topology,
	}, nil
}

// Bounds returns the local-space bounding box of a static mesh.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	return m.boundsMin, m.boundsMax
}

// Release frees the device buffers.
func (m *Mesh) Release() {
	m.Indices.Release()
	m.Vertices.Release()
}

// --- Textures ---

// NewTextureFromImage uploads an 8-bit RGBA image as an immutable shader
// resource. *image.RGBA is uploaded as is; NRGBA, paletted and gray images
// are converted to premultiplied RGBA. Other pixel formats fail with
// gpu.ErrUnsupportedFormat.
func NewTextureFromImage(dev gpu.Device, img image.Image) (gpu.Texture, error) {
	b := img.Bounds()
	var pix []byte
	switch src := img.(type) {
	case *image.RGBA:
		pix = packRows(src.Pix, src.Stride, b.Dx()*4, b.Dy())
	case *image.NRGBA, *image.Paletted, *image.Gray:
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		pix = dst.Pix
	default:
		return nil, fmt.Errorf("chime: texture from %T: %w", img, gpu.ErrUnsupportedFormat)
	}
	tex, err := dev.NewTexture(gpu.TextureDesc{
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: gpu.FormatRGBA8,
		Usage:  gpu.UsageImmutable,
		Bind:   gpu.BindShaderResource,
	}, pix)
	if err != nil {
		return nil, fmt.Errorf("chime: create texture: %w", err)
	}
	return tex, nil
}

func packRows(pix []byte, stride, rowBytes, rows int) []byte {
	if stride == rowBytes {
		return pix[:rowBytes*rows]
	}
	out := make([]byte, 0, rowBytes*rows)
	for y := 0; y < rows; y++ {
		out = append(out, pix[y*stride:y*stride+rowBytes]...)
	}
	return out
}

func minVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

func maxVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}
