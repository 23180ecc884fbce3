package chime

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/gpu"
)

// Material holds the textures a model section samples in the GBuffer pass.
// Nil textures fall back to the pipeline's 1x1 defaults.
type Material struct {
	Diffuse           gpu.Texture
	Normal            gpu.Texture
	MetallicRoughness gpu.Texture
}

// Section is one mesh of a model with its material.
type Section struct {
	Mesh     *Mesh
	Material Material
}

// SectionData is decoded geometry for one model section.
type SectionData struct {
	Topology gpu.Topology
	Vertices []gpu.StaticVertex
	Indices  []uint32
	Material Material
}

// StaticModel is a set of sections drawn with one world transform.
type StaticModel struct {
	Sections  []Section
	BoundsMin mgl32.Vec3
	BoundsMax mgl32.Vec3
}

// NewStaticModel builds a model from already uploaded sections and computes
// its bounds.
func NewStaticModel(sections []Section) *StaticModel {
	m := &StaticModel{Sections: sections}
	for i, s := range sections {
		lo, hi := s.Mesh.Bounds()
		if i == 0 {
			m.BoundsMin, m.BoundsMax = lo, hi
			continue
		}
		m.BoundsMin, m.BoundsMax = minVec3(m.BoundsMin, lo), maxVec3(m.BoundsMax, hi)
	}
	return m
}

// LoadStaticModel uploads decoded sections. Only triangle lists are
// supported; any other topology fails with gpu.ErrUnsupportedTopology.
func LoadStaticModel(dev gpu.Device, data []SectionData) (*StaticModel, error) {
	sections := make([]Section, 0, len(data))
	release := func() {
		for _, s := range sections {
			s.Mesh.Release()
		}
	}
	for i, d := range data {
		if d.Topology != gpu.TopologyTriangleList {
			release()
			return nil, fmt.Errorf("chime: model section %d: %w", i, gpu.ErrUnsupportedTopology)
		}
		mesh, err := NewStaticMesh(dev, d.Vertices, d.Indices)
		if err != nil {
			release()
			return nil, fmt.Errorf("chime: model section %d: %w", i, err)
		}
		sections = append(sections, Section{Mesh: mesh, Material: d.Material})
	}
	return NewStaticModel(sections), nil
}

// Size returns the extent of the bounding box.
func (m *StaticModel) Size() mgl32.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// Release frees every section mesh. Textures are owned by the caller.
func (m *StaticModel) Release() {
	for _, s := range m.Sections {
		s.Mesh.Release()
	}
	m.Sections = nil
}
