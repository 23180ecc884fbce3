package ebitengpu

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/chime/gpu"
)

// --- Kage shader sources ---
// All shaders use //kage:unit pixels.
//
// Depth is stored as linear view depth in [0, 1] of the far plane, split
// over two 8-bit channels. Light accumulation is stored scaled by
// lightScale so that bright lights survive 8-bit targets.

const lightScale = 1.0 / 16

const depthShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	v := clamp(color.r, 0, 1) * 255
	hi := floor(v)
	return vec4(hi/255, v-hi, 0, 1)
}
`

const pointLightShaderSrc = `//kage:unit pixels
package main

var Color vec3
var Position vec3
var Proj vec4
var Far float
var Scale float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	e := imageSrc0At(src)
	d := e.r + e.g/255
	if d >= 1 {
		return vec4(0)
	}
	uv := (src - imageSrc0Origin()) / imageSrc0Size()
	ndc := vec2(uv.x*2-1, 1-uv.y*2)
	z := -d * Far
	p := vec3(-z*(ndc.x+Proj.z)/Proj.x, -z*(ndc.y+Proj.w)/Proj.y, z)
	n := normalize(imageSrc2At(src).xyz*2 - 1)
	l := Position - p
	dist2 := max(dot(l, l), 0.0001)
	ndotl := max(dot(n, normalize(l)), 0)
	c := imageSrc1At(src).rgb * Color * (ndotl / dist2) * Scale
	return vec4(c, 1)
}
`

const tonemapShaderSrc = `//kage:unit pixels
package main

var Scale float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src).rgb * Scale
	c = c / (1 + c)
	return vec4(c, 1)
}
`

func shaderSource(kind gpu.ProgramKind) (string, bool) {
	switch kind {
	case gpu.ProgramGBuffer:
		return depthShaderSrc, true
	case gpu.ProgramPointLight:
		return pointLightShaderSrc, true
	case gpu.ProgramTonemap:
		return tonemapShaderSrc, true
	default:
		return "", false
	}
}

// program is a fixed-function program. shader is nil for kinds drawn with
// plain DrawTriangles.
type program struct {
	kind   gpu.ProgramKind
	shader *ebiten.Shader
}

func (p *program) Kind() gpu.ProgramKind { return p.kind }

func (p *program) Release() {
	if p.shader != nil {
		p.shader.Deallocate()
	}
}

func compile(kind gpu.ProgramKind) (*program, error) {
	p := &program{kind: kind}
	src, ok := shaderSource(kind)
	if !ok {
		if kind != gpu.ProgramSolidColor {
			return nil, fmt.Errorf("ebitengpu: unknown program kind %d", kind)
		}
		return p, nil
	}
	s, err := ebiten.NewShader([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("ebitengpu: compile %s shader: %w", kind, err)
	}
	p.shader = s
	return p, nil
}
