package leaves

import (
	"fmt"
)

// MeshVertex is one vertex of a leaf plane: object-space position and atlas UV.
type MeshVertex struct {
	Pos [3]float32
	UV  [2]float32
}

// Mesh is the geometry shared by every instance of one leaf variant.
type Mesh struct {
	Variant  int
	Segments int
	Vertices []MeshVertex
	Indices  []uint32
}

// PlaneMesh tessellates a unit plane in the XY plane, facing +z, into a
// segments x segments grid and maps it onto the atlas cell of variant.
// Vertex (s, t) has index s + t*(segments+1); row t=0 is the top edge.
func PlaneMesh(variant, segments int) (Mesh, error) {
	uvs, err := ComputeUV(variant, segments)
	if err != nil {
		return Mesh{}, fmt.Errorf("plane mesh: %w", err)
	}

	stride := segments + 1
	step := 1 / float32(segments)
	m := Mesh{
		Variant:  variant,
		Segments: segments,
		Vertices: make([]MeshVertex, stride*stride),
		Indices:  make([]uint32, 0, segments*segments*6),
	}
	for t := 0; t < stride; t++ {
		y := 0.5 - float32(t)*step
		for s := 0; s < stride; s++ {
			i := s + t*stride
			m.Vertices[i] = MeshVertex{
				Pos: [3]float32{float32(s)*step - 0.5, y, 0},
				UV:  [2]float32{uvs[i*2], uvs[i*2+1]},
			}
		}
	}
	for t := 0; t < segments; t++ {
		for s := 0; s < segments; s++ {
			a := uint32(s + stride*t)
			b := uint32(s + stride*(t+1))
			c := uint32(s + 1 + stride*(t+1))
			d := uint32(s + 1 + stride*t)
			m.Indices = append(m.Indices, a, b, d, b, c, d)
		}
	}
	return m, nil
}
