package leaves

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	AtlasColumns = 4
	AtlasRows    = 2
	VariantCount = AtlasColumns * AtlasRows
)

// AtlasCell selects one leaf from the shared texture sheet.
type AtlasCell struct {
	Offset mgl32.Vec2
	Repeat mgl32.Vec2
}

// Min and Max bound the cell in atlas UV space.
func (c AtlasCell) Min() mgl32.Vec2 { return c.Offset }
func (c AtlasCell) Max() mgl32.Vec2 { return c.Offset.Add(c.Repeat) }

// Overlaps reports whether two cells share any interior area.
func (c AtlasCell) Overlaps(o AtlasCell) bool {
	aMin, aMax := c.Min(), c.Max()
	bMin, bMax := o.Min(), o.Max()
	return aMin.X() < bMax.X() && bMin.X() < aMax.X() &&
		aMin.Y() < bMax.Y() && bMin.Y() < aMax.Y()
}

// Row 0 holds variants 0-3 at the bottom of the sheet (v=0), row 1 holds 4-7.
var atlasCells = func() [VariantCount]AtlasCell {
	var cells [VariantCount]AtlasCell
	repeat := mgl32.Vec2{1.0 / AtlasColumns, 1.0 / AtlasRows}
	for i := range cells {
		col, row := i%AtlasColumns, i/AtlasColumns
		cells[i] = AtlasCell{
			Offset: mgl32.Vec2{float32(col) * repeat.X(), float32(row) * repeat.Y()},
			Repeat: repeat,
		}
	}
	return cells
}()

func ValidVariant(variant int) bool {
	return variant >= 0 && variant < VariantCount
}

// Cell returns the atlas cell of a leaf variant.
func Cell(variant int) (AtlasCell, error) {
	if !ValidVariant(variant) {
		return AtlasCell{}, fmt.Errorf("%w: %d", ErrInvalidVariant, variant)
	}
	return atlasCells[variant], nil
}

// Cells returns a copy of the full atlas table.
func Cells() [VariantCount]AtlasCell {
	return atlasCells
}

// ComputeUV builds the texture coordinates of a segments x segments plane
// remapped into the cell of the given variant. Vertex (s, t) is stored at
// (s + t*(segments+1))*2, matching the vertex order of PlaneMesh. v is
// flipped so grid row 0 samples the top of the cell.
func ComputeUV(variant, segments int) ([]float32, error) {
	if segments < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSegments, segments)
	}
	cell, err := Cell(variant)
	if err != nil {
		return nil, err
	}

	stride := segments + 1
	uvs := make([]float32, stride*stride*2)
	for t := 0; t < stride; t++ {
		for s := 0; s < stride; s++ {
			u := float32(s) / float32(segments)
			v := 1 - float32(t)/float32(segments)
			i := (s + t*stride) * 2
			uvs[i] = u*cell.Repeat.X() + cell.Offset.X()
			uvs[i+1] = v*cell.Repeat.Y() + cell.Offset.Y()
		}
	}
	return uvs, nil
}
