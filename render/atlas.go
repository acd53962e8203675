package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/gekko3d/leaffall/leaves"
	"golang.org/x/image/draw"
)

// AtlasMap names one of the four maps of the leaf sheet.
type AtlasMap int

const (
	MapColor AtlasMap = iota
	MapDisplacement
	MapNormal
	MapOpacity
	mapCount
)

func (m AtlasMap) String() string {
	switch m {
	case MapColor:
		return "color"
	case MapDisplacement:
		return "displacement"
	case MapNormal:
		return "normal"
	case MapOpacity:
		return "opacity"
	}
	return fmt.Sprintf("AtlasMap(%d)", int(m))
}

// AtlasFiles are the map file names, relative to Dir.
type AtlasFiles struct {
	Dir          string
	Color        string
	Displacement string
	Normal       string
	Opacity      string
}

func (f AtlasFiles) path(m AtlasMap) string {
	var name string
	switch m {
	case MapColor:
		name = f.Color
	case MapDisplacement:
		name = f.Displacement
	case MapNormal:
		name = f.Normal
	case MapOpacity:
		name = f.Opacity
	}
	if name == "" {
		return ""
	}
	return filepath.Join(f.Dir, name)
}

// AtlasImages are the four maps resampled to Size x Size.
type AtlasImages struct {
	Size     int
	Maps     [mapCount]*image.RGBA
	Fallback [mapCount]bool
}

// LoadAtlas decodes and resamples every map. A map that cannot be read is
// replaced by a generated one and its error is returned alongside; the
// returned images are always complete.
func LoadAtlas(files AtlasFiles, size int) (*AtlasImages, error) {
	if size <= 0 {
		return nil, fmt.Errorf("atlas size must be positive, got %d", size)
	}
	atlas := &AtlasImages{Size: size}
	var errs []error
	for m := AtlasMap(0); m < mapCount; m++ {
		img, err := loadMap(files.path(m), size)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s map: %w", m, err))
			img = FallbackMap(m, size)
			atlas.Fallback[m] = true
		}
		atlas.Maps[m] = img
	}
	return atlas, errors.Join(errs...)
}

func loadMap(path string, size int) (*image.RGBA, error) {
	if path == "" {
		return nil, errors.New("no file configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return Resample(src, size), nil
}

// Resample scales src to a size x size RGBA image.
func Resample(src image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	b := src.Bounds()
	if b.Dx() == size && b.Dy() == size {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// FallbackMap generates a stand-in map: an ellipse per atlas cell for
// opacity, a flat normal, mid-height displacement and a warm autumn color.
func FallbackMap(m AtlasMap, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	var fill color.RGBA
	switch m {
	case MapColor:
		fill = color.RGBA{R: 214, G: 128, B: 52, A: 255}
	case MapDisplacement:
		fill = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	case MapNormal:
		fill = color.RGBA{R: 128, G: 128, B: 255, A: 255}
	case MapOpacity:
		drawCellEllipses(img)
		return img
	}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)
	return img
}

// drawCellEllipses paints a white ellipse filling 80% of each atlas cell on
// black. Texture v grows upward while image rows grow downward.
func drawCellEllipses(img *image.RGBA) {
	size := img.Bounds().Dx()
	for _, cell := range leaves.Cells() {
		cx := (cell.Offset.X() + cell.Repeat.X()/2) * float32(size)
		cy := (1 - (cell.Offset.Y() + cell.Repeat.Y()/2)) * float32(size)
		rx := cell.Repeat.X() / 2 * 0.8 * float32(size)
		ry := cell.Repeat.Y() / 2 * 0.8 * float32(size)
		x0, x1 := int(cx-rx), int(cx+rx)
		y0, y1 := int(cy-ry), int(cy+ry)
		for y := max(y0, 0); y <= min(y1, size-1); y++ {
			for x := max(x0, 0); x <= min(x1, size-1); x++ {
				dx := (float32(x) + 0.5 - cx) / rx
				dy := (float32(y) + 0.5 - cy) / ry
				if dx*dx+dy*dy <= 1 {
					img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
				}
			}
		}
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
}
