package leaves

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the per-frame view-projection transform handed to a pool. The
// inverse is computed once so respawning many leaves in one frame does not
// invert the matrix per particle.
type Camera struct {
	ViewProj mgl32.Mat4
	Inverse  mgl32.Mat4
	valid    bool
}

// NewCamera wraps a view-projection matrix. A matrix with non-finite entries
// or a zero determinant produces a Camera whose Valid reports false.
func NewCamera(viewProj mgl32.Mat4) Camera {
	c := Camera{ViewProj: viewProj}
	for _, f := range viewProj {
		if !finite(f) {
			return c
		}
	}
	det := viewProj.Det()
	if det == 0 || !finite(det) {
		return c
	}
	c.Inverse = viewProj.Inv()
	for _, f := range c.Inverse {
		if !finite(f) {
			return c
		}
	}
	c.valid = true
	return c
}

// PerspectiveCamera builds a camera looking from eye to target.
func PerspectiveCamera(eye, target, up mgl32.Vec3, fovyDeg, aspect, near, far float32) Camera {
	proj := mgl32.Perspective(mgl32.DegToRad(fovyDeg), aspect, near, far)
	view := mgl32.LookAtV(eye, target, up)
	return NewCamera(proj.Mul4(view))
}

func (c Camera) Valid() bool { return c.valid }

// Project maps a world point to normalized device coordinates. ok is false
// when the point is on or behind the eye plane, or the result is not finite.
func (c Camera) Project(p mgl32.Vec3) (ndc mgl32.Vec3, ok bool) {
	clip := c.ViewProj.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 0 || !finite(w) {
		return mgl32.Vec3{}, false
	}
	ndc = clip.Vec3().Mul(1 / w)
	return ndc, finiteVec3(ndc)
}

// Unproject maps a point in normalized device coordinates back to world space.
func (c Camera) Unproject(ndc mgl32.Vec3) (mgl32.Vec3, bool) {
	if !c.valid {
		return mgl32.Vec3{}, false
	}
	world := c.Inverse.Mul4x1(ndc.Vec4(1))
	w := world.W()
	if w == 0 || !finite(w) {
		return mgl32.Vec3{}, false
	}
	p := world.Vec3().Mul(1 / w)
	return p, finiteVec3(p)
}

// InBounds reports whether every NDC axis lies in [-1-eps, 1+eps].
func InBounds(ndc mgl32.Vec3, eps float32) bool {
	lim := 1 + eps
	for _, f := range ndc {
		if f < -lim || f > lim {
			return false
		}
	}
	return true
}
