package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Unproject maps a window position to world-space points on the near and far
// clip planes. winX and winY are normalised to [0, 1] with the origin at the
// top-left corner. ok is false when projection*view is singular.
func Unproject(winX, winY float64, view, projection mgl64.Mat4) (near, far mgl64.Vec3, ok bool) {
	vp := projection.Mul4(view)
	if vp.Det() == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	inv := vp.Inv()

	ndcX := 2*winX - 1
	ndcY := 2*(1-winY) - 1 // Flip Y

	n := inv.Mul4x1(mgl64.Vec4{ndcX, ndcY, -1, 1})
	f := inv.Mul4x1(mgl64.Vec4{ndcX, ndcY, 1, 1})
	if n[3] == 0 || f[3] == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}

	near = n.Vec3().Mul(1 / n[3])
	far = f.Vec3().Mul(1 / f[3])
	return near, far, true
}

// SphericalToCartesian converts (azimuth, polar, radius) to a y-up Cartesian
// point. polar is measured from +Y; azimuth from +X toward +Z.
func SphericalToCartesian(azimuth, polar, radius float64) mgl64.Vec3 {
	sp, cp := math.Sincos(polar)
	sa, ca := math.Sincos(azimuth)
	return mgl64.Vec3{
		radius * sp * ca,
		radius * cp,
		radius * sp * sa,
	}
}

// Perspective returns a right-handed projection matrix. fovy is in radians.
func Perspective(fovy, aspect, near, far float64) mgl64.Mat4 {
	return mgl64.Perspective(fovy, aspect, near, far)
}

// LookAt returns a view matrix for an eye looking at center.
func LookAt(eye, center, up mgl64.Vec3) mgl64.Mat4 {
	return mgl64.LookAtV(eye, center, up)
}
