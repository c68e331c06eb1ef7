package scenegraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Compose builds the local matrix translate(t) × rotate(r) × scale(s).
//
// Parameters:
//   - t: translation
//   - r: rotation (unit quaternion)
//   - s: per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed matrix (column-major)
func Compose(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t.X(), t.Y(), t.Z()).
		Mul4(r.Mat4()).
		Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
}

// Decompose splits a column-major transform matrix into translation, rotation
// (as a unit quaternion), and scale. Assumes no shear; Compose of the result
// reproduces the input to floating-point tolerance for TRS-representable
// matrices. Used when a source node supplies a matrix instead of separate TRS.
//
// Parameters:
//   - m: the matrix to decompose
//
// Returns:
//   - mgl32.Vec3: translation
//   - mgl32.Quat: rotation (normalized)
//   - mgl32.Vec3: scale
func Decompose(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	t := mgl32.Vec3{m[12], m[13], m[14]}

	sx := vectorLength(m[0], m[1], m[2])
	sy := vectorLength(m[4], m[5], m[6])
	sz := vectorLength(m[8], m[9], m[10])
	s := mgl32.Vec3{sx, sy, sz}

	// Guard against degenerate columns before normalizing.
	if sx < 1e-4 {
		sx = 1
	}
	if sy < 1e-4 {
		sy = 1
	}
	if sz < 1e-4 {
		sz = 1
	}

	r := matrixToQuaternion([9]float32{
		m[0] / sx, m[1] / sx, m[2] / sx,
		m[4] / sy, m[5] / sy, m[6] / sy,
		m[8] / sz, m[9] / sz, m[10] / sz,
	})

	return t, r, s
}

// vectorLength computes the length of a 3D vector.
func vectorLength(x, y, z float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y + z*z)))
}

// matrixToQuaternion converts a 3x3 rotation matrix to a normalized quaternion.
// Columns are passed flattened as [c0x, c0y, c0z, c1x, c1y, c1z, c2x, c2y, c2z],
// i.e. column-major like the Mat4 it was cut from.
func matrixToQuaternion(m [9]float32) mgl32.Quat {
	// Reindex into row-major terms for the standard trace method.
	r00, r10, r20 := m[0], m[1], m[2]
	r01, r11, r21 := m[3], m[4], m[5]
	r02, r12, r22 := m[6], m[7], m[8]

	trace := r00 + r11 + r22

	var x, y, z, w float32

	if trace > 0 {
		s := float32(math.Sqrt(float64(trace+1.0))) * 2
		w = 0.25 * s
		x = (r21 - r12) / s
		y = (r02 - r20) / s
		z = (r10 - r01) / s
	} else if r00 > r11 && r00 > r22 {
		s := float32(math.Sqrt(float64(1.0+r00-r11-r22))) * 2
		w = (r21 - r12) / s
		x = 0.25 * s
		y = (r01 + r10) / s
		z = (r02 + r20) / s
	} else if r11 > r22 {
		s := float32(math.Sqrt(float64(1.0+r11-r00-r22))) * 2
		w = (r02 - r20) / s
		x = (r01 + r10) / s
		y = 0.25 * s
		z = (r12 + r21) / s
	} else {
		s := float32(math.Sqrt(float64(1.0+r22-r00-r11))) * 2
		w = (r10 - r01) / s
		x = (r02 + r20) / s
		y = (r12 + r21) / s
		z = 0.25 * s
	}

	q := mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
	if q.Len() > 1e-4 {
		q = q.Normalize()
	}
	return q
}
