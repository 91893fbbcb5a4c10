// Package svg provides the SVG document machinery used by the board
// plotter: affine transform parsing and composition, id-unique document
// loading, style surgery, unit conversion, and content cropping. It
// operates on beevik/etree trees so elements keep parent links, which
// the transform resolution walk depends on.
package svg

import "math"

// Matrix is a 3x3 homogeneous 2D transform, row-major, last row [0 0 1].
// Values follow standard SVG semantics: composing a local transform onto
// an ancestor chain is ancestor.Mul(local).
type Matrix [3][3]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Mul returns m x n.
func (m Matrix) Mul(n Matrix) Matrix {
	var out Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return out
}

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	px := m[0][0]*x + m[0][1]*y + m[0][2]
	py := m[1][0]*x + m[1][1]*y + m[1][2]
	pw := m[2][0]*x + m[2][1]*y + m[2][2]
	return px / pw, py / pw
}

// Translate returns a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		{1, 0, x},
		{0, 1, y},
		{0, 0, 1},
	}
}

// Scale returns a scale matrix.
func Scale(x, y float64) Matrix {
	return Matrix{
		{x, 0, 0},
		{0, y, 0},
		{0, 0, 1},
	}
}

// Rotate returns a rotation matrix about the origin. Angle in degrees.
func Rotate(deg float64) Matrix {
	rad := deg * math.Pi / 180
	cos := math.Cos(rad)
	sin := math.Sin(rad)
	return Matrix{
		{cos, -sin, 0},
		{sin, cos, 0},
		{0, 0, 1},
	}
}

// RotateAbout returns a rotation about the pivot (cx, cy). Equivalent to
// translate(cx,cy) * rotate(deg) * translate(-cx,-cy).
func RotateAbout(deg, cx, cy float64) Matrix {
	return Translate(cx, cy).Mul(Rotate(deg)).Mul(Translate(-cx, -cy))
}

// SkewX returns a horizontal skew matrix. Angle in degrees.
func SkewX(deg float64) Matrix {
	return Matrix{
		{1, math.Tan(deg * math.Pi / 180), 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// SkewY returns a vertical skew matrix. Angle in degrees.
func SkewY(deg float64) Matrix {
	return Matrix{
		{1, 0, 0},
		{math.Tan(deg * math.Pi / 180), 1, 0},
		{0, 0, 1},
	}
}
