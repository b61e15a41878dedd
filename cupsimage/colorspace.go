package cupsimage

import "math"

// Row-level colorspace conversion primitives. Each converts count
// pixels from in to out; buffers must not overlap unless documented.
// "White" rows are single-channel luminance (255 = white), "Black"
// rows single-channel ink coverage (255 = full black).

// Luminance weights (percent) used for RGB and CMY grayscale reduction
const (
	lumRed   = 31
	lumGreen = 61
	lumBlue  = 8
)

// WhiteToBlack inverts a luminance row into an ink-coverage row.
func WhiteToBlack(in, out []byte, count int) {
	for i := 0; i < count; i++ {
		out[i] = 255 - in[i]
	}
}

// WhiteToRGB replicates a luminance row into three RGB channels.
func WhiteToRGB(in, out []byte, count int) {
	for i := 0; i < count; i++ {
		out[i*3+0] = in[i]
		out[i*3+1] = in[i]
		out[i*3+2] = in[i]
	}
}

// WhiteToCMY converts a luminance row to equal-part CMY ink.
func WhiteToCMY(in, out []byte, count int) {
	for i := 0; i < count; i++ {
		k := 255 - in[i]
		out[i*3+0] = k
		out[i*3+1] = k
		out[i*3+2] = k
	}
}

// WhiteToCMYK converts a luminance row to black-only CMYK.
func WhiteToCMYK(in, out []byte, count int) {
	for i := 0; i < count; i++ {
		out[i*4+0] = 0
		out[i*4+1] = 0
		out[i*4+2] = 0
		out[i*4+3] = 255 - in[i]
	}
}

// RGBToRGB copies an RGB row unchanged.
func RGBToRGB(in, out []byte, count int) {
	copy(out[:count*3], in[:count*3])
}

// RGBToWhite reduces an RGB row to luminance.
func RGBToWhite(in, out []byte, count int) {
	for i := 0; i < count; i++ {
		r := int(in[i*3+0])
		g := int(in[i*3+1])
		b := int(in[i*3+2])
		out[i] = byte((lumRed*r + lumGreen*g + lumBlue*b) / 100)
	}
}

// RGBToBlack reduces an RGB row to ink coverage.
func RGBToBlack(in, out []byte, count int) {
	RGBToWhite(in, out, count)
	WhiteToBlack(out, out, count)
}

// RGBToCMY inverts each RGB channel into its subtractive complement.
func RGBToCMY(in, out []byte, count int) {
	for i := 0; i < count*3; i++ {
		out[i] = 255 - in[i]
	}
}

// RGBToCMYK converts an RGB row using the standard subtractive
// derivation with full under-color removal.
func RGBToCMYK(in, out []byte, count int) {
	for i := 0; i < count; i++ {
		c := 255 - int(in[i*3+0])
		m := 255 - int(in[i*3+1])
		y := 255 - int(in[i*3+2])

		k := c
		if m < k {
			k = m
		}
		if y < k {
			k = y
		}

		out[i*4+0] = byte(c - k)
		out[i*4+1] = byte(m - k)
		out[i*4+2] = byte(y - k)
		out[i*4+3] = byte(k)
	}
}

// CMYKToWhite reduces a CMYK row to luminance.
func CMYKToWhite(in, out []byte, count int) {
	for i := 0; i < count; i++ {
		c := int(in[i*4+0])
		m := int(in[i*4+1])
		y := int(in[i*4+2])
		k := int(in[i*4+3])

		w := 255 - (lumRed*c+lumGreen*m+lumBlue*y)/100 - k
		out[i] = byte(clampByte(w))
	}
}

// CMYKToBlack reduces a CMYK row to ink coverage.
func CMYKToBlack(in, out []byte, count int) {
	CMYKToWhite(in, out, count)
	WhiteToBlack(out, out, count)
}

// CMYKToCMY folds the black channel back into CMY.
func CMYKToCMY(in, out []byte, count int) {
	for i := 0; i < count; i++ {
		k := int(in[i*4+3])
		out[i*3+0] = byte(clampByte(int(in[i*4+0]) + k))
		out[i*3+1] = byte(clampByte(int(in[i*4+1]) + k))
		out[i*3+2] = byte(clampByte(int(in[i*4+2]) + k))
	}
}

// CMYKToRGB converts a CMYK row to RGB.
func CMYKToRGB(in, out []byte, count int) {
	for i := 0; i < count; i++ {
		k := int(in[i*4+3])
		out[i*3+0] = byte(clampByte(255 - int(in[i*4+0]) - k))
		out[i*3+1] = byte(clampByte(255 - int(in[i*4+1]) - k))
		out[i*3+2] = byte(clampByte(255 - int(in[i*4+2]) - k))
	}
}

// Lut remaps every byte of pixels through a 256-entry lookup table,
// in place. Used for gamma and brightness correction.
func Lut(pixels []byte, lut []byte) {
	if len(lut) < 256 {
		return
	}
	for i, p := range pixels {
		pixels[i] = lut[p]
	}
}

// RGBAdjust applies a saturation and hue adjustment to an RGB row in
// place. Saturation is a percentage (100 = unchanged), hue an angle in
// degrees (0 = unchanged).
func RGBAdjust(pixels []byte, count, saturation, hue int) {
	var mat matrix3
	mat.ident()
	mat.saturate(float64(saturation) * 0.01)
	mat.hueRotate(float64(hue))

	for i := 0; i < count; i++ {
		r := float64(pixels[i*3+0])
		g := float64(pixels[i*3+1])
		b := float64(pixels[i*3+2])

		nr := mat[0][0]*r + mat[1][0]*g + mat[2][0]*b
		ng := mat[0][1]*r + mat[1][1]*g + mat[2][1]*b
		nb := mat[0][2]*r + mat[1][2]*g + mat[2][2]*b

		pixels[i*3+0] = byte(clampByte(int(nr + 0.5)))
		pixels[i*3+1] = byte(clampByte(int(ng + 0.5)))
		pixels[i*3+2] = byte(clampByte(int(nb + 0.5)))
	}
}

// clampByte limits v to the byte range
func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// matrix3 is a 3x3 color transform matrix applied to row vectors.
type matrix3 [3][3]float64

func (m *matrix3) ident() {
	*m = matrix3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// mult sets m to a*m
func (m *matrix3) mult(a matrix3) {
	var t matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				t[i][j] += a[i][k] * m[k][j]
			}
		}
	}
	*m = t
}

// saturate scales chroma around the luminance axis; sat 1.0 is identity,
// 0.0 full grayscale.
func (m *matrix3) saturate(sat float64) {
	const (
		rwgt = 0.3086
		gwgt = 0.6094
		bwgt = 0.0820
	)

	s := matrix3{
		{(1-sat)*rwgt + sat, (1 - sat) * rwgt, (1 - sat) * rwgt},
		{(1 - sat) * gwgt, (1-sat)*gwgt + sat, (1 - sat) * gwgt},
		{(1 - sat) * bwgt, (1 - sat) * bwgt, (1-sat)*bwgt + sat},
	}
	m.mult(s)
}

// hueRotate rotates colors about the gray diagonal by rot degrees while
// preserving luminance.
func (m *matrix3) hueRotate(rot float64) {
	var h matrix3
	h.ident()

	// Rotate the gray vector onto the z axis
	xrs := math.Sqrt2 / 2
	xrc := math.Sqrt2 / 2
	h.xRotate(xrs, xrc)

	yrs := -1.0 / math.Sqrt(3.0)
	yrc := math.Sqrt2 * -yrs
	h.yRotate(yrs, yrc)

	// Shear so the luminance plane is horizontal
	lx, ly, lz := h.apply(0.3086, 0.6094, 0.0820)
	zsx := lx / lz
	zsy := ly / lz
	h.zShear(zsx, zsy)

	// Rotate hue about the z axis
	zrs := math.Sin(rot * math.Pi / 180.0)
	zrc := math.Cos(rot * math.Pi / 180.0)
	h.zRotate(zrs, zrc)

	// Undo the shear and rotations
	h.zShear(-zsx, -zsy)
	h.yRotate(-yrs, yrc)
	h.xRotate(-xrs, xrc)

	m.mult(h)
}

func (m *matrix3) xRotate(rs, rc float64) {
	m.mult(matrix3{
		{1, 0, 0},
		{0, rc, rs},
		{0, -rs, rc},
	})
}

func (m *matrix3) yRotate(rs, rc float64) {
	m.mult(matrix3{
		{rc, 0, -rs},
		{0, 1, 0},
		{rs, 0, rc},
	})
}

func (m *matrix3) zRotate(rs, rc float64) {
	m.mult(matrix3{
		{rc, rs, 0},
		{-rs, rc, 0},
		{0, 0, 1},
	})
}

func (m *matrix3) zShear(dx, dy float64) {
	m.mult(matrix3{
		{1, 0, dx},
		{0, 1, dy},
		{0, 0, 1},
	})
}

// apply transforms the row vector (x, y, z) by the matrix
func (m *matrix3) apply(x, y, z float64) (float64, float64, float64) {
	return x*m[0][0] + y*m[1][0] + z*m[2][0],
		x*m[0][1] + y*m[1][1] + z*m[2][1],
		x*m[0][2] + y*m[1][2] + z*m[2][2]
}
