// Package cupsimage loads raster images into a device-independent pixel
// container, converting the source colorspace to the caller's requested
// colorspace and deriving the physical resolution from embedded
// metadata. Format backends register themselves with the package and
// are selected by magic-byte sniffing.
package cupsimage

// Colorspace identifies the channel layout and semantics of pixel data.
// The numeric values mirror the channel counts: negative values are
// subtractive colorspaces, positive values additive.
type Colorspace int

const (
	ColorspaceCMYK  Colorspace = -4 // cyan, magenta, yellow, black
	ColorspaceCMY   Colorspace = -3 // cyan, magenta, yellow
	ColorspaceBlack Colorspace = -1 // black (ink coverage)
	ColorspaceWhite Colorspace = 1  // white (luminance)
	ColorspaceRGB   Colorspace = 3  // red, green, blue

	// ColorspaceRGBOrCMYK defers to the source: color images load as
	// RGB, four-component images as CMYK. Valid only as a preference,
	// never as an image colorspace.
	ColorspaceRGBOrCMYK Colorspace = 4
)

// Depth returns the number of bytes per pixel.
func (c Colorspace) Depth() int {
	if c < 0 {
		return int(-c)
	}
	return int(c)
}

// String returns the colorspace name
func (c Colorspace) String() string {
	switch c {
	case ColorspaceCMYK:
		return "CMYK"
	case ColorspaceCMY:
		return "CMY"
	case ColorspaceBlack:
		return "Black"
	case ColorspaceWhite:
		return "White"
	case ColorspaceRGB:
		return "RGB"
	case ColorspaceRGBOrCMYK:
		return "RGBOrCMYK"
	}
	return "Unknown"
}

// Maximum image dimensions accepted from any backend
const (
	MaxWidth  = 0x07FFFFFF
	MaxHeight = 0x07FFFFFF
)

// Image is the device-independent pixel container filled by a format
// backend. Dimensions and resolution are committed once, before any row
// is written; rows arrive through PutRow in increasing order.
type Image struct {
	Colorspace Colorspace
	XSize      int // width in pixels
	YSize      int // height in pixels
	XPPI       int // horizontal resolution, pixels per inch
	YPPI       int // vertical resolution, pixels per inch

	pixels []byte
}

// NewImage creates an empty image container with the historical default
// resolution. Format backends overwrite geometry and resolution before
// writing rows.
func NewImage() *Image {
	return &Image{
		XPPI: 128,
		YPPI: 128,
	}
}

// Depth returns the number of bytes per pixel of the image colorspace.
func (img *Image) Depth() int {
	return img.Colorspace.Depth()
}

// PutRow stores one row of pixels in the image colorspace layout,
// starting at column x of row y. Returns false when the coordinates
// fall outside the committed geometry.
func (img *Image) PutRow(x, y, width int, pixels []byte) bool {
	if x < 0 || y < 0 || width <= 0 ||
		x+width > img.XSize || y >= img.YSize {
		return false
	}

	depth := img.Depth()
	if len(pixels) < width*depth {
		return false
	}

	if img.pixels == nil {
		img.pixels = make([]byte, img.XSize*img.YSize*depth)
	}

	offset := (y*img.XSize + x) * depth
	copy(img.pixels[offset:offset+width*depth], pixels[:width*depth])
	return true
}

// GetRow returns row y, or nil when the row was never written.
func (img *Image) GetRow(y int) []byte {
	if img.pixels == nil || y < 0 || y >= img.YSize {
		return nil
	}
	depth := img.Depth()
	offset := y * img.XSize * depth
	return img.pixels[offset : offset+img.XSize*depth]
}
