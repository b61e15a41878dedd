package cupsimage

import (
	"image"
	"io"

	"golang.org/x/image/tiff"
)

func init() {
	RegisterFormat(Format{
		Name:  "tiff",
		Sniff: isTIFF,
		Read:  readTIFF,
	})
}

// isTIFF matches the little-endian and big-endian TIFF headers
func isTIFF(magic []byte) bool {
	if len(magic) < 4 {
		return false
	}
	return (magic[0] == 'I' && magic[1] == 'I' && magic[2] == 42 && magic[3] == 0) ||
		(magic[0] == 'M' && magic[1] == 'M' && magic[2] == 0 && magic[3] == 42)
}

// readTIFF decodes a TIFF stream into img. Rows flow through the same
// conversion pipeline as the JPEG backend, with grayscale sources
// loading through the secondary colorspace preference.
func readTIFF(img *Image, r io.ReadSeeker, opts *Options) int {
	log := opts.logger()

	m, err := tiff.Decode(r)
	if err != nil {
		log.Error("decoding TIFF", "error", err)
		return ReadFailed
	}

	bounds := m.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= 0 || width > MaxWidth || height <= 0 || height > MaxHeight {
		log.Error("bad TIFF dimensions", "width", width, "height", height)
		return ReadFailed
	}

	numComponents := 3
	if isGrayModel(m) {
		numComponents = 1
	}

	srcSpace, srcDepth, target := planColorspaces(numComponents, opts.Primary, opts.Secondary)

	img.Colorspace = target
	img.XSize = width
	img.YSize = height

	in := make([]byte, width*srcDepth)
	out := make([]byte, width*img.Depth())

	for y := 0; y < height; y++ {
		fillRow(m, bounds, y, srcDepth, in)

		if srcDepth == 3 && (opts.Saturation != 100 || opts.Hue != 0) {
			RGBAdjust(in, width, opts.Saturation, opts.Hue)
		}

		putConvertedRow(img, y, srcSpace, in, out, opts)
	}

	return ReadOK
}

// isGrayModel reports whether the decoded image is single-channel
func isGrayModel(m image.Image) bool {
	switch m.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}

// fillRow extracts one row of 8-bit samples from the decoded image
func fillRow(m image.Image, bounds image.Rectangle, y, depth int, row []byte) {
	for x := 0; x < bounds.Dx(); x++ {
		r, g, b, _ := m.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
		if depth == 1 {
			row[x] = byte(r >> 8)
			continue
		}
		row[x*3+0] = byte(r >> 8)
		row[x*3+1] = byte(g >> 8)
		row[x*3+2] = byte(b >> 8)
	}
}
