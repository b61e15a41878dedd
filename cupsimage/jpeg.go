package cupsimage

import (
	"bytes"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/thakan25/cups-filters/exif"
	"github.com/thakan25/cups-filters/internal/jpegdec"
)

// defaultPPI is used when no usable resolution metadata is found
const defaultPPI = 200

func init() {
	RegisterFormat(Format{
		Name:  "jpeg",
		Sniff: isJPEG,
		Read:  readJPEG,
	})
}

// isJPEG matches the SOI marker followed by another marker prefix
func isJPEG(magic []byte) bool {
	return len(magic) >= 3 && magic[0] == 0xFF && magic[1] == 0xD8 && magic[2] == 0xFF
}

// frameDecoder is the slice of the JPEG decoder the backend consumes:
// header fields up front, then a start/scanline/finish lifecycle.
type frameDecoder interface {
	Header() jpegdec.Header
	Colorspace() jpegdec.Colorspace
	Start() error
	ReadScanline(buf []byte) error
	Finish() error
}

// readJPEG decodes a JPEG stream into img. The whole file is read up
// front: the decoder consumes it sequentially and the resolution
// fallback scans the raw bytes for EXIF tags.
func readJPEG(img *Image, r io.ReadSeeker, opts *Options) int {
	log := opts.logger()

	data, err := io.ReadAll(r)
	if err != nil {
		log.Error("reading JPEG stream", "error", err)
		return ReadFailed
	}

	dec, err := jpegdec.NewDecoder(bytes.NewReader(data), jpegdec.MarkerAPP14)
	if err != nil {
		log.Error("parsing JPEG header", "error", err)
		return ReadFailed
	}

	return decodeJPEG(img, dec, data, opts)
}

// decodeJPEG runs the decode state machine: validate geometry, commit
// the colorspace plan and resolution, then convert scanlines into img.
func decodeJPEG(img *Image, dec frameDecoder, raw []byte, opts *Options) int {
	log := opts.logger()
	hdr := dec.Header()

	if hdr.Width <= 0 || hdr.Width > MaxWidth ||
		hdr.Height <= 0 || hdr.Height > MaxHeight {
		log.Error("bad JPEG dimensions", "width", hdr.Width, "height", hdr.Height)
		return ReadFailed
	}

	srcSpace, srcDepth, target := planColorspaces(hdr.Components, opts.Primary, opts.Secondary)
	log.Debug("JPEG colorspace plan",
		"components", hdr.Components,
		"decoder", srcSpace.String(),
		"target", target.String())

	adobeCMYK := detectAdobeCMYK(hdr.Markers)
	if adobeCMYK {
		log.Debug("Adobe CMYK JPEG detected, inverting color values")
	}

	img.Colorspace = target
	img.XSize = hdr.Width
	img.YSize = hdr.Height
	img.XPPI, img.YPPI = resolveResolution(hdr, raw, log)

	log.Debug("JPEG image",
		"width", img.XSize, "height", img.YSize,
		"xppi", img.XPPI, "yppi", img.YPPI)

	// Scratch rows, reused for every scanline
	in := make([]byte, hdr.Width*srcDepth)
	out := make([]byte, hdr.Width*img.Depth())

	if err := dec.Start(); err != nil {
		log.Error("starting JPEG decompression", "error", err)
		return ReadFailed
	}

	for y := 0; y < hdr.Height; y++ {
		if err := dec.ReadScanline(in); err != nil {
			log.Error("reading JPEG scanline", "row", y, "error", err)
			return ReadFailed
		}

		// Adobe apps write inverted CMYK data; undo it
		if adobeCMYK && srcDepth == 4 {
			for i := range in {
				in[i] = 255 - in[i]
			}
		}

		if srcDepth == 3 && (opts.Saturation != 100 || opts.Hue != 0) {
			RGBAdjust(in, hdr.Width, opts.Saturation, opts.Hue)
		}

		putConvertedRow(img, y, srcSpace, in, out, opts)
	}

	if err := dec.Finish(); err != nil {
		log.Error("finishing JPEG decompression", "error", err)
		return ReadFailed
	}

	return ReadOK
}

// putConvertedRow converts one scanline from the decoder colorspace to
// the image colorspace and stores it. Rows whose colorspace pair has no
// defined conversion are dropped, matching the historical behavior.
func putConvertedRow(img *Image, y int, src jpegdec.Colorspace, in, out []byte, opts *Options) {
	// Direct path: the raw row already matches the target layout
	if (img.Colorspace == ColorspaceWhite && src == jpegdec.ColorspaceGrayscale) ||
		(img.Colorspace == ColorspaceCMYK && src == jpegdec.ColorspaceCMYK) {
		if opts.LUT != nil {
			Lut(in[:img.XSize*img.Depth()], opts.LUT)
		}
		img.PutRow(0, y, img.XSize, in)
		return
	}

	convert, ok := rowConversions[conversionKey{src, img.Colorspace}]
	if !ok {
		return
	}

	convert(in, out, img.XSize)
	if opts.LUT != nil {
		Lut(out[:img.XSize*img.Depth()], opts.LUT)
	}
	img.PutRow(0, y, img.XSize, out)
}

// conversionKey selects a row conversion by decoder and target colorspace
type conversionKey struct {
	src jpegdec.Colorspace
	dst Colorspace
}

// rowConverter converts count pixels from in to out
type rowConverter func(in, out []byte, count int)

// rowConversions is the fixed conversion table. Pairs covered by the
// direct path are intentionally absent, as are pairs the original
// loader never mapped (such as CMYK source to CMYK target without the
// direct path).
var rowConversions = map[conversionKey]rowConverter{
	{jpegdec.ColorspaceGrayscale, ColorspaceBlack}: WhiteToBlack,
	{jpegdec.ColorspaceGrayscale, ColorspaceRGB}:   WhiteToRGB,
	{jpegdec.ColorspaceGrayscale, ColorspaceCMY}:   WhiteToCMY,
	{jpegdec.ColorspaceGrayscale, ColorspaceCMYK}:  WhiteToCMYK,

	{jpegdec.ColorspaceRGB, ColorspaceRGB}:   RGBToRGB,
	{jpegdec.ColorspaceRGB, ColorspaceWhite}: RGBToWhite,
	{jpegdec.ColorspaceRGB, ColorspaceBlack}: RGBToBlack,
	{jpegdec.ColorspaceRGB, ColorspaceCMY}:   RGBToCMY,
	{jpegdec.ColorspaceRGB, ColorspaceCMYK}:  RGBToCMYK,

	{jpegdec.ColorspaceCMYK, ColorspaceWhite}: CMYKToWhite,
	{jpegdec.ColorspaceCMYK, ColorspaceBlack}: CMYKToBlack,
	{jpegdec.ColorspaceCMYK, ColorspaceCMY}:   CMYKToCMY,
	{jpegdec.ColorspaceCMYK, ColorspaceRGB}:   CMYKToRGB,
}

// planColorspaces decides the decoder output colorspace, its channel
// count and the image colorspace from the frame component count and the
// caller preference. One component loads through the grayscale
// fallback; four components are CMYK; everything else is treated as
// three-channel color.
func planColorspaces(numComponents int, primary, secondary Colorspace) (jpegdec.Colorspace, int, Colorspace) {
	switch numComponents {
	case 1:
		return jpegdec.ColorspaceGrayscale, 1, secondary

	case 4:
		target := primary
		if primary == ColorspaceRGBOrCMYK {
			target = ColorspaceCMYK
		}
		return jpegdec.ColorspaceCMYK, 4, target

	default:
		target := primary
		if primary == ColorspaceRGBOrCMYK {
			target = ColorspaceRGB
		}
		return jpegdec.ColorspaceRGB, 3, target
	}
}

// detectAdobeCMYK reports whether the saved markers contain an Adobe
// APP14 segment, the signature of inverted CMYK data written by Adobe
// applications.
func detectAdobeCMYK(markers []jpegdec.Marker) bool {
	for _, m := range markers {
		if m.ID == jpegdec.MarkerAPP14 && len(m.Data) >= 12 &&
			bytes.HasPrefix(m.Data, []byte("Adobe")) {
			return true
		}
	}
	return false
}

// resolveResolution derives the image resolution. JFIF density fields
// win when present and valid; otherwise EXIF resolution tags from the
// raw file bytes override the default axis by axis. The result is
// always a positive pair.
func resolveResolution(hdr jpegdec.Header, raw []byte, log *slog.Logger) (int, int) {
	if hdr.XDensity > 0 && hdr.YDensity > 0 && hdr.DensityUnit > 0 {
		var xppi, yppi int
		if hdr.DensityUnit == jpegdec.DensityInch {
			xppi = hdr.XDensity
			yppi = hdr.YDensity
		} else {
			xppi = int(float64(hdr.XDensity) * 2.54)
			yppi = int(float64(hdr.YDensity) * 2.54)
		}

		if xppi == 0 || yppi == 0 {
			log.Debug("bad JPEG density, using default",
				"xppi", xppi, "yppi", yppi)
			return defaultPPI, defaultPPI
		}
		return xppi, yppi
	}

	xppi, yppi := defaultPPI, defaultPPI

	xres, yres, err := exif.ReadResolution(raw)
	if err != nil {
		log.Debug("no EXIF resolution data", "error", err)
		return xppi, yppi
	}

	if v, ok := parseResolution(xres); ok {
		xppi = v
	}
	if v, ok := parseResolution(yres); ok {
		yppi = v
	}

	return xppi, yppi
}

// parseResolution parses a metadata resolution value. Tag values are
// human-readable decimal strings that may carry trailing padding
// spaces.
func parseResolution(s string) (int, bool) {
	s = strings.TrimRight(s, " ")
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
