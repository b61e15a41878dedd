package cupsimage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Read status codes reported by format backends
const (
	ReadOK     = 0
	ReadFailed = 1
)

// Façade errors
var (
	// ErrUnknownFormat is returned when no registered backend
	// recognizes the file magic
	ErrUnknownFormat = errors.New("unrecognized image format")

	// ErrDecode is returned when the selected backend fails
	ErrDecode = errors.New("image decode failed")
)

// ParseColorspace maps a colorspace name to its value. Names match
// Colorspace.String, case-insensitively.
func ParseColorspace(name string) (Colorspace, error) {
	switch strings.ToLower(name) {
	case "cmyk":
		return ColorspaceCMYK, nil
	case "cmy":
		return ColorspaceCMY, nil
	case "black":
		return ColorspaceBlack, nil
	case "white":
		return ColorspaceWhite, nil
	case "rgb":
		return ColorspaceRGB, nil
	case "auto", "rgborcmyk":
		return ColorspaceRGBOrCMYK, nil
	}
	return 0, fmt.Errorf("unknown colorspace %q", name)
}

// Options carries the caller-supplied decode configuration.
type Options struct {
	// Primary is the requested colorspace for color sources;
	// ColorspaceRGBOrCMYK lets the source decide.
	Primary Colorspace

	// Secondary is the requested colorspace for single-channel
	// (grayscale) sources.
	Secondary Colorspace

	// Saturation is a color saturation percentage; 100 is unchanged.
	Saturation int

	// Hue is a hue rotation in degrees; 0 is unchanged.
	Hue int

	// LUT is an optional 256-entry gamma/brightness lookup table
	// applied to every row after conversion.
	LUT []byte

	// Logger receives decode diagnostics. Logging never affects
	// control flow; nil discards everything.
	Logger *slog.Logger
}

// DefaultOptions returns options that load color images in their
// source colorspace and grayscale images as luminance, unadjusted.
func DefaultOptions() *Options {
	return &Options{
		Primary:    ColorspaceRGBOrCMYK,
		Secondary:  ColorspaceWhite,
		Saturation: 100,
		Hue:        0,
	}
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Format is one image-format backend.
type Format struct {
	// Name identifies the format, e.g. "jpeg"
	Name string

	// Sniff reports whether the leading file bytes match the format
	Sniff func(magic []byte) bool

	// Read decodes the stream into img and returns a read status.
	// The backend owns colorspace planning, geometry validation and
	// resolution resolution for its format.
	Read func(img *Image, r io.ReadSeeker, opts *Options) int
}

var (
	formatsMu sync.RWMutex
	formats   []Format
)

// RegisterFormat registers a format backend. Typically called from the
// backend's init function.
func RegisterFormat(f Format) {
	formatsMu.Lock()
	defer formatsMu.Unlock()
	formats = append(formats, f)
}

// lookupFormat returns the first backend whose sniffer accepts magic
func lookupFormat(magic []byte) (Format, bool) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	for _, f := range formats {
		if f.Sniff(magic) {
			return f, true
		}
	}
	return Format{}, false
}

// Read decodes an image from r, dispatching on the leading magic bytes.
// The stream must be positioned at the start of the image data.
func Read(r io.ReadSeeker, opts *Options) (*Image, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	var magic [16]byte
	n, err := io.ReadFull(r, magic[:])
	if err != nil && n == 0 {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	f, ok := lookupFormat(magic[:n])
	if !ok {
		return nil, ErrUnknownFormat
	}

	img := NewImage()
	if status := f.Read(img, r, opts); status != ReadOK {
		return nil, ErrDecode
	}
	return img, nil
}

// Open reads an image file from disk. The file is always closed before
// returning.
func Open(path string, opts *Options) (*Image, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	return Read(fp, opts)
}
