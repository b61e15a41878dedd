package jpegdec

import "errors"

// Decoder errors
var (
	ErrInvalidMarker     = errors.New("invalid JPEG marker")
	ErrInvalidSOI        = errors.New("missing SOI marker")
	ErrInvalidSOF        = errors.New("invalid Start of Frame")
	ErrInvalidDHT        = errors.New("invalid Huffman table")
	ErrInvalidDQT        = errors.New("invalid Quantization table")
	ErrInvalidSOS        = errors.New("invalid Start of Scan")
	ErrInvalidData       = errors.New("invalid JPEG data")
	ErrInvalidDimensions = errors.New("invalid image dimensions")
	ErrInvalidComponents = errors.New("invalid number of components")
	ErrUnsupportedFrame  = errors.New("unsupported frame type")
	ErrHuffmanDecode     = errors.New("Huffman decode error")
	ErrNotStarted        = errors.New("decoder not started")
	ErrNoMoreScanlines   = errors.New("no more scanlines")
)
