package jpegdec

// JPEG marker constants
const (
	// Start of Image
	MarkerSOI = 0xFFD8

	// End of Image
	MarkerEOI = 0xFFD9

	// Start of Frame markers (sequential DCT)
	MarkerSOF0 = 0xFFC0 // Baseline DCT
	MarkerSOF1 = 0xFFC1 // Extended Sequential DCT
	MarkerSOF2 = 0xFFC2 // Progressive DCT (not supported)

	// Define Huffman Table
	MarkerDHT = 0xFFC4

	// Define Quantization Table
	MarkerDQT = 0xFFDB

	// Define Restart Interval
	MarkerDRI = 0xFFDD

	// Start of Scan
	MarkerSOS = 0xFFDA

	// Application segments
	MarkerAPP0  = 0xFFE0 // JFIF
	MarkerAPP1  = 0xFFE1 // EXIF
	MarkerAPP2  = 0xFFE2 // ICC profile
	MarkerAPP13 = 0xFFED // Photoshop IRB
	MarkerAPP14 = 0xFFEE // Adobe

	// Comment
	MarkerCOM = 0xFFFE

	// Restart markers
	MarkerRST0 = 0xFFD0
	MarkerRST7 = 0xFFD7
)

// IsApp returns true if the marker is an application segment (APP0-APP15)
func IsApp(marker uint16) bool {
	return marker >= MarkerAPP0 && marker <= 0xFFEF
}

// IsRST returns true if the marker is a Restart marker
func IsRST(marker uint16) bool {
	return marker >= MarkerRST0 && marker <= MarkerRST7
}

// HasLength returns true if the marker is followed by a length field
func HasLength(marker uint16) bool {
	// Markers without length: SOI, EOI, RSTn
	if marker == MarkerSOI || marker == MarkerEOI {
		return false
	}
	if IsRST(marker) {
		return false
	}
	return true
}
