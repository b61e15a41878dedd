// Package exif extracts resolution metadata from the EXIF block of a
// JPEG file. It is deliberately small: the image loader only needs the
// X/YResolution tags of IFD0, returned in the human-readable string
// form the resolution resolver parses.
package exif

import (
	"encoding/binary"
	"errors"
	"strconv"
)

// EXIF tag IDs
const (
	tagXResolution    = 0x011A
	tagYResolution    = 0x011B
	tagResolutionUnit = 0x0128
)

// EXIF data types
const (
	typeByte     = 1
	typeASCII    = 2
	typeShort    = 3
	typeLong     = 4
	typeRational = 5
)

var (
	// ErrNoEXIF is returned when the file carries no EXIF APP1 segment
	ErrNoEXIF = errors.New("no EXIF data found")

	errBadTIFF = errors.New("malformed TIFF structure")
)

// ReadResolution scans raw JPEG file bytes for an EXIF APP1 segment and
// returns the X and Y resolution tag values of IFD0 as decimal strings.
// A tag that is absent yields an empty string for that axis. ErrNoEXIF
// is returned when no EXIF block exists or it cannot be parsed.
func ReadResolution(data []byte) (xres, yres string, err error) {
	tiff, err := findEXIF(data)
	if err != nil {
		return "", "", err
	}

	vals, err := parseIFD0(tiff)
	if err != nil {
		return "", "", ErrNoEXIF
	}

	return vals[tagXResolution], vals[tagYResolution], nil
}

// findEXIF walks the JPEG segments looking for an APP1 payload with the
// "Exif\0\0" identifier and returns the embedded TIFF structure.
func findEXIF(data []byte) ([]byte, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, ErrNoEXIF
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			break
		}
		marker := data[pos+1]

		// EOI or start of entropy data: no EXIF ahead
		if marker == 0xD9 || marker == 0xDA {
			break
		}

		// Restart markers and padding have no length field
		if marker == 0xFF || (marker >= 0xD0 && marker <= 0xD7) {
			pos += 2
			continue
		}

		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if length < 2 || pos+2+length > len(data) {
			break
		}
		payload := data[pos+4 : pos+2+length]

		if marker == 0xE1 && len(payload) >= 6 && string(payload[:6]) == "Exif\x00\x00" {
			return payload[6:], nil
		}

		pos += 2 + length
	}

	return nil, ErrNoEXIF
}

// parseIFD0 parses the TIFF header and first IFD, collecting the
// resolution tags as decimal strings keyed by tag ID.
func parseIFD0(data []byte) (map[uint16]string, error) {
	if len(data) < 8 {
		return nil, errBadTIFF
	}

	// Byte order: II little-endian, MM big-endian
	var order binary.ByteOrder
	switch {
	case data[0] == 'I' && data[1] == 'I':
		order = binary.LittleEndian
	case data[0] == 'M' && data[1] == 'M':
		order = binary.BigEndian
	default:
		return nil, errBadTIFF
	}

	if order.Uint16(data[2:4]) != 42 {
		return nil, errBadTIFF
	}

	offset := int(order.Uint32(data[4:8]))
	if offset+2 > len(data) {
		return nil, errBadTIFF
	}

	vals := make(map[uint16]string)

	numEntries := int(order.Uint16(data[offset : offset+2]))
	offset += 2

	for i := 0; i < numEntries && offset+12 <= len(data); i++ {
		tag := order.Uint16(data[offset : offset+2])
		dataType := order.Uint16(data[offset+2 : offset+4])

		if tag == tagXResolution || tag == tagYResolution {
			if s, ok := formatValue(data, data[offset+8:offset+12], dataType, order); ok {
				vals[tag] = s
			}
		}

		offset += 12
	}

	return vals, nil
}

// formatValue renders a single-count tag value as a decimal string.
// Rational values are rounded to the nearest integer, matching the
// human-readable rendering of the resolution tags.
func formatValue(tiff, field []byte, dataType uint16, order binary.ByteOrder) (string, bool) {
	switch dataType {
	case typeShort:
		return strconv.Itoa(int(order.Uint16(field[:2]))), true

	case typeLong:
		return strconv.Itoa(int(order.Uint32(field))), true

	case typeRational:
		// Rationals do not fit in the field; it holds an offset
		off := int(order.Uint32(field))
		if off < 0 || off+8 > len(tiff) {
			return "", false
		}
		num := order.Uint32(tiff[off : off+4])
		den := order.Uint32(tiff[off+4 : off+8])
		if den == 0 {
			return "", false
		}
		return strconv.Itoa(int((num + den/2) / den)), true
	}

	return "", false
}
