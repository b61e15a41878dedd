package exif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// buildJPEG wraps segment payloads in SOI/EOI markers
func buildJPEG(segments ...[]byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8})
	for _, s := range segments {
		buf.Write(s)
	}
	buf.Write([]byte{0xFF, 0xD9})
	return buf.Bytes()
}

// app1 builds an APP1 segment with the given payload
func app1(payload []byte) []byte {
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:4], uint16(len(payload)+2))
	return append(seg, payload...)
}

// tiffLE builds a little-endian TIFF block with rational resolution tags
func tiffLE(xnum, xden, ynum, yden uint32) []byte {
	le := binary.LittleEndian

	data := []byte{'I', 'I', 42, 0}
	data = le.AppendUint32(data, 8)
	data = le.AppendUint16(data, 2)

	entry := func(tag uint16, off uint32) []byte {
		e := le.AppendUint16(nil, tag)
		e = le.AppendUint16(e, 5) // rational
		e = le.AppendUint32(e, 1)
		e = le.AppendUint32(e, off)
		return e
	}
	data = append(data, entry(0x011A, 38)...)
	data = append(data, entry(0x011B, 46)...)
	data = le.AppendUint32(data, 0) // next IFD

	data = le.AppendUint32(data, xnum)
	data = le.AppendUint32(data, xden)
	data = le.AppendUint32(data, ynum)
	data = le.AppendUint32(data, yden)
	return data
}

func TestReadResolutionRational(t *testing.T) {
	raw := buildJPEG(app1(append([]byte("Exif\x00\x00"), tiffLE(72, 1, 1440, 10)...)))

	xres, yres, err := ReadResolution(raw)
	if err != nil {
		t.Fatalf("ReadResolution: %v", err)
	}
	if xres != "72" {
		t.Errorf("xres = %q, want \"72\"", xres)
	}
	// 1440/10 = 144, exercising rational division
	if yres != "144" {
		t.Errorf("yres = %q, want \"144\"", yres)
	}
}

func TestReadResolutionRounding(t *testing.T) {
	// 2/3 rounds to 1, 5/3 rounds to 2
	raw := buildJPEG(app1(append([]byte("Exif\x00\x00"), tiffLE(2, 3, 5, 3)...)))

	xres, yres, err := ReadResolution(raw)
	if err != nil {
		t.Fatalf("ReadResolution: %v", err)
	}
	if xres != "1" || yres != "2" {
		t.Errorf("resolution = (%q, %q), want (\"1\", \"2\")", xres, yres)
	}
}

func TestReadResolutionBigEndian(t *testing.T) {
	be := binary.BigEndian

	data := []byte{'M', 'M', 0, 42}
	data = be.AppendUint32(data, 8)
	data = be.AppendUint16(data, 1)

	e := be.AppendUint16(nil, 0x011A)
	e = be.AppendUint16(e, 3) // short
	e = be.AppendUint32(e, 1)
	e = append(e, 1, 44, 0, 0) // value 300 in the field itself
	data = append(data, e...)
	data = be.AppendUint32(data, 0)

	raw := buildJPEG(app1(append([]byte("Exif\x00\x00"), data...)))

	xres, yres, err := ReadResolution(raw)
	if err != nil {
		t.Fatalf("ReadResolution: %v", err)
	}
	if xres != "300" {
		t.Errorf("xres = %q, want \"300\"", xres)
	}
	if yres != "" {
		t.Errorf("yres = %q, want empty (tag absent)", yres)
	}
}

func TestReadResolutionNoEXIF(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"bare jpeg", buildJPEG()},
		{"not a jpeg", []byte("plain text")},
		{"app1 without exif id", buildJPEG(app1([]byte("XMP data here")))},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadResolution(tt.raw)
			if !errors.Is(err, ErrNoEXIF) {
				t.Errorf("ReadResolution = %v, want ErrNoEXIF", err)
			}
		})
	}
}

func TestReadResolutionSkipsOtherSegments(t *testing.T) {
	// APP0 first, then the EXIF APP1
	app0 := []byte{0xFF, 0xE0, 0, 16, 'J', 'F', 'I', 'F', 0, 1, 1, 1, 0, 72, 0, 72, 0, 0}
	raw := buildJPEG(app0, app1(append([]byte("Exif\x00\x00"), tiffLE(96, 1, 96, 1)...)))

	xres, yres, err := ReadResolution(raw)
	if err != nil {
		t.Fatalf("ReadResolution: %v", err)
	}
	if xres != "96" || yres != "96" {
		t.Errorf("resolution = (%q, %q), want (\"96\", \"96\")", xres, yres)
	}
}
