package jpegdec

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadMarker(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint16
		err  error
	}{
		{"soi", []byte{0xFF, 0xD8}, MarkerSOI, nil},
		{"padded", []byte{0xFF, 0xFF, 0xFF, 0xDA}, MarkerSOS, nil},
		{"no ff prefix", []byte{0x12, 0x34}, 0, ErrInvalidMarker},
		{"stuffed byte", []byte{0xFF, 0x00}, 0, ErrInvalidMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.in))
			marker, err := r.ReadMarker()
			if !errors.Is(err, tt.err) {
				t.Fatalf("ReadMarker error = %v, want %v", err, tt.err)
			}
			if marker != tt.want {
				t.Errorf("ReadMarker = %#x, want %#x", marker, tt.want)
			}
		})
	}
}

func TestReadSegment(t *testing.T) {
	// Length 5 covers itself plus three payload bytes
	r := NewReader(bytes.NewReader([]byte{0x00, 0x05, 0xAA, 0xBB, 0xCC}))
	data, err := r.ReadSegment()
	if err != nil {
		t.Fatalf("ReadSegment: %v", err)
	}
	if !bytes.Equal(data, []byte{0xAA, 0xBB, 0xCC}) {
		t.Errorf("ReadSegment = %x, want aabbcc", data)
	}
}

func TestReadSegmentBadLength(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x00, 0x01}))
	if _, err := r.ReadSegment(); !errors.Is(err, ErrInvalidData) {
		t.Errorf("ReadSegment = %v, want ErrInvalidData", err)
	}
}

func TestMarkerClassification(t *testing.T) {
	if !IsApp(MarkerAPP0) || !IsApp(MarkerAPP14) || IsApp(MarkerSOS) {
		t.Error("IsApp misclassifies markers")
	}
	if !IsRST(MarkerRST0) || !IsRST(MarkerRST7) || IsRST(MarkerSOI) {
		t.Error("IsRST misclassifies markers")
	}
	if HasLength(MarkerSOI) || HasLength(MarkerEOI) || HasLength(MarkerRST0) {
		t.Error("HasLength true for a bare marker")
	}
	if !HasLength(MarkerDQT) || !HasLength(MarkerAPP1) {
		t.Error("HasLength false for a length-bearing marker")
	}
}
