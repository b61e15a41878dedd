package cupsimage

import (
	"bytes"
	"testing"
)

func TestColorspaceDepth(t *testing.T) {
	tests := []struct {
		space Colorspace
		depth int
	}{
		{ColorspaceWhite, 1},
		{ColorspaceBlack, 1},
		{ColorspaceRGB, 3},
		{ColorspaceCMY, 3},
		{ColorspaceCMYK, 4},
	}

	for _, tt := range tests {
		if got := tt.space.Depth(); got != tt.depth {
			t.Errorf("%v.Depth() = %d, want %d", tt.space, got, tt.depth)
		}
	}
}

func TestImagePutGetRow(t *testing.T) {
	img := NewImage()
	img.Colorspace = ColorspaceRGB
	img.XSize = 2
	img.YSize = 2

	row := []byte{1, 2, 3, 4, 5, 6}
	if !img.PutRow(0, 0, 2, row) {
		t.Fatal("PutRow rejected a valid row")
	}

	if !bytes.Equal(img.GetRow(0), row) {
		t.Errorf("GetRow(0) = %v, want %v", img.GetRow(0), row)
	}

	// Unwritten rows read back as zero
	if !bytes.Equal(img.GetRow(1), make([]byte, 6)) {
		t.Errorf("GetRow(1) = %v, want zeros", img.GetRow(1))
	}
}

func TestImagePutRowBounds(t *testing.T) {
	img := NewImage()
	img.Colorspace = ColorspaceWhite
	img.XSize = 4
	img.YSize = 2

	row := []byte{1, 2, 3, 4}

	if img.PutRow(0, 2, 4, row) {
		t.Error("PutRow accepted row past the bottom edge")
	}
	if img.PutRow(1, 0, 4, row) {
		t.Error("PutRow accepted row past the right edge")
	}
	if img.PutRow(0, 0, 4, row[:2]) {
		t.Error("PutRow accepted undersized pixel data")
	}
	if img.GetRow(0) != nil {
		t.Error("rejected writes allocated row storage")
	}
}

func TestNewImageDefaults(t *testing.T) {
	img := NewImage()
	if img.XPPI != 128 || img.YPPI != 128 {
		t.Errorf("default resolution = (%d, %d), want (128, 128)", img.XPPI, img.YPPI)
	}
}
