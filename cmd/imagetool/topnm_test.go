package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/thakan25/cups-filters/cupsimage"
)

func TestWritePNMGrayscale(t *testing.T) {
	img := cupsimage.NewImage()
	img.Colorspace = cupsimage.ColorspaceWhite
	img.XSize = 2
	img.YSize = 1
	img.PutRow(0, 0, 2, []byte{0, 255})

	var buf bytes.Buffer
	if err := writePNM(&buf, img); err != nil {
		t.Fatalf("writePNM: %v", err)
	}

	want := "P5\n2 1\n255\n\x00\xff"
	if buf.String() != want {
		t.Errorf("writePNM output = %q, want %q", buf.String(), want)
	}
}

func TestWritePNMColor(t *testing.T) {
	img := cupsimage.NewImage()
	img.Colorspace = cupsimage.ColorspaceRGB
	img.XSize = 1
	img.YSize = 1
	img.PutRow(0, 0, 1, []byte{10, 20, 30})

	var buf bytes.Buffer
	if err := writePNM(&buf, img); err != nil {
		t.Fatalf("writePNM: %v", err)
	}

	want := "P6\n1 1\n255\n\x0a\x14\x1e"
	if buf.String() != want {
		t.Errorf("writePNM output = %q, want %q", buf.String(), want)
	}
}

var errSinkClosed = errors.New("sink closed")

// failWriter rejects every write, as a closed pipe or full disk would
type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errSinkClosed }

func TestWritePNMPropagatesWriteError(t *testing.T) {
	img := cupsimage.NewImage()
	img.Colorspace = cupsimage.ColorspaceWhite
	img.XSize = 2
	img.YSize = 1
	img.PutRow(0, 0, 2, []byte{1, 2})

	// Output smaller than the buffer only surfaces the error at flush
	if err := writePNM(failWriter{}, img); !errors.Is(err, errSinkClosed) {
		t.Errorf("writePNM = %v, want the sink error", err)
	}
}
