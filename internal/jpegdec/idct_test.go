package jpegdec

import "testing"

func TestIDCTDCOnly(t *testing.T) {
	tests := []struct {
		name string
		dc   int32
		want byte
	}{
		{"mid gray", 0, 128},
		{"light", 64, 136},
		{"clamped high", 2000, 255},
		{"clamped low", -2000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coef := make([]int32, 64)
			coef[0] = tt.dc

			out := make([]byte, 64)
			IDCT(coef, out, 8)

			for i, v := range out {
				if v != tt.want {
					t.Fatalf("sample %d = %d, want %d", i, v, tt.want)
				}
			}
		})
	}
}

func TestIDCTPreservesMean(t *testing.T) {
	// A single AC coefficient changes the distribution but not the
	// block mean, which is set by the DC term alone.
	coef := make([]int32, 64)
	coef[0] = 64
	coef[1] = 32

	out := make([]byte, 64)
	IDCT(coef, out, 8)

	sum := 0
	for _, v := range out {
		sum += int(v)
	}
	mean := sum / 64
	if mean < 134 || mean > 138 {
		t.Errorf("block mean = %d, want close to 136", mean)
	}

	varies := false
	for _, v := range out {
		if v != out[0] {
			varies = true
			break
		}
	}
	if !varies {
		t.Error("AC coefficient produced a flat block")
	}
}

func TestIDCTStride(t *testing.T) {
	coef := make([]int32, 64)
	coef[0] = 64

	// Wider output buffer: rows land every 16 bytes
	out := make([]byte, 16*8)
	IDCT(coef, out, 16)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if v := out[y*16+x]; v != 136 {
				t.Fatalf("sample (%d,%d) = %d, want 136", x, y, v)
			}
		}
		for x := 8; x < 16; x++ {
			if v := out[y*16+x]; v != 0 {
				t.Fatalf("padding (%d,%d) = %d, want untouched", x, y, v)
			}
		}
	}
}

func TestDivCeil(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{0, 8, 0},
		{1, 8, 1},
		{8, 8, 1},
		{9, 8, 2},
		{64, 8, 8},
	}
	for _, tt := range tests {
		if got := divCeil(tt.a, tt.b); got != tt.want {
			t.Errorf("divCeil(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestZigzagIsPermutation(t *testing.T) {
	var seen [64]bool
	for _, v := range zigzag {
		if v < 0 || v > 63 || seen[v] {
			t.Fatalf("zigzag entry %d repeated or out of range", v)
		}
		seen[v] = true
	}
	if zigzag[0] != 0 || zigzag[1] != 1 || zigzag[2] != 8 || zigzag[63] != 63 {
		t.Error("zigzag corners do not match the scan pattern")
	}
}
