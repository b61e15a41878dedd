package jpegdec

import (
	"bytes"
	"errors"
	"testing"
)

// mixedTable has codes of two lengths: symbol 1 on the one-bit code 0,
// symbols 2 and 3 on the three-bit codes 100 and 101.
func mixedTable(t *testing.T) *HuffmanTable {
	t.Helper()
	table := &HuffmanTable{Values: []byte{1, 2, 3}}
	table.Bits[0] = 1
	table.Bits[2] = 2
	if err := table.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return table
}

func TestHuffmanDecodeMixedLengths(t *testing.T) {
	table := mixedTable(t)

	// Bits 0, 100, 101 padded with a trailing 1
	br := newBitReader(bytes.NewReader([]byte{0x4B}))

	want := []byte{1, 2, 3}
	for i, w := range want {
		sym, err := br.Decode(table)
		if err != nil {
			t.Fatalf("Decode %d: %v", i, err)
		}
		if sym != w {
			t.Errorf("Decode %d = %d, want %d", i, sym, w)
		}
	}
}

func TestHuffmanLookupTable(t *testing.T) {
	table := mixedTable(t)

	// Any byte whose top bit is clear resolves to the one-bit code
	for _, peek := range []int{0x00, 0x3F, 0x7F} {
		entry := table.lookup[peek]
		if entry < 0 {
			t.Fatalf("lookup[%#x] = -1, want a match", peek)
		}
		if nbits := int(entry >> 8); nbits != 1 {
			t.Errorf("lookup[%#x] length = %d, want 1", peek, nbits)
		}
		if sym := byte(entry & 0xFF); sym != 1 {
			t.Errorf("lookup[%#x] symbol = %d, want 1", peek, sym)
		}
	}

	// 101xxxxx resolves to the three-bit code for symbol 3
	entry := table.lookup[0xA0]
	if entry < 0 {
		t.Fatal("lookup[0xA0] = -1, want a match")
	}
	if nbits := int(entry >> 8); nbits != 3 {
		t.Errorf("lookup[0xA0] length = %d, want 3", nbits)
	}
	if sym := byte(entry & 0xFF); sym != 3 {
		t.Errorf("lookup[0xA0] symbol = %d, want 3", sym)
	}

	// 11xxxxxx matches no code
	if entry := table.lookup[0xC0]; entry >= 0 {
		t.Errorf("lookup[0xC0] = %d, want -1", entry)
	}
}

func TestHuffmanBuildShortValues(t *testing.T) {
	table := &HuffmanTable{Values: []byte{1}}
	table.Bits[0] = 2
	if err := table.Build(); !errors.Is(err, ErrInvalidDHT) {
		t.Errorf("Build = %v, want ErrInvalidDHT", err)
	}
}

func TestHuffmanDecodeInvalidCode(t *testing.T) {
	table := mixedTable(t)

	// All-ones input never matches a defined code
	br := newBitReader(bytes.NewReader([]byte{0xFF, 0x00, 0xFF, 0x00}))
	if _, err := br.Decode(table); !errors.Is(err, ErrHuffmanDecode) {
		t.Errorf("Decode = %v, want ErrHuffmanDecode", err)
	}
}

func TestReceiveExtend(t *testing.T) {
	// Bits 011 then 101: 3-bit fields decode to -4 and 5
	br := newBitReader(bytes.NewReader([]byte{0x77}))

	v, err := br.ReceiveExtend(3)
	if err != nil {
		t.Fatalf("ReceiveExtend: %v", err)
	}
	if v != -4 {
		t.Errorf("ReceiveExtend(011) = %d, want -4", v)
	}

	v, err = br.ReceiveExtend(3)
	if err != nil {
		t.Fatalf("ReceiveExtend: %v", err)
	}
	if v != 5 {
		t.Errorf("ReceiveExtend(101) = %d, want 5", v)
	}

	v, err = br.ReceiveExtend(0)
	if err != nil || v != 0 {
		t.Errorf("ReceiveExtend(0) = %d, %v, want 0, nil", v, err)
	}
}

func TestBitReaderStuffing(t *testing.T) {
	// 0xFF 0x00 carries the data byte 0xFF
	br := newBitReader(bytes.NewReader([]byte{0xFF, 0x00}))
	v, err := br.ReadBits(8)
	if err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	if v != 0xFF {
		t.Errorf("ReadBits = %#x, want 0xFF", v)
	}

	// 0xFF followed by anything else is a marker, not data
	br = newBitReader(bytes.NewReader([]byte{0xFF, 0xD9}))
	if _, err := br.ReadBits(8); !errors.Is(err, ErrInvalidData) {
		t.Errorf("ReadBits = %v, want ErrInvalidData", err)
	}
}
