package jpegdec

import "io"

// HuffmanTable represents a Huffman coding table
type HuffmanTable struct {
	// Number of codes of each length (1-16 bits)
	Bits [16]int
	// Values for each code, in order of code length
	Values []byte
	// Range tables for decoding codes longer than 8 bits
	minCode [16]int32
	maxCode [16]int32
	valPtr  [16]int32
	// Lookup table for fast decoding of short codes
	// value: (nbits << 8) | symbol, -1 if no code matches
	lookup [256]int16
}

// Build builds the lookup tables for decoding
func (h *HuffmanTable) Build() error {
	for i := range h.lookup {
		h.lookup[i] = -1
	}

	p := 0
	fastCode := 0
	for l := 0; l < 8; l++ {
		for i := 0; i < h.Bits[l]; i++ {
			if p >= len(h.Values) {
				return ErrInvalidDHT
			}
			// Extend the canonical code to 8 bits
			base := fastCode << uint(7-l)
			for j := 0; j < (1 << uint(7-l)); j++ {
				h.lookup[base+j] = int16((l+1)<<8 | int(h.Values[p]))
			}
			p++
			fastCode++
		}
		fastCode <<= 1
	}

	// Min/max codes and value pointers for codes longer than 8 bits
	code := int32(0)
	p = 0
	for l := 0; l < 16; l++ {
		if h.Bits[l] == 0 {
			h.maxCode[l] = -1
		} else {
			h.valPtr[l] = int32(p)
			h.minCode[l] = code
			p += h.Bits[l]
			code += int32(h.Bits[l])
			h.maxCode[l] = code - 1
		}
		code <<= 1
	}

	return nil
}

// bitReader reads the entropy-coded bitstream, undoing byte stuffing.
type bitReader struct {
	r       io.Reader
	bits    uint32
	nBits   int
	readErr error
}

func newBitReader(r io.Reader) *bitReader {
	return &bitReader{r: r}
}

func (d *bitReader) fill() error {
	if d.readErr != nil {
		return d.readErr
	}

	var b [1]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		d.readErr = err
		return err
	}

	// 0xFF in entropy data is followed by a stuffed 0x00
	if b[0] == 0xFF {
		var b2 [1]byte
		if _, err := io.ReadFull(d.r, b2[:]); err != nil {
			d.readErr = err
			return err
		}
		if b2[0] != 0x00 {
			d.readErr = ErrInvalidData
			return ErrInvalidData
		}
	}

	d.bits = (d.bits << 8) | uint32(b[0])
	d.nBits += 8
	return nil
}

// ReadBit reads a single bit
func (d *bitReader) ReadBit() (uint32, error) {
	if d.nBits == 0 {
		if err := d.fill(); err != nil {
			return 0, err
		}
	}
	d.nBits--
	return (d.bits >> uint(d.nBits)) & 1, nil
}

// ReadBits reads n bits as an unsigned integer
func (d *bitReader) ReadBits(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	for d.nBits < n {
		if err := d.fill(); err != nil {
			return 0, err
		}
	}
	d.nBits -= n
	return (d.bits >> uint(d.nBits)) & ((1 << uint(n)) - 1), nil
}

// Decode decodes the next Huffman symbol
func (d *bitReader) Decode(table *HuffmanTable) (byte, error) {
	if d.readErr != nil {
		return 0, d.readErr
	}

	// Fast path for codes up to 8 bits
	if d.nBits >= 8 {
		peek := (d.bits >> uint(d.nBits-8)) & 0xFF
		entry := table.lookup[peek]
		if entry >= 0 {
			d.nBits -= int(entry >> 8)
			return byte(entry & 0xFF), nil
		}
	}

	// Slow path: decode bit by bit
	code := uint32(0)
	for l := 0; l < 16; l++ {
		bit, err := d.ReadBit()
		if err != nil {
			return 0, err
		}

		code = (code << 1) | bit

		if table.maxCode[l] >= 0 && int32(code) <= table.maxCode[l] {
			idx := table.valPtr[l] + int32(code) - table.minCode[l]
			if idx >= 0 && int(idx) < len(table.Values) {
				return table.Values[idx], nil
			}
		}
	}

	return 0, ErrHuffmanDecode
}

// ReceiveExtend reads an ssss-bit coefficient and sign-extends it
func (d *bitReader) ReceiveExtend(ssss int) (int, error) {
	if ssss == 0 {
		return 0, nil
	}

	bits, err := d.ReadBits(ssss)
	if err != nil {
		return 0, err
	}

	val := int(bits)
	if val < (1 << uint(ssss-1)) {
		val += (-1 << uint(ssss)) + 1
	}

	return val, nil
}
