// Package jpegdec implements a sequential baseline JPEG decoder.
//
// The decoder exposes the frame header fields needed by format backends
// (component count, dimensions, JFIF density, saved application markers)
// and produces scanlines one at a time, top to bottom, in the decoder's
// native output colorspace: grayscale for one-component frames, RGB for
// three-component frames (YCbCr is converted during decompression) and
// CMYK for four-component frames (YCCK likewise).
package jpegdec

import (
	"bytes"
	"fmt"
	"io"
)

// Colorspace identifies a decoder colorspace.
type Colorspace int

const (
	ColorspaceUnknown Colorspace = iota
	ColorspaceGrayscale
	ColorspaceRGB
	ColorspaceYCbCr
	ColorspaceCMYK
	ColorspaceYCCK
)

// String returns the colorspace name
func (c Colorspace) String() string {
	switch c {
	case ColorspaceGrayscale:
		return "Grayscale"
	case ColorspaceRGB:
		return "RGB"
	case ColorspaceYCbCr:
		return "YCbCr"
	case ColorspaceCMYK:
		return "CMYK"
	case ColorspaceYCCK:
		return "YCCK"
	}
	return "Unknown"
}

// Density units from the JFIF APP0 segment
const (
	DensityNone       = 0 // aspect ratio only
	DensityInch       = 1 // dots per inch
	DensityCentimeter = 2 // dots per centimeter
)

// Marker is an application segment captured during header parsing.
type Marker struct {
	ID   uint16 // marker code, e.g. MarkerAPP14
	Data []byte // segment payload without the length field
}

// Header holds the frame parameters read from the bitstream header.
type Header struct {
	Width      int
	Height     int
	Components int

	// JFIF pixel density; unit is zero when no JFIF segment was present
	XDensity    int
	YDensity    int
	DensityUnit int

	// Markers captured for caller inspection (see NewDecoder)
	Markers []Marker
}

// component is one color component of the frame
type component struct {
	id     byte   // component identifier
	h, v   int    // sampling factors
	tq     int    // quantization table selector
	width  int    // component width in blocks
	height int    // component height in blocks
	dcSel  int    // DC Huffman table selector
	acSel  int    // AC Huffman table selector
	dcPred int    // DC prediction value
	data   []byte // decoded component plane, 64 samples per block
}

// Decoder decodes a baseline JPEG bitstream scanline by scanline.
type Decoder struct {
	r          *Reader
	hdr        Header
	comps      []*component
	qtables    [4][64]int32
	dcTables   [4]*HuffmanTable
	acTables   [4]*HuffmanTable
	restartInt int
	precision  int
	maxH, maxV int

	// Adobe APP14 color transform code: -1 none, 0 unknown/none,
	// 1 YCbCr, 2 YCCK
	adobeTransform int

	started  bool
	scanline int
}

// NewDecoder reads the bitstream header up to the start of scan.
// Application segments whose marker codes appear in saveMarkers are
// captured and exposed through Header().Markers.
func NewDecoder(r io.Reader, saveMarkers ...uint16) (*Decoder, error) {
	d := &Decoder{
		r:              NewReader(r),
		adobeTransform: -1,
	}

	save := make(map[uint16]bool, len(saveMarkers))
	for _, m := range saveMarkers {
		save[m] = true
	}

	marker, err := d.r.ReadMarker()
	if err != nil {
		return nil, err
	}
	if marker != MarkerSOI {
		return nil, ErrInvalidSOI
	}

	for {
		marker, err := d.r.ReadMarker()
		if err != nil {
			return nil, err
		}

		switch {
		case marker == MarkerSOF0 || marker == MarkerSOF1:
			if err := d.parseSOF(); err != nil {
				return nil, err
			}

		case marker == MarkerSOF2:
			return nil, fmt.Errorf("%w: progressive", ErrUnsupportedFrame)

		case marker == MarkerDQT:
			if err := d.parseDQT(); err != nil {
				return nil, err
			}

		case marker == MarkerDHT:
			if err := d.parseDHT(); err != nil {
				return nil, err
			}

		case marker == MarkerDRI:
			if err := d.parseDRI(); err != nil {
				return nil, err
			}

		case marker == MarkerSOS:
			if err := d.parseSOS(); err != nil {
				return nil, err
			}
			if len(d.comps) == 0 {
				return nil, ErrInvalidSOF
			}
			return d, nil

		case marker == MarkerEOI:
			return nil, ErrInvalidData

		default:
			if !HasLength(marker) {
				continue
			}
			data, err := d.r.ReadSegment()
			if err != nil {
				return nil, err
			}
			if marker == MarkerAPP0 {
				d.parseJFIF(data)
			}
			if marker == MarkerAPP14 {
				d.parseAdobe(data)
			}
			if save[marker] {
				d.hdr.Markers = append(d.hdr.Markers, Marker{ID: marker, Data: data})
			}
		}
	}
}

// Header returns the parsed frame header.
func (d *Decoder) Header() Header {
	return d.hdr
}

// Colorspace returns the colorspace of the scanlines the decoder produces.
func (d *Decoder) Colorspace() Colorspace {
	switch d.hdr.Components {
	case 1:
		return ColorspaceGrayscale
	case 4:
		return ColorspaceCMYK
	default:
		return ColorspaceRGB
	}
}

// parseJFIF extracts the pixel density fields from an APP0 JFIF payload
func (d *Decoder) parseJFIF(data []byte) {
	if len(data) < 12 || !bytes.HasPrefix(data, []byte("JFIF\x00")) {
		return
	}
	d.hdr.DensityUnit = int(data[7])
	d.hdr.XDensity = int(data[8])<<8 | int(data[9])
	d.hdr.YDensity = int(data[10])<<8 | int(data[11])
}

// parseAdobe extracts the color transform code from an APP14 Adobe payload
func (d *Decoder) parseAdobe(data []byte) {
	if len(data) < 12 || !bytes.HasPrefix(data, []byte("Adobe")) {
		return
	}
	d.adobeTransform = int(data[11])
}

// parseSOF parses a Start of Frame segment
func (d *Decoder) parseSOF() error {
	data, err := d.r.ReadSegment()
	if err != nil {
		return err
	}

	if len(data) < 6 {
		return ErrInvalidSOF
	}

	d.precision = int(data[0])
	if d.precision != 8 {
		return fmt.Errorf("unsupported precision: %d (only 8-bit supported)", d.precision)
	}

	d.hdr.Height = int(data[1])<<8 | int(data[2])
	d.hdr.Width = int(data[3])<<8 | int(data[4])
	numComponents := int(data[5])

	if d.hdr.Width <= 0 || d.hdr.Height <= 0 {
		return ErrInvalidDimensions
	}

	if numComponents != 1 && numComponents != 3 && numComponents != 4 {
		return ErrInvalidComponents
	}
	d.hdr.Components = numComponents

	if len(data) < 6+numComponents*3 {
		return ErrInvalidSOF
	}

	maxH, maxV := 1, 1
	d.comps = make([]*component, numComponents)

	for i := 0; i < numComponents; i++ {
		offset := 6 + i*3
		comp := &component{
			id: data[offset],
			h:  int(data[offset+1] >> 4),
			v:  int(data[offset+1] & 0x0F),
			tq: int(data[offset+2]),
		}

		if comp.h <= 0 || comp.h > 4 || comp.v <= 0 || comp.v > 4 || comp.tq > 3 {
			return ErrInvalidSOF
		}

		if comp.h > maxH {
			maxH = comp.h
		}
		if comp.v > maxV {
			maxV = comp.v
		}

		d.comps[i] = comp
	}

	d.maxH = maxH
	d.maxV = maxV

	for _, comp := range d.comps {
		comp.width = divCeil(d.hdr.Width*comp.h, maxH*8)
		comp.height = divCeil(d.hdr.Height*comp.v, maxV*8)
		comp.data = make([]byte, comp.width*comp.height*64)
	}

	return nil
}

// parseDQT parses a Define Quantization Table segment
func (d *Decoder) parseDQT() error {
	data, err := d.r.ReadSegment()
	if err != nil {
		return err
	}

	offset := 0
	for offset < len(data) {
		pqTq := data[offset]
		pq := pqTq >> 4   // precision (0=8-bit, 1=16-bit)
		tq := pqTq & 0x0F // table ID

		if tq > 3 {
			return ErrInvalidDQT
		}

		offset++

		// Table values arrive in zigzag order; store them in natural order
		if pq == 0 {
			if offset+64 > len(data) {
				return ErrInvalidDQT
			}
			for i := 0; i < 64; i++ {
				d.qtables[tq][zigzag[i]] = int32(data[offset+i])
			}
			offset += 64
		} else {
			if offset+128 > len(data) {
				return ErrInvalidDQT
			}
			for i := 0; i < 64; i++ {
				d.qtables[tq][zigzag[i]] = int32(data[offset+i*2])<<8 | int32(data[offset+i*2+1])
			}
			offset += 128
		}
	}

	return nil
}

// parseDHT parses a Define Huffman Table segment
func (d *Decoder) parseDHT() error {
	data, err := d.r.ReadSegment()
	if err != nil {
		return err
	}

	offset := 0
	for offset < len(data) {
		tcTh := data[offset]
		tc := tcTh >> 4   // table class (0=DC, 1=AC)
		th := tcTh & 0x0F // table ID

		if th > 3 {
			return ErrInvalidDHT
		}

		offset++

		table := &HuffmanTable{}
		totalCodes := 0
		for i := 0; i < 16; i++ {
			if offset >= len(data) {
				return ErrInvalidDHT
			}
			table.Bits[i] = int(data[offset])
			totalCodes += table.Bits[i]
			offset++
		}

		if offset+totalCodes > len(data) {
			return ErrInvalidDHT
		}
		table.Values = make([]byte, totalCodes)
		copy(table.Values, data[offset:offset+totalCodes])
		offset += totalCodes

		if err := table.Build(); err != nil {
			return err
		}

		if tc == 0 {
			d.dcTables[th] = table
		} else {
			d.acTables[th] = table
		}
	}

	return nil
}

// parseDRI parses a Define Restart Interval segment
func (d *Decoder) parseDRI() error {
	data, err := d.r.ReadSegment()
	if err != nil {
		return err
	}

	if len(data) != 2 {
		return ErrInvalidData
	}

	d.restartInt = int(data[0])<<8 | int(data[1])
	return nil
}

// parseSOS parses a Start of Scan segment
func (d *Decoder) parseSOS() error {
	data, err := d.r.ReadSegment()
	if err != nil {
		return err
	}

	if len(data) < 1 {
		return ErrInvalidSOS
	}

	ns := int(data[0])
	if len(data) < 1+ns*2+3 {
		return ErrInvalidSOS
	}

	for i := 0; i < ns; i++ {
		cs := data[1+i*2]
		tdTa := data[1+i*2+1]

		var comp *component
		for _, c := range d.comps {
			if c.id == cs {
				comp = c
				break
			}
		}
		if comp == nil {
			return ErrInvalidSOS
		}

		comp.dcSel = int(tdTa >> 4)
		comp.acSel = int(tdTa & 0x0F)
	}

	return nil
}

// Start decodes the entropy-coded scan data into the component planes.
// It must be called once, after NewDecoder and before ReadScanline.
func (d *Decoder) Start() error {
	if d.started {
		return nil
	}
	if err := d.decodeScan(); err != nil {
		return err
	}
	d.started = true
	d.scanline = 0
	return nil
}

// decodeScan decodes all MCUs of the single baseline scan
func (d *Decoder) decodeScan() error {
	intervals, err := d.readEntropyData()
	if err != nil {
		return err
	}

	// A restart marker without a DRI segment is malformed
	if d.restartInt == 0 && len(intervals) > 1 {
		return ErrInvalidData
	}

	br := newBitReader(bytes.NewReader(intervals[0]))
	next := 1

	mcuCols := divCeil(d.hdr.Width, d.maxH*8)
	mcuRows := divCeil(d.hdr.Height, d.maxV*8)

	mcu := 0
	for mcuY := 0; mcuY < mcuRows; mcuY++ {
		for mcuX := 0; mcuX < mcuCols; mcuX++ {
			// Interval boundary: the next segment starts byte aligned
			// with fresh DC predictions
			if d.restartInt > 0 && mcu > 0 && mcu%d.restartInt == 0 {
				if next >= len(intervals) {
					return ErrInvalidData
				}
				br = newBitReader(bytes.NewReader(intervals[next]))
				next++
				for _, comp := range d.comps {
					comp.dcPred = 0
				}
			}

			for _, comp := range d.comps {
				for v := 0; v < comp.v; v++ {
					for h := 0; h < comp.h; h++ {
						if err := d.decodeBlock(br, comp, mcuX*comp.h+h, mcuY*comp.v+v); err != nil {
							return err
						}
					}
				}
			}
			mcu++
		}
	}

	return nil
}

// readEntropyData gathers the entropy-coded bytes of the scan up to the
// next marker, split into segments at restart markers. Stuffed
// 0xFF 0x00 pairs stay in place for the bit reader to undo.
func (d *Decoder) readEntropyData() ([][]byte, error) {
	var intervals [][]byte
	var cur bytes.Buffer

	for {
		b, err := d.r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if b != 0xFF {
			cur.WriteByte(b)
			continue
		}

		b2, err := d.r.ReadByte()
		if err == io.EOF {
			cur.WriteByte(b)
			break
		}
		if err != nil {
			return nil, err
		}

		if b2 == 0x00 {
			cur.WriteByte(b)
			cur.WriteByte(b2)
		} else if IsRST(uint16(0xFF00) | uint16(b2)) {
			intervals = append(intervals, append([]byte(nil), cur.Bytes()...))
			cur.Reset()
		} else {
			// Next marker, scan data is complete
			break
		}
	}

	return append(intervals, append([]byte(nil), cur.Bytes()...)), nil
}

// decodeBlock decodes a single 8x8 block into the component plane
func (d *Decoder) decodeBlock(br *bitReader, comp *component, blockX, blockY int) error {
	var coef [64]int32

	dcTable := d.dcTables[comp.dcSel]
	if dcTable == nil {
		return ErrInvalidDHT
	}

	s, err := br.Decode(dcTable)
	if err != nil {
		return err
	}

	diff, err := br.ReceiveExtend(int(s))
	if err != nil {
		return err
	}

	comp.dcPred += diff
	coef[0] = int32(comp.dcPred)

	acTable := d.acTables[comp.acSel]
	if acTable == nil {
		return ErrInvalidDHT
	}

	k := 1
	for k < 64 {
		rs, err := br.Decode(acTable)
		if err != nil {
			return err
		}

		r := int(rs >> 4)   // run length of zeros
		s := int(rs & 0x0F) // coefficient size

		if s == 0 {
			if r == 15 {
				k += 16 // ZRL
			} else {
				break // EOB
			}
		} else {
			k += r
			if k >= 64 {
				return ErrInvalidData
			}

			val, err := br.ReceiveExtend(s)
			if err != nil {
				return err
			}

			coef[zigzag[k]] = int32(val)
			k++
		}
	}

	// Dequantize
	qtable := &d.qtables[comp.tq]
	for i := 0; i < 64; i++ {
		coef[i] *= qtable[i]
	}

	blockOffset := (blockY*comp.width + blockX) * 64
	if blockOffset+63 >= len(comp.data) {
		// Block lies outside the component plane (padding MCU), skip
		return nil
	}

	IDCT(coef[:], comp.data[blockOffset:], 8)

	return nil
}

// ReadScanline writes the next scanline into buf, which must hold at
// least Width*Components bytes. Rows are produced top to bottom.
func (d *Decoder) ReadScanline(buf []byte) error {
	if !d.started {
		return ErrNotStarted
	}
	if d.scanline >= d.hdr.Height {
		return ErrNoMoreScanlines
	}
	if len(buf) < d.hdr.Width*d.hdr.Components {
		return ErrInvalidData
	}

	y := d.scanline
	switch d.hdr.Components {
	case 1:
		d.grayRow(y, buf)
	case 3:
		d.rgbRow(y, buf)
	case 4:
		d.cmykRow(y, buf)
	}

	d.scanline++
	return nil
}

// Scanline returns the number of scanlines consumed so far.
func (d *Decoder) Scanline() int {
	return d.scanline
}

// Finish completes the decode. The decoder cannot be reused afterwards.
func (d *Decoder) Finish() error {
	if !d.started {
		return ErrNotStarted
	}
	d.started = false
	return nil
}

// sample returns one spatial sample of a component plane for image
// coordinates (x, y), applying the component's sampling factors.
func (d *Decoder) sample(comp *component, x, y int) byte {
	sx := (x * comp.h) / d.maxH
	sy := (y * comp.v) / d.maxV

	blockX := sx / 8
	blockY := sy / 8

	if blockX >= comp.width || blockY >= comp.height {
		return 0
	}

	blockOffset := (blockY*comp.width + blockX) * 64
	return comp.data[blockOffset+(sy%8)*8+(sx%8)]
}

// grayRow produces one grayscale scanline
func (d *Decoder) grayRow(y int, buf []byte) {
	comp := d.comps[0]
	for x := 0; x < d.hdr.Width; x++ {
		buf[x] = d.sample(comp, x, y)
	}
}

// rgbRow produces one RGB scanline. Three-component frames are YCbCr
// unless an Adobe APP14 segment says the components are raw RGB.
func (d *Decoder) rgbRow(y int, buf []byte) {
	rawRGB := d.adobeTransform == 0
	for x := 0; x < d.hdr.Width; x++ {
		c0 := d.sample(d.comps[0], x, y)
		c1 := d.sample(d.comps[1], x, y)
		c2 := d.sample(d.comps[2], x, y)

		if !rawRGB {
			c0, c1, c2 = ycbcrToRGB(c0, c1, c2)
		}

		buf[x*3+0] = c0
		buf[x*3+1] = c1
		buf[x*3+2] = c2
	}
}

// cmykRow produces one CMYK scanline. Four-component frames are YCCK
// when the Adobe transform code is 2, plain CMYK otherwise.
func (d *Decoder) cmykRow(y int, buf []byte) {
	ycck := d.adobeTransform == 2
	for x := 0; x < d.hdr.Width; x++ {
		c0 := d.sample(d.comps[0], x, y)
		c1 := d.sample(d.comps[1], x, y)
		c2 := d.sample(d.comps[2], x, y)
		c3 := d.sample(d.comps[3], x, y)

		if ycck {
			r, g, b := ycbcrToRGB(c0, c1, c2)
			c0 = 255 - r
			c1 = 255 - g
			c2 = 255 - b
		}

		buf[x*4+0] = c0
		buf[x*4+1] = c1
		buf[x*4+2] = c2
		buf[x*4+3] = c3
	}
}

// ycbcrToRGB converts one YCbCr sample to RGB
func ycbcrToRGB(yy, cb, cr byte) (byte, byte, byte) {
	y := int(yy)
	cbVal := int(cb) - 128
	crVal := int(cr) - 128

	r := y + (91881*crVal)>>16
	g := y - ((22554*cbVal + 46802*crVal) >> 16)
	b := y + (116130*cbVal)>>16

	return byte(clamp(r, 0, 255)),
		byte(clamp(g, 0, 255)),
		byte(clamp(b, 0, 255))
}
