package hdr

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-radiance/internal/planar"
)

// Scanline errors
var ErrBadScanline = errors.New("hdr: corrupted scanline data")

// The adaptive run-length layout applies only to widths its 15-bit marker
// field can express; narrower or wider rows always use the legacy layout.
const (
	newRLEMinWidth = 8
	newRLEMaxWidth = 0x7fff
)

// readScanline reads one row into row (4*width interleaved RGBE bytes),
// picking the encoding from the row's first quadruple.
func (d *Decoder) readScanline(row []byte) error {
	var quad [4]byte
	if err := readFull(d.r, quad[:]); err != nil {
		return err
	}

	w := d.h.Width
	if w >= newRLEMinWidth && w <= newRLEMaxWidth &&
		quad[0] == 2 && quad[1] == 2 && int(quad[2])<<8|int(quad[3]) == w {
		return d.readAdaptive(row)
	}
	// Not an adaptive marker for this width: the four bytes are the
	// row's first quadruple. Reinterpret them, never re-read.
	return d.readLegacy(row, quad)
}

// readLegacy reconstructs a row stored as raw RGBE quadruples with
// old-style run markers. A quadruple (1, 1, 1, n) repeats the previous
// pixel n<<shift times, where shift starts at 0 and grows by 8 for each
// consecutive marker, so long runs chain markers. A literal quadruple
// resets the shift.
func (d *Decoder) readLegacy(row []byte, quad [4]byte) error {
	pos := 0
	shift := uint(0)
	for {
		if quad[0] == 1 && quad[1] == 1 && quad[2] == 1 {
			if pos == 0 {
				return fmt.Errorf("%w: repeat marker with no prior pixel", ErrBadScanline)
			}
			// Zero-count markers may chain indefinitely, but a nonzero
			// count shifted past 24 bits can never fit a row.
			if quad[3] != 0 && shift > 24 {
				return fmt.Errorf("%w: repeat count shifted out of range", ErrBadScanline)
			}
			n := int64(quad[3]) << shift
			if n > int64(len(row)-pos)/4 {
				return fmt.Errorf("%w: repeat count overruns scanline", ErrBadScanline)
			}
			prev := pos - 4
			for end := pos + 4*int(n); pos < end; pos += 4 {
				copy(row[pos:pos+4], row[prev:prev+4])
			}
			shift += 8
		} else {
			copy(row[pos:], quad[:])
			pos += 4
			shift = 0
		}

		if pos == len(row) {
			return nil
		}
		if err := readFull(d.r, quad[:]); err != nil {
			return err
		}
	}
}

// readAdaptive decodes the four channel planes of an adaptive row and
// interleaves them back into RGBE quadruples. The marker quadruple has
// already been consumed.
func (d *Decoder) readAdaptive(row []byte) error {
	w := d.h.Width
	if d.planes == nil {
		d.planes = make([]byte, 4*w)
	}
	for c := 0; c < 4; c++ {
		if err := d.readPlane(d.planes[c*w : (c+1)*w]); err != nil {
			return err
		}
	}
	planar.Interleave(row, d.planes, w)
	return nil
}

// readPlane fills one channel plane from run records covering exactly
// len(plane) bytes.
func (d *Decoder) readPlane(plane []byte) error {
	pos := 0
	for pos < len(plane) {
		c, err := d.r.ReadByte()
		if err != nil {
			return readErr(err)
		}
		switch {
		case c > 128:
			// Run: repeat the next byte (c - 128) times.
			n := int(c) - 128
			if n > len(plane)-pos {
				return fmt.Errorf("%w: run overruns channel plane", ErrBadScanline)
			}
			v, err := d.r.ReadByte()
			if err != nil {
				return readErr(err)
			}
			for end := pos + n; pos < end; pos++ {
				plane[pos] = v
			}
		case c > 0:
			// Literal: copy the next c bytes.
			n := int(c)
			if n > len(plane)-pos {
				return fmt.Errorf("%w: literal span overruns channel plane", ErrBadScanline)
			}
			if err := readFull(d.r, plane[pos:pos+n]); err != nil {
				return err
			}
			pos += n
		default:
			return fmt.Errorf("%w: zero-length span", ErrBadScanline)
		}
	}
	return nil
}
