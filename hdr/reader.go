// Package hdr implements a decoder for the Radiance HDR image format,
// also known by its .hdr and .pic file extensions.
//
// Radiance pictures store linear radiance values using a shared-exponent
// pixel encoding (see the rgbe package): three 8-bit mantissas and one
// 8-bit exponent per pixel. A file is an ASCII header followed by binary
// scanlines:
//
//	#?RADIANCE                signature line
//	EXPOSURE=<float>          optional, cumulative exposure multiplier
//	FORMAT=32-bit_rle_rgbe    recorded, not validated
//	                          blank line ends the header
//	-Y <height> +X <width>    resolution line, canonical orientation only
//	<height> scanlines        legacy or adaptive run-length layout
//
// Each scanline is stored either as raw RGBE quadruples with old-style
// repeat markers, or in the adaptive layout that run-length codes the
// four channel planes independently. The decoder detects the layout per
// row and reconstructs linear float32 radiances, dividing out the header
// exposure.
//
// Decode reads a whole picture into an Image. NewDecoder decodes row by
// row for callers that stream large pictures. Gzip-compressed input
// (.hdr.gz) is inflated transparently, and the package registers the
// format so image.Decode recognizes Radiance files.
package hdr

import (
	"bufio"
	"bytes"
	"errors"
	"image"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/mrjoshuak/go-radiance/rgbe"
)

// Streaming errors
var (
	ErrBufferTooSmall = errors.New("hdr: destination buffer too small")
)

// gzipMagic is the two-byte gzip member header.
var gzipMagic = []byte{0x1f, 0x8b}

// Decoder reads a Radiance picture one scanline at a time.
// It must not be used from multiple goroutines concurrently.
type Decoder struct {
	r      *bufio.Reader
	h      Header
	invExp float32
	y      int

	row    []byte // scanline scratch, allocated on first use
	planes []byte // channel-plane scratch for adaptive rows
}

// NewDecoder reads the header from r and prepares to decode scanlines.
// The reader is consumed as rows are decoded and is never closed.
func NewDecoder(r io.Reader) (*Decoder, error) {
	br, err := sniffGzip(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	h, err := parseHeader(br)
	if err != nil {
		return nil, err
	}
	return &Decoder{r: br, h: h, invExp: 1 / h.Exposure}, nil
}

// Header returns the parsed file header.
func (d *Decoder) Header() Header {
	return d.h
}

// DecodeScanline decodes the next scanline, top to bottom, into dst.
// It returns io.EOF once every row has been decoded. dst must hold at
// least Header().Width pixels.
func (d *Decoder) DecodeScanline(dst []RGB) error {
	if d.y >= d.h.Height {
		return io.EOF
	}
	if len(dst) < d.h.Width {
		return ErrBufferTooSmall
	}
	if d.row == nil {
		d.row = make([]byte, 4*d.h.Width)
	}
	if err := d.readScanline(d.row); err != nil {
		return err
	}
	d.y++
	convertRow(dst[:d.h.Width], d.row, d.invExp)
	return nil
}

// decodeBandRows is the number of scanlines Decode stages and converts
// per batch. It bounds the staging memory on large pictures while
// leaving each batch enough rows to fan out across workers.
const decodeBandRows = 256

// Decode reads a Radiance picture from r and returns it as an Image of
// linear radiance triples.
func Decode(r io.Reader) (*Image, error) {
	d, err := NewDecoder(r)
	if err != nil {
		return nil, err
	}
	w, h := d.h.Width, d.h.Height

	band := h
	if band > decodeBandRows {
		band = decodeBandRows
	}
	raw := make([]byte, 4*w*band)

	// Pixel storage is allocated once the first band has decoded.
	var img *Image
	for y0 := 0; y0 < h; y0 += band {
		rows := h - y0
		if rows > band {
			rows = band
		}
		for i := 0; i < rows; i++ {
			if err := d.readScanline(raw[4*w*i : 4*w*(i+1)]); err != nil {
				return nil, err
			}
		}
		if img == nil {
			img = NewImage(image.Rect(0, 0, w, h))
		}
		// Rows are independent once decompressed; reconstruct in parallel.
		parallelRows(rows, func(i int) {
			convertRow(img.Pix[(y0+i)*w:(y0+i+1)*w], raw[4*w*i:4*w*(i+1)], d.invExp)
		})
	}
	return img, nil
}

// DecodeConfig returns the color model and dimensions of a Radiance
// picture without decoding the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	d, err := NewDecoder(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: hdrcolor.RGBModel,
		Width:      d.h.Width,
		Height:     d.h.Height,
	}, nil
}

func decodeImage(r io.Reader) (image.Image, error) {
	return Decode(r)
}

func init() {
	// RegisterFormat treats '?' as a wildcard byte; it still matches the
	// literal '?' the signatures carry.
	image.RegisterFormat("hdr", magicRadiance, decodeImage, DecodeConfig)
	image.RegisterFormat("hdr", magicRGBE, decodeImage, DecodeConfig)
}

// sniffGzip transparently inflates gzip-compressed input. Radiance
// pictures commonly ship as .hdr.gz.
func sniffGzip(br *bufio.Reader) (*bufio.Reader, error) {
	head, err := br.Peek(2)
	if err != nil {
		return nil, readErr(err)
	}
	if !bytes.Equal(head, gzipMagic) {
		return br, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, err
	}
	return bufio.NewReader(zr), nil
}

// convertRow reconstructs one row of linear pixels from interleaved RGBE
// bytes. Exact black stays exact regardless of the exposure.
func convertRow(dst []RGB, row []byte, invExp float32) {
	for i := range dst {
		p := rgbe.RGBE{row[4*i], row[4*i+1], row[4*i+2], row[4*i+3]}
		if p.IsBlack() {
			dst[i] = RGB{}
			continue
		}
		r, g, b := p.Float()
		dst[i] = RGB{R: r * invExp, G: g * invExp, B: b * invExp}
	}
}

// readFull fills buf, mapping io.EOF to io.ErrUnexpectedEOF: the header
// promised more data than the stream held.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return readErr(err)
	}
	return nil
}

func readErr(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
