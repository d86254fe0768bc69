package hdr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Header errors
var (
	ErrInvalidMagic           = errors.New("hdr: invalid magic number")
	ErrUnsupportedOrientation = errors.New("hdr: unsupported image orientation")
	ErrBadHeader              = errors.New("hdr: malformed header")
)

// Recognized first-line signatures. Only the prefix is checked; the rest
// of the line carries free-form text in files written by Radiance tools.
const (
	magicRadiance = "#?RADIANCE"
	magicRGBE     = "#?RGBE"
)

const (
	exposureKey = "EXPOSURE="
	formatKey   = "FORMAT="
)

// Decode limits. Dimensions are bounded before any pixel allocation so a
// hostile header cannot request gigabytes.
const (
	maxDimension  = 65536
	maxPixels     = 1 << 30
	maxHeaderLine = 1 << 20
)

// Header holds the image metadata parsed from a Radiance file.
type Header struct {
	// Width and Height are the image dimensions in pixels.
	Width, Height int
	// Exposure is the product of all EXPOSURE= lines, 1 when none are
	// present. Decoding divides radiances by it to undo the multiplier
	// applied when the file was written.
	Exposure float32
	// Format is the raw FORMAT= value, empty when the header has none.
	// It is recorded, not validated.
	Format string
}

// parseHeader reads the text header: the signature line, variable lines up
// to the first blank line, and the resolution line.
func parseHeader(r *bufio.Reader) (Header, error) {
	h := Header{Exposure: 1}

	line, err := readLine(r)
	if err != nil {
		return h, err
	}
	if !strings.HasPrefix(line, magicRadiance) && !strings.HasPrefix(line, magicRGBE) {
		return h, ErrInvalidMagic
	}

	for {
		line, err = readLine(r)
		if err != nil {
			return h, err
		}
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		switch {
		case strings.HasPrefix(line, exposureKey):
			v, err := strconv.ParseFloat(strings.TrimSpace(line[len(exposureKey):]), 32)
			if err != nil {
				return h, fmt.Errorf("%w: exposure %q", ErrBadHeader, line)
			}
			h.Exposure *= float32(v)
		case strings.HasPrefix(line, formatKey):
			h.Format = strings.TrimSpace(line[len(formatKey):])
		}
		// Other variables (COLORCORR=, PIXASPECT=, ...) are tolerated
		// and skipped.
	}

	line, err = readLine(r)
	if err != nil {
		return h, err
	}
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != "-Y" || fields[2] != "+X" {
		return h, fmt.Errorf("%w: resolution line %q", ErrUnsupportedOrientation, line)
	}
	if h.Height, err = parseDimension(fields[1]); err != nil {
		return h, err
	}
	if h.Width, err = parseDimension(fields[3]); err != nil {
		return h, err
	}
	if int64(h.Width)*int64(h.Height) > maxPixels {
		return h, fmt.Errorf("%w: %dx%d exceeds pixel limit", ErrBadHeader, h.Width, h.Height)
	}

	return h, nil
}

func parseDimension(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: dimension %q", ErrBadHeader, s)
	}
	if n <= 0 || n > maxDimension {
		return 0, fmt.Errorf("%w: dimension %d out of range [1, %d]", ErrBadHeader, n, maxDimension)
	}
	return n, nil
}

// readLine reads up to the next newline and trims the line terminator.
// Header lines must be newline-terminated; EOF first means a truncated
// header.
func readLine(r *bufio.Reader) (string, error) {
	var line []byte
	for {
		frag, err := r.ReadSlice('\n')
		line = append(line, frag...)
		if len(line) > maxHeaderLine {
			return "", fmt.Errorf("%w: header line exceeds %d bytes", ErrBadHeader, maxHeaderLine)
		}
		switch err {
		case nil:
			return strings.TrimRight(string(line), "\r\n"), nil
		case bufio.ErrBufferFull:
			// keep accumulating
		case io.EOF:
			return "", io.ErrUnexpectedEOF
		default:
			return "", err
		}
	}
}
